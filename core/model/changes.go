package model

import (
	"fmt"
	"strings"
)

// Op is the kind of a flattened change.
type Op string

const (
	// OpSet assigns a new value to an attribute.
	OpSet Op = "set"

	// OpDelete removes the record identified by the key.
	OpDelete Op = "delete"
)

// Change is one row of a flattened edit script.
type Change struct {
	Op Op

	// Key is the canonical primary key of the affected record. Keys that
	// cannot be encoded as JSON, such as NaN, fall back to fmt formatting.
	Key string

	// Path is the dotted attribute path from the root of the edit script.
	Path string

	// Value is the new value in ToJSON form. Unset for deletes.
	Value any
}

// Changes flattens an edit script produced by Diff into rows, in attribute
// order. Primary key attributes only identify records and produce no rows.
func (r *Record) Changes() []Change {
	var out []Change
	r.appendChanges("", &out)
	return out
}

// Changes flattens a list edit script.
func (l *List) Changes() []Change {
	var out []Change
	for _, e := range l.elements {
		e.appendChanges("", &out)
	}
	return out
}

func (r *Record) appendChanges(prefix string, out *[]Change) {
	key, err := r.PrimaryKeyString()
	if err != nil {
		key = fmt.Sprint(plain(r.PrimaryKey()))
	}

	if r.deleted {
		*out = append(*out, Change{Op: OpDelete, Key: key, Path: strings.TrimSuffix(prefix, ".")})
		return
	}

	pk := make(map[string]bool, len(r.schema.primaryKey))
	for _, name := range r.schema.primaryKey {
		pk[name] = true
	}

	for _, name := range r.AttributeNames() {
		path := prefix + name
		switch v := r.values[name].(type) {
		case *Record:
			v.appendChanges(path+".", out)
			continue
		case *List:
			for _, e := range v.elements {
				e.appendChanges(path+".", out)
			}
			continue
		}

		if pk[name] {
			continue
		}
		*out = append(*out, Change{Op: OpSet, Key: key, Path: path, Value: plain(r.values[name])})
	}
}
