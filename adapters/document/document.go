// Package document reads JSON and YAML documents and decodes them into
// records and lists of a compiled schema.
package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/artpar/modeldiff/core/model"
	"github.com/artpar/modeldiff/core/schema"
	"gopkg.in/yaml.v3"
)

// OpKey is reserved for edit scripts and rejected in input documents.
const OpKey = "$op"

// ErrMissingKey is returned when a document omits a generated primary key.
// Generating one would give the same record a new identity on every read.
var ErrMissingKey = errors.New("missing primary key")

// Read reads a document file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func Read(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	return doc, nil
}

// DecodeRecord builds a record of s from a decoded document object.
func DecodeRecord(s *model.Schema, doc any) (*model.Record, error) {
	obj, ok := asObject(doc)
	if !ok {
		return nil, fmt.Errorf("%s: expected an object, got %T", s.Name(), doc)
	}
	if _, ok := obj[OpKey]; ok {
		return nil, fmt.Errorf("%s: %q is not allowed in input documents", s.Name(), OpKey)
	}

	values := make(map[string]any, len(obj))
	for key, raw := range obj {
		attr, ok := s.Attribute(key)
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", s.Name(), model.ErrUnknownAttribute, key)
		}
		v, err := decodeValue(attr.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name(), key, err)
		}
		values[key] = v
	}

	for _, name := range s.PrimaryKey() {
		attr, _ := s.Attribute(name)
		if _, ok := values[name]; !ok && attr.DefaultFunc != nil {
			return nil, fmt.Errorf("%s: %w %q", s.Name(), ErrMissingKey, name)
		}
	}

	r := s.NewStatic()
	if err := r.Set(values); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeList builds a list of ls from a decoded document array.
func DecodeList(ls *model.ListSchema, doc any) (*model.List, error) {
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array, got %T", ls.Name(), doc)
	}

	l := ls.New()
	for i, item := range items {
		r, err := DecodeRecord(ls.Element(), item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", ls.Name(), i, err)
		}
		if err := l.Append(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func decodeValue(t model.Type, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch t.Kind() {
	case model.KindDate:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			return schema.ParseDate(v)
		}
	case model.KindRecord:
		return DecodeRecord(t.Schema(), raw)
	case model.KindList:
		return DecodeList(t.ListSchema(), raw)
	}

	// Remaining mismatches are reported by Record.Set.
	return raw, nil
}

// asObject accepts both JSON objects and YAML mappings with non-string keys.
func asObject(doc any) (map[string]any, bool) {
	switch m := doc.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}
