package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Record is a schema-typed attribute container. A Record is mutable until
// Immutable is called; after that only reads, Copy and Diff are valid.
type Record struct {
	schema    *Schema
	values    map[string]any
	deleted   bool
	immutable bool
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Set assigns attributes from data. The whole mapping is checked before
// any value is written. Undefined clears an attribute to nil.
func (r *Record) Set(data map[string]any) error {
	if r.immutable {
		return fmt.Errorf("%s: %w", r.schema.name, ErrImmutable)
	}
	if data == nil {
		return fmt.Errorf("%s: %w", r.schema.name, ErrInvalidData)
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	updates := make(map[string]any, len(data))
	for _, key := range keys {
		if _, ok := r.values[key]; !ok {
			return attrError(r.schema.name, key, nil, ErrUnknownAttribute)
		}

		v := data[key]
		if _, absent := v.(undefined); absent {
			updates[key] = nil
			continue
		}

		v = normalize(v)
		if !r.schema.attrs[key].Type.Check(v) {
			return attrError(r.schema.name, key, v, ErrInvalidValue)
		}
		updates[key] = v
	}

	for key, v := range updates {
		r.values[key] = v
	}
	return nil
}

// Get returns the current value of key.
func (r *Record) Get(key string) (any, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, attrError(r.schema.name, key, nil, ErrUnknownAttribute)
	}
	return v, nil
}

// GetRecord returns a nested Record attribute. A nil value yields nil.
func (r *Record) GetRecord(key string) (*Record, error) {
	v, err := r.Get(key)
	if err != nil || v == nil {
		return nil, err
	}
	nested, ok := v.(*Record)
	if !ok {
		return nil, attrError(r.schema.name, key, v, ErrInvalidValue)
	}
	return nested, nil
}

// GetList returns a nested List attribute. A nil value yields nil.
func (r *Record) GetList(key string) (*List, error) {
	v, err := r.Get(key)
	if err != nil || v == nil {
		return nil, err
	}
	nested, ok := v.(*List)
	if !ok {
		return nil, attrError(r.schema.name, key, v, ErrInvalidValue)
	}
	return nested, nil
}

// AttributeNames returns the names currently held, in declaration order.
// Diff results omit unchanged attributes.
func (r *Record) AttributeNames() []string {
	names := make([]string, 0, len(r.values))
	for _, name := range r.schema.names {
		if _, ok := r.values[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// PrimaryKey returns the primary-key attributes and their values.
func (r *Record) PrimaryKey() map[string]any {
	pk := make(map[string]any, len(r.schema.primaryKey))
	for _, name := range r.schema.primaryKey {
		if v, ok := r.values[name]; ok {
			pk[name] = v
		}
	}
	return pk
}

// PrimaryKeyString returns a canonical encoding of PrimaryKey. Equal keys
// encode identically regardless of declaration order, and dates are
// encoded in UTC so one instant has one key.
func (r *Record) PrimaryKeyString() (string, error) {
	b, err := json.Marshal(canonical(plain(r.PrimaryKey())))
	if err != nil {
		return "", fmt.Errorf("%s: encode primary key: %w", r.schema.name, err)
	}
	return string(b), nil
}

// ToJSON returns the record as plain nested data. Deleted records carry
// "$op": "delete".
func (r *Record) ToJSON() map[string]any {
	out := make(map[string]any, len(r.values)+1)
	for name, v := range r.values {
		out[name] = plain(v)
	}
	if r.deleted {
		out["$op"] = "delete"
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToJSON())
}

func (r *Record) String() string {
	b, err := json.MarshalIndent(r.ToJSON(), "", "  ")
	if err != nil {
		return fmt.Sprintf("%s<%v>", r.schema.name, err)
	}
	return string(b)
}

// IsEqual reports structural equality with other.
func (r *Record) IsEqual(other *Record) bool {
	if other == nil {
		return false
	}
	if r == other {
		return true
	}

	names := r.AttributeNames()
	otherNames := other.AttributeNames()
	if len(names) != len(otherNames) {
		return false
	}
	for i, name := range names {
		if otherNames[i] != name {
			return false
		}
		if !valuesEqual(r.values[name], other.values[name]) {
			return false
		}
	}
	return true
}

// IsDeleted reports whether the record is a tombstone.
func (r *Record) IsDeleted() bool { return r.deleted }

// IsImmutable reports whether the record is frozen.
func (r *Record) IsImmutable() bool { return r.immutable }

// Copy returns r itself when frozen, otherwise a MutableCopy.
func (r *Record) Copy() *Record {
	if r.immutable {
		return r
	}
	return r.MutableCopy()
}

// MutableCopy returns a mutable deep copy of r.
func (r *Record) MutableCopy() *Record {
	out := &Record{
		schema:  r.schema,
		values:  make(map[string]any, len(r.values)),
		deleted: r.deleted,
	}
	for name, v := range r.values {
		out.values[name] = copyValue(v, false)
	}
	return out
}

// RemoveAttribute drops name from the record.
func (r *Record) RemoveAttribute(name string) error {
	if r.immutable {
		return fmt.Errorf("%s: %w", r.schema.name, ErrImmutable)
	}
	if _, ok := r.values[name]; !ok {
		return attrError(r.schema.name, name, nil, ErrUnknownAttribute)
	}
	delete(r.values, name)
	return nil
}

// Immutable freezes the record and every nested Record and List that is
// not frozen yet. Freezing twice fails.
func (r *Record) Immutable() error {
	if r.immutable {
		return fmt.Errorf("%s: %w", r.schema.name, ErrImmutable)
	}
	r.immutable = true

	for _, v := range r.values {
		switch nested := v.(type) {
		case *Record:
			if !nested.immutable {
				_ = nested.Immutable()
			}
		case *List:
			if !nested.immutable {
				_ = nested.Immutable()
			}
		}
	}
	return nil
}

// SetFrom populates the record through the named converter.
func (r *Record) SetFrom(converter string, data any) error {
	if r.immutable {
		return fmt.Errorf("%s: %w", r.schema.name, ErrImmutable)
	}
	if data == nil {
		return fmt.Errorf("%s: %w", r.schema.name, ErrInvalidData)
	}

	c, ok := r.schema.converters[converter]
	if !ok || c.From == nil {
		return fmt.Errorf("%s: %w %q", r.schema.name, ErrUnknownConverter, converter)
	}
	return c.From(data, r)
}

// ConvertTo projects the record through the named converter.
func (r *Record) ConvertTo(converter string) (any, error) {
	c, ok := r.schema.converters[converter]
	if !ok || c.To == nil {
		return nil, fmt.Errorf("%s: %w %q", r.schema.name, ErrUnknownConverter, converter)
	}
	return c.To(r.snapshot())
}

func (r *Record) snapshot() map[string]any {
	out := make(map[string]any, len(r.values))
	for name, v := range r.values {
		out[name] = copyValue(v, false)
	}
	return out
}
