package model

import (
	"fmt"
)

// Attribute declares one attribute of a Schema.
type Attribute struct {
	// Name is the attribute key.
	Name string

	// Type is the static type. The zero Type is rejected.
	Type Type

	// PrimaryKey marks the attribute as identity-bearing.
	PrimaryKey bool

	// Default is the initial value of new instances. A Record or List
	// default is copied into each new instance unless it is immutable.
	Default any

	// DefaultFunc, if set, generates the initial value and takes
	// precedence over Default.
	DefaultFunc func() any
}

// Converter maps a Record to and from a foreign representation.
type Converter struct {
	// From populates target from data.
	From func(data any, target *Record) error

	// To projects a deep copy of the current attributes.
	To func(attributes map[string]any) (any, error)
}

// DiffFunc overrides the default Record diff. It receives a fresh instance
// of the schema to build the result in.
type DiffFunc func(r, other, result *Record) (*Record, error)

// Schema is a record type: an ordered set of typed attributes.
// Schemas are immutable once built and safe to share.
type Schema struct {
	name       string
	names      []string
	attrs      map[string]Attribute
	primaryKey []string
	converters map[string]Converter
	diffFn     DiffFunc
}

// SchemaOption configures a Schema.
type SchemaOption func(*Schema)

// WithConverters registers named converters.
func WithConverters(converters map[string]Converter) SchemaOption {
	return func(s *Schema) {
		for name, c := range converters {
			s.converters[name] = c
		}
	}
}

// WithDiffFunc replaces the default diff algorithm.
func WithDiffFunc(fn DiffFunc) SchemaOption {
	return func(s *Schema) {
		s.diffFn = fn
	}
}

// NewSchema builds a schema from attribute descriptors in declaration
// order. Malformed descriptors and defaults failing their type check are
// reported as ErrInvalidSchema.
func NewSchema(name string, attrs []Attribute, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		name:       name,
		attrs:      make(map[string]Attribute, len(attrs)),
		converters: make(map[string]Converter),
	}

	for _, a := range attrs {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: %s: attribute name is required", ErrInvalidSchema, name)
		}
		if _, dup := s.attrs[a.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate attribute %q", ErrInvalidSchema, name, a.Name)
		}
		if !a.Type.valid() {
			return nil, fmt.Errorf("%w: %s.%s: invalid type %s", ErrInvalidSchema, name, a.Name, a.Type)
		}

		def := a.Default
		if a.DefaultFunc != nil {
			def = a.DefaultFunc()
		}
		if !a.Type.Check(normalize(def)) {
			return nil, fmt.Errorf("%w: %s.%s: invalid default %v for type %s", ErrInvalidSchema, name, a.Name, def, a.Type)
		}

		s.names = append(s.names, a.Name)
		s.attrs[a.Name] = a
		if a.PrimaryKey {
			s.primaryKey = append(s.primaryKey, a.Name)
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// MustSchema is like NewSchema but panics on error. It is meant for
// package-level schema declarations.
func MustSchema(name string, attrs []Attribute, opts ...SchemaOption) *Schema {
	s, err := NewSchema(name, attrs, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// AttributeNames returns the declared names in order.
func (s *Schema) AttributeNames() []string {
	return append([]string(nil), s.names...)
}

// Attribute returns the descriptor for name.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	a, ok := s.attrs[name]
	return a, ok
}

// PrimaryKey returns the primary-key attribute names in declaration order.
func (s *Schema) PrimaryKey() []string {
	return append([]string(nil), s.primaryKey...)
}

// New returns a mutable Record holding the default values.
func (s *Schema) New() *Record {
	return s.newRecord(true)
}

// NewStatic returns a mutable Record holding only the static defaults.
// Attributes with a DefaultFunc start as nil. Use it to rebuild records
// that already exist, where generated values must come from the data.
func (s *Schema) NewStatic() *Record {
	return s.newRecord(false)
}

func (s *Schema) newRecord(generate bool) *Record {
	r := &Record{
		schema: s,
		values: make(map[string]any, len(s.names)),
	}

	for _, name := range s.names {
		a := s.attrs[name]
		var v any
		switch {
		case a.DefaultFunc != nil && generate:
			v = a.DefaultFunc()
		case a.DefaultFunc == nil:
			v = copyValue(a.Default, true)
		}
		r.values[name] = normalize(v)
	}

	return r
}

// ListConverter maps a List to and from a foreign representation.
type ListConverter struct {
	From func(data any, target *List) error
	To   func(elements []map[string]any) (any, error)
}

// ListDiffFunc overrides the default List diff.
type ListDiffFunc func(l, other, result *List) (*List, error)

// ListSchema is a homogeneous ordered collection type.
type ListSchema struct {
	name       string
	element    *Schema
	converters map[string]ListConverter
	diffFn     ListDiffFunc
}

// ListOption configures a ListSchema.
type ListOption func(*ListSchema)

// WithListConverters registers named list converters.
func WithListConverters(converters map[string]ListConverter) ListOption {
	return func(ls *ListSchema) {
		for name, c := range converters {
			ls.converters[name] = c
		}
	}
}

// WithListDiffFunc replaces the default keyed reconciliation.
func WithListDiffFunc(fn ListDiffFunc) ListOption {
	return func(ls *ListSchema) {
		ls.diffFn = fn
	}
}

// NewListSchema builds a list type of element records.
func NewListSchema(name string, element *Schema, opts ...ListOption) (*ListSchema, error) {
	if element == nil {
		return nil, fmt.Errorf("%w: %s: element schema is required", ErrInvalidSchema, name)
	}

	ls := &ListSchema{
		name:       name,
		element:    element,
		converters: make(map[string]ListConverter),
	}
	for _, opt := range opts {
		opt(ls)
	}
	return ls, nil
}

// MustListSchema is like NewListSchema but panics on error.
func MustListSchema(name string, element *Schema, opts ...ListOption) *ListSchema {
	ls, err := NewListSchema(name, element, opts...)
	if err != nil {
		panic(err)
	}
	return ls
}

// Name returns the list schema name.
func (ls *ListSchema) Name() string { return ls.name }

// Element returns the element schema.
func (ls *ListSchema) Element() *Schema { return ls.element }

// New returns an empty mutable List.
func (ls *ListSchema) New() *List {
	return &List{schema: ls}
}
