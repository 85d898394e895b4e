package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// List is an ordered collection of Records of one element schema.
// Order only changes through InsertAt, Append, Prepend and RemoveAt.
type List struct {
	schema    *ListSchema
	elements  []*Record
	immutable bool
}

// Schema returns the list's schema.
func (l *List) Schema() *ListSchema { return l.schema }

// InsertAt inserts r before index i. i may equal Len.
func (l *List) InsertAt(i int, r *Record) error {
	if l.immutable {
		return fmt.Errorf("%s: %w", l.schema.name, ErrImmutable)
	}
	if i < 0 || i > len(l.elements) {
		return fmt.Errorf("%s: insert at %d of %d: %w", l.schema.name, i, len(l.elements), ErrIndexOutOfRange)
	}
	if r == nil || r.schema != l.schema.element {
		return fmt.Errorf("%s: %w", l.schema.name, ErrInvalidElement)
	}

	l.elements = slices.Insert(l.elements, i, r)
	return nil
}

// Append adds r at the end.
func (l *List) Append(r *Record) error {
	return l.InsertAt(len(l.elements), r)
}

// Prepend adds r at the front.
func (l *List) Prepend(r *Record) error {
	return l.InsertAt(0, r)
}

// RemoveAt removes the element at index i.
func (l *List) RemoveAt(i int) error {
	if l.immutable {
		return fmt.Errorf("%s: %w", l.schema.name, ErrImmutable)
	}
	if i < 0 || i >= len(l.elements) {
		return fmt.Errorf("%s: remove at %d of %d: %w", l.schema.name, i, len(l.elements), ErrIndexOutOfRange)
	}

	l.elements = slices.Delete(l.elements, i, i+1)
	return nil
}

// Get returns the element at index i.
func (l *List) Get(i int) (*Record, error) {
	if i < 0 || i >= len(l.elements) {
		return nil, fmt.Errorf("%s: get %d of %d: %w", l.schema.name, i, len(l.elements), ErrIndexOutOfRange)
	}
	return l.elements[i], nil
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.elements) }

// Records returns the elements in order.
func (l *List) Records() []*Record {
	return slices.Clone(l.elements)
}

// ToJSON returns each element's ToJSON in order.
func (l *List) ToJSON() []any {
	out := make([]any, len(l.elements))
	for i, e := range l.elements {
		out[i] = e.ToJSON()
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (l *List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToJSON())
}

func (l *List) String() string {
	b, err := json.MarshalIndent(l.ToJSON(), "", "  ")
	if err != nil {
		return fmt.Sprintf("%s<%v>", l.schema.name, err)
	}
	return string(b)
}

// IsEqual reports whether both lists hold pairwise equal elements.
func (l *List) IsEqual(other *List) bool {
	if other == nil {
		return false
	}
	if l == other {
		return true
	}
	if len(l.elements) != len(other.elements) {
		return false
	}
	for i, e := range l.elements {
		if !e.IsEqual(other.elements[i]) {
			return false
		}
	}
	return true
}

// IsImmutable reports whether the list is frozen.
func (l *List) IsImmutable() bool { return l.immutable }

// Copy returns l itself when frozen, otherwise a MutableCopy.
func (l *List) Copy() *List {
	if l.immutable {
		return l
	}
	return l.MutableCopy()
}

// MutableCopy returns a mutable list of deep-copied elements.
func (l *List) MutableCopy() *List {
	out := &List{
		schema:   l.schema,
		elements: make([]*Record, len(l.elements)),
	}
	for i, e := range l.elements {
		out.elements[i] = e.MutableCopy()
	}
	return out
}

// Immutable freezes the list and every element that is not frozen yet.
// Freezing twice fails.
func (l *List) Immutable() error {
	if l.immutable {
		return fmt.Errorf("%s: %w", l.schema.name, ErrImmutable)
	}
	l.immutable = true

	for _, e := range l.elements {
		if !e.immutable {
			_ = e.Immutable()
		}
	}
	return nil
}

// SetFrom populates the list through the named converter.
func (l *List) SetFrom(converter string, data any) error {
	if l.immutable {
		return fmt.Errorf("%s: %w", l.schema.name, ErrImmutable)
	}

	c, ok := l.schema.converters[converter]
	if !ok || c.From == nil {
		return fmt.Errorf("%s: %w %q", l.schema.name, ErrUnknownConverter, converter)
	}
	return c.From(data, l)
}

// ConvertTo projects the list through the named converter.
func (l *List) ConvertTo(converter string) (any, error) {
	c, ok := l.schema.converters[converter]
	if !ok || c.To == nil {
		return nil, fmt.Errorf("%s: %w %q", l.schema.name, ErrUnknownConverter, converter)
	}

	snapshot := make([]map[string]any, len(l.elements))
	for i, e := range l.elements {
		snapshot[i] = e.snapshot()
	}
	return c.To(snapshot)
}
