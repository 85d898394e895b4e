package model

import (
	"fmt"
)

// Diff returns the edit script turning r into other.
//
//   - other == nil yields a frozen tombstone: a copy of r marked deleted.
//   - Equal records yield nil.
//   - Otherwise the result holds the primary-key attributes plus every
//     attribute whose value changed. Nested Records and Lists are diffed
//     recursively and dropped when unchanged. If nothing changed the
//     result is nil.
//
// Primary keys must match; a changed key is reported as
// ErrPrimaryKeyChanged.
func (r *Record) Diff(other *Record) (*Record, error) {
	if r == other {
		return nil, nil
	}
	if other == nil {
		return r.tombstone(), nil
	}
	if other.schema != r.schema {
		return nil, fmt.Errorf("%w: %s vs %s", ErrSchemaMismatch, r.schema.name, other.schema.name)
	}
	if r.IsEqual(other) {
		return nil, nil
	}

	result := r.schema.New()
	if r.schema.diffFn != nil {
		return r.schema.diffFn(r, other, result)
	}

	changed := false
	for _, key := range r.AttributeNames() {
		v1 := r.values[key]
		v2, err := other.Get(key)
		if err != nil {
			return nil, err
		}

		switch x := v1.(type) {
		case *Record:
			y, _ := v2.(*Record)
			d, err := x.Diff(y)
			if err != nil {
				return nil, err
			}
			if d == nil {
				delete(result.values, key)
				continue
			}
			result.values[key] = d
			changed = true
			continue
		case *List:
			y, _ := v2.(*List)
			d, err := x.Diff(y)
			if err != nil {
				return nil, err
			}
			if d == nil {
				delete(result.values, key)
				continue
			}
			result.values[key] = d
			changed = true
			continue
		}

		if r.schema.attrs[key].PrimaryKey {
			if !valuesEqual(v1, v2) {
				return nil, attrError(r.schema.name, key, nil,
					fmt.Errorf("%w: %v != %v", ErrPrimaryKeyChanged, v1, v2))
			}
			result.values[key] = copyValue(v1, true)
			continue
		}

		if valuesEqual(v1, v2) {
			delete(result.values, key)
			continue
		}
		result.values[key] = copyValue(v2, true)
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return result, nil
}

func (r *Record) tombstone() *Record {
	t := r.MutableCopy()
	t.deleted = true
	_ = t.Immutable()
	return t
}

// Diff reconciles l against other by primary key.
//
// Elements of other whose key exists in l contribute their edit script,
// if any. Elements with a new key are appended whole. Elements of l whose
// key is absent from other are appended as tombstones, in l's order. An
// empty result is returned as nil. other == nil yields a tombstone for
// every element.
func (l *List) Diff(other *List) (*List, error) {
	if l == other {
		return nil, nil
	}

	result := l.schema.New()
	if other == nil {
		for _, e := range l.elements {
			result.elements = append(result.elements, e.tombstone())
		}
		return result, nil
	}
	if other.schema != l.schema {
		return nil, fmt.Errorf("%w: %s vs %s", ErrSchemaMismatch, l.schema.name, other.schema.name)
	}
	if l.IsEqual(other) {
		return nil, nil
	}
	if l.schema.diffFn != nil {
		return l.schema.diffFn(l, other, result)
	}

	index := make(map[string]*Record, len(l.elements))
	order := make([]string, 0, len(l.elements))
	for _, e := range l.elements {
		key, err := e.PrimaryKeyString()
		if err != nil {
			return nil, err
		}
		if _, seen := index[key]; !seen {
			order = append(order, key)
		}
		index[key] = e
	}

	for _, e := range other.elements {
		key, err := e.PrimaryKeyString()
		if err != nil {
			return nil, err
		}

		match, ok := index[key]
		if !ok {
			result.elements = append(result.elements, e)
			continue
		}

		d, err := match.Diff(e)
		if err != nil {
			return nil, err
		}
		if d != nil {
			result.elements = append(result.elements, d)
		}
		delete(index, key)
	}

	for _, key := range order {
		if e, ok := index[key]; ok {
			result.elements = append(result.elements, e.tombstone())
		}
	}

	if len(result.elements) == 0 {
		return nil, nil
	}
	return result, nil
}
