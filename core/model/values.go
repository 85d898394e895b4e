package model

import (
	"reflect"
	"time"
)

// Undefined stands for an explicitly absent value. Passing it to Set
// clears the attribute to nil instead of failing the type check.
var Undefined = undefined{}

type undefined struct{}

// normalize turns typed nil Records and Lists into untyped nil so that
// stored values are either nil or usable.
func normalize(v any) any {
	switch t := v.(type) {
	case *Record:
		if t == nil {
			return nil
		}
	case *List:
		if t == nil {
			return nil
		}
	}
	return v
}

// copyValue deep-copies v. With share set, immutable Records and Lists
// are shared instead of copied.
func copyValue(v any, share bool) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *Record:
		if t == nil {
			return nil
		}
		if share {
			return t.Copy()
		}
		return t.MutableCopy()
	case *List:
		if t == nil {
			return nil
		}
		if share {
			return t.Copy()
		}
		return t.MutableCopy()
	case time.Time, string, bool:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e, share)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}

	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	if elem := rv.Type().Elem(); elem.Kind() == reflect.Interface {
		for i := 0; i < out.Len(); i++ {
			c := copyValue(out.Index(i).Interface(), share)
			if c == nil {
				out.Index(i).Set(reflect.Zero(elem))
			} else {
				out.Index(i).Set(reflect.ValueOf(c))
			}
		}
	}
	return out.Interface()
}

// valuesEqual compares attribute values. Nested Records and Lists use
// IsEqual, dates use time.Time.Equal and numbers compare numerically.
func valuesEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Record:
		y, ok := b.(*Record)
		return ok && x.IsEqual(y)
	case *List:
		y, ok := b.(*List)
		return ok && x.IsEqual(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !valuesEqual(xv, yv) {
				return false
			}
		}
		return true
	}

	if isNumber(a) && isNumber(b) {
		return numbersEqual(a, b)
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if isSequence(ra) && isSequence(rb) {
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !valuesEqual(ra.Index(i).Interface(), rb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func isSequence(v reflect.Value) bool {
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// numbersEqual compares two numeric values. Integers are compared exactly;
// float64 is used only when one side is a float.
func numbersEqual(a, b any) bool {
	ai, aInt := asInt(a)
	bi, bInt := asInt(b)
	if !aInt || !bInt {
		return toFloat64(a) == toFloat64(b)
	}
	return ai == bi
}

// integer is an exact integer value: magnitude plus sign.
type integer struct {
	neg bool
	mag uint64
}

func asInt(v any) (integer, bool) {
	var s int64
	switch n := v.(type) {
	case int:
		s = int64(n)
	case int8:
		s = int64(n)
	case int16:
		s = int64(n)
	case int32:
		s = int64(n)
	case int64:
		s = n
	case uint:
		return integer{mag: uint64(n)}, true
	case uint8:
		return integer{mag: uint64(n)}, true
	case uint16:
		return integer{mag: uint64(n)}, true
	case uint32:
		return integer{mag: uint64(n)}, true
	case uint64:
		return integer{mag: n}, true
	default:
		return integer{}, false
	}
	if s < 0 {
		// -(s+1)+1 avoids overflow for math.MinInt64
		return integer{neg: true, mag: uint64(-(s + 1)) + 1}, true
	}
	return integer{mag: uint64(s)}, true
}

// toFloat64 converts any Go numeric kind to float64.
func toFloat64(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// plain converts v into its ToJSON form.
func plain(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *Record:
		if t == nil {
			return nil
		}
		return t.ToJSON()
	case *List:
		if t == nil {
			return nil
		}
		return t.ToJSON()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case string, bool, time.Time:
		return t
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = plain(rv.Index(i).Interface())
	}
	return out
}

// canonical rewrites dates in a plain value to UTC.
func canonical(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = canonical(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonical(e)
		}
		return out
	}
	return v
}
