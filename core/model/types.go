package model

import (
	"reflect"
	"time"
)

// Kind identifies the variant of a Type.
type Kind int

const (
	// KindInvalid is the zero Kind. Schemas reject it.
	KindInvalid Kind = iota

	// Primitive kinds
	KindBool
	KindString
	KindNumber
	KindDate
	KindArray

	// Structural kinds
	KindRecord // nested Record of a declared Schema
	KindList   // nested List of a declared ListSchema
)

// String returns the type tag used in schema declarations.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	default:
		return "invalid"
	}
}

// IsPrimitive reports whether k is one of the primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k >= KindBool && k <= KindArray
}

// Type is the static type of an attribute. It is a closed tagged variant:
// a primitive Kind, a Record kind carrying its Schema, or a List kind
// carrying its ListSchema.
type Type struct {
	kind   Kind
	record *Schema
	list   *ListSchema
}

// Bool returns the boolean type.
func Bool() Type { return Type{kind: KindBool} }

// String returns the string type.
func String() Type { return Type{kind: KindString} }

// Number returns the number type.
func Number() Type { return Type{kind: KindNumber} }

// Date returns the date type. Values are time.Time.
func Date() Type { return Type{kind: KindDate} }

// Array returns the raw sequence type. Values are slices.
func Array() Type { return Type{kind: KindArray} }

// RecordOf returns the type of a nested Record of schema s.
func RecordOf(s *Schema) Type { return Type{kind: KindRecord, record: s} }

// ListOf returns the type of a nested List of schema ls.
func ListOf(ls *ListSchema) Type { return Type{kind: KindList, list: ls} }

// Primitive resolves a primitive type tag ("bool", "string", "number",
// "date", "array").
func Primitive(tag string) (Type, bool) {
	switch tag {
	case "bool":
		return Bool(), true
	case "string":
		return String(), true
	case "number":
		return Number(), true
	case "date":
		return Date(), true
	case "array":
		return Array(), true
	default:
		return Type{}, false
	}
}

// Kind returns the variant of t.
func (t Type) Kind() Kind { return t.kind }

// Schema returns the nested record schema, or nil for other kinds.
func (t Type) Schema() *Schema { return t.record }

// ListSchema returns the nested list schema, or nil for other kinds.
func (t Type) ListSchema() *ListSchema { return t.list }

// String returns the type tag, or the referenced schema name for
// structural kinds.
func (t Type) String() string {
	switch t.kind {
	case KindRecord:
		if t.record != nil {
			return t.record.Name()
		}
	case KindList:
		if t.list != nil {
			return t.list.Name()
		}
	}
	return t.kind.String()
}

// valid reports whether the type is usable in a schema.
func (t Type) valid() bool {
	switch t.kind {
	case KindRecord:
		return t.record != nil
	case KindList:
		return t.list != nil
	default:
		return t.kind.IsPrimitive()
	}
}

// Check reports whether v satisfies the type's predicate. nil always does.
// Structural kinds match by schema identity, not by shape.
func (t Type) Check(v any) bool {
	if v == nil {
		return true
	}

	switch t.kind {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		return isNumber(v)
	case KindDate:
		_, ok := v.(time.Time)
		return ok
	case KindArray:
		k := reflect.TypeOf(v).Kind()
		return k == reflect.Slice || k == reflect.Array
	case KindRecord:
		r, ok := v.(*Record)
		return ok && (r == nil || r.schema == t.record)
	case KindList:
		l, ok := v.(*List)
		return ok && (l == nil || l.schema == t.list)
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
