package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema reports a malformed schema or attribute descriptor.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrImmutable reports a write to a frozen Record or List.
	ErrImmutable = errors.New("object is immutable")

	// ErrInvalidData reports a nil attribute mapping passed to Set.
	ErrInvalidData = errors.New("invalid object")

	// ErrInvalidValue reports a value failing its attribute's type check.
	ErrInvalidValue = errors.New("invalid attribute value")

	// ErrInvalidElement reports a List element of the wrong schema.
	ErrInvalidElement = errors.New("invalid element type")

	// ErrUnknownAttribute reports access to an undeclared attribute.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrIndexOutOfRange reports a List index outside the valid range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrPrimaryKeyChanged reports a diff between records of different identity.
	ErrPrimaryKeyChanged = errors.New("primary key changed")

	// ErrSchemaMismatch reports a diff between instances of different schemas.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrUnknownConverter reports a converter missing from the registry.
	ErrUnknownConverter = errors.New("unknown converter")
)

// AttributeError is an error scoped to one attribute of a schema.
type AttributeError struct {
	Schema    string
	Attribute string
	Value     any
	Err       error
}

func (e *AttributeError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s.%s: %v (%T)", e.Schema, e.Attribute, e.Err, e.Value)
	}
	return fmt.Sprintf("%s.%s: %v", e.Schema, e.Attribute, e.Err)
}

func (e *AttributeError) Unwrap() error {
	return e.Err
}

func attrError(schema, attr string, value any, err error) error {
	return &AttributeError{Schema: schema, Attribute: attr, Value: value, Err: err}
}
