package schema

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Definition declares one record or list type.
// Exactly one of Record and List is set.
type Definition struct {
	// Record is the name of a record type.
	Record string `yaml:"record,omitempty"`

	// List is the name of a list type.
	List string `yaml:"list,omitempty"`

	// Element names the record type held by a list.
	Element string `yaml:"element,omitempty"`

	// Attributes declares a record's attributes in file order.
	Attributes Attributes `yaml:"attributes,omitempty"`

	// Description for documentation.
	Description string `yaml:"description,omitempty"`
}

// Name returns the declared type name.
func (d Definition) Name() string {
	if d.List != "" {
		return d.List
	}
	return d.Record
}

// IsList reports whether d declares a list type.
func (d Definition) IsList() bool {
	return d.List != ""
}

// IsZero reports whether d is an empty YAML document.
func (d Definition) IsZero() bool {
	return d.Record == "" && d.List == "" && d.Element == "" && len(d.Attributes) == 0
}

// References returns the names of other definitions d depends on.
func (d Definition) References() []string {
	if d.IsList() {
		return []string{d.Element}
	}

	var refs []string
	for _, a := range d.Attributes {
		if !a.IsPrimitive() {
			refs = append(refs, a.Type)
		}
	}
	return refs
}

// Attribute is the declarative form of an attribute descriptor.
type Attribute struct {
	// Name is taken from the mapping key.
	Name string `yaml:"-"`

	// Type is a primitive tag or the name of another definition.
	Type string `yaml:"$type"`

	// PK marks the attribute as part of the primary key.
	PK bool `yaml:"$pk,omitempty"`

	// Default is the initial value. Only primitive types take defaults.
	Default any `yaml:"$default,omitempty"`

	// Generate names a default generator (see Generators).
	Generate string `yaml:"$generate,omitempty"`
}

// Primitive type tags.
const (
	TypeBool   = "bool"
	TypeString = "string"
	TypeNumber = "number"
	TypeDate   = "date"
	TypeArray  = "array"
)

// Default generators.
const (
	GenerateUUID = "uuid"
	GenerateNow  = "now"
)

// Generators maps each generator to the type it produces.
var Generators = map[string]string{
	GenerateUUID: TypeString,
	GenerateNow:  TypeDate,
}

// IsPrimitive reports whether the attribute has a primitive type tag.
func (a Attribute) IsPrimitive() bool {
	return IsPrimitive(a.Type)
}

// IsPrimitive reports whether tag is a primitive type tag.
func IsPrimitive(tag string) bool {
	switch tag {
	case TypeBool, TypeString, TypeNumber, TypeDate, TypeArray:
		return true
	default:
		return false
	}
}

// Attributes is an ordered attribute list decoded from a YAML mapping.
type Attributes []Attribute

// UnmarshalYAML keeps the mapping order and rejects descriptors that are
// not mappings.
func (as *Attributes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: attributes must be a mapping", node.Line)
	}

	out := make(Attributes, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: attribute %q: descriptor must be a mapping", value.Line, key.Value)
		}

		var a Attribute
		if err := value.Decode(&a); err != nil {
			return fmt.Errorf("attribute %q: %w", key.Value, err)
		}
		a.Name = key.Value
		out = append(out, a)
	}

	*as = out
	return nil
}

// MarshalYAML writes the attributes back as an ordered mapping.
func (as Attributes) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, a := range as {
		var value yaml.Node
		if err := value.Encode(a); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: a.Name},
			&value,
		)
	}
	return node, nil
}

// Lookup returns the attribute named name.
func (as Attributes) Lookup(name string) (Attribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Date layouts accepted for date values, most specific first.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate parses a date value written as RFC 3339 or YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
