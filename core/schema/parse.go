package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseFile parses schema definitions from a YAML file.
func ParseFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Parse parses schema definitions from YAML bytes. A file may hold
// several documents separated by "---".
func Parse(data []byte) ([]Definition, error) {
	var defs []Definition

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var def Definition
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if def.IsZero() {
			continue
		}

		if err := Validate(def); err != nil {
			return nil, fmt.Errorf("validate definition %q: %w", def.Name(), err)
		}
		defs = append(defs, def)
	}

	return defs, nil
}

// ParseDir parses all definitions from a directory, including subdirectories.
func ParseDir(dir string) ([]Definition, error) {
	var defs []Definition

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			sub, err := ParseDir(path)
			if err != nil {
				return nil, err
			}
			defs = append(defs, sub...)
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		fileDefs, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, fileDefs...)
	}

	return defs, nil
}

// ParsePaths parses every file or directory in paths.
func ParsePaths(paths []string) ([]Definition, error) {
	var defs []Definition
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		var found []Definition
		if info.IsDir() {
			found, err = ParseDir(path)
		} else {
			found, err = ParseFile(path)
		}
		if err != nil {
			return nil, err
		}
		defs = append(defs, found...)
	}
	return defs, nil
}

// Validate validates a single definition. References to other
// definitions are resolved later by the registry.
func Validate(def Definition) error {
	var errs []string

	switch {
	case def.Record != "" && def.List != "":
		errs = append(errs, "definition cannot be both a record and a list")
	case def.Name() == "":
		errs = append(errs, "record or list name is required")
	case !isValidIdentifier(def.Name()):
		errs = append(errs, fmt.Sprintf("name %q is not a valid identifier", def.Name()))
	}

	if def.IsList() {
		if def.Element == "" {
			errs = append(errs, "list element is required")
		} else if !isValidIdentifier(def.Element) {
			errs = append(errs, fmt.Sprintf("element %q is not a valid identifier", def.Element))
		}
		if len(def.Attributes) > 0 {
			errs = append(errs, "list cannot declare attributes")
		}
	} else {
		if def.Element != "" {
			errs = append(errs, "record cannot declare an element")
		}
		if len(def.Attributes) == 0 {
			errs = append(errs, "record must have at least one attribute")
		}
	}

	seen := make(map[string]bool, len(def.Attributes))
	for _, a := range def.Attributes {
		if seen[a.Name] {
			errs = append(errs, fmt.Sprintf("attribute %q declared twice", a.Name))
		}
		seen[a.Name] = true

		if !isValidIdentifier(a.Name) {
			errs = append(errs, fmt.Sprintf("attribute name %q is not a valid identifier", a.Name))
		}

		if err := validateAttribute(a); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validateAttribute validates a single attribute descriptor.
func validateAttribute(a Attribute) error {
	if a.Type == "" {
		return fmt.Errorf("attribute %q: undefined $type", a.Name)
	}

	if !a.IsPrimitive() {
		if !isValidIdentifier(a.Type) {
			return fmt.Errorf("attribute %q: unknown type %q", a.Name, a.Type)
		}
		if a.Default != nil || a.Generate != "" {
			return fmt.Errorf("attribute %q: type %q cannot have a default", a.Name, a.Type)
		}
		return nil
	}

	if a.Generate != "" {
		produces, ok := Generators[a.Generate]
		if !ok {
			return fmt.Errorf("attribute %q: unknown generator %q", a.Name, a.Generate)
		}
		if produces != a.Type {
			return fmt.Errorf("attribute %q: generator %q produces %s, not %s", a.Name, a.Generate, produces, a.Type)
		}
		if a.Default != nil {
			return fmt.Errorf("attribute %q: $default and $generate are exclusive", a.Name)
		}
	}

	if a.Default != nil {
		return validateDefault(a)
	}
	return nil
}

// validateDefault validates that a default value matches the type tag.
func validateDefault(a Attribute) error {
	switch a.Type {
	case TypeBool:
		if _, ok := a.Default.(bool); !ok {
			return fmt.Errorf("attribute %q: default must be a boolean", a.Name)
		}
	case TypeString:
		if _, ok := a.Default.(string); !ok {
			return fmt.Errorf("attribute %q: default must be a string", a.Name)
		}
	case TypeNumber:
		switch a.Default.(type) {
		case int, int64, uint64, float64:
		default:
			return fmt.Errorf("attribute %q: default must be a number", a.Name)
		}
	case TypeDate:
		switch d := a.Default.(type) {
		case time.Time:
		case string:
			if _, err := ParseDate(d); err != nil {
				return fmt.Errorf("attribute %q: %w", a.Name, err)
			}
		default:
			return fmt.Errorf("attribute %q: default must be a date", a.Name)
		}
	case TypeArray:
		if _, ok := a.Default.([]any); !ok {
			return fmt.Errorf("attribute %q: default must be a sequence", a.Name)
		}
	}
	return nil
}

// isValidIdentifier checks if a string is a valid identifier.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if i == 0 {
			if !isLetter(c) && c != '_' {
				return false
			}
		} else {
			if !isLetter(c) && !isDigit(c) && c != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}
