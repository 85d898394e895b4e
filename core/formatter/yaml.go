package formatter

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// FormatDiff writes the edit script as YAML.
func (f *YAMLFormatter) FormatDiff(w io.Writer, res Result, opts FormatOptions) error {
	output := map[string]any{
		"schema":  res.Schema,
		"changed": res.Changed(),
		"diff":    res.Diff(),
	}
	return f.encode(w, output)
}

// FormatSchemas writes schema summaries as YAML.
func (f *YAMLFormatter) FormatSchemas(w io.Writer, schemas []SchemaInfo, opts FormatOptions) error {
	output := map[string]any{
		"count": len(schemas),
		"data":  schemas,
	}
	return f.encode(w, output)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output)
}

// encode writes YAML to the writer.
func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewYAMLFormatter()); err != nil {
		fmt.Printf("failed to register yaml formatter: %v\n", err)
	}
}
