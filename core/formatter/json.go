package formatter

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatDiff writes the edit script as JSON.
func (f *JSONFormatter) FormatDiff(w io.Writer, res Result, opts FormatOptions) error {
	output := map[string]any{
		"schema":  res.Schema,
		"changed": res.Changed(),
		"diff":    res.Diff(),
	}
	return f.encode(w, output, opts.Compact)
}

// FormatSchemas writes schema summaries as JSON.
func (f *JSONFormatter) FormatSchemas(w io.Writer, schemas []SchemaInfo, opts FormatOptions) error {
	output := map[string]any{
		"count": len(schemas),
		"data":  schemas,
	}
	return f.encode(w, output, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output, false)
}

// encode writes JSON to the writer.
func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewJSONFormatter()); err != nil {
		fmt.Printf("failed to register json formatter: %v\n", err)
	}
}
