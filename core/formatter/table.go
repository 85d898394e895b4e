package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/artpar/modeldiff/core/model"
)

// TableFormatter formats output as aligned text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatDiff writes one row per flattened change.
func (f *TableFormatter) FormatDiff(w io.Writer, res Result, opts FormatOptions) error {
	changes := res.Changes()
	if len(changes) == 0 {
		fmt.Fprintln(w, "No changes.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !opts.NoHeader {
		fmt.Fprintln(tw, "OP\tKEY\tATTRIBUTE\tVALUE")
	}

	for _, c := range changes {
		path := c.Path
		if path == "" {
			path = "-"
		}
		value := "-"
		if c.Op != model.OpDelete {
			value = f.formatValue(c.Value, opts.MaxWidth)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Op, c.Key, path, value)
	}

	return tw.Flush()
}

// FormatSchemas writes one row per schema.
func (f *TableFormatter) FormatSchemas(w io.Writer, schemas []SchemaInfo, opts FormatOptions) error {
	if len(schemas) == 0 {
		fmt.Fprintln(w, "No schemas found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !opts.NoHeader {
		fmt.Fprintln(tw, "NAME\tKIND\tPRIMARY KEY\tATTRIBUTES")
	}

	for _, s := range schemas {
		attrs := strings.Join(s.Attributes, ", ")
		if s.Kind == "list" {
			attrs = "[]" + s.Element
		}
		pk := strings.Join(s.PrimaryKey, ", ")
		if pk == "" {
			pk = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Kind, pk, f.truncate(attrs, opts.MaxWidth))
	}

	return tw.Flush()
}

// FormatError formats an error message.
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

// formatValue formats a value for display.
func (f *TableFormatter) formatValue(val any, maxWidth int) string {
	if val == nil {
		return "null"
	}

	var str string
	switch v := val.(type) {
	case string:
		str = fmt.Sprintf("%q", v)
	case bool:
		str = fmt.Sprintf("%t", v)
	case time.Time:
		str = v.Format(time.RFC3339)
	case float64:
		// Check if it's a whole number
		if v == float64(int64(v)) {
			str = fmt.Sprintf("%d", int64(v))
		} else {
			str = fmt.Sprintf("%g", v)
		}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			str = fmt.Sprint(v)
		} else {
			str = string(b)
		}
	}

	return f.truncate(str, maxWidth)
}

func (f *TableFormatter) truncate(str string, maxWidth int) string {
	if maxWidth > 3 && len(str) > maxWidth {
		return str[:maxWidth-3] + "..."
	}
	return str
}

func init() {
	Register(NewTableFormatter())
}
