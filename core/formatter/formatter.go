// Package formatter provides a pluggable output formatting system.
// Formatters render diff results and schema summaries as table, json or yaml.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/artpar/modeldiff/core/model"
)

// Formatter converts diff results to a specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "table", "json", "yaml").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FormatDiff formats the edit script of one comparison.
	FormatDiff(w io.Writer, res Result, opts FormatOptions) error

	// FormatSchemas formats a summary of compiled schemas.
	FormatSchemas(w io.Writer, schemas []SchemaInfo, opts FormatOptions) error

	// FormatError formats an error.
	FormatError(w io.Writer, err error) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// NoHeader disables header row for tabular formats.
	NoHeader bool

	// Compact minimizes whitespace (for json).
	Compact bool

	// MaxWidth truncates long values (0 = no limit).
	MaxWidth int
}

// Result is the outcome of diffing two documents of one schema.
// At most one of Record and List is set; both are nil when nothing changed.
type Result struct {
	Schema string
	Record *model.Record
	List   *model.List
}

// Changed reports whether the comparison found differences.
func (r Result) Changed() bool {
	return r.Record != nil || r.List != nil
}

// Diff returns the edit script as plain data, or nil.
func (r Result) Diff() any {
	switch {
	case r.Record != nil:
		return r.Record.ToJSON()
	case r.List != nil:
		return r.List.ToJSON()
	default:
		return nil
	}
}

// Changes returns the flattened edit script.
func (r Result) Changes() []model.Change {
	switch {
	case r.Record != nil:
		return r.Record.Changes()
	case r.List != nil:
		return r.List.Changes()
	default:
		return nil
	}
}

// SchemaInfo summarizes a compiled schema.
type SchemaInfo struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`
	PrimaryKey []string `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Element    string   `json:"element,omitempty" yaml:"element,omitempty"`
}

// RecordInfo summarizes a record schema.
func RecordInfo(s *model.Schema) SchemaInfo {
	return SchemaInfo{
		Name:       s.Name(),
		Kind:       "record",
		PrimaryKey: s.PrimaryKey(),
		Attributes: s.AttributeNames(),
	}
}

// ListInfo summarizes a list schema.
func ListInfo(ls *model.ListSchema) SchemaInfo {
	return SchemaInfo{
		Name:    ls.Name(),
		Kind:    "list",
		Element: ls.Element().Name(),
	}
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	defaultFmt string
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
		defaultFmt: "table",
	}
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}

	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// Default returns the default formatter.
func (r *Registry) Default() Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[r.defaultFmt]
	if !ok {
		// Fallback to first available
		for _, name := range r.sortedNames() {
			return r.formatters[name]
		}
		return nil
	}
	return f
}

// SetDefault sets the default formatter.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[name]; !exists {
		return fmt.Errorf("formatter %q not registered", name)
	}

	r.defaultFmt = name
	return nil
}

// List returns all registered formatter names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames()
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(f Formatter) error {
	return DefaultRegistry.Register(f)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// Default returns the default formatter from the default registry.
func Default() Formatter {
	return DefaultRegistry.Default()
}

// List returns all formatter names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}
