// Package registry compiles declarative schema definitions into model
// schemas and provides lookup by name.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/artpar/modeldiff/core/model"
	"github.com/artpar/modeldiff/core/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Generator produces a fresh default value each time a record is created.
type Generator func() any

// Clock supplies the value of "$generate: now" defaults.
type Clock interface {
	Now() time.Time
}

// IDSource supplies the value of "$generate: uuid" defaults.
type IDSource interface {
	New() string
}

// Registry holds compiled record and list schemas.
type Registry struct {
	mu sync.RWMutex

	// record schemas by name
	records map[string]*model.Schema

	// list schemas by name
	lists map[string]*model.ListSchema

	// source definitions for compiled schemas
	defs map[string]schema.Definition

	generators map[string]Generator
	logger     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithGenerator overrides or adds a default generator.
func WithGenerator(name string, g Generator) Option {
	return func(r *Registry) {
		r.generators[name] = g
	}
}

// WithClock sets the time source for "now" defaults.
func WithClock(c Clock) Option {
	return WithGenerator(schema.GenerateNow, func() any { return c.Now() })
}

// WithIDSource sets the identifier source for "uuid" defaults.
func WithIDSource(src IDSource) Option {
	return WithGenerator(schema.GenerateUUID, func() any { return src.New() })
}

// New creates a new registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		records: make(map[string]*model.Schema),
		lists:   make(map[string]*model.ListSchema),
		defs:    make(map[string]schema.Definition),
		generators: map[string]Generator{
			schema.GenerateUUID: func() any { return uuid.NewString() },
			schema.GenerateNow:  func() any { return time.Now().UTC() },
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile compiles defs and registers the results. Definitions may
// reference each other in any order and may reference schemas already in
// the registry. Either every definition is registered or none is.
func (r *Registry) Compile(defs []schema.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byName := make(map[string]schema.Definition, len(defs))
	var problems []string
	for _, def := range defs {
		name := def.Name()
		if _, dup := byName[name]; dup {
			problems = append(problems, fmt.Sprintf("%q defined twice", name))
			continue
		}
		if r.exists(name) {
			problems = append(problems, fmt.Sprintf("%q already registered", name))
			continue
		}
		byName[name] = def
	}
	if len(problems) > 0 {
		return &CompileError{Problems: problems}
	}

	order, problems := r.resolve(byName)
	if len(problems) > 0 {
		return &CompileError{Problems: problems}
	}

	records := make(map[string]*model.Schema)
	lists := make(map[string]*model.ListSchema)
	lookupRecord := func(name string) *model.Schema {
		if s, ok := records[name]; ok {
			return s
		}
		return r.records[name]
	}
	lookupList := func(name string) *model.ListSchema {
		if ls, ok := lists[name]; ok {
			return ls
		}
		return r.lists[name]
	}

	for _, name := range order {
		def := byName[name]

		if def.IsList() {
			element := lookupRecord(def.Element)
			if element == nil {
				return &CompileError{Problems: []string{fmt.Sprintf("list %q: element %q is not a record", name, def.Element)}}
			}
			ls, err := model.NewListSchema(name, element)
			if err != nil {
				return fmt.Errorf("compile list %q: %w", name, err)
			}
			lists[name] = ls
			r.logger.Debug().Str("list", name).Str("element", def.Element).Msg("compiled list schema")
			continue
		}

		attrs := make([]model.Attribute, 0, len(def.Attributes))
		for _, a := range def.Attributes {
			attr, err := r.attribute(a, lookupRecord, lookupList)
			if err != nil {
				return fmt.Errorf("compile record %q: %w", name, err)
			}
			attrs = append(attrs, attr)
		}

		s, err := model.NewSchema(name, attrs)
		if err != nil {
			return fmt.Errorf("compile record %q: %w", name, err)
		}
		records[name] = s
		r.logger.Debug().Str("record", name).Int("attributes", len(attrs)).Msg("compiled record schema")
	}

	for name, s := range records {
		r.records[name] = s
		r.defs[name] = byName[name]
	}
	for name, ls := range lists {
		r.lists[name] = ls
		r.defs[name] = byName[name]
	}

	r.logger.Info().
		Int("records", len(records)).
		Int("lists", len(lists)).
		Msg("schemas compiled")

	return nil
}

// attribute converts a declarative attribute to a model attribute.
func (r *Registry) attribute(a schema.Attribute, record func(string) *model.Schema, list func(string) *model.ListSchema) (model.Attribute, error) {
	attr := model.Attribute{Name: a.Name, PrimaryKey: a.PK}

	if !a.IsPrimitive() {
		if s := record(a.Type); s != nil {
			attr.Type = model.RecordOf(s)
		} else if ls := list(a.Type); ls != nil {
			attr.Type = model.ListOf(ls)
		} else {
			return attr, fmt.Errorf("attribute %q: unknown type %q", a.Name, a.Type)
		}
		return attr, nil
	}

	t, _ := model.Primitive(a.Type)
	attr.Type = t

	if a.Generate != "" {
		gen, ok := r.generators[a.Generate]
		if !ok {
			return attr, fmt.Errorf("attribute %q: unknown generator %q", a.Name, a.Generate)
		}
		attr.DefaultFunc = gen
		return attr, nil
	}

	def, err := defaultValue(a)
	if err != nil {
		return attr, err
	}
	attr.Default = def
	return attr, nil
}

// defaultValue converts a YAML default to the model representation.
func defaultValue(a schema.Attribute) (any, error) {
	if a.Type != schema.TypeDate {
		return a.Default, nil
	}

	switch d := a.Default.(type) {
	case string:
		t, err := schema.ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.Name, err)
		}
		return t, nil
	default:
		return d, nil
	}
}

// resolve orders definitions so that every definition follows the ones
// it references. Unknown references and cycles are reported as problems.
func (r *Registry) resolve(byName map[string]schema.Definition) ([]string, []string) {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(byName))
	var order, problems []string
	var path []string

	var visit func(name string)
	visit = func(name string) {
		switch state[name] {
		case done:
			return
		case visiting:
			start := 0
			for i, p := range path {
				if p == name {
					start = i
				}
			}
			cycle := append(append([]string{}, path[start:]...), name)
			problems = append(problems, fmt.Sprintf("cycle: %s", strings.Join(cycle, " -> ")))
			return
		}

		state[name] = visiting
		path = append(path, name)

		def := byName[name]
		for _, ref := range def.References() {
			if _, local := byName[ref]; local {
				visit(ref)
				continue
			}
			if !r.exists(ref) {
				problems = append(problems, fmt.Sprintf("%q references unknown type %q", name, ref))
			}
		}

		path = path[:len(path)-1]
		state[name] = done
		order = append(order, name)
	}

	for _, name := range names {
		visit(name)
	}
	return order, problems
}

func (r *Registry) exists(name string) bool {
	_, isRecord := r.records[name]
	_, isList := r.lists[name]
	return isRecord || isList
}

// Register adds a schema built in code, such as one with converters or a
// custom diff function.
func (r *Registry) Register(s *model.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(s.Name()) {
		return fmt.Errorf("schema %q already registered", s.Name())
	}
	r.records[s.Name()] = s
	return nil
}

// RegisterList adds a list schema built in code.
func (r *Registry) RegisterList(ls *model.ListSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(ls.Name()) {
		return fmt.Errorf("schema %q already registered", ls.Name())
	}
	r.lists[ls.Name()] = ls
	return nil
}

// Record returns a record schema by name.
func (r *Registry) Record(name string) (*model.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.records[name]
	return s, ok
}

// List returns a list schema by name.
func (r *Registry) List(name string) (*model.ListSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ls, ok := r.lists[name]
	return ls, ok
}

// Definition returns the declaration a schema was compiled from.
func (r *Registry) Definition(name string) (schema.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered schema names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.records)+len(r.lists))
	for name := range r.records {
		names = append(names, name)
	}
	for name := range r.lists {
		names = append(names, name)
	}

	// Sort by name for consistent ordering
	sort.Strings(names)
	return names
}

// CompileError lists the problems that prevented compilation.
type CompileError struct {
	Problems []string
}

// Error returns the compile error message.
func (e *CompileError) Error() string {
	return fmt.Sprintf("schema compile errors:\n  - %s", strings.Join(e.Problems, "\n  - "))
}
