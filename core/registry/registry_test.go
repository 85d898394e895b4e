package registry

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/artpar/modeldiff/core/model"
	"github.com/artpar/modeldiff/core/schema"
)

func mustParse(t *testing.T, src string) []schema.Definition {
	t.Helper()
	defs, err := schema.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return defs
}

const orderSchemas = `
record: Order
attributes:
  id:    { $type: string, $pk: true }
  items: { $type: Items }
  owner: { $type: Person }
---
list: Items
element: Item
---
record: Item
attributes:
  id:      { $type: string, $pk: true, $generate: uuid }
  title:   { $type: string, $default: "" }
  price:   { $type: number, $default: 0 }
  created: { $type: date, $generate: now }
  shipped: { $type: date, $default: 2024-01-02 }
---
record: Person
attributes:
  name: { $type: string, $pk: true }
`

func TestNew(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.records == nil || r.lists == nil || r.defs == nil {
		t.Error("maps not initialized")
	}
	if len(r.Names()) != 0 {
		t.Errorf("Names() = %v, want empty", r.Names())
	}
}

func TestRegistry_Compile(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	r := New(
		WithGenerator(schema.GenerateUUID, func() any { return "generated" }),
		WithGenerator(schema.GenerateNow, func() any { return fixed }),
	)

	if err := r.Compile(mustParse(t, orderSchemas)); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	want := []string{"Item", "Items", "Order", "Person"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	order, ok := r.Record("Order")
	if !ok {
		t.Fatal("Record(Order) not found")
	}
	items, ok := r.List("Items")
	if !ok {
		t.Fatal("List(Items) not found")
	}
	item, _ := r.Record("Item")

	if items.Element() != item {
		t.Error("Items element is not the compiled Item schema")
	}
	attr, _ := order.Attribute("items")
	if attr.Type.Kind() != model.KindList || attr.Type.ListSchema() != items {
		t.Errorf("Order.items type = %v, want list Items", attr.Type)
	}
	if got := order.PrimaryKey(); !reflect.DeepEqual(got, []string{"id"}) {
		t.Errorf("Order primary key = %v, want [id]", got)
	}

	rec := item.New()
	if id, _ := rec.Get("id"); id != "generated" {
		t.Errorf("id default = %v, want generated", id)
	}
	if created, _ := rec.Get("created"); created != fixed {
		t.Errorf("created default = %v, want %v", created, fixed)
	}
	shipped, _ := rec.Get("shipped")
	if d, ok := shipped.(time.Time); !ok || !d.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("shipped default = %#v, want 2024-01-02", shipped)
	}
	if title, _ := rec.Get("title"); title != "" {
		t.Errorf("title default = %#v, want empty string", title)
	}

	def, ok := r.Definition("Order")
	if !ok || len(def.Attributes) != 3 {
		t.Errorf("Definition(Order) = %+v, %v", def, ok)
	}
}

func TestRegistry_CompiledSchemasDiff(t *testing.T) {
	r := New()
	if err := r.Compile(mustParse(t, orderSchemas)); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	person, _ := r.Record("Person")

	a := person.New()
	if err := a.Set(map[string]any{"name": "ann"}); err != nil {
		t.Fatal(err)
	}

	d, err := a.Diff(nil)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if !d.IsDeleted() {
		t.Error("Diff(nil) on compiled schema should be a tombstone")
	}
}

func TestRegistry_CompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "unknown reference",
			src:     "record: A\nattributes:\n  b: { $type: B }\n",
			wantErr: `"A" references unknown type "B"`,
		},
		{
			name:    "duplicate",
			src:     "record: A\nattributes:\n  id: { $type: string }\n---\nrecord: A\nattributes:\n  id: { $type: string }\n",
			wantErr: "defined twice",
		},
		{
			name:    "self cycle",
			src:     "record: A\nattributes:\n  a: { $type: A }\n",
			wantErr: "cycle: A -> A",
		},
		{
			name:    "indirect cycle",
			src:     "record: A\nattributes:\n  bs: { $type: Bs }\n---\nlist: Bs\nelement: B\n---\nrecord: B\nattributes:\n  a: { $type: A }\n",
			wantErr: "cycle:",
		},
		{
			name:    "list of lists",
			src:     "record: A\nattributes:\n  id: { $type: string }\n---\nlist: As\nelement: A\n---\nlist: Ass\nelement: As\n",
			wantErr: "is not a record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			err := r.Compile(mustParse(t, tt.src))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
			if len(r.Names()) != 0 {
				t.Errorf("failed compile registered %v", r.Names())
			}
		})
	}
}

func TestRegistry_CompileAgainstExisting(t *testing.T) {
	r := New()
	if err := r.Compile(mustParse(t, "record: A\nattributes:\n  id: { $type: string }\n")); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if err := r.Compile(mustParse(t, "list: As\nelement: A\n")); err != nil {
		t.Fatalf("Compile() referencing registered schema error = %v", err)
	}

	err := r.Compile(mustParse(t, "record: A\nattributes:\n  id: { $type: string }\n"))
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("error = %v, want *CompileError", err)
	}
	if !strings.Contains(compileErr.Error(), "already registered") {
		t.Errorf("error = %v, want already registered", compileErr)
	}
}

func TestRegistry_Register(t *testing.T) {
	r := New()
	s := model.MustSchema("Tag", []model.Attribute{{Name: "id", Type: model.String(), PrimaryKey: true}})

	if err := r.Register(s); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(s); err == nil {
		t.Error("expected error registering twice")
	}
	if err := r.RegisterList(model.MustListSchema("Tag", s)); err == nil {
		t.Error("expected error registering list with taken name")
	}
	if err := r.RegisterList(model.MustListSchema("Tags", s)); err != nil {
		t.Fatalf("RegisterList() error = %v", err)
	}

	if err := r.Compile(mustParse(t, "record: Post\nattributes:\n  tags: { $type: Tags }\n")); err != nil {
		t.Fatalf("Compile() referencing registered list error = %v", err)
	}
	post, _ := r.Record("Post")
	attr, _ := post.Attribute("tags")
	if ls, _ := r.List("Tags"); attr.Type.ListSchema() != ls {
		t.Error("Post.tags does not use the registered list schema")
	}
}
