package model

import (
	"testing"
)

// Schemas shared by the tests in this package.
var (
	subSchema = MustSchema("Sub", []Attribute{
		{Name: "id", Type: String(), PrimaryKey: true},
		{Name: "title", Type: String()},
	}, WithConverters(map[string]Converter{
		"c1": {
			From: func(data any, target *Record) error {
				m := data.(map[string]any)
				return target.Set(map[string]any{"id": m["myId"], "title": m["myTitle"]})
			},
		},
		"c2": {
			From: func(data any, target *Record) error {
				m := data.(map[string]any)
				return target.Set(map[string]any{
					"id":    m["id"].(string) + m["name"].(string),
					"title": m["title"],
				})
			},
			To: func(attrs map[string]any) (any, error) {
				return attrs["id"].(string) + ":" + attrs["title"].(string), nil
			},
		},
	}))

	subListSchema = MustListSchema("SubList", subSchema)

	parentSchema = MustSchema("Parent", []Attribute{
		{Name: "id", Type: String(), PrimaryKey: true, Default: "default"},
		{Name: "sub", Type: RecordOf(subSchema)},
	})

	parentWithListSchema = MustSchema("ParentWithList", []Attribute{
		{Name: "id", Type: String(), PrimaryKey: true, Default: "default"},
		{Name: "subs", Type: ListOf(subListSchema)},
	})

	sub1Schema = MustSchema("Sub1", []Attribute{
		{Name: "id", Type: String(), PrimaryKey: true},
		{Name: "title", Type: String()},
		{Name: "name", Type: String()},
	})

	sub1ListSchema = MustListSchema("Sub1List", sub1Schema)

	parent1Schema = MustSchema("Parent1", []Attribute{
		{Name: "id", Type: String(), PrimaryKey: true, Default: "default"},
		{Name: "subs", Type: ListOf(sub1ListSchema)},
	})
)

func mustSet(t *testing.T, r *Record, data map[string]any) {
	t.Helper()
	if err := r.Set(data); err != nil {
		t.Fatalf("Set(%v) error: %v", data, err)
	}
}

func mustAppend(t *testing.T, l *List, r *Record) {
	t.Helper()
	if err := l.Append(r); err != nil {
		t.Fatalf("Append error: %v", err)
	}
}

func newSub(t *testing.T, id, title string) *Record {
	t.Helper()
	r := subSchema.New()
	mustSet(t, r, map[string]any{"id": id, "title": title})
	return r
}

func newSub1(t *testing.T, id, title, name string) *Record {
	t.Helper()
	r := sub1Schema.New()
	mustSet(t, r, map[string]any{"id": id, "title": title, "name": name})
	return r
}
