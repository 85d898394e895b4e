/*
Package model implements schema-typed records and ordered record lists
with structural diffing.

# Schemas

A Schema declares an ordered set of typed attributes:

	comment := model.MustSchema("Comment", []model.Attribute{
		{Name: "id", Type: model.String(), PrimaryKey: true},
		{Name: "body", Type: model.String(), Default: ""},
	})
	comments := model.MustListSchema("Comments", comment)

	post := model.MustSchema("Post", []model.Attribute{
		{Name: "id", Type: model.String(), PrimaryKey: true, Default: "default"},
		{Name: "published", Type: model.Date()},
		{Name: "comments", Type: model.ListOf(comments)},
	})

Types form a closed set: bool, string, number, date and array primitives,
plus RecordOf and ListOf for nesting. Nested values are accepted only when
they were created from the exact declared schema.

# Records and Lists

Schema.New and ListSchema.New create mutable instances. Set and the List
mutators type-check every write. Immutable freezes an instance and
everything nested inside it; frozen instances reject writes and can be
shared freely. Copy shares frozen instances and deep-copies mutable ones.

# Diff

Record.Diff returns an edit script: the primary key plus the attributes
that changed, or nil when nothing did. Diffing against nil returns a
frozen tombstone whose ToJSON carries "$op": "delete".

List.Diff reconciles elements by primary key rather than by position.
Matched elements contribute their edit script, new elements are included
whole and missing elements become tombstones.

The package is not safe for concurrent mutation.
*/
package model
