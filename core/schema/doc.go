/*
Package schema defines the declarative YAML form of record and list types.

A schema file holds one or more definitions separated by "---":

	record: Item
	attributes:
	  id:      { $type: string, $pk: true, $generate: uuid }
	  title:   { $type: string, $default: "" }
	  price:   { $type: number, $default: 0 }
	  created: { $type: date, $generate: now }
	---
	list: Items
	element: Item
	---
	record: Order
	attributes:
	  id:    { $type: string, $pk: true }
	  items: { $type: Items }

# Attribute Types

An attribute's $type is either a primitive tag or the name of another
definition in the same set:

  - bool:   Boolean value
  - string: Text value
  - number: Integer or floating point value
  - date:   Timestamp, written as RFC 3339 or YYYY-MM-DD
  - array:  Sequence of arbitrary values

Attribute order follows the file. Names of attributes and definitions must be
identifiers. Only primitive attributes may declare $default or $generate.

Parse and ParseFile validate each definition in isolation. Unknown type
references and cycles are reported when the registry compiles the set.
*/
package schema
