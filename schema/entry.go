package schema

import (
	"fmt"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/value"
)

// Entry is a stored record: its type, identity, and declared field values
// (spec.md §3.1). Per spec.md §9's "Dataclass-as-dict" note, rack does not
// generate a distinct Go struct per registered type; instead an Entry
// carries its fields in a map and callers iterate them in descriptor order
// via FieldsOf, with the field descriptor table (Schema.Fields) built once
// at Register time.
//
// Entry never stores a foreign key's projected view (spec.md §3.1: "the
// projected view is always materialized on read, never serialized");
// views are computed by package fk and cached separately from Fields.
type Entry struct {
	Type   string
	Ident  value.Ident
	Fields map[string]any
}

// New constructs an Entry of the given type with the given identity and
// field values. The caller is responsible for the values matching the
// registered schema; Encode validates that before anything is persisted.
func New(typeName string, id value.Ident, fields map[string]any) *Entry {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Entry{Type: typeName, Ident: id, Fields: fields}
}

// CanonicalKey returns the entry's canonical key: "{type}_{id}" for
// numeric-id entries, "tag_{name}" for tags (spec.md §3.1, §3.2). It fails
// if Ident is still the Auto (UNIQUE) sentinel — callers must assign a
// concrete id first (the store façade does this during Put).
func (e *Entry) CanonicalKey() (string, error) {
	if value.IsAuto(e.Ident) {
		return "", rack.NewKeyMismatchError("UNIQUE", "entry id has not been assigned yet")
	}
	return fmt.Sprintf("%s_%s", e.Type, e.Ident.String()), nil
}

// FieldValue is one (name, value) pair in a Schema's declared order.
type FieldValue struct {
	Name  string
	Value any
}

// FieldsOf returns e's declared field values (including unresolved FK
// fields, but never projected views) in the schema's registration order —
// the "uniform field iterator capability" spec.md §9 calls for in place of
// dynamic attribute injection.
func FieldsOf(sch *Schema, e *Entry) []FieldValue {
	out := make([]FieldValue, 0, len(sch.Fields))
	for _, f := range sch.Fields {
		out = append(out, FieldValue{Name: f.Name, Value: e.Fields[f.Name]})
	}
	return out
}

// FieldLiteral resolves field name on e to its current value as a query
// Value, or ok=false if name is not a declared field of sch. Used by the
// query evaluator to resolve bare identifiers against an entry (spec.md
// §4.4).
func FieldLiteral(sch *Schema, e *Entry, name string) (value.Value, bool) {
	if _, ok := sch.FieldByName(name); !ok {
		return value.Value{}, false
	}
	return valueLiteral(e.Fields[name]), true
}

// NewTag constructs a Tag entry (spec.md §3.2): type "tag", keyed by name,
// with a data payload and an optional fk_data reference (a key list, a
// single key, or a query string).
func NewTag(name string, data any, fkData any) *Entry {
	return New(TagType, value.NameIdent(name), map[string]any{
		"data":    data,
		"fk_data": fkData,
	})
}
