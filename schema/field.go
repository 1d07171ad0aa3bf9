// Package schema implements rack's entry schema registry and codec (spec
// components B and C): registering user record types by a unique type
// tag, and converting between an entry instance and its JSON-shaped wire
// form.
package schema

import (
	"strings"

	"github.com/raxodb/rack/value"
)

// Kind is a field's declared semantic type (spec.md §3.1).
type Kind int

// The declared field kinds.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
	KindNull
)

// fkPrefix is the literal prefix that marks a field as a foreign-key field
// (spec.md §3.1).
const fkPrefix = "fk_"

// Field describes one declared field of an entry type: its name, kind,
// and optional default. Fields are built with the fluent constructors
// below (String, Int, ...), mirroring the teacher's field.String/.Optional
// builder style.
type Field struct {
	Name       string
	Kind       Kind
	optional   bool
	hasDefault bool
	def        any
}

// Optional marks the field as not required: a decode that omits it falls
// back to its Default (or the kind's zero value if none was set).
func (f *Field) Optional() *Field {
	f.optional = true
	return f
}

// Default sets the field's default value, used when the field is absent
// from a decoded map. Setting a default implies Optional.
func (f *Field) Default(v any) *Field {
	f.hasDefault = true
	f.def = v
	f.optional = true
	return f
}

// IsFK reports whether this field is a foreign-key field (its name begins
// with "fk_").
func (f *Field) IsFK() bool { return strings.HasPrefix(f.Name, fkPrefix) }

// ViewName returns the projected view name for an FK field (the name with
// its fk_ prefix stripped), or "" if this is not an FK field.
func (f *Field) ViewName() string {
	if !f.IsFK() {
		return ""
	}
	return strings.TrimPrefix(f.Name, fkPrefix)
}

// String declares a string field.
func String(name string) *Field { return &Field{Name: name, Kind: KindString} }

// Int declares an integer field.
func Int(name string) *Field { return &Field{Name: name, Kind: KindInt} }

// Float declares a floating-point field.
func Float(name string) *Field { return &Field{Name: name, Kind: KindFloat} }

// Bool declares a boolean field.
func Bool(name string) *Field { return &Field{Name: name, Kind: KindBool} }

// List declares a list field.
func List(name string) *Field { return &Field{Name: name, Kind: KindList} }

// Map declares a string-keyed mapping field.
func Map(name string) *Field { return &Field{Name: name, Kind: KindMap} }

// Any declares a field with no kind constraint, used for Tag.data (spec.md
// §3.2: "data (any JSON value)").
func Any(name string) *Field { return &Field{Name: name, Kind: KindNull} }

// FK declares a foreign-key field; the "fk_" prefix is added to name when
// it does not already carry it.
// Value is stored verbatim (a key list, a single key, or a query string)
// and resolved lazily on read by package fk.
func FK(name string) *Field {
	if !strings.HasPrefix(name, fkPrefix) {
		name = fkPrefix + name
	}
	return &Field{Name: name, Kind: KindNull, optional: true}
}

// matches reports whether v is an acceptable value for f's declared kind.
// KindNull (Any/FK fields) accepts anything.
func (f *Field) matches(v any) bool {
	if v == nil {
		return true
	}
	switch f.Kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		switch v.(type) {
		case int, int64, float64:
			return true
		}
		return false
	case KindFloat:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindList:
		_, ok := v.([]any)
		return ok
	case KindMap:
		_, ok := v.(map[string]any)
		return ok
	case KindNull:
		return true
	}
	return true
}

// zeroValue returns this kind's zero-ish value, used when an optional
// field is both absent and defaultless.
func (k Kind) zeroValue() any {
	switch k {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindList:
		return []any{}
	case KindMap:
		return map[string]any{}
	default:
		return nil
	}
}

// valueLiteral converts a decoded field value to a query-literal Value,
// used by the evaluator (package query) when a bare identifier resolves
// to a field.
func valueLiteral(v any) value.Value {
	return value.FromJSON(v)
}
