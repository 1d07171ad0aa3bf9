// Package value implements the tagged scalar/list value used by rack's
// query literals and field-value comparisons (spec component A).
package value

import (
	"fmt"
)

// Kind discriminates the variant held by a Value.
type Kind int

// The Value variants. A Value is homogeneous in the sense that exactly one
// of these kinds is active at a time; Lists may mix kinds element-wise,
// the evaluator treats that as the caller's concern.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
)

// Value is a tagged union: Integer | Float | Bool | String | List(Value).
// It is the literal type produced by the query parser and the type field
// accesses resolve to during evaluation (see package query).
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
}

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list Value over the given elements.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null Value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns v's bool payload; only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Int returns v's integer payload; only meaningful when Kind() == KindInt.
func (v Value) Int() int64 { return v.i }

// Float returns v's float payload. Valid for both KindFloat and KindInt,
// so numeric comparisons can mix the two without a separate coercion step.
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// String returns v's string payload for KindString; every other kind is
// rendered as text ("nil", "True"/"False", the number, or a bracketed list).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "nil"
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindList:
		out := "["
		for i, e := range v.list {
			if i > 0 {
				out += ", "
			}
			out += e.Quoted()
		}
		return out + "]"
	}
	return ""
}

// Quoted renders v as a query literal: strings are quoted, booleans render
// as True/False, and a list renders bracketed with its elements quoted.
// Statement does not use it on whole lists: it joins list arguments
// element by element, without brackets.
func (v Value) Quoted() string {
	if v.kind == KindString {
		return fmt.Sprintf("%q", v.s)
	}
	return v.String()
}

// List returns v's element slice; only meaningful when Kind() == KindList.
func (v Value) List() []Value { return v.list }

// IsNumeric reports whether v is an int or float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Equal reports structural equality between v and other, per spec.md
// §4.3's `==`/`!=` semantics. Int and Float compare numerically across
// kinds (1 == 1.0).
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.Float() == b.Float()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Less reports whether a orders strictly before b under the `<`/`<=`/
// `>`/`>=` operators: numeric ordering for numbers, lexical ordering for
// strings. Comparing incompatible kinds is a caller error (package query
// surfaces it as a QueryTypeError before calling Less).
func Less(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.Float() < b.Float()
	}
	if a.kind == KindString && b.kind == KindString {
		return a.s < b.s
	}
	return false
}

// Comparable reports whether a and b can be ordered by Less.
func Comparable(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	return a.kind == KindString && b.kind == KindString
}

// Contains reports whether needle is an element of haystack, for the `->`
// (in) operator: haystack must be a List or a String (substring-as-member
// is not special-cased beyond list membership; string "in" means needle is
// one of haystack's characters is NOT implied — haystack being a String
// compares needle against it as a single-element membership test, i.e.
// needle == haystack).
func Contains(needle, haystack Value) (bool, bool) {
	switch haystack.kind {
	case KindList:
		for _, e := range haystack.list {
			if Equal(needle, e) {
				return true, true
			}
		}
		return false, true
	case KindString:
		return Equal(needle, haystack), true
	default:
		return false, false
	}
}

// FromJSON builds a Value from a decoded JSON value (the shapes
// encoding/json.Unmarshal produces into an any: nil, bool, float64,
// string, []any, map[string]any). Maps are not representable as query
// Values (spec.md §3.3 only lists Integer|Float|Bool|String|List); passing
// one returns the null Value, since such a field can never appear as a
// query literal or be compared.
func FromJSON(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Float(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case string:
		return String(t)
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = FromJSON(e)
		}
		return List(out...)
	default:
		return Null()
	}
}

// ToJSON converts v back to a plain Go value suitable for
// encoding/json.Marshal.
func (v Value) ToJSON() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.ToJSON()
		}
		return out
	}
	return nil
}

