package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raxodb/rack/value"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want string
	}{
		{"null", value.Null(), "nil"},
		{"true", value.Bool(true), "True"},
		{"false", value.Bool(false), "False"},
		{"int", value.Int(42), "42"},
		{"float", value.Float(3.5), "3.5"},
		{"string", value.String("hi"), "hi"},
		{"list", value.List(value.Int(1), value.String("a")), `[1, "a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValueQuoted(t *testing.T) {
	assert.Equal(t, `"a8m"`, value.String("a8m").Quoted())
	assert.Equal(t, "42", value.Int(42).Quoted())
	assert.Equal(t, "True", value.Bool(true).Quoted())
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"int_int", value.Int(1), value.Int(1), true},
		{"int_float", value.Int(1), value.Float(1.0), true},
		{"float_float_diff", value.Float(1.1), value.Float(1.2), false},
		{"string_eq", value.String("a"), value.String("a"), true},
		{"string_neq", value.String("a"), value.String("b"), false},
		{"bool_eq", value.Bool(true), value.Bool(true), true},
		{"null_null", value.Null(), value.Null(), true},
		{"kind_mismatch", value.String("1"), value.Int(1), false},
		{
			"list_eq",
			value.List(value.Int(1), value.Int(2)),
			value.List(value.Int(1), value.Int(2)),
			true,
		},
		{
			"list_len_mismatch",
			value.List(value.Int(1)),
			value.List(value.Int(1), value.Int(2)),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, value.Equal(tt.a, tt.b))
		})
	}
}

func TestValueLess(t *testing.T) {
	assert.True(t, value.Less(value.Int(1), value.Int(2)))
	assert.True(t, value.Less(value.Int(1), value.Float(1.5)))
	assert.False(t, value.Less(value.Int(2), value.Int(1)))
	assert.True(t, value.Less(value.String("a"), value.String("b")))
}

func TestValueComparable(t *testing.T) {
	assert.True(t, value.Comparable(value.Int(1), value.Float(2)))
	assert.True(t, value.Comparable(value.String("a"), value.String("b")))
	assert.False(t, value.Comparable(value.String("a"), value.Int(1)))
	assert.False(t, value.Comparable(value.Bool(true), value.Bool(false)))
}

func TestContains(t *testing.T) {
	list := value.List(value.String("A.B. Cee"), value.String("B.C. Dea"))

	ok, comparable := value.Contains(value.String("A.B. Cee"), list)
	assert.True(t, comparable)
	assert.True(t, ok)

	ok, comparable = value.Contains(value.String("nope"), list)
	assert.True(t, comparable)
	assert.False(t, ok)

	// haystack a bare string: membership degenerates to equality.
	ok, comparable = value.Contains(value.String("x"), value.String("x"))
	assert.True(t, comparable)
	assert.True(t, ok)

	_, comparable = value.Contains(value.String("x"), value.Int(1))
	assert.False(t, comparable)
}

func TestFromJSONRoundTrip(t *testing.T) {
	tests := []any{
		nil,
		true,
		false,
		3.5,
		"hello",
		[]any{float64(1), "two", true},
	}
	for _, in := range tests {
		v := value.FromJSON(in)
		assert.Equal(t, in, v.ToJSON())
	}
}

func TestIdent(t *testing.T) {
	assert.True(t, value.IsAuto(value.Auto{}))
	assert.False(t, value.IsAuto(value.NumericIdent(3)))
	assert.False(t, value.IsAuto(value.NameIdent("hot")))
	assert.Equal(t, "3", value.NumericIdent(3).String())
	assert.Equal(t, "hot", value.NameIdent("hot").String())
	assert.Equal(t, "UNIQUE", value.Auto{}.String())
}
