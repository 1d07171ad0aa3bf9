package query_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/query"
	"github.com/raxodb/rack/value"
)

// bookFields is the field-exists predicate for a "book" schema with
// title, author, rating.
func bookFields(target, name string) bool {
	if target != "book" {
		return false
	}
	switch name {
	case "title", "author", "rating":
		return true
	}
	return false
}

func TestParseTarget(t *testing.T) {
	q, err := query.Parse(`book: rating >= 3`, bookFields)
	require.NoError(t, err)
	assert.Equal(t, "book", q.Target)
	assert.Len(t, q.Conditions, 1)
}

func TestParseChainedCondition(t *testing.T) {
	// S3 from spec.md §8.
	q, err := query.Parse(`book: 3 <= rating <= 5 ; author -> "A.B. Cee", "B.C. Dea"`, bookFields)
	require.NoError(t, err)
	require.Len(t, q.Conditions, 2)
	assert.Len(t, q.Conditions[0].Ops, 2)
	assert.Len(t, q.Conditions[1].Operands, 2)
}

func TestParseUnresolvedBareIdentifier(t *testing.T) {
	_, err := query.Parse(`book: rating >= minimum`, bookFields)
	require.Error(t, err)
	assert.True(t, rack.IsQueryParseError(err))
}

func TestParseMalformedQuery(t *testing.T) {
	_, err := query.Parse(`book rating >= 3`, bookFields)
	require.Error(t, err)
	assert.True(t, rack.IsQueryParseError(err))
}

func TestParseConditionNeedsOperator(t *testing.T) {
	_, err := query.Parse(`book: rating`, bookFields)
	require.Error(t, err)
}

func TestEvalOperators(t *testing.T) {
	resolveWith := func(vals map[string]value.Value) query.Resolve {
		return func(field string) (value.Value, bool) {
			v, ok := vals[field]
			return v, ok
		}
	}

	tests := []struct {
		name    string
		q       string
		fields  map[string]value.Value
		want    bool
		wantErr bool
	}{
		{
			name:   "eq",
			q:      `book: rating == 4`,
			fields: map[string]value.Value{"rating": value.Int(4)},
			want:   true,
		},
		{
			name:   "neq",
			q:      `book: rating != 4`,
			fields: map[string]value.Value{"rating": value.Int(1)},
			want:   true,
		},
		{
			name:   "fold_eq",
			q:      `book: title ==. "the a"`,
			fields: map[string]value.Value{"title": value.String("THE A")},
			want:   true,
		},
		{
			name:   "prefix_fold",
			q:      `book: title <%. "the"`,
			fields: map[string]value.Value{"title": value.String("The A")},
			want:   true,
		},
		{
			name:   "suffix",
			q:      `book: title %> "!"`,
			fields: map[string]value.Value{"title": value.String("E Up!")},
			want:   true,
		},
		{
			name:   "negated_in",
			q:      `book: author !-> "A.B. Cee", "B.C. Dea"`,
			fields: map[string]value.Value{"author": value.String("Z.Z. Top")},
			want:   true,
		},
		{
			name:   "chained_range",
			q:      `book: 3 <= rating <= 5`,
			fields: map[string]value.Value{"rating": value.Int(4)},
			want:   true,
		},
		{
			name:   "chained_range_fails",
			q:      `book: 3 <= rating <= 5`,
			fields: map[string]value.Value{"rating": value.Int(1)},
			want:   false,
		},
		{
			name:    "type_error_prefix_on_int",
			q:       `book: rating <% "4"`,
			fields:  map[string]value.Value{"rating": value.Int(4)},
			wantErr: true,
		},
		{
			name:   "identity_as_eq",
			q:      `book: rating => 4`,
			fields: map[string]value.Value{"rating": value.Int(4)},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := query.Parse(tt.q, bookFields)
			require.NoError(t, err)
			ok, err := query.Eval(q, resolveWith(tt.fields))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, rack.IsQueryTypeError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestEvalShortCircuit(t *testing.T) {
	reads := 0
	resolve := func(field string) (value.Value, bool) {
		reads++
		if field == "rating" {
			return value.Int(1), true
		}
		return value.Null(), true
	}
	q, err := query.Parse(`book: rating >= 3 ; title == "anything"`, bookFields)
	require.NoError(t, err)
	ok, err := query.Eval(q, resolve)
	require.NoError(t, err)
	assert.False(t, ok)
	// The second condition (title) must never be touched once the first fails.
	assert.Equal(t, 1, reads)
}

func TestEvalMemoizesSharedOperand(t *testing.T) {
	counts := map[string]int{}
	resolve := func(field string) (value.Value, bool) {
		counts[field]++
		switch field {
		case "rating":
			return value.Int(4), true
		}
		return value.Null(), false
	}
	q, err := query.Parse(`book: 3 <= rating <= 5`, bookFields)
	require.NoError(t, err)
	ok, err := query.Eval(q, resolve)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, counts["rating"])
}

func TestStatement(t *testing.T) {
	s := query.Statement("book", "rating >= {} ; author -> {names}", []any{3}, map[string]any{
		"names": []any{"A.B. Cee", "B.C. Dea"},
	})
	assert.Equal(t, `book: rating >= 3 ; author -> "A.B. Cee", "B.C. Dea"`, s)
}

func TestStatementBoolRender(t *testing.T) {
	s := query.Statement("book", "active == {}", []any{true}, nil)
	assert.Equal(t, "book: active == True", s)
}

func TestOpTableSize(t *testing.T) {
	// spec.md §4.3 lists exactly 21 explicit operator tokens.
	seen := map[string]bool{}
	for i, q := range []string{
		`t: a !->. b`, `t: a !<%. b`, `t: a !%>. b`, `t: a !=. b`,
		`t: a ->. b`, `t: a <%. b`, `t: a %>. b`, `t: a ==. b`,
		`t: a !-> b`, `t: a !<% b`, `t: a !%> b`,
		`t: a != b`, `t: a -> b`, `t: a <% b`, `t: a %> b`, `t: a == b`,
		`t: a => b`, `t: a <= b`, `t: a >= b`, `t: a < b`, `t: a > b`,
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := query.Parse(q, func(string, string) bool { return true })
			require.NoError(t, err)
		})
		seen[q] = true
	}
	assert.Len(t, seen, 21)
}
