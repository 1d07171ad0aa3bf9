package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/value"
)

// Resolve returns the current value of a field on the entry under test, and
// ok=false if name does not name a declared field. Parse already rejects
// an undeclared bare identifier through its FieldExists callback, so a
// resolver built on the same schema (package schema's FieldLiteral,
// typically) never returns ok=false for a FieldOperand that survived
// Parse; if one does, Eval reports a QueryTypeError. The type exists so
// package query never imports package schema.
type Resolve func(field string) (value.Value, bool)

var foldCaser = cases.Lower(language.Und)

// Eval evaluates q against a single entry via resolve, short-circuiting
// left to right across the AND-joined conditions (the first condition
// chain to fail stops evaluation of the remaining conditions — spec.md
// §4.4's ordering guarantee).
// Evaluation errors (QueryTypeError) are returned rather than panicking;
// the caller treats a failed condition as a non-match and records the
// error as a diagnostic (spec.md §7).
func Eval(q *Query, resolve Resolve) (bool, error) {
	for _, cond := range q.Conditions {
		ok, err := evalCondition(cond, resolve)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evalCondition evaluates one chained comparison, resolving each operand
// exactly once (spec.md testable property 8: an operand shared by two
// adjacent comparisons, e.g. "b" in "a OP1 b OP2 c", is read only once).
func evalCondition(cond Condition, resolve Resolve) (bool, error) {
	resolved := make([]value.Value, len(cond.Operands))
	for i, op := range cond.Operands {
		v, err := resolveOperand(op, resolve)
		if err != nil {
			return false, err
		}
		resolved[i] = v
	}
	for i, op := range cond.Ops {
		ok, err := applyOp(op, resolved[i], resolved[i+1])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func resolveOperand(op Operand, resolve Resolve) (value.Value, error) {
	if !op.IsField {
		return op.Lit, nil
	}
	v, ok := resolve(op.Field)
	if !ok {
		return value.Value{}, rack.NewQueryTypeError(op.Field, "field reference did not resolve against the entry under test")
	}
	return v, nil
}

func applyOp(op Op, a, b value.Value) (bool, error) {
	if op.Fold {
		a, b = foldValue(a), foldValue(b)
	}
	switch op.Base {
	case BaseEq, BaseIdentity:
		return negIf(value.Equal(a, b), op.Negate), nil
	case BaseIn:
		ok, comparable := value.Contains(a, b)
		if !comparable {
			return false, rack.NewQueryTypeError("->", "right operand of 'in' must be a list or string")
		}
		return negIf(ok, op.Negate), nil
	case BaseHasPrefix:
		sa, sb, ok := bothStrings(a, b)
		if !ok {
			return false, rack.NewQueryTypeError("<%", "'has_prefix' requires string operands")
		}
		return negIf(strings.HasPrefix(sa, sb), op.Negate), nil
	case BaseHasSuffix:
		sa, sb, ok := bothStrings(a, b)
		if !ok {
			return false, rack.NewQueryTypeError("%>", "'has_suffix' requires string operands")
		}
		return negIf(strings.HasSuffix(sa, sb), op.Negate), nil
	case BaseLE, BaseGE, BaseLT, BaseGT:
		if !value.Comparable(a, b) {
			return false, rack.NewQueryTypeError(orderingSymbol(op.Base), "operands are not numerically or lexically comparable")
		}
		switch op.Base {
		case BaseLT:
			return value.Less(a, b), nil
		case BaseLE:
			return value.Less(a, b) || value.Equal(a, b), nil
		case BaseGT:
			return value.Less(b, a), nil
		case BaseGE:
			return value.Less(b, a) || value.Equal(a, b), nil
		}
	}
	return false, rack.NewQueryTypeError("?", "unknown operator")
}

// <% / %> read as "left has_prefix/has_suffix right": the left operand is
// the subject, the right operand the affix, matching spec.md §9's
// `title <%. "the"` example — title starts with "the".
func bothStrings(a, b value.Value) (string, string, bool) {
	if a.Kind() != value.KindString || b.Kind() != value.KindString {
		return "", "", false
	}
	return a.String(), b.String(), true
}

func foldValue(v value.Value) value.Value {
	if v.Kind() != value.KindString {
		return v
	}
	return value.String(foldCaser.String(v.String()))
}

func negIf(b bool, negate bool) bool {
	if negate {
		return !b
	}
	return b
}

func orderingSymbol(b Base) string {
	switch b {
	case BaseLT:
		return "<"
	case BaseLE:
		return "<="
	case BaseGT:
		return ">"
	case BaseGE:
		return ">="
	}
	return "?"
}
