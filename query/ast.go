// Package query implements rack's textual query language (spec components
// D and E): lexing and parsing a query string into a typed AST, and
// evaluating that AST against a single entry's field values. The AST shape
// — operands and operators as plain data, negation carried as a flag rather
// than a separate node — follows the teacher's querylanguage package
// (querylanguage.P / BinaryExpr), generalized from its fixed field/operator
// set to rack's chained-condition grammar.
package query

import "github.com/raxodb/rack/value"

// Base is an operator's comparison kind, independent of its negation and
// case-fold flags (spec.md §4.3).
type Base int

// The nine comparison bases. Eq and Identity render identically at
// evaluation time (spec.md §4.3: "=> ... implement as identity compare"),
// but are kept distinct tokens since only Eq is negatable/foldable.
const (
	BaseEq Base = iota
	BaseIn
	BaseHasPrefix
	BaseHasSuffix
	BaseIdentity
	BaseLE
	BaseGE
	BaseLT
	BaseGT
)

// Op is one lexed operator token: a base comparison plus its negation and
// case-fold flags.
type Op struct {
	Base   Base
	Negate bool
	Fold   bool
}

// Operand is one side of a comparison: either a field reference, resolved
// against the entry under test at evaluation time, or a literal value fixed
// at parse time.
type Operand struct {
	Field   string
	Lit     value.Value
	IsField bool
}

// FieldOperand builds a field-reference operand.
func FieldOperand(name string) Operand { return Operand{Field: name, IsField: true} }

// LitOperand builds a literal operand.
func LitOperand(v value.Value) Operand { return Operand{Lit: v} }

// Condition is one chained comparison: operand OP operand OP operand ...
// (spec.md §4.3's "condition := operand (op operand)+"). len(Ops) ==
// len(Operands)-1.
type Condition struct {
	Operands []Operand
	Ops      []Op
}

// Query is a fully parsed query string: a target (a registered type name or
// a tag name) and a list of AND-joined conditions (spec.md §4.3's
// "condition (';' condition)*").
type Query struct {
	Target     string
	Conditions []Condition
}
