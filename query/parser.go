package query

import (
	rack "github.com/raxodb/rack"
	"github.com/raxodb/rack/value"
)

// FieldExists reports whether name is a declared field of the query's
// target type — the callback the parser uses to disambiguate a bare
// identifier operand as a field reference from a bare identifier error
// (spec.md §9's open-question resolution: quoted strings are string
// literals, unresolved bare identifiers are a QueryParseError).
type FieldExists func(target, name string) bool

// Parse parses a query string per spec.md §4.3's grammar. exists is
// consulted once per bare-identifier operand to resolve it against the
// query's target type.
func Parse(q string, exists FieldExists) (*Query, error) {
	toks, err := lexAll(q)
	if err != nil {
		return nil, err
	}
	p := &parser{q: q, toks: toks}

	target, err := p.expectIdent("target type or tag name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokColon, "':'"); err != nil {
		return nil, err
	}

	fieldExists := func(name string) bool { return exists(target, name) }

	var conds []Condition
	for {
		cond, err := p.parseCondition(fieldExists)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
		if p.peek().kind == tokSemicolon {
			p.advance()
			continue
		}
		break
	}
	if p.peek().kind != tokEOF {
		return nil, rack.NewQueryParseError(q, p.peek().offset, "unexpected trailing input", "';' or end of query")
	}
	return &Query{Target: target, Conditions: conds}, nil
}

func lexAll(q string) ([]token, error) {
	l := newLexer(q)
	var out []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

type parser struct {
	q    string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k tokenKind, want string) error {
	if p.peek().kind != k {
		return rack.NewQueryParseError(p.q, p.peek().offset, "unexpected token", want)
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent(want string) (string, error) {
	if p.peek().kind != tokIdent {
		return "", rack.NewQueryParseError(p.q, p.peek().offset, "expected identifier", want)
	}
	return p.advance().text, nil
}

func (p *parser) parseCondition(fieldExists func(string) bool) (Condition, error) {
	first, err := p.parseOperand(fieldExists)
	if err != nil {
		return Condition{}, err
	}
	operands := []Operand{first}
	var ops []Op
	for p.peek().kind == tokOp {
		op := p.peek().opSpec
		p.advance()
		next, err := p.parseOperand(fieldExists)
		if err != nil {
			return Condition{}, err
		}
		operands = append(operands, next)
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return Condition{}, rack.NewQueryParseError(p.q, p.peek().offset, "a condition needs at least one comparison", "operator")
	}
	return Condition{Operands: operands, Ops: ops}, nil
}

func isLiteralTok(k tokenKind) bool {
	switch k {
	case tokString, tokInt, tokFloat, tokBool:
		return true
	}
	return false
}

func (p *parser) literalOf(t token) value.Value {
	switch t.kind {
	case tokString:
		return value.String(t.text)
	case tokInt:
		return value.Int(t.ival)
	case tokFloat:
		return value.Float(t.fval)
	case tokBool:
		return value.Bool(t.bval)
	}
	return value.Null()
}

func (p *parser) parseOperand(fieldExists func(string) bool) (Operand, error) {
	tok := p.peek()
	if tok.kind == tokIdent {
		p.advance()
		if !fieldExists(tok.text) {
			return Operand{}, rack.NewQueryParseError(p.q, tok.offset,
				"unresolved bare identifier "+tok.text, "a declared field name of the target type")
		}
		return FieldOperand(tok.text), nil
	}
	if !isLiteralTok(tok.kind) {
		return Operand{}, rack.NewQueryParseError(p.q, tok.offset, "unexpected token", "operand (field name or literal)")
	}
	p.advance()
	first := p.literalOf(tok)
	if p.peek().kind != tokComma {
		return LitOperand(first), nil
	}

	vals := []value.Value{first}
	for p.peek().kind == tokComma {
		p.advance()
		next := p.peek()
		if !isLiteralTok(next.kind) {
			return Operand{}, rack.NewQueryParseError(p.q, next.offset, "expected a literal after ','", "literal")
		}
		p.advance()
		vals = append(vals, p.literalOf(next))
	}
	return LitOperand(value.List(vals...)), nil
}
