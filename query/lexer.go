package query

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	rack "github.com/raxodb/rack"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokBool
	tokOp
	tokColon
	tokSemicolon
	tokComma
)

type token struct {
	kind   tokenKind
	text   string
	opSpec Op
	ival   int64
	fval   float64
	bval   bool
	offset int
}

// opTable lists every one of the 21 explicit operator tokens (spec.md
// §4.3), longest first so the lexer's longest-match scan never stops at a
// shorter token that is itself a prefix of a longer one (e.g. "->" vs
// "->.").
var opTable = []struct {
	lit string
	op  Op
}{
	{"!->.", Op{BaseIn, true, true}},
	{"!<%.", Op{BaseHasPrefix, true, true}},
	{"!%>.", Op{BaseHasSuffix, true, true}},
	{"!=.", Op{BaseEq, true, true}},
	{"->.", Op{BaseIn, false, true}},
	{"<%.", Op{BaseHasPrefix, false, true}},
	{"%>.", Op{BaseHasSuffix, false, true}},
	{"==.", Op{BaseEq, false, true}},
	{"!->", Op{BaseIn, true, false}},
	{"!<%", Op{BaseHasPrefix, true, false}},
	{"!%>", Op{BaseHasSuffix, true, false}},
	{"!=", Op{BaseEq, true, false}},
	{"->", Op{BaseIn, false, false}},
	{"<%", Op{BaseHasPrefix, false, false}},
	{"%>", Op{BaseHasSuffix, false, false}},
	{"==", Op{BaseEq, false, false}},
	{"=>", Op{BaseIdentity, false, false}},
	{"<=", Op{BaseLE, false, false}},
	{">=", Op{BaseGE, false, false}},
	{"<", Op{BaseLT, false, false}},
	{">", Op{BaseGT, false, false}},
}

type lexer struct {
	q   string
	pos int
}

func newLexer(q string) *lexer { return &lexer{q: q} }

func (l *lexer) skipSpace() {
	for l.pos < len(l.q) {
		r, size := utf8.DecodeRuneInString(l.q[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// next returns the next token, or a QueryParseError if the input can't be
// lexed at the current offset.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.q) {
		return token{kind: tokEOF, offset: start}, nil
	}

	c := l.q[l.pos]
	switch {
	case c == ':':
		l.pos++
		return token{kind: tokColon, text: ":", offset: start}, nil
	case c == ';':
		l.pos++
		return token{kind: tokSemicolon, text: ";", offset: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", offset: start}, nil
	case c == '"':
		return l.lexString()
	case c == '-' && l.pos+1 < len(l.q) && l.q[l.pos+1] >= '0' && l.q[l.pos+1] <= '9':
		return l.lexNumber()
	case isOpStart(c):
		return l.lexOp()
	case c == '+' || (c >= '0' && c <= '9'):
		return l.lexNumber()
	case isIdentStart(rune(c)):
		return l.lexIdent()
	}
	return token{}, rack.NewQueryParseError(l.q, start, "unrecognized character",
		"operand, operator, ':', ';' or ','")
}

func isOpStart(c byte) bool {
	switch c {
	case '!', '=', '-', '<', '%', '>':
		return true
	}
	return false
}

// lexOp is only reached for characters that could start an operator. A "-"
// followed by a digit never gets here: next sends it to lexNumber first, so
// "-1" lexes as a number and "->" as an operator.
func (l *lexer) lexOp() (token, error) {
	start := l.pos
	rest := l.q[l.pos:]
	for _, cand := range opTable {
		if strings.HasPrefix(rest, cand.lit) {
			l.pos += len(cand.lit)
			return token{kind: tokOp, text: cand.lit, opSpec: cand.op, offset: start}, nil
		}
	}
	return token{}, rack.NewQueryParseError(l.q, start, "no operator token matches", "operator")
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.q) {
		c := l.q[l.pos]
		if c == '"' {
			l.pos++
			return token{kind: tokString, text: b.String(), offset: start}, nil
		}
		if c == '\\' && l.pos+1 < len(l.q) {
			l.pos++
			b.WriteByte(l.q[l.pos])
			l.pos++
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, rack.NewQueryParseError(l.q, start, "unterminated string literal", `closing '"'`)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.q[l.pos] == '-' || l.q[l.pos] == '+' {
		l.pos++
	}
	isFloat := false
	for l.pos < len(l.q) {
		c := l.q[l.pos]
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' && !isFloat && l.pos+1 < len(l.q) && l.q[l.pos+1] >= '0' && l.q[l.pos+1] <= '9' {
			isFloat = true
			l.pos++
			continue
		}
		break
	}
	text := l.q[start:l.pos]
	if text == "" || text == "-" || text == "+" {
		return token{}, rack.NewQueryParseError(l.q, start, "malformed numeric literal", "number")
	}
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, rack.NewQueryParseError(l.q, start, "malformed float literal", "float")
		}
		return token{kind: tokFloat, text: text, fval: f, offset: start}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, rack.NewQueryParseError(l.q, start, "malformed integer literal", "integer")
	}
	return token{kind: tokInt, text: text, ival: i, offset: start}, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.q) {
		r, size := utf8.DecodeRuneInString(l.q[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += size
	}
	text := l.q[start:l.pos]
	switch text {
	case "True":
		return token{kind: tokBool, text: text, bval: true, offset: start}, nil
	case "False":
		return token{kind: tokBool, text: text, bval: false, offset: start}, nil
	}
	return token{kind: tokIdent, text: text, offset: start}, nil
}
