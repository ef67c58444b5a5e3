package termwise

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================
// Parser — text to Node
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokEquals
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of input",
	tokNumber: "number",
	tokIdent:  "identifier",
	tokPlus:   "'+'",
	tokMinus:  "'-'",
	tokStar:   "'*'",
	tokSlash:  "'/'",
	tokLParen: "'('",
	tokRParen: "')'",
	tokEquals: "'='",
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexer walks the input one byte at a time; ch is 0 at end of input.
type lexer struct {
	input   string
	pos     int
	readPos int
	ch      byte
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *lexer) next() (token, error) {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
	start := l.pos
	single := map[byte]tokenKind{
		'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash,
		'(': tokLParen, ')': tokRParen, '=': tokEquals,
	}
	switch {
	case l.ch == 0:
		return token{kind: tokEOF, pos: start}, nil
	case isDigit(l.ch) || l.ch == '.':
		seenDot := false
		for isDigit(l.ch) || (l.ch == '.' && !seenDot) {
			if l.ch == '.' {
				seenDot = true
			}
			l.readChar()
		}
		text := l.input[start:l.pos]
		if text == "." {
			return token{}, &ParseError{Pos: start, Message: "invalid number literal"}
		}
		return token{kind: tokNumber, text: text, pos: start}, nil
	case isLetter(l.ch):
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
	}
	if k, ok := single[l.ch]; ok {
		l.readChar()
		return token{kind: k, text: l.input[start:l.pos], pos: start}, nil
	}
	return token{}, &ParseError{Pos: start, Message: fmt.Sprintf("unexpected character %q", l.ch)}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) expect(k tokenKind) (token, error) {
	t := p.peek()
	if t.kind != k {
		return t, &ParseError{Pos: t.pos, Message: fmt.Sprintf("unexpected %s, expected %s", describe(t), tokenNames[k])}
	}
	return p.advance(), nil
}

func describe(t token) string {
	if t.text != "" {
		return fmt.Sprintf("%q", t.text)
	}
	return tokenNames[t.kind]
}

func tokenize(input string) ([]token, error) {
	l := newLexer(input)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

// Parse reads an expression such as "3(x + 2) - y/4". Numbers may be
// decimals and are kept exact; a number, identifier or parenthesis directly
// after another operand multiplies it ("2x", "3(x+1)", "(x)(y)").
// Parentheses become Group nodes.
func Parse(text string) (Node, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &ParseError{Pos: 0, Message: "empty expression"}
	}
	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &ParseError{Pos: t.pos, Message: fmt.Sprintf("unexpected %s", describe(t))}
	}
	return n, nil
}

// ParseEquation reads "lhs = rhs". The ID of the result is zero.
func ParseEquation(text string) (Equation, error) {
	i := strings.IndexByte(text, '=')
	if i < 0 {
		return Equation{}, &ParseError{Pos: len(text), Message: "missing '='"}
	}
	if j := strings.IndexByte(text[i+1:], '='); j >= 0 {
		return Equation{}, &ParseError{Pos: i + 1 + j, Message: "more than one '='"}
	}
	lhs, err := Parse(text[:i])
	if err != nil {
		return Equation{}, err
	}
	rhs, err := Parse(text[i+1:])
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return Equation{}, &ParseError{Pos: pe.Pos + i + 1, Message: pe.Message}
		}
		return Equation{}, err
	}
	return Equation{LHS: lhs, RHS: rhs}, nil
}

func (p *parser) parseSum() (Node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().kind {
		case tokPlus:
			op = OpAdd
		case tokMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = BinOf(op, left, right)
	}
}

func (p *parser) parseProduct() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := OpMul
		switch p.peek().kind {
		case tokStar:
			p.advance()
		case tokSlash:
			op = OpDiv
			p.advance()
		case tokNumber, tokIdent, tokLParen:
			// implicit multiplication
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinOf(op, left, right)
	}
}

func (p *parser) parseUnary() (Node, error) {
	switch p.peek().kind {
	case tokMinus:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NegOf(x), nil
	case tokPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.advance()
	switch t.kind {
	case tokNumber:
		r, err := ParseRational(t.text)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Message: "invalid number literal"}
		}
		return Num(r), nil
	case tokIdent:
		return S(t.text), nil
	case tokLParen:
		x, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return GroupOf(x), nil
	}
	return nil, &ParseError{Pos: t.pos, Message: fmt.Sprintf("unexpected %s", describe(t))}
}

// MustParse is like Parse but panics on error. Intended for tests and
// literals in examples.
func MustParse(text string) Node {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

// ValidateSymbols checks that n only uses allowed variables. Offending names
// are reported once each, in the order they first appear.
func ValidateSymbols(n Node, allowed []string) error {
	ok := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	var bad []string
	for _, name := range FreeSymbols(n) {
		if !ok[name] {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		return &UnknownSymbolError{Names: bad, Allowed: append([]string(nil), allowed...)}
	}
	return nil
}
