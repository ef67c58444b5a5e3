package termwise

import (
	"fmt"
	"strings"
)

// ============================================================
// Node — expression tree variant
// ============================================================

// Node is a closed variant: *Const, *Sym, *Neg, *Binary or *Group.
// Nodes are never mutated after construction, so subtrees may be shared
// freely between trees.
type Node interface {
	String() string
	Equal(other Node) bool
	nodeTag()
}

// Op is a binary operator. It doubles as the operator argument of the
// termwise transforms (add/subtract/multiply/divide both sides).
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp maps operator names and symbols ("add", "+", "sub", ...) to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "+", "add", "plus":
		return OpAdd, nil
	case "-", "sub", "subtract", "minus":
		return OpSub, nil
	case "*", "mul", "multiply", "times":
		return OpMul, nil
	case "/", "div", "divide", "over":
		return OpDiv, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

type Const struct{ Value Rational }

type Sym struct{ Name string }

// Neg is unary negation.
type Neg struct{ X Node }

type Binary struct {
	Op   Op
	L, R Node
}

// Group is a transparent parenthesised subtree; it evaluates to X.
type Group struct{ X Node }

func (*Const) nodeTag()  {}
func (*Sym) nodeTag()    {}
func (*Neg) nodeTag()    {}
func (*Binary) nodeTag() {}
func (*Group) nodeTag()  {}

func N(n int64) *Const        { return &Const{Value: R(n)} }
func F(p, q int64) *Const     { return &Const{Value: Frac(p, q)} }
func Num(r Rational) *Const   { return &Const{Value: r} }
func S(name string) *Sym      { return &Sym{Name: name} }
func NegOf(x Node) *Neg       { return &Neg{X: x} }
func GroupOf(x Node) *Group   { return &Group{X: x} }
func AddOf(l, r Node) *Binary { return &Binary{Op: OpAdd, L: l, R: r} }
func SubOf(l, r Node) *Binary { return &Binary{Op: OpSub, L: l, R: r} }
func MulOf(l, r Node) *Binary { return &Binary{Op: OpMul, L: l, R: r} }
func DivOf(l, r Node) *Binary { return &Binary{Op: OpDiv, L: l, R: r} }

// BinOf builds a raw binary node. None of the constructors simplify.
func BinOf(op Op, l, r Node) *Binary { return &Binary{Op: op, L: l, R: r} }

// ============================================================
// Equality and printing
// ============================================================

func (c *Const) Equal(other Node) bool { o, ok := other.(*Const); return ok && c.Value.Equal(o.Value) }
func (s *Sym) Equal(other Node) bool   { o, ok := other.(*Sym); return ok && s.Name == o.Name }
func (n *Neg) Equal(other Node) bool   { o, ok := other.(*Neg); return ok && n.X.Equal(o.X) }
func (g *Group) Equal(other Node) bool { o, ok := other.(*Group); return ok && g.X.Equal(o.X) }

func (b *Binary) Equal(other Node) bool {
	o, ok := other.(*Binary)
	return ok && b.Op == o.Op && b.L.Equal(o.L) && b.R.Equal(o.R)
}

const (
	precAdd = iota + 1
	precMul
	precNeg
	precAtom
)

func precedence(n Node) int {
	switch v := n.(type) {
	case *Const:
		if v.Value.IsNegative() {
			return precNeg
		}
		if !v.Value.IsInteger() {
			return precMul
		}
		return precAtom
	case *Neg:
		return precNeg
	case *Binary:
		if v.Op == OpAdd || v.Op == OpSub {
			return precAdd
		}
		return precMul
	}
	return precAtom
}

func (c *Const) String() string { return c.Value.String() }
func (s *Sym) String() string   { return s.Name }
func (g *Group) String() string { return "(" + g.X.String() + ")" }

func (n *Neg) String() string {
	if precedence(n.X) <= precNeg {
		return "-(" + n.X.String() + ")"
	}
	return "-" + n.X.String()
}

func (b *Binary) String() string {
	p := precedence(b)
	l := b.L.String()
	if precedence(b.L) < p {
		l = "(" + l + ")"
	}
	r := b.R.String()
	rp := precedence(b.R)
	if rp < p || (rp == p && !rightAssociates(b.Op, b.R)) {
		r = "(" + r + ")"
	}
	if b.Op == OpMul || b.Op == OpDiv {
		return l + b.Op.String() + r
	}
	return l + " " + b.Op.String() + " " + r
}

func rightAssociates(op Op, right Node) bool {
	switch op {
	case OpAdd:
		return true
	case OpMul:
		rb, ok := right.(*Binary)
		return ok && rb.Op == OpMul
	}
	return false
}

// ============================================================
// Structural predicates
// ============================================================

// IsValue reports whether n contains no symbol anywhere.
func IsValue(n Node) bool {
	switch v := n.(type) {
	case *Const:
		return true
	case *Sym:
		return false
	case *Neg:
		return IsValue(v.X)
	case *Group:
		return IsValue(v.X)
	case *Binary:
		return IsValue(v.L) && IsValue(v.R)
	}
	panic(unknownNode(n))
}

// SymbolOf returns the symbol a term is "about": the symbol itself, or the
// first symbol operand of a product. Anything else has no symbol.
func SymbolOf(n Node) (string, bool) {
	switch v := n.(type) {
	case *Sym:
		return v.Name, true
	case *Binary:
		if v.Op != OpMul {
			return "", false
		}
		if s, ok := v.L.(*Sym); ok {
			return s.Name, true
		}
		if s, ok := v.R.(*Sym); ok {
			return s.Name, true
		}
	}
	return "", false
}

// FreeSymbols lists symbol names in first-seen, pre-order order.
func FreeSymbols(n Node) []string {
	seen := map[string]bool{}
	var out []string
	Walk(n, func(m Node) bool {
		if s, ok := m.(*Sym); ok && !seen[s.Name] {
			seen[s.Name] = true
			out = append(out, s.Name)
		}
		return true
	})
	return out
}

// Walk visits n and its descendants in pre-order, left to right. Returning
// false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Children returns the direct operands of n in left-to-right order.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Const, *Sym:
		return nil
	case *Neg:
		return []Node{v.X}
	case *Group:
		return []Node{v.X}
	case *Binary:
		return []Node{v.L, v.R}
	}
	panic(unknownNode(n))
}

// withChild returns a copy of n whose i-th child is c.
func withChild(n Node, i int, c Node) Node {
	switch v := n.(type) {
	case *Neg:
		return NegOf(c)
	case *Group:
		return GroupOf(c)
	case *Binary:
		if i == 0 {
			return BinOf(v.Op, c, v.R)
		}
		return BinOf(v.Op, v.L, c)
	}
	panic(unknownNode(n))
}

// ReplaceSymbol returns a copy of n with every occurrence of name replaced
// by value. Untouched subtrees are shared with n.
func ReplaceSymbol(n Node, name string, value Node) Node {
	switch v := n.(type) {
	case *Const:
		return v
	case *Sym:
		if v.Name == name {
			return value
		}
		return v
	case *Neg:
		x := ReplaceSymbol(v.X, name, value)
		if x == v.X {
			return v
		}
		return NegOf(x)
	case *Group:
		x := ReplaceSymbol(v.X, name, value)
		if x == v.X {
			return v
		}
		return GroupOf(x)
	case *Binary:
		l := ReplaceSymbol(v.L, name, value)
		r := ReplaceSymbol(v.R, name, value)
		if l == v.L && r == v.R {
			return v
		}
		return BinOf(v.Op, l, r)
	}
	panic(unknownNode(n))
}

// Eval computes the exact value of n. Symbols are looked up in env; a nil
// env makes any symbol an error.
func Eval(n Node, env map[string]Rational) (Rational, error) {
	switch v := n.(type) {
	case *Const:
		return v.Value, nil
	case *Sym:
		if r, ok := env[v.Name]; ok {
			return r, nil
		}
		return Rational{}, fmt.Errorf("%w: %s has no value", ErrUnknownSymbol, v.Name)
	case *Neg:
		x, err := Eval(v.X, env)
		if err != nil {
			return Rational{}, err
		}
		return x.Neg(), nil
	case *Group:
		return Eval(v.X, env)
	case *Binary:
		l, err := Eval(v.L, env)
		if err != nil {
			return Rational{}, err
		}
		r, err := Eval(v.R, env)
		if err != nil {
			return Rational{}, err
		}
		switch v.Op {
		case OpAdd:
			return l.Add(r), nil
		case OpSub:
			return l.Sub(r), nil
		case OpMul:
			return l.Mul(r), nil
		case OpDiv:
			if r.IsZero() {
				return Rational{}, ErrDivisionByZero
			}
			return l.Div(r), nil
		}
	}
	panic(unknownNode(n))
}

func unknownNode(n Node) string {
	return fmt.Sprintf("termwise: unknown node type %T", n)
}
