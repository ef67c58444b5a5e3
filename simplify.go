package termwise

import (
	"fmt"
	"slices"
)

// ============================================================
// Simplifier — algebraic clean-up after each transform
// ============================================================

// Simplifier rewrites a node into an equivalent one. Callers may not assume
// anything about the shape of the result beyond equivalence; the Engine
// always canonicalises afterwards.
type Simplifier interface {
	Simplify(n Node) (Node, error)
}

// SimplifierFunc adapts a plain function to the Simplifier interface.
type SimplifierFunc func(Node) (Node, error)

func (f SimplifierFunc) Simplify(n Node) (Node, error) { return f(n) }

// LinearSimplifier collects a linear expression into
//
//	c1*a + c2*b + ... + k
//
// with exact rational coefficients: symbols in name order, then any
// non-linear parts in first-seen order, then the constant. A constant
// times a sum, or a sum over a constant, is kept as one scaled term
// (3*(x + 2), (x + 4)/2) so that distribution stays a separate step.
// Dividing by something that folds to zero returns ErrDivisionByZero.
type LinearSimplifier struct{}

func (LinearSimplifier) Simplify(n Node) (Node, error) {
	f, err := linearize(n)
	if err != nil {
		return nil, err
	}
	return f.node(), nil
}

type scaledTerm struct {
	base Node
	coef Rational
}

type linearForm struct {
	coef  map[string]Rational
	other []*scaledTerm
	byKey map[string]*scaledTerm
	konst Rational
}

func newLinearForm() *linearForm {
	return &linearForm{
		coef:  map[string]Rational{},
		byKey: map[string]*scaledTerm{},
		konst: R(0),
	}
}

func linearize(n Node) (*linearForm, error) {
	f := newLinearForm()
	if err := f.collect(n, R(1)); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *linearForm) collect(n Node, scale Rational) error {
	switch v := n.(type) {
	case *Const:
		f.konst = f.konst.Add(scale.Mul(v.Value))
	case *Sym:
		f.addSym(v.Name, scale)
	case *Neg:
		return f.collect(v.X, scale.Neg())
	case *Group:
		return f.collect(v.X, scale)
	case *Binary:
		switch v.Op {
		case OpAdd:
			if err := f.collect(v.L, scale); err != nil {
				return err
			}
			return f.collect(v.R, scale)
		case OpSub:
			if err := f.collect(v.L, scale); err != nil {
				return err
			}
			return f.collect(v.R, scale.Neg())
		case OpMul:
			return f.collectProduct(v, scale)
		case OpDiv:
			return f.collectQuotient(v, scale)
		}
		return fmt.Errorf("unsupported operator %s", v.Op)
	default:
		panic(unknownNode(n))
	}
	return nil
}

func (f *linearForm) collectProduct(b *Binary, scale Rational) error {
	l, err := linearize(b.L)
	if err != nil {
		return err
	}
	r, err := linearize(b.R)
	if err != nil {
		return err
	}
	switch {
	case l.isConstant():
		f.scaleIn(r, scale.Mul(l.konst))
	case r.isConstant():
		f.scaleIn(l, scale.Mul(r.konst))
	default:
		f.addOther(MulOf(l.node(), r.node()), scale)
	}
	return nil
}

func (f *linearForm) collectQuotient(b *Binary, scale Rational) error {
	l, err := linearize(b.L)
	if err != nil {
		return err
	}
	r, err := linearize(b.R)
	if err != nil {
		return err
	}
	if !r.isConstant() {
		f.addOther(DivOf(l.node(), r.node()), scale)
		return nil
	}
	if r.konst.IsZero() {
		return ErrDivisionByZero
	}
	f.scaleIn(l, scale.Div(r.konst))
	return nil
}

// scaleIn adds k*g. A sum of several parts under a factor other than ±1 is
// kept whole as one scaled term.
func (f *linearForm) scaleIn(g *linearForm, k Rational) {
	if g.size() <= 1 || k.IsZero() || k.Abs().IsOne() {
		f.addForm(g, k)
		return
	}
	f.addOther(g.node(), k)
}

func (f *linearForm) addSym(name string, c Rational) {
	if cur, ok := f.coef[name]; ok {
		f.coef[name] = cur.Add(c)
		return
	}
	f.coef[name] = c
}

func (f *linearForm) addOther(base Node, c Rational) {
	key := base.String()
	if t, ok := f.byKey[key]; ok {
		t.coef = t.coef.Add(c)
		return
	}
	t := &scaledTerm{base: base, coef: c}
	f.byKey[key] = t
	f.other = append(f.other, t)
}

func (f *linearForm) addForm(g *linearForm, k Rational) {
	f.konst = f.konst.Add(g.konst.Mul(k))
	for name, c := range g.coef {
		f.addSym(name, c.Mul(k))
	}
	for _, t := range g.other {
		f.addOther(t.base, t.coef.Mul(k))
	}
}

func (f *linearForm) isConstant() bool {
	for _, c := range f.coef {
		if !c.IsZero() {
			return false
		}
	}
	for _, t := range f.other {
		if !t.coef.IsZero() {
			return false
		}
	}
	return true
}

func (f *linearForm) size() int {
	n := 0
	for _, c := range f.coef {
		if !c.IsZero() {
			n++
		}
	}
	for _, t := range f.other {
		if !t.coef.IsZero() {
			n++
		}
	}
	if !f.konst.IsZero() {
		n++
	}
	return n
}

func (f *linearForm) terms() []Term {
	var out []Term
	names := make([]string, 0, len(f.coef))
	for name, c := range f.coef {
		if !c.IsZero() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		c := f.coef[name]
		out = append(out, Term{Node: scaled(c.Abs(), S(name)), Sign: c.Sign()})
	}
	for _, t := range f.other {
		if t.coef.IsZero() {
			continue
		}
		out = append(out, Term{Node: scaledBase(t.coef.Abs(), t.base), Sign: t.coef.Sign()})
	}
	if !f.konst.IsZero() {
		out = append(out, Term{Node: Num(f.konst.Abs()), Sign: f.konst.Sign()})
	}
	return out
}

func (f *linearForm) node() Node {
	terms := f.terms()
	if len(terms) == 0 {
		return N(0)
	}
	acc := Canonicalize(terms[0].Signed())
	for _, t := range terms[1:] {
		if t.Sign < 0 {
			acc = SubOf(acc, t.Node)
		} else {
			acc = AddOf(acc, t.Node)
		}
	}
	return acc
}

func scaled(k Rational, x Node) Node {
	if k.IsOne() {
		return x
	}
	return MulOf(Num(k), x)
}

// scaledBase writes k*base, preferring base/d for unit fractions over a sum.
func scaledBase(k Rational, base Node) Node {
	if _, ok := sumOf(base); !ok || k.IsOne() || k.IsInteger() {
		return scaled(k, base)
	}
	if k.Num().IsInt64() && k.Num().Int64() == 1 {
		return DivOf(base, Num(k.Inv()))
	}
	return scaled(k, base)
}
