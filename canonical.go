package termwise

// ============================================================
// Canonicalize — push negation into coefficients
// ============================================================

// Canonicalize rewrites n bottom-up so that negation never wraps a constant,
// another negation, or a product or quotient led by a constant:
//
//	-(5)      →  -5
//	-(-x)     →  x
//	-(3*x)    →  -3*x
//	-(2/x)    →  -2/x
//
// Any other negation is kept. Unchanged subtrees are returned as-is, and
// Canonicalize(Canonicalize(n)) is structurally equal to Canonicalize(n).
func Canonicalize(n Node) Node {
	switch v := n.(type) {
	case *Const, *Sym:
		return v
	case *Group:
		x := Canonicalize(v.X)
		if x == v.X {
			return v
		}
		return GroupOf(x)
	case *Binary:
		l, r := Canonicalize(v.L), Canonicalize(v.R)
		if l == v.L && r == v.R {
			return v
		}
		return BinOf(v.Op, l, r)
	case *Neg:
		x := Canonicalize(v.X)
		if pushed, ok := absorbNegation(x); ok {
			return pushed
		}
		if x == v.X {
			return v
		}
		return NegOf(x)
	}
	panic(unknownNode(n))
}

// absorbNegation returns -x without a Neg wrapper when x has a place to
// carry the sign. x must already be canonical.
func absorbNegation(x Node) (Node, bool) {
	switch v := x.(type) {
	case *Const:
		return Num(v.Value.Neg()), true
	case *Neg:
		return v.X, true
	case *Binary:
		if v.Op != OpMul && v.Op != OpDiv {
			return nil, false
		}
		if c, ok := v.L.(*Const); ok {
			return BinOf(v.Op, Num(c.Value.Neg()), v.R), true
		}
	}
	return nil, false
}
