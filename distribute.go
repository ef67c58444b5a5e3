package termwise

// sumOf unwraps groups and returns the additive node underneath, if any.
func sumOf(n Node) (*Binary, bool) {
	for {
		switch v := n.(type) {
		case *Group:
			n = v.X
		case *Binary:
			return v, v.Op == OpAdd || v.Op == OpSub
		default:
			return nil, false
		}
	}
}

// Distributable reports whether Distribute would rewrite n: a product with
// a sum on either side, or a sum divided by anything.
func Distributable(n Node) bool {
	b, ok := n.(*Binary)
	if !ok {
		return false
	}
	switch b.Op {
	case OpMul:
		_, r := sumOf(b.R)
		_, l := sumOf(b.L)
		return r || l
	case OpDiv:
		_, l := sumOf(b.L)
		return l
	}
	return false
}

// Distribute expands n by one level:
//
//	(T1 ± T2)*A  →  T1*A ± T2*A
//	A*(T1 ± T2)  →  A*T1 ± A*T2
//	(T1 ± T2)/D  →  T1/D ± T2/D
//
// A product of two sums expands over the left one. Each new product or quotient is simplified and canonicalised on its own;
// the ± of the sum is kept. Any other shape is returned unchanged.
func Distribute(n Node, s Simplifier) (Node, error) {
	b, ok := n.(*Binary)
	if !ok {
		return n, nil
	}
	switch b.Op {
	case OpMul:
		if sum, ok := sumOf(b.L); ok {
			return distributeOver(sum, func(t Node) Node { return MulOf(t, b.R) }, s)
		}
		if sum, ok := sumOf(b.R); ok {
			return distributeOver(sum, func(t Node) Node { return MulOf(b.L, t) }, s)
		}
	case OpDiv:
		if sum, ok := sumOf(b.L); ok {
			return distributeOver(sum, func(t Node) Node { return DivOf(t, b.R) }, s)
		}
	}
	return n, nil
}

func distributeOver(sum *Binary, build func(Node) Node, s Simplifier) (Node, error) {
	l, err := s.Simplify(build(sum.L))
	if err != nil {
		return nil, err
	}
	r, err := s.Simplify(build(sum.R))
	if err != nil {
		return nil, err
	}
	return BinOf(sum.Op, Canonicalize(l), Canonicalize(r)), nil
}
