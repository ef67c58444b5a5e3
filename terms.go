package termwise

import "strings"

// ============================================================
// Term — signed, sign-normalised summand
// ============================================================

// Term is one summand of an additive expression. Any negativity of the
// summand is carried by Sign, never by Node: Node is not a negative
// constant, not a negation, not a product with a negative leading
// coefficient and not a quotient with a negative numerator.
type Term struct {
	Node Node
	Sign int
}

// Signed returns the term as a node, wrapping it in Neg when Sign is -1.
func (t Term) Signed() Node {
	if t.Sign < 0 {
		return NegOf(t.Node)
	}
	return t.Node
}

func (t Term) Negated() Term { return Term{Node: t.Node, Sign: -t.Sign} }

func (t Term) String() string {
	if t.Sign < 0 {
		return "- " + t.Node.String()
	}
	return "+ " + t.Node.String()
}

// Flatten decomposes n into its summands in pre-order, left to right.
// Negation and subtraction flip the accumulated sign; every other node is a
// leaf term and is normalised so its sign lives in Term.Sign. A node with
// no additive structure yields a single term.
func Flatten(n Node) []Term {
	var out []Term
	flatten(n, 1, &out)
	return out
}

func flatten(n Node, sign int, out *[]Term) {
	switch v := n.(type) {
	case *Neg:
		flatten(v.X, -sign, out)
		return
	case *Binary:
		switch v.Op {
		case OpAdd:
			flatten(v.L, sign, out)
			flatten(v.R, sign, out)
			return
		case OpSub:
			flatten(v.L, sign, out)
			flatten(v.R, -sign, out)
			return
		}
	}
	if pos, ok := positivePart(n); ok {
		*out = append(*out, Term{Node: pos, Sign: -sign})
		return
	}
	*out = append(*out, Term{Node: n, Sign: sign})
}

// positivePart returns -n when n is a leaf whose negativity sits in a
// constant, a leading coefficient, or a quotient's numerator.
func positivePart(n Node) (Node, bool) {
	switch v := n.(type) {
	case *Const:
		if v.Value.IsNegative() {
			return Num(v.Value.Neg()), true
		}
	case *Binary:
		switch v.Op {
		case OpMul:
			if c, ok := v.L.(*Const); ok && c.Value.IsNegative() {
				return MulOf(Num(c.Value.Neg()), v.R), true
			}
		case OpDiv:
			if neg, ok := v.L.(*Neg); ok {
				return DivOf(neg.X, v.R), true
			}
			if num, ok := positivePart(v.L); ok {
				return DivOf(num, v.R), true
			}
		}
	}
	return nil, false
}

// FormatTerms prints a term list the way it reads on screen: the first
// term without a leading plus.
func FormatTerms(terms []Term) string {
	if len(terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range terms {
		switch {
		case i == 0 && t.Sign < 0:
			sb.WriteString("-")
		case i > 0 && t.Sign < 0:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		s := t.Node.String()
		if precedence(t.Node) <= precAdd {
			s = "(" + s + ")"
		}
		sb.WriteString(s)
	}
	return sb.String()
}
