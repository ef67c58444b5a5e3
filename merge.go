package termwise

// CanMerge reports whether two terms combine into one: two values, or two
// terms about the same symbol. It is symmetric.
func CanMerge(a, b Node) bool {
	if IsValue(a) && IsValue(b) {
		return true
	}
	sa, okA := SymbolOf(a)
	sb, okB := SymbolOf(b)
	return okA && okB && sa == sb
}

// Merge adds two terms and simplifies the sum. The result carries sign +1;
// any negativity stays inside its node.
func Merge(a, b Term, s Simplifier) (Term, error) {
	sum, err := s.Simplify(AddOf(a.Signed(), b.Signed()))
	if err != nil {
		return Term{}, err
	}
	return Term{Node: Canonicalize(sum), Sign: 1}, nil
}

// splitMerged re-flattens a merged term into sign-normalised summands. A
// merge that collapsed comes back as exactly one term.
func splitMerged(t Term) []Term {
	terms := Flatten(t.Node)
	if t.Sign < 0 {
		for i := range terms {
			terms[i] = terms[i].Negated()
		}
	}
	return terms
}

// Rebuild folds terms back into one tree, left to right with Add, and
// canonicalises the result. It never simplifies, so terms the caller kept
// apart stay apart. An empty list rebuilds to 0.
func Rebuild(terms []Term) Node {
	if len(terms) == 0 {
		return N(0)
	}
	acc := terms[0].Signed()
	for _, t := range terms[1:] {
		acc = AddOf(acc, t.Signed())
	}
	return Canonicalize(acc)
}
