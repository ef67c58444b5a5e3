package termwise

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Locators and render-pass tags
// ============================================================

// Locator addresses a subtree of an equation: a side and the child indexes
// to follow from that side's root (see Children).
type Locator struct {
	Side Side
	Path []int
}

func (l Locator) String() string {
	parts := make([]string, 0, len(l.Path)+1)
	parts = append(parts, l.Side.String())
	for _, i := range l.Path {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, "/")
}

// ParseLocator reads the form produced by Locator.String, e.g. "lhs/1/0".
func ParseLocator(text string) (Locator, error) {
	parts := strings.Split(strings.TrimSpace(text), "/")
	side, err := ParseSide(parts[0])
	if err != nil {
		return Locator{}, err
	}
	loc := Locator{Side: side}
	for _, p := range parts[1:] {
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 {
			return Locator{}, fmt.Errorf("invalid locator step %q", p)
		}
		loc.Path = append(loc.Path, i)
	}
	return loc, nil
}

// NodeAt follows path from root.
func NodeAt(root Node, path []int) (Node, bool) {
	n := root
	for _, i := range path {
		kids := Children(n)
		if i < 0 || i >= len(kids) {
			return nil, false
		}
		n = kids[i]
	}
	return n, true
}

// ReplaceAt returns a copy of root with the node at path replaced. Nodes off
// the path are shared with root.
func ReplaceAt(root Node, path []int, repl Node) (Node, bool) {
	if len(path) == 0 {
		return repl, true
	}
	kids := Children(root)
	i := path[0]
	if i < 0 || i >= len(kids) {
		return nil, false
	}
	child, ok := ReplaceAt(kids[i], path[1:], repl)
	if !ok {
		return nil, false
	}
	return withChild(root, i, child), true
}

// TagTable maps the integer tags of one render pass to locators. Tags are
// handed out in pre-order, the left side before the right. A table is only
// meaningful for the equation it was built from.
type TagTable struct {
	locs []Locator
}

func TagEquation(eq Equation) *TagTable {
	t := TagTree(LHS, eq.LHS)
	t.locs = append(t.locs, TagTree(RHS, eq.RHS).locs...)
	return t
}

// TagTree tags a single side; its tags start at 0.
func TagTree(side Side, root Node) *TagTable {
	t := &TagTable{}
	t.add(side, root, nil)
	return t
}

func (t *TagTable) add(side Side, n Node, path []int) {
	t.locs = append(t.locs, Locator{Side: side, Path: append([]int(nil), path...)})
	for i, c := range Children(n) {
		t.add(side, c, append(path, i))
	}
}

func (t *TagTable) Lookup(tag int) (Locator, bool) {
	if tag < 0 || tag >= len(t.locs) {
		return Locator{}, false
	}
	return t.locs[tag], true
}

func (t *TagTable) Len() int { return len(t.locs) }

// Distributable returns the tags of every distributable node of eq, which
// must be the equation the table was built from.
func (t *TagTable) Distributable(eq Equation) []int {
	var out []int
	for tag, loc := range t.locs {
		if n, ok := NodeAt(eq.Side(loc.Side), loc.Path); ok && Distributable(n) {
			out = append(out, tag)
		}
	}
	return out
}

// ============================================================
// LaTeX
// ============================================================

// LaTeX renders n. Coefficients are written against their symbol (2x) and
// a sum with a negative right operand reads as a difference.
func LaTeX(n Node) string {
	return (&latexWriter{}).write(n)
}

func (e Equation) LaTeX() string { return LaTeX(e.LHS) + " = " + LaTeX(e.RHS) }

// RenderTagged renders eq with every distributable node wrapped in
// \class{distributable node-N}{...}, N being its tag in TagEquation(eq).
func RenderTagged(eq Equation) string {
	w := &latexWriter{tagged: true}
	lhs := w.write(eq.LHS)
	rhs := w.write(eq.RHS)
	return lhs + " = " + rhs
}

type latexWriter struct {
	tagged bool
	next   int
}

func (w *latexWriter) write(n Node) string {
	tag := w.next
	w.next++
	s := w.body(n)
	if w.tagged && Distributable(n) {
		return fmt.Sprintf(`\class{distributable node-%d}{%s}`, tag, s)
	}
	return s
}

func paren(s string) string { return `\left(` + s + `\right)` }

func (w *latexWriter) body(n Node) string {
	switch v := n.(type) {
	case *Const:
		return v.Value.LaTeX()
	case *Sym:
		return v.Name
	case *Group:
		return paren(w.write(v.X))
	case *Neg:
		x := w.write(v.X)
		if precedence(v.X) <= precNeg {
			x = paren(x)
		}
		return "-" + x
	case *Binary:
		return w.binary(v)
	}
	panic(unknownNode(n))
}

func (w *latexWriter) binary(b *Binary) string {
	if b.Op == OpDiv {
		return `\frac{` + w.write(b.L) + `}{` + w.write(b.R) + `}`
	}
	l := w.write(b.L)
	if precedence(b.L) < precedence(b) {
		l = paren(l)
	}
	r := w.write(b.R)
	switch b.Op {
	case OpAdd:
		if rest, ok := strings.CutPrefix(r, "-"); ok {
			return l + " - " + rest
		}
		return l + " + " + r
	case OpSub:
		if precedence(b.R) <= precAdd || strings.HasPrefix(r, "-") {
			r = paren(r)
		}
		return l + " - " + r
	}
	if coefficientOf(b) {
		return l + r
	}
	if precedence(b.R) <= precMul || strings.HasPrefix(r, "-") {
		r = paren(r)
	}
	return l + ` \cdot ` + r
}

// coefficientOf reports whether b is a constant times a symbol, written
// without a dot.
func coefficientOf(b *Binary) bool {
	if b.Op != OpMul {
		return false
	}
	_, lc := b.L.(*Const)
	_, rs := b.R.(*Sym)
	return lc && rs
}
