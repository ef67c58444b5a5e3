package termwise_test

import (
	"testing"

	"github.com/njchilds90/termwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drag(t *testing.T, eq termwise.Equation, src termwise.TermRef, dst termwise.DropTarget) termwise.Equation {
	t.Helper()
	out, err := termwise.NewEngine().DragApply(eq, src, dst)
	require.NoError(t, err)
	return out
}

func TestDragApply_AcrossSidesNegates(t *testing.T) {
	eq := equation(t, "2x + 3 = 7")
	out := drag(t, eq,
		termwise.TermRef{Side: termwise.LHS, Index: 1},
		termwise.DropTarget{Side: termwise.RHS, Index: 1})

	assert.True(t, termwise.MulOf(termwise.N(2), x).Equal(out.LHS), out.LHS.String())
	assert.True(t, termwise.AddOf(termwise.N(7), termwise.N(-3)).Equal(out.RHS), out.RHS.String())
	assert.Equal(t, []string{"+ 7", "- 3"}, termStrings(termwise.Flatten(out.RHS)))
}

func TestDragApply_AcrossSidesMerges(t *testing.T) {
	out := drag(t, equation(t, "2x + 3 = 7"),
		termwise.TermRef{Side: termwise.LHS, Index: 1},
		termwise.DropTarget{Side: termwise.RHS, Index: 0, Action: termwise.ActionMerge})
	assert.Equal(t, "2*x = 4", out.String())
}

func TestDragApply_InsertAtFront(t *testing.T) {
	out := drag(t, equation(t, "2x + 3 = 7"),
		termwise.TermRef{Side: termwise.RHS, Index: 0},
		termwise.DropTarget{Side: termwise.LHS, Index: 0})
	assert.Equal(t, []string{"- 7", "+ 2*x", "+ 3"}, termStrings(termwise.Flatten(out.LHS)))
	assert.True(t, termwise.N(0).Equal(out.RHS))
}

func TestDragApply_SameSideReorder(t *testing.T) {
	eq := equation(t, "2x + 3 = 7")
	out := drag(t, eq,
		termwise.TermRef{Side: termwise.LHS, Index: 0},
		termwise.DropTarget{Side: termwise.LHS, Index: 2})
	assert.Equal(t, "3 + 2*x = 7", out.String())
	assert.Same(t, eq.RHS, out.RHS)

	back := drag(t, out,
		termwise.TermRef{Side: termwise.LHS, Index: 1},
		termwise.DropTarget{Side: termwise.LHS, Index: 0})
	assert.Equal(t, "2*x + 3 = 7", back.String())
}

func TestDragApply_SameSideMerge(t *testing.T) {
	eq := termwise.Eq(termwise.AddOf(termwise.AddOf(termwise.MulOf(termwise.N(2), x), termwise.N(3)), x), termwise.N(7))
	out := drag(t, eq,
		termwise.TermRef{Side: termwise.LHS, Index: 2},
		termwise.DropTarget{Side: termwise.LHS, Index: 0, Action: termwise.ActionMerge})
	assert.Equal(t, "3*x + 3 = 7", out.String())
}

func TestDragApply_MergeToZeroDropsTerm(t *testing.T) {
	eq := termwise.Eq(termwise.SubOf(termwise.AddOf(x, termwise.N(3)), termwise.N(3)), termwise.N(5))
	out := drag(t, eq,
		termwise.TermRef{Side: termwise.LHS, Index: 2},
		termwise.DropTarget{Side: termwise.LHS, Index: 1, Action: termwise.ActionMerge})
	assert.Equal(t, "x = 5", out.String())

	eq = termwise.Eq(termwise.AddOf(x, termwise.N(5)), termwise.N(5))
	out = drag(t, eq,
		termwise.TermRef{Side: termwise.RHS, Index: 0},
		termwise.DropTarget{Side: termwise.LHS, Index: 1, Action: termwise.ActionMerge})
	assert.Equal(t, "x = 0", out.String())
}

func TestDragApply_MergeToZeroKeepsLoneTerm(t *testing.T) {
	out := drag(t, termwise.Eq(termwise.N(3), termwise.N(3)),
		termwise.TermRef{Side: termwise.RHS, Index: 0},
		termwise.DropTarget{Side: termwise.LHS, Index: 0, Action: termwise.ActionMerge})
	assert.Equal(t, "0 = 0", out.String())
}

func TestDragApply_MergeKeepsUncollapsedSummands(t *testing.T) {
	opaque := termwise.MulOf(x, termwise.AddOf(y, termwise.N(1)))
	eq := termwise.Eq(termwise.AddOf(opaque, termwise.N(2)), termwise.MulOf(termwise.N(3), x))
	require.True(t, termwise.CanMerge(opaque, eq.RHS))

	out := drag(t, eq,
		termwise.TermRef{Side: termwise.RHS, Index: 0},
		termwise.DropTarget{Side: termwise.LHS, Index: 0, Action: termwise.ActionMerge})

	assert.Equal(t, []string{"- 3*x", "+ x*(y + 1)", "+ 2"}, termStrings(termwise.Flatten(out.LHS)))
	assert.True(t, termwise.N(0).Equal(out.RHS), out.RHS.String())
	assertSameValue(t, termwise.SubOf(eq.LHS, eq.RHS), termwise.SubOf(out.LHS, out.RHS))

	// Each summand of the merge is a term of its own afterwards.
	again := drag(t, out,
		termwise.TermRef{Side: termwise.LHS, Index: 0},
		termwise.DropTarget{Side: termwise.RHS, Index: 0})
	assert.Equal(t, []string{"+ x*(y + 1)", "+ 2"}, termStrings(termwise.Flatten(again.LHS)))
	assert.Equal(t, []string{"+ 3*x", "+ 0"}, termStrings(termwise.Flatten(again.RHS)))
}

func TestDragApply_PreservesSolution(t *testing.T) {
	eq := equation(t, "2x + 3 - y = 7 - 3y")
	env := map[string]termwise.Rational{"x": termwise.R(1), "y": termwise.R(1)}
	require.True(t, eval(t, eq.LHS, env).Equal(eval(t, eq.RHS, env)))

	lhs, rhs := termwise.Terms(eq)
	counts := map[termwise.Side]int{termwise.LHS: len(lhs), termwise.RHS: len(rhs)}
	eng := termwise.NewEngine()
	for _, from := range []termwise.Side{termwise.LHS, termwise.RHS} {
		for i := 0; i < counts[from]; i++ {
			for _, to := range []termwise.Side{termwise.LHS, termwise.RHS} {
				for j := 0; j <= counts[to]; j++ {
					out, err := eng.DragApply(eq,
						termwise.TermRef{Side: from, Index: i},
						termwise.DropTarget{Side: to, Index: j})
					require.NoError(t, err)
					assert.Truef(t, eval(t, out.LHS, env).Equal(eval(t, out.RHS, env)),
						"move %s/%d to %s/%d gave %s", from, i, to, j, out)
				}
			}
		}
	}
}

func TestDragApply_Errors(t *testing.T) {
	eng := termwise.NewEngine()
	eq := equation(t, "2x + 3 = 7")
	cases := []struct {
		name string
		src  termwise.TermRef
		dst  termwise.DropTarget
		want error
	}{
		{"source out of range", termwise.TermRef{Side: termwise.LHS, Index: 2}, termwise.DropTarget{Side: termwise.RHS}, termwise.ErrTermNotFound},
		{"negative source", termwise.TermRef{Side: termwise.RHS, Index: -1}, termwise.DropTarget{Side: termwise.LHS}, termwise.ErrTermNotFound},
		{"insert past end", termwise.TermRef{Side: termwise.LHS, Index: 0}, termwise.DropTarget{Side: termwise.RHS, Index: 2}, termwise.ErrTermNotFound},
		{"merge past end", termwise.TermRef{Side: termwise.LHS, Index: 1}, termwise.DropTarget{Side: termwise.RHS, Index: 1, Action: termwise.ActionMerge}, termwise.ErrTermNotFound},
		{"merge with itself", termwise.TermRef{Side: termwise.LHS, Index: 0}, termwise.DropTarget{Side: termwise.LHS, Index: 0, Action: termwise.ActionMerge}, termwise.ErrNotMergeable},
		{"symbol into value", termwise.TermRef{Side: termwise.LHS, Index: 0}, termwise.DropTarget{Side: termwise.RHS, Index: 0, Action: termwise.ActionMerge}, termwise.ErrNotMergeable},
		{"unknown action", termwise.TermRef{Side: termwise.LHS, Index: 0}, termwise.DropTarget{Side: termwise.RHS, Action: termwise.Action(7)}, termwise.ErrInvalidOperand},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := eng.DragApply(eq, c.src, c.dst)
			assert.ErrorIs(t, err, c.want)
			assert.True(t, eq.Equal(out))
		})
	}
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]termwise.Action{"": termwise.ActionInsert, "insert": termwise.ActionInsert, " Merge ": termwise.ActionMerge} {
		got, err := termwise.ParseAction(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := termwise.ParseAction("swap")
	assert.Error(t, err)
	assert.Equal(t, "merge", termwise.ActionMerge.String())
}
