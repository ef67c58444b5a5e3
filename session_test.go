package termwise_test

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/njchilds90/termwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(a, b uint64) *rand.Rand { return rand.New(rand.NewPCG(a, b)) }

func TestGenerateSystem_HoldsUnderSolution(t *testing.T) {
	for n := 1; n <= termwise.MaxVariables; n++ {
		vars, eqs, solution, err := termwise.GenerateSystem(seeded(uint64(n), 42), n)
		require.NoError(t, err)
		assert.Equal(t, termwise.VariableNames[:n], vars)
		assert.Len(t, eqs, n)
		for _, v := range vars {
			val := solution[v]
			assert.True(t, val.IsInteger())
			assert.False(t, val.IsZero())
			assert.LessOrEqual(t, val.Abs().Cmp(termwise.R(10)), 0)
		}
		for _, eq := range eqs {
			assert.Truef(t, eval(t, eq.LHS, solution).Equal(eval(t, eq.RHS, solution)), "%s", eq)
			for _, side := range []termwise.Node{eq.LHS, eq.RHS} {
				assert.NoError(t, termwise.ValidateSymbols(side, vars))
			}
		}
	}
}

func TestGenerateSystem_Bounds(t *testing.T) {
	for _, n := range []int{0, termwise.MaxVariables + 1} {
		_, _, _, err := termwise.GenerateSystem(seeded(1, 2), n)
		assert.ErrorIs(t, err, termwise.ErrInvalidOperand)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	solution := map[string]termwise.Rational{"x": termwise.R(3), "y": termwise.R(-2)}
	a := termwise.Generate(seeded(7, 7), []string{"x", "y"}, solution)
	b := termwise.Generate(seeded(7, 7), []string{"x", "y"}, solution)
	assert.True(t, a.Equal(b))
}

func TestNewGame(t *testing.T) {
	s, err := termwise.NewGame(seeded(1, 2), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, []string{"x", "y"}, s.Variables)
	require.Len(t, s.Equations, 2)
	assert.Equal(t, 1, s.Equations[0].ID)
	assert.Equal(t, 2, s.Equations[1].ID)
	assert.Equal(t, 3, s.NextID)
	for _, eq := range s.Equations {
		assert.True(t, eval(t, eq.LHS, s.Solution).Equal(eval(t, eq.RHS, s.Solution)))
	}
	assert.False(t, s.Won())
}

func TestNewCustom(t *testing.T) {
	eng := termwise.NewEngine()
	s, err := termwise.NewCustom(eng, []string{"y + 2x = 4 + 1", "x - y = 2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, s.Variables)
	assert.Nil(t, s.Solution)
	require.Len(t, s.Equations, 2)
	assert.Equal(t, "2*x + y = 5", s.Equations[0].String())

	_, err = termwise.NewCustom(eng, nil)
	assert.ErrorIs(t, err, termwise.ErrInvalidOperand)
	_, err = termwise.NewCustom(eng, []string{"a + b + c + d + e = 1"})
	assert.ErrorIs(t, err, termwise.ErrInvalidOperand)
	_, err = termwise.NewCustom(eng, []string{"x = 1", "x = 2", "x = 3", "x = 4", "x = 5"})
	assert.ErrorIs(t, err, termwise.ErrInvalidOperand)
	_, err = termwise.NewCustom(eng, []string{"x + = 1"})
	assert.ErrorIs(t, err, termwise.ErrParse)
}

func TestSession_Collection(t *testing.T) {
	s := termwise.NewSession([]string{"x"})
	eq := s.Add(x, termwise.N(3))
	assert.Equal(t, 1, eq.ID)

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.True(t, eq.Equal(got))

	_, err = s.Get(9)
	assert.ErrorIs(t, err, termwise.ErrEquationNotFound)
	assert.ErrorIs(t, s.Put(termwise.Equation{ID: 9, LHS: x, RHS: x}), termwise.ErrEquationNotFound)
	assert.ErrorIs(t, s.Remove(9), termwise.ErrEquationNotFound)

	require.NoError(t, s.Remove(1))
	assert.Empty(t, s.Equations)
	assert.Equal(t, 2, s.Add(x, termwise.N(1)).ID)
}

func TestSession_Clone(t *testing.T) {
	s, err := termwise.NewGame(seeded(3, 4), 2)
	require.NoError(t, err)
	c := s.Clone()
	require.NoError(t, c.Remove(1))
	c.Variables[0] = "q"
	c.Solution["x"] = termwise.R(99)

	assert.Len(t, s.Equations, 2)
	assert.Equal(t, "x", s.Variables[0])
	assert.False(t, s.Solution["x"].Equal(termwise.R(99)))
}

func TestSession_FoundAndWon(t *testing.T) {
	s := termwise.NewSession([]string{"x", "y"})
	s.Solution = map[string]termwise.Rational{"x": termwise.R(2), "y": termwise.R(-1)}
	s.Add(x, termwise.N(2))
	s.Add(termwise.N(-3), y)
	found := s.Found()
	require.Len(t, found, 1)
	assert.True(t, found["x"].Equal(termwise.R(2)))
	assert.False(t, s.Won())

	s.Add(termwise.N(-1), y)
	assert.True(t, s.Won())

	free := termwise.NewSession([]string{"x"})
	free.Add(termwise.F(1, 2), x)
	assert.True(t, free.Won())
}

func TestSession_ApplyTerm(t *testing.T) {
	eng := termwise.NewEngine()
	s, err := termwise.NewCustom(eng, []string{"2x + 3 = 7"})
	require.NoError(t, err)

	out, err := s.ApplyTerm(eng, 1, termwise.OpSub, "3")
	require.NoError(t, err)
	assert.Equal(t, "2*x = 4", out.String())

	_, err = s.ApplyTerm(eng, 1, termwise.OpAdd, "y")
	assert.ErrorIs(t, err, termwise.ErrUnknownSymbol)
	_, err = s.ApplyTerm(eng, 1, termwise.OpAdd, "3 +")
	assert.ErrorIs(t, err, termwise.ErrParse)
	_, err = s.ApplyTerm(eng, 1, termwise.OpDiv, "0")
	assert.ErrorIs(t, err, termwise.ErrInvalidOperand)
	_, err = s.ApplyTerm(eng, 5, termwise.OpAdd, "1")
	assert.ErrorIs(t, err, termwise.ErrEquationNotFound)

	eq, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "2*x = 4", eq.String())

	_, err = s.ApplyTerm(eng, 1, termwise.OpDiv, "2")
	require.NoError(t, err)
	assert.True(t, s.Won())
}

func TestSession_CombineAndSubstituteAppend(t *testing.T) {
	eng := termwise.NewEngine()
	s, err := termwise.NewCustom(eng, []string{"x + y = 3", "x - y = 1"})
	require.NoError(t, err)

	sum, err := s.Combine(eng, 1, 2, termwise.OpAdd)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.ID)
	assert.Len(t, s.Equations, 3)

	_, err = s.ApplyTerm(eng, 3, termwise.OpDiv, "2")
	require.NoError(t, err)

	sub, err := s.Substitute(eng, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.ID)
	assert.Equal(t, "y + 2 = 3", sub.String())

	_, err = s.Substitute(eng, 2, 1)
	assert.ErrorIs(t, err, termwise.ErrNotIsolated)
	assert.Len(t, s.Equations, 4)
}

func TestSession_FlipDistributeMove(t *testing.T) {
	eng := termwise.NewEngine()
	s := termwise.NewSession([]string{"x"})
	s.Add(termwise.MulOf(termwise.N(3), termwise.AddOf(x, termwise.N(2))), termwise.N(12))

	out, err := s.Distribute(eng, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "3*x + 6 = 12", out.String())

	out, err = s.Move(eng, 1,
		termwise.TermRef{Side: termwise.LHS, Index: 1},
		termwise.DropTarget{Side: termwise.RHS, Index: 0, Action: termwise.ActionMerge})
	require.NoError(t, err)
	assert.Equal(t, "3*x = 6", out.String())

	out, err = s.Flip(eng, 1)
	require.NoError(t, err)
	assert.Equal(t, "6 = 3*x", out.String())

	_, err = s.Move(eng, 1, termwise.TermRef{Side: termwise.LHS, Index: 4}, termwise.DropTarget{})
	assert.ErrorIs(t, err, termwise.ErrTermNotFound)
	eq, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "6 = 3*x", eq.String())
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s, err := termwise.NewGame(seeded(5, 6), 3)
	require.NoError(t, err)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var back termwise.Session
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, s.Variables, back.Variables)
	assert.Equal(t, s.NextID, back.NextID)
	require.Len(t, back.Equations, len(s.Equations))
	for i := range s.Equations {
		assert.True(t, s.Equations[i].Equal(back.Equations[i]))
	}
	for k, v := range s.Solution {
		assert.True(t, v.Equal(back.Solution[k]))
	}
	assert.True(t, s.CreatedAt.Equal(back.CreatedAt))
}
