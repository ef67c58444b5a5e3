package termwise

import (
	"fmt"
	"math/rand/v2"
)

// VariableNames are handed out in order to generated games.
var VariableNames = []string{"x", "y", "z", "w"}

// MaxVariables bounds both generated and custom games.
const MaxVariables = 4

// randomSolutionValue returns a non-zero integer in [-10, 10].
func randomSolutionValue(rng *rand.Rand) Rational {
	v := rng.IntN(21) - 10
	if v == 0 {
		v = 1
	}
	return R(int64(v))
}

// randomCoefficient returns, with equal odds, a non-zero integer in
// [-5, 5] or a fraction n/d with n in that range and d in [2, 6].
func randomCoefficient(rng *rand.Rand) Rational {
	num := int64(rng.IntN(11) - 5)
	if num == 0 {
		num = 1
	}
	if rng.Float64() > 0.5 {
		return R(num)
	}
	return Frac(num, int64(rng.IntN(5)+2))
}

// Generate builds one equation over vars that holds for solution. Each
// variable term lands on the left with probability 0.7 and otherwise
// moves, negated, to the right.
func Generate(rng *rand.Rand, vars []string, solution map[string]Rational) Equation {
	lhs, rhs := newLinearForm(), newLinearForm()
	total := R(0)
	for _, v := range vars {
		c := randomCoefficient(rng)
		total = total.Add(c.Mul(solution[v]))
		if rng.Float64() > 0.3 {
			lhs.addSym(v, c)
		} else {
			rhs.addSym(v, c.Neg())
		}
	}
	k := randomCoefficient(rng)
	lhs.konst = k
	rhs.konst = k.Add(total)
	return Equation{LHS: lhs.node(), RHS: rhs.node()}
}

// GenerateSystem builds n equations over the first n variable names
// together with their integer solution.
func GenerateSystem(rng *rand.Rand, n int) ([]string, []Equation, map[string]Rational, error) {
	if n < 1 || n > MaxVariables {
		return nil, nil, nil, fmt.Errorf("%w: variable count %d outside 1..%d", ErrInvalidOperand, n, MaxVariables)
	}
	vars := append([]string(nil), VariableNames[:n]...)
	solution := make(map[string]Rational, n)
	for _, v := range vars {
		solution[v] = randomSolutionValue(rng)
	}
	eqs := make([]Equation, n)
	for i := range eqs {
		eqs[i] = Generate(rng, vars, solution)
	}
	return vars, eqs, solution, nil
}
