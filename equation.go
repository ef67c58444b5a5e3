package termwise

import (
	"fmt"
	"strings"
)

// ============================================================
// Equation
// ============================================================

// Side names one side of an equation.
type Side int

const (
	LHS Side = iota
	RHS
)

func (s Side) String() string {
	if s == RHS {
		return "rhs"
	}
	return "lhs"
}

// ParseSide accepts "lhs"/"l"/"left" and "rhs"/"r"/"right".
func ParseSide(text string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "lhs", "l", "left":
		return LHS, nil
	case "rhs", "r", "right":
		return RHS, nil
	}
	return 0, fmt.Errorf("invalid side %q", text)
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Equation is a value: transforms return a new Equation rather than
// changing the one they were given.
type Equation struct {
	ID       int
	LHS, RHS Node
}

func Eq(lhs, rhs Node) Equation { return Equation{LHS: lhs, RHS: rhs} }

func (e Equation) Side(s Side) Node {
	if s == RHS {
		return e.RHS
	}
	return e.LHS
}

// WithSide returns a copy of e with side s replaced.
func (e Equation) WithSide(s Side, n Node) Equation {
	if s == RHS {
		e.RHS = n
	} else {
		e.LHS = n
	}
	return e
}

func (e Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }

func (e Equation) Equal(o Equation) bool {
	return e.ID == o.ID && e.LHS.Equal(o.LHS) && e.RHS.Equal(o.RHS)
}

// IsolatedSymbol returns the bare-symbol side of eq and the opposite side.
// The left side is preferred when both are bare symbols.
func IsolatedSymbol(eq Equation) (name string, value Node, ok bool) {
	if s, isSym := eq.LHS.(*Sym); isSym {
		return s.Name, eq.RHS, true
	}
	if s, isSym := eq.RHS.(*Sym); isSym {
		return s.Name, eq.LHS, true
	}
	return "", nil, false
}

// Solved reports whether one side of eq is a bare symbol and the other
// contains no symbol at all.
func Solved(eq Equation) bool {
	_, _, ok := SolvedValue(eq)
	return ok
}

// SolvedValue is Solved that also returns the variable and its value.
func SolvedValue(eq Equation) (name string, value Node, ok bool) {
	if s, isSym := eq.LHS.(*Sym); isSym && IsValue(eq.RHS) {
		return s.Name, eq.RHS, true
	}
	if s, isSym := eq.RHS.(*Sym); isSym && IsValue(eq.LHS) {
		return s.Name, eq.LHS, true
	}
	return "", nil, false
}
