package termwise

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("parse error")

	ErrUnknownSymbol    = errors.New("unknown symbol")
	ErrNotIsolated      = errors.New("source equation has no isolated variable")
	ErrInvalidOperand   = errors.New("invalid operand")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrEquationNotFound = errors.New("equation not found")
	ErrTermNotFound     = errors.New("term not found")
	ErrNotMergeable     = errors.New("terms cannot be merged")
)

// ParseError reports malformed expression text. Pos is a byte offset into
// the input.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Message)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// UnknownSymbolError lists the variables in a typed term that fall outside
// the active set.
type UnknownSymbolError struct {
	Names   []string
	Allowed []string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown variable(s) %s; expected one of %s",
		strings.Join(e.Names, ", "), strings.Join(e.Allowed, ", "))
}

func (e *UnknownSymbolError) Unwrap() error { return ErrUnknownSymbol }

// SimplificationError is returned when the Simplifier fails on one side of
// an equation. The side it names is left as it was.
type SimplificationError struct {
	Side Side
	Err  error
}

func (e *SimplificationError) Error() string {
	return fmt.Sprintf("simplify %s: %v", e.Side, e.Err)
}

func (e *SimplificationError) Unwrap() error { return e.Err }
