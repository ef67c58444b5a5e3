package termwise

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ============================================================
// Engine — equation transforms
// ============================================================

// Observer is notified after every transform with its name, how long it
// took and its error, if any.
type Observer interface {
	ObserveTransform(op string, dur time.Duration, err error)
}

// Engine applies solution-preserving transforms to equations. Every
// transform is a pure function of its arguments: the input equations are
// never modified and on error the input equation is returned as it was.
// An Engine is safe for concurrent use if its Simplifier and Observer are.
type Engine struct {
	simplifier Simplifier
	logger     *slog.Logger
	observer   Observer
}

type Option func(*Engine)

func WithSimplifier(s Simplifier) Option { return func(e *Engine) { e.simplifier = s } }
func WithLogger(l *slog.Logger) Option   { return func(e *Engine) { e.logger = l } }
func WithObserver(o Observer) Option     { return func(e *Engine) { e.observer = o } }

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		simplifier: LinearSimplifier{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) done(op string, start time.Time, eq Equation, errp *error) {
	err := *errp
	if e.observer != nil {
		e.observer.ObserveTransform(op, time.Since(start), err)
	}
	if err != nil {
		e.logger.Debug("transform rejected", "op", op, "eq", eq.ID, "error", err)
		return
	}
	e.logger.Debug("transform", "op", op, "eq", eq.ID)
}

// simplify runs the simplifier and canonicalises its output.
func (e *Engine) simplify(side Side, n Node) (Node, error) {
	out, err := e.simplifier.Simplify(n)
	if err != nil {
		e.logger.Warn("simplifier failed; side left unchanged", "side", side, "expr", n.String(), "error", err)
		return nil, &SimplificationError{Side: side, Err: err}
	}
	return Canonicalize(out), nil
}

// both simplifies lhs and rhs. Either both succeed or eq is returned with
// the error.
func (e *Engine) both(eq Equation, lhs, rhs Node) (Equation, error) {
	l, err := e.simplify(LHS, lhs)
	if err != nil {
		return eq, err
	}
	r, err := e.simplify(RHS, rhs)
	if err != nil {
		return eq, err
	}
	eq.LHS, eq.RHS = l, r
	return eq, nil
}

// Flip swaps the two sides.
func (e *Engine) Flip(eq Equation) Equation {
	var err error
	defer e.done("flip", time.Now(), eq, &err)
	eq.LHS, eq.RHS = eq.RHS, eq.LHS
	return eq
}

// ApplyTerm applies op with term to both sides, e.g. "subtract 3x". Dividing
// or multiplying by a term that simplifies to zero fails with
// ErrInvalidOperand.
func (e *Engine) ApplyTerm(eq Equation, op Op, term Node) (out Equation, err error) {
	defer e.done("apply_term", time.Now(), eq, &err)
	if op == OpMul || op == OpDiv {
		v, serr := e.simplifier.Simplify(term)
		if serr != nil {
			return eq, &SimplificationError{Side: LHS, Err: serr}
		}
		if c, ok := Canonicalize(v).(*Const); ok && c.Value.IsZero() {
			return eq, fmt.Errorf("%w: cannot %s both sides by zero", ErrInvalidOperand, verb(op))
		}
	}
	return e.both(eq, BinOf(op, eq.LHS, term), BinOf(op, eq.RHS, term))
}

func verb(op Op) string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "subtract"
	case OpMul:
		return "multiply"
	}
	return "divide"
}

// Combine adds or subtracts b from a side by side, producing a new equation
// with the given id.
func (e *Engine) Combine(id int, a, b Equation, op Op) (out Equation, err error) {
	defer e.done("combine", time.Now(), a, &err)
	if op != OpAdd && op != OpSub {
		return Equation{}, fmt.Errorf("%w: equations combine by %s only with + or -", ErrInvalidOperand, op)
	}
	return e.both(Equation{ID: id}, BinOf(op, a.LHS, b.LHS), BinOf(op, a.RHS, b.RHS))
}

// Substitute replaces the isolated variable of source by its value
// throughout target, producing a new equation with the given id. source
// must have a bare symbol on one side.
func (e *Engine) Substitute(id int, source, target Equation) (out Equation, err error) {
	defer e.done("substitute", time.Now(), target, &err)
	name, value, ok := IsolatedSymbol(source)
	if !ok {
		return Equation{}, fmt.Errorf("%w: %s", ErrNotIsolated, source)
	}
	return e.both(Equation{ID: id},
		ReplaceSymbol(target.LHS, name, value),
		ReplaceSymbol(target.RHS, name, value))
}

// DistributeAt distributes the node at loc. A locator that does not resolve,
// or that names a node Distribute cannot expand, leaves eq unchanged.
func (e *Engine) DistributeAt(eq Equation, loc Locator) (out Equation, err error) {
	defer e.done("distribute", time.Now(), eq, &err)
	side := eq.Side(loc.Side)
	n, ok := NodeAt(side, loc.Path)
	if !ok || !Distributable(n) {
		return eq, nil
	}
	d, err := e.Distribute(n)
	if err != nil {
		e.logger.Warn("distribution failed; side left unchanged", "side", loc.Side, "error", err)
		return eq, &SimplificationError{Side: loc.Side, Err: err}
	}
	replaced, _ := ReplaceAt(side, loc.Path, d)
	return eq.WithSide(loc.Side, Canonicalize(replaced)), nil
}

// DistributeTag resolves a tag from TagEquation(eq) and distributes there.
func (e *Engine) DistributeTag(eq Equation, tag int) (Equation, error) {
	loc, ok := TagEquation(eq).Lookup(tag)
	if !ok {
		return eq, nil
	}
	return e.DistributeAt(eq, loc)
}

// Merge merges two terms with the engine's simplifier.
func (e *Engine) Merge(a, b Term) (Term, error) {
	return Merge(a, b, e.simplifier)
}

// Distribute expands n one level with the engine's simplifier.
func (e *Engine) Distribute(n Node) (Node, error) {
	return Distribute(n, e.simplifier)
}
