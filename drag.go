package termwise

import (
	"fmt"
	"strings"
	"time"
)

// Action says what happens to a dragged term at its drop target.
type Action int

const (
	// ActionInsert places the term before the target index.
	ActionInsert Action = iota
	// ActionMerge adds the term into the target term.
	ActionMerge
)

func (a Action) String() string {
	if a == ActionMerge {
		return "merge"
	}
	return "insert"
}

func ParseAction(text string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "insert":
		return ActionInsert, nil
	case "merge":
		return ActionMerge, nil
	}
	return 0, fmt.Errorf("invalid action %q", text)
}

// TermRef names the Index-th term of Flatten(side).
type TermRef struct {
	Side  Side
	Index int
}

// DropTarget names a place in the term list of a side. Indexes refer to
// the list as displayed, before the dragged term is removed. For
// ActionInsert, Index may equal the length of the list to append.
type DropTarget struct {
	Side   Side
	Index  int
	Action Action
}

// Terms returns the displayed term lists of both sides.
func Terms(eq Equation) (lhs, rhs []Term) {
	return Flatten(eq.LHS), Flatten(eq.RHS)
}

// DragApply moves one term. The term is removed from its side, negated when
// it crosses to the other side, and then either inserted at the target
// index or merged into the target term. A merge that does not collapse to
// one term leaves its summands in the target's place. Only the sides
// involved are rebuilt.
func (e *Engine) DragApply(eq Equation, src TermRef, dst DropTarget) (out Equation, err error) {
	defer e.done("drag", time.Now(), eq, &err)

	lists := [2][]Term{}
	lists[LHS], lists[RHS] = Terms(eq)

	from := lists[src.Side]
	if src.Index < 0 || src.Index >= len(from) {
		return eq, fmt.Errorf("%w: %s term %d", ErrTermNotFound, src.Side, src.Index)
	}
	moved := from[src.Index]
	lists[src.Side] = append(append([]Term(nil), from[:src.Index]...), from[src.Index+1:]...)

	idx := dst.Index
	if dst.Side == src.Side {
		if dst.Action == ActionMerge && idx == src.Index {
			return eq, fmt.Errorf("%w: a term cannot merge with itself", ErrNotMergeable)
		}
		if idx > src.Index {
			idx--
		}
	} else {
		moved = moved.Negated()
	}

	to := append([]Term(nil), lists[dst.Side]...)
	switch dst.Action {
	case ActionInsert:
		if idx < 0 || idx > len(to) {
			return eq, fmt.Errorf("%w: %s position %d", ErrTermNotFound, dst.Side, dst.Index)
		}
		to = append(to[:idx], append([]Term{moved}, to[idx:]...)...)
	case ActionMerge:
		if idx < 0 || idx >= len(to) {
			return eq, fmt.Errorf("%w: %s term %d", ErrTermNotFound, dst.Side, dst.Index)
		}
		target := to[idx]
		if !CanMerge(target.Node, moved.Node) {
			return eq, fmt.Errorf("%w: %s and %s", ErrNotMergeable, target.Node, moved.Node)
		}
		merged, merr := e.Merge(target, moved)
		if merr != nil {
			e.logger.Warn("merge failed; equation left unchanged", "side", dst.Side, "error", merr)
			return eq, &SimplificationError{Side: dst.Side, Err: merr}
		}
		parts := splitMerged(merged)
		if c, ok := parts[0].Node.(*Const); ok && len(parts) == 1 && c.Value.IsZero() && len(to) > 1 {
			parts = nil
		}
		to = append(to[:idx], append(parts, to[idx+1:]...)...)
	default:
		return eq, fmt.Errorf("%w: unknown drop action %d", ErrInvalidOperand, dst.Action)
	}
	lists[dst.Side] = to

	out = eq
	out = out.WithSide(src.Side, Rebuild(lists[src.Side]))
	out = out.WithSide(dst.Side, Rebuild(lists[dst.Side]))
	return out, nil
}
