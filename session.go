package termwise

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Session — the caller-owned equation collection
// ============================================================

// Session holds one game: the active variables, the equation list and,
// for generated games, the known solution. Session methods that change
// equations go through an Engine and either commit fully or leave the
// session untouched.
type Session struct {
	ID        string              `json:"id"`
	Variables []string            `json:"variables"`
	Equations []Equation          `json:"equations"`
	NextID    int                 `json:"next_id"`
	Solution  map[string]Rational `json:"solution,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewSession(vars []string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Variables: append([]string(nil), vars...),
		NextID:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewGame generates n equations in n unknowns with an integer solution.
func NewGame(rng *rand.Rand, n int) (*Session, error) {
	vars, eqs, solution, err := GenerateSystem(rng, n)
	if err != nil {
		return nil, err
	}
	s := NewSession(vars)
	s.Solution = solution
	for _, eq := range eqs {
		s.Add(eq.LHS, eq.RHS)
	}
	return s, nil
}

// NewCustom starts a game from typed equations ("2x + y = 4"). Each side is
// simplified; the active variables are the symbols used, sorted. There is
// no known solution.
func NewCustom(eng *Engine, texts []string) (*Session, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no equations given", ErrInvalidOperand)
	}
	if len(texts) > MaxVariables {
		return nil, fmt.Errorf("%w: at most %d equations", ErrInvalidOperand, MaxVariables)
	}
	var parsed []Equation
	seen := map[string]bool{}
	var vars []string
	for _, text := range texts {
		eq, err := ParseEquation(text)
		if err != nil {
			return nil, err
		}
		eq, err = eng.both(eq, eq.LHS, eq.RHS)
		if err != nil {
			return nil, err
		}
		for _, side := range []Node{eq.LHS, eq.RHS} {
			for _, name := range FreeSymbols(side) {
				if !seen[name] {
					seen[name] = true
					vars = append(vars, name)
				}
			}
		}
		parsed = append(parsed, eq)
	}
	if len(vars) > MaxVariables {
		return nil, fmt.Errorf("%w: too many variables (%d), at most %d", ErrInvalidOperand, len(vars), MaxVariables)
	}
	slices.Sort(vars)
	s := NewSession(vars)
	for _, eq := range parsed {
		s.Add(eq.LHS, eq.RHS)
	}
	return s, nil
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }

// Add appends a new equation and returns it with its assigned ID.
func (s *Session) Add(lhs, rhs Node) Equation {
	eq := Equation{ID: s.NextID, LHS: lhs, RHS: rhs}
	s.NextID++
	s.Equations = append(s.Equations, eq)
	s.touch()
	return eq
}

func (s *Session) index(id int) int {
	return slices.IndexFunc(s.Equations, func(e Equation) bool { return e.ID == id })
}

func (s *Session) Get(id int) (Equation, error) {
	i := s.index(id)
	if i < 0 {
		return Equation{}, fmt.Errorf("%w: #%d", ErrEquationNotFound, id)
	}
	return s.Equations[i], nil
}

// Put replaces the equation with eq.ID.
func (s *Session) Put(eq Equation) error {
	i := s.index(eq.ID)
	if i < 0 {
		return fmt.Errorf("%w: #%d", ErrEquationNotFound, eq.ID)
	}
	s.Equations[i] = eq
	s.touch()
	return nil
}

func (s *Session) Remove(id int) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: #%d", ErrEquationNotFound, id)
	}
	s.Equations = slices.Delete(s.Equations, i, i+1)
	s.touch()
	return nil
}

// Found returns the variables that some equation isolates to a value. When
// the solution is known, a value only counts if it matches exactly.
func (s *Session) Found() map[string]Rational {
	found := map[string]Rational{}
	for _, eq := range s.Equations {
		name, value, ok := SolvedValue(eq)
		if !ok || !slices.Contains(s.Variables, name) {
			continue
		}
		v, err := Eval(value, nil)
		if err != nil {
			continue
		}
		if want, known := s.Solution[name]; known && !want.Equal(v) {
			continue
		}
		found[name] = v
	}
	return found
}

// Won reports whether every variable has been found.
func (s *Session) Won() bool {
	return len(s.Variables) > 0 && len(s.Found()) == len(s.Variables)
}

// Clone returns a deep copy of the session's bookkeeping. Nodes are shared;
// they are immutable.
func (s *Session) Clone() *Session {
	c := *s
	c.Variables = slices.Clone(s.Variables)
	c.Equations = slices.Clone(s.Equations)
	if s.Solution != nil {
		c.Solution = make(map[string]Rational, len(s.Solution))
		for k, v := range s.Solution {
			c.Solution[k] = v
		}
	}
	return &c
}

// ParseTerm parses a typed operand and checks it only uses the session's
// variables.
func (s *Session) ParseTerm(text string) (Node, error) {
	n, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if err := ValidateSymbols(n, s.Variables); err != nil {
		return nil, err
	}
	return n, nil
}

// ============================================================
// Session operations
// ============================================================

func (s *Session) ApplyTerm(eng *Engine, id int, op Op, text string) (Equation, error) {
	eq, err := s.Get(id)
	if err != nil {
		return Equation{}, err
	}
	term, err := s.ParseTerm(text)
	if err != nil {
		return eq, err
	}
	out, err := eng.ApplyTerm(eq, op, term)
	if err != nil {
		return eq, err
	}
	return out, s.Put(out)
}

func (s *Session) Flip(eng *Engine, id int) (Equation, error) {
	eq, err := s.Get(id)
	if err != nil {
		return Equation{}, err
	}
	out := eng.Flip(eq)
	return out, s.Put(out)
}

// Combine appends a op b as a new equation.
func (s *Session) Combine(eng *Engine, a, b int, op Op) (Equation, error) {
	ea, err := s.Get(a)
	if err != nil {
		return Equation{}, err
	}
	eb, err := s.Get(b)
	if err != nil {
		return Equation{}, err
	}
	out, err := eng.Combine(s.NextID, ea, eb, op)
	if err != nil {
		return Equation{}, err
	}
	return s.Add(out.LHS, out.RHS), nil
}

// Substitute appends target with source's isolated variable replaced.
func (s *Session) Substitute(eng *Engine, source, target int) (Equation, error) {
	src, err := s.Get(source)
	if err != nil {
		return Equation{}, err
	}
	dst, err := s.Get(target)
	if err != nil {
		return Equation{}, err
	}
	out, err := eng.Substitute(s.NextID, src, dst)
	if err != nil {
		return Equation{}, err
	}
	return s.Add(out.LHS, out.RHS), nil
}

// Distribute expands the node carrying tag in TagEquation of equation id.
func (s *Session) Distribute(eng *Engine, id, tag int) (Equation, error) {
	eq, err := s.Get(id)
	if err != nil {
		return Equation{}, err
	}
	out, err := eng.DistributeTag(eq, tag)
	if err != nil {
		return eq, err
	}
	return out, s.Put(out)
}

func (s *Session) Move(eng *Engine, id int, src TermRef, dst DropTarget) (Equation, error) {
	eq, err := s.Get(id)
	if err != nil {
		return Equation{}, err
	}
	out, err := eng.DragApply(eq, src, dst)
	if err != nil {
		return eq, err
	}
	return out, s.Put(out)
}
