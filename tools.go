package termwise

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// Tool interface
// ============================================================

type ToolRequest struct {
	Tool   string         `json:"tool"`
	Params map[string]any `json:"params"`
}

type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	LaTeX  string `json:"latex,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ToolParam describes one argument of a tool. Type is a JSON schema type.
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
	// Mutates is set for tools whose session must be saved afterwards.
	Mutates bool
}

func eqParam(name string) ToolParam {
	return ToolParam{Name: name, Type: "integer", Description: "Equation number", Required: true}
}

// SessionTools lists the tools HandleToolCall understands.
var SessionTools = []ToolSpec{
	{Name: "list_equations", Description: "List the equations of the game and which variables are found"},
	{Name: "list_terms", Description: "List the numbered terms of both sides of an equation",
		Params: []ToolParam{eqParam("eq")}},
	{Name: "add_equation", Description: "Add an equation typed as 'lhs = rhs'", Mutates: true,
		Params: []ToolParam{{Name: "equation", Type: "string", Description: "Equation text", Required: true}}},
	{Name: "apply_term", Description: "Add, subtract, multiply or divide both sides of an equation by a term", Mutates: true,
		Params: []ToolParam{
			eqParam("eq"),
			{Name: "op", Type: "string", Description: "add, sub, mul or div", Required: true},
			{Name: "term", Type: "string", Description: "Term such as 3x or 1/2", Required: true},
		}},
	{Name: "flip", Description: "Swap the two sides of an equation", Mutates: true,
		Params: []ToolParam{eqParam("eq")}},
	{Name: "combine", Description: "Add or subtract two equations side by side into a new equation", Mutates: true,
		Params: []ToolParam{
			eqParam("a"), eqParam("b"),
			{Name: "op", Type: "string", Description: "add or sub", Required: true},
		}},
	{Name: "substitute", Description: "Replace the isolated variable of one equation in another, as a new equation", Mutates: true,
		Params: []ToolParam{eqParam("source"), eqParam("target")}},
	{Name: "distribute", Description: "Expand a product over a sum, or split a sum over a divisor, at a tag from list_equations", Mutates: true,
		Params: []ToolParam{eqParam("eq"), {Name: "tag", Type: "integer", Description: "Distributable node tag", Required: true}}},
	{Name: "move_term", Description: "Move a term within or across sides, optionally merging it into another term", Mutates: true,
		Params: []ToolParam{
			eqParam("eq"),
			{Name: "from_side", Type: "string", Description: "lhs or rhs", Required: true},
			{Name: "from_index", Type: "integer", Description: "Term number on that side", Required: true},
			{Name: "to_side", Type: "string", Description: "lhs or rhs", Required: true},
			{Name: "to_index", Type: "integer", Description: "Position or term number on that side", Required: true},
			{Name: "action", Type: "string", Description: "insert (default) or merge"},
		}},
	{Name: "delete_equation", Description: "Remove an equation", Mutates: true,
		Params: []ToolParam{eqParam("eq")}},
}

// LookupTool finds a tool by name.
func LookupTool(name string) (ToolSpec, bool) {
	for _, t := range SessionTools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSpec{}, false
}

// EquationView is the JSON shape of one equation in tool results.
type EquationView struct {
	ID            int    `json:"id"`
	Text          string `json:"text"`
	LaTeX         string `json:"latex"`
	Solved        bool   `json:"solved"`
	Distributable []int  `json:"distributable,omitempty"`
}

type TermView struct {
	Side  string `json:"side"`
	Index int    `json:"index"`
	Sign  int    `json:"sign"`
	Text  string `json:"text"`
}

type SessionView struct {
	ID        string            `json:"id"`
	Variables []string          `json:"variables"`
	Equations []EquationView    `json:"equations"`
	Found     map[string]string `json:"found"`
	Won       bool              `json:"won"`
}

func ViewEquation(eq Equation) EquationView {
	return EquationView{
		ID:            eq.ID,
		Text:          eq.String(),
		LaTeX:         eq.LaTeX(),
		Solved:        Solved(eq),
		Distributable: TagEquation(eq).Distributable(eq),
	}
}

func ViewTerms(eq Equation) []TermView {
	var out []TermView
	lhs, rhs := Terms(eq)
	for side, terms := range [][]Term{lhs, rhs} {
		for i, t := range terms {
			out = append(out, TermView{Side: Side(side).String(), Index: i, Sign: t.Sign, Text: t.Node.String()})
		}
	}
	return out
}

func (s *Session) View() SessionView {
	v := SessionView{ID: s.ID, Variables: s.Variables, Found: map[string]string{}, Won: s.Won()}
	for _, eq := range s.Equations {
		v.Equations = append(v.Equations, ViewEquation(eq))
	}
	for name, val := range s.Found() {
		v.Found[name] = val.String()
	}
	return v
}

func (s *Session) Summary() string {
	var sb strings.Builder
	for _, eq := range s.Equations {
		mark := ""
		if Solved(eq) {
			mark = "  ✓"
		}
		fmt.Fprintf(&sb, "(%d) %s%s\n", eq.ID, eq, mark)
	}
	if s.Won() {
		sb.WriteString("all variables found\n")
	}
	return sb.String()
}

// HandleToolCall runs one tool against the session. Failures are reported
// in ToolResponse.Error and leave the session unchanged.
func (s *Session) HandleToolCall(eng *Engine, req ToolRequest) ToolResponse {
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		switch n := v.(type) {
		case float64:
			if n != float64(int(n)) {
				return 0, fmt.Errorf("param %s must be an integer", key)
			}
			return int(n), nil
		case int:
			return n, nil
		case json.Number:
			i, err := n.Int64()
			return int(i), err
		}
		return 0, fmt.Errorf("param %s must be an integer", key)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		str, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return str, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	equation := func(eq Equation, err error) ToolResponse {
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: ViewEquation(eq), LaTeX: eq.LaTeX(), String: eq.String()}
	}

	switch req.Tool {
	case "list_equations":
		return ToolResponse{Result: s.View(), String: s.Summary()}

	case "list_terms":
		id, err := getInt("eq")
		if err != nil {
			return fail(err)
		}
		eq, err := s.Get(id)
		if err != nil {
			return fail(err)
		}
		lhs, rhs := Terms(eq)
		return ToolResponse{Result: ViewTerms(eq), String: FormatTerms(lhs) + " = " + FormatTerms(rhs)}

	case "add_equation":
		text, err := getString("equation")
		if err != nil {
			return fail(err)
		}
		eq, err := ParseEquation(text)
		if err != nil {
			return fail(err)
		}
		for _, side := range []Node{eq.LHS, eq.RHS} {
			if err := ValidateSymbols(side, s.Variables); err != nil {
				return fail(err)
			}
		}
		eq, err = eng.both(eq, eq.LHS, eq.RHS)
		if err != nil {
			return fail(err)
		}
		return equation(s.Add(eq.LHS, eq.RHS), nil)

	case "apply_term":
		id, err := getInt("eq")
		if err != nil {
			return fail(err)
		}
		opName, err := getString("op")
		if err != nil {
			return fail(err)
		}
		op, err := ParseOp(opName)
		if err != nil {
			return fail(err)
		}
		term, err := getString("term")
		if err != nil {
			return fail(err)
		}
		return equation(s.ApplyTerm(eng, id, op, term))

	case "flip":
		id, err := getInt("eq")
		if err != nil {
			return fail(err)
		}
		return equation(s.Flip(eng, id))

	case "combine":
		a, err := getInt("a")
		if err != nil {
			return fail(err)
		}
		b, err := getInt("b")
		if err != nil {
			return fail(err)
		}
		opName, err := getString("op")
		if err != nil {
			return fail(err)
		}
		op, err := ParseOp(opName)
		if err != nil {
			return fail(err)
		}
		return equation(s.Combine(eng, a, b, op))

	case "substitute":
		src, err := getInt("source")
		if err != nil {
			return fail(err)
		}
		dst, err := getInt("target")
		if err != nil {
			return fail(err)
		}
		return equation(s.Substitute(eng, src, dst))

	case "distribute":
		id, err := getInt("eq")
		if err != nil {
			return fail(err)
		}
		tag, err := getInt("tag")
		if err != nil {
			return fail(err)
		}
		return equation(s.Distribute(eng, id, tag))

	case "move_term":
		id, err := getInt("eq")
		if err != nil {
			return fail(err)
		}
		var src TermRef
		var dst DropTarget
		for _, step := range []func() error{
			func() (err error) { src.Side, err = sideParam(getString, "from_side"); return },
			func() (err error) { src.Index, err = getInt("from_index"); return },
			func() (err error) { dst.Side, err = sideParam(getString, "to_side"); return },
			func() (err error) { dst.Index, err = getInt("to_index"); return },
		} {
			if err := step(); err != nil {
				return fail(err)
			}
		}
		if _, ok := req.Params["action"]; ok {
			name, err := getString("action")
			if err != nil {
				return fail(err)
			}
			if dst.Action, err = ParseAction(name); err != nil {
				return fail(err)
			}
		}
		return equation(s.Move(eng, id, src, dst))

	case "delete_equation":
		id, err := getInt("eq")
		if err != nil {
			return fail(err)
		}
		if err := s.Remove(id); err != nil {
			return fail(err)
		}
		return ToolResponse{Result: s.View(), String: fmt.Sprintf("removed (%d)", id)}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func sideParam(get func(string) (string, error), key string) (Side, error) {
	v, err := get(key)
	if err != nil {
		return 0, err
	}
	return ParseSide(v)
}

// ToolSchema returns the JSON schema listing of SessionTools.
func ToolSchema() string {
	tools := make([]map[string]any, 0, len(SessionTools))
	for _, t := range SessionTools {
		props := map[string]any{}
		required := []string{}
		for _, p := range t.Params {
			props[p.Name] = map[string]any{"type": p.Type, "description": p.Description}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		tools = append(tools, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": map[string]any{"type": "object", "properties": props, "required": required},
		})
	}
	b, _ := json.MarshalIndent(map[string]any{"tools": tools}, "", "  ")
	return string(b)
}
