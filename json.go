package termwise

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// JSON Serialization
// ============================================================

var opTypes = map[Op]string{OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div"}

// NodeToMap converts n into nested maps of the form
//
//	{"type": "const", "value": "-1/2"}
//	{"type": "sym", "name": "x"}
//	{"type": "neg" | "group", "arg": {...}}
//	{"type": "add" | "sub" | "mul" | "div", "left": {...}, "right": {...}}
func NodeToMap(n Node) map[string]any {
	switch v := n.(type) {
	case *Const:
		return map[string]any{"type": "const", "value": v.Value.String()}
	case *Sym:
		return map[string]any{"type": "sym", "name": v.Name}
	case *Neg:
		return map[string]any{"type": "neg", "arg": NodeToMap(v.X)}
	case *Group:
		return map[string]any{"type": "group", "arg": NodeToMap(v.X)}
	case *Binary:
		return map[string]any{"type": opTypes[v.Op], "left": NodeToMap(v.L), "right": NodeToMap(v.R)}
	}
	panic(unknownNode(n))
}

func NodeFromMap(data map[string]any) (Node, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Node, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return NodeFromMap(m)
	}

	switch typ {
	case "const":
		r, err := rationalField(data["value"])
		if err != nil {
			return nil, fmt.Errorf("const: %w", err)
		}
		return Num(r), nil
	case "sym":
		name, ok := data["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("sym: 'name' must be a non-empty string")
		}
		return S(name), nil
	case "neg", "group":
		x, err := sub("arg")
		if err != nil {
			return nil, err
		}
		if typ == "neg" {
			return NegOf(x), nil
		}
		return GroupOf(x), nil
	}
	for op, name := range opTypes {
		if name != typ {
			continue
		}
		l, err := sub("left")
		if err != nil {
			return nil, err
		}
		r, err := sub("right")
		if err != nil {
			return nil, err
		}
		return BinOf(op, l, r), nil
	}
	return nil, fmt.Errorf("unknown expression type %q", typ)
}

func rationalField(v any) (Rational, error) {
	switch x := v.(type) {
	case string:
		return ParseRational(x)
	case float64:
		return ParseRational(strconv.FormatFloat(x, 'f', -1, 64))
	case int:
		return R(int64(x)), nil
	case int64:
		return R(x), nil
	case nil:
		return Rational{}, fmt.Errorf("missing 'value'")
	}
	return Rational{}, fmt.Errorf("'value' has unsupported type %T", v)
}

func MarshalNode(n Node) ([]byte, error) { return json.Marshal(NodeToMap(n)) }

func UnmarshalNode(b []byte) (Node, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return NodeFromMap(m)
}

type equationJSON struct {
	ID   int            `json:"id"`
	LHS  map[string]any `json:"lhs"`
	RHS  map[string]any `json:"rhs"`
	Text string         `json:"text,omitempty"`
}

func (e Equation) MarshalJSON() ([]byte, error) {
	if e.LHS == nil || e.RHS == nil {
		return nil, fmt.Errorf("equation %d: missing side", e.ID)
	}
	return json.Marshal(equationJSON{ID: e.ID, LHS: NodeToMap(e.LHS), RHS: NodeToMap(e.RHS), Text: e.String()})
}

func (e *Equation) UnmarshalJSON(b []byte) error {
	var raw equationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	return e.fromMaps(raw.ID, raw.LHS, raw.RHS)
}

func (e *Equation) fromMaps(id int, lhs, rhs map[string]any) error {
	l, err := NodeFromMap(lhs)
	if err != nil {
		return fmt.Errorf("equation %d lhs: %w", id, err)
	}
	r, err := NodeFromMap(rhs)
	if err != nil {
		return fmt.Errorf("equation %d rhs: %w", id, err)
	}
	*e = Equation{ID: id, LHS: l, RHS: r}
	return nil
}

// ToMap is the map form of e used by document stores.
func (e Equation) ToMap() map[string]any {
	return map[string]any{"id": e.ID, "lhs": NodeToMap(e.LHS), "rhs": NodeToMap(e.RHS)}
}

func EquationFromMap(m map[string]any) (Equation, error) {
	var id int
	switch v := m["id"].(type) {
	case int:
		id = v
	case float64:
		id = int(v)
	default:
		return Equation{}, fmt.Errorf("equation: 'id' must be a number")
	}
	lhs, _ := m["lhs"].(map[string]any)
	rhs, _ := m["rhs"].(map[string]any)
	var e Equation
	err := e.fromMaps(id, lhs, rhs)
	return e, err
}
