package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TriState is the result of evaluating a Condition. A variable that is not
// present in the environment makes the surrounding comparison Unknown rather
// than failing: evaluation is total for any environment.
type TriState int8

const (
	False TriState = iota
	True
	Unknown
)

// String returns the string representation of the tri-state value.
func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// AnswerPrefix marks variable references that resolve against the answer map
// rather than the respondent context.
const AnswerPrefix = "answers."

// Env is the combined evaluation environment for visibility conditions and
// cutoff-table guards: submitted answers plus respondent context fields.
type Env struct {
	Answers Answers
	Context Context
}

// Lookup resolves a variable reference. Names with the "answers." prefix
// resolve to numeric answer codes; all other names resolve to string context
// fields such as "gender".
func (e Env) Lookup(name string) (Value, bool) {
	if itemID, ok := strings.CutPrefix(name, AnswerPrefix); ok {
		v, ok := e.Answers[itemID]
		return NumValue(v), ok
	}
	s, ok := e.Context[name]
	return StrValue(s), ok
}

// Value is a scalar produced by an expression: either a number (answer code)
// or a string (context field, string literal).
type Value struct {
	Num      float64
	Str      string
	IsString bool
}

// NumValue wraps a numeric scalar.
func NumValue(f float64) Value { return Value{Num: f} }

// StrValue wraps a string scalar.
func StrValue(s string) Value { return Value{Str: s, IsString: true} }

// Expr is an operand of a comparison: a variable reference or a literal.
type Expr interface {
	value(env Env) (Value, bool)
	collectVars(set map[string]struct{})
	exprJSON() any
}

// Var references an environment variable: "answers.<item_id>" or a context
// field name such as "gender".
type Var struct {
	Name string
}

func (v Var) value(env Env) (Value, bool)         { return env.Lookup(v.Name) }
func (v Var) collectVars(set map[string]struct{}) { set[v.Name] = struct{}{} }
func (v Var) exprJSON() any                       { return map[string]any{"var": v.Name} }

// Lit is a literal scalar operand.
type Lit struct {
	Value Value
}

// Num builds a numeric literal.
func Num(f float64) Lit { return Lit{Value: NumValue(f)} }

// Str builds a string literal.
func Str(s string) Lit { return Lit{Value: StrValue(s)} }

func (l Lit) value(Env) (Value, bool)         { return l.Value, true }
func (l Lit) collectVars(map[string]struct{}) {}
func (l Lit) exprJSON() any {
	if l.Value.IsString {
		return map[string]any{"lit": l.Value.Str}
	}
	return map[string]any{"lit": l.Value.Num}
}

// CmpOp is a comparison operator of the condition language.
type CmpOp string

const (
	OpEq CmpOp = "=="
	OpNe CmpOp = "!="
	OpLt CmpOp = "<"
	OpLe CmpOp = "<="
	OpGt CmpOp = ">"
	OpGe CmpOp = ">="
)

// Condition is a boolean expression over answers and respondent context.
// Evaluation is side-effect free and total: no input can make it fail.
//
// Unknown propagation follows the display semantics of the instrument
// definitions: inside And an unknown operand behaves as false, inside Or an
// unknown operand defers to the remaining operands. Only Compare, Not and
// Defined can surface Unknown at the top level.
type Condition interface {
	Eval(env Env) TriState
	collectVars(set map[string]struct{})
	condJSON() any
}

// Compare applies a comparison operator to two scalar operands. A missing
// variable on either side yields Unknown. Ordered operators require numeric
// operands; a type mismatch also yields Unknown rather than an error.
type Compare struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

func (c Compare) Eval(env Env) TriState {
	l, lok := c.Left.value(env)
	r, rok := c.Right.value(env)
	if !lok || !rok {
		return Unknown
	}
	if l.IsString != r.IsString {
		return Unknown
	}
	if l.IsString {
		switch c.Op {
		case OpEq:
			return boolState(l.Str == r.Str)
		case OpNe:
			return boolState(l.Str != r.Str)
		default:
			// No ordering defined over context strings.
			return Unknown
		}
	}
	switch c.Op {
	case OpEq:
		return boolState(l.Num == r.Num)
	case OpNe:
		return boolState(l.Num != r.Num)
	case OpLt:
		return boolState(l.Num < r.Num)
	case OpLe:
		return boolState(l.Num <= r.Num)
	case OpGt:
		return boolState(l.Num > r.Num)
	case OpGe:
		return boolState(l.Num >= r.Num)
	}
	return Unknown
}

func (c Compare) collectVars(set map[string]struct{}) {
	c.Left.collectVars(set)
	c.Right.collectVars(set)
}

func (c Compare) condJSON() any {
	return map[string]any{"op": string(c.Op), "left": c.Left.exprJSON(), "right": c.Right.exprJSON()}
}

// And is a conjunction. An Unknown operand behaves as false.
type And struct {
	Conds []Condition
}

func (a And) Eval(env Env) TriState {
	for _, c := range a.Conds {
		if c.Eval(env) != True {
			return False
		}
	}
	return True
}

func (a And) collectVars(set map[string]struct{}) {
	for _, c := range a.Conds {
		c.collectVars(set)
	}
}

func (a And) condJSON() any { return map[string]any{"and": condListJSON(a.Conds)} }

// Or is a disjunction. An Unknown operand defers to the other operands.
type Or struct {
	Conds []Condition
}

func (o Or) Eval(env Env) TriState {
	for _, c := range o.Conds {
		if c.Eval(env) == True {
			return True
		}
	}
	return False
}

func (o Or) collectVars(set map[string]struct{}) {
	for _, c := range o.Conds {
		c.collectVars(set)
	}
}

func (o Or) condJSON() any { return map[string]any{"or": condListJSON(o.Conds)} }

// Not negates its operand. Unknown stays Unknown.
type Not struct {
	Cond Condition
}

func (n Not) Eval(env Env) TriState {
	switch n.Cond.Eval(env) {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

func (n Not) collectVars(set map[string]struct{}) { n.Cond.collectVars(set) }
func (n Not) condJSON() any                       { return map[string]any{"not": n.Cond.condJSON()} }

// Defined tests whether a variable is present in the environment. Unlike a
// comparison on the same variable it never yields Unknown, which lets
// definitions test explicitly for absence.
type Defined struct {
	Name string
}

func (d Defined) Eval(env Env) TriState {
	_, ok := env.Lookup(d.Name)
	return boolState(ok)
}

func (d Defined) collectVars(set map[string]struct{}) { set[d.Name] = struct{}{} }
func (d Defined) condJSON() any                       { return map[string]any{"defined": d.Name} }

func boolState(b bool) TriState {
	if b {
		return True
	}
	return False
}

func condListJSON(conds []Condition) []any {
	out := make([]any, len(conds))
	for i, c := range conds {
		out[i] = c.condJSON()
	}
	return out
}

// ConditionVars returns the sorted list of variable names referenced by a
// condition. Used by definition-load checks to reject conditions that
// reference undeclared items.
func ConditionVars(c Condition) []string {
	set := make(map[string]struct{})
	c.collectVars(set)
	vars := make([]string, 0, len(set))
	for name := range set {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// MarshalCondition encodes a condition tree as JSON. Together with
// ParseCondition it gives the condition language a lossless wire form for
// any definition store.
func MarshalCondition(c Condition) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("cannot marshal nil condition")
	}
	return json.Marshal(c.condJSON())
}

// ParseCondition decodes a condition tree from its JSON form.
func ParseCondition(data []byte) (Condition, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid condition: %w", err)
	}
	return parseCondNode(raw)
}

func parseCondNode(raw map[string]json.RawMessage) (Condition, error) {
	switch {
	case raw["op"] != nil:
		var op string
		if err := json.Unmarshal(raw["op"], &op); err != nil {
			return nil, fmt.Errorf("invalid comparison operator: %w", err)
		}
		switch CmpOp(op) {
		case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		default:
			return nil, fmt.Errorf("unknown comparison operator %q", op)
		}
		left, err := parseExprNode(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := parseExprNode(raw["right"])
		if err != nil {
			return nil, err
		}
		return Compare{Op: CmpOp(op), Left: left, Right: right}, nil
	case raw["and"] != nil:
		conds, err := parseCondList(raw["and"])
		if err != nil {
			return nil, err
		}
		return And{Conds: conds}, nil
	case raw["or"] != nil:
		conds, err := parseCondList(raw["or"])
		if err != nil {
			return nil, err
		}
		return Or{Conds: conds}, nil
	case raw["not"] != nil:
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw["not"], &inner); err != nil {
			return nil, fmt.Errorf("invalid not operand: %w", err)
		}
		cond, err := parseCondNode(inner)
		if err != nil {
			return nil, err
		}
		return Not{Cond: cond}, nil
	case raw["defined"] != nil:
		var name string
		if err := json.Unmarshal(raw["defined"], &name); err != nil {
			return nil, fmt.Errorf("invalid defined operand: %w", err)
		}
		return Defined{Name: name}, nil
	}
	return nil, fmt.Errorf("unrecognized condition node")
}

func parseCondList(data json.RawMessage) ([]Condition, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("invalid condition list: %w", err)
	}
	conds := make([]Condition, 0, len(items))
	for _, item := range items {
		c, err := parseCondNode(item)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func parseExprNode(data json.RawMessage) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("missing comparison operand")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid comparison operand: %w", err)
	}
	switch {
	case raw["var"] != nil:
		var name string
		if err := json.Unmarshal(raw["var"], &name); err != nil {
			return nil, fmt.Errorf("invalid variable reference: %w", err)
		}
		return Var{Name: name}, nil
	case raw["lit"] != nil:
		var num float64
		if err := json.Unmarshal(raw["lit"], &num); err == nil {
			return Num(num), nil
		}
		var str string
		if err := json.Unmarshal(raw["lit"], &str); err != nil {
			return nil, fmt.Errorf("invalid literal: %w", err)
		}
		return Str(str), nil
	}
	return nil, fmt.Errorf("unrecognized expression node")
}
