package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(answers Answers, ctx Context) Env {
	return Env{Answers: answers, Context: ctx}
}

func TestCompareNumeric(t *testing.T) {
	e := env(Answers{"q1": 2}, nil)

	tests := []struct {
		name string
		op   CmpOp
		want TriState
	}{
		{"eq", OpEq, True},
		{"ne", OpNe, False},
		{"lt", OpLt, False},
		{"le", OpLe, True},
		{"gt", OpGt, False},
		{"ge", OpGe, True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := Compare{Op: tt.op, Left: Var{Name: "answers.q1"}, Right: Num(2)}
			assert.Equal(t, tt.want, cond.Eval(e))
		})
	}
}

func TestCompareMissingVariableIsUnknown(t *testing.T) {
	cond := Compare{Op: OpEq, Left: Var{Name: "answers.q9"}, Right: Num(1)}

	assert.Equal(t, Unknown, cond.Eval(env(Answers{}, nil)))
}

func TestCompareStringContext(t *testing.T) {
	e := env(nil, Context{"gender": "F"})

	eq := Compare{Op: OpEq, Left: Var{Name: "gender"}, Right: Str("F")}
	ne := Compare{Op: OpNe, Left: Var{Name: "gender"}, Right: Str("M")}

	assert.Equal(t, True, eq.Eval(e))
	assert.Equal(t, True, ne.Eval(e))
}

func TestCompareTypeMismatchIsUnknown(t *testing.T) {
	e := env(nil, Context{"gender": "F"})

	// Ordered comparison between a string and a number cannot decide.
	cond := Compare{Op: OpLt, Left: Var{Name: "gender"}, Right: Num(3)}

	assert.Equal(t, Unknown, cond.Eval(e))
}

func TestAndTreatsUnknownAsFalse(t *testing.T) {
	known := Compare{Op: OpEq, Left: Var{Name: "answers.q1"}, Right: Num(1)}
	missing := Compare{Op: OpEq, Left: Var{Name: "answers.q2"}, Right: Num(1)}

	cond := And{Conds: []Condition{known, missing}}

	assert.Equal(t, False, cond.Eval(env(Answers{"q1": 1}, nil)))
}

func TestOrSkipsUnknownOperands(t *testing.T) {
	missing := Compare{Op: OpEq, Left: Var{Name: "answers.q2"}, Right: Num(1)}
	known := Compare{Op: OpEq, Left: Var{Name: "answers.q1"}, Right: Num(1)}

	cond := Or{Conds: []Condition{missing, known}}

	assert.Equal(t, True, cond.Eval(env(Answers{"q1": 1}, nil)))
	assert.Equal(t, False, cond.Eval(env(Answers{"q1": 0}, nil)))
}

func TestNotPreservesUnknown(t *testing.T) {
	missing := Compare{Op: OpEq, Left: Var{Name: "answers.q2"}, Right: Num(1)}

	cond := Not{Cond: missing}

	assert.Equal(t, Unknown, cond.Eval(env(Answers{}, nil)))
}

func TestDefinedNeverUnknown(t *testing.T) {
	cond := Defined{Name: "gender"}

	assert.Equal(t, True, cond.Eval(env(nil, Context{"gender": "M"})))
	assert.Equal(t, False, cond.Eval(env(nil, nil)))
}

func TestConditionVarsSorted(t *testing.T) {
	cond := Or{Conds: []Condition{
		Compare{Op: OpEq, Left: Var{Name: "gender"}, Right: Str("F")},
		And{Conds: []Condition{
			Defined{Name: "age"},
			Compare{Op: OpGt, Left: Var{Name: "answers.q3"}, Right: Num(0)},
		}},
	}}

	assert.Equal(t, []string{"age", "answers.q3", "gender"}, ConditionVars(cond))
}

func TestConditionJSONRoundTrip(t *testing.T) {
	cond := Or{Conds: []Condition{
		Compare{Op: OpEq, Left: Var{Name: "gender"}, Right: Str("F")},
		Not{Cond: Defined{Name: "gender"}},
		And{Conds: []Condition{
			Compare{Op: OpGe, Left: Var{Name: "answers.q1"}, Right: Num(2)},
		}},
	}}

	data, err := MarshalCondition(cond)
	require.NoError(t, err)

	parsed, err := ParseCondition(data)
	require.NoError(t, err)

	// Semantics survive the round trip.
	e := env(Answers{"q1": 2}, Context{"gender": "F"})
	assert.Equal(t, cond.Eval(e), parsed.Eval(e))
	assert.Equal(t, ConditionVars(cond), ConditionVars(parsed))

	reencoded, err := MarshalCondition(parsed)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(reencoded))
}

func TestParseConditionRejectsMalformed(t *testing.T) {
	_, err := ParseCondition([]byte(`{"op":"??","left":{"var":"x"},"right":{"lit":1}}`))
	assert.Error(t, err)

	_, err = ParseCondition([]byte(`{"nonsense":true}`))
	assert.Error(t, err)
}
