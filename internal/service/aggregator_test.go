package service

import (
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psych-instrument-server/internal/catalog"
	"github.com/psych-instrument-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func loadInstrument(t *testing.T, id string) *domain.Instrument {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	ins, ok := cat.Get(id)
	require.True(t, ok, "instrument %q not in catalog", id)
	return ins
}

func subscale(t *testing.T, result *domain.ScoreResult, name string) float64 {
	t.Helper()
	for _, s := range result.Subscales {
		if s.Name == name {
			return s.Score
		}
	}
	t.Fatalf("subscale %q not in result", name)
	return 0
}

func qidsAnswers() domain.Answers {
	return domain.Answers{
		"qids_1": 1, "qids_2": 2, "qids_3": 3, "qids_4": 0,
		"qids_5": 2,
		"qids_6": 0, "qids_7": 1, "qids_8": 0, "qids_9": 2,
		"qids_10": 1, "qids_11": 1, "qids_12": 0, "qids_13": 1, "qids_14": 2,
		"qids_15": 1, "qids_16": 3,
	}
}

func TestScoreQIDSTakesDomainMaximaNotSums(t *testing.T) {
	ins := loadInstrument(t, "qids-sr16")
	agg := NewAggregator(testLogger())

	result, err := agg.Score(ins, qidsAnswers(), nil)
	require.NoError(t, err)

	// Sleep counts once at its worst, not as the sum of four items.
	assert.Equal(t, 3.0, subscale(t, result, "sleep"))
	assert.Equal(t, 2.0, subscale(t, result, "appetite_weight"))
	assert.Equal(t, 3.0, subscale(t, result, "psychomotor"))
	assert.Equal(t, 15.0, result.Total)
	assert.Equal(t, domain.Range{Min: 0, Max: 27}, result.TotalRange)
}

func TestScoreRefusesUnvalidatedAnswers(t *testing.T) {
	ins := loadInstrument(t, "qids-sr16")
	agg := NewAggregator(testLogger())

	answers := qidsAnswers()
	delete(answers, "qids_5")

	result, err := agg.Score(ins, answers, nil)
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "unvalidated answers")
}

func TestScoreAppliesReverseCoding(t *testing.T) {
	ins := loadInstrument(t, "pss10")
	agg := NewAggregator(testLogger())

	// All-zero answers still score on the four reverse-coded items.
	answers := domain.Answers{}
	for i := 1; i <= 10; i++ {
		answers[fmt.Sprintf("pss_%d", i)] = 0
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 16.0, result.Total)
}

func TestScoreRaisesSafetyFlagIndependentOfTotal(t *testing.T) {
	ins := loadInstrument(t, "phq9")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{}
	for i := 1; i <= 9; i++ {
		answers[fmt.Sprintf("phq9_%d", i)] = 0
	}
	answers["phq9_9"] = 1

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Total)
	assert.Equal(t, []string{"suicidal_ideation"}, result.SafetyFlags)
}

func TestScoreSubtractiveFloorsAtZero(t *testing.T) {
	ins := loadInstrument(t, "ocds5")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"ocds_craving": 2,
		"ocds_c_1":     2, "ocds_c_2": 2, "ocds_c_3": 2, "ocds_c_4": 2, "ocds_c_5": 2,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Total)
	assert.True(t, result.ClampApplied)
}

func TestScoreSubtractiveWithoutClamp(t *testing.T) {
	ins := loadInstrument(t, "ocds5")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"ocds_craving": 8,
		"ocds_c_1":     1, "ocds_c_2": 0, "ocds_c_3": 1, "ocds_c_4": 0, "ocds_c_5": 0,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.Total)
	assert.False(t, result.ClampApplied)
}

func TestScoreLookupTable(t *testing.T) {
	ins := loadInstrument(t, "cgi")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"cgi_severity": 4, "cgi_improvement": 2,
		"cgi_effect": 2, "cgi_side_effects": 1,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 6.0, result.Total)
	assert.Equal(t, 4.0, subscale(t, result, "severity"))
	assert.Equal(t, 2.0, subscale(t, result, "improvement"))
}

func TestScoreLookupNotAssessedRow(t *testing.T) {
	ins := loadInstrument(t, "cgi")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"cgi_severity": 4, "cgi_improvement": 2,
		"cgi_effect": 0, "cgi_side_effects": 3,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Total)
}

func TestScoreLookupTreatsInactiveAxisAsZero(t *testing.T) {
	// An axis item outside the active set contributes code zero, the
	// same row it would land in when not assessed.
	ins := &domain.Instrument{
		ID:   "lk",
		Name: "Lookup",
		Items: []domain.Item{
			{
				ID: "lk_a", Prompt: "a", Constraint: domain.CodeRange(0, 1),
				Visibility: &domain.VisibilityRule{
					Condition: domain.Compare{Op: domain.OpEq, Left: domain.Var{Name: "mode"}, Right: domain.Str("full")},
					Display:   true,
					Required:  false,
				},
			},
			{ID: "lk_b", Prompt: "b", Constraint: domain.CodeRange(0, 1)},
		},
		Sections: []domain.Section{{ID: "main", Label: "Main", Items: []string{"lk_a", "lk_b"}}},
		Rules: []domain.ScoringRule{
			&domain.LookupRule{
				Name:  "total",
				AxisA: "lk_a",
				AxisB: "lk_b",
				Table: [][]float64{{0, 1}, {2, 3}},
				Range: domain.Range{Min: 0, Max: 3},
			},
		},
		Cutoffs: []domain.CutoffTable{
			{Bands: []domain.Band{{Min: 0, Max: 3, Label: "any"}}},
		},
	}
	require.NoError(t, ins.Check())

	agg := NewAggregator(testLogger())

	result, err := agg.Score(ins, domain.Answers{"lk_b": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Total)

	result, err = agg.Score(ins, domain.Answers{"lk_a": 1, "lk_b": 1}, domain.Context{"mode": "full"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.Total)
}

func TestScoreExclusionExplicitContext(t *testing.T) {
	ins := loadInstrument(t, "asex")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"asex_1": 3, "asex_2": 3, "asex_3m": 4, "asex_4": 3, "asex_5": 3,
	}

	result, err := agg.Score(ins, answers, domain.Context{"gender": "M"})
	require.NoError(t, err)
	assert.Equal(t, 16.0, result.Total)
	require.Len(t, result.Exclusions, 1)
	assert.Equal(t, "asex_3m", result.Exclusions[0].Kept)
	assert.Equal(t, []string{"asex_3f"}, result.Exclusions[0].Excluded)
	assert.Equal(t, domain.ExclusionExplicit, result.Exclusions[0].Basis)
}

func TestScoreExclusionInferredFromAnsweredVariant(t *testing.T) {
	ins := loadInstrument(t, "asex")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"asex_1": 2, "asex_2": 2, "asex_3f": 5, "asex_4": 2, "asex_5": 2,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 13.0, result.Total)
	require.Len(t, result.Exclusions, 1)
	assert.Equal(t, "asex_3f", result.Exclusions[0].Kept)
	assert.Equal(t, domain.ExclusionInferred, result.Exclusions[0].Basis)
}

func TestScoreExclusionFallsBackToDefault(t *testing.T) {
	ins := loadInstrument(t, "asex")
	agg := NewAggregator(testLogger())

	// Both variants answered, no context: the default applies and the
	// male variant is excluded from the sum.
	answers := domain.Answers{
		"asex_1": 2, "asex_2": 2, "asex_3f": 5, "asex_3m": 6, "asex_4": 2, "asex_5": 2,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 13.0, result.Total)
	require.Len(t, result.Exclusions, 1)
	assert.Equal(t, "asex_3f", result.Exclusions[0].Kept)
	assert.Equal(t, domain.ExclusionDefault, result.Exclusions[0].Basis)
}

func TestScoreExclusionUnrecognizedContextValue(t *testing.T) {
	ins := loadInstrument(t, "asex")
	agg := NewAggregator(testLogger())

	// A gender value outside the candidate map behaves like an absent
	// one: both variants stay active, the answered one is inferred, and
	// its score enters the total.
	answers := domain.Answers{
		"asex_1": 3, "asex_2": 3, "asex_3f": 4, "asex_4": 3, "asex_5": 3,
	}

	result, err := agg.Score(ins, answers, domain.Context{"gender": "X"})
	require.NoError(t, err)
	assert.Equal(t, 16.0, result.Total)
	require.Len(t, result.Exclusions, 1)
	assert.Equal(t, "asex_3f", result.Exclusions[0].Kept)
	assert.Equal(t, []string{"asex_3m"}, result.Exclusions[0].Excluded)
	assert.Equal(t, domain.ExclusionInferred, result.Exclusions[0].Basis)
}

func TestScoreWeightedSumScalesWellBeing(t *testing.T) {
	ins := loadInstrument(t, "who5")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{
		"who5_1": 3, "who5_2": 3, "who5_3": 3, "who5_4": 3, "who5_5": 3,
	}

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 60.0, result.Total)
}

func TestScoreAllMinimumAnswers(t *testing.T) {
	ins := loadInstrument(t, "qids-sr16")
	svc := NewScoringService(testLogger())

	answers := domain.Answers{}
	for i := 1; i <= 16; i++ {
		answers[fmt.Sprintf("qids_%d", i)] = 0
	}

	_, score, err := svc.Evaluate(ins, answers, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score.Total)
	assert.Equal(t, "no depression", score.Category)
}

func TestScoreSingleDomainElevated(t *testing.T) {
	ins := loadInstrument(t, "qids-sr16")
	agg := NewAggregator(testLogger())

	answers := domain.Answers{}
	for i := 1; i <= 16; i++ {
		answers[fmt.Sprintf("qids_%d", i)] = 0
	}
	answers["qids_1"] = 2
	answers["qids_2"] = 1
	answers["qids_3"] = 1

	result, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)

	// The domain contributes its maximum once, not the sum of its items.
	assert.Equal(t, 2.0, subscale(t, result, "sleep"))
	assert.Equal(t, 2.0, result.Total)
}

func TestScoreCageNeverEscapesDeclaredRange(t *testing.T) {
	ins := loadInstrument(t, "cage")
	agg := NewAggregator(testLogger())

	// Exhaustive over the binary answer space.
	for mask := 0; mask < 16; mask++ {
		answers := domain.Answers{}
		for bit := 0; bit < 4; bit++ {
			answers[fmt.Sprintf("cage_%d", bit+1)] = float64((mask >> bit) & 1)
		}
		result, err := agg.Score(ins, answers, nil)
		require.NoError(t, err)
		assert.True(t, result.TotalRange.Contains(result.Total), "mask %d", mask)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	ins := loadInstrument(t, "qids-sr16")
	agg := NewAggregator(testLogger())
	answers := qidsAnswers()

	first, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)
	second, err := agg.Score(ins, answers, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Subscales, second.Subscales)
	assert.Equal(t, first.SafetyFlags, second.SafetyFlags)
	assert.Equal(t, first.Exclusions, second.Exclusions)
	assert.Equal(t, first.ClampApplied, second.ClampApplied)
}
