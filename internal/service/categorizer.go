package service

import (
	"github.com/sirupsen/logrus"

	"github.com/psych-instrument-server/internal/domain"
)

// Categorizer maps a total score to a severity label through the
// instrument's cutoff tables: the first table whose guard holds against the
// respondent context applies, and within it the first band containing the
// score wins. A score no band contains is an incomplete table, a definition
// error, because the validator already bounds the score's possible range.
type Categorizer struct {
	logger *logrus.Logger
}

// NewCategorizer creates a categorizer.
func NewCategorizer(logger *logrus.Logger) *Categorizer {
	return &Categorizer{logger: logger}
}

// Categorize resolves the severity label for a computed total score.
func (c *Categorizer) Categorize(ins *domain.Instrument, score float64, answers domain.Answers, ctx domain.Context) (string, error) {
	env := domain.Env{Answers: answers, Context: ctx}
	for _, table := range ins.Cutoffs {
		if table.Guard != nil && table.Guard.Eval(env) != domain.True {
			continue
		}
		for _, band := range table.Bands {
			if score >= band.Min && score <= band.Max {
				return band.Label, nil
			}
		}
		return "", domain.NewDefinitionError(ins.ID,
			"no cutoff band contains score %g", score)
	}
	return "", domain.NewDefinitionError(ins.ID, "no cutoff table applies")
}
