package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/psych-instrument-server/internal/domain"
)

// Validator checks an answer set against an instrument definition: presence
// of required active items, per-item constraints, and the instrument's
// declared clinical-consistency checks. Structural problems are fatal and
// block scoring; consistency findings are warnings and never do.
type Validator struct {
	logger *logrus.Logger
}

// NewValidator creates a validator.
func NewValidator(logger *logrus.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate computes the active item set and collects every problem in one
// pass. Answers for items outside the active set are ignored entirely: a
// respondent may have answered an item that demographic context later
// excludes, and that is not an error.
func (v *Validator) Validate(ins *domain.Instrument, answers domain.Answers, ctx domain.Context) *domain.ValidationResult {
	env := domain.Env{Answers: answers, Context: ctx}
	active := ins.ActiveItems(answers, ctx)
	result := &domain.ValidationResult{}

	for i := range ins.Items {
		item := &ins.Items[i]
		raw, answered := answers[item.ID]
		if !active[item.ID] {
			continue
		}
		if !answered {
			if ins.Required(item, env) {
				result.Errors = append(result.Errors, domain.ValidationIssue{
					Item:    item.ID,
					Message: "missing item",
				})
			}
			continue
		}
		if !item.Constraint.Check(raw) {
			value := raw
			result.Errors = append(result.Errors, domain.ValidationIssue{
				Item:    item.ID,
				Message: fmt.Sprintf("value %g not allowed, expected %s", raw, item.Constraint.Describe()),
				Value:   &value,
			})
		}
	}

	// The kept candidate of a conditional-exclusion rule is the one answer
	// that counts; its absence blocks scoring even though candidate items
	// are individually optional.
	for _, rule := range ins.Rules {
		excl, ok := rule.(*domain.ConditionalExclusionRule)
		if !ok {
			continue
		}
		res := excl.Resolve(ins, answers, ctx)
		if _, answered := answers[res.Kept]; !answered {
			result.Errors = append(result.Errors, domain.ValidationIssue{
				Item:    res.Kept,
				Message: fmt.Sprintf("missing item (selected for rule %q)", excl.Name),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	if !result.Valid {
		v.logger.WithFields(logrus.Fields{
			"instrument": ins.ID,
			"errors":     len(result.Errors),
		}).Info("Answer set rejected")
		return result
	}

	for _, check := range ins.Checks {
		if check.Predicate(answers, ctx) {
			result.Warnings = append(result.Warnings, check.Message)
		}
	}
	for i := range ins.Items {
		item := &ins.Items[i]
		if item.Safety == nil || !active[item.ID] {
			continue
		}
		if score, ok := ins.MappedScore(item, answers); ok && score >= item.Safety.Threshold {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("item %q endorsed at or above the %s threshold", item.ID, item.Safety.Name))
		}
	}

	if len(result.Warnings) > 0 {
		v.logger.WithFields(logrus.Fields{
			"instrument": ins.ID,
			"warnings":   len(result.Warnings),
		}).Debug("Answer set validated with warnings")
	}
	return result
}
