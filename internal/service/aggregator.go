package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psych-instrument-server/internal/domain"
)

// Aggregator executes an instrument's scoring rules in declaration order
// against a validated answer set. Scoring is a pure function of
// (instrument, answers, context): identical inputs always produce identical
// scored fields.
//
// Score may only be called after validation passed. Calling it anyway is a
// programming error, not a recoverable runtime condition: it fails with an
// error instead of producing a plausible-looking score.
type Aggregator struct {
	logger    *logrus.Logger
	validator *Validator
}

// NewAggregator creates an aggregator with its guarding validator.
func NewAggregator(logger *logrus.Logger) *Aggregator {
	return &Aggregator{logger: logger, validator: NewValidator(logger)}
}

// Score computes the total, subscales, safety flags and exclusion
// resolutions for a validated answer set. The returned result carries no
// category; the Categorizer attaches it.
func (a *Aggregator) Score(ins *domain.Instrument, answers domain.Answers, ctx domain.Context) (*domain.ScoreResult, error) {
	if vr := a.validator.Validate(ins, answers, ctx); !vr.Valid {
		return nil, fmt.Errorf("score invoked with unvalidated answers for instrument %q: %d fatal errors", ins.ID, len(vr.Errors))
	}

	active := ins.ActiveItems(answers, ctx)
	run := &scoringRun{
		instrument: ins,
		answers:    answers,
		ctx:        ctx,
		active:     active,
		results:    make(map[string]float64, len(ins.Rules)),
	}

	result := &domain.ScoreResult{InstrumentID: ins.ID}
	for _, rule := range ins.Rules {
		value, err := run.eval(rule, nil)
		if err != nil {
			return nil, err
		}
		if r := rule.DeclaredRange(); !r.Contains(value) {
			return nil, domain.NewDefinitionError(ins.ID,
				"rule %q produced %g outside its declared range [%g, %g]",
				rule.RuleName(), value, r.Min, r.Max)
		}
		run.results[rule.RuleName()] = value
		if rule.RuleName() == domain.TotalRuleName {
			result.Total = value
			result.TotalRange = rule.DeclaredRange()
		} else {
			result.Subscales = append(result.Subscales, domain.SubscaleScore{
				Name:  rule.RuleName(),
				Score: value,
				Items: rule.ItemRefs(),
			})
		}
	}

	result.Exclusions = run.exclusions
	result.ClampApplied = run.clampApplied
	result.SafetyFlags = a.safetyFlags(ins, answers, active)
	result.GeneratedAt = time.Now().UTC()

	a.logger.WithFields(logrus.Fields{
		"instrument":   ins.ID,
		"total":        result.Total,
		"subscales":    len(result.Subscales),
		"safety_flags": result.SafetyFlags,
	}).Info("Scoring completed")
	return result, nil
}

// safetyFlags raises the flag of every designated safety item endorsed at
// or above its threshold, independent of the computed total.
func (a *Aggregator) safetyFlags(ins *domain.Instrument, answers domain.Answers, active map[string]bool) []string {
	var flags []string
	for i := range ins.Items {
		item := &ins.Items[i]
		if item.Safety == nil || !active[item.ID] {
			continue
		}
		if score, ok := ins.MappedScore(item, answers); ok && score >= item.Safety.Threshold {
			flags = append(flags, item.Safety.Name)
		}
	}
	return flags
}

// scoringRun holds the per-evaluation state of one Score call. Nothing in
// it survives the call.
type scoringRun struct {
	instrument   *domain.Instrument
	answers      domain.Answers
	ctx          domain.Context
	active       map[string]bool
	results      map[string]float64
	exclusions   []domain.ExclusionResolution
	clampApplied bool
}

// eval executes one rule. excluded holds candidate items dropped by an
// enclosing conditional-exclusion rule.
func (run *scoringRun) eval(rule domain.ScoringRule, excluded map[string]bool) (float64, error) {
	switch r := rule.(type) {
	case *domain.DirectRule:
		v, _ := run.itemScore(r.Item, excluded)
		return v, nil

	case *domain.SumRule:
		sum := 0.0
		for _, id := range r.Items {
			if v, ok := run.itemScore(id, excluded); ok {
				sum += v
			}
		}
		for _, name := range r.Rules {
			v, ok := run.results[name]
			if !ok {
				return 0, domain.NewDefinitionError(run.instrument.ID,
					"rule %q sums undeclared rule %q", r.Name, name)
			}
			sum += v
		}
		return sum, nil

	case *domain.MaxOfGroupRule:
		max := 0.0
		for _, id := range r.Items {
			if v, ok := run.itemScore(id, excluded); ok && v > max {
				max = v
			}
		}
		return max, nil

	case *domain.WeightedSumRule:
		sum := 0.0
		for i, id := range r.Items {
			v, ok := run.itemScore(id, excluded)
			if !ok {
				continue
			}
			weight := 1.0
			if len(r.Weights) > 0 {
				weight = r.Weights[i]
			}
			sum += v * weight
		}
		return sum, nil

	case *domain.SubtractiveRule:
		pos, _ := run.itemScore(r.Positive, excluded)
		neg := 0.0
		for _, id := range r.Negatives {
			if v, ok := run.itemScore(id, excluded); ok {
				neg += v
			}
		}
		value := pos - neg
		if r.FloorZero && value < 0 {
			value = 0
			run.clampApplied = true
		}
		return value, nil

	case *domain.LookupRule:
		return run.lookup(r, excluded)

	case *domain.ConditionalExclusionRule:
		resolution := r.Resolve(run.instrument, run.answers, run.ctx)
		run.exclusions = append(run.exclusions, resolution)
		dropped := make(map[string]bool, len(resolution.Excluded))
		for _, id := range resolution.Excluded {
			dropped[id] = true
		}
		for id := range excluded {
			dropped[id] = true
		}
		return run.eval(r.Inner, dropped)
	}
	return 0, domain.NewDefinitionError(run.instrument.ID,
		"rule %q has unsupported type %T", rule.RuleName(), rule)
}

// lookup indexes the table by the axis items' scored values. Axis items go
// through itemScore like every other rule input, so an excluded or inactive
// axis contributes code zero, the "not assessed" row. Check guarantees axis
// items carry no score map or reverse coding, so the scored value is the
// raw code.
func (run *scoringRun) lookup(r *domain.LookupRule, excluded map[string]bool) (float64, error) {
	va, _ := run.itemScore(r.AxisA, excluded)
	vb, _ := run.itemScore(r.AxisB, excluded)
	a, b := int(va), int(vb)
	if a < 0 || a >= len(r.Table) || b < 0 || b >= len(r.Table[a]) {
		return 0, domain.NewDefinitionError(run.instrument.ID,
			"rule %q lookup out of table bounds: (%d, %d)", r.Name, a, b)
	}
	return r.Table[a][b], nil
}

// itemScore returns the mapped, reverse-coded score of an item, or ok=false
// when the item is excluded, inactive or unanswered and therefore
// contributes nothing to aggregation.
func (run *scoringRun) itemScore(id string, excluded map[string]bool) (float64, bool) {
	if excluded[id] || !run.active[id] {
		return 0, false
	}
	item := run.instrument.Item(id)
	if item == nil {
		return 0, false
	}
	return run.instrument.MappedScore(item, run.answers)
}
