package domain

import (
	"sort"
	"time"
)

// TotalRuleName is the reserved rule name for an instrument's total score.
const TotalRuleName = "total"

// Range declares the numeric bounds of a scoring rule's result. A computed
// value outside its declared range is a definition bug, never clamped
// silently.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports numeric containment, bounds inclusive.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// ScoringRule is the closed union of scoring strategies the engine can
// execute. Concrete variants: DirectRule, SumRule, MaxOfGroupRule,
// WeightedSumRule, SubtractiveRule, LookupRule, ConditionalExclusionRule.
// A new instrument's scoring must fit one of these or the union grows; no
// instrument carries procedural scoring code of its own.
type ScoringRule interface {
	// RuleName is the result name, e.g. "total" or a subscale name.
	RuleName() string
	// ItemRefs lists every item id the rule reads, for load-time checks.
	ItemRefs() []string
	// DeclaredRange bounds every result the rule may legally produce.
	DeclaredRange() Range
}

// DirectRule scores a single item: the result is its mapped value.
type DirectRule struct {
	Name  string
	Item  string
	Range Range
}

func (r *DirectRule) RuleName() string     { return r.Name }
func (r *DirectRule) ItemRefs() []string   { return []string{r.Item} }
func (r *DirectRule) DeclaredRange() Range { return r.Range }

// SumRule sums the mapped values of its items, plus the results of any
// previously declared rules listed in Rules. Reverse-coded items are
// recoded before summation. Items absent from the active set, and optional
// items left unanswered, contribute nothing.
type SumRule struct {
	Name  string
	Items []string
	Rules []string
	Range Range
}

func (r *SumRule) RuleName() string     { return r.Name }
func (r *SumRule) ItemRefs() []string   { return r.Items }
func (r *SumRule) DeclaredRange() Range { return r.Range }

// MaxOfGroupRule scores a symptom domain as the maximum mapped value among
// its items, for either/or domains where only one polarity may count.
type MaxOfGroupRule struct {
	Name  string
	Items []string
	Range Range
}

func (r *MaxOfGroupRule) RuleName() string     { return r.Name }
func (r *MaxOfGroupRule) ItemRefs() []string   { return r.Items }
func (r *MaxOfGroupRule) DeclaredRange() Range { return r.Range }

// WeightedSumRule generalizes SumRule for heterogeneous per-item ranges:
// each item keeps its native scale and an optional per-item weight.
// Weights default to 1 when the slice is empty.
type WeightedSumRule struct {
	Name    string
	Items   []string
	Weights []float64
	Range   Range
}

func (r *WeightedSumRule) RuleName() string     { return r.Name }
func (r *WeightedSumRule) ItemRefs() []string   { return r.Items }
func (r *WeightedSumRule) DeclaredRange() Range { return r.Range }

// SubtractiveRule scores a designated positive component minus the sum of
// negative/confound components. With FloorZero a negative raw result is
// clamped to zero and the clamp is flagged in the ScoreResult.
type SubtractiveRule struct {
	Name      string
	Positive  string
	Negatives []string
	FloorZero bool
	Range     Range
}

func (r *SubtractiveRule) RuleName() string { return r.Name }

func (r *SubtractiveRule) ItemRefs() []string {
	refs := make([]string, 0, len(r.Negatives)+1)
	refs = append(refs, r.Positive)
	refs = append(refs, r.Negatives...)
	return refs
}

func (r *SubtractiveRule) DeclaredRange() Range { return r.Range }

// LookupRule reads the score from a discrete table keyed by two
// bounded-integer axes. Table is indexed [codeA][codeB] over the axes'
// full code ranges, verified at definition load.
type LookupRule struct {
	Name  string
	AxisA string
	AxisB string
	Table [][]float64
	Range Range
}

func (r *LookupRule) RuleName() string     { return r.Name }
func (r *LookupRule) ItemRefs() []string   { return []string{r.AxisA, r.AxisB} }
func (r *LookupRule) DeclaredRange() Range { return r.Range }

// ConditionalExclusionRule keeps exactly one item of a mutually exclusive
// candidate set (e.g. a gender-specific item pair) in the inner rule's
// input set. Resolution order: explicit respondent context, inference from
// which candidate was answered non-zero, then the documented default. The
// chosen basis is part of the ScoreResult, not an internal detail.
type ConditionalExclusionRule struct {
	Name string
	// Inner is the rule whose inputs contain all candidates; the losing
	// candidates are removed before it executes.
	Inner ScoringRule
	// ContextKey is the respondent context field consulted first.
	ContextKey string
	// Candidates maps context values to the item kept for that value.
	Candidates map[string]string
	// Default is the item kept when neither context nor inference decide.
	Default string
}

func (r *ConditionalExclusionRule) RuleName() string     { return r.Name }
func (r *ConditionalExclusionRule) ItemRefs() []string   { return r.Inner.ItemRefs() }
func (r *ConditionalExclusionRule) DeclaredRange() Range { return r.Inner.DeclaredRange() }

// CandidateItems returns the candidate item ids in deterministic order.
func (r *ConditionalExclusionRule) CandidateItems() []string {
	ids := make([]string, 0, len(r.Candidates))
	for _, id := range r.Candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve decides which candidate item stays in the inner rule's input set.
// Ranked strategies: explicit respondent context, inference from the single
// candidate answered with a non-zero mapped score, then the documented
// default. If both mutually exclusive candidates are answered non-zero the
// default applies deterministically; the contradiction surfaces as a
// consistency warning, not an error.
func (r *ConditionalExclusionRule) Resolve(ins *Instrument, answers Answers, ctx Context) ExclusionResolution {
	kept := ""
	basis := ExclusionDefault

	if value, ok := ctx[r.ContextKey]; ok {
		if id, ok := r.Candidates[value]; ok {
			kept = id
			basis = ExclusionExplicit
		}
	}
	if kept == "" {
		endorsed := make([]string, 0, 1)
		for _, id := range r.CandidateItems() {
			item := ins.Item(id)
			if item == nil {
				continue
			}
			if score, ok := ins.MappedScore(item, answers); ok && score != 0 {
				endorsed = append(endorsed, id)
			}
		}
		if len(endorsed) == 1 {
			kept = endorsed[0]
			basis = ExclusionInferred
		}
	}
	if kept == "" {
		kept = r.Default
		basis = ExclusionDefault
	}

	excluded := make([]string, 0, len(r.Candidates)-1)
	for _, id := range r.CandidateItems() {
		if id != kept {
			excluded = append(excluded, id)
		}
	}
	return ExclusionResolution{Rule: r.Name, Kept: kept, Excluded: excluded, Basis: basis}
}

// Band maps a closed numeric interval to a severity label.
type Band struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
}

// CutoffTable is an ordered, non-overlapping, gapless severity mapping for
// the total score, resolved first-match by containment. A guarded table
// applies only when its condition evaluates true against the respondent
// context; the unguarded table is the fallback. Coverage of the total
// rule's declared range is checked at definition load.
type CutoffTable struct {
	Guard Condition
	Bands []Band
}

// ExclusionBasis records how a ConditionalExclusionRule was resolved.
type ExclusionBasis string

const (
	ExclusionExplicit ExclusionBasis = "explicit"
	ExclusionInferred ExclusionBasis = "inferred"
	ExclusionDefault  ExclusionBasis = "default"
)

// ExclusionResolution reports which candidate item a conditional-exclusion
// rule kept, which it dropped, and on what basis, so a caller can show the
// respondent or clinician exactly what was excluded and why.
type ExclusionResolution struct {
	Rule     string         `json:"rule"`
	Kept     string         `json:"kept"`
	Excluded []string       `json:"excluded"`
	Basis    ExclusionBasis `json:"basis"`
}

// SubscaleScore is one named rule result with its contributing item ids.
type SubscaleScore struct {
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Items []string `json:"items"`
}

// ScoreResult is the complete outcome of scoring one validated answer set.
// Identical (instrument, answers, context) inputs always produce identical
// scored fields; GeneratedAt is metadata outside the deterministic core.
type ScoreResult struct {
	InstrumentID string                `json:"instrument_id"`
	Total        float64               `json:"total"`
	TotalRange   Range                 `json:"total_range"`
	Subscales    []SubscaleScore       `json:"subscales,omitempty"`
	SafetyFlags  []string              `json:"safety_flags,omitempty"`
	Exclusions   []ExclusionResolution `json:"exclusions,omitempty"`
	ClampApplied bool                  `json:"clamp_applied,omitempty"`
	Category     string                `json:"category"`
	GeneratedAt  time.Time             `json:"generated_at"`
}
