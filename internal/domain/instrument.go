// Package domain contains the core entities of the psychometric instrument
// engine: instrument definitions, the conditional-visibility language,
// scoring rules and evaluation results.
//
// Instrument definitions are immutable after construction and shared
// read-only across all evaluations. Every evaluation is a pure function of
// (instrument, answers, context); the engine keeps no state between calls.
package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Answers maps item identifiers to the submitted response codes.
type Answers map[string]float64

// Context carries respondent demographics and other request-scoped fields
// referenced by visibility conditions and cutoff guards, e.g. "gender".
type Context map[string]string

// Instrument is the complete definition of one questionnaire: sections,
// items, scoring rules, severity cutoffs and declared consistency checks.
type Instrument struct {
	ID       string
	Name     string
	Abstract string

	Sections []Section
	Items    []Item

	// Rules execute in declaration order; the rule named "total" is the
	// instrument total and the input of the severity cutoffs.
	Rules   []ScoringRule
	Cutoffs []CutoffTable
	Checks  []ConsistencyCheck

	itemIndex map[string]*Item
}

// Section groups items for presentation. Grouping never affects scoring.
type Section struct {
	ID    string
	Label string
	Items []string
}

// Item is a single question: its prompt, the constraint on admissible
// response codes, an optional response-code-to-score mapping, an optional
// visibility rule and an optional safety-flag declaration.
type Item struct {
	ID     string
	Prompt string

	Constraint Constraint

	// ScoreMap maps response codes to scores. Nil means identity.
	ScoreMap map[float64]float64

	// Reversed items are recoded as (max code - value) before any
	// aggregation, so that higher always means more symptomatic by the
	// time values reach a scoring rule.
	Reversed bool

	// Visibility gates the item's membership in the active set. Items
	// without a rule are always displayed and always required.
	Visibility *VisibilityRule

	// Safety marks a designated high-risk item (e.g. suicidal ideation).
	Safety *SafetyFlag
}

// VisibilityRule decides whether an item applies to a respondent. Display
// and Required are both gated on the condition evaluating to true; Required
// without Display is an authoring error caught at definition load.
type VisibilityRule struct {
	Condition Condition
	Display   bool
	Required  bool
}

// SafetyFlag raises a named boolean flag when the item's mapped score
// reaches the threshold, independent of the computed total.
type SafetyFlag struct {
	Name      string
	Threshold float64
}

// Constraint describes the admissible values of an item: either a discrete
// code set or numeric bounds.
type Constraint struct {
	// Codes is the discrete allowed set. When empty, Min/Max bounds apply.
	Codes []float64

	Min float64
	Max float64

	// Integer requires whole-number values for bounded constraints.
	Integer bool
}

// DiscreteCodes builds a constraint over an explicit code set.
func DiscreteCodes(codes ...float64) Constraint {
	return Constraint{Codes: codes}
}

// CodeRange builds a discrete integer constraint over lo..hi inclusive.
func CodeRange(lo, hi int) Constraint {
	codes := make([]float64, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		codes = append(codes, float64(c))
	}
	return Constraint{Codes: codes}
}

// Bounds builds a numeric min-max constraint.
func Bounds(min, max float64, integer bool) Constraint {
	return Constraint{Min: min, Max: max, Integer: integer}
}

// Check reports whether a submitted value satisfies the constraint.
func (c Constraint) Check(v float64) bool {
	if len(c.Codes) > 0 {
		for _, code := range c.Codes {
			if code == v {
				return true
			}
		}
		return false
	}
	if v < c.Min || v > c.Max {
		return false
	}
	if c.Integer && v != math.Trunc(v) {
		return false
	}
	return true
}

// Describe renders the allowed set or range for validation messages.
func (c Constraint) Describe() string {
	if len(c.Codes) > 0 {
		parts := make([]string, len(c.Codes))
		for i, code := range c.Codes {
			parts[i] = trimFloat(code)
		}
		return "one of {" + strings.Join(parts, ", ") + "}"
	}
	kind := ""
	if c.Integer {
		kind = "integer "
	}
	return fmt.Sprintf("%sin [%s, %s]", kind, trimFloat(c.Min), trimFloat(c.Max))
}

// MaxCode returns the largest admissible value, the pivot of reverse coding.
func (c Constraint) MaxCode() float64 {
	if len(c.Codes) == 0 {
		return c.Max
	}
	max := c.Codes[0]
	for _, code := range c.Codes[1:] {
		if code > max {
			max = code
		}
	}
	return max
}

// ConsistencyCheck is a declared clinical plausibility check: a pure
// predicate over the validated answer set. A firing check is always a
// warning, never a validation error.
type ConsistencyCheck struct {
	Name      string
	Message   string
	Predicate func(Answers, Context) bool
}

// Item returns the item with the given id, or nil.
func (ins *Instrument) Item(id string) *Item {
	return ins.itemIndex[id]
}

// Display reports whether an item belongs to the active set under env.
// An item without a visibility rule is always displayed.
func (ins *Instrument) Display(item *Item, env Env) bool {
	if item.Visibility == nil {
		return true
	}
	if !item.Visibility.Display {
		return true
	}
	return item.Visibility.Condition.Eval(env) == True
}

// Required reports whether an item must be answered under env. Items are
// required only while displayed.
func (ins *Instrument) Required(item *Item, env Env) bool {
	if !ins.Display(item, env) {
		return false
	}
	if item.Visibility == nil {
		return true
	}
	return item.Visibility.Required
}

// ActiveItems computes the active item set for an evaluation. The validator
// and the structure renderer both use this projection, so the two can never
// disagree about which items apply.
func (ins *Instrument) ActiveItems(answers Answers, ctx Context) map[string]bool {
	env := Env{Answers: answers, Context: ctx}
	active := make(map[string]bool, len(ins.Items))
	for i := range ins.Items {
		item := &ins.Items[i]
		if ins.Display(item, env) {
			active[item.ID] = true
		}
	}
	return active
}

// MappedScore resolves the submitted answer for an item to its scored value:
// score-map lookup (identity when absent) followed by reverse coding.
// The second return is false when the item is unanswered.
func (ins *Instrument) MappedScore(item *Item, answers Answers) (float64, bool) {
	raw, ok := answers[item.ID]
	if !ok {
		return 0, false
	}
	v := raw
	if item.ScoreMap != nil {
		mapped, ok := item.ScoreMap[raw]
		if !ok {
			// Unreachable for validated input: Check verifies the
			// score map covers the constraint's code set.
			return 0, false
		}
		v = mapped
	}
	if item.Reversed {
		v = item.Constraint.MaxCode() - v
	}
	return v, true
}

// Check validates the instrument definition itself. It is run once at
// catalog load; any reported problem is an authoring bug and the process
// must refuse to serve the instrument.
func (ins *Instrument) Check() error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if ins.ID == "" {
		report("instrument id is empty")
	}

	ins.itemIndex = make(map[string]*Item, len(ins.Items))
	for i := range ins.Items {
		item := &ins.Items[i]
		if _, dup := ins.itemIndex[item.ID]; dup {
			report("duplicate item id %q", item.ID)
			continue
		}
		ins.itemIndex[item.ID] = item
	}

	for i := range ins.Items {
		ins.checkItem(&ins.Items[i], report)
	}

	for _, sec := range ins.Sections {
		for _, id := range sec.Items {
			if ins.itemIndex[id] == nil {
				report("section %q references unknown item %q", sec.ID, id)
			}
		}
	}

	ruleNames := make(map[string]bool, len(ins.Rules))
	for _, rule := range ins.Rules {
		ins.checkRule(rule, ruleNames, report)
		ruleNames[rule.RuleName()] = true
	}
	if !ruleNames[TotalRuleName] {
		report("no rule named %q declared", TotalRuleName)
	}

	ins.checkCutoffs(report)

	if len(problems) == 0 {
		return nil
	}
	return &DefinitionError{InstrumentID: ins.ID, Problems: problems}
}

func (ins *Instrument) checkItem(item *Item, report func(string, ...any)) {
	if len(item.Constraint.Codes) == 0 && item.Constraint.Min > item.Constraint.Max {
		report("item %q has an empty value range", item.ID)
	}
	if item.ScoreMap != nil {
		for _, code := range item.Constraint.Codes {
			if _, ok := item.ScoreMap[code]; !ok {
				report("item %q score map misses code %s", item.ID, trimFloat(code))
			}
		}
	}
	if item.Reversed && len(item.Constraint.Codes) == 0 {
		report("item %q is reversed but has no discrete code set", item.ID)
	}
	if vis := item.Visibility; vis != nil {
		if vis.Condition == nil {
			report("item %q has a visibility rule without a condition", item.ID)
		} else {
			for _, name := range ConditionVars(vis.Condition) {
				itemID, isAnswer := strings.CutPrefix(name, AnswerPrefix)
				if isAnswer && ins.itemIndex[itemID] == nil {
					report("item %q visibility references unknown item %q", item.ID, itemID)
				}
			}
		}
		if vis.Required && !vis.Display {
			report("item %q is required without being displayed", item.ID)
		}
	}
	if item.Safety != nil && item.Safety.Name == "" {
		report("item %q declares an unnamed safety flag", item.ID)
	}
}

func (ins *Instrument) checkRule(rule ScoringRule, declared map[string]bool, report func(string, ...any)) {
	name := rule.RuleName()
	if name == "" {
		report("scoring rule with empty name")
	}
	if declared[name] {
		report("duplicate scoring rule %q", name)
	}
	for _, id := range rule.ItemRefs() {
		if ins.itemIndex[id] == nil {
			report("rule %q references unknown item %q", name, id)
		}
	}
	switch r := rule.(type) {
	case *SumRule:
		for _, ref := range r.Rules {
			if !declared[ref] {
				report("rule %q sums rule %q before it is declared", name, ref)
			}
		}
	case *WeightedSumRule:
		if len(r.Weights) != 0 && len(r.Weights) != len(r.Items) {
			report("rule %q has %d weights for %d items", name, len(r.Weights), len(r.Items))
		}
	case *LookupRule:
		ins.checkLookup(r, report)
	case *ConditionalExclusionRule:
		ins.checkExclusion(r, declared, report)
	}
}

func (ins *Instrument) checkLookup(r *LookupRule, report func(string, ...any)) {
	a := ins.itemIndex[r.AxisA]
	b := ins.itemIndex[r.AxisB]
	if a == nil || b == nil {
		return // unknown-item problem already reported
	}
	// The table is indexed by raw codes; a mapped or reversed axis would
	// silently shift which cell a response lands in.
	for _, axis := range []*Item{a, b} {
		if axis.ScoreMap != nil || axis.Reversed {
			report("rule %q axis %q must use raw codes, not a score map or reverse coding", r.Name, axis.ID)
		}
	}
	rows := int(a.Constraint.MaxCode()) + 1
	cols := int(b.Constraint.MaxCode()) + 1
	if len(r.Table) != rows {
		report("rule %q lookup table has %d rows, axis %q spans %d codes", r.Name, len(r.Table), r.AxisA, rows)
		return
	}
	for i, row := range r.Table {
		if len(row) != cols {
			report("rule %q lookup table row %d has %d columns, axis %q spans %d codes", r.Name, i, len(row), r.AxisB, cols)
		}
	}
}

func (ins *Instrument) checkExclusion(r *ConditionalExclusionRule, declared map[string]bool, report func(string, ...any)) {
	if r.Inner == nil {
		report("rule %q has no inner rule", r.Name)
		return
	}
	ins.checkRule(r.Inner, declared, report)
	if len(r.Candidates) < 2 {
		report("rule %q needs at least two candidate items", r.Name)
	}
	inner := make(map[string]bool)
	for _, id := range r.Inner.ItemRefs() {
		inner[id] = true
	}
	candidateIDs := make(map[string]bool)
	for ctxValue, id := range r.Candidates {
		candidateIDs[id] = true
		if ins.itemIndex[id] == nil {
			report("rule %q candidate for %s=%q references unknown item %q", r.Name, r.ContextKey, ctxValue, id)
		}
		if !inner[id] {
			report("rule %q candidate %q is not an input of its inner rule", r.Name, id)
		}
	}
	if !candidateIDs[r.Default] {
		report("rule %q default %q is not a declared candidate", r.Name, r.Default)
	}
}

func (ins *Instrument) checkCutoffs(report func(string, ...any)) {
	if len(ins.Cutoffs) == 0 {
		report("no severity cutoff table declared")
		return
	}
	total := ins.Rule(TotalRuleName)
	fallback := false
	for ti, table := range ins.Cutoffs {
		if table.Guard == nil {
			fallback = true
		}
		bands := append([]Band(nil), table.Bands...)
		sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })
		for i, band := range bands {
			if band.Min > band.Max {
				report("cutoff table %d band %q is inverted", ti, band.Label)
			}
			if i == 0 {
				continue
			}
			prev := bands[i-1]
			if band.Min <= prev.Max {
				report("cutoff table %d bands %q and %q overlap", ti, prev.Label, band.Label)
			} else if band.Min > prev.Max+1 {
				report("cutoff table %d has a gap between %q and %q", ti, prev.Label, band.Label)
			}
		}
		if total != nil && len(bands) > 0 {
			r := total.DeclaredRange()
			if bands[0].Min > r.Min || bands[len(bands)-1].Max < r.Max {
				report("cutoff table %d does not cover the total range [%s, %s]",
					ti, trimFloat(r.Min), trimFloat(r.Max))
			}
		}
	}
	if !fallback {
		report("no unguarded cutoff table declared as fallback")
	}
}

// Rule returns the declared rule with the given name, or nil.
func (ins *Instrument) Rule(name string) ScoringRule {
	for _, rule := range ins.Rules {
		if rule.RuleName() == name {
			return rule
		}
	}
	return nil
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
