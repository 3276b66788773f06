package catalog

import (
	"github.com/psych-instrument-server/internal/domain"
)

// ASEX is the Arizona Sexual Experience Scale. Item 3 exists in two
// gender-specific variants; exactly one of them enters the total, chosen
// from respondent context, from which variant was answered, or from the
// documented default when neither decides.
func ASEX() *domain.Instrument {
	scale := domain.CodeRange(1, 6)
	// Each variant is hidden only when the context names the other one.
	// An absent or unrecognized gender shows both, matching the exclusion
	// rule, which falls back to answer inference and then the default in
	// exactly those cases.
	notMale := domain.Or{Conds: []domain.Condition{
		domain.Compare{Op: domain.OpNe, Left: domain.Var{Name: "gender"}, Right: domain.Str("M")},
		domain.Not{Cond: domain.Defined{Name: "gender"}},
	}}
	notFemale := domain.Or{Conds: []domain.Condition{
		domain.Compare{Op: domain.OpNe, Left: domain.Var{Name: "gender"}, Right: domain.Str("F")},
		domain.Not{Cond: domain.Defined{Name: "gender"}},
	}}

	list := []domain.Item{
		{ID: "asex_1", Prompt: "How strong is your sex drive?", Constraint: scale},
		{ID: "asex_2", Prompt: "How easily are you sexually aroused (turned on)?", Constraint: scale},
		{
			ID:         "asex_3f",
			Prompt:     "How easily does your vagina become moist or wet during sex?",
			Constraint: scale,
			Visibility: &domain.VisibilityRule{Condition: notMale, Display: true, Required: false},
		},
		{
			ID:         "asex_3m",
			Prompt:     "Can you easily get and keep an erection?",
			Constraint: scale,
			Visibility: &domain.VisibilityRule{Condition: notFemale, Display: true, Required: false},
		},
		{ID: "asex_4", Prompt: "How easily can you reach an orgasm?", Constraint: scale},
		{ID: "asex_5", Prompt: "Are your orgasms satisfying?", Constraint: scale},
	}

	return &domain.Instrument{
		ID:       "asex",
		Name:     "Arizona Sexual Experience Scale",
		Abstract: "Five-item rating of sexual function with a gender-specific third item.",
		Sections: singleSection("asex_main", "For each item, please mark the response that best describes you over the past week.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.ConditionalExclusionRule{
				Name: "total",
				Inner: &domain.SumRule{
					Name:  "total",
					Items: ids(list),
					Range: domain.Range{Min: 5, Max: 30},
				},
				ContextKey: "gender",
				Candidates: map[string]string{"F": "asex_3f", "M": "asex_3m"},
				Default:    "asex_3f",
			},
		},
		Cutoffs: bands(
			domain.Band{Min: 5, Max: 18, Label: "no dysfunction indicated"},
			domain.Band{Min: 19, Max: 30, Label: "sexual dysfunction likely"},
		),
		Checks: []domain.ConsistencyCheck{
			{
				Name:    "asex_both_variants",
				Message: "both variants of item 3 are answered; only the variant matching the respondent is scored",
				Predicate: func(answers domain.Answers, _ domain.Context) bool {
					_, f := answers["asex_3f"]
					_, m := answers["asex_3m"]
					return f && m
				},
			},
		},
	}
}

// CGI is the Clinical Global Impressions scale, clinician-rated. Severity
// and improvement are reported directly; the efficacy index is read from a
// therapeutic-effect by side-effect table, with row zero reserved for "not
// assessed".
func CGI() *domain.Instrument {
	list := []domain.Item{
		{ID: "cgi_severity", Prompt: "Considering your total clinical experience, how mentally ill is the patient at this time?", Constraint: domain.CodeRange(0, 7)},
		{ID: "cgi_improvement", Prompt: "Compared to the patient's condition at admission, how much has the patient changed?", Constraint: domain.CodeRange(0, 7)},
		{ID: "cgi_effect", Prompt: "Rate the therapeutic effect of the current treatment.", Constraint: domain.CodeRange(0, 4)},
		{ID: "cgi_side_effects", Prompt: "Rate the severity of side effects attributable to the current treatment.", Constraint: domain.CodeRange(0, 3)},
	}

	return &domain.Instrument{
		ID:       "cgi",
		Name:     "Clinical Global Impressions",
		Abstract: "Clinician-rated global severity, improvement and efficacy index.",
		Sections: singleSection("cgi_main", "Clinician ratings of overall illness severity and treatment response.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.DirectRule{Name: "severity", Item: "cgi_severity", Range: domain.Range{Min: 0, Max: 7}},
			&domain.DirectRule{Name: "improvement", Item: "cgi_improvement", Range: domain.Range{Min: 0, Max: 7}},
			&domain.LookupRule{
				Name:  "total",
				AxisA: "cgi_effect",
				AxisB: "cgi_side_effects",
				Table: [][]float64{
					{0, 0, 0, 0},
					{1, 2, 3, 4},
					{5, 6, 7, 8},
					{9, 10, 11, 12},
					{13, 14, 15, 16},
				},
				Range: domain.Range{Min: 0, Max: 16},
			},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 0, Label: "not assessed"},
			domain.Band{Min: 1, Max: 4, Label: "marked improvement relative to side effects"},
			domain.Band{Min: 5, Max: 8, Label: "moderate improvement relative to side effects"},
			domain.Band{Min: 9, Max: 12, Label: "minimal improvement relative to side effects"},
			domain.Band{Min: 13, Max: 16, Label: "unchanged or worse"},
		),
	}
}

// PHQ15 is the somatic symptom module of the Patient Health Questionnaire.
// The menstrual-problems item applies only when respondent context records
// gender F, and is required there.
func PHQ15() *domain.Instrument {
	list := items("phq15", domain.CodeRange(0, 2),
		"Stomach pain",
		"Back pain",
		"Pain in your arms, legs, or joints",
		"Menstrual cramps or other problems with your periods",
		"Headaches",
		"Chest pain",
		"Dizziness",
		"Fainting spells",
		"Feeling your heart pound or race",
		"Shortness of breath",
		"Pain or problems during sexual intercourse",
		"Constipation, loose bowels, or diarrhea",
		"Nausea, gas, or indigestion",
		"Feeling tired or having low energy",
		"Trouble sleeping",
	)
	list[3].Visibility = &domain.VisibilityRule{
		Condition: domain.Compare{Op: domain.OpEq, Left: domain.Var{Name: "gender"}, Right: domain.Str("F")},
		Display:   true,
		Required:  true,
	}

	return &domain.Instrument{
		ID:       "phq15",
		Name:     "Patient Health Questionnaire-15",
		Abstract: "Fifteen-item somatic symptom severity measure.",
		Sections: singleSection("phq15_main", "During the past four weeks, how much have you been bothered by any of the following problems?", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 30}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 4, Label: "minimal somatic symptoms"},
			domain.Band{Min: 5, Max: 9, Label: "mild somatic symptoms"},
			domain.Band{Min: 10, Max: 14, Label: "moderate somatic symptoms"},
			domain.Band{Min: 15, Max: 30, Label: "severe somatic symptoms"},
		),
	}
}
