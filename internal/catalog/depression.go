package catalog

import (
	"github.com/psych-instrument-server/internal/domain"
)

// PHQ9 is the Patient Health Questionnaire depression module: nine items
// scored 0-3, summed, with a designated suicidal-ideation safety item.
func PHQ9() *domain.Instrument {
	list := items("phq9", domain.CodeRange(0, 3),
		"Little interest or pleasure in doing things",
		"Feeling down, depressed, or hopeless",
		"Trouble falling or staying asleep, or sleeping too much",
		"Feeling tired or having little energy",
		"Poor appetite or overeating",
		"Feeling bad about yourself, or that you are a failure",
		"Trouble concentrating on things, such as reading",
		"Moving or speaking noticeably slowly, or being fidgety or restless",
		"Thoughts that you would be better off dead, or of hurting yourself",
	)
	list[8].Safety = &domain.SafetyFlag{Name: "suicidal_ideation", Threshold: 1}

	return &domain.Instrument{
		ID:       "phq9",
		Name:     "Patient Health Questionnaire-9",
		Abstract: "Nine-item self-report depression severity measure over the last two weeks.",
		Sections: singleSection("phq9_main", "Over the last two weeks, how often have you been bothered by the following problems?", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 27}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 4, Label: "minimal depression"},
			domain.Band{Min: 5, Max: 9, Label: "mild depression"},
			domain.Band{Min: 10, Max: 14, Label: "moderate depression"},
			domain.Band{Min: 15, Max: 19, Label: "moderately severe depression"},
			domain.Band{Min: 20, Max: 27, Label: "severe depression"},
		),
		Checks: []domain.ConsistencyCheck{
			allIdentical(ids(list), "all nine responses are identical; response style may be inattentive"),
		},
	}
}

// QIDS is the Quick Inventory of Depressive Symptomatology (self-report,
// 16 items). Sleep, appetite/weight and psychomotor domains score as the
// maximum within the group, so that only one polarity of an either/or
// symptom pair counts; the remaining six items score directly. The total
// sums the nine domain scores.
func QIDS() *domain.Instrument {
	list := items("qids", domain.CodeRange(0, 3),
		"Falling asleep",
		"Sleep during the night",
		"Waking up too early",
		"Sleeping too much",
		"Feeling sad",
		"Decreased appetite",
		"Increased appetite",
		"Decreased weight within the last two weeks",
		"Increased weight within the last two weeks",
		"Concentration and decision making",
		"View of myself",
		"Thoughts of death or suicide",
		"General interest",
		"Energy level",
		"Feeling slowed down",
		"Feeling restless",
	)
	list[11].Safety = &domain.SafetyFlag{Name: "suicidal_ideation", Threshold: 1}

	return &domain.Instrument{
		ID:       "qids-sr16",
		Name:     "Quick Inventory of Depressive Symptomatology (Self-Report)",
		Abstract: "Sixteen-item depression measure scoring nine symptom domains.",
		Sections: singleSection("qids_main", "Please circle the one response to each item that best describes you for the past seven days.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.MaxOfGroupRule{Name: "sleep", Items: []string{"qids_1", "qids_2", "qids_3", "qids_4"}, Range: domain.Range{Min: 0, Max: 3}},
			&domain.DirectRule{Name: "sad_mood", Item: "qids_5", Range: domain.Range{Min: 0, Max: 3}},
			&domain.MaxOfGroupRule{Name: "appetite_weight", Items: []string{"qids_6", "qids_7", "qids_8", "qids_9"}, Range: domain.Range{Min: 0, Max: 3}},
			&domain.DirectRule{Name: "concentration", Item: "qids_10", Range: domain.Range{Min: 0, Max: 3}},
			&domain.DirectRule{Name: "self_view", Item: "qids_11", Range: domain.Range{Min: 0, Max: 3}},
			&domain.DirectRule{Name: "suicidal_ideation", Item: "qids_12", Range: domain.Range{Min: 0, Max: 3}},
			&domain.DirectRule{Name: "interest", Item: "qids_13", Range: domain.Range{Min: 0, Max: 3}},
			&domain.DirectRule{Name: "energy", Item: "qids_14", Range: domain.Range{Min: 0, Max: 3}},
			&domain.MaxOfGroupRule{Name: "psychomotor", Items: []string{"qids_15", "qids_16"}, Range: domain.Range{Min: 0, Max: 3}},
			&domain.SumRule{
				Name: "total",
				Rules: []string{
					"sleep", "sad_mood", "appetite_weight", "concentration",
					"self_view", "suicidal_ideation", "interest", "energy", "psychomotor",
				},
				Range: domain.Range{Min: 0, Max: 27},
			},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 5, Label: "no depression"},
			domain.Band{Min: 6, Max: 10, Label: "mild depression"},
			domain.Band{Min: 11, Max: 15, Label: "moderate depression"},
			domain.Band{Min: 16, Max: 20, Label: "severe depression"},
			domain.Band{Min: 21, Max: 27, Label: "very severe depression"},
		),
		Checks: []domain.ConsistencyCheck{
			bothEndorsed("qids_6", "qids_7", 2, "appetite_polarity",
				"decreased and increased appetite both endorsed at high severity"),
			bothEndorsed("qids_8", "qids_9", 2, "weight_polarity",
				"weight loss and weight gain both endorsed at high severity"),
		},
	}
}

// EPDS is the Edinburgh Postnatal Depression Scale: ten items scored 0-3,
// three of them reverse-coded, with a self-harm safety item.
func EPDS() *domain.Instrument {
	list := items("epds", domain.CodeRange(0, 3),
		"I have been able to laugh and see the funny side of things",
		"I have looked forward with enjoyment to things",
		"I have blamed myself unnecessarily when things went wrong",
		"I have been anxious or worried for no good reason",
		"I have felt scared or panicky for no very good reason",
		"Things have been getting on top of me",
		"I have been so unhappy that I have had difficulty sleeping",
		"I have felt sad or miserable",
		"I have been so unhappy that I have been crying",
		"The thought of harming myself has occurred to me",
	)
	// Items 1, 2 and 4 are anchored in the positive direction and recode
	// as (3 - value) before aggregation.
	list[0].Reversed = true
	list[1].Reversed = true
	list[3].Reversed = true
	list[9].Safety = &domain.SafetyFlag{Name: "self_harm", Threshold: 1}

	return &domain.Instrument{
		ID:       "epds",
		Name:     "Edinburgh Postnatal Depression Scale",
		Abstract: "Ten-item screen for depression in the perinatal period.",
		Sections: singleSection("epds_main", "In the past seven days:", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 30}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 9, Label: "depression unlikely"},
			domain.Band{Min: 10, Max: 12, Label: "possible depression"},
			domain.Band{Min: 13, Max: 30, Label: "probable depression"},
		),
	}
}

// WHO5 is the WHO-5 Well-Being Index: five items scored 0-5, with the raw
// sum multiplied by four to a 0-100 percentage scale.
func WHO5() *domain.Instrument {
	list := items("who5", domain.CodeRange(0, 5),
		"I have felt cheerful and in good spirits",
		"I have felt calm and relaxed",
		"I have felt active and vigorous",
		"I woke up feeling fresh and rested",
		"My daily life has been filled with things that interest me",
	)

	return &domain.Instrument{
		ID:       "who5",
		Name:     "WHO-5 Well-Being Index",
		Abstract: "Five-item well-being measure reported on a 0-100 percentage scale.",
		Sections: singleSection("who5_main", "Over the last two weeks:", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.WeightedSumRule{
				Name:    "total",
				Items:   ids(list),
				Weights: []float64{4, 4, 4, 4, 4},
				Range:   domain.Range{Min: 0, Max: 100},
			},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 28, Label: "probable depression"},
			domain.Band{Min: 29, Max: 50, Label: "reduced well-being"},
			domain.Band{Min: 51, Max: 100, Label: "good well-being"},
		),
	}
}
