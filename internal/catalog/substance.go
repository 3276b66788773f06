package catalog

import (
	"github.com/psych-instrument-server/internal/domain"
)

// AUDIT is the Alcohol Use Disorders Identification Test. Items 9 and 10
// use a sparse 0/2/4 code set rather than a contiguous range, and the
// hazardous-use cutoff differs by recorded gender.
func AUDIT() *domain.Instrument {
	list := items("audit", domain.CodeRange(0, 4),
		"How often do you have a drink containing alcohol?",
		"How many drinks containing alcohol do you have on a typical day when you are drinking?",
		"How often do you have six or more drinks on one occasion?",
		"How often during the last year have you found that you were not able to stop drinking once you had started?",
		"How often during the last year have you failed to do what was normally expected of you because of drinking?",
		"How often during the last year have you needed a first drink in the morning to get yourself going after a heavy drinking session?",
		"How often during the last year have you had a feeling of guilt or remorse after drinking?",
		"How often during the last year have you been unable to remember what happened the night before because you had been drinking?",
		"Have you or someone else been injured as a result of your drinking?",
		"Has a relative, friend, doctor or other health worker been concerned about your drinking or suggested you cut down?",
	)
	list[8].Constraint = domain.DiscreteCodes(0, 2, 4)
	list[9].Constraint = domain.DiscreteCodes(0, 2, 4)

	femaleRespondent := domain.Compare{
		Op:    domain.OpEq,
		Left:  domain.Var{Name: "gender"},
		Right: domain.Str("F"),
	}

	return &domain.Instrument{
		ID:       "audit",
		Name:     "Alcohol Use Disorders Identification Test",
		Abstract: "Ten-item screen for hazardous and harmful alcohol consumption.",
		Sections: singleSection("audit_main", "Please answer each question about your alcohol use during the past year.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.WeightedSumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 40}},
		},
		Cutoffs: []domain.CutoffTable{
			{
				Guard: femaleRespondent,
				Bands: []domain.Band{
					{Min: 0, Max: 6, Label: "low risk"},
					{Min: 7, Max: 15, Label: "hazardous use"},
					{Min: 16, Max: 19, Label: "harmful use"},
					{Min: 20, Max: 40, Label: "possible dependence"},
				},
			},
			{
				Bands: []domain.Band{
					{Min: 0, Max: 7, Label: "low risk"},
					{Min: 8, Max: 15, Label: "hazardous use"},
					{Min: 16, Max: 19, Label: "harmful use"},
					{Min: 20, Max: 40, Label: "possible dependence"},
				},
			},
		},
	}
}

// CAGE is the four-item alcohol dependence screen. Two or more
// affirmative answers are considered clinically significant.
func CAGE() *domain.Instrument {
	list := items("cage", domain.CodeRange(0, 1),
		"Have you ever felt you should cut down on your drinking?",
		"Have people annoyed you by criticizing your drinking?",
		"Have you ever felt bad or guilty about your drinking?",
		"Have you ever had a drink first thing in the morning to steady your nerves or to get rid of a hangover?",
	)

	return &domain.Instrument{
		ID:       "cage",
		Name:     "CAGE Questionnaire",
		Abstract: "Four-item yes/no screen for problem drinking.",
		Sections: singleSection("cage_main", "Please answer yes (1) or no (0) to each question.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 4}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 1, Label: "low concern"},
			domain.Band{Min: 2, Max: 4, Label: "clinically significant"},
		),
	}
}

// FTND is the Fagerstrom Test for Nicotine Dependence. Items carry
// heterogeneous code ranges, so the total is a weighted sum with unit
// weights rather than a plain sum over a shared constraint.
func FTND() *domain.Instrument {
	list := []domain.Item{
		{ID: "ftnd_1", Prompt: "How soon after you wake up do you smoke your first cigarette?", Constraint: domain.CodeRange(0, 3)},
		{ID: "ftnd_2", Prompt: "Do you find it difficult to refrain from smoking in places where it is forbidden?", Constraint: domain.CodeRange(0, 1)},
		{ID: "ftnd_3", Prompt: "Which cigarette would you hate most to give up?", Constraint: domain.CodeRange(0, 1)},
		{ID: "ftnd_4", Prompt: "How many cigarettes per day do you smoke?", Constraint: domain.CodeRange(0, 3)},
		{ID: "ftnd_5", Prompt: "Do you smoke more frequently during the first hours after waking than during the rest of the day?", Constraint: domain.CodeRange(0, 1)},
		{ID: "ftnd_6", Prompt: "Do you smoke even if you are so ill that you are in bed most of the day?", Constraint: domain.CodeRange(0, 1)},
	}

	return &domain.Instrument{
		ID:       "ftnd",
		Name:     "Fagerstrom Test for Nicotine Dependence",
		Abstract: "Six-item measure of physical dependence on nicotine.",
		Sections: singleSection("ftnd_main", "Please answer each question about your current smoking.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.WeightedSumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 10}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 2, Label: "low dependence"},
			domain.Band{Min: 3, Max: 5, Label: "moderate dependence"},
			domain.Band{Min: 6, Max: 7, Label: "high dependence"},
			domain.Band{Min: 8, Max: 10, Label: "very high dependence"},
		),
	}
}

// OCDS5 is a five-plus-one-item short form of the Obsessive Compulsive
// Drinking Scale. The craving rating is offset by the sum of the five
// control items and floored at zero.
func OCDS5() *domain.Instrument {
	controls := items("ocds_c", domain.CodeRange(0, 2),
		"How much of an effort do you make to resist thoughts about drinking?",
		"How successful are you in stopping or diverting thoughts about drinking?",
		"How strong is the drive to consume alcoholic beverages?",
		"How much control do you have over the drinking?",
		"How much of an effort do you make to resist consumption of alcoholic beverages?",
	)
	craving := domain.Item{
		ID:         "ocds_craving",
		Prompt:     "Rate the overall intensity of your urge to drink during the past week.",
		Constraint: domain.CodeRange(0, 10),
	}
	list := append([]domain.Item{craving}, controls...)

	return &domain.Instrument{
		ID:       "ocds5",
		Name:     "Obsessive Compulsive Drinking Scale-5",
		Abstract: "Short craving measure offsetting urge intensity against resistance and control.",
		Sections: singleSection("ocds_main", "Please rate your drinking-related thoughts and urges over the past week.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SubtractiveRule{
				Name:      "total",
				Positive:  craving.ID,
				Negatives: ids(controls),
				FloorZero: true,
				Range:     domain.Range{Min: 0, Max: 10},
			},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 3, Label: "low craving"},
			domain.Band{Min: 4, Max: 7, Label: "moderate craving"},
			domain.Band{Min: 8, Max: 10, Label: "high craving"},
		),
	}
}
