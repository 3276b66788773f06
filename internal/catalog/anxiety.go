package catalog

import (
	"github.com/psych-instrument-server/internal/domain"
)

// GAD7 is the Generalized Anxiety Disorder seven-item scale.
func GAD7() *domain.Instrument {
	list := items("gad7", domain.CodeRange(0, 3),
		"Feeling nervous, anxious, or on edge",
		"Not being able to stop or control worrying",
		"Worrying too much about different things",
		"Trouble relaxing",
		"Being so restless that it is hard to sit still",
		"Becoming easily annoyed or irritable",
		"Feeling afraid as if something awful might happen",
	)

	return &domain.Instrument{
		ID:       "gad7",
		Name:     "Generalized Anxiety Disorder-7",
		Abstract: "Seven-item self-report anxiety severity measure.",
		Sections: singleSection("gad7_main", "Over the last two weeks, how often have you been bothered by the following problems?", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 21}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 4, Label: "minimal anxiety"},
			domain.Band{Min: 5, Max: 9, Label: "mild anxiety"},
			domain.Band{Min: 10, Max: 14, Label: "moderate anxiety"},
			domain.Band{Min: 15, Max: 21, Label: "severe anxiety"},
		),
		Checks: []domain.ConsistencyCheck{
			allIdentical(ids(list), "all seven responses are identical; response style may be inattentive"),
		},
	}
}

// PSS10 is the ten-item Perceived Stress Scale. Items 4, 5, 7 and 8 are
// positively worded and reverse-coded before summation.
func PSS10() *domain.Instrument {
	list := items("pss", domain.CodeRange(0, 4),
		"Been upset because of something that happened unexpectedly",
		"Felt unable to control the important things in your life",
		"Felt nervous and stressed",
		"Felt confident about your ability to handle your personal problems",
		"Felt that things were going your way",
		"Found that you could not cope with all the things you had to do",
		"Been able to control irritations in your life",
		"Felt that you were on top of things",
		"Been angered because of things that were outside of your control",
		"Felt difficulties were piling up so high that you could not overcome them",
	)
	list[3].Reversed = true
	list[4].Reversed = true
	list[6].Reversed = true
	list[7].Reversed = true

	return &domain.Instrument{
		ID:       "pss10",
		Name:     "Perceived Stress Scale-10",
		Abstract: "Ten-item measure of the degree to which life situations are appraised as stressful.",
		Sections: singleSection("pss_main", "In the last month, how often have you:", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 40}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 13, Label: "low perceived stress"},
			domain.Band{Min: 14, Max: 26, Label: "moderate perceived stress"},
			domain.Band{Min: 27, Max: 40, Label: "high perceived stress"},
		),
	}
}

// ISI is the Insomnia Severity Index: seven items scored 0-4.
func ISI() *domain.Instrument {
	list := items("isi", domain.CodeRange(0, 4),
		"Difficulty falling asleep",
		"Difficulty staying asleep",
		"Problems waking up too early",
		"How satisfied are you with your current sleep pattern?",
		"How noticeable to others do you think your sleep problem is?",
		"How worried are you about your current sleep problem?",
		"To what extent does your sleep problem interfere with your daily functioning?",
	)

	return &domain.Instrument{
		ID:       "isi",
		Name:     "Insomnia Severity Index",
		Abstract: "Seven-item measure of the nature, severity and impact of insomnia.",
		Sections: singleSection("isi_main", "Please rate the current severity of your insomnia problems.", list),
		Items:    list,
		Rules: []domain.ScoringRule{
			&domain.SumRule{Name: "total", Items: ids(list), Range: domain.Range{Min: 0, Max: 28}},
		},
		Cutoffs: bands(
			domain.Band{Min: 0, Max: 7, Label: "no clinically significant insomnia"},
			domain.Band{Min: 8, Max: 14, Label: "subthreshold insomnia"},
			domain.Band{Min: 15, Max: 21, Label: "moderate insomnia"},
			domain.Band{Min: 22, Max: 28, Label: "severe insomnia"},
		),
	}
}
