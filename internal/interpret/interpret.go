// Package interpret maps a scored severity category to a fixed clinical
// interpretation paragraph. The text is keyed by instrument id and the
// category label produced by the cutoff tables; there is no computation
// here, only lookup.
package interpret

// Text returns the interpretation paragraph for a category of an
// instrument. The second return is false when no text is registered,
// which callers treat as "no interpretation available" rather than an
// error.
func Text(instrumentID, category string) (string, bool) {
	byCategory, ok := texts[instrumentID]
	if !ok {
		return "", false
	}
	text, ok := byCategory[category]
	return text, ok
}

var texts = map[string]map[string]string{
	"phq9": {
		"minimal depression":           "Score suggests minimal depressive symptoms. No treatment indicated on the basis of this screen alone.",
		"mild depression":              "Score suggests mild depressive symptoms. Watchful waiting and repeat screening at follow-up are reasonable.",
		"moderate depression":          "Score suggests moderate depressive symptoms. Consider a treatment plan including counselling, follow-up, or pharmacotherapy.",
		"moderately severe depression": "Score suggests moderately severe depressive symptoms. Active treatment with pharmacotherapy or psychotherapy is indicated.",
		"severe depression":            "Score suggests severe depressive symptoms. Initiate pharmacotherapy and, if warranted, expedited referral to a mental health specialist.",
	},
	"qids-sr16": {
		"no depression":          "Symptom report is within the non-depressed range.",
		"mild depression":        "Symptom report is in the mild range; monitor and reassess.",
		"moderate depression":    "Symptom report is in the moderate range; treatment should be considered.",
		"severe depression":      "Symptom report is in the severe range; active treatment is indicated.",
		"very severe depression": "Symptom report is in the very severe range; urgent clinical attention is indicated.",
	},
	"epds": {
		"depression unlikely": "Score below the screening threshold; perinatal depression is unlikely at this time.",
		"possible depression": "Score in the borderline range; repeat screening in two to four weeks is recommended.",
		"probable depression": "Score above the screening threshold; further clinical assessment for perinatal depression is recommended.",
	},
	"who5": {
		"probable depression": "Well-being index is very low; screening for depression with a diagnostic instrument is recommended.",
		"reduced well-being":  "Well-being index is below the normative range; consider exploring contributing factors.",
		"good well-being":     "Well-being index is within the normal range.",
	},
	"gad7": {
		"minimal anxiety":  "Score suggests minimal anxiety symptoms.",
		"mild anxiety":     "Score suggests mild anxiety symptoms; monitor at follow-up.",
		"moderate anxiety": "Score suggests moderate anxiety symptoms; further evaluation is recommended.",
		"severe anxiety":   "Score suggests severe anxiety symptoms; active treatment is warranted.",
	},
	"pss10": {
		"low perceived stress":      "Reported stress appraisal is low.",
		"moderate perceived stress": "Reported stress appraisal is moderate; coping resources may be under strain.",
		"high perceived stress":     "Reported stress appraisal is high; stress-management intervention should be considered.",
	},
	"isi": {
		"no clinically significant insomnia": "Sleep complaints are below the clinical threshold.",
		"subthreshold insomnia":              "Mild sleep difficulties are present; sleep-hygiene counselling may help.",
		"moderate insomnia":                  "Clinically significant insomnia of moderate severity; treatment is recommended.",
		"severe insomnia":                    "Severe clinical insomnia; structured treatment such as CBT-I is indicated.",
	},
	"audit": {
		"low risk":            "Reported consumption pattern carries low risk of alcohol-related harm.",
		"hazardous use":       "Consumption pattern is hazardous; brief advice on reduction is indicated.",
		"harmful use":         "Consumption pattern is harmful; brief counselling and continued monitoring are indicated.",
		"possible dependence": "Pattern suggests possible alcohol dependence; referral for diagnostic evaluation is indicated.",
	},
	"cage": {
		"low concern":            "Screen does not suggest problem drinking.",
		"clinically significant": "Screen is positive for problem drinking; a fuller alcohol-use assessment is indicated.",
	},
	"ftnd": {
		"low dependence":       "Physical dependence on nicotine appears low.",
		"moderate dependence":  "Moderate physical dependence on nicotine; cessation support is recommended.",
		"high dependence":      "High physical dependence on nicotine; pharmacological cessation aids should be considered.",
		"very high dependence": "Very high physical dependence on nicotine; combination cessation therapy is recommended.",
	},
	"ocds5": {
		"low craving":      "Drinking-related obsessionality and craving are low.",
		"moderate craving": "Moderate craving with partially preserved control; relapse-prevention support is recommended.",
		"high craving":     "High craving with impaired control; intensified relapse-prevention measures are indicated.",
	},
	"asex": {
		"no dysfunction indicated":  "Responses do not indicate clinically significant sexual dysfunction.",
		"sexual dysfunction likely": "Responses indicate likely sexual dysfunction; review contributing factors including current medication.",
	},
	"cgi": {
		"not assessed":                                   "Efficacy index not assessed.",
		"marked improvement relative to side effects":    "Treatment shows marked benefit outweighing side effects.",
		"moderate improvement relative to side effects":  "Treatment shows moderate benefit relative to side effects.",
		"minimal improvement relative to side effects":   "Treatment benefit is minimal relative to side effects; review the regimen.",
		"unchanged or worse":                             "No therapeutic benefit relative to side effects; the regimen should be reconsidered.",
	},
	"phq15": {
		"minimal somatic symptoms":  "Somatic symptom burden is minimal.",
		"mild somatic symptoms":     "Somatic symptom burden is mild.",
		"moderate somatic symptoms": "Somatic symptom burden is moderate; clinical correlation is recommended.",
		"severe somatic symptoms":   "Somatic symptom burden is severe; thorough medical and psychological evaluation is recommended.",
	},
}
