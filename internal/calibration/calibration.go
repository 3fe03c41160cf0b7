// Package calibration grades extraction output against hand-annotated
// reference cards, for verifying parameter changes before rollout.
package calibration

import "github.com/arbovm/levenshtein"

// FieldScore is the per-field comparison between the annotated value and
// what the pipeline extracted.
type FieldScore struct {
	Field    string  `json:"field"`
	Expected string  `json:"expected"`
	Got      *string `json:"got"`
	Exact    bool    `json:"exact"`
	Distance int     `json:"distance"`
}

// Report summarizes one reference card.
type Report struct {
	Fields       []FieldScore `json:"fields"`
	ExactMatches int          `json:"exact_matches"`
	// MeanDistance is the average edit distance normalized by expected
	// value length, over fields that have an expected value.
	MeanDistance float64 `json:"mean_distance"`
}

// Compare grades extracted against expected. Field order follows fieldNames
// so reports are stable across runs. Fields missing from expected are
// skipped; fields the pipeline missed score as full-length distance.
func Compare(fieldNames []string, expected map[string]string, extracted map[string]*string) Report {
	var report Report
	var distanceSum float64
	scored := 0

	for _, name := range fieldNames {
		want, ok := expected[name]
		if !ok {
			continue
		}
		got := extracted[name]

		score := FieldScore{Field: name, Expected: want, Got: got}
		if got != nil {
			score.Distance = levenshtein.Distance(want, *got)
			score.Exact = score.Distance == 0
		} else {
			score.Distance = len(want)
		}
		if score.Exact {
			report.ExactMatches++
		}
		if len(want) > 0 {
			distanceSum += float64(score.Distance) / float64(len(want))
			scored++
		}
		report.Fields = append(report.Fields, score)
	}

	if scored > 0 {
		report.MeanDistance = distanceSum / float64(scored)
	}
	return report
}
