package reconcile

import (
	"sort"
	"strconv"

	"go-datacard-extractor/internal/ocr"
)

// MergeDetections assembles one value string from word-level detections.
// Tokens below minConfidence are discarded, survivors are read left to
// right, and reading stops at the first horizontal gap wider than maxGapPx,
// which separates the value from stray marks further along the line.
func MergeDetections(dets []ocr.Detection, minConfidence float64, maxGapPx int) string {
	kept := make([]ocr.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Text == "" || d.Confidence < minConfidence {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Box.Min.X < kept[j].Box.Min.X
	})

	merged := kept[0].Text
	prevRight := kept[0].Box.Max.X
	for _, d := range kept[1:] {
		if d.Box.Min.X-prevRight > maxGapPx {
			break
		}
		merged += d.Text
		if d.Box.Max.X > prevRight {
			prevRight = d.Box.Max.X
		}
	}
	return merged
}

// IsValid reports whether cleaned parses as a number inside the plausible
// measurement domain.
func IsValid(cleaned string, min, max float64) bool {
	if cleaned == "" {
		return false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return false
	}
	return v >= min && v <= max
}
