// Package reconcile turns raw recognition detections into trustworthy field
// values: filtering low-confidence tokens, repairing digit confusions,
// validating against the measurement domain, and arbitrating between
// binarization variants.
package reconcile

import "go-datacard-extractor/internal/ocr"

// Defaults tuned against annotated field captures.
const (
	DefaultMinConfidence = 0.15
	DefaultMaxGapPx      = 100
)

// Reconciler resolves per-variant detections into a single field value.
type Reconciler struct {
	MinConfidence    float64
	MaxGapPx         int
	ValueMin         float64
	ValueMax         float64
	PreferredVariant string
}

// New returns a Reconciler with the default confidence and gap settings and
// the given value domain.
func New(valueMin, valueMax float64, preferredVariant string) *Reconciler {
	return &Reconciler{
		MinConfidence:    DefaultMinConfidence,
		MaxGapPx:         DefaultMaxGapPx,
		ValueMin:         valueMin,
		ValueMax:         valueMax,
		PreferredVariant: preferredVariant,
	}
}

// FromDetections merges, cleans, and validates one variant's detections.
// ok is false when nothing in the region survives as a plausible value.
func (r *Reconciler) FromDetections(dets []ocr.Detection) (string, bool) {
	cleaned := CleanNumeric(MergeDetections(dets, r.MinConfidence, r.MaxGapPx))
	if !IsValid(cleaned, r.ValueMin, r.ValueMax) {
		return "", false
	}
	return cleaned, true
}

// Resolve arbitrates between variant candidates. It returns nil when no
// candidate holds a valid value, matching the absent-field contract.
func (r *Reconciler) Resolve(candidates []Candidate) *string {
	valid := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if IsValid(c.Value, r.ValueMin, r.ValueMax) {
			valid = append(valid, c)
		}
	}
	winner, ok := SelectValue(valid, r.PreferredVariant)
	if !ok {
		return nil
	}
	return &winner.Value
}
