// Package models holds the API data transfer objects shared between the
// service and transport layers.
package models

import (
	"go-datacard-extractor/internal/calibration"
	"go-datacard-extractor/internal/fiducial"
)

// ExtractionResponse is the result of reading one data-card photo.
type ExtractionResponse struct {
	// Parsed maps every field on the card to its recognized value; nil
	// means the field could not be read.
	Parsed map[string]*string `json:"parsed"`

	// Canonical reports whether values came from template-aligned regions
	// (all four markers found) or the whole-frame fallback scan.
	Canonical bool `json:"canonical"`

	ProcessingTimeSec float64 `json:"processing_time_sec"`
}

// AlignmentResponse grades a live capture frame for the client's framing
// guidance overlay.
type AlignmentResponse struct {
	Detected int                     `json:"detected"`
	Corners  map[fiducial.Label]bool `json:"corners"`
	Quality  float64                 `json:"quality"`
	Ready    bool                    `json:"ready"`
}

// PredictionResponse pairs the extraction with the classifier verdict.
type PredictionResponse struct {
	Parsed      map[string]*string `json:"parsed"`
	Canonical   bool               `json:"canonical"`
	Potable     bool               `json:"potable"`
	Probability float64            `json:"probability"`
}

// CalibrationRequest carries the annotated truth for a reference card; the
// image itself arrives as a multipart file alongside it.
type CalibrationRequest struct {
	Expected map[string]string `json:"expected" binding:"required"`
}

// CalibrationResponse is the graded comparison for one reference card.
type CalibrationResponse struct {
	Report    calibration.Report `json:"report"`
	Canonical bool               `json:"canonical"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
