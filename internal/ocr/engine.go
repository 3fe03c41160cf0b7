// Package ocr defines the text recognition boundary of the pipeline and its
// Tesseract-backed implementation.
package ocr

import (
	"context"
	"image"
)

// NumericWhitelist restricts recognition to the characters that can appear
// in a measured value. The confusable letters are deliberately absent; the
// reconciler handles them when the engine emits them anyway.
const NumericWhitelist = "0123456789.-"

// Detection is one recognized token with its position and the engine's
// confidence normalized to 0..1.
type Detection struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
}

// Params tune a single recognition call.
type Params struct {
	// Whitelist limits the recognizable character set; empty means
	// unrestricted.
	Whitelist string

	// SingleLine tells the engine the image holds one line of text, which
	// is true for region crops; full-frame fallback scans use sparse mode.
	SingleLine bool

	// DPI is passed to the engine when the image carries no density
	// metadata; zero leaves the engine default.
	DPI int
}

// Engine recognizes text tokens in a prepared image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, params Params) ([]Detection, error)
}
