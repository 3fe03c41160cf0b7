// Package normalize turns raw upload bytes into an orientation-corrected,
// resolution-clamped working image.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Working resolutions for the two entry paths: full extraction wants detail,
// live capture guidance wants latency.
const (
	ExtractionLongEdge = 1600
	GuidanceLongEdge   = 640
)

var ErrEmptyPayload = errors.New("no image payload provided")

// Decode parses raw image bytes, applies EXIF orientation, and resizes so the
// longest edge matches targetLongEdge (skipped when within 5%). Unreadable
// bytes and zero-dimension images are terminal input errors.
func Decode(payload []byte, targetLongEdge int) (*image.NRGBA, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}

	img, err := imaging.Decode(bytes.NewReader(payload), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longEdge := max(w, h)
	if longEdge == 0 {
		return nil, errors.New("image has zero dimensions")
	}

	scale := float64(targetLongEdge) / float64(longEdge)
	if math.Abs(scale-1.0) > 0.05 {
		nw := int(math.Round(float64(w) * scale))
		nh := int(math.Round(float64(h) * scale))
		return imaging.Resize(img, nw, nh, imaging.Lanczos), nil
	}
	return imaging.Clone(img), nil
}
