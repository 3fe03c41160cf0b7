package fiducial

import (
	"image"
	"math"

	"github.com/sirupsen/logrus"

	"go-datacard-extractor/internal/logger"
	"go-datacard-extractor/internal/vision"
)

// DetectorParams bound what counts as a marker candidate. Two presets exist:
// StrictParams gates the extraction path, LooseParams feeds the interactive
// alignment scorer, which must tolerate camera noise while the user is still
// positioning the card.
type DetectorParams struct {
	// Candidate area as a fraction of total image area.
	MinAreaRatio float64
	MaxAreaRatio float64

	// Bounding-box squareness band.
	MinAspect float64
	MaxAspect float64

	// Contour area over convex-hull area floor.
	MinSolidity float64

	// A candidate's interior mean brightness must stay at or below
	// DarknessCap, and, when RelativeDarkness > 0, also at or below
	// RelativeDarkness times the whole-image mean. The blend of the two is
	// a tuning choice inherited from field captures; keep it configurable.
	DarknessCap      float64
	RelativeDarkness float64

	// Markers must sit in the outer margin band of each axis; centers in
	// the interior are ambiguous and rejected.
	CornerMargin float64

	// Morphological cleanup applied to every strategy mask.
	MorphRadius     int
	CloseIterations int
	OpenIterations  int

	// DedupeDistance merges candidates from different strategies whose
	// centers are closer than this fraction of their size.
	DedupeDistance float64

	Strategies []vision.Strategy
}

// StrictParams returns the extraction-grade preset: only confidently dark,
// square, solid markers qualify.
func StrictParams() DetectorParams {
	return DetectorParams{
		MinAreaRatio:     0.0004,
		MaxAreaRatio:     0.025,
		MinAspect:        0.65,
		MaxAspect:        1.5,
		MinSolidity:      0.75,
		DarknessCap:      120,
		RelativeDarkness: 0,
		CornerMargin:     0.35,
		MorphRadius:      1,
		CloseIterations:  2,
		OpenIterations:   1,
		DedupeDistance:   0.8,
		Strategies: []vision.Strategy{
			vision.FixedInv(80),
			vision.OtsuInv(),
			vision.AdaptiveGaussianInv(51, 15),
		},
	}
}

// LooseParams returns the capture-guidance preset: wider area and aspect
// bands, a lower solidity floor, more strategies, and a relative darkness
// test so screen-displayed cards under uneven lighting still register.
func LooseParams() DetectorParams {
	return DetectorParams{
		MinAreaRatio:     0.0002,
		MaxAreaRatio:     0.05,
		MinAspect:        0.4,
		MaxAspect:        2.5,
		MinSolidity:      0.6,
		DarknessCap:      160,
		RelativeDarkness: 0.85,
		CornerMargin:     0.42,
		MorphRadius:      1,
		CloseIterations:  2,
		OpenIterations:   1,
		DedupeDistance:   0.8,
		Strategies: []vision.Strategy{
			vision.FixedInv(80),
			vision.FixedInv(120),
			vision.FixedInv(150),
			vision.OtsuInv(),
			vision.AdaptiveGaussianInv(51, 15),
			vision.AdaptiveMeanInv(31, 12),
		},
	}
}

// Detector finds corner markers in a grayscale working image.
type Detector struct {
	params DetectorParams
}

func NewDetector(params DetectorParams) *Detector {
	return &Detector{params: params}
}

// Detect runs every threshold strategy, filters contour candidates, and keeps
// the best-scoring candidate per corner label. The returned Set may hold
// anywhere from zero to four corners; callers branch on Complete().
func (d *Detector) Detect(gray *image.Gray) Set {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return Set{}
	}

	imageArea := float64(width * height)
	minArea := imageArea * d.params.MinAreaRatio
	maxArea := imageArea * d.params.MaxAreaRatio
	imageMean := vision.MeanIntensity(gray)

	darknessLimit := d.params.DarknessCap
	if d.params.RelativeDarkness > 0 {
		if rel := d.params.RelativeDarkness * imageMean; rel < darknessLimit {
			darknessLimit = rel
		}
	}

	var candidates []Corner
	for _, strategy := range d.params.Strategies {
		mask := strategy.Apply(gray)
		mask = vision.Close(mask, d.params.MorphRadius, d.params.CloseIterations)
		mask = vision.Open(mask, d.params.MorphRadius, d.params.OpenIterations)

		for _, comp := range vision.Components(mask, gray) {
			corner, ok := d.qualify(comp, width, height, minArea, maxArea, darknessLimit)
			if !ok {
				continue
			}
			candidates = append(candidates, corner)
		}
	}

	candidates = d.dedupe(candidates)

	set := Set{}
	for _, cand := range candidates {
		if best, exists := set[cand.Label]; !exists || cand.Score > best.Score {
			set[cand.Label] = cand
		}
	}

	logger.WithFields(logrus.Fields{
		"width":      width,
		"height":     height,
		"candidates": len(candidates),
		"corners":    len(set),
	}).Debug("Fiducial detection pass finished")

	return set
}

// qualify applies the area, squareness, solidity, darkness, and corner-band
// filters to one contour.
func (d *Detector) qualify(comp vision.Component, width, height int, minArea, maxArea, darknessLimit float64) (Corner, bool) {
	area := float64(comp.Area)
	if area < minArea || area > maxArea {
		return Corner{}, false
	}

	aspect := comp.Aspect()
	if aspect < d.params.MinAspect || aspect > d.params.MaxAspect {
		return Corner{}, false
	}

	if comp.Solidity < d.params.MinSolidity {
		return Corner{}, false
	}

	if comp.MeanIntensity > darknessLimit {
		return Corner{}, false
	}

	cx, cy := comp.Center()
	label, ok := classifyCorner(cx, cy, width, height, d.params.CornerMargin)
	if !ok {
		return Corner{}, false
	}

	return Corner{
		Label: label,
		X:     cx,
		Y:     cy,
		Size:  comp.Size(),
		Score: comp.Solidity * (1.0 - math.Abs(1.0-aspect)),
	}, true
}

// classifyCorner assigns a corner label when the center sits in the outer
// margin band on both axes; interior centers are ambiguous.
func classifyCorner(cx, cy float64, width, height int, margin float64) (Label, bool) {
	w, h := float64(width), float64(height)

	var xs, ys string
	switch {
	case cx < w*margin:
		xs = "l"
	case cx > w*(1-margin):
		xs = "r"
	default:
		return "", false
	}
	switch {
	case cy < h*margin:
		ys = "t"
	case cy > h*(1-margin):
		ys = "b"
	default:
		return "", false
	}
	return Label(ys + xs), true
}

// dedupe merges candidates found by multiple strategies: any two whose
// centers are closer than DedupeDistance times their size collapse into the
// higher-scoring one.
func (d *Detector) dedupe(candidates []Corner) []Corner {
	var unique []Corner
	for _, cand := range candidates {
		merged := false
		for i, kept := range unique {
			dist := math.Hypot(cand.X-kept.X, cand.Y-kept.Y)
			if dist < math.Max(cand.Size, kept.Size)*d.params.DedupeDistance {
				if cand.Score > kept.Score {
					unique[i] = cand
				}
				merged = true
				break
			}
		}
		if !merged {
			unique = append(unique, cand)
		}
	}
	return unique
}
