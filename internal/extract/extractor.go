// Package extract runs the full photo-to-values pipeline: normalize the
// capture, find the corner markers, rectify onto the card template, and
// recognize each write-in region.
package extract

import (
	"context"
	"image"
	"sort"

	"github.com/sirupsen/logrus"

	"go-datacard-extractor/internal/card"
	"go-datacard-extractor/internal/fiducial"
	"go-datacard-extractor/internal/logger"
	"go-datacard-extractor/internal/normalize"
	"go-datacard-extractor/internal/ocr"
	"go-datacard-extractor/internal/preprocess"
	"go-datacard-extractor/internal/reconcile"
	"go-datacard-extractor/internal/rectify"
	"go-datacard-extractor/internal/vision"
)

// regionDPI is reported to the recognizer for region crops, which carry no
// density metadata after the binarization rewrite.
const regionDPI = 300

// Result maps every field name on the card to its recognized value, nil for
// fields that could not be read. Canonical reports whether the values came
// from template-aligned regions or the whole-frame fallback scan.
type Result struct {
	Fields    map[string]*string
	Canonical bool
}

// Extractor is safe for concurrent use as long as the underlying engine is.
type Extractor struct {
	tpl        card.Template
	detector   *fiducial.Detector
	rectifier  *rectify.Rectifier
	engine     ocr.Engine
	reconciler *reconcile.Reconciler
	variants   []preprocess.Variant
}

func New(tpl card.Template, engine ocr.Engine) *Extractor {
	return &Extractor{
		tpl:        tpl,
		detector:   fiducial.NewDetector(fiducial.StrictParams()),
		rectifier:  rectify.New(tpl),
		engine:     engine,
		reconciler: reconcile.New(tpl.ValueMin, tpl.ValueMax, preprocess.AdaptiveName),
		variants:   preprocess.Variants(),
	}
}

// Extract decodes payload and runs the pipeline. Recognition failures on
// individual regions degrade to absent fields rather than failing the call;
// only an undecodable payload or a cancelled context returns an error.
func (e *Extractor) Extract(ctx context.Context, payload []byte) (Result, error) {
	img, err := normalize.Decode(payload, normalize.ExtractionLongEdge)
	if err != nil {
		return Result{}, err
	}

	corners := e.detector.Detect(vision.ToGray(img))
	rectified := e.rectifier.ToCanonical(img, corners)

	logger.WithFields(logrus.Fields{
		"corners":   len(corners),
		"canonical": rectified.Canonical,
	}).Info("Frame rectified")

	var fields map[string]*string
	if rectified.Canonical {
		fields, err = e.readRegions(ctx, rectified.Frame)
	} else {
		fields, err = e.readFallback(ctx, rectified.Frame)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Fields: fields, Canonical: rectified.Canonical}, nil
}

// RenderOverlay rectifies payload and draws the template regions on the
// resulting frame, for diagnosing capture alignment. It reports whether the
// frame is canonical alongside the annotated image.
func (e *Extractor) RenderOverlay(payload []byte) (*image.NRGBA, bool, error) {
	img, err := normalize.Decode(payload, normalize.ExtractionLongEdge)
	if err != nil {
		return nil, false, err
	}
	corners := e.detector.Detect(vision.ToGray(img))
	rectified := e.rectifier.ToCanonical(img, corners)
	return DebugOverlay(rectified.Frame, e.tpl, rectified.Canonical), rectified.Canonical, nil
}

// readRegions recognizes every template region on a canonical frame,
// arbitrating between binarization variants per field.
func (e *Extractor) readRegions(ctx context.Context, frame *image.NRGBA) (map[string]*string, error) {
	fields := make(map[string]*string, len(e.tpl.Regions))
	for _, region := range e.tpl.Regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		crop := e.cropRegion(frame, region)
		if crop == nil {
			fields[region.Name] = nil
			continue
		}

		candidates := make([]reconcile.Candidate, 0, len(e.variants))
		for _, variant := range e.variants {
			dets, err := e.engine.Recognize(ctx, variant.Apply(crop), ocr.Params{
				Whitelist:  ocr.NumericWhitelist,
				SingleLine: true,
				DPI:        regionDPI,
			})
			if err != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"field":   region.Name,
					"variant": variant.Name,
				}).Warn("Region recognition failed")
				continue
			}
			if value, ok := e.reconciler.FromDetections(dets); ok {
				candidates = append(candidates, reconcile.Candidate{Variant: variant.Name, Value: value})
			}
		}
		fields[region.Name] = e.reconciler.Resolve(candidates)
	}
	return fields, nil
}

// cropRegion cuts region out of the frame with the template's safety margin.
// A region clipped down to nothing yields nil.
func (e *Extractor) cropRegion(frame *image.NRGBA, region card.RegionSpec) *image.NRGBA {
	r := region.Rect().Inset(-e.tpl.CropMargin).Intersect(frame.Bounds())
	if r.Empty() {
		return nil
	}
	return frame.SubImage(r).(*image.NRGBA)
}

// readFallback scans the whole frame in sparse mode and assigns the valid
// numeric tokens, in reading order, to the fields in card order. Without
// template alignment this is a best-effort guess and never canonical.
func (e *Extractor) readFallback(ctx context.Context, frame *image.NRGBA) (map[string]*string, error) {
	names := e.tpl.FieldNames()
	fields := make(map[string]*string, len(names))
	for _, name := range names {
		fields[name] = nil
	}

	dets, err := e.engine.Recognize(ctx, vision.ToGray(frame), ocr.Params{
		Whitelist: ocr.NumericWhitelist,
		DPI:       regionDPI,
	})
	if err != nil {
		logger.WithError(err).Warn("Fallback recognition failed")
		return fields, nil
	}

	sort.SliceStable(dets, func(i, j int) bool {
		if dets[i].Box.Min.Y != dets[j].Box.Min.Y {
			return dets[i].Box.Min.Y < dets[j].Box.Min.Y
		}
		return dets[i].Box.Min.X < dets[j].Box.Min.X
	})

	next := 0
	for _, d := range dets {
		if next >= len(names) {
			break
		}
		if d.Confidence < e.reconciler.MinConfidence {
			continue
		}
		cleaned := reconcile.CleanNumeric(d.Text)
		if !reconcile.IsValid(cleaned, e.tpl.ValueMin, e.tpl.ValueMax) {
			continue
		}
		value := cleaned
		fields[names[next]] = &value
		next++
	}
	return fields, nil
}
