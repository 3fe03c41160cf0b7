package rectify

import (
	"image"

	"github.com/sirupsen/logrus"

	"go-datacard-extractor/internal/card"
	"go-datacard-extractor/internal/fiducial"
	"go-datacard-extractor/internal/logger"
	"go-datacard-extractor/internal/vision"
)

// Result is a working frame ready for region extraction. Canonical reports
// whether the frame was warped onto the card template; when false the frame
// is only deskewed and region coordinates cannot be trusted.
type Result struct {
	Frame     *image.NRGBA
	Canonical bool
}

// Rectifier maps captured photos onto the canonical card frame.
type Rectifier struct {
	tpl card.Template
}

func New(tpl card.Template) *Rectifier {
	return &Rectifier{tpl: tpl}
}

// ToCanonical warps img so the four detected markers land on the template's
// target centers. With fewer than four markers, or a degenerate marker
// layout, it falls back to deskewing the frame in place.
func (r *Rectifier) ToCanonical(img *image.NRGBA, corners fiducial.Set) Result {
	if corners.Complete() {
		var from, to [4]Point
		for i, c := range corners.Ordered() {
			to[i] = Point{X: c.X, Y: c.Y}
		}
		for i, t := range r.tpl.Targets {
			from[i] = Point{X: t.X, Y: t.Y}
		}

		// WarpPerspective wants the destination-to-source mapping.
		h, err := SolveHomography(from, to)
		if err == nil {
			return Result{
				Frame:     vision.WarpPerspective(img, h, r.tpl.Width, r.tpl.Height),
				Canonical: true,
			}
		}
		logger.WithError(err).WithFields(logrus.Fields{
			"corners": len(corners),
		}).Warn("Homography solve failed, falling back to deskew")
	}

	return Result{Frame: Deskew(img), Canonical: false}
}
