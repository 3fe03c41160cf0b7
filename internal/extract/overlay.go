package extract

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go-datacard-extractor/internal/card"
)

var (
	overlayRegion = color.NRGBA{R: 30, G: 200, B: 60, A: 255}
	overlayLabel  = color.NRGBA{R: 200, G: 30, B: 30, A: 255}
)

// DebugOverlay renders the template's regions on top of a copy of frame, for
// eyeballing how well a capture rectified. Each region gets its outline and
// field name; the banner states which pipeline path produced the frame.
func DebugOverlay(frame *image.NRGBA, tpl card.Template, canonical bool) *image.NRGBA {
	out := image.NewNRGBA(frame.Bounds())
	copy(out.Pix, frame.Pix)

	for _, region := range tpl.Regions {
		drawRect(out, region.Rect(), overlayRegion)
		drawText(out, region.X+4, region.Y-4, region.Name, overlayLabel)
	}

	banner := "fallback: template regions not aligned"
	if canonical {
		banner = "canonical frame"
	}
	drawText(out, out.Bounds().Min.X+10, out.Bounds().Min.Y+20, banner, overlayLabel)
	return out
}

// drawRect outlines r with a 2px stroke.
func drawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < 2; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, r.Min.Y+t, c)
			img.SetNRGBA(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetNRGBA(r.Min.X+t, y, c)
			img.SetNRGBA(r.Max.X-1-t, y, c)
		}
	}
}

func drawText(img *image.NRGBA, x, y int, text string, c color.NRGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
