package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"go-datacard-extractor/internal/vision"
)

// AdaptiveName and GlobalName identify the two binarization variants. The
// reconciler prefers the adaptive result when everything else ties, since
// local thresholding copes better with the shadows handwriting casts.
const (
	AdaptiveName = "adaptive"
	GlobalName   = "global"
)

const (
	upscaleFactor = 2
	borderPx      = 10

	adaptiveClipLimit = 3.0
	globalClipLimit   = 4.0

	adaptiveWindow = 31
	adaptiveBias   = 35

	blurSigma = 0.8
)

// Variant is one named region binarization recipe producing black ink on a
// white background, sized for character recognition.
type Variant struct {
	Name  string
	Apply func(region *image.NRGBA) *image.Gray
}

// Variants returns the standard recipes in preference order.
func Variants() []Variant {
	return []Variant{
		{Name: AdaptiveName, Apply: Adaptive},
		{Name: GlobalName, Apply: Global},
	}
}

// Adaptive binarizes a region with a locally adaptive threshold: upscale,
// contrast-limited equalization, light blur, windowed Gaussian threshold,
// then a morphological open and close to drop speckle and heal strokes.
func Adaptive(region *image.NRGBA) *image.Gray {
	gray := prepare(region, adaptiveClipLimit)
	mask := vision.AdaptiveGaussianInv(adaptiveWindow, adaptiveBias).Apply(gray)
	return finish(mask)
}

// Global binarizes a region with a single Otsu threshold, which wins over
// the adaptive variant on clean, evenly lit captures where local windows
// fragment thin strokes.
func Global(region *image.NRGBA) *image.Gray {
	gray := prepare(region, globalClipLimit)
	mask := vision.OtsuInv().Apply(gray)
	return finish(mask)
}

// prepare runs the shared front half: 2x bicubic upscale, equalize, blur.
func prepare(region *image.NRGBA, clipLimit float64) *image.Gray {
	bounds := region.Bounds()
	up := image.NewNRGBA(image.Rect(0, 0, bounds.Dx()*upscaleFactor, bounds.Dy()*upscaleFactor))
	xdraw.CatmullRom.Scale(up, up.Bounds(), region, bounds, xdraw.Over, nil)

	gray := CLAHE(vision.ToGray(up), clipLimit)
	return vision.ToGray(imaging.Blur(gray, blurSigma))
}

// finish cleans the ink mask and renders it black-on-white with a quiet
// border, the polarity and padding the recognizer performs best on.
func finish(mask *vision.Mask) *image.Gray {
	mask = vision.Open(mask, 1, 1)
	mask = vision.Close(mask, 1, 1)

	b := mask.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx()+2*borderPx, b.Dy()+2*borderPx))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y != 0 {
				out.SetGray(x-b.Min.X+borderPx, y-b.Min.Y+borderPx, color.Gray{Y: 0})
			}
		}
	}
	return out
}
