// Package vision provides the raster primitives shared by the fiducial
// detector, the rectifier, and the region preprocessor: grayscale conversion,
// thresholding strategies, binary morphology, connected components, and
// bicubic resampling.
package vision

import (
	"image"
	"image/draw"

	"gonum.org/v1/gonum/stat"
)

// ToGray converts any image to 8-bit grayscale.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// MeanIntensity returns the average pixel value of a grayscale image.
func MeanIntensity(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	data := make([]float64, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			data = append(data, float64(gray.GrayAt(x, y).Y))
		}
	}
	return stat.Mean(data, nil)
}

// IntensityStats returns the mean and variance of a grayscale image.
func IntensityStats(gray *image.Gray) (mean, variance float64) {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0, 0
	}
	data := make([]float64, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			data = append(data, float64(gray.GrayAt(x, y).Y))
		}
	}
	return stat.Mean(data, nil), stat.Variance(data, nil)
}
