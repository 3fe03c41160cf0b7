package vision

import "image"

// Mask is a binary image where 255 marks selected (dark/ink) pixels and 0
// marks background. All threshold strategies produce masks in this polarity.
type Mask = image.Gray

// Strategy is one binarization approach. The fiducial detector iterates an
// ordered list of strategies so that adding or removing one needs no change
// at the call site.
type Strategy struct {
	Name  string
	Apply func(gray *image.Gray) *Mask
}

// FixedInv selects pixels at or below a fixed brightness threshold.
func FixedInv(threshold uint8) Strategy {
	return Strategy{
		Name: "fixed",
		Apply: func(gray *image.Gray) *Mask {
			bounds := gray.Bounds()
			out := image.NewGray(bounds)
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					if gray.GrayAt(x, y).Y <= threshold {
						out.SetGray(x, y, white)
					}
				}
			}
			return out
		},
	}
}

// OtsuInv selects pixels below the Otsu threshold, computed from the image's
// own histogram assuming a bimodal ink/background distribution.
func OtsuInv() Strategy {
	return Strategy{
		Name: "otsu",
		Apply: func(gray *image.Gray) *Mask {
			t := OtsuThreshold(gray)
			return FixedInv(t).Apply(gray)
		},
	}
}

// AdaptiveGaussianInv selects pixels darker than a smoothed local-neighborhood
// mean minus bias. The source is box-blurred before the window mean is taken,
// approximating a Gaussian-weighted neighborhood.
func AdaptiveGaussianInv(window, bias int) Strategy {
	return Strategy{
		Name: "adaptive-gaussian",
		Apply: func(gray *image.Gray) *Mask {
			smoothed := boxBlurGray(boxBlurGray(gray, 2), 2)
			return adaptiveInv(gray, smoothed, window, bias)
		},
	}
}

// AdaptiveMeanInv selects pixels darker than the plain local-neighborhood
// mean minus bias.
func AdaptiveMeanInv(window, bias int) Strategy {
	return Strategy{
		Name: "adaptive-mean",
		Apply: func(gray *image.Gray) *Mask {
			return adaptiveInv(gray, gray, window, bias)
		},
	}
}

// OtsuThreshold computes the global threshold maximizing between-class
// variance over the 256-bin histogram.
func OtsuThreshold(gray *image.Gray) uint8 {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumBack, weightBack float64
	var best float64 = -1
	var threshold uint8
	for i := 0; i < 256; i++ {
		weightBack += float64(hist[i])
		if weightBack == 0 {
			continue
		}
		weightFore := float64(total) - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(i) * float64(hist[i])
		meanBack := sumBack / weightBack
		meanFore := (sum - sumBack) / weightFore
		between := weightBack * weightFore * (meanBack - meanFore) * (meanBack - meanFore)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

// adaptiveInv thresholds src against the window mean of ref, computed with an
// integral image. A pixel is ink when it is at least bias units darker than
// its local neighborhood mean.
func adaptiveInv(src, ref *image.Gray, window, bias int) *Mask {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	if w == 0 || h == 0 {
		return out
	}

	ints := integralImage(ref)
	half := window / 2

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(x-half, 0), max(y-half, 0)
			x1, y1 := min(x+half, w-1), min(y+half, h-1)
			area := (x1 - x0 + 1) * (y1 - y0 + 1)
			mean := windowSum(ints, w, x0, y0, x1, y1) / area
			th := mean - bias
			if th < 0 {
				th = 0
			}
			pix := int(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			if pix < th {
				out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, white)
			}
		}
	}
	return out
}

// integralImage returns row-major cumulative sums so that any window sum is
// four lookups.
func integralImage(gray *image.Gray) []int {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += int(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	return ints
}

func windowSum(ints []int, w, x0, y0, x1, y1 int) int {
	sum := ints[y1*w+x1]
	if x0 > 0 {
		sum -= ints[y1*w+x0-1]
	}
	if y0 > 0 {
		sum -= ints[(y0-1)*w+x1]
	}
	if x0 > 0 && y0 > 0 {
		sum += ints[(y0-1)*w+x0-1]
	}
	return sum
}

// boxBlurGray smooths a grayscale image with a square box filter of the given
// radius; borders are edge-replicated.
func boxBlurGray(gray *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return gray
	}
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)
	if w == 0 || h == 0 {
		return out
	}
	ints := integralImage(gray)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := max(x-radius, 0), max(y-radius, 0)
			x1, y1 := min(x+radius, w-1), min(y+radius, h-1)
			area := (x1 - x0 + 1) * (y1 - y0 + 1)
			mean := windowSum(ints, w, x0, y0, x1, y1) / area
			out.SetGray(bounds.Min.X+x, bounds.Min.Y+y, grayLevel(uint8(mean)))
		}
	}
	return out
}
