package vision

import (
	"image"
	"image/color"
	"math"
)

// Homography is a row-major 3x3 projective transform.
type Homography [9]float64

// Apply maps a point through the transform.
func (m Homography) Apply(x, y float64) (float64, float64) {
	w := m[6]*x + m[7]*y + m[8]
	if w == 0 {
		return 0, 0
	}
	return (m[0]*x + m[1]*y + m[2]) / w, (m[3]*x + m[4]*y + m[5]) / w
}

// WarpPerspective resamples src into a width x height destination. The
// transform maps destination coordinates to source coordinates; sampling is
// bicubic (Catmull-Rom) with edge-replicated borders.
func WarpPerspective(src *image.NRGBA, dstToSrc Homography, width, height int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy := dstToSrc.Apply(float64(x), float64(y))
			out.SetNRGBA(x, y, sampleCubic(src, sx, sy))
		}
	}
	return out
}

// RotateAbout rotates src by angle degrees counterclockwise about its center,
// keeping the original dimensions; uncovered pixels replicate the edge.
func RotateAbout(src *image.NRGBA, angleDeg float64) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cx, cy := float64(w)/2, float64(h)/2

	sinA, cosA := sincosDeg(angleDeg)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Inverse mapping: rotate destination coordinates by -angle.
			dx, dy := float64(x)-cx, float64(y)-cy
			sx := cosA*dx + sinA*dy + cx
			sy := -sinA*dx + cosA*dy + cy
			out.SetNRGBA(x, y, sampleCubic(src, sx, sy))
		}
	}
	return out
}

// sampleCubic evaluates src at a fractional position using the Catmull-Rom
// kernel; out-of-range taps clamp to the nearest edge pixel.
func sampleCubic(src *image.NRGBA, fx, fy float64) color.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{}
	}

	x0 := int(fx)
	y0 := int(fy)
	if fx < 0 {
		x0--
	}
	if fy < 0 {
		y0--
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	var wx, wy [4]float64
	for i := 0; i < 4; i++ {
		wx[i] = catmullRom(float64(i-1) - tx)
		wy[i] = catmullRom(float64(i-1) - ty)
	}

	var r, g, b, a float64
	for j := 0; j < 4; j++ {
		py := clamp(y0+j-1, 0, h-1)
		for i := 0; i < 4; i++ {
			px := clamp(x0+i-1, 0, w-1)
			c := src.NRGBAAt(bounds.Min.X+px, bounds.Min.Y+py)
			weight := wx[i] * wy[j]
			r += weight * float64(c.R)
			g += weight * float64(c.G)
			b += weight * float64(c.B)
			a += weight * float64(c.A)
		}
	}
	return color.NRGBA{
		R: clampByte(r),
		G: clampByte(g),
		B: clampByte(b),
		A: clampByte(a),
	}
}

func catmullRom(t float64) float64 {
	if t < 0 {
		t = -t
	}
	switch {
	case t < 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t < 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	default:
		return 0
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func sincosDeg(deg float64) (sin, cos float64) {
	return math.Sincos(deg * math.Pi / 180)
}
