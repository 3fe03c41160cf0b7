package rectify

import (
	"image"
	"math"

	"go-datacard-extractor/internal/vision"
)

// minSkewDegrees is the correction floor: rotations smaller than this cost
// more in resampling blur than they recover in alignment.
const minSkewDegrees = 1.0

// SkewAngle estimates the dominant rotation of the dark content in gray, in
// degrees, normalized to (-45, 45]. It fits a minimum-area rotated rectangle
// around the convex hull of the ink pixels; the rectangle's tilt is the skew.
func SkewAngle(gray *image.Gray) float64 {
	mask := vision.OtsuInv().Apply(gray)
	hull := vision.ConvexHull(inkExtrema(mask))
	if len(hull) < 3 {
		return 0
	}
	return normalizeSkew(minAreaRectAngle(hull))
}

// Deskew rotates img to cancel its estimated skew. Angles under one degree
// are left alone.
func Deskew(img *image.NRGBA) *image.NRGBA {
	angle := SkewAngle(vision.ToGray(img))
	if math.Abs(angle) < minSkewDegrees {
		return img
	}
	return vision.RotateAbout(img, -angle)
}

// inkExtrema collects the leftmost and rightmost ink pixel of every row,
// which is sufficient support for the convex hull.
func inkExtrema(mask *vision.Mask) []image.Point {
	bounds := mask.Bounds()
	pts := make([]image.Point, 0, 2*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		minX, maxX := -1, -1
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}
			if minX < 0 {
				minX = x
			}
			maxX = x
		}
		if minX < 0 {
			continue
		}
		pts = append(pts, image.Point{X: minX, Y: y})
		if maxX != minX {
			pts = append(pts, image.Point{X: maxX, Y: y})
		}
	}
	return pts
}

// minAreaRectAngle runs rotating calipers over the hull: the minimum-area
// enclosing rectangle has one side collinear with a hull edge, so trying
// every edge orientation is exact.
func minAreaRectAngle(hull []image.Point) float64 {
	bestArea := math.Inf(1)
	bestAngle := 0.0

	for i := range hull {
		p, q := hull[i], hull[(i+1)%len(hull)]
		theta := math.Atan2(float64(q.Y-p.Y), float64(q.X-p.X))
		sin, cos := math.Sincos(-theta)

		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, pt := range hull {
			x := cos*float64(pt.X) - sin*float64(pt.Y)
			y := sin*float64(pt.X) + cos*float64(pt.Y)
			minX = math.Min(minX, x)
			maxX = math.Max(maxX, x)
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}

		area := (maxX - minX) * (maxY - minY)
		if area < bestArea {
			bestArea = area
			bestAngle = theta * 180 / math.Pi
		}
	}
	return bestAngle
}

// normalizeSkew folds an edge orientation into the equivalent rotation in
// (-45, 45]; a rectangle's tilt is only defined modulo 90 degrees.
func normalizeSkew(deg float64) float64 {
	for deg > 45 {
		deg -= 90
	}
	for deg <= -45 {
		deg += 90
	}
	return deg
}
