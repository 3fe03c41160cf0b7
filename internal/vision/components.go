package vision

import (
	"image"
	"math"
	"sort"
)

// Component is one external connected region of a binary mask.
type Component struct {
	Area   int
	Bounds image.Rectangle

	// MeanIntensity is the average source-image brightness over the
	// component's pixels; only set when a source image is supplied.
	MeanIntensity float64

	// Solidity is the component area divided by its convex-hull area.
	Solidity float64
}

// Center returns the center of the component's bounding box.
func (c Component) Center() (x, y float64) {
	return float64(c.Bounds.Min.X) + float64(c.Bounds.Dx())/2,
		float64(c.Bounds.Min.Y) + float64(c.Bounds.Dy())/2
}

// Aspect returns the bounding-box width/height ratio.
func (c Component) Aspect() float64 {
	if c.Bounds.Dy() == 0 {
		return 0
	}
	return float64(c.Bounds.Dx()) / float64(c.Bounds.Dy())
}

// Size returns the average of the bounding-box edge lengths.
func (c Component) Size() float64 {
	return (float64(c.Bounds.Dx()) + float64(c.Bounds.Dy())) / 2
}

// Components labels the 8-connected foreground regions of mask. When gray is
// non-nil the mean source brightness of each component is computed alongside.
func Components(mask *Mask, gray *image.Gray) []Component {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	visited := make([]bool, w*h)
	var out []Component
	queue := make([]image.Point, 0, 256)

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			if visited[sy*w+sx] || mask.GrayAt(bounds.Min.X+sx, bounds.Min.Y+sy).Y == 0 {
				continue
			}

			// Flood fill one component, tracking per-row extrema so the
			// convex hull can be built from the row edge pixels alone.
			queue = queue[:0]
			queue = append(queue, image.Pt(sx, sy))
			visited[sy*w+sx] = true

			area := 0
			var intensitySum float64
			minX, minY, maxX, maxY := sx, sy, sx, sy
			rowMin := map[int]int{}
			rowMax := map[int]int{}

			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				area++
				if gray != nil {
					intensitySum += float64(gray.GrayAt(bounds.Min.X+p.X, bounds.Min.Y+p.Y).Y)
				}
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)
				if v, ok := rowMin[p.Y]; !ok || p.X < v {
					rowMin[p.Y] = p.X
				}
				if v, ok := rowMax[p.Y]; !ok || p.X > v {
					rowMax[p.Y] = p.X
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						if visited[ny*w+nx] || mask.GrayAt(bounds.Min.X+nx, bounds.Min.Y+ny).Y == 0 {
							continue
						}
						visited[ny*w+nx] = true
						queue = append(queue, image.Pt(nx, ny))
					}
				}
			}

			edges := make([]image.Point, 0, 2*len(rowMin))
			for y, x := range rowMin {
				edges = append(edges, image.Pt(x, y))
			}
			for y, x := range rowMax {
				edges = append(edges, image.Pt(x, y))
			}
			hull := ConvexHull(edges)
			hullArea := polygonArea(hull)
			solidity := 0.0
			if hullArea > 0 {
				solidity = float64(area) / hullArea
			} else if area > 0 {
				// Degenerate hull (single row or column) is fully filled.
				solidity = 1.0
			}

			c := Component{
				Area: area,
				Bounds: image.Rect(bounds.Min.X+minX, bounds.Min.Y+minY,
					bounds.Min.X+maxX+1, bounds.Min.Y+maxY+1),
				Solidity: solidity,
			}
			if gray != nil && area > 0 {
				c.MeanIntensity = intensitySum / float64(area)
			}
			out = append(out, c)
		}
	}
	return out
}

// ConvexHull returns the convex hull of the points in counterclockwise order
// (Andrew's monotone chain).
func ConvexHull(pts []image.Point) []image.Point {
	if len(pts) <= 2 {
		return append([]image.Point(nil), pts...)
	}
	sorted := append([]image.Point(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []image.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []image.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// polygonArea computes the shoelace area of a polygon. Pixel-grid polygons
// underestimate the covered pixel count by roughly the perimeter half, so the
// boundary contribution is added back.
func polygonArea(poly []image.Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var twice int
	perimeterPts := 0
	for i := range poly {
		j := (i + 1) % len(poly)
		twice += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
		dx, dy := abs(poly[j].X-poly[i].X), abs(poly[j].Y-poly[i].Y)
		perimeterPts += gcd(dx, dy)
	}
	interior := math.Abs(float64(twice)) / 2
	// Pick's theorem: lattice points covered = interior + boundary.
	return interior + float64(perimeterPts)/2 + 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}
