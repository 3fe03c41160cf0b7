package card

import (
	"fmt"
	"image"
)

// Target is a fiducial marker center in canonical-frame coordinates.
type Target struct {
	X float64
	Y float64
}

// RegionSpec describes one write-area rectangle in canonical-frame pixel space.
type RegionSpec struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the region as an image.Rectangle.
func (r RegionSpec) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Template holds the fixed geometry of the printed data card: the canonical
// frame dimensions, the four fiducial target centers (ordered tl, tr, br, bl),
// the ten write-area regions, and the plausible value domain for the measured
// quantities. A Template is constructed once at startup and never mutated.
type Template struct {
	Width   int
	Height  int
	Targets [4]Target
	Regions []RegionSpec

	// CropMargin is the symmetric safety margin added around each region
	// when cropping, to tolerate residual misalignment.
	CropMargin int

	// ValueMin and ValueMax bound the plausible numeric domain; parsed
	// values outside this band are treated as recognition noise.
	ValueMin float64
	ValueMax float64
}

const (
	canonicalWidth  = 1080
	canonicalHeight = 1240

	// Fiducials are 56px squares printed 12px from the card edges, so their
	// centers sit 40px in from each corner of the canonical frame.
	fiducialInset = 40.0

	writeWidth  = 435
	writeHeight = 85
	leftColX    = 65
	rightColX   = 578
)

// Row baselines measured from contour analysis of rectified captures.
var rowY = [5]int{306, 489, 671, 853, 1034}

// Field names in reading order: left column then right column per row.
var fieldLayout = []struct {
	name string
	row  int
	col  int
}{
	{"pH", 0, 0},
	{"hardness", 0, 1},
	{"solids", 1, 0},
	{"chloramines", 1, 1},
	{"sulfate", 2, 0},
	{"conductivity", 2, 1},
	{"organic_carbon", 3, 0},
	{"trihalomethanes", 3, 1},
	{"turbidity", 4, 0},
	{"free_chlorine_residual", 4, 1},
}

// Default returns the template for the standard water-quality data card.
func Default() Template {
	regions := make([]RegionSpec, 0, len(fieldLayout))
	for _, f := range fieldLayout {
		x := leftColX
		if f.col == 1 {
			x = rightColX
		}
		regions = append(regions, RegionSpec{
			Name:   f.name,
			X:      x,
			Y:      rowY[f.row] + 5,
			Width:  writeWidth,
			Height: writeHeight,
		})
	}

	return Template{
		Width:  canonicalWidth,
		Height: canonicalHeight,
		Targets: [4]Target{
			{fiducialInset, fiducialInset},
			{canonicalWidth - fiducialInset, fiducialInset},
			{canonicalWidth - fiducialInset, canonicalHeight - fiducialInset},
			{fiducialInset, canonicalHeight - fiducialInset},
		},
		Regions:    regions,
		CropMargin: 3,
		ValueMin:   -50,
		ValueMax:   50000,
	}
}

// AspectRatio returns width/height of the canonical frame.
func (t Template) AspectRatio() float64 {
	return float64(t.Width) / float64(t.Height)
}

// FieldNames returns the region names in registry order.
func (t Template) FieldNames() []string {
	names := make([]string, len(t.Regions))
	for i, r := range t.Regions {
		names[i] = r.Name
	}
	return names
}

// Validate checks the structural invariants of the template: every region
// must lie within the canonical frame and no two regions may overlap.
func (t Template) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("invalid canonical frame size %dx%d", t.Width, t.Height)
	}
	frame := image.Rect(0, 0, t.Width, t.Height)
	seen := make(map[string]struct{}, len(t.Regions))
	for i, r := range t.Regions {
		if r.Name == "" {
			return fmt.Errorf("region %d has no name", i)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("duplicate region name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
		if !r.Rect().In(frame) {
			return fmt.Errorf("region %q exceeds frame bounds", r.Name)
		}
		for _, other := range t.Regions[i+1:] {
			if r.Rect().Overlaps(other.Rect()) {
				return fmt.Errorf("regions %q and %q overlap", r.Name, other.Name)
			}
		}
	}
	return nil
}
