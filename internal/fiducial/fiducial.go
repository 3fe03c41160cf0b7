// Package fiducial locates the four solid black corner markers printed on the
// data card and scores marker alignment for live capture guidance.
package fiducial

// Label identifies one of the four card corners.
type Label string

const (
	TopLeft     Label = "tl"
	TopRight    Label = "tr"
	BottomRight Label = "br"
	BottomLeft  Label = "bl"
)

// Labels in the order the rectifier consumes them.
var Labels = [4]Label{TopLeft, TopRight, BottomRight, BottomLeft}

// Corner is one detected marker.
type Corner struct {
	Label Label
	X     float64 // center, working-image pixels
	Y     float64
	Size  float64 // average bounding-box edge length
	Score float64 // solidity weighted by squareness
}

// Set maps corner labels to the best detection for each. A Set with fewer
// than four entries is the "not found" outcome, not an error.
type Set map[Label]Corner

// Complete reports whether all four corners are present.
func (s Set) Complete() bool {
	return len(s) == 4
}

// Ordered returns the corners as tl, tr, br, bl. Only valid for complete sets.
func (s Set) Ordered() [4]Corner {
	var out [4]Corner
	for i, l := range Labels {
		out[i] = s[l]
	}
	return out
}
