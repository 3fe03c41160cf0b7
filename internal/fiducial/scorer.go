package fiducial

import "math"

// Quality summarizes how well the four markers in a live frame line up with
// the card geometry. The score climbs from 0 toward 1 as corners appear and
// the quadrilateral they form approaches the expected shape.
type Quality struct {
	Detected int            `json:"detected"`
	Corners  map[Label]bool `json:"corners"`
	Score    float64        `json:"score"`
	Ready    bool           `json:"ready"`
}

// ScoreAlignment grades a detected corner set against the expected
// height-to-width ratio of the card. With fewer than four corners the score
// is a flat 0.15 per
// corner; with all four it becomes 0.6 plus up to 0.2 for aspect agreement
// and up to 0.2 for parallel opposite edges. Ready requires all four corners
// and a score of at least 0.6.
func ScoreAlignment(set Set, frameAspect float64) Quality {
	q := Quality{
		Detected: len(set),
		Corners:  make(map[Label]bool, len(Labels)),
	}
	for _, label := range Labels {
		_, q.Corners[label] = set[label]
	}

	if q.Detected < len(Labels) {
		q.Score = 0.15 * float64(q.Detected)
		return q
	}

	tl, tr := set[TopLeft], set[TopRight]
	br, bl := set[BottomRight], set[BottomLeft]

	top := math.Hypot(tr.X-tl.X, tr.Y-tl.Y)
	bottom := math.Hypot(br.X-bl.X, br.Y-bl.Y)
	left := math.Hypot(bl.X-tl.X, bl.Y-tl.Y)
	right := math.Hypot(br.X-tr.X, br.Y-tr.Y)

	avgH := (top + bottom) / 2
	avgV := (left + right) / 2

	aspectScore := 0.5
	if avgH >= 0.05 {
		observed := avgV / avgH
		ratio := math.Abs(observed-frameAspect) / frameAspect
		aspectScore = math.Max(0, 1-ratio)
	}

	parallelScore := 1.0
	if maxH := math.Max(top, bottom); maxH > 0 {
		parallelScore -= 0.5 * math.Abs(top-bottom) / maxH
	}
	if maxV := math.Max(left, right); maxV > 0 {
		parallelScore -= 0.5 * math.Abs(left-right) / maxV
	}
	parallelScore = math.Max(0, parallelScore)

	q.Score = 0.6 + 0.2*aspectScore + 0.2*parallelScore
	q.Ready = q.Score >= 0.6
	return q
}
