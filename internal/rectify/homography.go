package rectify

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"go-datacard-extractor/internal/vision"
)

// Point is a 2D coordinate in image pixel space.
type Point struct {
	X float64
	Y float64
}

// SolveHomography computes the projective transform mapping the four from
// points onto the four to points, as a direct linear system with the last
// matrix entry fixed to one. Degenerate correspondences, such as three
// collinear points, make the system singular and return an error.
func SolveHomography(from, to [4]Point) (vision.Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y

		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return vision.Homography{}, fmt.Errorf("solving homography: %w", err)
	}

	return vision.Homography{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}, nil
}
