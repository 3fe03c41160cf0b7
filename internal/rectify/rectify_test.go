package rectify

import (
	"image"
	"image/color"
	"math"
	"testing"

	"go-datacard-extractor/internal/card"
	"go-datacard-extractor/internal/fiducial"
	"go-datacard-extractor/internal/vision"
)

func cornersAt(tl, tr, br, bl [2]float64) fiducial.Set {
	return fiducial.Set{
		fiducial.TopLeft:     {Label: fiducial.TopLeft, X: tl[0], Y: tl[1]},
		fiducial.TopRight:    {Label: fiducial.TopRight, X: tr[0], Y: tr[1]},
		fiducial.BottomRight: {Label: fiducial.BottomRight, X: br[0], Y: br[1]},
		fiducial.BottomLeft:  {Label: fiducial.BottomLeft, X: bl[0], Y: bl[1]},
	}
}

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestSolveHomographyIdentity(t *testing.T) {
	pts := [4]Point{{0, 0}, {100, 0}, {100, 200}, {0, 200}}
	h, err := SolveHomography(pts, pts)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pts {
		x, y := h.Apply(p.X, p.Y)
		if math.Abs(x-p.X) > 1e-6 || math.Abs(y-p.Y) > 1e-6 {
			t.Errorf("point (%v, %v) mapped to (%v, %v)", p.X, p.Y, x, y)
		}
	}
}

func TestSolveHomographyMapsCorners(t *testing.T) {
	from := [4]Point{{40, 40}, {1040, 40}, {1040, 1200}, {40, 1200}}
	to := [4]Point{{120, 95}, {980, 60}, {1010, 1150}, {90, 1190}}

	h, err := SolveHomography(from, to)
	if err != nil {
		t.Fatal(err)
	}
	for i := range from {
		x, y := h.Apply(from[i].X, from[i].Y)
		if math.Abs(x-to[i].X) > 1e-6 || math.Abs(y-to[i].Y) > 1e-6 {
			t.Errorf("corner %d mapped to (%.4f, %.4f), want (%v, %v)", i, x, y, to[i].X, to[i].Y)
		}
	}
}

func TestSolveHomographyDegenerate(t *testing.T) {
	// All four points on one line.
	from := [4]Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	to := [4]Point{{40, 40}, {1040, 40}, {1040, 1200}, {40, 1200}}
	if _, err := SolveHomography(from, to); err == nil {
		t.Fatal("expected error for collinear correspondences")
	}
}

func TestToCanonicalAlreadyAligned(t *testing.T) {
	tpl := card.Default()
	img := solidNRGBA(tpl.Width, tpl.Height, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	img.SetNRGBA(540, 620, color.NRGBA{R: 10, G: 200, B: 30, A: 255})

	set := cornersAt([2]float64{40, 40}, [2]float64{1040, 40}, [2]float64{1040, 1200}, [2]float64{40, 1200})
	res := New(tpl).ToCanonical(img, set)

	if !res.Canonical {
		t.Fatal("complete corner set must produce a canonical frame")
	}
	got := res.Frame.Bounds()
	if got.Dx() != tpl.Width || got.Dy() != tpl.Height {
		t.Fatalf("frame is %dx%d, want %dx%d", got.Dx(), got.Dy(), tpl.Width, tpl.Height)
	}
	if c := res.Frame.NRGBAAt(540, 620); c.G < 150 || c.R > 80 {
		t.Errorf("marker pixel moved: %+v", c)
	}
}

func TestToCanonicalScalesFrame(t *testing.T) {
	tpl := card.Default()
	// The card fills the left-top quadrant of a larger capture at half scale.
	img := solidNRGBA(1200, 1300, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := 0; y < 620; y++ {
		for x := 0; x < 540; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 80, B: 160, A: 255})
		}
	}

	set := cornersAt([2]float64{20, 20}, [2]float64{520, 20}, [2]float64{520, 600}, [2]float64{20, 600})
	res := New(tpl).ToCanonical(img, set)

	if !res.Canonical {
		t.Fatal("expected canonical result")
	}
	if c := res.Frame.NRGBAAt(540, 620); c.B < 100 {
		t.Errorf("card interior not mapped into frame: %+v", c)
	}
	if c := res.Frame.NRGBAAt(40, 40); c.B < 100 {
		t.Errorf("target corner not inside card area: %+v", c)
	}
}

func TestToCanonicalIncompleteFallsBack(t *testing.T) {
	tpl := card.Default()
	img := solidNRGBA(400, 500, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	res := New(tpl).ToCanonical(img, fiducial.Set{})

	if res.Canonical {
		t.Fatal("incomplete set must not be canonical")
	}
	got := res.Frame.Bounds()
	if got.Dx() != 400 || got.Dy() != 500 {
		t.Fatalf("fallback frame resized to %dx%d", got.Dx(), got.Dy())
	}
}

func TestSkewAngleOnRotatedBar(t *testing.T) {
	base := solidNRGBA(400, 400, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := 180; y < 220; y++ {
		for x := 60; x < 340; x++ {
			base.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}

	if a := SkewAngle(vision.ToGray(base)); math.Abs(a) > 0.5 {
		t.Fatalf("axis-aligned bar has skew %.2f", a)
	}

	rotated := vision.RotateAbout(base, 7)
	angle := SkewAngle(vision.ToGray(rotated))
	if math.Abs(math.Abs(angle)-7) > 1.5 {
		t.Fatalf("rotated bar skew %.2f, want magnitude near 7", angle)
	}
}

func TestDeskewStraightens(t *testing.T) {
	base := solidNRGBA(400, 400, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := 180; y < 220; y++ {
		for x := 60; x < 340; x++ {
			base.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}

	rotated := vision.RotateAbout(base, 6)
	fixed := Deskew(rotated)

	if a := SkewAngle(vision.ToGray(fixed)); math.Abs(a) > 1.5 {
		t.Fatalf("deskewed frame still skewed by %.2f", a)
	}
}

func TestDeskewSkipsTinyAngles(t *testing.T) {
	img := solidNRGBA(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for x := 20; x < 80; x++ {
		img.SetNRGBA(x, 50, color.NRGBA{A: 255})
	}

	if got := Deskew(img); got != img {
		t.Fatal("near-zero skew should return the input frame unchanged")
	}
}
