package vision

import (
	"image"
	"testing"
)

func maskWithSquare(w, h int, r image.Rectangle) *Mask {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.SetGray(x, y, white)
		}
	}
	return mask
}

func TestComponentsSingleSquare(t *testing.T) {
	mask := maskWithSquare(100, 100, image.Rect(10, 20, 40, 50))

	comps := Components(mask, nil)
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
	c := comps[0]
	if c.Area != 30*30 {
		t.Errorf("expected area 900, got %d", c.Area)
	}
	if c.Bounds != image.Rect(10, 20, 40, 50) {
		t.Errorf("unexpected bounds %v", c.Bounds)
	}
	if c.Solidity < 0.95 || c.Solidity > 1.05 {
		t.Errorf("filled square should have solidity ~1, got %f", c.Solidity)
	}
	if c.Aspect() != 1.0 {
		t.Errorf("square should have aspect 1, got %f", c.Aspect())
	}
	cx, cy := c.Center()
	if cx != 25 || cy != 35 {
		t.Errorf("unexpected center (%f, %f)", cx, cy)
	}
}

func TestComponentsSeparateRegions(t *testing.T) {
	mask := maskWithSquare(100, 100, image.Rect(5, 5, 15, 15))
	for y := 60; y < 70; y++ {
		for x := 60; x < 70; x++ {
			mask.SetGray(x, y, white)
		}
	}

	comps := Components(mask, nil)
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d", len(comps))
	}
}

func TestComponentsMeanIntensity(t *testing.T) {
	mask := maskWithSquare(50, 50, image.Rect(10, 10, 20, 20))
	gray := image.NewGray(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			gray.SetGray(x, y, grayLevel(200))
		}
	}
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			gray.SetGray(x, y, grayLevel(40))
		}
	}

	comps := Components(mask, gray)
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
	if comps[0].MeanIntensity != 40 {
		t.Errorf("expected mean intensity 40, got %f", comps[0].MeanIntensity)
	}
}

func TestComponentsHollowShapeHasLowSolidity(t *testing.T) {
	// A thin diagonal line hull covers far more area than the line itself.
	mask := image.NewGray(image.Rect(0, 0, 60, 60))
	for i := 5; i < 55; i++ {
		mask.SetGray(i, i, white)
		mask.SetGray(i, 5, white)
	}

	comps := Components(mask, nil)
	if len(comps) != 1 {
		t.Fatalf("expected 1 connected component, got %d", len(comps))
	}
	if comps[0].Solidity > 0.5 {
		t.Errorf("L-shaped outline should have low solidity, got %f", comps[0].Solidity)
	}
}

func TestMorphologyOpenRemovesSpeckle(t *testing.T) {
	mask := maskWithSquare(60, 60, image.Rect(20, 20, 40, 40))
	mask.SetGray(5, 5, white) // lone speckle

	cleaned := Open(mask, 1, 1)

	if cleaned.GrayAt(5, 5).Y != 0 {
		t.Error("open pass should remove isolated speckle")
	}
	if cleaned.GrayAt(30, 30).Y == 0 {
		t.Error("open pass should keep the solid square interior")
	}
}

func TestMorphologyCloseBridgesGap(t *testing.T) {
	mask := maskWithSquare(60, 60, image.Rect(10, 10, 29, 40))
	for y := 10; y < 40; y++ {
		for x := 30; x < 50; x++ {
			mask.SetGray(x, y, white)
		}
	}
	// One-pixel vertical gap at x=29 between the two blocks.

	closed := Close(mask, 1, 2)

	comps := Components(closed, nil)
	if len(comps) != 1 {
		t.Errorf("close pass should bridge the gap, got %d components", len(comps))
	}
}
