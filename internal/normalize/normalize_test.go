package normalize

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeEmptyPayload(t *testing.T) {
	if _, err := Decode(nil, ExtractionLongEdge); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image"), ExtractionLongEdge); err == nil {
		t.Error("expected decode error for garbage bytes")
	}
}

func TestDecodeResizesLongEdge(t *testing.T) {
	payload := encodePNG(t, 3200, 2400)

	img, err := Decode(payload, 1600)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 1600 {
		t.Errorf("expected long edge 1600, got %d", img.Bounds().Dx())
	}
	if img.Bounds().Dy() != 1200 {
		t.Errorf("expected aspect-preserving height 1200, got %d", img.Bounds().Dy())
	}
}

func TestDecodeSkipsResizeWithinTolerance(t *testing.T) {
	payload := encodePNG(t, 1620, 1000)

	img, err := Decode(payload, 1600)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 1620 {
		t.Errorf("resize within 5%% tolerance should be skipped, got width %d", img.Bounds().Dx())
	}
}

func TestDecodePortraitOrientation(t *testing.T) {
	payload := encodePNG(t, 600, 1200)

	img, err := Decode(payload, 640)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dy() != 640 {
		t.Errorf("long edge should be the height for portrait input, got %d", img.Bounds().Dy())
	}
	if img.Bounds().Dx() != 320 {
		t.Errorf("expected width 320, got %d", img.Bounds().Dx())
	}
}
