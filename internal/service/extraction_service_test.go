package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"go-datacard-extractor/internal/card"
	"go-datacard-extractor/internal/classifier"
	apperrors "go-datacard-extractor/internal/errors"
	"go-datacard-extractor/internal/extract"
	"go-datacard-extractor/internal/ocr"
)

type scriptEngine struct {
	dets []ocr.Detection
}

func (s *scriptEngine) Recognize(context.Context, image.Image, ocr.Params) ([]ocr.Detection, error) {
	return s.dets, nil
}

type memStore struct {
	mu    sync.Mutex
	names []string
}

func (m *memStore) Upload(_ context.Context, name string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.names)
}

type stubClassifier struct {
	prediction classifier.Prediction
	err        error
}

func (s *stubClassifier) Predict(context.Context, map[string]*string) (classifier.Prediction, error) {
	return s.prediction, s.err
}

func cardPhoto(t *testing.T) []byte {
	t.Helper()
	tpl := card.Default()
	img := image.NewNRGBA(image.Rect(0, 0, tpl.Width, tpl.Height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, target := range tpl.Targets {
		for y := int(target.Y) - 28; y < int(target.Y)+28; y++ {
			for x := int(target.X) - 28; x < int(target.X)+28; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newService(t *testing.T, cls classifier.Classifier, store *memStore) ExtractionService {
	t.Helper()
	tpl := card.Default()
	engine := &scriptEngine{dets: []ocr.Detection{
		{Text: "7.2", Confidence: 0.9, Box: image.Rect(10, 10, 80, 50)},
	}}
	return NewExtractionService(tpl, extract.New(tpl, engine), cls, store)
}

func TestExtractDataCard(t *testing.T) {
	store := &memStore{}
	svc := newService(t, nil, store)

	resp, err := svc.ExtractDataCard(context.Background(), cardPhoto(t))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Canonical {
		t.Error("expected canonical extraction")
	}
	if v := resp.Parsed["pH"]; v == nil || *v != "7.2" {
		t.Errorf("pH = %v", v)
	}
	if resp.ProcessingTimeSec <= 0 {
		t.Error("processing time not measured")
	}

	// Archiving runs in the background: capture plus result document.
	deadline := time.After(2 * time.Second)
	for store.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("archived %d blobs, want 2", store.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestExtractDataCardBadPayload(t *testing.T) {
	svc := newService(t, nil, &memStore{})

	_, err := svc.ExtractDataCard(context.Background(), []byte("junk"))
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.GetStatusCode(err) != 400 {
		t.Errorf("status %d, want 400", apperrors.GetStatusCode(err))
	}
}

func TestValidateAlignment(t *testing.T) {
	svc := newService(t, nil, &memStore{})

	resp, err := svc.ValidateAlignment(context.Background(), cardPhoto(t))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Detected != 4 || !resp.Ready {
		t.Fatalf("alignment %+v", resp)
	}
	if resp.Quality < 0.6 {
		t.Errorf("quality %f", resp.Quality)
	}

	if _, err := svc.ValidateAlignment(context.Background(), []byte("junk")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRenderRegionOverlay(t *testing.T) {
	svc := newService(t, nil, &memStore{})

	data, err := svc.RenderRegionOverlay(context.Background(), cardPhoto(t))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("overlay is not a png: %v", err)
	}
	tpl := card.Default()
	if img.Bounds().Dx() != tpl.Width || img.Bounds().Dy() != tpl.Height {
		t.Errorf("overlay is %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestPredict(t *testing.T) {
	cls := &stubClassifier{prediction: classifier.Prediction{Potable: true, Probability: 0.91}}
	svc := newService(t, cls, &memStore{})

	resp, err := svc.Predict(context.Background(), cardPhoto(t))
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Potable || resp.Probability != 0.91 {
		t.Fatalf("prediction %+v", resp)
	}
	if v := resp.Parsed["pH"]; v == nil || *v != "7.2" {
		t.Errorf("pH = %v", v)
	}
}

func TestPredictWithoutClassifier(t *testing.T) {
	svc := newService(t, nil, &memStore{})
	if _, err := svc.Predict(context.Background(), cardPhoto(t)); err == nil {
		t.Fatal("expected error when no classifier is configured")
	}
}

func TestPredictClassifierDown(t *testing.T) {
	cls := &stubClassifier{err: context.DeadlineExceeded}
	svc := newService(t, cls, &memStore{})

	_, err := svc.Predict(context.Background(), cardPhoto(t))
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeNetwork) {
		t.Errorf("error type %v", err)
	}
}

func TestCalibrate(t *testing.T) {
	svc := newService(t, nil, &memStore{})

	resp, err := svc.Calibrate(context.Background(), cardPhoto(t), map[string]string{"pH": "7.2"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Report.ExactMatches != 1 {
		t.Fatalf("report %+v", resp.Report)
	}

	if _, err := svc.Calibrate(context.Background(), cardPhoto(t), nil); err == nil {
		t.Fatal("expected validation error for missing annotations")
	}
}
