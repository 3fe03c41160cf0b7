package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/sirupsen/logrus"

	"go-datacard-extractor/internal/calibration"
	"go-datacard-extractor/internal/card"
	"go-datacard-extractor/internal/classifier"
	apperrors "go-datacard-extractor/internal/errors"
	"go-datacard-extractor/internal/extract"
	"go-datacard-extractor/internal/fiducial"
	"go-datacard-extractor/internal/logger"
	"go-datacard-extractor/internal/normalize"
	"go-datacard-extractor/internal/storage"
	"go-datacard-extractor/internal/vision"
	"go-datacard-extractor/pkg/models"
)

// ExtractionService is the application-facing surface over the pipeline.
type ExtractionService interface {
	ExtractDataCard(ctx context.Context, payload []byte) (*models.ExtractionResponse, error)
	ValidateAlignment(ctx context.Context, payload []byte) (*models.AlignmentResponse, error)
	RenderRegionOverlay(ctx context.Context, payload []byte) ([]byte, error)
	Predict(ctx context.Context, payload []byte) (*models.PredictionResponse, error)
	Calibrate(ctx context.Context, payload []byte, expected map[string]string) (*models.CalibrationResponse, error)
}

// archiveTimeout bounds the background uploads so a stuck store cannot pile
// up goroutines forever.
const archiveTimeout = 30 * time.Second

type extractionService struct {
	tpl        card.Template
	extractor  *extract.Extractor
	guidance   *fiducial.Detector
	classifier classifier.Classifier
	store      storage.BlobStore
}

// NewExtractionService wires the pipeline behind the service surface.
// classifier may be nil when no downstream model is configured; store must
// not be nil (use storage.NoopStore).
func NewExtractionService(
	tpl card.Template,
	extractor *extract.Extractor,
	cls classifier.Classifier,
	store storage.BlobStore,
) ExtractionService {
	return &extractionService{
		tpl:        tpl,
		extractor:  extractor,
		guidance:   fiducial.NewDetector(fiducial.LooseParams()),
		classifier: cls,
		store:      store,
	}
}

func (s *extractionService) ExtractDataCard(ctx context.Context, payload []byte) (*models.ExtractionResponse, error) {
	start := time.Now()

	result, err := s.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, wrapExtractErr(err)
	}

	resp := &models.ExtractionResponse{
		Parsed:            result.Fields,
		Canonical:         result.Canonical,
		ProcessingTimeSec: time.Since(start).Seconds(),
	}
	s.archiveCapture(payload, resp)
	return resp, nil
}

func (s *extractionService) ValidateAlignment(_ context.Context, payload []byte) (*models.AlignmentResponse, error) {
	img, err := normalize.Decode(payload, normalize.GuidanceLongEdge)
	if err != nil {
		return nil, apperrors.NewValidationError("could not decode frame", err)
	}

	set := s.guidance.Detect(vision.ToGray(img))
	quality := fiducial.ScoreAlignment(set, float64(s.tpl.Height)/float64(s.tpl.Width))

	return &models.AlignmentResponse{
		Detected: quality.Detected,
		Corners:  quality.Corners,
		Quality:  quality.Score,
		Ready:    quality.Ready,
	}, nil
}

func (s *extractionService) RenderRegionOverlay(_ context.Context, payload []byte) ([]byte, error) {
	overlay, _, err := s.extractor.RenderOverlay(payload)
	if err != nil {
		return nil, wrapExtractErr(err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, overlay); err != nil {
		return nil, apperrors.NewInternalError("could not encode overlay", err)
	}
	return buf.Bytes(), nil
}

func (s *extractionService) Predict(ctx context.Context, payload []byte) (*models.PredictionResponse, error) {
	if s.classifier == nil {
		return nil, apperrors.NewInternalError("no classifier configured", nil)
	}

	result, err := s.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, wrapExtractErr(err)
	}

	prediction, err := s.classifier.Predict(ctx, result.Fields)
	if err != nil {
		return nil, apperrors.NewNetworkError("classifier call failed", err)
	}

	return &models.PredictionResponse{
		Parsed:      result.Fields,
		Canonical:   result.Canonical,
		Potable:     prediction.Potable,
		Probability: prediction.Probability,
	}, nil
}

func (s *extractionService) Calibrate(ctx context.Context, payload []byte, expected map[string]string) (*models.CalibrationResponse, error) {
	if len(expected) == 0 {
		return nil, apperrors.NewValidationError("expected values are required", nil)
	}

	result, err := s.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, wrapExtractErr(err)
	}

	return &models.CalibrationResponse{
		Report:    calibration.Compare(s.tpl.FieldNames(), expected, result.Fields),
		Canonical: result.Canonical,
	}, nil
}

// archiveCapture uploads the original capture and its parsed result in the
// background. Failures are logged and otherwise ignored.
func (s *extractionService) archiveCapture(payload []byte, resp *models.ExtractionResponse) {
	name := fmt.Sprintf("captures/%s", time.Now().UTC().Format("20060102T150405.000000000Z"))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := s.store.Upload(ctx, name+".img", payload); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{"blob": name}).Warn("Capture archive failed")
			return
		}
		doc, err := encodeResult(resp)
		if err != nil {
			logger.WithError(err).Warn("Result archive encoding failed")
			return
		}
		if err := s.store.Upload(ctx, name+".json", doc); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{"blob": name}).Warn("Result archive failed")
		}
	}()
}

func encodeResult(resp *models.ExtractionResponse) ([]byte, error) {
	return json.Marshal(resp)
}

// wrapExtractErr maps pipeline errors onto the typed scheme: cancellation
// and deadline become timeouts, everything else from Extract is bad input.
func wrapExtractErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("extraction timed out", err)
	default:
		return apperrors.NewValidationError("could not decode image", err)
	}
}
