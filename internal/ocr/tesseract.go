package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"go-datacard-extractor/internal/logger"
)

// Tesseract runs recognition through a bounded pool of gosseract clients.
// Clients are expensive to initialize, so they are created lazily and reused
// across requests; the pool size caps concurrent native calls.
type Tesseract struct {
	language string
	poolSize int

	mu      sync.Mutex
	created int
	idle    chan *gosseract.Client
	closed  bool
}

// NewTesseract builds a pooled engine for the given language model.
func NewTesseract(language string, poolSize int) *Tesseract {
	if poolSize <= 0 {
		poolSize = 2
	}
	return &Tesseract{
		language: language,
		poolSize: poolSize,
		idle:     make(chan *gosseract.Client, poolSize),
	}
}

// Recognize encodes img as PNG, configures a pooled client per params, and
// returns word-level detections with confidences scaled to 0..1.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, params Params) ([]Detection, error) {
	client, err := t.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.release(client)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}
	if err := t.configure(client, params); err != nil {
		return nil, err
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		if b.Word == "" {
			continue
		}
		detections = append(detections, Detection{
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
			Box:        b.Box,
		})
	}

	logger.WithFields(logrus.Fields{
		"detections": len(detections),
		"singleLine": params.SingleLine,
	}).Debug("Recognition call finished")

	return detections, nil
}

func (t *Tesseract) configure(client *gosseract.Client, params Params) error {
	if err := client.SetWhitelist(params.Whitelist); err != nil {
		return fmt.Errorf("setting whitelist: %w", err)
	}

	mode := gosseract.PSM_SPARSE_TEXT
	if params.SingleLine {
		mode = gosseract.PSM_SINGLE_LINE
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return fmt.Errorf("setting segmentation mode: %w", err)
	}

	if params.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", fmt.Sprint(params.DPI)); err != nil {
			return fmt.Errorf("setting dpi: %w", err)
		}
	}
	return nil
}

// acquire returns an idle client, creating one if the pool has headroom,
// otherwise blocking until a client is released or ctx is done.
func (t *Tesseract) acquire(ctx context.Context) (*gosseract.Client, error) {
	select {
	case client := <-t.idle:
		return client, nil
	default:
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, fmt.Errorf("engine is closed")
	}
	if t.created < t.poolSize {
		t.created++
		t.mu.Unlock()

		client := gosseract.NewClient()
		if t.language != "" {
			if err := client.SetLanguage(t.language); err != nil {
				client.Close()
				t.mu.Lock()
				t.created--
				t.mu.Unlock()
				return nil, fmt.Errorf("setting language %q: %w", t.language, err)
			}
		}
		return client, nil
	}
	t.mu.Unlock()

	select {
	case client := <-t.idle:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Tesseract) release(client *gosseract.Client) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		client.Close()
		return
	}

	select {
	case t.idle <- client:
	default:
		client.Close()
	}
}

// Close tears down all idle clients. In-flight clients are closed as they
// are released.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	for {
		select {
		case client := <-t.idle:
			client.Close()
		default:
			return nil
		}
	}
}
