// Package classifier calls the downstream potability model with a card's
// extracted field values.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Prediction is the classifier's verdict for one card.
type Prediction struct {
	Potable     bool    `json:"potable"`
	Probability float64 `json:"probability"`
}

// Classifier scores a set of extracted field values. Absent fields are
// passed as nulls; the model applies its own imputation.
type Classifier interface {
	Predict(ctx context.Context, fields map[string]*string) (Prediction, error)
}

// HTTPClassifier posts the field map to a remote model service.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClassifier(baseURL string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

func (c *HTTPClassifier) Predict(ctx context.Context, fields map[string]*string) (Prediction, error) {
	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return Prediction{}, fmt.Errorf("encoding prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("building prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("calling classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var p Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Prediction{}, fmt.Errorf("decoding prediction: %w", err)
	}
	return p, nil
}
