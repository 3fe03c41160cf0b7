package container

import (
	"fmt"
	"net/http"

	"go-datacard-extractor/internal/card"
	"go-datacard-extractor/internal/classifier"
	"go-datacard-extractor/internal/config"
	"go-datacard-extractor/internal/extract"
	"go-datacard-extractor/internal/ocr"
	"go-datacard-extractor/internal/service"
	"go-datacard-extractor/internal/storage"
	"go-datacard-extractor/internal/transport"
)

// Container wires every singleton once at startup: template, engine pool,
// classifier, archive store, service, handler.
type Container struct {
	config  *config.Config
	engine  *ocr.Tesseract
	service service.ExtractionService
	handler http.Handler
}

func NewContainer(cfg *config.Config) (*Container, error) {
	tpl := card.Default()
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid card template: %w", err)
	}

	engine := ocr.NewTesseract(cfg.TesseractLang, cfg.OCRPoolSize)
	extractor := extract.New(tpl, engine)

	var cls classifier.Classifier
	if cfg.ClassifierURL != "" {
		cls = classifier.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierTimeout)
	}

	var store storage.BlobStore = storage.NoopStore{}
	if cfg.ArchiveEnabled() {
		azure, err := storage.NewAzureStore(cfg.AzureAccount, cfg.AzureKey, cfg.AzureContainer)
		if err != nil {
			return nil, fmt.Errorf("building archive store: %w", err)
		}
		store = azure
	}

	svc := service.NewExtractionService(tpl, extractor, cls, store)
	handler := transport.NewHandler(svc, cfg)

	return &Container{
		config:  cfg,
		engine:  engine,
		service: svc,
		handler: handler,
	}, nil
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the recognition engine pool.
func (c *Container) Close() error {
	return c.engine.Close()
}
