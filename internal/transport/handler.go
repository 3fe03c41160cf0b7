package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-datacard-extractor/internal/config"
	apperrors "go-datacard-extractor/internal/errors"
	"go-datacard-extractor/internal/logger"
	"go-datacard-extractor/internal/service"
	"go-datacard-extractor/pkg/models"
)

// NewHandler builds the HTTP surface over the extraction service.
func NewHandler(svc service.ExtractionService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.POST("/ocr/data-card", extractDataCard(svc, cfg))
	r.POST("/ocr/debug-regions", debugRegions(svc, cfg))
	r.POST("/ocr/calibrate", calibrate(svc, cfg))
	r.POST("/fiducial/validate", validateAlignment(svc, cfg))
	r.POST("/predict", predict(svc, cfg))

	return r
}

func extractDataCard(svc service.ExtractionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ExtractionTimeout)
		defer cancel()

		payload, ok := readUpload(c)
		if !ok {
			return
		}

		resp, err := svc.ExtractDataCard(ctx, payload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "extraction failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"canonical":          resp.Canonical,
			"fields":             countFilled(resp.Parsed),
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"ip":                 c.ClientIP(),
		}).Info("Data card extracted")

		c.JSON(http.StatusOK, resp)
	}
}

func validateAlignment(svc service.ExtractionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		payload, ok := readUpload(c)
		if !ok {
			return
		}

		resp, err := svc.ValidateAlignment(ctx, payload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "alignment check failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func debugRegions(svc service.ExtractionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ExtractionTimeout)
		defer cancel()

		payload, ok := readUpload(c)
		if !ok {
			return
		}

		overlay, err := svc.RenderRegionOverlay(ctx, payload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "overlay rendering failed", err)
			return
		}
		c.Data(http.StatusOK, "image/png", overlay)
	}
}

func predict(svc service.ExtractionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ExtractionTimeout)
		defer cancel()

		payload, ok := readUpload(c)
		if !ok {
			return
		}

		resp, err := svc.Predict(ctx, payload)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "prediction failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func calibrate(svc service.ExtractionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.ExtractionTimeout)
		defer cancel()

		payload, ok := readUpload(c)
		if !ok {
			return
		}

		raw := c.PostForm("expected")
		if raw == "" {
			respondError(c, http.StatusBadRequest, "missing expected values",
				apperrors.NewValidationError("form field expected is required", nil))
			return
		}
		var expected map[string]string
		if err := json.Unmarshal([]byte(raw), &expected); err != nil {
			respondError(c, http.StatusBadRequest, "malformed expected values", err)
			return
		}

		resp, err := svc.Calibrate(ctx, payload, expected)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "calibration failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// readUpload pulls the capture out of the multipart form field "file". On
// failure it writes the error response itself and reports false.
func readUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "missing file upload",
			apperrors.NewValidationError("multipart field file is required", err))
		return nil, false
	}

	payload, err := readAll(fileHeader)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable file upload", err)
		return nil, false
	}
	return payload, true
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func countFilled(fields map[string]*string) int {
	n := 0
	for _, v := range fields {
		if v != nil {
			n++
		}
	}
	return n
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
