package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ExtractionTimeout  time.Duration
	MaxRequestBodySize int64

	// Recognition engine settings.
	TesseractLang string
	OCRPoolSize   int

	// Potability classifier; empty URL disables the /predict route's
	// downstream call.
	ClassifierURL     string
	ClassifierTimeout time.Duration

	// Capture archiving; archiving is off unless all three are set.
	AzureAccount   string
	AzureKey       string
	AzureContainer string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// ArchiveEnabled reports whether capture archiving is fully configured.
func (c *Config) ArchiveEnabled() bool {
	return c.AzureAccount != "" && c.AzureKey != "" && c.AzureContainer != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ExtractionTimeout:  parseDurationOrDefault("EXTRACTION_TIMEOUT", 60*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		TesseractLang:      getEnvOrDefault("TESSERACT_LANG", "eng"),
		OCRPoolSize:        int(parseIntOrDefault("OCR_POOL_SIZE", 2)),
		ClassifierURL:      os.Getenv("CLASSIFIER_URL"),
		ClassifierTimeout:  parseDurationOrDefault("CLASSIFIER_TIMEOUT", 10*time.Second),
		AzureAccount:       os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:           os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:     os.Getenv("AZURE_STORAGE_CONTAINER"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.OCRPoolSize < 1 {
		return nil, fmt.Errorf("OCR_POOL_SIZE must be >= 1 (got %d)", cfg.OCRPoolSize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ExtractionTimeout <= 0 || cfg.ClassifierTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, extraction=%s, classifier=%s)",
			cfg.RequestTimeout, cfg.ExtractionTimeout, cfg.ClassifierTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
