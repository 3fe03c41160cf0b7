package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ServerAddress() != "0.0.0.0:8080" {
		t.Errorf("address %q", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.ExtractionTimeout != 60*time.Second {
		t.Errorf("timeouts %s / %s", cfg.RequestTimeout, cfg.ExtractionTimeout)
	}
	if cfg.TesseractLang != "eng" || cfg.OCRPoolSize != 2 {
		t.Errorf("engine settings %q / %d", cfg.TesseractLang, cfg.OCRPoolSize)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archiving must be off without credentials")
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("EXTRACTION_TIMEOUT", "90s")
	t.Setenv("OCR_POOL_SIZE", "4")
	t.Setenv("CLASSIFIER_URL", "http://classifier:5000")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.ExtractionTimeout != 90*time.Second || cfg.OCRPoolSize != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.ClassifierURL != "http://classifier:5000" {
		t.Errorf("classifier url %q", cfg.ClassifierURL)
	}
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "not-a-port"},
		{"PORT", "70000"},
		{"MAX_REQUEST_BODY_SIZE", "-1"},
		{"OCR_POOL_SIZE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestArchiveEnabledNeedsAllThree(t *testing.T) {
	t.Setenv("AZURE_STORAGE_ACCOUNT", "acct")
	t.Setenv("AZURE_STORAGE_KEY", "key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ArchiveEnabled() {
		t.Fatal("two of three settings must not enable archiving")
	}

	t.Setenv("AZURE_STORAGE_CONTAINER", "captures")
	cfg, err = LoadFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.ArchiveEnabled() {
		t.Fatal("all three settings should enable archiving")
	}
}
