package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DOCDETECT_API_KEY", "TIKA_URL", "LANGUAGE_DETECTOR", "WORKER_COUNT", "JOB_TTL", "STORE_PATH"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" || cfg.LanguageDetector != "LINGUA" || cfg.StorePath != "docdetect.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.WorkerCount != 4 || cfg.JobTTL != time.Hour || !cfg.PDFFallbackPdftotext {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_SanitisesNonPositive(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("MAX_QUEUE_SIZE", "0")
	t.Setenv("JOB_TTL", "-1m")
	t.Setenv("MAX_UPLOAD_BYTES", "nope")
	cfg := Load()
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.JobTTL != time.Hour || cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected sanitised values, got %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TIKA_URL", "http://tika:9998")
	t.Setenv("LANGUAGE_DETECTOR", "TIKA")
	t.Setenv("LANGUAGE_PRELOAD", "true")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	cfg := Load()
	if cfg.TikaURL != "http://tika:9998" || cfg.LanguageDetector != "TIKA" || !cfg.LanguagePreload || cfg.PDFFallbackPdftotext {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{StorePath: "x.db"}).Validate(); err == nil {
		t.Error("expected error without API key")
	}
	if err := (Config{APIKey: "k"}).Validate(); err == nil {
		t.Error("expected error without store path")
	}
	if err := (Config{APIKey: "k", StorePath: "x.db"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
