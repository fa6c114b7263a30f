package config

import (
	"context"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Port != "8982" {
		t.Errorf("expected default port 8982, got %s", cfg.Port)
	}
	if cfg.StorageMode != "local" {
		t.Errorf("expected default storage mode local, got %s", cfg.StorageMode)
	}
	if cfg.ForecastHorizonHours != 24 {
		t.Errorf("expected default horizon 24, got %d", cfg.ForecastHorizonHours)
	}
	if cfg.TestSize != 0.2 {
		t.Errorf("expected default test size 0.2, got %f", cfg.TestSize)
	}
	if cfg.AirQualityAPIURL == "" {
		t.Error("expected a default air quality API URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_MODE", "gcs")
	t.Setenv("GCS_BUCKET", "aqi-models")
	t.Setenv("FORECAST_HORIZON_HOURS", "48")
	t.Setenv("MOCKUP_MODE", "true")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.StorageMode != "gcs" || cfg.GCSBucket != "aqi-models" {
		t.Errorf("expected gcs storage with bucket aqi-models, got %s/%s", cfg.StorageMode, cfg.GCSBucket)
	}
	if cfg.ForecastHorizonHours != 48 {
		t.Errorf("expected horizon 48, got %d", cfg.ForecastHorizonHours)
	}
	if !cfg.MockupMode {
		t.Error("expected mockup mode enabled")
	}
}
