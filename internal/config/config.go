package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the AQI forecasting service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8982"`

	// Model artifact storage
	ModelDir    string `env:"MODEL_DIR,default=./models"`
	StorageMode string `env:"STORAGE_MODE,default=local"` // local or gcs
	GCSBucket   string `env:"GCS_BUCKET"`

	// Forecasting defaults
	ForecastHorizonHours int     `env:"FORECAST_HORIZON_HOURS,default=24"`
	HistoryHours         int     `env:"HISTORY_HOURS,default=72"`
	TestSize             float64 `env:"TEST_SIZE,default=0.2"`

	// Data source URLs (Open-Meteo requires no API key)
	WeatherAPIURL    string `env:"WEATHER_API_URL,default=https://api.open-meteo.com/v1/forecast"`
	AirQualityAPIURL string `env:"AIR_QUALITY_API_URL,default=https://air-quality-api.open-meteo.com/v1/air-quality"`
	DefaultLocation  string `env:"DEFAULT_LOCATION,default=New York"`

	// Optional LLM narrative for reports
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4.1"`

	// Local report output and synthetic data fallback
	LocalReportsDir string `env:"LOCAL_REPORTS_DIR,default=./reports"`
	MockupMode      bool   `env:"MOCKUP_MODE,default=false"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
