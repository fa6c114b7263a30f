package models

import "time"

// ConfidenceInterval is a symmetric prediction band. The band is derived
// from the persisted test-set RMSE under a Gaussian residual assumption,
// not from per-point uncertainty.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"confidence_level"`
}

// Forecast is a single fixed-horizon AQI prediction
type Forecast struct {
	PredictedAQI       float64             `json:"predicted_aqi"`
	Category           string              `json:"category"`
	CategoryLevel      int                 `json:"category_level"`
	HealthMessage      string              `json:"health_message"`
	ForecastTimestamp  time.Time           `json:"forecast_timestamp"`
	PredictionMadeAt   time.Time           `json:"prediction_made_at"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval,omitempty"`
}

// HourlyForecast is one entry of a multi-hour forecast sequence
type HourlyForecast struct {
	Hour          int       `json:"hour"`
	Timestamp     time.Time `json:"timestamp"`
	PredictedAQI  float64   `json:"predicted_aqi"`
	Category      string    `json:"category"`
	CategoryLevel int       `json:"category_level"`
}

// FeatureContribution is one entry of the persisted importance ranking
type FeatureContribution struct {
	Feature           string  `json:"feature"`
	Importance        float64 `json:"importance"`
	ImportancePercent float64 `json:"importance_percent"`
}

// ValidationResult reports whether an input sequence is usable for
// prediction and how complete its first record is.
type ValidationResult struct {
	Valid              bool     `json:"valid"`
	Error              string   `json:"error,omitempty"`
	Records            int      `json:"n_records"`
	MissingRecommended []string `json:"missing_recommended,omitempty"`
	Completeness       float64  `json:"completeness"`
	Warning            string   `json:"warning,omitempty"`
}
