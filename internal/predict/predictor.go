package predict

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/artifacts"
	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// recommendedHistoryHours is the history depth below which forecast
// quality degrades: the longest lag and rolling window both span 24 rows,
// so anything shorter leaves part of the feature vector undefined.
const recommendedHistoryHours = 48

// confidenceZ is the normal quantile for a 95% interval
const confidenceZ = 1.96

// Predictor serves forecasts from a persisted model bundle. It is safe
// for sequential use only; the server guards it with its own lock.
type Predictor struct {
	store    *artifacts.Store
	engineer *dataset.Engineer
	bundle   *artifacts.Bundle
	log      *logger.Logger
}

// NewPredictor creates a predictor over the given artifact store
func NewPredictor(store *artifacts.Store, featureCfg dataset.Config) *Predictor {
	return &Predictor{
		store:    store,
		engineer: dataset.NewEngineer(featureCfg),
		log:      logger.GetGlobalLogger().WithComponent("predictor"),
	}
}

// Loaded reports whether a model bundle is available
func (p *Predictor) Loaded() bool {
	return p.bundle != nil && p.bundle.Model != nil && p.bundle.Model.Fitted()
}

// Bundle returns the loaded artifact bundle, or nil
func (p *Predictor) Bundle() *artifacts.Bundle {
	return p.bundle
}

// Load reads the model bundle from dir. A missing model document fails
// hard with artifacts.ErrModelNotFound; missing companion documents
// degrade individual capabilities and are logged by the store.
func (p *Predictor) Load(ctx context.Context, dir string) error {
	bundle, err := p.store.Load(ctx, dir)
	if err != nil {
		return err
	}
	p.bundle = bundle
	if bundle.Scaler != nil {
		p.engineer.SetScaler(bundle.Scaler)
	}
	return nil
}

// SetBundle installs an in-memory bundle, e.g. straight from a training
// run, without a storage round trip.
func (p *Predictor) SetBundle(b *artifacts.Bundle) {
	p.bundle = b
	if b != nil && b.Scaler != nil {
		p.engineer.SetScaler(b.Scaler)
	}
}

// PredictSingle forecasts the AQI one horizon ahead of the most recent
// measurement. The feature vector is assembled by name in the exact order
// the model was trained with, from the latest row where every model
// feature is defined.
func (p *Predictor) PredictSingle(records []models.Measurement, targetCol string, horizon int) (*models.Forecast, error) {
	if !p.Loaded() {
		return nil, fmt.Errorf("%w: no bundle loaded", artifacts.ErrModelNotFound)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no measurements supplied", models.ErrInsufficientData)
	}
	if len(records) < recommendedHistoryHours {
		p.log.Warnf("only %d measurements supplied, %d recommended for full feature coverage",
			len(records), recommendedHistoryHours)
	}

	vector, ts, err := p.featureVector(records, targetCol)
	if err != nil {
		return nil, err
	}

	raw := p.bundle.Model.Predict(vector)
	aqi := math.Max(0, raw)
	level := models.CategoryLevel(aqi)
	cat := models.CategoryFor(aqi)

	forecast := &models.Forecast{
		PredictedAQI:      round1(aqi),
		Category:          cat.Name,
		CategoryLevel:     level,
		HealthMessage:     cat.Message,
		ForecastTimestamp: ts.Add(time.Duration(horizon) * time.Hour),
		PredictionMadeAt:  time.Now().UTC(),
	}

	if p.bundle.Metrics != nil && p.bundle.Metrics.Test.RMSE > 0 {
		margin := confidenceZ * p.bundle.Metrics.Test.RMSE
		forecast.ConfidenceInterval = &models.ConfidenceInterval{
			Lower: round1(math.Max(0, aqi-margin)),
			Upper: round1(aqi + margin),
			Level: 0.95,
		}
	}

	return forecast, nil
}

// PredictSequence forecasts each of the next hours individually. The model
// predicts a fixed horizon ahead of the last observation, so every hour of
// the sequence carries the same predicted level; the sequence exists to
// give each hour its own timestamp and category annotation.
func (p *Predictor) PredictSequence(records []models.Measurement, targetCol string, hours int) ([]models.HourlyForecast, error) {
	if hours < 1 {
		return nil, fmt.Errorf("sequence length must be positive, got %d", hours)
	}

	base, err := p.PredictSingle(records, targetCol, 1)
	if err != nil {
		return nil, err
	}

	lastTs := base.ForecastTimestamp.Add(-1 * time.Hour)
	out := make([]models.HourlyForecast, hours)
	for i := range out {
		ts := lastTs.Add(time.Duration(i+1) * time.Hour)
		out[i] = models.HourlyForecast{
			Hour:          i + 1,
			Timestamp:     ts,
			PredictedAQI:  base.PredictedAQI,
			Category:      base.Category,
			CategoryLevel: base.CategoryLevel,
		}
	}
	return out, nil
}

// FeatureContributions returns the top contributing features of the loaded
// model with importances expressed as fractions and percentages.
func (p *Predictor) FeatureContributions(topN int) ([]models.FeatureContribution, error) {
	if !p.Loaded() {
		return nil, fmt.Errorf("%w: no bundle loaded", artifacts.ErrModelNotFound)
	}
	if p.bundle.Importance == nil {
		return nil, fmt.Errorf("loaded bundle carries no feature importance ranking")
	}

	contributions := make([]models.FeatureContribution, 0, len(p.bundle.Importance))
	for _, fi := range p.bundle.Importance {
		contributions = append(contributions, models.FeatureContribution{
			Feature:           fi.Feature,
			Importance:        fi.Importance,
			ImportancePercent: round1(fi.Importance * 100),
		})
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Importance > contributions[j].Importance
	})
	if topN > 0 && topN < len(contributions) {
		contributions = contributions[:topN]
	}
	return contributions, nil
}

// ValidateInput checks a measurement batch for forecast readiness. Field
// presence is judged on the first record only; a missing required field
// there makes the whole batch invalid.
func (p *Predictor) ValidateInput(records []models.Measurement) *models.ValidationResult {
	result := &models.ValidationResult{Records: len(records)}
	if len(records) == 0 {
		result.Error = "no measurements supplied"
		return result
	}

	first := records[0]
	var missingRequired []string
	if first.Timestamp.IsZero() {
		missingRequired = append(missingRequired, "timestamp")
	}
	if first.AQI == nil {
		missingRequired = append(missingRequired, models.FieldAQI)
	}
	if len(missingRequired) > 0 {
		result.Error = fmt.Sprintf("missing required fields: %s", strings.Join(missingRequired, ", "))
		return result
	}

	present := 0
	for _, field := range models.RecommendedFields {
		if _, ok := first.Value(field); ok {
			present++
		} else {
			result.MissingRecommended = append(result.MissingRecommended, field)
		}
	}
	result.Completeness = float64(present) / float64(len(models.RecommendedFields))
	result.Valid = true

	var warnings []string
	if len(result.MissingRecommended) > 0 {
		warnings = append(warnings, fmt.Sprintf("missing recommended fields: %s",
			strings.Join(result.MissingRecommended, ", ")))
	}
	if len(records) < recommendedHistoryHours {
		warnings = append(warnings, fmt.Sprintf("%d measurements supplied, %d recommended for full feature coverage",
			len(records), recommendedHistoryHours))
	}
	result.Warning = strings.Join(warnings, "; ")
	return result
}

// featureVector engineers features and assembles the model's input in
// trained feature order from the latest usable row.
func (p *Predictor) featureVector(records []models.Measurement, targetCol string) ([]float64, time.Time, error) {
	frame := p.engineer.EngineerFeatures(records, targetCol)

	names := p.bundle.Model.FeatureNames
	cols := make([][]float64, len(names))
	for i, name := range names {
		col, ok := frame.Column(name)
		if !ok {
			return nil, time.Time{}, fmt.Errorf("engineered features missing model input %q", name)
		}
		cols[i] = col
	}

	for row := frame.Len() - 1; row >= 0; row-- {
		vector := make([]float64, len(cols))
		usable := true
		for i, col := range cols {
			v := col[row]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				usable = false
				break
			}
			vector[i] = v
		}
		if !usable {
			continue
		}
		if s := p.engineer.Scaler(); s != nil && s.Fitted() {
			s.TransformRow(vector)
		}
		return vector, frame.Timestamps[row], nil
	}

	return nil, time.Time{}, fmt.Errorf("%w: no row with all %d model features defined",
		models.ErrInsufficientData, len(names))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
