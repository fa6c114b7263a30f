package predict

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/artifacts"
	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/storage"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

func hourlyRecords(n int) []models.Measurement {
	end := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)
	records := make([]models.Measurement, n)
	for i := 0; i < n; i++ {
		ts := end.Add(-time.Duration(n-1-i) * time.Hour)
		phase := 2 * math.Pi * float64(ts.Hour()) / 24
		aqi := 65 + 25*math.Sin(phase)
		records[i] = models.Measurement{
			Timestamp:     ts,
			AQI:           models.Float(aqi),
			PM25:          models.Float(aqi * 0.3),
			PM10:          models.Float(aqi * 0.5),
			NO2:           models.Float(20 + aqi*0.2),
			O3:            models.Float(40 + aqi*0.4),
			SO2:           models.Float(5 + aqi*0.1),
			CO:            models.Float(300 + aqi*2),
			Temperature:   models.Float(18 + 6*math.Sin(phase)),
			Humidity:      models.Float(55 + 10*math.Cos(phase)),
			WindSpeed:     models.Float(3 + 2*math.Sin(phase/2)),
			WindDirection: models.Float(math.Mod(float64(i)*15, 360)),
			Pressure:      models.Float(1013 + math.Sin(phase)),
			Visibility:    models.Float(15),
			CloudCover:    models.Float(40),
			AOD:           models.Float(0.2),
		}
	}
	return records
}

// trainedPredictor trains a small model on synthetic data and returns a
// predictor with the resulting bundle installed.
func trainedPredictor(t *testing.T) *Predictor {
	t.Helper()

	params := training.DefaultParams()
	params.NEstimators = 20
	params.MaxDepth = 3

	trainer := training.NewTrainer(dataset.DefaultConfig(), params)
	table, y, err := trainer.PrepareData(hourlyRecords(400), models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PrepareData failed: %v", err)
	}
	if _, err := trainer.Train(table, y, training.TrainOptions{Normalize: true}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	client, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	p := NewPredictor(artifacts.NewStore(client), dataset.DefaultConfig())
	p.SetBundle(artifacts.FromTrainer(trainer))
	return p
}

func TestPredictSingle(t *testing.T) {
	p := trainedPredictor(t)
	records := hourlyRecords(72)

	forecast, err := p.PredictSingle(records, models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PredictSingle failed: %v", err)
	}

	if forecast.PredictedAQI < 0 {
		t.Errorf("predicted AQI is negative: %f", forecast.PredictedAQI)
	}
	if forecast.Category == "" || forecast.HealthMessage == "" {
		t.Error("forecast missing category annotation")
	}

	last := records[len(records)-1].Timestamp
	if !forecast.ForecastTimestamp.Equal(last.Add(24 * time.Hour)) {
		t.Errorf("forecast timestamp %v is not 24h past last observation %v", forecast.ForecastTimestamp, last)
	}

	ci := forecast.ConfidenceInterval
	if ci == nil {
		t.Fatal("forecast missing confidence interval despite metrics in bundle")
	}
	if ci.Lower > forecast.PredictedAQI || ci.Upper < forecast.PredictedAQI {
		t.Errorf("interval [%f, %f] does not bracket prediction %f", ci.Lower, ci.Upper, forecast.PredictedAQI)
	}
	if ci.Lower < 0 {
		t.Errorf("interval lower bound is negative: %f", ci.Lower)
	}
}

func TestPredictSingleNoData(t *testing.T) {
	p := trainedPredictor(t)

	_, err := p.PredictSingle(nil, models.FieldAQI, 24)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestPredictSingleUnloaded(t *testing.T) {
	client, err := storage.NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	p := NewPredictor(artifacts.NewStore(client), dataset.DefaultConfig())
	_, err = p.PredictSingle(hourlyRecords(72), models.FieldAQI, 24)
	if !errors.Is(err, artifacts.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestPredictSequence(t *testing.T) {
	p := trainedPredictor(t)
	records := hourlyRecords(72)

	seq, err := p.PredictSequence(records, models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PredictSequence failed: %v", err)
	}
	if len(seq) != 24 {
		t.Fatalf("expected 24 hourly forecasts, got %d", len(seq))
	}

	last := records[len(records)-1].Timestamp
	for i, h := range seq {
		if h.Hour != i+1 {
			t.Errorf("entry %d has hour %d", i, h.Hour)
		}
		want := last.Add(time.Duration(i+1) * time.Hour)
		if !h.Timestamp.Equal(want) {
			t.Errorf("entry %d timestamp %v, want %v", i, h.Timestamp, want)
		}
		if h.PredictedAQI != seq[0].PredictedAQI {
			t.Errorf("entry %d level differs from first: %f vs %f", i, h.PredictedAQI, seq[0].PredictedAQI)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := trainedPredictor(t)
	ctx := context.Background()

	if err := p.store.Save(ctx, "aqi_model", p.Bundle()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fresh := NewPredictor(p.store, dataset.DefaultConfig())
	if err := fresh.Load(ctx, "aqi_model"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	records := hourlyRecords(72)
	a, err := p.PredictSingle(records, models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("in-memory predict failed: %v", err)
	}
	b, err := fresh.PredictSingle(records, models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("round-tripped predict failed: %v", err)
	}
	if a.PredictedAQI != b.PredictedAQI {
		t.Errorf("prediction changed across persistence: %f vs %f", a.PredictedAQI, b.PredictedAQI)
	}
}

func TestFeatureContributions(t *testing.T) {
	p := trainedPredictor(t)

	contributions, err := p.FeatureContributions(10)
	if err != nil {
		t.Fatalf("FeatureContributions failed: %v", err)
	}
	if len(contributions) != 10 {
		t.Fatalf("expected 10 contributions, got %d", len(contributions))
	}
	for i := 1; i < len(contributions); i++ {
		if contributions[i-1].Importance < contributions[i].Importance {
			t.Errorf("contributions not descending at %d", i)
		}
	}
}

func TestValidateInput(t *testing.T) {
	p := trainedPredictor(t)

	result := p.ValidateInput(hourlyRecords(72))
	if !result.Valid {
		t.Errorf("complete batch reported invalid: %s", result.Error)
	}
	if result.Completeness != 1 {
		t.Errorf("completeness = %f, want 1", result.Completeness)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning for 72 records: %s", result.Warning)
	}

	short := p.ValidateInput(hourlyRecords(12))
	if !short.Valid {
		t.Error("short batch should still validate")
	}
	if short.Warning == "" {
		t.Error("short batch should carry a history warning")
	}

	empty := p.ValidateInput(nil)
	if empty.Valid {
		t.Error("empty batch reported valid")
	}
	if empty.Error == "" {
		t.Error("empty batch should carry an error")
	}
}

func TestValidateInputRequiredFields(t *testing.T) {
	p := trainedPredictor(t)

	noAQI := hourlyRecords(4)
	noAQI[0].AQI = nil
	result := p.ValidateInput(noAQI)
	if result.Valid {
		t.Error("batch without aqi on the first record reported valid")
	}
	if !strings.Contains(result.Error, "aqi") {
		t.Errorf("error should name the missing field, got %q", result.Error)
	}

	noTimestamp := hourlyRecords(4)
	noTimestamp[0].Timestamp = time.Time{}
	result = p.ValidateInput(noTimestamp)
	if result.Valid {
		t.Error("batch without a timestamp on the first record reported valid")
	}
	if !strings.Contains(result.Error, "timestamp") {
		t.Errorf("error should name the missing field, got %q", result.Error)
	}
}

func TestValidateInputScoresFirstRecord(t *testing.T) {
	p := trainedPredictor(t)

	records := hourlyRecords(4)
	records[0].PM25 = nil
	records[0].Temperature = nil

	result := p.ValidateInput(records)
	if !result.Valid {
		t.Fatalf("sparse first record should still validate: %s", result.Error)
	}
	if len(result.MissingRecommended) != 2 {
		t.Errorf("expected 2 missing fields, got %v", result.MissingRecommended)
	}
	want := 1 - 2.0/float64(len(models.RecommendedFields))
	if math.Abs(result.Completeness-want) > 1e-9 {
		t.Errorf("completeness = %f, want %f", result.Completeness, want)
	}
	if !strings.Contains(result.Warning, "pm25") || !strings.Contains(result.Warning, "temperature") {
		t.Errorf("warning should name the missing recommended fields, got %q", result.Warning)
	}

	// Gaps in later records do not count; only the first record is scored
	gapLast := hourlyRecords(4)
	gapLast[3].PM25 = nil
	if got := p.ValidateInput(gapLast); len(got.MissingRecommended) != 0 || got.Completeness != 1 {
		t.Errorf("sparse later record should not affect the score, got %v (completeness %f)",
			got.MissingRecommended, got.Completeness)
	}
}
