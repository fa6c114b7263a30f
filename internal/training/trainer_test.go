package training

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
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

func smallParams() Params {
	p := DefaultParams()
	p.NEstimators = 25
	p.MaxDepth = 3
	return p
}

func TestPrepareDataShiftsTarget(t *testing.T) {
	trainer := NewTrainer(dataset.DefaultConfig(), smallParams())

	// 720 hourly records, 24h horizon: 24 lag warm-up rows and the final
	// 24 rows without a future target drop out.
	table, y, err := trainer.PrepareData(hourlyRecords(720), models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PrepareData failed: %v", err)
	}

	if table.Len() != 720-24-24 {
		t.Errorf("usable rows = %d, want %d", table.Len(), 720-24-24)
	}
	if len(y) != table.Len() {
		t.Errorf("target length %d does not match table length %d", len(y), table.Len())
	}
	for i, v := range y {
		if math.IsNaN(v) {
			t.Fatalf("target row %d is undefined", i)
		}
	}

	// The raw target column stays a feature; the shifted label must not
	if table.ColumnIndex(models.FieldAQI) < 0 {
		t.Error("raw aqi column missing from features")
	}
	if table.ColumnIndex("target_aqi") >= 0 {
		t.Error("shifted label leaked into the feature matrix")
	}
}

func TestPrepareDataInsufficient(t *testing.T) {
	trainer := NewTrainer(dataset.DefaultConfig(), smallParams())

	_, _, err := trainer.PrepareData(hourlyRecords(60), models.FieldAQI, 24)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainHoldsOutChronologicalTail(t *testing.T) {
	trainer := NewTrainer(dataset.DefaultConfig(), smallParams())
	table, y, err := trainer.PrepareData(hourlyRecords(500), models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PrepareData failed: %v", err)
	}

	metrics, err := trainer.Train(table, y, TrainOptions{TestSize: 0.2, Normalize: true})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if !trainer.Model().Fitted() {
		t.Fatal("trainer holds no fitted model")
	}
	if metrics.NSamples != table.Len() {
		t.Errorf("metrics samples = %d, want %d", metrics.NSamples, table.Len())
	}
	if metrics.NFeatures != len(table.Names) {
		t.Errorf("metrics features = %d, want %d", metrics.NFeatures, len(table.Names))
	}
	if metrics.HorizonHours != 24 {
		t.Errorf("metrics horizon = %d, want 24", metrics.HorizonHours)
	}
	if metrics.Test.RMSE <= 0 {
		t.Errorf("test RMSE = %v, want positive", metrics.Test.RMSE)
	}
	if metrics.Category.Samples == 0 {
		t.Error("category metrics computed over zero samples")
	}

	// Normalized run must leave fitted scaler parameters behind for the
	// predictor to reuse.
	if s := trainer.Engineer().Scaler(); s == nil || !s.Fitted() {
		t.Error("normalized training run left no fitted scaler")
	}
}

func TestTrainImportanceRanking(t *testing.T) {
	trainer := NewTrainer(dataset.DefaultConfig(), smallParams())
	table, y, err := trainer.PrepareData(hourlyRecords(400), models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PrepareData failed: %v", err)
	}
	if _, err := trainer.Train(table, y, TrainOptions{}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	ranked := trainer.Importance()
	if len(ranked) != len(table.Names) {
		t.Fatalf("ranking has %d entries for %d features", len(ranked), len(table.Names))
	}
	sum := 0.0
	for i, fi := range ranked {
		if i > 0 && ranked[i-1].Importance < fi.Importance {
			t.Errorf("ranking not descending at %d", i)
		}
		sum += fi.Importance
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", sum)
	}
}

func TestCrossValidate(t *testing.T) {
	trainer := NewTrainer(dataset.DefaultConfig(), smallParams())
	table, y, err := trainer.PrepareData(hourlyRecords(400), models.FieldAQI, 24)
	if err != nil {
		t.Fatalf("PrepareData failed: %v", err)
	}

	scores, err := trainer.CrossValidate(table, y, 3)
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}
	if len(scores.Folds) != 3 {
		t.Fatalf("expected 3 folds, got %d", len(scores.Folds))
	}
	if scores.RMSEMean <= 0 {
		t.Errorf("mean RMSE = %v, want positive", scores.RMSEMean)
	}
	if scores.RMSEStd < 0 {
		t.Errorf("RMSE std = %v, want non-negative", scores.RMSEStd)
	}
}
