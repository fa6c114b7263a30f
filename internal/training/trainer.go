package training

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// minTrainingRows is the fewest post-shift rows a training run will accept
const minTrainingRows = 48

// FeatureImportance is one entry of the descending importance ranking
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TrainOptions control a single training run
type TrainOptions struct {
	// TestSize is the chronological tail fraction held out for testing
	TestSize float64

	// Normalize z-scores features, fitting on the training split only
	Normalize bool

	// Params overrides the trainer's hyperparameters when non-nil
	Params *Params
}

// CVScores reports time-series cross-validation results
type CVScores struct {
	Folds    []RegressionMetrics `json:"folds"`
	RMSEMean float64             `json:"rmse_mean"`
	RMSEStd  float64             `json:"rmse_std"`
	MAEMean  float64             `json:"mae_mean"`
	MAEStd   float64             `json:"mae_std"`
	R2Mean   float64             `json:"r2_mean"`
	R2Std    float64             `json:"r2_std"`
}

// Trainer produces and evaluates a boosted-tree regressor for a fixed
// forecast horizon. Each run consumes the full historical window supplied
// to it; there is no incremental retraining.
type Trainer struct {
	engineer *dataset.Engineer
	params   Params
	log      *logger.Logger

	model      *Model
	metrics    *Metrics
	importance []FeatureImportance
	horizon    int
}

// NewTrainer creates a trainer with the given feature and model settings
func NewTrainer(featureCfg dataset.Config, params Params) *Trainer {
	return &Trainer{
		engineer: dataset.NewEngineer(featureCfg),
		params:   params,
		log:      logger.GetGlobalLogger().WithComponent("trainer"),
	}
}

// Engineer returns the trainer's feature engineer, which owns the fitted
// normalization parameters after a normalized training run.
func (t *Trainer) Engineer() *dataset.Engineer {
	return t.engineer
}

// Model returns the fitted model, or nil before training
func (t *Trainer) Model() *Model {
	return t.model
}

// Metrics returns the evaluation record of the last run, or nil
func (t *Trainer) Metrics() *Metrics {
	return t.metrics
}

// Importance returns the descending feature-importance ranking
func (t *Trainer) Importance() []FeatureImportance {
	return t.importance
}

// PrepareData engineers features and builds the supervised label: the
// target column sampled horizon rows in the future. Rows without a defined
// shifted target (the final horizon rows) are excluded along with rows
// carrying undefined features from lag warm-up.
func (t *Trainer) PrepareData(records []models.Measurement, targetCol string, horizon int) (*dataset.Table, []float64, error) {
	if horizon < 1 {
		return nil, nil, fmt.Errorf("forecast horizon must be positive, got %d", horizon)
	}

	frame := t.engineer.EngineerFeatures(records, targetCol)

	target, ok := frame.Column(targetCol)
	if !ok {
		return nil, nil, fmt.Errorf("target column %q absent from input", targetCol)
	}

	shifted := make([]float64, len(target))
	for i := range shifted {
		if i+horizon < len(target) {
			shifted[i] = target[i+horizon]
		} else {
			shifted[i] = math.NaN()
		}
	}
	shiftedCol := "target_" + targetCol
	frame.SetColumn(shiftedCol, shifted)

	table, y := t.engineer.PrepareForTraining(frame, shiftedCol, true)
	if table.Len() < minTrainingRows {
		return nil, nil, fmt.Errorf("%w: %d usable rows after %dh horizon shift, need at least %d",
			models.ErrInsufficientData, table.Len(), horizon, minTrainingRows)
	}

	t.horizon = horizon
	t.log.Info("prepared training data", map[string]interface{}{
		"rows":     table.Len(),
		"features": len(table.Names),
		"horizon":  horizon,
	})
	return table, y, nil
}

// CrossValidate evaluates generalization with expanding-window folds and
// reports per-fold and averaged error metrics.
func (t *Trainer) CrossValidate(table *dataset.Table, y []float64, nSplits int) (*CVScores, error) {
	folds, err := TimeSeriesFolds(table.Len(), nSplits)
	if err != nil {
		return nil, err
	}

	scores := &CVScores{}
	rmse := make([]float64, 0, len(folds))
	mae := make([]float64, 0, len(folds))
	r2 := make([]float64, 0, len(folds))

	for i, fold := range folds {
		model := NewModel(t.params)
		if err := model.Fit(table.Rows[:fold.TrainEnd], y[:fold.TrainEnd], table.Names); err != nil {
			return nil, fmt.Errorf("fold %d fit failed: %w", i+1, err)
		}

		pred := model.PredictBatch(table.Rows[fold.ValStart:fold.ValEnd])
		m := Evaluate(y[fold.ValStart:fold.ValEnd], pred)
		scores.Folds = append(scores.Folds, m)
		rmse = append(rmse, m.RMSE)
		mae = append(mae, m.MAE)
		r2 = append(r2, m.R2)

		t.log.Infof("fold %d/%d: RMSE=%.2f MAE=%.2f R2=%.3f", i+1, len(folds), m.RMSE, m.MAE, m.R2)
	}

	scores.RMSEMean, scores.RMSEStd = stat.Mean(rmse, nil), stat.StdDev(rmse, nil)
	scores.MAEMean, scores.MAEStd = stat.Mean(mae, nil), stat.StdDev(mae, nil)
	scores.R2Mean, scores.R2Std = stat.Mean(r2, nil), stat.StdDev(r2, nil)
	return scores, nil
}

// Train fits the final model. The split is by position, never random: the
// chronologically latest TestSize fraction is held out for evaluation.
func (t *Trainer) Train(table *dataset.Table, y []float64, opts TrainOptions) (*Metrics, error) {
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		opts.TestSize = 0.2
	}
	params := t.params
	if opts.Params != nil {
		params = *opts.Params
	}

	n := table.Len()
	splitIdx := int(float64(n) * (1 - opts.TestSize))
	if splitIdx < 1 || splitIdx >= n {
		return nil, fmt.Errorf("%w: cannot hold out %.0f%% of %d rows", models.ErrInsufficientData, opts.TestSize*100, n)
	}

	trainTable := &dataset.Table{Names: table.Names, Rows: table.Rows[:splitIdx], Timestamps: table.Timestamps[:splitIdx]}
	testTable := &dataset.Table{Names: table.Names, Rows: table.Rows[splitIdx:], Timestamps: table.Timestamps[splitIdx:]}
	yTrain, yTest := y[:splitIdx], y[splitIdx:]

	t.log.Infof("training set: %d samples, test set: %d samples", trainTable.Len(), testTable.Len())

	if opts.Normalize {
		if err := t.engineer.Normalize(trainTable, true); err != nil {
			return nil, fmt.Errorf("normalize training split: %w", err)
		}
		if err := t.engineer.Normalize(testTable, false); err != nil {
			return nil, fmt.Errorf("normalize test split: %w", err)
		}
	}

	model := NewModel(params)
	if err := model.Fit(trainTable.Rows, yTrain, table.Names); err != nil {
		return nil, fmt.Errorf("model fit failed: %w", err)
	}
	t.model = model

	trainPred := model.PredictBatch(trainTable.Rows)
	testPred := model.PredictBatch(testTable.Rows)

	t.metrics = &Metrics{
		Train:        Evaluate(yTrain, trainPred),
		Test:         Evaluate(yTest, testPred),
		Category:     CategoryAccuracy(yTest, testPred),
		TrainingDate: time.Now().UTC(),
		NFeatures:    len(table.Names),
		NSamples:     n,
		HorizonHours: t.horizon,
	}

	t.importance = rankImportance(table.Names, model.FeatureImportances())

	t.log.Info("training complete", map[string]interface{}{
		"train_rmse":        t.metrics.Train.RMSE,
		"test_rmse":         t.metrics.Test.RMSE,
		"test_r2":           t.metrics.Test.R2,
		"category_accuracy": t.metrics.Category.Accuracy,
	})
	return t.metrics, nil
}

// FeatureImportances returns the normalized per-feature importances in
// feature order.
func (m *Model) FeatureImportances() []float64 {
	out := make([]float64, len(m.Importance))
	copy(out, m.Importance)
	return out
}

// rankImportance pairs names with importances and sorts descending
func rankImportance(names []string, importances []float64) []FeatureImportance {
	ranked := make([]FeatureImportance, 0, len(names))
	for i, name := range names {
		if i < len(importances) {
			ranked = append(ranked, FeatureImportance{Feature: name, Importance: importances[i]})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}
