package training

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayushsingh08-ds/Zephra/internal/models"
)

// RegressionMetrics summarizes prediction error on one data split
type RegressionMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// CategoryMetrics scores predictions after mapping both truth and
// prediction to the six AQI severity bands.
type CategoryMetrics struct {
	Accuracy  float64 `json:"category_accuracy"`
	WithinOne float64 `json:"within_one_category_accuracy"`
	Samples   int     `json:"total_samples"`
}

// Metrics is the full evaluation record persisted with a trained model
type Metrics struct {
	Train        RegressionMetrics `json:"train"`
	Test         RegressionMetrics `json:"test"`
	Category     CategoryMetrics   `json:"category"`
	TrainingDate time.Time         `json:"training_date"`
	NFeatures    int               `json:"n_features"`
	NSamples     int               `json:"n_samples"`
	HorizonHours int               `json:"horizon_hours"`
}

// RMSE is the root-mean-squared prediction error
func RMSE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(yTrue)))
}

// MAE is the mean absolute prediction error
func MAE(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yTrue {
		sum += math.Abs(yTrue[i] - yPred[i])
	}
	return sum / float64(len(yTrue))
}

// R2 is the coefficient of determination
func R2(yTrue, yPred []float64) float64 {
	return stat.RSquaredFrom(yPred, yTrue, nil)
}

// Evaluate computes all regression metrics for one split
func Evaluate(yTrue, yPred []float64) RegressionMetrics {
	return RegressionMetrics{
		RMSE: RMSE(yTrue, yPred),
		MAE:  MAE(yTrue, yPred),
		R2:   R2(yTrue, yPred),
	}
}

// CategoryAccuracy maps values to AQI bands and reports exact-band and
// within-one-band accuracy. Being off by one band is a materially
// different failure than being off by several.
func CategoryAccuracy(yTrue, yPred []float64) CategoryMetrics {
	total := len(yTrue)
	if total == 0 {
		return CategoryMetrics{}
	}

	exact, withinOne := 0, 0
	for i := range yTrue {
		t := models.CategoryLevel(yTrue[i])
		p := models.CategoryLevel(yPred[i])
		if t == p {
			exact++
		}
		if diff := t - p; diff >= -1 && diff <= 1 {
			withinOne++
		}
	}

	return CategoryMetrics{
		Accuracy:  float64(exact) / float64(total),
		WithinOne: float64(withinOne) / float64(total),
		Samples:   total,
	}
}
