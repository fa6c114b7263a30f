package training

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Params are gradient boosting hyperparameters. Values are fixed defaults
// overridable by the caller; there is no automatic search.
type Params struct {
	NEstimators     int     `json:"n_estimators"`
	LearningRate    float64 `json:"learning_rate"`
	MaxDepth        int     `json:"max_depth"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`
	Subsample       float64 `json:"subsample"`
	MaxFeatures     string  `json:"max_features"` // "sqrt" or "all"
	Seed            int64   `json:"random_state"`
}

// DefaultParams returns the documented defaults
func DefaultParams() Params {
	return Params{
		NEstimators:     200,
		LearningRate:    0.1,
		MaxDepth:        5,
		MinSamplesSplit: 20,
		MinSamplesLeaf:  10,
		Subsample:       0.8,
		MaxFeatures:     "sqrt",
		Seed:            42,
	}
}

// Model is a gradient-boosted ensemble of regression trees fit with
// squared loss: each tree corrects the residual of the ensemble so far.
type Model struct {
	Params         Params    `json:"params"`
	FeatureNames   []string  `json:"feature_names"`
	BasePrediction float64   `json:"base_prediction"`
	Trees          []Tree    `json:"trees"`
	Importance     []float64 `json:"feature_importance"`
}

// NewModel creates an unfitted model with the given parameters
func NewModel(params Params) *Model {
	return &Model{Params: params}
}

// Fitted reports whether the ensemble has been trained
func (m *Model) Fitted() bool {
	return len(m.Trees) > 0
}

// Fit trains the ensemble on a row-major feature matrix. Training is
// deterministic for a fixed seed.
func (m *Model) Fit(x [][]float64, y []float64, featureNames []string) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("invalid training set: %d rows, %d targets", len(x), len(y))
	}
	d := len(x[0])
	if d == 0 {
		return fmt.Errorf("training set has no features")
	}

	m.FeatureNames = append([]string(nil), featureNames...)
	m.BasePrediction = stat.Mean(y, nil)
	m.Trees = make([]Tree, 0, m.Params.NEstimators)

	maxFeatures := d
	if m.Params.MaxFeatures == "sqrt" {
		maxFeatures = int(math.Sqrt(float64(d)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rng := rand.New(rand.NewSource(m.Params.Seed))
	builder := &treeBuilder{
		x:           x,
		maxDepth:    m.Params.MaxDepth,
		minSplit:    m.Params.MinSamplesSplit,
		minLeaf:     m.Params.MinSamplesLeaf,
		maxFeatures: maxFeatures,
		rng:         rng,
		importance:  make([]float64, d),
	}

	n := len(x)
	sampleSize := n
	if m.Params.Subsample > 0 && m.Params.Subsample < 1 {
		sampleSize = int(float64(n) * m.Params.Subsample)
		if sampleSize < 1 {
			sampleSize = 1
		}
	}

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.BasePrediction
	}
	residual := make([]float64, n)

	for t := 0; t < m.Params.NEstimators; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		builder.y = residual

		indices := rng.Perm(n)[:sampleSize]
		tree := builder.fit(indices)
		m.Trees = append(m.Trees, tree)

		for i := range pred {
			pred[i] += m.Params.LearningRate * tree.Predict(x[i])
		}
	}

	m.Importance = normalizeImportance(builder.importance)
	return nil
}

// Predict returns the ensemble prediction for one feature vector
func (m *Model) Predict(x []float64) float64 {
	out := m.BasePrediction
	for i := range m.Trees {
		out += m.Params.LearningRate * m.Trees[i].Predict(x)
	}
	return out
}

// PredictBatch predicts every row of a feature matrix
func (m *Model) PredictBatch(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = m.Predict(row)
	}
	return out
}

// normalizeImportance scales accumulated impurity decreases to sum to one
func normalizeImportance(raw []float64) []float64 {
	out := make([]float64, len(raw))
	total := 0.0
	for _, v := range raw {
		total += v
	}
	if total <= 0 {
		return out
	}
	for i, v := range raw {
		out[i] = v / total
	}
	return out
}
