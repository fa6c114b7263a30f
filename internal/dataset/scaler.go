package dataset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted is returned when normalization is requested before any
// parameters have been fitted. This is a programming-contract violation,
// surfaced immediately instead of producing silently wrong numbers.
var ErrNotFitted = errors.New("scaler not fitted")

// scalerEps keeps constant columns from dividing by zero
const scalerEps = 1e-8

// Scaler holds per-feature z-score parameters fitted from a training split
type Scaler struct {
	Names []string  `json:"feature_names"`
	Mean  []float64 `json:"mean"`
	Std   []float64 `json:"std"`
}

// Fit computes mean and standard deviation per feature column. Undefined
// cells are excluded from the moments.
func (s *Scaler) Fit(t *Table) {
	d := len(t.Names)
	s.Names = make([]string, d)
	copy(s.Names, t.Names)
	s.Mean = make([]float64, d)
	s.Std = make([]float64, d)

	col := make([]float64, 0, t.Len())
	for j := 0; j < d; j++ {
		col = col[:0]
		for _, row := range t.Rows {
			if !math.IsNaN(row[j]) {
				col = append(col, row[j])
			}
		}
		if len(col) == 0 {
			continue
		}
		s.Mean[j] = stat.Mean(col, nil)
		if len(col) > 1 {
			s.Std[j] = stat.StdDev(col, nil)
		}
	}
}

// Fitted reports whether parameters are available
func (s *Scaler) Fitted() bool {
	return s != nil && len(s.Mean) > 0
}

// Transform z-scores the table in place
func (s *Scaler) Transform(t *Table) error {
	if !s.Fitted() {
		return ErrNotFitted
	}
	if len(t.Names) != len(s.Names) {
		return fmt.Errorf("feature count mismatch: table has %d, scaler fitted on %d", len(t.Names), len(s.Names))
	}
	for _, row := range t.Rows {
		s.TransformRow(row)
	}
	return nil
}

// TransformRow z-scores a single feature vector in place. The vector must
// be in the scaler's feature order.
func (s *Scaler) TransformRow(row []float64) {
	for j := range row {
		row[j] = (row[j] - s.Mean[j]) / (s.Std[j] + scalerEps)
	}
}

// InverseRow undoes TransformRow in place
func (s *Scaler) InverseRow(row []float64) {
	for j := range row {
		row[j] = row[j]*(s.Std[j]+scalerEps) + s.Mean[j]
	}
}
