package dataset

import (
	"fmt"
	"math"
	"time"
)

// Frame is a column-oriented feature table. Every column has one value per
// input record, in timestamp order. Missing cells are NaN.
type Frame struct {
	Timestamps []time.Time

	names []string
	cols  map[string][]float64
}

// NewFrame creates an empty frame over the given timestamps
func NewFrame(timestamps []time.Time) *Frame {
	return &Frame{
		Timestamps: timestamps,
		cols:       make(map[string][]float64),
	}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Timestamps)
}

// SetColumn adds or replaces a column. Values must have one entry per
// row; a mismatched length is a programming error and panics.
func (f *Frame) SetColumn(name string, values []float64) {
	if len(values) != f.Len() {
		panic(fmt.Sprintf("dataset: column %q has %d values for %d rows", name, len(values), f.Len()))
	}
	if _, exists := f.cols[name]; !exists {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
}

// Column returns the named column and whether it exists
func (f *Frame) Column(name string) ([]float64, bool) {
	vals, ok := f.cols[name]
	return vals, ok
}

// Has reports whether the named column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Names returns column names in insertion order. The order is deterministic
// for a given configuration, which keeps training-time and inference-time
// tables structurally identical.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Table is a row-major feature matrix extracted from a Frame, ready for
// model training or prediction.
type Table struct {
	Names      []string
	Rows       [][]float64
	Timestamps []time.Time
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named feature, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, n := range t.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// rowComplete reports whether every value in the row is defined
func rowComplete(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
