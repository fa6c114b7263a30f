package training

import "fmt"

// Fold is one expanding-window split: train on [0, TrainEnd), validate on
// [ValStart, ValEnd). Rows are in chronological order, so every
// validation block is strictly later than its training block.
type Fold struct {
	TrainEnd int
	ValStart int
	ValEnd   int
}

// TimeSeriesFolds produces nSplits order-preserving folds over n rows.
// Validation blocks are equal-sized tails; training windows expand. Rows
// are never shuffled, since shuffling would leak future information into
// training.
func TimeSeriesFolds(n, nSplits int) ([]Fold, error) {
	if nSplits < 2 {
		return nil, fmt.Errorf("need at least 2 splits, got %d", nSplits)
	}
	foldSize := n / (nSplits + 1)
	if foldSize < 1 {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, nSplits)
	}

	folds := make([]Fold, 0, nSplits)
	for i := 0; i < nSplits; i++ {
		valStart := n - (nSplits-i)*foldSize
		folds = append(folds, Fold{
			TrainEnd: valStart,
			ValStart: valStart,
			ValEnd:   valStart + foldSize,
		})
	}
	return folds, nil
}
