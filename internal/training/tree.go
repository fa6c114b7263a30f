package training

import (
	"math/rand"
	"sort"
)

// Node is one decision node of a regression tree. Leaves have Left == -1
// and carry the prediction in Value.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a regression tree stored as a flat node array, which keeps the
// persisted model a plain structured document.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks the tree for one feature vector
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for t.Nodes[i].Left >= 0 {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

// treeBuilder grows a tree on a row subset, minimizing squared error
type treeBuilder struct {
	x [][]float64
	y []float64

	maxDepth    int
	minSplit    int
	minLeaf     int
	maxFeatures int
	rng         *rand.Rand

	nodes []Node
	// impurity decrease accumulated per feature, for importance ranking
	importance []float64
}

func (b *treeBuilder) fit(indices []int) Tree {
	b.nodes = b.nodes[:0]
	b.grow(indices, 0)
	return Tree{Nodes: append([]Node(nil), b.nodes...)}
}

// grow appends a node for the given rows and returns its index
func (b *treeBuilder) grow(indices []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Value: meanAt(b.y, indices)})

	if depth >= b.maxDepth || len(indices) < b.minSplit {
		return idx
	}

	feature, threshold, gain, ok := b.bestSplit(indices)
	if !ok {
		return idx
	}

	var left, right []int
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return idx
	}

	b.importance[feature] += gain

	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)

	b.nodes[idx].Feature = feature
	b.nodes[idx].Threshold = threshold
	b.nodes[idx].Left = leftIdx
	b.nodes[idx].Right = rightIdx
	return idx
}

// bestSplit searches a random feature subset for the split with the
// largest squared-error reduction that respects the leaf minimum.
func (b *treeBuilder) bestSplit(indices []int) (feature int, threshold, gain float64, ok bool) {
	d := len(b.x[0])
	features := b.rng.Perm(d)
	if b.maxFeatures < d {
		features = features[:b.maxFeatures]
	}

	parentSSE := sseAt(b.y, indices)

	order := make([]int, len(indices))
	bestGain := 0.0

	for _, f := range features {
		copy(order, indices)
		sort.Slice(order, func(a, c int) bool {
			return b.x[order[a]][f] < b.x[order[c]][f]
		})

		// Scan prefix sums; a split between positions i-1 and i puts
		// the first i rows on the left.
		var leftSum, leftSq float64
		totalSum, totalSq := sumsAt(b.y, order)
		n := float64(len(order))

		for i := 1; i < len(order); i++ {
			yv := b.y[order[i-1]]
			leftSum += yv
			leftSq += yv * yv

			// Equal feature values cannot be separated
			if b.x[order[i-1]][f] == b.x[order[i]][f] {
				continue
			}
			if i < b.minLeaf || len(order)-i < b.minLeaf {
				continue
			}

			nl, nr := float64(i), n-float64(i)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			childSSE := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)

			if g := parentSSE - childSSE; g > bestGain {
				bestGain = g
				feature = f
				threshold = (b.x[order[i-1]][f] + b.x[order[i]][f]) / 2
				ok = true
			}
		}
	}

	return feature, threshold, bestGain, ok
}

func meanAt(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func sumsAt(y []float64, indices []int) (sum, sumSq float64) {
	for _, i := range indices {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	return sum, sumSq
}

func sseAt(y []float64, indices []int) float64 {
	sum, sumSq := sumsAt(y, indices)
	n := float64(len(indices))
	if n == 0 {
		return 0
	}
	return sumSq - sum*sum/n
}
