package model

import "sort"

// node is one node of a regression tree. Value is the mean training target
// of the rows reaching the node; it is kept on internal nodes too so path
// attribution can decompose a prediction split by split.
type node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// Tree is a regression tree fit with greedy variance-reduction splits.
type Tree struct {
	nodes []node
}

// Predict walks the tree for one feature vector and returns the leaf value.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for !t.nodes[i].Leaf {
		if x[t.nodes[i].Feature] < t.nodes[i].Threshold {
			i = t.nodes[i].Left
		} else {
			i = t.nodes[i].Right
		}
	}
	return t.nodes[i].Value
}

// RootValue returns the tree's expected value: the mean target of all
// training rows it was grown on.
func (t *Tree) RootValue() float64 {
	return t.nodes[0].Value
}

// WalkPath traverses the tree along x's decision path and invokes fn at
// every split with the split feature and the change in expected value from
// the node to the chosen child. RootValue plus the sum of all deltas equals
// Predict(x) exactly, which is the additivity the attributor relies on.
func (t *Tree) WalkPath(x []float64, fn func(feature int, delta float64)) {
	i := 0
	for !t.nodes[i].Leaf {
		n := t.nodes[i]
		var next int
		if x[n.Feature] < n.Threshold {
			next = n.Left
		} else {
			next = n.Right
		}
		fn(n.Feature, t.nodes[next].Value-n.Value)
		i = next
	}
}

// treeConfig controls how a single tree is grown.
type treeConfig struct {
	maxDepth       int
	minChildWeight int   // minimum rows per child, the squared-loss analogue of min child weight
	features       []int // candidate columns for this tree (column subsample)
}

// growTree fits a regression tree to the rows' residuals.
func growTree(features [][]float64, residuals []float64, rows []int, cfg treeConfig) *Tree {
	t := &Tree{}
	t.grow(features, residuals, rows, cfg, 0)
	return t
}

func (t *Tree) grow(features [][]float64, residuals []float64, rows []int, cfg treeConfig, depth int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{Value: meanAt(residuals, rows), Leaf: true})

	if depth >= cfg.maxDepth || len(rows) < 2*cfg.minChildWeight {
		return idx
	}

	feature, threshold, ok := bestSplit(features, residuals, rows, cfg)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if features[r][feature] < threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	leftIdx := t.grow(features, residuals, left, cfg, depth+1)
	rightIdx := t.grow(features, residuals, right, cfg, depth+1)

	t.nodes[idx].Leaf = false
	t.nodes[idx].Feature = feature
	t.nodes[idx].Threshold = threshold
	t.nodes[idx].Left = leftIdx
	t.nodes[idx].Right = rightIdx
	return idx
}

// bestSplit scans every candidate feature for the threshold with the largest
// squared-error reduction, honoring the minimum child size. Thresholds are
// midpoints between adjacent distinct values.
func bestSplit(features [][]float64, residuals []float64, rows []int, cfg treeConfig) (int, float64, bool) {
	const minGain = 1e-12

	var totalSum float64
	for _, r := range rows {
		totalSum += residuals[r]
	}
	total := float64(len(rows))
	baseScore := totalSum * totalSum / total

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	order := make([]int, len(rows))
	for _, f := range cfg.features {
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool {
			return features[order[i]][f] < features[order[j]][f]
		})

		var leftSum float64
		for i := 0; i < len(order)-1; i++ {
			leftSum += residuals[order[i]]

			cur, next := features[order[i]][f], features[order[i+1]][f]
			if cur == next {
				continue
			}

			leftCount := i + 1
			rightCount := len(order) - leftCount
			if leftCount < cfg.minChildWeight || rightCount < cfg.minChildWeight {
				continue
			}

			rightSum := totalSum - leftSum
			gain := leftSum*leftSum/float64(leftCount) +
				rightSum*rightSum/float64(rightCount) - baseScore
			if gain > bestGain+minGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func meanAt(values []float64, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += values[r]
	}
	return sum / float64(len(rows))
}
