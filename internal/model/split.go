package model

import (
	"fmt"
	"math/rand"
)

// SplitDataset partitions a dataset into training and held-out subsets with
// a seeded Fisher-Yates permutation. The same seed and fraction always
// produce the same partition, which is what makes runs reproducible; the
// seed is an explicit parameter, never ambient state.
func SplitDataset(ds Dataset, testFraction float64, seed int64) (train, test Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Dataset{}, Dataset{}, fmt.Errorf("test fraction must be in (0, 1), got %v", testFraction)
	}

	n := ds.Rows()
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	testSize := int(float64(n) * testFraction)
	testIdx := perm[:testSize]
	trainIdx := perm[testSize:]

	train = subset(ds, trainIdx)
	test = subset(ds, testIdx)
	return train, test, nil
}

func subset(ds Dataset, indices []int) Dataset {
	features := make([][]float64, len(indices))
	target := make([]float64, len(indices))
	for i, idx := range indices {
		features[i] = ds.Features[idx]
		target[i] = ds.Target[idx]
	}
	return Dataset{Features: features, Target: target, Schema: ds.Schema}
}
