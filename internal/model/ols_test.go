package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immocli/internal/errors"
)

func TestFitOLS(t *testing.T) {
	// y = 4 + 2*x0 - 3*x1 + small noise, deterministic.
	rng := rand.New(rand.NewSource(3))
	n := 120
	features := make([][]float64, n)
	target := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64() * 10
		x1 := rng.Float64() * 10
		features[i] = []float64{x0, x1}
		target[i] = 4 + 2*x0 - 3*x1 + rng.NormFloat64()*0.05
	}
	ds := Dataset{
		Features: features,
		Target:   target,
		Schema:   Schema{FeatureNames: []string{"x0", "x1"}},
	}

	summary, err := FitOLS(ds)
	require.NoError(t, err)
	require.Len(t, summary.Terms, 3)

	t.Run("recovers coefficients", func(t *testing.T) {
		assert.Equal(t, "const", summary.Terms[0].Name)
		assert.InDelta(t, 4, summary.Terms[0].Coefficient, 0.1)
		assert.Equal(t, "x0", summary.Terms[1].Name)
		assert.InDelta(t, 2, summary.Terms[1].Coefficient, 0.05)
		assert.Equal(t, "x1", summary.Terms[2].Name)
		assert.InDelta(t, -3, summary.Terms[2].Coefficient, 0.05)
	})

	t.Run("significant terms have tiny p-values", func(t *testing.T) {
		for _, term := range summary.Terms {
			assert.Greater(t, term.StdError, 0.0, term.Name)
			assert.Less(t, term.PValue, 1e-6, term.Name)
			assert.False(t, math.IsNaN(term.TValue), term.Name)
		}
	})

	t.Run("near perfect linear relation gives high R2", func(t *testing.T) {
		assert.Greater(t, summary.R2, 0.999)
		assert.Equal(t, n, summary.Rows)
	})

	t.Run("irrelevant feature is insignificant", func(t *testing.T) {
		withNoise := Dataset{
			Features: make([][]float64, n),
			Target:   target,
			Schema:   Schema{FeatureNames: []string{"x0", "x1", "junk"}},
		}
		noiseRng := rand.New(rand.NewSource(9))
		for i := range features {
			withNoise.Features[i] = append(append([]float64(nil), features[i]...), noiseRng.Float64())
		}

		s, err := FitOLS(withNoise)
		require.NoError(t, err)
		assert.Greater(t, s.Terms[3].PValue, 1e-4, "pure noise should not look significant")
	})

	t.Run("too few rows is insufficient data", func(t *testing.T) {
		tiny := Dataset{
			Features: features[:3],
			Target:   target[:3],
			Schema:   ds.Schema,
		}
		_, err := FitOLS(tiny)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeInsufficientData))
	})

	t.Run("collinear features fail with a diagnostic", func(t *testing.T) {
		collinear := Dataset{
			Features: make([][]float64, n),
			Target:   target,
			Schema:   Schema{FeatureNames: []string{"x0", "x0_copy"}},
		}
		for i := range features {
			collinear.Features[i] = []float64{features[i][0], features[i][0]}
		}

		_, err := FitOLS(collinear)
		assert.Error(t, err)
	})
}
