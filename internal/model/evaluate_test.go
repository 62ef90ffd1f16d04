package model

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constantModel builds a trained model that always predicts a constant,
// which makes expected metrics computable by hand.
func constantModel(prediction float64, schema Schema) *TrainedModel {
	return &TrainedModel{
		Ensemble: &Ensemble{BaseScore: prediction, LearningRate: 1},
		Schema:   schema,
	}
}

func TestEvaluator_Evaluate(t *testing.T) {
	ctx := context.Background()
	ev := NewEvaluator(testLogger())

	t.Run("metrics on raw target scale", func(t *testing.T) {
		schema := Schema{FeatureNames: []string{"x"}}
		test := Dataset{
			Features: [][]float64{{1}, {2}},
			Target:   []float64{100, 300},
			Schema:   schema,
		}

		metrics, err := ev.Evaluate(ctx, constantModel(200, schema), test)
		require.NoError(t, err)

		assert.InDelta(t, 100, metrics.MAE, 1e-9)  // |200-100| and |200-300|
		assert.InDelta(t, 10000, metrics.MSE, 1e-9)
		assert.InDelta(t, 0, metrics.R2, 1e-9) // constant predictor explains nothing
	})

	t.Run("log transform is inverted before MAE and MSE", func(t *testing.T) {
		schema := Schema{FeatureNames: []string{"x"}, LogTarget: true}
		test := Dataset{
			Features: [][]float64{{1}},
			Target:   []float64{math.Log1p(300000)},
			Schema:   schema,
		}

		metrics, err := ev.Evaluate(ctx, constantModel(math.Log1p(200000), schema), test)
		require.NoError(t, err)

		// The error must be in price units, not in log units.
		assert.InDelta(t, 100000, metrics.MAE, 1e-4)
		assert.InDelta(t, 1e10, metrics.MSE, 1e3)
	})

	t.Run("end to end fit reaches high R2 on the synthetic relation", func(t *testing.T) {
		ds := syntheticDataset(300, 5)
		train, test, err := SplitDataset(ds, 0.2, 42)
		require.NoError(t, err)

		fitted, err := NewTrainer(smallParams(), testLogger()).Train(ctx, train)
		require.NoError(t, err)

		metrics, err := ev.Evaluate(ctx, fitted, test)
		require.NoError(t, err)
		assert.Greater(t, metrics.R2, 0.9)
		assert.Greater(t, metrics.MAE, 0.0)
	})

	t.Run("empty held-out set is an error", func(t *testing.T) {
		schema := Schema{FeatureNames: []string{"x"}}
		_, err := ev.Evaluate(ctx, constantModel(1, schema), Dataset{Schema: schema})
		assert.Error(t, err)
	})

	t.Run("schema width mismatch is an error", func(t *testing.T) {
		modelSchema := Schema{FeatureNames: []string{"x", "y"}}
		test := Dataset{
			Features: [][]float64{{1}},
			Target:   []float64{1},
			Schema:   Schema{FeatureNames: []string{"x"}},
		}
		_, err := ev.Evaluate(ctx, constantModel(1, modelSchema), test)
		assert.Error(t, err)
	})
}
