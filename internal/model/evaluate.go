package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Evaluator computes held-out accuracy metrics for a trained model.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate computes MAE, MSE and R² over the held-out dataset. When the
// schema records a log-transformed target, MAE and MSE are reported in
// original price units (predictions and targets inverted with expm1); R² is
// computed on the model's training scale.
func (ev *Evaluator) Evaluate(ctx context.Context, m *TrainedModel, test Dataset) (Metrics, error) {
	if test.Rows() == 0 {
		return Metrics{}, fmt.Errorf("held-out dataset is empty")
	}
	if test.Schema.NumFeatures() != m.Schema.NumFeatures() {
		return Metrics{}, fmt.Errorf("held-out schema has %d features, model expects %d",
			test.Schema.NumFeatures(), m.Schema.NumFeatures())
	}

	predictions := make([]float64, test.Rows())
	for i, row := range test.Features {
		predictions[i] = m.Predict(row)
	}

	var absSum, sqSum float64
	for i, pred := range predictions {
		actual := test.Target[i]
		if m.Schema.LogTarget {
			pred = math.Expm1(pred)
			actual = math.Expm1(actual)
		}
		diff := pred - actual
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}

	n := float64(test.Rows())
	metrics := Metrics{
		MAE: absSum / n,
		MSE: sqSum / n,
		R2:  stat.RSquaredFrom(predictions, test.Target, nil),
	}

	ev.logger.InfoContext(ctx, "evaluation completed",
		slog.Int("rows", test.Rows()),
		slog.Float64("mae", metrics.MAE),
		slog.Float64("mse", metrics.MSE),
		slog.Float64("r2", metrics.R2),
	)

	return metrics, nil
}
