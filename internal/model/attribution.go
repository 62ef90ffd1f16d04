package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// Attributor computes additive feature attributions over a boosted-tree
// model. Each tree's prediction is decomposed along the instance's decision
// path: every split contributes the change in expected value between the
// node and the chosen child, credited to the split feature. The baseline is
// the ensemble's expected value, so baseline plus the sum of contributions
// equals the prediction exactly.
//
// Attributions are descriptive outputs only; they never feed back into
// training.
type Attributor struct {
	logger *slog.Logger
}

// NewAttributor creates an attributor.
func NewAttributor(logger *slog.Logger) *Attributor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Attributor{logger: logger}
}

// Explain returns the per-instance attribution decomposition for the record
// at index idx of the reference dataset.
func (a *Attributor) Explain(ctx context.Context, m *TrainedModel, ref Dataset, idx int) (InstanceExplanation, error) {
	if idx < 0 || idx >= ref.Rows() {
		return InstanceExplanation{}, fmt.Errorf("record index %d out of range [0, %d)", idx, ref.Rows())
	}

	contributions := a.attribute(m, ref.Features[idx])

	explanation := InstanceExplanation{
		Index:      idx,
		Baseline:   m.Ensemble.Baseline(),
		Prediction: m.Predict(ref.Features[idx]),
	}
	explanation.Contributions = make([]FeatureAttribution, len(contributions))
	for j, v := range contributions {
		explanation.Contributions[j] = FeatureAttribution{
			Feature: m.Schema.FeatureNames[j],
			Value:   v,
		}
	}

	a.logger.DebugContext(ctx, "explained instance",
		slog.Int("index", idx),
		slog.Float64("baseline", explanation.Baseline),
		slog.Float64("prediction", explanation.Prediction),
	)

	return explanation, nil
}

// GlobalImportance ranks features by mean absolute attribution value across
// all instances of the reference dataset, descending.
func (a *Attributor) GlobalImportance(ctx context.Context, m *TrainedModel, ref Dataset) ([]FeatureAttribution, error) {
	if ref.Rows() == 0 {
		return nil, fmt.Errorf("reference dataset is empty")
	}

	totals := make([]float64, m.Schema.NumFeatures())
	for _, row := range ref.Features {
		for j, v := range a.attribute(m, row) {
			totals[j] += math.Abs(v)
		}
	}

	ranking := make([]FeatureAttribution, len(totals))
	for j, total := range totals {
		ranking[j] = FeatureAttribution{
			Feature: m.Schema.FeatureNames[j],
			Value:   total / float64(ref.Rows()),
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Value > ranking[j].Value
	})

	a.logger.InfoContext(ctx, "computed global feature importance",
		slog.Int("rows", ref.Rows()),
		slog.Int("features", len(ranking)),
	)

	return ranking, nil
}

// attribute decomposes one prediction into per-feature contributions in
// schema column order.
func (a *Attributor) attribute(m *TrainedModel, x []float64) []float64 {
	contributions := make([]float64, m.Schema.NumFeatures())
	lr := m.Ensemble.LearningRate
	for _, tree := range m.Ensemble.Trees {
		tree.WalkPath(x, func(feature int, delta float64) {
			contributions[feature] += lr * delta
		})
	}
	return contributions
}
