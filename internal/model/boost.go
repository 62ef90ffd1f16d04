package model

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"immocli/internal/errors"
)

// Params are the boosted-tree hyperparameters. All of them are explicit
// configuration; the seed in particular is never hard-coded so a run can be
// reproduced exactly.
type Params struct {
	Estimators      int     `json:"estimators"`
	LearningRate    float64 `json:"learning_rate"`
	MaxDepth        int     `json:"max_depth"`
	Subsample       float64 `json:"subsample"`
	ColsampleByTree float64 `json:"colsample_by_tree"`
	MinChildWeight  int     `json:"min_child_weight"`
	Seed            int64   `json:"seed"`
}

// DefaultParams returns the tuned hyperparameters for the listing-price
// model.
func DefaultParams() Params {
	return Params{
		Estimators:      220,
		LearningRate:    0.12,
		MaxDepth:        6,
		Subsample:       0.9,
		ColsampleByTree: 0.7,
		MinChildWeight:  10,
		Seed:            42,
	}
}

// IsValid checks if the hyperparameters are usable.
func (p Params) IsValid() bool {
	return p.Estimators > 0 && p.LearningRate > 0 && p.LearningRate <= 1 &&
		p.MaxDepth > 0 && p.Subsample > 0 && p.Subsample <= 1 &&
		p.ColsampleByTree > 0 && p.ColsampleByTree <= 1 && p.MinChildWeight >= 1
}

// Ensemble is a gradient-boosted regression tree ensemble minimizing squared
// error. Trees store raw (unshrunken) expected values; the learning rate is
// applied at prediction and attribution time.
type Ensemble struct {
	BaseScore    float64
	LearningRate float64
	Trees        []*Tree
}

// Predict returns the ensemble prediction for one feature vector.
func (e *Ensemble) Predict(x []float64) float64 {
	score := e.BaseScore
	for _, t := range e.Trees {
		score += e.LearningRate * t.Predict(x)
	}
	return score
}

// Baseline returns the ensemble's expected value: the prediction before any
// feature is consulted. It anchors the additive attribution decomposition.
func (e *Ensemble) Baseline() float64 {
	base := e.BaseScore
	for _, t := range e.Trees {
		base += e.LearningRate * t.RootValue()
	}
	return base
}

// Trainer fits boosted-tree regression models.
type Trainer struct {
	params Params
	logger *slog.Logger
}

// NewTrainer creates a trainer with the given hyperparameters.
func NewTrainer(params Params, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{params: params, logger: logger}
}

// Train fits the ensemble on the training dataset and binds the result to
// the dataset's exact schema. Fails with an INSUFFICIENT_DATA error when the
// training set is empty or has fewer rows than features.
func (tr *Trainer) Train(ctx context.Context, train Dataset) (*TrainedModel, error) {
	start := time.Now()

	if !tr.params.IsValid() {
		return nil, fmt.Errorf("invalid training parameters: %+v", tr.params)
	}

	rows := train.Rows()
	cols := train.Schema.NumFeatures()
	if rows == 0 || rows < cols {
		return nil, errors.NewInsufficientDataError(rows, cols)
	}

	tr.logger.InfoContext(ctx, "starting training",
		slog.Int("rows", rows),
		slog.Int("features", cols),
		slog.Int("estimators", tr.params.Estimators),
		slog.Int64("seed", tr.params.Seed),
		slog.Bool("log_target", train.Schema.LogTarget),
	)

	rng := rand.New(rand.NewSource(tr.params.Seed))

	predictions := make([]float64, rows)
	residuals := make([]float64, rows)
	base := mean(train.Target)
	for i := range predictions {
		predictions[i] = base
		residuals[i] = train.Target[i] - base
	}

	ensemble := &Ensemble{
		BaseScore:    base,
		LearningRate: tr.params.LearningRate,
		Trees:        make([]*Tree, 0, tr.params.Estimators),
	}

	for iter := 0; iter < tr.params.Estimators; iter++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("training cancelled at iteration %d: %w", iter, ctx.Err())
		default:
		}

		tree := growTree(train.Features, residuals, sampleRows(rng, rows, tr.params.Subsample), treeConfig{
			maxDepth:       tr.params.MaxDepth,
			minChildWeight: tr.params.MinChildWeight,
			features:       sampleColumns(rng, cols, tr.params.ColsampleByTree),
		})
		ensemble.Trees = append(ensemble.Trees, tree)

		for i := range predictions {
			predictions[i] += tr.params.LearningRate * tree.Predict(train.Features[i])
			residuals[i] = train.Target[i] - predictions[i]
		}
	}

	tr.logger.InfoContext(ctx, "training completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("trees", len(ensemble.Trees)),
		slog.Float64("train_mse", meanSquaredResidual(residuals)),
	)

	return &TrainedModel{Ensemble: ensemble, Schema: train.Schema}, nil
}

// sampleRows draws a fraction of row indices without replacement, in
// ascending order so tree growth is deterministic for a given seed.
func sampleRows(rng *rand.Rand, n int, fraction float64) []int {
	size := int(float64(n) * fraction)
	if size < 1 {
		size = 1
	}
	if size >= n {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	rows := rng.Perm(n)[:size]
	sort.Ints(rows)
	return rows
}

// sampleColumns draws a fraction of column indices without replacement.
func sampleColumns(rng *rand.Rand, n int, fraction float64) []int {
	size := int(float64(n) * fraction)
	if size < 1 {
		size = 1
	}
	if size >= n {
		cols := make([]int, n)
		for i := range cols {
			cols[i] = i
		}
		return cols
	}
	cols := rng.Perm(n)[:size]
	sort.Ints(cols)
	return cols
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanSquaredResidual(residuals []float64) float64 {
	if len(residuals) == 0 {
		return 0
	}
	var sum float64
	for _, r := range residuals {
		sum += r * r
	}
	return sum / float64(len(residuals))
}
