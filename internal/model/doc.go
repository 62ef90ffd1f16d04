// Package model implements the price modeling pipeline over enriched
// listings: feature transformation, gradient-boosted tree regression, held
// out evaluation, an auxiliary OLS fit for interpretability, and additive
// feature attribution.
//
// # Components
//
//   - transform.go: enriched records → feature matrix, schema-bound imputation
//   - split.go: seeded, reproducible train/test partitioning
//   - tree.go, boost.go: regression trees and the boosted ensemble trainer
//   - evaluate.go: MAE/MSE/R² on held-out data, inverting the target transform
//   - ols.go: ordinary-least-squares summary (coefficients, p-values) via gonum
//   - attribution.go: global and per-instance additive attributions
//
// The prediction model (boosted trees) and the interpretation model (OLS)
// are independent objects fit on the same training partition and the same
// feature schema; the OLS R² is expected to trail the boosted model's.
//
// # Usage
//
//	ds, err := model.NewTransformer(true, logger).Fit(records)
//	train, test, err := model.SplitDataset(ds, 0.2, 42)
//	fitted, err := model.NewTrainer(model.DefaultParams(), logger).Train(ctx, train)
//	metrics, err := model.NewEvaluator(logger).Evaluate(ctx, fitted, test)
package model
