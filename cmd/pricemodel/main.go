package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"immocli/internal/config"
	"immocli/internal/exporter"
	"immocli/internal/files"
	"immocli/internal/model"
)

func main() {
	enrichedPath := flag.String("enriched", "", "enriched listings CSV produced by the enricher (required)")
	outputDir := flag.String("out", "", "output directory (defaults to the configured reports dir)")
	explainIndex := flag.Int("explain", 0, "test-set row to explain")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging)

	if *enrichedPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *outputDir == "" {
		*outputDir = cfg.Paths.ReportsDir
	}

	ctx := context.Background()

	records, err := files.NewLoader(logger).LoadEnriched(*enrichedPath)
	if err != nil {
		logger.Error("Failed to load enriched listings", "path", *enrichedPath, "error", err)
		os.Exit(1)
	}

	dataset, err := model.NewTransformer(cfg.Model.LogTarget, logger).Fit(records)
	if err != nil {
		logger.Error("Failed to build feature matrix", "error", err)
		os.Exit(1)
	}

	train, test, err := model.SplitDataset(dataset, cfg.Model.TestFraction, cfg.Model.Seed)
	if err != nil {
		logger.Error("Failed to split dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("Dataset split",
		"train_rows", train.Rows(),
		"test_rows", test.Rows(),
		"features", dataset.Schema.NumFeatures(),
	)

	trained, err := model.NewTrainer(trainerParams(cfg.Model), logger).Train(ctx, train)
	if err != nil {
		logger.Error("Training failed", "error", err)
		os.Exit(1)
	}

	metrics, err := model.NewEvaluator(logger).Evaluate(ctx, trained, test)
	if err != nil {
		logger.Error("Evaluation failed", "error", err)
		os.Exit(1)
	}

	ols, err := model.FitOLS(train)
	if err != nil {
		logger.Error("Linear summary failed", "error", err)
		os.Exit(1)
	}

	attributor := model.NewAttributor(logger)
	importance, err := attributor.GlobalImportance(ctx, trained, test)
	if err != nil {
		logger.Error("Importance ranking failed", "error", err)
		os.Exit(1)
	}
	explanation, err := attributor.Explain(ctx, trained, test, *explainIndex)
	if err != nil {
		logger.Error("Instance explanation failed", "error", err)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(*outputDir, logger)
	for name, write := range map[string]func() error{
		"metrics.csv":     func() error { return writer.WriteMetrics("metrics.csv", metrics) },
		"ols_summary.csv": func() error { return writer.WriteOLSSummary("ols_summary.csv", ols) },
		"importance.csv":  func() error { return writer.WriteImportance("importance.csv", importance) },
		"explanation.csv": func() error { return writer.WriteExplanation("explanation.csv", explanation) },
	} {
		if err := write(); err != nil {
			logger.Error("Failed to write report", "file", name, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Modeling finished",
		"mae", metrics.MAE,
		"mse", metrics.MSE,
		"r2", metrics.R2,
		"output_dir", *outputDir,
	)
}

// trainerParams maps the configuration knobs onto training parameters so the
// model package stays free of the config dependency.
func trainerParams(cfg config.ModelConfig) model.Params {
	return model.Params{
		Estimators:      cfg.Estimators,
		LearningRate:    cfg.LearningRate,
		MaxDepth:        cfg.MaxDepth,
		Subsample:       cfg.Subsample,
		ColsampleByTree: cfg.ColsampleByTree,
		MinChildWeight:  cfg.MinChildWeight,
		Seed:            cfg.Seed,
	}
}
