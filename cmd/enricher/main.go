package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"immocli/internal/config"
	"immocli/internal/enrich"
	"immocli/internal/exporter"
	"immocli/internal/files"
)

func main() {
	propertiesPath := flag.String("properties", "", "property listings CSV (required)")
	demographicsPath := flag.String("demographics", "", "demographic workbook XLSX (required)")
	mappingPath := flag.String("mapping", "", "INS-to-postal-code mapping JSON (required)")
	namesPath := flag.String("names", "", "first-name observations CSV (required)")
	outputDir := flag.String("out", "", "output directory (defaults to the configured reports dir)")
	outputName := flag.String("o", "enriched.csv", "output file name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging)

	if *propertiesPath == "" || *demographicsPath == "" || *mappingPath == "" || *namesPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *outputDir == "" {
		*outputDir = cfg.Paths.ReportsDir
	}

	ctx := context.Background()
	loader := files.NewLoader(logger)

	properties, err := loader.LoadProperties(*propertiesPath)
	if err != nil {
		logger.Error("Failed to load properties", "path", *propertiesPath, "error", err)
		os.Exit(1)
	}
	demographics, err := loader.LoadDemographics(*demographicsPath)
	if err != nil {
		logger.Error("Failed to load demographics", "path", *demographicsPath, "error", err)
		os.Exit(1)
	}
	mapping, err := loader.LoadCodeMapping(*mappingPath)
	if err != nil {
		logger.Error("Failed to load code mapping", "path", *mappingPath, "error", err)
		os.Exit(1)
	}
	names, err := loader.LoadNameObservations(*namesPath)
	if err != nil {
		logger.Error("Failed to load name observations", "path", *namesPath, "error", err)
		os.Exit(1)
	}

	enricher := enrich.NewEnricher(enrich.Options{
		KeyWidth: cfg.Enrichment.KeyWidth,
		TopNames: cfg.Enrichment.TopNames,
	}, logger)

	enriched, err := enricher.Enrich(ctx, properties, demographics, mapping, names)
	if err != nil {
		logger.Error("Enrichment failed", "error", err)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(*outputDir, logger)
	if err := writer.WriteEnriched(*outputName, enriched); err != nil {
		logger.Error("Failed to write enriched listings", "error", err)
		os.Exit(1)
	}

	logger.Info("Enrichment finished",
		"records", len(enriched),
		"output_dir", *outputDir,
		"output_file", *outputName,
	)
}
