package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"immocli/internal/enrich"
	"immocli/internal/errors"
	"immocli/internal/model"
)

// CSVWriter writes pipeline artifacts as CSV files under an output
// directory.
type CSVWriter struct {
	outDir string
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at outDir.
func NewCSVWriter(outDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outDir: outDir, logger: logger}
}

// WriteCSV writes headers and records to a file under the output directory,
// creating the directory when needed.
func (w *CSVWriter) WriteCSV(name string, headers []string, records [][]string) error {
	fullPath := filepath.Join(w.outDir, name)

	w.logger.Info("writing CSV file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(records)),
	)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return errors.NewStorageError("create output directory", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("create %s", fullPath), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return errors.NewStorageError("write headers", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError(fmt.Sprintf("write record %d", i), err)
		}
	}

	return writer.Error()
}

// enrichedHeaders is the column layout of the enriched listings CSV. The
// files package reads these columns back by name.
var enrichedHeaders = []string{
	"postal_code", "ins_code",
	"price", "bedrooms", "living_area", "plot_surface",
	"has_terrace", "terrace_surface", "has_garden", "garden_surface",
	"facades", "building_condition", "has_pool", "has_equipped_kitchen",
	"population", "wealth_index", "density", "top_names",
}

// WriteEnriched writes the enriched listings table. Null demographics render
// as empty cells, empty name lists as an empty top_names cell.
func (w *CSVWriter) WriteEnriched(name string, records []enrich.EnrichedRecord) error {
	rows := make([][]string, len(records))
	for i, rec := range records {
		p := rec.Property
		row := []string{
			string(rec.PostalCode),
			rec.INSCode,
			formatFloat(p.Price),
			strconv.Itoa(p.Bedrooms),
			formatFloat(p.LivingArea),
			formatFloat(p.PlotSurface),
			formatBool(p.HasTerrace),
			formatFloat(p.TerraceSurface),
			formatBool(p.HasGarden),
			formatFloat(p.GardenSurface),
			strconv.Itoa(p.Facades),
			strconv.Itoa(p.BuildingCondition),
			formatBool(p.HasPool),
			formatBool(p.HasEquippedKitchen),
		}
		if rec.Demographics != nil {
			row = append(row,
				formatFloat(rec.Demographics.Population),
				formatFloat(rec.Demographics.WealthIndex),
				formatFloat(rec.Demographics.Density),
			)
		} else {
			row = append(row, "", "", "")
		}
		row = append(row, enrich.FormatNameCounts(rec.TopNames))
		rows[i] = row
	}

	return w.WriteCSV(name, enrichedHeaders, rows)
}

// WriteMetrics writes the held-out accuracy metrics.
func (w *CSVWriter) WriteMetrics(name string, metrics model.Metrics) error {
	return w.WriteCSV(name,
		[]string{"mae", "mse", "r2"},
		[][]string{{
			formatFloat(metrics.MAE),
			formatFloat(metrics.MSE),
			formatFloat(metrics.R2),
		}},
	)
}

// WriteOLSSummary writes the linear-model interpretability summary.
func (w *CSVWriter) WriteOLSSummary(name string, summary *model.OLSSummary) error {
	rows := make([][]string, len(summary.Terms))
	for i, term := range summary.Terms {
		rows[i] = []string{
			term.Name,
			formatFloat(term.Coefficient),
			formatFloat(term.StdError),
			formatFloat(term.TValue),
			formatFloat(term.PValue),
		}
	}
	return w.WriteCSV(name,
		[]string{"term", "coefficient", "std_error", "t_value", "p_value"},
		rows,
	)
}

// WriteImportance writes the global feature-attribution ranking.
func (w *CSVWriter) WriteImportance(name string, ranking []model.FeatureAttribution) error {
	rows := make([][]string, len(ranking))
	for i, attr := range ranking {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			attr.Feature,
			formatFloat(attr.Value),
		}
	}
	return w.WriteCSV(name,
		[]string{"rank", "feature", "mean_abs_attribution"},
		rows,
	)
}

// WriteExplanation writes a per-instance attribution breakdown. The baseline
// and prediction appear as pseudo-rows so the file is self-contained.
func (w *CSVWriter) WriteExplanation(name string, explanation model.InstanceExplanation) error {
	rows := [][]string{
		{"__baseline__", formatFloat(explanation.Baseline)},
	}
	for _, c := range explanation.Contributions {
		rows = append(rows, []string{c.Feature, formatFloat(c.Value)})
	}
	rows = append(rows, []string{"__prediction__", formatFloat(explanation.Prediction)})

	return w.WriteCSV(name, []string{"term", "value"}, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
