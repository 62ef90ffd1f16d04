package files

import (
	"log/slog"

	"immocli/internal/enrich"
)

// LoadEnriched reads an enriched listings CSV (the output of the enrichment
// pipeline) back into typed records. Empty demographic cells become nil
// demographics; an empty top_names cell becomes an empty name list. Rows
// failing property validation are skipped with a warning, the same gate
// LoadProperties applies; a hand-edited file must not feed a non-positive
// price into the log-transformed target.
func (l *Loader) LoadEnriched(path string) ([]enrich.EnrichedRecord, error) {
	rows, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(columns, "postal_code", "price"); err != nil {
		return nil, err
	}

	records := make([]enrich.EnrichedRecord, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		record := enrich.EnrichedRecord{
			Property: enrich.PropertyRecord{
				RawPostalCode:      cell(row, columns, "postal_code"),
				Price:              parseFloat(cell(row, columns, "price")),
				Bedrooms:           parseInt(cell(row, columns, "bedrooms")),
				LivingArea:         parseFloat(cell(row, columns, "living_area")),
				PlotSurface:        parseFloat(cell(row, columns, "plot_surface")),
				HasTerrace:         parseBool(cell(row, columns, "has_terrace")),
				TerraceSurface:     parseFloat(cell(row, columns, "terrace_surface")),
				HasGarden:          parseBool(cell(row, columns, "has_garden")),
				GardenSurface:      parseFloat(cell(row, columns, "garden_surface")),
				Facades:            parseInt(cell(row, columns, "facades")),
				BuildingCondition:  parseInt(cell(row, columns, "building_condition")),
				HasPool:            parseBool(cell(row, columns, "has_pool")),
				HasEquippedKitchen: parseBool(cell(row, columns, "has_equipped_kitchen")),
			},
			PostalCode: enrich.PostalCode(cell(row, columns, "postal_code")),
			INSCode:    cell(row, columns, "ins_code"),
			TopNames:   enrich.ParseNameCounts(cell(row, columns, "top_names")),
		}

		// A row enriched with demographics always carries an INS code; the
		// empty cell marks the explicit join miss.
		if record.INSCode != "" {
			record.Demographics = &enrich.DemographicAggregate{
				INSCode:     record.INSCode,
				Population:  parseFloat(cell(row, columns, "population")),
				WealthIndex: parseFloat(cell(row, columns, "wealth_index")),
				Density:     parseFloat(cell(row, columns, "density")),
			}
		}

		if err := l.validate.Struct(record.Property); err != nil {
			skipped++
			l.logger.Warn("skipping invalid enriched row",
				slog.Int("row", i+2), // 1-based, after the header
				slog.String("reason", err.Error()),
			)
			continue
		}
		records = append(records, record)
	}

	l.logger.Info("loaded enriched listings",
		slog.String("path", path),
		slog.Int("records", len(records)),
		slog.Int("skipped", skipped),
	)
	return records, nil
}
