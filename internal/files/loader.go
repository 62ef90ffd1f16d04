package files

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"immocli/internal/enrich"
	"immocli/internal/errors"
)

// Loader reads the raw source tables into typed records.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader creates a table loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger,
		validate: validator.New(),
	}
}

// LoadProperties reads the raw property listings CSV. Rows failing field
// validation (negative surfaces, non-positive price) are skipped with a
// warning; the postal code is kept raw for the enrichment pipeline to
// normalize.
func (l *Loader) LoadProperties(path string) ([]enrich.PropertyRecord, error) {
	rows, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(columns, "postal_code", "price"); err != nil {
		return nil, err
	}

	properties := make([]enrich.PropertyRecord, 0, len(rows))
	skipped := 0
	for i, row := range rows {
		record := enrich.PropertyRecord{
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
		}

		if err := l.validate.Struct(record); err != nil {
			skipped++
			l.logger.Warn("skipping invalid property row",
				slog.Int("row", i+2), // 1-based, after the header
				slog.String("reason", err.Error()),
			)
			continue
		}
		properties = append(properties, record)
	}

	l.logger.Info("loaded properties",
		slog.String("path", path),
		slog.Int("records", len(properties)),
		slog.Int("skipped", skipped),
	)
	return properties, nil
}

// LoadDemographics reads the postal demographic XLSX table
// (Code_INS, Population, Wealth_Index, Density).
func (l *Loader) LoadDemographics(path string) ([]enrich.DemographicAggregate, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("open demographic workbook %s", path), err)
	}
	defer f.Close()

	rows, err := demographicSheet(f)
	if err != nil {
		return nil, err
	}

	columns := headerMap(rows[0])
	if err := requireColumns(columns, "code_ins", "population", "wealth_index", "density"); err != nil {
		return nil, err
	}

	demographics := make([]enrich.DemographicAggregate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		insCode := strings.TrimSpace(cell(row, columns, "code_ins"))
		if insCode == "" {
			continue
		}
		demographics = append(demographics, enrich.DemographicAggregate{
			INSCode:     insCode,
			Population:  parseFloat(cell(row, columns, "population")),
			WealthIndex: parseFloat(cell(row, columns, "wealth_index")),
			Density:     parseFloat(cell(row, columns, "density")),
		})
	}

	l.logger.Info("loaded demographics",
		slog.String("path", path),
		slog.Int("records", len(demographics)),
	)
	return demographics, nil
}

// demographicSheet finds the sheet carrying the demographic table by looking
// for its header row.
func demographicSheet(f *excelize.File) ([][]string, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		headerText := strings.ToLower(strings.Join(rows[0], " "))
		if strings.Contains(headerText, "code_ins") && strings.Contains(headerText, "population") {
			return rows, nil
		}
	}
	return nil, errors.NewParsingError("no sheet with demographic data (Code_INS, Population) found", nil)
}

// LoadCodeMapping reads the INS-code to postal-codes JSON mapping.
func (l *Loader) LoadCodeMapping(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("read code mapping %s", path), err)
	}

	mapping := make(map[string][]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("decode code mapping %s", path), err)
	}

	l.logger.Info("loaded code mapping",
		slog.String("path", path),
		slog.Int("ins_codes", len(mapping)),
	)
	return mapping, nil
}

// LoadNameObservations reads the first-name frequency CSV
// (postal_code, TX_FST_NAME, MS_FREQUENCY).
func (l *Loader) LoadNameObservations(path string) ([]enrich.NameObservation, error) {
	rows, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(columns, "postal_code", "tx_fst_name", "ms_frequency"); err != nil {
		return nil, err
	}

	observations := make([]enrich.NameObservation, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(cell(row, columns, "tx_fst_name"))
		if name == "" {
			continue
		}
		observations = append(observations, enrich.NameObservation{
			RawPostalCode: cell(row, columns, "postal_code"),
			Name:          name,
			Frequency:     parseInt(cell(row, columns, "ms_frequency")),
		})
	}

	l.logger.Info("loaded name observations",
		slog.String("path", path),
		slog.Int("records", len(observations)),
	)
	return observations, nil
}

// readCSV reads a CSV file and returns its data rows and the header column
// map (lower-cased header name to index).
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewStorageError(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.NewParsingError(fmt.Sprintf("read %s", path), err)
	}
	if len(records) == 0 {
		return nil, nil, errors.NewParsingError(fmt.Sprintf("%s has no header row", path), nil)
	}

	return records[1:], headerMap(records[0]), nil
}

// headerMap maps lower-cased, trimmed header names to column indexes.
func headerMap(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func requireColumns(columns map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := columns[name]; !ok {
			return errors.NewParsingError(fmt.Sprintf("required column %q not found", name), nil).
				WithContext("column", name)
		}
	}
	return nil
}

// cell returns the named column of a row, or "" when the row is short or
// the column is absent.
func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	// Numeric columns sometimes carry float artifacts ("2.0").
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
