package model

import (
	"log/slog"
	"math"

	"immocli/internal/enrich"
	"immocli/internal/errors"
)

// featureOrder is the canonical feature layout for enriched listings. The
// top-name text enrichment is deliberately excluded from the numeric matrix;
// it is carried in the enriched table for inspection only, so the attribution
// step sees a purely numeric schema.
var featureOrder = []string{
	"bedrooms",
	"living_area",
	"plot_surface",
	"has_terrace",
	"terrace_surface",
	"has_garden",
	"garden_surface",
	"facades",
	"building_condition",
	"has_pool",
	"has_equipped_kitchen",
	"population",
	"wealth_index",
	"density",
}

// Transformer converts enriched records into a model-ready dataset. Missing
// demographic values are imputed with the training-set column mean, stored on
// the schema so inference applies the exact same defaults.
type Transformer struct {
	logTarget bool
	logger    *slog.Logger
}

// NewTransformer creates a feature transformer. When logTarget is set the
// price target is log1p-transformed and the choice is recorded on the schema
// so the evaluator can invert it before reporting metrics.
func NewTransformer(logTarget bool, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logTarget: logTarget, logger: logger}
}

// Fit derives a schema from the records (feature order, per-column defaults,
// target transform) and transforms them into a dataset.
func (t *Transformer) Fit(records []enrich.EnrichedRecord) (Dataset, error) {
	if len(records) == 0 {
		return Dataset{}, errors.NewInsufficientDataError(0, len(featureOrder))
	}

	// Column means over observed values become the imputation defaults.
	sums := make(map[string]float64, len(featureOrder))
	counts := make(map[string]int, len(featureOrder))
	for _, rec := range records {
		values := featureValues(rec)
		for _, name := range featureOrder {
			if v := values[name]; v != nil {
				sums[name] += *v
				counts[name]++
			}
		}
	}

	defaults := make(map[string]float64, len(featureOrder))
	for _, name := range featureOrder {
		if counts[name] > 0 {
			defaults[name] = sums[name] / float64(counts[name])
		} else {
			defaults[name] = 0
		}
	}

	schema := Schema{
		FeatureNames: append([]string(nil), featureOrder...),
		Defaults:     defaults,
		LogTarget:    t.logTarget,
	}

	t.logger.Debug("fitted feature schema",
		slog.Int("features", schema.NumFeatures()),
		slog.Bool("log_target", schema.LogTarget),
	)

	return t.Apply(records, schema)
}

// Apply transforms records under an existing schema. It fails with a
// SCHEMA_MISMATCH error when a record lacks a feature the schema requires
// and no default is defined for it.
func (t *Transformer) Apply(records []enrich.EnrichedRecord, schema Schema) (Dataset, error) {
	features := make([][]float64, len(records))
	target := make([]float64, len(records))

	for i, rec := range records {
		values := featureValues(rec)
		row := make([]float64, schema.NumFeatures())
		for j, name := range schema.FeatureNames {
			v, known := values[name]
			if !known {
				return Dataset{}, errors.NewSchemaMismatchError(name).WithContext("row", i)
			}
			if v != nil {
				row[j] = *v
				continue
			}
			def, ok := schema.Defaults[name]
			if !ok {
				return Dataset{}, errors.NewSchemaMismatchError(name).WithContext("row", i)
			}
			row[j] = def
		}
		features[i] = row

		if schema.LogTarget {
			target[i] = math.Log1p(rec.Property.Price)
		} else {
			target[i] = rec.Property.Price
		}
	}

	return Dataset{Features: features, Target: target, Schema: schema}, nil
}

// featureValues extracts the numeric view of one enriched record. A nil
// entry marks a missing value (unresolved demographics); absent keys mark
// features this extractor does not know at all.
func featureValues(r enrich.EnrichedRecord) map[string]*float64 {
	p := r.Property
	values := map[string]*float64{
		"bedrooms":             ptr(float64(p.Bedrooms)),
		"living_area":          ptr(p.LivingArea),
		"plot_surface":         ptr(p.PlotSurface),
		"has_terrace":          ptr(boolToFloat(p.HasTerrace)),
		"terrace_surface":      ptr(p.TerraceSurface),
		"has_garden":           ptr(boolToFloat(p.HasGarden)),
		"garden_surface":       ptr(p.GardenSurface),
		"facades":              ptr(float64(p.Facades)),
		"building_condition":   ptr(float64(p.BuildingCondition)),
		"has_pool":             ptr(boolToFloat(p.HasPool)),
		"has_equipped_kitchen": ptr(boolToFloat(p.HasEquippedKitchen)),
		"population":           nil,
		"wealth_index":         nil,
		"density":              nil,
	}

	if r.Demographics != nil {
		values["population"] = ptr(r.Demographics.Population)
		values["wealth_index"] = ptr(r.Demographics.WealthIndex)
		values["density"] = ptr(r.Demographics.Density)
	}

	return values
}

func ptr(v float64) *float64 {
	return &v
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
