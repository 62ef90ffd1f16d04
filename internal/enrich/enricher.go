package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Options configures the enrichment pipeline.
type Options struct {
	KeyWidth int // canonical postal code width, DefaultKeyWidth when <= 0
	TopNames int // names kept per postal code, DefaultTopNames when <= 0
}

// DefaultOptions returns the options matching the source datasets.
func DefaultOptions() Options {
	return Options{KeyWidth: DefaultKeyWidth, TopNames: DefaultTopNames}
}

// Enricher orchestrates the enrichment pipeline: key normalization,
// demographic joining, name aggregation and the final left-join merge.
// Each stage consumes an immutable input and produces a new artifact.
type Enricher struct {
	normalizer Normalizer
	topNames   int
	logger     *slog.Logger
}

// NewEnricher creates an enrichment pipeline with the given options.
func NewEnricher(opts Options, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	topNames := opts.TopNames
	if topNames <= 0 {
		topNames = DefaultTopNames
	}
	return &Enricher{
		normalizer: NewNormalizer(opts.KeyWidth),
		topNames:   topNames,
		logger:     logger,
	}
}

// Normalizer returns the key normalizer the pipeline uses, so callers can
// canonicalize ad-hoc keys the same way.
func (e *Enricher) Normalizer() Normalizer {
	return e.normalizer
}

// Enrich joins every property record with demographic and name data.
//
// The merge is a strict left join: the output has exactly one record per
// input property, in input order, regardless of enrichment availability.
// Unmapped postal codes and codes without name observations propagate as
// nil demographics and empty name lists; malformed postal codes keep the
// record with null enrichment and an empty canonical code.
func (e *Enricher) Enrich(
	ctx context.Context,
	properties []PropertyRecord,
	demographics []DemographicAggregate,
	insToPostal map[string][]string,
	names []NameObservation,
) ([]EnrichedRecord, error) {
	start := time.Now()
	logger := e.logger.With(slog.String("run_id", uuid.New().String()))

	logger.InfoContext(ctx, "starting enrichment",
		slog.Int("properties", len(properties)),
		slog.Int("demographic_rows", len(demographics)),
		slog.Int("ins_codes", len(insToPostal)),
		slog.Int("name_observations", len(names)),
	)

	mapping := NewCodeMapping(insToPostal, e.normalizer)
	joiner := NewJoiner(mapping, demographics)
	logger.DebugContext(ctx, "built code mapping",
		slog.Int("postal_codes", mapping.Len()),
	)

	nameTable := NewAggregator(e.normalizer, e.topNames).Aggregate(names)
	logger.DebugContext(ctx, "aggregated names",
		slog.Int("postal_codes", len(nameTable)),
	)

	enriched, stats := e.merge(ctx, properties, joiner, nameTable)

	logger.InfoContext(ctx, "enrichment completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("records", len(enriched)),
		slog.Int("matched_demographics", stats.matchedDemographics),
		slog.Int("matched_names", stats.matchedNames),
		slog.Int("malformed_keys", stats.malformedKeys),
	)

	return enriched, nil
}
