package enrich

import (
	"context"
	"log/slog"
)

// mergeStats counts join outcomes for pipeline logging.
type mergeStats struct {
	matchedDemographics int
	matchedNames        int
	malformedKeys       int
}

// merge left-joins demographic and name data onto every property record.
// Every input row survives: output length equals input length exactly.
func (e *Enricher) merge(
	ctx context.Context,
	properties []PropertyRecord,
	joiner *Joiner,
	nameTable NameFrequencyTable,
) ([]EnrichedRecord, mergeStats) {
	enriched := make([]EnrichedRecord, 0, len(properties))
	var stats mergeStats

	for i, prop := range properties {
		record := EnrichedRecord{Property: prop}

		pc, err := e.normalizer.Normalize(prop.RawPostalCode)
		if err != nil {
			// Row-local failure: the record is excluded from keyed joins but
			// stays in the output with null enrichment.
			stats.malformedKeys++
			e.logger.WarnContext(ctx, "malformed postal code, keeping record without enrichment",
				slog.Int("row", i),
				slog.String("raw_postal_code", prop.RawPostalCode),
			)
			enriched = append(enriched, record)
			continue
		}
		record.PostalCode = pc

		if agg, ok := joiner.Lookup(pc); ok {
			record.INSCode = agg.INSCode
			record.Demographics = &agg
			stats.matchedDemographics++
		}

		if topNames, ok := nameTable[pc]; ok && len(topNames) > 0 {
			record.TopNames = topNames
			stats.matchedNames++
		}

		enriched = append(enriched, record)
	}

	return enriched, stats
}
