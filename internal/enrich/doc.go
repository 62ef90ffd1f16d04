// Package enrich implements the listing enrichment pipeline: it canonicalizes
// postal codes, joins demographic aggregates through the INS-code mapping and
// attaches per-postal-code top-name frequency features to every listing.
//
// # Components
//
//   - normalize.go: postal-code key normalization (fixed-width digit strings)
//   - demographic.go: INS-code mapping and demographic joiner
//   - names.go: top-K first-name frequency aggregation
//   - enricher.go, merge.go: pipeline orchestration and the left-join merge
//
// # Join policy
//
// The merge is a left join keyed on the canonical postal code: every property
// record survives, and the output row count always equals the input count.
// Unmapped codes produce nil demographics, codes without name observations
// produce empty name lists, and malformed postal codes keep their record with
// null enrichment. When several INS codes claim the same postal code the
// lowest code wins.
//
// # Usage
//
//	enricher := enrich.NewEnricher(enrich.DefaultOptions(), slog.Default())
//	records, err := enricher.Enrich(ctx, properties, demographics, insToPostal, names)
//	if err != nil {
//	    log.Fatal(err)
//	}
package enrich
