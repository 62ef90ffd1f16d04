package enrich

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultTopNames is how many names are kept per postal code.
const DefaultTopNames = 5

// Aggregator computes per-postal-code top-K first-name frequency tables.
type Aggregator struct {
	normalizer Normalizer
	topK       int
}

// NewAggregator creates a name aggregator keeping the topK most frequent
// names per postal code. Non-positive topK falls back to DefaultTopNames.
func NewAggregator(normalizer Normalizer, topK int) Aggregator {
	if topK <= 0 {
		topK = DefaultTopNames
	}
	return Aggregator{normalizer: normalizer, topK: topK}
}

// Aggregate groups observations by normalized postal code, counts name
// occurrences within each group and keeps the top K per code, ordered by
// count descending with first-seen tie-break. Observations whose postal code
// fails normalization are dropped; codes with fewer than K distinct names
// yield shorter lists.
func (a Aggregator) Aggregate(observations []NameObservation) NameFrequencyTable {
	type group struct {
		counts map[string]int
		order  []string // first-seen order, the tie-break for equal counts
	}

	groups := make(map[PostalCode]*group)
	for _, obs := range observations {
		pc, err := a.normalizer.Normalize(obs.RawPostalCode)
		if err != nil {
			continue
		}

		g, ok := groups[pc]
		if !ok {
			g = &group{counts: make(map[string]int)}
			groups[pc] = g
		}

		if _, seen := g.counts[obs.Name]; !seen {
			g.order = append(g.order, obs.Name)
		}
		count := obs.Frequency
		if count <= 0 {
			count = 1
		}
		g.counts[obs.Name] += count
	}

	table := make(NameFrequencyTable, len(groups))
	for pc, g := range groups {
		entries := make([]NameCount, 0, len(g.order))
		for _, name := range g.order {
			entries = append(entries, NameCount{Name: name, Count: g.counts[name]})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Count > entries[j].Count
		})
		if len(entries) > a.topK {
			entries = entries[:a.topK]
		}
		table[pc] = entries
	}

	return table
}

// FormatNameCounts renders a name list as the enriched table's text column,
// e.g. "Jean (3), Marie (1)". An empty list renders as an empty string.
func FormatNameCounts(names []NameCount) string {
	parts := make([]string, len(names))
	for i, nc := range names {
		parts[i] = fmt.Sprintf("%s (%d)", nc.Name, nc.Count)
	}
	return strings.Join(parts, ", ")
}

// ParseNameCounts parses the text column written by FormatNameCounts back
// into an ordered name list. Entries that do not follow the "name (count)"
// shape are skipped. Names themselves must not contain ", ", which holds for
// the first-name source.
func ParseNameCounts(text string) []NameCount {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var names []NameCount
	for _, entry := range strings.Split(text, ", ") {
		if !strings.HasSuffix(entry, ")") {
			continue
		}
		open := strings.LastIndex(entry, " (")
		if open < 0 {
			continue
		}
		count, err := strconv.Atoi(entry[open+2 : len(entry)-1])
		if err != nil {
			continue
		}
		names = append(names, NameCount{Name: entry[:open], Count: count})
	}
	return names
}
