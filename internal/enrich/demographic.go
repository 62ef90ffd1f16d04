package enrich

import (
	"sort"
	"strconv"
)

// CodeMapping relates administrative statistical codes (INS codes) to the
// postal codes they cover. Member postal codes are normalized exactly once,
// at construction; entries whose postal code fails normalization are skipped.
type CodeMapping struct {
	byPostal map[PostalCode][]string
}

// NewCodeMapping builds a mapping from the raw INS-code → postal-codes table
// (the shape of the ins-to-postal JSON source).
func NewCodeMapping(raw map[string][]string, normalizer Normalizer) *CodeMapping {
	byPostal := make(map[PostalCode][]string)
	for insCode, postals := range raw {
		for _, p := range postals {
			pc, err := normalizer.Normalize(p)
			if err != nil {
				continue
			}
			byPostal[pc] = append(byPostal[pc], insCode)
		}
	}

	// A postal code can be claimed by several INS codes. Keep the candidate
	// lists deterministically ordered (numerically ascending) so the joiner's
	// lowest-code tie-break is stable across runs.
	for pc := range byPostal {
		codes := byPostal[pc]
		sort.Slice(codes, func(i, j int) bool {
			return lessINSCode(codes[i], codes[j])
		})
	}

	return &CodeMapping{byPostal: byPostal}
}

// Resolve returns the INS codes mapped to a postal code, lowest first.
func (m *CodeMapping) Resolve(pc PostalCode) []string {
	return m.byPostal[pc]
}

// Len returns the number of distinct postal codes in the mapping.
func (m *CodeMapping) Len() int {
	return len(m.byPostal)
}

// lessINSCode orders INS codes numerically when both parse as integers,
// falling back to lexicographic order otherwise.
func lessINSCode(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}

// Joiner resolves canonical postal codes to demographic aggregates through
// the INS-code mapping. Lookups never fail: unmapped codes report a miss
// that downstream stages represent as null demographic fields.
type Joiner struct {
	mapping *CodeMapping
	byINS   map[string]DemographicAggregate
}

// NewJoiner creates a joiner over the given mapping and demographic rows.
// When several rows share an INS code, the first one wins.
func NewJoiner(mapping *CodeMapping, demographics []DemographicAggregate) *Joiner {
	byINS := make(map[string]DemographicAggregate, len(demographics))
	for _, d := range demographics {
		if _, exists := byINS[d.INSCode]; !exists {
			byINS[d.INSCode] = d
		}
	}
	return &Joiner{mapping: mapping, byINS: byINS}
}

// Lookup resolves a postal code to its demographic aggregate. When the
// mapping yields several INS codes the lowest code that has demographic data
// wins. The second return reports whether a match was found.
func (j *Joiner) Lookup(pc PostalCode) (DemographicAggregate, bool) {
	for _, insCode := range j.mapping.Resolve(pc) {
		if agg, ok := j.byINS[insCode]; ok {
			return agg, true
		}
	}
	return DemographicAggregate{}, false
}
