package enrich

// PostalCode is the canonical join key: a fixed-width, zero-padded digit
// string. Every PostalCode used downstream has passed through a Normalizer
// exactly once.
type PostalCode string

// PropertyRecord represents a single raw listing as handed over by the
// upstream loader. The postal code is kept in its raw form; normalization
// happens exactly once, inside the enrichment pipeline.
type PropertyRecord struct {
	RawPostalCode      string  `csv:"postal_code"`
	Price              float64 `csv:"price" validate:"gt=0"`
	Bedrooms           int     `csv:"bedrooms" validate:"gte=0"`
	LivingArea         float64 `csv:"living_area" validate:"gte=0"`
	PlotSurface        float64 `csv:"plot_surface" validate:"gte=0"`
	HasTerrace         bool    `csv:"has_terrace"`
	TerraceSurface     float64 `csv:"terrace_surface" validate:"gte=0"`
	HasGarden          bool    `csv:"has_garden"`
	GardenSurface      float64 `csv:"garden_surface" validate:"gte=0"`
	Facades            int     `csv:"facades" validate:"gte=0"`
	BuildingCondition  int     `csv:"building_condition" validate:"gte=0"`
	HasPool            bool    `csv:"has_pool"`
	HasEquippedKitchen bool    `csv:"has_equipped_kitchen"`
}

// DemographicAggregate holds the per-INS-code statistics attached to a
// listing through its postal code. Immutable once loaded.
type DemographicAggregate struct {
	INSCode     string  `csv:"ins_code"`
	Population  float64 `csv:"population"`
	WealthIndex float64 `csv:"wealth_index"`
	Density     float64 `csv:"density"`
}

// NameObservation is one row of the first-names source: a postal code, a
// first name and how often it occurs there. A non-positive frequency counts
// as a single occurrence.
type NameObservation struct {
	RawPostalCode string
	Name          string
	Frequency     int
}

// NameCount is one (name, count) entry of a postal code's top-names list.
type NameCount struct {
	Name  string
	Count int
}

// NameFrequencyTable maps canonical postal codes to their top names, ordered
// by count descending with first-seen tie-break. Lists never exceed the
// aggregator's top-K setting.
type NameFrequencyTable map[PostalCode][]NameCount

// EnrichedRecord is a PropertyRecord joined with its demographic aggregate
// (nil when the code is unmapped) and its ordered name list (possibly empty).
// PostalCode is empty when the raw code failed normalization.
type EnrichedRecord struct {
	Property     PropertyRecord
	PostalCode   PostalCode
	INSCode      string
	Demographics *DemographicAggregate
	TopNames     []NameCount
}

// HasDemographics reports whether the record resolved to a demographic
// aggregate.
func (r EnrichedRecord) HasDemographics() bool {
	return r.Demographics != nil
}
