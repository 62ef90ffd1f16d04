package enrich

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_Aggregate(t *testing.T) {
	a := NewAggregator(NewNormalizer(4), 5)

	t.Run("counts and orders by frequency descending", func(t *testing.T) {
		table := a.Aggregate([]NameObservation{
			{RawPostalCode: "1000", Name: "Jean", Frequency: 3},
			{RawPostalCode: "1000", Name: "Marie", Frequency: 1},
		})

		require.Contains(t, table, PostalCode("1000"))
		assert.Equal(t, []NameCount{{Name: "Jean", Count: 3}, {Name: "Marie", Count: 1}}, table["1000"])
	})

	t.Run("repeated observations accumulate", func(t *testing.T) {
		table := a.Aggregate([]NameObservation{
			{RawPostalCode: "1000", Name: "Jean", Frequency: 2},
			{RawPostalCode: "1000", Name: "Jean", Frequency: 3},
		})

		assert.Equal(t, []NameCount{{Name: "Jean", Count: 5}}, table["1000"])
	})

	t.Run("non positive frequency counts once", func(t *testing.T) {
		table := a.Aggregate([]NameObservation{
			{RawPostalCode: "1000", Name: "Jean"},
			{RawPostalCode: "1000", Name: "Jean"},
		})

		assert.Equal(t, []NameCount{{Name: "Jean", Count: 2}}, table["1000"])
	})

	t.Run("ties keep first seen order", func(t *testing.T) {
		table := a.Aggregate([]NameObservation{
			{RawPostalCode: "1000", Name: "Luc", Frequency: 2},
			{RawPostalCode: "1000", Name: "Anna", Frequency: 2},
			{RawPostalCode: "1000", Name: "Jean", Frequency: 7},
		})

		assert.Equal(t, []NameCount{
			{Name: "Jean", Count: 7},
			{Name: "Luc", Count: 2},
			{Name: "Anna", Count: 2},
		}, table["1000"])
	})

	t.Run("truncates to top five", func(t *testing.T) {
		var obs []NameObservation
		for i := 0; i < 8; i++ {
			obs = append(obs, NameObservation{
				RawPostalCode: "1000",
				Name:          fmt.Sprintf("Name%d", i),
				Frequency:     10 - i,
			})
		}

		table := a.Aggregate(obs)
		require.Len(t, table["1000"], 5)
		for i := 1; i < len(table["1000"]); i++ {
			assert.GreaterOrEqual(t, table["1000"][i-1].Count, table["1000"][i].Count)
		}
	})

	t.Run("groups by normalized code", func(t *testing.T) {
		table := a.Aggregate([]NameObservation{
			{RawPostalCode: "83", Name: "Jean", Frequency: 1},
			{RawPostalCode: "0083", Name: "Jean", Frequency: 1},
		})

		assert.Equal(t, []NameCount{{Name: "Jean", Count: 2}}, table["0083"])
	})

	t.Run("malformed codes are dropped", func(t *testing.T) {
		table := a.Aggregate([]NameObservation{
			{RawPostalCode: "none", Name: "Jean", Frequency: 1},
		})

		assert.Empty(t, table)
	})
}

func TestNameCounts_TextRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		names []NameCount
		text  string
	}{
		{
			name:  "two names",
			names: []NameCount{{Name: "Jean", Count: 3}, {Name: "Marie", Count: 1}},
			text:  "Jean (3), Marie (1)",
		},
		{
			name:  "name containing a space",
			names: []NameCount{{Name: "Jean Pierre", Count: 2}},
			text:  "Jean Pierre (2)",
		},
		{
			name:  "empty list",
			names: nil,
			text:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, FormatNameCounts(tt.names))
			assert.Equal(t, tt.names, ParseNameCounts(tt.text))
		})
	}
}

func TestParseNameCounts_SkipsMalformedEntries(t *testing.T) {
	got := ParseNameCounts("Jean (3), not-a-pair, Marie (1)")
	assert.Equal(t, []NameCount{{Name: "Jean", Count: 3}, {Name: "Marie", Count: 1}}, got)
}

func TestNewAggregator_DefaultTopK(t *testing.T) {
	a := NewAggregator(NewNormalizer(4), 0)

	var obs []NameObservation
	for i := 0; i < 10; i++ {
		obs = append(obs, NameObservation{
			RawPostalCode: "1000",
			Name:          fmt.Sprintf("Name%d", i),
			Frequency:     i + 1,
		})
	}

	table := a.Aggregate(obs)
	assert.Len(t, table["1000"], DefaultTopNames)
}
