package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnricher_Enrich(t *testing.T) {
	ctx := context.Background()

	demographics := []DemographicAggregate{
		{INSCode: "21001", Population: 183287, WealthIndex: 104.1, Density: 5625.6},
	}
	insToPostal := map[string][]string{
		"21001": {"1000"},
	}
	names := []NameObservation{
		{RawPostalCode: "1000", Name: "Jean", Frequency: 3},
		{RawPostalCode: "1000", Name: "Marie", Frequency: 1},
		{RawPostalCode: "4000", Name: "Luc", Frequency: 2}, // names-only code, retained but unused
	}

	t.Run("partial coverage keeps every row", func(t *testing.T) {
		properties := []PropertyRecord{
			{RawPostalCode: "1000", Price: 300000},
			{RawPostalCode: "9999", Price: 200000},
		}

		enricher := NewEnricher(DefaultOptions(), testLogger())
		records, err := enricher.Enrich(ctx, properties, demographics, insToPostal, names)
		require.NoError(t, err)
		require.Len(t, records, 2)

		first := records[0]
		assert.Equal(t, PostalCode("1000"), first.PostalCode)
		assert.Equal(t, "21001", first.INSCode)
		require.True(t, first.HasDemographics())
		assert.InDelta(t, 104.1, first.Demographics.WealthIndex, 1e-9)
		assert.Equal(t, []NameCount{{Name: "Jean", Count: 3}, {Name: "Marie", Count: 1}}, first.TopNames)

		second := records[1]
		assert.Equal(t, PostalCode("9999"), second.PostalCode)
		assert.False(t, second.HasDemographics())
		assert.Empty(t, second.INSCode)
		assert.Empty(t, second.TopNames)
	})

	t.Run("malformed postal code keeps record with null enrichment", func(t *testing.T) {
		properties := []PropertyRecord{
			{RawPostalCode: "no-digits-here", Price: 150000},
			{RawPostalCode: "1000", Price: 300000},
		}

		enricher := NewEnricher(DefaultOptions(), testLogger())
		records, err := enricher.Enrich(ctx, properties, demographics, insToPostal, names)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Empty(t, records[0].PostalCode)
		assert.False(t, records[0].HasDemographics())
		assert.Empty(t, records[0].TopNames)
		assert.InDelta(t, 150000, records[0].Property.Price, 1e-9)

		assert.True(t, records[1].HasDemographics())
	})

	t.Run("output count always equals input count", func(t *testing.T) {
		for _, size := range []int{0, 1, 7, 100} {
			properties := make([]PropertyRecord, size)
			for i := range properties {
				// Mix valid, unmapped and malformed keys.
				switch i % 3 {
				case 0:
					properties[i].RawPostalCode = "1000"
				case 1:
					properties[i].RawPostalCode = "9999"
				default:
					properties[i].RawPostalCode = "bogus"
				}
			}

			enricher := NewEnricher(DefaultOptions(), testLogger())
			records, err := enricher.Enrich(ctx, properties, demographics, insToPostal, names)
			require.NoError(t, err)
			assert.Len(t, records, size, "size %d", size)
		}
	})

	t.Run("empty inputs are not an error", func(t *testing.T) {
		enricher := NewEnricher(DefaultOptions(), testLogger())
		records, err := enricher.Enrich(ctx, nil, nil, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("name lists never exceed configured top K", func(t *testing.T) {
		var manyNames []NameObservation
		for i := 0; i < 20; i++ {
			manyNames = append(manyNames, NameObservation{
				RawPostalCode: "1000",
				Name:          fmt.Sprintf("Name%d", i),
				Frequency:     i + 1,
			})
		}

		enricher := NewEnricher(Options{KeyWidth: 4, TopNames: 5}, testLogger())
		records, err := enricher.Enrich(ctx,
			[]PropertyRecord{{RawPostalCode: "1000", Price: 1}},
			nil, nil, manyNames)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Len(t, records[0].TopNames, 5)
	})
}
