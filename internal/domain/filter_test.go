package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func testRecord(city, state, geo, category, typ, measure string, value *float64) Record {
	return Record{
		CityName:        city,
		StateAbbr:       state,
		GeoLocation:     geo,
		Year:            2017,
		CategoryID:      category,
		DataValueTypeID: typ,
		Measure:         measure,
		ShortQuestion:   measure,
		DataValue:       value,
		PopulationCount: 100000,
		GeographicLevel: "City",
	}
}

func TestFilterByCategoryAndType(t *testing.T) {
	records := []Record{
		testRecord("Kansas City", "MO", "(39.0997, -94.5786)", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(15.2)),
		testRecord("St. Louis", "MO", "(38.6270, -90.1994)", "UNHBEH", "CrdPrv", "Binge drinking", fptr(16.0)),
		testRecord("Denver", "CO", "(39.7392, -104.9903)", "HLTHOUT", "AgeAdjPrv", "Arthritis", fptr(20.1)),
		testRecord("Omaha", "NE", "(41.2565, -95.9345)", "UNHBEH", "AgeAdjPrv", "Current smoking", nil),
		testRecord("Wichita", "KS", "(37.6872, -97.3301)", "UNHBEH", "AgeAdjPrv", "Current smoking", fptr(18.9)),
	}

	t.Run("keeps only valued records matching both ids", func(t *testing.T) {
		got := FilterByCategoryAndType(records, "UNHBEH", "AgeAdjPrv")
		require.Len(t, got, 2)
		assert.Equal(t, "Kansas City", got[0].CityName)
		assert.Equal(t, "Wichita", got[1].CityName)
	})

	t.Run("suppressed values are dropped even when ids match", func(t *testing.T) {
		got := FilterByCategoryAndType(records, "UNHBEH", "AgeAdjPrv")
		for _, r := range got {
			assert.True(t, r.HasValue())
		}
	})

	t.Run("empty result is valid", func(t *testing.T) {
		assert.Empty(t, FilterByCategoryAndType(records, "PREVENT", "AgeAdjPrv"))
	})
}

func TestFilterByMeasure(t *testing.T) {
	pool := []Record{
		testRecord("Kansas City", "MO", "(39.0997, -94.5786)", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(15.2)),
		testRecord("Wichita", "KS", "(37.6872, -97.3301)", "UNHBEH", "AgeAdjPrv", "Current smoking", fptr(18.9)),
		testRecord("Tulsa", "OK", "(36.1540, -95.9928)", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(14.1)),
	}

	t.Run("exact match", func(t *testing.T) {
		got := FilterByMeasure(pool, "Binge drinking")
		require.Len(t, got, 2)
		assert.Equal(t, "Kansas City", got[0].CityName)
		assert.Equal(t, "Tulsa", got[1].CityName)
	})

	t.Run("case sensitive", func(t *testing.T) {
		assert.Empty(t, FilterByMeasure(pool, "binge drinking"))
	})

	t.Run("no prefix matching", func(t *testing.T) {
		assert.Empty(t, FilterByMeasure(pool, "Binge"))
	})
}

func TestFilterByValueRange(t *testing.T) {
	var pool []Record
	for _, v := range []float64{10, 25, 50, 75, 90} {
		pool = append(pool, testRecord("City", "ST", "", "UNHBEH", "AgeAdjPrv", "M", fptr(v)))
	}

	tests := []struct {
		name string
		lo   float64
		hi   float64
		want []float64
	}{
		{"both bounds exclusive", 10, 90, []float64{25, 50, 75}},
		{"slightly widened keeps everything", 9.9, 90.1, []float64{10, 25, 50, 75, 90}},
		{"zero width keeps nothing", 50, 50, nil},
		{"value on low bound dropped", 25, 91, []float64{50, 75, 90}},
		{"value on high bound dropped", 9, 75, []float64{10, 25, 50}},
		{"inverted range keeps nothing", 90, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByValueRange(pool, tt.lo, tt.hi)
			var values []float64
			for _, r := range got {
				values = append(values, r.Value())
			}
			assert.Equal(t, tt.want, values)
		})
	}
}

func TestDistinctMeasures(t *testing.T) {
	pool := []Record{
		testRecord("A", "AA", "", "UNHBEH", "AgeAdjPrv", "Current smoking", fptr(1)),
		testRecord("B", "BB", "", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(2)),
		testRecord("C", "CC", "", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(3)),
		testRecord("D", "DD", "", "UNHBEH", "AgeAdjPrv", "", fptr(4)),
	}

	got := DistinctMeasures(pool)
	assert.Equal(t, []string{"Binge drinking", "Current smoking"}, got)
}

func TestDistinctYears(t *testing.T) {
	pool := []Record{
		testRecord("A", "AA", "", "UNHBEH", "AgeAdjPrv", "M", fptr(1)),
		testRecord("B", "BB", "", "UNHBEH", "AgeAdjPrv", "M", fptr(2)),
	}
	pool[0].Year = 2017
	pool[1].Year = 2016
	pool = append(pool, Record{CityName: "C", Year: 0})

	assert.Equal(t, []int{2016, 2017}, DistinctYears(pool))
}
