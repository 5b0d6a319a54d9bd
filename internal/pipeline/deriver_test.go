package pipeline_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/observability"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
)

const (
	bingeMeasure   = "Binge drinking among adults aged >=18 Years"
	smokingMeasure = "Current smoking among adults aged >=18 Years"
)

const explorerCSV = "CityName,StateAbbr,GeoLocation,Year,CategoryID,Category,Measure,Short_Question_Text,DataValueTypeID,Data_Value,PopulationCount,GeographicLevel\n" +
	`Kansas City,MO,"(39.0997, -94.5786)",2017,UNHBEH,Unhealthy Behaviors,` + bingeMeasure + `,Binge Drinking,AgeAdjPrv,12.5,481420,City` + "\n" +
	`Denver,CO,"(39.7392, -104.9903)",2017,UNHBEH,Unhealthy Behaviors,` + bingeMeasure + `,Binge Drinking,AgeAdjPrv,45.0,682545,City` + "\n" +
	`Anchorage,AK,"(61.2181, -149.9003)",2017,UNHBEH,Unhealthy Behaviors,` + bingeMeasure + `,Binge Drinking,AgeAdjPrv,80.0,291826,City` + "\n" +
	`United States,US,,2017,UNHBEH,Unhealthy Behaviors,` + bingeMeasure + `,Binge Drinking,AgeAdjPrv,16.4,308745538,US` + "\n" +
	`Wichita,KS,"(37.6872, -97.3301)",2017,UNHBEH,Unhealthy Behaviors,` + smokingMeasure + `,Current Smoking,AgeAdjPrv,18.9,389902,City` + "\n" +
	`St. Louis,MO,"(38.6270, -90.1994)",2017,UNHBEH,Unhealthy Behaviors,` + bingeMeasure + `,Binge Drinking,CrdPrv,16.0,311404,City` + "\n" +
	`Tulsa,OK,"(36.1540, -95.9928)",2017,HLTHOUT,Health Outcomes,Arthritis among adults aged >=18 Years,Arthritis,AgeAdjPrv,24.3,403090,City` + "\n" +
	`Omaha,NE,"(41.2565, -95.9345)",2017,UNHBEH,Unhealthy Behaviors,` + bingeMeasure + `,Binge Drinking,AgeAdjPrv,,446970,City`

func newTestStore(t *testing.T) *dataset.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(explorerCSV), 0o644))
	store, err := dataset.Load(path, dataset.LoadOptions{})
	require.NoError(t, err)
	return store
}

func newTestDeriver(t *testing.T) *pipeline.Deriver {
	t.Helper()
	return pipeline.New(newTestStore(t), domain.DefaultPalette, 6, slog.Default(), observability.NewMetricsForTesting())
}

func TestDeriver_EmptySelection(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2019, time.March, 4, 12, 0, 0, 0, time.UTC))
	pipeline.SetClock(fakeClock)
	defer pipeline.SetClock(nil)

	view := newTestDeriver(t).Derive(domain.Selection{})

	assert.Empty(t, view.Measures)
	assert.NotNil(t, view.Points)
	assert.Empty(t, view.Points)
	assert.NotNil(t, view.Table)
	assert.Empty(t, view.Table)
	assert.Nil(t, view.Bounds)
	assert.Nil(t, view.Viewport)
	assert.Nil(t, view.Summary)
	assert.Zero(t, view.Matched)
	assert.Equal(t, fakeClock.Now(), view.DerivedAt)
}

func TestDeriver_ScopedSelectionListsMeasures(t *testing.T) {
	view := newTestDeriver(t).Derive(domain.Selection{
		CategoryID:  "UNHBEH",
		ValueTypeID: "AgeAdjPrv",
	})

	// Sorted, deduplicated, and scoped: the CrdPrv and HLTHOUT measures
	// must not leak in.
	assert.Equal(t, []string{bingeMeasure, smokingMeasure}, view.Measures)
	assert.Nil(t, view.Bounds)
	assert.Empty(t, view.Points)
}

func TestDeriver_FullSelection(t *testing.T) {
	d := newTestDeriver(t)
	view := d.Derive(domain.Selection{
		CategoryID:  "UNHBEH",
		ValueTypeID: "AgeAdjPrv",
		Measure:     bingeMeasure,
		Range:       domain.ValueRange{Min: 10, Max: 90},
	})

	require.NotNil(t, view.Bounds)
	assert.Equal(t, domain.ValueRange{Min: 12.5, Max: 80}, *view.Bounds)

	// Four valued binge records sit inside (10, 90); the suppressed Omaha
	// row never reaches this stage.
	assert.Equal(t, 4, view.Matched)
	assert.Equal(t, 3, view.Rendered)
	assert.Equal(t, 1, view.SkippedCoords)

	require.Len(t, view.Table, 4)
	assert.Equal(t, "Anchorage", view.Table[0].City)
	assert.Equal(t, 80.0, view.Table[0].Value)
	assert.Equal(t, "Kansas City", view.Table[3].City)

	// The national rollup row has no coordinate: absent from the map,
	// present in the table.
	var rolledUp bool
	for _, row := range view.Table {
		if row.City == "United States" {
			rolledUp = true
		}
	}
	assert.True(t, rolledUp)
	for _, p := range view.Points {
		assert.NotEqual(t, "United States US", p.Label)
	}

	require.NotNil(t, view.Viewport)
	assert.InDelta(t, 39.0997, view.Viewport.South, 1e-6)
	assert.InDelta(t, 61.2181, view.Viewport.North, 1e-6)
	assert.InDelta(t, -149.9003, view.Viewport.West, 1e-6)

	require.Len(t, view.Legend, 6)
	total := 0
	for _, e := range view.Legend {
		total += e.Count
	}
	assert.Equal(t, view.Matched, total)

	require.NotNil(t, view.Summary)
	assert.Equal(t, 4, view.Summary.Count)
	assert.Equal(t, 12.5, view.Summary.Min)
	assert.Equal(t, 80.0, view.Summary.Max)
}

func TestDeriver_RangeBoundsAreExclusive(t *testing.T) {
	d := newTestDeriver(t)

	// Range pinned exactly to the observed bounds: the records sitting on
	// the bounds drop out, matching the original explorer's slider.
	view := d.Derive(domain.Selection{
		CategoryID:  "UNHBEH",
		ValueTypeID: "AgeAdjPrv",
		Measure:     bingeMeasure,
		Range:       domain.ValueRange{Min: 12.5, Max: 80},
	})

	assert.Equal(t, 2, view.Matched) // Denver 45.0 and the US row 16.4
	assert.Equal(t, 1, view.Rendered)
	require.Len(t, view.Table, 2)
	assert.Equal(t, "Denver", view.Table[0].City)
	assert.Equal(t, "United States", view.Table[1].City)

	// Bounds describe the measure, not the narrowed range.
	require.NotNil(t, view.Bounds)
	assert.Equal(t, domain.ValueRange{Min: 12.5, Max: 80}, *view.Bounds)
}

func TestDeriver_EmptyResultIsValid(t *testing.T) {
	d := newTestDeriver(t)

	t.Run("range excludes everything", func(t *testing.T) {
		view := d.Derive(domain.Selection{
			CategoryID:  "UNHBEH",
			ValueTypeID: "AgeAdjPrv",
			Measure:     bingeMeasure,
			Range:       domain.ValueRange{Min: 81, Max: 99},
		})
		assert.Zero(t, view.Matched)
		assert.NotNil(t, view.Points)
		assert.Empty(t, view.Points)
		assert.Nil(t, view.Viewport)
		assert.Nil(t, view.Summary)
		require.NotNil(t, view.Bounds)
	})

	t.Run("unknown measure", func(t *testing.T) {
		view := d.Derive(domain.Selection{
			CategoryID:  "UNHBEH",
			ValueTypeID: "AgeAdjPrv",
			Measure:     "No such measure",
		})
		assert.Nil(t, view.Bounds)
		assert.Empty(t, view.Points)
		assert.NotEmpty(t, view.Measures)
	})

	t.Run("unknown category", func(t *testing.T) {
		view := d.Derive(domain.Selection{CategoryID: "NOPE", ValueTypeID: "AgeAdjPrv"})
		assert.Empty(t, view.Measures)
	})
}

func TestDeriver_TypeIsolation(t *testing.T) {
	// The same measure under CrdPrv carries different values; the
	// AgeAdjPrv view must not include them.
	view := newTestDeriver(t).Derive(domain.Selection{
		CategoryID:  "UNHBEH",
		ValueTypeID: "CrdPrv",
		Measure:     bingeMeasure,
		Range:       domain.ValueRange{Min: 0, Max: 100},
	})

	assert.Equal(t, 1, view.Matched)
	require.Len(t, view.Table, 1)
	assert.Equal(t, "St. Louis", view.Table[0].City)
	require.NotNil(t, view.Bounds)
	assert.Equal(t, domain.ValueRange{Min: 16, Max: 16}, *view.Bounds)
}
