package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMapPoints(t *testing.T) {
	binner, err := NewBinner(DefaultPalette, []float64{10, 20}, 2)
	require.NoError(t, err)

	records := []Record{
		testRecord("Kansas City", "MO", "(39.0997, -94.5786)", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(12.0)),
		testRecord("United States", "US", "", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(16.4)),
		testRecord("Anchorage", "AK", "(61.2181, -149.9003)", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(19.0)),
		testRecord("Nowhere", "XX", "broken cell", "UNHBEH", "AgeAdjPrv", "Binge drinking", fptr(11.0)),
	}

	points, skipped := ToMapPoints(records, binner)

	require.Len(t, points, 2)
	assert.Equal(t, 2, skipped)

	kc := points[0]
	assert.Equal(t, "Kansas City|MO", kc.ID)
	assert.Equal(t, "Kansas City MO", kc.Label)
	assert.Equal(t, 39.0997, kc.Lat)
	assert.Equal(t, -94.5786, kc.Lng)
	assert.Equal(t, 12.0, kc.Value)
	assert.Equal(t, binner.Hex(12.0), kc.Color)

	assert.Equal(t, "Anchorage AK", points[1].Label)
	assert.Equal(t, binner.Hex(19.0), points[1].Color)
	assert.NotEqual(t, points[0].Color, points[1].Color)
}

func TestToTableRows(t *testing.T) {
	records := []Record{
		testRecord("Alpha", "AA", "", "UNHBEH", "AgeAdjPrv", "M", fptr(10)),
		testRecord("Bravo", "BB", "", "UNHBEH", "AgeAdjPrv", "M", fptr(30)),
		testRecord("Charlie", "CC", "", "UNHBEH", "AgeAdjPrv", "M", fptr(30)),
		testRecord("Delta", "DD", "", "UNHBEH", "AgeAdjPrv", "M", fptr(5)),
	}

	got := ToTableRows(records)

	// Descending by value; Bravo before Charlie because the sort is stable.
	want := []TableRow{
		{City: "Bravo", State: "BB", Value: 30, Population: 100000},
		{City: "Charlie", State: "CC", Value: 30, Population: 100000},
		{City: "Alpha", State: "AA", Value: 10, Population: 100000},
		{City: "Delta", State: "DD", Value: 5, Population: 100000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table rows mismatch (-want +got):\n%s", diff)
	}
}

func TestToTableRowsKeepsUnmappableRecords(t *testing.T) {
	// The national rollup row has no coordinate. The map skips it, the
	// table must not.
	records := []Record{
		testRecord("United States", "US", "", "UNHBEH", "AgeAdjPrv", "M", fptr(16.4)),
		testRecord("Kansas City", "MO", "(39.0997, -94.5786)", "UNHBEH", "AgeAdjPrv", "M", fptr(12.0)),
	}

	binner, err := NewBinner(DefaultPalette, []float64{12, 16.4}, 2)
	require.NoError(t, err)

	points, skipped := ToMapPoints(records, binner)
	rows := ToTableRows(records)

	assert.Len(t, points, 1)
	assert.Equal(t, 1, skipped)
	assert.Len(t, rows, 2)
	assert.Equal(t, "United States", rows[0].City)
}

func TestBoundsOf(t *testing.T) {
	t.Run("bounding box with center", func(t *testing.T) {
		points := []MapPoint{
			{Lat: 39.0997, Lng: -94.5786},  // Kansas City
			{Lat: 34.0522, Lng: -118.2437}, // Los Angeles
			{Lat: 40.7128, Lng: -74.0060},  // New York
		}

		vp := BoundsOf(points)
		require.NotNil(t, vp)
		assert.InDelta(t, 34.0522, vp.South, 1e-9)
		assert.InDelta(t, 40.7128, vp.North, 1e-9)
		assert.InDelta(t, -118.2437, vp.West, 1e-9)
		assert.InDelta(t, -74.0060, vp.East, 1e-9)
		assert.Greater(t, vp.CenterLat, vp.South)
		assert.Less(t, vp.CenterLat, vp.North)
		assert.Greater(t, vp.CenterLng, vp.West)
		assert.Less(t, vp.CenterLng, vp.East)
	})

	t.Run("no markers", func(t *testing.T) {
		assert.Nil(t, BoundsOf(nil))
	})
}

func TestNearestPoint(t *testing.T) {
	points := []MapPoint{
		{Label: "Kansas City MO", Lat: 39.0997, Lng: -94.5786},
		{Label: "Los Angeles CA", Lat: 34.0522, Lng: -118.2437},
		{Label: "New York NY", Lat: 40.7128, Lng: -74.0060},
	}

	t.Run("picks the closest marker", func(t *testing.T) {
		got, km, ok := NearestPoint(points, 39.2, -94.6)
		require.True(t, ok)
		assert.Equal(t, "Kansas City MO", got.Label)
		assert.InDelta(t, 11.3, km, 0.5)
	})

	t.Run("works from far away", func(t *testing.T) {
		got, km, ok := NearestPoint(points, 36.17, -115.14) // Las Vegas
		require.True(t, ok)
		assert.Equal(t, "Los Angeles CA", got.Label)
		assert.Greater(t, km, 300.0)
	})

	t.Run("empty marker set", func(t *testing.T) {
		_, _, ok := NearestPoint(nil, 39, -94)
		assert.False(t, ok)
	})
}
