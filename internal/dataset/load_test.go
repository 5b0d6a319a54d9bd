package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Header order is deliberately scrambled relative to the struct: the loader
// must resolve columns by name, never by position.
const sampleHeader = "Year,StateAbbr,CityName,GeographicLevel,DataValueTypeID,Data_Value_Type,Data_Value,PopulationCount,GeoLocation,CategoryID,Category,Short_Question_Text,Measure"

const sampleCSV = sampleHeader + "\n" +
	`2017,MO,Kansas City,City,AgeAdjPrv,Age-adjusted prevalence,15.2,481420,"(39.0997, -94.5786)",UNHBEH,Unhealthy Behaviors,Binge Drinking,Binge drinking among adults aged >=18 Years` + "\n" +
	`2017,KS,Wichita,City,AgeAdjPrv,Age-adjusted prevalence,18.9,389902,"(37.6872, -97.3301)",UNHBEH,Unhealthy Behaviors,Current Smoking,Current smoking among adults aged >=18 Years` + "\n" +
	`2017,US,United States,US,AgeAdjPrv,Age-adjusted prevalence,16.4,"308,745,538",,UNHBEH,Unhealthy Behaviors,Binge Drinking,Binge drinking among adults aged >=18 Years` + "\n" +
	`2017,NE,Omaha,City,AgeAdjPrv,Age-adjusted prevalence,,446970,"(41.2565, -95.9345)",UNHBEH,Unhealthy Behaviors,Binge Drinking,Binge drinking among adults aged >=18 Years` + "\n" +
	`2016,CO,Denver,City,CrdPrv,Crude prevalence,20.1,682545,"(39.7392, -104.9903)",HLTHOUT,Health Outcomes,Arthritis,Arthritis among adults aged >=18 Years` + "\n" +
	`,,,,,,,,,,,,` + "\n" +
	`2017,XX,,City,AgeAdjPrv,Age-adjusted prevalence,1.0,1,,UNHBEH,Unhealthy Behaviors,Binge Drinking,Binge drinking among adults aged >=18 Years`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	store, err := Load(writeTempCSV(t, sampleCSV), LoadOptions{})
	require.NoError(t, err)

	t.Run("suppressed rows load, junk rows do not", func(t *testing.T) {
		// 7 data rows: 5 usable (Omaha's suppressed value included), one
		// all-blank, one with no city name.
		assert.Equal(t, 5, store.Len())
		assert.Equal(t, 2, store.SkippedRows())
	})

	t.Run("values parse by column name", func(t *testing.T) {
		kc := store.Records()[0]
		assert.Equal(t, "Kansas City", kc.CityName)
		assert.Equal(t, "MO", kc.StateAbbr)
		assert.Equal(t, 2017, kc.Year)
		assert.Equal(t, "(39.0997, -94.5786)", kc.GeoLocation)
		require.True(t, kc.HasValue())
		assert.Equal(t, 15.2, kc.Value())
		assert.Equal(t, int64(481420), kc.PopulationCount)
		assert.Equal(t, "Binge Drinking", kc.ShortQuestion)
	})

	t.Run("suppressed estimate stays nil", func(t *testing.T) {
		var omaha bool
		for _, r := range store.Records() {
			if r.CityName == "Omaha" {
				omaha = true
				assert.False(t, r.HasValue())
			}
		}
		assert.True(t, omaha)
	})

	t.Run("population tolerates thousands separators", func(t *testing.T) {
		for _, r := range store.Records() {
			if r.CityName == "United States" {
				assert.Equal(t, int64(308745538), r.PopulationCount)
			}
		}
	})

	t.Run("dropdown options with display labels", func(t *testing.T) {
		require.Len(t, store.Categories(), 2)
		assert.Equal(t, Option{ID: "HLTHOUT", Label: "Health Outcomes"}, store.Categories()[0])
		assert.Equal(t, Option{ID: "UNHBEH", Label: "Unhealthy Behaviors"}, store.Categories()[1])

		require.Len(t, store.ValueTypes(), 2)
		assert.Equal(t, "Age-adjusted prevalence", store.ValueTypes()[0].Label)

		assert.Equal(t, []string{"City", "US"}, store.Levels())
		assert.Equal(t, []int{2016, 2017}, store.Years())
	})

	t.Run("membership checks", func(t *testing.T) {
		assert.True(t, store.HasCategory("UNHBEH"))
		assert.False(t, store.HasCategory("NOPE"))
		assert.True(t, store.HasValueType("CrdPrv"))
		assert.False(t, store.HasValueType("NOPE"))
	})
}

func TestLoadCSVWithBOM(t *testing.T) {
	store, err := Load(writeTempCSV(t, "﻿"+sampleCSV), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, 2017, store.Records()[0].Year)
}

func TestLoadGeoLevelRestriction(t *testing.T) {
	store, err := Load(writeTempCSV(t, sampleCSV), LoadOptions{GeoLevel: "City"})
	require.NoError(t, err)

	assert.Equal(t, 4, store.Len())
	assert.Equal(t, []string{"City"}, store.Levels())
	for _, r := range store.Records() {
		assert.Equal(t, "City", r.GeographicLevel)
	}
}

func TestLoadLabelFallback(t *testing.T) {
	// No Category / Data_Value_Type display columns: labels fall back to ids.
	csv := "CityName,StateAbbr,GeoLocation,Year,CategoryID,Measure,Short_Question_Text,DataValueTypeID,Data_Value,PopulationCount,GeographicLevel\n" +
		`Tulsa,OK,"(36.1540, -95.9928)",2017,UNHBEH,Binge drinking,Binge Drinking,AgeAdjPrv,14.1,403090,City`
	store, err := Load(writeTempCSV(t, csv), LoadOptions{})
	require.NoError(t, err)

	require.Len(t, store.Categories(), 1)
	assert.Equal(t, Option{ID: "UNHBEH", Label: "UNHBEH"}, store.Categories()[0])
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		csv := "CityName,StateAbbr,GeoLocation,Year,CategoryID,Measure,DataValueTypeID,GeographicLevel\n" +
			"Tulsa,OK,,2017,UNHBEH,Binge drinking,AgeAdjPrv,City"
		_, err := Load(writeTempCSV(t, csv), LoadOptions{})
		require.Error(t, err)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Contains(t, loadErr.Error(), "missing required columns")
		assert.Contains(t, loadErr.Error(), "Data_Value")
	})

	t.Run("header only", func(t *testing.T) {
		_, err := Load(writeTempCSV(t, sampleHeader), LoadOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one data row")
	})

	t.Run("restriction eats every row", func(t *testing.T) {
		_, err := Load(writeTempCSV(t, sampleCSV), LoadOptions{GeoLevel: "Census Tract"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no data rows")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cities.txt")
		require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))
		_, err := Load(path, LoadOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported dataset format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), LoadOptions{})
		require.Error(t, err)

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
	})
}
