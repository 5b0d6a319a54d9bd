// Command validate runs integrity checks over a 500 Cities CSV or XLSX
// export before it is served: required row fields, prevalence value sanity,
// coordinate parseability, and measure coverage across value types. It exits
// nonzero when any phase fails, so a data refresh can fetch, validate, and
// only then swap the file the explorer serves.
//
// Usage:
//
//	go run ./cmd/validate -data data/500_cities_2017.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
)

// maxUnparseableShare is the tolerated fraction of city rows whose
// GeoLocation cell fails to parse. The service skips such rows one by one;
// a systemic share above this points at a malformed export.
const maxUnparseableShare = 0.05

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	data := flag.String("data", "", "path to the 500 Cities CSV or XLSX export")
	geoLevel := flag.String("geo-level", "", "keep only rows at this GeographicLevel, empty keeps all")
	flag.Parse()

	if *data == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*data, *geoLevel); code != 0 {
		os.Exit(code)
	}
}

func run(path, geoLevel string) int {
	fmt.Println("=== 500 Cities Dataset Validation ===")
	fmt.Println()

	store, err := dataset.Load(path, dataset.LoadOptions{GeoLevel: geoLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	records := store.Records()
	phases := []*phase{
		validateRowIntegrity(records),
		validateValueSanity(records),
		validateCoordinates(records),
		validateMeasureCoverage(records),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d loaded, %d skipped on load\n", store.Len(), store.SkippedRows())

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Row Integrity ──
// Every record the loader kept must carry the fields the filter chain and
// the presenters read.

func validateRowIntegrity(records []domain.Record) *phase {
	p := &phase{name: "Phase 1: Row Integrity (required fields)"}

	for i, r := range records {
		if r.CityName == "" {
			p.errorf("record %d: CityName is empty", i)
		}
		switch {
		case r.StateAbbr == "":
			p.errorf("record %d (%s): StateAbbr is empty", i, r.CityName)
		case len(r.StateAbbr) != 2:
			p.errorf("record %d (%s): StateAbbr %q is not 2 characters", i, r.CityName, r.StateAbbr)
		}
		if r.Year < 2000 {
			p.errorf("record %d (%s): implausible year %d", i, r.CityName, r.Year)
		}
		if r.CategoryID == "" {
			p.errorf("record %d (%s): CategoryID is empty", i, r.CityName)
		}
		if r.Measure == "" {
			p.errorf("record %d (%s): Measure is empty", i, r.CityName)
		}
		if r.DataValueTypeID == "" {
			p.errorf("record %d (%s): DataValueTypeID is empty", i, r.CityName)
		}
		if r.PopulationCount < 0 {
			p.errorf("record %d (%s): negative PopulationCount %d", i, r.CityName, r.PopulationCount)
		}
	}
	return p
}

// ── Phase 2: Value Sanity ──
// All published estimates are prevalence percentages.

func validateValueSanity(records []domain.Record) *phase {
	p := &phase{name: "Phase 2: Value Sanity (prevalence range)"}

	for i, r := range records {
		if !r.HasValue() {
			continue
		}
		v := *r.DataValue
		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.errorf("record %d (%s, %s): value is not finite", i, r.CityName, r.StateAbbr)
			continue
		}
		if v < 0 || v > 100 {
			p.errorf("record %d (%s, %s): value %.1f outside the 0..100 prevalence range",
				i, r.CityName, r.StateAbbr, v)
		}
	}
	return p
}

// ── Phase 3: Coordinates ──
// City rows should carry a parseable GeoLocation inside US bounds. The
// national rollup row publishes none, which is expected.

func validateCoordinates(records []domain.Record) *phase {
	p := &phase{name: "Phase 3: Coordinates (GeoLocation)"}

	var cityRows, unparseable int
	var samples []string
	for i, r := range records {
		if r.GeographicLevel == "US" {
			continue
		}
		cityRows++
		geo, err := domain.ParseGeoLocation(r.GeoLocation)
		if err != nil {
			unparseable++
			if len(samples) < 5 {
				samples = append(samples, fmt.Sprintf("record %d (%s, %s): %v", i, r.CityName, r.StateAbbr, err))
			}
			continue
		}
		// Lower 48 plus Alaska, Hawaii, and the territories.
		if geo.Lat < 17 || geo.Lat > 72 || geo.Lng < -180 || geo.Lng > -60 {
			p.errorf("record %d (%s, %s): coordinate (%g, %g) outside US bounds",
				i, r.CityName, r.StateAbbr, geo.Lat, geo.Lng)
		}
	}

	if cityRows > 0 {
		share := float64(unparseable) / float64(cityRows)
		if share > maxUnparseableShare {
			p.errorf("%d of %d city rows (%.1f%%) have unparseable coordinates, above the %.0f%% tolerance",
				unparseable, cityRows, share*100, maxUnparseableShare*100)
			p.errors = append(p.errors, samples...)
		}
	}
	return p
}

// ── Phase 4: Measure Coverage ──
// Each category, value type, and measure combination needs at least one
// published estimate, and every measure should appear under every value
// type the export declares.

func validateMeasureCoverage(records []domain.Record) *phase {
	p := &phase{name: "Phase 4: Measure Coverage (suppression)"}

	type key struct{ category, valueType, measure string }
	valued := map[key]int{}
	total := map[key]int{}
	typesByMeasure := map[string]map[string]bool{}
	for _, r := range records {
		k := key{r.CategoryID, r.DataValueTypeID, r.Measure}
		total[k]++
		if r.HasValue() {
			valued[k]++
		}
		if typesByMeasure[r.Measure] == nil {
			typesByMeasure[r.Measure] = map[string]bool{}
		}
		typesByMeasure[r.Measure][r.DataValueTypeID] = true
	}

	keys := make([]key, 0, len(total))
	for k := range total {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.category != b.category {
			return a.category < b.category
		}
		if a.valueType != b.valueType {
			return a.valueType < b.valueType
		}
		return a.measure < b.measure
	})

	for _, k := range keys {
		if valued[k] == 0 {
			p.errorf("%s / %s / %q: all %d estimates suppressed", k.category, k.valueType, k.measure, total[k])
		}
	}

	for _, m := range domain.DistinctMeasures(records) {
		for _, vt := range domain.DistinctValueTypes(records) {
			if !typesByMeasure[m][vt] {
				p.errorf("measure %q missing under value type %q", m, vt)
			}
		}
	}
	return p
}
