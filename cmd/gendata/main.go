// Command gendata writes a synthetic 500 Cities CSV for local development
// and load testing. It generates city rows for every measure and value
// type, a national rollup row, and a sprinkle of suppressed estimates,
// then loads its own output through the dataset package to prove the file
// ingests cleanly.
//
// Usage:
//
//	go run ./cmd/gendata -out data/cities_sample.csv -cities 40 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
)

type city struct {
	name  string
	state string
	lat   float64
	lng   float64
	pop   int64
}

// The 40 largest cities of the 2010 census, the vintage the 500 Cities
// project drew from.
var cities = []city{
	{"New York", "NY", 40.7128, -74.0060, 8175133},
	{"Los Angeles", "CA", 34.0522, -118.2437, 3792621},
	{"Chicago", "IL", 41.8781, -87.6298, 2695598},
	{"Houston", "TX", 29.7604, -95.3698, 2099451},
	{"Philadelphia", "PA", 39.9526, -75.1652, 1526006},
	{"Phoenix", "AZ", 33.4484, -112.0740, 1445632},
	{"San Antonio", "TX", 29.4241, -98.4936, 1327407},
	{"San Diego", "CA", 32.7157, -117.1611, 1307402},
	{"Dallas", "TX", 32.7767, -96.7970, 1197816},
	{"San Jose", "CA", 37.3382, -121.8863, 945942},
	{"Jacksonville", "FL", 30.3322, -81.6557, 821784},
	{"Indianapolis", "IN", 39.7684, -86.1581, 820445},
	{"San Francisco", "CA", 37.7749, -122.4194, 805235},
	{"Austin", "TX", 30.2672, -97.7431, 790390},
	{"Columbus", "OH", 39.9612, -82.9988, 787033},
	{"Fort Worth", "TX", 32.7555, -97.3308, 741206},
	{"Charlotte", "NC", 35.2271, -80.8431, 731424},
	{"Detroit", "MI", 42.3314, -83.0458, 713777},
	{"El Paso", "TX", 31.7619, -106.4850, 649121},
	{"Memphis", "TN", 35.1495, -90.0490, 646889},
	{"Baltimore", "MD", 39.2904, -76.6122, 620961},
	{"Boston", "MA", 42.3601, -71.0589, 617594},
	{"Seattle", "WA", 47.6062, -122.3321, 608660},
	{"Washington", "DC", 38.9072, -77.0369, 601723},
	{"Nashville", "TN", 36.1627, -86.7816, 601222},
	{"Denver", "CO", 39.7392, -104.9903, 600158},
	{"Louisville", "KY", 38.2527, -85.7585, 597337},
	{"Milwaukee", "WI", 43.0389, -87.9065, 594833},
	{"Portland", "OR", 45.5152, -122.6784, 583776},
	{"Las Vegas", "NV", 36.1699, -115.1398, 583756},
	{"Oklahoma City", "OK", 35.4676, -97.5164, 579999},
	{"Albuquerque", "NM", 35.0844, -106.6504, 545852},
	{"Tucson", "AZ", 32.2226, -110.9747, 520116},
	{"Fresno", "CA", 36.7378, -119.7871, 494665},
	{"Sacramento", "CA", 38.5816, -121.4944, 466488},
	{"Kansas City", "MO", 39.0997, -94.5786, 459787},
	{"Atlanta", "GA", 33.7490, -84.3880, 420003},
	{"Omaha", "NE", 41.2565, -95.9345, 408958},
	{"Miami", "FL", 25.7617, -80.1918, 399457},
	{"Minneapolis", "MN", 44.9778, -93.2650, 382578},
}

type measureDef struct {
	categoryID string
	category   string
	measure    string
	short      string
	base       float64 // typical prevalence in percent
	spread     float64 // city-to-city jitter
}

var measures = []measureDef{
	{"UNHBEH", "Unhealthy Behaviors", "Binge drinking among adults aged >=18 Years", "Binge Drinking", 16.5, 5},
	{"UNHBEH", "Unhealthy Behaviors", "Current smoking among adults aged >=18 Years", "Current Smoking", 17.5, 6},
	{"UNHBEH", "Unhealthy Behaviors", "Sleeping less than 7 hours among adults aged >=18 Years", "Sleep <7 hours", 35, 7},
	{"UNHBEH", "Unhealthy Behaviors", "No leisure-time physical activity among adults aged >=18 Years", "Physical Inactivity", 25, 8},
	{"UNHBEH", "Unhealthy Behaviors", "Obesity among adults aged >=18 Years", "Obesity", 29, 7},
	{"HLTHOUT", "Health Outcomes", "Arthritis among adults aged >=18 Years", "Arthritis", 22, 5},
	{"HLTHOUT", "Health Outcomes", "Current asthma among adults aged >=18 Years", "Current Asthma", 9.3, 2},
	{"HLTHOUT", "Health Outcomes", "Diagnosed diabetes among adults aged >=18 Years", "Diabetes", 10.5, 4},
	{"HLTHOUT", "Health Outcomes", "High blood pressure among adults aged >=18 Years", "High Blood Pressure", 30, 8},
	{"HLTHOUT", "Health Outcomes", "Mental health not good for >=14 days among adults aged >=18 Years", "Mental Health", 12, 3.5},
	{"PREVENT", "Prevention", "Visits to doctor for routine checkup within the past Year among adults aged >=18 Years", "Annual Checkup", 69, 6},
	{"PREVENT", "Prevention", "Visits to dentist or dental clinic among adults aged >=18 Years", "Dental Visit", 62, 10},
	{"PREVENT", "Prevention", "Cholesterol screening among adults aged >=18 Years", "Cholesterol Screening", 74, 5},
}

var valueTypes = []struct {
	id    string
	label string
}{
	{"AgeAdjPrv", "Age-adjusted prevalence"},
	{"CrdPrv", "Crude prevalence"},
}

// suppressionRate is the share of city estimates written with an empty
// Data_Value cell, mimicking the portal's small-population suppression.
const suppressionRate = 0.02

var header = []string{
	"Year", "StateAbbr", "CityName", "GeographicLevel",
	"Category", "CategoryID", "Measure", "Short_Question_Text",
	"Data_Value_Type", "DataValueTypeID", "Data_Value",
	"PopulationCount", "GeoLocation",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	nCities := flag.Int("cities", len(cities), "number of cities to include")
	seed := flag.Int64("seed", 1, "random seed, fixed seeds reproduce the file byte for byte")
	year := flag.Int("year", 2017, "data year")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *nCities < 1 || *nCities > len(cities) {
		return fmt.Errorf("cities must be between 1 and %d", len(cities))
	}

	rng := rand.New(rand.NewSource(*seed))
	rows := buildRows(rng, *nCities, *year)

	if err := writeCSV(*out, rows); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d data rows: %s", len(rows), *out)

	// Round-trip the file through the real loader so a generator bug cannot
	// produce a fixture the service rejects.
	store, err := dataset.Load(*out, dataset.LoadOptions{})
	if err != nil {
		return fmt.Errorf("verifying output: %w", err)
	}
	printStats(store)
	return nil
}

func buildRows(rng *rand.Rand, nCities, year int) [][]string {
	rows := make([][]string, 0, len(measures)*len(valueTypes)*(nCities+1))

	for _, m := range measures {
		type rollup struct {
			sum float64
			n   int
		}
		totals := make([]rollup, len(valueTypes))

		for _, c := range cities[:nCities] {
			// Crude prevalence tracks the age-adjusted estimate with a
			// small demographic offset.
			ageAdj := clamp(m.base+m.spread*(rng.Float64()*2-1), 0.5, 95)
			offsets := []float64{0, 1.5 * (rng.Float64()*2 - 1)}

			for ti, vt := range valueTypes {
				value := ""
				if rng.Float64() >= suppressionRate {
					v := clamp(ageAdj+offsets[ti], 0.5, 95)
					value = formatValue(v)
					totals[ti].sum += v
					totals[ti].n++
				}
				rows = append(rows, []string{
					strconv.Itoa(year), c.state, c.name, "City",
					m.category, m.categoryID, m.measure, m.short,
					vt.label, vt.id, value,
					strconv.FormatInt(c.pop, 10),
					fmt.Sprintf("(%.4f, %.4f)", c.lat, c.lng),
				})
			}
		}

		// National rollup: the mean of the generated city estimates, with
		// no coordinate, the way the portal publishes the US row.
		for ti, vt := range valueTypes {
			value := ""
			if totals[ti].n > 0 {
				value = formatValue(totals[ti].sum / float64(totals[ti].n))
			}
			rows = append(rows, []string{
				strconv.Itoa(year), "US", "United States", "US",
				m.category, m.categoryID, m.measure, m.short,
				vt.label, vt.id, value,
				"308745538", "",
			})
		}
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(store *dataset.Store) {
	records := store.Records()
	suppressed := store.Len() - len(domain.Values(records))
	log.Printf("verified: %d records, %d suppressed, %d measures, %d value types",
		store.Len(), suppressed, len(domain.DistinctMeasures(records)), len(store.ValueTypes()))

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.CategoryID]++
	}
	for _, c := range store.Categories() {
		log.Printf("  %s: %d records", c.Label, counts[c.ID])
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
