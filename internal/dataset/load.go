package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
)

// Column names as published in the 500 Cities export. The loader resolves
// them by header name, never by position, because column order differs
// between the portal's CSV and Excel downloads.
const (
	colCityName      = "CityName"
	colStateAbbr     = "StateAbbr"
	colGeoLocation   = "GeoLocation"
	colYear          = "Year"
	colCategoryID    = "CategoryID"
	colMeasure       = "Measure"
	colShortQuestion = "Short_Question_Text"
	colValueTypeID   = "DataValueTypeID"
	colDataValue     = "Data_Value"
	colPopulation    = "PopulationCount"
	colGeoLevel      = "GeographicLevel"

	// Optional display columns. Loads without them still work; dropdown
	// labels then fall back to the raw ids.
	colCategoryLabel  = "Category"
	colValueTypeLabel = "Data_Value_Type"
)

var requiredColumns = []string{
	colCityName,
	colStateAbbr,
	colGeoLocation,
	colYear,
	colCategoryID,
	colMeasure,
	colShortQuestion,
	colValueTypeID,
	colDataValue,
	colPopulation,
	colGeoLevel,
}

// LoadError reports a failed dataset ingestion. Loading is all-or-nothing:
// a process that sees a LoadError has no store and cannot serve, unlike the
// per-record coordinate failures the derivation pipeline tolerates.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadOptions tune the ingestion.
type LoadOptions struct {
	// GeoLevel restricts the load to one geographic level ("City", "US",
	// "Census Tract") when non-empty. Tract-level exports are an order of
	// magnitude larger than the city rows most deployments care about.
	GeoLevel string
}

// Load ingests a dataset file into a Store. The reader is chosen by file
// extension: .csv for the portal's CSV export, .xlsx for the Excel one.
func Load(path string, opts LoadOptions) (*Store, error) {
	var (
		table *rawTable
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		table, err = readCSV(path)
	case ".xlsx":
		table, err = readXLSX(path)
	default:
		err = fmt.Errorf("unsupported dataset format %q", ext)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	store, err := buildStore(table, path, opts)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return store, nil
}

// rawTable is the format-independent shape both readers produce. Rows may
// be ragged; cell() treats missing trailing cells as empty.
type rawTable struct {
	header []string
	rows   [][]string
}

func (t *rawTable) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

type labelIndex struct {
	categories map[string]string
	valueTypes map[string]string
}

func buildStore(table *rawTable, path string, opts LoadOptions) (*Store, error) {
	colIdx := make(map[string]int, len(table.header))
	for i, name := range table.header {
		colIdx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	idx := func(name string) int {
		i, ok := colIdx[name]
		if !ok {
			return -1
		}
		return i
	}

	labels := labelIndex{
		categories: make(map[string]string),
		valueTypes: make(map[string]string),
	}

	records := make([]domain.Record, 0, len(table.rows))
	skipped := 0
	for _, row := range table.rows {
		if isBlankRow(row) {
			skipped++
			continue
		}

		rec := domain.Record{
			CityName:        table.cell(row, idx(colCityName)),
			StateAbbr:       table.cell(row, idx(colStateAbbr)),
			GeoLocation:     table.cell(row, idx(colGeoLocation)),
			Year:            parseIntOrZero(table.cell(row, idx(colYear))),
			CategoryID:      table.cell(row, idx(colCategoryID)),
			Measure:         table.cell(row, idx(colMeasure)),
			ShortQuestion:   table.cell(row, idx(colShortQuestion)),
			DataValueTypeID: table.cell(row, idx(colValueTypeID)),
			DataValue:       parseFloatOrNil(table.cell(row, idx(colDataValue))),
			PopulationCount: parsePopulation(table.cell(row, idx(colPopulation))),
			GeographicLevel: table.cell(row, idx(colGeoLevel)),
		}
		if rec.CityName == "" || rec.CategoryID == "" {
			skipped++
			continue
		}
		if opts.GeoLevel != "" && rec.GeographicLevel != opts.GeoLevel {
			skipped++
			continue
		}

		if label := table.cell(row, idx(colCategoryLabel)); label != "" {
			labels.categories[rec.CategoryID] = label
		}
		if label := table.cell(row, idx(colValueTypeLabel)); label != "" {
			labels.valueTypes[rec.DataValueTypeID] = label
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return newStore(records, path, skipped, labels), nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseIntOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// parseFloatOrNil distinguishes a real zero from a suppressed estimate.
func parseFloatOrNil(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parsePopulation tolerates the thousands separators some exports carry.
func parsePopulation(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
