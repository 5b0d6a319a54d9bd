package domain

// Record is one health-measure observation: a place, a year, a measure, and
// a statistical type. Field names follow the dataset's column names.
type Record struct {
	CityName        string `json:"city_name"`
	StateAbbr       string `json:"state_abbr"`
	GeoLocation     string `json:"geo_location,omitempty"` // raw "(lat, lng)" cell, parsed only when mapping
	Year            int    `json:"year"`
	CategoryID      string `json:"category_id"`
	Measure         string `json:"measure"`
	ShortQuestion   string `json:"short_question,omitempty"`
	DataValueTypeID string `json:"data_value_type_id"`

	// DataValue is nil when the source cell is empty (suppressed estimate).
	DataValue *float64 `json:"data_value,omitempty"`

	PopulationCount int64  `json:"population_count,omitempty"`
	GeographicLevel string `json:"geographic_level,omitempty"` // "City", "Census Tract", or "US"
}

// HasValue reports whether the record carries a usable data value.
func (r Record) HasValue() bool { return r.DataValue != nil }

// Value returns the data value, or zero for suppressed rows. Callers that
// care about the distinction check HasValue first; the filter pipeline drops
// suppressed rows at its first stage.
func (r Record) Value() float64 {
	if r.DataValue == nil {
		return 0
	}
	return *r.DataValue
}

// Label is the map-marker label, "CityName StateAbbr".
func (r Record) Label() string {
	return r.CityName + " " + r.StateAbbr
}

// Key identifies the place independent of year and measure.
func (r Record) Key() string {
	return r.CityName + "|" + r.StateAbbr
}
