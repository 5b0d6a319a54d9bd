package domain

import "fmt"

// ValueRange is a closed interval of observed data values. When used as a
// filter the bounds are exclusive; see FilterByValueRange.
type ValueRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max-Min.
func (v ValueRange) Span() float64 { return v.Max - v.Min }

func (v ValueRange) String() string {
	return fmt.Sprintf("(%g, %g)", v.Min, v.Max)
}

// Selection is the user's current filter state. The fields form a dependency
// chain: CategoryID and ValueTypeID scope which measures exist, Measure
// scopes which values exist, and Range narrows those values. Whenever an
// upstream field changes, everything downstream must be recomputed; in
// particular Range is only meaningful for the measure it was derived from
// and must never survive a measure change.
type Selection struct {
	CategoryID  string     `json:"category"`
	ValueTypeID string     `json:"value_type"`
	Measure     string     `json:"measure,omitempty"`
	Range       ValueRange `json:"range"`
}

// Scoped reports whether the two upstream dropdowns are set, i.e. whether
// the record pool and measure list can be derived.
func (s Selection) Scoped() bool {
	return s.CategoryID != "" && s.ValueTypeID != ""
}

// Complete reports whether the selection pins a measure and can therefore
// produce values, bins, and rendered output.
func (s Selection) Complete() bool {
	return s.Scoped() && s.Measure != ""
}
