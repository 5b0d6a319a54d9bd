package domain

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
)

// ErrNoValues means a record set carried no usable data values, so bounds
// and summaries cannot be computed. An empty result is a valid explorer
// state, not a failure; callers render "no data" instead of erroring out.
var ErrNoValues = errors.New("no records with data values")

// Summary describes the distribution of a filtered value set.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// Values extracts the data values of the records that have one, preserving
// order. After the first filter stage this is every record.
func Values(records []Record) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if r.HasValue() {
			out = append(out, r.Value())
		}
	}
	return out
}

// ValueBounds returns the observed min and max over the records' data
// values. These bounds seed the range slider whenever the measure changes.
// Returns ErrNoValues when no record carries a value.
func ValueBounds(records []Record) (ValueRange, error) {
	values := Values(records)
	if len(values) == 0 {
		return ValueRange{}, ErrNoValues
	}
	mn, err := stats.Min(values)
	if err != nil {
		return ValueRange{}, fmt.Errorf("value bounds: %w", err)
	}
	mx, err := stats.Max(values)
	if err != nil {
		return ValueRange{}, fmt.Errorf("value bounds: %w", err)
	}
	return ValueRange{Min: mn, Max: mx}, nil
}

// Summarize computes distribution statistics over the records' data values.
// Returns ErrNoValues for an empty set.
func Summarize(records []Record) (Summary, error) {
	values := Values(records)
	if len(values) == 0 {
		return Summary{}, ErrNoValues
	}

	s := Summary{Count: len(values)}
	var err error
	if s.Min, err = stats.Min(values); err != nil {
		return Summary{}, fmt.Errorf("summarize min: %w", err)
	}
	if s.Max, err = stats.Max(values); err != nil {
		return Summary{}, fmt.Errorf("summarize max: %w", err)
	}
	if s.Mean, err = stats.Mean(values); err != nil {
		return Summary{}, fmt.Errorf("summarize mean: %w", err)
	}
	if s.Median, err = stats.Median(values); err != nil {
		return Summary{}, fmt.Errorf("summarize median: %w", err)
	}
	if s.P25, err = stats.Percentile(values, 25); err != nil {
		return Summary{}, fmt.Errorf("summarize p25: %w", err)
	}
	if s.P75, err = stats.Percentile(values, 75); err != nil {
		return Summary{}, fmt.Errorf("summarize p75: %w", err)
	}
	return s, nil
}
