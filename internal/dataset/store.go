// Package dataset loads the 500 Cities export into an immutable in-memory
// store. Loading happens once at startup; everything downstream derives
// views from the same record slice without copying it.
package dataset

import (
	"sort"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
)

// Option is one dropdown choice: the raw dataset id plus a display label.
// The label falls back to the id when the export lacks the display column.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Store is the loaded dataset. It is built once by Load and never mutated
// afterwards, which is what lets session controllers share it without locks.
// Records returns the backing slice directly; callers must treat it as
// read-only.
type Store struct {
	records     []domain.Record
	categories  []Option
	valueTypes  []Option
	levels      []string
	years       []int
	path        string
	skippedRows int
}

func newStore(records []domain.Record, path string, skipped int, labels labelIndex) *Store {
	return &Store{
		records:     records,
		categories:  buildOptions(domain.DistinctCategories(records), labels.categories),
		valueTypes:  buildOptions(domain.DistinctValueTypes(records), labels.valueTypes),
		levels:      domain.DistinctLevels(records),
		years:       domain.DistinctYears(records),
		path:        path,
		skippedRows: skipped,
	}
}

func buildOptions(ids []string, labels map[string]string) []Option {
	out := make([]Option, 0, len(ids))
	for _, id := range ids {
		label := labels[id]
		if label == "" {
			label = id
		}
		out = append(out, Option{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Records returns every loaded record. Read-only by convention.
func (s *Store) Records() []domain.Record { return s.records }

// Len returns the number of loaded records.
func (s *Store) Len() int { return len(s.records) }

// Categories returns the category dropdown options, sorted by label.
func (s *Store) Categories() []Option { return s.categories }

// ValueTypes returns the statistical-type dropdown options, sorted by label.
func (s *Store) ValueTypes() []Option { return s.valueTypes }

// Levels returns the geographic levels present in the load.
func (s *Store) Levels() []string { return s.levels }

// Years returns the observation years present in the load.
func (s *Store) Years() []int { return s.years }

// Path returns the file the store was loaded from.
func (s *Store) Path() string { return s.path }

// SkippedRows returns how many data rows were dropped during the load.
func (s *Store) SkippedRows() int { return s.skippedRows }

// HasCategory reports whether the id is a loadable category.
func (s *Store) HasCategory(id string) bool { return hasOption(s.categories, id) }

// HasValueType reports whether the id is a loadable statistical type.
func (s *Store) HasValueType(id string) bool { return hasOption(s.valueTypes, id) }

func hasOption(opts []Option, id string) bool {
	for _, o := range opts {
		if o.ID == id {
			return true
		}
	}
	return false
}
