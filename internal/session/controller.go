// Package session owns the mutable state of the explorer: one selection per
// session, guarded by a controller, plus a registry that tracks sessions by
// id and expires idle ones.
package session

import (
	"fmt"
	"sync"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
)

// InvalidSelectionError reports an update that refers to something the
// dataset does not contain, or a malformed range. The web layer turns it
// into a 422.
type InvalidSelectionError struct {
	Field string
	Value string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Update is one requested selection change. The zero value clears the
// selection. A nil Range asks for the full observed bounds of whatever
// measure ends up selected; a non-nil Range is only honored when the
// measure did not change in the same update.
type Update struct {
	CategoryID  string             `json:"category"`
	ValueTypeID string             `json:"value_type"`
	Measure     string             `json:"measure"`
	Range       *domain.ValueRange `json:"range,omitempty"`
}

// Controller serializes all selection changes for one session and keeps the
// derived view consistent with the latest selection. Every mutation
// re-derives synchronously before returning, so a reader can never observe
// a view computed from an older selection.
type Controller struct {
	mu      sync.Mutex
	store   *dataset.Store
	deriver *pipeline.Deriver
	sel     domain.Selection
	view    pipeline.View
}

// NewController creates a controller with an empty selection and its
// corresponding (empty but valid) view.
func NewController(store *dataset.Store, deriver *pipeline.Deriver) *Controller {
	c := &Controller{store: store, deriver: deriver}
	c.view = deriver.Derive(c.sel)
	return c
}

// View returns the current derived view.
func (c *Controller) View() pipeline.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Selection returns the current selection.
func (c *Controller) Selection() domain.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Apply validates and applies an update, re-derives, and returns the new
// view. Dependency order is enforced here: a category or value-type change
// invalidates the measure unless it survives under the new scope, and any
// measure change resets the range to the measure's full observed bounds.
// A stale range can therefore never constrain a freshly selected measure.
func (c *Controller) Apply(u Update) (pipeline.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(u)
}

// SetScope selects the category and value type, clearing the measure.
func (c *Controller) SetScope(categoryID, valueTypeID string) (pipeline.View, error) {
	return c.Apply(Update{CategoryID: categoryID, ValueTypeID: valueTypeID})
}

// SetMeasure selects a measure within the current scope.
func (c *Controller) SetMeasure(measure string) (pipeline.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(Update{
		CategoryID:  c.sel.CategoryID,
		ValueTypeID: c.sel.ValueTypeID,
		Measure:     measure,
	})
}

// SetRange narrows the value range for the current measure.
func (c *Controller) SetRange(lo, hi float64) (pipeline.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(Update{
		CategoryID:  c.sel.CategoryID,
		ValueTypeID: c.sel.ValueTypeID,
		Measure:     c.sel.Measure,
		Range:       &domain.ValueRange{Min: lo, Max: hi},
	})
}

func (c *Controller) applyLocked(u Update) (pipeline.View, error) {
	if u.CategoryID != "" && !c.store.HasCategory(u.CategoryID) {
		return pipeline.View{}, &InvalidSelectionError{Field: "category", Value: u.CategoryID}
	}
	if u.ValueTypeID != "" && !c.store.HasValueType(u.ValueTypeID) {
		return pipeline.View{}, &InvalidSelectionError{Field: "value_type", Value: u.ValueTypeID}
	}
	if (u.CategoryID == "") != (u.ValueTypeID == "") {
		return pipeline.View{}, &InvalidSelectionError{Field: "selection", Value: "category and value_type go together"}
	}

	next := domain.Selection{CategoryID: u.CategoryID, ValueTypeID: u.ValueTypeID}
	scopeChanged := next.CategoryID != c.sel.CategoryID || next.ValueTypeID != c.sel.ValueTypeID

	if u.Measure != "" {
		if next.CategoryID == "" {
			return pipeline.View{}, &InvalidSelectionError{Field: "measure", Value: u.Measure}
		}
		scoped := domain.FilterByCategoryAndType(c.store.Records(), next.CategoryID, next.ValueTypeID)
		if !containsString(domain.DistinctMeasures(scoped), u.Measure) {
			return pipeline.View{}, &InvalidSelectionError{Field: "measure", Value: u.Measure}
		}
		next.Measure = u.Measure
	}

	measureChanged := scopeChanged || next.Measure != c.sel.Measure

	switch {
	case next.Measure == "":
		// No measure, no range.
	case measureChanged || u.Range == nil:
		// Fresh measure: the range resets to the full observed bounds
		// regardless of what the update carried.
		next.Range = c.fullBounds(next)
	default:
		if u.Range.Min > u.Range.Max {
			return pipeline.View{}, &InvalidSelectionError{
				Field: "range",
				Value: u.Range.String(),
			}
		}
		next.Range = *u.Range
	}

	c.sel = next
	c.view = c.deriver.Derive(c.sel)
	return c.view, nil
}

// fullBounds computes the observed bounds of the selection's measure. A
// measure with no values keeps the zero range; derivation renders it as an
// empty state.
func (c *Controller) fullBounds(sel domain.Selection) domain.ValueRange {
	scoped := domain.FilterByCategoryAndType(c.store.Records(), sel.CategoryID, sel.ValueTypeID)
	bounds, err := domain.ValueBounds(domain.FilterByMeasure(scoped, sel.Measure))
	if err != nil {
		return domain.ValueRange{}
	}
	return bounds
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
