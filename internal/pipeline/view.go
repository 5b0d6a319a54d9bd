// Package pipeline derives explorer views from the loaded dataset. A view
// is everything one selection renders to: measure options, map markers,
// table rows, legend, and summary. Derivation is synchronous and always
// runs the full chain, so a view can never mix state from two selections.
package pipeline

import (
	"time"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
)

// View is one fully derived snapshot for a selection. Empty collections
// marshal as [] rather than null so frontends can iterate without guards.
type View struct {
	Selection domain.Selection `json:"selection"`

	// Measures available under the selected category and value type. The
	// frontend repopulates its measure dropdown from this on every view.
	Measures []string `json:"measures"`

	// Bounds is the observed value range of the selected measure, nil
	// until a measure with values is selected.
	Bounds *domain.ValueRange `json:"bounds,omitempty"`

	Points   []domain.MapPoint    `json:"points"`
	Viewport *domain.Viewport     `json:"viewport,omitempty"`
	Table    []domain.TableRow    `json:"table"`
	Legend   []domain.LegendEntry `json:"legend,omitempty"`
	Summary  *domain.Summary      `json:"summary,omitempty"`

	// Matched counts records inside the range filter; Rendered counts the
	// subset that made it onto the map. The difference is SkippedCoords,
	// the rows whose GeoLocation cell did not parse.
	Matched       int `json:"matched"`
	Rendered      int `json:"rendered"`
	SkippedCoords int `json:"skipped_coords"`

	DerivedAt time.Time `json:"derived_at"`
}

func emptyView(sel domain.Selection) View {
	return View{
		Selection: sel,
		Measures:  []string{},
		Points:    []domain.MapPoint{},
		Table:     []domain.TableRow{},
		DerivedAt: clock.Now(),
	}
}
