package pipeline

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/dataset"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/observability"
)

// Deriver turns selections into views. It holds the immutable store plus
// the binning configuration, so every session shares one Deriver.
type Deriver struct {
	store    *dataset.Store
	palette  domain.Palette
	binCount int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Deriver over the loaded store.
func New(store *dataset.Store, palette domain.Palette, binCount int, logger *slog.Logger, metrics *observability.Metrics) *Deriver {
	return &Deriver{
		store:    store,
		palette:  palette,
		binCount: binCount,
		logger:   logger,
		metrics:  metrics,
	}
}

// BinCount returns the configured number of color bins.
func (d *Deriver) BinCount() int { return d.binCount }

// Derive runs the full filter and render chain for one selection:
//
//	category+type -> measure options
//	measure       -> observed bounds, color bins
//	range         -> markers, table, legend, summary
//
// Missing upstream choices terminate the chain early with a valid, mostly
// empty view; an empty result set is a state to render, never an error.
// Records whose coordinates fail to parse are skipped from the map, kept in
// the table, and counted.
func (d *Deriver) Derive(sel domain.Selection) View {
	start := time.Now()
	view := emptyView(sel)

	if !sel.Scoped() {
		return view
	}

	pool := domain.FilterByCategoryAndType(d.store.Records(), sel.CategoryID, sel.ValueTypeID)
	view.Measures = domain.DistinctMeasures(pool)
	if sel.Measure == "" {
		return view
	}

	measured := domain.FilterByMeasure(pool, sel.Measure)
	bounds, err := domain.ValueBounds(measured)
	if err != nil {
		if !errors.Is(err, domain.ErrNoValues) {
			d.logger.Warn("value bounds failed", "measure", sel.Measure, "error", err)
		}
		return view
	}
	view.Bounds = &bounds

	binner, err := domain.NewBinner(d.palette, domain.Values(measured), d.binCount)
	if err != nil {
		// Only reachable through misconfiguration; config validates the
		// palette against the bin count at startup.
		d.logger.Error("binner construction failed", "error", err)
		return view
	}

	matched := domain.FilterByValueRange(measured, sel.Range.Min, sel.Range.Max)
	view.Matched = len(matched)

	points, skipped := domain.ToMapPoints(matched, binner)
	view.Points = points
	view.Rendered = len(points)
	view.SkippedCoords = skipped
	view.Viewport = domain.BoundsOf(points)
	view.Table = domain.ToTableRows(matched)
	view.Legend = binner.Legend(domain.Values(matched))
	if summary, err := domain.Summarize(matched); err == nil {
		view.Summary = &summary
	}

	if skipped > 0 {
		d.metrics.CoordinateSkips.Add(float64(skipped))
		d.logger.Warn("records skipped on map, kept in table",
			"measure", sel.Measure,
			"skipped", skipped,
			"rendered", len(points),
		)
	}
	d.metrics.Derivations.Inc()
	d.metrics.DerivationDuration.Observe(time.Since(start).Seconds())
	d.logger.Debug("view derived",
		"category", sel.CategoryID,
		"value_type", sel.ValueTypeID,
		"measure", sel.Measure,
		"range", sel.Range.String(),
		"matched", view.Matched,
		"rendered", view.Rendered,
	)
	return view
}
