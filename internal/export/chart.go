// Package export renders derived views to static artifacts: a PNG scatter
// chart of the rendered markers and a multi-page PDF report. Both renderers
// take a finished view and never touch the dataset, so they stay safe to
// call concurrently from request handlers.
package export

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 7.5 * vg.Inch
)

// WriteChartPNG renders the view's markers as a longitude/latitude scatter
// chart, one color per legend bin, and writes the PNG to w. A view with no
// markers still renders: an empty chart with the selection in the title is
// a valid answer for an empty result set.
func WriteChartPNG(w io.Writer, view pipeline.View) error {
	p, err := buildPlot(view)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// buildPlot assembles the shared scatter plot used by both the PNG chart
// and the report's chart page. Markers are grouped by legend bin so each
// group carries its bin color and a legend row.
func buildPlot(view pipeline.View) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = chartTitle(view)
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"
	p.Add(plotter.NewGrid())

	for _, entry := range view.Legend {
		clr, err := domain.ParseHexColor(entry.Color)
		if err != nil {
			return nil, fmt.Errorf("legend color %q: %w", entry.Color, err)
		}

		var pts plotter.XYs
		for _, mp := range view.Points {
			if mp.Color == entry.Color {
				pts = append(pts, plotter.XY{X: mp.Lng, Y: mp.Lat})
			}
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter for bin %s: %w", entry.Color, err)
		}
		scatter.Color = clr
		scatter.Radius = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}

		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%.1f to %.1f", entry.From, entry.To), scatter)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = vg.Points(9)
	return p, nil
}

func chartTitle(view pipeline.View) string {
	sel := view.Selection
	if sel.Measure == "" {
		return "500 Cities - no measure selected"
	}
	return sanitizeText(sel.Measure + " - " + sel.ValueTypeID)
}

// sanitizeText replaces em and en dashes with plain dashes. The Liberation
// font the plot renderers embed has no glyph for either.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\u2014", "-")
	s = strings.ReplaceAll(s, "\u2013", "-")
	return s
}
