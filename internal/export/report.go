package export

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/domain"
	"github.com/MattBrown88/CDC-500-Cities-Project-EDA/internal/pipeline"
)

const (
	pageWidth  = 8.5 * vg.Inch
	pageHeight = 11 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch

	summaryLineHeight = 0.22 * vg.Inch
	statLabelWidth    = 1.1 * vg.Inch
	swatchSize        = 0.13 * vg.Inch

	tableRowHeight = 0.24 * vg.Inch
	rankColWidth   = 0.5 * vg.Inch
	cityColWidth   = 2.9 * vg.Inch
	stateColWidth  = 0.7 * vg.Inch
	valueColWidth  = 0.9 * vg.Inch
)

// WriteReportPDF renders the view as a letter-size PDF: a chart page, a
// selection and distribution page, and as many table pages as the place
// list needs. Views with no matched records still produce a valid two-page
// document.
func WriteReportPDF(w io.Writer, view pipeline.View) error {
	c := vgpdf.New(pageWidth, pageHeight)

	if err := drawChartPage(c, view); err != nil {
		return err
	}

	c.NextPage()
	drawSummaryPage(c, view)
	drawTablePages(c, view)

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func drawChartPage(c *vgpdf.Canvas, view pipeline.View) error {
	p, err := buildPlot(view)
	if err != nil {
		return err
	}
	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	p.Draw(area)
	return nil
}

func drawSummaryPage(c *vgpdf.Canvas, view pipeline.View) {
	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)

	y := area.Max.Y
	fillText(area, "500 Cities report", vg.Points(14), area.Min.X, y-vg.Points(14), color.Black)
	y -= 0.5 * vg.Inch

	sel := view.Selection
	lines := []string{
		"Category: " + orNone(sel.CategoryID),
		"Value type: " + orNone(sel.ValueTypeID),
		"Measure: " + orNone(sanitizeText(sel.Measure)),
	}
	if sel.Measure != "" {
		lines = append(lines,
			fmt.Sprintf("Range: %.1f to %.1f", sel.Range.Min, sel.Range.Max),
			fmt.Sprintf("Matched %d records, %d on the map, %d skipped for unparseable coordinates.",
				view.Matched, view.Rendered, view.SkippedCoords),
		)
	}
	for _, ln := range lines {
		fillText(area, ln, vg.Points(10), area.Min.X, y, color.Black)
		y -= summaryLineHeight
	}

	if s := view.Summary; s != nil {
		y -= 0.2 * vg.Inch
		fillText(area, "Distribution", vg.Points(12), area.Min.X, y, color.Black)
		y -= 0.3 * vg.Inch
		stats := []struct{ label, value string }{
			{"count", strconv.Itoa(s.Count)},
			{"min", formatValue(s.Min)},
			{"p25", formatValue(s.P25)},
			{"median", formatValue(s.Median)},
			{"mean", formatValue(s.Mean)},
			{"p75", formatValue(s.P75)},
			{"max", formatValue(s.Max)},
		}
		for _, row := range stats {
			fillText(area, row.label, vg.Points(10), area.Min.X, y, color.Gray{Y: 80})
			fillText(area, row.value, vg.Points(10), area.Min.X+statLabelWidth, y, color.Black)
			y -= summaryLineHeight
		}
	}

	if len(view.Legend) > 0 {
		y -= 0.2 * vg.Inch
		fillText(area, "Color bins", vg.Points(12), area.Min.X, y, color.Black)
		y -= 0.3 * vg.Inch
		for _, entry := range view.Legend {
			clr, err := domain.ParseHexColor(entry.Color)
			if err != nil {
				continue
			}
			fillRect(area,
				vg.Point{X: area.Min.X, Y: y - vg.Points(2)},
				vg.Point{X: area.Min.X + swatchSize, Y: y - vg.Points(2) + swatchSize},
				clr)
			fillText(area, fmt.Sprintf("%.1f to %.1f", entry.From, entry.To),
				vg.Points(10), area.Min.X+swatchSize+vg.Points(6), y, color.Black)
			fillText(area, fmt.Sprintf("%d places", entry.Count),
				vg.Points(10), area.Min.X+2.4*vg.Inch, y, color.Gray{Y: 80})
			y -= summaryLineHeight
		}
	}
}

func drawTablePages(c *vgpdf.Canvas, view pipeline.View) {
	if len(view.Table) == 0 {
		return
	}

	usableW := pageWidth - 2*pdfMargin
	usableH := pageHeight - 2*pdfMargin
	maxRowsPerPage := int((usableH - 0.4*vg.Inch) / tableRowHeight)

	const title = "Places by value"
	pageNum := 0
	rowIdx := 0
	for rowIdx < len(view.Table) {
		c.NextPage()
		pageNum++

		dc := draw.New(c)
		area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)

		xRank := area.Min.X
		xCity := xRank + rankColWidth
		xState := xCity + cityColWidth
		xValue := xState + stateColWidth
		xPop := xValue + valueColWidth

		var yTop vg.Length
		if pageNum == 1 {
			yTop = area.Max.Y
			fillText(area, title, vg.Points(12), area.Min.X, yTop-vg.Points(12), color.Black)

			headerY := yTop - 0.5*vg.Inch
			fillText(area, "#", vg.Points(9), xRank, headerY, color.Gray{Y: 80})
			fillText(area, "City", vg.Points(9), xCity, headerY, color.Gray{Y: 80})
			fillText(area, "State", vg.Points(9), xState, headerY, color.Gray{Y: 80})
			fillText(area, "Value", vg.Points(9), xValue, headerY, color.Gray{Y: 80})
			fillText(area, "Population", vg.Points(9), xPop, headerY, color.Gray{Y: 80})

			sepY := headerY - vg.Points(5)
			strokeHLine(area, area.Min.X, area.Min.X+usableW, sepY, color.Gray{Y: 180})
			yTop = sepY - vg.Points(4)
		} else {
			yTop = area.Max.Y - vg.Points(8)
			fillText(area, title+" (continued)", vg.Points(10), area.Min.X, yTop, color.Gray{Y: 100})
			yTop -= 0.25 * vg.Inch
		}

		rowsThisPage := maxRowsPerPage
		if pageNum == 1 {
			rowsThisPage = int((yTop - area.Min.Y) / tableRowHeight)
		}

		drawn := 0
		for rowIdx < len(view.Table) && drawn < rowsThisPage {
			row := view.Table[rowIdx]
			y := yTop - vg.Length(drawn)*tableRowHeight - tableRowHeight*0.65

			fillText(area, strconv.Itoa(rowIdx+1), vg.Points(9), xRank, y, color.Gray{Y: 80})
			fillText(area, truncate(sanitizeText(row.City), 44), vg.Points(9), xCity, y, color.Black)
			fillText(area, row.State, vg.Points(9), xState, y, color.Black)
			fillText(area, formatValue(row.Value), vg.Points(9), xValue, y, color.Black)
			if row.Population > 0 {
				fillText(area, formatInt(row.Population), vg.Points(9), xPop, y, color.Gray{Y: 60})
			}

			rowIdx++
			drawn++
		}
	}
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}

func fillRect(c draw.Canvas, min, max vg.Point, clr color.Color) {
	c.SetColor(clr)
	var p vg.Path
	p.Move(min)
	p.Line(vg.Point{X: max.X, Y: min.Y})
	p.Line(max)
	p.Line(vg.Point{X: min.X, Y: max.Y})
	p.Close()
	c.Fill(p)
}

// orNone substitutes "none" for an empty selection field.
func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatInt(v int64) string {
	return addCommas(strconv.FormatInt(v, 10))
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var sb strings.Builder
	pre := n % 3
	if pre > 0 {
		sb.WriteString(s[:pre])
		sb.WriteByte(',')
	}
	for i := pre; i < n; i += 3 {
		sb.WriteString(s[i : i+3])
		if i+3 < n {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}

// truncate shortens s to at most max bytes. Place names in the dataset are
// ASCII, so byte length is rune length here.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
