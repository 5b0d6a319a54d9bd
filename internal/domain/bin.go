package domain

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Binner assigns colors to values by equal-width binning over the observed
// value range. Edges are left unrounded: partitioning [min, max] into
// binCount equal spans keeps the color mapping faithful to the data instead
// of snapping to pretty boundaries. A Binner is immutable once built.
type Binner struct {
	min, max float64
	span     float64
	edges    []float64    // binCount+1 boundaries, edges[0]=min, edges[last]=max
	colors   []color.RGBA // one per bin, selected from the palette
}

// LegendEntry describes one bin for display: its value span, its color, and
// how many of the supplied values fall in it.
type LegendEntry struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Color string  `json:"color"`
	Count int     `json:"count"`
}

// NewBinner builds a binner over the observed values. The palette must carry
// at least binCount colors; a longer palette is strided so its first and
// last colors anchor the ramp. Values outside [min, max] presented to Index
// later are clamped to the edge bins rather than rejected, because a stale
// range can briefly outlive the observation set that produced it.
func NewBinner(palette Palette, values []float64, binCount int) (*Binner, error) {
	if binCount < 1 {
		return nil, fmt.Errorf("bin count %d: want at least 1", binCount)
	}
	if len(palette) < binCount {
		return nil, fmt.Errorf("palette has %d colors, need at least %d", len(palette), binCount)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no values to bin")
	}

	mn, err := stats.Min(values)
	if err != nil {
		return nil, fmt.Errorf("observed minimum: %w", err)
	}
	mx, err := stats.Max(values)
	if err != nil {
		return nil, fmt.Errorf("observed maximum: %w", err)
	}

	span := mx - mn
	edges := make([]float64, binCount+1)
	for i := range edges {
		edges[i] = mn + span*float64(i)/float64(binCount)
	}
	edges[binCount] = mx

	return &Binner{
		min:    mn,
		max:    mx,
		span:   span,
		edges:  edges,
		colors: stridePalette(palette, binCount),
	}, nil
}

// stridePalette picks n colors spread across the palette so that a longer
// palette still contributes its full range, first and last colors included.
func stridePalette(p Palette, n int) []color.RGBA {
	out := make([]color.RGBA, n)
	if n == 1 {
		out[0] = p[0]
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = p[i*(len(p)-1)/(n-1)]
	}
	return out
}

// BinCount returns the number of bins.
func (b *Binner) BinCount() int { return len(b.colors) }

// Bounds returns the observed value range the binner was built over.
func (b *Binner) Bounds() ValueRange { return ValueRange{Min: b.min, Max: b.max} }

// Edges returns a copy of the binCount+1 bin boundaries.
func (b *Binner) Edges() []float64 {
	return append([]float64(nil), b.edges...)
}

// Index returns the 0-based bin for v. Values below the observed minimum
// land in bin 0, values at or above the maximum in the last bin. The index
// is computed from the value's fraction of the span rather than a
// precomputed width so that exact edge values land in the bin they open.
func (b *Binner) Index(v float64) int {
	if b.span == 0 {
		return 0
	}
	i := int((v - b.min) / b.span * float64(len(b.colors)))
	if i < 0 {
		return 0
	}
	if i >= len(b.colors) {
		return len(b.colors) - 1
	}
	return i
}

// Color returns the bin color for v.
func (b *Binner) Color(v float64) color.RGBA {
	return b.colors[b.Index(v)]
}

// Hex returns the bin color for v as "#rrggbb".
func (b *Binner) Hex(v float64) string {
	return HexColor(b.Color(v))
}

// Legend returns one entry per bin with the count of the supplied values
// falling in it. The values need not be the set the binner was built over;
// counting the currently rendered subset against the full-range bins is the
// expected use.
func (b *Binner) Legend(values []float64) []LegendEntry {
	counts := b.countPerBin(values)
	entries := make([]LegendEntry, len(b.colors))
	for i := range entries {
		entries[i] = LegendEntry{
			From:  b.edges[i],
			To:    b.edges[i+1],
			Color: HexColor(b.colors[i]),
			Count: counts[i],
		}
	}
	return entries
}

func (b *Binner) countPerBin(values []float64) []int {
	counts := make([]int, len(b.colors))
	if len(values) == 0 {
		return counts
	}
	if b.span == 0 {
		counts[0] = len(values)
		return counts
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	// stat.Histogram treats the top divider as exclusive and panics on
	// values outside the divider range, so clamp the copy into [min, max]
	// and nudge the top divider just past max.
	for i, v := range sorted {
		if v < b.min {
			sorted[i] = b.min
		} else if v > b.max {
			sorted[i] = b.max
		}
	}
	dividers := b.Edges()
	dividers[len(dividers)-1] = math.Nextafter(b.max, math.Inf(1))

	weights := stat.Histogram(make([]float64, len(b.colors)), dividers, sorted, nil)
	for i, w := range weights {
		counts[i] = int(w)
	}
	return counts
}
