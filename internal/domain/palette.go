package domain

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette is an ordered sequence of marker colors, low values first.
type Palette []color.RGBA

// DefaultPalette is an 8-step viridis ramp, dark purple through yellow.
// Values from https://waldyrious.net/viridis-palette-generator/.
var DefaultPalette = Palette{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x46, G: 0x32, B: 0x7e, A: 0xff},
	{R: 0x36, G: 0x5c, B: 0x8d, A: 0xff},
	{R: 0x27, G: 0x7f, B: 0x8e, A: 0xff},
	{R: 0x1f, G: 0xa1, B: 0x87, A: 0xff},
	{R: 0x4a, G: 0xc1, B: 0x6d, A: 0xff},
	{R: 0xa0, G: 0xda, B: 0x39, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// ParsePalette parses a comma-separated list of hex colors, e.g.
// "#440154,#21918c,#fde725". Used for the PALETTE environment override.
func ParsePalette(s string) (Palette, error) {
	var p Palette
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		c, err := ParseHexColor(tok)
		if err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("palette %q has no colors", s)
	}
	return p, nil
}

// ParseHexColor parses "#rrggbb" (leading '#' optional) into an opaque RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}, nil
}

// HexColor formats a color as "#rrggbb".
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
