package engine

import (
	"fmt"
	"math"
)

// VisualKey is the fill and border colour a renderer uses for one category.
type VisualKey struct {
	Fill   string `json:"fill"`
	Border string `json:"border"`
}

const (
	fillAlpha   = 0.6
	borderAlpha = 1.0
	goldenAngle = 137.508
)

var basePalette = [][3]uint8{
	{0x4F, 0x46, 0xE5},
	{0x10, 0xB9, 0x81},
	{0xF5, 0x9E, 0x0B},
	{0xEF, 0x44, 0x44},
	{0x8B, 0x5C, 0xF6},
	{0x06, 0xB6, 0xD4},
	{0xEC, 0x48, 0x99},
	{0x84, 0xCC, 0x16},
	{0xF9, 0x73, 0x16},
	{0x63, 0x66, 0xF1},
}

// ColorAt returns the visual key for the i-th category of a universe.
// The first entries come from a fixed palette; later ones walk the hue
// circle by the golden angle so neighbours stay far apart.
func ColorAt(i int) VisualKey {
	var rgb [3]uint8
	if i < len(basePalette) {
		rgb = basePalette[i]
	} else {
		hue := math.Mod(float64(i-len(basePalette))*goldenAngle+15, 360)
		rgb = hslToRGB(hue, 0.65, 0.5)
	}
	return VisualKey{
		Fill:   rgba(rgb, fillAlpha),
		Border: rgba(rgb, borderAlpha),
	}
}

// Palette assigns colours by position in a reference category order.
type Palette struct {
	index map[string]int
}

// NewPalette builds a palette over categories. Passing the unfiltered
// universe keeps a category's colour fixed while filters change.
func NewPalette(categories []string) Palette {
	idx := make(map[string]int, len(categories))
	for i, c := range categories {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return Palette{index: idx}
}

// Key returns the colour of category; fallback is used for unknown categories.
func (p Palette) Key(category string, fallback int) VisualKey {
	if i, ok := p.index[category]; ok {
		return ColorAt(i)
	}
	return ColorAt(len(p.index) + fallback)
}

func rgba(c [3]uint8, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c[0], c[1], c[2], formatAlpha(alpha))
}

func formatAlpha(a float64) string {
	if a == 1 {
		return "1"
	}
	return fmt.Sprintf("%.1f", a)
}

func hslToRGB(h, s, l float64) [3]uint8 {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return [3]uint8{
		uint8(math.Round((r + m) * 255)),
		uint8(math.Round((g + m) * 255)),
		uint8(math.Round((b + m) * 255)),
	}
}
