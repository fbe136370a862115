package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is a straight-alpha RGBA color with channels in [0, 1].
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
	A float64 `json:"a" yaml:"a"`
}

var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Transparent = Color{1, 1, 1, 0}
)

func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

func (c Color) Sub(o Color) Color {
	return Color{c.R - o.R, c.G - o.G, c.B - o.B, c.A - o.A}
}

func (c Color) Scale(f float64) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A * f}
}

// WithAlpha returns c with its alpha channel replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Clamped returns c with every channel limited to [0, 1].
func (c Color) Clamped() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B), clamp01(c.A)}
}

// Near reports whether every channel of c and o differs by at most eps.
func (c Color) Near(o Color, eps float64) bool {
	return math.Abs(c.R-o.R) <= eps && math.Abs(c.G-o.G) <= eps &&
		math.Abs(c.B-o.B) <= eps && math.Abs(c.A-o.A) <= eps
}

// Hex formats the color as #RRGGBBAA.
func (c Color) Hex() string {
	c = c.Clamped()
	return fmt.Sprintf("#%02X%02X%02X%02X",
		int(math.Round(c.R*255)), int(math.Round(c.G*255)),
		int(math.Round(c.B*255)), int(math.Round(c.A*255)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "FF"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("parse color %q: %w", s, ErrInvalidColor)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, ErrInvalidColor)
	}
	return Color{
		R: float64(v>>24&0xFF) / 255,
		G: float64(v>>16&0xFF) / 255,
		B: float64(v>>8&0xFF) / 255,
		A: float64(v&0xFF) / 255,
	}, nil
}

// ParseColor accepts a palette name (case-insensitive) or a hex string.
func ParseColor(s string) (Color, error) {
	if c, ok := Named(s); ok {
		return c, nil
	}
	return ParseHex(s)
}

// Named looks up a palette color such as "BLUE_E" or "dark_blue".
func Named(name string) (Color, bool) {
	hex, ok := palette[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Color{}, false
	}
	c, err := ParseHex(hex)
	return c, err == nil
}

var palette = map[string]string{
	"DARK_BLUE":    "#236B8E",
	"DARK_BROWN":   "#8B4513",
	"LIGHT_BROWN":  "#CD853F",
	"BLUE_E":       "#1C758A",
	"BLUE_D":       "#29ABCA",
	"BLUE_C":       "#58C4DD",
	"BLUE_B":       "#9CDCEB",
	"BLUE_A":       "#C7E9F1",
	"TEAL_E":       "#49A88F",
	"TEAL_D":       "#55C1A7",
	"TEAL_C":       "#5CD0B3",
	"TEAL_B":       "#76DDC0",
	"TEAL_A":       "#ACEAD7",
	"GREEN_E":      "#699C52",
	"GREEN_D":      "#77B05D",
	"GREEN_C":      "#83C167",
	"GREEN_B":      "#A6CF8C",
	"GREEN_A":      "#C9E2AE",
	"YELLOW_E":     "#E8C11C",
	"YELLOW_D":     "#F4D345",
	"YELLOW_C":     "#FFFF00",
	"YELLOW_B":     "#FFEA94",
	"YELLOW_A":     "#FFF1B6",
	"GOLD_E":       "#C78D46",
	"GOLD_D":       "#E1A158",
	"GOLD_C":       "#F0AC5F",
	"GOLD_B":       "#F9B775",
	"GOLD_A":       "#F7C797",
	"RED_E":        "#CF5044",
	"RED_D":        "#E65A4C",
	"RED_C":        "#FC6255",
	"RED_B":        "#FF8080",
	"RED_A":        "#F7A1A3",
	"MAROON_E":     "#94424F",
	"MAROON_D":     "#A24D61",
	"MAROON_C":     "#C55F73",
	"MAROON_B":     "#EC92AB",
	"MAROON_A":     "#ECABC1",
	"PURPLE_E":     "#644172",
	"PURPLE_D":     "#715582",
	"PURPLE_C":     "#9A72AC",
	"PURPLE_B":     "#B189C6",
	"PURPLE_A":     "#CAA3E8",
	"WHITE":        "#FFFFFF",
	"BLACK":        "#000000",
	"LIGHT_GRAY":   "#BBBBBB",
	"LIGHT_GREY":   "#BBBBBB",
	"GRAY":         "#888888",
	"GREY":         "#888888",
	"DARK_GREY":    "#444444",
	"DARK_GRAY":    "#444444",
	"DARKER_GREY":  "#222222",
	"DARKER_GRAY":  "#222222",
	"GREY_BROWN":   "#736357",
	"PINK":         "#D147BD",
	"LIGHT_PINK":   "#DC75CD",
	"GREEN_SCREEN": "#00FF00",
	"ORANGE":       "#FF862F",
	"TRANSPARENT":  "#FFFFFF00",
}
