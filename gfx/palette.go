package gfx

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hsluv/hsluv-go"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colors of a waveform frame.
type Palette struct {
	Wave       colorful.Color
	Background colorful.Color
}

// NewPalette parses the wave and background color strings with ParseColor.
func NewPalette(wave, background string) (Palette, error) {
	w, err := ParseColor(wave)
	if err != nil {
		return Palette{}, fmt.Errorf("wave color: %w", err)
	}
	bg, err := ParseColor(background)
	if err != nil {
		return Palette{}, fmt.Errorf("background color: %w", err)
	}
	return Palette{Wave: w, Background: bg}, nil
}

// WaveRGBA is the opaque 8-bit wave color.
func (p Palette) WaveRGBA() color.RGBA { return toRGBA(p.Wave) }

// BackgroundRGBA is the opaque 8-bit background color.
func (p Palette) BackgroundRGBA() color.RGBA { return toRGBA(p.Background) }

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{r, g, b, 0xff}
}

// ParseColor accepts "#rrggbb" (or "#rgb") hex codes and "hsluv(h, s, l)" with h in
// degrees and s, l in percent.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "hsluv(") && strings.HasSuffix(s, ")") {
		return parseHsluv(s[len("hsluv(") : len(s)-1])
	}
	if !isHexColor(s) {
		return colorful.Color{}, fmt.Errorf("invalid color %q: want #rgb, #rrggbb or hsluv(h, s, l)", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// isHexColor reports whether s is exactly #rgb or #rrggbb. colorful.Hex alone
// accepts trailing garbage and short digit groups.
func isHexColor(s string) bool {
	if (len(s) != 4 && len(s) != 7) || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func parseHsluv(args string) (colorful.Color, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return colorful.Color{}, fmt.Errorf("invalid hsluv color %q: want 3 components", args)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("invalid hsluv color %q: %w", args, err)
		}
		v[i] = f
	}
	if v[1] < 0 || v[1] > 100 || v[2] < 0 || v[2] > 100 {
		return colorful.Color{}, fmt.Errorf("invalid hsluv color %q: saturation and lightness must be in [0, 100]", args)
	}
	r, g, b := hsluv.HsluvToRGB(v[0], v[1], v[2])
	return colorful.Color{R: r, G: g, B: b}.Clamped(), nil
}

// mustParseColor is for color literals that are known to be valid.
func mustParseColor(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic("mustParseColor: " + err.Error())
	}
	return c
}

// Named palettes
var (
	// SteelPalette is a steel blue wave on a dark grey background.
	SteelPalette = Palette{mustParseColor("#4682B4"), mustParseColor("#1E1E1E")}
	// InkPalette is a black wave on white.
	InkPalette = Palette{mustParseColor("#000000"), mustParseColor("#FFFFFF")}
)
