// Package waveform draws windows of a mono audio signal into fixed size frames.
package waveform

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/peragwin/wavevid/audio"
	"github.com/peragwin/wavevid/gfx"
)

// Style is the way a window is drawn.
type Style int

// Drawing styles
const (
	// Fill shades the area between the curve and zero.
	Fill Style = iota
	// Line strokes the curve.
	Line
)

func (s Style) String() string {
	switch s {
	case Fill:
		return "fill"
	case Line:
		return "line"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle parses "fill" or "line".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fill", "filled":
		return Fill, nil
	case "line", "stroke":
		return Line, nil
	}
	return 0, fmt.Errorf("unknown waveform style %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Style) UnmarshalText(b []byte) error {
	v, err := ParseStyle(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Config describes the frames produced by a Renderer.
type Config struct {
	Width  int
	Height int
	Style  Style
	// LineWidth is the stroke width in points, used by the Line style.
	LineWidth float64
	Palette   gfx.Palette
}

// DefaultConfig is a 1280x720 steel blue line on dark grey.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Style:     Line,
		LineWidth: 1.5,
		Palette:   gfx.SteelPalette,
	}
}

// Renderer turns sample windows into frames. The x axis always spans [0, 1] and
// the y axis [-1, 1], so the window length sets the zoom, not the pixel density.
//
// A Renderer reuses one drawing surface between calls and is therefore not safe
// for concurrent use. Use one Renderer per goroutine.
type Renderer struct {
	cfg     Config
	surface *image.RGBA
	bg      *image.Uniform
}

// NewRenderer validates cfg and allocates the drawing surface.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Style == Line && cfg.LineWidth <= 0 {
		return nil, errors.New("line style needs a positive line width")
	}
	return &Renderer{
		cfg:     cfg,
		surface: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		bg:      image.NewUniform(cfg.Palette.BackgroundRGBA()),
	}, nil
}

// Config returns the renderer's configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Render draws window into a new frame of exactly the configured size. An empty
// window yields a background-only frame. The result depends only on window and
// the configuration.
func (r *Renderer) Render(window []float64) (f *gfx.Frame, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			f, err = nil, fmt.Errorf("render panic: %v", rec)
		}
	}()

	r.reset()

	p, err := r.plot(window)
	if err != nil {
		return nil, err
	}
	c := vgimg.NewWith(vgimg.UseImage(r.surface))
	p.Draw(vgdraw.New(c))

	f = gfx.NewFrame(r.cfg.Width, r.cfg.Height)
	f.CopyRGBA(r.result(c.Image()))
	return f, nil
}

// reset clears the surface so nothing from the previous frame survives.
func (r *Renderer) reset() {
	draw.Draw(r.surface, r.surface.Bounds(), r.bg, image.Point{}, draw.Src)
}

// result returns the drawn image as the surface, copying it there if the canvas
// did not draw in place.
func (r *Renderer) result(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba == r.surface {
		return rgba
	}
	draw.Draw(r.surface, r.surface.Bounds(), img, img.Bounds().Min, draw.Src)
	return r.surface
}

func (r *Renderer) plot(window []float64) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = r.cfg.Palette.BackgroundRGBA()
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0

	if len(window) > 0 {
		pts := Points(window)
		switch r.cfg.Style {
		case Fill:
			poly, err := plotter.NewPolygon(fillRing(pts))
			if err != nil {
				return nil, err
			}
			poly.Color = r.cfg.Palette.WaveRGBA()
			poly.LineStyle.Width = 0
			p.Add(poly)
		default:
			l, err := plotter.NewLine(pts)
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = r.cfg.Palette.WaveRGBA()
			l.LineStyle.Width = vg.Points(r.cfg.LineWidth)
			p.Add(l)
		}
	}

	// Add widens the axes to the data; pin them back to the fixed ranges.
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = -1, 1
	return p, nil
}

// Points spreads window evenly over x in [0, 1], like linspace(0, 1, len(window)).
// A single sample is placed at x = 0.
func Points(window []float64) plotter.XYs {
	pts := make(plotter.XYs, len(window))
	last := float64(len(window) - 1)
	for i, v := range window {
		if last > 0 {
			pts[i].X = float64(i) / last
		}
		pts[i].Y = v
	}
	return pts
}

// fillRing closes the curve along y = 0 so that the polygon covers the area
// between the signal and zero.
func fillRing(pts plotter.XYs) plotter.XYs {
	ring := make(plotter.XYs, len(pts), len(pts)+2)
	copy(ring, pts)
	return append(ring,
		plotter.XY{X: pts[len(pts)-1].X, Y: 0},
		plotter.XY{X: pts[0].X, Y: 0},
	)
}

// FrameFunc binds a Renderer to a Sampler, giving the function a video writer
// calls for every output timestamp.
func (r *Renderer) FrameFunc(s *audio.Sampler) func(t float64) (*gfx.Frame, error) {
	return func(t float64) (*gfx.Frame, error) {
		return r.Render(s.Window(t))
	}
}
