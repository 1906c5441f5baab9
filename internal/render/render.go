// Package render rasterizes a scene to a fixed-size image and writes it as
// PNG.
//
// Scenes are in data units with y pointing up. The rasterizer maps the view
// box onto the canvas inside the margin with one uniform scale, so circles
// stay round, and centers whatever space is left over. Line widths and font
// sizes are in points and scale with DPI.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"tools.zach/dev/eqscheme/internal/atomicfile"
	"tools.zach/dev/eqscheme/internal/fonts"
	"tools.zach/dev/eqscheme/internal/geometry"
	"tools.zach/dev/eqscheme/internal/layout"
	"tools.zach/dev/eqscheme/internal/palette"
	"tools.zach/dev/eqscheme/internal/scene"
)

// ErrOutputWrite is returned when the image cannot be written.
var ErrOutputWrite = errors.New("output write failed")

// defaultLineSpacing applies to text without an explicit LineSpacing.
const defaultLineSpacing = 1.25

// ///////////////////////////////////////////////
// Rasterizer
// ///////////////////////////////////////////////

// Options fixes the canvas.
type Options struct {
	Width, Height int
	DPI           float64
	// Margin is the blank border in pixels.
	Margin     int
	View       layout.Rect
	Background color.NRGBA
}

// Rasterizer draws scenes onto a canvas described by Options.
type Rasterizer struct {
	opts  Options
	fonts *fonts.Set

	scale      float64
	offX, offY float64
}

// New returns a rasterizer. A nil font set uses the built-in fonts.
func New(opts Options, fs *fonts.Set) (*Rasterizer, error) {
	if opts.Width <= 0 || opts.Height <= 0 || !(opts.DPI > 0) {
		return nil, fmt.Errorf("canvas %dx%d at %v dpi: %w", opts.Width, opts.Height, opts.DPI, geometry.ErrInvalidGeometry)
	}
	availW := float64(opts.Width - 2*opts.Margin)
	availH := float64(opts.Height - 2*opts.Margin)
	vw, vh := opts.View.Width(), opts.View.Height()
	if !(availW > 0) || !(availH > 0) || !(vw > 0) || !(vh > 0) {
		return nil, fmt.Errorf("no drawable area: %w", geometry.ErrInvalidGeometry)
	}
	if fs == nil {
		fs = fonts.Builtin()
	}

	scale := math.Min(availW/vw, availH/vh)
	return &Rasterizer{
		opts:  opts,
		fonts: fs,
		scale: scale,
		offX:  float64(opts.Margin) + (availW-vw*scale)/2,
		offY:  float64(opts.Margin) + (availH-vh*scale)/2,
	}, nil
}

// Scale returns pixels per data unit.
func (r *Rasterizer) Scale() float64 { return r.scale }

// ToPixel maps a data point to canvas pixels (y down).
func (r *Rasterizer) ToPixel(p geometry.Point) (x, y float64) {
	v := r.opts.View
	return r.offX + (p.X-v.Min.X)*r.scale, r.offY + (v.Max.Y-p.Y)*r.scale
}

// points converts a size in points to pixels.
func (r *Rasterizer) points(pt float64) float64 {
	return pt * r.opts.DPI / 72
}

// Render draws s in Z order onto a fresh canvas.
func (r *Rasterizer) Render(s *scene.Scene) (image.Image, error) {
	dc, err := r.draw(s)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders s and atomically replaces path with the PNG. Any failure
// to write wraps ErrOutputWrite.
func (r *Rasterizer) WritePNG(s *scene.Scene, path string) error {
	dc, err := r.draw(s)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFunc(path, 0o644, dc.EncodePNG); err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrOutputWrite, err)
	}
	return nil
}

func (r *Rasterizer) draw(s *scene.Scene) (*gg.Context, error) {
	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(r.opts.Background)
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, p := range s.Ordered() {
		var err error
		switch v := p.(type) {
		case scene.Circle:
			r.circle(dc, v)
		case scene.Polyline:
			r.path(dc, v.Points, false, v.Style)
		case scene.Polygon:
			r.path(dc, v.Points, true, v.Style)
		case scene.RoundedRect:
			r.roundedRect(dc, v)
		case scene.Text:
			err = r.text(dc, v)
		default:
			err = fmt.Errorf("unsupported primitive %s", p.Kind())
		}
		if err != nil {
			return nil, err
		}
	}
	return dc, nil
}

// ///////////////////////////////////////////////
// Primitives
// ///////////////////////////////////////////////

// paint fills and strokes the shape traced by trace, halo first.
func (r *Rasterizer) paint(dc *gg.Context, st scene.Style, trace func()) {
	if st.Fill != nil {
		trace()
		dc.SetColor(palette.WithOpacity(*st.Fill, st.Opacity))
		dc.Fill()
	}
	if st.Stroke == nil {
		return
	}
	if st.HaloWidth > 0 {
		trace()
		dc.SetColor(palette.WithOpacity(st.HaloColor, st.HaloOpacity))
		dc.SetLineWidth(r.points(st.HaloWidth))
		dc.Stroke()
	}
	trace()
	dc.SetColor(palette.WithOpacity(*st.Stroke, st.Opacity))
	dc.SetLineWidth(r.points(st.LineWidth))
	dc.Stroke()
}

func (r *Rasterizer) circle(dc *gg.Context, c scene.Circle) {
	x, y := r.ToPixel(c.Center)
	rad := c.Radius * r.scale
	r.paint(dc, c.Style, func() { dc.DrawCircle(x, y, rad) })
}

func (r *Rasterizer) path(dc *gg.Context, pts []geometry.Point, closed bool, st scene.Style) {
	if len(pts) < 2 {
		return
	}
	if !closed {
		st.Fill = nil
	}
	r.paint(dc, st, func() {
		dc.NewSubPath()
		for i, p := range pts {
			x, y := r.ToPixel(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		if closed {
			dc.ClosePath()
		}
	})
}

func (r *Rasterizer) roundedRect(dc *gg.Context, rr scene.RoundedRect) {
	x, y := r.ToPixel(geometry.Point{X: rr.Min.X, Y: rr.Min.Y + rr.Height})
	w, h := rr.Width*r.scale, rr.Height*r.scale
	rad := rr.Radius * r.scale
	r.paint(dc, rr.Style, func() { dc.DrawRoundedRectangle(x, y, w, h, rad) })
}

// text draws t line by line. The block of lines is anchored on At by
// AX/AY; every line shares the horizontal anchor.
func (r *Rasterizer) text(dc *gg.Context, t scene.Text) error {
	if t.Value == "" {
		return nil
	}
	face, err := r.fonts.Face(t.Bold, t.SizePt, r.opts.DPI)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetColor(palette.WithOpacity(t.Color, t.Opacity))

	spacing := t.LineSpacing
	if spacing <= 0 {
		spacing = defaultLineSpacing
	}
	lines := strings.Split(t.Value, "\n")
	fh := dc.FontHeight()
	lh := fh * spacing
	block := lh*float64(len(lines)-1) + fh

	x, y := r.ToPixel(t.At)
	top := y - t.AY*block
	for i, line := range lines {
		// gg's ay = 1 puts the top of the line at the given y.
		dc.DrawStringAnchored(line, x, top+float64(i)*lh, t.AX, 1)
	}
	return nil
}
