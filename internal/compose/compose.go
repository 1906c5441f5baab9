// Package compose builds the Dynamic Equilibrium scene for one locale and
// renders it.
//
// A [Composer] is constructed once from the immutable config, text bundle
// and font set and can render any number of locale variants in sequence.
// Each variant is built from scratch: canvas, rings, spiral and wave,
// central emblem, label boxes, title. Nothing carries over between
// variants.
package compose

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strings"

	"tools.zach/dev/eqscheme/internal/config"
	"tools.zach/dev/eqscheme/internal/fonts"
	"tools.zach/dev/eqscheme/internal/geometry"
	"tools.zach/dev/eqscheme/internal/layout"
	"tools.zach/dev/eqscheme/internal/locale"
	"tools.zach/dev/eqscheme/internal/logger"
	"tools.zach/dev/eqscheme/internal/palette"
	"tools.zach/dev/eqscheme/internal/paths"
	"tools.zach/dev/eqscheme/internal/render"
	"tools.zach/dev/eqscheme/internal/scene"
)

// Stacking layers. Equal layers keep insertion order.
const (
	zRingFill = iota
	zRingLine
	zSpiral
	zConnector
	zBox
	zBoxText
	zEmblemShape
	zEmblemText
	zTitle = 10

	zEmblemDisc = zBoxText
)

// Fixed presentation constants that have no config knob.
const (
	markOpacity     = 0.95 // triangle, inner circle, pointer dots
	markLift        = 0.012
	textLineSpacing = 1.2
)

// colors holds the parsed palette.
type colors struct {
	bg, accent, line, text, boxFill, boxEdge color.NRGBA
}

// Composer renders locale variants of one scheme.
type Composer struct {
	cfg    *config.Config
	bundle *locale.Bundle
	raster *render.Rasterizer
	log    *slog.Logger
	out    io.Writer
	c      colors
}

// New returns a Composer. cfg must be valid. Confirmation lines are written
// to out; a nil out discards them.
func New(cfg *config.Config, bundle *locale.Bundle, fs *fonts.Set, log *slog.Logger, out io.Writer) (*Composer, error) {
	if log == nil {
		log = logger.Discard()
	}
	if out == nil {
		out = io.Discard
	}
	p := cfg.Palette
	var c colors
	for _, f := range []struct {
		dst *color.NRGBA
		hex string
	}{
		{&c.bg, p.Background},
		{&c.accent, p.Accent},
		{&c.line, p.Line},
		{&c.text, p.Text},
		{&c.boxFill, p.BoxFill},
		{&c.boxEdge, p.BoxEdge},
	} {
		v, err := palette.ParseHexColor(f.hex)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		*f.dst = v
	}

	raster, err := render.New(render.Options{
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		DPI:        cfg.Canvas.DPI,
		Margin:     cfg.Canvas.Margin,
		View:       cfg.ViewBox(),
		Background: c.bg,
	}, fs)
	if err != nil {
		return nil, err
	}

	return &Composer{cfg: cfg, bundle: bundle, raster: raster, log: log, out: out, c: c}, nil
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// RenderVariant resolves code, builds its scene and writes it to path. An
// unknown locale fails before anything is written.
func (k *Composer) RenderVariant(code, path string) error {
	texts, err := k.bundle.Resolve(code)
	if err != nil {
		return err
	}
	s, _, err := k.Build(texts)
	if err != nil {
		return fmt.Errorf("compose %s: %w", code, err)
	}
	if err := k.raster.WritePNG(s, path); err != nil {
		return err
	}
	k.log.Info("saved variant", "locale", code, "path", path, "primitives", s.Len())
	fmt.Fprintf(k.out, "✓ Saved: %s\n", path)
	return nil
}

// RenderAll writes one image per locale into dir, in order, stopping at the
// first failure. It returns the paths written.
func (k *Composer) RenderAll(codes []string, dir paths.OutputDir) ([]string, error) {
	if err := dir.Ensure(); err != nil {
		return nil, fmt.Errorf("%w: %w", render.ErrOutputWrite, err)
	}
	written := make([]string, 0, len(codes))
	for _, code := range codes {
		path := dir.Variant(code)
		if err := k.RenderVariant(code, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// ///////////////////////////////////////////////
// Scene Construction
// ///////////////////////////////////////////////

// Build composes the full scene for texts and returns it with the placed
// label boxes, in layer order.
func (k *Composer) Build(texts locale.Texts) (*scene.Scene, []layout.LabelBox, error) {
	s := scene.New()
	center := k.cfg.CenterPoint()

	rings, err := k.addRings(s, center)
	if err != nil {
		return nil, nil, err
	}
	if err := k.addCurves(s, center); err != nil {
		return nil, nil, err
	}
	if err := k.addEmblem(s, center, texts.CenterCaption); err != nil {
		return nil, nil, err
	}
	boxes, err := k.addBoxes(s, center, rings, texts)
	if err != nil {
		return nil, nil, err
	}
	k.addTitle(s, texts)

	logger.Trace(k.log, "scene built", "primitives", s.Len(), "boxes", len(boxes))
	return s, boxes, nil
}

func (k *Composer) addRings(s *scene.Scene, center geometry.Point) ([]geometry.Ring, error) {
	rc := k.cfg.Rings
	rings, err := geometry.GenerateRings(center, rc.Radii)
	if err != nil {
		return nil, err
	}
	for _, r := range rings {
		if r.Index < len(rc.FillOpacity) {
			s.Add(scene.Circle{
				Center: r.Center, Radius: r.Radius,
				Style: scene.Filled(k.c.accent, rc.FillOpacity[r.Index]).At(zRingFill),
			})
		}
		tag := r.Label
		if tag == "" {
			tag = fmt.Sprintf("ring%d", r.Index)
		}
		s.Add(scene.Circle{
			Center: r.Center, Radius: r.Radius,
			Style: scene.Stroked(k.c.line, rc.LineWidth, rc.Opacity).At(zRingLine),
			Tag:   tag,
		})
	}
	return rings, nil
}

// addCurves adds the spiral, its optional twin and the wave.
func (k *Composer) addCurves(s *scene.Scene, center geometry.Point) error {
	sc := k.cfg.Spiral
	pts, err := k.cfg.SpiralParams().Generate(center)
	if err != nil {
		return err
	}
	st := scene.Stroked(k.c.accent, sc.LineWidth, sc.Opacity).At(zSpiral)
	if sc.HaloWidth > 0 {
		st = st.WithHalo(k.c.bg, sc.HaloWidth, sc.HaloOpacity)
	}
	s.Add(scene.Polyline{Points: pts, Style: st})

	if sc.Twin.Enabled {
		twin, err := k.cfg.TwinParams().Generate(center)
		if err != nil {
			return err
		}
		s.Add(scene.Polyline{
			Points: twin,
			Style:  scene.Stroked(k.c.accent, sc.Twin.LineWidth, sc.Twin.Opacity).At(zSpiral),
		})
	}

	if w := k.cfg.Wave; w.Enabled {
		wave, err := geometry.GenerateWave(center, w.XMin, w.XMax, w.Amplitude, w.Frequency, w.Lift, w.Points)
		if err != nil {
			return err
		}
		s.Add(scene.Polyline{
			Points: wave,
			Style:  scene.Stroked(k.c.line, w.LineWidth, w.Opacity).At(zRingLine),
		})
	}
	return nil
}

func (k *Composer) addEmblem(s *scene.Scene, center geometry.Point, caption string) error {
	e := k.cfg.Emblem
	tri, err := geometry.TriangleVertices(center, e.TriangleRadius)
	if err != nil {
		return err
	}
	s.Add(
		scene.Circle{
			Center: center, Radius: e.DiscRadius,
			Style: scene.Filled(k.c.boxFill, k.cfg.Boxes.Opacity).
				WithEdge(k.c.accent, e.DiscLineWidth).At(zEmblemDisc),
		},
		scene.Polygon{
			Points: tri[:],
			Style:  scene.Stroked(k.c.accent, e.TriangleLineWidth, markOpacity).At(zEmblemShape),
		},
		scene.Circle{
			Center: center, Radius: e.InnerRadius,
			Style: scene.Stroked(k.c.accent, e.InnerLineWidth, markOpacity).At(zEmblemShape),
		},
		scene.Text{
			At:    geometry.Point{X: center.X, Y: center.Y + markLift},
			Value: e.Mark, SizePt: e.MarkSize, Bold: true,
			AX: 0.5, AY: 0.5,
			Color: k.c.text, Opacity: 1, Z: zEmblemText,
		},
		scene.Text{
			At:    geometry.Point{X: center.X, Y: center.Y - e.CaptionOffset},
			Value: caption, SizePt: e.CaptionSize,
			AX: 0.5, AY: 0,
			Color: k.c.text, Opacity: e.CaptionOpacity, Z: zEmblemText,
		},
	)
	return nil
}

func (k *Composer) addBoxes(s *scene.Scene, center geometry.Point, rings []geometry.Ring, texts locale.Texts) ([]layout.LabelBox, error) {
	bc := k.cfg.Boxes
	boxes := make([]layout.LabelBox, 0, len(k.cfg.Layers))
	for _, l := range k.cfg.Layers {
		if l.Ring < 0 || l.Ring >= len(rings) {
			return nil, fmt.Errorf("layer %s: ring %d: %w", l.Key, l.Ring, geometry.ErrInvalidGeometry)
		}
		title, sub, err := texts.Layer(l.Key)
		if err != nil {
			return nil, err
		}
		lb, err := layout.Place(center, rings[l.Ring].Radius, l.Angle, title, sub, k.cfg.BoxSpec(l))
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", l.Key, err)
		}
		conn := lb.Connector()

		s.Add(
			scene.Circle{
				Center: lb.Anchor, Radius: bc.DotRadius,
				Style: scene.Filled(k.c.accent, markOpacity).WithEdge(k.c.line, bc.DotLineWidth).At(zBox),
			},
			scene.Polyline{
				Points: conn[:],
				Style:  scene.Stroked(k.c.accent, bc.ConnectorWidth, bc.ConnectorOpacity).At(zConnector),
			},
			scene.RoundedRect{
				Min: lb.Outer.Min, Width: lb.Outer.Width(), Height: lb.Outer.Height(),
				Radius: lb.CornerRadius,
				Style:  scene.Filled(k.c.boxFill, bc.Opacity).WithEdge(k.c.boxEdge, bc.LineWidth).At(zBox),
			},
			scene.Text{
				At: lb.TitleAt, Value: lb.Title, SizePt: bc.TitleSize, Bold: true,
				Color: k.c.text, Opacity: 1, Z: zBoxText,
			},
			scene.Text{
				At:          lb.SubtitleAt,
				Value:       strings.Join(lb.Subtitle, "\n"),
				SizePt:      bc.SubtitleSize,
				LineSpacing: textLineSpacing,
				Color:       k.c.text,
				Opacity:     k.cfg.Palette.SubtextOpacity,
				Z:           zBoxText,
			},
		)
		boxes = append(boxes, lb)
	}
	return boxes, nil
}

// addTitle centers the heading on the view box. Its y positions are
// fractions of the view height.
func (k *Composer) addTitle(s *scene.Scene, texts locale.Texts) {
	view := k.cfg.ViewBox()
	tc := k.cfg.Title
	x := view.Center().X
	at := func(frac float64) geometry.Point {
		return geometry.Point{X: x, Y: view.Min.Y + frac*view.Height()}
	}
	s.Add(
		scene.Text{
			At: at(tc.Y), Value: texts.Title, SizePt: tc.Size, Bold: true,
			AX: 0.5, Color: k.c.text, Opacity: tc.Opacity, Z: zTitle,
		},
		scene.Text{
			At: at(tc.SubtitleY), Value: texts.Subtitle, SizePt: tc.SubtitleSize,
			AX: 0.5, Color: k.c.text, Opacity: tc.SubtitleOpacity, Z: zTitle,
		},
	)
}
