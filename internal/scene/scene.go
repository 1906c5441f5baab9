// Package scene holds the declarative drawing model: an ordered list of
// styled primitives in data coordinates that the rasterizer turns into
// pixels. Building a scene never touches a canvas.
package scene

import (
	"image/color"
	"slices"

	"tools.zach/dev/eqscheme/internal/geometry"
)

// ///////////////////////////////////////////////
// Style
// ///////////////////////////////////////////////

// Style is the paint applied to one primitive. A nil Stroke or Fill skips
// that pass. Opacity multiplies the alpha of both.
type Style struct {
	Stroke    *color.NRGBA
	Fill      *color.NRGBA
	Opacity   float64
	LineWidth float64 // points
	// Z orders primitives; equal Z keeps insertion order.
	Z int
	// HaloWidth, when > 0, strokes the outline first with HaloColor at this
	// width (points) so the main stroke stands out from what lies beneath.
	HaloWidth   float64
	HaloColor   color.NRGBA
	HaloOpacity float64
}

// Stroked returns a style that only strokes.
func Stroked(c color.NRGBA, width, opacity float64) Style {
	return Style{Stroke: &c, LineWidth: width, Opacity: opacity}
}

// Filled returns a style that only fills.
func Filled(c color.NRGBA, opacity float64) Style {
	return Style{Fill: &c, Opacity: opacity}
}

// WithEdge returns s with an additional stroke.
func (s Style) WithEdge(c color.NRGBA, width float64) Style {
	s.Stroke = &c
	s.LineWidth = width
	return s
}

// At returns s moved to layer z.
func (s Style) At(z int) Style {
	s.Z = z
	return s
}

// WithHalo returns s with a halo stroke beneath the main stroke.
func (s Style) WithHalo(c color.NRGBA, width, opacity float64) Style {
	s.HaloColor = c
	s.HaloWidth = width
	s.HaloOpacity = opacity
	return s
}

// ///////////////////////////////////////////////
// Primitives
// ///////////////////////////////////////////////

// Kind identifies a primitive type.
type Kind int

const (
	KindCircle Kind = iota
	KindPolyline
	KindPolygon
	KindRoundedRect
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolyline:
		return "polyline"
	case KindPolygon:
		return "polygon"
	case KindRoundedRect:
		return "rounded_rect"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Primitive is anything a Scene can hold.
type Primitive interface {
	Kind() Kind
	Paint() Style
}

// Circle is a circle of Radius data units around Center.
type Circle struct {
	Center geometry.Point
	Radius float64
	Style  Style
	// Tag names the circle's role, e.g. a ring's layer label.
	Tag string
}

// Polyline is an open path through Points.
type Polyline struct {
	Points []geometry.Point
	Style  Style
}

// Polygon is a closed path through Points.
type Polygon struct {
	Points []geometry.Point
	Style  Style
}

// RoundedRect is an axis-aligned rectangle with corners rounded by Radius.
// Min is the lower-left corner.
type RoundedRect struct {
	Min           geometry.Point
	Width, Height float64
	Radius        float64
	Style         Style
}

// Text is a block of one or more lines separated by "\n". AX and AY anchor
// the whole block on At in unit fractions: AX 0 = left, 0.5 = center,
// 1 = right; AY 0 = top, 0.5 = middle, 1 = bottom.
type Text struct {
	At     geometry.Point
	Value  string
	SizePt float64
	Bold   bool
	AX, AY float64
	// LineSpacing is the multiple of the font height between lines.
	LineSpacing float64
	Color       color.NRGBA
	Opacity     float64
	Z           int
}

func (Circle) Kind() Kind      { return KindCircle }
func (Polyline) Kind() Kind    { return KindPolyline }
func (Polygon) Kind() Kind     { return KindPolygon }
func (RoundedRect) Kind() Kind { return KindRoundedRect }
func (Text) Kind() Kind        { return KindText }

func (c Circle) Paint() Style      { return c.Style }
func (p Polyline) Paint() Style    { return p.Style }
func (p Polygon) Paint() Style     { return p.Style }
func (r RoundedRect) Paint() Style { return r.Style }

// Paint returns a fill-only style carrying the text color, opacity and Z.
func (t Text) Paint() Style {
	c := t.Color
	return Style{Fill: &c, Opacity: t.Opacity, Z: t.Z}
}

// ///////////////////////////////////////////////
// Scene
// ///////////////////////////////////////////////

// Scene is an ordered collection of primitives.
type Scene struct {
	items []Primitive
}

// New returns an empty scene.
func New() *Scene { return &Scene{} }

// Add appends primitives in order.
func (s *Scene) Add(p ...Primitive) {
	s.items = append(s.items, p...)
}

// Len returns the number of primitives.
func (s *Scene) Len() int { return len(s.items) }

// Items returns the primitives in insertion order.
func (s *Scene) Items() []Primitive { return slices.Clone(s.items) }

// Ordered returns the primitives in draw order: ascending Z, insertion
// order within equal Z.
func (s *Scene) Ordered() []Primitive {
	out := slices.Clone(s.items)
	slices.SortStableFunc(out, func(a, b Primitive) int {
		return a.Paint().Z - b.Paint().Z
	})
	return out
}

// Circles returns the circles in insertion order, only those with a Tag
// when tagged is set.
func (s *Scene) Circles(tagged bool) []Circle {
	var out []Circle
	for _, p := range s.items {
		if c, ok := p.(Circle); ok && (!tagged || c.Tag != "") {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns every text primitive in insertion order.
func (s *Scene) Texts() []Text {
	var out []Text
	for _, p := range s.items {
		if t, ok := p.(Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of primitives of kind k.
func (s *Scene) Count(k Kind) int {
	n := 0
	for _, p := range s.items {
		if p.Kind() == k {
			n++
		}
	}
	return n
}
