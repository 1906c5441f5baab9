// Package layout places the labeled annotation boxes around the radial
// diagram. Placement is a closed-form rule applied per box; there is no
// collision detection, so the production angles are chosen by hand and
// checked in tests.
package layout

import (
	"fmt"
	"math"

	"tools.zach/dev/eqscheme/internal/geometry"
)

// ///////////////////////////////////////////////
// Rect
// ///////////////////////////////////////////////

// Rect is an axis-aligned rectangle in data units.
type Rect struct {
	Min, Max geometry.Point
}

// RectFrom returns the rectangle with lower-left corner min and the given size.
func RectFrom(min geometry.Point, w, h float64) Rect {
	return Rect{Min: min, Max: geometry.Point{X: min.X + w, Y: min.Y + h}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() geometry.Point {
	return geometry.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Inset shrinks r by d on every side. A negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{
		Min: geometry.Point{X: r.Min.X + d, Y: r.Min.Y + d},
		Max: geometry.Point{X: r.Max.X - d, Y: r.Max.Y - d},
	}
}

// Overlaps reports whether the interiors of r and o intersect. Rectangles
// that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.Min.X >= r.Min.X && o.Max.X <= r.Max.X &&
		o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y
}

// DistanceTo returns the distance from p to the nearest point of r, zero
// when p is inside.
func (r Rect) DistanceTo(p geometry.Point) float64 {
	dx := math.Max(0, math.Max(r.Min.X-p.X, p.X-r.Max.X))
	dy := math.Max(0, math.Max(r.Min.Y-p.Y, p.Y-r.Max.Y))
	return math.Hypot(dx, dy)
}

// ///////////////////////////////////////////////
// Label Box
// ///////////////////////////////////////////////

// Side is the horizontal direction a box extends from its ray.
type Side int

const (
	// SideRight boxes grow rightward from their left edge.
	SideRight Side = iota
	// SideLeft boxes grow leftward from their right edge.
	SideLeft
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// BoxSpec holds the dimensions shared by label boxes, in data units.
type BoxSpec struct {
	// Offset is the distance from the ring to the box center along the ray.
	Offset float64
	// Width and Height are the inner text area.
	Width, Height float64
	// Inset is how far the outer edge facing the ray sits back from the
	// box center toward the ray.
	Inset float64
	// Pad surrounds the inner area and is also the corner radius.
	Pad float64
	// TextInset is the left margin of the text inside the inner area.
	TextInset float64
	// TitleDrop and SubtitleDrop are the distances from the inner top edge
	// to the top of the title and the first subtitle line.
	TitleDrop, SubtitleDrop float64
}

// Validate rejects specs that would produce an empty or inverted box.
func (b BoxSpec) Validate() error {
	switch {
	case !(b.Width > 0), !(b.Height > 0):
		return fmt.Errorf("box size %vx%v: %w", b.Width, b.Height, geometry.ErrInvalidGeometry)
	case b.Offset < 0, b.Inset < 0, b.Pad < 0:
		return fmt.Errorf("box offset/inset/pad must be >= 0: %w", geometry.ErrInvalidGeometry)
	}
	return nil
}

// LabelBox is a placed annotation box.
type LabelBox struct {
	AngleDeg float64
	// Anchor is the point on the ring the connector starts from.
	Anchor geometry.Point
	// Center is the ray point Offset beyond the ring.
	Center geometry.Point
	Side   Side
	// Outer is the drawn rectangle, including Pad.
	Outer Rect
	// Inner is the text area.
	Inner        Rect
	CornerRadius float64
	TitleAt      geometry.Point
	SubtitleAt   geometry.Point
	Title        string
	Subtitle     []string
}

// Bounds returns the full drawn extent of the box.
func (l LabelBox) Bounds() Rect { return l.Outer }

// Connector returns the segment drawn from the ring to the box.
func (l LabelBox) Connector() [2]geometry.Point {
	return [2]geometry.Point{l.Anchor, l.Center}
}

// Place computes the box for a ring of the given radius around center at
// angleDeg degrees. When the ray points right (cos > 0) the box's outer
// left edge sits Inset short of the ray point and the box extends right;
// otherwise its outer right edge sits Inset past the ray point and it
// extends left. The facing edge never crosses back over the anchor, so a
// box never points back across the center. The box is vertically centered
// on the ray point.
func Place(center geometry.Point, radius, angleDeg float64, title string, subtitle []string, spec BoxSpec) (LabelBox, error) {
	if !(radius > 0) {
		return LabelBox{}, fmt.Errorf("place: radius=%v: %w", radius, geometry.ErrInvalidGeometry)
	}
	if err := spec.Validate(); err != nil {
		return LabelBox{}, fmt.Errorf("place: %w", err)
	}

	theta := geometry.Radians(angleDeg)
	lb := LabelBox{
		AngleDeg:     angleDeg,
		Anchor:       geometry.Polar(center, radius, theta),
		Center:       geometry.Polar(center, radius+spec.Offset, theta),
		CornerRadius: spec.Pad,
		Title:        title,
		Subtitle:     subtitle,
	}

	outerW := spec.Width + 2*spec.Pad
	outerH := spec.Height + 2*spec.Pad
	bottom := lb.Center.Y - outerH/2

	var left float64
	if math.Cos(theta) > 0 {
		lb.Side = SideRight
		left = math.Max(lb.Center.X-spec.Inset, lb.Anchor.X)
	} else {
		lb.Side = SideLeft
		right := math.Min(lb.Center.X+spec.Inset, lb.Anchor.X)
		left = right - outerW
	}
	lb.Outer = RectFrom(geometry.Point{X: left, Y: bottom}, outerW, outerH)
	lb.Inner = lb.Outer.Inset(spec.Pad)

	textX := lb.Inner.Min.X + spec.TextInset
	lb.TitleAt = geometry.Point{X: textX, Y: lb.Inner.Max.Y - spec.TitleDrop}
	lb.SubtitleAt = geometry.Point{X: textX, Y: lb.Inner.Max.Y - spec.SubtitleDrop}
	return lb, nil
}
