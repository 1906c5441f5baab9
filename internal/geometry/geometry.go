// Package geometry generates the radial guide geometry of the scheme: the
// concentric layer rings, the logarithmic spiral, the inner wave and the
// emblem triangle.
//
// All functions are pure. Identical inputs always yield bit-identical output,
// which the renderer relies on for reproducible images.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned for degenerate inputs that would produce an
// empty or meaningless scene (non-positive radius, too few sample points).
var ErrInvalidGeometry = errors.New("invalid geometry parameter")

// ///////////////////////////////////////////////
// Points
// ///////////////////////////////////////////////

// Point is a position in data units. Y grows upward.
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Radians converts an angle in degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Polar returns the point at distance radius from center along angle theta
// (radians, 0 = +x axis, counter-clockwise).
func Polar(center Point, radius, theta float64) Point {
	return Point{
		X: center.X + radius*math.Cos(theta),
		Y: center.Y + radius*math.Sin(theta),
	}
}

// ///////////////////////////////////////////////
// Rings
// ///////////////////////////////////////////////

// LayerNames are the semantic labels of the four rings, innermost first.
var LayerNames = [4]string{"Organism", "Rhythm", "Meaning", "Environment"}

// Ring is one concentric guide circle.
type Ring struct {
	// Index is the ring's position, 0 = innermost.
	Index int
	// Label is the layer name from [LayerNames], empty past the fourth ring.
	Label  string
	Center Point
	Radius float64
}

// GenerateRings returns one Ring per radius in the given order. Radii are
// expected to be strictly increasing; ordering is not enforced, but every
// radius must be positive.
func GenerateRings(center Point, radii []float64) ([]Ring, error) {
	if len(radii) == 0 {
		return nil, fmt.Errorf("rings: no radii: %w", ErrInvalidGeometry)
	}
	rings := make([]Ring, 0, len(radii))
	for i, r := range radii {
		if !(r > 0) {
			return nil, fmt.Errorf("rings: radius[%d] = %v: %w", i, r, ErrInvalidGeometry)
		}
		ring := Ring{Index: i, Center: center, Radius: r}
		if i < len(LayerNames) {
			ring.Label = LayerNames[i]
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// ///////////////////////////////////////////////
// Spiral
// ///////////////////////////////////////////////

// SpiralParams describes a logarithmic spiral r(θ) = Scale·A·e^(B·θ),
// sampled at Points uniform steps of θ over [0, ThetaMax] and drawn at
// angle θ + Phase.
type SpiralParams struct {
	A, B     float64
	ThetaMax float64
	Points   int
	// Phase rotates every sample by a constant angle in radians.
	Phase float64
	// Scale multiplies the radius. Zero means 1.
	Scale float64
}

// GenerateSpiral samples the spiral r(θ) = a·e^(bθ) around center at numPoints
// uniform values of θ in [0, thetaMax].
func GenerateSpiral(center Point, a, b, thetaMax float64, numPoints int) ([]Point, error) {
	return SpiralParams{A: a, B: b, ThetaMax: thetaMax, Points: numPoints}.Generate(center)
}

// Generate samples the spiral around center. The distance from center grows
// strictly with the sample index.
func (p SpiralParams) Generate(center Point) ([]Point, error) {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	switch {
	case p.Points < 2:
		return nil, fmt.Errorf("spiral: %d points: %w", p.Points, ErrInvalidGeometry)
	case !(p.A > 0), !(p.B > 0):
		return nil, fmt.Errorf("spiral: a=%v b=%v must be > 0: %w", p.A, p.B, ErrInvalidGeometry)
	case !(p.ThetaMax > 0):
		return nil, fmt.Errorf("spiral: theta_max=%v: %w", p.ThetaMax, ErrInvalidGeometry)
	case !(scale > 0):
		return nil, fmt.Errorf("spiral: scale=%v: %w", scale, ErrInvalidGeometry)
	}

	pts := make([]Point, p.Points)
	step := p.ThetaMax / float64(p.Points-1)
	for i := range pts {
		theta := float64(i) * step
		r := scale * p.A * math.Exp(p.B*theta)
		pts[i] = Polar(center, r, theta+p.Phase)
	}
	return pts, nil
}

// ///////////////////////////////////////////////
// Wave
// ///////////////////////////////////////////////

// GenerateWave samples y = amplitude·sin(frequency·x) + lift for n uniform
// values of x in [xMin, xMax], translated by center.
func GenerateWave(center Point, xMin, xMax, amplitude, frequency, lift float64, n int) ([]Point, error) {
	if n < 2 {
		return nil, fmt.Errorf("wave: %d points: %w", n, ErrInvalidGeometry)
	}
	if !(xMax > xMin) {
		return nil, fmt.Errorf("wave: empty x range [%v, %v]: %w", xMin, xMax, ErrInvalidGeometry)
	}
	pts := make([]Point, n)
	step := (xMax - xMin) / float64(n-1)
	for i := range pts {
		x := xMin + float64(i)*step
		pts[i] = Point{
			X: center.X + x,
			Y: center.Y + amplitude*math.Sin(frequency*x) + lift,
		}
	}
	return pts, nil
}

// ///////////////////////////////////////////////
// Triangle
// ///////////////////////////////////////////////

// triangleAngles are the vertex directions of the emblem triangle, apex up.
var triangleAngles = [3]float64{90, 210, 330}

// TriangleVertices returns the equilateral triangle inscribed in a circle of
// the given radius around center, apex first.
func TriangleVertices(center Point, radius float64) ([3]Point, error) {
	var v [3]Point
	if !(radius > 0) {
		return v, fmt.Errorf("triangle: radius=%v: %w", radius, ErrInvalidGeometry)
	}
	for i, deg := range triangleAngles {
		v[i] = Polar(center, radius, Radians(deg))
	}
	return v, nil
}
