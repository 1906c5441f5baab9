// geometry_test.go tests ring generation, spiral sampling (count, monotonic
// radius, determinism, twin parameters), the wave and the emblem triangle.

package geometry

import (
	"errors"
	"math"
	"testing"
)

// ///////////////////////////////////////////////
// Rings
// ///////////////////////////////////////////////

func TestGenerateRings(t *testing.T) {
	center := Point{X: -0.4, Y: 0}
	radii := []float64{0.7, 1.4, 2.1, 2.8}

	rings, err := GenerateRings(center, radii)
	if err != nil {
		t.Fatalf("GenerateRings: %v", err)
	}
	if len(rings) != len(radii) {
		t.Fatalf("got %d rings, want %d", len(rings), len(radii))
	}
	for i, r := range rings {
		if r.Radius != radii[i] {
			t.Errorf("ring %d radius = %v, want %v", i, r.Radius, radii[i])
		}
		if r.Index != i {
			t.Errorf("ring %d index = %d", i, r.Index)
		}
		if r.Label != LayerNames[i] {
			t.Errorf("ring %d label = %q, want %q", i, r.Label, LayerNames[i])
		}
		if r.Center != center {
			t.Errorf("ring %d center = %v, want %v", i, r.Center, center)
		}
	}
}

func TestGenerateRingsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		radii []float64
	}{
		{"empty", nil},
		{"zero radius", []float64{0.7, 0, 2.1}},
		{"negative radius", []float64{-1}},
		{"NaN radius", []float64{math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateRings(Point{}, tt.radii)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Spiral
// ///////////////////////////////////////////////

func TestGenerateSpiral(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		thetaMax float64
		n        int
	}{
		{"production", 0.14, 0.26, 3.6 * math.Pi, 3000},
		{"older variant", 0.16, 0.24, 3.8 * math.Pi, 2500},
		{"two points", 1, 1, 1, 2},
		{"tight", 0.01, 0.05, 0.5, 17},
	}
	center := Point{X: -0.4, Y: 0.25}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, err := GenerateSpiral(center, tt.a, tt.b, tt.thetaMax, tt.n)
			if err != nil {
				t.Fatalf("GenerateSpiral: %v", err)
			}
			if len(pts) != tt.n {
				t.Fatalf("got %d points, want %d", len(pts), tt.n)
			}
			prev := -1.0
			for i, p := range pts {
				d := p.Dist(center)
				if d <= prev {
					t.Fatalf("distance not increasing at %d: %v <= %v", i, d, prev)
				}
				prev = d
			}
			if got, want := pts[0].Dist(center), tt.a; math.Abs(got-want) > 1e-12 {
				t.Errorf("first radius = %v, want %v", got, want)
			}
			want := tt.a * math.Exp(tt.b*tt.thetaMax)
			if got := pts[len(pts)-1].Dist(center); math.Abs(got-want) > 1e-9 {
				t.Errorf("last radius = %v, want %v", got, want)
			}
		})
	}
}

func TestGenerateSpiralDeterministic(t *testing.T) {
	a, err := GenerateSpiral(Point{X: 1, Y: 2}, 0.14, 0.26, 3.6*math.Pi, 500)
	if err != nil {
		t.Fatalf("GenerateSpiral: %v", err)
	}
	b, err := GenerateSpiral(Point{X: 1, Y: 2}, 0.14, 0.26, 3.6*math.Pi, 500)
	if err != nil {
		t.Fatalf("GenerateSpiral: %v", err)
	}
	for i := range a {
		if math.Float64bits(a[i].X) != math.Float64bits(b[i].X) ||
			math.Float64bits(a[i].Y) != math.Float64bits(b[i].Y) {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSpiralParamsTwin(t *testing.T) {
	main := SpiralParams{A: 0.16, B: 0.24, ThetaMax: 3.8 * math.Pi, Points: 100}
	twin := main
	twin.Phase = 0.08
	twin.Scale = 0.95

	mp, err := main.Generate(Point{})
	if err != nil {
		t.Fatalf("main: %v", err)
	}
	tp, err := twin.Generate(Point{})
	if err != nil {
		t.Fatalf("twin: %v", err)
	}
	for i := range mp {
		ratio := tp[i].Dist(Point{}) / mp[i].Dist(Point{})
		if math.Abs(ratio-0.95) > 1e-12 {
			t.Fatalf("radius ratio at %d = %v, want 0.95", i, ratio)
		}
	}
	gotPhase := math.Atan2(tp[0].Y, tp[0].X)
	if math.Abs(gotPhase-0.08) > 1e-12 {
		t.Errorf("twin phase = %v, want 0.08", gotPhase)
	}
}

func TestGenerateSpiralInvalid(t *testing.T) {
	tests := []struct {
		name string
		p    SpiralParams
	}{
		{"zero points", SpiralParams{A: 1, B: 1, ThetaMax: 1, Points: 0}},
		{"one point", SpiralParams{A: 1, B: 1, ThetaMax: 1, Points: 1}},
		{"zero a", SpiralParams{A: 0, B: 1, ThetaMax: 1, Points: 10}},
		{"negative b", SpiralParams{A: 1, B: -1, ThetaMax: 1, Points: 10}},
		{"zero theta", SpiralParams{A: 1, B: 1, ThetaMax: 0, Points: 10}},
		{"negative scale", SpiralParams{A: 1, B: 1, ThetaMax: 1, Points: 10, Scale: -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, err := tt.p.Generate(Point{})
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
			if pts != nil {
				t.Errorf("expected nil points, got %d", len(pts))
			}
		})
	}
}

// ///////////////////////////////////////////////
// Wave
// ///////////////////////////////////////////////

func TestGenerateWave(t *testing.T) {
	center := Point{X: -0.4, Y: 0}
	pts, err := GenerateWave(center, -0.9, 0.9, 0.12, 3.5, 0.22, 600)
	if err != nil {
		t.Fatalf("GenerateWave: %v", err)
	}
	if len(pts) != 600 {
		t.Fatalf("got %d points, want 600", len(pts))
	}
	if got := pts[0].X; math.Abs(got-(-1.3)) > 1e-12 {
		t.Errorf("first x = %v, want -1.3", got)
	}
	if got := pts[599].X; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("last x = %v, want 0.5", got)
	}
	for i, p := range pts {
		if p.Y < 0.22-0.12-1e-12 || p.Y > 0.22+0.12+1e-12 {
			t.Fatalf("point %d y = %v outside amplitude band", i, p.Y)
		}
	}
}

func TestGenerateWaveInvalid(t *testing.T) {
	if _, err := GenerateWave(Point{}, 0, 1, 1, 1, 0, 1); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("n=1: err = %v, want ErrInvalidGeometry", err)
	}
	if _, err := GenerateWave(Point{}, 1, 1, 1, 1, 0, 10); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("empty range: err = %v, want ErrInvalidGeometry", err)
	}
}

// ///////////////////////////////////////////////
// Triangle
// ///////////////////////////////////////////////

func TestTriangleVertices(t *testing.T) {
	center := Point{X: -0.4, Y: 0}
	v, err := TriangleVertices(center, 0.24)
	if err != nil {
		t.Fatalf("TriangleVertices: %v", err)
	}

	// Apex straight above the center.
	if math.Abs(v[0].X-center.X) > 1e-12 || math.Abs(v[0].Y-0.24) > 1e-12 {
		t.Errorf("apex = %v, want (%v, 0.24)", v[0], center.X)
	}
	// Base vertices mirror each other and sit at y = -r/2.
	if math.Abs((v[1].X-center.X)+(v[2].X-center.X)) > 1e-12 {
		t.Errorf("base not symmetric: %v %v", v[1], v[2])
	}
	for _, p := range v[1:] {
		if math.Abs(p.Y-(-0.12)) > 1e-12 {
			t.Errorf("base vertex y = %v, want -0.12", p.Y)
		}
	}
	// Equilateral: all sides r·√3.
	side := 0.24 * math.Sqrt(3)
	for i := range v {
		if d := v[i].Dist(v[(i+1)%3]); math.Abs(d-side) > 1e-12 {
			t.Errorf("side %d = %v, want %v", i, d, side)
		}
	}

	if _, err := TriangleVertices(center, 0); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("zero radius: err = %v, want ErrInvalidGeometry", err)
	}
}
