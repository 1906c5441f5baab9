// Tests for the rasterizer: canvas size and mapping, Z ordering, text
// output, byte-identical PNGs and write failures.

package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"tools.zach/dev/eqscheme/internal/geometry"
	"tools.zach/dev/eqscheme/internal/layout"
	"tools.zach/dev/eqscheme/internal/scene"
)

var (
	bg    = color.NRGBA{0xF5, 0xF4, 0xF0, 0xFF}
	red   = color.NRGBA{0xFF, 0, 0, 0xFF}
	blue  = color.NRGBA{0, 0, 0xFF, 0xFF}
	black = color.NRGBA{0, 0, 0, 0xFF}
)

func testOptions() Options {
	return Options{
		Width: 400, Height: 200, DPI: 72, Margin: 10,
		View: layout.Rect{
			Min: geometry.Point{X: -2, Y: -1},
			Max: geometry.Point{X: 2, Y: 1},
		},
		Background: bg,
	}
}

func newRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	r, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func sampleScene() *scene.Scene {
	s := scene.New()
	s.Add(
		scene.Circle{Radius: 0.8, Style: scene.Filled(blue, 0.3).WithEdge(black, 2)},
		scene.Polyline{
			Points: []geometry.Point{{X: -1.5, Y: -0.5}, {X: 0, Y: 0.5}, {X: 1.5, Y: -0.5}},
			Style:  scene.Stroked(red, 3, 0.8).WithHalo(bg, 5, 0.8),
		},
		scene.RoundedRect{Min: geometry.Point{X: 0.5, Y: 0.2}, Width: 1, Height: 0.5, Radius: 0.1, Style: scene.Filled(bg, 1).WithEdge(red, 1)},
		scene.Text{At: geometry.Point{X: 0, Y: 0}, Value: "A↔R↔C\nЖизнь", SizePt: 12, Bold: true, AX: 0.5, AY: 0.5, Color: black, Opacity: 1},
	)
	return s
}

// ///////////////////////////////////////////////
// Construction and mapping
// ///////////////////////////////////////////////

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"zero width", func(o *Options) { o.Width = 0 }},
		{"zero dpi", func(o *Options) { o.DPI = 0 }},
		{"margin eats canvas", func(o *Options) { o.Margin = 100 }},
		{"empty view", func(o *Options) { o.View.Max = o.View.Min }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions()
			tt.mutate(&o)
			if _, err := New(o, nil); !errors.Is(err, geometry.ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestToPixel(t *testing.T) {
	r := newRasterizer(t)
	// 380x180 available for a 4x2 view: height limits, 90 px per unit,
	// 360 px wide centered in 380.
	if r.Scale() != 90 {
		t.Fatalf("Scale = %v, want 90", r.Scale())
	}

	tests := []struct {
		p      geometry.Point
		wx, wy float64
	}{
		{geometry.Point{X: -2, Y: 1}, 20, 10},
		{geometry.Point{X: 2, Y: -1}, 380, 190},
		{geometry.Point{X: 0, Y: 0}, 200, 100},
	}
	for _, tt := range tests {
		x, y := r.ToPixel(tt.p)
		if math.Abs(x-tt.wx) > 1e-9 || math.Abs(y-tt.wy) > 1e-9 {
			t.Errorf("ToPixel(%v) = (%v, %v), want (%v, %v)", tt.p, x, y, tt.wx, tt.wy)
		}
	}
}

// ///////////////////////////////////////////////
// Drawing
// ///////////////////////////////////////////////

func TestRenderSizeAndBackground(t *testing.T) {
	img, err := newRasterizer(t).Render(scene.New())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Fatalf("bounds = %v, want 400x200", b)
	}
	if got := nrgbaAt(img, 0, 0); got != bg {
		t.Errorf("corner = %v, want background %v", got, bg)
	}
}

func TestRenderZOrder(t *testing.T) {
	s := scene.New()
	// Inserted first but on a higher layer, so it ends on top.
	s.Add(
		scene.Circle{Radius: 0.5, Style: scene.Filled(red, 1).At(2)},
		scene.Circle{Radius: 0.5, Style: scene.Filled(blue, 1).At(1)},
	)
	img, err := newRasterizer(t).Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := nrgbaAt(img, 200, 100); got != red {
		t.Errorf("center = %v, want red on top", got)
	}
}

func TestRenderYUp(t *testing.T) {
	s := scene.New()
	s.Add(scene.Polygon{
		Points: []geometry.Point{{X: -1, Y: 0.2}, {X: 1, Y: 0.2}, {X: 1, Y: 0.9}, {X: -1, Y: 0.9}},
		Style:  scene.Filled(red, 1),
	})
	img, err := newRasterizer(t).Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := nrgbaAt(img, 200, 50); got != red {
		t.Errorf("upper half = %v, want red", got)
	}
	if got := nrgbaAt(img, 200, 150); got != bg {
		t.Errorf("lower half = %v, want background", got)
	}
}

func TestRenderText(t *testing.T) {
	s := scene.New()
	s.Add(scene.Text{At: geometry.Point{X: -1.5, Y: 0}, Value: "Dynamic Equilibrium", SizePt: 20, Color: black, Opacity: 1, AY: 0.5})
	img, err := newRasterizer(t).Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	dark := 0
	for y := 70; y < 130; y++ {
		for x := 65; x < 300; x++ {
			if c := nrgbaAt(img, x, y); c.R < 0x80 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("no text pixels drawn")
	}
}

func TestRenderTextMultiLine(t *testing.T) {
	r := newRasterizer(t)
	darkRows := func(value string) (top, bottom int) {
		t.Helper()
		s := scene.New()
		s.Add(scene.Text{At: geometry.Point{X: -1.5, Y: 0.8}, Value: value, SizePt: 14, Color: black, Opacity: 1})
		img, err := r.Render(s)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		top, bottom = -1, -1
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if nrgbaAt(img, x, y).R < 0x80 {
					if top < 0 {
						top = y
					}
					bottom = y
					break
				}
			}
		}
		return top, bottom
	}

	oneTop, oneBottom := darkRows("Ag")
	twoTop, twoBottom := darkRows("Ag\nAg")
	if oneTop < 0 || twoTop < 0 {
		t.Fatal("no text pixels drawn")
	}
	if oneTop != twoTop {
		t.Errorf("top-anchored block moved: first line at %d, block at %d", oneTop, twoTop)
	}
	// The second line sits a line height (1.25 x 14 px) below the first.
	if twoBottom-oneBottom < 14 {
		t.Errorf("second line bottom %d, want at least 14 px below %d", twoBottom, oneBottom)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := newRasterizer(t)
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	if err := r.WritePNG(sampleScene(), a); err != nil {
		t.Fatalf("WritePNG a: %v", err)
	}
	if err := r.WritePNG(sampleScene(), b); err != nil {
		t.Fatalf("WritePNG b: %v", err)
	}
	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if len(da) == 0 || !bytes.Equal(da, db) {
		t.Error("identical scenes produced different PNG bytes")
	}
}

// ///////////////////////////////////////////////
// Writing
// ///////////////////////////////////////////////

func TestWritePNGOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := newRasterizer(t).WritePNG(sampleScene(), path); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the image", len(entries))
	}
}

func TestWritePNGUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.png")
	err := newRasterizer(t).WritePNG(sampleScene(), path)
	if !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("err = %v, want ErrOutputWrite", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("file created despite error")
	}
}
