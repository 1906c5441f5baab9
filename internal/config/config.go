// Package config provides the style and layout configuration of the scheme
// renderer.
//
// Configuration is a TOML "scheme file" decoded over [DefaultConfig]. It
// holds every hand-tuned constant of the drawing: canvas and view box,
// palette, ring radii, spiral and wave parameters, emblem sizes, box
// dimensions and the per-layer angles. The decoded Config is immutable and
// shared read-only by every rendered variant.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/eqscheme/internal/atomicfile"
	"tools.zach/dev/eqscheme/internal/geometry"
	"tools.zach/dev/eqscheme/internal/layout"
	"tools.zach/dev/eqscheme/internal/locale"
	"tools.zach/dev/eqscheme/internal/logger"
	"tools.zach/dev/eqscheme/internal/migrate"
	"tools.zach/dev/eqscheme/internal/palette"
	"tools.zach/dev/eqscheme/internal/paths"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents a complete scheme file.
type Config struct {
	// Version is the scheme file schema version used for migrations.
	Version int `toml:"version"`
	// Output holds file naming and locale selection.
	Output OutputConfig `toml:"output"`
	// Canvas holds the image size and the visible data range.
	Canvas CanvasConfig `toml:"canvas"`
	// Palette holds the colors.
	Palette PaletteConfig `toml:"palette"`
	// Center is the common center of rings, spiral and emblem.
	Center CenterConfig `toml:"center"`
	// Rings holds the four layer rings.
	Rings RingsConfig `toml:"rings"`
	// Spiral holds the logarithmic spiral.
	Spiral SpiralConfig `toml:"spiral"`
	// Wave holds the sine wave above the emblem.
	Wave WaveConfig `toml:"wave"`
	// Emblem holds the central emblem.
	Emblem EmblemConfig `toml:"emblem"`
	// Boxes holds the dimensions and styling shared by all label boxes.
	Boxes BoxesConfig `toml:"boxes"`
	// Title holds the heading at the top of the image.
	Title TitleConfig `toml:"title"`
	// Fonts selects the regular and bold typefaces.
	Fonts FontsConfig `toml:"fonts"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Layers places one label box per layer.
	Layers []LayerConfig `toml:"layers"`
}

// OutputConfig holds file naming and locale selection.
type OutputConfig struct {
	// Dir is the directory images are written to.
	Dir string `toml:"dir"`
	// Scheme is the file name stem; images are named <scheme>_<locale>.png.
	Scheme string `toml:"scheme"`
	// Locales lists the locale codes or glob patterns rendered by default.
	Locales []string `toml:"locales"`
	// LocalesFile is an optional text bundle replacing the built-in one.
	LocalesFile string `toml:"locales_file,omitempty"`
}

// CanvasConfig holds the image size and the visible data range.
type CanvasConfig struct {
	// Width is the image width in pixels.
	Width int `toml:"width"`
	// Height is the image height in pixels.
	Height int `toml:"height"`
	// DPI converts point sizes (fonts, line widths) to pixels.
	DPI float64 `toml:"dpi"`
	// Margin is the blank border in pixels around the view box.
	Margin int `toml:"margin"`
	// XMin is the left edge of the view box in data units.
	XMin float64 `toml:"x_min"`
	// XMax is the right edge of the view box in data units.
	XMax float64 `toml:"x_max"`
	// YMin is the bottom edge of the view box in data units.
	YMin float64 `toml:"y_min"`
	// YMax is the top edge of the view box in data units.
	YMax float64 `toml:"y_max"`
}

// PaletteConfig holds the colors as hex strings.
type PaletteConfig struct {
	// Background fills the canvas.
	Background string `toml:"background"`
	// Accent colors the spiral, emblem, ring tints, dots and connectors.
	Accent string `toml:"accent"`
	// Line colors ring outlines, the wave and the dot edges.
	Line string `toml:"line"`
	// Text colors all text.
	Text string `toml:"text"`
	// BoxFill fills label boxes and the emblem disc.
	BoxFill string `toml:"box_fill"`
	// BoxEdge outlines label boxes.
	BoxEdge string `toml:"box_edge"`
	// SubtextOpacity applies to box subtitles.
	SubtextOpacity float64 `toml:"subtext_opacity"`
}

// CenterConfig is a point in data units.
type CenterConfig struct {
	// X is the horizontal position.
	X float64 `toml:"x"`
	// Y is the vertical position.
	Y float64 `toml:"y"`
}

// RingsConfig holds the layer rings.
type RingsConfig struct {
	// Radii are the ring radii, innermost first, strictly increasing.
	Radii []float64 `toml:"radii"`
	// FillOpacity tints each ring's disc with the accent color.
	FillOpacity []float64 `toml:"fill_opacity"`
	// LineWidth is the outline width in points.
	LineWidth float64 `toml:"line_width"`
	// Opacity is the outline opacity.
	Opacity float64 `toml:"opacity"`
}

// SpiralConfig holds the logarithmic spiral r = a·e^(bθ).
type SpiralConfig struct {
	// A is the starting radius.
	A float64 `toml:"a"`
	// B is the growth rate.
	B float64 `toml:"b"`
	// ThetaMaxPi is the end angle in multiples of π.
	ThetaMaxPi float64 `toml:"theta_max_pi"`
	// Points is the number of samples.
	Points int `toml:"points"`
	// LineWidth is the stroke width in points.
	LineWidth float64 `toml:"line_width"`
	// Opacity is the stroke opacity.
	Opacity float64 `toml:"opacity"`
	// HaloWidth is the background-colored outline under the stroke (0 = off).
	HaloWidth float64 `toml:"halo_width"`
	// HaloOpacity is the halo opacity.
	HaloOpacity float64 `toml:"halo_opacity"`
	// Twin draws a second, slightly rotated and shrunk spiral.
	Twin TwinConfig `toml:"twin"`
}

// TwinConfig holds the optional twin spiral.
type TwinConfig struct {
	// Enabled turns the twin on.
	Enabled bool `toml:"enabled"`
	// Phase rotates the twin in radians.
	Phase float64 `toml:"phase"`
	// Scale multiplies the twin's radius.
	Scale float64 `toml:"scale"`
	// LineWidth is the stroke width in points.
	LineWidth float64 `toml:"line_width"`
	// Opacity is the stroke opacity.
	Opacity float64 `toml:"opacity"`
}

// WaveConfig holds y = amplitude·sin(frequency·x) + lift, drawn relative to
// the center.
type WaveConfig struct {
	// Enabled turns the wave on.
	Enabled bool `toml:"enabled"`
	// XMin is the first x offset from the center.
	XMin float64 `toml:"x_min"`
	// XMax is the last x offset from the center.
	XMax float64 `toml:"x_max"`
	// Amplitude is the sine amplitude.
	Amplitude float64 `toml:"amplitude"`
	// Frequency is the sine frequency.
	Frequency float64 `toml:"frequency"`
	// Lift raises the wave above the center.
	Lift float64 `toml:"lift"`
	// Points is the number of samples.
	Points int `toml:"points"`
	// LineWidth is the stroke width in points.
	LineWidth float64 `toml:"line_width"`
	// Opacity is the stroke opacity.
	Opacity float64 `toml:"opacity"`
}

// EmblemConfig holds the central emblem.
type EmblemConfig struct {
	// DiscRadius is the radius of the filled backing disc.
	DiscRadius float64 `toml:"disc_radius"`
	// DiscLineWidth is the disc outline width in points.
	DiscLineWidth float64 `toml:"disc_line_width"`
	// TriangleRadius is the circumradius of the triangle.
	TriangleRadius float64 `toml:"triangle_radius"`
	// TriangleLineWidth is the triangle outline width in points.
	TriangleLineWidth float64 `toml:"triangle_line_width"`
	// InnerRadius is the radius of the inscribed circle.
	InnerRadius float64 `toml:"inner_radius"`
	// InnerLineWidth is the inscribed circle outline width in points.
	InnerLineWidth float64 `toml:"inner_line_width"`
	// Mark is the short text in the middle of the emblem.
	Mark string `toml:"mark"`
	// MarkSize is the mark font size in points.
	MarkSize float64 `toml:"mark_size"`
	// CaptionOffset is the distance below the center of the caption's top.
	CaptionOffset float64 `toml:"caption_offset"`
	// CaptionSize is the caption font size in points.
	CaptionSize float64 `toml:"caption_size"`
	// CaptionOpacity is the caption opacity.
	CaptionOpacity float64 `toml:"caption_opacity"`
}

// BoxesConfig holds the dimensions and styling shared by all label boxes.
type BoxesConfig struct {
	// Offset is the distance from the ring to the box along the ray.
	Offset float64 `toml:"offset"`
	// Width is the inner text area width.
	Width float64 `toml:"width"`
	// Height is the inner text area height.
	Height float64 `toml:"height"`
	// Inset is how far the box edge facing the ray sits back toward it.
	Inset float64 `toml:"inset"`
	// Pad surrounds the text area and rounds the corners.
	Pad float64 `toml:"pad"`
	// TextInset is the left margin of text in the box.
	TextInset float64 `toml:"text_inset"`
	// TitleDrop is the distance from the text area top to the title.
	TitleDrop float64 `toml:"title_drop"`
	// SubtitleDrop is the distance from the text area top to the subtitle.
	SubtitleDrop float64 `toml:"subtitle_drop"`
	// LineWidth is the box outline width in points.
	LineWidth float64 `toml:"line_width"`
	// Opacity applies to the box fill and outline.
	Opacity float64 `toml:"opacity"`
	// TitleSize is the box title font size in points.
	TitleSize float64 `toml:"title_size"`
	// SubtitleSize is the box subtitle font size in points.
	SubtitleSize float64 `toml:"subtitle_size"`
	// DotRadius is the radius of the pointer dot on the ring.
	DotRadius float64 `toml:"dot_radius"`
	// DotLineWidth is the pointer dot outline width in points.
	DotLineWidth float64 `toml:"dot_line_width"`
	// ConnectorWidth is the connector line width in points.
	ConnectorWidth float64 `toml:"connector_width"`
	// ConnectorOpacity is the connector opacity.
	ConnectorOpacity float64 `toml:"connector_opacity"`
}

// TitleConfig holds the heading. Positions are fractions of the view box
// height measured from its bottom.
type TitleConfig struct {
	// Size is the title font size in points.
	Size float64 `toml:"size"`
	// Y is the position of the title's top.
	Y float64 `toml:"y"`
	// Opacity is the title opacity.
	Opacity float64 `toml:"opacity"`
	// SubtitleSize is the subtitle font size in points.
	SubtitleSize float64 `toml:"subtitle_size"`
	// SubtitleY is the position of the subtitle's top.
	SubtitleY float64 `toml:"subtitle_y"`
	// SubtitleOpacity is the subtitle opacity.
	SubtitleOpacity float64 `toml:"subtitle_opacity"`
}

// FontsConfig selects the typefaces.
type FontsConfig struct {
	// Regular is the regular face: a font file path, "google:Family:weight",
	// or empty for the built-in Go font.
	Regular string `toml:"regular"`
	// Bold is the bold face, same forms as Regular.
	Bold string `toml:"bold"`
	// CacheDir stores downloaded fonts. Empty uses the user cache directory.
	CacheDir string `toml:"cache_dir,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File additionally writes the log to a rotating file.
	File string `toml:"file,omitempty"`
	// MaxSizeMB is the log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// LayerConfig places one layer's label box.
type LayerConfig struct {
	// Key selects the texts: org, rh, me or env.
	Key string `toml:"key"`
	// Ring is the index of the ring the box points at.
	Ring int `toml:"ring"`
	// Angle is the direction of the box from the center, in degrees.
	Angle float64 `toml:"angle"`
	// Width overrides boxes.width when > 0.
	Width float64 `toml:"width,omitempty"`
	// Height overrides boxes.height when > 0.
	Height float64 `toml:"height,omitempty"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns the production scheme.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Scheme.CurrentVersion,
		Output: OutputConfig{
			Dir:     ".",
			Scheme:  paths.DefaultScheme,
			Locales: []string{"en", "ru"},
		},
		Canvas: CanvasConfig{
			Width: 3200, Height: 1800, DPI: 150, Margin: 60,
			XMin: -7.0, XMax: 6.2, YMin: -3.2, YMax: 4.2,
		},
		Palette: PaletteConfig{
			Background:     "#F5F4F0",
			Accent:         "#86A68B",
			Line:           "#0E1314",
			Text:           "#0E1314",
			BoxFill:        "#FFFFFF",
			BoxEdge:        "#86A68B",
			SubtextOpacity: 0.75,
		},
		Center: CenterConfig{X: -0.4, Y: 0},
		Rings: RingsConfig{
			Radii:       []float64{0.7, 1.4, 2.1, 2.8},
			FillOpacity: []float64{0.08, 0.06, 0.04, 0.03},
			LineWidth:   2.0,
			Opacity:     0.35,
		},
		Spiral: SpiralConfig{
			A: 0.14, B: 0.26, ThetaMaxPi: 3.6, Points: 3000,
			LineWidth: 2.5, Opacity: 0.85,
			HaloWidth: 3.5, HaloOpacity: 0.8,
			Twin: TwinConfig{
				Enabled: false, Phase: 0.08, Scale: 0.95,
				LineWidth: 0.9, Opacity: 0.35,
			},
		},
		Wave: WaveConfig{
			Enabled:   true,
			XMin:      -0.9,
			XMax:      0.9,
			Amplitude: 0.12,
			Frequency: 3.5,
			Lift:      0.22,
			Points:    600,
			LineWidth: 1.2,
			Opacity:   0.25,
		},
		Emblem: EmblemConfig{
			DiscRadius: 0.38, DiscLineWidth: 2.5,
			TriangleRadius: 0.24, TriangleLineWidth: 2.2,
			InnerRadius: 0.125, InnerLineWidth: 2.0,
			Mark: "A↔R↔C", MarkSize: 13,
			CaptionOffset: 0.52, CaptionSize: 9.5, CaptionOpacity: 0.85,
		},
		Boxes: BoxesConfig{
			Offset: 1.0, Width: 2.6, Height: 1.0,
			Inset: 0.15, Pad: 0.16,
			TextInset: 0.20, TitleDrop: 0.20, SubtitleDrop: 0.50,
			LineWidth: 2.0, Opacity: 0.98,
			TitleSize: 13, SubtitleSize: 10,
			DotRadius: 0.055, DotLineWidth: 1.0,
			ConnectorWidth: 1.4, ConnectorOpacity: 0.6,
		},
		Title: TitleConfig{
			Size: 24, Y: 0.975, Opacity: 0.95,
			SubtitleSize: 13, SubtitleY: 0.93, SubtitleOpacity: 0.75,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Layers: DefaultLayers(),
	}
}

// DefaultLayers returns the production box placement.
func DefaultLayers() []LayerConfig {
	return []LayerConfig{
		{Key: "org", Ring: 0, Angle: 220},
		{Key: "rh", Ring: 1, Angle: 320},
		{Key: "me", Ring: 2, Angle: 25},
		{Key: "env", Ring: 3, Angle: 135, Width: 3.4, Height: 1.05},
	}
}

// ///////////////////////////////////////////////
// Example Configuration
// ///////////////////////////////////////////////

// ExampleConfig returns the Config written to scheme.default.toml.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

// CenterPoint returns the diagram center.
func (c *Config) CenterPoint() geometry.Point {
	return geometry.Point{X: c.Center.X, Y: c.Center.Y}
}

// SpiralParams returns the main spiral.
func (c *Config) SpiralParams() geometry.SpiralParams {
	return geometry.SpiralParams{
		A: c.Spiral.A, B: c.Spiral.B,
		ThetaMax: c.Spiral.ThetaMaxPi * math.Pi,
		Points:   c.Spiral.Points,
	}
}

// TwinParams returns the twin spiral.
func (c *Config) TwinParams() geometry.SpiralParams {
	p := c.SpiralParams()
	p.Phase = c.Spiral.Twin.Phase
	p.Scale = c.Spiral.Twin.Scale
	return p
}

// BoxSpec returns the box dimensions for layer l.
func (c *Config) BoxSpec(l LayerConfig) layout.BoxSpec {
	b := c.Boxes
	spec := layout.BoxSpec{
		Offset: b.Offset, Width: b.Width, Height: b.Height,
		Inset: b.Inset, Pad: b.Pad,
		TextInset: b.TextInset, TitleDrop: b.TitleDrop, SubtitleDrop: b.SubtitleDrop,
	}
	if l.Width > 0 {
		spec.Width = l.Width
	}
	if l.Height > 0 {
		spec.Height = l.Height
	}
	return spec
}

// ViewBox returns the visible data range.
func (c *Config) ViewBox() layout.Rect {
	return layout.Rect{
		Min: geometry.Point{X: c.Canvas.XMin, Y: c.Canvas.YMin},
		Max: geometry.Point{X: c.Canvas.XMax, Y: c.Canvas.YMax},
	}
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing, zero or unreadable.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil || v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads the scheme file at path over the defaults. An empty path or a
// missing file yields DefaultConfig. A file at an older schema version is
// backed up to path.bak, upgraded and saved back.
func Load(log *slog.Logger, path string) (*Config, error) {
	if log == nil {
		log = logger.Discard()
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("no scheme file, using defaults", "path", path)
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read scheme file: %w", err)
	}

	version := PeekVersion(data)
	if version > migrate.Scheme.CurrentVersion {
		return nil, fmt.Errorf("scheme version %d is newer than supported version %d", version, migrate.Scheme.CurrentVersion)
	}
	migrated := migrate.Scheme.NeedsMigration(version)
	if migrated {
		if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
			log.Warn("failed to write scheme backup", "error", err)
		}
		if data, err = migrate.Scheme.Upgrade(log, data, version); err != nil {
			return nil, fmt.Errorf("migrate scheme: %w", err)
		}
	}

	cfg, err := Parse(log, data)
	if err != nil {
		return nil, err
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			log.Warn("failed to save migrated scheme", "error", err)
		}
	}
	return cfg, nil
}

// Parse decodes scheme TOML over the defaults and validates the result.
// Unknown keys are logged and ignored.
func Parse(log *slog.Logger, data []byte) (*Config, error) {
	if log == nil {
		log = logger.Discard()
	}
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse scheme: %w", err)
	}
	// Arrays of tables decode into the existing default elements; a file
	// that lists layers replaces them outright.
	if md.IsDefined("layers") {
		var only struct {
			Layers []LayerConfig `toml:"layers"`
		}
		if _, err := toml.Decode(string(data), &only); err != nil {
			return nil, fmt.Errorf("parse scheme layers: %w", err)
		}
		cfg.Layers = only.Layers
	}
	for _, k := range md.Undecoded() {
		log.Warn("unknown scheme key", "key", k.String())
	}
	cfg.Version = migrate.Scheme.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate scheme: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as TOML using an atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding scheme: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, geometry.ErrInvalidGeometry)...)
}

func checkOpacity(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
	}
	return nil
}

// Validate checks that every value can produce a drawable scheme. Geometric
// problems wrap [geometry.ErrInvalidGeometry].
func (c *Config) Validate() error {
	// Output
	if c.Output.Scheme == "" || strings.ContainsAny(c.Output.Scheme, `/\`) {
		return fmt.Errorf("invalid output.scheme %q: must be a non-empty file name stem", c.Output.Scheme)
	}
	if len(c.Output.Locales) == 0 {
		return fmt.Errorf("output.locales must list at least one locale")
	}

	// Canvas
	cv := c.Canvas
	if cv.Width <= 0 || cv.Height <= 0 {
		return invalid("canvas size %dx%d", cv.Width, cv.Height)
	}
	if !(cv.DPI > 0) {
		return invalid("canvas.dpi %v", cv.DPI)
	}
	if cv.Margin < 0 || 2*cv.Margin >= min(cv.Width, cv.Height) {
		return invalid("canvas.margin %d for %dx%d", cv.Margin, cv.Width, cv.Height)
	}
	if !(cv.XMax > cv.XMin) || !(cv.YMax > cv.YMin) {
		return invalid("empty view box x[%v, %v] y[%v, %v]", cv.XMin, cv.XMax, cv.YMin, cv.YMax)
	}

	// Palette
	for _, f := range []struct{ name, hex string }{
		{"palette.background", c.Palette.Background},
		{"palette.accent", c.Palette.Accent},
		{"palette.line", c.Palette.Line},
		{"palette.text", c.Palette.Text},
		{"palette.box_fill", c.Palette.BoxFill},
		{"palette.box_edge", c.Palette.BoxEdge},
	} {
		if _, err := palette.ParseHexColor(f.hex); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}

	// Rings
	r := c.Rings
	if len(r.Radii) == 0 {
		return invalid("rings.radii is empty")
	}
	for i, v := range r.Radii {
		if !(v > 0) {
			return invalid("rings.radii[%d] = %v", i, v)
		}
		if i > 0 && !(v > r.Radii[i-1]) {
			return invalid("rings.radii must be strictly increasing at index %d", i)
		}
	}
	if len(r.FillOpacity) != 0 && len(r.FillOpacity) != len(r.Radii) {
		return fmt.Errorf("rings.fill_opacity has %d values for %d radii", len(r.FillOpacity), len(r.Radii))
	}

	// Spiral
	if _, err := c.SpiralParams().Generate(geometry.Point{}); err != nil {
		return fmt.Errorf("spiral: %w", err)
	}
	if c.Spiral.Twin.Enabled {
		if _, err := c.TwinParams().Generate(geometry.Point{}); err != nil {
			return fmt.Errorf("spiral.twin: %w", err)
		}
	}

	// Wave
	if w := c.Wave; w.Enabled {
		if w.Points < 2 || !(w.XMax > w.XMin) {
			return invalid("wave needs points >= 2 and x_max > x_min")
		}
	}

	// Emblem
	e := c.Emblem
	if !(e.DiscRadius > 0) || !(e.TriangleRadius > 0) || !(e.InnerRadius > 0) {
		return invalid("emblem radii must be > 0")
	}
	if e.TriangleRadius > e.DiscRadius || e.InnerRadius > e.TriangleRadius {
		return invalid("emblem must nest: inner %v <= triangle %v <= disc %v",
			e.InnerRadius, e.TriangleRadius, e.DiscRadius)
	}
	if !(e.MarkSize > 0) || !(e.CaptionSize > 0) {
		return fmt.Errorf("emblem font sizes must be > 0")
	}

	// Boxes
	if !(c.Boxes.TitleSize > 0) || !(c.Boxes.SubtitleSize > 0) {
		return fmt.Errorf("boxes font sizes must be > 0")
	}
	if c.Boxes.DotRadius < 0 {
		return invalid("boxes.dot_radius %v", c.Boxes.DotRadius)
	}

	// Layers
	if len(c.Layers) == 0 {
		return fmt.Errorf("no layers configured")
	}
	seen := make(map[string]bool, len(c.Layers))
	for i, l := range c.Layers {
		if !slices.Contains(locale.LayerKeys, l.Key) {
			return fmt.Errorf("layers[%d]: invalid key %q: must be one of %s", i, l.Key, strings.Join(locale.LayerKeys, ", "))
		}
		if seen[l.Key] {
			return fmt.Errorf("layers[%d]: duplicate key %q", i, l.Key)
		}
		seen[l.Key] = true
		if l.Ring < 0 || l.Ring >= len(r.Radii) {
			return invalid("layers[%d]: ring %d out of range [0, %d)", i, l.Ring, len(r.Radii))
		}
		if l.Width < 0 || l.Height < 0 {
			return invalid("layers[%d]: negative size", i)
		}
		if err := c.BoxSpec(l).Validate(); err != nil {
			return fmt.Errorf("layers[%d]: %w", i, err)
		}
	}
	for _, key := range locale.LayerKeys {
		if !seen[key] {
			return fmt.Errorf("layers: missing layer %q: every one of %s needs a box", key, strings.Join(locale.LayerKeys, ", "))
		}
	}

	// Title
	if !(c.Title.Size > 0) || !(c.Title.SubtitleSize > 0) {
		return fmt.Errorf("title font sizes must be > 0")
	}

	// Opacities
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"palette.subtext_opacity", c.Palette.SubtextOpacity},
		{"rings.opacity", r.Opacity},
		{"spiral.opacity", c.Spiral.Opacity},
		{"spiral.halo_opacity", c.Spiral.HaloOpacity},
		{"spiral.twin.opacity", c.Spiral.Twin.Opacity},
		{"wave.opacity", c.Wave.Opacity},
		{"emblem.caption_opacity", e.CaptionOpacity},
		{"boxes.opacity", c.Boxes.Opacity},
		{"boxes.connector_opacity", c.Boxes.ConnectorOpacity},
		{"title.opacity", c.Title.Opacity},
		{"title.subtitle_opacity", c.Title.SubtitleOpacity},
	} {
		if err := checkOpacity(f.name, f.v); err != nil {
			return err
		}
	}
	for i, v := range r.FillOpacity {
		if err := checkOpacity(fmt.Sprintf("rings.fill_opacity[%d]", i), v); err != nil {
			return err
		}
	}

	// Log
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}
