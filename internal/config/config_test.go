// Tests for the config package covering [Load] (defaults, overrides, missing
// files, malformed input, migration backup), layer replacement, derived
// values, validation ([Config.Validate]), serialization round-trips
// ([Config.Save]), the embedded default file and [ConfigDocs] completeness.

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/eqscheme"
	"tools.zach/dev/eqscheme/internal/geometry"
)

func writeScheme(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheme.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing scheme: %v", err)
	}
	return path
}

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "defaults from minimal file",
			config: "version = 1\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("minimal file should equal defaults:\n%+v", cfg)
				}
			},
		},
		{
			name: "overrides applied, other defaults kept",
			config: `
version = 1

[spiral]
a = 0.16
b = 0.24
theta_max_pi = 3.8

[spiral.twin]
enabled = true
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Spiral.A != 0.16 || cfg.Spiral.B != 0.24 || cfg.Spiral.ThetaMaxPi != 3.8 {
					t.Errorf("spiral = %+v", cfg.Spiral)
				}
				if !cfg.Spiral.Twin.Enabled || cfg.Spiral.Twin.Scale != 0.95 {
					t.Errorf("twin = %+v", cfg.Spiral.Twin)
				}
				if cfg.Spiral.Points != 3000 {
					t.Errorf("Points = %d, want default 3000", cfg.Spiral.Points)
				}
				if cfg.Palette.Accent != "#86A68B" {
					t.Errorf("Accent = %q, want default", cfg.Palette.Accent)
				}
			},
		},
		{
			name:   "missing file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Version != 1 || len(cfg.Layers) != 4 {
					t.Errorf("unexpected config %+v", cfg)
				}
			},
		},
		{
			name:    "malformed TOML returns error",
			config:  "this is not valid toml [[[",
			wantErr: true,
		},
		{
			name:    "invalid value returns error",
			config:  "[canvas]\ndpi = 0\n",
			wantErr: true,
		},
		{
			name:   "unknown keys ignored",
			config: "[canvas]\nantialias = true\n",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Canvas.Width != 3200 {
					t.Errorf("Width = %d", cfg.Canvas.Width)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.toml")
			if !tt.noFile {
				path = writeScheme(t, tt.config)
			}
			cfg, err := Load(nil, path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Output.Scheme != "dynamic_equilibrium_scheme" {
		t.Errorf("Scheme = %q", cfg.Output.Scheme)
	}
}

func TestLoadLayersReplaceDefaults(t *testing.T) {
	path := writeScheme(t, `
[[layers]]
key = "me"
ring = 2
angle = 30

[[layers]]
key = "org"
ring = 0
angle = 235

[[layers]]
key = "rh"
ring = 1
angle = 300

[[layers]]
key = "env"
ring = 3
angle = 150
width = 3.0
`)
	cfg, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []LayerConfig{
		{Key: "me", Ring: 2, Angle: 30},
		{Key: "org", Ring: 0, Angle: 235},
		{Key: "rh", Ring: 1, Angle: 300},
		{Key: "env", Ring: 3, Angle: 150, Width: 3.0},
	}
	if !reflect.DeepEqual(cfg.Layers, want) {
		t.Errorf("Layers = %+v, want %+v", cfg.Layers, want)
	}
}

func TestLoad_Migration(t *testing.T) {
	path := writeScheme(t, "[center]\nx = -0.5\n")

	cfg, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 1 || cfg.Center.X != -0.5 {
		t.Errorf("Version = %d, Center.X = %v", cfg.Version, cfg.Center.X)
	}

	// Version 1 files are current: no backup, no rewrite.
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Errorf("unexpected backup for current-version file: %v", err)
	}
}

func TestLoad_FutureVersion(t *testing.T) {
	path := writeScheme(t, "version = 7\n")
	_, err := Load(nil, path)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("err = %v, want newer-version error", err)
	}
	if _, statErr := os.Stat(path + ".bak"); !os.IsNotExist(statErr) {
		t.Errorf("rejected file should not be backed up: %v", statErr)
	}
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

func TestPeekVersion(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"reads version", "version = 3\n[canvas]\nwidth = 10\n", 3},
		{"missing version", "[canvas]\nwidth = 10\n", 1},
		{"unparseable", "[[[", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeekVersion([]byte(tt.data)); got != tt.want {
				t.Errorf("PeekVersion() = %d, want %d", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

func TestDerivedValues(t *testing.T) {
	cfg := DefaultConfig()

	if c := cfg.CenterPoint(); c.X != -0.4 || c.Y != 0 {
		t.Errorf("CenterPoint = %v", c)
	}
	sp := cfg.SpiralParams()
	if math.Abs(sp.ThetaMax-3.6*math.Pi) > 1e-12 || sp.Points != 3000 {
		t.Errorf("SpiralParams = %+v", sp)
	}
	tw := cfg.TwinParams()
	if tw.Phase != 0.08 || tw.Scale != 0.95 || tw.A != sp.A {
		t.Errorf("TwinParams = %+v", tw)
	}

	env := cfg.BoxSpec(cfg.Layers[3])
	if env.Width != 3.4 || env.Height != 1.05 || env.Offset != 1.0 {
		t.Errorf("env BoxSpec = %+v", env)
	}
	org := cfg.BoxSpec(cfg.Layers[0])
	if org.Width != 2.6 || org.Height != 1.0 || org.Pad != 0.16 {
		t.Errorf("org BoxSpec = %+v", org)
	}

	vb := cfg.ViewBox()
	if vb.Width() <= 0 || vb.Height() <= 0 {
		t.Errorf("ViewBox = %+v", vb)
	}
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(c *Config)
		wantErr      bool
		wantGeometry bool
	}{
		{"defaults valid", func(c *Config) {}, false, false},
		{"twin enabled valid", func(c *Config) { c.Spiral.Twin.Enabled = true }, false, false},
		{"empty scheme", func(c *Config) { c.Output.Scheme = "" }, true, false},
		{"scheme with slash", func(c *Config) { c.Output.Scheme = "a/b" }, true, false},
		{"no locales", func(c *Config) { c.Output.Locales = nil }, true, false},
		{"zero width", func(c *Config) { c.Canvas.Width = 0 }, true, true},
		{"huge margin", func(c *Config) { c.Canvas.Margin = 900 }, true, true},
		{"inverted view", func(c *Config) { c.Canvas.XMax = c.Canvas.XMin }, true, true},
		{"bad color", func(c *Config) { c.Palette.Accent = "sage" }, true, false},
		{"no radii", func(c *Config) { c.Rings.Radii = nil; c.Rings.FillOpacity = nil }, true, true},
		{"zero radius", func(c *Config) { c.Rings.Radii[0] = 0 }, true, true},
		{"radii not increasing", func(c *Config) { c.Rings.Radii[2] = 1.0 }, true, true},
		{"fill opacity count", func(c *Config) { c.Rings.FillOpacity = []float64{0.1} }, true, false},
		{"empty fill opacity ok", func(c *Config) { c.Rings.FillOpacity = nil }, false, false},
		{"spiral one point", func(c *Config) { c.Spiral.Points = 1 }, true, true},
		{"spiral b zero", func(c *Config) { c.Spiral.B = 0 }, true, true},
		{"twin bad scale", func(c *Config) { c.Spiral.Twin.Enabled = true; c.Spiral.Twin.Scale = -1 }, true, true},
		{"twin disabled bad scale ok", func(c *Config) { c.Spiral.Twin.Scale = -1 }, false, false},
		{"wave empty range", func(c *Config) { c.Wave.XMax = c.Wave.XMin }, true, true},
		{"wave disabled ignored", func(c *Config) { c.Wave.Enabled = false; c.Wave.Points = 0 }, false, false},
		{"emblem not nested", func(c *Config) { c.Emblem.TriangleRadius = 1 }, true, true},
		{"emblem zero disc", func(c *Config) { c.Emblem.DiscRadius = 0 }, true, true},
		{"box zero width", func(c *Config) { c.Boxes.Width = 0 }, true, true},
		{"layer override wins", func(c *Config) {
			c.Boxes.Height = -1
			for i := range c.Layers {
				c.Layers[i].Height = 1
			}
		}, false, false},
		{"layer without override", func(c *Config) { c.Boxes.Height = -1 }, true, true},
		{"no layers", func(c *Config) { c.Layers = nil }, true, false},
		{"missing layer", func(c *Config) { c.Layers = c.Layers[:3] }, true, false},
		{"single layer", func(c *Config) { c.Layers = c.Layers[3:] }, true, false},
		{"unknown layer key", func(c *Config) { c.Layers[0].Key = "core" }, true, false},
		{"duplicate layer", func(c *Config) { c.Layers[1].Key = "org" }, true, false},
		{"ring out of range", func(c *Config) { c.Layers[0].Ring = 4 }, true, true},
		{"opacity above one", func(c *Config) { c.Spiral.Opacity = 1.5 }, true, false},
		{"fill opacity negative", func(c *Config) { c.Rings.FillOpacity[1] = -0.1 }, true, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true, false},
		{"upper log level ok", func(c *Config) { c.Log.Level = "DEBUG" }, false, false},
		{"zero log size", func(c *Config) { c.Log.MaxSizeMB = 0 }, true, false},
		{"zero title size", func(c *Config) { c.Title.Size = 0 }, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantGeometry && !errors.Is(err, geometry.ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestConfig_Validate_ReportsFieldsInOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"colors", func(c *Config) {
			c.Palette.BoxEdge = "teal"
			c.Palette.Accent = "sage"
			c.Palette.Text = "ink"
		}, "palette.accent"},
		{"opacities", func(c *Config) {
			c.Title.SubtitleOpacity = 2
			c.Boxes.Opacity = -1
			c.Spiral.Opacity = 1.5
		}, "spiral.opacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 20 {
				cfg := DefaultConfig()
				tt.mutate(cfg)
				err := cfg.Validate()
				if err == nil || !strings.HasPrefix(err.Error(), tt.wantSub) {
					t.Fatalf("Validate() err = %v, want it to start with %q", err, tt.wantSub)
				}
			}
		})
	}
}

// ///////////////////////////////////////////////
// Save
// ///////////////////////////////////////////////

func TestConfig_Save_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Spiral.Twin.Enabled = true
	cfg.Output.LocalesFile = "extra.toml"
	cfg.Layers[1].Angle = 305

	path := filepath.Join(t.TempDir(), "scheme.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

// ///////////////////////////////////////////////
// Embedded Default
// ///////////////////////////////////////////////

func TestEmbeddedDefaultMatchesDefaultConfig(t *testing.T) {
	cfg, err := Parse(nil, eqscheme.DefaultSchemeTOML)
	if err != nil {
		t.Fatalf("Parse(scheme.default.toml): %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("scheme.default.toml is stale; run go generate ./internal/config")
	}
}

func TestExampleConfig(t *testing.T) {
	cfg := ExampleConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("ExampleConfig invalid: %v", err)
	}
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		t.Fatalf("marshal ExampleConfig: %v", err)
	}
}

// ///////////////////////////////////////////////
// ConfigDocs completeness
// ///////////////////////////////////////////////

func TestConfigDocsComplete(t *testing.T) {
	for _, field := range collectTOMLFields(reflect.TypeOf(Config{}), "") {
		if _, ok := ConfigDocs[field]; !ok {
			t.Errorf("ConfigDocs missing entry for field %q", field)
		}
	}
}

func TestConfigDocsNoStaleEntries(t *testing.T) {
	known := map[string]bool{}
	for _, f := range collectTOMLFields(reflect.TypeOf(Config{}), "") {
		known[f] = true
		// Section-level docs are keyed by every parent path.
		for p := f; strings.Contains(p, "."); {
			p = p[:strings.LastIndex(p, ".")]
			known[p] = true
		}
	}
	for key := range ConfigDocs {
		if !known[key] {
			t.Errorf("ConfigDocs has entry %q for no field", key)
		}
	}
}

// collectTOMLFields walks a struct type and returns the dot-separated TOML
// key path of every tagged leaf field. Slices of structs contribute their
// own path and their element fields.
func collectTOMLFields(typ reflect.Type, prefix string) []string {
	var fields []string
	for i := range typ.NumField() {
		f := typ.Field(i)
		tag, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if tag == "" || tag == "-" {
			continue
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		switch {
		case f.Type.Kind() == reflect.Struct:
			fields = append(fields, collectTOMLFields(f.Type, path)...)
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Struct:
			fields = append(fields, path)
			fields = append(fields, collectTOMLFields(f.Type.Elem(), path)...)
		default:
			fields = append(fields, path)
		}
	}
	return fields
}

// ///////////////////////////////////////////////
// Marshal field order
// ///////////////////////////////////////////////

func TestConfigMarshalFieldOrder(t *testing.T) {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(DefaultConfig()); err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := buf.String()

	order := []string{"version", "[output]", "[canvas]", "[palette]", "[spiral]", "[spiral.twin]", "[boxes]", "[[layers]]"}
	for i := 1; i < len(order); i++ {
		b, a := strings.Index(out, order[i-1]), strings.Index(out, order[i])
		if b < 0 || a < 0 || b > a {
			t.Errorf("expected %q before %q in marshaled output", order[i-1], order[i])
		}
	}
}
