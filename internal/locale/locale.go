// Package locale loads the text bundle: every user-visible string of the
// scheme, keyed by locale code. Bundles are TOML documents with one
// [locales.<code>] table per language and are immutable once loaded.
package locale

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/eqscheme"
	"tools.zach/dev/eqscheme/internal/migrate"
)

// ErrLocaleNotFound is returned when a requested locale has no entry.
var ErrLocaleNotFound = errors.New("locale not found")

// ///////////////////////////////////////////////
// Texts
// ///////////////////////////////////////////////

// Texts holds the strings of one locale. Subtitle values may contain "\n"
// to break lines.
type Texts struct {
	Title         string `toml:"title"`
	Subtitle      string `toml:"subtitle"`
	CenterCaption string `toml:"center_caption"`
	EnvTitle      string `toml:"env_title"`
	EnvSub        string `toml:"env_sub"`
	OrgTitle      string `toml:"org_title"`
	OrgSub        string `toml:"org_sub"`
	RhTitle       string `toml:"rh_title"`
	RhSub         string `toml:"rh_sub"`
	MeTitle       string `toml:"me_title"`
	MeSub         string `toml:"me_sub"`
}

// LayerKeys are the layer prefixes of the *_title / *_sub keys.
var LayerKeys = []string{"org", "rh", "me", "env"}

// Layer returns the title and subtitle lines of the layer with the given
// key prefix ("org", "rh", "me" or "env").
func (t Texts) Layer(key string) (title string, sub []string, err error) {
	var s string
	switch key {
	case "org":
		title, s = t.OrgTitle, t.OrgSub
	case "rh":
		title, s = t.RhTitle, t.RhSub
	case "me":
		title, s = t.MeTitle, t.MeSub
	case "env":
		title, s = t.EnvTitle, t.EnvSub
	default:
		return "", nil, fmt.Errorf("unknown layer key %q", key)
	}
	return title, SplitLines(s), nil
}

// SplitLines splits s on newlines, dropping a trailing empty line.
func SplitLines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Missing returns the TOML keys that are empty, in declaration order.
func (t Texts) Missing() []string {
	var missing []string
	v := reflect.ValueOf(t)
	for i := range v.NumField() {
		if strings.TrimSpace(v.Field(i).String()) == "" {
			missing = append(missing, v.Type().Field(i).Tag.Get("toml"))
		}
	}
	return missing
}

// ///////////////////////////////////////////////
// Bundle
// ///////////////////////////////////////////////

// Bundle maps locale codes to their texts.
type Bundle struct {
	Version int              `toml:"version"`
	Locales map[string]Texts `toml:"locales"`
}

// Default returns the built-in bundle.
func Default() (*Bundle, error) {
	b, err := Parse(nil, eqscheme.LocalesTOML)
	if err != nil {
		return nil, fmt.Errorf("built-in locales: %w", err)
	}
	return b, nil
}

// Load reads a bundle file. An empty path loads the built-in bundle.
func Load(log *slog.Logger, path string) (*Bundle, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read locale bundle: %w", err)
	}
	b, err := Parse(log, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a bundle, upgrading older schema versions.
func Parse(log *slog.Logger, data []byte) (*Bundle, error) {
	var head struct {
		Version int `toml:"version"`
	}
	if _, err := toml.Decode(string(data), &head); err != nil {
		return nil, fmt.Errorf("parse locale bundle: %w", err)
	}
	if head.Version == 0 {
		head.Version = 1
	}
	data, err := migrate.Locales.Upgrade(log, data, head.Version)
	if err != nil {
		return nil, err
	}

	var b Bundle
	md, err := toml.Decode(string(data), &b)
	if err != nil {
		return nil, fmt.Errorf("parse locale bundle: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in locale bundle", undecoded[0].String())
	}
	b.Version = migrate.Locales.CurrentVersion
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate requires at least one locale and every key of every locale.
func (b *Bundle) Validate() error {
	if len(b.Locales) == 0 {
		return errors.New("locale bundle has no locales")
	}
	for _, code := range b.Codes() {
		if code != strings.TrimSpace(code) || code == "" {
			return fmt.Errorf("invalid locale code %q", code)
		}
		if missing := b.Locales[code].Missing(); len(missing) > 0 {
			return fmt.Errorf("locale %q: missing %s", code, strings.Join(missing, ", "))
		}
	}
	return nil
}

// Resolve returns the texts for code.
func (b *Bundle) Resolve(code string) (Texts, error) {
	t, ok := b.Locales[code]
	if !ok {
		return Texts{}, fmt.Errorf("%q: %w", code, ErrLocaleNotFound)
	}
	return t, nil
}

// Codes returns the locale codes in sorted order.
func (b *Bundle) Codes() []string {
	codes := make([]string, 0, len(b.Locales))
	for c := range b.Locales {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	return codes
}

// Match expands glob patterns ("*", "e?", "{en,ru}") to locale codes. Codes
// are returned once each, grouped by the first pattern that matched them and
// sorted within a pattern. A pattern matching nothing yields
// ErrLocaleNotFound, so a misspelled locale fails rather than rendering
// nothing.
func (b *Bundle) Match(patterns []string) ([]string, error) {
	codes := b.Codes()
	seen := make(map[string]bool, len(codes))
	var out []string
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid locale pattern %q", p)
		}
		n := 0
		for _, c := range codes {
			if ok, _ := doublestar.Match(p, c); !ok {
				continue
			}
			n++
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("%q: %w", p, ErrLocaleNotFound)
		}
	}
	return out, nil
}
