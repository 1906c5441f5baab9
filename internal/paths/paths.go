// Package paths centralizes file and directory names used across the project.
// The output naming convention lives here as the single source of truth.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// File names.
const (
	ConfigFile    = "scheme.toml"
	LogFile       = "eqscheme.log"
	DefaultScheme = "dynamic_equilibrium_scheme"
	ImageExt      = ".png"
	BinaryName    = "eqscheme"
	FontCacheRel  = "eqscheme/fonts" // relative to os.UserCacheDir
)

// VariantFile returns the image file name for one locale of a scheme.
// For example, VariantFile("dynamic_equilibrium_scheme", "en") returns
// "dynamic_equilibrium_scheme_en.png".
func VariantFile(scheme, locale string) string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	return scheme + "_" + locale + ImageExt
}

// LocaleFromFile is the inverse of VariantFile. It reports false when name
// does not follow the scheme's naming convention.
func LocaleFromFile(scheme, name string) (string, bool) {
	if scheme == "" {
		scheme = DefaultScheme
	}
	rest, ok := strings.CutPrefix(filepath.Base(name), scheme+"_")
	if !ok {
		return "", false
	}
	loc, ok := strings.CutSuffix(rest, ImageExt)
	if !ok || loc == "" {
		return "", false
	}
	return loc, true
}

// ///////////////////////////////////////////////
// OutputDir
// ///////////////////////////////////////////////

// OutputDir provides path construction rooted at the render output directory.
type OutputDir struct {
	Root   string
	Scheme string
}

// Variant returns the full path of the image for locale.
func (d OutputDir) Variant(locale string) string {
	return filepath.Join(d.Root, VariantFile(d.Scheme, locale))
}

// Ensure creates the output directory if it does not exist.
func (d OutputDir) Ensure() error {
	if d.Root == "" {
		return nil
	}
	return os.MkdirAll(d.Root, 0o755)
}

// ///////////////////////////////////////////////
// Font Cache
// ///////////////////////////////////////////////

// FontCacheDir returns the directory downloaded font files are cached in,
// falling back to the system temp dir when no user cache dir is available.
func FontCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, filepath.FromSlash(FontCacheRel))
}
