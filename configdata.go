// Package eqscheme provides the embedded default data of the scheme renderer.
//
// The root package exists solely to embed [scheme.default.toml] via
// [DefaultSchemeTOML] and [locales.toml] via [LocalesTOML]. The command
// writes DefaultSchemeTOML to the scheme path on first run; the locale
// package uses LocalesTOML when no bundle file is configured.
package eqscheme

import _ "embed"

// DefaultSchemeTOML holds the annotated default style file written by
// cmd/genconfig.
//
//go:embed scheme.default.toml
var DefaultSchemeTOML []byte

// LocalesTOML holds the built-in text bundle (en, ru).
//
//go:embed locales.toml
var LocalesTOML []byte
