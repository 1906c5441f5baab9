// Package fonts resolves the regular and bold typefaces used for text in the
// scheme and hands out sized faces for them.
//
// Each weight is resolved from a spec string: a local font file (TTF, OTF or
// WOFF2), a "google:FAMILY:WEIGHT" download, or empty for the embedded Go
// fonts. A spec that cannot be loaded falls back to the Go font with a
// warning so a broken font setting never blocks rendering.
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/font"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"tools.zach/dev/eqscheme/internal/logger"
	"tools.zach/dev/eqscheme/internal/paths"
)

// Options selects the typefaces.
type Options struct {
	// Regular is the regular face spec.
	Regular string
	// Bold is the bold face spec.
	Bold string
	// CacheDir stores downloaded fonts. Empty uses paths.FontCacheDir.
	CacheDir string
}

type faceKey struct {
	bold bool
	size float64
	dpi  float64
}

// Set holds the parsed regular and bold fonts and caches faces built from
// them. It is safe for concurrent use.
type Set struct {
	regular *opentype.Font
	bold    *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]xfont.Face
}

// Builtin returns a Set of the embedded Go fonts.
func Builtin() *Set {
	s, _ := newSet(goregular.TTF, gobold.TTF)
	return s
}

func newSet(regular, bold []byte) (*Set, error) {
	r, err := opentype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	b, err := opentype.Parse(bold)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &Set{regular: r, bold: b, faces: map[faceKey]xfont.Face{}}, nil
}

// Load resolves both weights of opts.
func Load(ctx context.Context, log *slog.Logger, opts Options) (*Set, error) {
	if log == nil {
		log = logger.Discard()
	}
	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = paths.FontCacheDir()
	}
	regular := resolve(ctx, log, opts.Regular, cacheDir, goregular.TTF)
	bold := resolve(ctx, log, opts.Bold, cacheDir, gobold.TTF)
	s, err := newSet(regular, bold)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// resolve loads spec, falling back to builtin. The returned bytes always
// parse unless builtin itself is corrupt.
func resolve(ctx context.Context, log *slog.Logger, spec, cacheDir string, builtin []byte) []byte {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return builtin
	}

	var (
		data []byte
		err  error
	)
	if _, _, ok := ParseGoogleSpec(spec); ok {
		data, err = FetchGoogle(ctx, log, spec, cacheDir)
	} else {
		data, err = readLocal(spec)
	}
	if err == nil {
		if _, err = opentype.Parse(data); err == nil {
			log.Debug("font resolved", "spec", spec)
			return data
		}
	}
	log.Warn("font unavailable, using built-in", "spec", spec, "error", err)
	return builtin
}

// readLocal reads a font file, converting WOFF2 to SFNT.
func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return toSFNT(path, data)
}

func toSFNT(name string, data []byte) ([]byte, error) {
	if !isWOFF2(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return sfnt, nil
}

// isWOFF2 checks the extension or the "wOF2" magic.
func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "wOF2"
}

// Face returns a face of the given weight at sizePt points for dpi.
// Faces are cached; callers must not Close them.
func (s *Set) Face(bold bool, sizePt, dpi float64) (xfont.Face, error) {
	key := faceKey{bold: bold, size: sizePt, dpi: dpi}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.faces[key]; ok {
		return f, nil
	}

	f := s.regular
	if bold {
		f = s.bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePt,
		DPI:     dpi,
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %vpt: %w", sizePt, err)
	}
	s.faces[key] = face
	return face, nil
}
