// google.go downloads font files through the Google Fonts CSS API.
//
// Specs use the form "google:FAMILY:WEIGHT" (e.g. "google:Inter:700").
// Downloads are converted to SFNT and cached on disk so a scheme renders
// offline after the first run.

package fonts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/image/font/opentype"
	"tools.zach/dev/eqscheme/internal/atomicfile"
)

// cssBaseURL is the Google Fonts CSS2 endpoint. Tests point it at an
// httptest server.
var cssBaseURL = "https://fonts.googleapis.com/css2"

// userAgent asks Google for WOFF2 sources, which ToSFNT converts.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// Response size limits. A body over the limit is an error, never a
// truncated font.
const (
	cssLimit  = 1 << 20
	fontLimit = 10 << 20
)

// fontURLRe extracts the first font file URL from a CSS response, e.g.
// url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2).
var fontURLRe = regexp.MustCompile(`url\((https?://[^)\s]+)\)`)

var (
	httpClient     *retryablehttp.Client
	httpClientOnce sync.Once
)

// getHTTPClient returns the shared retrying client.
func getHTTPClient() *retryablehttp.Client {
	httpClientOnce.Do(func() {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 2
		httpClient.HTTPClient.Timeout = 10 * time.Second
		httpClient.Logger = nil
	})
	return httpClient
}

// ParseGoogleSpec splits a "google:Family:Weight" spec. ok is false for
// anything else, including an empty family or weight.
func ParseGoogleSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// cacheFile returns the SFNT cache path for family and weight.
func cacheFile(cacheDir, family, weight string) string {
	name := strings.ReplaceAll(family, " ", "_")
	return filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", name, weight))
}

// FetchGoogle returns SFNT bytes for spec, from cacheDir when present. Only
// downloads that parse as a font are cached; a cached file that no longer
// parses is discarded and fetched again.
func FetchGoogle(ctx context.Context, log *slog.Logger, spec, cacheDir string) ([]byte, error) {
	family, weight, ok := ParseGoogleSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	cached := cacheFile(cacheDir, family, weight)
	if data, err := os.ReadFile(cached); err == nil {
		if _, perr := opentype.Parse(data); perr == nil {
			log.Debug("font cache hit", "family", family, "weight", weight)
			return data, nil
		}
		log.Warn("discarding unreadable cached font", "path", cached)
		if err := os.Remove(cached); err != nil {
			log.Warn("failed to remove cached font", "path", cached, "error", err)
		}
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", cssBaseURL, url.QueryEscape(family), weight)
	css, err := get(ctx, cssURL, cssLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch font css: %w", err)
	}
	m := fontURLRe.FindSubmatch(css)
	if m == nil {
		return nil, fmt.Errorf("no font url in css for %s wght@%s", family, weight)
	}
	fontURL := string(m[1])

	data, err := get(ctx, fontURL, fontLimit)
	if err != nil {
		return nil, fmt.Errorf("download font: %w", err)
	}
	if data, err = toSFNT(fontURL, data); err != nil {
		return nil, err
	}
	if _, err := opentype.Parse(data); err != nil {
		return nil, fmt.Errorf("download font %s: not a font: %w", fontURL, err)
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Warn("failed to create font cache", "dir", cacheDir, "error", err)
	} else if err := atomicfile.Write(cached, data, 0o644); err != nil {
		log.Warn("failed to cache font", "path", cached, "error", err)
	}
	log.Info("downloaded font", "family", family, "weight", weight, "bytes", len(data))
	return data, nil
}

func get(ctx context.Context, u string, limit int64) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%s: response exceeds %d bytes", u, limit)
	}
	return body, nil
}
