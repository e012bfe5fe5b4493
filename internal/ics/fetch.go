package ics

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dimchansky/utfbom"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
)

// Source is one place ICS text can be read from: a local path, "-" for
// stdin, or an http(s)/webcal URL.
type Source struct {
	// ID is an identifier used in logs and API responses.
	ID string
	// Location is the path or URL.
	Location string
}

// IsRemote reports whether the source is fetched over HTTP.
func (s Source) IsRemote() bool {
	l := strings.ToLower(s.Location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "webcal://")
}

// FetchResult contains the outcome of loading a single source.
type FetchResult struct {
	Source    Source
	Body      []byte // ICS payload with any UTF-8 BOM removed
	FromCache bool   // true if a cached body was reused (304 or network failure)
}

// cacheEntry holds HTTP cache metadata for a single ICS URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher loads sources. Remote feeds use conditional requests
// (ETag / Last-Modified) backed by a disk cache.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	stdin    io.Reader
}

// NewFetcher creates a new Fetcher.
//
// cacheDir is the base directory where per-URL cache subdirectories and
// metadata will be stored.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cacheDir: cacheDir,
		stdin:    os.Stdin,
	}
}

// FetchAll loads all given sources. Failures are logged and returned in the
// error slice; the result slice only holds sources that produced a body.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	errs := make([]error, 0)

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, err)
			appLog.Error("source load failed", err, "id", src.ID, "location", redact(src))
			continue
		}
		results = append(results, res)
	}

	return results, errs
}

// FetchOne loads a single source.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.Location == "" {
		return FetchResult{}, errors.New("source location is empty")
	}

	var (
		res FetchResult
		err error
	)
	if src.IsRemote() {
		res, err = f.fetchRemote(ctx, src)
	} else {
		res, err = f.readLocal(src)
	}
	if err != nil {
		return FetchResult{}, err
	}

	res.Body, err = stripBOM(res.Body)
	if err != nil {
		return FetchResult{}, errors.Wrapf(err, "reading %s", src.ID)
	}
	appLog.Debug("source loaded", "id", src.ID, "size", humanize.Bytes(uint64(len(res.Body))), "from_cache", res.FromCache)
	return res, nil
}

func (f *Fetcher) readLocal(src Source) (FetchResult, error) {
	var (
		body []byte
		err  error
	)
	if src.Location == "-" {
		body, err = io.ReadAll(f.stdin)
	} else {
		body, err = os.ReadFile(src.Location)
	}
	if err != nil {
		return FetchResult{}, errors.Wrapf(err, "reading %s", src.Location)
	}
	return FetchResult{Source: src, Body: body}, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, src Source) (FetchResult, error) {
	url := src.Location
	if strings.HasPrefix(strings.ToLower(url), "webcal://") {
		url = "https://" + url[len("webcal://"):]
	}

	cachePath, err := f.cachePathForURL(url)
	if err != nil {
		return FetchResult{}, err
	}

	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return FetchResult{}, errors.Wrap(err, "creating cache directory")
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, errors.Wrap(err, "building request")
	}

	// Conditional headers from cache metadata.
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Info("ics fetch start", "id", src.ID, "url", redact(src))

	resp, err := f.client.Do(req)
	if err != nil {
		// Network error; if we have a cached body, fall back to it.
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch network error, using cached body", err, "id", src.ID, "url", redact(src))
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, errors.Wrapf(err, "fetching %s", redact(src))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, errors.Wrap(readErr, "reading response body")
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			// Log but still return the freshly fetched body.
			appLog.Error("ics cache save failed", err, "id", src.ID, "url", redact(src))
		}

		appLog.Info("ics fetch success", "id", src.ID, "url", redact(src), "status", resp.StatusCode, "from_cache", false)
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return FetchResult{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("ics fetch not modified; using cache", "id", src.ID, "url", redact(src))
		return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "id", src.ID, "url", redact(src), "status", resp.StatusCode)
			return FetchResult{Source: src, Body: cachedBody, FromCache: true}, nil
		}
		return FetchResult{}, errors.Errorf("fetching %s: %s", redact(src), resp.Status)
	}
}

func stripBOM(body []byte) ([]byte, error) {
	return io.ReadAll(utfbom.SkipOnly(bytes.NewReader(body)))
}

func (f *Fetcher) cachePathForURL(url string) (string, error) {
	if url == "" {
		return "", errors.New("empty url")
	}
	sum := sha256.Sum256([]byte(url))
	// Use first 16 hex chars as directory name.
	dir := hex.EncodeToString(sum[:8])
	return filepath.Join(f.cacheDir, dir), nil
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.ics"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at missing body.
	if err := os.WriteFile(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redact hides the path and query of a URL for logging; local paths are
// returned unchanged.
func redact(src Source) string {
	if !src.IsRemote() {
		return src.Location
	}
	u := src.Location
	i := strings.Index(u, "://") + 3
	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + "/...(redacted)"
}
