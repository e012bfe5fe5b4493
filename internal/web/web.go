package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"

	"github.com/jalexw/calendar-ics-parser/internal/config"
	"github.com/jalexw/calendar-ics-parser/internal/ics"
	appLog "github.com/jalexw/calendar-ics-parser/internal/log"
	"github.com/jalexw/calendar-ics-parser/internal/model"
	"github.com/jalexw/calendar-ics-parser/internal/render"
)

const (
	maxBodyBytes    = 10 << 20
	sourcesCacheTTL = 30 * time.Second
)

// Server exposes the parser over HTTP.
type Server struct {
	cfg     *config.Config
	debug   bool
	mux     *http.ServeMux
	fetcher *ics.Fetcher

	// In-memory cache for /api/sources so that repeated requests do not
	// fetch and parse every source again.
	sourcesMu    sync.RWMutex
	sourcesCache *sourcesCache
}

type sourcesCache struct {
	resp      sourcesResponse
	updatedAt time.Time
}

// sourceResult is one entry of the /api/sources response.
type sourceResult struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	FromCache bool               `json:"from_cache"`
	Result    *model.ParseResult `json:"result"`
}

type sourcesResponse struct {
	Sources []sourceResult `json:"sources"`
	Errors  []string       `json:"errors"`
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, debug bool) *Server {
	s := &Server{
		cfg:     cfg,
		debug:   debug,
		mux:     http.NewServeMux(),
		fetcher: ics.NewFetcher(cfg.CacheDir),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. An empty
// username or password disables it.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="icsparse", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, cfg *config.Config, debug bool) error {
	s := NewServer(cfg, debug)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/parse", s.handleParse)
	s.mux.HandleFunc("/api/sources", s.handleSources)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleParse parses the request body as ICS text.
//
// POST /api/parse?format=json&strict_rrule=1
//   - format:       any render format (default json)
//   - strict_rrule: drop events with an RRULE the recurrence engine rejects
//
// The parser never fails, so any readable body yields 200; problems are in
// the result metadata.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST with ICS text as the body")
		return
	}

	q := r.URL.Query()
	format := render.FormatJSON
	if v := q.Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	body, err := io.ReadAll(utfbom.SkipOnly(http.MaxBytesReader(w, r.Body, maxBodyBytes)))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large or unreadable")
		return
	}

	res := ics.ParseWithOptions(string(body), s.parseOptions(isTrue(q.Get("strict_rrule"))))
	appLog.Info("api parse request",
		"bytes", len(body),
		"calendars", len(res.Calendars),
		"events", res.Metadata.TotalEvents,
		"errors", len(res.Metadata.ParseErrors),
		"warnings", len(res.Metadata.ParseWarnings),
	)

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if err := render.Render(w, res, format); err != nil {
		appLog.Error("failed to write parse response", err)
	}
}

// handleSources fetches and parses every configured source.
//
// GET /api/sources
//
// Responses are cached in memory for a short time.
func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}

	now := time.Now()
	s.sourcesMu.RLock()
	sc := s.sourcesCache
	s.sourcesMu.RUnlock()
	if sc != nil && now.Sub(sc.updatedAt) < sourcesCacheTTL {
		writeJSON(w, http.StatusOK, sc.resp)
		return
	}

	names := make(map[string]string, len(s.cfg.Sources))
	sources := make([]ics.Source, 0, len(s.cfg.Sources))
	for _, cs := range s.cfg.Sources {
		if cs.URL == "" {
			continue
		}
		id := cs.ID
		if id == "" {
			id = cs.URL
		}
		names[id] = cs.Name
		sources = append(sources, ics.Source{ID: id, Location: cs.URL})
	}

	resp := sourcesResponse{Sources: []sourceResult{}, Errors: []string{}}
	fetched, fetchErrs := s.fetcher.FetchAll(r.Context(), sources)
	for _, err := range fetchErrs {
		resp.Errors = append(resp.Errors, err.Error())
	}
	opts := s.parseOptions(s.cfg.StrictRRule)
	for _, fr := range fetched {
		resp.Sources = append(resp.Sources, sourceResult{
			ID:        fr.Source.ID,
			Name:      names[fr.Source.ID],
			FromCache: fr.FromCache,
			Result:    ics.ParseWithOptions(string(fr.Body), opts),
		})
	}

	appLog.Info("api sources request", "sources", len(sources), "parsed", len(resp.Sources), "fetch_errors", len(fetchErrs))

	s.sourcesMu.Lock()
	s.sourcesCache = &sourcesCache{resp: resp, updatedAt: time.Now()}
	s.sourcesMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseOptions(strict bool) ics.Options {
	return ics.Options{Debug: s.debug, StrictRRule: strict}
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func contentType(f render.Format) string {
	switch f {
	case render.FormatJSON, render.FormatSimple:
		return "application/json; charset=utf-8"
	case render.FormatYAML:
		return "application/yaml; charset=utf-8"
	case render.FormatICS:
		return "text/calendar; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
