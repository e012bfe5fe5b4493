package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jalexw/calendar-ics-parser/internal/config"
	"github.com/jalexw/calendar-ics-parser/internal/model"
)

const teamMeeting = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Example Corp//Calendar//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a@b\r\n" +
	"DTSTAMP:20231201T120000Z\r\n" +
	"DTSTART:20231215T140000Z\r\n" +
	"DTEND:20231215T150000Z\r\n" +
	"SUMMARY:Team Meeting\r\n" +
	"RRULE:FREQ=SOMETIMES\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	srv := httptest.NewServer(NewServer(cfg, false).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	})

	resp, err := http.Post(srv.URL+"/api/parse", "text/calendar", strings.NewReader(teamMeeting))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/parse", strings.NewReader(teamMeeting))
	require.NoError(t, err)
	req.SetBasicAuth("u", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/parse", strings.NewReader(teamMeeting))
	require.NoError(t, err)
	req.SetBasicAuth("u", "p")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestParseEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/parse", "text/calendar", strings.NewReader("\uFEFF"+teamMeeting))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var res model.ParseResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Len(t, res.Calendars, 1)
	assert.Equal(t, 1, res.Metadata.TotalEvents)
	assert.Equal(t, "Team Meeting", res.Calendars[0].Events[0].Summary)
	require.Len(t, res.Metadata.ParseWarnings, 1)
	assert.Contains(t, res.Metadata.ParseWarnings[0], "FREQ=SOMETIMES")
}

func TestParseEndpoint_StrictRRule(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/parse?strict_rrule=1", "text/calendar", strings.NewReader(teamMeeting))
	require.NoError(t, err)
	defer resp.Body.Close()

	var res model.ParseResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 0, res.Metadata.TotalEvents)
	require.Len(t, res.Metadata.ParseWarnings, 1)
	assert.Contains(t, res.Metadata.ParseWarnings[0], "skipping VEVENT #1")
}

func TestParseEndpoint_Formats(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		format      string
		status      int
		contentType string
		contains    string
	}{
		{"ics", http.StatusOK, "text/calendar", "SUMMARY:Team Meeting"},
		{"yaml", http.StatusOK, "application/yaml", "summary: Team Meeting"},
		{"simple", http.StatusOK, "application/json", `"uid": "a@b"`},
		{"table", http.StatusOK, "text/plain", "Team Meeting"},
		{"xml", http.StatusBadRequest, "application/json", "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/parse?format="+tt.format, "text/calendar", strings.NewReader(teamMeeting))
			require.NoError(t, err)
			defer resp.Body.Close()

			var body bytes.Buffer
			_, err = body.ReadFrom(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			assert.Contains(t, body.String(), tt.contains)
		})
	}
}

func TestParseEndpoint_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/parse")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("Allow"))
}

func TestSourcesEndpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "team.ics")
	require.NoError(t, os.WriteFile(path, []byte(teamMeeting), 0o600))

	srv := newTestServer(t, func(c *config.Config) {
		c.Sources = []config.SourceConfig{
			{ID: "team", Name: "Team", URL: path},
			{ID: "gone", URL: filepath.Join(dir, "gone.ics")},
		}
	})

	get := func() sourcesResponse {
		resp, err := http.Get(srv.URL + "/api/sources")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out sourcesResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	first := get()
	require.Len(t, first.Sources, 1)
	assert.Equal(t, "team", first.Sources[0].ID)
	assert.Equal(t, "Team", first.Sources[0].Name)
	assert.Equal(t, 1, first.Sources[0].Result.Metadata.TotalEvents)
	require.Len(t, first.Errors, 1)

	// Served from the in-memory cache after the file is gone.
	require.NoError(t, os.Remove(path))
	second := get()
	assert.Equal(t, first, second)
}
