package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_IsRemote(t *testing.T) {
	assert.True(t, Source{Location: "https://example.com/a.ics"}.IsRemote())
	assert.True(t, Source{Location: "HTTP://example.com/a.ics"}.IsRemote())
	assert.True(t, Source{Location: "webcal://example.com/a.ics"}.IsRemote())
	assert.False(t, Source{Location: "/tmp/a.ics"}.IsRemote())
	assert.False(t, Source{Location: "-"}.IsRemote())
}

func TestFetcher_LocalFileStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, teamMeeting...), 0o600))

	f := NewFetcher(t.TempDir())
	res, err := f.FetchOne(context.Background(), Source{ID: "file", Location: path})
	require.NoError(t, err)
	assert.Equal(t, teamMeeting, string(res.Body))
	assert.False(t, res.FromCache)

	parsed := Parse(string(res.Body))
	assert.Equal(t, 1, parsed.Metadata.TotalEvents)
}

func TestFetcher_Stdin(t *testing.T) {
	f := NewFetcher(t.TempDir())
	f.stdin = strings.NewReader(teamMeeting)

	res, err := f.FetchOne(context.Background(), Source{ID: "stdin", Location: "-"})
	require.NoError(t, err)
	assert.Equal(t, teamMeeting, string(res.Body))
}

func TestFetcher_Errors(t *testing.T) {
	f := NewFetcher(t.TempDir())

	_, err := f.FetchOne(context.Background(), Source{ID: "empty"})
	assert.Error(t, err)

	_, err = f.FetchOne(context.Background(), Source{ID: "missing", Location: filepath.Join(t.TempDir(), "nope.ics")})
	assert.Error(t, err)
}

func TestFetcher_RemoteUsesETagCache(t *testing.T) {
	var hits, notModified int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			atomic.AddInt32(&notModified, 1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(teamMeeting))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "remote", Location: srv.URL + "/cal.ics"}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, teamMeeting, string(first.Body))

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, teamMeeting, string(second.Body))

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&notModified))
}

func TestFetcher_RemoteFallsBackToCache(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(teamMeeting))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "flaky", Location: srv.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	fail.Store(true)
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, res.FromCache)
	assert.Equal(t, teamMeeting, string(res.Body))

	_, err = NewFetcher(t.TempDir()).FetchOne(context.Background(), src)
	assert.ErrorContains(t, err, "500")
}

func TestFetcher_FetchAllCollectsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.ics")
	require.NoError(t, os.WriteFile(path, []byte(teamMeeting), 0o600))

	f := NewFetcher(t.TempDir())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "ok", Location: path},
		{ID: "missing", Location: path + ".missing"},
	})
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Source.ID)
	assert.Len(t, errs, 1)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redact(Source{Location: "https://example.com/private/abc.ics?token=1"}))
	assert.Equal(t, "/tmp/a.ics", redact(Source{Location: "/tmp/a.ics"}))
}
