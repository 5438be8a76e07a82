package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jungoai/jungo-cli/internal/storage"
)

const directoryJSON = `{
  "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY": {
    "name": "Alice Validator",
    "url": "https://alice.example",
    "description": "test delegate",
    "signature": "0xabc"
  }
}`

func newServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t, http.StatusOK, directoryJSON, nil)
	dir, err := New(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := dir.Name("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"); got != "Alice Validator" {
		t.Errorf("name = %q", got)
	}
	if dir.Name("unknown") != "" {
		t.Error("unknown hotkey should have no name")
	}
}

func TestFetch_StatusError(t *testing.T) {
	srv := newServer(t, http.StatusNotFound, "", nil)
	_, err := New(srv.URL).Fetch(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
}

func TestLookup_DegradesToEmpty(t *testing.T) {
	srv := newServer(t, http.StatusOK, "not json", nil)
	dir := New(srv.URL).Lookup(context.Background())
	if dir == nil || len(dir) != 0 {
		t.Fatalf("expected empty directory, got %v", dir)
	}

	dir = New("http://127.0.0.1:1/unreachable", WithHTTPClient(&http.Client{Timeout: time.Second})).Lookup(context.Background())
	if len(dir) != 0 {
		t.Fatalf("expected empty directory, got %v", dir)
	}
}

func TestFetch_Cache(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, http.StatusOK, directoryJSON, &hits)
	db := storage.NewPrefixDB(storage.NewMemory(), []byte("delegates/"))
	c := New(srv.URL, WithCache(db, time.Hour))

	for i := 0; i < 3; i++ {
		dir, err := c.Fetch(context.Background())
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(dir) != 1 {
			t.Fatalf("fetch %d: %d entries", i, len(dir))
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}

	// A different URL must not share the cache entry.
	other := newServer(t, http.StatusOK, `{}`, nil)
	dir, err := New(other.URL, WithCache(db, time.Hour)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch other: %v", err)
	}
	if len(dir) != 0 {
		t.Errorf("other directory has %d entries", len(dir))
	}
}

func TestStatic(t *testing.T) {
	s := Static{"hk": {Name: "n"}}
	if s.Lookup(context.Background()).Name("hk") != "n" {
		t.Error("static lookup")
	}
}
