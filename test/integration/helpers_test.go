//go:build integration

// Package integration provides end-to-end tests for the Tropimon Stats API:
// log tree on disk, full rebuild, queries over HTTP.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tropimon/tropimon-stats/internal/api"
	"github.com/tropimon/tropimon-stats/internal/app"
	"github.com/tropimon/tropimon-stats/internal/ingest"
	"github.com/tropimon/tropimon-stats/internal/store"
)

// TestApp holds all dependencies for integration tests.
type TestApp struct {
	Server *httptest.Server
	Store  *store.Store
	Root   string

	cleanup func()
}

// NewTestApp wires a store, an empty log root, and the HTTP server.
// Call Close when done to release resources.
func NewTestApp(t *testing.T) *TestApp {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tropimon-integration-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	st, err := store.Open(filepath.Join(tmpDir, "test.sqlite"))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open store: %v", err)
	}

	root := filepath.Join(tmpDir, "logs")
	if err := os.Mkdir(root, 0o755); err != nil {
		st.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create log root: %v", err)
	}

	server := api.NewServer("127.0.0.1:0",
		app.HealthService{Store: st, Version: "integration"},
		api.WithStats(&app.StatsService{Store: st}),
	)
	ts := httptest.NewServer(server.Handler())

	return &TestApp{
		Server: ts,
		Store:  st,
		Root:   root,
		cleanup: func() {
			ts.Close()
			st.Close()
			os.RemoveAll(tmpDir)
		},
	}
}

// Close releases all resources.
func (a *TestApp) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// URL returns the base URL of the test server.
func (a *TestApp) URL() string {
	return a.Server.URL
}

// WriteLog writes one log file under the test log root.
func (a *TestApp) WriteLog(t *testing.T, relPath, content string) {
	t.Helper()

	path := filepath.Join(a.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", relPath, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", relPath, err)
	}
}

// Rebuild runs one full ingestion over the test log root.
func (a *TestApp) Rebuild(t *testing.T) *ingest.Result {
	t.Helper()

	res, err := ingest.New(a.Store, a.Root).Run(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	return res
}

// GetJSON fetches path and decodes the JSON response body into v.
func (a *TestApp) GetJSON(t *testing.T, path string, v any) int {
	t.Helper()

	resp, err := http.Get(a.URL() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("parse %q: %v", body, err)
		}
	}
	return resp.StatusCode
}
