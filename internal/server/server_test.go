package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/repolens/repolens/pkg/engine"
	"github.com/repolens/repolens/pkg/profile"
	"github.com/repolens/repolens/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	quiet := log.New(io.Discard)
	return New(Config{
		Engine: engine.New(engine.WithLogger(quiet)),
		Store:  store.NewMemoryStore(),
		Logger: quiet,
	})
}

func fixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	manifest := `{
  "name": "demo",
  "version": "1.0.0",
  "dependencies": {"express": "4.17.1"},
  "devDependencies": {"jest": "^27.0.0"}
}`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCreateAndGetScan(t *testing.T) {
	srv := newTestServer(t)
	root := fixtureRepo(t)

	body := strings.NewReader(`{"root": ` + jsonQuote(root) + `}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scans", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var record store.ScanRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected generated scan ID")
	}
	if record.Profile.ProjectType != "Node" {
		t.Errorf("project type = %q", record.Profile.ProjectType)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+record.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestCreateScan_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing root", `{}`},
		{"nonexistent path", `{"root": "/does/not/exist"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(tt.body))
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateScan_HonorsMaxDepth(t *testing.T) {
	srv := newTestServer(t)

	dir := t.TempDir()
	deep := filepath.Join(dir, "a", "b", "c", "d")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deep, "leaf.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	post := func(body string) *store.ScanRecord {
		t.Helper()
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var record store.ScanRecord
		if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
			t.Fatal(err)
		}
		return &record
	}

	shallow := post(`{"root": ` + jsonQuote(dir) + `}`)
	if !hasTruncated(shallow.Profile.Structure.Tree) {
		t.Error("default-depth scan of a 4-deep tree should be truncated")
	}

	full := post(`{"root": ` + jsonQuote(dir) + `, "max_depth": 10}`)
	if hasTruncated(full.Profile.Structure.Tree) {
		t.Error("max_depth 10 must walk the whole tree, got a truncated subtree")
	}
}

func hasTruncated(node *profile.DirectoryNode) bool {
	if node == nil {
		return false
	}
	if node.Marker == "truncated" {
		return true
	}
	for _, child := range node.Children {
		if hasTruncated(child) {
			return true
		}
	}
	return false
}

func TestGetScan_NotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scans/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListScans(t *testing.T) {
	srv := newTestServer(t)
	root := fixtureRepo(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"root": ` + jsonQuote(root) + `}`)
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scans", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scans?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var records []store.ScanRecord
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestListScans_BadLimit(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scans?limit=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGraph_DOT(t *testing.T) {
	srv := newTestServer(t)
	root := fixtureRepo(t)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"root": ` + jsonQuote(root) + `}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scans", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var record store.ScanRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+record.ID+"/graph?format=dot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("graph status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "digraph deps") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/vnd.graphviz" {
		t.Errorf("content type = %q", got)
	}
}

func TestGraph_UnknownFormat(t *testing.T) {
	srv := newTestServer(t)
	root := fixtureRepo(t)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"root": ` + jsonQuote(root) + `}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/scans", body))
	var record store.ScanRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/scans/"+record.ID+"/graph?format=gif", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// jsonQuote JSON-quotes a string for request bodies.
func jsonQuote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
