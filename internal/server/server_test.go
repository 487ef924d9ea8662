package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/usediagram/internal/db"
	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/shares"
)

type fakeUpstream struct{}

func (fakeUpstream) SVG(ctx context.Context, token string) ([]byte, error) {
	return []byte("<svg/>"), nil
}

func (fakeUpstream) PNG(ctx context.Context, token string) ([]byte, error) {
	return []byte("png"), nil
}

func setupServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return New(cfg, Deps{
		DB:       database,
		Shares:   shares.NewStore(database),
		Upstream: fakeUpstream{},
		Blobs:    export.NewBlobs("/downloads", time.Minute),
	})
}

func TestHealthCheck(t *testing.T) {
	srv := setupServer(t, Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := setupServer(t, Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestFeatureRoutesMounted(t *testing.T) {
	srv := setupServer(t, Config{DefaultKind: "mermaid"})

	tests := []struct {
		method, path string
		body         string
		want         int
	}{
		{"GET", "/", "", http.StatusOK},
		{"GET", "/api/svg/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", "", http.StatusOK},
		{"GET", "/api/png/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", "", http.StatusOK},
		{"POST", "/api/shares", `{"kind":"mermaid","content":"graph TD"}`, http.StatusCreated},
		{"GET", "/api/shares/missing", "", http.StatusNotFound},
		{"GET", "/s/missing", "", http.StatusNotFound},
		{"GET", "/downloads/missing", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
