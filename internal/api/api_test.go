package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
	"github.com/ziadkadry99/usediagram/internal/render"
)

type fakeUpstream struct {
	svg []byte
	png []byte
	err error
}

func (f *fakeUpstream) SVG(ctx context.Context, token string) ([]byte, error) { return f.svg, f.err }
func (f *fakeUpstream) PNG(ctx context.Context, token string) ([]byte, error) { return f.png, f.err }

func setupRouter(up Upstream) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, up)
	return r
}

func TestSVGEndpoint(t *testing.T) {
	r := setupRouter(&fakeUpstream{svg: []byte("<svg></svg>")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/svg/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp svgResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data != "<svg></svg>" {
		t.Errorf("data = %q", resp.Data)
	}
}

func TestSVGEndpointUpstreamRejects(t *testing.T) {
	r := setupRouter(&fakeUpstream{err: &plantuml.StatusError{Code: 400}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/svg/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSVGEndpointTransportFailure(t *testing.T) {
	r := setupRouter(&fakeUpstream{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/svg/abc", nil))
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestInvalidToken(t *testing.T) {
	r := setupRouter(&fakeUpstream{svg: []byte("<svg/>")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/svg/a.b", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPNGEndpoint(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	r := setupRouter(&fakeUpstream{png: png})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/png/abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Equal(w.Body.Bytes(), png) {
		t.Error("body mismatch")
	}
}

// The remote renderer must be able to consume these endpoints end to end.
func TestRemoteRendererAgainstEndpoints(t *testing.T) {
	srv := httptest.NewServer(setupRouter(&fakeUpstream{svg: []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)}))
	defer srv.Close()

	rr := render.NewRemote(srv.URL, 5*time.Second)
	res, err := rr.Render(context.Background(), "@startuml\nA -> B\n@enduml")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Markup != `<svg xmlns="http://www.w3.org/2000/svg"/>` {
		t.Errorf("Markup = %q", res.Markup)
	}

	bad := httptest.NewServer(setupRouter(&fakeUpstream{err: &plantuml.StatusError{Code: 400}}))
	defer bad.Close()
	_, err = render.NewRemote(bad.URL, 5*time.Second).Render(context.Background(), "@startuml\n???\n@enduml")
	if !errors.Is(err, render.ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}
}
