package shares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/usediagram/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestCreateAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, Share{Kind: "mermaid", Content: "graph TD; A-->B"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created.ShareID) != 12 {
		t.Errorf("ShareID = %q, want 12 characters", created.ShareID)
	}

	got, err := store.Get(ctx, created.ShareID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Kind != "mermaid" || got.Content != "graph TD; A-->B" {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestCreateKeepsExplicitID(t *testing.T) {
	store := setupStore(t)
	created, err := store.Create(context.Background(), Share{ShareID: "fixed", Kind: "plantuml", Content: "@startuml\n@enduml"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ShareID != "fixed" {
		t.Errorf("ShareID = %q, want fixed", created.ShareID)
	}
}

func TestGetNotFound(t *testing.T) {
	store := setupStore(t)
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	store := setupStore(t)
	tests := []struct {
		name string
		sh   Share
	}{
		{"unknown kind", Share{Kind: "graphviz", Content: "digraph {}"}},
		{"empty content", Share{Kind: "mermaid", Content: "  \n"}},
		{"too large", Share{Kind: "mermaid", Content: strings.Repeat("a", MaxContentSize+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(context.Background(), tt.sh)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestRecent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.Create(ctx, Share{ShareID: id, Kind: "mermaid", Content: "graph TD"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(list))
	}
	if list[0].ShareID != "c" {
		t.Errorf("expected newest first, got %q", list[0].ShareID)
	}
}

func setupRouter(t *testing.T) (*Store, chi.Router) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return store, r
}

func TestCreateRoute(t *testing.T) {
	store, r := setupRouter(t)

	body := strings.NewReader(`{"kind":"plantuml","content":"@startuml\nA -> B\n@enduml"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/shares", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp createResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.URL != "/s/"+resp.ShareID {
		t.Errorf("URL = %q", resp.URL)
	}
	if _, err := store.Get(context.Background(), resp.ShareID); err != nil {
		t.Errorf("share not stored: %v", err)
	}
}

func TestCreateRouteRejectsInvalid(t *testing.T) {
	_, r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/shares", strings.NewReader(`{"kind":"dot","content":"x"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetRoute(t *testing.T) {
	store, r := setupRouter(t)
	if _, err := store.Create(context.Background(), Share{ShareID: "abc", Kind: "mermaid", Content: "graph LR"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shares/abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var sh Share
	if err := json.NewDecoder(w.Body).Decode(&sh); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sh.Content != "graph LR" {
		t.Errorf("Content = %q", sh.Content)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/shares/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSharePage(t *testing.T) {
	store, r := setupRouter(t)
	if _, err := store.Create(context.Background(), Share{ShareID: "page1", Kind: "mermaid", Content: "graph TD\n  X-->Y"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/page1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "X--&gt;Y") {
		t.Error("expected escaped share content in page")
	}
	if !strings.Contains(w.Body.String(), "readonly") {
		t.Error("expected read-only editor")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
