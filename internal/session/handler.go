// Package session runs live editing sessions over websockets. Each session
// debounces the browser's edits, renders them through a preview pipeline and
// pushes state, markup, viewport and download frames back.
package session

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/shares"
	"github.com/ziadkadry99/usediagram/internal/viewport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Options configures the session handler.
type Options struct {
	Renderers   *render.Registry
	PNG         export.PNGFetcher
	Blobs       *export.Blobs
	Shares      *shares.Store
	Debounce    time.Duration
	Viewport    viewport.Options
	DefaultKind string
}

// Handler accepts websocket connections and tracks the live sessions.
type Handler struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	if opts.DefaultKind == "" {
		opts.DefaultKind = render.KindPlantUML
	}
	return &Handler{opts: opts, sessions: map[string]*Session{}}
}

// RegisterRoutes mounts GET /ws/session.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/session", h.ServeWS)
}

// ServeWS upgrades the request and runs a session until the client leaves.
// The ?kind= query picks the diagram kind and ?share= opens a stored share
// read-only.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if !render.ValidKind(kind) {
		kind = h.opts.DefaultKind
	}

	var shared *shares.Share
	if id := r.URL.Query().Get("share"); id != "" {
		if h.opts.Shares == nil {
			http.Error(w, "sharing is disabled", http.StatusNotFound)
			return
		}
		sh, err := h.opts.Shares.Get(r.Context(), id)
		if errors.Is(err, shares.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		shared = sh
		kind = sh.Kind
	}

	renderer, ok := h.opts.Renderers.Get(kind)
	if !ok {
		http.Error(w, "no renderer for "+kind, http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("session: websocket upgrade: %v", err)
		return
	}

	s := newSession(uuid.NewString(), conn, h.opts, renderer, shared)
	h.track(s)
	defer h.untrack(s)

	s.run()
}

// Active returns the number of open sessions.
func (h *Handler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every open session.
func (h *Handler) Close() {
	h.mu.Lock()
	list := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		list = append(list, s)
	}
	h.mu.Unlock()

	for _, s := range list {
		s.Close()
	}
}

func (h *Handler) track(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.id] = s
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.id)
}
