package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/usediagram/internal/api"
	"github.com/ziadkadry99/usediagram/internal/db"
	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/session"
	"github.com/ziadkadry99/usediagram/internal/shares"
	"github.com/ziadkadry99/usediagram/internal/web"
)

// Config holds server configuration.
type Config struct {
	Port        int
	AllowAll    bool   // allow all CORS origins (dev mode)
	DefaultKind string // diagram kind the editor opens with
}

// Deps are the feature components the server routes to. Nil components
// leave their routes unmounted.
type Deps struct {
	DB       *db.DB
	Shares   *shares.Store
	Upstream api.Upstream
	Blobs    *export.Blobs
	Sessions *session.Handler
}

// Server is the usediagram HTTP server.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all routes mounted.
func New(cfg Config, deps Deps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Plain request/response routes get a deadline; the websocket route
	// outlives it.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		web.RegisterRoutes(r, s.cfg.DefaultKind)
		if s.deps.Upstream != nil {
			api.RegisterRoutes(r, s.deps.Upstream)
		}
		if s.deps.Shares != nil {
			shares.RegisterRoutes(r, s.deps.Shares)
		}
		if s.deps.Blobs != nil {
			s.deps.Blobs.RegisterRoutes(r)
		}
	})

	if s.deps.Sessions != nil {
		s.deps.Sessions.RegisterRoutes(r)
	}

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.deps.DB }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("usediagram server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server. Websocket sessions are hijacked
// connections that http.Server does not track, so they are closed here.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.deps.Sessions != nil {
		s.deps.Sessions.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
