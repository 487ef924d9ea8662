// Package api serves the public render endpoints that proxy an upstream
// PlantUML server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
)

// Upstream fetches renderings of encoded PlantUML tokens.
type Upstream interface {
	SVG(ctx context.Context, token string) ([]byte, error)
	PNG(ctx context.Context, token string) ([]byte, error)
}

type svgResponse struct {
	Data string `json:"data"`
}

// RegisterRoutes mounts GET /api/svg/{token} and GET /api/png/{token}.
func RegisterRoutes(r chi.Router, up Upstream) {
	r.Get("/api/svg/{token}", handleSVG(up))
	r.Get("/api/png/{token}", handlePNG(up))
}

func handleSVG(up Upstream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if !validToken(token) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid token"})
			return
		}
		svg, err := up.SVG(r.Context(), token)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, svgResponse{Data: string(svg)})
	}
}

func handlePNG(up Upstream) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if !validToken(token) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid token"})
			return
		}
		png, err := up.PNG(r.Context(), token)
		if err != nil {
			writeUpstreamError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}

// writeUpstreamError maps a rejected diagram to 400 and transport failures
// to 502.
func writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, plantuml.ErrUpstream) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("api: upstream: %v", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "render server unavailable"})
}

func validToken(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
