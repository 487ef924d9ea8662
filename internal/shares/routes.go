package shares

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/usediagram/internal/web"
)

// URL returns the page path that opens a share read-only.
func URL(shareID string) string {
	return "/s/" + shareID
}

// RegisterRoutes mounts the share API under /api/shares and the read-only
// viewer at /s/{shareId}.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/shares", func(r chi.Router) {
		r.Post("/", handleCreate(store))
		r.Get("/", handleRecent(store))
		r.Get("/{id}", handleGet(store))
	})
	r.Get("/s/{shareId}", handlePage(store))
}

type createRequest struct {
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

type createResponse struct {
	ShareID string `json:"share_id"`
	URL     string `json:"url"`
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxContentSize+1024)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		sh, err := store.Create(r.Context(), Share{Kind: req.Kind, Content: req.Content})
		if err != nil {
			if errors.Is(err, ErrInvalid) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			log.Printf("shares: create: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not store share"})
			return
		}
		writeJSON(w, http.StatusCreated, createResponse{ShareID: sh.ShareID, URL: URL(sh.ShareID)})
	}
}

func handleRecent(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		list, err := store.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Share{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := store.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sh)
	}
}

func handlePage(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := store.Get(r.Context(), chi.URLParam(r, "shareId"))
		if errors.Is(err, ErrNotFound) {
			web.WriteNotFound(w)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = web.RenderEditor(w, web.Page{
			Kind:     sh.Kind,
			Content:  sh.Content,
			ReadOnly: true,
			ShareID:  sh.ShareID,
		})
		if err != nil {
			log.Printf("shares: rendering page %s: %v", sh.ShareID, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
