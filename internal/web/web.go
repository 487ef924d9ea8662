// Package web serves the browser editor page.
package web

import (
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/usediagram/internal/render"
)

var editorTmpl = template.Must(template.New("editor").Parse(editorTemplate))

// Page is the data the editor template is rendered with.
type Page struct {
	Title    string
	Kind     string
	Content  string
	ReadOnly bool
	ShareID  string
}

// RenderEditor writes the editor page.
func RenderEditor(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "Use Diagram | Visualize your ideas"
	}
	if !render.ValidKind(p.Kind) {
		p.Kind = render.KindPlantUML
	}
	return editorTmpl.Execute(w, p)
}

// WriteNotFound writes the page-level 404 shown for unknown shares.
func WriteNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	io.WriteString(w, notFoundTemplate)
}

// RegisterRoutes mounts the editor at GET /. The ?kind= query selects the
// starting diagram kind; defaultKind is used otherwise.
func RegisterRoutes(r chi.Router, defaultKind string) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		kind := req.URL.Query().Get("kind")
		if !render.ValidKind(kind) {
			kind = defaultKind
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := RenderEditor(w, Page{Kind: kind, Content: Sample(kind)}); err != nil {
			log.Printf("web: rendering editor: %v", err)
		}
	})
}

// Sample returns starter source for a new diagram of the given kind.
func Sample(kind string) string {
	if kind == render.KindMermaid {
		return "graph TD\n    A[Idea] --> B{Diagram?}\n    B -->|Yes| C[Share it]\n    B -->|No| D[Keep typing]\n"
	}
	return "@startuml\nAlice -> Bob: Authentication Request\nBob --> Alice: Authentication Response\n@enduml\n"
}
