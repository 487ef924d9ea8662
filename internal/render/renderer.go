// Package render turns diagram source into SVG markup using local tools or
// remote rendering servers.
package render

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// Diagram kinds.
const (
	KindMermaid  = "mermaid"
	KindPlantUML = "plantuml"
)

// ErrSyntax marks a render failure caused by the diagram source. Callers
// surface it to the user as "syntax is likely invalid".
var ErrSyntax = errors.New("diagram syntax is likely invalid")

// Result is the output of a successful render.
type Result struct {
	Kind   string
	Markup string
}

// Renderer converts diagram source into SVG markup.
type Renderer interface {
	Kind() string
	Render(ctx context.Context, source string) (*Result, error)
}

// Registry maps diagram kinds to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates a Registry holding the given renderers.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: map[string]Renderer{}}
	for _, rr := range renderers {
		r.Register(rr)
	}
	return r
}

// Register adds or replaces the renderer for its kind.
func (r *Registry) Register(rr Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[rr.Kind()] = rr
}

// Get returns the renderer for kind.
func (r *Registry) Get(kind string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rr, ok := r.renderers[kind]
	return rr, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.renderers))
	for k := range r.renderers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// ValidKind reports whether kind is one of the supported diagram kinds.
func ValidKind(kind string) bool {
	return kind == KindMermaid || kind == KindPlantUML
}
