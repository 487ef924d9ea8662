// Package preview drives the editor preview: it turns committed source text
// into sanitized markup, tracks render state and keeps only the newest
// result on screen.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/sanitize"
)

// Pipeline owns the live render result for one preview.
type Pipeline struct {
	renderer render.Renderer
	notifier Notifier
	listener Listener
	sanitize func(string) (string, error)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	state  State
	markup string
	source string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNotifier sets where render failures are reported.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithListener sets a callback for every published snapshot. It is called
// with the pipeline lock held, so it must not call back into the pipeline.
func WithListener(l Listener) Option {
	return func(p *Pipeline) { p.listener = l }
}

// WithSanitizer replaces the SVG sanitizer.
func WithSanitizer(fn func(string) (string, error)) Option {
	return func(p *Pipeline) { p.sanitize = fn }
}

// New creates a Pipeline rendering with r.
func New(r render.Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		renderer: r,
		sanitize: sanitize.SVG,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Commit renders text and, if no newer commit arrived meanwhile, replaces the
// live markup with the result. Empty text clears the preview without calling
// the renderer. A failed render keeps the previous markup, moves to
// StateError and raises a single notification.
func (p *Pipeline) Commit(ctx context.Context, text string) error {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.source = text

	if text == "" {
		p.markup = ""
		p.state = StateIdle
		p.publishLocked()
		p.mu.Unlock()
		return nil
	}

	rctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = StateGenerating
	p.publishLocked()
	renderer := p.renderer
	p.mu.Unlock()

	defer cancel()
	res, err := renderer.Render(rctx, text)

	var markup string
	if err == nil {
		markup, err = p.sanitize(res.Markup)
		if err != nil {
			err = fmt.Errorf("%w: %v", render.ErrSyntax, err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq {
		return ErrSuperseded
	}
	p.cancel = nil

	if err != nil {
		if ctx.Err() != nil {
			// Owner went away; nothing left to report to.
			p.state = StateIdle
			return ctx.Err()
		}
		log.Printf("preview: %s render failed: %v", renderer.Kind(), err)
		p.state = StateError
		if p.notifier != nil {
			p.notifier.Dismiss()
			p.notifier.Notify(Notification{Level: LevelError, Message: message(err)})
		}
		p.publishLocked()
		return err
	}

	p.markup = markup
	p.state = StateIdle
	p.publishLocked()
	return nil
}

// SetRenderer switches the renderer used by later commits and cancels any
// request in flight.
func (p *Pipeline) SetRenderer(r render.Renderer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderer = r
	p.seq++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.state == StateGenerating {
		p.state = StateIdle
	}
}

// Close cancels any request in flight. Late results are discarded.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Snapshot returns the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Markup returns the live sanitized markup, or "" when nothing is shown.
func (p *Pipeline) Markup() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.markup
}

// Source returns the text of the most recent commit.
func (p *Pipeline) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Kind returns the diagram kind of the current renderer.
func (p *Pipeline) Kind() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderer.Kind()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	return Snapshot{
		Seq:    p.seq,
		Kind:   p.renderer.Kind(),
		State:  p.state,
		Markup: p.markup,
	}
}

func (p *Pipeline) publishLocked() {
	if p.listener != nil {
		p.listener(p.snapshotLocked())
	}
}

func message(err error) string {
	if errors.Is(err, render.ErrSyntax) {
		return SyntaxMessage
	}
	return "Unable to render diagram: " + err.Error()
}
