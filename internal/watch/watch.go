// Package watch re-renders a diagram source file whenever it changes on
// disk, using the same debounce and preview pipeline as the live editor.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ziadkadry99/usediagram/internal/debounce"
	"github.com/ziadkadry99/usediagram/internal/preview"
	"github.com/ziadkadry99/usediagram/internal/render"
)

// Event describes the outcome of one render triggered by the watcher.
type Event struct {
	Seq     uint64
	State   preview.State
	Output  string // set when a file was written
	Message string // set when the render failed
}

// Options configures a Watcher.
type Options struct {
	Source   string
	Output   string
	Renderer render.Renderer
	Debounce time.Duration
	// OnEvent, if set, is called after every render attempt.
	OnEvent func(Event)
}

// Watcher renders Source to Output on every change.
type Watcher struct {
	source string
	output string
	onEvt  func(Event)

	pipeline *preview.Pipeline
	input    *debounce.Debouncer[string]
	ctx      context.Context
}

// New creates a Watcher. It does not start watching until Run.
func New(opts Options) (*Watcher, error) {
	if opts.Renderer == nil {
		return nil, fmt.Errorf("watch: renderer is required")
	}
	src, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve source: %w", err)
	}
	out, err := filepath.Abs(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve output: %w", err)
	}
	if src == out {
		return nil, fmt.Errorf("watch: output must differ from source")
	}

	w := &Watcher{source: src, output: out, onEvt: opts.OnEvent}
	w.pipeline = preview.New(opts.Renderer,
		preview.WithNotifier(w),
		preview.WithListener(w.onSnapshot),
	)
	w.input = debounce.New(opts.Debounce, w.commit)
	return w, nil
}

// Run renders the source once and then on every write until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.ctx = ctx

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating watcher: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files instead of writing in place, so the
	// directory is watched rather than the file.
	if err := fsw.Add(filepath.Dir(w.source)); err != nil {
		return fmt.Errorf("watch: watching %s: %w", filepath.Dir(w.source), err)
	}
	defer func() {
		w.input.Stop()
		w.pipeline.Close()
	}()

	w.commit(w.source)
	log.Printf("watch: watching %s", w.source)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); abs != w.source {
				continue
			}
			w.input.Submit(w.source)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: error: %v", err)
		}
	}
}

func (w *Watcher) commit(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("watch: reading %s: %v", path, err)
		return
	}
	w.pipeline.Commit(w.ctx, string(data))
}

// onSnapshot runs with the pipeline lock held.
func (w *Watcher) onSnapshot(snap preview.Snapshot) {
	switch snap.State {
	case preview.StateGenerating:
		return
	case preview.StateError:
		// Reported through Notify.
		return
	}

	evt := Event{Seq: snap.Seq, State: snap.State}
	if snap.Markup == "" {
		log.Printf("watch: %s is empty, output left unchanged", w.source)
	} else if err := writeFile(w.output, []byte(snap.Markup)); err != nil {
		log.Printf("watch: writing %s: %v", w.output, err)
		evt.Message = err.Error()
	} else {
		log.Printf("watch: wrote %s", w.output)
		evt.Output = w.output
	}
	w.emit(evt)
}

// Notify implements preview.Notifier.
func (w *Watcher) Notify(n preview.Notification) {
	log.Printf("watch: %s", n.Message)
	w.emit(Event{State: preview.StateError, Message: n.Message})
}

// Dismiss implements preview.Notifier.
func (w *Watcher) Dismiss() {}

func (w *Watcher) emit(evt Event) {
	if w.onEvt != nil {
		w.onEvt(evt)
	}
}

// writeFile replaces path atomically so readers never see a partial file.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".usediagram-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
