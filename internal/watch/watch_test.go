package watch

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/usediagram/internal/preview"
	"github.com/ziadkadry99/usediagram/internal/render"
)

type echoRenderer struct{}

func (echoRenderer) Kind() string { return render.KindMermaid }

func (echoRenderer) Render(ctx context.Context, source string) (*render.Result, error) {
	if strings.Contains(source, "bad") {
		return nil, fmt.Errorf("%w: unexpected token", render.ErrSyntax)
	}
	var b strings.Builder
	xml.EscapeText(&b, []byte(strings.TrimSpace(source)))
	markup := `<svg xmlns="http://www.w3.org/2000/svg"><desc>` + b.String() + `</desc></svg>`
	return &render.Result{Kind: render.KindMermaid, Markup: markup}, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) hasError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e.State == preview.StateError && e.Message == preview.SyntaxMessage {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func outputContains(path, s string) func() bool {
	return func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), s)
	}
}

func TestWatchRendersOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "flow.mmd")
	out := filepath.Join(dir, "out", "flow.svg")
	if err := os.WriteFile(src, []byte("graph first"), 0644); err != nil {
		t.Fatal(err)
	}

	var events eventLog
	w, err := New(Options{
		Source:   src,
		Output:   out,
		Renderer: echoRenderer{},
		Debounce: 20 * time.Millisecond,
		OnEvent:  events.add,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	waitFor(t, "initial render", outputContains(out, "graph first"))

	if err := os.WriteFile(src, []byte("graph second"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "re-render", outputContains(out, "graph second"))

	if err := os.WriteFile(src, []byte("bad"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "error event", events.hasError)

	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "graph second") {
		t.Errorf("failed render should keep previous output, got %q", data)
	}
}

func TestNewRejectsSameOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mmd")
	if _, err := New(Options{Source: src, Output: src, Renderer: echoRenderer{}}); err == nil {
		t.Error("expected error when output equals source")
	}
}

func TestNewRequiresRenderer(t *testing.T) {
	if _, err := New(Options{Source: "a.mmd", Output: "a.svg"}); err == nil {
		t.Error("expected error without renderer")
	}
}
