package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/usediagram/internal/debounce"
	"github.com/ziadkadry99/usediagram/internal/export"
	"github.com/ziadkadry99/usediagram/internal/preview"
	"github.com/ziadkadry99/usediagram/internal/render"
	"github.com/ziadkadry99/usediagram/internal/shares"
	"github.com/ziadkadry99/usediagram/internal/viewport"
)

const writeTimeout = 10 * time.Second

// Session is one connected editor.
type Session struct {
	id   string
	conn *websocket.Conn
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	pipeline *preview.Pipeline
	view     *viewport.Controller
	exporter *export.Exporter
	input    *debounce.Debouncer[string]

	writeMu sync.Mutex

	mu         sync.Mutex
	ws         Workspace
	text       string
	lastMarkup string
	closeOnce  sync.Once
}

func newSession(id string, conn *websocket.Conn, opts Options, r render.Renderer, shared *shares.Share) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		conn:     conn,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		view:     viewport.New(opts.Viewport),
		exporter: export.NewExporter(opts.PNG),
		ws:       Workspace{Kind: r.Kind(), ShowSidebar: true},
	}
	if shared != nil {
		s.ws.ReadOnly = true
		s.ws.ShareID = shared.ShareID
		s.text = shared.Content
	}
	s.pipeline = preview.New(r, preview.WithNotifier(s), preview.WithListener(s.onSnapshot))
	s.input = debounce.New(opts.Debounce, s.commit)
	return s
}

func (s *Session) run() {
	defer s.Close()

	s.sendUI()
	s.send(ServerFrame{Type: MsgState, State: preview.StateIdle})

	if s.ws.ReadOnly {
		go s.commit(s.text)
	}

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session %s: websocket read: %v", s.id, err)
			}
			return
		}

		var f ClientFrame
		if err := json.Unmarshal(msg, &f); err != nil {
			s.sendError("invalid message format")
			continue
		}
		s.handle(f)
	}
}

// Close tears the session down: pending edits are dropped, in-flight
// renders and exports are cancelled and the connection is closed.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.input.Stop()
		s.pipeline.Close()
		s.cancel()
		s.conn.Close()
	})
}

func (s *Session) handle(f ClientFrame) {
	switch f.Type {
	case MsgEdit:
		s.handleEdit(f.Content)
	case MsgKind:
		s.handleKind(f.Kind)
	case MsgResize:
		s.handleResize(viewport.Size{Width: f.Width, Height: f.Height})
	case MsgZoomIn:
		s.sendViewport(s.view.ZoomIn())
	case MsgZoomOut:
		s.sendViewport(s.view.ZoomOut())
	case MsgReset:
		s.sendViewport(s.view.Reset())
	case MsgExportSVG:
		s.exportSVG()
	case MsgExportPNG:
		go s.exportPNG()
	case MsgToggleSidebar:
		s.mu.Lock()
		s.ws.ShowSidebar = !s.ws.ShowSidebar
		s.mu.Unlock()
		s.sendUI()
	case MsgShare:
		s.share()
	default:
		s.sendError("unknown message type: " + f.Type)
	}
}

func (s *Session) handleEdit(content string) {
	s.mu.Lock()
	if s.ws.ReadOnly {
		s.mu.Unlock()
		s.sendError("session is read-only")
		return
	}
	s.text = content
	s.mu.Unlock()
	s.input.Submit(content)
}

func (s *Session) handleKind(kind string) {
	r, ok := s.opts.Renderers.Get(kind)
	if !ok {
		s.sendError("unknown diagram kind: " + kind)
		return
	}
	s.mu.Lock()
	if s.ws.ReadOnly {
		s.mu.Unlock()
		s.sendError("session is read-only")
		return
	}
	s.ws.Kind = kind
	text := s.text
	s.mu.Unlock()

	s.pipeline.SetRenderer(r)
	s.sendUI()
	s.input.Submit(text)
}

func (s *Session) handleResize(size viewport.Size) {
	if !size.Valid() {
		return
	}
	s.view.SetContainer(size)
	s.mu.Lock()
	markup := s.lastMarkup
	s.mu.Unlock()
	if markup == "" {
		return
	}
	if content, err := viewport.ParseSize(markup); err == nil {
		s.sendViewport(s.view.Fit(content))
	}
}

// commit renders text. Failures reach the client through Notify and
// superseded results are dropped by the pipeline.
func (s *Session) commit(text string) {
	s.pipeline.Commit(s.ctx, text)
}

// onSnapshot runs with the pipeline lock held.
func (s *Session) onSnapshot(snap preview.Snapshot) {
	s.send(ServerFrame{Type: MsgState, Seq: snap.Seq, State: snap.State})

	s.mu.Lock()
	changed := snap.Markup != s.lastMarkup
	s.lastMarkup = snap.Markup
	s.mu.Unlock()
	if !changed {
		return
	}

	if snap.Markup == "" {
		s.send(ServerFrame{Type: MsgClear, Seq: snap.Seq})
		return
	}
	s.send(ServerFrame{Type: MsgRender, Seq: snap.Seq, SVG: snap.Markup})
	if content, err := viewport.ParseSize(snap.Markup); err == nil {
		s.sendViewport(s.view.Fit(content))
	}
}

// Notify implements preview.Notifier.
func (s *Session) Notify(n preview.Notification) {
	s.send(ServerFrame{Type: MsgToast, Level: n.Level, Message: n.Message})
}

// Dismiss implements preview.Notifier.
func (s *Session) Dismiss() {
	s.send(ServerFrame{Type: MsgDismiss})
}

func (s *Session) exportSVG() {
	art, err := s.exporter.SVG(s.pipeline.Kind(), s.pipeline.Markup())
	if err != nil {
		s.Notify(preview.Notification{Level: preview.LevelInfo, Message: "Nothing to export yet"})
		return
	}
	s.deliver(art)
}

func (s *Session) exportPNG() {
	s.send(ServerFrame{Type: MsgDownloading, Active: true})
	art, err := s.exporter.PNG(s.ctx, s.pipeline.Kind(), s.pipeline.Source())
	if errors.Is(err, export.ErrDownloadInProgress) {
		// The running export clears the indicator when it finishes.
		return
	}
	s.send(ServerFrame{Type: MsgDownloading, Active: false})
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		log.Printf("session %s: png export: %v", s.id, err)
		msg := "Unable to download PNG"
		switch {
		case errors.Is(err, export.ErrPNGUnsupported):
			msg = "PNG export is only available for PlantUML diagrams"
		case errors.Is(err, export.ErrNothingToExport):
			msg = "Nothing to export yet"
		}
		s.Notify(preview.Notification{Level: preview.LevelError, Message: msg})
		return
	}
	s.deliver(art)
}

func (s *Session) deliver(art *export.Artifact) {
	if s.opts.Blobs == nil {
		s.sendError("downloads are disabled")
		return
	}
	url := s.opts.Blobs.Put(art)
	s.send(ServerFrame{Type: MsgDownload, Name: art.Name, URL: url})
}

func (s *Session) share() {
	if s.opts.Shares == nil {
		s.sendError("sharing is disabled")
		return
	}
	s.mu.Lock()
	sh := shares.Share{Kind: s.ws.Kind, Content: s.text}
	s.mu.Unlock()

	created, err := s.opts.Shares.Create(s.ctx, sh)
	if err != nil {
		if errors.Is(err, shares.ErrInvalid) {
			s.Notify(preview.Notification{Level: preview.LevelError, Message: "Nothing to share yet"})
			return
		}
		log.Printf("session %s: share: %v", s.id, err)
		s.Notify(preview.Notification{Level: preview.LevelError, Message: "Unable to share diagram"})
		return
	}
	s.send(ServerFrame{Type: MsgShared, ShareID: created.ShareID, URL: shares.URL(created.ShareID)})
}

func (s *Session) sendUI() {
	s.mu.Lock()
	ws := s.ws
	s.mu.Unlock()
	s.send(ServerFrame{Type: MsgUI, UI: &ws})
}

func (s *Session) sendViewport(t viewport.Transform) {
	s.send(ServerFrame{Type: MsgViewport, Viewport: &t})
}

func (s *Session) sendError(msg string) {
	s.send(ServerFrame{Type: MsgError, Message: msg})
}

func (s *Session) send(f ServerFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteJSON(f); err != nil && s.ctx.Err() == nil {
		log.Printf("session %s: write %s: %v", s.id, f.Type, err)
	}
}
