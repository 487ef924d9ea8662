package session

import (
	"github.com/ziadkadry99/usediagram/internal/preview"
	"github.com/ziadkadry99/usediagram/internal/viewport"
)

// Client frame types.
const (
	MsgEdit          = "edit"
	MsgKind          = "kind"
	MsgResize        = "resize"
	MsgZoomIn        = "zoom_in"
	MsgZoomOut       = "zoom_out"
	MsgReset         = "reset"
	MsgExportSVG     = "export_svg"
	MsgExportPNG     = "export_png"
	MsgToggleSidebar = "toggle_sidebar"
	MsgShare         = "share"
)

// Server frame types.
const (
	MsgState       = "state"
	MsgRender      = "render"
	MsgClear       = "clear"
	MsgToast       = "toast"
	MsgDismiss     = "dismiss"
	MsgViewport    = "viewport"
	MsgDownloading = "downloading"
	MsgDownload    = "download"
	MsgShared      = "shared"
	MsgUI          = "ui"
	MsgError       = "error"
)

// ClientFrame is a message sent by the browser.
type ClientFrame struct {
	Type    string  `json:"type"`
	Content string  `json:"content,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// ServerFrame is a message pushed to the browser. Only the fields relevant
// to Type are set.
type ServerFrame struct {
	Type     string              `json:"type"`
	Seq      uint64              `json:"seq,omitempty"`
	State    preview.State       `json:"state,omitempty"`
	SVG      string              `json:"svg,omitempty"`
	Level    preview.Level       `json:"level,omitempty"`
	Message  string              `json:"message,omitempty"`
	Viewport *viewport.Transform `json:"viewport,omitempty"`
	Active   bool                `json:"active,omitempty"`
	Name     string              `json:"name,omitempty"`
	URL      string              `json:"url,omitempty"`
	ShareID  string              `json:"share_id,omitempty"`
	UI       *Workspace          `json:"ui,omitempty"`
}

// Workspace is the per-session UI state.
type Workspace struct {
	Kind        string `json:"kind"`
	ShowSidebar bool   `json:"show_sidebar"`
	ReadOnly    bool   `json:"read_only"`
	ShareID     string `json:"share_id,omitempty"`
}
