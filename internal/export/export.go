// Package export turns the live preview into downloadable SVG and PNG files.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/usediagram/internal/plantuml"
	"github.com/ziadkadry99/usediagram/internal/render"
)

// Content types of exported artifacts.
const (
	ContentTypeSVG = "image/svg+xml;charset=utf-8"
	ContentTypePNG = "image/png"
)

// ErrNothingToExport is returned when there is no rendered diagram.
var ErrNothingToExport = errors.New("no rendered diagram to export")

// ErrPNGUnsupported is returned for PNG exports of kinds without a PNG
// conversion endpoint.
var ErrPNGUnsupported = errors.New("png export is only available for plantuml diagrams")

// ErrDownloadInProgress is returned by PNG while an earlier export is still
// fetching.
var ErrDownloadInProgress = errors.New("png export already in progress")

// Artifact is a downloadable file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// PNGFetcher converts an encoded PlantUML token into PNG bytes.
type PNGFetcher interface {
	PNG(ctx context.Context, token string) ([]byte, error)
}

// Filename returns "{kind}-{unix millis}.{ext}".
func Filename(kind string, at time.Time, ext string) string {
	return fmt.Sprintf("%s-%d.%s", kind, at.UnixMilli(), ext)
}

// Exporter builds artifacts from the live preview.
type Exporter struct {
	png PNGFetcher
	now func() time.Time

	mu          sync.Mutex
	downloading bool
}

// NewExporter creates an Exporter. png may be nil when PNG export is not
// available.
func NewExporter(png PNGFetcher) *Exporter {
	return &Exporter{png: png, now: time.Now}
}

// SVG wraps the rendered markup in an SVG artifact.
func (e *Exporter) SVG(kind, markup string) (*Artifact, error) {
	if markup == "" {
		return nil, ErrNothingToExport
	}
	return &Artifact{
		Name:        Filename(kind, e.now(), "svg"),
		ContentType: ContentTypeSVG,
		Data:        []byte(markup),
	}, nil
}

// PNG re-encodes source and fetches its PNG rendering. The downloading flag
// is set for the duration of the call and cleared however it ends. A call
// made while another is in flight returns ErrDownloadInProgress.
func (e *Exporter) PNG(ctx context.Context, kind, source string) (*Artifact, error) {
	if kind != render.KindPlantUML || e.png == nil {
		return nil, ErrPNGUnsupported
	}
	if source == "" {
		return nil, ErrNothingToExport
	}

	if !e.tryBeginDownload() {
		return nil, ErrDownloadInProgress
	}
	defer e.endDownload()

	token, err := plantuml.Encode(source)
	if err != nil {
		return nil, err
	}
	data, err := e.png.PNG(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("fetching png: %w", err)
	}
	return &Artifact{
		Name:        Filename(kind, e.now(), "png"),
		ContentType: ContentTypePNG,
		Data:        data,
	}, nil
}

// Downloading reports whether a PNG export is in progress.
func (e *Exporter) Downloading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.downloading
}

func (e *Exporter) tryBeginDownload() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.downloading {
		return false
	}
	e.downloading = true
	return true
}

func (e *Exporter) endDownload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.downloading = false
}
