package export

import (
	"fmt"
	"log"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DefaultBlobTTL is how long an unclaimed download stays available.
const DefaultBlobTTL = 2 * time.Minute

// Blobs holds artifacts waiting to be downloaded. Each blob is served once
// and released only after its response has been written.
type Blobs struct {
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	blobs map[string]*blob
}

type blob struct {
	artifact *Artifact
	timer    *time.Timer
	claimed  bool // a download is being written
}

// NewBlobs creates a store whose URLs start with prefix, e.g. "/downloads".
func NewBlobs(prefix string, ttl time.Duration) *Blobs {
	if ttl <= 0 {
		ttl = DefaultBlobTTL
	}
	return &Blobs{prefix: prefix, ttl: ttl, blobs: map[string]*blob{}}
}

// Put stores a and returns the URL it can be downloaded from.
func (b *Blobs) Put(a *Artifact) string {
	id := uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[id] = &blob{
		artifact: a,
		timer:    time.AfterFunc(b.ttl, func() { b.Release(id) }),
	}
	return fmt.Sprintf("%s/%s", b.prefix, id)
}

// Release drops the blob with the given id. It reports whether one existed.
func (b *Blobs) Release(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	bl, ok := b.blobs[id]
	if !ok {
		return false
	}
	bl.timer.Stop()
	delete(b.blobs, id)
	return true
}

// Len returns the number of blobs waiting for download.
func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// claim hands out the blob's artifact to exactly one download.
func (b *Blobs) claim(id string) (*Artifact, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bl, ok := b.blobs[id]
	if !ok || bl.claimed {
		return nil, false
	}
	bl.claimed = true
	return bl.artifact, true
}

// RegisterRoutes mounts GET {prefix}/{id}.
func (b *Blobs) RegisterRoutes(r chi.Router) {
	r.Get(b.prefix+"/{id}", b.handleDownload)
}

func (b *Blobs) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok := b.claim(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	if _, err := w.Write(a.Data); err != nil {
		log.Printf("export: writing download %s: %v", a.Name, err)
	}
	// Released only once the body has been handed to the client.
	b.Release(id)
}
