// Package history keeps the bounded list of saved style versions.
package history

import (
	"sync"
	"time"

	"github.com/brunoga/deep"
	"github.com/google/uuid"

	"github.com/joeblew999/plat-style/internal/style"
)

// Capacity is the number of versions kept. Older ones are evicted.
const Capacity = 10

// Version is an immutable named snapshot of the document.
type Version struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Snapshot  style.Document `json:"snapshot"`
	Timestamp time.Time      `json:"timestamp"`
}

// Summary is a Version without its snapshot, for listings.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Latest    bool      `json:"latest"`
}

// History is a newest-first list of at most Capacity versions. Snapshots are
// deep-copied on the way in and on the way out.
type History struct {
	mu   sync.RWMutex
	ring *Ring[Version]
	now  func() time.Time
}

// New creates an empty history. A nil clock uses time.Now.
func New(now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{ring: NewRing[Version](Capacity), now: now}
}

// Save records a copy of doc under name and returns the new version.
func (h *History) Save(name string, doc style.Document) Version {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	v := Version{
		ID:        id.String(),
		Name:      name,
		Snapshot:  deep.MustCopy(doc),
		Timestamp: h.now(),
	}

	h.mu.Lock()
	h.ring.Push(v)
	h.mu.Unlock()

	return copyVersion(v)
}

// List returns every version, most recent first.
func (h *History) List() []Version {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := h.ring.NewestFirst()
	for i := range out {
		out[i] = copyVersion(out[i])
	}
	return out
}

// Summaries returns the listing without snapshots, most recent first.
func (h *History) Summaries() []Summary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	versions := h.ring.NewestFirst()
	out := make([]Summary, len(versions))
	for i, v := range versions {
		out[i] = Summary{ID: v.ID, Name: v.Name, Timestamp: v.Timestamp, Latest: i == 0}
	}
	return out
}

// Get returns the version with id. Unknown ids are KindUnknownVersion.
func (h *History) Get(id string) (Version, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := 0; i < h.ring.Len(); i++ {
		v, _ := h.ring.At(i)
		if v.ID == id {
			return copyVersion(v), nil
		}
	}
	return Version{}, style.Errorf(style.KindUnknownVersion, "get version", "no version %q", id)
}

// Latest returns the most recent version.
func (h *History) Latest() (Version, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v, ok := h.ring.Newest()
	if !ok {
		return Version{}, false
	}
	return copyVersion(v), true
}

// Len returns the number of stored versions.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ring.Len()
}

// copyVersion detaches the snapshot. Timestamp is a value and is copied by
// assignment.
func copyVersion(v Version) Version {
	v.Snapshot = deep.MustCopy(v.Snapshot)
	return v
}
