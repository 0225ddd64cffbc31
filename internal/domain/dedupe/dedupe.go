// Package dedupe defines the interface for session idempotency tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen session IDs so a re-submitted scoring run is
// appended to the history log at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing a retry. Used
	// when a session was marked seen but failed to be processed (e.g.
	// render queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemorySeen implements Deduper with a bounded FIFO of session IDs.
// For maxSize <= 0 the seen set is unbounded.
type inMemorySeen struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order, oldest first; nil in unbounded mode
	maxSize int
	size    atomic.Int64
}

// defaultMaxSize bounds the seen set when no option overrides it.
const defaultMaxSize = 50000

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemorySeen{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks and records id. The oldest recorded ID
// is evicted once the bound is exceeded.
func (d *inMemorySeen) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	d.seen[id] = struct{}{}
	if d.maxSize > 0 {
		d.order = append(d.order, id)
		for len(d.order) > d.maxSize {
			oldest := d.order[0]
			d.order = d.order[1:]
			delete(d.seen, oldest)
		}
	}
	d.size.Store(int64(len(d.seen)))
	return false
}

// Unrecord removes id from the seen set.
func (d *inMemorySeen) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	d.size.Store(int64(len(d.seen)))
}

// Size returns the current number of recorded IDs.
func (d *inMemorySeen) Size() int64 {
	return d.size.Load()
}
