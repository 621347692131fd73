// Package dedupe tracks shared-ghost fingerprints so that copies of the same
// run dropped under different file names are listed once.
package dedupe

import (
	"context"
	"sync"
)

// DefaultMaxSize bounds the number of fingerprints kept in memory.
const DefaultMaxSize = 1024

// Deduper records seen fingerprints.
type Deduper interface {
	// SeenAndRecord reports whether fp was already seen and records it if not.
	SeenAndRecord(ctx context.Context, fp uint64) bool

	// Forget removes fp so that it is reported as new again.
	Forget(ctx context.Context, fp uint64)

	// Reset drops every fingerprint. A shared scan starts from an empty set.
	Reset(ctx context.Context)

	Size() int
}

// inMemoryDeduper keeps fingerprints in a map with an insertion-ordered ring
// for eviction of the oldest entry once maxSize is reached. A maxSize of zero
// or less disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[uint64]struct{}
	order   []uint64
	head    int
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[uint64]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fp uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[fp]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[fp] = struct{}{}
	d.order = append(d.order, fp)
	return false
}

func (d *inMemoryDeduper) Forget(_ context.Context, fp uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[fp]; !ok {
		return
	}
	delete(d.seen, fp)
	for i := d.head; i < len(d.order); i++ {
		if d.order[i] == fp {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

func (d *inMemoryDeduper) Reset(_ context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	clear(d.seen)
	d.order = d.order[:0]
	d.head = 0
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.head < len(d.order) {
		fp := d.order[d.head]
		d.head++
		if _, ok := d.seen[fp]; ok {
			delete(d.seen, fp)
			break
		}
	}
	// Compact once the consumed prefix dominates the slice.
	if d.head > len(d.order)/2 {
		d.order = append(d.order[:0], d.order[d.head:]...)
		d.head = 0
	}
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
