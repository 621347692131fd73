// Package queue carries UI inputs to the race core. Producers enqueue from any
// goroutine without blocking; the tick loop drains everything pending once per
// tick, so inputs take effect on the next evaluation.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/pkg/metrics"
)

// DefaultCapacity is the number of inputs held between two ticks.
const DefaultCapacity = 256

// Event is the payload type flowing through the queue.
type Event = model.Input

// Queue provides non-blocking enqueue and per-tick draining.
type Queue interface {
	// Enqueue adds an input. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, e Event) bool

	// Submit is Enqueue with the failure reason.
	Submit(ctx context.Context, e Event) error

	// Drain removes and returns every pending input in arrival order.
	Drain(ctx context.Context) []Event

	// Len returns the number of pending inputs.
	Len(ctx context.Context) int

	// Close rejects further inputs. Pending inputs can still be drained.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateInputQueueCapacity(q.capacity)
	metrics.UpdateInputQueueSize(0)
	return q
}

// Enqueue adds an input to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	return q.Submit(ctx, e) == nil
}

// Submit adds an input to the queue or reports why it could not.
func (q *InMemoryQueue) Submit(ctx context.Context, e Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordInputDropped()
		return fmt.Errorf("%s: %w", e.Kind, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordInputDropped()
		return err
	}

	select {
	case q.events <- e:
		metrics.UpdateInputQueueSize(len(q.events))
		return nil
	default:
		metrics.RecordInputDropped()
		return fmt.Errorf("%s: %w", e.Kind, ErrFull)
	}
}

// Drain returns every input pending at the time of the call.
func (q *InMemoryQueue) Drain(ctx context.Context) []Event {
	n := len(q.events)
	if n == 0 {
		return nil
	}
	out := make([]Event, 0, n)
	for len(out) < n {
		if ctx.Err() != nil {
			break
		}
		select {
		case e, ok := <-q.events:
			if !ok {
				n = len(out)
				continue
			}
			out = append(out, e)
		default:
			n = len(out)
		}
	}
	metrics.UpdateInputQueueSize(len(q.events))
	return out
}

// Len returns the current number of queued inputs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.events)
	metrics.UpdateInputQueueSize(size)
	return size
}

// Close stops accepting inputs.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
