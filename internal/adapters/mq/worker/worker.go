package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

// DefaultBacklog is the number of saves that may be queued.
const DefaultBacklog = 8

// Saver writes a personal best synchronously.
type Saver interface {
	SavePersonal(ctx context.Context, rec *model.GhostRecording) error
}

// Completion reports the result of one background save.
type Completion struct {
	RouteID  string
	Err      error
	Duration time.Duration
}

// AsyncSaver accepts saves from the tick loop and performs them on a single
// goroutine in submission order. It satisfies the same contract as Saver, but
// a nil error only means the save was accepted.
type AsyncSaver struct {
	store      Saver
	name       string
	backlog    int
	onComplete func(Completion)
	logger     logger.Logger

	jobs chan *model.GhostRecording

	mu      sync.RWMutex
	stopped bool
	pending sync.WaitGroup
	done    chan struct{}
}

// NewAsyncSaver creates a saver writing to store. Run must be started.
func NewAsyncSaver(store Saver, opts ...Option) *AsyncSaver {
	w := &AsyncSaver{
		store:   store,
		name:    "saver",
		backlog: DefaultBacklog,
		logger:  logger.For("worker"),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	w.jobs = make(chan *model.GhostRecording, w.backlog)
	return w
}

// SavePersonal queues rec. It never blocks the caller.
func (w *AsyncSaver) SavePersonal(ctx context.Context, rec *model.GhostRecording) error {
	if rec == nil {
		return fmt.Errorf("queue save: nil recording")
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return fmt.Errorf("queue save %s: %w", rec.RouteID, ErrStopped)
	}

	w.pending.Add(1)
	select {
	case w.jobs <- rec:
		metrics.UpdatePendingSaves(len(w.jobs))
		w.logger.Debug(ctx, "save queued", logger.String("route", rec.RouteID))
		return nil
	default:
		w.pending.Done()
		metrics.RecordGhostSaveError()
		w.logger.Warn(ctx, "save backlog full, dropping save", logger.String("route", rec.RouteID))
		return fmt.Errorf("queue save %s: %w", rec.RouteID, ErrBusy)
	}
}

// Run processes saves until Shutdown is called. Saves still queued at
// shutdown are written before Run returns.
func (w *AsyncSaver) Run(ctx context.Context) {
	defer close(w.done)
	for rec := range w.jobs {
		w.process(ctx, rec)
	}
}

func (w *AsyncSaver) process(ctx context.Context, rec *model.GhostRecording) {
	defer w.pending.Done()

	start := time.Now()
	// A save that was accepted must not be lost to a cancelled run context.
	err := w.store.SavePersonal(context.WithoutCancel(ctx), rec)
	c := Completion{RouteID: rec.RouteID, Err: err, Duration: time.Since(start)}
	metrics.UpdatePendingSaves(len(w.jobs))

	if err != nil {
		w.logger.Error(ctx, "background save failed",
			logger.String("route", rec.RouteID), logger.Error(err))
	} else {
		w.logger.Debug(ctx, "background save done",
			logger.String("route", rec.RouteID), logger.Duration("took", c.Duration))
	}
	if w.onComplete != nil {
		w.onComplete(c)
	}
}

// Flush waits until every accepted save has been written.
func (w *AsyncSaver) Flush(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}

// Shutdown stops accepting saves and waits for queued ones to be written.
func (w *AsyncSaver) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.jobs)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
