// Package service composes the ghost race core: storage, the input queue, the
// background saver and the race machine. It is the input surface a UI layer
// calls into and the tick entry point a host game loop drives.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ghostrun/internal/adapters/mq/queue"
	"github.com/okian/ghostrun/internal/adapters/mq/worker"
	"github.com/okian/ghostrun/internal/adapters/repository"
	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/internal/domain/race"
	"github.com/okian/ghostrun/internal/domain/route"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

// Defaults for the service.
const (
	DefaultGhostsDir = "ghosts"
	shutdownTimeout  = 10 * time.Second
)

// Background saves must settle before a personal best is read.
var _ race.Flusher = (*worker.AsyncSaver)(nil)

const (
	saveNone int32 = iota
	saveOK
	saveFailed
)

// Service owns one race machine. Inputs may be submitted from any goroutine;
// Tick and FinishLineCrossed are expected from the host loop.
type Service struct {
	mu sync.RWMutex

	// Configuration
	ghostsDir string
	queueSize int
	asyncSave bool
	catalog   *route.Catalog
	vehicles  race.VehicleProvider
	view      race.GhostView
	announcer race.Announcer
	raceOpts  []race.Option
	storeOpts []repository.Option

	// Core components
	store   *repository.FileStore
	inputs  *queue.InMemoryQueue
	saver   *worker.AsyncSaver
	machine *race.Machine

	// State
	started    bool
	cancelRun  context.CancelFunc
	ticks      uint64
	inputsSeen uint64
	inputErrs  uint64
	lastSave   atomic.Int32 // saveNone, saveOK or saveFailed

	logger logger.Logger
}

// New constructs a Service. Nothing touches disk until Start.
func New(opts ...Option) *Service {
	s := &Service{
		ghostsDir: DefaultGhostsDir,
		queueSize: queue.DefaultCapacity,
		catalog:   route.Default(),
		logger:    logger.For("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the ghost folders and wires the race machine.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting ghost race service", logger.String("ghosts_dir", s.ghostsDir))

	store, err := repository.NewFileStore(s.ghostsDir, s.catalog, s.storeOpts...)
	if err != nil {
		return fmt.Errorf("open ghost store: %w", err)
	}
	s.store = store
	s.inputs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel

	var persister race.Persister = store
	if s.asyncSave {
		s.saver = worker.NewAsyncSaver(store, worker.WithOnComplete(s.onSaved))
		go s.saver.Run(runCtx)
		persister = s.saver
	}

	opts := []race.Option{
		race.WithStore(store),
		race.WithPersister(persister),
		race.WithView(s.view),
		race.WithAnnouncer(s.announcer),
	}
	s.machine = race.New(s.catalog, s.vehicles, append(opts, s.raceOpts...)...)

	s.started = true
	s.logger.Info(ctx, "ghost race service started",
		logger.Int("routes", s.catalog.Len()),
		logger.Int("queue_size", s.queueSize),
		logger.Bool("async_save", s.asyncSave))
	return nil
}

// Stop rejects further inputs and waits for pending saves.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping ghost race service")

	_ = s.inputs.Close()
	var err error
	if s.saver != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		err = s.saver.Shutdown(shutdownCtx)
		cancel()
	}
	s.cancelRun()
	s.started = false
	s.logger.Info(ctx, "ghost race service stopped")
	return err
}

// onSaved runs on the saver goroutine, possibly while Stop holds mu.
func (s *Service) onSaved(c worker.Completion) {
	if c.Err != nil {
		s.lastSave.Store(saveFailed)
		return
	}
	s.lastSave.Store(saveOK)
}

// Tick applies every pending input, then advances the race by dt.
func (s *Service) Tick(ctx context.Context, dt time.Duration) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	for _, in := range s.inputs.Drain(ctx) {
		s.inputsSeen++
		if err := s.machine.Handle(ctx, in); err != nil {
			s.inputErrs++
			s.logger.Warn(ctx, "input rejected",
				logger.String("input", in.Kind.String()),
				logger.String("route", in.RouteID),
				logger.String("kind", model.ErrorKind(err)),
				logger.Error(err))
		}
	}
	s.machine.Tick(ctx, dt)
	s.ticks++

	metrics.RecordTickLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// FinishLineCrossed forwards the finish trigger. It only has an effect while
// a race clock is running.
func (s *Service) FinishLineCrossed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	s.machine.FinishLineCrossed(ctx)
	return nil
}

// Input surface. Each call queues one input for the next tick.

func (s *Service) submit(ctx context.Context, in model.Input) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	return s.inputs.Submit(ctx, in)
}

// OpenMenu queues a menu open.
func (s *Service) OpenMenu(ctx context.Context) error {
	return s.submit(ctx, model.Input{Kind: model.InputOpenMenu})
}

// CloseMenu queues a menu close.
func (s *Service) CloseMenu(ctx context.Context) error {
	return s.submit(ctx, model.Input{Kind: model.InputCloseMenu})
}

// ToggleMenu queues a menu toggle.
func (s *Service) ToggleMenu(ctx context.Context) error {
	return s.submit(ctx, model.Input{Kind: model.InputToggleMenu})
}

// SelectRoute queues a route selection.
func (s *Service) SelectRoute(ctx context.Context, routeID string) error {
	return s.submit(ctx, model.Input{Kind: model.InputSelectRoute, RouteID: routeID})
}

// StartRace queues a race against the personal best. An empty routeID uses
// the selected route.
func (s *Service) StartRace(ctx context.Context, routeID string) error {
	return s.submit(ctx, model.Input{Kind: model.InputStartRace, RouteID: routeID})
}

// StartSharedRace queues a race against a shared ghost.
func (s *Service) StartSharedRace(ctx context.Context, meta model.SharedGhostMetadata) error {
	return s.submit(ctx, model.Input{Kind: model.InputStartSharedRace, RouteID: meta.RouteID, Shared: &meta})
}

// DeletePersonal queues deletion of the personal best for routeID.
func (s *Service) DeletePersonal(ctx context.Context, routeID string) error {
	return s.submit(ctx, model.Input{Kind: model.InputDeletePersonal, RouteID: routeID})
}

// CancelRace queues a cancellation.
func (s *Service) CancelRace(ctx context.Context) error {
	return s.submit(ctx, model.Input{Kind: model.InputCancelRace})
}

// ExternalMenuOpened reports that another menu took focus. A running race is cancelled.
func (s *Service) ExternalMenuOpened(ctx context.Context) error {
	return s.submit(ctx, model.Input{Kind: model.InputExternalMenuOpened})
}

// ToggleGhostVisibility queues a visibility toggle.
func (s *Service) ToggleGhostVisibility(ctx context.Context) error {
	return s.submit(ctx, model.Input{Kind: model.InputToggleGhostVisibility})
}

// Read side.

// Snapshot returns the HUD view of the race machine.
func (s *Service) Snapshot() race.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return race.Snapshot{State: race.StateIdle}
	}
	return s.machine.Snapshot()
}

// LastResult returns the most recent finish, if any.
func (s *Service) LastResult() *race.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.machine == nil {
		return nil
	}
	return s.machine.LastResult()
}

// LastCancellation returns the most recent cancellation, if any.
func (s *Service) LastCancellation() *race.Cancellation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.machine == nil {
		return nil
	}
	return s.machine.LastCancellation()
}

// Routes returns the catalog in menu order.
func (s *Service) Routes() []route.Info {
	return s.catalog.All()
}

// Catalog returns the route catalog.
func (s *Service) Catalog() *route.Catalog {
	return s.catalog
}

// Store returns the ghost store, or nil before Start.
func (s *Service) Store() *repository.FileStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// HasPersonalBest reports whether routeID has a stored best.
func (s *Service) HasPersonalBest(ctx context.Context, routeID string) bool {
	store := s.Store()
	return store != nil && store.PersonalExists(ctx, routeID)
}

// PersonalBest loads the stored best for routeID.
func (s *Service) PersonalBest(ctx context.Context, routeID string) (*model.GhostRecording, error) {
	store := s.Store()
	if store == nil {
		return nil, ErrNotStarted
	}
	if !s.catalog.Has(routeID) {
		return nil, fmt.Errorf("%q: %w", routeID, model.ErrRouteNotFound)
	}
	return store.LoadPersonal(ctx, routeID)
}

// SharedGhosts rescans the shared folder.
func (s *Service) SharedGhosts(ctx context.Context) ([]model.SharedGhostMetadata, error) {
	store := s.Store()
	if store == nil {
		return nil, ErrNotStarted
	}
	return store.ScanShared(ctx)
}

// FlushSaves waits for background saves. It returns at once when saves are synchronous.
func (s *Service) FlushSaves(ctx context.Context) error {
	s.mu.RLock()
	saver := s.saver
	s.mu.RUnlock()

	if saver == nil {
		return nil
	}
	return saver.Flush(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":    s.started,
		"ghosts_dir": s.ghostsDir,
		"routes":     s.catalog.Len(),
		"async_save": s.asyncSave,
	}
	if !s.started {
		return stats
	}

	snap := s.machine.Snapshot()
	stats["state"] = snap.State.String()
	stats["selected_route"] = snap.SelectedRoute
	stats["ghost_visible"] = snap.GhostVisible
	stats["ticks"] = s.ticks
	stats["inputs_handled"] = s.inputsSeen
	stats["inputs_rejected"] = s.inputErrs
	stats["queue_length"] = s.inputs.Len(context.Background())
	if snap.RaceID != "" {
		stats["race"] = map[string]any{
			"id":          snap.RaceID,
			"route":       snap.RouteID,
			"elapsed":     snap.Elapsed.Seconds(),
			"first_run":   snap.IsFirstRun,
			"shared":      snap.IsShared,
			"opponent":    snap.Opponent,
			"frames":      snap.Frames,
			"delta":       snap.Delta,
			"has_delta":   snap.HasDelta,
			"countdown":   snap.Countdown,
			"progress_at": snap.ProgressFrame,
		}
	}
	if snap.Message != "" {
		stats["message"] = snap.Message
	}
	if snap.LastOutcome != "" {
		stats["last_outcome"] = snap.LastOutcome
	}
	if last := s.lastSave.Load(); last != saveNone {
		stats["last_save_ok"] = last == saveOK
	}
	return stats
}
