// Package race drives the ghost race lifecycle: countdown, recording, playback,
// finish judgement and cancellation. A Machine has a single mutator and is
// advanced once per host tick; it does no locking of its own.
package race

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/internal/domain/playback"
	"github.com/okian/ghostrun/internal/domain/progress"
	"github.com/okian/ghostrun/internal/domain/recorder"
	"github.com/okian/ghostrun/internal/domain/route"
	"github.com/okian/ghostrun/internal/domain/scoring"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

// RaceContext is everything owned by one race. It is created at race start and
// dropped at every exit.
type RaceContext struct {
	ID    string
	Route route.Info

	// PersonalBest is the stored best for the route, if any.
	PersonalBest *model.GhostRecording
	// Opponent is the shared ghost being challenged, if any.
	Opponent     *model.GhostRecording
	OpponentMeta *model.SharedGhostMetadata

	IsFirstRun               bool
	IsChallengingSharedGhost bool

	// Recording is the attempt being built.
	Recording *model.GhostRecording

	vehicle      Vehicle
	recorder     *recorder.Recorder
	player       *playback.Player
	tracker      *progress.Tracker
	countdown    *countdown
	elapsed      time.Duration
	goShown      bool
	ghostSpawned bool
}

// target is the ghost replayed in this race.
func (rc *RaceContext) target() *model.GhostRecording {
	if rc.IsChallengingSharedGhost {
		return rc.Opponent
	}
	return rc.PersonalBest
}

func (rc *RaceContext) mode() scoring.Mode {
	switch {
	case rc.IsChallengingSharedGhost:
		return scoring.ModeShared
	case rc.IsFirstRun:
		return scoring.ModeFirstRun
	default:
		return scoring.ModePersonal
	}
}

// Result describes a finished race.
type Result struct {
	RaceID    string
	RouteID   string
	Outcome   scoring.Outcome
	Recording *model.GhostRecording
	SaveErr   error
}

// Cancellation describes a cancelled race.
type Cancellation struct {
	RaceID  string
	RouteID string
	Reason  error
	Elapsed time.Duration
}

// Machine is the race state machine.
type Machine struct {
	catalog   *route.Catalog
	vehicles  VehicleProvider
	store     GhostStore
	persister Persister
	view      GhostView
	announcer Announcer
	log       logger.Logger
	now       func() time.Time

	sampleRate        int
	maxRaceTime       time.Duration
	countdownSteps    int
	countdownStep     time.Duration
	finishDisplay     time.Duration
	cancelCooldown    time.Duration
	progressWindow    int
	progressThreshold float32
	wheelRadius       float32

	onFinish func(Result)
	onCancel func(Cancellation)

	state         State
	rc            *RaceContext
	cooldown      time.Duration
	cooldownFor   time.Duration
	ghostVisible  bool
	selectedRoute string
	countdownText string
	message       string
	lastResult    *Result
	lastCancel    *Cancellation
}

// New creates a machine in the Idle state.
func New(catalog *route.Catalog, vehicles VehicleProvider, opts ...Option) *Machine {
	m := &Machine{
		catalog:           catalog,
		vehicles:          vehicles,
		view:              NopView{},
		announcer:         NopAnnouncer{},
		log:               logger.For("race"),
		now:               time.Now,
		sampleRate:        recorder.DefaultSampleRate,
		maxRaceTime:       DefaultMaxRaceTime,
		countdownSteps:    DefaultCountdownSteps,
		countdownStep:     DefaultCountdownStep,
		finishDisplay:     DefaultFinishDisplay,
		cancelCooldown:    DefaultCancelCooldown,
		progressWindow:    progress.DefaultWindow,
		progressThreshold: progress.DefaultThreshold,
		wheelRadius:       playback.DefaultWheelRadius,
		ghostVisible:      true,
		state:             StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Context returns the live race context, or nil outside a race.
func (m *Machine) Context() *RaceContext { return m.rc }

// LastResult returns the most recent finish, if any.
func (m *Machine) LastResult() *Result { return m.lastResult }

// LastCancellation returns the most recent cancellation, if any.
func (m *Machine) LastCancellation() *Cancellation { return m.lastCancel }

func (m *Machine) setState(ctx context.Context, next State) {
	if next == m.state {
		return
	}
	prev := m.state
	m.state = next
	metrics.RecordStateTransition(prev.String(), next.String())
	m.log.Debug(ctx, "state transition",
		logger.String("from", prev.String()),
		logger.String("to", next.String()))
}

// Menu.

// OpenMenu moves Idle to MenuOpen.
func (m *Machine) OpenMenu(ctx context.Context) {
	if m.state == StateIdle {
		m.setState(ctx, StateMenuOpen)
	}
}

// CloseMenu moves MenuOpen to Idle.
func (m *Machine) CloseMenu(ctx context.Context) {
	if m.state == StateMenuOpen {
		m.setState(ctx, StateIdle)
	}
}

// ToggleMenu opens or closes the menu when no race is underway.
func (m *Machine) ToggleMenu(ctx context.Context) {
	switch m.state {
	case StateIdle:
		m.OpenMenu(ctx)
	case StateMenuOpen:
		m.CloseMenu(ctx)
	}
}

// SelectRoute remembers the route picked in the menu.
func (m *Machine) SelectRoute(ctx context.Context, routeID string) error {
	if !m.catalog.Has(routeID) {
		m.log.Warn(ctx, "select unknown route", logger.String("route", routeID))
		return fmt.Errorf("select %q: %w", routeID, model.ErrRouteNotFound)
	}
	m.selectedRoute = routeID
	return nil
}

// SelectedRoute returns the route picked in the menu.
func (m *Machine) SelectedRoute() string { return m.selectedRoute }

// ToggleGhostVisibility flips whether the ghost is drawn. The choice carries
// over to later races.
func (m *Machine) ToggleGhostVisibility(ctx context.Context) bool {
	m.ghostVisible = !m.ghostVisible
	if m.rc != nil && m.rc.ghostSpawned {
		m.view.SetVisible(m.ghostVisible)
	}
	m.log.Debug(ctx, "ghost visibility", logger.Bool("visible", m.ghostVisible))
	return m.ghostVisible
}

// DeletePersonalGhost removes the stored best for routeID, or the selected
// route when routeID is empty. It is refused while a race is underway.
func (m *Machine) DeletePersonalGhost(ctx context.Context, routeID string) error {
	if routeID == "" {
		routeID = m.selectedRoute
	}
	if !m.state.Selectable() {
		return fmt.Errorf("delete %q in %s: %w", routeID, m.state, ErrRaceInProgress)
	}
	if !m.catalog.Has(routeID) {
		return fmt.Errorf("delete %q: %w", routeID, model.ErrRouteNotFound)
	}
	if m.store == nil {
		return fmt.Errorf("delete %q: %w", routeID, ErrMissingStore)
	}
	m.settleSaves(ctx, routeID)
	if !m.store.PersonalExists(ctx, routeID) {
		return fmt.Errorf("delete %q: %w", routeID, ErrNothingToDelete)
	}
	if err := m.store.DeletePersonal(ctx, routeID); err != nil {
		m.log.Error(ctx, "failed to delete personal ghost", logger.String("route", routeID), logger.Error(err))
		return err
	}
	m.log.Info(ctx, "personal ghost deleted", logger.String("route", routeID))
	return nil
}

// Race start.

// StartRace races the personal best on routeID, or records a first run when
// none exists. An empty routeID uses the selected route. On error the state is
// left unchanged.
func (m *Machine) StartRace(ctx context.Context, routeID string) error {
	if routeID == "" {
		routeID = m.selectedRoute
	}
	info, vehicle, err := m.prepare(ctx, routeID)
	if err != nil {
		return err
	}

	rc := m.newContext(info, vehicle)
	rc.IsFirstRun = true
	m.settleSaves(ctx, routeID)
	if m.store != nil && m.store.PersonalExists(ctx, routeID) {
		pb, err := m.store.LoadPersonal(ctx, routeID)
		if err != nil {
			m.log.Warn(ctx, "personal ghost unreadable, recording a new baseline",
				logger.String("route", routeID),
				logger.String("kind", model.ErrorKind(err)),
				logger.Error(err))
		} else if pb != nil {
			rc.PersonalBest = pb
			rc.IsFirstRun = false
		}
	}

	m.beginCountdown(ctx, rc)
	return nil
}

// StartSharedRace races a ghost shared by another player on its route. The
// personal best is loaded for comparison only. On error the state is left
// unchanged.
func (m *Machine) StartSharedRace(ctx context.Context, meta model.SharedGhostMetadata) error {
	if !meta.IsValid {
		m.log.Warn(ctx, "shared ghost not valid", logger.String("path", meta.FilePath))
		return fmt.Errorf("start shared race: %w", ErrInvalidShared)
	}
	info, vehicle, err := m.prepare(ctx, meta.RouteID)
	if err != nil {
		return err
	}
	if m.store == nil {
		return fmt.Errorf("start shared race: %w", ErrMissingStore)
	}

	opponent, err := m.store.LoadShared(ctx, meta)
	if err != nil {
		m.log.Warn(ctx, "shared ghost rejected",
			logger.String("path", meta.FilePath),
			logger.String("kind", model.ErrorKind(err)),
			logger.Error(err))
		return fmt.Errorf("start shared race: %w", err)
	}

	rc := m.newContext(info, vehicle)
	rc.Opponent = opponent
	rc.OpponentMeta = &meta
	rc.IsChallengingSharedGhost = true
	m.settleSaves(ctx, info.ID)
	if m.store.PersonalExists(ctx, info.ID) {
		pb, err := m.store.LoadPersonal(ctx, info.ID)
		if err != nil {
			m.log.Warn(ctx, "personal ghost unreadable, comparing against no best",
				logger.String("route", info.ID), logger.Error(err))
		}
		rc.PersonalBest = pb
	}

	m.log.Info(ctx, "racing shared ghost",
		logger.String("race_id", rc.ID),
		logger.String("player", meta.PlayerName),
		logger.String("time", meta.TimeString()))
	m.beginCountdown(ctx, rc)
	return nil
}

// settleSaves waits for background saves so the stored personal best reflects
// the last finish. A timeout is logged and the stored file is used as is.
func (m *Machine) settleSaves(ctx context.Context, routeID string) {
	f, ok := m.persister.(Flusher)
	if !ok {
		return
	}
	fctx, cancel := context.WithTimeout(ctx, saveFlushTimeout)
	defer cancel()
	if err := f.Flush(fctx); err != nil {
		m.log.Warn(ctx, "pending saves not written, personal best may be stale",
			logger.String("route", routeID), logger.Error(err))
	}
}

func (m *Machine) prepare(ctx context.Context, routeID string) (route.Info, Vehicle, error) {
	if !m.state.Selectable() {
		return route.Info{}, nil, fmt.Errorf("start %q in %s: %w", routeID, m.state, ErrRaceInProgress)
	}
	info, ok := m.catalog.Lookup(routeID)
	if !ok {
		m.log.Error(ctx, "route not found", logger.String("route", routeID))
		return route.Info{}, nil, fmt.Errorf("start %q: %w", routeID, model.ErrRouteNotFound)
	}
	var vehicle Vehicle
	if m.vehicles != nil {
		vehicle = m.vehicles.ActiveVehicle()
	}
	if vehicle == nil {
		m.log.Error(ctx, "no active player vehicle", logger.String("route", routeID))
		return route.Info{}, nil, fmt.Errorf("start %q: %w", routeID, model.ErrNoActiveVehicle)
	}
	return info, vehicle, nil
}

func (m *Machine) newContext(info route.Info, vehicle Vehicle) *RaceContext {
	return &RaceContext{
		ID:      uuid.NewString(),
		Route:   info,
		vehicle: vehicle,
		Recording: &model.GhostRecording{
			RouteID:    info.ID,
			CarName:    vehicle.Name(),
			RecordedAt: m.now().UnixNano(),
		},
		recorder:  recorder.New(recorder.WithSampleRate(m.sampleRate)),
		countdown: newCountdown(m.countdownSteps, m.countdownStep),
	}
}

func (m *Machine) beginCountdown(ctx context.Context, rc *RaceContext) {
	m.rc = rc
	m.message = ""
	m.announcer.Message("")

	rc.vehicle.Immobilize()
	rc.vehicle.PlaceAt(rc.Route.StartPose(rc.IsFirstRun))

	if target := rc.target(); target != nil {
		rc.player = playback.New(target, playback.WithWheelRadius(m.wheelRadius))
		rc.tracker = progress.New(target,
			progress.WithWindow(m.progressWindow),
			progress.WithThreshold(m.progressThreshold))

		pos, rot := rc.Route.GhostPose()
		if err := m.view.Spawn(pos, rot); err != nil {
			m.log.Warn(ctx, "ghost failed to spawn, racing the clock only",
				logger.String("race_id", rc.ID), logger.Error(err))
		} else {
			rc.ghostSpawned = true
			m.view.SetVisible(m.ghostVisible)
		}
	}

	m.setState(ctx, StateCountdown)
	m.showCountdown(rc.countdown.label())
	metrics.RecordRaceStarted(rc.mode().String())
	m.log.Info(ctx, "race countdown",
		logger.String("race_id", rc.ID),
		logger.String("route", rc.Route.ID),
		logger.String("mode", rc.mode().String()),
		logger.Bool("first_run", rc.IsFirstRun))
}

func (m *Machine) showCountdown(text string) {
	m.countdownText = text
	m.announcer.Countdown(text)
}

// Tick advances the machine by dt.
func (m *Machine) Tick(ctx context.Context, dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	switch m.state {
	case StateCountdown:
		m.tickCountdown(ctx, dt)
	case StateRecording, StateRacing:
		m.tickRace(ctx, dt)
	case StateFinished, StateCancelled:
		m.cooldown += dt
		if m.cooldown >= m.cooldownFor {
			m.message = ""
			m.announcer.Message("")
			m.setState(ctx, StateIdle)
		}
	}
}

func (m *Machine) vehicleLost() bool {
	return m.vehicles == nil || m.vehicles.ActiveVehicle() == nil
}

func (m *Machine) tickCountdown(ctx context.Context, dt time.Duration) {
	rc := m.rc
	stepped, done := rc.countdown.advance(dt)
	if !stepped {
		return
	}
	if m.vehicleLost() {
		m.cancel(ctx, fmt.Errorf("player car lost during countdown: %w", model.ErrVehicleLost))
		return
	}
	m.showCountdown(rc.countdown.label())
	if !done {
		return
	}

	rc.vehicle.Release()
	rc.elapsed = 0
	rc.goShown = true
	if rc.IsFirstRun {
		m.setState(ctx, StateRecording)
	} else {
		m.setState(ctx, StateRacing)
	}
	m.log.Info(ctx, "race started",
		logger.String("race_id", rc.ID),
		logger.String("state", m.state.String()))
}

func (m *Machine) tickRace(ctx context.Context, dt time.Duration) {
	rc := m.rc
	rc.elapsed += dt

	if m.vehicleLost() {
		m.cancel(ctx, fmt.Errorf("player car lost: %w", model.ErrVehicleLost))
		return
	}

	if rc.goShown && rc.elapsed >= m.countdownStep {
		rc.goShown = false
		m.showCountdown("")
	}

	rc.recorder.Sample(rc.elapsed, rc.vehicle)

	if m.state == StateRacing && rc.player != nil {
		if pose, ok := rc.player.Update(rc.elapsed, dt); ok && rc.ghostSpawned {
			m.view.Apply(pose)
		}
		rc.tracker.Update(rc.vehicle.Position())
	}

	if rc.elapsed >= m.maxRaceTime {
		m.cancel(ctx, fmt.Errorf("time limit exceeded after %s: %w", rc.elapsed, model.ErrTimeout))
	}
}

// FinishLineCrossed judges the run. It has no effect outside Recording and Racing.
func (m *Machine) FinishLineCrossed(ctx context.Context) {
	if !m.state.Running() {
		return
	}
	rc := m.rc
	finish := float32(rc.elapsed.Seconds())

	if rc.recorder.Len() == 0 {
		rc.recorder.Append(rc.elapsed, rc.vehicle)
	}
	rec := rc.Recording
	rec.Frames = rc.recorder.Frames()
	rec.TotalTime = finish

	outcome := scoring.Judge(finish, rc.PersonalBest, rc.Opponent)
	res := Result{
		RaceID:    rc.ID,
		RouteID:   rc.Route.ID,
		Outcome:   outcome,
		Recording: rec,
	}
	if outcome.ShouldPersist() {
		res.SaveErr = m.persist(ctx, rec)
	}

	m.cleanup()
	m.lastResult = &res
	m.enterCooldown(ctx, StateFinished, m.finishDisplay, outcome.Message())

	metrics.RecordRaceFinished(outcome.Label(), float64(finish))
	metrics.RecordFramesRecorded(len(rec.Frames))
	m.log.Info(ctx, "race finished",
		logger.String("race_id", res.RaceID),
		logger.String("route", res.RouteID),
		logger.String("time", model.FormatTime(finish)),
		logger.String("outcome", outcome.Label()),
		logger.Bool("new_best", outcome.NewPersonalBest),
		logger.Bool("beat_opponent", outcome.BeatOpponent),
		logger.Int("frames", len(rec.Frames)))

	if m.onFinish != nil {
		m.onFinish(res)
	}
}

func (m *Machine) persist(ctx context.Context, rec *model.GhostRecording) error {
	if m.persister == nil {
		return nil
	}
	if err := m.persister.SavePersonal(ctx, rec); err != nil {
		m.log.Error(ctx, "failed to save personal ghost",
			logger.String("route", rec.RouteID), logger.Error(err))
		return err
	}
	return nil
}

// Cancel ends an active race with reason. It returns false when no race is active.
func (m *Machine) Cancel(ctx context.Context, reason error) bool {
	if !m.state.Active() {
		return false
	}
	if reason == nil {
		reason = model.ErrUserCancelled
	}
	m.cancel(ctx, reason)
	return true
}

func (m *Machine) cancel(ctx context.Context, reason error) {
	rc := m.rc
	c := Cancellation{RaceID: rc.ID, RouteID: rc.Route.ID, Reason: reason, Elapsed: rc.elapsed}

	m.cleanup()
	m.showCountdown("")
	m.lastCancel = &c
	m.enterCooldown(ctx, StateCancelled, m.cancelCooldown, scoring.CancelMessage)

	kind := model.ErrorKind(reason)
	metrics.RecordRaceCancelled(kind)
	m.log.Info(ctx, "race cancelled",
		logger.String("race_id", c.RaceID),
		logger.String("route", c.RouteID),
		logger.String("reason", kind),
		logger.Duration("elapsed", c.Elapsed),
		logger.Error(reason))

	if m.onCancel != nil {
		m.onCancel(c)
	}
}

// cleanup releases everything the race owned. The vehicle is released only if
// it is still present.
func (m *Machine) cleanup() {
	rc := m.rc
	if rc == nil {
		return
	}
	if rc.ghostSpawned {
		m.view.Despawn()
	}
	if !m.vehicleLost() {
		rc.vehicle.Release()
	}
	rc.PersonalBest = nil
	rc.Opponent = nil
	rc.player = nil
	rc.tracker = nil
	m.rc = nil
}

func (m *Machine) enterCooldown(ctx context.Context, s State, d time.Duration, msg string) {
	m.cooldown = 0
	m.cooldownFor = d
	m.message = msg
	m.announcer.Message(msg)
	m.setState(ctx, s)
}

// Handle applies one input from the UI layer.
func (m *Machine) Handle(ctx context.Context, in model.Input) error {
	switch in.Kind {
	case model.InputOpenMenu:
		m.OpenMenu(ctx)
	case model.InputCloseMenu:
		m.CloseMenu(ctx)
	case model.InputToggleMenu:
		m.ToggleMenu(ctx)
	case model.InputSelectRoute:
		return m.SelectRoute(ctx, in.RouteID)
	case model.InputStartRace:
		return m.StartRace(ctx, in.RouteID)
	case model.InputStartSharedRace:
		if in.Shared == nil {
			return fmt.Errorf("start shared race: %w", ErrInvalidShared)
		}
		return m.StartSharedRace(ctx, *in.Shared)
	case model.InputCancelRace:
		m.Cancel(ctx, fmt.Errorf("cancelled by player: %w", model.ErrUserCancelled))
	case model.InputExternalMenuOpened:
		m.Cancel(ctx, fmt.Errorf("menu opened: %w", model.ErrUserCancelled))
	case model.InputToggleGhostVisibility:
		m.ToggleGhostVisibility(ctx)
	case model.InputDeletePersonal:
		return m.DeletePersonalGhost(ctx, in.RouteID)
	default:
		return fmt.Errorf("input %d: %w", in.Kind, ErrUnknownInput)
	}
	return nil
}

// Snapshot is a read-only view for HUDs and status endpoints.
type Snapshot struct {
	State         State
	RaceID        string
	RouteID       string
	SelectedRoute string
	Elapsed       time.Duration
	Delta         float32
	HasDelta      bool
	IsFirstRun    bool
	IsShared      bool
	Opponent      string
	GhostVisible  bool
	Countdown     string
	Message       string
	Frames        int
	PlaybackFrame int
	ProgressFrame int
	LastOutcome   string
}

// Snapshot returns the current view.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		State:         m.state,
		SelectedRoute: m.selectedRoute,
		GhostVisible:  m.ghostVisible,
		Countdown:     m.countdownText,
		Message:       m.message,
	}
	if m.lastResult != nil {
		s.LastOutcome = m.lastResult.Outcome.Label()
	}
	rc := m.rc
	if rc == nil {
		return s
	}
	s.RaceID = rc.ID
	s.RouteID = rc.Route.ID
	s.Elapsed = rc.elapsed
	s.IsFirstRun = rc.IsFirstRun
	s.IsShared = rc.IsChallengingSharedGhost
	if rc.OpponentMeta != nil {
		s.Opponent = rc.OpponentMeta.PlayerName
	}
	s.Frames = rc.recorder.Len()
	if rc.player != nil {
		s.PlaybackFrame = rc.player.Cursor()
	}
	if rc.tracker != nil && m.state == StateRacing {
		s.ProgressFrame = rc.tracker.Index()
		s.Delta, s.HasDelta = rc.tracker.Delta(rc.elapsed)
	}
	return s
}

// IsCancellation reports whether err is one of the reasons that end a race early.
func IsCancellation(err error) bool {
	return errors.Is(err, model.ErrUserCancelled) ||
		errors.Is(err, model.ErrTimeout) ||
		errors.Is(err, model.ErrVehicleLost)
}
