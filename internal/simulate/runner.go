// Package simulate drives the race service without a game engine: a scripted
// car drives straight ahead, the finish trigger fires at a planned race time
// and the HUD text is captured for inspection.
package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	service "github.com/okian/ghostrun/internal/app"
	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/internal/domain/race"
	"github.com/okian/ghostrun/pkg/logger"
)

// idleSlack bounds how long the runner waits past the planned finish.
const idleSlack = 30 * time.Second

// Plan scripts one race.
type Plan struct {
	// RouteID selects the route for a personal race. Ignored when Shared is set.
	RouteID string
	// Shared races a shared ghost instead of the personal best.
	Shared *model.SharedGhostMetadata
	// FinishAt is the race time at which the finish line is crossed.
	FinishAt time.Duration
	// CancelAt cancels the race at this race time when non-zero.
	CancelAt time.Duration
	// LeaveCarAt takes the player out of the car at this race time when non-zero.
	LeaveCarAt time.Duration
	// HideGhost toggles ghost visibility once the race starts.
	HideGhost bool
	// Limit caps simulated time. Zero derives it from FinishAt.
	Limit time.Duration
}

func (p Plan) validate() error {
	if p.Shared == nil && p.RouteID == "" {
		return fmt.Errorf("route or shared ghost required: %w", ErrInvalidPlan)
	}
	if p.FinishAt <= 0 && p.CancelAt <= 0 && p.LeaveCarAt <= 0 && p.Limit <= 0 {
		return fmt.Errorf("no finish, cancel or limit set: %w", ErrInvalidPlan)
	}
	return nil
}

func (p Plan) limit() time.Duration {
	if p.Limit > 0 {
		return p.Limit
	}
	return lo.Max([]time.Duration{p.FinishAt, p.CancelAt, p.LeaveCarAt}) + idleSlack
}

// Report summarizes a simulated run.
type Report struct {
	RouteID      string
	RaceID       string
	States       []race.State
	Countdowns   []string
	Messages     []string
	Result       *race.Result
	Cancellation *race.Cancellation
	Ticks        int
	SimTime      time.Duration
	RaceTime     time.Duration
	Distance     float32
	GhostPoses   int
}

// Outcome returns the finish label, "cancelled", or "none".
func (r *Report) Outcome() string {
	switch {
	case r.Result != nil:
		return r.Result.Outcome.Label()
	case r.Cancellation != nil:
		return "cancelled"
	default:
		return "none"
	}
}

// Banner returns the last non-empty message shown.
func (r *Report) Banner() string {
	msgs := lo.Filter(r.Messages, func(m string, _ int) bool { return m != "" })
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// Harness owns the scripted collaborators handed to the service.
type Harness struct {
	Car    *Car
	Garage *Garage
	Board  *Board
	View   *View

	tickRate int
	log      logger.Logger
}

// NewHarness builds a car, garage, board and view.
func NewHarness(opts ...Option) *Harness {
	h := &Harness{
		Car:      NewCar("", 0),
		tickRate: DefaultTickRate,
		log:      logger.For("simulate"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.Garage = NewGarage(h.Car)
	h.Board = NewBoard(h.log)
	h.View = NewView()
	return h
}

// ServiceOptions wires the harness collaborators into a service.
func (h *Harness) ServiceOptions() []service.Option {
	return []service.Option{
		service.WithVehicles(h.Garage),
		service.WithView(h.View),
		service.WithAnnouncer(h.Board),
	}
}

// TickInterval returns the host frame duration.
func (h *Harness) TickInterval() time.Duration {
	return time.Second / time.Duration(h.tickRate)
}

// Run plays plan against svc, ticking until the race has ended and the
// service is idle again. svc must be started with ServiceOptions.
func (h *Harness) Run(ctx context.Context, svc *service.Service, plan Plan) (*Report, error) {
	if err := plan.validate(); err != nil {
		return nil, err
	}
	h.Board.Reset()
	h.Garage.Unpark()
	prevResult, prevCancel := svc.LastResult(), svc.LastCancellation()

	routeID := plan.RouteID
	var err error
	if plan.Shared != nil {
		routeID = plan.Shared.RouteID
		err = svc.StartSharedRace(ctx, *plan.Shared)
	} else {
		err = svc.StartRace(ctx, plan.RouteID)
	}
	if err != nil {
		return nil, fmt.Errorf("submit start: %w", err)
	}

	h.log.Info(ctx, "simulation started",
		logger.String("route", routeID),
		logger.Bool("shared", plan.Shared != nil),
		logger.Duration("finish_at", plan.FinishAt))

	rep := &Report{RouteID: routeID}
	dt := h.TickInterval()
	limit := plan.limit()
	var (
		began, finished, cancelled, left, toggled bool
		last                                      = race.State(-1)
	)

	for rep.SimTime < limit {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := svc.Tick(ctx, dt); err != nil {
			return rep, fmt.Errorf("tick: %w", err)
		}
		rep.Ticks++
		rep.SimTime += dt

		snap := svc.Snapshot()
		if snap.State != last {
			rep.States = append(rep.States, snap.State)
			last = snap.State
		}
		if snap.State.Active() {
			began = true
			rep.RaceID = snap.RaceID
		}
		if !began {
			return rep, fmt.Errorf("route %q: %w", routeID, ErrRaceNotStarted)
		}
		if snap.State == race.StateIdle {
			break
		}
		if !snap.State.Running() {
			continue
		}

		rep.RaceTime = snap.Elapsed
		if plan.HideGhost && !toggled {
			toggled = true
			_ = svc.ToggleGhostVisibility(ctx)
		}
		if plan.LeaveCarAt > 0 && !left && snap.Elapsed >= plan.LeaveCarAt {
			left = true
			h.Garage.Park()
			continue
		}
		if plan.CancelAt > 0 && !cancelled && snap.Elapsed >= plan.CancelAt {
			cancelled = true
			if err := svc.CancelRace(ctx); err != nil {
				return rep, fmt.Errorf("cancel: %w", err)
			}
			continue
		}
		if plan.FinishAt > 0 && !finished && snap.Elapsed >= plan.FinishAt {
			finished = true
			if err := svc.FinishLineCrossed(ctx); err != nil {
				return rep, fmt.Errorf("finish: %w", err)
			}
			continue
		}
		h.Car.Drive(float32(dt.Seconds()))
	}

	if err := svc.FlushSaves(ctx); err != nil {
		h.log.Warn(ctx, "pending saves not flushed", logger.Error(err))
	}

	if res := svc.LastResult(); res != nil && res != prevResult {
		rep.Result = res
	}
	if c := svc.LastCancellation(); c != nil && c != prevCancel {
		rep.Cancellation = c
	}
	rep.Countdowns = h.Board.Countdowns()
	rep.Messages = h.Board.Messages()
	rep.Distance = h.Car.Odometer()
	_, rep.GhostPoses, _ = h.View.Stats()

	if last != race.StateIdle {
		return rep, fmt.Errorf("after %s: %w", rep.SimTime, ErrRaceUnfinished)
	}
	h.log.Info(ctx, "simulation finished",
		logger.String("race_id", rep.RaceID),
		logger.String("outcome", rep.Outcome()),
		logger.Duration("race_time", rep.RaceTime),
		logger.Int("ticks", rep.Ticks))
	return rep, nil
}
