package race

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/model"
	"github.com/okian/ghostrun/internal/domain/playback"
	"github.com/okian/ghostrun/internal/domain/recorder"
)

// Vehicle is the player's car as seen by the race.
type Vehicle interface {
	recorder.Telemetry

	// Name labels the car in saved recordings.
	Name() string
	// PlaceAt moves the car to a start pose.
	PlaceAt(pos mgl32.Vec3, rot mgl32.Quat)
	// Immobilize zeroes velocity, resets speed and gear and freezes motion.
	Immobilize()
	// Release lifts the freeze. It must be safe to call when not frozen.
	Release()
}

// VehicleProvider returns the car the player currently drives, or nil.
type VehicleProvider interface {
	ActiveVehicle() Vehicle
}

// GhostView renders the replayed car.
type GhostView interface {
	Spawn(pos mgl32.Vec3, rot mgl32.Quat) error
	Apply(pose playback.Pose)
	SetVisible(visible bool)
	Despawn()
}

// Announcer shows race text to the player.
type Announcer interface {
	// Countdown shows "5".."1", "GO", or "" to clear.
	Countdown(text string)
	// Message shows an outcome or cancellation banner; "" clears it.
	Message(text string)
}

// GhostStore loads ghosts at race start and removes personal ones on request.
type GhostStore interface {
	PersonalExists(ctx context.Context, routeID string) bool
	LoadPersonal(ctx context.Context, routeID string) (*model.GhostRecording, error)
	LoadShared(ctx context.Context, meta model.SharedGhostMetadata) (*model.GhostRecording, error)
	DeletePersonal(ctx context.Context, routeID string) error
}

// Persister writes a new personal best.
type Persister interface {
	SavePersonal(ctx context.Context, rec *model.GhostRecording) error
}

// Flusher is implemented by persisters that write in the background. Flush
// returns once every accepted save is on disk.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NopView is a GhostView that draws nothing.
type NopView struct{}

// Spawn implements GhostView.
func (NopView) Spawn(mgl32.Vec3, mgl32.Quat) error { return nil }

// Apply implements GhostView.
func (NopView) Apply(playback.Pose) {}

// SetVisible implements GhostView.
func (NopView) SetVisible(bool) {}

// Despawn implements GhostView.
func (NopView) Despawn() {}

// NopAnnouncer is an Announcer that shows nothing.
type NopAnnouncer struct{}

// Countdown implements Announcer.
func (NopAnnouncer) Countdown(string) {}

// Message implements Announcer.
func (NopAnnouncer) Message(string) {}
