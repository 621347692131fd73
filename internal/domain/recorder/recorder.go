// Package recorder samples live vehicle state into a ghost frame sequence at a
// fixed rate measured on the race clock.
package recorder

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/model"
)

// DefaultSampleRate is the number of samples per second of race time.
const DefaultSampleRate = 60

// BrakeThreshold is the brake input above which a frame is marked as braking.
const BrakeThreshold = 0.1

// Telemetry is the narrow view of a vehicle the recorder reads from.
type Telemetry interface {
	Position() mgl32.Vec3
	Rotation() mgl32.Quat
	SteerAngle() float32
	Speed() float32
	EngineRPM() float32
	Gear() int32
	BrakeInput() float32
	BoostActive() bool
	HeadlightsOn() bool
}

// Recorder appends a frame whenever at least one sample interval of race time
// has passed since the previous frame. At most one frame is taken per call.
type Recorder struct {
	interval time.Duration
	last     time.Duration
	frames   []model.GhostFrame
}

// New creates a recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{interval: time.Second / DefaultSampleRate}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the sample interval.
func (r *Recorder) Interval() time.Duration { return r.interval }

// Sample appends a frame when elapsed is at least one interval past the last
// frame and reports whether it did. The first frame is due one interval after
// race start.
func (r *Recorder) Sample(elapsed time.Duration, t Telemetry) bool {
	if t == nil || elapsed-r.last < r.interval {
		return false
	}
	r.frames = append(r.frames, Capture(elapsed, t))
	r.last = elapsed
	return true
}

// Append adds one frame regardless of the interval. Used to guarantee a finished
// run holds at least one frame.
func (r *Recorder) Append(elapsed time.Duration, t Telemetry) {
	if t == nil {
		return
	}
	r.frames = append(r.frames, Capture(elapsed, t))
}

// Frames returns the recorded frames. The slice must not be modified.
func (r *Recorder) Frames() []model.GhostFrame { return r.frames }

// Len returns the number of recorded frames.
func (r *Recorder) Len() int { return len(r.frames) }

// Reset drops all frames and restarts the interval at zero.
func (r *Recorder) Reset() {
	r.frames = nil
	r.last = 0
}

// Capture builds a frame from the current vehicle state.
func Capture(elapsed time.Duration, t Telemetry) model.GhostFrame {
	return model.GhostFrame{
		Timestamp:  float32(elapsed.Seconds()),
		Position:   t.Position(),
		Rotation:   t.Rotation(),
		SteerAngle: t.SteerAngle(),
		Speed:      t.Speed(),
		EngineRPM:  t.EngineRPM(),
		Gear:       t.Gear(),
		Flags:      model.PackFlags(t.BrakeInput() > BrakeThreshold, t.BoostActive(), t.HeadlightsOn()),
	}
}
