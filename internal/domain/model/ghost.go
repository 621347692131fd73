// Package model contains domain models passed between layers.
package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Flags packs the boolean vehicle state captured with every frame.
type Flags uint8

// Frame flag bits as stored on disk.
const (
	FlagBraking    Flags = 1 << 0
	FlagBoost      Flags = 1 << 1
	FlagHeadlights Flags = 1 << 2
)

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool { return fl&f == f }

// PackFlags builds a Flags value from the individual booleans.
func PackFlags(braking, boost, headlights bool) Flags {
	var fl Flags
	if braking {
		fl |= FlagBraking
	}
	if boost {
		fl |= FlagBoost
	}
	if headlights {
		fl |= FlagHeadlights
	}
	return fl
}

// GhostFrame is one sampled instant of a run. Frames are immutable once appended.
type GhostFrame struct {
	Timestamp  float32    // seconds since race start
	Position   mgl32.Vec3 // world position
	Rotation   mgl32.Quat // unit quaternion
	SteerAngle float32    // degrees
	Speed      float32
	EngineRPM  float32
	Gear       int32
	Flags      Flags
}

// Braking reports the brake bit.
func (f GhostFrame) Braking() bool { return f.Flags.Has(FlagBraking) }

// Boosting reports the boost bit.
func (f GhostFrame) Boosting() bool { return f.Flags.Has(FlagBoost) }

// Headlights reports the headlight bit.
func (f GhostFrame) Headlights() bool { return f.Flags.Has(FlagHeadlights) }

// GhostRecording is one full run on a route.
// Frames are in insertion order, which is chronological order.
type GhostRecording struct {
	RouteID    string
	CarName    string
	TotalTime  float32 // set at finish
	RecordedAt int64   // unix nanoseconds, opaque to the format
	Frames     []GhostFrame
}

// LastTimestamp returns the timestamp of the final frame, or 0 for an empty recording.
func (r *GhostRecording) LastTimestamp() float32 {
	if r == nil || len(r.Frames) == 0 {
		return 0
	}
	return r.Frames[len(r.Frames)-1].Timestamp
}

// TimeString formats the total time as M:SS.mmm.
func (r *GhostRecording) TimeString() string {
	return FormatTime(r.TotalTime)
}

// SharedGhostMetadata summarizes a shared ghost file without decoding its frames.
type SharedGhostMetadata struct {
	FilePath    string
	PlayerName  string
	RouteID     string
	TotalTime   float32
	FrameCount  int
	Fingerprint uint64
	IsValid     bool
	Reason      string // rejection reason when IsValid is false
}

// TimeString formats the total time as M:SS.mmm.
func (m SharedGhostMetadata) TimeString() string {
	return FormatTime(m.TotalTime)
}

// FormatTime renders seconds as M:SS.mmm.
func FormatTime(seconds float32) string {
	if seconds < 0 {
		return "-" + FormatTime(-seconds)
	}
	minutes := int(seconds / 60)
	rest := seconds - float32(minutes*60)
	return fmt.Sprintf("%d:%06.3f", minutes, rest)
}
