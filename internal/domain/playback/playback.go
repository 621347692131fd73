// Package playback replays a recorded run against the race clock.
package playback

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/okian/ghostrun/internal/domain/model"
)

// DefaultWheelRadius is the wheel radius used for the spin angle, in world units.
const DefaultWheelRadius = float32(0.35)

// wheelSpinWrap bounds the accumulated wheel angle in degrees.
const wheelSpinWrap = float32(3600)

// Pose is the ghost state to render for one tick.
type Pose struct {
	Position   mgl32.Vec3
	Rotation   mgl32.Quat
	SteerAngle float32
	Speed      float32
	EngineRPM  float32
	Gear       int32
	Braking    bool
	Boost      bool
	Headlights bool
	// WheelSpin is the rolling angle of the driven wheels in degrees.
	WheelSpin float32
	// Frame is the cursor position the pose was built from.
	Frame int
	// Holding is true once playback has reached the final frame.
	Holding bool
}

// Player walks a recording with a cursor that only moves forward.
type Player struct {
	frames      []model.GhostFrame
	cursor      int
	wheelRadius float32
	wheelSpin   float32
}

// New creates a player for rec. A nil or empty recording yields a player whose
// Update always reports false.
func New(rec *model.GhostRecording, opts ...Option) *Player {
	p := &Player{wheelRadius: DefaultWheelRadius}
	if rec != nil {
		p.frames = rec.Frames
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cursor returns the index of the frame at or before the last update time.
func (p *Player) Cursor() int { return p.cursor }

// Len returns the number of frames being played.
func (p *Player) Len() int { return len(p.frames) }

// Update advances to elapsed and returns the interpolated pose. dt is the tick
// duration used to roll the wheels.
func (p *Player) Update(elapsed, dt time.Duration) (Pose, bool) {
	n := len(p.frames)
	if n == 0 {
		return Pose{}, false
	}

	now := float32(elapsed.Seconds())
	for p.cursor < n-1 && p.frames[p.cursor+1].Timestamp <= now {
		p.cursor++
	}

	var pose Pose
	if p.cursor >= n-1 {
		pose = fromFrame(p.frames[n-1])
		pose.Holding = true
	} else {
		a, b := p.frames[p.cursor], p.frames[p.cursor+1]
		pose = Interpolate(a, b, Param(a.Timestamp, b.Timestamp, now))
	}

	p.wheelSpin = SpinWheel(p.wheelSpin, pose.Speed, float32(dt.Seconds()), p.wheelRadius)
	pose.WheelSpin = p.wheelSpin
	pose.Frame = p.cursor
	return pose, true
}

// Param returns the clamped interpolation parameter of now between ta and tb.
func Param(ta, tb, now float32) float32 {
	span := tb - ta
	if span <= 0 {
		if now >= tb {
			return 1
		}
		return 0
	}
	return mgl32.Clamp((now-ta)/span, 0, 1)
}

// Interpolate blends two frames. Continuous values are lerped, rotation is
// slerped, and discrete values come from a when t < 0.5, otherwise from b.
func Interpolate(a, b model.GhostFrame, t float32) Pose {
	near := a
	if t >= 0.5 {
		near = b
	}
	return Pose{
		Position: mgl32.Vec3{
			lerp(a.Position[0], b.Position[0], t),
			lerp(a.Position[1], b.Position[1], t),
			lerp(a.Position[2], b.Position[2], t),
		},
		Rotation:   Slerp(a.Rotation, b.Rotation, t),
		SteerAngle: lerp(a.SteerAngle, b.SteerAngle, t),
		Speed:      lerp(a.Speed, b.Speed, t),
		EngineRPM:  lerp(a.EngineRPM, b.EngineRPM, t),
		Gear:       near.Gear,
		Braking:    near.Braking(),
		Boost:      near.Boosting(),
		Headlights: near.Headlights(),
	}
}

// Slerp interpolates along the shorter arc. The endpoints are returned exactly.
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t)
}

// SpinWheel advances a wheel angle in degrees by the distance covered at speed
// over dt and wraps the result into (-3600, 3600).
func SpinWheel(angle, speed, dt, radius float32) float32 {
	if radius <= 0 {
		return angle
	}
	circumference := 2 * math32.Pi * radius
	angle += speed / circumference * 360 * dt
	return math32.Mod(angle, wheelSpinWrap)
}

func fromFrame(f model.GhostFrame) Pose {
	return Pose{
		Position:   f.Position,
		Rotation:   f.Rotation,
		SteerAngle: f.SteerAngle,
		Speed:      f.Speed,
		EngineRPM:  f.EngineRPM,
		Gear:       f.Gear,
		Braking:    f.Braking(),
		Boost:      f.Boosting(),
		Headlights: f.Headlights(),
	}
}

// lerp is written so that t=0 and t=1 land exactly on a and b.
func lerp(a, b, t float32) float32 {
	return a*(1-t) + b*t
}
