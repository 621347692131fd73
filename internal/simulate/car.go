package simulate

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Car tuning.
const (
	DefaultCarName = "AE86 Trueno"
	DefaultSpeed   = 25 // m/s

	idleRPM       = 900
	rpmPerMS      = 160
	maxRPM        = 8500
	metersPerGear = 9
	topGear       = 5
)

var forward = mgl32.Vec3{0, 0, 1}

// Car is a scripted player vehicle. It drives straight along its heading at a
// constant speed while not immobilized.
type Car struct {
	name       string
	pos        mgl32.Vec3
	rot        mgl32.Quat
	cruise     float32
	speed      float32
	steer      float32
	braking    bool
	boosting   bool
	headlights bool
	frozen     bool

	placements int
	odometer   float32
}

// NewCar returns a car parked at the origin.
func NewCar(name string, cruise float32) *Car {
	if name == "" {
		name = DefaultCarName
	}
	if cruise <= 0 {
		cruise = DefaultSpeed
	}
	return &Car{name: name, rot: mgl32.QuatIdent(), cruise: cruise, headlights: true}
}

// Drive advances the car by dt seconds.
func (c *Car) Drive(dt float32) {
	if c.frozen || dt <= 0 {
		c.speed = 0
		return
	}
	c.speed = c.cruise
	step := c.speed * dt
	c.pos = c.pos.Add(c.rot.Rotate(forward).Mul(step))
	c.odometer += step
	c.steer = 5 * math32.Sin(c.odometer/40)
}

// SetBraking toggles the brake light input.
func (c *Car) SetBraking(on bool) { c.braking = on }

// SetBoost toggles boost.
func (c *Car) SetBoost(on bool) { c.boosting = on }

// Odometer returns the distance driven since the last placement.
func (c *Car) Odometer() float32 { return c.odometer }

// Placements counts PlaceAt calls.
func (c *Car) Placements() int { return c.placements }

// Frozen reports whether the car is immobilized.
func (c *Car) Frozen() bool { return c.frozen }

func (c *Car) Name() string         { return c.name }
func (c *Car) Position() mgl32.Vec3 { return c.pos }
func (c *Car) Rotation() mgl32.Quat { return c.rot }
func (c *Car) SteerAngle() float32  { return c.steer }
func (c *Car) Speed() float32       { return c.speed }
func (c *Car) BoostActive() bool    { return c.boosting }
func (c *Car) HeadlightsOn() bool   { return c.headlights }

func (c *Car) EngineRPM() float32 {
	if c.speed == 0 {
		return idleRPM
	}
	return math32.Min(idleRPM+rpmPerMS*math32.Mod(c.speed, metersPerGear*2), maxRPM)
}

func (c *Car) Gear() int32 {
	if c.speed == 0 {
		return 0
	}
	g := int32(c.speed/metersPerGear) + 1
	if g > topGear {
		g = topGear
	}
	return g
}

func (c *Car) BrakeInput() float32 {
	if c.braking {
		return 1
	}
	return 0
}

// PlaceAt moves the car to a start pose.
func (c *Car) PlaceAt(pos mgl32.Vec3, rot mgl32.Quat) {
	c.pos = pos
	c.rot = rot.Normalize()
	c.odometer = 0
	c.placements++
}

// Immobilize stops the car and holds it in place.
func (c *Car) Immobilize() {
	c.frozen = true
	c.speed = 0
	c.steer = 0
}

// Release lets the car drive again.
func (c *Car) Release() { c.frozen = false }
