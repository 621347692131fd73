package recorder

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ghostrun/internal/domain/model"
)

type fakeCar struct {
	pos   mgl32.Vec3
	brake float32
	boost bool
	lamps bool
	gear  int32
}

func (c *fakeCar) Position() mgl32.Vec3 { return c.pos }
func (c *fakeCar) Rotation() mgl32.Quat { return mgl32.QuatIdent() }
func (c *fakeCar) SteerAngle() float32  { return 12 }
func (c *fakeCar) Speed() float32       { return 88 }
func (c *fakeCar) EngineRPM() float32   { return 7200 }
func (c *fakeCar) Gear() int32          { return c.gear }
func (c *fakeCar) BrakeInput() float32  { return c.brake }
func (c *fakeCar) BoostActive() bool    { return c.boost }
func (c *fakeCar) HeadlightsOn() bool   { return c.lamps }

// run drives a recorder for the given race duration at a fixed tick rate.
func run(r *Recorder, car Telemetry, tick, duration time.Duration) {
	for elapsed := tick; elapsed <= duration; elapsed += tick {
		r.Sample(elapsed, car)
	}
}

func TestRecorder(t *testing.T) {
	Convey("Given a 60 Hz recorder", t, func() {
		r := New()
		car := &fakeCar{pos: mgl32.Vec3{1, 2, 3}, gear: 3}

		So(r.Interval(), ShouldEqual, time.Second/60)

		Convey("Nothing is sampled before the first interval", func() {
			So(r.Sample(10*time.Millisecond, car), ShouldBeFalse)
			So(r.Len(), ShouldEqual, 0)
		})

		Convey("Consecutive samples are never closer than one interval", func() {
			for _, tick := range []time.Duration{
				time.Second / 30,
				time.Second / 50,
				time.Second / 60,
				time.Second / 144,
				time.Second / 240,
				7 * time.Millisecond,
			} {
				r.Reset()
				run(r, car, tick, 10*time.Second)
				frames := r.Frames()
				So(len(frames), ShouldBeLessThanOrEqualTo, 600)
				So(len(frames), ShouldBeGreaterThanOrEqualTo, int(10*time.Second/(r.Interval()+tick))-1)
				for i := 1; i < len(frames); i++ {
					gap := frames[i].Timestamp - frames[i-1].Timestamp
					So(gap, ShouldBeGreaterThanOrEqualTo, float32(r.Interval().Seconds())-1e-4)
				}
			}
		})

		Convey("A tick at the sample rate takes one frame per tick", func() {
			run(r, car, r.Interval(), 10*time.Second)
			So(r.Len(), ShouldEqual, 600)
		})

		Convey("Timestamps are non-decreasing", func() {
			run(r, car, time.Second/144, 3*time.Second)
			frames := r.Frames()
			for i := 1; i < len(frames); i++ {
				So(frames[i].Timestamp, ShouldBeGreaterThanOrEqualTo, frames[i-1].Timestamp)
			}
		})

		Convey("A sample right after a late one waits a full interval", func() {
			So(r.Sample(30*time.Millisecond, car), ShouldBeTrue)
			So(r.Sample(34*time.Millisecond, car), ShouldBeFalse)
			So(r.Sample(30*time.Millisecond+r.Interval()-time.Microsecond, car), ShouldBeFalse)
			So(r.Sample(30*time.Millisecond+r.Interval(), car), ShouldBeTrue)
			So(r.Len(), ShouldEqual, 2)
		})

		Convey("A stalled tick does not cause a burst", func() {
			So(r.Sample(time.Second, car), ShouldBeTrue)
			So(r.Sample(time.Second+time.Millisecond, car), ShouldBeFalse)
			So(r.Len(), ShouldEqual, 1)
		})

		Convey("Reset restarts the interval at race start", func() {
			So(r.Sample(time.Second, car), ShouldBeTrue)
			r.Reset()
			So(r.Len(), ShouldEqual, 0)
			So(r.Sample(r.Interval(), car), ShouldBeTrue)
		})

		Convey("Captured state is packed into the frame", func() {
			car.brake = 0.5
			car.lamps = true
			So(r.Sample(20*time.Millisecond, car), ShouldBeTrue)
			f := r.Frames()[0]
			So(f.Timestamp, ShouldAlmostEqual, 0.02, 1e-6)
			So(f.Position, ShouldResemble, mgl32.Vec3{1, 2, 3})
			So(f.SteerAngle, ShouldEqual, float32(12))
			So(f.Speed, ShouldEqual, float32(88))
			So(f.EngineRPM, ShouldEqual, float32(7200))
			So(f.Gear, ShouldEqual, int32(3))
			So(f.Braking(), ShouldBeTrue)
			So(f.Boosting(), ShouldBeFalse)
			So(f.Headlights(), ShouldBeTrue)
		})

		Convey("Light brake input is not braking", func() {
			car.brake = 0.1
			f := Capture(time.Second, car)
			So(f.Flags.Has(model.FlagBraking), ShouldBeFalse)
		})

		Convey("Append ignores the interval", func() {
			r.Append(time.Millisecond, car)
			So(r.Len(), ShouldEqual, 1)
			r.Append(time.Millisecond, nil)
			So(r.Len(), ShouldEqual, 1)
		})

		Convey("A nil vehicle is never sampled", func() {
			So(r.Sample(time.Second, nil), ShouldBeFalse)
		})
	})

	Convey("Given a custom sample rate", t, func() {
		r := New(WithSampleRate(10), WithSampleRate(0))
		run(r, &fakeCar{}, time.Second/100, 2*time.Second)
		So(r.Interval(), ShouldEqual, 100*time.Millisecond)
		So(r.Len(), ShouldEqual, 20)
	})
}
