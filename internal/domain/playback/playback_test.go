package playback

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/ghostrun/internal/domain/model"
)

func secs(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }

func line() *model.GhostRecording {
	rec := &model.GhostRecording{RouteID: "Akina_Downhill", TotalTime: 3}
	for i := 0; i <= 3; i++ {
		rec.Frames = append(rec.Frames, model.GhostFrame{
			Timestamp:  float32(i),
			Position:   mgl32.Vec3{float32(i) * 10, 0, 0},
			Rotation:   mgl32.QuatRotate(float32(i)*0.3, mgl32.Vec3{0, 1, 0}),
			Speed:      float32(i) * 20,
			SteerAngle: float32(i) * 5,
			Gear:       int32(i + 1),
			Flags:      model.PackFlags(i%2 == 1, false, i >= 2),
		})
	}
	return rec
}

func TestInterpolateEndpoints(t *testing.T) {
	Convey("Given two frames", t, func() {
		a := model.GhostFrame{
			Position: mgl32.Vec3{1.1, -3.3, 7.7},
			Rotation: mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0}),
			Speed:    33.3,
			Flags:    model.FlagBraking,
		}
		b := model.GhostFrame{
			Position: mgl32.Vec3{-9.9, 4.4, 0.3},
			Rotation: mgl32.QuatRotate(2.1, mgl32.Vec3{1, 0, 0}),
			Speed:    71.9,
			Flags:    model.FlagHeadlights,
		}

		Convey("t=0 reproduces frame A exactly", func() {
			p := Interpolate(a, b, 0)
			So(p.Position, ShouldResemble, a.Position)
			So(p.Rotation, ShouldResemble, a.Rotation)
			So(p.Speed, ShouldEqual, a.Speed)
			So(p.Braking, ShouldBeTrue)
			So(p.Headlights, ShouldBeFalse)
		})

		Convey("t=1 reproduces frame B exactly", func() {
			p := Interpolate(a, b, 1)
			So(p.Position, ShouldResemble, b.Position)
			So(p.Rotation, ShouldResemble, b.Rotation)
			So(p.Speed, ShouldEqual, b.Speed)
			So(p.Braking, ShouldBeFalse)
			So(p.Headlights, ShouldBeTrue)
		})

		Convey("Flags switch at the midpoint without blending", func() {
			So(Interpolate(a, b, 0.49).Braking, ShouldBeTrue)
			So(Interpolate(a, b, 0.5).Braking, ShouldBeFalse)
			So(Interpolate(a, b, 0.5).Headlights, ShouldBeTrue)
		})

		Convey("Midpoint rotation stays unit length", func() {
			q := Interpolate(a, b, 0.5).Rotation
			So(q.Len(), ShouldAlmostEqual, 1, 1e-4)
		})
	})
}

func TestSlerpShortestArc(t *testing.T) {
	Convey("Given quaternions on opposite hemispheres", t, func() {
		a := mgl32.QuatIdent()
		b := mgl32.QuatRotate(0.2, mgl32.Vec3{0, 1, 0}).Scale(-1)

		Convey("The blend follows the short way round", func() {
			mid := Slerp(a, b, 0.5)
			want := mgl32.QuatRotate(0.1, mgl32.Vec3{0, 1, 0})
			So(mid.OrientationEqualThreshold(want, 1e-4), ShouldBeTrue)
		})
	})
}

func TestParam(t *testing.T) {
	Convey("Param clamps to [0, 1]", t, func() {
		So(Param(1, 2, 0.5), ShouldEqual, float32(0))
		So(Param(1, 2, 1.25), ShouldEqual, float32(0.25))
		So(Param(1, 2, 3), ShouldEqual, float32(1))
	})
	Convey("Param handles zero-length spans", t, func() {
		So(Param(2, 2, 1.9), ShouldEqual, float32(0))
		So(Param(2, 2, 2), ShouldEqual, float32(1))
	})
}

func TestPlayer(t *testing.T) {
	Convey("Given a player over a four frame run", t, func() {
		p := New(line())
		dt := time.Second / 60

		Convey("Halfway between frames is interpolated", func() {
			pose, ok := p.Update(secs(1.5), dt)
			So(ok, ShouldBeTrue)
			So(p.Cursor(), ShouldEqual, 1)
			So(pose.Frame, ShouldEqual, 1)
			So(pose.Position[0], ShouldAlmostEqual, 15, 1e-4)
			So(pose.Speed, ShouldAlmostEqual, 30, 1e-4)
			So(pose.SteerAngle, ShouldAlmostEqual, 7.5, 1e-4)
			So(pose.Holding, ShouldBeFalse)
		})

		Convey("The cursor never moves backwards", func() {
			_, _ = p.Update(secs(2.2), dt)
			So(p.Cursor(), ShouldEqual, 2)
			pose, _ := p.Update(secs(0.5), dt)
			So(p.Cursor(), ShouldEqual, 2)
			So(pose.Position[0], ShouldEqual, float32(20))
		})

		Convey("Past the end playback holds on the last frame", func() {
			pose, ok := p.Update(secs(10), dt)
			So(ok, ShouldBeTrue)
			So(pose.Holding, ShouldBeTrue)
			So(pose.Position, ShouldResemble, mgl32.Vec3{30, 0, 0})
			So(p.Cursor(), ShouldEqual, 3)
		})

		Convey("Wheels spin with speed", func() {
			first, _ := p.Update(secs(1), dt)
			second, _ := p.Update(secs(1)+dt, dt)
			So(first.WheelSpin, ShouldNotEqual, float32(0))
			So(second.WheelSpin, ShouldBeGreaterThan, first.WheelSpin)
		})
	})

	Convey("Given an empty recording", t, func() {
		_, ok := New(nil).Update(time.Second, time.Millisecond)
		So(ok, ShouldBeFalse)
		_, ok = New(&model.GhostRecording{}).Update(time.Second, time.Millisecond)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a single frame recording", t, func() {
		rec := &model.GhostRecording{Frames: []model.GhostFrame{{Position: mgl32.Vec3{5, 5, 5}}}}
		pose, ok := New(rec).Update(0, 0)
		So(ok, ShouldBeTrue)
		So(pose.Holding, ShouldBeTrue)
		So(pose.Position, ShouldResemble, mgl32.Vec3{5, 5, 5})
	})
}

func TestSpinWheel(t *testing.T) {
	Convey("Wheel spin stays bounded", t, func() {
		angle := float32(0)
		for i := 0; i < 100000; i++ {
			angle = SpinWheel(angle, 300, 1.0/60, DefaultWheelRadius)
			So(angle > -3600 && angle < 3600, ShouldBeTrue)
		}
	})

	Convey("One circumference per second is 360 degrees", t, func() {
		r := float32(0.5)
		c := 2 * 3.14159265 * r
		So(SpinWheel(0, c, 1, r), ShouldAlmostEqual, 360, 1e-2)
		So(SpinWheel(0, -c, 1, r), ShouldAlmostEqual, -360, 1e-2)
	})

	Convey("A custom radius is applied by the player", t, func() {
		p := New(line(), WithWheelRadius(1), WithWheelRadius(-1))
		So(p.wheelRadius, ShouldEqual, float32(1))
	})
}
