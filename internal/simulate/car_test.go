package simulate

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCar(t *testing.T) {
	Convey("Given a car placed at a start pose", t, func() {
		car := NewCar("", 20)
		car.PlaceAt(mgl32.Vec3{10, 0, 0}, mgl32.QuatIdent())

		Convey("It drives along its heading", func() {
			car.Drive(0.5)
			So(car.Position()[0], ShouldAlmostEqual, 10, 1e-4)
			So(car.Position()[2], ShouldAlmostEqual, 10, 1e-4)
			So(car.Odometer(), ShouldAlmostEqual, 10, 1e-4)
			So(car.Speed(), ShouldAlmostEqual, 20, 1e-4)
			So(car.Gear(), ShouldEqual, int32(3))
			So(car.EngineRPM(), ShouldBeGreaterThan, 900)
		})

		Convey("It does not move while immobilized", func() {
			car.Immobilize()
			car.Drive(1)
			So(car.Position(), ShouldResemble, mgl32.Vec3{10, 0, 0})
			So(car.Speed(), ShouldEqual, float32(0))
			So(car.Gear(), ShouldEqual, int32(0))
			So(car.EngineRPM(), ShouldEqual, float32(900))

			car.Release()
			car.Drive(1)
			So(car.Position()[2], ShouldAlmostEqual, 20, 1e-4)
		})

		Convey("Placing resets the odometer", func() {
			car.Drive(1)
			car.PlaceAt(mgl32.Vec3{}, mgl32.QuatIdent())
			So(car.Odometer(), ShouldEqual, float32(0))
			So(car.Placements(), ShouldEqual, 2)
		})

		Convey("Inputs are reported as telemetry", func() {
			car.SetBraking(true)
			car.SetBoost(true)
			So(car.BrakeInput(), ShouldEqual, float32(1))
			So(car.BoostActive(), ShouldBeTrue)
			So(car.HeadlightsOn(), ShouldBeTrue)
			So(car.Name(), ShouldEqual, DefaultCarName)
		})
	})
}

func TestGarage(t *testing.T) {
	Convey("A parked garage has no active vehicle", t, func() {
		g := NewGarage(NewCar("x", 1))
		So(g.ActiveVehicle(), ShouldNotBeNil)
		g.Park()
		So(g.ActiveVehicle(), ShouldBeNil)
		g.Unpark()
		So(g.ActiveVehicle(), ShouldNotBeNil)
		So(NewGarage(nil).ActiveVehicle(), ShouldBeNil)
	})
}
