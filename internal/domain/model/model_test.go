package model_test

import (
	"errors"
	"fmt"
	"testing"

	model "github.com/okian/ghostrun/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestFlags(t *testing.T) {
	convey.Convey("Given packed frame flags", t, func() {
		convey.Convey("When every boolean is set", func() {
			fl := model.PackFlags(true, true, true)

			convey.Convey("Then all three bits are present", func() {
				convey.So(fl, convey.ShouldEqual, model.Flags(0x07))
				frame := model.GhostFrame{Flags: fl}
				convey.So(frame.Braking(), convey.ShouldBeTrue)
				convey.So(frame.Boosting(), convey.ShouldBeTrue)
				convey.So(frame.Headlights(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When only headlights are on", func() {
			frame := model.GhostFrame{Flags: model.PackFlags(false, false, true)}

			convey.Convey("Then only bit 2 is set", func() {
				convey.So(frame.Flags, convey.ShouldEqual, model.Flags(0x04))
				convey.So(frame.Braking(), convey.ShouldBeFalse)
				convey.So(frame.Boosting(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestFormatTime(t *testing.T) {
	convey.Convey("Given race times in seconds", t, func() {
		convey.So(model.FormatTime(65), convey.ShouldEqual, "1:05.000")
		convey.So(model.FormatTime(5.5), convey.ShouldEqual, "0:05.500")
		convey.So(model.FormatTime(600.25), convey.ShouldEqual, "10:00.250")

		rec := &model.GhostRecording{TotalTime: 52}
		convey.So(rec.TimeString(), convey.ShouldEqual, "0:52.000")
	})
}

func TestLastTimestamp(t *testing.T) {
	convey.Convey("Given recordings", t, func() {
		var empty *model.GhostRecording
		convey.So(empty.LastTimestamp(), convey.ShouldEqual, float32(0))

		rec := &model.GhostRecording{Frames: []model.GhostFrame{{Timestamp: 1}, {Timestamp: 2.5}}}
		convey.So(rec.LastTimestamp(), convey.ShouldEqual, float32(2.5))
	})
}

func TestErrorKind(t *testing.T) {
	convey.Convey("Given wrapped error kinds", t, func() {
		wrapped := fmt.Errorf("frame 12 speed: %w", model.ErrFieldOutOfRange)

		convey.So(model.ErrorKind(wrapped), convey.ShouldEqual, "field_out_of_range")
		convey.So(model.ErrorKind(model.ErrTimeout), convey.ShouldEqual, "timeout")
		convey.So(model.ErrorKind(nil), convey.ShouldEqual, "none")
		convey.So(model.ErrorKind(errors.New("boom")), convey.ShouldEqual, "other")
	})
}

func TestInputKindString(t *testing.T) {
	convey.Convey("Given input kinds", t, func() {
		convey.So(model.InputStartSharedRace.String(), convey.ShouldEqual, "start_shared_race")
		convey.So(model.InputKind(99).String(), convey.ShouldEqual, "unknown")
	})
}
