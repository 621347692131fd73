package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/ghostrun/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.GhostsDir, convey.ShouldEqual, "ghosts")
			convey.So(cfg.SampleRate, convey.ShouldEqual, 60)
			convey.So(cfg.MaxRaceTime, convey.ShouldEqual, 700*time.Second)
			convey.So(cfg.CountdownSteps, convey.ShouldEqual, 5)
			convey.So(cfg.FinishDisplay, convey.ShouldEqual, 4*time.Second)
			convey.So(cfg.CancelCooldown, convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.MaxSharedFiles, convey.ShouldEqual, 100)
			convey.So(cfg.MaxFileSize, convey.ShouldEqual, int64(50<<20))
			convey.So(cfg.WheelRadius, convey.ShouldEqual, float32(0.35))
			convey.So(cfg.AsyncSave, convey.ShouldBeFalse)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "ghostrun")
			convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.MetricsLatencyBuckets, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one unusable setting", t, func() {
		cases := map[string]func(*config.Config){
			"ghosts_dir":         func(c *config.Config) { c.GhostsDir = "" },
			"tick_rate":          func(c *config.Config) { c.TickRate = 0 },
			"sample_rate":        func(c *config.Config) { c.SampleRate = -1 },
			"max_race_time":      func(c *config.Config) { c.MaxRaceTime = 0 },
			"countdown_steps":    func(c *config.Config) { c.CountdownSteps = 0 },
			"countdown_step":     func(c *config.Config) { c.CountdownStep = 0 },
			"finish_display":     func(c *config.Config) { c.FinishDisplay = -time.Second },
			"max_shared_files":   func(c *config.Config) { c.MaxSharedFiles = 0 },
			"max_file_size":      func(c *config.Config) { c.MaxFileSize = 0 },
			"progress_window":    func(c *config.Config) { c.ProgressWindow = 0 },
			"progress_threshold": func(c *config.Config) { c.ProgressThreshold = 0 },
			"wheel_radius":       func(c *config.Config) { c.WheelRadius = 0 },
			"input_queue_size":   func(c *config.Config) { c.InputQueueSize = 0 },
			"metrics_refresh":    func(c *config.Config) { c.MetricsRefreshInterval = 0 },
			"metrics_buckets":    func(c *config.Config) { c.MetricsLatencyBuckets = []float64{1, 5, 5} },
		}

		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New(context.Background())
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Zero cooldowns are allowed", t, func() {
		cfg := config.New(context.Background())
		cfg.FinishDisplay, cfg.CancelCooldown = 0, 0
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
