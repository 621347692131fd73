// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers an optional YAML file and GHOST_* environment variables on top.
// - Durations accept Go duration strings such as "700s" or "1m30s".
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// GhostsDir holds the personal/ and shared/ ghost folders.
	GhostsDir string `koanf:"ghosts_dir"`

	// MetricsAddr is the status server listen address; empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`

	// MetricsEnabled set to false keeps /healthz empty.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsRefreshInterval paces the runtime collector of the serve command.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBuckets overrides the latency histogram buckets, in
	// milliseconds. Empty keeps the Prometheus defaults.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// TickRate is the host loop frequency used by the simulator, in Hz.
	TickRate int `koanf:"tick_rate"`

	// SampleRate is the number of recorded frames per second of race time.
	SampleRate int `koanf:"sample_rate"`

	// MaxRaceTime cancels a race that runs longer.
	MaxRaceTime time.Duration `koanf:"max_race_time"`

	// CountdownSteps and CountdownStep shape the pre-race countdown.
	CountdownSteps int           `koanf:"countdown_steps"`
	CountdownStep  time.Duration `koanf:"countdown_step"`

	// FinishDisplay and CancelCooldown keep the result banner up before idling.
	FinishDisplay  time.Duration `koanf:"finish_display"`
	CancelCooldown time.Duration `koanf:"cancel_cooldown"`

	// MaxSharedFiles caps how many shared files one scan considers.
	MaxSharedFiles int `koanf:"max_shared_files"`

	// MaxFileSize rejects larger shared files, in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`

	// ProgressWindow and ProgressThreshold tune the ghost progress search.
	ProgressWindow    int     `koanf:"progress_window"`
	ProgressThreshold float32 `koanf:"progress_threshold"`

	// WheelRadius drives the ghost's wheel spin, in meters.
	WheelRadius float32 `koanf:"wheel_radius"`

	// InputQueueSize bounds inputs waiting for the next tick.
	InputQueueSize int `koanf:"input_queue_size"`

	// AsyncSave writes personal bests on a background worker.
	AsyncSave bool `koanf:"async_save"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		GhostsDir:              "ghosts",
		MetricsAddr:            "",
		MetricsEnabled:         true,
		MetricsNamespace:       "ghostrun",
		MetricsSubsystem:       "core",
		MetricsRefreshInterval: 10 * time.Second,
		TickRate:               60,
		SampleRate:             60,
		MaxRaceTime:            700 * time.Second,
		CountdownSteps:         5,
		CountdownStep:          time.Second,
		FinishDisplay:          4 * time.Second,
		CancelCooldown:         2 * time.Second,
		MaxSharedFiles:         100,
		MaxFileSize:            50 << 20,
		ProgressWindow:         300,
		ProgressThreshold:      50,
		WheelRadius:            0.35,
		InputQueueSize:         256,
		AsyncSave:              false,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.GhostsDir == "":
		return fmt.Errorf("ghosts_dir must not be empty: %w", ErrInvalidConfig)
	case c.TickRate <= 0:
		return fmt.Errorf("tick_rate %d: %w", c.TickRate, ErrInvalidConfig)
	case c.SampleRate <= 0:
		return fmt.Errorf("sample_rate %d: %w", c.SampleRate, ErrInvalidConfig)
	case c.MaxRaceTime <= 0:
		return fmt.Errorf("max_race_time %s: %w", c.MaxRaceTime, ErrInvalidConfig)
	case c.CountdownSteps <= 0 || c.CountdownStep <= 0:
		return fmt.Errorf("countdown %d x %s: %w", c.CountdownSteps, c.CountdownStep, ErrInvalidConfig)
	case c.FinishDisplay < 0 || c.CancelCooldown < 0:
		return fmt.Errorf("finish_display/cancel_cooldown must not be negative: %w", ErrInvalidConfig)
	case c.MaxSharedFiles <= 0:
		return fmt.Errorf("max_shared_files %d: %w", c.MaxSharedFiles, ErrInvalidConfig)
	case c.MaxFileSize <= 0:
		return fmt.Errorf("max_file_size %d: %w", c.MaxFileSize, ErrInvalidConfig)
	case c.ProgressWindow <= 0 || c.ProgressThreshold <= 0:
		return fmt.Errorf("progress_window/progress_threshold must be positive: %w", ErrInvalidConfig)
	case c.WheelRadius <= 0:
		return fmt.Errorf("wheel_radius %g: %w", c.WheelRadius, ErrInvalidConfig)
	case c.InputQueueSize <= 0:
		return fmt.Errorf("input_queue_size %d: %w", c.InputQueueSize, ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("metrics_refresh_interval %s: %w", c.MetricsRefreshInterval, ErrInvalidConfig)
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			return fmt.Errorf("metrics_latency_buckets must be strictly increasing: %w", ErrInvalidConfig)
		}
	}
	return nil
}
