package race

import (
	"time"

	"github.com/okian/ghostrun/pkg/logger"
)

// Defaults for race timing.
const (
	DefaultMaxRaceTime    = 700 * time.Second
	DefaultCountdownSteps = 5
	DefaultCountdownStep  = time.Second
	DefaultFinishDisplay  = 4 * time.Second
	DefaultCancelCooldown = 2 * time.Second

	// saveFlushTimeout bounds the wait for background saves before a personal
	// best is read or deleted.
	saveFlushTimeout = 2 * time.Second
)

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// WithStore sets where ghosts are loaded from.
func WithStore(s GhostStore) Option {
	return func(m *Machine) { m.store = s }
}

// WithPersister sets where new personal bests are written.
func WithPersister(p Persister) Option {
	return func(m *Machine) { m.persister = p }
}

// WithView sets the ghost renderer.
func WithView(v GhostView) Option {
	return func(m *Machine) {
		if v != nil {
			m.view = v
		}
	}
}

// WithAnnouncer sets the text surface.
func WithAnnouncer(a Announcer) Option {
	return func(m *Machine) {
		if a != nil {
			m.announcer = a
		}
	}
}

// WithSampleRate sets recorder samples per second.
func WithSampleRate(hz int) Option {
	return func(m *Machine) {
		if hz > 0 {
			m.sampleRate = hz
		}
	}
}

// WithMaxRaceTime sets the elapsed time at which a race is cancelled.
func WithMaxRaceTime(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.maxRaceTime = d
		}
	}
}

// WithCountdown sets the number of countdown steps and the length of each.
func WithCountdown(steps int, step time.Duration) Option {
	return func(m *Machine) {
		if steps > 0 && step > 0 {
			m.countdownSteps = steps
			m.countdownStep = step
		}
	}
}

// WithFinishDisplay sets how long the outcome stays up before returning to idle.
func WithFinishDisplay(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.finishDisplay = d
		}
	}
}

// WithCancelCooldown sets how long the cancellation stays up before returning to idle.
func WithCancelCooldown(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.cancelCooldown = d
		}
	}
}

// WithProgressWindow sets the progress tracker search window in frames.
func WithProgressWindow(frames int) Option {
	return func(m *Machine) {
		if frames > 0 {
			m.progressWindow = frames
		}
	}
}

// WithProgressThreshold sets the progress tracker match distance.
func WithProgressThreshold(d float32) Option {
	return func(m *Machine) {
		if d > 0 {
			m.progressThreshold = d
		}
	}
}

// WithWheelRadius sets the ghost wheel radius.
func WithWheelRadius(r float32) Option {
	return func(m *Machine) {
		if r > 0 {
			m.wheelRadius = r
		}
	}
}

// WithClock sets the wall clock used to stamp recordings.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// WithOnFinish registers a callback run after every finish.
func WithOnFinish(fn func(Result)) Option {
	return func(m *Machine) { m.onFinish = fn }
}

// WithOnCancel registers a callback run after every cancellation.
func WithOnCancel(fn func(Cancellation)) Option {
	return func(m *Machine) { m.onCancel = fn }
}
