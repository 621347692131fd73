package simulate

import (
	"github.com/okian/ghostrun/pkg/logger"
)

// Harness defaults.
const (
	DefaultTickRate = 60
)

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the harness logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.log = l
		}
	}
}

// WithTickRate sets host frames per second.
func WithTickRate(hz int) Option {
	return func(h *Harness) {
		if hz > 0 {
			h.tickRate = hz
		}
	}
}

// WithCar replaces the scripted car.
func WithCar(c *Car) Option {
	return func(h *Harness) {
		if c != nil {
			h.Car = c
		}
	}
}
