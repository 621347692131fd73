package service

import (
	"github.com/okian/ghostrun/internal/adapters/repository"
	"github.com/okian/ghostrun/internal/domain/race"
	"github.com/okian/ghostrun/internal/domain/route"
	"github.com/okian/ghostrun/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGhostsDir sets the root folder holding personal and shared ghosts.
func WithGhostsDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.ghostsDir = dir
		}
	}
}

// WithQueueSize sets how many inputs may wait for the next tick.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAsyncSave moves personal-best writes to a background worker.
func WithAsyncSave(enabled bool) Option {
	return func(s *Service) {
		s.asyncSave = enabled
	}
}

// WithCatalog replaces the built-in route catalog.
func WithCatalog(c *route.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithVehicles sets the source of the player's car.
func WithVehicles(v race.VehicleProvider) Option {
	return func(s *Service) {
		s.vehicles = v
	}
}

// WithView sets the ghost renderer.
func WithView(v race.GhostView) Option {
	return func(s *Service) {
		s.view = v
	}
}

// WithAnnouncer sets the HUD text surface.
func WithAnnouncer(a race.Announcer) Option {
	return func(s *Service) {
		s.announcer = a
	}
}

// WithRaceOptions passes timing and tuning options to the race machine.
func WithRaceOptions(opts ...race.Option) Option {
	return func(s *Service) {
		s.raceOpts = append(s.raceOpts, opts...)
	}
}

// WithStoreOptions passes options to the ghost store.
func WithStoreOptions(opts ...repository.Option) Option {
	return func(s *Service) {
		s.storeOpts = append(s.storeOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
