// Package worker moves ghost persistence off the tick path.
package worker

import (
	"github.com/okian/ghostrun/pkg/logger"
)

// Option applies a configuration option to the AsyncSaver.
type Option func(*AsyncSaver)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *AsyncSaver) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *AsyncSaver) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithBacklog sets how many saves may wait behind the one in progress.
func WithBacklog(n int) Option {
	return func(w *AsyncSaver) {
		if n > 0 {
			w.backlog = n
		}
	}
}

// WithOnComplete registers a callback run on the worker goroutine after every save.
func WithOnComplete(fn func(Completion)) Option {
	return func(w *AsyncSaver) {
		w.onComplete = fn
	}
}
