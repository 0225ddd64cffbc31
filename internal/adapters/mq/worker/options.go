// Package worker defines the render workers that compose certificate
// artifacts off the request path.
package worker

import (
	"github.com/okian/seccard/pkg/logger"
)

// Option applies a configuration option to the RenderWorker.
type Option func(*RenderWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *RenderWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *RenderWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
