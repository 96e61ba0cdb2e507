package store

import (
	"ballotgate/internal/platform/logger"
	"ballotgate/internal/platform/store/trace"
)

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger handed to tracers
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// tracerFor returns the zerolog tracer when enabled, nil otherwise
func tracerFor(s *Store, enabled bool) trace.QueryTracer {
	if !enabled {
		return nil
	}
	return trace.Zerolog(s.Log)
}
