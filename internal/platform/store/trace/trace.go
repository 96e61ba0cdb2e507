// Package trace logs SQL statements issued through the store adapters
package trace

import (
	"context"
	"strings"

	"ballotgate/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one statement round trip
type QueryEvent struct {
	Backend   string
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Func adapts a function to QueryTracer
type Func func(ctx context.Context, ev QueryEvent)

// OnQuery calls f
func (f Func) OnQuery(ctx context.Context, ev QueryEvent) { f(ctx, ev) }

// Zerolog returns a tracer that logs every statement regardless of the root level;
// statement arguments are never logged since they carry credential hashes
func Zerolog(root logger.Logger) QueryTracer {
	l := root.Level(zerolog.DebugLevel).With().Str("component", "sql").Logger()
	return &zlTracer{log: l}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	evt.Str("backend", ev.Backend).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Int("args", len(ev.Args)).
		Str("sql", Compact(ev.SQL)).
		Err(ev.Err).
		Msg("sql query")
}

// Compact folds runs of whitespace into a single space
func Compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
