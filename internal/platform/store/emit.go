package store

import (
	"context"
	"time"

	"ballotgate/internal/platform/store/trace"
)

// emitter forwards timing to an optional tracer; shared by every adapter
type emitter struct {
	backend string
	tracer  trace.QueryTracer
	slowUS  int64
}

func newEmitter(backend string, t trace.QueryTracer, slowMs int) emitter {
	return emitter{backend: backend, tracer: t, slowUS: int64(slowMs) * 1000}
}

func (e emitter) emit(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if e.tracer == nil {
		return
	}
	us := time.Since(start).Microseconds()
	e.tracer.OnQuery(ctx, trace.QueryEvent{
		Backend:   e.backend,
		SQL:       sql,
		Args:      args,
		ElapsedUS: us,
		Err:       err,
		Slow:      e.slowUS > 0 && us >= e.slowUS,
	})
}
