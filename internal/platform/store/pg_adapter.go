package store

import (
	"context"
	"errors"
	"time"

	"ballotgate/internal/platform/store/pg"
	"ballotgate/internal/platform/store/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the part of pgxpool.Pool and pgx.Tx the adapter needs
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgAdapter implements TxRunner over a pgxpool
type pgAdapter struct {
	p *pg.PG
	pgxRunner
}

func newPGAdapter(p *pg.PG, t trace.QueryTracer, slowMs int) *pgAdapter {
	return &pgAdapter{p: p, pgxRunner: pgxRunner{q: p.Pool, emitter: newEmitter("pg", t, slowMs)}}
}

func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: nil adapter")
	}
	return a.p.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error { a.p.Close(); return nil }

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(pgxRunner{q: tx, emitter: a.emitter}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// pgxRunner is the RowQuerier for the pool and for open transactions
type pgxRunner struct {
	q pgxQuerier
	emitter
}

func (r pgxRunner) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := r.q.Exec(ctx, sql, args...)
	r.emit(ctx, sql, args, start, err)
	return ct, err
}

func (r pgxRunner) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := r.q.Query(ctx, sql, args...)
	r.emit(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (r pgxRunner) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	return scanHook{
		r: r.q.QueryRow(ctx, sql, args...),
		after: func(err error) {
			if errors.Is(err, pgx.ErrNoRows) {
				err = nil
			}
			r.emit(ctx, sql, args, start, err)
		},
	}
}

// scanHook reports the scan error once Scan returns
type scanHook struct {
	r     Row
	after func(error)
}

func (h scanHook) Scan(dst ...any) error {
	err := h.r.Scan(dst...)
	h.after(err)
	return err
}
