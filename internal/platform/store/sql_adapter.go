package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ballotgate/internal/platform/store/trace"
)

// sqlQuerier is the part of *sql.DB and *sql.Tx the adapter needs
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLAdapter implements TxRunner over database/sql; used for sqlite
type SQLAdapter struct {
	db *sql.DB
	sqlRunner
}

// NewSQLAdapter wraps db; backend names trace events
func NewSQLAdapter(db *sql.DB, backend string, t trace.QueryTracer, slowMs int) *SQLAdapter {
	return &SQLAdapter{db: db, sqlRunner: sqlRunner{q: db, emitter: newEmitter(backend, t, slowMs)}}
}

// Ping checks the database handle
func (a *SQLAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sql: nil adapter")
	}
	return a.db.PingContext(ctx)
}

// Close closes the database handle
func (a *SQLAdapter) Close() error { return a.db.Close() }

// Tx runs fn in a transaction, rolling back when fn fails
func (a *SQLAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlRunner{q: tx, emitter: a.emitter}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlRunner struct {
	q sqlQuerier
	emitter
}

func (r sqlRunner) Exec(ctx context.Context, query string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := r.q.ExecContext(ctx, query, args...)
	r.emit(ctx, query, args, start, err)
	if err != nil {
		return nil, err
	}
	return resultTag{res}, nil
}

func (r sqlRunner) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := r.q.QueryContext(ctx, query, args...)
	r.emit(ctx, query, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqlRows{rs}, nil
}

func (r sqlRunner) QueryRow(ctx context.Context, query string, args ...any) Row {
	start := time.Now()
	return scanHook{
		r: r.q.QueryRowContext(ctx, query, args...),
		after: func(err error) {
			if errors.Is(err, sql.ErrNoRows) {
				err = nil
			}
			r.emit(ctx, query, args, start, err)
		},
	}
}

// sqlRows drops the error from Close to satisfy Rows
type sqlRows struct{ r *sql.Rows }

func (x sqlRows) Next() bool            { return x.r.Next() }
func (x sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x sqlRows) Err() error            { return x.r.Err() }
func (x sqlRows) Close()                { _ = x.r.Close() }

type resultTag struct{ r sql.Result }

func (t resultTag) RowsAffected() int64 {
	n, err := t.r.RowsAffected()
	if err != nil {
		return -1
	}
	return n
}
