// Package store exposes the SQL backends behind one small seam
package store

import (
	"context"
	"errors"
	"fmt"

	"ballotgate/internal/platform/logger"
)

// Store is the facade over configured backends
// the zero value is safe and has no backends
type Store struct {
	// Log is used by tracers and the boot loop
	Log logger.Logger

	// PG is set when postgres is enabled
	PG TxRunner

	// SQLite is set when sqlite is enabled
	SQLite TxRunner
}

// Row is the single row scan contract
type Row interface {
	Scan(dest ...any) error
}

// Rows is the result set contract
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports the outcome of a write
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use
// statements use $N placeholders on every backend
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction; fn's error rolls back
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Open builds a Store with the enabled backends
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		a, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = a
	}
	if cfg.SQLite.Enabled {
		a, err := openSQLite(ctx, cfg, s)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.SQLite = a
	}
	return s, nil
}

// Primary returns the backend record repos bind to, postgres first
func (s *Store) Primary() (TxRunner, error) {
	switch {
	case s == nil:
		return nil, errors.New("nil store")
	case s.PG != nil:
		return s.PG, nil
	case s.SQLite != nil:
		return s.SQLite, nil
	}
	return nil, errors.New("no sql backend enabled")
}

// Guard pings every configured backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for name, b := range map[string]TxRunner{"pg": s.PG, "sqlite": s.SQLite} {
		if b == nil {
			continue
		}
		if p, ok := b.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every backend; nil backends are skipped
func (s *Store) Close(_ context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, b := range []TxRunner{s.PG, s.SQLite} {
		if c, ok := b.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
