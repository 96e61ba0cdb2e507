package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	perr "ballotgate/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

// IsNoRows reports the no rows sentinel of either driver
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

// ExecOne runs a write and requires exactly one affected row
func ExecOne(ctx context.Context, q RowQuerier, query string, args ...any) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if n := tag.RowsAffected(); n != 1 {
		return fmt.Errorf("expected exactly one row affected, got %d", n)
	}
	return nil
}

// Scalar scans the first column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, query string, args ...any) (T, error) {
	var v T
	err := q.QueryRow(ctx, query, args...).Scan(&v)
	return v, err
}

// One maps a single row; no row yields perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), query string, args ...any) (T, error) {
	var zero T
	item, err := scan(q.QueryRow(ctx, query, args...))
	if IsNoRows(err) {
		return zero, perr.ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return item, nil
}

// Many maps every row
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
