// Package sqlite opens a modernc.org/sqlite database through database/sql
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Config configures the sqlite handle
type Config struct {
	// Path is a file path or ":memory:"
	Path        string
	BusyTimeout time.Duration
}

// MemoryPath opens a private in memory database
const MemoryPath = ":memory:"

// DSN builds the driver dsn; writers take the lock at BEGIN so a duplicate
// check and insert in one transaction cannot interleave with another writer
func DSN(cfg Config) string {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busy.Milliseconds()),
		"_pragma=foreign_keys(1)",
		"_txlock=immediate",
	}
	path := cfg.Path
	if path != MemoryPath {
		path = filepath.Clean(path)
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Open opens and pings the database; the pool is pinned to one connection
// since sqlite allows a single writer and ":memory:" is per connection
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}
