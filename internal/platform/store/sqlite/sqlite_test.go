package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	mem := DSN(Config{Path: MemoryPath})
	if !strings.HasPrefix(mem, "file::memory:?") || strings.Contains(mem, "journal_mode") {
		t.Fatalf("memory dsn = %q", mem)
	}
	if !strings.Contains(mem, "busy_timeout(5000)") || !strings.Contains(mem, "_txlock=immediate") {
		t.Fatalf("memory dsn missing defaults: %q", mem)
	}
	file := DSN(Config{Path: "data//ballot.db"})
	if !strings.HasPrefix(file, "file:data/ballot.db?") || !strings.Contains(file, "journal_mode(WAL)") {
		t.Fatalf("file dsn = %q", file)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open(context.Background(), Config{Path: "  "}); err == nil {
		t.Fatalf("expected error for blank path")
	}

	db, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "ballot.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
}
