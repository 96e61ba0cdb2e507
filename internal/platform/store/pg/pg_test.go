package pg

import (
	"context"
	"errors"
	"testing"

	"ballotgate/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestOpenParseError(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://bad"}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpenNewPoolError(t *testing.T) {
	testkit.Serial(t)
	testkit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
		return nil, errors.New("boom")
	})
	if _, err := Open(context.Background(), Config{URL: "postgres://u:p@h:5432/db?sslmode=disable"}, nil); err == nil {
		t.Fatalf("expected newPool error")
	}
}

func TestOpenAppliesConfig(t *testing.T) {
	testkit.Serial(t)
	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = pc
		return &pgxpool.Pool{}, nil
	})

	mutated := false
	p, err := Open(context.Background(), Config{
		URL:      "postgres://u:p@h:5432/db?sslmode=disable",
		MaxConns: 7,
		AppName:  "ballotgate-test",
	}, func(*pgxpool.Config) { mutated = true })
	if err != nil || p == nil {
		t.Fatalf("Open: %v", err)
	}
	if !mutated {
		t.Fatalf("mutator not called")
	}
	if seen.MaxConns != 7 {
		t.Fatalf("MaxConns = %d, want 7", seen.MaxConns)
	}
	if got := seen.ConnConfig.RuntimeParams["application_name"]; got != "ballotgate-test" {
		t.Fatalf("application_name = %q", got)
	}
}

func TestCloseNilSafe(t *testing.T) {
	var p *PG
	p.Close()
	(&PG{}).Close()
}
