package store

import (
	"time"

	"ballotgate/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG     PGConfig
	SQLite SQLiteConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs
	ConnectRetries int
	PingTimeout    time.Duration
}

// SQLiteConfig configures the embedded sqlite database
type SQLiteConfig struct {
	Enabled     bool
	Path        string
	BusyTimeout time.Duration
	LogSQL      bool
	SlowQueryMs int
}

// FromConfig reads CORE_PG_* and CORE_SQLITE_*; sqlite is the fallback when no
// postgres url is set, matching a single kiosk deployment
func FromConfig(root config.Conf, appName string) Config {
	pgc := root.Prefix("CORE_PG_")
	lite := root.Prefix("CORE_SQLITE_")

	url := pgc.MayString("URL", "")
	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:        url != "",
			URL:            url,
			MaxConns:       int32(pgc.MayInt("MAX_CONNS", 4)),
			LogSQL:         pgc.MayBool("LOG_SQL", false),
			SlowQueryMs:    pgc.MayInt("SLOW_MS", 500),
			ConnectRetries: pgc.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    pgc.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		SQLite: SQLiteConfig{
			Enabled:     url == "" || lite.MayBool("ENABLED", false),
			Path:        lite.MayString("PATH", "ballotgate.db"),
			BusyTimeout: lite.MayDuration("BUSY_TIMEOUT", 5*time.Second),
			LogSQL:      lite.MayBool("LOG_SQL", false),
			SlowQueryMs: lite.MayInt("SLOW_MS", 200),
		},
	}
}
