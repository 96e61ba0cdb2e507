// Package modkit provides module wiring and core deps
package modkit

import (
	"ballotgate/internal/modkit/repokit"
	"ballotgate/internal/platform/config"
	"ballotgate/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	// DB is the primary record store, postgres or sqlite
	DB repokit.TxRunner
}
