// Command ballotgate-admin maintains the participant store
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"ballotgate/internal/adapters/samplestore"
	"ballotgate/internal/platform/config"
	"ballotgate/internal/platform/logger"
	"ballotgate/internal/platform/store"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		logger.Get().Warn().Err(err).Msg("dotenv load failed")
	}
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = "ballotgate-admin"
	}
	logger.Init(opt)
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.FromConfig(root, "ballotgate-admin"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	db, err := st.Primary()
	if err != nil {
		l.Fatal().Err(err).Msg("no record store")
	}
	samples, err := samplestore.FromConfig(root.Prefix("GATE_"))
	if err != nil {
		l.Fatal().Err(err).Msg("sample store")
	}

	a := &admin{db: db, samples: samples, out: os.Stdout}
	err = a.run(ctx, os.Args[1:])
	if cerr := st.Close(context.Background()); cerr != nil {
		l.Error().Err(cerr).Msg("failed to close store")
	}
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		l.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
