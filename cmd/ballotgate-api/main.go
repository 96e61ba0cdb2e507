// @title         ballotgate API
// @version       0.1.0
// @description   Elector and contestant enrollment and two factor login

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ballotgate/internal/modkit/repokit"
	"ballotgate/internal/platform/config"
	"ballotgate/internal/platform/logger"
	phttp "ballotgate/internal/platform/net/http"
	"ballotgate/internal/platform/store"

	"ballotgate/internal/services/api"
	gaterepo "ballotgate/internal/services/gate/repo"
)

func main() {
	if err := config.LoadDotenv(); err != nil {
		logger.Get().Warn().Err(err).Msg("dotenv load failed")
	}
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = api.Service
	}
	logger.Init(opt)
	l := logger.Get()

	root := config.New()
	apiCfg := root.Prefix("API_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromConfig(root, api.Service), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st, 5*time.Second)

	db, err := st.Primary()
	if err != nil {
		l.Fatal().Err(err).Msg("no record store")
	}
	if err := gaterepo.Admin(db).Migrate(ctx); err != nil {
		l.Fatal().Err(err).Msg("schema migration failed")
	}

	srv := phttp.NewServer(apiCfg)
	closer, err := api.Mount(srv.Router(), api.Options{
		Config:         root,
		API:            apiCfg,
		Store:          st,
		Logger:         l,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})
	if err != nil {
		l.Fatal().Err(err).Msg("api mount failed")
	}
	defer func() {
		if closer == nil {
			return
		}
		if err := closer.Close(); err != nil {
			l.Error().Err(err).Msg("failed to release camera")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
