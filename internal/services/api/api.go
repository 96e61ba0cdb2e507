// Package api assembles the HTTP API from its modules
package api

import (
	"io"

	"ballotgate/internal/platform/config"
	"ballotgate/internal/platform/logger"
	phttp "ballotgate/internal/platform/net/http"
	"ballotgate/internal/platform/store"

	"ballotgate/internal/modkit"
	"ballotgate/internal/modkit/httpkit"
	"ballotgate/internal/modkit/module"
	"ballotgate/internal/modkit/swaggerkit"

	gatemod "ballotgate/internal/services/gate/module"
	metamod "ballotgate/internal/services/meta/module"
)

// Service is the name reported by health and version
const Service = "ballotgate-api"

// Options are the API options
type Options struct {
	// Config is the root config; modules apply their own prefixes
	Config config.Conf
	// API carries the API_ settings for the middleware stack
	API            config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts every module under /api/v1; the returned closer releases the camera
func Mount(r phttp.Router, opt Options) (io.Closer, error) {
	db, err := opt.Store.Primary()
	if err != nil {
		return nil, err
	}
	deps := modkit.Deps{
		Cfg: opt.Config,
		DB:  db,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	gate := gatemod.New(deps)
	faces := module.MustPortsOf[gatemod.Ports](gate).Samples

	mods := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Injected{Service: Service, Faces: faces})),
		gate,
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.API), func(api httpkit.Router) {
		for _, m := range mods {
			if opt.Logger != nil {
				opt.Logger.Debug().Str("module", m.Name()).Msg("mounting module")
			}
			m.MountRoutes(api)
		}
	})

	closer, _ := gate.(io.Closer)
	return closer, nil
}
