// Package module wires the gate into the API using modkit
package module

import (
	"fmt"
	"net/http"

	"ballotgate/internal/adapters/camera"
	"ballotgate/internal/adapters/samplestore"
	"ballotgate/internal/core/capture"
	"ballotgate/internal/core/facematch"
	modkit "ballotgate/internal/modkit"
	"ballotgate/internal/modkit/httpkit"
	"ballotgate/internal/platform/logger"
	"ballotgate/internal/platform/net/middleware"
	str "ballotgate/internal/platform/strings"

	gatehttp "ballotgate/internal/services/gate/http"
	gaterepo "ballotgate/internal/services/gate/repo"
	gatesvc "ballotgate/internal/services/gate/service"
	"ballotgate/internal/services/gate/ticket"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	svc     *gatesvc.Svc
	issuer  *ticket.Issuer
	auth    *httpkit.Port
	samples *samplestore.Store
	rig     *camera.Rig
}

// Ports are the gate's exported ports
type Ports struct {
	Service gatesvc.Service
	Auth    middleware.AuthPort
	Samples *samplestore.Store
}

// Injected replaces gate collaborators when passed through modkit.WithPorts
// a nil Capture opens the camera from CAPTURE_* settings
type Injected struct {
	Capture gatesvc.Capturer
}

// New constructs the gate module; routes mount at the API root unless a prefix is given
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("gate")}, opts...)...)
	if deps.DB == nil {
		panic("gate module requires a primary record store")
	}
	opt := FromConfig(deps.Cfg)
	log := logger.Named(b.Name)

	samples, err := samplestore.New(opt.FacesDir)
	if err != nil {
		panic(fmt.Errorf("gate: sample store: %w", err))
	}
	if n, err := samples.Sweep(opt.SweepAge); err != nil {
		log.Warn().Err(err).Msg("sweep of stale samples failed")
	} else if n > 0 {
		log.Info().Int("removed", n).Msg("swept stale samples")
	}

	issuer, err := ticket.New(opt.Ticket)
	if err != nil {
		panic(fmt.Errorf("gate: ticket issuer: %w", err))
	}

	m := &Module{
		deps:    deps,
		name:    b.Name,
		prefix:  b.Prefix,
		mws:     b.Mw,
		issuer:  issuer,
		auth:    httpkit.NewPortFunc(issuer.Parse),
		samples: samples,
	}

	var injected Injected
	if p, ok := b.Ports.(Injected); ok {
		injected = p
	}
	capturer := injected.Capture
	if capturer == nil {
		rig, err := camera.Open(opt.Camera)
		if err != nil {
			panic(fmt.Errorf("gate: camera: %w", err))
		}
		m.rig = rig

		copt := opt.Capture
		copt.Observer = func(t capture.Transition) {
			log.Debug().
				Str("participant", t.Request.ParticipantID).
				Str("purpose", t.Request.Purpose.String()).
				Str("from", t.From.String()).
				Str("to", t.To.String()).
				Int("frames", t.Frames).
				Msg("capture transition")
		}
		capturer = capture.New(rig.Opener, rig.Detector, rig.Operator, samples, copt)
	}

	m.svc = gatesvc.New(gatesvc.Deps{
		DB:           deps.DB,
		Binder:       gaterepo.New(),
		Capture:      capturer,
		Samples:      samples,
		Matcher:      facematch.New(opt.Match),
		Hasher:       opt.Cred.Hasher(),
		SecretLength: opt.Cred.SecretLength,
	})
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	mount := func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		gatehttp.Register(rr, m.svc, m.issuer, m.auth)
	}
	if m.prefix == "" {
		r.Group(mount)
		return
	}
	r.Route(str.MustPrefix(m.prefix), mount)
}

// Ports implements the modkit.Module interface
func (m *Module) Ports() any {
	return Ports{Service: m.svc, Auth: m.auth, Samples: m.samples}
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Close releases the camera rig if the module opened one
func (m *Module) Close() error {
	if m.rig == nil {
		return nil
	}
	return m.rig.Close()
}
