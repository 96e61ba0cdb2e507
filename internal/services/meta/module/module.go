// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "ballotgate/internal/modkit"
	"ballotgate/internal/modkit/httpkit"
	str "ballotgate/internal/platform/strings"

	metahttp "ballotgate/internal/services/meta/http"
)

// Injected is passed through modkit.WithPorts
// Service names the binary in health and version; Faces joins the readiness checks
type Injected struct {
	Service string
	Faces   metahttp.Pinger
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	injected  Injected
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta")}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}
	if p, ok := b.Ports.(Injected); ok {
		m.injected = p
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	mount := func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		d := metahttp.Deps{ServiceName: m.injected.Service, StartedAt: m.startedAt}
		// typed nils would report unknown instead of skipped
		if m.deps.DB != nil {
			d.DB = m.deps.DB
		}
		if m.injected.Faces != nil {
			d.Faces = m.injected.Faces
		}
		metahttp.Register(rr, d)
	}
	if m.prefix == "" {
		r.Group(mount)
		return
	}
	r.Route(str.MustPrefix(m.prefix), mount)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
