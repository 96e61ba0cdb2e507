package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"ballotgate/internal/platform/config"
	"ballotgate/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr    string
	mux     *chi.Mux
	srv     *stdhttp.Server
	drain   time.Duration
	started chan struct{}
	bound   string
}

// NewServer creates an http server from API_ settings
// opts receive the *chi.Mux so callers can mount routes and middleware
//
// capture requests hold the connection while the operator confirms, so the
// write timeout must outlive CAPTURE_MAX_WAIT
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayString("PORT", ":4000")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr:    addr,
		mux:     m,
		drain:   cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		started: make(chan struct{}),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      cfg.MayDuration("WRITE_TIMEOUT", 3*time.Minute),
			IdleTimeout:       cfg.MayDuration("IDLE_TIMEOUT", 2*time.Minute),
		},
	}
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler returns the root handler, handy for httptest
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the configured address
func (s *Server) Addr() string { return s.addr }

// BoundAddr returns the listener address once Run has started listening
func (s *Server) BoundAddr() string {
	<-s.started
	return s.bound
}

// Run listens and serves until ctx is done, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		close(s.started)
		return err
	}
	s.bound = ln.Addr().String()
	close(s.started)

	log := logger.Named("http")
	log.Info().Str("addr", s.bound).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.drain)
	defer cancel()
	log.Info().Dur("grace", s.drain).Msg("http draining")
	if err := s.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
