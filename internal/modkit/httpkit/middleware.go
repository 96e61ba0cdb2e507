package httpkit

import (
	"net/http"
	"time"

	"ballotgate/internal/platform/config"
	phttp "ballotgate/internal/platform/net/http"
	"ballotgate/internal/platform/net/middleware"
)

// CommonStack returns the root middleware slice from API_ settings
//
//	API_REQUEST_TIMEOUT  whole request bound, must outlive a capture (default 150s)
//	API_SLOW_MS          access log warn threshold (default 2000)
//	API_CORS_ORIGINS     comma separated, empty disables CORS
func CommonStack(cfg config.Conf) []func(http.Handler) http.Handler {
	mw := middleware.Defaults(
		cfg.MayDuration("REQUEST_TIMEOUT", 150*time.Second),
		middleware.AccessLogOptions{
			Slow: time.Duration(cfg.MayInt("SLOW_MS", 2000)) * time.Millisecond,
			Skip: []string{"/api/v1/health"},
		},
	)
	if origins := cfg.MayCSV("CORS_ORIGINS", nil); len(origins) > 0 {
		mw = append(mw, middleware.CORS(middleware.CORSOptions{AllowedOrigins: origins, MaxAge: 300}))
	}
	return mw
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}

// RequireClass wires the class gate to the platform JSON writer
func RequireClass(classes ...string) func(http.Handler) http.Handler {
	return middleware.RequireClass(phttp.JSON, classes...)
}
