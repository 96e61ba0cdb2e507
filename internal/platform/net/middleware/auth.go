package middleware

import (
	"net/http"
	"slices"

	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/logger"
	pnet "ballotgate/internal/platform/net"
)

// AuthPort resolves the participant behind a request
type AuthPort interface {
	Parse(r *http.Request) (pnet.Principal, error)
}

// Writer writes an envelope with status
type Writer func(w http.ResponseWriter, status int, body any)

// Auth rejects requests the port cannot resolve and stores the principal on ctx
// a nil port rejects everything
func Auth(p AuthPort, write Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				fail(w, r, write, perr.Unauthorizedf("authentication required"))
				return
			}
			pr, err := p.Parse(r)
			if err == nil && pr.Zero() {
				err = perr.Unauthorizedf("authentication required")
			}
			if err != nil {
				fail(w, r, write, err)
				return
			}
			ctx := pnet.WithPrincipal(r.Context(), pr)
			ctx = logger.WithParticipant(ctx, pr.Class, pr.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireClass allows only principals of one of classes; must run after Auth
func RequireClass(write Writer, classes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pr, ok := pnet.PrincipalFrom(r.Context())
			if !ok {
				fail(w, r, write, perr.Unauthorizedf("authentication required"))
				return
			}
			if !slices.Contains(classes, pr.Class) {
				fail(w, r, write, perr.Forbiddenf("%s may not access this resource", pr.Class))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func fail(w http.ResponseWriter, r *http.Request, write Writer, err error) {
	status, body := pnet.Error(err, pnet.RequestID(r.Context()))
	write(w, status, body)
}
