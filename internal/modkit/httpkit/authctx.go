package httpkit

import (
	"net/http"
	"strings"

	perrs "ballotgate/internal/platform/errors"
	pnet "ballotgate/internal/platform/net"
)

// Who returns the authenticated participant from the request context
func Who(r *http.Request) (Principal, error) {
	p, ok := pnet.PrincipalFrom(r.Context())
	if !ok {
		return Principal{}, perrs.Unauthorizedf("authentication required")
	}
	return p, nil
}

// Bearer returns the raw bearer token from the Authorization header
// the scheme is matched case-insensitively
func Bearer(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, raw, ok := strings.Cut(s, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	return raw, nil
}
