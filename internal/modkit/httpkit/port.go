// Package httpkit provides tiny HTTP helpers and adapters for modules
package httpkit

import (
	"net/http"

	perrs "ballotgate/internal/platform/errors"
	pnet "ballotgate/internal/platform/net"
)

// Principal is re-exported so modules do not import platform/net
type Principal = pnet.Principal

// TokenFunc verifies a bearer token and returns the participant it was issued to
type TokenFunc func(token string) (Principal, error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse returns unauthorized when the header is missing, malformed, or the parser rejects it
// the parser's reason is never surfaced to the client
func (p *Port) Parse(r *http.Request) (Principal, error) {
	raw, err := Bearer(r)
	if err != nil {
		return Principal{}, err
	}
	if p == nil || p.parse == nil {
		return Principal{}, perrs.Unauthorizedf("invalid bearer token")
	}
	pr, err := p.parse(raw)
	if err != nil {
		return Principal{}, perrs.Unauthorizedf("invalid bearer token")
	}
	return pr, nil
}
