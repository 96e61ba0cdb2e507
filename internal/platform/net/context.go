// Package net provides request context values shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Principal is the authenticated participant behind a request
type Principal struct {
	Subject string `json:"sub"`
	Class   string `json:"class"`
}

// Zero reports whether p carries no subject
func (p Principal) Zero() bool { return p.Subject == "" }

type ctxKey string

const keyPrincipal ctxKey = "principal"

// WithRequestID sets the chi request id so chimw.GetReqID can retrieve it
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithPrincipal annotates context with the authenticated participant
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if p.Zero() {
		return ctx
	}
	return context.WithValue(ctx, keyPrincipal, p)
}

// PrincipalFrom returns the participant on the context
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(keyPrincipal).(Principal)
	return p, ok && !p.Zero()
}
