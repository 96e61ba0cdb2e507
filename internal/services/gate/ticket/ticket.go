// Package ticket issues and verifies short lived admission tickets
//
// A ticket is an HS256 JWT whose subject is the participant id and whose
// class claim gates the protected landing routes.
package ticket

import (
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"ballotgate/internal/platform/config"
	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/logger"
	pnet "ballotgate/internal/platform/net"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLen is the shortest accepted signing secret in bytes
const MinSecretLen = 16

// Config configures the issuer
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

// FromConfig reads TICKET_SECRET, TICKET_ISSUER, TICKET_TTL and TICKET_LEEWAY
// without a secret a random one is drawn, so tickets die with the process
func FromConfig(cfg config.Conf) Config {
	c := Config{
		Secret: []byte(cfg.MayString("SECRET", "")),
		Issuer: cfg.MayString("ISSUER", "ballotgate"),
		TTL:    cfg.MayDuration("TTL", 5*time.Minute),
		Leeway: cfg.MayDuration("LEEWAY", 5*time.Second),
	}
	if len(c.Secret) == 0 {
		c.Secret = make([]byte, 32)
		_, _ = rand.Read(c.Secret)
		logger.Named("ticket").Warn().Msg("TICKET_SECRET not set, using an ephemeral key")
	}
	return c
}

type claims struct {
	jwt.RegisteredClaims
	Class string `json:"class"`
}

// Issuer signs and parses tickets
type Issuer struct {
	cfg Config
	now func() time.Time
}

// New validates cfg and returns an Issuer
func New(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, perr.Validationf("ticket: secret must be at least %d bytes", MinSecretLen)
	}
	if cfg.TTL <= 0 {
		return nil, perr.Validationf("ticket: ttl must be positive")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "ballotgate"
	}
	return &Issuer{cfg: cfg, now: time.Now}, nil
}

// Issue signs a ticket for p and returns it with its expiry
func (i *Issuer) Issue(p pnet.Principal) (string, time.Time, error) {
	if p.Zero() {
		return "", time.Time{}, perr.Validationf("ticket: empty principal")
	}
	now := i.now()
	exp := now.Add(i.cfg.TTL)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Class: p.Class,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, perr.Wrap(err, perr.ErrorCodeUnknown, "ticket: sign")
	}
	return s, exp, nil
}

// Parse verifies raw and returns its principal; it has the httpkit.TokenFunc shape
func (i *Issuer) Parse(raw string) (pnet.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pnet.Principal{}, perr.Unauthorizedf("ticket: empty")
	}
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return i.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(i.cfg.Leeway),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return pnet.Principal{}, perr.Wrap(err, perr.ErrorCodeUnauthorized, reason(err))
	}
	p := pnet.Principal{Subject: c.Subject, Class: c.Class}
	if p.Subject == "" || p.Class == "" {
		return pnet.Principal{}, perr.Unauthorizedf("ticket: missing subject or class")
	}
	return p, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "ticket: expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "ticket: bad signature"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "ticket: wrong issuer"
	default:
		return "ticket: invalid"
	}
}
