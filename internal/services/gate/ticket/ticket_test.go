package ticket

import (
	"strings"
	"testing"
	"time"

	"ballotgate/internal/platform/config"
	perr "ballotgate/internal/platform/errors"
	pnet "ballotgate/internal/platform/net"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func issuer(t *testing.T, at time.Time) *Issuer {
	t.Helper()
	i, err := New(Config{Secret: secret, Issuer: "test", TTL: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	i.now = func() time.Time { return at }
	return i
}

func TestIssueParse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	i := issuer(t, now)
	p := pnet.Principal{Subject: "V001", Class: "elector"}

	tok, exp, err := i.Issue(p)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Minute)) {
		t.Fatalf("exp = %v", exp)
	}
	got, err := i.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != p {
		t.Fatalf("principal = %+v", got)
	}
}

func TestParse_Rejects(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	i := issuer(t, now)
	tok, _, _ := i.Issue(pnet.Principal{Subject: "V001", Class: "elector"})

	other, _ := New(Config{Secret: []byte("ffffffffffffffffffffffffffffffff"), Issuer: "test", TTL: time.Minute})
	other.now = i.now
	wrongIss, _ := New(Config{Secret: secret, Issuer: "elsewhere", TTL: time.Minute})
	wrongIss.now = i.now
	foreign, _, _ := wrongIss.Issue(pnet.Principal{Subject: "V001", Class: "elector"})

	late := issuer(t, now.Add(2*time.Minute))

	cases := []struct {
		name string
		p    *Issuer
		tok  string
		msg  string
	}{
		{"empty", i, "  ", "ticket: empty"},
		{"garbage", i, "not.a.jwt", "ticket: invalid"},
		{"signature", other, tok, "ticket: bad signature"},
		{"issuer", i, foreign, "ticket: wrong issuer"},
		{"expired", late, tok, "ticket: expired"},
		{"tampered", i, tok[:len(tok)-2] + "xx", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.p.Parse(tc.tok)
			if !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
				t.Fatalf("err = %v", err)
			}
			if tc.msg != "" && !strings.HasPrefix(err.Error(), tc.msg) {
				t.Fatalf("err = %v, want %s", err, tc.msg)
			}
		})
	}
}

func TestNew_Validates(t *testing.T) {
	if _, err := New(Config{Secret: []byte("short"), TTL: time.Minute}); err == nil {
		t.Fatal("short secret accepted")
	}
	if _, err := New(Config{Secret: secret}); err == nil {
		t.Fatal("zero ttl accepted")
	}
	i, err := New(Config{Secret: secret, TTL: time.Second})
	if err != nil || i.cfg.Issuer != "ballotgate" {
		t.Fatalf("default issuer: %v", err)
	}
	if _, _, err := i.Issue(pnet.Principal{}); err == nil {
		t.Fatal("empty principal issued")
	}
}

func TestFromConfig_EphemeralSecret(t *testing.T) {
	t.Setenv("TICKET_SECRET", "")
	t.Setenv("TICKET_TTL", "90s")
	c := FromConfig(config.New().Prefix("TICKET_"))
	if len(c.Secret) != 32 || c.TTL != 90*time.Second {
		t.Fatalf("config = %+v", c)
	}
	if _, err := New(c); err != nil {
		t.Fatalf("New: %v", err)
	}
}
