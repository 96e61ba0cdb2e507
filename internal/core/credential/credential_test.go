package credential

import (
	"errors"
	"strings"
	"testing"

	"ballotgate/internal/platform/config"
	perr "ballotgate/internal/platform/errors"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// fastArgon keeps the test suite quick
func fastArgon() Argon2 {
	cfg := argon2.DefaultConfig()
	cfg.TimeCost = 1
	cfg.MemoryCost = 8 * 1024
	return Argon2{Config: cfg}
}

func TestHashVerify_RoundTrip(t *testing.T) {
	hashers := map[string]Hasher{
		"bcrypt": Bcrypt{Cost: bcrypt.MinCost},
		"argon2": fastArgon(),
	}
	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			stored, err := h.Hash("s3cret")
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			if stored == "s3cret" {
				t.Fatal("hash must not be the plaintext")
			}
			if !Verify("s3cret", stored) {
				t.Fatal("correct secret rejected")
			}
			if Verify("s3cret!", stored) || Verify("", stored) {
				t.Fatal("wrong secret accepted")
			}
		})
	}
}

func TestHash_EmptySecret(t *testing.T) {
	for _, h := range []Hasher{Bcrypt{}, fastArgon()} {
		if _, err := h.Hash(""); !errors.Is(err, ErrEmptySecret) {
			t.Fatalf("%T: err = %v", h, err)
		}
	}
}

func TestBcrypt_OverlongSecretIsValidation(t *testing.T) {
	_, err := Bcrypt{Cost: bcrypt.MinCost}.Hash(strings.Repeat("a", 100))
	pe, ok := perr.As(err)
	if !ok || pe.Code() != perr.ErrorCodeValidation || pe.Field() != "secret" {
		t.Fatalf("err = %v", err)
	}
	if _, err := (Bcrypt{Cost: bcrypt.MinCost}).Hash(strings.Repeat("a", MaxSecretLen)); err != nil {
		t.Fatalf("%d byte secret: %v", MaxSecretLen, err)
	}
}

func TestVerify_MalformedNeverMatches(t *testing.T) {
	for _, stored := range []string{
		"",
		"plaintext",
		"$2b$",
		"$2a$10$tooshort",
		"$argon2id$v=19$garbage",
		"$argon2id$v=19$m=65536,t=1,p=2$bad$bad",
		"$1$md5$hash",
	} {
		if Verify("s3cret", stored) {
			t.Fatalf("Verify accepted malformed hash %q", stored)
		}
	}
}

func TestVerify_AcceptsEitherScheme(t *testing.T) {
	b, _ := Bcrypt{Cost: bcrypt.MinCost}.Hash("pw")
	a, _ := fastArgon().Hash("pw")
	if !strings.HasPrefix(b, "$2") || !strings.HasPrefix(a, "$argon2") {
		t.Fatalf("unexpected prefixes %q %q", b[:4], a[:7])
	}
	if !Verify("pw", b) || !Verify("pw", a) {
		t.Fatal("mixed schemes must both verify")
	}
}

func TestArgon2_ZeroConfigUsesDefaults(t *testing.T) {
	h, err := Argon2{}.Hash("pw")
	if err != nil || !Verify("pw", h) {
		t.Fatalf("zero config hash %q, %v", h, err)
	}
}

func TestGenerateSecret(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		s, err := GenerateSecret(DefaultSecretLength)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(s) != DefaultSecretLength {
			t.Fatalf("len = %d", len(s))
		}
		for _, r := range s {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("unexpected rune %q in %q", r, s)
			}
		}
		seen[s] = true
	}
	if len(seen) < 195 {
		t.Fatalf("only %d distinct secrets of 200", len(seen))
	}
	for _, n := range []int{0, -3} {
		if _, err := GenerateSecret(n); err == nil {
			t.Fatalf("GenerateSecret(%d) should fail", n)
		}
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.New().Prefix("CRED_")
	t.Setenv("CRED_SCHEME", "")
	t.Setenv("CRED_SECRET_LENGTH", "")
	s := FromConfig(cfg)
	if s.Scheme != "bcrypt" || s.SecretLength != DefaultSecretLength {
		t.Fatalf("defaults = %+v", s)
	}
	if _, ok := s.Hasher().(Bcrypt); !ok {
		t.Fatalf("default hasher = %T", s.Hasher())
	}

	t.Setenv("CRED_SCHEME", "ARGON2")
	t.Setenv("CRED_SECRET_LENGTH", "12")
	s = FromConfig(cfg)
	if _, ok := s.Hasher().(Argon2); !ok || s.SecretLength != 12 {
		t.Fatalf("argon settings = %+v (%T)", s, s.Hasher())
	}
}
