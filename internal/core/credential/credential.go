// Package credential hashes and verifies participant secrets
//
// Stored hashes are self describing, so Verify accepts bcrypt and argon2 hashes
// side by side no matter which Hasher produced new ones.
package credential

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"ballotgate/internal/platform/config"
	perr "ballotgate/internal/platform/errors"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Secret lengths
const (
	// DefaultSecretLength is the generated secret length
	DefaultSecretLength = 8
	// MaxSecretLen is the longest secret bcrypt accepts, in bytes
	MaxSecretLen = 72
)

// alphabet is ascii letters and digits
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrEmptySecret is returned when hashing an empty secret
var ErrEmptySecret = errors.New("credential: empty secret")

// Hasher produces a stored hash for a secret
type Hasher interface {
	Hash(secret string) (string, error)
}

// Bcrypt hashes with bcrypt at Cost; a zero Cost means bcrypt.DefaultCost
type Bcrypt struct {
	Cost int
}

// Hash implements Hasher
func (b Bcrypt) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", perr.WithField(perr.Validationf("secret must be at most %d bytes", MaxSecretLen), "secret")
	}
	if err != nil {
		return "", fmt.Errorf("credential: bcrypt: %w", err)
	}
	return string(h), nil
}

// Argon2 hashes with argon2id in the PHC string format
type Argon2 struct {
	Config argon2.Config
}

// NewArgon2 returns an Argon2 hasher with the library defaults
func NewArgon2() Argon2 { return Argon2{Config: argon2.DefaultConfig()} }

// Hash implements Hasher
func (a Argon2) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	cfg := a.Config
	if cfg.HashLength == 0 {
		cfg = argon2.DefaultConfig()
	}
	h, err := cfg.HashEncoded([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("credential: argon2: %w", err)
	}
	return string(h), nil
}

// Verify reports whether secret produces stored
// both primitives compare in constant time; malformed or unknown hashes are false
func Verify(secret, stored string) bool {
	switch {
	case isBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
	case strings.HasPrefix(stored, "$argon2"):
		ok, err := argon2.VerifyEncoded([]byte(secret), []byte(stored))
		return err == nil && ok
	}
	return false
}

func isBcrypt(s string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// GenerateSecret draws n characters uniformly from ascii letters and digits
func GenerateSecret(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("credential: secret length %d must be positive", n)
	}
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		k, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("credential: random: %w", err)
		}
		b.WriteByte(alphabet[k.Int64()])
	}
	return b.String(), nil
}

// Settings is the credential configuration under CRED_
type Settings struct {
	Scheme       string
	BcryptCost   int
	SecretLength int
}

// FromConfig reads CRED_SCHEME (bcrypt or argon2), CRED_BCRYPT_COST and CRED_SECRET_LENGTH
func FromConfig(cfg config.Conf) Settings {
	return Settings{
		Scheme:       cfg.MayEnum("SCHEME", "bcrypt", "bcrypt", "argon2"),
		BcryptCost:   cfg.MayInt("BCRYPT_COST", bcrypt.DefaultCost),
		SecretLength: cfg.MayInt("SECRET_LENGTH", DefaultSecretLength),
	}
}

// Hasher returns the Hasher the settings select
func (s Settings) Hasher() Hasher {
	if s.Scheme == "argon2" {
		return NewArgon2()
	}
	return Bcrypt{Cost: s.BcryptCost}
}
