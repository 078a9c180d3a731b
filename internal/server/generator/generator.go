// Package generator produces password secrets under a configuration and
// the server's length bounds. It only ever reads from a cryptographically
// secure random source.
package generator

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/validator"
)

// Character classes. Lowercase is always in the pool.
const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Specials  = "!@#$%^&*()-_=+[]{}|;:'\",.<>?/\\`~"
)

// maxRefreshAttempts bounds how often Refresh regenerates when it happens
// to draw the current secret again.
const maxRefreshAttempts = 8

// Policy generates secrets within fixed length bounds.
type Policy struct {
	bounds validator.Bounds
	random io.Reader
}

// New returns a Policy reading from crypto/rand.
func New(bounds validator.Bounds) *Policy {
	return NewWithReader(bounds, rand.Reader)
}

// NewWithReader returns a Policy reading from r. r must be a CSPRNG; tests
// use it to inject failures.
func NewWithReader(bounds validator.Bounds, r io.Reader) *Policy {
	return &Policy{bounds: bounds, random: r}
}

// Bounds returns the length bounds the policy enforces.
func (p *Policy) Bounds() validator.Bounds {
	return p.bounds
}

// Validate checks cfg without generating anything.
func (p *Policy) Validate(cfg models.PasswordConfiguration) error {
	if !p.bounds.PasswordLengthValid(cfg.Length) {
		return fmt.Errorf("%w: length %d outside [%d, %d]",
			common.ErrInvalidConfiguration, cfg.Length, p.bounds.Min, p.bounds.Max)
	}
	if n := len(classes(cfg)); cfg.Length < n {
		return fmt.Errorf("%w: length %d cannot hold %d character classes",
			common.ErrInvalidConfiguration, cfg.Length, n)
	}
	return nil
}

// Generate returns a secret of exactly cfg.Length characters. Every enabled
// class, lowercase included, occurs at least once; the remaining positions
// are drawn uniformly from the union of the enabled classes.
func (p *Policy) Generate(cfg models.PasswordConfiguration) (string, error) {
	if err := p.Validate(cfg); err != nil {
		return "", err
	}

	sets := classes(cfg)
	pool := strings.Join(sets, "")

	out := make([]byte, 0, cfg.Length)
	for _, set := range sets {
		c, err := p.pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < cfg.Length {
		c, err := p.pick(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := p.shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// Refresh generates a new secret with the configuration stored on pw. The
// result always differs from pw.Secret.
func (p *Policy) Refresh(pw *models.Password) (string, error) {
	for range maxRefreshAttempts {
		secret, err := p.Generate(pw.Configuration)
		if err != nil {
			return "", err
		}
		if secret != pw.Secret {
			return secret, nil
		}
	}
	return "", fmt.Errorf("%w: configuration does not yield a different secret", common.ErrInvalidConfiguration)
}

// Conforms reports whether secret has the length of cfg and uses only
// characters from its pool.
func Conforms(secret string, cfg models.PasswordConfiguration) bool {
	if utf8.RuneCountInString(secret) != cfg.Length {
		return false
	}
	pool := strings.Join(classes(cfg), "")
	for _, r := range secret {
		if !strings.ContainsRune(pool, r) {
			return false
		}
	}
	return true
}

// InferConfiguration derives the configuration a secret was built with.
// Characters outside letters and digits count as specials.
func InferConfiguration(secret string) models.PasswordConfiguration {
	cfg := models.PasswordConfiguration{Length: utf8.RuneCountInString(secret)}
	for _, r := range secret {
		switch {
		case strings.ContainsRune(Lowercase, r):
		case strings.ContainsRune(Digits, r):
			cfg.IncludeNumbers = true
		case strings.ContainsRune(Uppercase, r):
			cfg.IncludeUppercaseLetters = true
		default:
			cfg.IncludeSpecialCharacters = true
		}
	}
	return cfg
}

func classes(cfg models.PasswordConfiguration) []string {
	sets := []string{Lowercase}
	if cfg.IncludeNumbers {
		sets = append(sets, Digits)
	}
	if cfg.IncludeUppercaseLetters {
		sets = append(sets, Uppercase)
	}
	if cfg.IncludeSpecialCharacters {
		sets = append(sets, Specials)
	}
	return sets
}

func (p *Policy) intn(n int) (int, error) {
	v, err := rand.Int(p.random, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random source: %w", err)
	}
	return int(v.Int64()), nil
}

func (p *Policy) pick(set string) (byte, error) {
	i, err := p.intn(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// shuffle is a Fisher–Yates pass so the guaranteed characters do not sit
// at predictable positions.
func (p *Policy) shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := p.intn(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
