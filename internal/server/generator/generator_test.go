package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsAny(s, set string) bool {
	return strings.ContainsAny(s, set)
}

func onlyFrom(s, pool string) bool {
	for _, r := range s {
		if !strings.ContainsRune(pool, r) {
			return false
		}
	}
	return true
}

func TestGenerate_AllConfigurations(t *testing.T) {
	p := New(validator.DefaultBounds())

	for length := 8; length <= 32; length += 4 {
		for mask := 0; mask < 8; mask++ {
			cfg := models.PasswordConfiguration{
				Length:                   length,
				IncludeNumbers:           mask&1 != 0,
				IncludeUppercaseLetters:  mask&2 != 0,
				IncludeSpecialCharacters: mask&4 != 0,
			}
			secret, err := p.Generate(cfg)
			require.NoError(t, err, "%+v", cfg)
			require.Len(t, secret, length)

			pool := Lowercase
			if cfg.IncludeNumbers {
				pool += Digits
			}
			if cfg.IncludeUppercaseLetters {
				pool += Uppercase
			}
			if cfg.IncludeSpecialCharacters {
				pool += Specials
			}
			assert.True(t, onlyFrom(secret, pool), "secret %q escapes pool for %+v", secret, cfg)
			assert.True(t, containsAny(secret, Lowercase), "lowercase missing in %q", secret)
			assert.Equal(t, cfg.IncludeNumbers, containsAny(secret, Digits), "digits in %q for %+v", secret, cfg)
			assert.Equal(t, cfg.IncludeUppercaseLetters, containsAny(secret, Uppercase), "uppercase in %q for %+v", secret, cfg)
			assert.Equal(t, cfg.IncludeSpecialCharacters, containsAny(secret, Specials), "specials in %q for %+v", secret, cfg)
			assert.True(t, Conforms(secret, cfg))
		}
	}
}

func TestGenerate_ScenarioLength12Alphanumeric(t *testing.T) {
	p := New(validator.DefaultBounds())
	cfg := models.PasswordConfiguration{Length: 12, IncludeNumbers: true, IncludeUppercaseLetters: true}

	secret, err := p.Generate(cfg)
	require.NoError(t, err)
	assert.Len(t, secret, 12)
	assert.True(t, onlyFrom(secret, Lowercase+Digits+Uppercase))
}

func TestGenerate_InvalidConfiguration(t *testing.T) {
	p := New(validator.Bounds{Min: 2, Max: 16})

	tests := []struct {
		name string
		cfg  models.PasswordConfiguration
	}{
		{"below min", models.PasswordConfiguration{Length: 1}},
		{"above max", models.PasswordConfiguration{Length: 17}},
		{"zero", models.PasswordConfiguration{}},
		{"too short for classes", models.PasswordConfiguration{
			Length: 3, IncludeNumbers: true, IncludeUppercaseLetters: true, IncludeSpecialCharacters: true,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Generate(tt.cfg)
			assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerate_RandomSourceFailure(t *testing.T) {
	p := NewWithReader(validator.DefaultBounds(), failingReader{})
	_, err := p.Generate(models.PasswordConfiguration{Length: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestGenerate_Distinct(t *testing.T) {
	p := New(validator.DefaultBounds())
	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		s, err := p.Generate(models.PasswordConfiguration{Length: 16, IncludeNumbers: true})
		require.NoError(t, err)
		_, dup := seen[s]
		require.False(t, dup, "duplicate secret %q", s)
		seen[s] = struct{}{}
	}
}

func TestRefresh_ChangesSecretKeepsShape(t *testing.T) {
	p := New(validator.DefaultBounds())
	cfg := models.PasswordConfiguration{Length: 20, IncludeUppercaseLetters: true, IncludeSpecialCharacters: true}
	first, err := p.Generate(cfg)
	require.NoError(t, err)

	pw := &models.Password{Secret: first, Configuration: cfg}
	for i := 0; i < 50; i++ {
		next, err := p.Refresh(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw.Secret, next)
		assert.True(t, Conforms(next, cfg))
		pw.Secret = next
	}
}

func TestRefresh_InvalidStoredConfiguration(t *testing.T) {
	p := New(validator.DefaultBounds())
	_, err := p.Refresh(&models.Password{Configuration: models.PasswordConfiguration{Length: 64}})
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestRefresh_CannotDiffer(t *testing.T) {
	// an all-zero reader always draws index 0, so every secret is "aa"
	p := NewWithReader(validator.Bounds{Min: 1, Max: 4}, zeroReader{})
	cfg := models.PasswordConfiguration{Length: 2}
	secret, err := p.Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, "aa", secret)

	_, err = p.Refresh(&models.Password{Secret: secret, Configuration: cfg})
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

type zeroReader struct{}

func (zeroReader) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = 0
	}
	return len(b), nil
}

func TestConforms(t *testing.T) {
	cfg := models.PasswordConfiguration{Length: 12, IncludeNumbers: true, IncludeUppercaseLetters: true}
	assert.True(t, Conforms("abcDEF123xyz", cfg))
	assert.False(t, Conforms("abcDEF123xy", cfg), "short")
	assert.False(t, Conforms("abcDEF123xy!", cfg), "special not enabled")
	assert.True(t, Conforms("abcdefghijkl", cfg), "classes are allowed, not required")
}

func TestInferConfiguration(t *testing.T) {
	assert.Equal(t, models.PasswordConfiguration{Length: 8}, InferConfiguration("abcdefgh"))
	assert.Equal(t,
		models.PasswordConfiguration{Length: 10, IncludeNumbers: true, IncludeUppercaseLetters: true, IncludeSpecialCharacters: true},
		InferConfiguration("aB3!aB3!é "),
	)
	assert.Equal(t, models.PasswordConfiguration{Length: 4, IncludeNumbers: true}, InferConfiguration("1234"))
}
