// Package validator holds the input rules every vault mutation is checked
// against before any state changes. All functions are pure.
package validator

import (
	"strings"
	"unicode/utf8"
)

const (
	TailMaxLength   = 30
	ScopesMaxLength = 50

	// Defaults for Bounds when the server config does not override them.
	DefaultPasswordMinLength = 8
	DefaultPasswordMaxLength = 32
)

// Bounds is the injected [Min, Max] policy for password lengths.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds returns the stock length policy.
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultPasswordMinLength, Max: DefaultPasswordMaxLength}
}

// PasswordLengthValid reports whether length lies in [Min, Max].
func (b Bounds) PasswordLengthValid(length int) bool {
	return length >= b.Min && length <= b.Max
}

// Valid reports whether the bounds themselves make sense.
func (b Bounds) Valid() bool {
	return b.Min > 0 && b.Min <= b.Max
}

// InputIsValid is the shared rule for required text: present and not blank.
func InputIsValid(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TailIsValid: non-blank and at most TailMaxLength characters.
func TailIsValid(tail string) bool {
	return InputIsValid(tail) && utf8.RuneCountInString(tail) <= TailMaxLength
}

// ScopesAreValid accepts absent scopes or up to ScopesMaxLength characters.
func ScopesAreValid(scopes *string) bool {
	return scopes == nil || utf8.RuneCountInString(*scopes) <= ScopesMaxLength
}

// NormalizeScopes collapses blank scopes to absent. Stored scopes are
// therefore either nil or carry visible text.
func NormalizeScopes(scopes *string) *string {
	if scopes == nil || !InputIsValid(*scopes) {
		return nil
	}
	s := *scopes
	return &s
}

// SecretIsValid: non-blank with a length inside b.
func (b Bounds) SecretIsValid(secret string) bool {
	return InputIsValid(secret) && b.PasswordLengthValid(utf8.RuneCountInString(secret))
}
