// Package common defines shared constants and sentinel errors used across
// client and server layers of Glider. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Input errors. Detected before any state change.
	ErrValidation           = errors.New("validation error")
	ErrInvalidConfiguration = errors.New("invalid password configuration")

	// Lookup / ownership errors.
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Session errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")

	// Storage errors. Never swallowed: callers reconcile or retry.
	ErrStorage       = errors.New("storage failure")
	ErrAlreadyExists = errors.New("already exists")
)
