// Package common contains shared constants and sentinel errors used across
// Glider components.
package common

const (
	// AccessTokenHeaderName is the gRPC metadata key carrying the session token.
	AccessTokenHeaderName = "session_id"

	// IdempotencyKeyHeaderName lets clients retry create calls safely.
	IdempotencyKeyHeaderName = "idempotency-key"

	// Device descriptors sent alongside the token on every call. They are
	// used to create the device record on first contact.
	DeviceTypeHeaderName    = "device-type"
	DeviceBrandHeaderName   = "device-brand"
	DeviceModelHeaderName   = "device-model"
	DeviceBrowserHeaderName = "device-browser"
)
