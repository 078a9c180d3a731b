package models

import "time"

// Device is a client device connected to a user's account.
type Device struct {
	UserID    string
	DeviceID  string
	Type      DeviceType
	Brand     string
	Model     string
	Browser   string
	LastLogin time.Time
	Active    bool
}

// DeviceInfo is what a client reports about itself when a session binds.
type DeviceInfo struct {
	DeviceID string
	Type     DeviceType
	Brand    string
	Model    string
	Browser  string
}
