// Package models defines the vault's server-side data model: devices,
// passwords, and their lifecycle events.
package models

import "fmt"

// DeviceType is the closed set of client kinds a device can be.
type DeviceType string

const (
	DeviceMobile  DeviceType = "MOBILE"
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceWeb     DeviceType = "WEB"
)

// ParseDeviceType maps a wire value to a DeviceType. Empty input defaults to
// MOBILE, as the first Glider clients were mobile-only.
func ParseDeviceType(s string) (DeviceType, error) {
	switch DeviceType(s) {
	case "":
		return DeviceMobile, nil
	case DeviceMobile, DeviceDesktop, DeviceWeb:
		return DeviceType(s), nil
	default:
		return "", fmt.Errorf("unknown device type %q", s)
	}
}

// EventType is the closed set of password lifecycle events.
type EventType string

const (
	EventGenerated EventType = "GENERATED"
	EventInserted  EventType = "INSERTED"
	EventCopied    EventType = "COPIED"
	EventEdited    EventType = "EDITED"
	EventRefreshed EventType = "REFRESHED"
)

func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventGenerated, EventInserted, EventCopied, EventEdited, EventRefreshed:
		return EventType(s), nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// PasswordType records how a password entered the vault.
type PasswordType string

const (
	PasswordGenerated PasswordType = "GENERATED"
	PasswordInserted  PasswordType = "INSERTED"
)

func ParsePasswordType(s string) (PasswordType, error) {
	switch PasswordType(s) {
	case PasswordGenerated, PasswordInserted:
		return PasswordType(s), nil
	default:
		return "", fmt.Errorf("unknown password type %q", s)
	}
}

// CreationEvent is the event that must open the history of a password of
// type t.
func (t PasswordType) CreationEvent() EventType {
	switch t {
	case PasswordGenerated:
		return EventGenerated
	case PasswordInserted:
		return EventInserted
	default:
		panic(fmt.Sprintf("unhandled password type %q", string(t)))
	}
}
