// Package session turns a session token into the (user, device) identity
// every vault operation runs under.
package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID   string
	DeviceID string
}

// Empty reports whether the identity carries no user.
func (i Identity) Empty() bool {
	return i.UserID == "" || i.DeviceID == ""
}

// Verifier validates an opaque session token.
type Verifier interface {
	Verify(ctx context.Context, token string) (userID, deviceID string, err error)
}

// DeviceToucher records that a device was seen.
type DeviceToucher interface {
	RegisterOrTouch(ctx context.Context, userID string, info models.DeviceInfo) (*models.Device, error)
}

// Binder resolves tokens and keeps the device registry current.
type Binder struct {
	verifier Verifier
	devices  DeviceToucher
	logger   logging.Logger
}

func NewBinder(v Verifier, d DeviceToucher, l logging.Logger) *Binder {
	return &Binder{verifier: v, devices: d, logger: l.With("module", "session")}
}

// Resolve verifies token and touches the device it was issued to. The device
// id always comes from the token; info only supplies descriptors.
func (b *Binder) Resolve(ctx context.Context, token string, info models.DeviceInfo) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: missing token", common.ErrUnauthenticated)
	}

	userID, deviceID, err := b.verifier.Verify(ctx, token)
	if err != nil {
		b.logger.Debug(ctx, "token rejected", "error", err)
		return Identity{}, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}

	id := Identity{UserID: userID, DeviceID: deviceID}
	if id.Empty() {
		return Identity{}, fmt.Errorf("%w: token without subject", common.ErrUnauthenticated)
	}

	info.DeviceID = deviceID
	if _, err := b.devices.RegisterOrTouch(ctx, userID, info); err != nil {
		return Identity{}, err
	}
	return id, nil
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && !id.Empty()
}
