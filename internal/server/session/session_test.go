package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	user, device string
	err          error
}

func (f fakeVerifier) Verify(context.Context, string) (string, string, error) {
	return f.user, f.device, f.err
}

type fakeDevices struct {
	calls []models.DeviceInfo
	err   error
}

func (f *fakeDevices) RegisterOrTouch(_ context.Context, userID string, info models.DeviceInfo) (*models.Device, error) {
	f.calls = append(f.calls, info)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Device{UserID: userID, DeviceID: info.DeviceID, Type: info.Type}, nil
}

func TestResolve_OK(t *testing.T) {
	devs := &fakeDevices{}
	b := NewBinder(fakeVerifier{user: "u1", device: "d1"}, devs, logging.Discard())

	id, err := b.Resolve(context.Background(), "tok", models.DeviceInfo{DeviceID: "spoofed", Type: models.DeviceWeb, Browser: "firefox"})
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", DeviceID: "d1"}, id)
	require.Len(t, devs.calls, 1)
	assert.Equal(t, "d1", devs.calls[0].DeviceID)
	assert.Equal(t, "firefox", devs.calls[0].Browser)
}

func TestResolve_Unauthenticated(t *testing.T) {
	tests := []struct {
		name  string
		token string
		v     fakeVerifier
	}{
		{"missing token", "", fakeVerifier{user: "u1", device: "d1"}},
		{"verifier error", "tok", fakeVerifier{err: common.ErrTokenExpired}},
		{"no subject", "tok", fakeVerifier{user: "", device: "d1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devs := &fakeDevices{}
			b := NewBinder(tt.v, devs, logging.Discard())
			_, err := b.Resolve(context.Background(), tt.token, models.DeviceInfo{})
			assert.ErrorIs(t, err, common.ErrUnauthenticated)
			assert.Empty(t, devs.calls)
		})
	}
}

func TestResolve_KeepsVerifierCause(t *testing.T) {
	b := NewBinder(fakeVerifier{err: common.ErrTokenExpired}, &fakeDevices{}, logging.Discard())
	_, err := b.Resolve(context.Background(), "tok", models.DeviceInfo{})
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestResolve_DeviceStorageError(t *testing.T) {
	storage := errors.Join(common.ErrStorage, errors.New("down"))
	b := NewBinder(fakeVerifier{user: "u1", device: "d1"}, &fakeDevices{err: storage}, logging.Discard())
	_, err := b.Resolve(context.Background(), "tok", models.DeviceInfo{})
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NotErrorIs(t, err, common.ErrUnauthenticated)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", DeviceID: "d1"})
	id, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", id.UserID)

	_, ok = FromContext(WithIdentity(context.Background(), Identity{}))
	assert.False(t, ok)
}
