package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/dmitrijs2005/glider/internal/server/validator"
)

// DeviceService is the device registry of each account.
type DeviceService struct {
	repos  repomanager.RepositoryManager
	logger logging.Logger
	now    func() time.Time
}

func NewDeviceService(repos repomanager.RepositoryManager, logger logging.Logger) *DeviceService {
	return &DeviceService{
		repos:  repos,
		logger: logger.With("module", "devices"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterOrTouch creates the device on first contact, otherwise refreshes
// its descriptors and reactivates it. last_login never moves backwards.
func (s *DeviceService) RegisterOrTouch(ctx context.Context, userID string, info models.DeviceInfo) (*models.Device, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no user", common.ErrUnauthenticated)
	}
	if !validator.InputIsValid(info.DeviceID) {
		return nil, common.NewFieldError("device_id", "required")
	}
	if info.Type == "" {
		info.Type = models.DeviceMobile
	}

	var out *models.Device
	err := s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.repos.Devices(tx).Upsert(ctx, &models.Device{
			UserID:    userID,
			DeviceID:  info.DeviceID,
			Type:      info.Type,
			Brand:     info.Brand,
			Model:     info.Model,
			Browser:   info.Browser,
			LastLogin: s.now(),
		})
		return err
	})
	if err != nil {
		return nil, classify("touch device", err)
	}
	s.logger.Debug(ctx, "device touched", "user_id", userID, "device_id", info.DeviceID)
	return out, nil
}

// ListDevices returns the caller's devices, most recently seen first.
func (s *DeviceService) ListDevices(ctx context.Context, who session.Identity) ([]*models.Device, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	var out []*models.Device
	err := s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.repos.Devices(tx).List(ctx, who.UserID)
		return err
	})
	if err != nil {
		return nil, classify("list devices", err)
	}
	return out, nil
}

// DisconnectDevice marks one of the caller's devices inactive. The record is
// kept; the next session bind from that device reactivates it.
func (s *DeviceService) DisconnectDevice(ctx context.Context, who session.Identity, deviceID string) error {
	if err := requireIdentity(who); err != nil {
		return err
	}
	if !validator.InputIsValid(deviceID) {
		return common.NewFieldError("device_id", "required")
	}
	err := s.repos.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Devices(tx).Deactivate(ctx, who.UserID, deviceID)
	})
	if err != nil {
		return classify("disconnect device", err)
	}
	s.logger.Info(ctx, "device disconnected", "user_id", who.UserID, "device_id", deviceID)
	return nil
}
