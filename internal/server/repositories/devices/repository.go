package devices

import (
	"context"

	"github.com/dmitrijs2005/glider/internal/server/models"
)

type Repository interface {
	// Upsert creates the device or refreshes its descriptors, reactivates it
	// and moves last_login forward. last_login never goes back.
	Upsert(ctx context.Context, d *models.Device) (*models.Device, error)
	List(ctx context.Context, userID string) ([]*models.Device, error)
	// Deactivate marks the device inactive; common.ErrNotFound if unknown.
	Deactivate(ctx context.Context, userID, deviceID string) error
}
