package passwords

import (
	"context"
	"time"

	"github.com/dmitrijs2005/glider/internal/server/models"
)

// Repository stores sealed password rows. Get and GetForUpdate return
// common.ErrNotFound for unknown ids, tombstones included in the result.
type Repository interface {
	Create(ctx context.Context, row *models.PasswordRow) error
	Get(ctx context.Context, id string) (*models.PasswordRow, error)
	GetForUpdate(ctx context.Context, id string) (*models.PasswordRow, error)
	Update(ctx context.Context, row *models.PasswordRow) error
	MarkDeleted(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context, userID string, types []models.PasswordType) ([]*models.PasswordRow, error)
}
