package events

import (
	"context"

	"github.com/dmitrijs2005/glider/internal/server/models"
)

// Repository is append-only: there is no way to change or remove an event.
type Repository interface {
	// Append stores ev and sets ev.Seq.
	Append(ctx context.Context, ev *models.PasswordEvent) error
	// History returns the events of one password ordered by (event_date, seq).
	History(ctx context.Context, passwordID string) ([]*models.PasswordEvent, error)
}
