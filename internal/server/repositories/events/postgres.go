// Package events stores the password lifecycle audit log.
package events

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, ev *models.PasswordEvent) error {
	query := `
		INSERT INTO password_events (id, password_id, user_id, device_id, type, event_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`
	err := r.db.QueryRowContext(ctx, query,
		ev.ID, ev.PasswordID, ev.UserID, ev.DeviceID, string(ev.Type), ev.EventDate,
	).Scan(&ev.Seq)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) History(ctx context.Context, passwordID string) ([]*models.PasswordEvent, error) {
	query := `
		SELECT id, password_id, user_id, device_id, type, event_date, seq
		FROM password_events WHERE password_id = $1
		ORDER BY event_date, seq
	`
	rows, err := r.db.QueryContext(ctx, query, passwordID)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	var result []*models.PasswordEvent
	for rows.Next() {
		var (
			item models.PasswordEvent
			typ  string
		)
		if err := rows.Scan(&item.ID, &item.PasswordID, &item.UserID, &item.DeviceID, &typ, &item.EventDate, &item.Seq); err != nil {
			return nil, err
		}
		if item.Type, err = models.ParseEventType(typ); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
