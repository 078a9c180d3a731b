// Package devices stores the devices connected to each account.
package devices

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const columns = `user_id, device_id, type, brand, model, browser, last_login, active`

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*models.Device, error) {
	var (
		d   models.Device
		typ string
	)
	if err := s.Scan(&d.UserID, &d.DeviceID, &typ, &d.Brand, &d.Model, &d.Browser, &d.LastLogin, &d.Active); err != nil {
		return nil, err
	}
	t, err := models.ParseDeviceType(typ)
	if err != nil {
		return nil, err
	}
	d.Type = t
	return &d, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, d *models.Device) (*models.Device, error) {
	query := `
		INSERT INTO devices (user_id, device_id, type, brand, model, browser, last_login, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (user_id, device_id)
		DO UPDATE SET
			type = EXCLUDED.type,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			browser = EXCLUDED.browser,
			last_login = GREATEST(devices.last_login, EXCLUDED.last_login),
			active = TRUE
		RETURNING ` + columns
	row := r.db.QueryRowContext(ctx, query,
		d.UserID, d.DeviceID, string(d.Type), d.Brand, d.Model, d.Browser, d.LastLogin)
	out, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Device, error) {
	query := `SELECT ` + columns + ` FROM devices WHERE user_id = $1 ORDER BY last_login DESC, device_id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select devices: %w", err)
	}
	defer rows.Close()

	var result []*models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, userID, deviceID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE devices SET active = FALSE WHERE user_id = $1 AND device_id = $2`, userID, deviceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
