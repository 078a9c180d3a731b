// Package passwords persists sealed vault entries. The PostgreSQL
// implementation works over a dbx.DBTX; the memory one backs servers started
// without a DSN.
package passwords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `id, user_id, type, tail, scopes, secret, length, include_numbers,
		include_uppercase_letters, include_special_characters, created_at, updated_at, deleted_at`

func (r *PostgresRepository) Create(ctx context.Context, row *models.PasswordRow) error {
	query := `
		INSERT INTO passwords (id, user_id, type, tail, scopes, secret, length, include_numbers,
			include_uppercase_letters, include_special_characters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	c := row.Configuration
	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.UserID, string(row.Type), row.Tail, row.Scopes, row.Secret,
		c.Length, c.IncludeNumbers, c.IncludeUppercaseLetters, c.IncludeSpecialCharacters,
		row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("password %s: %w", row.ID, common.ErrAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.PasswordRow, error) {
	query := `SELECT ` + selectColumns + ` FROM passwords WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.PasswordRow, error) {
	query := `SELECT ` + selectColumns + ` FROM passwords WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, id string) (*models.PasswordRow, error) {
	row, err := scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row, nil
}

func (r *PostgresRepository) Update(ctx context.Context, row *models.PasswordRow) error {
	query := `
		UPDATE passwords SET tail = $2, scopes = $3, secret = $4, length = $5, include_numbers = $6,
			include_uppercase_letters = $7, include_special_characters = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`
	c := row.Configuration
	res, err := r.db.ExecContext(ctx, query,
		row.ID, row.Tail, row.Scopes, row.Secret,
		c.Length, c.IncludeNumbers, c.IncludeUppercaseLetters, c.IncludeSpecialCharacters,
		row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// MarkDeleted tombstones the row and drops its secret.
func (r *PostgresRepository) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE passwords SET secret = NULL, deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// ListActive returns the user's live rows oldest first, optionally only
// those of the given types.
func (r *PostgresRepository) ListActive(ctx context.Context, userID string, types []models.PasswordType) ([]*models.PasswordRow, error) {
	query := `SELECT ` + selectColumns + ` FROM passwords
		WHERE user_id = $1 AND deleted_at IS NULL`
	args := []any{userID}
	if len(types) > 0 {
		query += ` AND type IN (`
		for i, t := range types {
			if i > 0 {
				query += `, `
			}
			args = append(args, string(t))
			query += fmt.Sprintf("$%d", len(args))
		}
		query += `)`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select passwords: %w", err)
	}
	defer rows.Close()

	var result []*models.PasswordRow
	for rows.Next() {
		item, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*models.PasswordRow, error) {
	var (
		item      models.PasswordRow
		typ       string
		deletedAt sql.NullTime
	)
	c := &item.Configuration
	if err := s.Scan(
		&item.ID, &item.UserID, &typ, &item.Tail, &item.Scopes, &item.Secret,
		&c.Length, &c.IncludeNumbers, &c.IncludeUppercaseLetters, &c.IncludeSpecialCharacters,
		&item.CreatedAt, &item.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	t, err := models.ParsePasswordType(typ)
	if err != nil {
		return nil, err
	}
	item.Type = t
	if deletedAt.Valid {
		d := deletedAt.Time
		item.DeletedAt = &d
	}
	return &item, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
