package devices

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	ts   = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cols = []string{"user_id", "device_id", "type", "brand", "model", "browser", "last_login", "active"}
)

func TestUpsert_UsesGreatest(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	later := ts.Add(time.Hour)
	mock.ExpectQuery(`INSERT INTO devices .* ON CONFLICT \(user_id, device_id\) .*last_login = GREATEST\(devices\.last_login, EXCLUDED\.last_login\).* RETURNING`).
		WithArgs("u1", "d1", "WEB", "acme", "x1", "firefox", ts).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("u1", "d1", "WEB", "acme", "x1", "firefox", later, true))

	got, err := repo.Upsert(context.Background(), &models.Device{
		UserID: "u1", DeviceID: "d1", Type: models.DeviceWeb, Brand: "acme", Model: "x1", Browser: "firefox", LastLogin: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, later, got.LastLogin)
	assert.True(t, got.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO devices`).WillReturnError(errors.New("db is down"))

	_, err := repo.Upsert(context.Background(), &models.Device{UserID: "u1", DeviceID: "d1", Type: models.DeviceMobile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM devices WHERE user_id = \$1 ORDER BY last_login DESC, device_id`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "d2", "DESKTOP", "", "", "", ts.Add(time.Hour), true).
			AddRow("u1", "d1", "MOBILE", "b", "m", "", ts, false))

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.DeviceDesktop, got[0].Type)
	assert.False(t, got[1].Active)
}

func TestDeactivate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE devices SET active = FALSE WHERE user_id = \$1 AND device_id = \$2`).
		WithArgs("u1", "d1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE devices SET active = FALSE`).
		WithArgs("u1", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Deactivate(context.Background(), "u1", "d1"))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), "u1", "nope"), common.ErrNotFound)
}
