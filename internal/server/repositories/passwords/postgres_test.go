package passwords

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
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

var columns = []string{"id", "user_id", "type", "tail", "scopes", "secret", "length", "include_numbers",
	"include_uppercase_letters", "include_special_characters", "created_at", "updated_at", "deleted_at"}

var ts = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleRow() *models.PasswordRow {
	return &models.PasswordRow{
		ID:     "p1",
		UserID: "u1",
		Type:   models.PasswordGenerated,
		Tail:   []byte("t"),
		Scopes: []byte("s"),
		Secret: []byte("x"),
		Configuration: models.PasswordConfiguration{
			Length: 12, IncludeNumbers: true, IncludeUppercaseLetters: true,
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestCreate_OK(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO passwords .* VALUES \(\$1, .*\$12\)`).
		WithArgs("p1", "u1", "GENERATED", []byte("t"), []byte("s"), []byte("x"), int64(12), true, true, false, ts, ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), sampleRow()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO passwords`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), sampleRow())
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO passwords`).WillReturnError(errors.New("db is down"))

	err := repo.Create(context.Background(), sampleRow())
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	deleted := ts.Add(time.Hour)
	mock.ExpectQuery(`SELECT .* FROM passwords WHERE id = \$1$`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p1", "u1", "INSERTED", []byte("t"), nil, nil, 10, false, false, true, ts, deleted, deleted))

	row, err := repo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PasswordInserted, row.Type)
	assert.Nil(t, row.Scopes)
	assert.Nil(t, row.Secret)
	assert.True(t, row.Deleted())
	assert.Equal(t, models.PasswordConfiguration{Length: 10, IncludeSpecialCharacters: true}, row.Configuration)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM passwords WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM passwords WHERE id = \$1 FOR UPDATE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p1", "u1", "GENERATED", []byte("t"), []byte("s"), []byte("x"), int64(12), true, true, false, ts, ts, nil))

	row, err := repo.GetForUpdate(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, row.Deleted())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_UnknownType(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM passwords`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p1", "u1", "BOGUS", []byte("t"), nil, nil, 10, false, false, false, ts, ts, nil))

	_, err := repo.Get(context.Background(), "p1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		result  driver.Result
		wantErr error
	}{
		{"ok", sqlmock.NewResult(0, 1), nil},
		{"missing or deleted", sqlmock.NewResult(0, 0), common.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`UPDATE passwords SET tail = \$2, .* WHERE id = \$1 AND deleted_at IS NULL`).
				WithArgs("p1", []byte("t"), []byte("s"), []byte("x"), int64(12), true, true, false, ts).
				WillReturnResult(tt.result)

			err := repo.Update(context.Background(), sampleRow())
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUpdate_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE passwords`).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	err := repo.Update(context.Background(), sampleRow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows affected error")
}

func TestMarkDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := ts.Add(time.Minute)
	mock.ExpectExec(`UPDATE passwords SET secret = NULL, deleted_at = \$2`).
		WithArgs("p1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE passwords SET secret = NULL`).
		WithArgs("p1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkDeleted(context.Background(), "p1", at))
	assert.ErrorIs(t, repo.MarkDeleted(context.Background(), "p1", at), common.ErrNotFound)
}

func TestListActive_WithTypes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE user_id = \$1 AND deleted_at IS NULL AND type IN \(\$2, \$3\) ORDER BY created_at, id`).
		WithArgs("u1", "GENERATED", "INSERTED").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p1", "u1", "GENERATED", []byte("t"), nil, []byte("x"), 12, true, false, false, ts, ts, nil).
			AddRow("p2", "u1", "INSERTED", []byte("t2"), []byte("s"), []byte("y"), 9, false, false, false, ts, ts, nil))

	rows, err := repo.ListActive(context.Background(), "u1",
		[]models.PasswordType{models.PasswordGenerated, models.PasswordInserted})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p2", rows[1].ID)
}

func TestListActive_NoFilterQueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE user_id = \$1 AND deleted_at IS NULL ORDER BY created_at, id`).
		WithArgs("u1").
		WillReturnError(errors.New("boom"))

	_, err := repo.ListActive(context.Background(), "u1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select passwords")
}
