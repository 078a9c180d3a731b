package repomanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/glider/internal/common"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryManager_SharedStores(t *testing.T) {
	m := NewMemoryRepositoryManager()
	assert.Same(t, m.Passwords(nil), m.Passwords(nil))
	assert.NoError(t, m.RunMigrations(context.Background(), nil))
}

func TestMemoryManager_RollbackAcrossStores(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRepositoryManager()
	now := time.Now()

	err := m.Transactor().WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		row := &models.PasswordRow{ID: "p1", UserID: "u1", Type: models.PasswordInserted, Tail: []byte("t"), CreatedAt: now, UpdatedAt: now}
		if err := m.Passwords(tx).Create(ctx, row); err != nil {
			return err
		}
		if err := m.Events(tx).Append(ctx, &models.PasswordEvent{ID: "e1", PasswordID: "p1", Type: models.EventInserted, EventDate: now}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	_, err = m.Passwords(nil).Get(ctx, "p1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	evs, _ := m.Events(nil).History(ctx, "p1")
	assert.Empty(t, evs)
}
