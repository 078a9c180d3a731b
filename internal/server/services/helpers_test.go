package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/logging"
	"github.com/dmitrijs2005/glider/internal/server/generator"
	"github.com/dmitrijs2005/glider/internal/server/models"
	"github.com/dmitrijs2005/glider/internal/server/repositories/events"
	"github.com/dmitrijs2005/glider/internal/server/repositories/passwords"
	"github.com/dmitrijs2005/glider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/glider/internal/server/session"
	"github.com/dmitrijs2005/glider/internal/server/validator"
	"github.com/stretchr/testify/require"
)

var (
	alice    = session.Identity{UserID: "alice", DeviceID: "alice-phone"}
	aliceWeb = session.Identity{UserID: "alice", DeviceID: "alice-web"}
	bob      = session.Identity{UserID: "bob", DeviceID: "bob-laptop"}
)

func ptr[T any](v T) *T { return &v }

func newSealer(t *testing.T) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer(bytes.Repeat([]byte{42}, cryptox.KeySize))
	require.NoError(t, err)
	return s
}

func newVault(t *testing.T, repos repomanager.RepositoryManager) *VaultService {
	t.Helper()
	return NewVaultService(repos, generator.New(validator.DefaultBounds()), newSealer(t), NewEventLog(repos), logging.Discard())
}

// failingEvents refuses every append.
type failingEvents struct {
	events.Repository
}

func (failingEvents) Append(context.Context, *models.PasswordEvent) error {
	return errors.New("event store unavailable")
}

// brokenEventsManager is the memory backend with a failing event store.
type brokenEventsManager struct {
	*repomanager.MemoryRepositoryManager
}

func (m brokenEventsManager) Events(tx dbx.DBTX) events.Repository {
	return failingEvents{m.MemoryRepositoryManager.Events(tx)}
}

// uuidColumnPasswords fails lookups the way a UUID column does on text that
// is not a UUID.
type uuidColumnPasswords struct {
	passwords.Repository
}

func (uuidColumnPasswords) Get(context.Context, string) (*models.PasswordRow, error) {
	return nil, errors.New("invalid input syntax for type uuid (SQLSTATE 22P02)")
}

func (p uuidColumnPasswords) GetForUpdate(ctx context.Context, id string) (*models.PasswordRow, error) {
	return p.Get(ctx, id)
}

type uuidColumnManager struct {
	*repomanager.MemoryRepositoryManager
}

func (m uuidColumnManager) Passwords(tx dbx.DBTX) passwords.Repository {
	return uuidColumnPasswords{m.MemoryRepositoryManager.Passwords(tx)}
}

func eventTypes(evs []models.PasswordEvent) []models.EventType {
	out := make([]models.EventType, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}
