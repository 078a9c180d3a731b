package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/repositories/devices"
	"github.com/dmitrijs2005/glider/internal/server/repositories/events"
	"github.com/dmitrijs2005/glider/internal/server/repositories/passwords"
)

// MemoryRepositoryManager keeps everything in process memory. The handle
// passed to the factories is ignored; every call returns the same stores.
type MemoryRepositoryManager struct {
	passwords *passwords.MemoryRepository
	events    *events.MemoryRepository
	devices   *devices.MemoryRepository
	tx        *dbx.MemoryTransactor
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	m := &MemoryRepositoryManager{
		passwords: passwords.NewMemoryRepository(),
		events:    events.NewMemoryRepository(),
		devices:   devices.NewMemoryRepository(),
	}
	m.tx = dbx.NewMemoryTransactor()
	return m
}

// RunMigrations is a no-op; there is no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Transactor() dbx.Transactor { return m.tx }

func (m *MemoryRepositoryManager) Passwords(dbx.DBTX) passwords.Repository { return m.passwords }

func (m *MemoryRepositoryManager) Events(dbx.DBTX) events.Repository { return m.events }

func (m *MemoryRepositoryManager) Devices(dbx.DBTX) devices.Repository { return m.devices }
