package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/glider/internal/dbx"
	"github.com/dmitrijs2005/glider/internal/server/repositories/devices"
	"github.com/dmitrijs2005/glider/internal/server/repositories/events"
	"github.com/dmitrijs2005/glider/internal/server/repositories/passwords"
)

// RepositoryManager vends repositories bound to a handle obtained from its
// Transactor, so all repositories used in one unit of work share it.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Transactor() dbx.Transactor
	Passwords(db dbx.DBTX) passwords.Repository
	Events(db dbx.DBTX) events.Repository
	Devices(db dbx.DBTX) devices.Repository
}
