package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/anonid/internal/dbx"
	"github.com/dmitrijs2005/anonid/internal/server/repositories/registrations"
)

// RepositoryManager hands out repositories bound to a DB handle or an open
// transaction, and prepares the schema they rely on.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Registrations(db dbx.DBTX) registrations.Repository
}
