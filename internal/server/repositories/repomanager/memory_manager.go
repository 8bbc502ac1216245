package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/anonid/internal/dbx"
	"github.com/dmitrijs2005/anonid/internal/server/repositories/registrations"
)

// MemoryRepositoryManager serves a single in-memory store. The DB handle
// passed to its factories is ignored and may be nil.
type MemoryRepositoryManager struct {
	registrations *registrations.MemoryRepository
}

// NewMemoryRepositoryManager returns a manager with an empty store.
func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{registrations: registrations.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Registrations(dbx.DBTX) registrations.Repository {
	return m.registrations
}

// RunMigrations is a no-op: the memory store has no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
