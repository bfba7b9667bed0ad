package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/accounts"
)

// MemoryRepositoryManager hands out one shared in-memory store regardless
// of the DBTX passed in. Pair it with dbx.NoTxRunner.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{accounts: accounts.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}

// RunMigrations is a no-op; there is no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
