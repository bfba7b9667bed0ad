package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/accounts"
)

// RepositoryManager vends repositories bound to a DBTX and prepares the
// schema they need.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
