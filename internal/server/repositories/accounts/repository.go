// Package accounts persists visitor accounts. PostgresRepository is the
// production store; MemoryRepository backs tests and the "memory" DSN.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the account store. Lookups that match nothing return
// common.ErrorNotFound; Insert reports a taken username or email as
// common.ErrDuplicateKey.
type Repository interface {
	FindByUsernameOrEmail(ctx context.Context, value string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Insert(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, id uuid.UUID, upd models.AccountUpdate) (*models.Account, error)
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) (*models.Account, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Account, int64, error)
}
