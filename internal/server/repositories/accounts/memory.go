package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. All methods are safe
// for concurrent use; uniqueness is checked and claimed under one lock.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*models.Account
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[uuid.UUID]*models.Account),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) FindByUsernameOrEmail(ctx context.Context, value string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byUsername[value]; ok {
		return r.byID[id].Clone(), nil
	}
	if id, ok := r.byEmail[value]; ok {
		return r.byID[id].Clone(), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) Insert(ctx context.Context, a *models.Account) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; ok {
		return nil, common.ErrDuplicateKey
	}
	if _, ok := r.byUsername[a.Username]; ok {
		return nil, common.ErrDuplicateKey
	}
	if _, ok := r.byEmail[a.Email]; ok {
		return nil, common.ErrDuplicateKey
	}

	stored := a.Clone()
	normalize(stored)
	r.byID[a.ID] = stored
	r.byUsername[a.Username] = a.ID
	r.byEmail[a.Email] = a.ID

	return stored.Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, id uuid.UUID, upd models.AccountUpdate) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	if upd.Name != nil {
		a.Name = nonEmpty(upd.Name)
	}
	if upd.Phone != nil {
		a.Phone = nonEmpty(upd.Phone)
	}
	if upd.Avatar != nil {
		a.Avatar = nonEmpty(upd.Avatar)
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	a.UpdatedAt = upd.UpdatedAt

	return a.Clone(), nil
}

func (r *MemoryRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	a.LoginCount++
	t := at
	a.LastLoginAt = &t
	a.UpdatedAt = at

	return a.Clone(), nil
}

func (r *MemoryRepository) List(ctx context.Context, f models.ListFilter) ([]*models.Account, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matched := make([]*models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		matched = append(matched, a.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	total := int64(len(matched))
	if f.Skip >= len(matched) {
		return []*models.Account{}, total, nil
	}
	end := len(matched)
	if f.Skip+f.Limit < end {
		end = f.Skip + f.Limit
	}

	return matched[f.Skip:end], total, nil
}

// normalize mirrors the SQL store, where an empty optional field is NULL.
func normalize(a *models.Account) {
	a.Name = nonEmpty(a.Name)
	a.Phone = nonEmpty(a.Phone)
	a.Avatar = nonEmpty(a.Avatar)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
