package services

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/server/auth"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/dmitrijs2005/visitorhub/internal/server/password"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/visitorhub/internal/server/validation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

// spyHasher counts calls on top of the real bcrypt hasher.
type spyHasher struct {
	*password.Hasher
	dummyCalls  atomic.Int32
	verifyCalls atomic.Int32
}

func (h *spyHasher) Verify(plain, hash string) bool {
	h.verifyCalls.Add(1)
	return h.Hasher.Verify(plain, hash)
}

func (h *spyHasher) VerifyDummy(plain string) bool {
	h.dummyCalls.Add(1)
	return h.Hasher.VerifyDummy(plain)
}

type fixture struct {
	svc    *AccountService
	repos  *repomanager.MemoryRepositoryManager
	hasher *spyHasher
	tokens *auth.TokenService
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	h, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		repos:  repomanager.NewMemoryRepositoryManager(),
		hasher: &spyHasher{Hasher: h},
		tokens: auth.NewTokenService(testSecret, time.Hour),
	}
	f.svc = NewAccountService(dbx.NoTxRunner{}, f.repos, f.hasher, f.tokens, validation.New(), opts)
	return f
}

func (f *fixture) register(t *testing.T, username string) *AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) setStatus(t *testing.T, id uuid.UUID, st models.Status) {
	t.Helper()
	_, err := f.repos.Accounts(nil).Update(context.Background(), id, models.AccountUpdate{Status: &st, UpdatedAt: time.Now()})
	require.NoError(t, err)
}

// fakeRepo lets a test decide each store outcome.
type fakeRepo struct {
	accounts.Repository

	findErr   error
	insertErr error
	listErr   error
}

func (r *fakeRepo) FindByUsernameOrEmail(ctx context.Context, value string) (*models.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.Repository.FindByUsernameOrEmail(ctx, value)
}

func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.Repository.FindByID(ctx, id)
}

func (r *fakeRepo) Insert(ctx context.Context, a *models.Account) (*models.Account, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	return r.Repository.Insert(ctx, a)
}

func (r *fakeRepo) List(ctx context.Context, f models.ListFilter) ([]*models.Account, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	return r.Repository.List(ctx, f)
}

type fakeRepoManager struct {
	repo *fakeRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return m.repo }

func newFakeService(t *testing.T, repo *fakeRepo) *AccountService {
	t.Helper()
	h, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	if repo.Repository == nil {
		repo.Repository = accounts.NewMemoryRepository()
	}
	return NewAccountService(dbx.NoTxRunner{}, &fakeRepoManager{repo: repo}, h,
		auth.NewTokenService(testSecret, time.Hour), validation.New(), Options{})
}

type fakeLimiter struct {
	checkErr error
	failures atomic.Int32
	resets   atomic.Int32
}

func (l *fakeLimiter) Check(context.Context, string) error { return l.checkErr }
func (l *fakeLimiter) RecordFailure(context.Context, string) error {
	l.failures.Add(1)
	return nil
}
func (l *fakeLimiter) Reset(context.Context, string) error {
	l.resets.Add(1)
	return nil
}

type fakePresigner struct {
	err error
}

func (p *fakePresigner) PresignAvatarUpload(_ context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error) {
	if p.err != nil {
		return nil, p.err
	}
	key := "avatars/" + id.String() + "/" + filename
	return &models.AvatarUpload{
		Key:       key,
		UploadURL: "http://s3.test/bucket/" + key + "?X-Amz-Signature=abc",
		AvatarURL: "http://s3.test/bucket/" + key,
	}, nil
}
