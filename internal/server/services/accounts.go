// Package services contains server-side business logic. AccountService
// registers visitors, checks their credentials, mints session tokens and
// manages their profiles.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/logging"
	"github.com/dmitrijs2005/visitorhub/internal/server/auth"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/dmitrijs2005/visitorhub/internal/server/password"
	"github.com/dmitrijs2005/visitorhub/internal/server/ratelimit"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/visitorhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/visitorhub/internal/server/validation"
	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	VerifyDummy(plain string) bool
}

type TokenService interface {
	Issue(accountID uuid.UUID) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// LoginLimiter throttles failed logins per identifier.
type LoginLimiter interface {
	Check(ctx context.Context, identifier string) error
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

type AvatarPresigner interface {
	PresignAvatarUpload(ctx context.Context, accountID uuid.UUID, filename string) (*models.AvatarUpload, error)
}

// RegisterInput is a registration request. Name and Phone are optional.
type RegisterInput struct {
	Username string  `json:"username" validate:"required,min=3,max=20"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Name     *string `json:"name" validate:"omitnil,max=100"`
	Phone    *string `json:"phone" validate:"omitnil,phone"`
}

// AuthResult is an account together with a freshly minted session token.
type AuthResult struct {
	Account *models.Account
	Token   string
}

// Options carries the tunables and optional collaborators of AccountService.
type Options struct {
	QueryTimeout    time.Duration
	DefaultPageSize int
	MaxPageSize     int

	// Limiter defaults to ratelimit.Nop.
	Limiter LoginLimiter
	// Avatars is nil when avatar uploads are not configured.
	Avatars AvatarPresigner
	Logger  logging.Logger
	Metrics *Metrics
}

type AccountService struct {
	runner    dbx.Runner
	repos     repomanager.RepositoryManager
	hasher    PasswordHasher
	tokens    TokenService
	validator *validation.Validator

	limiter LoginLimiter
	avatars AvatarPresigner
	log     logging.Logger
	metrics *Metrics

	queryTimeout    time.Duration
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

func NewAccountService(runner dbx.Runner, repos repomanager.RepositoryManager, hasher PasswordHasher,
	tokens TokenService, v *validation.Validator, opts Options) *AccountService {
	s := &AccountService{
		runner:          runner,
		repos:           repos,
		hasher:          hasher,
		tokens:          tokens,
		validator:       v,
		limiter:         opts.Limiter,
		avatars:         opts.Avatars,
		log:             opts.Logger,
		metrics:         opts.Metrics,
		queryTimeout:    opts.QueryTimeout,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
		now:             time.Now,
	}

	if s.limiter == nil {
		s.limiter = ratelimit.Nop{}
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	s.log = s.log.With("module", "accounts")
	if s.queryTimeout <= 0 {
		s.queryTimeout = 5 * time.Second
	}
	if s.maxPageSize <= 0 {
		s.maxPageSize = 100
	}
	if s.defaultPageSize <= 0 || s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = min(20, s.maxPageSize)
	}

	return s
}

// Register creates an Active account with zero logins and returns it with a
// session token. A username or email already used by any account, as either
// field, yields common.ErrDuplicateIdentity.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	err := s.withStore(ctx, func(ctx context.Context, repo accounts.Repository) error {
		for _, v := range []string{in.Username, in.Email} {
			_, err := repo.FindByUsernameOrEmail(ctx, v)
			switch {
			case err == nil:
				return common.ErrDuplicateIdentity
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError(ctx, "register lookup", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password: must be at most 72 bytes", common.ErrValidation)
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	now := s.now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Phone:        in.Phone,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.withStore(ctx, func(ctx context.Context, repo accounts.Repository) (err error) {
		account, err = repo.Insert(ctx, account)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateKey) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, s.storeError(ctx, "register insert", err)
	}

	token, err := s.issue(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.registered()
	s.log.Info(ctx, "visitor registered", "account_id", account.ID)

	return &AuthResult{Account: account, Token: token}, nil
}

// Authenticate checks a username-or-email and password. Unknown identities
// and wrong passwords both yield common.ErrInvalidCredentials after the same
// amount of hashing work. Only Active accounts may log in; a successful login
// bumps the login count and last-login time.
func (s *AccountService) Authenticate(ctx context.Context, usernameOrEmail, plain string) (*AuthResult, error) {
	if usernameOrEmail == "" || plain == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	if err := s.limiter.Check(ctx, usernameOrEmail); err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			s.metrics.login(loginRateLimited)
			return nil, common.ErrRateLimited
		}
		s.log.Warn(ctx, "login limiter unavailable, continuing", "error", err)
	}

	var account *models.Account
	err := s.withStore(ctx, func(ctx context.Context, repo accounts.Repository) (err error) {
		account, err = repo.FindByUsernameOrEmail(ctx, usernameOrEmail)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(plain)
			return nil, s.loginFailed(ctx, usernameOrEmail)
		}
		s.metrics.login(loginError)
		return nil, s.storeError(ctx, "login lookup", err)
	}

	if !s.hasher.Verify(plain, account.PasswordHash) {
		return nil, s.loginFailed(ctx, usernameOrEmail)
	}

	switch account.Status {
	case models.StatusActive:
	case models.StatusInactive, models.StatusBanned:
		s.metrics.login(loginDisabled)
		s.log.Info(ctx, "login refused for disabled account", "account_id", account.ID, "status", account.Status.String())
		return nil, common.ErrAccountDisabled
	default:
		s.metrics.login(loginError)
		s.log.Error(ctx, "account has unknown status", "account_id", account.ID, "status", account.Status.String())
		return nil, common.ErrorInternal
	}

	err = s.withStore(ctx, func(ctx context.Context, repo accounts.Repository) (err error) {
		account, err = repo.RecordLogin(ctx, account.ID, s.now().UTC())
		return err
	})
	if err != nil {
		s.metrics.login(loginError)
		return nil, s.storeError(ctx, "record login", err)
	}

	if err := s.limiter.Reset(ctx, usernameOrEmail); err != nil {
		s.log.Warn(ctx, "login limiter reset failed", "error", err)
	}

	token, err := s.issue(ctx, account.ID)
	if err != nil {
		s.metrics.login(loginError)
		return nil, err
	}

	s.metrics.login(loginOK)
	s.log.Debug(ctx, "visitor logged in", "account_id", account.ID)

	return &AuthResult{Account: account, Token: token}, nil
}

func (s *AccountService) loginFailed(ctx context.Context, identifier string) error {
	s.metrics.login(loginInvalid)
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		s.log.Warn(ctx, "login limiter record failed", "error", err)
	}
	return common.ErrInvalidCredentials
}

// GetByID returns the account or common.ErrorNotFound.
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account *models.Account
	err := s.withStore(ctx, func(ctx context.Context, repo accounts.Repository) (err error) {
		account, err = repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.storeError(ctx, "get account", err)
	}
	return account, nil
}

// UpdateProfile applies the set fields of upd; a field set to "" is cleared.
// updated_at is refreshed even when upd changes nothing.
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Account, error) {
	if err := s.validateProfile(upd); err != nil {
		return nil, err
	}

	var account *models.Account
	err := s.withStore(ctx, func(ctx context.Context, repo accounts.Repository) (err error) {
		account, err = repo.Update(ctx, id, models.AccountUpdate{
			Name:      upd.Name,
			Phone:     upd.Phone,
			Avatar:    upd.Avatar,
			UpdatedAt: s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return nil, s.storeError(ctx, "update profile", err)
	}

	s.log.Debug(ctx, "profile updated", "account_id", id)
	return account, nil
}

func (s *AccountService) validateProfile(upd models.ProfileUpdate) error {
	if upd.Name != nil {
		if err := s.validator.Var("name", *upd.Name, "max=100"); err != nil {
			return err
		}
	}
	if upd.Phone != nil {
		if err := s.validator.Var("phone", *upd.Phone, "phone"); err != nil {
			return err
		}
	}
	if upd.Avatar != nil && *upd.Avatar != "" {
		if err := s.validator.Var("avatar", *upd.Avatar, "url,max=500"); err != nil {
			return err
		}
	}
	return nil
}

// ListAccounts returns one page of accounts, newest first. A zero limit
// means the default page size and larger limits are clamped to the maximum.
// status is optional; an unknown status is a validation error.
func (s *AccountService) ListAccounts(ctx context.Context, skip, limit int, status string) (*models.Page, error) {
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must not be negative", common.ErrValidation)
	}
	if limit == 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	filter := models.ListFilter{Skip: skip, Limit: limit}
	if strings.TrimSpace(status) != "" {
		st, err := models.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("%w: status: %v", common.ErrValidation, err)
		}
		filter.Status = &st
	}

	page := &models.Page{Skip: skip, Limit: limit}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := s.runner.InTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) (err error) {
		page.Items, page.Total, err = s.repos.Accounts(tx).List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, s.storeError(ctx, "list accounts", err)
	}

	return page, nil
}

// Authorize resolves a bearer token to its account. Bad or expired tokens
// yield common.ErrUnauthenticated; tokens for another principal type, or
// with no type at all, yield common.ErrForbidden.
func (s *AccountService) Authorize(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug(ctx, "token rejected", "reason", err.Error())
		return nil, common.ErrUnauthenticated
	}
	if claims.Type != auth.PrincipalVisitor {
		return nil, common.ErrForbidden
	}

	return s.GetByID(ctx, claims.AccountID())
}

// AvatarUpload presigns an avatar upload for the account and stores the
// resulting avatar URL on its profile.
func (s *AccountService) AvatarUpload(ctx context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error) {
	if s.avatars == nil {
		return nil, common.ErrNotConfigured
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	upload, err := s.avatars.PresignAvatarUpload(ctx, id, filename)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		s.log.Error(ctx, "avatar presign failed", "account_id", id, "error", err)
		return nil, common.ErrorInternal
	}

	avatar := upload.AvatarURL
	if _, err := s.UpdateProfile(ctx, id, models.ProfileUpdate{Avatar: &avatar}); err != nil {
		return nil, err
	}

	return upload, nil
}

func (s *AccountService) issue(ctx context.Context, id uuid.UUID) (string, error) {
	token, err := s.tokens.Issue(id)
	if err != nil {
		s.log.Error(ctx, "token issue failed", "account_id", id, "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}

// withStore runs fn against the account store under the per-call timeout.
func (s *AccountService) withStore(ctx context.Context, fn func(ctx context.Context, repo accounts.Repository) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return fn(ctx, s.repos.Accounts(s.runner.Conn()))
}

// storeError maps a store failure onto the service taxonomy. Raw driver
// errors are logged here and never returned.
func (s *AccountService) storeError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrDuplicateIdentity):
		return err
	case dbx.IsTransient(err):
		s.log.Warn(ctx, "store unavailable", "op", op, "error", err)
		return common.ErrTransientStore
	default:
		s.log.Error(ctx, "store failure", "op", op, "error", err)
		return common.ErrorInternal
	}
}
