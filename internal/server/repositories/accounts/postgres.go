package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/google/uuid"
)

const accountColumns = `id, username, email, password_hash, name, phone, avatar,
		login_count, last_login_at, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a                   models.Account
		name, phone, avatar sql.NullString
		lastLogin           sql.NullTime
		status              string
	)

	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &name, &phone, &avatar,
		&a.LoginCount, &lastLogin, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if a.Status, err = models.ParseStatus(status); err != nil {
		return nil, err
	}
	a.Name = fromNull(name)
	a.Phone = fromNull(phone)
	a.Avatar = fromNull(avatar)
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}

	return &a, nil
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// toNull stores an empty string as NULL.
func toNull(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// FindByUsernameOrEmail prefers a username match when value happens to be
// one account's username and another's email.
func (r *PostgresRepository) FindByUsernameOrEmail(ctx context.Context, value string) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE username = $1 OR email = $1
		 ORDER BY (username = $1) DESC
		 LIMIT 1
		 `

	return r.queryOne(ctx, query, value)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query :=
		`SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1
		 `

	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) Insert(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (` + accountColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 `

	var lastLogin any
	if a.LastLoginAt != nil {
		lastLogin = *a.LastLoginAt
	}

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash,
		toNull(a.Name), toNull(a.Phone), toNull(a.Avatar),
		a.LoginCount, lastLogin, a.Status.String(), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	stored := a.Clone()
	normalize(stored)
	return stored, nil
}

// Update writes the non-nil fields of upd and updated_at in one statement.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, upd models.AccountUpdate) (*models.Account, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", toNull(upd.Name))
	}
	if upd.Phone != nil {
		add("phone", toNull(upd.Phone))
	}
	if upd.Avatar != nil {
		add("avatar", toNull(upd.Avatar))
	}
	if upd.Status != nil {
		add("status", upd.Status.String())
	}
	add("updated_at", upd.UpdatedAt)

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE accounts SET %s
		 WHERE id = $%d
		 RETURNING `+accountColumns,
		strings.Join(sets, ", "), len(args))

	return r.queryOne(ctx, query, args...)
}

func (r *PostgresRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) (*models.Account, error) {
	query :=
		`UPDATE accounts
		 SET login_count = login_count + 1, last_login_at = $2, updated_at = $2
		 WHERE id = $1
		 RETURNING ` + accountColumns

	return r.queryOne(ctx, query, id, at)
}

// List returns one page ordered by created_at descending along with the
// number of accounts matching the filter. Run it inside a transaction for a
// consistent count.
func (r *PostgresRepository) List(ctx context.Context, f models.ListFilter) ([]*models.Account, int64, error) {
	where := ""
	args := []any{}
	if f.Status != nil {
		where = "WHERE status = $1"
		args = append(args, f.Status.String())
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+accountColumns+` FROM accounts %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Account, 0, f.Limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return items, total, nil
}
