// Package session remembers the CLI's last login between runs.
//
// The session lives in a small SQLite file (session.db) inside the user's
// configuration directory, so "visitorhub-cli login" followed by
// "visitorhub-cli me" works without passing a token around.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/dbx"
	"github.com/dmitrijs2005/visitorhub/internal/filex"

	_ "modernc.org/sqlite"
)

const (
	appDir   = "visitorhub"
	fileName = "session.db"

	keyUsername = "username"
	keyToken    = "access_token"
	keySavedAt  = "saved_at"
)

// Session is what a successful login leaves behind.
type Session struct {
	Username string
	Token    string
	SavedAt  time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the session database in dir. An empty dir
// selects the user's configuration directory.
func Open(ctx context.Context, dir string) (*Store, error) {
	var err error
	if dir == "" {
		dir, err = filex.EnsureUserDir(appDir)
	} else {
		dir, err = filex.EnsureDir(dir)
	}
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, fileName))
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := metadata.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

// Load returns the saved session, or a zero Session when nobody is logged in.
func (s *Store) Load(ctx context.Context) (Session, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	var out Session
	token, err := repo.Get(ctx, keyToken)
	if errors.Is(err, common.ErrorNotFound) {
		return out, nil
	}
	if err != nil {
		return out, err
	}
	out.Token = string(token)

	if name, err := repo.Get(ctx, keyUsername); err == nil {
		out.Username = string(name)
	}
	if at, err := repo.Get(ctx, keySavedAt); err == nil {
		out.SavedAt, _ = time.Parse(time.RFC3339, string(at))
	}
	return out, nil
}

// Save replaces the stored session in a single transaction.
func (s *Store) Save(ctx context.Context, username, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyUsername, []byte(username)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keySavedAt, []byte(s.now().UTC().Format(time.RFC3339)))
	})
}

// Clear forgets the session.
func (s *Store) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
