package client

import (
	"context"

	"github.com/dmitrijs2005/visitorhub/internal/server/models"
)

// RegisterRequest carries a new visitor's details. Name and Phone are
// omitted from the request when empty.
type RegisterRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// ProfileChanges lists the profile fields to change; nil leaves a field as is.
type ProfileChanges struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

type Client interface {
	Close() error
	Register(ctx context.Context, req RegisterRequest) (*models.SessionView, error)
	Login(ctx context.Context, username string, password []byte) (*models.SessionView, error)
	Me(ctx context.Context) (*models.AccountView, error)
	UpdateMe(ctx context.Context, changes ProfileChanges) (*models.AccountView, error)
	ListVisitors(ctx context.Context, skip, limit int, status string) (*models.VisitorListView, error)
	AvatarUpload(ctx context.Context, filename string) (*models.AvatarUpload, error)
	Ping(ctx context.Context) error
	SetToken(token string)
	Token() string
}
