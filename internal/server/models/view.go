package models

import (
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
)

// AccountView is the public representation of an account shared by the
// HTTP and gRPC transports.
type AccountView struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Profile     ProfileView `json:"profile"`
	Status      string      `json:"status"`
	LoginCount  int64       `json:"login_count"`
	LastLoginAt *string     `json:"last_login_at"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

type ProfileView struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Avatar *string `json:"avatar"`
}

// NewAccountView renders a. Timestamps are RFC 3339 in UTC.
func NewAccountView(a *Account) AccountView {
	v := AccountView{
		ID:       a.ID.String(),
		Username: a.Username,
		Email:    a.Email,
		Profile: ProfileView{
			Name:   a.Name,
			Phone:  a.Phone,
			Avatar: a.Avatar,
		},
		Status:     a.Status.String(),
		LoginCount: a.LoginCount,
		CreatedAt:  formatTime(a.CreatedAt),
		UpdatedAt:  formatTime(a.UpdatedAt),
	}
	if a.LastLoginAt != nil {
		s := formatTime(*a.LastLoginAt)
		v.LastLoginAt = &s
	}
	return v
}

// TokenView is the credential returned by register and login.
type TokenView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SessionView is returned by register and login.
type SessionView struct {
	User  AccountView `json:"user"`
	Token TokenView   `json:"token"`
}

func NewSessionView(a *Account, token string) SessionView {
	return SessionView{
		User:  NewAccountView(a),
		Token: TokenView{AccessToken: token, TokenType: common.TokenTypeBearer},
	}
}

// CurrentUserView wraps the account of the authenticated caller.
type CurrentUserView struct {
	User AccountView `json:"user"`
}

// VisitorListView is one page of the visitor list. Visitors is never nil so
// an empty page encodes as [].
type VisitorListView struct {
	Visitors []AccountView `json:"visitors"`
	Total    int64         `json:"total"`
	Skip     int           `json:"skip"`
	Limit    int           `json:"limit"`
}

func NewVisitorListView(p *Page) VisitorListView {
	v := VisitorListView{
		Visitors: make([]AccountView, 0, len(p.Items)),
		Total:    p.Total,
		Skip:     p.Skip,
		Limit:    p.Limit,
	}
	for _, a := range p.Items {
		v.Visitors = append(v.Visitors, NewAccountView(a))
	}
	return v
}

// AvatarUpload tells the visitor where to PUT an avatar image and the
// reference that will be stored on the profile.
type AvatarUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	AvatarURL string `json:"avatar_url"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
