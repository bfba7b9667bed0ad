package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/dmitrijs2005/visitorhub/internal/server/services"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAccounts struct {
	registerFunc     func(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	authenticateFunc func(ctx context.Context, usernameOrEmail, plain string) (*services.AuthResult, error)
	authorizeFunc    func(ctx context.Context, token string) (*models.Account, error)
	updateFunc       func(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Account, error)
	listFunc         func(ctx context.Context, skip, limit int, status string) (*models.Page, error)
	avatarFunc       func(ctx context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error)
}

func (m *mockAccounts) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, in)
	}
	return nil, errors.New("not stubbed")
}

func (m *mockAccounts) Authenticate(ctx context.Context, u, p string) (*services.AuthResult, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, u, p)
	}
	return nil, errors.New("not stubbed")
}

func (m *mockAccounts) Authorize(ctx context.Context, token string) (*models.Account, error) {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, token)
	}
	return nil, common.ErrUnauthenticated
}

func (m *mockAccounts) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Account, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, upd)
	}
	return nil, errors.New("not stubbed")
}

func (m *mockAccounts) ListAccounts(ctx context.Context, skip, limit int, status string) (*models.Page, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, skip, limit, status)
	}
	return nil, errors.New("not stubbed")
}

func (m *mockAccounts) AvatarUpload(ctx context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error) {
	if m.avatarFunc != nil {
		return m.avatarFunc(ctx, id, filename)
	}
	return nil, common.ErrNotConfigured
}

func testAccount() *models.Account {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.Account{
		ID:        uuid.MustParse("6f1c2a7e-4b53-4c55-9d7e-1f0b8b6a9c01"),
		Username:  "alice",
		Email:     "alice@example.com",
		Status:    models.StatusActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// withToken makes the mock accept "good-token" as alice.
func withToken(m *mockAccounts, a *models.Account) *mockAccounts {
	m.authorizeFunc = func(_ context.Context, token string) (*models.Account, error) {
		if token != "good-token" {
			return nil, common.ErrUnauthenticated
		}
		return a, nil
	}
	return m
}

func newTestRouter(m *mockAccounts) http.Handler {
	return NewRouter(m, Options{
		Registry:    prometheus.NewRegistry(),
		CORSOrigins: []string{"http://localhost:5173"},
		Info:        Info{App: "visitorhub", Version: "test"},
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelopeOf[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelopeOf[T] {
	t.Helper()
	var env envelopeOf[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRegister_Created(t *testing.T) {
	a := testAccount()
	var got services.RegisterInput
	m := &mockAccounts{registerFunc: func(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
		got = in
		return &services.AuthResult{Account: a, Token: "tok"}, nil
	}}

	rec := do(t, newTestRouter(m), http.MethodPost, "/api/v1/visitors/register", "", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "secret1", "phone": "13812345678",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "secret1", got.Password)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "13812345678", *got.Phone)
	assert.Nil(t, got.Name)

	env := decodeBody[models.SessionView](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "alice", env.Data.User.Username)
	assert.Equal(t, "active", env.Data.User.Status)
	assert.Equal(t, "2025-03-01T10:00:00Z", env.Data.User.CreatedAt)
	assert.Nil(t, env.Data.User.LastLoginAt)
	assert.Equal(t, "tok", env.Data.Token.AccessToken)
	assert.Equal(t, "bearer", env.Data.Token.TokenType)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		err     error
		code    int
		message string
	}{
		{"malformed body", "{not json", nil, http.StatusBadRequest, "validation error: malformed request body"},
		{"empty body", "", nil, http.StatusBadRequest, "validation error: request body is empty"},
		{"validation", map[string]string{"username": "al"}, fmt.Errorf("%w: username: too short", common.ErrValidation),
			http.StatusBadRequest, "validation error: username: too short"},
		{"duplicate", map[string]string{"username": "alice"}, common.ErrDuplicateIdentity,
			http.StatusConflict, "username or email already registered"},
		{"store down", map[string]string{"username": "alice"}, common.ErrTransientStore,
			http.StatusServiceUnavailable, "store temporarily unavailable"},
		{"unexpected", map[string]string{"username": "alice"}, errors.New("pq: boom"),
			http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockAccounts{registerFunc: func(context.Context, services.RegisterInput) (*services.AuthResult, error) {
				return nil, tt.err
			}}

			rec := do(t, newTestRouter(m), http.MethodPost, "/api/v1/visitors/register", "", tt.body)

			assert.Equal(t, tt.code, rec.Code)
			env := decodeBody[any](t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Nil(t, env.Data)
		})
	}
}

func TestLogin(t *testing.T) {
	a := testAccount()
	m := &mockAccounts{authenticateFunc: func(_ context.Context, u, p string) (*services.AuthResult, error) {
		if u == "alice" && p == "secret1" {
			return &services.AuthResult{Account: a, Token: "tok"}, nil
		}
		if u == "hammer" {
			return nil, common.ErrRateLimited
		}
		if u == "banned" {
			return nil, common.ErrAccountDisabled
		}
		return nil, common.ErrInvalidCredentials
	}}
	h := newTestRouter(m)

	rec := do(t, h, http.MethodPost, "/api/v1/visitors/login", "", loginRequest{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeBody[models.SessionView](t, rec)
	assert.Equal(t, "tok", env.Data.Token.AccessToken)

	unknown := do(t, h, http.MethodPost, "/api/v1/visitors/login", "", loginRequest{Username: "bob", Password: "x"})
	wrong := do(t, h, http.MethodPost, "/api/v1/visitors/login", "", loginRequest{Username: "alice", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())

	assert.Equal(t, http.StatusTooManyRequests,
		do(t, h, http.MethodPost, "/api/v1/visitors/login", "", loginRequest{Username: "hammer", Password: "x"}).Code)
	assert.Equal(t, http.StatusForbidden,
		do(t, h, http.MethodPost, "/api/v1/visitors/login", "", loginRequest{Username: "banned", Password: "x"}).Code)
}

func TestMe_RequiresBearer(t *testing.T) {
	a := testAccount()
	h := newTestRouter(withToken(&mockAccounts{}, a))

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/visitors/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/visitors/me", "bad", nil).Code)

	rec := do(t, h, http.MethodGet, "/api/v1/visitors/me", "good-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeBody[models.CurrentUserView](t, rec)
	assert.Equal(t, a.ID.String(), env.Data.User.ID)
	assert.Equal(t, "alice@example.com", env.Data.User.Email)
}

func TestMe_WrongPrincipalIsForbidden(t *testing.T) {
	m := &mockAccounts{authorizeFunc: func(context.Context, string) (*models.Account, error) {
		return nil, common.ErrForbidden
	}}

	rec := do(t, newTestRouter(m), http.MethodGet, "/api/v1/visitors/me", "admin-token", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeBody[any](t, rec).Message)
}

func TestUpdateMe_PassesOnlyProvidedFields(t *testing.T) {
	a := testAccount()
	var got models.ProfileUpdate
	m := withToken(&mockAccounts{updateFunc: func(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Account, error) {
		assert.Equal(t, a.ID, id)
		got = upd
		out := a.Clone()
		out.Name = upd.Name
		return out, nil
	}}, a)

	rec := do(t, newTestRouter(m), http.MethodPut, "/api/v1/visitors/me", "good-token", map[string]string{"name": "Alice"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Alice", *got.Name)
	assert.Nil(t, got.Phone)
	assert.Nil(t, got.Avatar)

	env := decodeBody[models.CurrentUserView](t, rec)
	require.NotNil(t, env.Data.User.Profile.Name)
	assert.Equal(t, "Alice", *env.Data.User.Profile.Name)
}

func TestAvatarUpload(t *testing.T) {
	a := testAccount()

	t.Run("not configured", func(t *testing.T) {
		h := newTestRouter(withToken(&mockAccounts{}, a))
		rec := do(t, h, http.MethodPost, "/api/v1/visitors/me/avatar", "good-token", avatarRequest{Filename: "me.png"})
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("presigned", func(t *testing.T) {
		m := withToken(&mockAccounts{avatarFunc: func(_ context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error) {
			assert.Equal(t, "me.png", filename)
			return &models.AvatarUpload{Key: "k", UploadURL: "http://s3/put", AvatarURL: "http://s3/k"}, nil
		}}, a)

		rec := do(t, newTestRouter(m), http.MethodPost, "/api/v1/visitors/me/avatar", "good-token", avatarRequest{Filename: "me.png"})

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeBody[models.AvatarUpload](t, rec)
		assert.Equal(t, "http://s3/put", env.Data.UploadURL)
	})
}

func TestList(t *testing.T) {
	a := testAccount()
	var gotSkip, gotLimit int
	var gotStatus string
	m := withToken(&mockAccounts{listFunc: func(_ context.Context, skip, limit int, status string) (*models.Page, error) {
		gotSkip, gotLimit, gotStatus = skip, limit, status
		return &models.Page{Items: []*models.Account{a}, Total: 41, Skip: skip, Limit: 100}, nil
	}}, a)
	h := newTestRouter(m)

	rec := do(t, h, http.MethodGet, "/api/v1/visitors/?skip=40&limit=500&status=active", "good-token", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40, gotSkip)
	assert.Equal(t, 500, gotLimit)
	assert.Equal(t, "active", gotStatus)

	env := decodeBody[models.VisitorListView](t, rec)
	assert.EqualValues(t, 41, env.Data.Total)
	assert.Equal(t, 100, env.Data.Limit)
	require.Len(t, env.Data.Visitors, 1)
	assert.Equal(t, "alice", env.Data.Visitors[0].Username)

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/visitors/", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/visitors/?skip=-1", "good-token", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/visitors/?limit=ten", "good-token", nil).Code)
}

func TestList_PublicWhenConfigured(t *testing.T) {
	m := &mockAccounts{listFunc: func(context.Context, int, int, string) (*models.Page, error) {
		return &models.Page{Items: []*models.Account{testAccount()}, Total: 1, Limit: 20}, nil
	}}
	h := NewRouter(m, Options{Registry: prometheus.NewRegistry(), PublicList: true})

	rec := do(t, h, http.MethodGet, "/api/v1/visitors/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeBody[models.VisitorListView](t, rec).Data.Total)

	// the rest of the group still needs a token
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/v1/visitors/me", "", nil).Code)
}

func TestList_EmptyPageRendersEmptyArray(t *testing.T) {
	a := testAccount()
	m := withToken(&mockAccounts{listFunc: func(context.Context, int, int, string) (*models.Page, error) {
		return &models.Page{Skip: 0, Limit: 20}, nil
	}}, a)

	rec := do(t, newTestRouter(m), http.MethodGet, "/api/v1/visitors", "good-token", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"visitors":[]`)
}

func TestRootAndHealth(t *testing.T) {
	checks := map[string]HealthCheck{"store": func(context.Context) error { return nil }}
	h := NewRouter(&mockAccounts{}, Options{Info: Info{App: "visitorhub", Version: "1.0.0"}, Checks: checks})

	rec := do(t, h, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)

	rec = do(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, map[string]any{"store": "ok"}, body["checks"])
}

func TestHealth_FailingCheck(t *testing.T) {
	checks := map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	}
	h := NewRouter(&mockAccounts{}, Options{Checks: checks})

	rec := do(t, h, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.NotContains(t, rec.Body.String(), "refused")
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestRouter(&mockAccounts{}), http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decodeBody[any](t, rec).Success)
}
