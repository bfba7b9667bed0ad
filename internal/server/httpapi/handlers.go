package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/logging"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
	"github.com/dmitrijs2005/visitorhub/internal/server/services"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// AccountManager is the part of services.AccountService the HTTP API uses.
type AccountManager interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Authenticate(ctx context.Context, usernameOrEmail, plain string) (*services.AuthResult, error)
	Authorize(ctx context.Context, token string) (*models.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.Account, error)
	ListAccounts(ctx context.Context, skip, limit int, status string) (*models.Page, error)
	AvatarUpload(ctx context.Context, id uuid.UUID, filename string) (*models.AvatarUpload, error)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Info describes the running build on the root and health endpoints.
type Info struct {
	App     string
	Version string
}

type Handler struct {
	accounts AccountManager
	log      logging.Logger
	info     Info
	checks   map[string]HealthCheck
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Avatar *string `json:"avatar"`
}

type avatarRequest struct {
	Filename string `json:"filename"`
}

// decode reads a JSON body into dst. Unknown fields are ignored.
func decode(r *http.Request, w http.ResponseWriter, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrValidation)
		}
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": h.info.App + " API",
		"version": h.info.Version,
		"docs":    "/api/v1/visitors",
	})
}

// health runs every registered check. A failing check turns the response
// into 503 without exposing the underlying error.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn(ctx, "health check failed", "check", name, "error", err)
			checks[name] = "error"
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":  status,
		"app":     h.info.App,
		"version": h.info.Version,
		"checks":  checks,
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decode(r, w, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeCreated(w, "registered", models.NewSessionView(res.Account, res.Token))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decode(r, w, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	res, err := h.accounts.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeOK(w, "login successful", models.NewSessionView(res.Account, res.Token))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())
	writeOK(w, "ok", models.CurrentUserView{User: models.NewAccountView(account)})
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var in profileRequest
	if err := decode(r, w, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), account.ID, models.ProfileUpdate{
		Name:   in.Name,
		Phone:  in.Phone,
		Avatar: in.Avatar,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeOK(w, "profile updated", models.CurrentUserView{User: models.NewAccountView(updated)})
}

func (h *Handler) avatarUpload(w http.ResponseWriter, r *http.Request) {
	account, _ := accountFrom(r.Context())

	var in avatarRequest
	if err := decode(r, w, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	upload, err := h.accounts.AvatarUpload(r.Context(), account.ID, in.Filename)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeOK(w, "avatar upload prepared", upload)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip, err := queryInt(q.Get("skip"), "skip")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	page, err := h.accounts.ListAccounts(r.Context(), skip, limit, q.Get("status"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeOK(w, "ok", models.NewVisitorListView(page))
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", common.ErrValidation, name)
	}
	return n, nil
}
