// Package common defines shared constants and sentinel errors used across
// the server, transports and client of visitorhub. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrorInternal is the unexpected-failure outcome. Its message is safe to
	// show to callers; the wrapped detail is only logged.
	ErrorInternal = errors.New("internal error")

	// Account manager outcomes.
	ErrValidation         = errors.New("validation error")
	ErrDuplicateIdentity  = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrTransientStore     = errors.New("store temporarily unavailable")
	ErrRateLimited        = errors.New("too many attempts")
	ErrNotConfigured      = errors.New("feature not configured")

	// Boundary outcomes for bearer credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Token verification failures.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenClaims  = errors.New("malformed token claims")
)
