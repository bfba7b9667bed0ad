package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/logging"
)

// errorStatus maps a service error onto an HTTP status and a message that is
// safe to show to the caller.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusConflict, common.ErrDuplicateIdentity.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, common.ErrUnauthenticated.Error()
	case errors.Is(err, common.ErrAccountDisabled):
		return http.StatusForbidden, common.ErrAccountDisabled.Error()
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, common.ErrForbidden.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, common.ErrRateLimited.Error()
	case errors.Is(err, common.ErrTransientStore):
		return http.StatusServiceUnavailable, common.ErrTransientStore.Error()
	case errors.Is(err, common.ErrNotConfigured):
		return http.StatusNotImplemented, common.ErrNotConfigured.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	fail(w, status, msg)
}
