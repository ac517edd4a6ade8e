package httpx

import (
	"errors"
	"net/http"

	"github.com/meridianbank/meridian/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Ownership violations arrive as shared.ErrNotFound and therefore answer
// 404, never 403, so callers cannot probe for account existence.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInsufficientBalance):
		Problem(w, http.StatusUnprocessableEntity, "Insufficient Balance", err.Error())
	case errors.Is(err, shared.ErrBusinessRule):
		Problem(w, http.StatusUnprocessableEntity, "Business Rule Violation", err.Error())
	case errors.Is(err, shared.ErrConcurrencyConflict):
		Problem(w, http.StatusConflict, "Conflict", "concurrent update, retry the operation")
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Invalid Credentials", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
