// Package apperr defines the error kinds shared by every teamdesk store and
// the mapping from those kinds to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Error kinds. Packages wrap these with their own prefix, for example
// fmt.Errorf("task: %w: %s", apperr.ErrNotFound, id).
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service error")
	ErrImport          = errors.New("import failed")
	ErrPrecondition    = errors.New("precondition failed")
)

// HTTPStatus returns the status code a handler should report for err.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPrecondition):
		return http.StatusPreconditionFailed
	case errors.Is(err, ErrExternalService):
		return http.StatusBadGateway
	case errors.Is(err, ErrImport):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
