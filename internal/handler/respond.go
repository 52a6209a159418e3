package handler

import (
	"errors"
	"net/http"

	customError "github.com/opaclabs/circulation-engine/pkg/errors"
	"github.com/opaclabs/circulation-engine/pkg/response"
)

// respondError maps the error taxonomy onto HTTP statuses: NotFound -> 404,
// Conflict -> 409, anything else -> 500. AlreadyExists never reaches here;
// duplicate reservations are a benign outcome, not an error.
func respondError(w http.ResponseWriter, err error) {
	message := "internal server error"

	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		message = businessErr.Message
	}

	switch {
	case errors.Is(err, customError.ErrNotFound):
		response.NotFound(w, message)
	case errors.Is(err, customError.ErrConflict):
		response.Error(w, http.StatusConflict, message, nil)
	default:
		response.InternalServerError(w, "internal server error", nil)
	}
}
