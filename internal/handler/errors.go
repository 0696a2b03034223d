package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/traveller-reservation/internal/logger"
	"github.com/iliyamo/traveller-reservation/internal/roster"
)

const (
	codeCapacityExceeded    = "capacity_exceeded"
	codeMissingField        = "missing_field"
	codeDuplicateIdentifier = "duplicate_identifier"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, errorResponse{Error: msg, Code: code})
}

// writeRosterError maps roster failures to responses.  The messages are the
// ones travellers saw in the original booking form.
func writeRosterError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, roster.ErrCapacityExceeded):
		return writeError(c, http.StatusConflict, codeCapacityExceeded, "No more seats available.")
	case errors.Is(err, roster.ErrMissingField):
		return writeError(c, http.StatusBadRequest, codeMissingField, "Please fill in all fields.")
	case errors.Is(err, roster.ErrDuplicateIdentifier):
		return writeError(c, http.StatusConflict, codeDuplicateIdentifier, "Traveller ID already exists. Please use a unique ID.")
	case errors.Is(err, roster.ErrNotFound):
		return writeError(c, http.StatusNotFound, codeNotFound, "Traveller not found.")
	default:
		logger.Logger.Error().Err(err).Str("path", c.Path()).Msg("roster operation failed")
		return writeError(c, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
