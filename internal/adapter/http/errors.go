package http

import (
	"errors"
	"net/http"

	"bank-loan-service/internal/domain/apperr"

	"github.com/labstack/echo/v4"
)

type errorMapping struct {
	status int
	code   string
}

// ordered: precondition details wrap ErrPreconditionFailed, so more specific
// sentinels come first
var errorTable = []struct {
	err error
	errorMapping
}{
	{apperr.ErrNoDocuments, errorMapping{http.StatusPreconditionFailed, "NO_DOCUMENTS"}},
	{apperr.ErrDocumentsUnverified, errorMapping{http.StatusPreconditionFailed, "DOCUMENTS_UNVERIFIED"}},
	{apperr.ErrPreconditionFailed, errorMapping{http.StatusPreconditionFailed, "PRECONDITION_FAILED"}},
	{apperr.ErrNotFound, errorMapping{http.StatusNotFound, "NOT_FOUND"}},
	{apperr.ErrInvalidState, errorMapping{http.StatusConflict, "INVALID_STATE"}},
	{apperr.ErrConflict, errorMapping{http.StatusConflict, "CONFLICT"}},
	{apperr.ErrValidation, errorMapping{http.StatusUnprocessableEntity, "VALIDATION_ERROR"}},
	{apperr.ErrForbidden, errorMapping{http.StatusForbidden, "FORBIDDEN"}},
	{apperr.ErrUnauthorized, errorMapping{http.StatusUnauthorized, "UNAUTHORIZED"}},
	{apperr.ErrStorage, errorMapping{http.StatusInternalServerError, "STORAGE_ERROR"}},
}

func mapError(err error) errorMapping {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.errorMapping
		}
	}
	return errorMapping{http.StatusInternalServerError, "INTERNAL_ERROR"}
}

// writeError maps usecase errors → HTTP codes. Storage and unknown errors
// don't leak their cause to the client.
func writeError(c echo.Context, err error) error {
	m := mapError(err)
	msg := err.Error()
	if m.status >= http.StatusInternalServerError {
		c.Logger().Error(err)
		msg = "internal error"
	}
	return c.JSON(m.status, ErrorResponse{Error: msg, Code: m.code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "BAD_REQUEST"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: ToFieldErrors(err),
	})
}
