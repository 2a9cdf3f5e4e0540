package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identity-systems/user-api/internal/api/handler"
	"github.com/identity-systems/user-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their envelope code and HTTP status.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the uniform envelope: {"code": ..., "message": ...}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := resolveError(err, log, c)
		_ = c.JSON(status, handler.Response{Code: code, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Known domain errors map to deterministic codes.
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		return http.StatusConflict, handler.CodeDuplicateName, err.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.CodeUserNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.CodeInvalidCredentials, err.Error()
	case errors.Is(err, domain.ErrInvalidAdminCode):
		return http.StatusForbidden, handler.CodeInvalidAdminCode, err.Error()
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, handler.CodePermissionDenied, err.Error()
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, handler.CodeNotAuthenticated, err.Error()
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, handler.CodeTokenInvalid, err.Error()
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, handler.CodeTooManyAttempts, err.Error()
	}

	// Echo's own errors: bind failures, validation rejections, 404 from
	// the router.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := fmt.Sprintf("%v", he.Message)
		switch he.Code {
		case http.StatusBadRequest:
			return he.Code, handler.CodeValidationError, msg
		case http.StatusUnauthorized:
			return he.Code, handler.CodeNotAuthenticated, msg
		case http.StatusNotFound:
			return he.Code, handler.CodeNotFound, msg
		default:
			return he.Code, handler.CodeInternalError, msg
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.CodeInternalError, "internal server error"
}
