package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/identity-systems/user-api/internal/core/domain"
)

// RequireAuth rejects anonymous callers. Routes behind it can rely on a
// non-empty subject in the context; finer-grained checks (self-or-admin,
// admin-only) stay in the service layer where the target record is known.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Subject(c) == "" {
				return domain.ErrNotAuthenticated
			}
			return next(c)
		}
	}
}
