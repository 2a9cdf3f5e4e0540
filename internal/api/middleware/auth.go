package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/identity-systems/user-api/internal/core/ports"
)

// SubjectKey is the echo context key under which the resolved subject name
// is stored. Absent means the caller is anonymous.
const SubjectKey = "subject"

// Auth resolves the caller from the Authorization header. A missing,
// malformed or invalid bearer token does NOT reject the request: the
// request simply proceeds anonymous and route gating decides what an
// anonymous caller may do. The token only vouches for the subject name;
// role is re-fetched from the store by the service layer.
func Auth(tokens ports.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return next(c)
			}

			subject, err := tokens.Validate(parts[1])
			if err != nil {
				return next(c)
			}

			c.Set(SubjectKey, subject)
			return next(c)
		}
	}
}

// Subject returns the resolved subject name, or "" for anonymous callers.
func Subject(c echo.Context) string {
	subject, _ := c.Get(SubjectKey).(string)
	return subject
}
