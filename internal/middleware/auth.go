package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"clinica-agenda-api/internal/auth"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "uid"

// Auth validates the Bearer token and stashes the user id in the
// request context. Routes registered outside the authed group (login,
// register, health) never pass through here.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if h := c.Request().Header.Get("Authorization"); h != "" {
				raw = strings.TrimPrefix(h, "Bearer ")
			}
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "no token")
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "bad token")
			}

			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id, or "" when auth is disabled
// (demo mode).
func UserID(c echo.Context) string {
	uid, _ := c.Get(UserIDKey).(string)
	return uid
}
