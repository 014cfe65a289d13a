// Package auth provides the route guards. Role checks are an explicit
// middleware layer, not something buried in handlers.
package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authsvc "github.com/tripfriend/backend/internal/auth"
	"github.com/tripfriend/backend/internal/handlers"
	"github.com/tripfriend/backend/internal/logging"
)

type Middleware struct {
	Auth *authsvc.Service
}

// RequireLogin resolves the presented bearer token into a member and stores
// it on the request context. Auth outcomes map to 401; store or DB failures
// are 500, so clients can tell "not authorized" from "unavailable".
func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		tok := handlers.ExtractAccessToken(c)
		if tok == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		member, err := m.Auth.ResolveCurrentMember(ctx, tok)
		if err != nil {
			if authsvc.IsAuthOutcome(err) {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			logging.FromContext(ctx).Error("resolve_member_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		handlers.SetCurrentMember(c, member)
		return next(c)
	}
}
