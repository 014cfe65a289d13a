package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tripfriend/backend/internal/handlers"
	"github.com/tripfriend/backend/internal/models"
)

// AdminOnly gates a route on the ADMIN authority. It implies RequireLogin.
func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireLogin(func(c echo.Context) error {
		member := handlers.CurrentMember(c)
		if member == nil || member.Authority != models.AuthorityAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	})
}
