package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripfriend/backend/internal/auth"
	"github.com/tripfriend/backend/internal/logging"
	"github.com/tripfriend/backend/internal/mykafka"
)

type AuthHandler struct {
	Auth     *auth.Service
	Producer *mykafka.Producer
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountPermanentlyDeleted) {
			l.Warn("login_failed", "status", 401, "reason", "account_permanently_deleted")
			return echo.NewHTTPError(http.StatusUnauthorized, "account permanently deleted")
		}
		if auth.IsAuthOutcome(err) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(CreateCookie("accessToken", result.AccessToken, "/", result.AccessExp))
	c.SetCookie(CreateCookie("refreshToken", result.RefreshToken, "/", result.RefreshExp))

	event := map[string]interface{}{
		"type":          "member_logged_in",
		"username":      req.Username,
		"recovery_mode": result.RecoveryMode,
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(pubCtx, "member_events", req.Username, event); err != nil {
		l.Error("kafka_publish_error", "error", err)
	}

	l.Info("login_success", "recovery_mode", result.RecoveryMode)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"recovery_mode": result.RecoveryMode,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if err := h.Auth.Logout(ctx, ExtractAccessToken(c)); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(DeleteCookie("accessToken", "/"))
	c.SetCookie(DeleteCookie("refreshToken", "/"))
	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	accessToken := ExtractAccessToken(c)
	if accessToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "access token missing")
	}

	result, err := h.Auth.Refresh(ctx, accessToken)
	if err != nil {
		if auth.IsAuthOutcome(err) {
			l.Warn("refresh_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("cannot refresh: %v", err))
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	c.SetCookie(CreateCookie("accessToken", result.AccessToken, "/", result.AccessExp))
	c.SetCookie(CreateCookie("refreshToken", result.RefreshToken, "/", result.RefreshExp))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"recovery_mode": result.RecoveryMode,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, CurrentMember(c))
}
