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
	"github.com/tripfriend/backend/internal/member"
	"github.com/tripfriend/backend/internal/mykafka"
)

type MemberHandler struct {
	Members  *member.Service
	Auth     *auth.Service
	Producer *mykafka.Producer
}

func (h *MemberHandler) Join(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "member_join")

	var req member.JoinRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("join_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	m, err := h.Members.Join(ctx, req)
	if err != nil {
		if errors.Is(err, member.ErrUsernameTaken) {
			l.Warn("join_failed", "status", 409, "reason", "username_taken")
			return echo.NewHTTPError(http.StatusConflict, "username already in use")
		}
		l.Error("join_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	event := map[string]interface{}{
		"type":      "member_joined",
		"member_id": m.ID,
		"username":  m.Username,
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(pubCtx, "member_events", fmt.Sprint(m.ID), event); err != nil {
		l.Error("kafka_publish_error", "error", err)
	}

	l.Info("join_success", "member_id", m.ID)
	return c.JSON(http.StatusOK, m)
}

// Delete soft-deletes the calling member and revokes their session.
func (h *MemberHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "member_delete")

	m := CurrentMember(c)
	if err := h.Members.Delete(ctx, m.ID); err != nil {
		l.Error("delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.Auth.Logout(ctx, ExtractAccessToken(c)); err != nil {
		l.Error("delete_logout_failed", "error", err)
	}

	c.SetCookie(DeleteCookie("accessToken", "/"))
	c.SetCookie(DeleteCookie("refreshToken", "/"))
	return c.JSON(http.StatusOK, echo.Map{"message": "account scheduled for deletion"})
}

// Restore reactivates a soft-deleted account; only reachable with a
// recovery-mode session inside the 30-day window.
func (h *MemberHandler) Restore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "member_restore")

	m := CurrentMember(c)
	if err := h.Members.Restore(ctx, m.ID); err != nil {
		if errors.Is(err, member.ErrRestoreWindowExpired) {
			l.Warn("restore_failed", "status", 403, "reason", "window_expired")
			return echo.NewHTTPError(http.StatusForbidden, "restore window expired")
		}
		l.Error("restore_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account restored"})
}

// Purge is the admin trigger for the sweep that otherwise runs on a schedule.
func (h *MemberHandler) Purge(c echo.Context) error {
	ctx := c.Request().Context()
	n, err := h.Members.PurgeExpired(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}
