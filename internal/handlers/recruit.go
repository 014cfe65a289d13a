package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tripfriend/backend/internal/auth"
	"github.com/tripfriend/backend/internal/logging"
	"github.com/tripfriend/backend/internal/models"
	"github.com/tripfriend/backend/internal/mykafka"
	"github.com/tripfriend/backend/internal/recruit"
	"github.com/tripfriend/backend/internal/util"
)

type RecruitHandler struct {
	Recruits *recruit.Service
	Engine   *recruit.Engine
	Auth     *auth.Service
	Producer *mykafka.Producer
}

// Search accepts the fully optional criteria set. The bearer token is itself
// optional: anonymous searches are valid, they just never get demographic
// matching applied.
func (h *RecruitHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recruit_search")

	crit := recruit.SearchCriteria{
		Keyword:      strParam(c, "keyword"),
		CityName:     strParam(c, "cityName"),
		IsClosed:     boolParam(c, "isClosed"),
		StartDate:    dateParam(c, "startDate"),
		EndDate:      dateParam(c, "endDate"),
		TravelStyle:  strParam(c, "travelStyle"),
		SameGender:   boolParam(c, "sameGender"),
		SameAge:      boolParam(c, "sameAge"),
		MinBudget:    intParam(c, "minBudget"),
		MaxBudget:    intParam(c, "maxBudget"),
		MinGroupSize: intParam(c, "minGroupSize"),
		MaxGroupSize: intParam(c, "maxGroupSize"),
		SortBy:       strParam(c, "sortBy"),
	}

	var viewer *models.Member
	if tok := ExtractAccessToken(c); tok != "" {
		if m, err := h.Auth.ResolveCurrentMember(ctx, tok); err == nil {
			viewer = m
		}
	}

	recruits, err := h.Engine.Search(ctx, crit, viewer)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": len(recruits), "recruits": recruits})
}

func (h *RecruitHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "recruit_create")

	var req recruit.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	r, err := h.Recruits.Create(ctx, CurrentMember(c), req)
	if err != nil {
		if errors.Is(err, recruit.ErrPlaceNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "place not found")
		}
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	event := map[string]interface{}{
		"type":       "recruit_created",
		"recruit_id": r.ID,
		"member_id":  r.MemberID,
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(pubCtx, "recruit_events", fmt.Sprint(r.ID), event); err != nil {
		l.Error("kafka_publish_error", "error", err)
	}

	return c.JSON(http.StatusOK, r)
}

func (h *RecruitHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.Recruits.Get(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, recruit.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "recruit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *RecruitHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	recruits, err := h.Recruits.List(c.Request().Context(), from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": len(recruits), "recruits": recruits})
}

func (h *RecruitHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err = h.Recruits.Delete(c.Request().Context(), CurrentMember(c), uint(id))
	if err != nil {
		if errors.Is(err, recruit.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "recruit not found")
		}
		if errors.Is(err, recruit.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "not allowed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *RecruitHandler) Apply(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	a, err := h.Recruits.Apply(c.Request().Context(), CurrentMember(c), uint(id), req.Content)
	if err != nil {
		if errors.Is(err, recruit.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "recruit not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, a)
}
