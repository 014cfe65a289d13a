package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/logging"
	"github.com/tripfriend/backend/internal/models"
	"github.com/tripfriend/backend/internal/search"
	"github.com/tripfriend/backend/internal/util"
)

type PlaceHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

func (h *PlaceHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place_create")

	var place models.Place
	if err := c.Bind(&place); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if place.CityName == "" || place.PlaceName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "city_name and place_name are required")
	}

	if err := h.DB.WithContext(ctx).Create(&place).Error; err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// best effort; the relational store is the system of record
	if err := h.index(c, &place); err != nil {
		l.Error("es_index_error", "place_id", place.ID, "error", err)
	}

	return c.JSON(http.StatusOK, place)
}

func (h *PlaceHandler) index(c echo.Context, place *models.Place) error {
	if h.ES == nil {
		return nil
	}
	doc, err := json.Marshal(place)
	if err != nil {
		return err
	}
	res, err := h.ES.Index(
		h.Index,
		bytes.NewReader(doc),
		h.ES.Index.WithDocumentID(fmt.Sprint(place.ID)),
		h.ES.Index.WithContext(c.Request().Context()),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index place: %s", res.Status())
	}
	return nil
}

func (h *PlaceHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	var places []models.Place
	err := h.DB.WithContext(c.Request().Context()).
		Order("city_name, place_name").
		Offset(from).Limit(limit).
		Find(&places).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": len(places), "places": places})
}

func (h *PlaceHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var place models.Place
	if err := h.DB.WithContext(c.Request().Context()).First(&place, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "place not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.WithContext(c.Request().Context()).Delete(&place).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *PlaceHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, places, err := search.Places(c.Request().Context(), h.ES, h.Index, q, from, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "places": places})
}
