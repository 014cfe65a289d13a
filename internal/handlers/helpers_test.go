package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newQueryContext(rawQuery string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestExtractAccessTokenHeaderWinsOverCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer from-header")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "from-cookie"})
	c := echo.New().NewContext(req, httptest.NewRecorder())

	require.Equal(t, "from-header", ExtractAccessToken(c))
}

func TestExtractAccessTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "from-cookie"})
	c := echo.New().NewContext(req, httptest.NewRecorder())

	require.Equal(t, "from-cookie", ExtractAccessToken(c))
}

func TestExtractAccessTokenAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	require.Empty(t, ExtractAccessToken(c))
}

func TestQueryParamParsers(t *testing.T) {
	c := newQueryContext("keyword=walk&isClosed=true&minBudget=10000&startDate=2026-04-01")

	require.Equal(t, "walk", *strParam(c, "keyword"))
	require.Nil(t, strParam(c, "missing"))

	require.True(t, *boolParam(c, "isClosed"))
	require.Nil(t, boolParam(c, "missing"))

	require.Equal(t, 10000, *intParam(c, "minBudget"))
	require.Nil(t, intParam(c, "missing"))

	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *dateParam(c, "startDate"))
	require.Nil(t, dateParam(c, "missing"))
}

func TestQueryParamParsersIgnoreGarbage(t *testing.T) {
	c := newQueryContext("isClosed=maybe&minBudget=lots&startDate=April")

	require.Nil(t, boolParam(c, "isClosed"))
	require.Nil(t, intParam(c, "minBudget"))
	require.Nil(t, dateParam(c, "startDate"))
}

func TestDeleteCookieExpiresImmediately(t *testing.T) {
	cookie := DeleteCookie("accessToken", "/")
	require.Negative(t, cookie.MaxAge)
	require.Empty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
}
