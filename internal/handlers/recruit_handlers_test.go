package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/tripfriend/backend/internal/models"
	"github.com/tripfriend/backend/internal/mykafka"
	"github.com/tripfriend/backend/internal/recruit"
)

func (f *handlerFixture) recruitHandler() *RecruitHandler {
	return &RecruitHandler{
		Recruits: &recruit.Service{DB: f.db},
		Engine:   &recruit.Engine{DB: f.db},
		Auth:     f.authSvc,
		Producer: &mykafka.Producer{},
	}
}

func (f *handlerFixture) seedRecruit(t *testing.T, author *models.Member, place *models.Place, title string, sameGender bool) *models.Recruit {
	t.Helper()
	r := &models.Recruit{
		MemberID:   author.ID,
		PlaceID:    place.ID,
		Title:      title,
		Content:    "details for " + title,
		StartDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		SameGender: sameGender,
		GroupSize:  2,
	}
	require.NoError(t, f.db.Create(r).Error)
	return r
}

func TestSearchHandlerAnonymous(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedMember(t, "owner", "password1")
	place := &models.Place{CityName: "서울", PlaceName: "광화문"}
	require.NoError(t, f.db.Create(place).Error)
	f.seedRecruit(t, owner, place, "women only walk", true)
	f.seedRecruit(t, owner, place, "open walk", false)

	// no token at all: the same-gender criterion is dropped, both posts return
	c, rec := f.jsonRequest(http.MethodGet, "/api/v1/recruits/search?sameGender=true", nil)
	require.NoError(t, f.recruitHandler().Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    int              `json:"total"`
		Recruits []models.Recruit `json:"recruits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Total)
}

func TestSearchHandlerWithViewer(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedMember(t, "owner", "password1") // FEMALE, TWENTIES
	place := &models.Place{CityName: "서울", PlaceName: "광화문"}
	require.NoError(t, f.db.Create(place).Error)
	f.seedRecruit(t, owner, place, "women only walk", true)
	f.seedRecruit(t, owner, place, "open walk", false)

	viewer := &models.Member{Username: "viewer", Email: "v@example.com", PasswordHash: "x",
		Nickname: "viewer", Gender: models.GenderMale, AgeRange: "THIRTIES",
		TravelStyle: "FOOD", Authority: models.AuthorityUser, Verified: true}
	require.NoError(t, f.db.Create(viewer).Error)
	access, err := f.authSvc.Codec.IssueAccessToken("viewer", models.AuthorityUser, true, false)
	require.NoError(t, err)
	require.NoError(t, f.store.SetAccessToken(context.Background(), "viewer", access, time.Minute))

	c, rec := f.jsonRequest(http.MethodGet, "/api/v1/recruits/search?sameGender=true", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	require.NoError(t, f.recruitHandler().Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total    int              `json:"total"`
		Recruits []models.Recruit `json:"recruits"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	require.Equal(t, "open walk", body.Recruits[0].Title)
}

func TestSearchHandlerInvalidTokenFallsBackToAnonymous(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedMember(t, "owner", "password1")
	place := &models.Place{CityName: "부산", PlaceName: "해운대"}
	require.NoError(t, f.db.Create(place).Error)
	f.seedRecruit(t, owner, place, "women only trip", true)

	c, rec := f.jsonRequest(http.MethodGet, "/api/v1/recruits/search?sameGender=true", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	require.NoError(t, f.recruitHandler().Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
}

func TestRecruitGetHandlerNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	c, _ := f.jsonRequest(http.MethodGet, "/api/v1/recruits/42", nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	requireHTTPError(t, f.recruitHandler().Get(c), http.StatusNotFound)
}

func TestRecruitCreateHandlerUnknownPlace(t *testing.T) {
	f := newHandlerFixture(t)
	author := f.seedMember(t, "author", "password1")

	c, _ := f.jsonRequest(http.MethodPost, "/api/v1/recruits",
		map[string]any{"place_id": 9999, "title": "x", "content": "y"})
	SetCurrentMember(c, author)
	requireHTTPError(t, f.recruitHandler().Create(c), http.StatusBadRequest)
}

func TestRecruitDeleteHandlerForbidden(t *testing.T) {
	f := newHandlerFixture(t)
	owner := f.seedMember(t, "owner", "password1")
	stranger := f.seedMember(t, "stranger", "password1")
	place := &models.Place{CityName: "서울", PlaceName: "남산"}
	require.NoError(t, f.db.Create(place).Error)
	r := f.seedRecruit(t, owner, place, "my trip", false)

	c, _ := f.jsonRequest(http.MethodDelete, "/api/v1/recruits/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(r.ID))
	SetCurrentMember(c, stranger)
	requireHTTPError(t, f.recruitHandler().Delete(c), http.StatusForbidden)
}
