package recruit

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

type engineFixture struct {
	engine *Engine
	female *models.Member
	male   *models.Member
}

// Three posts with distinct owners, places, dates, budgets and matching
// policies, created oldest to newest:
//
//	"seoul walk"  FEMALE owner, 서울, same-gender only, budget 10000, 2 people
//	"busan food"  MALE owner, 부산, same-gender and same-age, budget 20000, 4 people
//	"seoul open"  MALE owner, 서울, no matching, closed, budget 30000, 6 people
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.Place{}, &models.Recruit{}))

	female := &models.Member{Username: "yuna", Email: "yuna@example.com", PasswordHash: "x",
		Nickname: "yuna", Gender: models.GenderFemale, AgeRange: "TWENTIES",
		TravelStyle: "SIGHTSEEING", Authority: models.AuthorityUser}
	male := &models.Member{Username: "minsu", Email: "minsu@example.com", PasswordHash: "x",
		Nickname: "minsu", Gender: models.GenderMale, AgeRange: "THIRTIES",
		TravelStyle: "FOOD", Authority: models.AuthorityUser}
	require.NoError(t, db.Create(female).Error)
	require.NoError(t, db.Create(male).Error)

	seoul := &models.Place{CityName: "서울", PlaceName: "경복궁"}
	busan := &models.Place{CityName: "부산", PlaceName: "해운대"}
	require.NoError(t, db.Create(seoul).Error)
	require.NoError(t, db.Create(busan).Error)

	base := date("2026-01-01")
	posts := []models.Recruit{
		{MemberID: female.ID, PlaceID: seoul.ID, Title: "seoul walk", Content: "slow palace Walk",
			StartDate: date("2026-04-01"), EndDate: date("2026-04-05"), TravelStyle: "SIGHTSEEING",
			SameGender: true, SameAge: false, Budget: 10000, GroupSize: 2, CreatedAt: base},
		{MemberID: male.ID, PlaceID: busan.ID, Title: "busan food", Content: "street food crawl",
			StartDate: date("2026-05-01"), EndDate: date("2026-05-10"), TravelStyle: "FOOD",
			SameGender: true, SameAge: true, Budget: 20000, GroupSize: 4, CreatedAt: base.Add(time.Hour)},
		{MemberID: male.ID, PlaceID: seoul.ID, Title: "seoul open", Content: "anyone welcome",
			StartDate: date("2026-06-01"), EndDate: date("2026-06-03"), TravelStyle: "SIGHTSEEING",
			IsClosed: true, SameGender: false, SameAge: false, Budget: 30000, GroupSize: 6,
			CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range posts {
		require.NoError(t, db.Create(&posts[i]).Error)
	}

	return &engineFixture{engine: &Engine{DB: db}, female: female, male: male}
}

func titles(rs []models.Recruit) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestSearchDefaultOrderIsNewestFirst(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "busan food", "seoul walk"}, titles(got))
}

func TestSearchByCity(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{CityName: ptr("부산")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"busan food"}, titles(got))
}

func TestSearchKeywordIsCaseInsensitive(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{Keyword: ptr("WALK")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul walk"}, titles(got))
}

func TestSearchByOpenState(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{IsClosed: ptr(false)}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"busan food", "seoul walk"}, titles(got))
}

func TestSearchByDateRange(t *testing.T) {
	f := newEngineFixture(t)

	crit := SearchCriteria{
		StartDate: ptr(date("2026-04-15")),
		EndDate:   ptr(date("2026-05-31")),
	}
	got, err := f.engine.Search(context.Background(), crit, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"busan food"}, titles(got))
}

func TestSearchCriteriaConjoin(t *testing.T) {
	f := newEngineFixture(t)

	crit := SearchCriteria{
		CityName:    ptr("서울"),
		TravelStyle: ptr("SIGHTSEEING"),
		MaxBudget:   ptr(15000),
	}
	got, err := f.engine.Search(context.Background(), crit, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul walk"}, titles(got))
}

func TestSearchSameGenderIgnoredForAnonymousViewer(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{SameGender: ptr(true)}, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestSearchSameGenderForKnownViewer(t *testing.T) {
	f := newEngineFixture(t)

	// a female viewer keeps female-owned posts and posts that do not restrict
	got, err := f.engine.Search(context.Background(), SearchCriteria{SameGender: ptr(true)}, f.female)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "seoul walk"}, titles(got))

	got, err = f.engine.Search(context.Background(), SearchCriteria{SameGender: ptr(true)}, f.male)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "busan food"}, titles(got))
}

func TestSearchSameAgeForKnownViewer(t *testing.T) {
	f := newEngineFixture(t)

	// only "busan food" restricts by age; its owner is THIRTIES
	got, err := f.engine.Search(context.Background(), SearchCriteria{SameAge: ptr(true)}, f.female)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "seoul walk"}, titles(got))

	got, err = f.engine.Search(context.Background(), SearchCriteria{SameAge: ptr(true)}, f.male)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestSearchSameGenderFalseDoesNotRestrict(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{SameGender: ptr(false)}, f.female)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestSearchByBudgetRange(t *testing.T) {
	f := newEngineFixture(t)

	crit := SearchCriteria{MinBudget: ptr(15000), MaxBudget: ptr(25000)}
	got, err := f.engine.Search(context.Background(), crit, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"busan food"}, titles(got))
}

func TestSearchSortByBudget(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{SortBy: ptr("budget_asc")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul walk", "busan food", "seoul open"}, titles(got))

	got, err = f.engine.Search(context.Background(), SearchCriteria{SortBy: ptr("budget_desc")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "busan food", "seoul walk"}, titles(got))
}

func TestSearchSortByGroupSize(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{SortBy: ptr("groupsize_desc")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "busan food", "seoul walk"}, titles(got))
}

func TestSearchSortByStartDate(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{SortBy: ptr("startdate_asc")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul walk", "busan food", "seoul open"}, titles(got))
}

func TestSearchUnknownSortFallsBack(t *testing.T) {
	f := newEngineFixture(t)

	got, err := f.engine.Search(context.Background(), SearchCriteria{SortBy: ptr("bogus")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"seoul open", "busan food", "seoul walk"}, titles(got))
}

func TestOrderingFor(t *testing.T) {
	require.Equal(t, defaultOrdering, orderingFor(nil))
	require.Equal(t, defaultOrdering, orderingFor(ptr("nonsense")))
	require.Equal(t, "recruits.budget ASC", orderingFor(ptr("budget_asc")))
	require.Equal(t, "recruits.budget ASC", orderingFor(ptr("BUDGET_ASC")))
	require.Equal(t, "(recruits.end_date - recruits.start_date) DESC", orderingFor(ptr("trip_duration")))
	require.Equal(t, "recruits.group_size DESC", orderingFor(ptr("groupsize_desc")))
}
