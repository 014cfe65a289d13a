// Package recruit holds the companion-recruitment posts: the filter/sort
// search engine and a thin CRUD service around them.
package recruit

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/models"
)

// Engine translates a SearchCriteria into one conjunctive query with a
// selectable ordering. Present criteria AND together; order of fields never
// changes the result.
type Engine struct {
	DB *gorm.DB
}

// Search runs the filter. viewer supplies the demographics for the
// same-gender/same-age criteria; for an anonymous viewer (nil, or one with
// unknown demographics) those criteria are dropped entirely.
func (e *Engine) Search(ctx context.Context, crit SearchCriteria, viewer *models.Member) ([]models.Recruit, error) {
	q := e.DB.WithContext(ctx).
		Model(&models.Recruit{}).
		Select("recruits.*").
		Joins("JOIN members ON members.id = recruits.member_id").
		Joins("JOIN places ON places.id = recruits.place_id").
		Preload("Member").
		Preload("Place")

	if crit.Keyword != nil {
		kw := "%" + strings.ToLower(*crit.Keyword) + "%"
		q = q.Where("(LOWER(recruits.title) LIKE ? OR LOWER(recruits.content) LIKE ?)", kw, kw)
	}
	if crit.CityName != nil {
		q = q.Where("places.city_name = ?", *crit.CityName)
	}
	if crit.IsClosed != nil {
		q = q.Where("recruits.is_closed = ?", *crit.IsClosed)
	}
	if crit.StartDate != nil {
		q = q.Where("recruits.start_date >= ?", *crit.StartDate)
	}
	if crit.EndDate != nil {
		q = q.Where("recruits.end_date <= ?", *crit.EndDate)
	}
	if crit.TravelStyle != nil {
		q = q.Where("recruits.travel_style = ?", *crit.TravelStyle)
	}

	// Demographic matching restricts only for a known viewer: a post passes
	// when it does not itself require matching, or its owner matches.
	if crit.SameGender != nil && *crit.SameGender && viewer != nil && viewer.Gender != "" {
		q = q.Where("(members.gender = ? OR recruits.same_gender = ?)", viewer.Gender, false)
	}
	if crit.SameAge != nil && *crit.SameAge && viewer != nil && viewer.AgeRange != "" {
		q = q.Where("(members.age_range = ? OR recruits.same_age = ?)", viewer.AgeRange, false)
	}

	if crit.MinBudget != nil {
		q = q.Where("recruits.budget >= ?", *crit.MinBudget)
	}
	if crit.MaxBudget != nil {
		q = q.Where("recruits.budget <= ?", *crit.MaxBudget)
	}
	if crit.MinGroupSize != nil {
		q = q.Where("recruits.group_size >= ?", *crit.MinGroupSize)
	}
	if crit.MaxGroupSize != nil {
		q = q.Where("recruits.group_size <= ?", *crit.MaxGroupSize)
	}

	var recruits []models.Recruit
	if err := q.Order(orderingFor(crit.SortBy)).Find(&recruits).Error; err != nil {
		return nil, fmt.Errorf("recruit search: %w", err)
	}
	return recruits, nil
}

const defaultOrdering = "recruits.created_at DESC"

// orderings is the closed set of sort strategies. Anything else falls back to
// newest-first.
var orderings = map[string]string{
	"startdate_asc":  "recruits.start_date ASC",
	"enddate_desc":   "recruits.end_date DESC",
	"trip_duration":  "(recruits.end_date - recruits.start_date) DESC",
	"budget_asc":     "recruits.budget ASC",
	"budget_desc":    "recruits.budget DESC",
	"groupsize_asc":  "recruits.group_size ASC",
	"groupsize_desc": "recruits.group_size DESC",
}

func orderingFor(sortBy *string) string {
	if sortBy == nil {
		return defaultOrdering
	}
	if o, ok := orderings[strings.ToLower(*sortBy)]; ok {
		return o
	}
	return defaultOrdering
}
