package recruit

import "time"

// SearchCriteria is the open set of optional filters for the companion
// search. A nil field imposes no constraint at all; it is never collapsed
// into a default value.
type SearchCriteria struct {
	Keyword      *string
	CityName     *string
	IsClosed     *bool
	StartDate    *time.Time
	EndDate      *time.Time
	TravelStyle  *string
	SameGender   *bool
	SameAge      *bool
	MinBudget    *int
	MaxBudget    *int
	MinGroupSize *int
	MaxGroupSize *int
	SortBy       *string
}
