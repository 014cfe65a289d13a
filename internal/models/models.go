package models

import (
	"time"
)

const (
	AuthorityUser  = "USER"
	AuthorityAdmin = "ADMIN"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// RestoreWindow is how long a soft-deleted member can still be recovered.
const RestoreWindow = 30 * 24 * time.Hour

type Member struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string     `gorm:"unique;not null"           json:"username"`
	Email        string     `gorm:"not null"                  json:"email"`
	PasswordHash string     `gorm:"not null"                  json:"-"`
	Nickname     string     `gorm:"not null"                  json:"nickname"`
	ProfileImage string     `json:"profile_image,omitempty"`
	Gender       string     `gorm:"not null"                  json:"gender"`
	AgeRange     string     `gorm:"not null"                  json:"age_range"`
	TravelStyle  string     `gorm:"not null"                  json:"travel_style"`
	AboutMe      string     `json:"about_me,omitempty"`
	Rating       float64    `gorm:"not null;default:0"        json:"rating"`
	Authority    string     `gorm:"not null"                  json:"authority"`
	Verified     bool       `gorm:"not null;default:false"    json:"verified"`
	Provider     string     `json:"provider,omitempty"`
	ProviderID   string     `json:"provider_id,omitempty"`
	Deleted      bool       `gorm:"not null;default:false"    json:"deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanBeRestored reports whether a soft-deleted member is still inside the
// recovery window. An active member cannot be "restored".
func (m *Member) CanBeRestored() bool {
	if !m.Deleted || m.DeletedAt == nil {
		return false
	}
	return time.Now().Before(m.DeletedAt.Add(RestoreWindow))
}

type Place struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CityName    string    `gorm:"not null;index"           json:"city_name"`
	PlaceName   string    `gorm:"not null"                 json:"place_name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Recruit struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID    uint      `gorm:"index;not null"           json:"member_id"`
	Member      Member    `json:"member"`
	PlaceID     uint      `gorm:"index;not null"           json:"place_id"`
	Place       Place     `json:"place"`
	Title       string    `gorm:"not null"                 json:"title"`
	Content     string    `gorm:"not null"                 json:"content"`
	IsClosed    bool      `gorm:"not null;default:false"   json:"is_closed"`
	StartDate   time.Time `gorm:"not null"                 json:"start_date"`
	EndDate     time.Time `gorm:"not null"                 json:"end_date"`
	TravelStyle string    `gorm:"not null"                 json:"travel_style"`
	SameGender  bool      `gorm:"not null;default:false"   json:"same_gender"`
	SameAge     bool      `gorm:"not null;default:false"   json:"same_age"`
	Budget      int       `gorm:"not null;default:0"       json:"budget"`
	GroupSize   int       `gorm:"not null;default:2"       json:"group_size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Apply struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RecruitID uint      `gorm:"index;not null"           json:"recruit_id"`
	MemberID  uint      `gorm:"index;not null"           json:"member_id"`
	Member    Member    `json:"member"`
	Content   string    `gorm:"not null"                 json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
