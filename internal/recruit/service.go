package recruit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/models"
)

var (
	ErrNotFound      = errors.New("recruit not found")
	ErrPlaceNotFound = errors.New("place not found")
	ErrForbidden     = errors.New("not the author of this recruit")
)

type Service struct {
	DB *gorm.DB
}

type CreateRequest struct {
	PlaceID     uint      `json:"place_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TravelStyle string    `json:"travel_style"`
	SameGender  bool      `json:"same_gender"`
	SameAge     bool      `json:"same_age"`
	Budget      int       `json:"budget"`
	GroupSize   int       `json:"group_size"`
}

func (s *Service) Create(ctx context.Context, author *models.Member, req CreateRequest) (*models.Recruit, error) {
	var place models.Place
	if err := s.DB.WithContext(ctx).First(&place, req.PlaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("place lookup: %w", err)
	}

	groupSize := req.GroupSize
	if groupSize <= 0 {
		groupSize = 2
	}
	r := models.Recruit{
		MemberID:    author.ID,
		PlaceID:     place.ID,
		Title:       req.Title,
		Content:     req.Content,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TravelStyle: req.TravelStyle,
		SameGender:  req.SameGender,
		SameAge:     req.SameAge,
		Budget:      req.Budget,
		GroupSize:   groupSize,
	}
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, fmt.Errorf("create recruit: %w", err)
	}
	r.Member = *author
	r.Place = place
	return &r, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Recruit, error) {
	var r models.Recruit
	err := s.DB.WithContext(ctx).Preload("Member").Preload("Place").First(&r, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("recruit lookup: %w", err)
	}
	return &r, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Recruit, error) {
	var recruits []models.Recruit
	err := s.DB.WithContext(ctx).
		Preload("Member").Preload("Place").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&recruits).Error
	if err != nil {
		return nil, fmt.Errorf("list recruits: %w", err)
	}
	return recruits, nil
}

// Delete removes a post. Only the author or an admin may do so.
func (s *Service) Delete(ctx context.Context, requester *models.Member, id uint) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.MemberID != requester.ID && requester.Authority != models.AuthorityAdmin {
		return ErrForbidden
	}
	if err := s.DB.WithContext(ctx).Where("recruit_id = ?", id).Delete(&models.Apply{}).Error; err != nil {
		return fmt.Errorf("delete applies: %w", err)
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Recruit{}, id).Error; err != nil {
		return fmt.Errorf("delete recruit: %w", err)
	}
	return nil
}

func (s *Service) Apply(ctx context.Context, applicant *models.Member, recruitID uint, content string) (*models.Apply, error) {
	if _, err := s.Get(ctx, recruitID); err != nil {
		return nil, err
	}
	a := models.Apply{
		RecruitID: recruitID,
		MemberID:  applicant.ID,
		Content:   content,
	}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("create apply: %w", err)
	}
	a.Member = *applicant
	return &a, nil
}
