// Package member implements the member directory: join, soft delete with a
// 30-day recovery window, restore, and the periodic purge of accounts whose
// window has elapsed.
package member

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/credstore"
	"github.com/tripfriend/backend/internal/hash"
	"github.com/tripfriend/backend/internal/logging"
	"github.com/tripfriend/backend/internal/models"
)

var (
	ErrNotFound             = errors.New("member not found")
	ErrUsernameTaken        = errors.New("username already in use")
	ErrRestoreWindowExpired = errors.New("restore window expired")
)

type Service struct {
	DB    *gorm.DB
	Store credstore.Store
}

type JoinRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Nickname    string `json:"nickname"`
	Gender      string `json:"gender"`
	AgeRange    string `json:"age_range"`
	TravelStyle string `json:"travel_style"`
}

func (s *Service) Join(ctx context.Context, req JoinRequest) (*models.Member, error) {
	var existing models.Member
	err := s.DB.WithContext(ctx).Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("member lookup: %w", err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	member := models.Member{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Nickname:     req.Nickname,
		Gender:       req.Gender,
		AgeRange:     req.AgeRange,
		TravelStyle:  req.TravelStyle,
		Authority:    models.AuthorityUser,
	}
	if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return &member, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	var member models.Member
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("member lookup: %w", err)
	}
	return &member, nil
}

// Delete soft-deletes: the row stays, flagged and timestamped, and the stored
// session is dropped so the account goes quiet immediately.
func (s *Service) Delete(ctx context.Context, id uint) error {
	var member models.Member
	if err := s.DB.WithContext(ctx).First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("member lookup: %w", err)
	}
	if member.Deleted {
		return nil
	}

	now := time.Now()
	updates := map[string]any{"deleted": true, "deleted_at": now}
	if err := s.DB.WithContext(ctx).Model(&member).Updates(updates).Error; err != nil {
		return fmt.Errorf("soft delete member: %w", err)
	}

	if err := s.Store.DeleteAccessToken(ctx, member.Username); err != nil {
		return fmt.Errorf("delete access token: %w", err)
	}
	if err := s.Store.DeleteRefreshToken(ctx, member.Username); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	logging.FromContext(ctx).Info("member_soft_deleted", "member_id", id)
	return nil
}

// Restore reactivates a soft-deleted member while the 30-day window is open.
func (s *Service) Restore(ctx context.Context, id uint) error {
	var member models.Member
	if err := s.DB.WithContext(ctx).First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("member lookup: %w", err)
	}
	if !member.Deleted {
		return nil
	}
	if !member.CanBeRestored() {
		return ErrRestoreWindowExpired
	}

	updates := map[string]any{"deleted": false, "deleted_at": nil}
	if err := s.DB.WithContext(ctx).Model(&member).Updates(updates).Error; err != nil {
		return fmt.Errorf("restore member: %w", err)
	}

	logging.FromContext(ctx).Info("member_restored", "member_id", id)
	return nil
}

// PurgeExpired hard-deletes rows already past the recovery window. Once the
// window has elapsed the condition cannot be undone by a concurrent restore,
// so the sweep is safe to run alongside logins and restores.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-models.RestoreWindow)
	res := s.DB.WithContext(ctx).
		Where("deleted = ? AND deleted_at < ?", true, cutoff).
		Delete(&models.Member{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge expired members: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RunPurgeLoop sweeps on a fixed interval until the context is cancelled.
// Production runs it daily.
func (s *Service) RunPurgeLoop(ctx context.Context, interval time.Duration) {
	l := logging.FromContext(ctx).With("svc", "member.purge")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				l.Error("purge_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("purge_complete", "removed", n)
			}
		}
	}
}
