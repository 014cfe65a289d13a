// Package auth is the session manager: it coordinates the token codec and the
// credential store. A token is honored only if it is well-signed, unexpired,
// not blacklisted AND equal to the token currently recorded for its subject.
// The last check is what gives one active session per member.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tripfriend/backend/internal/credstore"
	"github.com/tripfriend/backend/internal/hash"
	"github.com/tripfriend/backend/internal/logging"
	"github.com/tripfriend/backend/internal/models"
	"github.com/tripfriend/backend/internal/token"
)

// refreshRenewalFraction: rotate the refresh token once less than 30% of its
// nominal lifetime remains.
const refreshRenewalFraction = 0.3

type Service struct {
	DB    *gorm.DB
	Codec *token.Codec
	Store credstore.Store
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	RecoveryMode bool
}

// Login authenticates by password. A soft-deleted member inside the 30-day
// window gets short-lived recovery tokens; past the window the account is
// gone for good. Storing the new pair supersedes any previous session.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	var member models.Member
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown_username")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("member lookup: %w", err)
	}

	if !hash.CheckPassword(member.PasswordHash, password) {
		l.Warn("login_failed", "reason", "bad_password")
		return nil, ErrInvalidCredentials
	}

	recovering := false
	if member.Deleted {
		if !member.CanBeRestored() {
			l.Warn("login_failed", "reason", "restore_window_elapsed")
			return nil, ErrAccountPermanentlyDeleted
		}
		recovering = true
	}

	result, err := s.issueSession(ctx, &member, recovering)
	if err != nil {
		return nil, err
	}
	l.Info("login_success", "recovery_mode", recovering)
	return result, nil
}

func (s *Service) issueSession(ctx context.Context, m *models.Member, recovering bool) (*LoginResult, error) {
	accessToken, err := s.Codec.IssueAccessToken(m.Username, m.Authority, m.Verified, recovering)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, err := s.Codec.IssueRefreshToken(m.Username, m.Authority, m.Verified, recovering)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	accessTTL := s.Codec.AccessTTLFor(recovering)
	refreshTTL := s.Codec.RefreshTTLFor(recovering)

	if err := s.Store.SetAccessToken(ctx, m.Username, accessToken, accessTTL); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	if err := s.Store.SetRefreshToken(ctx, m.Username, refreshToken, refreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	now := time.Now()
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    now.Add(accessTTL),
		RefreshExp:   now.Add(refreshTTL),
		RecoveryMode: recovering,
	}, nil
}

// Logout blacklists the presented access token for its remaining lifetime and
// drops the stored session records. It is idempotent: no token, a malformed
// token or an already-revoked token is a successful no-op.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	claims, err := s.Codec.Parse(accessToken)
	if err != nil {
		// unparseable tokens carry no subject and no remaining lifetime
		return nil
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := s.Store.Blacklist(ctx, accessToken, ttl); err != nil {
				return fmt.Errorf("blacklist token: %w", err)
			}
		}
	}
	if err := s.Store.DeleteAccessToken(ctx, claims.Subject); err != nil {
		return fmt.Errorf("delete access token: %w", err)
	}
	if err := s.Store.DeleteRefreshToken(ctx, claims.Subject); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	logging.FromContext(ctx).Info("logout", "username", claims.Subject)
	return nil
}

// Refresh mints a new access token from the claims of a possibly expired one.
// Expiry of the presented token is fine here; only malformedness is fatal.
// The stored refresh token is rotated when its remaining lifetime drops below
// 30% of nominal, otherwise returned unchanged.
func (s *Service) Refresh(ctx context.Context, accessToken string) (*LoginResult, error) {
	claims, err := s.Codec.Parse(accessToken)
	if err != nil {
		return nil, err
	}
	username := claims.Subject

	storedRefresh, err := s.Store.RefreshToken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("refresh token lookup: %w", err)
	}
	if storedRefresh == "" {
		return nil, ErrNoStoredSession
	}

	storedClaims, err := s.Codec.Parse(storedRefresh)
	if err != nil || storedClaims.ExpiresAt == nil {
		return nil, ErrRefreshTokenExpired
	}
	remaining := time.Until(storedClaims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil, ErrRefreshTokenExpired
	}

	recovering := claims.Deleted
	newAccess, err := s.Codec.IssueAccessToken(username, claims.Authority, claims.Verified, recovering)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	accessTTL := s.Codec.AccessTTLFor(recovering)
	if err := s.Store.SetAccessToken(ctx, username, newAccess, accessTTL); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}

	now := time.Now()
	result := &LoginResult{
		AccessToken:  newAccess,
		RefreshToken: storedRefresh,
		AccessExp:    now.Add(accessTTL),
		RefreshExp:   storedClaims.ExpiresAt.Time,
		RecoveryMode: recovering,
	}

	nominal := s.Codec.RefreshTTLFor(recovering)
	if float64(remaining) < float64(nominal)*refreshRenewalFraction {
		newRefresh, err := s.Codec.IssueRefreshToken(username, claims.Authority, claims.Verified, recovering)
		if err != nil {
			return nil, fmt.Errorf("issue refresh token: %w", err)
		}
		if err := s.Store.SetRefreshToken(ctx, username, newRefresh, nominal); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
		result.RefreshToken = newRefresh
		result.RefreshExp = now.Add(nominal)
	}

	return result, nil
}

// ResolveCurrentMember turns a presented bearer token into the member it was
// issued to. Check order matters: revocation, then session equality, then
// expiry, then the member row.
func (s *Service) ResolveCurrentMember(ctx context.Context, presented string) (*models.Member, error) {
	raw := strings.TrimPrefix(presented, "Bearer ")
	if raw == "" {
		return nil, token.ErrTokenMalformed
	}

	revoked, err := s.Store.IsBlacklisted(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("blacklist check: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.Codec.Parse(raw)
	if err != nil {
		return nil, err
	}

	stored, err := s.Store.AccessToken(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("access token lookup: %w", err)
	}
	if stored != raw {
		// superseded by a newer login, or never issued by us
		return nil, ErrSessionMismatch
	}

	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}

	var member models.Member
	if err := s.DB.WithContext(ctx).Where("username = ?", claims.Subject).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("member lookup: %w", err)
	}
	return &member, nil
}

// IsAuthOutcome distinguishes "you are not authorized" from "the system is
// unavailable" for error mapping at the transport layer.
func IsAuthOutcome(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountPermanentlyDeleted) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrSessionMismatch) ||
		errors.Is(err, ErrNoStoredSession) ||
		errors.Is(err, ErrRefreshTokenExpired) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, token.ErrTokenMalformed)
}
