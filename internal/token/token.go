// Package token builds and parses the signed bearer tokens used for member
// sessions. The codec is pure: it does no I/O, the credential store decides
// which of the tokens it minted are still honored.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenMalformed covers every token whose structure or signature cannot be
// verified. Expiry alone is never malformedness.
var ErrTokenMalformed = errors.New("token malformed")

const (
	defaultAccessTTL          = 30 * time.Minute
	defaultRefreshTTL         = 7 * 24 * time.Hour
	defaultRecoveryAccessTTL  = 10 * time.Minute
	defaultRecoveryRefreshTTL = 24 * time.Hour
)

// Claims is the payload carried by both access and refresh tokens.
// Deleted marks a token minted for a soft-deleted account pending recovery.
type Claims struct {
	Authority string `json:"authority"`
	Verified  bool   `json:"verified"`
	Deleted   bool   `json:"deleted,omitempty"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte

	AccessTTL          time.Duration
	RefreshTTL         time.Duration
	RecoveryAccessTTL  time.Duration
	RecoveryRefreshTTL time.Duration
}

func New(secret []byte) *Codec {
	return &Codec{
		secret:             secret,
		AccessTTL:          defaultAccessTTL,
		RefreshTTL:         defaultRefreshTTL,
		RecoveryAccessTTL:  defaultRecoveryAccessTTL,
		RecoveryRefreshTTL: defaultRecoveryRefreshTTL,
	}
}

func (c *Codec) AccessTTLFor(recovering bool) time.Duration {
	if recovering {
		return c.RecoveryAccessTTL
	}
	return c.AccessTTL
}

func (c *Codec) RefreshTTLFor(recovering bool) time.Duration {
	if recovering {
		return c.RecoveryRefreshTTL
	}
	return c.RefreshTTL
}

func (c *Codec) IssueAccessToken(username, authority string, verified, recovering bool) (string, error) {
	return c.issue(username, authority, verified, recovering, c.AccessTTLFor(recovering))
}

func (c *Codec) IssueRefreshToken(username, authority string, verified, recovering bool) (string, error) {
	return c.issue(username, authority, verified, recovering, c.RefreshTTLFor(recovering))
}

// issue mints a token with a random jti so that two logins in the same second
// still produce distinct tokens; the store-equality check depends on that.
func (c *Codec) issue(username, authority string, verified, recovering bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Authority: authority,
		Verified:  verified,
		Deleted:   recovering,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Parse verifies structure and signature only. Expired tokens parse fine;
// refresh needs to read the subject out of a dead access token.
func (c *Codec) Parse(raw string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrTokenMalformed
	}
	return &claims, nil
}

// IsExpired fails safe: a token that cannot be parsed, or carries no expiry,
// counts as expired.
func (c *Codec) IsExpired(raw string) bool {
	claims, err := c.Parse(raw)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}

func (c *Codec) ExtractUsername(raw string) (string, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *Codec) ExtractAuthority(raw string) (string, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return "", err
	}
	return claims.Authority, nil
}

func (c *Codec) ExtractVerified(raw string) (bool, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return false, err
	}
	return claims.Verified, nil
}

func (c *Codec) IsRecoveryToken(raw string) (bool, error) {
	claims, err := c.Parse(raw)
	if err != nil {
		return false, err
	}
	return claims.Deleted, nil
}
