// Package credstore is the source of truth for which tokens are currently
// honored. One access and one refresh token are recorded per username; the
// blacklist holds access tokens revoked by logout until they would have
// expired anyway.
package credstore

import (
	"context"
	"time"
)

type Store interface {
	SetAccessToken(ctx context.Context, username, token string, ttl time.Duration) error
	AccessToken(ctx context.Context, username string) (string, error)
	DeleteAccessToken(ctx context.Context, username string) error

	SetRefreshToken(ctx context.Context, username, token string, ttl time.Duration) error
	RefreshToken(ctx context.Context, username string) (string, error)
	DeleteRefreshToken(ctx context.Context, username string) error

	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
