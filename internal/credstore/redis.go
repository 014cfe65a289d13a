package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	accessPrefix    = "access:"
	refreshPrefix   = "refresh:"
	blacklistPrefix = "blacklist:"
)

// RedisStore keeps session state in Redis. Keys carry the TTL of the token
// they record, so stale entries clean themselves up.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Dial connects and pings so a misconfigured Redis fails at startup, not on
// the first login.
func Dial(ctx context.Context, addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SetAccessToken(ctx context.Context, username, token string, ttl time.Duration) error {
	return s.client.Set(ctx, accessPrefix+username, token, ttl).Err()
}

func (s *RedisStore) AccessToken(ctx context.Context, username string) (string, error) {
	return s.get(ctx, accessPrefix+username)
}

func (s *RedisStore) DeleteAccessToken(ctx context.Context, username string) error {
	return s.client.Del(ctx, accessPrefix+username).Err()
}

func (s *RedisStore) SetRefreshToken(ctx context.Context, username, token string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshPrefix+username, token, ttl).Err()
}

func (s *RedisStore) RefreshToken(ctx context.Context, username string) (string, error) {
	return s.get(ctx, refreshPrefix+username)
}

func (s *RedisStore) DeleteRefreshToken(ctx context.Context, username string) error {
	return s.client.Del(ctx, refreshPrefix+username).Err()
}

func (s *RedisStore) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, blacklistPrefix+token, "logout", ttl).Err()
}

func (s *RedisStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// get maps a missing key to ("", nil): absence is an auth outcome, not an
// infrastructure failure.
func (s *RedisStore) get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}
