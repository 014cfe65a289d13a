package credstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with the same TTL semantics as the Redis
// implementation. Tests swap it in for Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value    string
	deadline time.Time // zero means no expiry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.deadline = time.Now().Add(ttl)
	}
	s.entries[key] = e
}

func (s *MemoryStore) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return ""
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		delete(s.entries, key)
		return ""
	}
	return e.value
}

func (s *MemoryStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MemoryStore) SetAccessToken(_ context.Context, username, token string, ttl time.Duration) error {
	s.set(accessPrefix+username, token, ttl)
	return nil
}

func (s *MemoryStore) AccessToken(_ context.Context, username string) (string, error) {
	return s.get(accessPrefix + username), nil
}

func (s *MemoryStore) DeleteAccessToken(_ context.Context, username string) error {
	s.delete(accessPrefix + username)
	return nil
}

func (s *MemoryStore) SetRefreshToken(_ context.Context, username, token string, ttl time.Duration) error {
	s.set(refreshPrefix+username, token, ttl)
	return nil
}

func (s *MemoryStore) RefreshToken(_ context.Context, username string) (string, error) {
	return s.get(refreshPrefix + username), nil
}

func (s *MemoryStore) DeleteRefreshToken(_ context.Context, username string) error {
	s.delete(refreshPrefix + username)
	return nil
}

func (s *MemoryStore) Blacklist(_ context.Context, token string, ttl time.Duration) error {
	s.set(blacklistPrefix+token, "logout", ttl)
	return nil
}

func (s *MemoryStore) IsBlacklisted(_ context.Context, token string) (bool, error) {
	return s.get(blacklistPrefix+token) != "", nil
}
