// Package tokenstore keeps the redis side of token revocation and the
// per-user profile cache. Revoked JWTs are stored under a hashed key with a
// TTL matching the token lifetime, so entries disappear on their own once the
// token could no longer validate anyway.
package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix = "photoshare:revoked:"
	profileKeyPrefix = "photoshare:profile:"
)

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Revoke marks a token as revoked for ttl. Callers pass the lifetime of the
// token kind being revoked.
func (s *Store) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if s == nil || s.rdb == nil || token == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	key := revokedKeyPrefix + hashToken(token)
	if err := s.rdb.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token has been revoked. A redis failure is
// surfaced so the middleware can fail closed.
func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	if s == nil || s.rdb == nil || token == "" {
		return false, nil
	}
	key := revokedKeyPrefix + hashToken(token)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// CacheProfile stores a rendered profile payload for a user.
func (s *Store) CacheProfile(ctx context.Context, username string, payload []byte, ttl time.Duration) error {
	if s == nil || s.rdb == nil || username == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.rdb.Set(ctx, profileKeyPrefix+username, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache profile: %w", err)
	}
	return nil
}

// CachedProfile returns the cached payload for a user, or nil when absent.
func (s *Store) CachedProfile(ctx context.Context, username string) ([]byte, error) {
	if s == nil || s.rdb == nil || username == "" {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, profileKeyPrefix+username).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached profile: %w", err)
	}
	return data, nil
}

// InvalidateProfile drops the cached profile after an admin mutation so the
// next read reflects the new ban / role state.
func (s *Store) InvalidateProfile(ctx context.Context, username string) error {
	if s == nil || s.rdb == nil || username == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, profileKeyPrefix+username).Err(); err != nil {
		return fmt.Errorf("invalidate profile: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
