package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// SessionRevocationCache keeps the jtis of revoked sessions in Redis so the
// refresh hot path can reject them without touching the database. The
// database record stays the source of truth; entries here expire together
// with the session they shadow.
type SessionRevocationCache struct {
	client *redis.Client
}

// NewSessionRevocationCache creates a cache backed by the given client
func NewSessionRevocationCache(client *redis.Client) *SessionRevocationCache {
	return &SessionRevocationCache{client: client}
}

// Revoke records a jti as revoked for the given TTL
func (c *SessionRevocationCache) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return c.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a jti was recorded as revoked
func (c *SessionRevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
