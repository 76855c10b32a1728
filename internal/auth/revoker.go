package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "rollbook:revoked:"

// Revoker keeps a denylist of logged-out session tokens in redis. A
// revoked entry only needs to live until the token's own expiry, so
// logout is an explicit state transition instead of ambient session
// state in the process.
type Revoker struct {
	client *redis.Client
}

// NewRevoker creates a revoker over a redis client.
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client}
}

// Revoke denylists the token until it would expire anyway.
func (r *Revoker) Revoke(ctx context.Context, claims Claims) error {
	if r == nil || r.client == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err()
}

// Revoked reports whether the token has been logged out. Redis being
// unreachable fails open so sessions keep working without it.
func (r *Revoker) Revoked(ctx context.Context, claims Claims) bool {
	if r == nil || r.client == nil || claims.ID == "" {
		return false
	}
	n, err := r.client.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
	if err != nil {
		return false
	}
	return n > 0
}
