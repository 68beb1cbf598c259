// file: service/cache.go

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client. It decouples the
// account and transfer services from a concrete Redis client so cache
// behavior is testable without a running Redis.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// accountsCacheKey is the cache key for a user's account listing. Every
// balance mutation invalidates the owning user's key.
func accountsCacheKey(userID int) string {
	return fmt.Sprintf("accounts:%d", userID)
}
