package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voisin/friendgraph/pkg/log"
)

const existsCacheTTL = 5 * time.Minute

// CachedResolver wraps a Resolver with a Redis cache for positive hits.
// Only existence is cached: a missing user may be created at any moment by
// the user-management service, so negative lookups always go to the source.
type CachedResolver struct {
	logger *slog.Logger
	next   Resolver
	client *redis.Client
}

var _ Resolver = (*CachedResolver)(nil)

// NewCachedResolver creates a caching resolver. A nil client disables
// caching and delegates every lookup.
func NewCachedResolver(next Resolver, client *redis.Client) *CachedResolver {
	return &CachedResolver{
		logger: log.Logger("identity.cache"),
		next:   next,
		client: client,
	}
}

// Exists reports whether the user id exists, consulting the cache first.
func (r *CachedResolver) Exists(ctx context.Context, userID string) (bool, error) {
	if r.client == nil {
		return r.next.Exists(ctx, userID)
	}

	key := cacheKey(userID)

	hit, err := r.client.Get(ctx, key).Result()
	if err == nil && hit == "1" {
		return true, nil
	}
	if err != nil && err != redis.Nil {
		// Cache trouble must not break identity resolution.
		r.logger.Warn("cache lookup failed", "user_id", userID, "error", err)
	}

	exists, err := r.next.Exists(ctx, userID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := r.client.Set(ctx, key, "1", existsCacheTTL).Err(); err != nil {
			r.logger.Warn("cache store failed", "user_id", userID, "error", err)
		}
	}

	return exists, nil
}

func cacheKey(userID string) string {
	return "friendgraph:user:" + userID
}
