package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swiftdrop/dispatch/internal/api/metrics"
	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

const defaultRouteTTL = 10 * time.Minute

// RouteCache stores routing-provider results per coordinate pair for a short
// TTL to bound provider quota cost. Coordinates are rounded to five decimals
// (~1m) when building keys so equivalent requests share an entry.
// Key format: route:<origin_lat>,<origin_lng>:<dest_lat>,<dest_lng>
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRouteCache creates a RouteCache wrapping the given Redis client.
// A non-positive ttl falls back to the default.
func NewRouteCache(client *redis.Client, ttl time.Duration) *RouteCache {
	if ttl <= 0 {
		ttl = defaultRouteTTL
	}
	return &RouteCache{client: client, ttl: ttl}
}

type cachedRoute struct {
	Meters  float64 `json:"meters"`
	Seconds int64   `json:"seconds"`
}

// Get returns a cached route for the pair, if present.
func (c *RouteCache) Get(ctx context.Context, origin, destination domain.Coordinates) (ports.Route, bool, error) {
	raw, err := c.client.Get(ctx, c.key(origin, destination)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RouteCacheTotal.WithLabelValues("miss").Inc()
			return ports.Route{}, false, nil
		}
		metrics.RouteCacheTotal.WithLabelValues("error").Inc()
		return ports.Route{}, false, fmt.Errorf("route cache get: %w", err)
	}

	var cached cachedRoute
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		// Corrupt entry: treat as a miss, it will be overwritten.
		metrics.RouteCacheTotal.WithLabelValues("miss").Inc()
		return ports.Route{}, false, nil
	}
	metrics.RouteCacheTotal.WithLabelValues("hit").Inc()
	return ports.Route{Meters: cached.Meters, Seconds: cached.Seconds}, true, nil
}

// Put stores a route for the pair (expires after the cache TTL).
func (c *RouteCache) Put(ctx context.Context, origin, destination domain.Coordinates, route ports.Route) error {
	raw, err := json.Marshal(cachedRoute{Meters: route.Meters, Seconds: route.Seconds})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(origin, destination), raw, c.ttl).Err()
}

func (c *RouteCache) key(origin, destination domain.Coordinates) string {
	return fmt.Sprintf("route:%.5f,%.5f:%.5f,%.5f", origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}
