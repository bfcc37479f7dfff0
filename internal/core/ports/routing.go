package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// Route is the road distance and travel time between two points.
type Route struct {
	Meters  float64
	Seconds int64
}

// RoutingProvider resolves road distance/duration from an external service.
// Implementations may fail or rate-limit; callers surface such failures as
// domain.ErrRoutingUnavailable.
type RoutingProvider interface {
	DistanceAndDuration(ctx context.Context, origin, destination domain.Coordinates) (Route, error)
}

// RouteCache stores resolved routes per coordinate pair for a short TTL to
// bound provider quota cost.
type RouteCache interface {
	Get(ctx context.Context, origin, destination domain.Coordinates) (Route, bool, error)
	Put(ctx context.Context, origin, destination domain.Coordinates, route Route) error
}
