package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

const (
	metersPerMile   = 1609.344
	routingAttempts = 3
	routingBackoff  = 200 * time.Millisecond
)

type estimateService struct {
	pricing  ports.PricingRepository
	routing  ports.RoutingProvider
	cache    ports.RouteCache
	maxMiles float64
	log      zerolog.Logger
}

// NewEstimateService returns an EstimateService. maxMiles caps the trip length
// accepted for on-demand service.
func NewEstimateService(
	pricing ports.PricingRepository,
	routing ports.RoutingProvider,
	cache ports.RouteCache,
	maxMiles float64,
	log zerolog.Logger,
) ports.EstimateService {
	return &estimateService{
		pricing:  pricing,
		routing:  routing,
		cache:    cache,
		maxMiles: maxMiles,
		log:      log,
	}
}

// Estimate computes a quote: route distance/duration, required vehicles, and
// price. It is a pure read path: identical inputs against the same pricing config
// version return identical output.
func (s *estimateService) Estimate(ctx context.Context, in ports.EstimateInput) (*ports.EstimateResult, error) {
	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	packages := toPackages(in.Packages)
	if len(packages) == 0 {
		return nil, domain.ErrNoPackages
	}

	origin := domain.Coordinates{Lat: in.Pickup.Lat, Lng: in.Pickup.Lng}
	dest := domain.Coordinates{Lat: in.Dropoff.Lat, Lng: in.Dropoff.Lng}

	route, err := s.resolveRoute(ctx, origin, dest)
	if err != nil {
		return nil, err
	}

	miles := route.Meters / metersPerMile
	if s.maxMiles > 0 && miles > s.maxMiles {
		return nil, fmt.Errorf("%w: %.1f miles exceeds limit of %.1f", domain.ErrDistanceTooLong, miles, s.maxMiles)
	}

	required, err := domain.PlanVehicles(packages)
	if err != nil {
		return nil, err
	}

	cfg, err := s.pricing.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("estimate: load pricing config: %w", err)
	}

	zone, err := domain.ResolveZone(cfg.Zones, origin, dest)
	if err != nil {
		return nil, err
	}

	band, err := zone.BandFor(miles)
	if err != nil {
		return nil, fmt.Errorf("%w (zone %s, %.1f miles)", err, zone.Name, miles)
	}

	return &ports.EstimateResult{
		RequiredVehicles: required,
		DistanceMiles:    miles,
		DurationSeconds:  route.Seconds,
		PriceUSD:         domain.Price(band, priority),
		ZoneName:         zone.Name,
		ConfigVersion:    cfg.Version,
	}, nil
}

// resolveRoute returns the cached route for the coordinate pair or queries the
// provider with bounded retries.
func (s *estimateService) resolveRoute(ctx context.Context, origin, dest domain.Coordinates) (ports.Route, error) {
	if route, ok, err := s.cache.Get(ctx, origin, dest); err != nil {
		s.log.Warn().Err(err).Msg("route cache read failed, querying provider")
	} else if ok {
		return route, nil
	}

	var lastErr error
	for attempt := 0; attempt < routingAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ports.Route{}, fmt.Errorf("%w: %v", domain.ErrRoutingUnavailable, ctx.Err())
			case <-time.After(routingBackoff * time.Duration(attempt)):
			}
		}

		route, err := s.routing.DistanceAndDuration(ctx, origin, dest)
		if err == nil {
			if cacheErr := s.cache.Put(ctx, origin, dest, route); cacheErr != nil {
				s.log.Warn().Err(cacheErr).Msg("route cache write failed")
			}
			return route, nil
		}
		lastErr = err
	}

	s.log.Error().Err(lastErr).
		Float64("origin_lat", origin.Lat).
		Float64("origin_lng", origin.Lng).
		Msg("routing provider exhausted retries")

	if errors.Is(lastErr, domain.ErrRoutingUnavailable) {
		return ports.Route{}, lastErr
	}
	return ports.Route{}, fmt.Errorf("%w: %v", domain.ErrRoutingUnavailable, lastErr)
}

// toPackages maps transport DTOs to domain packages.
func toPackages(in []ports.PackageInput) []domain.Package {
	out := make([]domain.Package, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Package{
			Name:      p.Name,
			WeightLbs: p.WeightLbs,
			Dimensions: domain.Dimensions{
				HeightIn: p.Dimensions.HeightIn,
				WidthIn:  p.Dimensions.WidthIn,
				LengthIn: p.Dimensions.LengthIn,
			},
			Quantity: p.Quantity,
		})
	}
	return out
}
