package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// EstimateInput carries a pre-payment quote request.
type EstimateInput struct {
	Packages []PackageInput
	Pickup   CoordinatesInput
	Dropoff  CoordinatesInput
	Priority string
}

// EstimateResult is the quoted price and ETA for a trip. Deterministic for
// identical inputs and pricing config version.
type EstimateResult struct {
	RequiredVehicles []domain.VehicleRequirement
	DistanceMiles    float64
	DurationSeconds  int64
	PriceUSD         float64
	ZoneName         string
	ConfigVersion    int64
}

// EstimateService produces read-only, idempotent price quotes.
type EstimateService interface {
	Estimate(ctx context.Context, input EstimateInput) (*EstimateResult, error)
}
