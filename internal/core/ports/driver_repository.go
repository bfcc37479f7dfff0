package ports

import (
	"context"
	"time"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// DriverRepository defines persistence operations for driver profiles.
type DriverRepository interface {
	Create(ctx context.Context, d *domain.Driver) (*domain.Driver, error)
	FindByID(ctx context.Context, id string) (*domain.Driver, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Driver, error)
	UpdateLocation(ctx context.Context, id string, pos domain.Coordinates, at time.Time) error
	SetVerification(ctx context.Context, id string, status domain.VerificationStatus) error
	// AddEarnings increments the driver's completion counters.
	AddEarnings(ctx context.Context, id string, deliveries int64, amountUSD float64) error
}
