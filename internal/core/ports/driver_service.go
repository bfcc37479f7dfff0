package ports

import (
	"context"
	"time"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// VehicleInput describes one vehicle a driver registers.
type VehicleInput struct {
	Class       string
	PlateNumber string
	Model       string
}

// DocumentInput is an uploaded verification document reference.
type DocumentInput struct {
	Kind      string
	Reference string
}

// RegisterDriverInput carries a new driver profile.
type RegisterDriverInput struct {
	UserID    string
	Name      string
	Vehicles  []VehicleInput
	Documents []DocumentInput
}

// DriverDetail is the driver view returned to callers.
type DriverDetail struct {
	ID           string
	Name         string
	Verification string
	Vehicles     []VehicleInput
	Earnings     domain.Earnings
	LastLocation *CoordinatesInput
	LocatedAt    time.Time
}

// GroupSummary is the driver-facing view of an assigned task group.
type GroupSummary struct {
	GroupID       string
	Status        string
	DriverStatus  string
	PickupCenter  CoordinatesInput
	DropoffCenter CoordinatesInput
	Orders        []string
}

// DriverService manages driver profiles, locations, and verification.
type DriverService interface {
	Register(ctx context.Context, input RegisterDriverInput) (*DriverDetail, error)
	Get(ctx context.Context, driverID string) (*DriverDetail, error)
	// UpdateLocation records a driver-initiated position report.
	UpdateLocation(ctx context.Context, driverID string, pos CoordinatesInput) error
	// SetVerification is an admin action on the driver's document review.
	SetVerification(ctx context.Context, driverID string, status string) error
	// ListGroups returns the task groups currently assigned to the driver.
	ListGroups(ctx context.Context, driverID string) ([]GroupSummary, error)
}
