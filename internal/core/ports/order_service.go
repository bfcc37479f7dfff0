package ports

import (
	"context"
	"time"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// CoordinatesInput holds geographic coordinates.
type CoordinatesInput struct {
	Lat float64
	Lng float64
}

// LocationInput holds a physical address with its geocoded point.
type LocationInput struct {
	Address     string
	City        string
	ZipCode     string
	Coordinates CoordinatesInput
}

// DimensionsInput holds package size in inches.
type DimensionsInput struct {
	HeightIn float64
	WidthIn  float64
	LengthIn float64
}

// PackageInput holds one order line item.
type PackageInput struct {
	Name       string
	WeightLbs  float64
	Dimensions DimensionsInput
	Quantity   int
}

// CreateOrderInput carries all data needed to create a new order.
type CreateOrderInput struct {
	OwnerID        string
	Packages       []PackageInput
	Pickup         LocationInput
	Dropoff        LocationInput
	Priority       string
	IdempotencyKey string
}

// OrderResult is returned by the service after creating an order.
type OrderResult struct {
	OrderID          string
	OrderNumber      string
	Status           string
	RequiredVehicles []domain.VehicleRequirement
	DistanceMiles    float64
	PriceUSD         float64
	CreatedAt        time.Time
	// AlreadyExisted is true when the Idempotency-Key matched an existing order.
	AlreadyExisted bool
}

// GetOrderInput carries the parameters needed to retrieve a single order.
type GetOrderInput struct {
	OrderID string
	// Role and UserID enforce RBAC: customers only see their own orders.
	Role   string
	UserID string
}

// TaskPositionItem is one breadcrumb of a task's position trail.
type TaskPositionItem struct {
	Status    string
	Lat       float64
	Lng       float64
	Timestamp time.Time
}

// TaskItem is the per-driver task view embedded in an order detail.
type TaskItem struct {
	DriverID     string
	DriverStatus string
	Positions    []TaskPositionItem
	UpdatedAt    time.Time
}

// OrderDetail is the full order view returned by GetOrder.
type OrderDetail struct {
	OrderID           string
	OrderNumber       string
	Status            string
	Priority          string
	Packages          []PackageInput
	Pickup            LocationInput
	Dropoff           LocationInput
	RequiredVehicles  []domain.VehicleRequirement
	DistanceMiles     float64
	DurationSeconds   int64
	PriceUSD          float64
	AssignedDriverIDs []string
	Tasks             []TaskItem
	CreatedAt         time.Time
}

// ListOrdersInput carries all parameters for the list endpoint.
type ListOrdersInput struct {
	Role     string
	UserID   string
	Status   string
	Priority string
	Page     int
	Limit    int
}

// OrderSummary is the lightweight view used in list responses (no task detail).
type OrderSummary struct {
	OrderID       string
	OrderNumber   string
	Status        string
	Priority      string
	OwnerID       string
	Pickup        LocationInput
	Dropoff       LocationInput
	DistanceMiles float64
	PriceUSD      float64
	CreatedAt     time.Time
}

// ListOrdersResult is returned by ListOrders.
type ListOrdersResult struct {
	Items      []OrderSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// OrderService defines use-case operations for customer orders.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderResult, error)
	GetOrder(ctx context.Context, input GetOrderInput) (*OrderDetail, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersResult, error)
}
