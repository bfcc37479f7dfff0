package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// ListOrdersFilter carries all query parameters for listing orders.
// OwnerID is always enforced by the service layer (RBAC).
type ListOrdersFilter struct {
	OwnerID  string // empty = no filter (admin); non-empty = scoped to owner
	DriverID string // optional: orders with this driver assigned
	Status   string // optional: filter by order status
	Priority string // optional: filter by priority tier
	Page     int    // 1-based
	Limit    int    // max rows per page (capped at 100 by service)
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	// FindByID retrieves an order by id. When ownerID is non-empty, the query
	// is additionally filtered by owner_id (for RBAC).
	FindByID(ctx context.Context, id string, ownerID string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Order, error)
	// List returns a page of orders matching filter and the total count.
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
}
