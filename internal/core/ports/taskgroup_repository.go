package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// TaskGroupRepository defines persistence operations for task groups.
//
// CreateGroupsAndCommit and CommitTransition are the only write paths, and
// both persist the group side and the order side as one atomic unit guarded
// by a compare-and-set on each order document's version. The Version field on
// each passed document must hold the version that was read; the repository
// bumps it on success. A failed precondition on any document aborts the whole
// commit and returns domain.ErrVersionConflict with nothing written.
type TaskGroupRepository interface {
	// CreateGroupsAndCommit inserts new group documents and persists every
	// affected order in the same transaction.
	CreateGroupsAndCommit(ctx context.Context, groups []*domain.TaskGroup, orders []*domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.TaskGroup, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*domain.TaskGroup, error)
	FindByDriverID(ctx context.Context, driverID string) ([]*domain.TaskGroup, error)
	CommitTransition(ctx context.Context, group *domain.TaskGroup, orders []*domain.Order) error
}
