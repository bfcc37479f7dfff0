package ports

import (
	"context"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// GroupingService partitions paid orders into driver-assignable task groups
// and manages driver assignment.
type GroupingService interface {
	// CreateGroupsForOrder is invoked once per order on payment confirmation.
	// Re-invocation for an already-grouped order returns domain.ErrAlreadyGrouped.
	CreateGroupsForOrder(ctx context.Context, orderID string) ([]*domain.TaskGroup, error)
	// AssignDriver sets the group's driver and initializes its task to WAITING.
	// Fails with domain.ErrGroupAlreadyAssigned unless reassign is set, and
	// with domain.ErrDriverIneligible for unverified drivers.
	AssignDriver(ctx context.Context, groupID, driverID string, reassign bool) error
	// RemoveDriver resets the group to unassigned. Fails with
	// domain.ErrCannotUnassignInProgress once the task has progressed past WAITING.
	RemoveDriver(ctx context.Context, groupID string) error
}
