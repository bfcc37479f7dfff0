package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

type groupingService struct {
	groups  ports.TaskGroupRepository
	orders  ports.OrderRepository
	drivers ports.DriverRepository
	log     zerolog.Logger
}

// NewGroupingService returns the GroupingService that partitions paid orders
// into driver-assignable task groups.
func NewGroupingService(
	groups ports.TaskGroupRepository,
	orders ports.OrderRepository,
	drivers ports.DriverRepository,
	log zerolog.Logger,
) ports.GroupingService {
	return &groupingService{
		groups:  groups,
		orders:  orders,
		drivers: drivers,
		log:     log,
	}
}

// CreateGroupsForOrder partitions a paid order into task groups and moves the
// order to PAYMENT_RECEIVED. Currently the partition is 1:1 (single-driver
// fulfillment); callers must not assume the group count is always one.
func (s *groupingService) CreateGroupsForOrder(ctx context.Context, orderID string) ([]*domain.TaskGroup, error) {
	var groups []*domain.TaskGroup
	var err error
	for attempt := 0; attempt < commitAttempts; attempt++ {
		groups, err = s.createGroupsOnce(ctx, orderID)
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) {
			return groups, err
		}
	}
	return nil, domain.ErrVersionConflict
}

func (s *groupingService) createGroupsOnce(ctx context.Context, orderID string) ([]*domain.TaskGroup, error) {
	existing, err := s.groups.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrAlreadyGrouped
	}

	order, err := s.orders.FindByID(ctx, orderID, "")
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(domain.OrderPaymentReceived) {
		return nil, fmt.Errorf("%w (order %s is %s)", domain.ErrInvalidTransition, orderID, order.Status)
	}

	now := time.Now().UTC()
	lineItems := make([]domain.LineItem, 0, len(order.Packages))
	for _, p := range order.Packages {
		lineItems = append(lineItems, domain.LineItem{OrderID: order.ID, Package: p})
	}

	group := &domain.TaskGroup{
		Status:        domain.GroupUnassigned,
		LineItems:     lineItems,
		PickupCenter:  order.Pickup.Coordinates,
		DropoffCenter: order.Dropoff.Coordinates,
		Orders: map[string]domain.OrderSnapshot{
			order.ID: {
				OrderNumber: order.OrderNumber,
				OwnerID:     order.OwnerID,
				Pickup:      order.Pickup,
				Dropoff:     order.Dropoff,
				Priority:    order.Priority,
				PriceUSD:    order.PriceUSD,
			},
		},
		Task: domain.Task{
			DriverStatus:     domain.DriverWaiting,
			ConfirmationCode: generateConfirmationCode(),
		},
		CreatedAt: now,
	}

	order.Status = domain.OrderPaymentReceived
	if err := s.groups.CreateGroupsAndCommit(ctx, []*domain.TaskGroup{group}, []*domain.Order{order}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("group_id", group.ID).
		Msg("task groups created for paid order")

	return []*domain.TaskGroup{group}, nil
}

// AssignDriver is an admin action binding a verified driver to a group and
// initializing its task to WAITING.
func (s *groupingService) AssignDriver(ctx context.Context, groupID, driverID string, reassign bool) error {
	for attempt := 0; attempt < commitAttempts; attempt++ {
		err := s.assignOnce(ctx, groupID, driverID, reassign)
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return domain.ErrVersionConflict
}

func (s *groupingService) assignOnce(ctx context.Context, groupID, driverID string, reassign bool) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}

	previous := group.DriverID
	if previous != "" && !reassign {
		return domain.ErrGroupAlreadyAssigned
	}
	if previous != "" && group.Task.DriverStatus != domain.DriverWaiting {
		return domain.ErrCannotUnassignInProgress
	}

	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return err
	}
	if !driver.Eligible() {
		return domain.ErrDriverIneligible
	}

	now := time.Now().UTC()
	group.DriverID = driverID
	group.Status = domain.GroupAssigned
	group.Task.DriverID = driverID
	group.Task.DriverStatus = domain.DriverWaiting
	group.Task.UpdatedAt = now

	orders, err := s.loadGroupOrders(ctx, group)
	if err != nil {
		return err
	}
	for _, order := range orders {
		if order.Tasks == nil {
			order.Tasks = map[string]domain.Task{}
		}
		if previous != "" {
			delete(order.Tasks, previous)
			order.AssignedDriverIDs = removeID(order.AssignedDriverIDs, previous)
		}
		order.Tasks[driverID] = group.Task
		order.AssignedDriverIDs = appendID(order.AssignedDriverIDs, driverID)
		if order.Status.CanTransitionTo(domain.OrderTasksAssigned) {
			order.Status = domain.OrderTasksAssigned
		}
	}

	if err := s.groups.CommitTransition(ctx, group, orders); err != nil {
		return err
	}

	s.log.Info().
		Str("group_id", groupID).
		Str("driver_id", driverID).
		Bool("reassign", reassign).
		Msg("driver assigned to task group")
	return nil
}

// RemoveDriver is an admin action resetting a group to unassigned. In-flight
// deliveries cannot be silently orphaned: removal fails once the task has
// progressed past WAITING.
func (s *groupingService) RemoveDriver(ctx context.Context, groupID string) error {
	for attempt := 0; attempt < commitAttempts; attempt++ {
		err := s.removeOnce(ctx, groupID)
		if err == nil || !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
	}
	return domain.ErrVersionConflict
}

func (s *groupingService) removeOnce(ctx context.Context, groupID string) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.DriverID == "" {
		return domain.ErrGroupUnassigned
	}
	if group.Task.DriverStatus != domain.DriverWaiting {
		return domain.ErrCannotUnassignInProgress
	}

	previous := group.DriverID
	now := time.Now().UTC()
	group.DriverID = ""
	group.Status = domain.GroupUnassigned
	group.Task.DriverID = ""
	group.Task.DriverStatus = domain.DriverWaiting
	group.Task.Positions = nil
	group.Task.UpdatedAt = now

	orders, err := s.loadGroupOrders(ctx, group)
	if err != nil {
		return err
	}
	for _, order := range orders {
		delete(order.Tasks, previous)
		order.AssignedDriverIDs = removeID(order.AssignedDriverIDs, previous)
	}

	if err := s.groups.CommitTransition(ctx, group, orders); err != nil {
		return err
	}

	s.log.Info().
		Str("group_id", groupID).
		Str("driver_id", previous).
		Msg("driver removed from task group")
	return nil
}

func (s *groupingService) loadGroupOrders(ctx context.Context, group *domain.TaskGroup) ([]*domain.Order, error) {
	ids := group.OrderIDs()
	orders := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.orders.FindByID(ctx, id, "")
		if err != nil {
			return nil, fmt.Errorf("load order %s: %w", id, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func appendID(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// generateConfirmationCode returns the 4-digit code communicated out-of-band
// to the recipient and checked on delivery.
func generateConfirmationCode() string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%04d", time.Now().UnixNano()%10000)
	}
	n := (int(b[0])<<8 | int(b[1])) % 10000
	return fmt.Sprintf("%04d", n)
}
