package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// commitAttempts bounds optimistic-concurrency retries. A version conflict
// means another writer committed first; the transition is recomputed against
// the fresh state, since nothing was written.
const commitAttempts = 3

type taskService struct {
	groups   ports.TaskGroupRepository
	orders   ports.OrderRepository
	drivers  ports.DriverRepository
	evidence ports.EvidenceStore
	log      zerolog.Logger
}

// NewTaskService returns the TaskService driving per-driver delivery state.
func NewTaskService(
	groups ports.TaskGroupRepository,
	orders ports.OrderRepository,
	drivers ports.DriverRepository,
	evidence ports.EvidenceStore,
	log zerolog.Logger,
) ports.TaskService {
	return &taskService{
		groups:   groups,
		orders:   orders,
		drivers:  drivers,
		evidence: evidence,
		log:      log,
	}
}

// Advance attempts one forward transition of a task. Authorization, adjacency,
// and delivery evidence are all validated before any field is written; the
// group, every affected order, and the order-level fan-in are then committed
// as a single atomic unit.
func (s *taskService) Advance(ctx context.Context, in ports.AdvanceTaskInput) (*ports.TaskView, error) {
	target, err := domain.ParseDriverStatus(in.TargetStatus)
	if err != nil {
		return nil, err
	}

	var view *ports.TaskView
	for attempt := 0; attempt < commitAttempts; attempt++ {
		view, err = s.advanceOnce(ctx, in, target)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		s.log.Debug().Str("group_id", in.GroupID).Int("attempt", attempt+1).Msg("transition commit conflicted, retrying")
	}
	return nil, err
}

func (s *taskService) advanceOnce(ctx context.Context, in ports.AdvanceTaskInput, target domain.DriverStatus) (*ports.TaskView, error) {
	group, err := s.groups.FindByID(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}

	if group.DriverID == "" || group.DriverID != in.ActingDriverID {
		return nil, domain.ErrUnauthorized
	}

	current := group.Task.DriverStatus
	if !current.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, current, target)
	}

	if target == domain.DriverDelivered {
		if err := s.checkEvidence(ctx, group, in.Evidence); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	group.Task.DriverStatus = target
	group.Task.Positions = append(group.Task.Positions, domain.PositionEntry{
		Status:      target,
		Coordinates: domain.Coordinates{Lat: in.Position.Lat, Lng: in.Position.Lng},
		Timestamp:   now,
	})
	group.Task.UpdatedAt = now
	if target == domain.DriverDelivered {
		group.Task.PhotoReference = in.Evidence.PhotoReference
		group.Status = domain.GroupCompleted
	}

	orders, err := s.propagate(ctx, group, target)
	if err != nil {
		return nil, err
	}

	if err := s.groups.CommitTransition(ctx, group, orders); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("group_id", group.ID).
		Str("driver_id", group.DriverID).
		Str("status", string(target)).
		Msg("task advanced")

	view := toTaskView(group)
	if target == domain.DriverDelivered {
		s.creditDriver(ctx, group, orders)
		for _, o := range orders {
			if o.Status == domain.OrderCompleted {
				view.CompletedOrderIDs = append(view.CompletedOrderIDs, o.ID)
			}
		}
	}

	return view, nil
}

// checkEvidence validates the proof-of-delivery pair before any write.
func (s *taskService) checkEvidence(ctx context.Context, group *domain.TaskGroup, ev *ports.EvidenceInput) error {
	if ev == nil || ev.PhotoReference == "" {
		return domain.ErrMissingDeliveryEvidence
	}
	if subtle.ConstantTimeCompare([]byte(ev.ConfirmationCode), []byte(group.Task.ConfirmationCode)) != 1 {
		return domain.ErrInvalidConfirmationCode
	}
	ok, err := s.evidence.Exists(ctx, ev.PhotoReference)
	if err != nil {
		return fmt.Errorf("advance: evidence lookup: %w", err)
	}
	if !ok {
		return domain.ErrMissingDeliveryEvidence
	}
	return nil
}

// propagate mirrors the group's task into each owning order and runs the
// order-level fan-in check when the task reached DELIVERED.
func (s *taskService) propagate(ctx context.Context, group *domain.TaskGroup, target domain.DriverStatus) ([]*domain.Order, error) {
	orderIDs := group.OrderIDs()
	orders := make([]*domain.Order, 0, len(orderIDs))

	for _, id := range orderIDs {
		order, err := s.orders.FindByID(ctx, id, "")
		if err != nil {
			return nil, fmt.Errorf("advance: load order %s: %w", id, err)
		}
		if order.Tasks == nil {
			order.Tasks = map[string]domain.Task{}
		}
		order.Tasks[group.DriverID] = group.Task

		if target == domain.DriverDelivered && order.AllTasksDelivered() {
			if err := s.confirmFanIn(ctx, group, order); err != nil {
				return nil, err
			}
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// confirmFanIn promotes the order to COMPLETED once every group referencing it
// reports a delivered task. The freshly transitioned group is evaluated from
// memory, all sibling groups from the store.
func (s *taskService) confirmFanIn(ctx context.Context, group *domain.TaskGroup, order *domain.Order) error {
	siblings, err := s.groups.FindByOrderID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("advance: load groups for order %s: %w", order.ID, err)
	}
	for _, g := range siblings {
		if g.ID == group.ID {
			continue
		}
		if g.Task.DriverStatus != domain.DriverDelivered {
			return nil
		}
	}
	if order.Status.CanTransitionTo(domain.OrderCompleted) {
		order.Status = domain.OrderCompleted
		s.log.Info().Str("order_id", order.ID).Msg("all task groups delivered, order completed")
	}
	return nil
}

// creditDriver bumps the driver's earnings counters after a delivered commit.
// Best-effort: a failure here never rolls back the delivery.
func (s *taskService) creditDriver(ctx context.Context, group *domain.TaskGroup, orders []*domain.Order) {
	var amount float64
	for _, o := range orders {
		amount += o.PriceUSD
	}
	if err := s.drivers.AddEarnings(ctx, group.DriverID, 1, amount); err != nil {
		s.log.Warn().Err(err).Str("driver_id", group.DriverID).Msg("failed to credit driver earnings")
	}
}

func toTaskView(group *domain.TaskGroup) *ports.TaskView {
	positions := make([]ports.TaskPositionItem, 0, len(group.Task.Positions))
	for _, p := range group.Task.Positions {
		positions = append(positions, ports.TaskPositionItem{
			Status:    string(p.Status),
			Lat:       p.Coordinates.Lat,
			Lng:       p.Coordinates.Lng,
			Timestamp: p.Timestamp,
		})
	}
	return &ports.TaskView{
		GroupID:      group.ID,
		DriverID:     group.DriverID,
		DriverStatus: string(group.Task.DriverStatus),
		Positions:    positions,
		UpdatedAt:    group.Task.UpdatedAt,
	}
}
