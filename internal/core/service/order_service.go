package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

const maxListLimit = 100

type OrderService struct {
	repo     ports.OrderRepository
	estimate ports.EstimateService
	logger   zerolog.Logger
}

func NewOrderService(repo ports.OrderRepository, estimate ports.EstimateService, logger zerolog.Logger) *OrderService {
	return &OrderService{repo: repo, estimate: estimate, logger: logger}
}

// CreateOrder quotes and persists a new order in PENDING_PAYMENT. If an
// idempotency key is provided and already seen for this owner, the previously
// created order is returned without side effects.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.OrderResult, error) {
	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, input.OwnerID, input.IdempotencyKey)
		if err == nil && existing != nil {
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("order_number", existing.OrderNumber).Msg("idempotent replay")
			return &ports.OrderResult{
				OrderID:          existing.ID,
				OrderNumber:      existing.OrderNumber,
				Status:           string(existing.Status),
				RequiredVehicles: existing.RequiredVehicles,
				DistanceMiles:    existing.DistanceMiles,
				PriceUSD:         existing.PriceUSD,
				CreatedAt:        existing.CreatedAt,
				AlreadyExisted:   true,
			}, nil
		}
	}

	priority, err := domain.ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	quote, err := s.estimate.Estimate(ctx, ports.EstimateInput{
		Packages: input.Packages,
		Pickup:   input.Pickup.Coordinates,
		Dropoff:  input.Dropoff.Coordinates,
		Priority: input.Priority,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderNumber:      generateOrderNumber(),
		OwnerID:          input.OwnerID,
		Packages:         toPackages(input.Packages),
		Pickup:           toLocation(input.Pickup),
		Dropoff:          toLocation(input.Dropoff),
		Priority:         priority,
		RequiredVehicles: quote.RequiredVehicles,
		DistanceMiles:    quote.DistanceMiles,
		DurationSeconds:  quote.DurationSeconds,
		PriceUSD:         quote.PriceUSD,
		Status:           domain.OrderPendingPayment,
		Tasks:            map[string]domain.Task{},
		CreatedAt:        now,
		IdempotencyKey:   input.IdempotencyKey,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, err
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("owner_id", input.OwnerID).
		Str("priority", string(priority)).
		Float64("price_usd", order.PriceUSD).
		Msg("order created")

	return &ports.OrderResult{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		Status:           string(order.Status),
		RequiredVehicles: order.RequiredVehicles,
		DistanceMiles:    order.DistanceMiles,
		PriceUSD:         order.PriceUSD,
		CreatedAt:        order.CreatedAt,
	}, nil
}

// GetOrder returns the full order view. Customers only see their own orders;
// drivers see orders they are assigned to; admins see everything.
func (s *OrderService) GetOrder(ctx context.Context, input ports.GetOrderInput) (*ports.OrderDetail, error) {
	ownerFilter := ""
	if input.Role == domain.RoleCustomer {
		ownerFilter = input.UserID
	}

	order, err := s.repo.FindByID(ctx, input.OrderID, ownerFilter)
	if err != nil {
		return nil, err
	}

	if input.Role == domain.RoleDriver {
		if _, ok := order.Tasks[input.UserID]; !ok {
			return nil, domain.ErrForbidden
		}
	}

	return toOrderDetail(order), nil
}

// ListOrders returns a page of orders. Customer scope is always enforced.
func (s *OrderService) ListOrders(ctx context.Context, input ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	filter := ports.ListOrdersFilter{
		Status:   input.Status,
		Priority: input.Priority,
		Page:     page,
		Limit:    limit,
	}
	switch input.Role {
	case domain.RoleCustomer:
		filter.OwnerID = input.UserID
	case domain.RoleDriver:
		filter.DriverID = input.UserID
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ports.OrderSummary, 0, len(orders))
	for _, o := range orders {
		items = append(items, ports.OrderSummary{
			OrderID:       o.ID,
			OrderNumber:   o.OrderNumber,
			Status:        string(o.Status),
			Priority:      string(o.Priority),
			OwnerID:       o.OwnerID,
			Pickup:        toLocationInput(o.Pickup),
			Dropoff:       toLocationInput(o.Dropoff),
			DistanceMiles: o.DistanceMiles,
			PriceUSD:      o.PriceUSD,
			CreatedAt:     o.CreatedAt,
		})
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListOrdersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// generateOrderNumber returns a unique order number in the format DSP-XXXXXXXX.
func generateOrderNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("DSP-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("DSP-%08X", b)
}

func toLocation(in ports.LocationInput) domain.Location {
	return domain.Location{
		Address: in.Address,
		City:    in.City,
		ZipCode: in.ZipCode,
		Coordinates: domain.Coordinates{
			Lat: in.Coordinates.Lat,
			Lng: in.Coordinates.Lng,
		},
	}
}

func toLocationInput(l domain.Location) ports.LocationInput {
	return ports.LocationInput{
		Address: l.Address,
		City:    l.City,
		ZipCode: l.ZipCode,
		Coordinates: ports.CoordinatesInput{
			Lat: l.Coordinates.Lat,
			Lng: l.Coordinates.Lng,
		},
	}
}

func toOrderDetail(o *domain.Order) *ports.OrderDetail {
	packages := make([]ports.PackageInput, 0, len(o.Packages))
	for _, p := range o.Packages {
		packages = append(packages, ports.PackageInput{
			Name:      p.Name,
			WeightLbs: p.WeightLbs,
			Dimensions: ports.DimensionsInput{
				HeightIn: p.Dimensions.HeightIn,
				WidthIn:  p.Dimensions.WidthIn,
				LengthIn: p.Dimensions.LengthIn,
			},
			Quantity: p.Quantity,
		})
	}

	// Stable task ordering for API consumers.
	driverIDs := make([]string, 0, len(o.Tasks))
	for id := range o.Tasks {
		driverIDs = append(driverIDs, id)
	}
	sort.Strings(driverIDs)

	tasks := make([]ports.TaskItem, 0, len(driverIDs))
	for _, id := range driverIDs {
		t := o.Tasks[id]
		positions := make([]ports.TaskPositionItem, 0, len(t.Positions))
		for _, p := range t.Positions {
			positions = append(positions, ports.TaskPositionItem{
				Status:    string(p.Status),
				Lat:       p.Coordinates.Lat,
				Lng:       p.Coordinates.Lng,
				Timestamp: p.Timestamp,
			})
		}
		tasks = append(tasks, ports.TaskItem{
			DriverID:     id,
			DriverStatus: string(t.DriverStatus),
			Positions:    positions,
			UpdatedAt:    t.UpdatedAt,
		})
	}

	return &ports.OrderDetail{
		OrderID:           o.ID,
		OrderNumber:       o.OrderNumber,
		Status:            string(o.Status),
		Priority:          string(o.Priority),
		Packages:          packages,
		Pickup:            toLocationInput(o.Pickup),
		Dropoff:           toLocationInput(o.Dropoff),
		RequiredVehicles:  o.RequiredVehicles,
		DistanceMiles:     o.DistanceMiles,
		DurationSeconds:   o.DurationSeconds,
		PriceUSD:          o.PriceUSD,
		AssignedDriverIDs: o.AssignedDriverIDs,
		Tasks:             tasks,
		CreatedAt:         o.CreatedAt,
	}
}
