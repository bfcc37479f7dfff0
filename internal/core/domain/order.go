package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPendingPayment  OrderStatus = "PENDING_PAYMENT"
	OrderPaymentReceived OrderStatus = "PAYMENT_RECEIVED"
	OrderTasksAssigned   OrderStatus = "TASKS_ASSIGNED"
	OrderCompleted       OrderStatus = "COMPLETED"
)

// validOrderTransitions defines the allowed order state machine transitions.
var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendingPayment:  {OrderPaymentReceived},
	OrderPaymentReceived: {OrderTasksAssigned},
	OrderTasksAssigned:   {OrderCompleted},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus validates an order status received at a boundary.
// Unknown values are rejected, never passed through.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPendingPayment, OrderPaymentReceived, OrderTasksAssigned, OrderCompleted:
		return OrderStatus(s), nil
	}
	return "", ErrUnknownStatus
}

// Priority is the service tier requested by the customer.
type Priority string

const (
	PriorityStandard  Priority = "STANDARD"
	PriorityExpedited Priority = "EXPEDITED"
	PriorityUrgent    Priority = "URGENT"
)

// ParsePriority validates a priority value received at a boundary.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityStandard, PriorityExpedited, PriorityUrgent:
		return Priority(s), nil
	}
	return "", ErrUnknownPriority
}

var ErrOrderNotFound = errors.New("order not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrUnknownStatus = errors.New("unknown status value")
var ErrUnknownPriority = errors.New("unknown priority value")
var ErrForbidden = errors.New("access forbidden")
var ErrVersionConflict = errors.New("concurrent modification detected")
var ErrAlreadyGrouped = errors.New("order already grouped")

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Location is a physical address with its geocoded point.
type Location struct {
	Address     string      `json:"address" bson:"address"`
	City        string      `json:"city" bson:"city"`
	ZipCode     string      `json:"zip_code" bson:"zip_code"`
	Coordinates Coordinates `json:"coordinates" bson:"coordinates"`
}

// Dimensions represents the physical size of a package in inches.
type Dimensions struct {
	HeightIn float64 `json:"height_in" bson:"height_in"`
	WidthIn  float64 `json:"width_in" bson:"width_in"`
	LengthIn float64 `json:"length_in" bson:"length_in"`
}

// VolumeCuIn returns the rectangular volume of a single unit in cubic inches.
func (d Dimensions) VolumeCuIn() float64 {
	return d.HeightIn * d.WidthIn * d.LengthIn
}

// LongestSide returns the largest single dimension in inches.
func (d Dimensions) LongestSide() float64 {
	m := d.HeightIn
	if d.WidthIn > m {
		m = d.WidthIn
	}
	if d.LengthIn > m {
		m = d.LengthIn
	}
	return m
}

// Package is a line item on an order. Immutable once attached.
type Package struct {
	Name       string     `json:"name" bson:"name"`
	WeightLbs  float64    `json:"weight_lbs" bson:"weight_lbs"`
	Dimensions Dimensions `json:"dimensions" bson:"dimensions"`
	Quantity   int        `json:"quantity" bson:"quantity"`
}

// VehicleRequirement is one entry of the required-vehicle multiset.
type VehicleRequirement struct {
	Type     VehicleClass `json:"type" bson:"type"`
	Quantity int          `json:"quantity" bson:"quantity"`
}

// Order is the customer-owned aggregate root.
//
// Tasks is the sparse per-driver map: a driver id is present in
// AssignedDriverIDs iff Tasks holds a matching key. The TaskGroup copy of
// each task is the source of truth; the copy here is denormalized for read
// efficiency and updated in the same commit.
type Order struct {
	ID                string               `json:"id" bson:"_id,omitempty"`
	OrderNumber       string               `json:"order_number" bson:"order_number"`
	OwnerID           string               `json:"owner_id" bson:"owner_id"`
	Packages          []Package            `json:"packages" bson:"packages"`
	Pickup            Location             `json:"pickup" bson:"pickup"`
	Dropoff           Location             `json:"dropoff" bson:"dropoff"`
	Priority          Priority             `json:"priority" bson:"priority"`
	RequiredVehicles  []VehicleRequirement `json:"required_vehicles" bson:"required_vehicles"`
	DistanceMiles     float64              `json:"distance_miles" bson:"distance_miles"`
	DurationSeconds   int64                `json:"duration_seconds" bson:"duration_seconds"`
	PriceUSD          float64              `json:"price_usd" bson:"price_usd"`
	Status            OrderStatus          `json:"status" bson:"status"`
	AssignedDriverIDs []string             `json:"assigned_driver_ids" bson:"assigned_driver_ids"`
	Tasks             map[string]Task      `json:"tasks" bson:"tasks"`
	CreatedAt         time.Time            `json:"created_at" bson:"created_at"`
	IdempotencyKey    string               `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	Version           int64                `json:"-" bson:"version"`
}

// AllTasksDelivered reports whether every assigned driver's task is DELIVERED.
// Returns false for an order with no assigned drivers.
func (o *Order) AllTasksDelivered() bool {
	if len(o.Tasks) == 0 {
		return false
	}
	for _, t := range o.Tasks {
		if t.DriverStatus != DriverDelivered {
			return false
		}
	}
	return true
}
