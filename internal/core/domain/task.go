package domain

import (
	"errors"
	"time"
)

// DriverStatus represents the delivery-progress state of a task. The sequence
// is strictly forward: no skipping, no going back, DELIVERED is terminal.
type DriverStatus string

const (
	DriverWaiting           DriverStatus = "WAITING"
	DriverAccepted          DriverStatus = "ACCEPTED"
	DriverOnTheWayToPickup  DriverStatus = "ON_THE_WAY_TO_PICKUP"
	DriverOnTheWayToDeliver DriverStatus = "ON_THE_WAY_TO_DELIVER"
	DriverDelivered         DriverStatus = "DELIVERED"
)

// driverStatusOrder is the canonical forward sequence.
var driverStatusOrder = []DriverStatus{
	DriverWaiting,
	DriverAccepted,
	DriverOnTheWayToPickup,
	DriverOnTheWayToDeliver,
	DriverDelivered,
}

// Next returns the only status a task may advance to, or "" when terminal.
func (s DriverStatus) Next() DriverStatus {
	for i, st := range driverStatusOrder {
		if st == s && i+1 < len(driverStatusOrder) {
			return driverStatusOrder[i+1]
		}
	}
	return ""
}

// CanTransitionTo reports whether next is the immediate successor of s.
func (s DriverStatus) CanTransitionTo(next DriverStatus) bool {
	n := s.Next()
	return n != "" && n == next
}

// ParseDriverStatus validates a driver status received at a boundary.
func ParseDriverStatus(s string) (DriverStatus, error) {
	for _, st := range driverStatusOrder {
		if st == DriverStatus(s) {
			return st, nil
		}
	}
	return "", ErrUnknownStatus
}

var ErrTaskGroupNotFound = errors.New("task group not found")
var ErrUnauthorized = errors.New("driver not authorized for this task")
var ErrInvalidConfirmationCode = errors.New("confirmation code does not match")
var ErrMissingDeliveryEvidence = errors.New("delivery evidence is incomplete")
var ErrGroupAlreadyAssigned = errors.New("task group already has a driver")
var ErrGroupUnassigned = errors.New("task group has no driver")
var ErrCannotUnassignInProgress = errors.New("task already in progress, cannot unassign")
var ErrDriverIneligible = errors.New("driver is not eligible for assignment")

// PositionEntry is one breadcrumb of the append-only position trail. Each
// successful transition records where the driver was, keyed by the status
// being entered. Entries are never overwritten.
type PositionEntry struct {
	Status      DriverStatus `json:"status" bson:"status"`
	Coordinates Coordinates  `json:"coordinates" bson:"coordinates"`
	Timestamp   time.Time    `json:"timestamp" bson:"timestamp"`
}

// Evidence is the proof-of-delivery pair required to close out a task.
type Evidence struct {
	ConfirmationCode string `json:"confirmation_code"`
	PhotoReference   string `json:"photo_reference"`
}

// Task is the embedded delivery-progress record for a group/driver pair. It
// lives inside both the TaskGroup (source of truth) and the Order (read view).
type Task struct {
	DriverID         string          `json:"driver_id" bson:"driver_id"`
	DriverStatus     DriverStatus    `json:"driver_status" bson:"driver_status"`
	Positions        []PositionEntry `json:"positions" bson:"positions"`
	ConfirmationCode string          `json:"-" bson:"confirmation_code"`
	PhotoReference   string          `json:"photo_reference,omitempty" bson:"photo_reference,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at"`
}

// LineItem is the subset of an order's packages covered by one task group.
type LineItem struct {
	OrderID string  `json:"order_id" bson:"order_id"`
	Package Package `json:"package" bson:"package"`
}

// GroupStatus mirrors the embedded task's progress at the group level.
type GroupStatus string

const (
	GroupUnassigned GroupStatus = "UNASSIGNED"
	GroupAssigned   GroupStatus = "ASSIGNED"
	GroupCompleted  GroupStatus = "COMPLETED"
)

// OrderSnapshot is the denormalized order view stored on a group for display.
type OrderSnapshot struct {
	OrderNumber string   `json:"order_number" bson:"order_number"`
	OwnerID     string   `json:"owner_id" bson:"owner_id"`
	Pickup      Location `json:"pickup" bson:"pickup"`
	Dropoff     Location `json:"dropoff" bson:"dropoff"`
	Priority    Priority `json:"priority" bson:"priority"`
	PriceUSD    float64  `json:"price_usd" bson:"price_usd"`
}

// TaskGroup is the unit of work assignable to exactly one driver. Created
// once per order partition on payment confirmation, never deleted.
type TaskGroup struct {
	ID            string                   `json:"id" bson:"_id,omitempty"`
	DriverID      string                   `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	Status        GroupStatus              `json:"status" bson:"status"`
	LineItems     []LineItem               `json:"line_items" bson:"line_items"`
	PickupCenter  Coordinates              `json:"pickup_center" bson:"pickup_center"`
	DropoffCenter Coordinates              `json:"dropoff_center" bson:"dropoff_center"`
	Orders        map[string]OrderSnapshot `json:"orders" bson:"orders"`
	Task          Task                     `json:"task" bson:"task"`
	CreatedAt     time.Time                `json:"created_at" bson:"created_at"`
	Version       int64                    `json:"-" bson:"version"`
}

// OrderIDs returns the distinct order ids referenced by the group's line items.
func (g *TaskGroup) OrderIDs() []string {
	seen := make(map[string]struct{}, len(g.Orders))
	ids := make([]string, 0, len(g.Orders))
	for _, item := range g.LineItems {
		if _, ok := seen[item.OrderID]; ok {
			continue
		}
		seen[item.OrderID] = struct{}{}
		ids = append(ids, item.OrderID)
	}
	return ids
}
