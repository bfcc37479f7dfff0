package ports

import (
	"context"
	"time"
)

// EvidenceInput is the proof-of-delivery pair supplied on the final transition.
type EvidenceInput struct {
	ConfirmationCode string
	PhotoReference   string
}

// AdvanceTaskInput carries one task state transition attempt. TargetStatus
// must be the immediate successor of the task's current status.
type AdvanceTaskInput struct {
	GroupID        string
	ActingDriverID string
	TargetStatus   string
	Position       CoordinatesInput
	// Evidence is required only for the transition into DELIVERED.
	Evidence *EvidenceInput
}

// TaskView is the task state returned after a successful transition.
type TaskView struct {
	GroupID      string
	DriverID     string
	DriverStatus string
	Positions    []TaskPositionItem
	UpdatedAt    time.Time
	// CompletedOrderIDs lists orders promoted to COMPLETED by this
	// transition's fan-in check.
	CompletedOrderIDs []string
}

// TaskService drives the per-driver delivery state machine.
type TaskService interface {
	Advance(ctx context.Context, input AdvanceTaskInput) (*TaskView, error)
}
