package handler

import "time"

type evidenceRequest struct {
	ConfirmationCode string `json:"confirmation_code" validate:"required,len=4,numeric"`
	PhotoReference   string `json:"photo_reference"   validate:"required"`
}

type advanceTaskRequest struct {
	TargetStatus string             `json:"target_status" validate:"required"`
	Position     coordinatesRequest `json:"position"      validate:"required"`
	Evidence     *evidenceRequest   `json:"evidence,omitempty"`
}

type taskViewResponse struct {
	GroupID           string                 `json:"group_id"`
	DriverID          string                 `json:"driver_id"`
	DriverStatus      string                 `json:"driver_status"`
	Positions         []taskPositionResponse `json:"positions"`
	UpdatedAt         time.Time              `json:"updated_at"`
	CompletedOrderIDs []string               `json:"completed_order_ids,omitempty"`
}

type registerEvidenceRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type registerEvidenceResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}
