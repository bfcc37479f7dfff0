package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/api/metrics"
	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// TaskHandler exposes the driver-facing task state machine.
type TaskHandler struct {
	tasks    ports.TaskService
	evidence ports.EvidenceStore
}

func NewTaskHandler(tasks ports.TaskService, evidence ports.EvidenceStore) *TaskHandler {
	return &TaskHandler{tasks: tasks, evidence: evidence}
}

// Advance handles PATCH /v1/tasks/:id, one forward step of the assigned
// driver's state machine. The final step into DELIVERED requires evidence.
//
// @Summary      Advance a task to its next status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Task group ID"
// @Param        body  body      advanceTaskRequest  true  "Transition details"
// @Success      200   {object}  taskViewResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tasks/{id} [patch]
func (h *TaskHandler) Advance(c echo.Context) error {
	_, _, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req advanceTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	input := ports.AdvanceTaskInput{
		GroupID:        c.Param("id"),
		ActingDriverID: driverID,
		TargetStatus:   req.TargetStatus,
		Position:       ports.CoordinatesInput{Lat: req.Position.Lat, Lng: req.Position.Lng},
	}
	if req.Evidence != nil {
		input.Evidence = &ports.EvidenceInput{
			ConfirmationCode: req.Evidence.ConfirmationCode,
			PhotoReference:   req.Evidence.PhotoReference,
		}
	}

	view, err := h.tasks.Advance(c.Request().Context(), input)
	if err != nil {
		metrics.TransitionErrorsTotal.WithLabelValues(transitionErrorReason(err)).Inc()
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(view.DriverStatus).Inc()
	if n := len(view.CompletedOrderIDs); n > 0 {
		metrics.OrdersCompletedTotal.Add(float64(n))
	}

	return c.JSON(http.StatusOK, toTaskViewResponse(view))
}

// RegisterEvidence handles POST /v1/evidence. Photo uploads happen against a
// separate media endpoint; this registers the resulting blob reference so
// the final DELIVERED transition can verify it.
//
// @Summary      Register a delivery-proof photo reference
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerEvidenceRequest  true  "Blob reference"
// @Success      201   {object}  registerEvidenceResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/evidence [post]
func (h *TaskHandler) RegisterEvidence(c echo.Context) error {
	_, _, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req registerEvidenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.evidence.Register(c.Request().Context(), req.Reference, driverID); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerEvidenceResponse{
		Reference: req.Reference,
		Status:    "registered",
	})
}

func toTaskViewResponse(v *ports.TaskView) taskViewResponse {
	positions := make([]taskPositionResponse, 0, len(v.Positions))
	for _, p := range v.Positions {
		positions = append(positions, taskPositionResponse{
			Status:    p.Status,
			Lat:       p.Lat,
			Lng:       p.Lng,
			Timestamp: p.Timestamp,
		})
	}
	return taskViewResponse{
		GroupID:           v.GroupID,
		DriverID:          v.DriverID,
		DriverStatus:      v.DriverStatus,
		Positions:         positions,
		UpdatedAt:         v.UpdatedAt,
		CompletedOrderIDs: v.CompletedOrderIDs,
	}
}

func transitionErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidConfirmationCode):
		return "bad_confirmation_code"
	case errors.Is(err, domain.ErrMissingDeliveryEvidence):
		return "missing_evidence"
	case errors.Is(err, domain.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, domain.ErrTaskGroupNotFound):
		return "not_found"
	default:
		return "other"
	}
}
