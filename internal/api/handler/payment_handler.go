package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/infrastructure/queue"
)

type paymentWebhookRequest struct {
	OrderID   string `json:"order_id"  validate:"required"`
	Provider  string `json:"provider"  validate:"required"`
	Reference string `json:"reference" validate:"required"`
	Status    string `json:"status"    validate:"required"`
}

type paymentWebhookResponse struct {
	Accepted bool   `json:"accepted"`
	OrderID  string `json:"order_id"`
}

// PaymentHandler receives payment-provider webhooks and hands them to the
// sharded dispatcher. Grouping runs asynchronously; the provider only needs
// an acknowledgement, and the dispatcher absorbs redelivered events.
type PaymentHandler struct {
	dispatcher *queue.Dispatcher
}

func NewPaymentHandler(dispatcher *queue.Dispatcher) *PaymentHandler {
	return &PaymentHandler{dispatcher: dispatcher}
}

// Webhook handles POST /v1/payments/webhook.
//
// @Summary      Accept a payment confirmation event
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      paymentWebhookRequest  true  "Provider event"
// @Success      202   {object}  paymentWebhookResponse
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req paymentWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	// Providers retry on anything but 2xx. Non-success statuses are
	// acknowledged and dropped so they stop being redelivered.
	if req.Status != "succeeded" {
		return c.JSON(http.StatusAccepted, paymentWebhookResponse{Accepted: false, OrderID: req.OrderID})
	}

	err := h.dispatcher.Enqueue(queue.PaymentEvent{
		OrderID:   req.OrderID,
		Provider:  req.Provider,
		Reference: req.Reference,
	})
	if err != nil {
		// 503 makes the provider redeliver once the backlog drains.
		return echo.NewHTTPError(http.StatusServiceUnavailable, "payment queue full, retry later")
	}
	return c.JSON(http.StatusAccepted, paymentWebhookResponse{Accepted: true, OrderID: req.OrderID})
}
