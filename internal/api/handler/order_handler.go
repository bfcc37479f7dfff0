package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// OrderHandler handles order creation and retrieval.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /v1/orders.
//
// The optional Idempotency-Key header makes retries safe: a repeated key
// from the same customer replays the original order instead of creating
// a duplicate.
//
// @Summary      Create a delivery order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Client retry token"
// @Param        body             body      createOrderRequest  true   "Order details"
// @Success      201  {object}  createOrderResponse
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	_, userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.CreateOrder(c.Request().Context(), ports.CreateOrderInput{
		OwnerID:        userID,
		Packages:       toPackageInputs(req.Packages),
		Pickup:         toLocationInput(req.Pickup),
		Dropoff:        toLocationInput(req.Dropoff),
		Priority:       req.Priority,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, createOrderResponse{
		OrderID:          result.OrderID,
		OrderNumber:      result.OrderNumber,
		Status:           result.Status,
		RequiredVehicles: toVehicleResponses(result.RequiredVehicles),
		DistanceMiles:    result.DistanceMiles,
		PriceUSD:         result.PriceUSD,
		CreatedAt:        result.CreatedAt,
		Links:            newOrderLinks(result.OrderID),
	})
}

// Get handles GET /v1/orders/:id. Customers only see their own orders,
// drivers only orders they hold a task on.
//
// @Summary      Get one order with its task detail
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Order ID"
// @Success      200  {object}  getOrderResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	role, userID, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	actorID := userID
	if driverID != "" {
		actorID = driverID
	}
	detail, err := h.service.GetOrder(c.Request().Context(), ports.GetOrderInput{
		OrderID: c.Param("id"),
		Role:    role,
		UserID:  actorID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toGetOrderResponse(detail))
}

// List handles GET /v1/orders with status, priority and pagination filters.
//
// @Summary      List orders visible to the caller
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status    query  string  false  "Filter by order status"
// @Param        priority  query  string  false  "Filter by priority"
// @Param        page      query  int     false  "Page number (1-based)"
// @Param        limit     query  int     false  "Page size (max 100)"
// @Success      200  {object}  listOrdersResponse
// @Failure      400  {object}  errorResponse
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	role, userID, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	actorID := userID
	if driverID != "" {
		actorID = driverID
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListOrders(c.Request().Context(), ports.ListOrdersInput{
		Role:     role,
		UserID:   actorID,
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	items := make([]orderSummaryResponse, 0, len(result.Items))
	for _, o := range result.Items {
		items = append(items, orderSummaryResponse{
			OrderID:       o.OrderID,
			OrderNumber:   o.OrderNumber,
			Status:        o.Status,
			Priority:      o.Priority,
			Pickup:        toLocationResponse(o.Pickup),
			Dropoff:       toLocationResponse(o.Dropoff),
			DistanceMiles: o.DistanceMiles,
			PriceUSD:      o.PriceUSD,
			CreatedAt:     o.CreatedAt,
			Links:         newOrderLinks(o.OrderID),
		})
	}

	return c.JSON(http.StatusOK, listOrdersResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

func newOrderLinks(orderID string) orderLinks {
	return orderLinks{
		Self:   fmt.Sprintf("/v1/orders/%s", orderID),
		Groups: fmt.Sprintf("/v1/orders/%s/groups", orderID),
	}
}

func toLocationInput(req locationRequest) ports.LocationInput {
	return ports.LocationInput{
		Address: req.Address,
		City:    req.City,
		ZipCode: req.ZipCode,
		Coordinates: ports.CoordinatesInput{
			Lat: req.Coordinates.Lat,
			Lng: req.Coordinates.Lng,
		},
	}
}

func toLocationResponse(in ports.LocationInput) locationResponse {
	return locationResponse{
		Address: in.Address,
		City:    in.City,
		ZipCode: in.ZipCode,
		Coordinates: coordinatesResponse{
			Lat: in.Coordinates.Lat,
			Lng: in.Coordinates.Lng,
		},
	}
}

func toGetOrderResponse(d *ports.OrderDetail) getOrderResponse {
	pkgs := make([]packageResponse, 0, len(d.Packages))
	for _, p := range d.Packages {
		pkgs = append(pkgs, packageResponse{
			Name:      p.Name,
			WeightLbs: p.WeightLbs,
			HeightIn:  p.Dimensions.HeightIn,
			WidthIn:   p.Dimensions.WidthIn,
			LengthIn:  p.Dimensions.LengthIn,
			Quantity:  p.Quantity,
		})
	}

	tasks := make([]taskResponse, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		positions := make([]taskPositionResponse, 0, len(t.Positions))
		for _, p := range t.Positions {
			positions = append(positions, taskPositionResponse{
				Status:    p.Status,
				Lat:       p.Lat,
				Lng:       p.Lng,
				Timestamp: p.Timestamp,
			})
		}
		tasks = append(tasks, taskResponse{
			DriverID:     t.DriverID,
			DriverStatus: t.DriverStatus,
			Positions:    positions,
			UpdatedAt:    t.UpdatedAt,
		})
	}

	return getOrderResponse{
		OrderID:           d.OrderID,
		OrderNumber:       d.OrderNumber,
		Status:            d.Status,
		Priority:          d.Priority,
		Packages:          pkgs,
		Pickup:            toLocationResponse(d.Pickup),
		Dropoff:           toLocationResponse(d.Dropoff),
		RequiredVehicles:  toVehicleResponses(d.RequiredVehicles),
		DistanceMiles:     d.DistanceMiles,
		DurationSeconds:   d.DurationSeconds,
		PriceUSD:          d.PriceUSD,
		AssignedDriverIDs: d.AssignedDriverIDs,
		Tasks:             tasks,
		CreatedAt:         d.CreatedAt,
		Links:             newOrderLinks(d.OrderID),
	}
}
