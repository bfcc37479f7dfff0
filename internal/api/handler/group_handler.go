package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// GroupHandler exposes admin operations on task groups.
type GroupHandler struct {
	grouping ports.GroupingService
	groups   ports.TaskGroupRepository
}

func NewGroupHandler(grouping ports.GroupingService, groups ports.TaskGroupRepository) *GroupHandler {
	return &GroupHandler{grouping: grouping, groups: groups}
}

// Get handles GET /v1/groups/:id.
//
// @Summary      Get one task group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Group ID"
// @Success      200  {object}  groupResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/groups/{id} [get]
func (h *GroupHandler) Get(c echo.Context) error {
	group, err := h.groups.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// ListByOrder handles GET /v1/orders/:id/groups.
//
// @Summary      List the task groups created for an order
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Order ID"
// @Success      200  {object}  listGroupsResponse
// @Router       /v1/orders/{id}/groups [get]
func (h *GroupHandler) ListByOrder(c echo.Context) error {
	groups, err := h.groups.FindByOrderID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	data := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		data = append(data, toGroupResponse(g))
	}
	return c.JSON(http.StatusOK, listGroupsResponse{Data: data})
}

// AssignDriver handles PUT /v1/groups/:id/driver.
//
// @Summary      Assign (or reassign) a driver to a task group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Group ID"
// @Param        body  body      assignDriverRequest  true  "Driver assignment"
// @Success      200   {object}  groupResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/groups/{id}/driver [put]
func (h *GroupHandler) AssignDriver(c echo.Context) error {
	var req assignDriverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	groupID := c.Param("id")
	if err := h.grouping.AssignDriver(c.Request().Context(), groupID, req.DriverID, req.Reassign); err != nil {
		return err
	}

	group, err := h.groups.FindByID(c.Request().Context(), groupID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGroupResponse(group))
}

// RemoveDriver handles DELETE /v1/groups/:id/driver.
//
// @Summary      Unassign the driver from a task group
// @Tags         groups
// @Security     BearerAuth
// @Param        id  path  string  true  "Group ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/groups/{id}/driver [delete]
func (h *GroupHandler) RemoveDriver(c echo.Context) error {
	if err := h.grouping.RemoveDriver(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func toGroupResponse(g *domain.TaskGroup) groupResponse {
	items := make([]lineItemResponse, 0, len(g.LineItems))
	for _, li := range g.LineItems {
		items = append(items, lineItemResponse{
			OrderID: li.OrderID,
			Package: packageResponse{
				Name:      li.Package.Name,
				WeightLbs: li.Package.WeightLbs,
				HeightIn:  li.Package.Dimensions.HeightIn,
				WidthIn:   li.Package.Dimensions.WidthIn,
				LengthIn:  li.Package.Dimensions.LengthIn,
				Quantity:  li.Package.Quantity,
			},
		})
	}

	orders := make([]groupOrderResponse, 0, len(g.Orders))
	for id, snap := range g.Orders {
		orders = append(orders, groupOrderResponse{
			OrderID:     id,
			OrderNumber: snap.OrderNumber,
			Pickup:      toDomainLocationResponse(snap.Pickup),
			Dropoff:     toDomainLocationResponse(snap.Dropoff),
			Priority:    string(snap.Priority),
			PriceUSD:    snap.PriceUSD,
		})
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderID < orders[j].OrderID })

	resp := groupResponse{
		GroupID:       g.ID,
		Status:        string(g.Status),
		DriverID:      g.DriverID,
		LineItems:     items,
		PickupCenter:  coordinatesResponse{Lat: g.PickupCenter.Lat, Lng: g.PickupCenter.Lng},
		DropoffCenter: coordinatesResponse{Lat: g.DropoffCenter.Lat, Lng: g.DropoffCenter.Lng},
		Orders:        orders,
		CreatedAt:     g.CreatedAt,
	}
	if g.DriverID != "" {
		resp.DriverStatus = string(g.Task.DriverStatus)
	}
	return resp
}

func toDomainLocationResponse(in domain.Location) locationResponse {
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
