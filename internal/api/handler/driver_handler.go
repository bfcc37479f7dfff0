package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// DriverHandler manages courier profiles and their assigned work.
type DriverHandler struct {
	service ports.DriverService
}

func NewDriverHandler(service ports.DriverService) *DriverHandler {
	return &DriverHandler{service: service}
}

// Register handles POST /v1/drivers. The profile starts with pending
// verification; an admin reviews documents before the driver is assignable.
//
// @Summary      Register a driver profile for the authenticated user
// @Tags         drivers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerDriverRequest  true  "Driver profile"
// @Success      201   {object}  driverResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/drivers [post]
func (h *DriverHandler) Register(c echo.Context) error {
	// Read the user claim directly: a driver-role account has no driver_id
	// until this very call creates the profile, so ctxClaims would reject it.
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	var req registerDriverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	vehicles := make([]ports.VehicleInput, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		vehicles = append(vehicles, ports.VehicleInput{Class: v.Class, PlateNumber: v.PlateNumber, Model: v.Model})
	}
	docs := make([]ports.DocumentInput, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, ports.DocumentInput{Kind: d.Kind, Reference: d.Reference})
	}

	detail, err := h.service.Register(c.Request().Context(), ports.RegisterDriverInput{
		UserID:    userID,
		Name:      req.Name,
		Vehicles:  vehicles,
		Documents: docs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDriverResponse(detail))
}

// Get handles GET /v1/drivers/:id.
//
// @Summary      Get a driver profile
// @Tags         drivers
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Driver ID"
// @Success      200  {object}  driverResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/drivers/{id} [get]
func (h *DriverHandler) Get(c echo.Context) error {
	role, _, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	// Drivers may only read their own profile.
	if role == domain.RoleDriver && id != driverID {
		return domain.ErrForbidden
	}

	detail, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDriverResponse(detail))
}

// UpdateLocation handles PUT /v1/drivers/me/location.
//
// @Summary      Report the authenticated driver's current position
// @Tags         drivers
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  updateLocationRequest  true  "Coordinates"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /v1/drivers/me/location [put]
func (h *DriverHandler) UpdateLocation(c echo.Context) error {
	_, _, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req updateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.UpdateLocation(c.Request().Context(), driverID, ports.CoordinatesInput{Lat: req.Lat, Lng: req.Lng}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetVerification handles PUT /v1/drivers/:id/verification (admin only).
//
// @Summary      Set a driver's document verification status
// @Tags         drivers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Driver ID"
// @Param        body  body      setVerificationRequest  true  "New status"
// @Success      200   {object}  driverResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/drivers/{id}/verification [put]
func (h *DriverHandler) SetVerification(c echo.Context) error {
	var req setVerificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("id")
	if err := h.service.SetVerification(c.Request().Context(), id, req.Status); err != nil {
		return err
	}

	detail, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDriverResponse(detail))
}

// ListGroups handles GET /v1/drivers/me/groups.
//
// @Summary      List the authenticated driver's assigned task groups
// @Tags         drivers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listGroupSummariesResponse
// @Router       /v1/drivers/me/groups [get]
func (h *DriverHandler) ListGroups(c echo.Context) error {
	_, _, driverID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	groups, err := h.service.ListGroups(c.Request().Context(), driverID)
	if err != nil {
		return err
	}

	data := make([]groupSummaryResponse, 0, len(groups))
	for _, g := range groups {
		data = append(data, groupSummaryResponse{
			GroupID:       g.GroupID,
			Status:        g.Status,
			DriverStatus:  g.DriverStatus,
			PickupCenter:  coordinatesResponse{Lat: g.PickupCenter.Lat, Lng: g.PickupCenter.Lng},
			DropoffCenter: coordinatesResponse{Lat: g.DropoffCenter.Lat, Lng: g.DropoffCenter.Lng},
			Orders:        g.Orders,
		})
	}
	return c.JSON(http.StatusOK, listGroupSummariesResponse{Data: data})
}

func toDriverResponse(d *ports.DriverDetail) driverResponse {
	vehicles := make([]vehicleResponse, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		vehicles = append(vehicles, vehicleResponse{Class: v.Class, PlateNumber: v.PlateNumber, Model: v.Model})
	}

	resp := driverResponse{
		ID:           d.ID,
		Name:         d.Name,
		Verification: d.Verification,
		Vehicles:     vehicles,
		Earnings: earningsResponse{
			DeliveriesCompleted: d.Earnings.DeliveriesCompleted,
			TotalUSD:            d.Earnings.TotalUSD,
		},
	}
	if d.LastLocation != nil {
		resp.LastLocation = &coordinatesResponse{Lat: d.LastLocation.Lat, Lng: d.LastLocation.Lng}
		at := d.LocatedAt
		resp.LocatedAt = &at
	}
	return resp
}
