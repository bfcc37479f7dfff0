package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/api/metrics"
	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// EstimateHandler handles pre-payment quote requests.
type EstimateHandler struct {
	service ports.EstimateService
}

func NewEstimateHandler(service ports.EstimateService) *EstimateHandler {
	return &EstimateHandler{service: service}
}

// Quote handles POST /v1/estimates. It computes a price quote with no side effects.
//
// @Summary      Estimate price and required vehicles for a trip
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      estimateRequest  true  "Trip and package details"
// @Success      200   {object}  estimateResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/estimates [post]
func (h *EstimateHandler) Quote(c echo.Context) error {
	var req estimateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.service.Estimate(c.Request().Context(), toEstimateInput(req))
	if err != nil {
		metrics.EstimateErrorsTotal.WithLabelValues(estimateErrorReason(err)).Inc()
		return err
	}

	metrics.EstimatesTotal.WithLabelValues(req.Priority).Inc()
	return c.JSON(http.StatusOK, estimateResponse{
		RequiredVehicles: toVehicleResponses(result.RequiredVehicles),
		DistanceMiles:    result.DistanceMiles,
		DurationSeconds:  result.DurationSeconds,
		PriceUSD:         result.PriceUSD,
		Zone:             result.ZoneName,
		ConfigVersion:    result.ConfigVersion,
	})
}

func toEstimateInput(req estimateRequest) ports.EstimateInput {
	return ports.EstimateInput{
		Packages: toPackageInputs(req.Packages),
		Pickup:   ports.CoordinatesInput{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
		Dropoff:  ports.CoordinatesInput{Lat: req.Dropoff.Lat, Lng: req.Dropoff.Lng},
		Priority: req.Priority,
	}
}

func toPackageInputs(in []packageRequest) []ports.PackageInput {
	out := make([]ports.PackageInput, 0, len(in))
	for _, p := range in {
		out = append(out, ports.PackageInput{
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
	return out
}

func toVehicleResponses(in []domain.VehicleRequirement) []vehicleRequirementResponse {
	out := make([]vehicleRequirementResponse, 0, len(in))
	for _, v := range in {
		out = append(out, vehicleRequirementResponse{Type: string(v.Type), Quantity: v.Quantity})
	}
	return out
}

func estimateErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoZoneCoverage):
		return "no_zone_coverage"
	case errors.Is(err, domain.ErrNoPriceBandForDistance):
		return "no_price_band"
	case errors.Is(err, domain.ErrDistanceTooLong):
		return "distance_too_long"
	case errors.Is(err, domain.ErrRoutingUnavailable):
		return "routing_unavailable"
	case errors.Is(err, domain.ErrPackageTooLarge):
		return "package_too_large"
	default:
		return "other"
	}
}
