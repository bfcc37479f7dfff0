package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

// Lat and Lng carry range tags only. A required tag on a float64 would
// reject the zero value, and 0 is a valid coordinate on either axis.
type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type locationRequest struct {
	Address     string             `json:"address"      validate:"required"`
	City        string             `json:"city"         validate:"required"`
	ZipCode     string             `json:"zip_code"     validate:"required"`
	Coordinates coordinatesRequest `json:"coordinates"  validate:"required"`
}

type dimensionsRequest struct {
	HeightIn float64 `json:"height_in" validate:"required,gt=0"`
	WidthIn  float64 `json:"width_in"  validate:"required,gt=0"`
	LengthIn float64 `json:"length_in" validate:"required,gt=0"`
}

type packageRequest struct {
	Name       string            `json:"name"       validate:"required"`
	WeightLbs  float64           `json:"weight_lbs" validate:"required,gt=0"`
	Dimensions dimensionsRequest `json:"dimensions" validate:"required"`
	Quantity   int               `json:"quantity"   validate:"required,min=1"`
}

type estimateRequest struct {
	Packages []packageRequest   `json:"packages" validate:"required,min=1,dive"`
	Pickup   coordinatesRequest `json:"pickup"   validate:"required"`
	Dropoff  coordinatesRequest `json:"dropoff"  validate:"required"`
	Priority string             `json:"priority" validate:"required,oneof=STANDARD EXPEDITED URGENT"`
}

type createOrderRequest struct {
	Packages []packageRequest `json:"packages" validate:"required,min=1,dive"`
	Pickup   locationRequest  `json:"pickup"   validate:"required"`
	Dropoff  locationRequest  `json:"dropoff"  validate:"required"`
	Priority string           `json:"priority" validate:"required,oneof=STANDARD EXPEDITED URGENT"`
}

// --- Response types ---
// Response-only types owned by the transport layer; intentionally separate
// from ports/domain types so the JSON contract is not coupled to internal
// service changes.

type vehicleRequirementResponse struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type estimateResponse struct {
	RequiredVehicles []vehicleRequirementResponse `json:"required_vehicles"`
	DistanceMiles    float64                      `json:"distance_miles"`
	DurationSeconds  int64                        `json:"duration_seconds"`
	PriceUSD         float64                      `json:"price_usd"`
	Zone             string                       `json:"zone"`
	ConfigVersion    int64                        `json:"config_version"`
}

type orderLinks struct {
	Self   string `json:"self"`
	Groups string `json:"groups"`
}

type createOrderResponse struct {
	OrderID          string                       `json:"order_id"`
	OrderNumber      string                       `json:"order_number"`
	Status           string                       `json:"status"`
	RequiredVehicles []vehicleRequirementResponse `json:"required_vehicles"`
	DistanceMiles    float64                      `json:"distance_miles"`
	PriceUSD         float64                      `json:"price_usd"`
	CreatedAt        time.Time                    `json:"created_at"`
	Links            orderLinks                   `json:"_links"`
}

type coordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type locationResponse struct {
	Address     string              `json:"address"`
	City        string              `json:"city"`
	ZipCode     string              `json:"zip_code"`
	Coordinates coordinatesResponse `json:"coordinates"`
}

type packageResponse struct {
	Name      string  `json:"name"`
	WeightLbs float64 `json:"weight_lbs"`
	HeightIn  float64 `json:"height_in"`
	WidthIn   float64 `json:"width_in"`
	LengthIn  float64 `json:"length_in"`
	Quantity  int     `json:"quantity"`
}

type taskPositionResponse struct {
	Status    string    `json:"status"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

type taskResponse struct {
	DriverID     string                 `json:"driver_id"`
	DriverStatus string                 `json:"driver_status"`
	Positions    []taskPositionResponse `json:"positions"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type getOrderResponse struct {
	OrderID           string                       `json:"order_id"`
	OrderNumber       string                       `json:"order_number"`
	Status            string                       `json:"status"`
	Priority          string                       `json:"priority"`
	Packages          []packageResponse            `json:"packages"`
	Pickup            locationResponse             `json:"pickup"`
	Dropoff           locationResponse             `json:"dropoff"`
	RequiredVehicles  []vehicleRequirementResponse `json:"required_vehicles"`
	DistanceMiles     float64                      `json:"distance_miles"`
	DurationSeconds   int64                        `json:"duration_seconds"`
	PriceUSD          float64                      `json:"price_usd"`
	AssignedDriverIDs []string                     `json:"assigned_driver_ids"`
	Tasks             []taskResponse               `json:"tasks"`
	CreatedAt         time.Time                    `json:"created_at"`
	Links             orderLinks                   `json:"_links"`
}

// orderSummaryResponse is the lightweight item used in list responses.
// It intentionally omits task detail to keep payloads small.
type orderSummaryResponse struct {
	OrderID       string           `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	Status        string           `json:"status"`
	Priority      string           `json:"priority"`
	Pickup        locationResponse `json:"pickup"`
	Dropoff       locationResponse `json:"dropoff"`
	DistanceMiles float64          `json:"distance_miles"`
	PriceUSD      float64          `json:"price_usd"`
	CreatedAt     time.Time        `json:"created_at"`
	Links         orderLinks       `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listOrdersResponse struct {
	Data       []orderSummaryResponse `json:"data"`
	Pagination paginationResponse     `json:"pagination"`
}
