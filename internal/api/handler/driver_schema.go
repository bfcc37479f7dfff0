package handler

import "time"

type vehicleRequest struct {
	Class       string `json:"class"        validate:"required,oneof=SEDAN SUV VAN TRUCK FREIGHT"`
	PlateNumber string `json:"plate_number" validate:"required"`
	Model       string `json:"model"        validate:"required"`
}

type documentRequest struct {
	Kind      string `json:"kind"      validate:"required"`
	Reference string `json:"reference" validate:"required"`
}

type registerDriverRequest struct {
	Name      string            `json:"name"      validate:"required"`
	Vehicles  []vehicleRequest  `json:"vehicles"  validate:"required,min=1,dive"`
	Documents []documentRequest `json:"documents" validate:"omitempty,dive"`
}

// Range tags only on the coordinate fields, since required would reject 0
// and 0 is a valid latitude and longitude.
type updateLocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type setVerificationRequest struct {
	Status string `json:"status" validate:"required,oneof=pending verified rejected"`
}

type vehicleResponse struct {
	Class       string `json:"class"`
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
}

type earningsResponse struct {
	DeliveriesCompleted int64   `json:"deliveries_completed"`
	TotalUSD            float64 `json:"total_usd"`
}

type driverResponse struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Verification string               `json:"verification"`
	Vehicles     []vehicleResponse    `json:"vehicles"`
	Earnings     earningsResponse     `json:"earnings"`
	LastLocation *coordinatesResponse `json:"last_location,omitempty"`
	LocatedAt    *time.Time           `json:"located_at,omitempty"`
}

type groupSummaryResponse struct {
	GroupID       string              `json:"group_id"`
	Status        string              `json:"status"`
	DriverStatus  string              `json:"driver_status"`
	PickupCenter  coordinatesResponse `json:"pickup_center"`
	DropoffCenter coordinatesResponse `json:"dropoff_center"`
	Orders        []string            `json:"orders"`
}

type listGroupSummariesResponse struct {
	Data []groupSummaryResponse `json:"data"`
}
