package handler

import "time"

type assignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
	Reassign bool   `json:"reassign"`
}

type lineItemResponse struct {
	OrderID string          `json:"order_id"`
	Package packageResponse `json:"package"`
}

type groupOrderResponse struct {
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Pickup      locationResponse `json:"pickup"`
	Dropoff     locationResponse `json:"dropoff"`
	Priority    string           `json:"priority"`
	PriceUSD    float64          `json:"price_usd"`
}

type groupResponse struct {
	GroupID       string               `json:"group_id"`
	Status        string               `json:"status"`
	DriverID      string               `json:"driver_id,omitempty"`
	DriverStatus  string               `json:"driver_status,omitempty"`
	LineItems     []lineItemResponse   `json:"line_items"`
	PickupCenter  coordinatesResponse  `json:"pickup_center"`
	DropoffCenter coordinatesResponse  `json:"dropoff_center"`
	Orders        []groupOrderResponse `json:"orders"`
	CreatedAt     time.Time            `json:"created_at"`
}

type listGroupsResponse struct {
	Data []groupResponse `json:"data"`
}
