package domain

import (
	"errors"
	"time"
)

// VerificationStatus tracks review of a driver's license and insurance documents.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus validates a verification status from a boundary.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch VerificationStatus(s) {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return VerificationStatus(s), nil
	}
	return "", ErrUnknownStatus
}

var ErrDriverNotFound = errors.New("driver not found")
var ErrDriverExists = errors.New("driver already registered")

// DocumentRef points at an uploaded verification document (license, insurance).
// The reference is opaque; the blob itself lives in evidence storage.
type DocumentRef struct {
	Kind       string    `json:"kind" bson:"kind"`
	Reference  string    `json:"reference" bson:"reference"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// DriverVehicle is one vehicle a driver operates.
type DriverVehicle struct {
	Class       VehicleClass `json:"class" bson:"class"`
	PlateNumber string       `json:"plate_number" bson:"plate_number"`
	Model       string       `json:"model" bson:"model"`
}

// Earnings aggregates a driver's completed work.
type Earnings struct {
	DeliveriesCompleted int64   `json:"deliveries_completed" bson:"deliveries_completed"`
	TotalUSD            float64 `json:"total_usd" bson:"total_usd"`
}

// Driver is an independent courier profile. Assignment logic reads the
// verification status to filter eligible drivers.
type Driver struct {
	ID           string             `json:"id" bson:"_id,omitempty"`
	UserID       string             `json:"user_id" bson:"user_id"`
	Name         string             `json:"name" bson:"name"`
	Verification VerificationStatus `json:"verification" bson:"verification"`
	Documents    []DocumentRef      `json:"documents" bson:"documents"`
	Vehicles     []DriverVehicle    `json:"vehicles" bson:"vehicles"`
	Earnings     Earnings           `json:"earnings" bson:"earnings"`
	LastLocation *Coordinates       `json:"last_location,omitempty" bson:"last_location,omitempty"`
	LocatedAt    time.Time          `json:"located_at,omitempty" bson:"located_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// Eligible reports whether the driver may be assigned work.
func (d *Driver) Eligible() bool {
	return d.Verification == VerificationVerified
}
