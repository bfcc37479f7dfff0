package domain

import (
	"errors"
	"math"
)

var ErrNoZoneCoverage = errors.New("no price zone covers the trip")
var ErrNoPriceBandForDistance = errors.New("no price band covers the distance")
var ErrDistanceTooLong = errors.New("distance exceeds on-demand service limit")
var ErrRoutingUnavailable = errors.New("routing provider unavailable")

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" bson:"min_lat"`
	MaxLat float64 `json:"max_lat" bson:"max_lat"`
	MinLng float64 `json:"min_lng" bson:"min_lng"`
	MaxLng float64 `json:"max_lng" bson:"max_lng"`
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BoundingBox) Contains(p Coordinates) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// PriceBand is one distance-banded fee row mapping [MinMiles, MaxMiles) to BaseUSD.
type PriceBand struct {
	MinMiles float64 `json:"min_miles" bson:"min_miles"`
	MaxMiles float64 `json:"max_miles" bson:"max_miles"`
	BaseUSD  float64 `json:"base_usd" bson:"base_usd"`
}

// Zone is a geographic bounding box with its distance-banded price table.
type Zone struct {
	Name  string      `json:"name" bson:"name"`
	Box   BoundingBox `json:"box" bson:"box"`
	Bands []PriceBand `json:"bands" bson:"bands"`
}

// BandFor selects the band whose half-open interval contains miles.
func (z Zone) BandFor(miles float64) (PriceBand, error) {
	for _, band := range z.Bands {
		if miles >= band.MinMiles && miles < band.MaxMiles {
			return band, nil
		}
	}
	return PriceBand{}, ErrNoPriceBandForDistance
}

// ResolveZone finds the applicable zone for a trip. The first zone containing
// the pickup point wins; when no zone covers the pickup, the first zone
// containing the dropoff is used instead.
func ResolveZone(zones []Zone, pickup, dropoff Coordinates) (Zone, error) {
	for _, z := range zones {
		if z.Box.Contains(pickup) {
			return z, nil
		}
	}
	for _, z := range zones {
		if z.Box.Contains(dropoff) {
			return z, nil
		}
	}
	return Zone{}, ErrNoZoneCoverage
}

// priorityMultipliers maps service tiers to their price scalars.
var priorityMultipliers = map[Priority]float64{
	PriorityStandard:  1.0,
	PriorityExpedited: 1.25,
	PriorityUrgent:    1.5,
}

// Multiplier returns the price scalar for a priority tier.
func (p Priority) Multiplier() float64 {
	if m, ok := priorityMultipliers[p]; ok {
		return m
	}
	return priorityMultipliers[PriorityStandard]
}

// Price computes the final quote: base fee scaled by the priority multiplier,
// rounded to the minor currency unit.
func Price(band PriceBand, priority Priority) float64 {
	return math.Round(band.BaseUSD*priority.Multiplier()*100) / 100
}
