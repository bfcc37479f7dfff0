package domain

import (
	"errors"
	"math"
)

// VehicleClass is one rung of the ordered capacity ladder.
type VehicleClass string

const (
	VehicleSedan   VehicleClass = "SEDAN"
	VehicleSUV     VehicleClass = "SUV"
	VehicleVan     VehicleClass = "VAN"
	VehicleTruck   VehicleClass = "TRUCK"
	VehicleFreight VehicleClass = "FREIGHT"
)

var ErrPackageTooLarge = errors.New("package exceeds every vehicle class")
var ErrNoPackages = errors.New("order has no packages")

// vehicleCapacity bounds what a single vehicle of a class can carry.
type vehicleCapacity struct {
	Class         VehicleClass
	MaxWeightLbs  float64
	MaxVolumeCuIn float64
	MaxSideIn     float64
}

// vehicleLadder is the capacity ladder in ascending order. Volume caps are
// usable cargo space, not gross interior volume.
var vehicleLadder = []vehicleCapacity{
	{Class: VehicleSedan, MaxWeightLbs: 250, MaxVolumeCuIn: 25000, MaxSideIn: 42},
	{Class: VehicleSUV, MaxWeightLbs: 800, MaxVolumeCuIn: 75000, MaxSideIn: 70},
	{Class: VehicleVan, MaxWeightLbs: 3000, MaxVolumeCuIn: 250000, MaxSideIn: 120},
	{Class: VehicleTruck, MaxWeightLbs: 10000, MaxVolumeCuIn: 960000, MaxSideIn: 240},
	{Class: VehicleFreight, MaxWeightLbs: 44000, MaxVolumeCuIn: 3300000, MaxSideIn: 576},
}

// PlanVehicles converts a package set into the smallest feasible vehicle
// requirement. The floor class is the smallest rung whose per-item limits
// admit the heaviest and longest single unit; from there the count needed at
// each rung is derived from total weight and total volume, and the rung with
// the fewest vehicles wins. Equal counts resolve to the smaller class.
//
// The contract is feasibility, not optimal bin packing: the result is always
// a single class with a quantity.
func PlanVehicles(packages []Package) ([]VehicleRequirement, error) {
	if len(packages) == 0 {
		return nil, ErrNoPackages
	}

	var totalWeight, totalVolume float64
	var maxUnitWeight, maxUnitSide float64
	for _, p := range packages {
		qty := p.Quantity
		if qty < 1 {
			qty = 1
		}
		totalWeight += p.WeightLbs * float64(qty)
		totalVolume += p.Dimensions.VolumeCuIn() * float64(qty)
		if p.WeightLbs > maxUnitWeight {
			maxUnitWeight = p.WeightLbs
		}
		if side := p.Dimensions.LongestSide(); side > maxUnitSide {
			maxUnitSide = side
		}
	}

	floor := -1
	for i, c := range vehicleLadder {
		if maxUnitWeight <= c.MaxWeightLbs && maxUnitSide <= c.MaxSideIn {
			floor = i
			break
		}
	}
	if floor < 0 {
		return nil, ErrPackageTooLarge
	}

	best := VehicleRequirement{}
	for i := floor; i < len(vehicleLadder); i++ {
		c := vehicleLadder[i]
		byWeight := math.Ceil(totalWeight / c.MaxWeightLbs)
		byVolume := math.Ceil(totalVolume / c.MaxVolumeCuIn)
		count := int(math.Max(math.Max(byWeight, byVolume), 1))
		if best.Quantity == 0 || count < best.Quantity {
			best = VehicleRequirement{Type: c.Class, Quantity: count}
		}
		if count == 1 {
			break
		}
	}

	return []VehicleRequirement{best}, nil
}
