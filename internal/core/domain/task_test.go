package domain

import (
	"errors"
	"testing"
)

func TestDriverStatus_ForwardSequence(t *testing.T) {
	seq := []DriverStatus{
		DriverWaiting,
		DriverAccepted,
		DriverOnTheWayToPickup,
		DriverOnTheWayToDeliver,
		DriverDelivered,
	}
	for i := 0; i < len(seq)-1; i++ {
		if seq[i].Next() != seq[i+1] {
			t.Errorf("%s.Next() = %s, want %s", seq[i], seq[i].Next(), seq[i+1])
		}
		if !seq[i].CanTransitionTo(seq[i+1]) {
			t.Errorf("%s -> %s should be allowed", seq[i], seq[i+1])
		}
	}
}

func TestDriverStatus_DeliveredIsTerminal(t *testing.T) {
	if DriverDelivered.Next() != "" {
		t.Errorf("DELIVERED must have no successor, got %s", DriverDelivered.Next())
	}
	for _, to := range driverStatusOrder {
		if DriverDelivered.CanTransitionTo(to) {
			t.Errorf("DELIVERED -> %s must be rejected", to)
		}
	}
}

func TestDriverStatus_NoSkippingOrBacktracking(t *testing.T) {
	if DriverWaiting.CanTransitionTo(DriverOnTheWayToPickup) {
		t.Error("skipping ACCEPTED must be rejected")
	}
	if DriverWaiting.CanTransitionTo(DriverDelivered) {
		t.Error("jumping straight to DELIVERED must be rejected")
	}
	if DriverOnTheWayToDeliver.CanTransitionTo(DriverOnTheWayToPickup) {
		t.Error("backwards transition must be rejected")
	}
	if DriverAccepted.CanTransitionTo(DriverAccepted) {
		t.Error("self transition must be rejected")
	}
}

func TestParseDriverStatus(t *testing.T) {
	if s, err := ParseDriverStatus("ON_THE_WAY_TO_PICKUP"); err != nil || s != DriverOnTheWayToPickup {
		t.Errorf("expected ON_THE_WAY_TO_PICKUP, got %v (err %v)", s, err)
	}
	if _, err := ParseDriverStatus("EN_ROUTE"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestTaskGroup_OrderIDs_Distinct(t *testing.T) {
	g := &TaskGroup{
		LineItems: []LineItem{
			{OrderID: "ord_1"},
			{OrderID: "ord_1"},
			{OrderID: "ord_2"},
		},
	}
	ids := g.OrderIDs()
	if len(ids) != 2 || ids[0] != "ord_1" || ids[1] != "ord_2" {
		t.Errorf("expected [ord_1 ord_2], got %v", ids)
	}
}
