package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Fixture: one assigned group over one order, driver in WAITING
// ---------------------------------------------------------------------------

type taskFixture struct {
	orders   *stubOrderRepo
	groups   *stubGroupRepo
	drivers  *stubDriverRepo
	evidence *stubEvidenceStore
	svc      ports.TaskService
	orderID  string
	groupID  string
	driverID string
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	orders := newStubOrderRepo()
	groups := newStubGroupRepo()
	groups.ordersRef = orders
	drivers := newStubDriverRepo()
	evidence := newStubEvidenceStore("blob://proof-1")

	driverID := drivers.addVerifiedDriver("Ana")

	order := &domain.Order{
		ID:          "ord_1",
		OrderNumber: "DSP-0000ABCD",
		OwnerID:     "usr_owner",
		Status:      domain.OrderTasksAssigned,
		Priority:    domain.PriorityStandard,
		PriceUSD:    18,
		Packages:    []domain.Package{{Name: "box", WeightLbs: 10, Quantity: 1}},
		Tasks: map[string]domain.Task{
			driverID: {DriverID: driverID, DriverStatus: domain.DriverWaiting},
		},
		AssignedDriverIDs: []string{driverID},
	}
	orders.put(order)

	group := &domain.TaskGroup{
		ID:       "grp_1",
		DriverID: driverID,
		Status:   domain.GroupAssigned,
		LineItems: []domain.LineItem{
			{OrderID: order.ID, Package: order.Packages[0]},
		},
		Orders: map[string]domain.OrderSnapshot{order.ID: {OrderNumber: order.OrderNumber}},
		Task: domain.Task{
			DriverID:         driverID,
			DriverStatus:     domain.DriverWaiting,
			ConfirmationCode: "4242",
		},
	}
	groups.byID[group.ID] = group

	svc := NewTaskService(groups, orders, drivers, evidence, discardLogger)
	return &taskFixture{
		orders:   orders,
		groups:   groups,
		drivers:  drivers,
		evidence: evidence,
		svc:      svc,
		orderID:  order.ID,
		groupID:  group.ID,
		driverID: driverID,
	}
}

func (f *taskFixture) advance(t *testing.T, target domain.DriverStatus, ev *ports.EvidenceInput) (*ports.TaskView, error) {
	t.Helper()
	return f.svc.Advance(context.Background(), ports.AdvanceTaskInput{
		GroupID:        f.groupID,
		ActingDriverID: f.driverID,
		TargetStatus:   string(target),
		Position:       ports.CoordinatesInput{Lat: 40.7, Lng: -74.0},
		Evidence:       ev,
	})
}

// advanceTo walks the fixture's task forward to the given status.
func (f *taskFixture) advanceTo(t *testing.T, target domain.DriverStatus) {
	t.Helper()
	sequence := []domain.DriverStatus{
		domain.DriverAccepted,
		domain.DriverOnTheWayToPickup,
		domain.DriverOnTheWayToDeliver,
	}
	for _, next := range sequence {
		if _, err := f.advance(t, next, nil); err != nil {
			t.Fatalf("advancing to %s: %v", next, err)
		}
		if next == target {
			return
		}
	}
}

func deliveryEvidence() *ports.EvidenceInput {
	return &ports.EvidenceInput{ConfirmationCode: "4242", PhotoReference: "blob://proof-1"}
}

// ---------------------------------------------------------------------------
// Advance tests
// ---------------------------------------------------------------------------

func TestAdvance_SingleStep(t *testing.T) {
	f := newTaskFixture(t)

	view, err := f.advance(t, domain.DriverAccepted, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.DriverStatus != string(domain.DriverAccepted) {
		t.Errorf("expected ACCEPTED, got %s", view.DriverStatus)
	}
	if len(view.Positions) != 1 || view.Positions[0].Status != string(domain.DriverAccepted) {
		t.Errorf("expected one position entry for ACCEPTED, got %+v", view.Positions)
	}

	// The order's mirrored task must reflect the new status.
	order, _ := f.orders.FindByID(context.Background(), f.orderID, "")
	if order.Tasks[f.driverID].DriverStatus != domain.DriverAccepted {
		t.Errorf("order mirror not updated: %s", order.Tasks[f.driverID].DriverStatus)
	}
}

func TestAdvance_SkippingRejected(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.advance(t, domain.DriverOnTheWayToPickup, nil)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if f.groups.commits != 0 {
		t.Error("rejected transition must not write")
	}
}

func TestAdvance_WrongDriverRejected(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.Advance(context.Background(), ports.AdvanceTaskInput{
		GroupID:        f.groupID,
		ActingDriverID: "drv_intruder",
		TargetStatus:   string(domain.DriverAccepted),
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAdvance_FullSequenceToDelivered(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)

	view, err := f.advance(t, domain.DriverDelivered, deliveryEvidence())
	if err != nil {
		t.Fatalf("delivery failed: %v", err)
	}
	if view.DriverStatus != string(domain.DriverDelivered) {
		t.Errorf("expected DELIVERED, got %s", view.DriverStatus)
	}
	if len(view.Positions) != 4 {
		t.Errorf("expected 4 position entries, got %d", len(view.Positions))
	}
	if len(view.CompletedOrderIDs) != 1 || view.CompletedOrderIDs[0] != f.orderID {
		t.Errorf("expected order completion to be reported, got %v", view.CompletedOrderIDs)
	}

	group, _ := f.groups.FindByID(context.Background(), f.groupID)
	if group.Status != domain.GroupCompleted {
		t.Errorf("expected group COMPLETED, got %s", group.Status)
	}

	order, _ := f.orders.FindByID(context.Background(), f.orderID, "")
	if order.Status != domain.OrderCompleted {
		t.Errorf("expected order COMPLETED, got %s", order.Status)
	}
}

func TestAdvance_DeliveredWithWrongCode(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)

	_, err := f.advance(t, domain.DriverDelivered, &ports.EvidenceInput{
		ConfirmationCode: "0000",
		PhotoReference:   "blob://proof-1",
	})
	if !errors.Is(err, domain.ErrInvalidConfirmationCode) {
		t.Errorf("expected ErrInvalidConfirmationCode, got %v", err)
	}

	// Status must stay exactly where it was.
	group, _ := f.groups.FindByID(context.Background(), f.groupID)
	if group.Task.DriverStatus != domain.DriverOnTheWayToDeliver {
		t.Errorf("status must not move on bad code, got %s", group.Task.DriverStatus)
	}
}

func TestAdvance_DeliveredWithoutPhoto(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)

	_, err := f.advance(t, domain.DriverDelivered, &ports.EvidenceInput{ConfirmationCode: "4242"})
	if !errors.Is(err, domain.ErrMissingDeliveryEvidence) {
		t.Errorf("expected ErrMissingDeliveryEvidence, got %v", err)
	}

	_, err = f.advance(t, domain.DriverDelivered, nil)
	if !errors.Is(err, domain.ErrMissingDeliveryEvidence) {
		t.Errorf("expected ErrMissingDeliveryEvidence for nil evidence, got %v", err)
	}
}

func TestAdvance_DeliveredWithUnregisteredPhoto(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)

	_, err := f.advance(t, domain.DriverDelivered, &ports.EvidenceInput{
		ConfirmationCode: "4242",
		PhotoReference:   "blob://never-uploaded",
	})
	if !errors.Is(err, domain.ErrMissingDeliveryEvidence) {
		t.Errorf("expected ErrMissingDeliveryEvidence, got %v", err)
	}
}

func TestAdvance_PositionTrailAppendOnly(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)

	group, _ := f.groups.FindByID(context.Background(), f.groupID)
	statuses := make([]domain.DriverStatus, 0, len(group.Task.Positions))
	for _, p := range group.Task.Positions {
		statuses = append(statuses, p.Status)
	}
	want := []domain.DriverStatus{
		domain.DriverAccepted,
		domain.DriverOnTheWayToPickup,
		domain.DriverOnTheWayToDeliver,
	}
	if len(statuses) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(statuses))
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], statuses[i])
		}
	}
}

func TestAdvance_DeliveredIsTerminal(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)
	if _, err := f.advance(t, domain.DriverDelivered, deliveryEvidence()); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}

	_, err := f.advance(t, domain.DriverDelivered, deliveryEvidence())
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition after terminal state, got %v", err)
	}
}

func TestAdvance_CreditsDriverOnDelivery(t *testing.T) {
	f := newTaskFixture(t)
	f.advanceTo(t, domain.DriverOnTheWayToDeliver)
	if _, err := f.advance(t, domain.DriverDelivered, deliveryEvidence()); err != nil {
		t.Fatalf("delivery failed: %v", err)
	}

	driver, _ := f.drivers.FindByID(context.Background(), f.driverID)
	if driver.Earnings.DeliveriesCompleted != 1 {
		t.Errorf("expected 1 completed delivery, got %d", driver.Earnings.DeliveriesCompleted)
	}
	if driver.Earnings.TotalUSD != 18 {
		t.Errorf("expected 18 USD credited, got %.2f", driver.Earnings.TotalUSD)
	}
}

func TestAdvance_OrderCompletesOnlyWhenEveryGroupDelivered(t *testing.T) {
	orders := newStubOrderRepo()
	groups := newStubGroupRepo()
	groups.ordersRef = orders
	drivers := newStubDriverRepo()
	evidence := newStubEvidenceStore("blob://proof-1", "blob://proof-2")

	ana := drivers.addVerifiedDriver("Ana")
	luis := drivers.addVerifiedDriver("Luis")

	order := &domain.Order{
		ID:          "ord_1",
		OrderNumber: "DSP-0000ABCD",
		OwnerID:     "usr_owner",
		Status:      domain.OrderTasksAssigned,
		Priority:    domain.PriorityStandard,
		PriceUSD:    30,
		Packages: []domain.Package{
			{Name: "box-a", WeightLbs: 10, Quantity: 1},
			{Name: "box-b", WeightLbs: 5, Quantity: 1},
		},
		Tasks: map[string]domain.Task{
			ana:  {DriverID: ana, DriverStatus: domain.DriverWaiting},
			luis: {DriverID: luis, DriverStatus: domain.DriverWaiting},
		},
		AssignedDriverIDs: []string{ana, luis},
	}
	orders.put(order)

	for i, d := range []string{ana, luis} {
		groups.byID[fmt.Sprintf("grp_%d", i+1)] = &domain.TaskGroup{
			ID:       fmt.Sprintf("grp_%d", i+1),
			DriverID: d,
			Status:   domain.GroupAssigned,
			LineItems: []domain.LineItem{
				{OrderID: order.ID, Package: order.Packages[i]},
			},
			Orders: map[string]domain.OrderSnapshot{order.ID: {OrderNumber: order.OrderNumber}},
			Task: domain.Task{
				DriverID:         d,
				DriverStatus:     domain.DriverWaiting,
				ConfirmationCode: "4242",
			},
		}
	}

	svc := NewTaskService(groups, orders, drivers, evidence, discardLogger)
	deliver := func(groupID, driverID, photo string) *ports.TaskView {
		t.Helper()
		var view *ports.TaskView
		sequence := []domain.DriverStatus{
			domain.DriverAccepted,
			domain.DriverOnTheWayToPickup,
			domain.DriverOnTheWayToDeliver,
			domain.DriverDelivered,
		}
		for _, next := range sequence {
			var ev *ports.EvidenceInput
			if next == domain.DriverDelivered {
				ev = &ports.EvidenceInput{ConfirmationCode: "4242", PhotoReference: photo}
			}
			v, err := svc.Advance(context.Background(), ports.AdvanceTaskInput{
				GroupID:        groupID,
				ActingDriverID: driverID,
				TargetStatus:   string(next),
				Position:       ports.CoordinatesInput{Lat: 40.7, Lng: -74.0},
				Evidence:       ev,
			})
			if err != nil {
				t.Fatalf("advancing %s to %s: %v", groupID, next, err)
			}
			view = v
		}
		return view
	}

	// First group delivered: the sibling is still out, so the order stays open.
	view := deliver("grp_1", ana, "blob://proof-1")
	if len(view.CompletedOrderIDs) != 0 {
		t.Errorf("order must not be reported complete with a group outstanding, got %v", view.CompletedOrderIDs)
	}
	stored, _ := orders.FindByID(context.Background(), order.ID, "")
	if stored.Status != domain.OrderTasksAssigned {
		t.Errorf("expected order still TASKS_ASSIGNED, got %s", stored.Status)
	}

	// Second group delivered: every task is in, the order completes.
	view = deliver("grp_2", luis, "blob://proof-2")
	if len(view.CompletedOrderIDs) != 1 || view.CompletedOrderIDs[0] != order.ID {
		t.Errorf("expected order completion to be reported, got %v", view.CompletedOrderIDs)
	}
	stored, _ = orders.FindByID(context.Background(), order.ID, "")
	if stored.Status != domain.OrderCompleted {
		t.Errorf("expected order COMPLETED, got %s", stored.Status)
	}
}

func TestAdvance_RetriesOnVersionConflict(t *testing.T) {
	f := newTaskFixture(t)
	f.groups.conflictNext = 1

	view, err := f.advance(t, domain.DriverAccepted, nil)
	if err != nil {
		t.Fatalf("expected retry to recover from conflict, got %v", err)
	}
	if view.DriverStatus != string(domain.DriverAccepted) {
		t.Errorf("expected ACCEPTED after retry, got %s", view.DriverStatus)
	}
	if f.groups.commits != 1 {
		t.Errorf("expected exactly one successful commit, got %d", f.groups.commits)
	}
}

func TestAdvance_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newTaskFixture(t)
	f.groups.conflictNext = 10

	_, err := f.advance(t, domain.DriverAccepted, nil)
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict after exhausted retries, got %v", err)
	}
}

func TestAdvance_UnknownTargetStatus(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.Advance(context.Background(), ports.AdvanceTaskInput{
		GroupID:        f.groupID,
		ActingDriverID: f.driverID,
		TargetStatus:   "TELEPORTED",
	})
	if !errors.Is(err, domain.ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestAdvance_GroupNotFound(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.svc.Advance(context.Background(), ports.AdvanceTaskInput{
		GroupID:        "grp_missing",
		ActingDriverID: f.driverID,
		TargetStatus:   string(domain.DriverAccepted),
	})
	if !errors.Is(err, domain.ErrTaskGroupNotFound) {
		t.Errorf("expected ErrTaskGroupNotFound, got %v", err)
	}
}
