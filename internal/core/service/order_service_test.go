package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newOrderService(repo *stubOrderRepo) *OrderService {
	routing := &stubRouting{route: milesRoute(4.2, 900)}
	estimate := NewEstimateService(testPricing(), routing, newStubRouteCache(), 12, discardLogger)
	return NewOrderService(repo, estimate, discardLogger)
}

func createInput(ownerID string) ports.CreateOrderInput {
	return ports.CreateOrderInput{
		OwnerID: ownerID,
		Packages: []ports.PackageInput{{
			Name:       "box",
			WeightLbs:  40,
			Dimensions: ports.DimensionsInput{HeightIn: 12, WidthIn: 12, LengthIn: 12},
			Quantity:   1,
		}},
		Pickup: ports.LocationInput{
			Address:     "Av 1",
			City:        "NYC",
			ZipCode:     "10001",
			Coordinates: ports.CoordinatesInput{Lat: 40.7, Lng: -74.0},
		},
		Dropoff: ports.LocationInput{
			Address:     "Calle 2",
			City:        "NYC",
			ZipCode:     "10002",
			Coordinates: ports.CoordinatesInput{Lat: 40.75, Lng: -73.98},
		},
		Priority: "STANDARD",
	}
}

// ---------------------------------------------------------------------------
// CreateOrder tests
// ---------------------------------------------------------------------------

func TestCreateOrder_Success(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	result, err := svc.CreateOrder(context.Background(), createInput("usr_1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(result.OrderNumber, "DSP-") {
		t.Errorf("order number format wrong: %s", result.OrderNumber)
	}
	if result.Status != string(domain.OrderPendingPayment) {
		t.Errorf("new order must start PENDING_PAYMENT, got %s", result.Status)
	}
	if result.PriceUSD != 18.00 {
		t.Errorf("expected quoted price 18.00, got %.2f", result.PriceUSD)
	}
	if result.AlreadyExisted {
		t.Error("expected AlreadyExisted=false for a new order")
	}

	stored := repo.byID[result.OrderID]
	if stored.OwnerID != "usr_1" {
		t.Errorf("expected owner usr_1, got %s", stored.OwnerID)
	}
	if stored.Priority != domain.PriorityStandard {
		t.Errorf("expected STANDARD priority, got %s", stored.Priority)
	}
}

func TestCreateOrder_IdempotencyReplay(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	input := createInput("usr_1")
	input.IdempotencyKey = "key-abc-123"

	first, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if second.OrderID != first.OrderID {
		t.Errorf("replay must return the same order: %s vs %s", second.OrderID, first.OrderID)
	}
	if !second.AlreadyExisted {
		t.Error("replay must set AlreadyExisted=true")
	}
	if len(repo.byID) != 1 {
		t.Errorf("expected 1 stored order, got %d", len(repo.byID))
	}
}

func TestCreateOrder_IdempotencyKeyScopedToOwner(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	input := createInput("usr_1")
	input.IdempotencyKey = "shared-key"
	if _, err := svc.CreateOrder(context.Background(), input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	other := createInput("usr_2")
	other.IdempotencyKey = "shared-key"
	result, err := svc.CreateOrder(context.Background(), other)
	if err != nil {
		t.Fatalf("create for second owner failed: %v", err)
	}
	if result.AlreadyExisted {
		t.Error("another owner's key must not replay")
	}
	if len(repo.byID) != 2 {
		t.Errorf("expected 2 stored orders, got %d", len(repo.byID))
	}
}

func TestCreateOrder_QuoteFailurePropagates(t *testing.T) {
	repo := newStubOrderRepo()
	routing := &stubRouting{route: milesRoute(20, 3600)}
	estimate := NewEstimateService(testPricing(), routing, newStubRouteCache(), 12, discardLogger)
	svc := NewOrderService(repo, estimate, discardLogger)

	_, err := svc.CreateOrder(context.Background(), createInput("usr_1"))
	if !errors.Is(err, domain.ErrDistanceTooLong) {
		t.Errorf("expected ErrDistanceTooLong, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Error("failed quote must not persist an order")
	}
}

// ---------------------------------------------------------------------------
// GetOrder RBAC tests
// ---------------------------------------------------------------------------

func TestGetOrder_CustomerOwnOrder(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	created, _ := svc.CreateOrder(context.Background(), createInput("usr_1"))

	detail, err := svc.GetOrder(context.Background(), ports.GetOrderInput{
		OrderID: created.OrderID,
		Role:    domain.RoleCustomer,
		UserID:  "usr_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.OrderNumber != created.OrderNumber {
		t.Errorf("expected %s, got %s", created.OrderNumber, detail.OrderNumber)
	}
}

func TestGetOrder_CustomerForeignOrderHidden(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	created, _ := svc.CreateOrder(context.Background(), createInput("usr_1"))

	_, err := svc.GetOrder(context.Background(), ports.GetOrderInput{
		OrderID: created.OrderID,
		Role:    domain.RoleCustomer,
		UserID:  "usr_2",
	})
	// Indistinguishable from a missing order on purpose.
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestGetOrder_DriverMustHoldTask(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	created, _ := svc.CreateOrder(context.Background(), createInput("usr_1"))

	_, err := svc.GetOrder(context.Background(), ports.GetOrderInput{
		OrderID: created.OrderID,
		Role:    domain.RoleDriver,
		UserID:  "drv_1",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	// Mirror a task for the driver, then access is allowed.
	order := repo.byID[created.OrderID]
	order.Tasks = map[string]domain.Task{"drv_1": {DriverID: "drv_1", DriverStatus: domain.DriverWaiting}}

	detail, err := svc.GetOrder(context.Background(), ports.GetOrderInput{
		OrderID: created.OrderID,
		Role:    domain.RoleDriver,
		UserID:  "drv_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detail.Tasks) != 1 || detail.Tasks[0].DriverID != "drv_1" {
		t.Errorf("expected the driver's task in the detail, got %+v", detail.Tasks)
	}
}

func TestGetOrder_AdminSeesEverything(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	created, _ := svc.CreateOrder(context.Background(), createInput("usr_1"))

	if _, err := svc.GetOrder(context.Background(), ports.GetOrderInput{
		OrderID: created.OrderID,
		Role:    domain.RoleAdmin,
		UserID:  "usr_admin",
	}); err != nil {
		t.Fatalf("admin access failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ListOrders tests
// ---------------------------------------------------------------------------

func TestListOrders_CustomerScoped(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	_, _ = svc.CreateOrder(context.Background(), createInput("usr_1"))
	_, _ = svc.CreateOrder(context.Background(), createInput("usr_1"))
	_, _ = svc.CreateOrder(context.Background(), createInput("usr_2"))

	result, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{
		Role:   domain.RoleCustomer,
		UserID: "usr_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("expected 2 orders for usr_1, got %d", result.Total)
	}
	for _, item := range result.Items {
		if item.OwnerID != "usr_1" {
			t.Errorf("foreign order leaked into customer listing: %+v", item)
		}
	}
}

func TestListOrders_LimitCapped(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	result, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{
		Role:   domain.RoleAdmin,
		UserID: "usr_admin",
		Limit:  5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Limit != 100 {
		t.Errorf("limit must cap at 100, got %d", result.Limit)
	}
	if result.Page != 1 {
		t.Errorf("page must default to 1, got %d", result.Page)
	}
}

func TestListOrders_StatusFilter(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newOrderService(repo)

	created, _ := svc.CreateOrder(context.Background(), createInput("usr_1"))
	_, _ = svc.CreateOrder(context.Background(), createInput("usr_1"))

	order := repo.byID[created.OrderID]
	order.Status = domain.OrderCompleted

	result, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{
		Role:   domain.RoleAdmin,
		Status: string(domain.OrderCompleted),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("expected 1 completed order, got %d", result.Total)
	}
}
