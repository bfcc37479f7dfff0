package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

type stubEstimateService struct {
	estimateFn func(ctx context.Context, in ports.EstimateInput) (*ports.EstimateResult, error)
}

func (s *stubEstimateService) Estimate(ctx context.Context, in ports.EstimateInput) (*ports.EstimateResult, error) {
	return s.estimateFn(ctx, in)
}

const quoteBody = `{
	"packages": [{"name":"boxes","weight_lbs":40,"dimensions":{"height_in":12,"width_in":12,"length_in":12},"quantity":2}],
	"pickup":  {"lat":40.71, "lng":-74.0},
	"dropoff": {"lat":40.75, "lng":-73.98},
	"priority": "EXPEDITED"
}`

func TestEstimateHandler_Quote_Success(t *testing.T) {
	stub := &stubEstimateService{
		estimateFn: func(_ context.Context, in ports.EstimateInput) (*ports.EstimateResult, error) {
			if in.Priority != "EXPEDITED" || len(in.Packages) != 1 || in.Packages[0].Quantity != 2 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.EstimateResult{
				RequiredVehicles: []domain.VehicleRequirement{{Type: domain.VehicleSedan, Quantity: 1}},
				DistanceMiles:    4.2,
				DurationSeconds:  780,
				PriceUSD:         22.5,
				ZoneName:         "metro-core",
				ConfigVersion:    3,
			}, nil
		},
	}
	h := NewEstimateHandler(stub)

	c, rec := jsonContext(t, http.MethodPost, "/v1/estimates", quoteBody)
	if err := h.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp estimateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.PriceUSD != 22.5 || resp.Zone != "metro-core" || resp.ConfigVersion != 3 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if len(resp.RequiredVehicles) != 1 || resp.RequiredVehicles[0].Type != "SEDAN" {
		t.Fatalf("unexpected vehicles: %+v", resp.RequiredVehicles)
	}
}

func TestEstimateHandler_Quote_ZeroCoordinatesAccepted(t *testing.T) {
	stub := &stubEstimateService{
		estimateFn: func(_ context.Context, in ports.EstimateInput) (*ports.EstimateResult, error) {
			if in.Pickup.Lat != 0 || in.Pickup.Lng != 0 {
				t.Fatalf("expected equator pickup to pass through, got %+v", in.Pickup)
			}
			return &ports.EstimateResult{PriceUSD: 10, ZoneName: "metro-core", ConfigVersion: 1}, nil
		},
	}
	h := NewEstimateHandler(stub)

	// Lat 0 / lng 0 are valid coordinates and must not trip validation.
	body := `{"packages":[{"name":"b","weight_lbs":1,"dimensions":{"height_in":1,"width_in":1,"length_in":1},"quantity":1}],"pickup":{"lat":0,"lng":0},"dropoff":{"lat":40.8,"lng":-73.9},"priority":"STANDARD"}`
	c, rec := jsonContext(t, http.MethodPost, "/v1/estimates", body)
	if err := h.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEstimateHandler_Quote_MissingPriority(t *testing.T) {
	stub := &stubEstimateService{
		estimateFn: func(context.Context, ports.EstimateInput) (*ports.EstimateResult, error) {
			t.Fatal("service must not be called for an invalid payload")
			return nil, nil
		},
	}
	h := NewEstimateHandler(stub)

	body := `{"packages":[{"name":"b","weight_lbs":1,"dimensions":{"height_in":1,"width_in":1,"length_in":1},"quantity":1}],"pickup":{"lat":40.7,"lng":-74.0},"dropoff":{"lat":40.8,"lng":-73.9}}`
	c, _ := jsonContext(t, http.MethodPost, "/v1/estimates", body)
	err := h.Quote(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 HTTPError, got %v", err)
	}
}

func TestEstimateHandler_Quote_ServiceErrorPassesThrough(t *testing.T) {
	stub := &stubEstimateService{
		estimateFn: func(context.Context, ports.EstimateInput) (*ports.EstimateResult, error) {
			return nil, domain.ErrDistanceTooLong
		},
	}
	h := NewEstimateHandler(stub)

	c, _ := jsonContext(t, http.MethodPost, "/v1/estimates", quoteBody)
	if err := h.Quote(c); !errors.Is(err, domain.ErrDistanceTooLong) {
		t.Fatalf("expected ErrDistanceTooLong, got %v", err)
	}
}
