// Package routing implements the external routing-provider port against an
// OSRM-compatible HTTP endpoint.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/swiftdrop/dispatch/internal/core/domain"
	"github.com/swiftdrop/dispatch/internal/core/ports"
)

const requestTimeout = 5 * time.Second

// Client queries an OSRM-compatible route service for road distance/duration.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a routing client for the given base URL
// (e.g. http://router.project-osrm.org).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// osrmResponse is the subset of the OSRM route response we read.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

// DistanceAndDuration resolves the driving route between two points. Any
// transport or provider failure is wrapped in domain.ErrRoutingUnavailable so
// callers can treat it as retryable.
func (c *Client) DistanceAndDuration(ctx context.Context, origin, destination domain.Coordinates) (ports.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.Route{}, fmt.Errorf("%w: build request: %v", domain.ErrRoutingUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.Route{}, fmt.Errorf("%w: %v", domain.ErrRoutingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.Route{}, fmt.Errorf("%w: provider returned %d", domain.ErrRoutingUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ports.Route{}, fmt.Errorf("%w: decode response: %v", domain.ErrRoutingUnavailable, err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return ports.Route{}, fmt.Errorf("%w: no route found (code %s)", domain.ErrRoutingUnavailable, body.Code)
	}

	route := body.Routes[0]
	return ports.Route{
		Meters:  route.Distance,
		Seconds: int64(route.Duration),
	}, nil
}
