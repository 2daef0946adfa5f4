// Package routing provides road route computation for fleet vehicles.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/routesense/routesense/pkg/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider defines the interface for routing providers. Implementations
// cover both live API fetches and recorded fixture playback.
type Provider interface {
	// GetRoute computes a road route between origin and destination,
	// visiting any waypoints.
	GetRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// TravelMode is the vehicle class used for route computation.
type TravelMode string

const (
	// ModeCar routes for passenger vehicles.
	ModeCar TravelMode = "car"
	// ModeTruck routes for commercial trucks, honoring truck restrictions.
	ModeTruck TravelMode = "truck"
)

// Waypoint is a named intermediate stop along a route.
type Waypoint struct {
	Name     string    `json:"name,omitempty"`
	Location geo.Point `json:"location"`
}

// RouteRequest is the request for computing a route.
type RouteRequest struct {
	Origin      geo.Point
	Destination geo.Point
	Waypoints   []Waypoint
	Mode        TravelMode

	// ComputeBestOrder lets the provider reorder waypoints for the
	// shortest overall route.
	ComputeBestOrder bool
}

// RouteResponse is the computed route with its source provider.
type RouteResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route is a single computed route.
type Route struct {
	// Coordinates is the full geometry as [longitude, latitude] pairs.
	Coordinates [][2]float64

	// GeometryPolyline is the same geometry as an encoded polyline
	// (precision 5).
	GeometryPolyline string

	// Legs partitions the geometry at waypoints, preserving the
	// provider's leg ordering.
	Legs []Leg

	Summary Summary
}

// Leg is the geometry between two consecutive stops.
type Leg struct {
	Index       int          `json:"leg_index"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Summary carries the provider's route totals.
type Summary struct {
	LengthMeters        int       `json:"length_in_meters"`
	TravelTimeSeconds   int       `json:"travel_time_in_seconds"`
	TrafficDelaySeconds int       `json:"traffic_delay_in_seconds"`
	DepartureTime       time.Time `json:"departure_time,omitempty"`
	ArrivalTime         time.Time `json:"arrival_time,omitempty"`
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
