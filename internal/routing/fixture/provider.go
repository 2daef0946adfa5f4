// Package fixture provides a routing provider backed by a recorded
// route payload on disk, for development and tests without API access.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/routing"
	"github.com/routesense/routesense/pkg/geo"
	"github.com/routesense/routesense/pkg/polyline"
)

// ProviderName identifies this routing provider.
const ProviderName = "fixture"

// recordedPayload is the shape of a recorded route file: the route
// summary and legs captured from a live provider response.
type recordedPayload struct {
	RouteSummary struct {
		LengthInMeters        int    `json:"length_in_meters"`
		TravelTimeInSeconds   int    `json:"travel_time_in_seconds"`
		TrafficDelayInSeconds int    `json:"traffic_delay_in_seconds"`
		DepartureTime         string `json:"departure_time"`
		ArrivalTime           string `json:"arrival_time"`
	} `json:"route_summary"`
	Legs []struct {
		Points []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"points"`
	} `json:"legs"`
}

// ProviderConfig holds configuration for the fixture provider.
type ProviderConfig struct {
	// Path is the recorded route JSON file.
	Path string

	// Logger for provider operations.
	Logger zerolog.Logger
}

// Provider serves the recorded route for every request, ignoring the
// requested origin and destination. The file is read once and cached.
type Provider struct {
	path   string
	logger zerolog.Logger

	once    sync.Once
	route   *routing.Route
	loadErr error
}

// NewProvider creates a fixture provider reading from the given path.
func NewProvider(cfg ProviderConfig) *Provider {
	return &Provider{
		path:   cfg.Path,
		logger: cfg.Logger,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// GetRoute returns the recorded route.
func (p *Provider) GetRoute(ctx context.Context, _ routing.RouteRequest) (*routing.RouteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.once.Do(p.load)
	if p.loadErr != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "FIXTURE_UNAVAILABLE",
			Message:  p.loadErr.Error(),
			Err:      routing.ErrProviderUnavailable,
		}
	}

	return &routing.RouteResponse{
		Routes:    []routing.Route{*p.route},
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}

func (p *Provider) load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.loadErr = fmt.Errorf("reading recorded route: %w", err)
		return
	}

	var payload recordedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		p.loadErr = fmt.Errorf("decoding recorded route: %w", err)
		return
	}

	route := routing.Route{
		Summary: routing.Summary{
			LengthMeters:        payload.RouteSummary.LengthInMeters,
			TravelTimeSeconds:   payload.RouteSummary.TravelTimeInSeconds,
			TrafficDelaySeconds: payload.RouteSummary.TrafficDelayInSeconds,
		},
	}
	if t, err := time.Parse(time.RFC3339, payload.RouteSummary.DepartureTime); err == nil {
		route.Summary.DepartureTime = t
	}
	if t, err := time.Parse(time.RFC3339, payload.RouteSummary.ArrivalTime); err == nil {
		route.Summary.ArrivalTime = t
	}

	var points []geo.Point
	for legIdx, leg := range payload.Legs {
		legCoords := make([][2]float64, 0, len(leg.Points))
		for _, pt := range leg.Points {
			legCoords = append(legCoords, [2]float64{pt.Longitude, pt.Latitude})
			points = append(points, geo.Point{Lat: pt.Latitude, Lon: pt.Longitude})
		}
		route.Coordinates = append(route.Coordinates, legCoords...)
		route.Legs = append(route.Legs, routing.Leg{
			Index:       legIdx,
			Coordinates: legCoords,
		})
	}

	if len(points) == 0 {
		p.loadErr = fmt.Errorf("recorded route %s contains no coordinates", p.path)
		return
	}
	route.GeometryPolyline = polyline.Encode(points)

	p.logger.Info().
		Str("path", p.path).
		Int("points", len(points)).
		Msg("loaded recorded route")
	p.route = &route
}
