// Package tomtom provides a client for the TomTom Routing API.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/provider/resilience"
	"github.com/routesense/routesense/internal/routing"
	"github.com/routesense/routesense/pkg/geo"
	"github.com/routesense/routesense/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "tomtom"

	// DefaultBaseURL is the TomTom Routing API base URL.
	DefaultBaseURL = "https://api.tomtom.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the TomTom client.
type ClientConfig struct {
	// APIKey is the TomTom API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to the TomTom API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a TomTom Routing API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new TomTom routing client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		if cfg.Registry != nil {
			clientCfg.Registry = cfg.Registry
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetRoute computes a route via the TomTom calculateRoute endpoint.
// Waypoints are threaded into the locations path between origin and
// destination in the order given.
func (c *Client) GetRoute(ctx context.Context, req routing.RouteRequest) (*routing.RouteResponse, error) {
	if c.apiKey == "" {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "MISSING_API_KEY",
			Message:  "TomTom API key is not configured",
			Err:      routing.ErrProviderUnavailable,
		}
	}

	if err := req.Origin.Validate(); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}
	if err := req.Destination.Validate(); err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      routing.ErrInvalidCoordinates,
		}
	}
	for _, wp := range req.Waypoints {
		if err := wp.Location.Validate(); err != nil {
			return nil, &routing.Error{
				Provider: ProviderName,
				Code:     "INVALID_WAYPOINT",
				Message:  fmt.Sprintf("invalid waypoint coordinates for %q", wp.Name),
				Err:      routing.ErrInvalidCoordinates,
			}
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = routing.ModeCar
	}

	// The locations path is origin:waypoint1:...:destination as
	// lat,lon pairs.
	locations := make([]string, 0, len(req.Waypoints)+2)
	locations = append(locations, formatPoint(req.Origin))
	for _, wp := range req.Waypoints {
		locations = append(locations, formatPoint(wp.Location))
	}
	locations = append(locations, formatPoint(req.Destination))

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("traffic", "true")
	params.Set("travelMode", string(mode))
	if req.ComputeBestOrder {
		params.Set("computeBestOrder", "true")
	}

	reqURL := fmt.Sprintf("%s/routing/1/calculateRoute/%s/json?%s",
		c.baseURL, strings.Join(locations, ":"), params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("origin_lat", req.Origin.Lat).
		Float64("origin_lon", req.Origin.Lon).
		Float64("dest_lat", req.Destination.Lat).
		Float64("dest_lon", req.Destination.Lon).
		Int("waypoints", len(req.Waypoints)).
		Str("travel_mode", string(mode)).
		Msg("requesting route from TomTom")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, respBody)
	}

	var apiResp calculateRouteResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(apiResp.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "response did not contain route data",
			Err:      routing.ErrNoRouteFound,
		}
	}

	result := toRouteResponse(&apiResp)

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Int("length_meters", result.Routes[0].Summary.LengthMeters).
		Msg("received route from TomTom")

	return result, nil
}

// handleErrorResponse maps TomTom error responses to domain errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	message := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		message = apiErr.message()
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied - check API key configuration",
			Err:      routing.ErrProviderUnavailable,
		}
	case statusCode == http.StatusBadRequest:
		if message == "" {
			message = "routing request was rejected"
		}
		return &routing.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  message,
			Err:      routing.ErrInvalidCoordinates,
		}
	case statusCode >= 500:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	default:
		if message == "" {
			message = fmt.Sprintf("routing provider returned status %d", statusCode)
		}
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  message,
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// toRouteResponse converts the TomTom response to the domain model.
func toRouteResponse(resp *calculateRouteResponse) *routing.RouteResponse {
	routes := make([]routing.Route, 0, len(resp.Routes))

	for i := range resp.Routes {
		apiRoute := &resp.Routes[i]

		route := routing.Route{
			Summary: routing.Summary{
				LengthMeters:        apiRoute.Summary.LengthInMeters,
				TravelTimeSeconds:   apiRoute.Summary.TravelTimeInSeconds,
				TrafficDelaySeconds: apiRoute.Summary.TrafficDelayInSeconds,
				DepartureTime:       apiRoute.Summary.DepartureTime,
				ArrivalTime:         apiRoute.Summary.ArrivalTime,
			},
		}

		var points []geo.Point
		for legIdx, leg := range apiRoute.Legs {
			legCoords := make([][2]float64, 0, len(leg.Points))
			for _, p := range leg.Points {
				legCoords = append(legCoords, [2]float64{p.Longitude, p.Latitude})
				points = append(points, geo.Point{Lat: p.Latitude, Lon: p.Longitude})
			}
			route.Coordinates = append(route.Coordinates, legCoords...)
			route.Legs = append(route.Legs, routing.Leg{
				Index:       legIdx,
				Coordinates: legCoords,
			})
		}

		if len(points) > 0 {
			route.GeometryPolyline = polyline.Encode(points)
		}

		routes = append(routes, route)
	}

	return &routing.RouteResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
}

func formatPoint(p geo.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}
