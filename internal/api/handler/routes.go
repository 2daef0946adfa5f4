package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/response"
	"github.com/routesense/routesense/internal/fuel"
	"github.com/routesense/routesense/internal/routeanalysis"
	"github.com/routesense/routesense/internal/routing"
	"github.com/routesense/routesense/pkg/geo"
)

// RoutesHandler serves route optimization, comparison, live updates and
// route planning.
type RoutesHandler struct {
	log      zerolog.Logger
	analysis *routeanalysis.Service
	routing  *routing.Service
}

// NewRoutesHandler creates the routes handler. routingSvc may be nil
// when no routing provider is configured; the plan endpoint then
// responds 503.
func NewRoutesHandler(log zerolog.Logger, analysis *routeanalysis.Service, routingSvc *routing.Service) *RoutesHandler {
	return &RoutesHandler{
		log:      log.With().Str("handler", "routes").Logger(),
		analysis: analysis,
		routing:  routingSvc,
	}
}

// Optimize handles POST /v1/routes/optimize. It scores every candidate
// route for the requested priority and recommends the best one.
func (h *RoutesHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req routeanalysis.OptimizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Routes) == 0 {
		response.BadRequest(w, r, "at least one candidate route is required", fieldErr("routes", "must not be empty"))
		return
	}

	result, err := h.analysis.OptimizeRoute(r.Context(), req)
	if err != nil {
		if errors.Is(err, routeanalysis.ErrNoRoutes) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		h.log.Error().Err(err).Msg("route optimization failed")
		response.InternalError(w, r, "route optimization failed")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

type compareRequest struct {
	Vehicle fuel.VehicleProfile            `json:"vehicle"`
	Routes  []routeanalysis.CandidateRoute `json:"routes"`
}

// Compare handles POST /v1/routes/compare. It ranks the given routes by
// safety, fuel use and a combined score.
func (h *RoutesHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Routes) == 0 {
		response.BadRequest(w, r, "at least one route is required", fieldErr("routes", "must not be empty"))
		return
	}

	comparison, err := h.analysis.CompareRoutes(r.Context(), req.Routes, req.Vehicle)
	if err != nil {
		h.log.Error().Err(err).Msg("route comparison failed")
		response.InternalError(w, r, "route comparison failed")
		return
	}
	response.JSON(w, r, http.StatusOK, comparison)
}

// Updates handles POST /v1/routes/updates. It re-scores an in-progress
// route against current conditions and returns alerts and upcoming
// hazards.
func (h *RoutesHandler) Updates(w http.ResponseWriter, r *http.Request) {
	var req routeanalysis.UpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RouteID == "" {
		response.BadRequest(w, r, "route_id is required", fieldErr("route_id", "must not be empty"))
		return
	}

	update, err := h.analysis.RealTimeUpdate(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("route_id", req.RouteID).Msg("real-time update failed")
		response.InternalError(w, r, "real-time update failed")
		return
	}
	response.JSON(w, r, http.StatusOK, update)
}

type planRequest struct {
	Origin      geo.Point          `json:"origin"`
	Destination geo.Point          `json:"destination"`
	Waypoints   []routing.Waypoint `json:"waypoints,omitempty"`
	Mode        routing.TravelMode `json:"mode,omitempty"`

	// ComputeBestOrder lets the provider reorder waypoints for the
	// shortest overall route.
	ComputeBestOrder bool `json:"compute_best_order,omitempty"`
}

// Plan handles POST /v1/routes/plan. It fetches road geometry from the
// configured routing provider.
func (h *RoutesHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if h.routing == nil {
		response.ServiceUnavailable(w, r, "no routing provider is configured")
		return
	}

	var req planRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Origin.Validate(); err != nil {
		response.BadRequest(w, r, "invalid origin", fieldErr("origin", err.Error()))
		return
	}
	if err := req.Destination.Validate(); err != nil {
		response.BadRequest(w, r, "invalid destination", fieldErr("destination", err.Error()))
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = routing.ModeTruck
	}

	resp, err := h.routing.GetRoute(r.Context(), routing.RouteRequest{
		Origin:           req.Origin,
		Destination:      req.Destination,
		Waypoints:        req.Waypoints,
		Mode:             mode,
		ComputeBestOrder: req.ComputeBestOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrInvalidCoordinates), errors.Is(err, routing.ErrNoRouteFound):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, routing.ErrProviderUnavailable), errors.Is(err, routing.ErrRateLimitExceeded):
			response.ServiceUnavailable(w, r, "routing provider is unavailable")
		default:
			h.log.Error().Err(err).Msg("route planning failed")
			response.InternalError(w, r, "route planning failed")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, resp)
}
