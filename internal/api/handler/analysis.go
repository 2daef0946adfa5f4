package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/response"
	"github.com/routesense/routesense/internal/fuel"
	"github.com/routesense/routesense/internal/safety"
	"github.com/routesense/routesense/internal/sunlight"
)

// AnalysisHandler serves the standalone scoring endpoints: safety, fuel
// and sunlight glare, each on a single route.
type AnalysisHandler struct {
	log zerolog.Logger
}

// NewAnalysisHandler creates the analysis handler.
func NewAnalysisHandler(log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{log: log.With().Str("handler", "analysis").Logger()}
}

// Safety handles POST /v1/analysis/safety. It scores one route's
// conditions and returns the full safety assessment.
func (h *AnalysisHandler) Safety(w http.ResponseWriter, r *http.Request) {
	var route safety.RouteInput
	if !decodeJSON(w, r, &route) {
		return
	}
	response.JSON(w, r, http.StatusOK, safety.ScoreRoute(route))
}

type fuelRequest struct {
	Route   fuel.RouteConditions `json:"route"`
	Vehicle fuel.VehicleProfile  `json:"vehicle"`
}

// Fuel handles POST /v1/analysis/fuel. It estimates fuel consumption
// for one route and vehicle.
func (h *AnalysisHandler) Fuel(w http.ResponseWriter, r *http.Request) {
	var req fuelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Route.DistanceMiles <= 0 {
		response.BadRequest(w, r, "route distance must be positive", fieldErr("route.distance_miles", "must be greater than zero"))
		return
	}
	if req.Vehicle.MPGCity <= 0 || req.Vehicle.MPGHighway <= 0 {
		response.BadRequest(w, r, "vehicle MPG ratings must be positive", fieldErr("vehicle", "mpg_city and mpg_highway must be greater than zero"))
		return
	}
	response.JSON(w, r, http.StatusOK, fuel.Consumption(req.Route, req.Vehicle))
}

type sunlightRequest struct {
	Segments []sunlight.Segment `json:"segments"`

	// DepartureTime is an RFC3339 timestamp; the zone offset determines
	// local sun position.
	DepartureTime string `json:"departure_time"`
}

// Sunlight handles POST /v1/analysis/sunlight. It scores sun glare risk
// along the route's segments starting at the departure time.
func (h *AnalysisHandler) Sunlight(w http.ResponseWriter, r *http.Request) {
	var req sunlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Segments) == 0 {
		response.BadRequest(w, r, "at least one segment is required", fieldErr("segments", "must not be empty"))
		return
	}
	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		response.BadRequest(w, r, "departure_time must be RFC3339", fieldErr("departure_time", err.Error()))
		return
	}
	response.JSON(w, r, http.StatusOK, sunlight.AnalyzeRoute(req.Segments, departure))
}
