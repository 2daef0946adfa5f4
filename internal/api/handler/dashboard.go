package handler

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/response"
	"github.com/routesense/routesense/internal/conditions"
	"github.com/routesense/routesense/internal/dashboard"
)

// DashboardHandler serves the fleet dashboard endpoints. Current
// conditions arrive as query parameters so dashboards can poll with a
// plain GET; omitted parameters fall back to the model defaults.
type DashboardHandler struct {
	log       zerolog.Logger
	dashboard *dashboard.Service
}

// NewDashboardHandler creates the dashboard handler.
func NewDashboardHandler(log zerolog.Logger, dashboardSvc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		log:       log.With().Str("handler", "dashboard").Logger(),
		dashboard: dashboardSvc,
	}
}

// Overview handles GET /v1/dashboard/overview.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	env, ok := environmentFromQuery(w, r)
	if !ok {
		return
	}

	overview, err := h.dashboard.Overview(r.Context(), env)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard overview failed")
		response.InternalError(w, r, "dashboard overview failed")
		return
	}
	response.JSON(w, r, http.StatusOK, overview)
}

// Alerts handles GET /v1/dashboard/alerts.
func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	env, ok := environmentFromQuery(w, r)
	if !ok {
		return
	}

	feed, err := h.dashboard.Alerts(r.Context(), env)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard alerts failed")
		response.InternalError(w, r, "dashboard alerts failed")
		return
	}
	response.JSON(w, r, http.StatusOK, feed)
}

// DriverScores handles GET /v1/dashboard/driver-scores.
func (h *DashboardHandler) DriverScores(w http.ResponseWriter, r *http.Request) {
	scoreboard, err := h.dashboard.DriverScores(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("driver scores failed")
		response.InternalError(w, r, "driver scores failed")
		return
	}
	response.JSON(w, r, http.StatusOK, scoreboard)
}

// Performance handles GET /v1/dashboard/performance?period=day|week|month.
func (h *DashboardHandler) Performance(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	response.JSON(w, r, http.StatusOK, h.dashboard.Performance(period))
}

// environmentFromQuery builds the dashboard environment from query
// parameters. On a malformed numeric parameter it writes a 400 and
// returns ok=false.
func environmentFromQuery(w http.ResponseWriter, r *http.Request) (dashboard.Environment, bool) {
	q := r.URL.Query()
	env := dashboard.Environment{
		Weather: conditions.Weather{
			Conditions:    q.Get("weather"),
			RoadCondition: q.Get("road_condition"),
		},
		Traffic: conditions.Traffic{
			CongestionLevel: q.Get("congestion"),
		},
	}

	if raw := q.Get("precipitation"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(w, r, "precipitation must be a number", fieldErr("precipitation", err.Error()))
			return dashboard.Environment{}, false
		}
		env.Weather.PrecipitationIntensity = v
	}
	if raw := q.Get("visibility_miles"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.BadRequest(w, r, "visibility_miles must be a number", fieldErr("visibility_miles", err.Error()))
			return dashboard.Environment{}, false
		}
		env.Weather.VisibilityMiles = &v
	}
	if raw := q.Get("incidents"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, r, "incidents must be an integer", fieldErr("incidents", err.Error()))
			return dashboard.Environment{}, false
		}
		env.Traffic.Incidents = v
	}

	return env, true
}
