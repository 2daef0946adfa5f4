package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/response"
	"github.com/routesense/routesense/internal/fleet"
)

// VehiclesHandler serves the fleet registry endpoints.
type VehiclesHandler struct {
	log   zerolog.Logger
	fleet *fleet.Service
}

// NewVehiclesHandler creates the vehicles handler.
func NewVehiclesHandler(log zerolog.Logger, fleetSvc *fleet.Service) *VehiclesHandler {
	return &VehiclesHandler{
		log:   log.With().Str("handler", "vehicles").Logger(),
		fleet: fleetSvc,
	}
}

// List handles GET /v1/vehicles.
func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("listing vehicles failed")
		response.InternalError(w, r, "listing vehicles failed")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// Get handles GET /v1/vehicles/{vehicleID}.
func (h *VehiclesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleID")

	detail, err := h.fleet.GetVehicle(r.Context(), id)
	if err != nil {
		if errors.Is(err, fleet.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle "+id+" not found")
			return
		}
		h.log.Error().Err(err).Str("vehicle_id", id).Msg("loading vehicle failed")
		response.InternalError(w, r, "loading vehicle failed")
		return
	}
	response.JSON(w, r, http.StatusOK, detail)
}

// Location handles GET /v1/vehicles/{vehicleID}/location.
func (h *VehiclesHandler) Location(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleID")

	location, err := h.fleet.VehicleLocation(r.Context(), id)
	if err != nil {
		if errors.Is(err, fleet.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle "+id+" not found")
			return
		}
		h.log.Error().Err(err).Str("vehicle_id", id).Msg("loading vehicle location failed")
		response.InternalError(w, r, "loading vehicle location failed")
		return
	}
	response.JSON(w, r, http.StatusOK, location)
}

// Update handles PUT /v1/vehicles/{vehicleID}. The vehicle ID and
// status are immutable here; status changes go through UpdateStatus.
func (h *VehiclesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleID")

	var update fleet.Update
	if !decodeJSON(w, r, &update) {
		return
	}

	vehicle, err := h.fleet.UpdateVehicle(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, fleet.ErrVehicleNotFound) {
			response.NotFound(w, r, "vehicle "+id+" not found")
			return
		}
		h.log.Error().Err(err).Str("vehicle_id", id).Msg("updating vehicle failed")
		response.InternalError(w, r, "updating vehicle failed")
		return
	}
	response.JSON(w, r, http.StatusOK, vehicle)
}

type statusRequest struct {
	Status fleet.Status `json:"status"`
}

// UpdateStatus handles PUT /v1/vehicles/{vehicleID}/status.
func (h *VehiclesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vehicleID")

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	vehicle, err := h.fleet.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, fleet.ErrVehicleNotFound):
			response.NotFound(w, r, "vehicle "+id+" not found")
		case errors.Is(err, fleet.ErrInvalidStatus):
			response.BadRequest(w, r, err.Error(), fieldErr("status", "must be active, maintenance, or inactive"))
		default:
			h.log.Error().Err(err).Str("vehicle_id", id).Msg("updating vehicle status failed")
			response.InternalError(w, r, "updating vehicle status failed")
		}
		return
	}
	response.JSON(w, r, http.StatusOK, vehicle)
}

// Summary handles GET /v1/vehicles/summary.
func (h *VehiclesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.fleet.FleetSummary(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("fleet summary failed")
		response.InternalError(w, r, "fleet summary failed")
		return
	}
	response.JSON(w, r, http.StatusOK, summary)
}
