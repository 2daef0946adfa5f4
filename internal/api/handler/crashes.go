package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/response"
	"github.com/routesense/routesense/internal/crash"
)

// Default crash proximity query parameters, applied when the request
// leaves them unset.
const (
	defaultCrashThresholdMeters = 100.0
	defaultCrashMaxPerSegment   = 25
)

// CrashesHandler serves historical crash proximity queries.
type CrashesHandler struct {
	log     zerolog.Logger
	crashes *crash.Service
}

// NewCrashesHandler creates the crashes handler. The service may be nil
// when no crash dataset is configured; the endpoint then responds 503.
func NewCrashesHandler(log zerolog.Logger, crashes *crash.Service) *CrashesHandler {
	return &CrashesHandler{
		log:     log.With().Str("handler", "crashes").Logger(),
		crashes: crashes,
	}
}

type crashesNearRequest struct {
	Segments []crash.Segment `json:"segments"`

	// ThresholdMeters defaults to 100. MaxPerSegment defaults to 25; a
	// negative value disables truncation.
	ThresholdMeters float64 `json:"threshold_meters,omitempty"`
	MaxPerSegment   *int    `json:"max_per_segment,omitempty"`
}

// Near handles POST /v1/crashes/near. It returns historical crashes
// within the threshold distance of each route segment.
func (h *CrashesHandler) Near(w http.ResponseWriter, r *http.Request) {
	if h.crashes == nil {
		response.ServiceUnavailable(w, r, "no crash dataset is configured")
		return
	}

	var req crashesNearRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Segments) == 0 {
		response.BadRequest(w, r, "at least one segment is required", fieldErr("segments", "must not be empty"))
		return
	}
	if req.ThresholdMeters < 0 {
		response.BadRequest(w, r, "threshold must not be negative", fieldErr("threshold_meters", "must be zero or positive"))
		return
	}

	threshold := req.ThresholdMeters
	if threshold == 0 {
		threshold = defaultCrashThresholdMeters
	}
	maxPerSegment := defaultCrashMaxPerSegment
	if req.MaxPerSegment != nil {
		maxPerSegment = *req.MaxPerSegment
	}

	result, err := h.crashes.CrashesNear(r.Context(), req.Segments, threshold, maxPerSegment)
	if err != nil {
		h.log.Error().Err(err).Msg("crash proximity query failed")
		response.ServiceUnavailable(w, r, "crash index is unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}
