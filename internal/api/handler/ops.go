package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/models"
	"github.com/routesense/routesense/internal/api/response"
	"github.com/routesense/routesense/internal/crash"
)

// readyCheckTimeout bounds the subsystem probes so a hung dependency
// cannot stall the readiness endpoint.
const readyCheckTimeout = 5 * time.Second

// OpsHandler serves the health and readiness probes.
type OpsHandler struct {
	log     zerolog.Logger
	started time.Time

	crashes      *crash.Service
	db           *pgxpool.Pool
	providerName string
}

// NewOpsHandler creates the ops handler. db may be nil when the service
// runs without Postgres.
func NewOpsHandler(log zerolog.Logger, crashes *crash.Service, db *pgxpool.Pool, providerName string) *OpsHandler {
	return &OpsHandler{
		log:          log.With().Str("handler", "ops").Logger(),
		started:      time.Now(),
		crashes:      crashes,
		db:           db,
		providerName: providerName,
	}
}

// Health handles GET /v1/ops/health. Liveness only: the process is up.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now().UTC()),
		Details: map[string]interface{}{
			"uptime_seconds": int(time.Since(h.started).Seconds()),
		},
	})
}

// Ready handles GET /v1/ops/ready. It probes the database and the
// crash index and reports per-subsystem status. A failed database makes
// the service not ready (503); a failed crash index only degrades it,
// since route analysis works without crash proximity.
func (h *OpsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	overall := models.HealthStatusOK
	var subsystems []models.SubsystemStatus

	if h.db != nil {
		sub := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		if err := h.db.Ping(ctx); err != nil {
			h.log.Error().Err(err).Msg("readiness: database ping failed")
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
			overall = models.HealthStatusFail
		}
		subsystems = append(subsystems, sub)
	}

	if h.crashes != nil {
		sub := models.SubsystemStatus{Name: "crash-index", Status: models.HealthStatusOK}
		if count, err := h.crashes.RecordCount(ctx); err != nil {
			h.log.Warn().Err(err).Msg("readiness: crash index unavailable")
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
			if overall == models.HealthStatusOK {
				overall = models.HealthStatusDegraded
			}
		} else {
			detail := fmt.Sprintf("%d records indexed", count)
			sub.Detail = &detail
		}
		subsystems = append(subsystems, sub)
	}

	var providers []models.ProviderStatus
	if h.providerName != "" {
		providers = append(providers, models.ProviderStatus{
			Provider: h.providerName,
			Status:   models.HealthStatusOK,
		})
	}

	status := http.StatusOK
	if overall == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, models.SystemStatus{
		Status:     overall,
		Time:       models.Timestamp(time.Now().UTC()),
		Subsystems: subsystems,
		Providers:  providers,
	})
}
