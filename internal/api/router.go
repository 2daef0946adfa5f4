// Package api provides the HTTP API for RouteSense.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api/handler"
	"github.com/routesense/routesense/internal/api/middleware"
	"github.com/routesense/routesense/internal/crash"
	"github.com/routesense/routesense/internal/dashboard"
	"github.com/routesense/routesense/internal/fleet"
	"github.com/routesense/routesense/internal/routeanalysis"
	"github.com/routesense/routesense/internal/routing"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	AnalysisService  *routeanalysis.Service
	RoutingService   *routing.Service
	CrashService     *crash.Service
	FleetService     *fleet.Service
	DashboardService *dashboard.Service

	// DB is used for readiness checks only; may be nil.
	DB *pgxpool.Pool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "routesense-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	providerName := ""
	if cfg.RoutingService != nil {
		providerName = cfg.RoutingService.ProviderName()
	}

	opsHandler := handler.NewOpsHandler(cfg.Logger, cfg.CrashService, cfg.DB, providerName)
	routesHandler := handler.NewRoutesHandler(cfg.Logger, cfg.AnalysisService, cfg.RoutingService)
	analysisHandler := handler.NewAnalysisHandler(cfg.Logger)
	crashesHandler := handler.NewCrashesHandler(cfg.Logger, cfg.CrashService)
	vehiclesHandler := handler.NewVehiclesHandler(cfg.Logger, cfg.FleetService)
	dashboardHandler := handler.NewDashboardHandler(cfg.Logger, cfg.DashboardService)

	// Rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public, unthrottled for orchestrator probes)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.Health)
			r.Get("/ready", opsHandler.Ready)
		})

		// Route analysis - expensive per-request computation
		r.Route("/routes", func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Post("/optimize", routesHandler.Optimize)
			r.Post("/compare", routesHandler.Compare)
			r.Post("/updates", routesHandler.Updates)
			r.Post("/plan", routesHandler.Plan)
		})

		// Standalone scoring endpoints
		r.Route("/analysis", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Post("/safety", analysisHandler.Safety)
			r.Post("/fuel", analysisHandler.Fuel)
			r.Post("/sunlight", analysisHandler.Sunlight)
		})

		// Crash proximity queries hit the spatial index
		r.Route("/crashes", func(r chi.Router) {
			r.Use(expensiveRateLimit)
			r.Post("/near", crashesHandler.Near)
		})

		// Fleet registry
		r.Route("/vehicles", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", vehiclesHandler.List)
			r.Get("/summary", vehiclesHandler.Summary)
			r.Route("/{vehicleID}", func(r chi.Router) {
				r.Get("/", vehiclesHandler.Get)
				r.Put("/", vehiclesHandler.Update)
				r.Get("/location", vehiclesHandler.Location)
				r.Put("/status", vehiclesHandler.UpdateStatus)
			})
		})

		// Dashboard aggregation
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/overview", dashboardHandler.Overview)
			r.Get("/alerts", dashboardHandler.Alerts)
			r.Get("/driver-scores", dashboardHandler.DriverScores)
			r.Get("/performance", dashboardHandler.Performance)
		})
	})

	return r
}
