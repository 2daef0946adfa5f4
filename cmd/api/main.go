// Package main provides the entrypoint for the RouteSense API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/api"
	"github.com/routesense/routesense/internal/api/middleware"
	"github.com/routesense/routesense/internal/crash"
	"github.com/routesense/routesense/internal/dashboard"
	"github.com/routesense/routesense/internal/database"
	"github.com/routesense/routesense/internal/fleet"
	"github.com/routesense/routesense/internal/provider/resilience"
	"github.com/routesense/routesense/internal/routeanalysis"
	"github.com/routesense/routesense/internal/routing"
	"github.com/routesense/routesense/internal/routing/fixture"
	"github.com/routesense/routesense/internal/routing/tomtom"
	"github.com/routesense/routesense/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "routesense-api"

	// Load a local .env in development; missing file is fine.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RouteSense API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Fleet storage: Postgres when configured, in-memory otherwise.
	var pool *pgxpool.Pool
	var fleetRepo fleet.Repository
	if os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		fleetRepo = fleet.NewPostgresRepository(pool)
	} else {
		log.Warn().Msg("DB_HOST not set - using in-memory vehicle store")
		fleetRepo = fleet.NewInMemoryRepository()
	}

	fleetService := fleet.NewService(fleet.ServiceConfig{
		Repository: fleetRepo,
		Logger:     log,
	})
	log.Info().Msg("fleet service initialized")

	// Crash proximity index
	var crashService *crash.Service
	if datasetPath := os.Getenv("CRASH_DATASET_PATH"); datasetPath != "" {
		crashService = crash.NewService(crash.ServiceConfig{
			DatasetPath: datasetPath,
			Logger:      log,
		})
		if os.Getenv("CRASH_WARM_ON_START") == "true" {
			if warmErr := crashService.Warm(ctx); warmErr != nil {
				log.Error().Err(warmErr).Msg("failed to warm crash index")
			}
		}
		log.Info().Str("dataset", datasetPath).Msg("crash proximity service initialized")
	} else {
		log.Warn().Msg("CRASH_DATASET_PATH not set - crash proximity disabled")
	}

	// Routing provider: live TomTom when a key is present, otherwise a
	// recorded fixture when one is configured.
	registry := resilience.NewRegistry()
	var routingProvider routing.Provider
	if apiKey := os.Getenv("TOMTOM_API_KEY"); apiKey != "" {
		routingProvider = tomtom.NewClient(tomtom.ClientConfig{
			APIKey:   apiKey,
			Registry: registry,
			Logger:   log,
		})
		log.Info().Msg("TomTom routing provider initialized")
	} else if fixturePath := os.Getenv("ROUTE_FIXTURE_PATH"); fixturePath != "" {
		routingProvider = fixture.NewProvider(fixture.ProviderConfig{
			Path:   fixturePath,
			Logger: log,
		})
		log.Info().Str("fixture", fixturePath).Msg("fixture routing provider initialized")
	} else {
		log.Warn().Msg("no routing provider configured - route planning disabled")
	}

	var routingService *routing.Service
	if routingProvider != nil {
		routingCfg := routing.ServiceConfig{
			Provider: routingProvider,
			Logger:   log,
		}
		if providerMetrics, pmErr := middleware.NewProviderMetrics(routingProvider.Name()); pmErr != nil {
			log.Error().Err(pmErr).Msg("failed to initialize provider metrics")
		} else {
			routingCfg.Metrics = providerMetrics
		}
		routingService = routing.NewService(routingCfg)
	}

	analysisService := routeanalysis.NewService(routeanalysis.ServiceConfig{
		Crash:  crashService,
		Logger: log,
	})
	log.Info().Msg("route analysis service initialized")

	dashboardService := dashboard.NewService(dashboard.ServiceConfig{
		Fleet:  fleetService,
		Logger: log,
	})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		AnalysisService:  analysisService,
		RoutingService:   routingService,
		CrashService:     crashService,
		FleetService:     fleetService,
		DashboardService: dashboardService,
		DB:               pool,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
