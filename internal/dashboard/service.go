package dashboard

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/fleet"
	"github.com/routesense/routesense/internal/fuel"
	"github.com/routesense/routesense/internal/safety"
)

// safetyAlertThreshold is the route safety score below which a vehicle
// lands on the overview's alert list.
const safetyAlertThreshold = 60

// ServiceConfig holds configuration for the dashboard service.
type ServiceConfig struct {
	// Fleet provides vehicle profiles and statuses. Required.
	Fleet *fleet.Service

	// Logger is used for structured logging.
	Logger zerolog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Service computes the dashboard views.
type Service struct {
	fleet  *fleet.Service
	logger zerolog.Logger
	clock  func() time.Time
}

// NewService creates a new dashboard service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		fleet:  cfg.Fleet,
		logger: cfg.Logger.With().Str("component", "dashboard").Logger(),
		clock:  cfg.Clock,
	}
}

// Overview assembles the fleet-wide dashboard for the given conditions.
// Per-vehicle routes are mock data from a deterministic generator keyed by
// vehicle ID, standing in for a dispatch feed.
func (s *Service) Overview(ctx context.Context, env Environment) (*Overview, error) {
	vehicles, err := s.fleet.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fleet: %w", err)
	}

	var (
		fleetVehicles []fuel.FleetVehicle
		routes        []fuel.RouteConditions
		active        int
	)
	for _, vehicle := range vehicles {
		isActive := vehicle.Status == fleet.StatusActive
		if isActive {
			active++
			routes = append(routes, mockRoute(vehicle.ID, env))
		}
		fleetVehicles = append(fleetVehicles, fuel.FleetVehicle{
			ID:     vehicle.ID,
			Active: isActive,
			Profile: fuel.VehicleProfile{
				MPGCity:             vehicle.MPGCity,
				MPGHighway:          vehicle.MPGHighway,
				CargoWeightLbs:      vehicle.CargoWeightLbs,
				FuelCapacityGallons: vehicle.FuelCapacityGallons,
			},
		})
	}

	metrics := fuel.FleetMetrics(fleetVehicles, routes)

	var (
		totalSafety  float64
		safetyAlerts []SafetyAlert
	)
	for _, route := range routes {
		assessment := safety.ScoreRoute(safety.RouteInput{
			RouteID: route.RouteID,
			Weather: env.Weather,
			Traffic: env.Traffic,
		})
		totalSafety += assessment.SafetyScore

		if assessment.SafetyScore < safetyAlertThreshold {
			safetyAlerts = append(safetyAlerts, SafetyAlert{
				VehicleID:   route.VehicleID,
				SafetyScore: assessment.SafetyScore,
				AlertLevel:  assessment.AlertLevel,
			})
		}
	}

	var avgSafety float64
	if len(routes) > 0 {
		avgSafety = totalSafety / float64(len(routes))
	}

	vehiclesWithAlerts := len(safetyAlerts)
	if len(safetyAlerts) > 5 {
		safetyAlerts = safetyAlerts[:5]
	}

	return &Overview{
		Timestamp: s.clock(),
		Fleet: FleetOverview{
			TotalVehicles:     len(vehicles),
			ActiveVehicles:    active,
			VehiclesInTransit: active,
			VehiclesIdle:      0,
		},
		Fuel: FuelMetrics{
			TotalFuelGallonsToday: metrics.TotalFuelGallons,
			TotalFuelCostToday:    metrics.TotalFuelCostUSD,
			AverageMPG:            metrics.AverageMPG,
			CostPerMileUSD:        metrics.CostPerMileUSD,
			TotalCO2EmissionsKg:   metrics.TotalCO2Kg,
		},
		Safety: SafetyMetrics{
			FleetSafetyScore:   round1(avgSafety),
			SafetyLevel:        safety.LevelFor(avgSafety),
			VehiclesWithAlerts: vehiclesWithAlerts,
			SafetyAlerts:       safetyAlerts,
		},
		Environment: EnvironmentalConditions{
			Weather:                env.Weather.Condition(),
			VisibilityMiles:        env.Weather.VisibilityMiles,
			PrecipitationIntensity: env.Weather.PrecipitationIntensity,
			RoadConditions:         env.Weather.RoadCondition,
		},
		Traffic: TrafficOverview{
			AverageCongestion:   env.Traffic.Congestion(),
			TotalIncidents:      env.Traffic.Incidents,
			AverageDelayMinutes: delayForCongestion(env.Traffic.Congestion()),
		},
	}, nil
}

// Alerts builds the active alert feed from current conditions and the
// fleet's maintenance outlook, most severe first.
func (s *Service) Alerts(ctx context.Context, env Environment) (*AlertFeed, error) {
	now := s.clock()
	var alerts []Alert

	if env.Weather.PrecipitationIntensity > 0.5 {
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Type:      "weather",
			Severity:  "high",
			Title:     "Heavy Rain Warning",
			Message:   "Heavy rainfall detected - all drivers should reduce speed",
			Timestamp: now,
		})
	}

	if env.Traffic.Incidents > 1 {
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Type:      "traffic",
			Severity:  "medium",
			Title:     "Multiple Traffic Incidents",
			Message:   fmt.Sprintf("%d incidents on major routes", env.Traffic.Incidents),
			Timestamp: now,
		})
	}

	for _, zone := range env.HazardZones {
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Type:      "hazard",
			Severity:  zone.Severity,
			Title:     fmt.Sprintf("Hazard Zone: %s", zone.HazardType),
			Message:   zone.Description,
			Location:  zone.Location,
			Timestamp: now,
		})
	}

	vehicles, err := s.fleet.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fleet: %w", err)
	}
	for _, vehicle := range vehicles {
		if vehicle.Maintenance.Status != "Service Soon" {
			continue
		}
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Type:      "vehicle",
			Severity:  "low",
			Title:     "Maintenance Reminder",
			Message:   fmt.Sprintf("%s due for service in %d miles", vehicle.ID, vehicle.Maintenance.NextServiceMiles),
			VehicleID: vehicle.ID,
			Timestamp: now,
		})
	}

	severityOrder := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(alerts, func(i, j int) bool {
		oi, ok := severityOrder[alerts[i].Severity]
		if !ok {
			oi = 3
		}
		oj, ok := severityOrder[alerts[j].Severity]
		if !ok {
			oj = 3
		}
		return oi < oj
	})

	feed := &AlertFeed{
		TotalAlerts: len(alerts),
		Alerts:      alerts,
	}
	for _, alert := range alerts {
		switch alert.Severity {
		case "high":
			feed.Summary.HighSeverity++
		case "medium":
			feed.Summary.MediumSeverity++
		case "low":
			feed.Summary.LowSeverity++
		}
	}

	return feed, nil
}

// DriverScores ranks the drivers of active vehicles. Scores are mock data
// from a deterministic generator keyed by driver ID, standing in for a
// telematics scoring pipeline.
func (s *Service) DriverScores(ctx context.Context) (*DriverScoreboard, error) {
	vehicles, err := s.fleet.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading fleet: %w", err)
	}

	var scores []DriverScore
	for _, vehicle := range vehicles {
		if vehicle.Status != fleet.StatusActive {
			continue
		}

		driverID := "Unknown"
		if vehicle.DriverID != nil {
			driverID = *vehicle.DriverID
		}

		rng := mockStream(driverID, "driver")
		score := DriverScore{
			DriverID:            driverID,
			VehicleID:           vehicle.ID,
			SafetyScore:         75 + rng.Intn(20),
			FuelEfficiencyScore: 70 + rng.Intn(25),
			OnTimePercentage:    85 + rng.Intn(15),
			TotalMilesToday:     125 + rng.Intn(100),
			IncidentsLast30Days: rng.Intn(3),
		}
		score.OverallScore = round1(
			float64(score.SafetyScore)*0.4 +
				float64(score.FuelEfficiencyScore)*0.3 +
				float64(score.OnTimePercentage)*0.3)
		scores = append(scores, score)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].OverallScore > scores[j].OverallScore
	})
	for i := range scores {
		scores[i].Ranking = i + 1
	}

	board := &DriverScoreboard{
		TotalDrivers: len(scores),
		DriverScores: scores,
	}
	if len(scores) > 3 {
		board.TopPerformers = scores[:3]
	} else {
		board.TopPerformers = scores
	}
	for _, score := range scores {
		if score.SafetyScore < 80 {
			board.NeedsCoaching = append(board.NeedsCoaching, score)
		}
	}

	return board, nil
}

// Performance returns the metric trend view for the period ("day", "week"
// or "month"; anything else means week). The historical series is mock
// data seeded by period and date.
func (s *Service) Performance(period string) *Performance {
	points := 7
	switch period {
	case "day":
		points = 24
	case "month":
		points = 30
	default:
		period = "week"
	}

	day := s.clock().Format("2006-01-02")
	fuelSeries := mockSeries(mockStream("performance", "fuel", period, day), points, 15, 5)
	safetySeries := mockSeries(mockStream("performance", "safety", period, day), points, 75, 15)
	costSeries := mockSeries(mockStream("performance", "cost", period, day), points, 250, 100)

	var totalCost float64
	for _, v := range costSeries {
		totalCost += v
	}

	return &Performance{
		Period:            period,
		FuelEfficiency:    seriesStats(fuelSeries),
		SafetyPerformance: seriesStats(safetySeries),
		CostAnalysis: CostAnalysis{
			TotalFuelCostUSD:    round2(totalCost),
			AverageDailyCostUSD: round2(totalCost / float64(points)),
			Trend:               Trend(costSeries),
			Historical:          costSeries,
		},
		Recommendations: performanceRecommendations(Trend(fuelSeries), Trend(safetySeries), Trend(costSeries)),
	}
}

// Trend compares the mean of the second half of the series against the
// first: a move beyond 5% either way is a trend.
func Trend(data []float64) TrendDirection {
	if len(data) < 2 {
		return TrendStable
	}

	half := len(data) / 2
	first := mean(data[:half])
	second := mean(data[half:])
	if first == 0 {
		return TrendStable
	}

	change := (second - first) / first * 100
	switch {
	case change > 5:
		return TrendImproving
	case change < -5:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func seriesStats(series []float64) SeriesStats {
	half := len(series) / 2
	previous := mean(series[:half])
	current := mean(series[half:])

	var improvement float64
	if previous != 0 {
		improvement = (current - previous) / previous * 100
	}

	return SeriesStats{
		Current:        round1(current),
		Previous:       round1(previous),
		Trend:          Trend(series),
		ImprovementPct: round1(improvement),
		Historical:     series,
	}
}

func performanceRecommendations(fuelTrend, safetyTrend, costTrend TrendDirection) []string {
	var out []string
	if fuelTrend == TrendDeclining {
		out = append(out, "Fleet fuel efficiency is declining - review vehicle maintenance schedules")
	}
	if safetyTrend == TrendDeclining {
		out = append(out, "Fleet safety scores are declining - consider refresher driver coaching")
	}
	if costTrend == TrendImproving {
		out = append(out, "Fuel costs are rising - evaluate route consolidation opportunities")
	}
	if len(out) == 0 {
		out = append(out, "Fleet performance is holding steady across all tracked metrics")
	}
	return out
}

// mockRoute generates today's route for a vehicle from a deterministic
// stream keyed by the vehicle ID. Mock data standing in for dispatch.
func mockRoute(vehicleID string, env Environment) fuel.RouteConditions {
	rng := mockStream(vehicleID, "route")
	cityPct := float64(30 + rng.Intn(40))
	avgSpeed := float64(45 + rng.Intn(20))

	return fuel.RouteConditions{
		RouteID:            "route_" + vehicleID,
		VehicleID:          vehicleID,
		DistanceMiles:      float64(45 + rng.Intn(20)),
		DurationMinutes:    float64(50 + rng.Intn(30)),
		CityDrivingPercent: &cityPct,
		AverageSpeedMPH:    &avgSpeed,
		Weather:            env.Weather,
		Traffic:            env.Traffic,
	}
}

func mockSeries(rng *rand.Rand, points int, base, spread float64) []float64 {
	series := make([]float64, points)
	for i := range series {
		series[i] = round2(base + rng.Float64()*spread)
	}
	return series
}

func mockStream(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		io.WriteString(h, p)
		io.WriteString(h, "\x00")
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// delayForCongestion estimates the average route delay from the
// congestion level.
func delayForCongestion(level string) int {
	switch level {
	case "light":
		return 5
	case "moderate":
		return 12
	case "heavy":
		return 25
	case "standstill":
		return 40
	default:
		return 12
	}
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
