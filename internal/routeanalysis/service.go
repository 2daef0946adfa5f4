package routeanalysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/routesense/routesense/internal/crash"
	"github.com/routesense/routesense/internal/fuel"
	"github.com/routesense/routesense/internal/safety"
	"github.com/routesense/routesense/internal/sunlight"
	"github.com/routesense/routesense/pkg/geo"
)

// Default crash proximity query parameters.
const (
	DefaultCrashThresholdMeters = 100.0
	DefaultCrashMaxPerSegment   = 25
)

// ServiceConfig holds configuration for the route analysis service.
type ServiceConfig struct {
	// Crash, when set, adds crash proximity to analyses of routes that
	// carry geometry.
	Crash *crash.Service

	// CrashThresholdMeters is the proximity radius. Defaults to 100.
	CrashThresholdMeters float64

	// CrashMaxPerSegment caps crashes returned per segment. Defaults to 25.
	CrashMaxPerSegment int

	// Logger is used for structured logging.
	Logger zerolog.Logger
}

// Service analyzes and ranks candidate routes.
type Service struct {
	crashes        *crash.Service
	crashThreshold float64
	crashMax       int
	logger         zerolog.Logger
}

// NewService creates a new route analysis service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CrashThresholdMeters <= 0 {
		cfg.CrashThresholdMeters = DefaultCrashThresholdMeters
	}
	if cfg.CrashMaxPerSegment == 0 {
		cfg.CrashMaxPerSegment = DefaultCrashMaxPerSegment
	}
	return &Service{
		crashes:        cfg.Crash,
		crashThreshold: cfg.CrashThresholdMeters,
		crashMax:       cfg.CrashMaxPerSegment,
		logger:         cfg.Logger.With().Str("component", "routeanalysis").Logger(),
	}
}

// EfficiencyScore reduces the per-factor efficiency impacts to a single
// 0-100 score: 100 minus the summed absolute impacts, floored at 0.
func EfficiencyScore(f fuel.Factors) float64 {
	score := 100.0
	for _, impact := range []float64{
		f.WeatherImpactPct,
		f.TrafficImpactPct,
		f.CargoImpactPct,
		f.SpeedImpactPct,
		f.ElevationImpactPct,
	} {
		score -= math.Abs(impact)
	}
	return math.Max(0, score)
}

// CombinedScore blends a safety score and an efficiency score by priority:
// safety weighting 0.7/0.3, fuel_efficiency 0.3/0.7, anything else 0.5/0.5.
func CombinedScore(safetyScore, efficiencyScore float64, priority Priority) float64 {
	switch priority {
	case PrioritySafety:
		return safetyScore*0.7 + efficiencyScore*0.3
	case PriorityFuelEfficiency:
		return safetyScore*0.3 + efficiencyScore*0.7
	default:
		return safetyScore*0.5 + efficiencyScore*0.5
	}
}

// OptimizeRequest asks for the best route among candidates for a vehicle.
type OptimizeRequest struct {
	VehicleID string              `json:"vehicle_id,omitempty"`
	Vehicle   fuel.VehicleProfile `json:"vehicle"`
	Priority  Priority            `json:"priority,omitempty"`
	Routes    []CandidateRoute    `json:"routes"`
}

// OptimizeRoute analyzes every candidate and recommends the one with the
// highest combined score for the requested priority.
func (s *Service) OptimizeRoute(ctx context.Context, req OptimizeRequest) (*OptimizeResult, error) {
	if len(req.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	analyses := make([]Analysis, 0, len(req.Routes))
	for i, route := range req.Routes {
		analysis, err := s.analyze(ctx, route, i, req.Vehicle, req.Priority)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CombinedScore > analyses[j].CombinedScore
	})

	best := analyses[0]
	result := &OptimizeResult{
		Recommendation: Recommendation{
			RouteID:              best.RouteID,
			Route:                best,
			SafetyScore:          best.Safety.SafetyScore,
			FuelEfficiencyScore:  best.EfficiencyScore,
			EstimatedFuelGallons: best.Fuel.FuelGallons,
			EstimatedTimeMinutes: best.DurationMinutes,
			RiskFactors:          riskFactors(best),
			Reasoning:            reasoning(best, req.Priority),
		},
		Alternatives: analyses,
		Factors: OptimizationFactors{
			WeatherImpact: req.Routes[0].Weather.Condition(),
			TrafficLevel:  req.Routes[0].Traffic.Congestion(),
			PriorityMode:  normalizePriority(req.Priority),
		},
	}

	s.logger.Info().
		Str("route_id", best.RouteID).
		Str("priority", string(normalizePriority(req.Priority))).
		Float64("combined_score", best.CombinedScore).
		Int("candidates", len(analyses)).
		Msg("route recommendation computed")

	return result, nil
}

// analyze runs every assessment for a single candidate route.
func (s *Service) analyze(ctx context.Context, route CandidateRoute, index int, vehicle fuel.VehicleProfile, priority Priority) (Analysis, error) {
	assessment := safety.ScoreRoute(route.safetyInput())
	estimate := fuel.Consumption(route.fuelConditions(), vehicle)
	efficiency := EfficiencyScore(estimate.Factors)

	analysis := Analysis{
		RouteID:         route.RouteID,
		Name:            routeName(route, index),
		DistanceMiles:   route.DistanceMiles,
		DurationMinutes: route.DurationMinutes,
		Safety:          assessment,
		Fuel:            estimate,
		EfficiencyScore: round1(efficiency),
		CombinedScore:   round1(CombinedScore(assessment.SafetyScore, efficiency, priority)),
	}

	if len(route.SunSegments) > 0 {
		if departure, err := time.Parse(time.RFC3339, route.DepartureTime); err == nil {
			analysis.Sunlight = sunlight.AnalyzeRoute(route.SunSegments, departure)
		}
	}

	if s.crashes != nil && len(route.Geometry) > 0 {
		result, err := s.crashes.CrashesNear(ctx, route.Geometry, s.crashThreshold, s.crashMax)
		if err != nil {
			return Analysis{}, fmt.Errorf("crash proximity for route %s: %w", route.RouteID, err)
		}
		analysis.Crashes = &result
	}

	return analysis, nil
}

// CompareRoutes ranks candidates on safety, fuel efficiency and the
// evenly blended combination of the two.
func (s *Service) CompareRoutes(ctx context.Context, routes []CandidateRoute, vehicle fuel.VehicleProfile) (*Comparison, error) {
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}

	safetyInputs := make([]safety.RouteInput, 0, len(routes))
	fuelRoutes := make([]fuel.RouteConditions, 0, len(routes))
	for _, route := range routes {
		safetyInputs = append(safetyInputs, route.safetyInput())
		fuelRoutes = append(fuelRoutes, route.fuelConditions())
	}

	safetyRankings := safety.CompareRoutes(safetyInputs)
	fuelRankings := fuel.CompareRoutes(fuelRoutes, vehicle)

	entries := make([]ComparisonEntry, 0, len(routes))
	for i, route := range routes {
		entry := ComparisonEntry{
			RouteID:         route.RouteID,
			RouteName:       routeName(route, i),
			DistanceMiles:   route.DistanceMiles,
			DurationMinutes: route.DurationMinutes,
		}

		var efficiencyScore float64
		for _, ranking := range safetyRankings {
			if ranking.RouteID == route.RouteID {
				entry.SafetyScore = ranking.SafetyScore
				entry.SafetyRank = ranking.SafetyRank
				break
			}
		}
		for _, ranking := range fuelRankings {
			if ranking.RouteID == route.RouteID {
				entry.FuelGallons = ranking.FuelGallons
				entry.FuelCostUSD = ranking.FuelCostUSD
				entry.EfficiencyRank = ranking.EfficiencyRank
				efficiencyScore = ranking.EfficiencyScore
				break
			}
		}

		entry.CombinedScore = round1(entry.SafetyScore*0.5 + efficiencyScore*0.5)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CombinedScore > entries[j].CombinedScore
	})

	comparison := &Comparison{Entries: entries}
	if len(safetyRankings) > 0 {
		comparison.BestForSafety = &safetyRankings[0]
	}
	if len(fuelRankings) > 0 {
		comparison.BestForFuel = &fuelRankings[0]
	}
	if len(entries) > 0 {
		best := entries[0]
		comparison.BestOverall = &best
	}

	return comparison, nil
}

// RealTimeUpdate reassesses an active route under current conditions.
func (s *Service) RealTimeUpdate(ctx context.Context, req UpdateRequest) (*Update, error) {
	assessment := safety.ScoreRoute(safety.RouteInput{
		RouteID:     req.RouteID,
		Weather:     req.Weather,
		Traffic:     req.Traffic,
		Road:        req.Road,
		HazardZones: req.HazardZones,
	})

	hazards := make([]UpcomingHazard, 0, len(req.HazardZones))
	for _, zone := range req.HazardZones {
		hazard := UpcomingHazard{
			Type:        zone.HazardType,
			Severity:    zone.Severity,
			Description: zone.Description,
		}
		if req.CurrentLocation != nil && zone.Location != nil {
			miles := round1(geo.HaversineMeters(*req.CurrentLocation, *zone.Location) / 1609.344)
			hazard.DistanceMiles = &miles
		}
		hazards = append(hazards, hazard)
	}

	var alerts []Alert
	if assessment.SafetyScore < 50 {
		alerts = append(alerts, Alert{
			Type:     "safety",
			Severity: "high",
			Message:  "Route safety has degraded - consider alternative route",
		})
	}
	for _, hazard := range hazards {
		if hazard.Severity == "high" {
			alerts = append(alerts, Alert{
				Type:     "hazard",
				Severity: "high",
				Message:  fmt.Sprintf("Warning: %s ahead", hazard.Description),
			})
		}
	}

	recommendations := assessment.Recommendations
	if len(recommendations) > 3 {
		recommendations = recommendations[:3]
	}

	update := &Update{
		RouteID:            req.RouteID,
		CurrentSafetyScore: assessment.SafetyScore,
		Conditions: CurrentConditions{
			Weather:    req.Weather.Condition(),
			Visibility: req.Weather.VisibilityMiles,
			Traffic:    req.Traffic.Congestion(),
		},
		UpcomingHazards: hazards,
		Alerts:          alerts,
		Recommendations: recommendations,
	}

	if s.crashes != nil && len(req.Geometry) > 0 {
		result, err := s.crashes.CrashesNear(ctx, req.Geometry, s.crashThreshold, s.crashMax)
		if err != nil {
			return nil, fmt.Errorf("crash proximity for route %s: %w", req.RouteID, err)
		}
		update.Crashes = &result
	}

	return update, nil
}

func normalizePriority(p Priority) Priority {
	switch p {
	case PrioritySafety, PriorityFuelEfficiency:
		return p
	default:
		return PriorityBalanced
	}
}

func routeName(route CandidateRoute, index int) string {
	if route.Name != "" {
		return route.Name
	}
	return fmt.Sprintf("Route %d", index+1)
}

// riskFactors distills the safety breakdown into the component risks
// worth flagging to a dispatcher.
func riskFactors(a Analysis) []string {
	var out []string

	breakdown := a.Safety.RiskBreakdown
	if breakdown.WeatherRisk > 50 {
		out = append(out, "elevated weather risk")
	}
	if breakdown.TrafficRisk > 50 {
		out = append(out, "heavy traffic along the route")
	}
	if breakdown.RoadConditionRisk > 50 {
		out = append(out, "degraded road surface conditions")
	}
	if breakdown.VisibilityRisk > 50 {
		out = append(out, "reduced visibility")
	}
	if breakdown.TimeOfDayRisk > 50 {
		out = append(out, "high-risk departure hour")
	}
	if a.Crashes != nil {
		total := 0
		for _, leg := range a.Crashes.Legs {
			total += leg.TotalCloseCrashes
		}
		if total > 0 {
			out = append(out, fmt.Sprintf("%d historical crashes within %gm of the route", total, a.Crashes.ThresholdMeters))
		}
	}

	return out
}

func reasoning(best Analysis, priority Priority) string {
	return fmt.Sprintf(
		"%s ranks first under the %s priority with a combined score of %.1f (safety %.1f, fuel efficiency %.1f).",
		best.Name, normalizePriority(priority), best.CombinedScore,
		best.Safety.SafetyScore, best.EfficiencyScore,
	)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
