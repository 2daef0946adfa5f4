// Package routeanalysis combines the safety, fuel, sunlight and crash
// proximity assessments of candidate routes into ranked recommendations.
package routeanalysis

import (
	"errors"

	"github.com/routesense/routesense/internal/conditions"
	"github.com/routesense/routesense/internal/crash"
	"github.com/routesense/routesense/internal/fuel"
	"github.com/routesense/routesense/internal/safety"
	"github.com/routesense/routesense/internal/sunlight"
	"github.com/routesense/routesense/pkg/geo"
)

// ErrNoRoutes is returned when a comparison is requested with no
// candidate routes.
var ErrNoRoutes = errors.New("no routes provided for comparison")

// Priority selects how safety and fuel efficiency are weighted in the
// combined score.
type Priority string

const (
	PriorityBalanced       Priority = "balanced"
	PrioritySafety         Priority = "safety"
	PriorityFuelEfficiency Priority = "fuel_efficiency"
)

// CandidateRoute is one route under consideration, carrying both its
// geometry-derived stats and the conditions observed along it.
type CandidateRoute struct {
	RouteID string `json:"route_id"`
	Name    string `json:"name,omitempty"`

	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`

	CityDrivingPercent *float64 `json:"city_driving_percentage,omitempty"`
	AverageSpeedMPH    *float64 `json:"average_speed_mph,omitempty"`
	ElevationGainFt    float64  `json:"elevation_gain_ft,omitempty"`
	FuelPricePerGallon float64  `json:"fuel_price_per_gallon,omitempty"`

	Weather         conditions.Weather         `json:"weather,omitempty"`
	Traffic         conditions.Traffic         `json:"traffic,omitempty"`
	Road            conditions.Road            `json:"road_conditions,omitempty"`
	IncidentHistory conditions.IncidentHistory `json:"incident_history,omitempty"`
	HazardZones     []conditions.HazardZone    `json:"hazard_zones,omitempty"`

	// DepartureTime is an ISO-8601 timestamp. It drives the time-of-day
	// safety risk and, when parseable, the sunlight analysis.
	DepartureTime string `json:"departure_time,omitempty"`

	// SunSegments, when present, enable the sun-glare analysis.
	SunSegments []sunlight.Segment `json:"sun_segments,omitempty"`

	// Geometry is the route polyline as [lon, lat] pairs, grouped into
	// segments for crash proximity queries.
	Geometry []crash.Segment `json:"geometry,omitempty"`
}

func (c CandidateRoute) safetyInput() safety.RouteInput {
	return safety.RouteInput{
		RouteID:         c.RouteID,
		Name:            c.Name,
		Weather:         c.Weather,
		Traffic:         c.Traffic,
		Road:            c.Road,
		IncidentHistory: c.IncidentHistory,
		DepartureTime:   c.DepartureTime,
		HazardZones:     c.HazardZones,
	}
}

func (c CandidateRoute) fuelConditions() fuel.RouteConditions {
	return fuel.RouteConditions{
		RouteID:            c.RouteID,
		Name:               c.Name,
		DistanceMiles:      c.DistanceMiles,
		DurationMinutes:    c.DurationMinutes,
		CityDrivingPercent: c.CityDrivingPercent,
		AverageSpeedMPH:    c.AverageSpeedMPH,
		ElevationGainFt:    c.ElevationGainFt,
		FuelPricePerGallon: c.FuelPricePerGallon,
		Weather:            c.Weather,
		Traffic:            c.Traffic,
	}
}

// Analysis is the full assessment of one candidate route.
type Analysis struct {
	RouteID         string  `json:"route_id"`
	Name            string  `json:"name"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes float64 `json:"duration_minutes"`

	Safety   safety.Assessment       `json:"safety_analysis"`
	Fuel     *fuel.Estimate          `json:"fuel_analysis"`
	Sunlight *sunlight.RouteAnalysis `json:"sunlight_analysis,omitempty"`
	Crashes  *crash.Result           `json:"crash_proximity,omitempty"`

	// EfficiencyScore is 100 minus the summed absolute efficiency factor
	// impacts, floored at 0.
	EfficiencyScore float64 `json:"efficiency_score"`

	// CombinedScore weights safety and efficiency by the request priority.
	CombinedScore float64 `json:"combined_score"`
}

// Recommendation is the winning route of an optimization pass.
type Recommendation struct {
	RouteID              string   `json:"route_id"`
	Route                Analysis `json:"route_details"`
	SafetyScore          float64  `json:"safety_score"`
	FuelEfficiencyScore  float64  `json:"fuel_efficiency_score"`
	EstimatedFuelGallons float64  `json:"estimated_fuel_gallons"`
	EstimatedTimeMinutes float64  `json:"estimated_time_minutes"`
	RiskFactors          []string `json:"risk_factors"`
	Reasoning            string   `json:"reasoning"`
}

// OptimizationFactors echoes the inputs that shaped the recommendation.
type OptimizationFactors struct {
	WeatherImpact string   `json:"weather_impact"`
	TrafficLevel  string   `json:"traffic_level"`
	PriorityMode  Priority `json:"priority_mode"`
}

// OptimizeResult is the outcome of analyzing all candidate routes.
type OptimizeResult struct {
	Recommendation Recommendation      `json:"recommendation"`
	Alternatives   []Analysis          `json:"alternatives"`
	Factors        OptimizationFactors `json:"optimization_factors"`
}

// ComparisonEntry is one route's row in a multi-route comparison.
type ComparisonEntry struct {
	RouteID         string  `json:"route_id"`
	RouteName       string  `json:"route_name"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes float64 `json:"duration_minutes"`
	SafetyScore     float64 `json:"safety_score"`
	SafetyRank      int     `json:"safety_rank"`
	FuelGallons     float64 `json:"fuel_gallons"`
	FuelCostUSD     float64 `json:"fuel_cost"`
	EfficiencyRank  int     `json:"efficiency_rank"`
	CombinedScore   float64 `json:"combined_score"`
}

// Comparison ranks routes on safety, fuel and the blended score.
type Comparison struct {
	Entries       []ComparisonEntry     `json:"comparison"`
	BestForSafety *safety.Ranking       `json:"best_for_safety,omitempty"`
	BestForFuel   *fuel.RouteComparison `json:"best_for_fuel,omitempty"`
	BestOverall   *ComparisonEntry      `json:"best_overall,omitempty"`
}

// UpdateRequest asks for a mid-trip reassessment of an active route.
type UpdateRequest struct {
	RouteID         string                  `json:"route_id"`
	CurrentLocation *geo.Point              `json:"current_location,omitempty"`
	Weather         conditions.Weather      `json:"weather,omitempty"`
	Traffic         conditions.Traffic      `json:"traffic,omitempty"`
	Road            conditions.Road         `json:"road_conditions,omitempty"`
	HazardZones     []conditions.HazardZone `json:"hazard_zones,omitempty"`
	Geometry        []crash.Segment         `json:"geometry,omitempty"`
}

// UpcomingHazard is a hazard ahead of the vehicle's current position.
type UpcomingHazard struct {
	Type          string   `json:"type"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// Alert is an actionable mid-trip warning.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CurrentConditions is the condensed environment snapshot in an update.
type CurrentConditions struct {
	Weather    string   `json:"weather"`
	Visibility *float64 `json:"visibility,omitempty"`
	Traffic    string   `json:"traffic"`
}

// Update is a mid-trip reassessment of an active route.
type Update struct {
	RouteID            string            `json:"route_id"`
	CurrentSafetyScore float64           `json:"current_safety_score"`
	Conditions         CurrentConditions `json:"current_conditions"`
	UpcomingHazards    []UpcomingHazard  `json:"upcoming_hazards"`
	Alerts             []Alert           `json:"alerts"`
	Recommendations    []string          `json:"recommendations"`
	Crashes            *crash.Result     `json:"crash_proximity,omitempty"`
}
