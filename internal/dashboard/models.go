// Package dashboard aggregates fleet, fuel and safety data into the
// operator-facing overview, alert feed, driver scoreboard and performance
// trend views.
package dashboard

import (
	"time"

	"github.com/routesense/routesense/internal/conditions"
	"github.com/routesense/routesense/internal/safety"
	"github.com/routesense/routesense/pkg/geo"
)

// Environment is the current weather and traffic snapshot the dashboard
// views are computed against.
type Environment struct {
	Weather     conditions.Weather      `json:"weather,omitempty"`
	Traffic     conditions.Traffic      `json:"traffic,omitempty"`
	HazardZones []conditions.HazardZone `json:"hazard_zones,omitempty"`
}

// FleetOverview counts vehicles by activity.
type FleetOverview struct {
	TotalVehicles     int `json:"total_vehicles"`
	ActiveVehicles    int `json:"active_vehicles"`
	VehiclesInTransit int `json:"vehicles_in_transit"`
	VehiclesIdle      int `json:"vehicles_idle"`
}

// FuelMetrics is the fleet's aggregate fuel picture for today.
type FuelMetrics struct {
	TotalFuelGallonsToday float64 `json:"total_fuel_gallons_today"`
	TotalFuelCostToday    float64 `json:"total_fuel_cost_today"`
	AverageMPG            float64 `json:"average_mpg"`
	CostPerMileUSD        float64 `json:"cost_per_mile"`
	TotalCO2EmissionsKg   float64 `json:"total_co2_emissions_kg"`
}

// SafetyAlert flags a vehicle whose route safety dropped below threshold.
type SafetyAlert struct {
	VehicleID   string            `json:"vehicle_id"`
	SafetyScore float64           `json:"safety_score"`
	AlertLevel  safety.AlertLevel `json:"alert_level"`
}

// SafetyMetrics is the fleet-wide safety picture.
type SafetyMetrics struct {
	FleetSafetyScore   float64       `json:"fleet_safety_score"`
	SafetyLevel        safety.Level  `json:"safety_level"`
	VehiclesWithAlerts int           `json:"vehicles_with_alerts"`
	SafetyAlerts       []SafetyAlert `json:"safety_alerts"`
}

// EnvironmentalConditions is the condensed weather block of the overview.
type EnvironmentalConditions struct {
	Weather                string   `json:"weather"`
	VisibilityMiles        *float64 `json:"visibility_miles,omitempty"`
	PrecipitationIntensity float64  `json:"precipitation"`
	RoadConditions         string   `json:"road_conditions"`
}

// TrafficOverview is the condensed traffic block of the overview.
type TrafficOverview struct {
	AverageCongestion   string `json:"average_congestion"`
	TotalIncidents      int    `json:"total_incidents"`
	AverageDelayMinutes int    `json:"average_delay_minutes"`
}

// Overview is the top-level fleet dashboard.
type Overview struct {
	Timestamp   time.Time               `json:"timestamp"`
	Fleet       FleetOverview           `json:"fleet_overview"`
	Fuel        FuelMetrics             `json:"fuel_metrics"`
	Safety      SafetyMetrics           `json:"safety_metrics"`
	Environment EnvironmentalConditions `json:"environmental_conditions"`
	Traffic     TrafficOverview         `json:"traffic_overview"`
}

// Alert is one entry in the active alert feed.
type Alert struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	VehicleID   string     `json:"vehicle_id,omitempty"`
	Location    *geo.Point `json:"location,omitempty"`
	RadiusMiles float64    `json:"radius_miles,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// AlertSummary counts alerts by severity.
type AlertSummary struct {
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`
}

// AlertFeed is the full set of active alerts, most severe first.
type AlertFeed struct {
	TotalAlerts int          `json:"total_alerts"`
	Alerts      []Alert      `json:"alerts"`
	Summary     AlertSummary `json:"summary"`
}

// DriverScore is one driver's performance scorecard.
type DriverScore struct {
	DriverID            string  `json:"driver_id"`
	VehicleID           string  `json:"vehicle_id"`
	SafetyScore         int     `json:"safety_score"`
	FuelEfficiencyScore int     `json:"fuel_efficiency_score"`
	OnTimePercentage    int     `json:"on_time_percentage"`
	TotalMilesToday     int     `json:"total_miles_today"`
	IncidentsLast30Days int     `json:"incidents_last_30_days"`
	OverallScore        float64 `json:"overall_score"`
	Ranking             int     `json:"ranking"`
}

// DriverScoreboard ranks all active drivers.
type DriverScoreboard struct {
	TotalDrivers  int           `json:"total_drivers"`
	DriverScores  []DriverScore `json:"driver_scores"`
	TopPerformers []DriverScore `json:"top_performers"`
	NeedsCoaching []DriverScore `json:"needs_coaching"`
}

// TrendDirection classifies how a metric series is moving.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// SeriesStats summarizes one historical metric series.
type SeriesStats struct {
	Current        float64        `json:"current"`
	Previous       float64        `json:"previous"`
	Trend          TrendDirection `json:"trend"`
	ImprovementPct float64        `json:"improvement_percentage"`
	Historical     []float64      `json:"historical_data"`
}

// CostAnalysis summarizes the fleet's fuel spend over the period.
type CostAnalysis struct {
	TotalFuelCostUSD    float64        `json:"total_fuel_cost"`
	AverageDailyCostUSD float64        `json:"average_daily_cost"`
	Trend               TrendDirection `json:"trend"`
	Historical          []float64      `json:"historical_data"`
}

// Performance is the trend view over a day, week or month.
type Performance struct {
	Period            string       `json:"period"`
	FuelEfficiency    SeriesStats  `json:"fuel_efficiency"`
	SafetyPerformance SeriesStats  `json:"safety_performance"`
	CostAnalysis      CostAnalysis `json:"cost_analysis"`
	Recommendations   []string     `json:"recommendations"`
}
