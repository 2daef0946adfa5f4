// Package safety computes composite route safety scores from weather,
// traffic, road surface, visibility, incident history and time-of-day
// risk, with hazard identification and driver recommendations.
package safety

import (
	"github.com/routesense/routesense/internal/conditions"
	"github.com/routesense/routesense/pkg/geo"
)

// Level is the categorical safety rating of a route.
type Level string

// Safety levels, from safest to most dangerous.
const (
	LevelExcellent Level = "Excellent"
	LevelGood      Level = "Good"
	LevelFair      Level = "Fair"
	LevelPoor      Level = "Poor"
	LevelHazardous Level = "Hazardous"
)

// AlertLevel is the driver alert banner derived from the safety score.
type AlertLevel string

// Alert levels.
const (
	AlertRed    AlertLevel = "RED"
	AlertYellow AlertLevel = "YELLOW"
	AlertGreen  AlertLevel = "GREEN"
)

// Severity classifies an identified hazard.
type Severity string

// Hazard severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RouteInput is the full set of observations for scoring one route.
type RouteInput struct {
	RouteID string `json:"route_id,omitempty"`
	Name    string `json:"name,omitempty"`

	Weather         conditions.Weather         `json:"weather,omitempty"`
	Traffic         conditions.Traffic         `json:"traffic,omitempty"`
	Road            conditions.Road            `json:"road_conditions,omitempty"`
	IncidentHistory conditions.IncidentHistory `json:"incident_history,omitempty"`

	// DepartureTime is an ISO-8601 timestamp; only the hour matters for
	// the time-of-day risk. Unparsable values fall back to noon.
	DepartureTime string `json:"departure_time,omitempty"`

	HazardZones []conditions.HazardZone `json:"hazard_zones,omitempty"`
}

// RiskBreakdown is the per-component risk contribution, each in
// [0, 100] with higher meaning more dangerous.
type RiskBreakdown struct {
	WeatherRisk         float64 `json:"weather_risk"`
	TrafficRisk         float64 `json:"traffic_risk"`
	RoadConditionRisk   float64 `json:"road_condition_risk"`
	VisibilityRisk      float64 `json:"visibility_risk"`
	IncidentHistoryRisk float64 `json:"incident_history_risk"`
	TimeOfDayRisk       float64 `json:"time_of_day_risk"`
}

// Hazard is a discrete identified hazard on the route.
type Hazard struct {
	Type        string     `json:"type"`
	Severity    Severity   `json:"severity"`
	Description string     `json:"description"`
	Location    *geo.Point `json:"location,omitempty"`
}

// Assessment is the complete safety analysis of one route.
type Assessment struct {
	// SafetyScore is in [0, 100], higher is safer.
	SafetyScore float64 `json:"safety_score"`
	SafetyLevel Level   `json:"safety_level"`

	RiskBreakdown RiskBreakdown `json:"risk_breakdown"`

	Hazards         []Hazard `json:"identified_hazards"`
	Recommendations []string `json:"safety_recommendations"`

	// IncidentProbability is the estimated chance of an incident as a
	// display percentage, capped at 25.
	IncidentProbability float64 `json:"estimated_incident_probability"`

	AlertLevel AlertLevel `json:"driver_alert_level"`
}

// Ranking is one route's entry in a multi-route safety comparison.
type Ranking struct {
	RouteID             string     `json:"route_id"`
	RouteName           string     `json:"route_name"`
	SafetyScore         float64    `json:"safety_score"`
	SafetyLevel         Level      `json:"safety_level"`
	AlertLevel          AlertLevel `json:"alert_level"`
	TopHazards          []Hazard   `json:"top_hazards"`
	IncidentProbability float64    `json:"incident_probability"`
	SafetyRank          int        `json:"safety_rank"`
}
