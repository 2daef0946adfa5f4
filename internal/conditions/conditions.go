// Package conditions defines the weather, traffic and road observations
// consumed by the scoring models. Every field is optional; accessor
// methods apply the documented defaults so "not reported" never gets
// confused with a real zero (0 degrees F is a legitimate temperature).
package conditions

import (
	"strings"

	"github.com/routesense/routesense/pkg/geo"
)

// Default values applied when an observation is missing.
const (
	DefaultWeatherCondition = "clear"
	DefaultTemperatureF     = 70.0
	DefaultVisibilityMiles  = 10.0
	DefaultCongestionLevel  = "light"
	DefaultAverageSpeedMPH  = 55.0
	DefaultSpeedLimitMPH    = 65.0
	DefaultSurfaceCondition = "dry"
	DefaultRoadType         = "highway"
)

// Weather holds weather observations along a route.
type Weather struct {
	Conditions             string   `json:"conditions,omitempty"`
	VisibilityMiles        *float64 `json:"visibility_miles,omitempty"`
	PrecipitationIntensity float64  `json:"precipitation_intensity,omitempty"`
	WindSpeedMPH           float64  `json:"wind_speed_mph,omitempty"`
	TemperatureF           *float64 `json:"temperature_f,omitempty"`
	RoadCondition          string   `json:"road_condition,omitempty"`
}

// Condition returns the normalized (lowercase) weather condition,
// defaulting to clear.
func (w Weather) Condition() string {
	if w.Conditions == "" {
		return DefaultWeatherCondition
	}
	return strings.ToLower(w.Conditions)
}

// Temperature returns the temperature in Fahrenheit, defaulting to 70.
func (w Weather) Temperature() float64 {
	if w.TemperatureF == nil {
		return DefaultTemperatureF
	}
	return *w.TemperatureF
}

// Visibility returns the visibility in miles, defaulting to 10.
func (w Weather) Visibility() float64 {
	if w.VisibilityMiles == nil {
		return DefaultVisibilityMiles
	}
	return *w.VisibilityMiles
}

// Traffic holds traffic observations along a route.
type Traffic struct {
	CongestionLevel string   `json:"congestion_level,omitempty"`
	Incidents       int      `json:"incidents,omitempty"`
	AverageSpeedMPH *float64 `json:"average_speed_mph,omitempty"`
	SpeedLimitMPH   *float64 `json:"speed_limit_mph,omitempty"`
	EstimatedStops  int      `json:"estimated_stops,omitempty"`
}

// Congestion returns the normalized congestion level, defaulting to
// light.
func (t Traffic) Congestion() string {
	if t.CongestionLevel == "" {
		return DefaultCongestionLevel
	}
	return strings.ToLower(t.CongestionLevel)
}

// AverageSpeed returns the observed average speed in mph, defaulting to
// 55.
func (t Traffic) AverageSpeed() float64 {
	if t.AverageSpeedMPH == nil {
		return DefaultAverageSpeedMPH
	}
	return *t.AverageSpeedMPH
}

// SpeedLimit returns the posted speed limit in mph, defaulting to 65.
func (t Traffic) SpeedLimit() float64 {
	if t.SpeedLimitMPH == nil {
		return DefaultSpeedLimitMPH
	}
	return *t.SpeedLimitMPH
}

// Road holds road surface and type observations.
type Road struct {
	SurfaceCondition  string `json:"surface_condition,omitempty"`
	ConstructionZones int    `json:"construction_zones,omitempty"`
	RoadType          string `json:"road_type,omitempty"`
}

// Surface returns the normalized surface condition, defaulting to dry.
func (r Road) Surface() string {
	if r.SurfaceCondition == "" {
		return DefaultSurfaceCondition
	}
	return strings.ToLower(r.SurfaceCondition)
}

// Type returns the normalized road type, defaulting to highway.
func (r Road) Type() string {
	if r.RoadType == "" {
		return DefaultRoadType
	}
	return strings.ToLower(r.RoadType)
}

// IncidentHistory summarizes historical incidents on a route.
type IncidentHistory struct {
	AvgDailyIncidents        float64 `json:"avg_daily_incidents,omitempty"`
	SevereIncidentsLastMonth int     `json:"severe_incidents_last_month,omitempty"`
}

// HazardZone is an externally supplied hazard along a route.
type HazardZone struct {
	HazardType  string     `json:"hazard_type,omitempty"`
	Severity    string     `json:"severity,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    *geo.Point `json:"location,omitempty"`
}
