// Package sunlight scores sun-glare and low-light visibility risk for
// route segments by combining the sun's position with the direction of
// travel.
package sunlight

import (
	"time"

	"github.com/routesense/routesense/pkg/geo"
)

// Level is a categorical glare risk level.
type Level string

// Risk levels, from best to worst lighting conditions.
const (
	LevelVeryLow      Level = "Very Low"
	LevelLow          Level = "Low"
	LevelModerate     Level = "Moderate"
	LevelModerateHigh Level = "Moderate-High"
	LevelHigh         Level = "High"
	LevelCritical     Level = "Critical"
)

// Segment is one leg of a route for sunlight analysis.
type Segment struct {
	From geo.Point `json:"from"`
	To   geo.Point `json:"to"`

	// DurationSeconds is the driving time of the segment; it advances
	// the clock for the segments that follow. Never negative.
	DurationSeconds int `json:"duration_seconds"`

	// Name is an optional human-readable label.
	Name string `json:"name,omitempty"`
}

// GlareRisk is the scored sunlight risk at a single point and time.
type GlareRisk struct {
	// RiskScore is in [0, 100], higher is riskier.
	RiskScore float64 `json:"risk_score"`

	RiskLevel Level `json:"risk_level"`

	SunAltitudeDeg    float64 `json:"sun_altitude_deg"`
	SunAzimuthDeg     float64 `json:"sun_azimuth_deg"`
	DrivingBearingDeg float64 `json:"driving_bearing_deg"`

	IsDaytime   bool   `json:"is_daytime"`
	Explanation string `json:"explanation"`

	Time time.Time `json:"time"`
}

// SegmentRisk is the glare risk of one route segment.
type SegmentRisk struct {
	SegmentIndex int       `json:"segment_index"`
	SegmentName  string    `json:"segment_name"`
	StartTime    time.Time `json:"start_time"`

	GlareRisk
}

// RouteAnalysis is the sunlight risk assessment of a whole route.
type RouteAnalysis struct {
	OverallRiskScore float64   `json:"overall_risk_score"`
	OverallRiskLevel Level     `json:"overall_risk_level"`
	DepartureTime    time.Time `json:"departure_time"`
	SegmentCount     int       `json:"segment_count"`

	Segments        []SegmentRisk `json:"segments"`
	Recommendations []string      `json:"recommendations"`
}
