package safety

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/routesense/routesense/internal/conditions"
)

// Component weights, summing to 1.0.
const (
	weightWeather         = 0.25
	weightTraffic         = 0.20
	weightRoadCondition   = 0.15
	weightVisibility      = 0.15
	weightIncidentHistory = 0.15
	weightTimeOfDay       = 0.10
)

// Base risk by weather condition string, 0-100 with higher meaning more
// dangerous. Unknown conditions score 50.
var weatherRisks = map[string]float64{
	"clear":      10,
	"cloudy":     15,
	"fog":        60,
	"light_rain": 35,
	"rain":       50,
	"heavy_rain": 75,
	"snow":       80,
	"ice":        95,
	"hail":       85,
}

// Base risk by congestion level. Unknown levels score 35.
var trafficRisks = map[string]float64{
	"light":      15,
	"moderate":   35,
	"heavy":      60,
	"standstill": 80,
}

// Base risk by road surface condition. Unknown surfaces score 30.
var roadConditionRisks = map[string]float64{
	"dry":            10,
	"wet":            40,
	"standing_water": 65,
	"snow_covered":   75,
	"icy":            90,
	"construction":   55,
}

// Risk by local departure hour. Peaks overnight and during the evening
// commute, lowest around midday.
var riskByHour = map[int]float64{
	0: 60, 1: 65, 2: 70, 3: 70, 4: 65, 5: 50,
	6: 40, 7: 45, 8: 50, 9: 35, 10: 25, 11: 20,
	12: 20, 13: 20, 14: 25, 15: 30, 16: 40, 17: 50,
	18: 55, 19: 50, 20: 45, 21: 40, 22: 45, 23: 55,
}

// ScoreRoute produces the full safety assessment for a single route.
// The composite score is 100 minus the weighted risk total, so higher
// scores are safer.
func ScoreRoute(route RouteInput) Assessment {
	weatherRisk := weatherRiskFor(route.Weather)
	trafficRisk := trafficRiskFor(route.Traffic)
	roadRisk := roadRiskFor(route.Road)
	visibilityRisk := visibilityRiskFor(route.Weather)
	incidentRisk := incidentHistoryRiskFor(route.IncidentHistory)
	timeRisk := timeOfDayRiskFor(route.DepartureTime)

	totalRisk := weatherRisk*weightWeather +
		trafficRisk*weightTraffic +
		roadRisk*weightRoadCondition +
		visibilityRisk*weightVisibility +
		incidentRisk*weightIncidentHistory +
		timeRisk*weightTimeOfDay

	score := math.Max(0, math.Min(100, 100-totalRisk))

	hazards := identifyHazards(route)

	return Assessment{
		SafetyScore: round1(score),
		SafetyLevel: LevelFor(score),
		RiskBreakdown: RiskBreakdown{
			WeatherRisk:         round1(weatherRisk),
			TrafficRisk:         round1(trafficRisk),
			RoadConditionRisk:   round1(roadRisk),
			VisibilityRisk:      round1(visibilityRisk),
			IncidentHistoryRisk: round1(incidentRisk),
			TimeOfDayRisk:       round1(timeRisk),
		},
		Hazards:             hazards,
		Recommendations:     recommendations(weatherRisk, trafficRisk, roadRisk, visibilityRisk, timeRisk, hazards),
		IncidentProbability: incidentProbability(totalRisk),
		AlertLevel:          alertFor(score),
	}
}

func weatherRiskFor(w conditions.Weather) float64 {
	risk, ok := weatherRisks[strings.ToLower(w.Condition())]
	if !ok {
		risk = 50
	}

	if w.PrecipitationIntensity > 0.5 {
		risk += 15
	} else if w.PrecipitationIntensity > 0.2 {
		risk += 10
	}

	if w.WindSpeedMPH > 30 {
		risk += 20
	} else if w.WindSpeedMPH > 20 {
		risk += 10
	}

	if temp := w.Temperature(); temp < 32 {
		risk += 15
	} else if temp > 100 {
		risk += 5
	}

	return math.Min(100, risk)
}

func trafficRiskFor(t conditions.Traffic) float64 {
	risk, ok := trafficRisks[strings.ToLower(t.Congestion())]
	if !ok {
		risk = 35
	}

	risk += float64(t.Incidents) * 10

	avgSpeed := t.AverageSpeed()
	speedLimit := t.SpeedLimit()
	if avgSpeed < speedLimit*0.5 {
		risk += 20
	} else if avgSpeed > speedLimit {
		risk += 15
	}

	return math.Min(100, risk)
}

func roadRiskFor(r conditions.Road) float64 {
	risk, ok := roadConditionRisks[strings.ToLower(r.Surface())]
	if !ok {
		risk = 30
	}

	if r.ConstructionZones > 0 {
		risk += 20
	}

	switch strings.ToLower(r.Type()) {
	case "mountain":
		risk += 25
	case "rural":
		risk += 15
	case "urban":
		risk += 10
	}

	return math.Min(100, risk)
}

func visibilityRiskFor(w conditions.Weather) float64 {
	vis := w.Visibility()
	switch {
	case vis < 0.25:
		return 95
	case vis < 0.5:
		return 80
	case vis < 1:
		return 60
	case vis < 3:
		return 40
	case vis < 5:
		return 25
	case vis < 10:
		return 15
	default:
		return 5
	}
}

func incidentHistoryRiskFor(h conditions.IncidentHistory) float64 {
	var risk float64
	switch {
	case h.AvgDailyIncidents > 5:
		risk = 80
	case h.AvgDailyIncidents > 3:
		risk = 60
	case h.AvgDailyIncidents > 1:
		risk = 40
	case h.AvgDailyIncidents > 0.5:
		risk = 25
	default:
		risk = 10
	}

	risk += float64(h.SevereIncidentsLastMonth) * 5

	return math.Min(100, risk)
}

func timeOfDayRiskFor(departure string) float64 {
	if risk, ok := riskByHour[departureHour(departure)]; ok {
		return risk
	}
	return 35
}

// LevelFor maps a safety score to its categorical level.
func LevelFor(score float64) Level {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 60:
		return LevelFair
	case score >= 40:
		return LevelPoor
	default:
		return LevelHazardous
	}
}

func alertFor(score float64) AlertLevel {
	switch {
	case score < 40:
		return AlertRed
	case score < 60:
		return AlertYellow
	default:
		return AlertGreen
	}
}

// incidentProbability maps the weighted risk total onto an estimated
// incident chance via a simple exponential model, capped at 25 percent
// for display.
func incidentProbability(totalRisk float64) float64 {
	p := (math.Exp(totalRisk/50) - 1) / 10
	return math.Min(25, round1(p))
}

func identifyHazards(route RouteInput) []Hazard {
	var hazards []Hazard

	cond := strings.ToLower(route.Weather.Conditions)
	if cond == "heavy_rain" || cond == "snow" || cond == "ice" {
		hazards = append(hazards, Hazard{
			Type:        "weather",
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("Dangerous weather: %s", route.Weather.Conditions),
		})
	}

	if vis := route.Weather.Visibility(); vis < 1 {
		hazards = append(hazards, Hazard{
			Type:        "visibility",
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("Low visibility: %g miles", vis),
		})
	}

	if route.Traffic.Incidents > 0 {
		hazards = append(hazards, Hazard{
			Type:        "traffic",
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d active incidents on route", route.Traffic.Incidents),
		})
	}

	for _, zone := range route.HazardZones {
		h := Hazard{
			Type:        zone.HazardType,
			Severity:    Severity(zone.Severity),
			Description: zone.Description,
			Location:    zone.Location,
		}
		if h.Type == "" {
			h.Type = "unknown"
		}
		if h.Severity == "" {
			h.Severity = SeverityMedium
		}
		if h.Description == "" {
			h.Description = "Hazard zone ahead"
		}
		hazards = append(hazards, h)
	}

	return hazards
}

func recommendations(weatherRisk, trafficRisk, roadRisk, visibilityRisk, timeRisk float64, hazards []Hazard) []string {
	var recs []string

	if weatherRisk > 60 {
		recs = append(recs,
			"Reduce speed by 10-15 mph in current weather conditions",
			"Increase following distance to 6+ seconds")
	}
	if visibilityRisk > 50 {
		recs = append(recs,
			"Use low beam headlights and fog lights if equipped",
			"Consider delaying departure until visibility improves")
	}
	if trafficRisk > 60 {
		recs = append(recs,
			"Allow extra time for journey due to congestion",
			"Stay alert for sudden stops in heavy traffic")
	}
	if roadRisk > 60 {
		recs = append(recs,
			"Exercise extreme caution on road surface",
			"Avoid sudden braking or acceleration")
	}
	if timeRisk > 50 {
		recs = append(recs,
			"Take regular breaks to combat fatigue",
			"Ensure proper vehicle lighting for night driving")
	}

	for _, h := range hazards {
		if h.Severity == SeverityHigh {
			recs = append(recs, fmt.Sprintf("HIGH ALERT: %s", h.Description))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Conditions are favorable for safe driving")
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

// CompareRoutes scores each route and returns the results ranked from
// safest to most dangerous.
func CompareRoutes(routes []RouteInput) []Ranking {
	results := make([]Ranking, 0, len(routes))

	for _, route := range routes {
		assessment := ScoreRoute(route)
		name := route.Name
		if name == "" {
			name = "Unknown"
		}
		top := assessment.Hazards
		if len(top) > 2 {
			top = top[:2]
		}
		results = append(results, Ranking{
			RouteID:             route.RouteID,
			RouteName:           name,
			SafetyScore:         assessment.SafetyScore,
			SafetyLevel:         assessment.SafetyLevel,
			AlertLevel:          assessment.AlertLevel,
			TopHazards:          top,
			IncidentProbability: assessment.IncidentProbability,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SafetyScore > results[j].SafetyScore
	})
	for i := range results {
		results[i].SafetyRank = i + 1
	}
	return results
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// departureHour extracts the local hour from an ISO-8601 timestamp,
// falling back to noon when the value is missing or unparsable.
func departureHour(departure string) int {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, departure); err == nil {
			return t.Hour()
		}
	}
	return 12
}
