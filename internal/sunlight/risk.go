package sunlight

import (
	"fmt"
	"math"
	"time"

	"github.com/routesense/routesense/internal/solar"
	"github.com/routesense/routesense/pkg/geo"
)

// Glare scores the sunlight risk for a vehicle at the given location,
// heading and time. During the day the score is driven by how low the sun
// sits and how close it is to the direction of travel; at night it is
// driven by how far the sun is below the horizon.
func Glare(lat, lon, drivingBearing float64, t time.Time) GlareRisk {
	pos := solar.SunPosition(lat, lon, t)
	isDaytime := pos.AltitudeDeg > 0

	var (
		score       float64
		level       Level
		explanation string
	)

	if isDaytime {
		angleToSun := geo.AngleDiff(drivingBearing, pos.AzimuthDeg)

		switch {
		case pos.AltitudeDeg < 15:
			// Low sun around sunrise/sunset: glare is worst head-on.
			switch {
			case angleToSun < 30:
				score = 95 - pos.AltitudeDeg*1.5
				level = LevelCritical
				explanation = fmt.Sprintf("Severe sun glare - driving directly into low sun (altitude: %.1f deg)", pos.AltitudeDeg)
			case angleToSun < 60:
				score = 75 - pos.AltitudeDeg*0.5
				level = LevelHigh
				explanation = fmt.Sprintf("Significant sun glare from side (angle: %.1f deg)", angleToSun)
			default:
				score = 35
				level = LevelLow
				explanation = "Sun at low angle but not in driving direction"
			}

		case pos.AltitudeDeg < 30:
			switch {
			case angleToSun < 45:
				score = 70 - pos.AltitudeDeg*0.8
				level = LevelModerateHigh
				explanation = fmt.Sprintf("Moderate sun glare - driving toward sun (altitude: %.1f deg)", pos.AltitudeDeg)
			case angleToSun < 90:
				score = 45
				level = LevelModerate
				explanation = "Some glare possible from side angle"
			default:
				score = 25
				level = LevelLow
				explanation = "Sun behind or to the side"
			}

		default:
			if angleToSun < 60 {
				score = 35 - pos.AltitudeDeg*0.2
				level = LevelLow
				explanation = fmt.Sprintf("Minimal glare - high sun (altitude: %.1f deg)", pos.AltitudeDeg)
			} else {
				score = 20
				level = LevelVeryLow
				explanation = "Optimal lighting conditions - high sun behind driver"
			}
		}
	} else {
		// Depth below the horizon tracks how dark it actually is.
		depth := math.Abs(pos.AltitudeDeg)

		switch {
		case depth < 6:
			score = 45
			level = LevelModerate
			explanation = "Twilight - reduced visibility but some natural light"
		case depth < 12:
			score = 60
			level = LevelModerateHigh
			explanation = "Dusk/dawn - significantly reduced visibility"
		default:
			score = 75
			level = LevelHigh
			explanation = "Night driving - visibility dependent on street lighting and vehicle lights"
		}
	}

	return GlareRisk{
		RiskScore:         round1(geo.Clamp(score, 0, 100)),
		RiskLevel:         level,
		SunAltitudeDeg:    round2(pos.AltitudeDeg),
		SunAzimuthDeg:     round2(pos.AzimuthDeg),
		DrivingBearingDeg: round2(drivingBearing),
		IsDaytime:         isDaytime,
		Explanation:       explanation,
		Time:              t,
	}
}

// AnalyzeRoute scores every segment of a route, advancing the clock by
// each segment's duration starting at the departure time, and derives an
// overall risk level with recommendations.
func AnalyzeRoute(segments []Segment, departure time.Time) *RouteAnalysis {
	segmentRisks := make([]SegmentRisk, 0, len(segments))
	current := departure
	var total float64

	for i, seg := range segments {
		mid := geo.Midpoint(seg.From, seg.To)
		bearing := geo.Bearing(seg.From, seg.To)

		risk := Glare(mid.Lat, mid.Lon, bearing, current)

		name := seg.Name
		if name == "" {
			name = fmt.Sprintf("Segment %d", i+1)
		}

		segmentRisks = append(segmentRisks, SegmentRisk{
			SegmentIndex: i,
			SegmentName:  name,
			StartTime:    current,
			GlareRisk:    risk,
		})

		total += risk.RiskScore
		current = current.Add(time.Duration(seg.DurationSeconds) * time.Second)
	}

	var avg float64
	if len(segments) > 0 {
		avg = total / float64(len(segments))
	}

	return &RouteAnalysis{
		OverallRiskScore: round1(avg),
		OverallRiskLevel: overallLevel(avg),
		DepartureTime:    departure,
		SegmentCount:     len(segments),
		Segments:         segmentRisks,
		Recommendations:  recommendations(avg, segmentRisks),
	}
}

// overallLevel categorizes an average route risk score.
func overallLevel(avgRisk float64) Level {
	switch {
	case avgRisk < 30:
		return LevelLow
	case avgRisk < 50:
		return LevelModerate
	case avgRisk < 70:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// recommendations derives textual advisories from the route's risk
// profile.
func recommendations(avgRisk float64, segments []SegmentRisk) []string {
	var recs []string

	if avgRisk > 70 {
		recs = append(recs, "High sunlight risk detected. Consider departing at a different time.")
	}

	criticalCount := 0
	nightCount := 0
	for _, s := range segments {
		if s.RiskScore > 80 {
			criticalCount++
		}
		if !s.IsDaytime {
			nightCount++
		}
	}

	if criticalCount > 0 {
		recs = append(recs, fmt.Sprintf(
			"%d segment(s) with severe sun glare. Ensure sun visors are functional and consider sunglasses.",
			criticalCount))
	}

	if nightCount > 0 && len(segments) > 0 {
		pct := float64(nightCount) / float64(len(segments)) * 100
		recs = append(recs, fmt.Sprintf(
			"%.0f%% of route during night hours. Ensure all vehicle lights are operational.", pct))
	}

	if avgRisk < 30 {
		recs = append(recs, "Excellent lighting conditions for this route and time.")
	}

	return recs
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
