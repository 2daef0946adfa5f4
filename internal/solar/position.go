// Package solar computes the apparent position of the sun for a location
// and time using the standard low-precision solar algorithm. Accuracy is
// well within a degree, which is plenty for glare risk scoring.
package solar

import (
	"math"
	"time"

	"github.com/routesense/routesense/pkg/geo"
)

// Position is the sun's apparent position in the local horizontal frame.
type Position struct {
	// AzimuthDeg is the compass bearing of the sun: 0=North, 90=East,
	// 180=South, 270=West. Always in [0, 360).
	AzimuthDeg float64 `json:"azimuth_deg"`

	// AltitudeDeg is the elevation above the horizon: 0=horizon,
	// 90=zenith, negative=below the horizon. Always in [-90, 90].
	AltitudeDeg float64 `json:"altitude_deg"`
}

// SunPosition returns the sun's azimuth and altitude at the given
// location and time. The time is normalized to UTC before use, so any
// zone-aware value gives the same answer.
func SunPosition(lat, lon float64, t time.Time) Position {
	t = t.UTC()

	year := t.Year()
	month := int(t.Month())
	day := t.Day()
	hour := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600

	// Julian day from the calendar date (Gregorian correction applied).
	if month <= 2 {
		year--
		month += 12
	}
	a := math.Floor(float64(year) / 100)
	b := 2 - a + math.Floor(a/4)
	jd := math.Floor(365.25*(float64(year)+4716)) +
		math.Floor(30.6001*float64(month+1)) +
		float64(day) + b - 1524.5 +
		hour/24

	// Julian centuries since J2000.0.
	T := (jd - 2451545.0) / 36525.0

	// Sun's mean longitude and mean anomaly, degrees.
	l0 := math.Mod(280.46646+36000.76983*T+0.0003032*T*T, 360)
	m := math.Mod(357.52911+35999.05029*T-0.0001537*T*T, 360)
	mRad := radians(m)

	// Equation of center.
	c := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(mRad) +
		(0.019993-0.000101*T)*math.Sin(2*mRad) +
		0.000289*math.Sin(3*mRad)

	// True and apparent longitude, with a simplified lunar-node
	// nutation correction.
	trueLong := l0 + c
	omega := 125.04 - 1934.136*T
	lambda := trueLong - 0.00569 - 0.00478*math.Sin(radians(omega))
	lambdaRad := radians(lambda)

	// Obliquity of the ecliptic and solar declination.
	epsilon := 23.439291 - 0.0130042*T - 0.00000164*T*T + 0.000000504*T*T*T
	epsilonRad := radians(epsilon)
	delta := math.Asin(math.Sin(epsilonRad) * math.Sin(lambdaRad))

	// Greenwich and local sidereal time, then the hour angle.
	gmst := math.Mod(280.46061837+360.98564736629*(jd-2451545.0)+
		0.000387933*T*T-T*T*T/38710000.0, 360)
	lst := math.Mod(gmst+lon, 360)

	alpha := math.Atan2(math.Cos(epsilonRad)*math.Sin(lambdaRad), math.Cos(lambdaRad))
	h := math.Mod(lst-degrees(alpha), 360)
	hRad := radians(h)

	latRad := radians(lat)

	// Altitude via the standard spherical-astronomy formula. The sine is
	// clamped so floating-point overshoot never escapes asin's domain.
	sinAlt := math.Sin(latRad)*math.Sin(delta) +
		math.Cos(latRad)*math.Cos(delta)*math.Cos(hRad)
	altitude := degrees(math.Asin(geo.Clamp(sinAlt, -1, 1)))

	// Azimuth with the quadrant fix from the sign of sin(hour angle).
	cosAz := (math.Sin(delta) - math.Sin(latRad)*math.Sin(radians(altitude))) /
		(math.Cos(latRad) * math.Cos(radians(altitude)))
	azimuth := degrees(math.Acos(geo.Clamp(cosAz, -1, 1)))
	if math.Sin(hRad) > 0 {
		azimuth = 360 - azimuth
	}

	return Position{
		AzimuthDeg:  math.Mod(azimuth, 360),
		AltitudeDeg: altitude,
	}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
