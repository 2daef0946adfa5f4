// Package geo provides spherical geometry primitives shared by the route
// analysis models: bearings, circular angle arithmetic, great-circle
// distances and a planar metric projection.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for all spherical math.
const EarthRadiusMeters = 6371000.0

// Point is a geographic coordinate in decimal degrees (WGS84).
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point is within valid geographic ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", p.Lon)
	}
	return nil
}

// Midpoint returns the arithmetic midpoint between two points.
// Sufficient for the short route segments this service works with.
func Midpoint(a, b Point) Point {
	return Point{
		Lat: (a.Lat + b.Lat) / 2,
		Lon: (a.Lon + b.Lon) / 2,
	}
}

// Bearing returns the initial great-circle bearing from one point to
// another in degrees, where 0=North, 90=East, 180=South, 270=West.
// The result is always in [0, 360).
func Bearing(from, to Point) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	deltaLon := radians(to.Lon - from.Lon)

	x := math.Sin(deltaLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	return math.Mod(degrees(math.Atan2(x, y))+360, 360)
}

// AngleDiff returns the smallest circular difference between two angles
// in degrees. The result is always in [0, 180].
func AngleDiff(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// HaversineMeters returns the great-circle distance between two points
// in meters using the haversine formula.
func HaversineMeters(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	deltaLat := radians(b.Lat - a.Lat)
	deltaLon := radians(b.Lon - a.Lon)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Clamp restricts v to the range [lo, hi]. Used to keep cosine arguments
// and bounded scores inside their valid domains.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
