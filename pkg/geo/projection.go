package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Projection converts geographic coordinates to a local planar system in
// which Euclidean distances approximate meters. It is an equirectangular
// projection anchored at a reference latitude: east-west degrees are
// scaled by the cosine of that latitude so the distortion stays small for
// datasets spanning a metro area. The inverse is exact, so round-tripping
// a coordinate recovers it to well under a meter.
//
// A Web-Mercator projection (paulmach/orb/project) was deliberately not
// used here: at mid latitudes its Euclidean distances are inflated by
// 1/cos(lat), which would make the crash proximity threshold wrong by
// 20-30%.
type Projection struct {
	refLatRad float64
	cosRefLat float64
}

// NewProjection creates a projection anchored at the given reference
// latitude in degrees. Points far from the reference latitude project
// with growing east-west distortion.
func NewProjection(refLatDeg float64) Projection {
	refLatRad := radians(Clamp(refLatDeg, -89.9, 89.9))
	return Projection{
		refLatRad: refLatRad,
		cosRefLat: math.Cos(refLatRad),
	}
}

// Project converts a geographic point to planar coordinates in meters.
// The result is an orb.Point with X=easting and Y=northing.
func (p Projection) Project(pt Point) orb.Point {
	x := EarthRadiusMeters * radians(pt.Lon) * p.cosRefLat
	y := EarthRadiusMeters * radians(pt.Lat)
	return orb.Point{x, y}
}

// Unproject converts planar coordinates in meters back to a geographic
// point. This is the exact inverse of Project.
func (p Projection) Unproject(pt orb.Point) Point {
	lon := degrees(pt.X() / (EarthRadiusMeters * p.cosRefLat))
	lat := degrees(pt.Y() / EarthRadiusMeters)
	return Point{Lat: lat, Lon: lon}
}

// ProjectLine converts an ordered list of geographic points into a planar
// orb.LineString in the same metric system.
func (p Projection) ProjectLine(pts []Point) orb.LineString {
	line := make(orb.LineString, 0, len(pts))
	for _, pt := range pts {
		line = append(line, p.Project(pt))
	}
	return line
}
