// Package polyline implements Google's encoded polyline format, used to
// ship route geometry to API clients compactly and to decode geometry
// returned by routing providers.
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"math"

	"github.com/routesense/routesense/pkg/geo"
)

// Decode decodes a polyline-encoded string into geographic points.
// Uses precision 5, the standard Google/TomTom format.
func Decode(encoded string) []geo.Point {
	if encoded == "" {
		return nil
	}

	var points []geo.Point
	index := 0
	lat := 0
	lon := 0

	for index < len(encoded) {
		latDelta, next := decodeValue(encoded, index)
		index = next
		lat += latDelta

		lonDelta, next := decodeValue(encoded, index)
		index = next
		lon += lonDelta

		points = append(points, geo.Point{
			Lat: float64(lat) / 1e5,
			Lon: float64(lon) / 1e5,
		})
	}

	return points
}

// decodeValue decodes a single delta starting at index and returns it
// with the new index position.
func decodeValue(encoded string, index int) (int, int) {
	shift := 0
	result := 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Two's complement for negative deltas.
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// Encode encodes geographic points into a polyline string at precision 5.
func Encode(points []geo.Point) string {
	if len(points) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(points)*4)
	prevLat := 0
	prevLon := 0

	for _, pt := range points {
		lat := int(math.Round(pt.Lat * 1e5))
		lon := int(math.Round(pt.Lon * 1e5))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(encoded)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}

// Length returns the total length of the polyline in meters.
func Length(points []geo.Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.HaversineMeters(points[i-1], points[i])
	}
	return total
}
