package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routesense/routesense/pkg/geo"
)

func TestPoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		point   geo.Point
		wantErr bool
	}{
		{"valid", geo.Point{Lat: 37.7749, Lon: -122.4194}, false},
		{"north pole", geo.Point{Lat: 90, Lon: 0}, false},
		{"antimeridian", geo.Point{Lat: 0, Lon: -180}, false},
		{"latitude too high", geo.Point{Lat: 90.01, Lon: 0}, true},
		{"latitude too low", geo.Point{Lat: -91, Lon: 0}, true},
		{"longitude too high", geo.Point{Lat: 0, Lon: 180.5}, true},
		{"longitude too low", geo.Point{Lat: 0, Lon: -181}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		from geo.Point
		to   geo.Point
		want float64
	}{
		{"due north", geo.Point{Lat: 37, Lon: -122}, geo.Point{Lat: 38, Lon: -122}, 0},
		{"due south", geo.Point{Lat: 38, Lon: -122}, geo.Point{Lat: 37, Lon: -122}, 180},
		{"due east on equator", geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 1}, 90},
		{"due west on equator", geo.Point{Lat: 0, Lon: 1}, geo.Point{Lat: 0, Lon: 0}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.Bearing(tt.from, tt.to)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestBearing_ReverseDiffersByHalfTurn(t *testing.T) {
	a := geo.Point{Lat: 37.7749, Lon: -122.4194}
	b := geo.Point{Lat: 37.3382, Lon: -121.8863}

	forward := geo.Bearing(a, b)
	reverse := geo.Bearing(b, a)

	diff := math.Mod(math.Abs(forward-reverse), 360)
	assert.InDelta(t, 180, diff, 0.5)
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{0, 180, 180},
		{10, 350, 20},
		{350, 10, 20},
		{90, 270, 180},
		{720, 90, 90},
	}

	for _, tt := range tests {
		got := geo.AngleDiff(tt.a, tt.b)
		assert.InDelta(t, tt.want, got, 1e-9)

		// Symmetric and bounded.
		assert.InDelta(t, got, geo.AngleDiff(tt.b, tt.a), 1e-9)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 180.0)
	}
}

func TestHaversineMeters(t *testing.T) {
	// SF downtown to San Jose downtown, roughly 68 km.
	sf := geo.Point{Lat: 37.7749, Lon: -122.4194}
	sj := geo.Point{Lat: 37.3382, Lon: -121.8863}

	dist := geo.HaversineMeters(sf, sj)
	assert.InDelta(t, 68000, dist, 2000)

	assert.Zero(t, geo.HaversineMeters(sf, sf))
}

func TestProjection_RoundTrip(t *testing.T) {
	proj := geo.NewProjection(37.5)

	points := []geo.Point{
		{Lat: 37.7749, Lon: -122.4194},
		{Lat: 37.3382, Lon: -121.8863},
		{Lat: 37.5, Lon: -122.0},
	}

	for _, pt := range points {
		planar := proj.Project(pt)
		back := proj.Unproject(planar)

		// Round-trip error must stay below a meter.
		require.Less(t, geo.HaversineMeters(pt, back), 1.0)
	}
}

func TestProjection_DistancesApproximateMeters(t *testing.T) {
	proj := geo.NewProjection(37.5)

	a := geo.Point{Lat: 37.5, Lon: -122.0}
	b := geo.Point{Lat: 37.51, Lon: -122.01}

	pa := proj.Project(a)
	pb := proj.Project(b)
	planarDist := math.Hypot(pb.X()-pa.X(), pb.Y()-pa.Y())
	sphereDist := geo.HaversineMeters(a, b)

	// Within 0.5% near the reference latitude.
	assert.InDelta(t, sphereDist, planarDist, sphereDist*0.005)
}

func TestProjectLine(t *testing.T) {
	proj := geo.NewProjection(37.5)

	line := proj.ProjectLine([]geo.Point{
		{Lat: 37.5, Lon: -122.0},
		{Lat: 37.6, Lon: -122.1},
	})
	require.Len(t, line, 2)
	assert.Greater(t, line[1].Y(), line[0].Y())
	assert.Less(t, line[1].X(), line[0].X())
}
