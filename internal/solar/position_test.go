package solar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/routesense/routesense/internal/solar"
)

const (
	sfLat = 37.7749
	sfLon = -122.4194
)

func TestSunPosition_Bounds(t *testing.T) {
	// Sweep a grid of locations and times; the output must always be a
	// valid horizontal coordinate.
	times := []time.Time{
		time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 20, 12, 30, 0, 0, time.UTC),
		time.Date(2025, 6, 21, 18, 45, 12, 0, time.UTC),
		time.Date(2025, 12, 21, 23, 59, 59, 0, time.UTC),
	}
	lats := []float64{-89, -45, 0, 37.7749, 66.5, 89}
	lons := []float64{-180, -122.4194, 0, 4.9, 179.9}

	for _, tm := range times {
		for _, lat := range lats {
			for _, lon := range lons {
				pos := solar.SunPosition(lat, lon, tm)
				assert.GreaterOrEqual(t, pos.AltitudeDeg, -90.0)
				assert.LessOrEqual(t, pos.AltitudeDeg, 90.0)
				assert.GreaterOrEqual(t, pos.AzimuthDeg, 0.0)
				assert.Less(t, pos.AzimuthDeg, 360.0)
			}
		}
	}
}

func TestSunPosition_SummerSolsticeNoon(t *testing.T) {
	// Solar noon in San Francisco on the June solstice: sun nearly as
	// high as it gets (~76 deg) and close to due south.
	pos := solar.SunPosition(sfLat, sfLon, time.Date(2025, 6, 21, 20, 10, 0, 0, time.UTC))

	assert.InDelta(t, 75.8, pos.AltitudeDeg, 2.0)
	assert.InDelta(t, 180, pos.AzimuthDeg, 20)
}

func TestSunPosition_WinterSolsticeNoon(t *testing.T) {
	pos := solar.SunPosition(sfLat, sfLon, time.Date(2025, 12, 21, 20, 10, 0, 0, time.UTC))

	assert.InDelta(t, 28.9, pos.AltitudeDeg, 2.0)
	assert.InDelta(t, 180, pos.AzimuthDeg, 20)
}

func TestSunPosition_LocalMidnightBelowHorizon(t *testing.T) {
	// Midnight Pacific time is 07:00 UTC.
	pos := solar.SunPosition(sfLat, sfLon, time.Date(2025, 6, 22, 7, 0, 0, 0, time.UTC))

	assert.Negative(t, pos.AltitudeDeg)
}

func TestSunPosition_MorningSunInEast(t *testing.T) {
	// 09:00 Pacific daylight time on the solstice.
	pos := solar.SunPosition(sfLat, sfLon, time.Date(2025, 6, 21, 16, 0, 0, 0, time.UTC))

	assert.Positive(t, pos.AltitudeDeg)
	assert.Greater(t, pos.AzimuthDeg, 60.0)
	assert.Less(t, pos.AzimuthDeg, 140.0)
}

func TestSunPosition_TimezoneNormalization(t *testing.T) {
	// The same instant expressed in different zones must give the same
	// position.
	utc := time.Date(2025, 6, 21, 20, 0, 0, 0, time.UTC)
	offset := utc.In(time.FixedZone("PDT", -7*3600))

	a := solar.SunPosition(sfLat, sfLon, utc)
	b := solar.SunPosition(sfLat, sfLon, offset)

	assert.InDelta(t, a.AltitudeDeg, b.AltitudeDeg, 1e-9)
	assert.InDelta(t, a.AzimuthDeg, b.AzimuthDeg, 1e-9)
}
