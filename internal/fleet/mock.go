package fleet

import (
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"time"
)

// The functions in this file produce mock telemetry standing in for a real
// GPS/OBD ingest pipeline. Values come from a pseudo-random stream seeded
// deterministically from the vehicle ID (plus a per-field salt), so repeated
// calls for the same vehicle return the same data. None of it is
// authoritative.

// mockStream returns a deterministic PRNG keyed by the given parts.
func mockStream(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		io.WriteString(h, p)
		io.WriteString(h, "\x00")
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// mockMaintenance returns a service outlook for the vehicle. Roughly 70% of
// vehicles report a healthy status.
func mockMaintenance(vehicleID string) MaintenanceStatus {
	rng := mockStream(vehicleID, "maintenance")
	if rng.Intn(10) < 7 {
		return MaintenanceStatus{
			Status:           "Good",
			NextServiceMiles: 2500 + rng.Intn(3000),
			LastServiceDate:  "2024-09-15",
		}
	}
	return MaintenanceStatus{
		Status:           "Service Soon",
		NextServiceMiles: 500 + rng.Intn(500),
		LastServiceDate:  "2024-08-01",
	}
}

// Mock positions scatter around downtown San Francisco.
const (
	mockBaseLat = 37.7749
	mockBaseLng = -122.4194
)

// mockLocation returns a position report near the Bay Area. The stream is
// additionally keyed by the hour so vehicles appear to move over time.
func mockLocation(vehicleID string, at time.Time) Location {
	rng := mockStream(vehicleID, "location", fmt.Sprintf("%02d", at.Hour()))
	return Location{
		Lat:      mockBaseLat + float64(rng.Intn(100))/1000,
		Lng:      mockBaseLng + float64(rng.Intn(200)-100)/1000,
		SpeedMPH: 35 + rng.Intn(30),
		Heading:  rng.Intn(360),
		OnRoute:  true,
		RouteID:  "route_" + vehicleID,
	}
}

// mockTodayStats returns activity totals for the vehicle, keyed by the
// calendar date so the numbers hold steady within a day.
func mockTodayStats(vehicleID string, at time.Time) TodayStats {
	rng := mockStream(vehicleID, "stats", at.Format("2006-01-02"))
	return TodayStats{
		MilesDriven:         85 + rng.Intn(100),
		FuelConsumedGallons: 4.2 + float64(rng.Intn(30))/10,
		StopsCompleted:      12 + rng.Intn(20),
		AverageSpeedMPH:     38 + rng.Intn(15),
		IdleTimeMinutes:     45 + rng.Intn(60),
		SafetyEvents:        rng.Intn(3),
	}
}
