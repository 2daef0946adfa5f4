package dashboard_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routesense/routesense/internal/conditions"
	"github.com/routesense/routesense/internal/dashboard"
	"github.com/routesense/routesense/internal/fleet"
	"github.com/routesense/routesense/internal/safety"
	"github.com/routesense/routesense/pkg/geo"
)

func fptr(v float64) *float64 { return &v }
func sptr(s string) *string   { return &s }

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newDashboard(t *testing.T, vehicles ...*fleet.Vehicle) (*dashboard.Service, *fleet.Service) {
	t.Helper()

	repo := fleet.NewInMemoryRepository()
	for _, vehicle := range vehicles {
		require.NoError(t, repo.Create(context.Background(), vehicle))
	}

	clock := func() time.Time { return testNow }
	fleetSvc := fleet.NewService(fleet.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.New(io.Discard),
		Clock:      clock,
	})
	svc := dashboard.NewService(dashboard.ServiceConfig{
		Fleet:  fleetSvc,
		Logger: zerolog.New(io.Discard),
		Clock:  clock,
	})
	return svc, fleetSvc
}

func vehicle(id string, status fleet.Status, driverID string) *fleet.Vehicle {
	v := &fleet.Vehicle{
		ID:                  id,
		Type:                "delivery_van",
		Status:              status,
		MPGCity:             16,
		MPGHighway:          22,
		FuelCapacityGallons: 25,
		CargoWeightLbs:      2500,
	}
	if driverID != "" {
		v.DriverID = sptr(driverID)
	}
	return v
}

func TestOverviewClearConditions(t *testing.T) {
	svc, _ := newDashboard(t,
		vehicle("TRK-001", fleet.StatusActive, "DRV-001"),
		vehicle("TRK-002", fleet.StatusActive, "DRV-002"),
		vehicle("TRK-003", fleet.StatusMaintenance, ""),
	)

	overview, err := svc.Overview(context.Background(), dashboard.Environment{})
	require.NoError(t, err)

	assert.Equal(t, testNow, overview.Timestamp)

	assert.Equal(t, 3, overview.Fleet.TotalVehicles)
	assert.Equal(t, 2, overview.Fleet.ActiveVehicles)
	assert.Equal(t, 2, overview.Fleet.VehiclesInTransit)
	assert.Equal(t, 0, overview.Fleet.VehiclesIdle)

	// Two mock routes of 45+ miles each.
	assert.Greater(t, overview.Fuel.TotalFuelGallonsToday, 0.0)
	assert.Greater(t, overview.Fuel.TotalFuelCostToday, 0.0)
	assert.Greater(t, overview.Fuel.AverageMPG, 0.0)
	assert.Greater(t, overview.Fuel.CostPerMileUSD, 0.0)
	assert.Greater(t, overview.Fuel.TotalCO2EmissionsKg, 0.0)

	// Default conditions leave all routes at the same healthy score.
	assert.InDelta(t, 88.8, overview.Safety.FleetSafetyScore, 1e-9)
	assert.Equal(t, safety.LevelGood, overview.Safety.SafetyLevel)
	assert.Zero(t, overview.Safety.VehiclesWithAlerts)
	assert.Empty(t, overview.Safety.SafetyAlerts)

	assert.Equal(t, "clear", overview.Environment.Weather)
	assert.Equal(t, "light", overview.Traffic.AverageCongestion)
	assert.Equal(t, 5, overview.Traffic.AverageDelayMinutes)
}

func TestOverviewDegradedConditionsFlagsVehicles(t *testing.T) {
	svc, _ := newDashboard(t,
		vehicle("TRK-001", fleet.StatusActive, "DRV-001"),
		vehicle("TRK-002", fleet.StatusActive, "DRV-002"),
	)

	overview, err := svc.Overview(context.Background(), dashboard.Environment{
		Weather: conditions.Weather{Conditions: "ice", VisibilityMiles: fptr(0.2), RoadCondition: "icy"},
		Traffic: conditions.Traffic{CongestionLevel: "standstill", Incidents: 0},
	})
	require.NoError(t, err)

	// weather 95*.25 + traffic 80*.20 + road 10*.15 + visibility 95*.15
	// + incidents 10*.15 + hour 20*.10 = 59 risk, score 41.
	assert.InDelta(t, 41.0, overview.Safety.FleetSafetyScore, 1e-9)
	assert.Equal(t, safety.LevelPoor, overview.Safety.SafetyLevel)
	assert.Equal(t, 2, overview.Safety.VehiclesWithAlerts)
	require.Len(t, overview.Safety.SafetyAlerts, 2)
	for _, alert := range overview.Safety.SafetyAlerts {
		assert.Equal(t, safety.AlertYellow, alert.AlertLevel)
		assert.Contains(t, []string{"TRK-001", "TRK-002"}, alert.VehicleID)
	}

	assert.Equal(t, "icy", overview.Environment.RoadConditions)
	assert.Equal(t, 40, overview.Traffic.AverageDelayMinutes)
}

func TestOverviewEmptyFleet(t *testing.T) {
	svc, _ := newDashboard(t)

	overview, err := svc.Overview(context.Background(), dashboard.Environment{})
	require.NoError(t, err)

	assert.Zero(t, overview.Fleet.TotalVehicles)
	assert.Zero(t, overview.Safety.FleetSafetyScore)
	assert.Zero(t, overview.Fuel.TotalFuelGallonsToday)
}

func TestAlerts(t *testing.T) {
	svc, fleetSvc := newDashboard(t,
		vehicle("TRK-001", fleet.StatusActive, "DRV-001"),
		vehicle("TRK-002", fleet.StatusActive, "DRV-002"),
		vehicle("TRK-003", fleet.StatusActive, "DRV-003"),
	)

	feed, err := svc.Alerts(context.Background(), dashboard.Environment{
		Weather: conditions.Weather{Conditions: "heavy_rain", PrecipitationIntensity: 0.7},
		Traffic: conditions.Traffic{CongestionLevel: "heavy", Incidents: 3},
		HazardZones: []conditions.HazardZone{{
			HazardType:  "flooding",
			Severity:    "medium",
			Description: "Standing water under the overpass",
			Location:    &geo.Point{Lat: 37.78, Lon: -122.41},
		}},
	})
	require.NoError(t, err)

	// Maintenance reminders depend on the deterministic mock outlook.
	details, err := fleetSvc.ListVehicles(context.Background())
	require.NoError(t, err)
	serviceSoon := 0
	for _, d := range details {
		if d.Maintenance.Status == "Service Soon" {
			serviceSoon++
		}
	}

	assert.Equal(t, 2+1+serviceSoon, feed.TotalAlerts)
	assert.Len(t, feed.Alerts, feed.TotalAlerts)

	assert.Equal(t, 1, feed.Summary.HighSeverity)
	assert.Equal(t, 2, feed.Summary.MediumSeverity)
	assert.Equal(t, serviceSoon, feed.Summary.LowSeverity)

	// Sorted most severe first.
	assert.Equal(t, "weather", feed.Alerts[0].Type)
	assert.Equal(t, "Heavy Rain Warning", feed.Alerts[0].Title)

	var titles []string
	for _, alert := range feed.Alerts {
		assert.NotEmpty(t, alert.ID)
		assert.Equal(t, testNow, alert.Timestamp)
		titles = append(titles, alert.Title)
	}
	assert.Contains(t, titles, "Multiple Traffic Incidents")
	assert.Contains(t, titles, "Hazard Zone: flooding")

	severityRank := map[string]int{"high": 0, "medium": 1, "low": 2}
	for i := 1; i < len(feed.Alerts); i++ {
		assert.LessOrEqual(t,
			severityRank[feed.Alerts[i-1].Severity],
			severityRank[feed.Alerts[i].Severity])
	}
}

func TestAlertsQuietConditions(t *testing.T) {
	svc, fleetSvc := newDashboard(t, vehicle("TRK-001", fleet.StatusActive, "DRV-001"))

	feed, err := svc.Alerts(context.Background(), dashboard.Environment{})
	require.NoError(t, err)

	details, err := fleetSvc.ListVehicles(context.Background())
	require.NoError(t, err)
	serviceSoon := 0
	for _, d := range details {
		if d.Maintenance.Status == "Service Soon" {
			serviceSoon++
		}
	}

	assert.Equal(t, serviceSoon, feed.TotalAlerts)
	assert.Zero(t, feed.Summary.HighSeverity)
	assert.Zero(t, feed.Summary.MediumSeverity)
}

func TestDriverScores(t *testing.T) {
	svc, _ := newDashboard(t,
		vehicle("TRK-001", fleet.StatusActive, "DRV-001"),
		vehicle("TRK-002", fleet.StatusActive, "DRV-002"),
		vehicle("TRK-003", fleet.StatusActive, "DRV-003"),
		vehicle("TRK-004", fleet.StatusInactive, "DRV-004"),
	)

	board, err := svc.DriverScores(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, board.TotalDrivers)
	require.Len(t, board.DriverScores, 3)
	assert.Len(t, board.TopPerformers, 3)

	for i, score := range board.DriverScores {
		assert.Equal(t, i+1, score.Ranking)
		assert.GreaterOrEqual(t, score.SafetyScore, 75)
		assert.Less(t, score.SafetyScore, 95)
		assert.GreaterOrEqual(t, score.FuelEfficiencyScore, 70)
		assert.Less(t, score.FuelEfficiencyScore, 95)
		assert.GreaterOrEqual(t, score.OnTimePercentage, 85)
		assert.Less(t, score.OnTimePercentage, 100)
		assert.Less(t, score.IncidentsLast30Days, 3)
		assert.Positive(t, score.OverallScore)
	}
	for i := 1; i < len(board.DriverScores); i++ {
		assert.GreaterOrEqual(t,
			board.DriverScores[i-1].OverallScore,
			board.DriverScores[i].OverallScore)
	}

	for _, score := range board.NeedsCoaching {
		assert.Less(t, score.SafetyScore, 80)
	}

	// Deterministic for the same fleet.
	again, err := svc.DriverScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, board, again)
}

func TestDriverScoresUnknownDriver(t *testing.T) {
	svc, _ := newDashboard(t, vehicle("TRK-001", fleet.StatusActive, ""))

	board, err := svc.DriverScores(context.Background())
	require.NoError(t, err)

	require.Len(t, board.DriverScores, 1)
	assert.Equal(t, "Unknown", board.DriverScores[0].DriverID)
	assert.Equal(t, "TRK-001", board.DriverScores[0].VehicleID)
}

func TestPerformancePeriods(t *testing.T) {
	svc, _ := newDashboard(t)

	tests := []struct {
		period     string
		wantPeriod string
		wantPoints int
	}{
		{"day", "day", 24},
		{"week", "week", 7},
		{"month", "month", 30},
		{"fortnight", "week", 7},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			perf := svc.Performance(tt.period)

			assert.Equal(t, tt.wantPeriod, perf.Period)
			assert.Len(t, perf.FuelEfficiency.Historical, tt.wantPoints)
			assert.Len(t, perf.SafetyPerformance.Historical, tt.wantPoints)
			assert.Len(t, perf.CostAnalysis.Historical, tt.wantPoints)

			for _, v := range perf.FuelEfficiency.Historical {
				assert.GreaterOrEqual(t, v, 15.0)
				assert.LessOrEqual(t, v, 20.0)
			}
			for _, v := range perf.SafetyPerformance.Historical {
				assert.GreaterOrEqual(t, v, 75.0)
				assert.LessOrEqual(t, v, 90.0)
			}

			var total float64
			for _, v := range perf.CostAnalysis.Historical {
				total += v
			}
			assert.InDelta(t, total, perf.CostAnalysis.TotalFuelCostUSD, 0.01)
			assert.InDelta(t, total/float64(tt.wantPoints), perf.CostAnalysis.AverageDailyCostUSD, 0.01)

			assert.NotEmpty(t, perf.Recommendations)
		})
	}
}

func TestPerformanceDeterministicWithinDay(t *testing.T) {
	svc, _ := newDashboard(t)

	first := svc.Performance("week")
	second := svc.Performance("week")
	assert.Equal(t, first, second)
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want dashboard.TrendDirection
	}{
		{"rising", []float64{10, 10, 20, 20}, dashboard.TrendImproving},
		{"falling", []float64{20, 20, 10, 10}, dashboard.TrendDeclining},
		{"flat", []float64{15, 15, 15, 15}, dashboard.TrendStable},
		{"small move", []float64{100, 100, 103, 103}, dashboard.TrendStable},
		{"too short", []float64{42}, dashboard.TrendStable},
		{"empty", nil, dashboard.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dashboard.Trend(tt.data))
		})
	}
}
