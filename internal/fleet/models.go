// Package fleet manages the vehicle registry: vehicle profiles, operational
// status and the derived metrics (efficiency rating, maintenance outlook,
// telemetry snapshots) consumed by route analysis and the dashboard.
package fleet

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidStatus   = errors.New("invalid vehicle status")
)

// Status is the operational status of a vehicle.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle profile.
type Vehicle struct {
	ID                  string    `json:"vehicle_id"`
	Name                string    `json:"name,omitempty"`
	Type                string    `json:"type"`
	Status              Status    `json:"status"`
	MPGCity             float64   `json:"mpg_city"`
	MPGHighway          float64   `json:"mpg_highway"`
	FuelCapacityGallons float64   `json:"fuel_capacity_gallons"`
	CargoWeightLbs      float64   `json:"cargo_weight_lbs"`
	DriverID            *string   `json:"driver_id,omitempty"`
	StatusUpdated       time.Time `json:"status_updated"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// EfficiencyRating buckets the vehicle's average MPG into a coarse rating.
func (v *Vehicle) EfficiencyRating() string {
	avg := (v.MPGCity + v.MPGHighway) / 2
	switch {
	case avg >= 25:
		return "Excellent"
	case avg >= 20:
		return "Good"
	case avg >= 15:
		return "Fair"
	default:
		return "Poor"
	}
}

// MaintenanceStatus is a vehicle's service outlook.
type MaintenanceStatus struct {
	Status           string `json:"status"`
	NextServiceMiles int    `json:"next_service_miles"`
	LastServiceDate  string `json:"last_service_date"`
}

// Location is a point-in-time position report for a vehicle.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	SpeedMPH int     `json:"speed_mph"`
	Heading  int     `json:"heading"`
	OnRoute  bool    `json:"on_route"`
	RouteID  string  `json:"route_id"`
}

// TodayStats summarizes a vehicle's activity for the current day.
type TodayStats struct {
	MilesDriven         int     `json:"miles_driven"`
	FuelConsumedGallons float64 `json:"fuel_consumed_gallons"`
	StopsCompleted      int     `json:"stops_completed"`
	AverageSpeedMPH     int     `json:"average_speed_mph"`
	IdleTimeMinutes     int     `json:"idle_time_minutes"`
	SafetyEvents        int     `json:"safety_events"`
}

// Detail is a vehicle profile enriched with derived fields. CurrentLocation
// and TodayStats are only populated on single-vehicle lookups.
type Detail struct {
	Vehicle
	FuelEfficiencyRating string            `json:"fuel_efficiency_rating"`
	Maintenance          MaintenanceStatus `json:"maintenance_status"`
	CurrentLocation      *Location         `json:"current_location,omitempty"`
	TodayStats           *TodayStats       `json:"today_stats,omitempty"`
}

// StatusBreakdown counts vehicles by operational status.
type StatusBreakdown struct {
	Active      int `json:"active"`
	Maintenance int `json:"maintenance"`
	Inactive    int `json:"inactive"`
}

// Efficiency is the fleet-wide MPG average.
type Efficiency struct {
	AverageCityMPG    float64 `json:"average_city_mpg"`
	AverageHighwayMPG float64 `json:"average_highway_mpg"`
}

// Capacity sums the fleet's cargo and fuel capacity.
type Capacity struct {
	TotalCargoCapacityLbs    float64 `json:"total_cargo_capacity_lbs"`
	TotalFuelCapacityGallons float64 `json:"total_fuel_capacity_gallons"`
}

// Summary is the aggregate view of the whole fleet.
type Summary struct {
	TotalVehicles   int             `json:"total_vehicles"`
	StatusBreakdown StatusBreakdown `json:"status_breakdown"`
	VehicleTypes    map[string]int  `json:"vehicle_types"`
	FuelEfficiency  Efficiency      `json:"fuel_efficiency"`
	Capacity        Capacity        `json:"capacity"`
}

// Update holds the mutable fields of a vehicle profile. Nil fields are left
// unchanged. The vehicle ID is immutable; status changes go through
// UpdateStatus so the status timestamp stays accurate.
type Update struct {
	Name                *string  `json:"name,omitempty"`
	Type                *string  `json:"type,omitempty"`
	MPGCity             *float64 `json:"mpg_city,omitempty"`
	MPGHighway          *float64 `json:"mpg_highway,omitempty"`
	FuelCapacityGallons *float64 `json:"fuel_capacity_gallons,omitempty"`
	CargoWeightLbs      *float64 `json:"cargo_weight_lbs,omitempty"`
	DriverID            *string  `json:"driver_id,omitempty"`
}
