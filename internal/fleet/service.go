package fleet

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the fleet service.
type ServiceConfig struct {
	// Repository is the vehicle store. Required.
	Repository Repository

	// Logger is used for structured logging.
	Logger zerolog.Logger

	// Clock returns the current time. Defaults to time.Now.
	// Mock telemetry is keyed off it, so tests can pin it.
	Clock func() time.Time
}

// Service exposes fleet registry operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	clock  func() time.Time
}

// NewService creates a new fleet service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger.With().Str("component", "fleet").Logger(),
		clock:  cfg.Clock,
	}
}

// ListVehicles returns all vehicles with their efficiency rating and
// maintenance outlook.
func (s *Service) ListVehicles(ctx context.Context) ([]Detail, error) {
	vehicles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}

	details := make([]Detail, 0, len(vehicles))
	for _, vehicle := range vehicles {
		details = append(details, Detail{
			Vehicle:              *vehicle,
			FuelEfficiencyRating: vehicle.EfficiencyRating(),
			Maintenance:          mockMaintenance(vehicle.ID),
		})
	}

	return details, nil
}

// GetVehicle returns a single vehicle with derived fields, including its
// current location and today's activity stats.
func (s *Service) GetVehicle(ctx context.Context, id string) (*Detail, error) {
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	location := mockLocation(vehicle.ID, now)
	stats := mockTodayStats(vehicle.ID, now)

	return &Detail{
		Vehicle:              *vehicle,
		FuelEfficiencyRating: vehicle.EfficiencyRating(),
		Maintenance:          mockMaintenance(vehicle.ID),
		CurrentLocation:      &location,
		TodayStats:           &stats,
	}, nil
}

// VehicleLocation returns the vehicle's current position report.
func (s *Service) VehicleLocation(ctx context.Context, id string) (*Location, error) {
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	location := mockLocation(vehicle.ID, s.clock())
	return &location, nil
}

// UpdateVehicle applies the non-nil fields of update to the vehicle profile.
// The vehicle ID is immutable.
func (s *Service) UpdateVehicle(ctx context.Context, id string, update Update) (*Vehicle, error) {
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		vehicle.Name = *update.Name
	}
	if update.Type != nil {
		vehicle.Type = *update.Type
	}
	if update.MPGCity != nil {
		vehicle.MPGCity = *update.MPGCity
	}
	if update.MPGHighway != nil {
		vehicle.MPGHighway = *update.MPGHighway
	}
	if update.FuelCapacityGallons != nil {
		vehicle.FuelCapacityGallons = *update.FuelCapacityGallons
	}
	if update.CargoWeightLbs != nil {
		vehicle.CargoWeightLbs = *update.CargoWeightLbs
	}
	if update.DriverID != nil {
		vehicle.DriverID = update.DriverID
	}
	vehicle.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("updating vehicle %s: %w", id, err)
	}

	s.logger.Info().Str("vehicle_id", id).Msg("vehicle profile updated")
	return vehicle, nil
}

// UpdateStatus moves the vehicle to the given operational status and stamps
// the transition time.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Vehicle, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q (must be active, maintenance, or inactive)", ErrInvalidStatus, status)
	}

	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	vehicle.Status = status
	vehicle.StatusUpdated = now
	vehicle.UpdatedAt = now

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("updating vehicle %s status: %w", id, err)
	}

	s.logger.Info().
		Str("vehicle_id", id).
		Str("status", string(status)).
		Msg("vehicle status updated")
	return vehicle, nil
}

// FleetSummary aggregates fleet-wide statistics.
func (s *Service) FleetSummary(ctx context.Context) (*Summary, error) {
	vehicles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}

	summary := Summary{
		TotalVehicles: len(vehicles),
		VehicleTypes:  make(map[string]int),
	}

	var totalCity, totalHighway float64
	for _, vehicle := range vehicles {
		switch vehicle.Status {
		case StatusActive:
			summary.StatusBreakdown.Active++
		case StatusMaintenance:
			summary.StatusBreakdown.Maintenance++
		case StatusInactive:
			summary.StatusBreakdown.Inactive++
		}

		vehicleType := vehicle.Type
		if vehicleType == "" {
			vehicleType = "unknown"
		}
		summary.VehicleTypes[vehicleType]++

		totalCity += vehicle.MPGCity
		totalHighway += vehicle.MPGHighway
		summary.Capacity.TotalCargoCapacityLbs += vehicle.CargoWeightLbs
		summary.Capacity.TotalFuelCapacityGallons += vehicle.FuelCapacityGallons
	}

	if len(vehicles) > 0 {
		n := float64(len(vehicles))
		summary.FuelEfficiency.AverageCityMPG = round1(totalCity / n)
		summary.FuelEfficiency.AverageHighwayMPG = round1(totalHighway / n)
	}

	return &summary, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
