package fleet

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local development. Production should use
// the PostgreSQL implementation.
type InMemoryRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*Vehicle
}

// NewInMemoryRepository creates a new in-memory vehicle repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		vehicles: make(map[string]*Vehicle),
	}
}

// List returns all vehicles ordered by ID.
func (r *InMemoryRepository) List(_ context.Context) ([]*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vehicles := make([]*Vehicle, 0, len(r.vehicles))
	for _, vehicle := range r.vehicles {
		vehicles = append(vehicles, copyVehicle(vehicle))
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })

	return vehicles, nil
}

// Get retrieves a vehicle by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}

	return copyVehicle(vehicle), nil
}

// Create adds a new vehicle.
func (r *InMemoryRepository) Create(_ context.Context, vehicle *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vehicles[vehicle.ID] = copyVehicle(vehicle)
	return nil
}

// Update replaces a vehicle's profile.
func (r *InMemoryRepository) Update(_ context.Context, vehicle *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return ErrVehicleNotFound
	}

	r.vehicles[vehicle.ID] = copyVehicle(vehicle)
	return nil
}

// Delete removes a vehicle.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.vehicles[id]; !ok {
		return ErrVehicleNotFound
	}

	delete(r.vehicles, id)
	return nil
}

func copyVehicle(v *Vehicle) *Vehicle {
	c := *v
	if v.DriverID != nil {
		driverID := *v.DriverID
		c.DriverID = &driverID
	}
	return &c
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
