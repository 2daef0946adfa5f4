package fleet

import "context"

// Repository persists vehicle profiles.
type Repository interface {
	// List returns all vehicles in the fleet ordered by ID.
	List(ctx context.Context) ([]*Vehicle, error)

	// Get retrieves a vehicle by ID.
	// Returns ErrVehicleNotFound if the vehicle does not exist.
	Get(ctx context.Context, id string) (*Vehicle, error)

	// Create adds a new vehicle.
	Create(ctx context.Context, vehicle *Vehicle) error

	// Update replaces a vehicle's profile. The ID is never changed.
	// Returns ErrVehicleNotFound if the vehicle does not exist.
	Update(ctx context.Context, vehicle *Vehicle) error

	// Delete removes a vehicle.
	// Returns ErrVehicleNotFound if the vehicle does not exist.
	Delete(ctx context.Context, id string) error
}
