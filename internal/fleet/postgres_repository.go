package fleet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL vehicle repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const vehicleColumns = `id, name, type, status, mpg_city, mpg_highway,
	fuel_capacity_gallons, cargo_weight_lbs, driver_id, status_updated,
	created_at, updated_at`

// List returns all vehicles ordered by ID.
func (r *PostgresRepository) List(ctx context.Context) ([]*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

// Get retrieves a vehicle by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*Vehicle, error) {
	var vehicle Vehicle
	err := row.Scan(
		&vehicle.ID,
		&vehicle.Name,
		&vehicle.Type,
		&vehicle.Status,
		&vehicle.MPGCity,
		&vehicle.MPGHighway,
		&vehicle.FuelCapacityGallons,
		&vehicle.CargoWeightLbs,
		&vehicle.DriverID,
		&vehicle.StatusUpdated,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Create adds a new vehicle.
func (r *PostgresRepository) Create(ctx context.Context, vehicle *Vehicle) error {
	query := `
		INSERT INTO vehicles (id, name, type, status, mpg_city, mpg_highway,
			fuel_capacity_gallons, cargo_weight_lbs, driver_id, status_updated,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		vehicle.ID,
		vehicle.Name,
		vehicle.Type,
		vehicle.Status,
		vehicle.MPGCity,
		vehicle.MPGHighway,
		vehicle.FuelCapacityGallons,
		vehicle.CargoWeightLbs,
		vehicle.DriverID,
		vehicle.StatusUpdated,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	return err
}

// Update replaces a vehicle's profile.
func (r *PostgresRepository) Update(ctx context.Context, vehicle *Vehicle) error {
	query := `
		UPDATE vehicles SET
			name = $2,
			type = $3,
			status = $4,
			mpg_city = $5,
			mpg_highway = $6,
			fuel_capacity_gallons = $7,
			cargo_weight_lbs = $8,
			driver_id = $9,
			status_updated = $10,
			updated_at = $11
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		vehicle.ID,
		vehicle.Name,
		vehicle.Type,
		vehicle.Status,
		vehicle.MPGCity,
		vehicle.MPGHighway,
		vehicle.FuelCapacityGallons,
		vehicle.CargoWeightLbs,
		vehicle.DriverID,
		vehicle.StatusUpdated,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

// Delete removes a vehicle.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM vehicles WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
