package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const (
	insertVehicleSQL = `INSERT INTO vehicles (id, client_id, license_plate, brand, model, kilometers, vin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	selectVehicleSQL = `SELECT id, client_id, license_plate, brand, model, kilometers, vin, created_at, updated_at
		FROM vehicles`
	updateVehicleSQL = `UPDATE vehicles SET license_plate = $2, brand = $3, model = $4,
		kilometers = $5, vin = $6, updated_at = NOW() WHERE id = $1`
	deleteVehicleSQL = `DELETE FROM vehicles WHERE id = $1`
)

type VehicleRepository struct {
	pool *pgxpool.Pool
}

func NewVehicleRepository(pool *pgxpool.Pool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

func (r *VehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	_, err := r.pool.Exec(ctx, insertVehicleSQL,
		v.ID, v.ClientID, v.LicensePlate, v.Brand, v.Model, v.Kilometers, v.VIN, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	return scanVehicle(r.pool.QueryRow(ctx, selectVehicleSQL+` WHERE id = $1`, id))
}

func (r *VehicleRepository) GetByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	return scanVehicle(r.pool.QueryRow(ctx, selectVehicleSQL+` WHERE license_plate = $1`, plate))
}

func (r *VehicleRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Vehicle, error) {
	rows, err := r.pool.Query(ctx, selectVehicleSQL+` WHERE client_id = $1 ORDER BY created_at`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func (r *VehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	tag, err := r.pool.Exec(ctx, updateVehicleSQL,
		v.ID, v.LicensePlate, v.Brand, v.Model, v.Kilometers, v.VIN)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteVehicleSQL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(&v.ID, &v.ClientID, &v.LicensePlate, &v.Brand, &v.Model,
		&v.Kilometers, &v.VIN, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
