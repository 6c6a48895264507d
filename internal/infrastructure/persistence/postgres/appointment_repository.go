package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const (
	insertAppointmentSQL = `INSERT INTO appointments (id, client_id, vehicle_id, work_order_id, notes, status, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	selectAppointmentSQL = `SELECT id, client_id, vehicle_id, work_order_id, notes, status, date, created_at, updated_at
		FROM appointments`
	updateAppointmentSQL = `UPDATE appointments SET vehicle_id = $2, work_order_id = $3, notes = $4,
		status = $5, date = $6, updated_at = NOW() WHERE id = $1`
)

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	_, err := r.pool.Exec(ctx, insertAppointmentSQL,
		appt.ID, appt.ClientID, appt.VehicleID, appt.WorkOrderID,
		appt.Notes, appt.Status, appt.Date, appt.CreatedAt, appt.UpdatedAt)
	return err
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, selectAppointmentSQL+` WHERE id = $1`, id))
}

func (r *AppointmentRepository) ListBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.Appointment, error) {
	rows, err := r.pool.Query(ctx,
		selectAppointmentSQL+` WHERE date >= $1 AND date < $2 ORDER BY date LIMIT $3 OFFSET $4`,
		from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, appt)
	}
	return list, rows.Err()
}

func (r *AppointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	tag, err := r.pool.Exec(ctx, updateAppointmentSQL,
		appt.ID, appt.VehicleID, appt.WorkOrderID, appt.Notes, appt.Status, appt.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(&a.ID, &a.ClientID, &a.VehicleID, &a.WorkOrderID,
		&a.Notes, &a.Status, &a.Date, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
