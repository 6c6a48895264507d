package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const (
	insertInvoiceSQL = `INSERT INTO invoices (id, number, work_order_id, client_id, emitted_by_id,
		client_name, client_nif, client_street, client_city, client_zip_code,
		vehicle_plate, vehicle_brand, vehicle_model, items,
		total_without_iva_cents, total_iva_cents, total_with_iva_cents,
		status, invoice_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	selectInvoiceSQL = `SELECT id, number, work_order_id, client_id, emitted_by_id,
		client_name, client_nif, client_street, client_city, client_zip_code,
		vehicle_plate, vehicle_brand, vehicle_model, items,
		total_without_iva_cents, total_iva_cents, total_with_iva_cents,
		status, invoice_date, created_at
		FROM invoices`
	updateInvoiceStatusSQL = `UPDATE invoices SET status = $2 WHERE id = $1`
)

type InvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return err
	}
	street, city, zip := addressColumns(inv.ClientAddress)
	_, err = r.pool.Exec(ctx, insertInvoiceSQL,
		inv.ID, inv.Number, inv.WorkOrderID, inv.ClientID, inv.EmittedByID.UUID,
		inv.ClientName, inv.ClientNIF, street, city, zip,
		inv.VehiclePlate, inv.VehicleBrand, inv.VehicleModel, items,
		inv.TotalWithoutIVACents, inv.TotalIVACents, inv.TotalWithIVACents,
		inv.Status, inv.InvoiceDate, inv.CreatedAt)
	return err
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, selectInvoiceSQL+` WHERE id = $1`, id))
}

func (r *InvoiceRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Invoice, error) {
	rows, err := r.pool.Query(ctx,
		selectInvoiceSQL+` WHERE client_id = $1 ORDER BY invoice_date DESC LIMIT $2 OFFSET $3`,
		clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

func (r *InvoiceRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	tag, err := r.pool.Exec(ctx, updateInvoiceStatusSQL, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv               domain.Invoice
		street, city, zip *string
		items             []byte
	)
	err := row.Scan(&inv.ID, &inv.Number, &inv.WorkOrderID, &inv.ClientID, &inv.EmittedByID.UUID,
		&inv.ClientName, &inv.ClientNIF, &street, &city, &zip,
		&inv.VehiclePlate, &inv.VehicleBrand, &inv.VehicleModel, &items,
		&inv.TotalWithoutIVACents, &inv.TotalIVACents, &inv.TotalWithIVACents,
		&inv.Status, &inv.InvoiceDate, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if street != nil || city != nil || zip != nil {
		inv.ClientAddress = &domain.Address{}
		if street != nil {
			inv.ClientAddress.Street = *street
		}
		if city != nil {
			inv.ClientAddress.City = *city
		}
		if zip != nil {
			inv.ClientAddress.ZipCode = *zip
		}
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, err
		}
	}
	return &inv, nil
}
