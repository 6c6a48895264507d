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
	insertWorkOrderSQL = `INSERT INTO work_orders (id, number, client_id, vehicle_id, created_by_id,
		mechanic_ids, status, is_active, quote, items,
		total_without_iva_cents, total_iva_cents, total_with_iva_cents,
		entry_date, diagnosis_registered_at, quote_approved_at, completed_at, delivered_at,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	selectWorkOrderSQL = `SELECT id, number, client_id, vehicle_id, created_by_id,
		mechanic_ids, status, is_active, quote, items,
		total_without_iva_cents, total_iva_cents, total_with_iva_cents,
		entry_date, diagnosis_registered_at, quote_approved_at, completed_at, delivered_at,
		created_at, updated_at
		FROM work_orders`
	updateWorkOrderSQL = `UPDATE work_orders SET mechanic_ids = $2, status = $3, is_active = $4,
		quote = $5, items = $6,
		total_without_iva_cents = $7, total_iva_cents = $8, total_with_iva_cents = $9,
		diagnosis_registered_at = $10, quote_approved_at = $11, completed_at = $12, delivered_at = $13,
		updated_at = NOW()
		WHERE id = $1`
	nextWorkOrderNumberSQL = `SELECT 'OS-' || to_char(NOW(), 'YYYY') || '-' ||
		lpad(nextval('work_order_number_seq')::text, 5, '0')`
)

type WorkOrderRepository struct {
	pool *pgxpool.Pool
}

func NewWorkOrderRepository(pool *pgxpool.Pool) *WorkOrderRepository {
	return &WorkOrderRepository{pool: pool}
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo *domain.WorkOrder) error {
	mechanics, quote, items, err := workOrderJSON(wo)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertWorkOrderSQL,
		wo.ID, wo.Number, wo.ClientID, wo.VehicleID, wo.CreatedByID.UUID,
		mechanics, wo.Status, wo.IsActive, quote, items,
		wo.TotalWithoutIVACents, wo.TotalIVACents, wo.TotalWithIVACents,
		wo.EntryDate, wo.DiagnosisRegisteredAt, wo.QuoteApprovedAt, wo.CompletedAt, wo.DeliveredAt,
		wo.CreatedAt, wo.UpdatedAt)
	return err
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	return scanWorkOrder(r.pool.QueryRow(ctx, selectWorkOrderSQL+` WHERE id = $1`, id))
}

// GetActiveByVehicle returns the vehicle's open work order, if any. A
// partial unique index on (vehicle_id) WHERE is_active guarantees at most
// one row.
func (r *WorkOrderRepository) GetActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.WorkOrder, error) {
	return scanWorkOrder(r.pool.QueryRow(ctx,
		selectWorkOrderSQL+` WHERE vehicle_id = $1 AND is_active`, vehicleID))
}

func (r *WorkOrderRepository) List(ctx context.Context, status domain.WorkOrderStatus, limit, offset int) ([]*domain.WorkOrder, error) {
	query := selectWorkOrderSQL + ` WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, wo)
	}
	return list, rows.Err()
}

func (r *WorkOrderRepository) Update(ctx context.Context, wo *domain.WorkOrder) error {
	mechanics, quote, items, err := workOrderJSON(wo)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, updateWorkOrderSQL,
		wo.ID, mechanics, wo.Status, wo.IsActive, quote, items,
		wo.TotalWithoutIVACents, wo.TotalIVACents, wo.TotalWithIVACents,
		wo.DiagnosisRegisteredAt, wo.QuoteApprovedAt, wo.CompletedAt, wo.DeliveredAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func (r *WorkOrderRepository) NextNumber(ctx context.Context) (string, error) {
	var number string
	if err := r.pool.QueryRow(ctx, nextWorkOrderNumberSQL).Scan(&number); err != nil {
		return "", err
	}
	return number, nil
}

func workOrderJSON(wo *domain.WorkOrder) (mechanics, quote, items []byte, err error) {
	ids := make([]uuid.UUID, 0, len(wo.MechanicIDs))
	for _, m := range wo.MechanicIDs {
		ids = append(ids, m.UUID)
	}
	if mechanics, err = json.Marshal(ids); err != nil {
		return nil, nil, nil, err
	}
	if wo.Quote != nil {
		if quote, err = json.Marshal(wo.Quote); err != nil {
			return nil, nil, nil, err
		}
	}
	if wo.Items == nil {
		items = []byte(`[]`)
	} else if items, err = json.Marshal(wo.Items); err != nil {
		return nil, nil, nil, err
	}
	return mechanics, quote, items, nil
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var (
		wo        domain.WorkOrder
		mechanics []byte
		quote     []byte
		items     []byte
	)
	err := row.Scan(&wo.ID, &wo.Number, &wo.ClientID, &wo.VehicleID, &wo.CreatedByID.UUID,
		&mechanics, &wo.Status, &wo.IsActive, &quote, &items,
		&wo.TotalWithoutIVACents, &wo.TotalIVACents, &wo.TotalWithIVACents,
		&wo.EntryDate, &wo.DiagnosisRegisteredAt, &wo.QuoteApprovedAt, &wo.CompletedAt, &wo.DeliveredAt,
		&wo.CreatedAt, &wo.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var ids []uuid.UUID
	if len(mechanics) > 0 {
		if err := json.Unmarshal(mechanics, &ids); err != nil {
			return nil, err
		}
	}
	for _, id := range ids {
		wo.MechanicIDs = append(wo.MechanicIDs, domain.UserID{UUID: id})
	}
	if len(quote) > 0 {
		wo.Quote = &domain.Quote{}
		if err := json.Unmarshal(quote, wo.Quote); err != nil {
			return nil, err
		}
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &wo.Items); err != nil {
			return nil, err
		}
	}
	return &wo, nil
}
