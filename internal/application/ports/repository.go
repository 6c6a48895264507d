package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AndreFerreira5/starranja/internal/domain"
)

// UserRepository defines persistence for users and their roles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User, roleNames []string) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetRolesByUserID(ctx context.Context, id domain.UserID) ([]domain.Role, error)
	UpdatePasswordHash(ctx context.Context, id domain.UserID, passwordHash string) error
}

// ClientRepository defines persistence for workshop clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetByNIF(ctx context.Context, nif string) (*domain.Client, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VehicleRepository defines persistence for vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error)
	GetByLicensePlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// WorkOrderRepository defines persistence for work orders.
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *domain.WorkOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error)
	GetActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (*domain.WorkOrder, error)
	List(ctx context.Context, status domain.WorkOrderStatus, limit, offset int) ([]*domain.WorkOrder, error)
	Update(ctx context.Context, wo *domain.WorkOrder) error
	NextNumber(ctx context.Context) (string, error)
}

// InvoiceRepository defines persistence for invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Invoice, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error
}

// AppointmentRepository defines persistence for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error)
	ListBetween(ctx context.Context, from, to time.Time, limit, offset int) ([]*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) error
}
