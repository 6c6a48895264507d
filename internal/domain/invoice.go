package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceEmitted  InvoiceStatus = "Emitted"
	InvoicePaid     InvoiceStatus = "Paid"
	InvoiceCanceled InvoiceStatus = "Canceled"
)

// Invoice is a finalized billing record. Client, vehicle, and item data are
// snapshots taken at emission time; the invoice stays valid even when the
// source records change later.
type Invoice struct {
	ID          uuid.UUID
	Number      string
	WorkOrderID uuid.UUID
	ClientID    uuid.UUID
	EmittedByID UserID

	ClientName    string
	ClientNIF     string
	ClientAddress *Address
	VehiclePlate  string
	VehicleBrand  string
	VehicleModel  string

	Items []WorkOrderItem

	TotalWithoutIVACents int64
	TotalIVACents        int64
	TotalWithIVACents    int64

	Status      InvoiceStatus
	InvoiceDate time.Time
	CreatedAt   time.Time
}
