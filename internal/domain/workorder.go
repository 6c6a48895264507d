package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkOrderStatus is the lifecycle state of a work order.
type WorkOrderStatus string

const (
	StatusAwaitingDiagnostic WorkOrderStatus = "AwaitingDiagnostic"
	StatusAwaitingApproval   WorkOrderStatus = "AwaitingApproval"
	StatusApproved           WorkOrderStatus = "Approved"
	StatusAwaitingParts      WorkOrderStatus = "AwaitingParts"
	StatusInProgress         WorkOrderStatus = "InProgress"
	StatusCompleted          WorkOrderStatus = "Completed"
	StatusInvoiced           WorkOrderStatus = "Invoiced"
	StatusDelivered          WorkOrderStatus = "Delivered"
	// StatusDeclined means the customer refused the quote; StatusCancelled
	// covers work stopped for any other reason.
	StatusDeclined  WorkOrderStatus = "Declined"
	StatusCancelled WorkOrderStatus = "Cancelled"
)

// Valid reports whether s is a known status.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingDiagnostic, StatusAwaitingApproval, StatusApproved,
		StatusAwaitingParts, StatusInProgress, StatusCompleted,
		StatusInvoiced, StatusDelivered, StatusDeclined, StatusCancelled:
		return true
	}
	return false
}

// WorkOrderItemType distinguishes parts from labor line items.
type WorkOrderItemType string

const (
	ItemTypePart  WorkOrderItemType = "Part"
	ItemTypeLabor WorkOrderItemType = "Labor"
)

// WorkOrderItem is a single line item. Monetary amounts are euro cents and
// IVARateBP is the IVA rate in basis points (2300 = 23%).
type WorkOrderItem struct {
	Type            WorkOrderItemType `json:"type"`
	Description     string            `json:"description"`
	Reference       string            `json:"reference"`
	Quantity        int32             `json:"quantity"`
	UnitPriceCents  int64             `json:"unit_price_cents"`
	IVARateBP       int32             `json:"iva_rate_bp"`
	TotalPriceCents int64             `json:"total_price_cents"`
}

// Quote is the diagnostic and approval record embedded in a work order.
type Quote struct {
	ClientObservations *string `json:"client_observations,omitempty"`
	Diagnostic         *string `json:"diagnostic,omitempty"`
	IsApproved         bool    `json:"is_approved"`
}

// WorkOrder is the central workshop entity. A vehicle has at most one
// active work order at a time.
type WorkOrder struct {
	ID          uuid.UUID
	Number      string
	ClientID    uuid.UUID
	VehicleID   uuid.UUID
	CreatedByID UserID
	MechanicIDs []UserID
	Status      WorkOrderStatus
	IsActive    bool
	Quote       *Quote
	Items       []WorkOrderItem

	TotalWithoutIVACents *int64
	TotalIVACents        *int64
	TotalWithIVACents    *int64

	EntryDate             time.Time
	DiagnosisRegisteredAt *time.Time
	QuoteApprovedAt       *time.Time
	CompletedAt           *time.Time
	DeliveredAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
