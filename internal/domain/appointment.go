package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the scheduling state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

// Appointment is a scheduled visit, optionally linked to a vehicle and a
// work order.
type Appointment struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	VehicleID   *uuid.UUID
	WorkOrderID *uuid.UUID
	Notes       *string
	Status      AppointmentStatus
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
