package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle belongs to a client. LicensePlate and VIN are unique.
type Vehicle struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	LicensePlate string
	Brand        string
	Model        string
	Kilometers   int32
	VIN          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
