package domain

import (
	"time"

	"github.com/google/uuid"
)

// Address is a postal address embedded in clients and invoice snapshots.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}

// Client is a workshop customer. NIF is the fiscal number and is unique.
type Client struct {
	ID        uuid.UUID
	Name      string
	NIF       string
	Phone     string
	Email     *string
	Address   *Address
	CreatedAt time.Time
	UpdatedAt time.Time
}
