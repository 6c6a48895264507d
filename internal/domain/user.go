package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// User is a workshop staff account. PasswordHash is the opaque PHC-encoded
// Argon2id string owned by the password service; nothing else parses it.
type User struct {
	ID           UserID
	Username     string
	Email        *string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is an authorization role attached to a user.
type Role struct {
	ID   int32
	Name string
}

// Predefined role names.
const (
	RoleMecanico        = "mecanico"
	RoleMecanicoGerente = "mecanico_gerente"
	RoleGerente         = "gerente"
	RoleAdmin           = "admin"
)
