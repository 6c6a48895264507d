package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AndreFerreira5/starranja/internal/application/ports"
	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    *string
	Role     string
}

type RegisterResult struct {
	User *domain.User
}

// Register creates a staff account with a single initial role. Password
// policy enforcement and hashing live in the password service; this use
// case owns uniqueness.
type Register struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher) *Register {
	return &Register{users: users, hasher: hasher}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	username := strings.TrimSpace(input.Username)

	existing, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}

	hash, err := uc.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Username:     username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user, []string{input.Role}); err != nil {
		return nil, err
	}
	return &RegisterResult{User: user}, nil
}
