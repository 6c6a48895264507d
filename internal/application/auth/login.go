package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AndreFerreira5/starranja/internal/application/ports"
	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	AccessToken string
	User        *domain.User
	Roles       []string
}

// Login verifies credentials and mints an access token carrying the user's
// roles. A hash stored under stale cost parameters is upgraded
// opportunistically on success.
type Login struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
	log    zerolog.Logger
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, log zerolog.Logger) *Login {
	return &Login{users: users, hasher: hasher, issuer: issuer, log: log}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrInvalidCredentials
	}

	valid, newHash, err := uc.hasher.VerifyAndUpdate(user.PasswordHash, input.Password)
	if err != nil {
		// corrupt stored hash, not a wrong password; surfaces as a
		// system fault rather than an auth rejection
		return nil, err
	}
	if !valid {
		return nil, domerrors.ErrInvalidCredentials
	}
	if newHash != "" {
		// best effort: a failed upgrade never blocks the login
		if err := uc.users.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("persist rehashed password")
		} else {
			user.PasswordHash = newHash
		}
	}

	dbRoles, err := uc.users.GetRolesByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(dbRoles) == 0 {
		return nil, domerrors.ErrNoRoles
	}
	roles := make([]string, 0, len(dbRoles))
	for _, r := range dbRoles {
		roles = append(roles, r.Name)
	}

	token, err := uc.issuer.Generate(user.ID.String(), roles)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: user, Roles: roles}, nil
}
