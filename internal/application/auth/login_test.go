package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
	infraauth "github.com/AndreFerreira5/starranja/internal/infrastructure/auth"
	"github.com/AndreFerreira5/starranja/internal/infrastructure/security"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type fakeUserRepo struct {
	byUsername map[string]*domain.User
	roles      map[string][]domain.Role
	created    []*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byUsername: make(map[string]*domain.User),
		roles:      make(map[string][]domain.Role),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User, roleNames []string) error {
	f.byUsername[user.Username] = user
	for i, name := range roleNames {
		f.roles[user.ID.String()] = append(f.roles[user.ID.String()], domain.Role{ID: int32(i + 1), Name: name})
	}
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.byUsername[username], nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	for _, u := range f.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetRolesByUserID(_ context.Context, id domain.UserID) ([]domain.Role, error) {
	return f.roles[id.String()], nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id domain.UserID, passwordHash string) error {
	for _, u := range f.byUsername {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return domerrors.ErrNotFound
}

func testHasher(t *testing.T, timeCost uint32) *security.PasswordService {
	t.Helper()
	svc, err := security.NewPasswordService(security.Params{
		TimeCost:    timeCost,
		MemoryCost:  8192,
		Parallelism: 1,
		HashLength:  32,
		SaltLength:  16,
	}, security.Policy{MinLength: 8, MaxLength: 128})
	require.NoError(t, err)
	return svc
}

func testIssuer(t *testing.T) *infraauth.TokenService {
	t.Helper()
	svc, err := infraauth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)
	return svc
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := testHasher(t, 1)
	issuer := testIssuer(t)

	register := NewRegister(repo, hasher)
	_, err := register.Execute(context.Background(), RegisterInput{
		Username: "joao",
		Password: "Sample123!",
		FullName: "João Silva",
		Role:     domain.RoleMecanico,
	})
	require.NoError(t, err)

	login := NewLogin(repo, hasher, issuer, zerolog.Nop())
	result, err := login.Execute(context.Background(), LoginInput{Username: "joao", Password: "Sample123!"})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.Equal(t, []string{domain.RoleMecanico}, result.Roles)

	claims, err := issuer.Verify(result.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.User.ID.String(), claims.UserID)
	require.Equal(t, []string{domain.RoleMecanico}, claims.Roles)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := testHasher(t, 1)
	issuer := testIssuer(t)

	register := NewRegister(repo, hasher)
	_, err := register.Execute(context.Background(), RegisterInput{
		Username: "joao", Password: "Sample123!", FullName: "João Silva", Role: domain.RoleMecanico,
	})
	require.NoError(t, err)

	login := NewLogin(repo, hasher, issuer, zerolog.Nop())
	_, err = login.Execute(context.Background(), LoginInput{Username: "joao", Password: "wrong-guess"})
	require.ErrorIs(t, err, domerrors.ErrInvalidCredentials)

	_, err = login.Execute(context.Background(), LoginInput{Username: "nobody", Password: "Sample123!"})
	require.ErrorIs(t, err, domerrors.ErrInvalidCredentials)
}

func TestLoginNoRoles(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := testHasher(t, 1)
	issuer := testIssuer(t)

	register := NewRegister(repo, hasher)
	result, err := register.Execute(context.Background(), RegisterInput{
		Username: "joao", Password: "Sample123!", FullName: "João Silva", Role: domain.RoleMecanico,
	})
	require.NoError(t, err)
	repo.roles[result.User.ID.String()] = nil

	login := NewLogin(repo, hasher, issuer, zerolog.Nop())
	_, err = login.Execute(context.Background(), LoginInput{Username: "joao", Password: "Sample123!"})
	require.ErrorIs(t, err, domerrors.ErrNoRoles)
}

func TestLoginOpportunisticRehash(t *testing.T) {
	repo := newFakeUserRepo()
	weak := testHasher(t, 1)
	strong := testHasher(t, 2)
	issuer := testIssuer(t)

	register := NewRegister(repo, weak)
	_, err := register.Execute(context.Background(), RegisterInput{
		Username: "joao", Password: "Sample123!", FullName: "João Silva", Role: domain.RoleMecanico,
	})
	require.NoError(t, err)
	oldHash := repo.byUsername["joao"].PasswordHash

	// login through the service configured with stronger parameters
	login := NewLogin(repo, strong, issuer, zerolog.Nop())
	_, err = login.Execute(context.Background(), LoginInput{Username: "joao", Password: "Sample123!"})
	require.NoError(t, err)

	newHash := repo.byUsername["joao"].PasswordHash
	require.NotEqual(t, oldHash, newHash, "stored hash should be upgraded on login")
	ok, err := strong.CheckPassword(newHash, "Sample123!")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := testHasher(t, 1)

	register := NewRegister(repo, hasher)
	_, err := register.Execute(context.Background(), RegisterInput{
		Username: "joao", Password: "Sample123!", FullName: "João Silva", Role: domain.RoleMecanico,
	})
	require.NoError(t, err)

	_, err = register.Execute(context.Background(), RegisterInput{
		Username: "joao", Password: "Other123!", FullName: "Outro João", Role: domain.RoleGerente,
	})
	require.ErrorIs(t, err, domerrors.ErrUserExists)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	repo := newFakeUserRepo()
	hasher := testHasher(t, 1)

	register := NewRegister(repo, hasher)
	_, err := register.Execute(context.Background(), RegisterInput{
		Username: "joao", Password: "short", FullName: "João Silva", Role: domain.RoleMecanico,
	})
	require.Error(t, err)
	require.Empty(t, repo.created)
}
