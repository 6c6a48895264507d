package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndreFerreira5/starranja/internal/domain"
)

const (
	insertUserSQL = `INSERT INTO users (id, username, email, password_hash, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectUserSQL = `SELECT id, username, email, password_hash, full_name, created_at, updated_at
		FROM users`
	selectRolesByUserSQL = `SELECT r.id, r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1 ORDER BY r.id`
	insertUserRoleSQL = `INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2`
	updatePasswordHashSQL = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts the user and attaches its roles in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *domain.User, roleNames []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertUserSQL,
		user.ID.UUID, user.Username, user.Email, user.PasswordHash,
		user.FullName, user.CreatedAt, user.UpdatedAt); err != nil {
		return err
	}
	for _, name := range roleNames {
		tag, err := tx.Exec(ctx, insertUserRoleSQL, user.ID.UUID, name)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return errors.New("unknown role: " + name)
		}
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUserSQL+` WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id.UUID)
	return scanUser(row)
}

func (r *UserRepository) GetRolesByUserID(ctx context.Context, id domain.UserID) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, selectRolesByUserSQL, id.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id domain.UserID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, updatePasswordHashSQL, passwordHash, id.UUID)
	return err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID.UUID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
