package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AndreFerreira5/starranja/internal/domain"
	domerrors "github.com/AndreFerreira5/starranja/internal/domain/errors"
)

const (
	insertClientSQL = `INSERT INTO clients (id, name, nif, phone, email, street, city, zip_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	selectClientSQL = `SELECT id, name, nif, phone, email, street, city, zip_code, created_at, updated_at
		FROM clients`
	updateClientSQL = `UPDATE clients SET name = $2, nif = $3, phone = $4, email = $5,
		street = $6, city = $7, zip_code = $8, updated_at = NOW() WHERE id = $1`
	deleteClientSQL = `DELETE FROM clients WHERE id = $1`
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	street, city, zip := addressColumns(c.Address)
	_, err := r.pool.Exec(ctx, insertClientSQL,
		c.ID, c.Name, c.NIF, c.Phone, c.Email, street, city, zip, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return scanClient(r.pool.QueryRow(ctx, selectClientSQL+` WHERE id = $1`, id))
}

func (r *ClientRepository) GetByNIF(ctx context.Context, nif string) (*domain.Client, error) {
	return scanClient(r.pool.QueryRow(ctx, selectClientSQL+` WHERE nif = $1`, nif))
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*domain.Client, error) {
	rows, err := r.pool.Query(ctx, selectClientSQL+` ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	street, city, zip := addressColumns(c.Address)
	tag, err := r.pool.Exec(ctx, updateClientSQL,
		c.ID, c.Name, c.NIF, c.Phone, c.Email, street, city, zip)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteClientSQL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c                 domain.Client
		street, city, zip *string
	)
	err := row.Scan(&c.ID, &c.Name, &c.NIF, &c.Phone, &c.Email,
		&street, &city, &zip, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if street != nil || city != nil || zip != nil {
		c.Address = &domain.Address{}
		if street != nil {
			c.Address.Street = *street
		}
		if city != nil {
			c.Address.City = *city
		}
		if zip != nil {
			c.Address.ZipCode = *zip
		}
	}
	return &c, nil
}

func addressColumns(a *domain.Address) (street, city, zip *string) {
	if a == nil {
		return nil, nil, nil
	}
	if a.Street != "" {
		street = &a.Street
	}
	if a.City != "" {
		city = &a.City
	}
	if a.ZipCode != "" {
		zip = &a.ZipCode
	}
	return street, city, zip
}
