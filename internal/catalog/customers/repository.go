package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type Repository interface {
	Create(ctx context.Context, in AddCustomerInput) (Customer, error)
	ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]Customer, error)
	Deactivate(ctx context.Context, id int64) (Customer, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `id, name, email, phone, active, created_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, in AddCustomerInput) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, email, phone, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING `+customerColumns, in.Name, in.Email, in.Phone))
}

func (r *repository) ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE active AND ($1::TEXT IS NULL OR name ILIKE $1 OR email ILIKE $1)
		ORDER BY name`, filters.SearchPattern())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Customer, error) {
		return scanCustomer(row)
	})
}

// Deactivate soft-deletes a customer; rows are never removed.
func (r *repository) Deactivate(ctx context.Context, id int64) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx, `
		UPDATE customers SET active = FALSE WHERE id = $1
		RETURNING `+customerColumns, id))
}
