package suppliers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListActive(ctx context.Context) ([]Supplier, error)
	Create(ctx context.Context, in AddSupplierInput) (Supplier, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const supplierColumns = `id, name, contact, email, phone, active, created_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Email, &s.Phone, &s.Active, &s.CreatedAt)
	return s, err
}

func (r *repository) ListActive(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE active ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Supplier, error) {
		return scanSupplier(row)
	})
}

func (r *repository) Create(ctx context.Context, in AddSupplierInput) (Supplier, error) {
	return scanSupplier(r.pool.QueryRow(ctx, `
		INSERT INTO suppliers (name, contact, email, phone, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING `+supplierColumns, in.Name, in.Contact, in.Email, in.Phone))
}
