package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// TxRepository is the transactional view used by stock overwrites.
type TxRepository interface {
	LockStock(ctx context.Context, id int64) (int, error)
	SetStock(ctx context.Context, id int64, stock int) (Product, error)
	RecordAdjustment(ctx context.Context, in inventory.MovementInput) error
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, in CreateProductInput) (Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.unit_price, p.stock, p.minimum_stock,
	       p.sku, p.category_id, c.name, p.active, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.UnitPrice, &p.Stock, &p.MinimumStock,
		&p.SKU, &p.CategoryID, &p.CategoryName, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func getProduct(ctx context.Context, q db.Querier, id int64) (Product, error) {
	return scanProduct(q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
}

func (r *repository) ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]Product, error) {
	rows, err := r.pool.Query(ctx, productSelect+`
		WHERE p.active AND ($1::TEXT IS NULL OR p.name ILIKE $1 OR p.sku ILIKE $1)
		ORDER BY p.name, p.id`, filters.SearchPattern())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		return scanProduct(row)
	})
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return getProduct(ctx, r.pool, id)
}

func (r *repository) Create(ctx context.Context, in CreateProductInput) (Product, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, unit_price, stock, minimum_stock, sku, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		in.Name, in.Description, in.UnitPrice, in.Stock, in.MinimumStock, in.SKU, in.CategoryID).Scan(&id)
	if err != nil {
		return Product{}, err
	}
	return getProduct(ctx, r.pool, id)
}

func (t *txRepository) LockStock(ctx context.Context, id int64) (int, error) {
	var stock int
	err := t.tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, shared.ErrNotFound
	}
	return stock, err
}

func (t *txRepository) SetStock(ctx context.Context, id int64, stock int) (Product, error) {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return Product{}, shared.ErrNotFound
	}
	return getProduct(ctx, t.tx, id)
}

func (t *txRepository) RecordAdjustment(ctx context.Context, in inventory.MovementInput) error {
	_, err := inventory.InsertMovement(ctx, t.tx, in)
	return err
}
