package inventory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panaderiapro/panaderiapro/internal/platform/db"
)

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	ApplyDelta(ctx context.Context, in MovementInput) (Movement, error)
	InsertMovement(ctx context.Context, in MovementInput) (Movement, error)
}

// Repository persists stock data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	q db.Querier
}

func (t *txRepo) ApplyDelta(ctx context.Context, in MovementInput) (Movement, error) {
	return ApplyDelta(ctx, t.q, in)
}

func (t *txRepo) InsertMovement(ctx context.Context, in MovementInput) (Movement, error) {
	return InsertMovement(ctx, t.q, in)
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

// ListMovements returns movements newest first with the product name embedded.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.product_id, p.name, m.movement_type, m.quantity, m.notes, m.created_at
		FROM stock_movements m
		JOIN products p ON p.id = m.product_id
		WHERE ($1::BIGINT IS NULL OR m.product_id = $1)
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2 OFFSET $3`, filter.ProductID, filter.Page.Limit, filter.Page.Offset)
	if err != nil {
		return nil, fmt.Errorf("inventory: list movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		var kind string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &kind, &m.Quantity, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Type = MovementType(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CurrentStock reads the current_stock view, optionally only low rows.
func (r *Repository) CurrentStock(ctx context.Context, lowOnly bool) ([]StockLevel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, sku, stock, minimum_stock, unit_price, category_name, low_stock
		FROM current_stock
		WHERE NOT $1 OR low_stock
		ORDER BY name`, lowOnly)
	if err != nil {
		return nil, fmt.Errorf("inventory: current stock: %w", err)
	}
	defer rows.Close()

	var out []StockLevel
	for rows.Next() {
		var s StockLevel
		if err := rows.Scan(&s.ProductID, &s.Name, &s.SKU, &s.Stock, &s.MinimumStock, &s.UnitPrice, &s.CategoryName, &s.LowStock); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
