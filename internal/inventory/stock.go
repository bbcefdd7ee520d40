package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// ApplyDelta changes a product's stock by in.Quantity and appends the matching
// movement row, both through q. Callers pass a pgx.Tx so the stock change
// commits or rolls back with their own writes. Stock never drops below zero.
func ApplyDelta(ctx context.Context, q db.Querier, in MovementInput) (Movement, error) {
	var stock int
	err := q.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock`, in.ProductID, in.Quantity).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, in.ProductID).Scan(&exists); err != nil {
			return Movement{}, fmt.Errorf("inventory: check product: %w", err)
		}
		if !exists {
			return Movement{}, shared.Validation("product_id", fmt.Sprintf("unknown product %d", in.ProductID))
		}
		return Movement{}, shared.Validation("quantity", fmt.Sprintf("insufficient stock for product %d", in.ProductID))
	}
	if err != nil {
		return Movement{}, fmt.Errorf("inventory: update stock: %w", err)
	}
	return InsertMovement(ctx, q, in)
}

// InsertMovement appends a movement row without touching product stock.
func InsertMovement(ctx context.Context, q db.Querier, in MovementInput) (Movement, error) {
	m := Movement{ProductID: in.ProductID, Type: in.Type, Quantity: in.Quantity, Notes: in.Notes}
	err := q.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, movement_type, quantity, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, in.ProductID, string(in.Type), in.Quantity, in.Notes).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return Movement{}, fmt.Errorf("inventory: insert movement: %w", err)
	}
	return m, nil
}
