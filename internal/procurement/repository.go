package procurement

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
)

// TxRepository holds the writes that make up a purchase.
type TxRepository interface {
	InsertPurchase(ctx context.Context, p Purchase) (Purchase, error)
	InsertDetails(ctx context.Context, purchaseID int64, details []PurchaseDetail) ([]PurchaseDetail, error)
	ApplyStock(ctx context.Context, in inventory.MovementInput) error
}

// Repository is the full procurement store surface.
type Repository interface {
	TxRepository
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, error)
}

type repository struct {
	db   db.Querier
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) InsertPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO purchases (supplier_id, purchase_number, purchase_date, total, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		p.SupplierID, p.PurchaseNumber, p.PurchaseDate, p.Total, p.Status, p.Notes).Scan(&p.ID, &p.CreatedAt)
	return p, err
}

func (r *repository) InsertDetails(ctx context.Context, purchaseID int64, details []PurchaseDetail) ([]PurchaseDetail, error) {
	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(`
			INSERT INTO purchases_details (purchase_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`, purchaseID, d.ProductID, d.Quantity, d.UnitPrice, d.Subtotal)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]PurchaseDetail, len(details))
	for i, d := range details {
		d.PurchaseID = purchaseID
		if err := results.QueryRow().Scan(&d.ID); err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (r *repository) ApplyStock(ctx context.Context, in inventory.MovementInput) error {
	_, err := inventory.ApplyDelta(ctx, r.db, in)
	return err
}

// ListPurchases returns purchases newest first with supplier name and details.
func (r *repository) ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.supplier_id, s.name, p.purchase_number, p.purchase_date, p.total,
		       p.status, p.notes, p.created_at
		FROM purchases p
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE ($1::BIGINT IS NULL OR p.supplier_id = $1)
		ORDER BY p.purchase_date DESC, p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3`, filter.SupplierID, filter.Page.Limit, filter.Page.Offset)
	if err != nil {
		return nil, err
	}
	purchases, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Purchase, error) {
		var p Purchase
		err := row.Scan(&p.ID, &p.SupplierID, &p.SupplierName, &p.PurchaseNumber, &p.PurchaseDate,
			&p.Total, &p.Status, &p.Notes, &p.CreatedAt)
		p.Details = []PurchaseDetail{}
		return p, err
	})
	if err != nil || len(purchases) == 0 {
		return purchases, err
	}

	ids := make([]int64, len(purchases))
	index := make(map[int64]int, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
		index[p.ID] = i
	}
	rows, err = r.db.Query(ctx, `
		SELECT d.id, d.purchase_id, d.product_id, pr.name, d.quantity, d.unit_price, d.subtotal
		FROM purchases_details d
		JOIN products pr ON pr.id = d.product_id
		WHERE d.purchase_id = ANY($1)
		ORDER BY d.purchase_id, d.id`, ids)
	if err != nil {
		return nil, err
	}
	details, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PurchaseDetail, error) {
		var d PurchaseDetail
		err := row.Scan(&d.ID, &d.PurchaseID, &d.ProductID, &d.ProductName, &d.Quantity, &d.UnitPrice, &d.Subtotal)
		return d, err
	})
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		i := index[d.PurchaseID]
		purchases[i].Details = append(purchases[i].Details, d)
	}
	return purchases, nil
}
