package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// TxRepository holds the writes that may share a transaction.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
	InsertDetails(ctx context.Context, saleID int64, details []SaleDetail) ([]SaleDetail, error)
	GetSale(ctx context.Context, id int64) (Sale, error)
	SaleDetails(ctx context.Context, saleID int64) ([]SaleDetail, error)
	UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus) (Sale, error)
	DeleteSale(ctx context.Context, id int64) (Sale, error)
	InsertExpense(ctx context.Context, expense Expense) (Expense, error)
	ApplyStock(ctx context.Context, in inventory.MovementInput) error
}

// Repository is the ledger's view of the backing store.
type Repository interface {
	TxRepository
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LatestSales(ctx context.Context) ([]SaleSummary, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithDetails, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	SumBalance(ctx context.Context) (Balance, error)
	StockLevels(ctx context.Context, productIDs []int64) (map[int64]int, error)
}

type repository struct {
	db   db.Querier
	pool *pgxpool.Pool
}

// NewRepository builds the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const saleColumns = `id, customer_id, sale_number, sale_date, total, status, payment_method, notes, created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	var status string
	err := row.Scan(&s.ID, &s.CustomerID, &s.SaleNumber, &s.SaleDate, &s.Total, &status, &s.PaymentMethod, &s.Notes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, shared.ErrNotFound
	}
	s.Status = SaleStatus(status)
	return s, err
}

func (r *repository) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO sales (customer_id, sale_number, sale_date, total, status, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+saleColumns,
		sale.CustomerID, sale.SaleNumber, sale.SaleDate, sale.Total, string(sale.Status), sale.PaymentMethod, sale.Notes)
	return scanSale(row)
}

func (r *repository) InsertDetails(ctx context.Context, saleID int64, details []SaleDetail) ([]SaleDetail, error) {
	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(`
			INSERT INTO sales_details (sale_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`, saleID, d.ProductID, d.Quantity, d.UnitPrice, d.Subtotal)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	out := make([]SaleDetail, len(details))
	for i, d := range details {
		d.SaleID = saleID
		if err := results.QueryRow().Scan(&d.ID); err != nil {
			return nil, fmt.Errorf("insert detail %d: %w", i, err)
		}
		out[i] = d
	}
	return out, results.Close()
}

func (r *repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	return scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
}

func (r *repository) SaleDetails(ctx context.Context, saleID int64) ([]SaleDetail, error) {
	rows, err := r.db.Query(ctx, `
		SELECT d.id, d.sale_id, d.product_id, p.name, d.quantity, d.unit_price, d.subtotal
		FROM sales_details d
		JOIN products p ON p.id = d.product_id
		WHERE d.sale_id = $1
		ORDER BY d.id`, saleID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanDetail)
}

func scanDetail(row pgx.CollectableRow) (SaleDetail, error) {
	var d SaleDetail
	err := row.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.ProductName, &d.Quantity, &d.UnitPrice, &d.Subtotal)
	return d, err
}

func (r *repository) UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus) (Sale, error) {
	return scanSale(r.db.QueryRow(ctx, `
		UPDATE sales SET status = $2 WHERE id = $1
		RETURNING `+saleColumns, id, string(status)))
}

// DeleteSale removes the sale; its details go with it through ON DELETE CASCADE.
func (r *repository) DeleteSale(ctx context.Context, id int64) (Sale, error) {
	return scanSale(r.db.QueryRow(ctx, `DELETE FROM sales WHERE id = $1 RETURNING `+saleColumns, id))
}

func (r *repository) InsertExpense(ctx context.Context, e Expense) (Expense, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (amount, category, description, expense_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, expense_date, created_at`,
		e.Amount, e.Category, e.Description, e.ExpenseDate).Scan(&e.ID, &e.ExpenseDate, &e.CreatedAt)
	return e, err
}

func (r *repository) ApplyStock(ctx context.Context, in inventory.MovementInput) error {
	_, err := inventory.ApplyDelta(ctx, r.db, in)
	return err
}

// StockLevels reads current stock without locking; ids missing from the
// result do not exist.
func (r *repository) StockLevels(ctx context.Context, productIDs []int64) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, `SELECT id, stock FROM products WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]int, len(productIDs))
	for rows.Next() {
		var id int64
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, err
		}
		out[id] = stock
	}
	return out, rows.Err()
}

func (r *repository) LatestSales(ctx context.Context) ([]SaleSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sale_number, sale_date, total, status, payment_method, notes, created_at,
		       customer_name, product_name, quantity, unit_price
		FROM latest_sales`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (SaleSummary, error) {
		var s SaleSummary
		var status string
		err := row.Scan(&s.ID, &s.SaleNumber, &s.SaleDate, &s.Total, &status, &s.PaymentMethod, &s.Notes, &s.CreatedAt,
			&s.CustomerName, &s.ProductName, &s.Quantity, &s.UnitPrice)
		s.Status = SaleStatus(status)
		return s, err
	})
}

func (r *repository) ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithDetails, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.customer_id, s.sale_number, s.sale_date, s.total, s.status, s.payment_method, s.notes, s.created_at, c.name
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		WHERE ($1::DATE IS NULL OR s.sale_date >= $1)
		  AND ($2::DATE IS NULL OR s.sale_date <= $2)
		ORDER BY s.sale_date DESC, s.id DESC
		LIMIT $3 OFFSET $4`, filter.From, filter.To, filter.Page.Limit, filter.Page.Offset)
	if err != nil {
		return nil, err
	}
	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SaleWithDetails, error) {
		var s SaleWithDetails
		var status string
		err := row.Scan(&s.ID, &s.CustomerID, &s.SaleNumber, &s.SaleDate, &s.Total, &status, &s.PaymentMethod, &s.Notes, &s.CreatedAt, &s.CustomerName)
		s.Status = SaleStatus(status)
		return s, err
	})
	if err != nil || len(sales) == 0 {
		return sales, err
	}

	ids := make([]int64, len(sales))
	index := make(map[int64]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
	}
	rows, err = r.db.Query(ctx, `
		SELECT d.id, d.sale_id, d.product_id, p.name, d.quantity, d.unit_price, d.subtotal
		FROM sales_details d
		JOIN products p ON p.id = d.product_id
		WHERE d.sale_id = ANY($1)
		ORDER BY d.sale_id, d.id`, ids)
	if err != nil {
		return nil, err
	}
	details, err := pgx.CollectRows(rows, scanDetail)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		i := index[d.SaleID]
		sales[i].Details = append(sales[i].Details, d)
	}
	return sales, nil
}

func (r *repository) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, amount, category, description, expense_date, created_at
		FROM expenses
		WHERE ($1::DATE IS NULL OR expense_date >= $1)
		  AND ($2::DATE IS NULL OR expense_date <= $2)
		ORDER BY expense_date DESC, id DESC
		LIMIT $3 OFFSET $4`, filter.From, filter.To, filter.Page.Limit, filter.Page.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		var e Expense
		err := row.Scan(&e.ID, &e.Amount, &e.Category, &e.Description, &e.ExpenseDate, &e.CreatedAt)
		return e, err
	})
}

// SumBalance aggregates the balance in the store.
func (r *repository) SumBalance(ctx context.Context) (Balance, error) {
	var b Balance
	err := r.db.QueryRow(ctx, `
		SELECT (SELECT COALESCE(SUM(total), 0) FROM sales),
		       (SELECT COALESCE(SUM(amount), 0) FROM expenses)`).Scan(&b.SalesTotal, &b.ExpensesTotal)
	if err != nil {
		return Balance{}, err
	}
	b.Total = b.SalesTotal.Sub(b.ExpensesTotal)
	return b, nil
}
