package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// TxRepository holds the statements of a rebuild.
type TxRepository interface {
	DayTotals(ctx context.Context, day time.Time) (DayTotals, error)
	UpsertDaily(ctx context.Context, report DailyReport) (DailyReport, error)
}

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListDaily(ctx context.Context, rng Range) ([]DailyReport, error)
	UpdateNotes(ctx context.Context, day time.Time, notes *string) (DailyReport, error)
	SalesByCategory(ctx context.Context) ([]CategorySales, error)
	RefreshViews(ctx context.Context) error
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

const dailyColumns = `id, report_date, total_sales, total_expenses, sales_count, expenses_count, balance, notes, updated_at`

func scanDaily(row pgx.Row) (DailyReport, error) {
	var d DailyReport
	err := row.Scan(&d.ID, &d.ReportDate, &d.TotalSales, &d.TotalExpenses, &d.SalesCount,
		&d.ExpensesCount, &d.Balance, &d.Notes, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyReport{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) ListDaily(ctx context.Context, rng Range) ([]DailyReport, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+dailyColumns+`
		FROM daily_reports
		WHERE ($1::DATE IS NULL OR report_date >= $1)
		  AND ($2::DATE IS NULL OR report_date <= $2)
		ORDER BY report_date DESC`, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (DailyReport, error) {
		return scanDaily(row)
	})
}

func (r *repository) UpdateNotes(ctx context.Context, day time.Time, notes *string) (DailyReport, error) {
	return scanDaily(r.db.QueryRow(ctx, `
		UPDATE daily_reports SET notes = $2, updated_at = now()
		WHERE report_date = $1
		RETURNING `+dailyColumns, day, notes))
}

// DayTotals sums every sale and expense dated day, matching the balance rule.
func (r *repository) DayTotals(ctx context.Context, day time.Time) (DayTotals, error) {
	var t DayTotals
	err := r.db.QueryRow(ctx, `
		SELECT (SELECT COALESCE(SUM(total), 0) FROM sales WHERE sale_date = $1),
		       (SELECT COUNT(*) FROM sales WHERE sale_date = $1),
		       (SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE expense_date = $1),
		       (SELECT COUNT(*) FROM expenses WHERE expense_date = $1)`, day).
		Scan(&t.TotalSales, &t.SalesCount, &t.TotalExpenses, &t.ExpensesCount)
	return t, err
}

// UpsertDaily writes the aggregates for report.ReportDate and keeps existing notes.
func (r *repository) UpsertDaily(ctx context.Context, d DailyReport) (DailyReport, error) {
	return scanDaily(r.db.QueryRow(ctx, `
		INSERT INTO daily_reports (report_date, total_sales, total_expenses, sales_count, expenses_count, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (report_date) DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			total_expenses = EXCLUDED.total_expenses,
			sales_count = EXCLUDED.sales_count,
			expenses_count = EXCLUDED.expenses_count,
			balance = EXCLUDED.balance,
			updated_at = now()
		RETURNING `+dailyColumns,
		d.ReportDate, d.TotalSales, d.TotalExpenses, d.SalesCount, d.ExpensesCount, d.Balance))
}

func (r *repository) SalesByCategory(ctx context.Context) ([]CategorySales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT category_id, category_name, sales_count, units, revenue
		FROM sales_by_category
		ORDER BY revenue DESC, category_name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CategorySales, error) {
		var c CategorySales
		err := row.Scan(&c.CategoryID, &c.CategoryName, &c.SalesCount, &c.Units, &c.Revenue)
		return c, err
	})
}

// RefreshViews rebuilds the materialized views without blocking readers.
func (r *repository) RefreshViews(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY sales_by_category`)
	return err
}
