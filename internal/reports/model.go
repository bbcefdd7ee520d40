package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport is the per-day ledger summary.
type DailyReport struct {
	ID            int64           `json:"id"`
	ReportDate    time.Time       `json:"report_date"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	SalesCount    int             `json:"sales_count"`
	ExpensesCount int             `json:"expenses_count"`
	Balance       decimal.Decimal `json:"balance"`
	Notes         *string         `json:"notes,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DayTotals are the ledger aggregates a daily report is built from.
type DayTotals struct {
	TotalSales    decimal.Decimal
	TotalExpenses decimal.Decimal
	SalesCount    int
	ExpensesCount int
}

// CategorySales is one row of the sales_by_category view.
type CategorySales struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	SalesCount   int             `json:"sales_count"`
	Units        int64           `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Range is an inclusive report_date range; nil bounds are open.
type Range struct {
	From *time.Time
	To   *time.Time
}
