package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Valid reports whether s is a status the store accepts.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusPending, SaleStatusCancelled:
		return true
	}
	return false
}

const (
	// DefaultPaymentMethod is used when the caller names none.
	DefaultPaymentMethod = "cash"
	// FreeSaleNote labels a free sale recorded without a description.
	FreeSaleNote = "Venta libre"
)

type Sale struct {
	ID            int64           `json:"id"`
	CustomerID    *int64          `json:"customer_id,omitempty"`
	SaleNumber    string          `json:"sale_number"`
	SaleDate      time.Time       `json:"sale_date"`
	Total         decimal.Decimal `json:"total"`
	Status        SaleStatus      `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Details       []SaleDetail    `json:"details,omitempty"`
}

type SaleDetail struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleSummary is a row of the latest_sales view: a sale with its customer
// name and first line item.
type SaleSummary struct {
	ID            int64               `json:"id"`
	SaleNumber    string              `json:"sale_number"`
	SaleDate      time.Time           `json:"sale_date"`
	Total         decimal.Decimal     `json:"total"`
	Status        SaleStatus          `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	CustomerName  *string             `json:"customer_name,omitempty"`
	ProductName   *string             `json:"product_name,omitempty"`
	Quantity      *int                `json:"quantity,omitempty"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
}

// SaleWithDetails is a sale from the full history with its line items.
type SaleWithDetails struct {
	Sale
	CustomerName *string `json:"customer_name,omitempty"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    *string         `json:"category,omitempty"`
	Description *string         `json:"description,omitempty"`
	ExpenseDate time.Time       `json:"expense_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Balance is the running ledger position.
type Balance struct {
	Total         decimal.Decimal `json:"total"`
	SalesTotal    decimal.Decimal `json:"sales_total"`
	ExpensesTotal decimal.Decimal `json:"expenses_total"`
}

// LineItem is one requested sale line.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

type CreateSaleInput struct {
	CustomerID      *int64
	Lines           []LineItem
	IsFreeSale      bool
	FreeAmount      decimal.Decimal
	FreeDescription *string
	PaymentMethod   string
}

type AddExpenseInput struct {
	Amount      decimal.Decimal
	Category    *string
	Description *string
	Date        time.Time
}

// SaleFilter narrows the sale history; From and To are inclusive dates.
type SaleFilter struct {
	From *time.Time
	To   *time.Time
	Page shared.Page
}

type ExpenseFilter struct {
	From *time.Time
	To   *time.Time
	Page shared.Page
}

// RetryResult reports the outcome of RetrySaleDetails.
type RetryResult struct {
	SaleID   int64        `json:"sale_id"`
	Inserted bool         `json:"inserted"`
	Details  []SaleDetail `json:"details"`
}
