package procurement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// Purchase is a supplier delivery that puts units into stock.
type Purchase struct {
	ID             int64            `json:"id"`
	SupplierID     *int64           `json:"supplier_id,omitempty"`
	SupplierName   *string          `json:"supplier_name,omitempty"`
	PurchaseNumber string           `json:"purchase_number"`
	PurchaseDate   time.Time        `json:"purchase_date"`
	Total          decimal.Decimal  `json:"total"`
	Status         string           `json:"status"`
	Notes          *string          `json:"notes,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	Details        []PurchaseDetail `json:"details"`
}

// PurchaseDetail is one purchased line.
type PurchaseDetail struct {
	ID          int64           `json:"id"`
	PurchaseID  int64           `json:"purchase_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// LineItem is a requested purchase line; UnitPrice is the unit cost.
type LineItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreatePurchaseInput describes a purchase to record.
type CreatePurchaseInput struct {
	SupplierID *int64
	Lines      []LineItem
	Notes      *string
}

// ListFilter narrows ListPurchases.
type ListFilter struct {
	SupplierID *int64
	Page       shared.Page
}

const statusCompleted = "completed"

func validateLines(lines []LineItem) error {
	if len(lines) == 0 {
		return shared.Validation("lines", "a purchase needs at least one line")
	}
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case l.ProductID <= 0:
			return shared.Validation(field+".product_id", "is required")
		case l.UnitPrice.IsNegative():
			return shared.Validation(field+".unit_price", "must not be negative")
		}
		if err := shared.CheckQuantity(field+".quantity", l.Quantity); err != nil {
			return err
		}
		if err := shared.CheckAmount(field+".unit_price", l.UnitPrice); err != nil {
			return err
		}
		if err := shared.CheckAmount(field+".subtotal", lineSubtotal(l)); err != nil {
			return err
		}
	}
	return shared.CheckAmount("total", linesTotal(lines))
}

func lineSubtotal(l LineItem) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func linesTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(lineSubtotal(l))
	}
	return total
}
