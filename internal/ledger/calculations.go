package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// LineSubtotal returns quantity × unit price exactly.
func LineSubtotal(line LineItem) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// LinesTotal sums the subtotals of lines.
func LinesTotal(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineSubtotal(line))
	}
	return total
}

// ComputeBalance returns Σ sale totals − Σ expense amounts. Addition is exact,
// so the result does not depend on input order. Zero-valued totals and
// amounts, including those decoded from JSON null, count as zero.
func ComputeBalance(sales []Sale, expenses []Expense) Balance {
	salesTotal := decimal.Zero
	for _, s := range sales {
		salesTotal = salesTotal.Add(s.Total)
	}
	expensesTotal := decimal.Zero
	for _, e := range expenses {
		expensesTotal = expensesTotal.Add(e.Amount)
	}
	return Balance{
		Total:         salesTotal.Sub(expensesTotal),
		SalesTotal:    salesTotal,
		ExpensesTotal: expensesTotal,
	}
}

func validateLines(lines []LineItem) error {
	if len(lines) == 0 {
		return errLinesRequired
	}
	for i, line := range lines {
		if line.ProductID <= 0 {
			return lineError(i, "product_id", "is required")
		}
		if err := shared.CheckQuantity(fmt.Sprintf("lines[%d].quantity", i), line.Quantity); err != nil {
			return err
		}
		if line.UnitPrice.IsNegative() {
			return lineError(i, "unit_price", "must not be negative")
		}
		if err := shared.CheckAmount(fmt.Sprintf("lines[%d].unit_price", i), line.UnitPrice); err != nil {
			return err
		}
		if err := shared.CheckAmount(fmt.Sprintf("lines[%d].subtotal", i), LineSubtotal(line)); err != nil {
			return err
		}
	}
	return shared.CheckAmount("total", LinesTotal(lines))
}
