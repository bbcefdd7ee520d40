package ledger

import (
	"fmt"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

var (
	errLinesRequired   = shared.Validation("lines", "at least one line item is required")
	errFreeAmount      = shared.Validation("free_amount", "must be greater than zero")
	errExpenseAmount   = shared.Validation("amount", "must be greater than zero")
	errInvalidStatus   = shared.Validation("status", "must be one of completed, pending, cancelled")
	errDetailsMismatch = shared.Validation("lines", "line subtotals do not add up to the sale total")
)

func lineError(i int, field, msg string) error {
	return shared.Validation(fmt.Sprintf("lines[%d].%s", i, field), msg)
}
