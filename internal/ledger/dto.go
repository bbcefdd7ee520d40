package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
)

type createSaleRequest struct {
	CustomerID      *int64            `json:"customer_id" validate:"omitempty,gt=0"`
	Lines           []lineItemRequest `json:"lines" validate:"omitempty,max=200,dive"`
	IsFreeSale      bool              `json:"is_free_sale"`
	FreeAmount      decimal.Decimal   `json:"free_amount"`
	FreeDescription *string           `json:"free_description" validate:"omitempty,max=500"`
	PaymentMethod   string            `json:"payment_method" validate:"omitempty,max=30"`
}

type lineItemRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type retryDetailsRequest struct {
	Lines []lineItemRequest `json:"lines" validate:"required,min=1,max=200,dive"`
}

type addExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    *string         `json:"category" validate:"omitempty,max=100"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Date        string          `json:"expense_date" validate:"omitempty,datetime=2006-01-02"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed pending cancelled"`
}

func toLineItems(lines []lineItemRequest) []LineItem {
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = LineItem{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return out
}

func (r createSaleRequest) toInput() CreateSaleInput {
	return CreateSaleInput{
		CustomerID:      r.CustomerID,
		Lines:           toLineItems(r.Lines),
		IsFreeSale:      r.IsFreeSale,
		FreeAmount:      r.FreeAmount,
		FreeDescription: r.FreeDescription,
		PaymentMethod:   r.PaymentMethod,
	}
}

func (r addExpenseRequest) toInput() AddExpenseInput {
	in := AddExpenseInput{Amount: r.Amount, Category: r.Category, Description: r.Description}
	if r.Date != "" {
		// validated by the datetime tag
		in.Date, _ = time.Parse(httpx.DateLayout, r.Date)
	}
	return in
}
