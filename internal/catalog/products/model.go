package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item with its on-hand stock.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Stock        int             `json:"stock"`
	MinimumStock int             `json:"minimum_stock"`
	SKU          *string         `json:"sku,omitempty"`
	CategoryID   *int64          `json:"category_id,omitempty"`
	CategoryName *string         `json:"category_name,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateProductInput carries the fields accepted by Create.
type CreateProductInput struct {
	Name         string
	Description  *string
	UnitPrice    decimal.Decimal
	Stock        int
	MinimumStock int
	SKU          *string
	CategoryID   *int64
}

// StockChange is the outcome of an overwrite: the stored product and the
// delta recorded as an adjustment movement (zero when unchanged).
type StockChange struct {
	Product  Product `json:"product"`
	Previous int     `json:"previous_stock"`
	Delta    int     `json:"delta"`
}
