package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// MovementType enumerates the kinds of stock movement.
type MovementType string

const (
	// MovementSale is an outbound movement caused by a sale.
	MovementSale MovementType = "sale"
	// MovementPurchase is an inbound movement caused by a purchase.
	MovementPurchase MovementType = "purchase"
	// MovementAdjustment is a manual correction; it changes product stock.
	MovementAdjustment MovementType = "adjustment"
	// MovementReturn puts units back, e.g. when a sale is voided.
	MovementReturn MovementType = "return"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementSale, MovementPurchase, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// Movement is one row of the append-only stock audit trail.
type Movement struct {
	ID          int64        `json:"id"`
	ProductID   int64        `json:"product_id"`
	ProductName string       `json:"product_name,omitempty"`
	Type        MovementType `json:"movement_type"`
	Quantity    int          `json:"quantity"`
	Notes       *string      `json:"notes,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// MovementInput describes a movement to record. Quantity is a signed delta.
type MovementInput struct {
	ProductID int64
	Type      MovementType
	Quantity  int
	Notes     *string
}

// StockLevel is a row of the current_stock view.
type StockLevel struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	SKU          *string         `json:"sku,omitempty"`
	Stock        int             `json:"stock"`
	MinimumStock int             `json:"minimum_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CategoryName *string         `json:"category_name,omitempty"`
	LowStock     bool            `json:"low_stock"`
}

// MovementFilter narrows ListMovements.
type MovementFilter struct {
	ProductID *int64
	Page      shared.Page
}

// Validate checks the input before it reaches the store.
func (in MovementInput) Validate() error {
	if in.ProductID <= 0 {
		return shared.Validation("product_id", "is required")
	}
	if !in.Type.Valid() {
		return shared.Validation("movement_type", "must be one of sale, purchase, adjustment, return")
	}
	if in.Quantity == 0 {
		return shared.Validation("quantity", "must not be zero")
	}
	return nil
}
