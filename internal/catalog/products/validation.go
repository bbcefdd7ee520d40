package products

import (
	"strings"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

func normalize(in CreateProductInput) (CreateProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, shared.Validation("name", "product name is required")
	}
	if in.UnitPrice.IsNegative() {
		return in, shared.Validation("unit_price", "must not be negative")
	}
	if in.Stock < 0 {
		return in, shared.Validation("stock", "must not be negative")
	}
	if in.MinimumStock < 0 {
		return in, shared.Validation("minimum_stock", "must not be negative")
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return in, shared.Validation("category_id", "invalid category ID")
	}
	in.Description = catalogshared.Optional(in.Description)
	in.SKU = catalogshared.Optional(in.SKU)
	in.UnitPrice = in.UnitPrice.Round(2)
	return in, nil
}
