package suppliers

import (
	"strings"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

func normalize(in AddSupplierInput) (AddSupplierInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, shared.Validation("name", "supplier name is required")
	}
	in.Contact = catalogshared.Optional(in.Contact)
	in.Phone = catalogshared.Optional(in.Phone)
	in.Email = catalogshared.Optional(in.Email)
	if in.Email != nil && !catalogshared.ValidEmail(*in.Email) {
		return in, shared.Validation("email", "invalid email address")
	}
	return in, nil
}
