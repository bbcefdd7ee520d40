package customers

import (
	"strings"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

func normalize(in AddCustomerInput) (AddCustomerInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, shared.Validation("name", "is required")
	}
	in.Email = catalogshared.Optional(in.Email)
	in.Phone = catalogshared.Optional(in.Phone)
	if in.Email != nil && !catalogshared.ValidEmail(*in.Email) {
		return in, shared.Validation("email", "is not a valid email address")
	}
	return in, nil
}
