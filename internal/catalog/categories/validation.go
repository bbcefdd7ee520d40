package categories

import (
	"strings"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

func (s *Service) validate(c Category) (Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, shared.Validation("name", "category name is required")
	}
	c.Description = catalogshared.Optional(c.Description)
	return c, nil
}
