package customers

import (
	"context"
	"fmt"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add stores a new active customer. A blank name is rejected before any write.
func (s *Service) Add(ctx context.Context, in AddCustomerInput) (Customer, error) {
	in, err := normalize(in)
	if err != nil {
		return Customer{}, err
	}
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return Customer{}, fmt.Errorf("add customer: %w", shared.Persistence("insert customer", err))
	}
	return c, nil
}

func (s *Service) ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]Customer, error) {
	out, err := s.repo.ListActive(ctx, filters)
	if err != nil {
		return []Customer{}, shared.Persistence("list customers", err)
	}
	if out == nil {
		out = []Customer{}
	}
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.Validation("id", "invalid customer ID")
	}
	c, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return Customer{}, fmt.Errorf("deactivate customer: %w", shared.Persistence("update customer", err))
	}
	return c, nil
}
