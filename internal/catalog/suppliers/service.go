package suppliers

import (
	"context"
	"fmt"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListActive(ctx context.Context) ([]Supplier, error) {
	out, err := s.repo.ListActive(ctx)
	if err != nil {
		return []Supplier{}, shared.Persistence("list suppliers", err)
	}
	if out == nil {
		out = []Supplier{}
	}
	return out, nil
}

func (s *Service) Add(ctx context.Context, in AddSupplierInput) (Supplier, error) {
	in, err := normalize(in)
	if err != nil {
		return Supplier{}, err
	}
	created, err := s.repo.Create(ctx, in)
	if err != nil {
		return Supplier{}, fmt.Errorf("add supplier: %w", shared.Persistence("insert supplier", err))
	}
	return created, nil
}
