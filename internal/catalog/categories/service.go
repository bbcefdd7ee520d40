package categories

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

func (s *Service) List(ctx context.Context) ([]Category, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return []Category{}, shared.Persistence("list categories", err)
	}
	if out == nil {
		out = []Category{}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	category, err := s.validate(category)
	if err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", shared.Persistence("insert category", err))
	}
	return created, nil
}
