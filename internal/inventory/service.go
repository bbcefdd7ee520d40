package inventory

import (
	"context"
	"fmt"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
	CurrentStock(ctx context.Context, lowOnly bool) ([]StockLevel, error)
}

// Service coordinates stock operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RecordMovement appends a movement. Adjustments also apply the delta to the
// product's stock in the same transaction.
func (s *Service) RecordMovement(ctx context.Context, in MovementInput) (Movement, error) {
	if err := in.Validate(); err != nil {
		return Movement{}, err
	}
	var out Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		if in.Type == MovementAdjustment {
			out, err = tx.ApplyDelta(ctx, in)
		} else {
			out, err = tx.InsertMovement(ctx, in)
		}
		return err
	})
	if err != nil {
		return Movement{}, shared.Persistence("record movement", err)
	}
	return out, nil
}

// ListMovements returns movements newest first, optionally for one product.
func (s *Service) ListMovements(ctx context.Context, productID *int64, page shared.Page) ([]Movement, error) {
	out, err := s.repo.ListMovements(ctx, MovementFilter{ProductID: productID, Page: page})
	if err != nil {
		return []Movement{}, shared.Persistence("list movements", err)
	}
	return nonNil(out), nil
}

// CurrentStock lists stock of every active product.
func (s *Service) CurrentStock(ctx context.Context) ([]StockLevel, error) {
	out, err := s.repo.CurrentStock(ctx, false)
	if err != nil {
		return []StockLevel{}, shared.Persistence("current stock", err)
	}
	return nonNil(out), nil
}

// LowStock lists products at or below their minimum stock.
func (s *Service) LowStock(ctx context.Context) ([]StockLevel, error) {
	out, err := s.repo.CurrentStock(ctx, true)
	if err != nil {
		return []StockLevel{}, fmt.Errorf("low stock: %w", shared.Persistence("current stock", err))
	}
	return nonNil(out), nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
