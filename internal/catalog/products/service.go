package products

import (
	"context"
	"fmt"
	"log/slog"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// Invalidator drops cached views that embed product data.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
}

// NewService builds the product service. cache may be nil.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]Product, error) {
	out, err := s.repo.ListActive(ctx, filters)
	if err != nil {
		return []Product{}, shared.Persistence("list products", err)
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.Validation("id", "invalid product ID")
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", shared.Persistence("select product", err))
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in CreateProductInput) (Product, error) {
	in, err := normalize(in)
	if err != nil {
		return Product{}, err
	}
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return Product{}, shared.Validation("sku", "sku already in use")
		}
		return Product{}, fmt.Errorf("create product: %w", shared.Persistence("insert product", err))
	}
	s.invalidate(ctx)
	return p, nil
}

// UpdateStock overwrites the on-hand quantity. A negative value is rejected
// before any write. A non-zero change is recorded as an adjustment movement in
// the same transaction.
func (s *Service) UpdateStock(ctx context.Context, id int64, newStock int) (StockChange, error) {
	if id <= 0 {
		return StockChange{}, shared.Validation("id", "invalid product ID")
	}
	if newStock < 0 {
		return StockChange{}, shared.Validation("stock", "must not be negative")
	}
	var change StockChange
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		previous, err := tx.LockStock(ctx, id)
		if err != nil {
			return err
		}
		product, err := tx.SetStock(ctx, id, newStock)
		if err != nil {
			return err
		}
		change = StockChange{Product: product, Previous: previous, Delta: newStock - previous}
		if change.Delta == 0 {
			return nil
		}
		note := fmt.Sprintf("stock set from %d to %d", previous, newStock)
		return tx.RecordAdjustment(ctx, inventory.MovementInput{
			ProductID: id,
			Type:      inventory.MovementAdjustment,
			Quantity:  change.Delta,
			Notes:     &note,
		})
	})
	if err != nil {
		return StockChange{}, fmt.Errorf("update stock: %w", shared.Persistence("update product stock", err))
	}
	s.invalidate(ctx)
	return change, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("dashboard cache bump failed", slog.Any("error", err))
	}
}
