package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

const (
	purchaseNumberConstraint = "purchases_purchase_number_key"
	purchaseNumberAttempts   = 3
)

// Recorder receives procurement events for metrics.
type Recorder interface {
	PartialWrite(op string)
}

// Options tunes write behaviour; it mirrors the ledger write switches.
type Options struct {
	AtomicWrites   bool
	IncrementStock bool
	StoreTimeout   time.Duration
}

// Service records supplier purchases.
type Service struct {
	repo    Repository
	metrics Recorder
	logger  *slog.Logger
	numbers *shared.NumberGenerator
	opts    Options
	now     func() time.Time
}

// NewService builds the procurement service. metrics may be nil.
func NewService(repo Repository, metrics Recorder, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		numbers: shared.NewNumberGenerator("PUR", nil),
		opts:    opts,
		now:     time.Now,
	}
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// CreatePurchase validates and records a purchase. Purchased units are added
// to product stock through purchase movements when IncrementStock is set.
func (s *Service) CreatePurchase(ctx context.Context, in CreatePurchaseInput) (Purchase, error) {
	if err := validateLines(in.Lines); err != nil {
		return Purchase{}, err
	}
	if in.SupplierID != nil && *in.SupplierID <= 0 {
		return Purchase{}, shared.Validation("supplier_id", "invalid supplier ID")
	}
	y, m, d := s.now().Date()
	purchase := Purchase{
		SupplierID:   in.SupplierID,
		PurchaseDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Total:        linesTotal(in.Lines),
		Status:       statusCompleted,
		Notes:        in.Notes,
	}
	details := make([]PurchaseDetail, len(in.Lines))
	for i, l := range in.Lines {
		details[i] = PurchaseDetail{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, Subtotal: lineSubtotal(l)}
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	var (
		created Purchase
		err     error
	)
	for attempt := 1; attempt <= purchaseNumberAttempts; attempt++ {
		purchase.PurchaseNumber = s.numbers.Next()
		created, err = s.persist(ctx, purchase, details)
		if err == nil || !db.IsUniqueViolation(err, purchaseNumberConstraint) {
			break
		}
	}
	if err != nil {
		var pw *shared.PartialWriteError
		if errors.As(err, &pw) {
			if s.metrics != nil {
				s.metrics.PartialWrite(pw.Op)
			}
			s.logger.Error("purchase details not written",
				slog.Int64("purchase_id", pw.ParentID),
				slog.String("reconciliation_id", pw.ReconciliationID.String()),
				slog.Any("error", pw.Err))
			return Purchase{}, err
		}
		return Purchase{}, fmt.Errorf("create purchase: %w", shared.Persistence("insert purchase", err))
	}
	return created, nil
}

func (s *Service) persist(ctx context.Context, purchase Purchase, details []PurchaseDetail) (Purchase, error) {
	if s.opts.AtomicWrites {
		var created Purchase
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			var err error
			if created, err = tx.InsertPurchase(ctx, purchase); err != nil {
				return err
			}
			created.Details, err = s.writeDetails(ctx, tx, created, details)
			return err
		})
		return created, err
	}

	created, err := s.repo.InsertPurchase(ctx, purchase)
	if err != nil {
		return Purchase{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created.Details, err = s.writeDetails(ctx, tx, created, details)
		return err
	})
	if err != nil {
		return Purchase{}, shared.NewPartialWrite("create purchase", created.ID, err)
	}
	return created, nil
}

func (s *Service) writeDetails(ctx context.Context, tx TxRepository, purchase Purchase, details []PurchaseDetail) ([]PurchaseDetail, error) {
	written, err := tx.InsertDetails(ctx, purchase.ID, details)
	if err != nil {
		return nil, err
	}
	if !s.opts.IncrementStock {
		return written, nil
	}
	note := purchase.PurchaseNumber
	for _, d := range details {
		if err := tx.ApplyStock(ctx, inventory.MovementInput{
			ProductID: d.ProductID,
			Type:      inventory.MovementPurchase,
			Quantity:  d.Quantity,
			Notes:     &note,
		}); err != nil {
			return nil, err
		}
	}
	return written, nil
}

// ListPurchases returns purchases newest first. On failure it returns an empty
// slice together with the error.
func (s *Service) ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, error) {
	filter.Page = shared.NewPage(filter.Page.Limit, filter.Page.Offset)
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	out, err := s.repo.ListPurchases(ctx, filter)
	if err != nil {
		return []Purchase{}, shared.Persistence("list purchases", err)
	}
	if out == nil {
		out = []Purchase{}
	}
	return out, nil
}
