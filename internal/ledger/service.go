package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/platform/db"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

const (
	saleNumberConstraint = "sales_sale_number_key"
	saleNumberAttempts   = 3
	recentExpensesLimit  = 5
)

// Recorder receives ledger events for metrics.
type Recorder interface {
	SaleCreated(free bool)
	PartialWrite(op string)
	ExpenseAdded()
}

// BalanceCache is the versioned cache used for CurrentBalance.
type BalanceCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Options tunes write behaviour.
type Options struct {
	// AtomicWrites writes a sale and its details in one transaction. When
	// false the details are a second write and a failure there yields a
	// *shared.PartialWriteError.
	AtomicWrites bool
	// DecrementStock takes sold units out of product stock.
	DecrementStock bool
	// StoreTimeout bounds every store round trip; zero means unbounded.
	StoreTimeout time.Duration
}

// Service implements the sales and expense ledger.
type Service struct {
	repo    Repository
	cache   BalanceCache
	metrics Recorder
	logger  *slog.Logger
	numbers *shared.NumberGenerator
	opts    Options
	now     func() time.Time
}

// NewService builds the ledger service. cache and metrics may be nil.
func NewService(repo Repository, cache BalanceCache, metrics Recorder, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		numbers: shared.NewNumberGenerator("SALE", nil),
		opts:    opts,
		now:     time.Now,
	}
}

type noopRecorder struct{}

func (noopRecorder) SaleCreated(bool)    {}
func (noopRecorder) PartialWrite(string) {}
func (noopRecorder) ExpenseAdded()       {}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateSale validates and records a sale. Itemized sales carry their line
// items; free sales carry only an operator-entered amount. The returned sale
// holds the details as written; it is not re-read from the store.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (Sale, error) {
	sale, details, err := s.buildSale(in)
	if err != nil {
		return Sale{}, err
	}
	if !in.IsFreeSale && in.CustomerID == nil {
		s.logger.Warn("sale recorded without customer", slog.Int("lines", len(details)))
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if !s.opts.AtomicWrites && s.opts.DecrementStock {
		if err := s.checkStock(ctx, details); err != nil {
			return Sale{}, err
		}
	}

	var created Sale
	for attempt := 1; attempt <= saleNumberAttempts; attempt++ {
		sale.SaleNumber = s.numbers.Next()
		created, err = s.persistSale(ctx, sale, details)
		if err == nil || !db.IsUniqueViolation(err, saleNumberConstraint) {
			break
		}
		s.logger.Warn("sale number collision", slog.String("sale_number", sale.SaleNumber), slog.Int("attempt", attempt))
	}
	if err != nil {
		var pw *shared.PartialWriteError
		if errors.As(err, &pw) {
			s.metrics.PartialWrite(pw.Op)
			s.logger.Error("sale details not written",
				slog.Int64("sale_id", pw.ParentID),
				slog.String("reconciliation_id", pw.ReconciliationID.String()),
				slog.Any("error", pw.Err))
			s.invalidate(ctx)
			return Sale{}, err
		}
		return Sale{}, fmt.Errorf("create sale: %w", shared.Persistence("insert sale", err))
	}

	s.metrics.SaleCreated(in.IsFreeSale)
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) buildSale(in CreateSaleInput) (Sale, []SaleDetail, error) {
	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}
	sale := Sale{
		CustomerID:    in.CustomerID,
		SaleDate:      s.today(),
		Status:        SaleStatusCompleted,
		PaymentMethod: method,
	}

	if in.IsFreeSale {
		if !in.FreeAmount.IsPositive() {
			return Sale{}, nil, errFreeAmount
		}
		if err := shared.CheckAmount("free_amount", in.FreeAmount); err != nil {
			return Sale{}, nil, err
		}
		note := FreeSaleNote
		if in.FreeDescription != nil {
			if desc := strings.TrimSpace(*in.FreeDescription); desc != "" {
				note = desc
			}
		}
		sale.Total = in.FreeAmount
		sale.Notes = &note
		return sale, nil, nil
	}

	if err := validateLines(in.Lines); err != nil {
		return Sale{}, nil, err
	}
	details := make([]SaleDetail, len(in.Lines))
	for i, line := range in.Lines {
		details[i] = SaleDetail{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  LineSubtotal(line),
		}
	}
	sale.Total = LinesTotal(in.Lines)
	return sale, details, nil
}

// checkStock rejects a sale whose lines exceed current stock before anything
// is written. Sequential writes cannot roll the sale back, so the check runs
// ahead of the parent insert; the per-line guard in ApplyStock still applies.
func (s *Service) checkStock(ctx context.Context, details []SaleDetail) error {
	if len(details) == 0 {
		return nil
	}
	wanted := make(map[int64]int, len(details))
	ids := make([]int64, 0, len(details))
	for _, d := range details {
		if _, seen := wanted[d.ProductID]; !seen {
			ids = append(ids, d.ProductID)
		}
		wanted[d.ProductID] += d.Quantity
	}
	levels, err := s.repo.StockLevels(ctx, ids)
	if err != nil {
		return fmt.Errorf("create sale: %w", shared.Persistence("read stock", err))
	}
	for _, id := range ids {
		stock, ok := levels[id]
		if !ok {
			return shared.Validation("product_id", fmt.Sprintf("unknown product %d", id))
		}
		if stock < wanted[id] {
			return shared.Validation("quantity", fmt.Sprintf("insufficient stock for product %d", id))
		}
	}
	return nil
}

func (s *Service) persistSale(ctx context.Context, sale Sale, details []SaleDetail) (Sale, error) {
	if s.opts.AtomicWrites {
		var created Sale
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			var err error
			created, err = tx.InsertSale(ctx, sale)
			if err != nil {
				return err
			}
			created.Details, err = s.writeDetails(ctx, tx, created, details)
			return err
		})
		return created, err
	}

	created, err := s.repo.InsertSale(ctx, sale)
	if err != nil {
		return Sale{}, err
	}
	if len(details) == 0 {
		return created, nil
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created.Details, err = s.writeDetails(ctx, tx, created, details)
		return err
	})
	if err != nil {
		return Sale{}, shared.NewPartialWrite("create sale", created.ID, err)
	}
	return created, nil
}

func (s *Service) writeDetails(ctx context.Context, tx TxRepository, sale Sale, details []SaleDetail) ([]SaleDetail, error) {
	if len(details) == 0 {
		return nil, nil
	}
	written, err := tx.InsertDetails(ctx, sale.ID, details)
	if err != nil {
		return nil, err
	}
	if !s.opts.DecrementStock {
		return written, nil
	}
	note := sale.SaleNumber
	for _, d := range details {
		if err := tx.ApplyStock(ctx, inventory.MovementInput{
			ProductID: d.ProductID,
			Type:      inventory.MovementSale,
			Quantity:  -d.Quantity,
			Notes:     &note,
		}); err != nil {
			return nil, err
		}
	}
	return written, nil
}

// ListRecentSales reads the latest_sales view. On failure it returns an empty
// slice together with the error so callers can render a degraded list.
func (s *Service) ListRecentSales(ctx context.Context) ([]SaleSummary, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	out, err := s.repo.LatestSales(ctx)
	if err != nil {
		return []SaleSummary{}, shared.Persistence("list recent sales", err)
	}
	if out == nil {
		out = []SaleSummary{}
	}
	return out, nil
}

// ListSales returns the sale history, newest sale date first, with details.
func (s *Service) ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithDetails, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return []SaleWithDetails{}, shared.Validation("to", "must not be before from")
	}
	filter.Page = shared.NewPage(filter.Page.Limit, filter.Page.Offset)
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	out, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return []SaleWithDetails{}, shared.Persistence("list sales", err)
	}
	if out == nil {
		out = []SaleWithDetails{}
	}
	return out, nil
}

// AddExpense validates and records an expense. A zero date means today.
func (s *Service) AddExpense(ctx context.Context, in AddExpenseInput) (Expense, error) {
	if !in.Amount.IsPositive() {
		return Expense{}, errExpenseAmount
	}
	if err := shared.CheckAmount("amount", in.Amount); err != nil {
		return Expense{}, err
	}
	expense := Expense{
		Amount:      in.Amount,
		Category:    trimmed(in.Category),
		Description: trimmed(in.Description),
		ExpenseDate: in.Date,
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = s.today()
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	created, err := s.repo.InsertExpense(ctx, expense)
	if err != nil {
		return Expense{}, fmt.Errorf("add expense: %w", shared.Persistence("insert expense", err))
	}
	s.metrics.ExpenseAdded()
	s.invalidate(ctx)
	return created, nil
}

// ListExpenses returns expenses, newest expense date first.
func (s *Service) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return []Expense{}, shared.Validation("to", "must not be before from")
	}
	filter.Page = shared.NewPage(filter.Page.Limit, filter.Page.Offset)
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	out, err := s.repo.ListExpenses(ctx, filter)
	if err != nil {
		return []Expense{}, shared.Persistence("list expenses", err)
	}
	if out == nil {
		out = []Expense{}
	}
	return out, nil
}

// RecentExpenses returns the last few expenses for the dashboard.
func (s *Service) RecentExpenses(ctx context.Context) ([]Expense, error) {
	return s.ListExpenses(ctx, ExpenseFilter{Page: shared.Page{Limit: recentExpensesLimit}})
}

// CurrentBalance returns the balance aggregated by the store, served from the
// versioned cache when one is configured.
func (s *Service) CurrentBalance(ctx context.Context) (Balance, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	var loadErr error
	load := func(ctx context.Context) (any, error) {
		b, err := s.repo.SumBalance(ctx)
		loadErr = err
		return b, err
	}
	if s.cache != nil {
		key, err := s.cache.BuildKey(ctx, "balance")
		if err == nil {
			var b Balance
			if err = s.cache.FetchJSON(ctx, key, &b, load); err == nil {
				return b, nil
			}
		}
		if loadErr != nil {
			return Balance{}, shared.Persistence("sum balance", loadErr)
		}
		s.logger.Warn("balance cache unavailable", slog.Any("error", err))
	}
	b, err := s.repo.SumBalance(ctx)
	if err != nil {
		return Balance{}, shared.Persistence("sum balance", err)
	}
	return b, nil
}

// UpdateSaleStatus sets the status of a sale.
func (s *Service) UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus) (Sale, error) {
	if !status.Valid() {
		return Sale{}, errInvalidStatus
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	sale, err := s.repo.UpdateSaleStatus(ctx, id, status)
	if err != nil {
		return Sale{}, fmt.Errorf("update sale status: %w", shared.Persistence("update sale", err))
	}
	s.invalidate(ctx)
	return sale, nil
}

// VoidSale deletes a sale together with its details. With stock decrement
// enabled the sold units are put back through return movements.
func (s *Service) VoidSale(ctx context.Context, id int64) (Sale, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	var voided Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		details, err := tx.SaleDetails(ctx, id)
		if err != nil {
			return err
		}
		voided, err = tx.DeleteSale(ctx, id)
		if err != nil {
			return err
		}
		voided.Details = details
		if !s.opts.DecrementStock {
			return nil
		}
		note := "void " + voided.SaleNumber
		for _, d := range details {
			if err := tx.ApplyStock(ctx, inventory.MovementInput{
				ProductID: d.ProductID,
				Type:      inventory.MovementReturn,
				Quantity:  d.Quantity,
				Notes:     &note,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, fmt.Errorf("void sale: %w", shared.Persistence("delete sale", err))
	}
	s.logger.Info("sale voided", slog.Int64("sale_id", id), slog.String("sale_number", voided.SaleNumber))
	s.invalidate(ctx)
	return voided, nil
}

// RetrySaleDetails writes the line items of a sale whose detail write failed
// earlier. It is keyed by the sale id and idempotent: when the sale already
// has details nothing is written. The lines must add up to the stored total.
func (s *Service) RetrySaleDetails(ctx context.Context, saleID int64, lines []LineItem) (RetryResult, error) {
	if err := validateLines(lines); err != nil {
		return RetryResult{}, err
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	result := RetryResult{SaleID: saleID}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSale(ctx, saleID)
		if err != nil {
			return err
		}
		existing, err := tx.SaleDetails(ctx, saleID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			result.Details = existing
			return nil
		}
		if !LinesTotal(lines).Equal(sale.Total) {
			return errDetailsMismatch
		}
		details := make([]SaleDetail, len(lines))
		for i, line := range lines {
			details[i] = SaleDetail{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: line.UnitPrice, Subtotal: LineSubtotal(line)}
		}
		result.Details, err = s.writeDetails(ctx, tx, sale, details)
		result.Inserted = err == nil
		return err
	})
	if err != nil {
		return RetryResult{}, fmt.Errorf("retry sale details: %w", shared.Persistence("insert details", err))
	}
	if result.Inserted {
		s.invalidate(ctx)
	}
	return result, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("ledger cache bump failed", slog.Any("error", err))
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
