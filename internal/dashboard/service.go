// Package dashboard assembles the home screen from the ledger and catalog.
package dashboard

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/panaderiapro/panaderiapro/internal/catalog/customers"
	"github.com/panaderiapro/panaderiapro/internal/catalog/products"
	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/ledger"
)

// Section names, also used as warning prefixes and degraded-read labels.
const (
	SectionRecentSales    = "recent_sales"
	SectionRecentExpenses = "recent_expenses"
	SectionProducts       = "products"
	SectionCustomers      = "customers"
	SectionBalance        = "balance"
)

// LedgerSource provides the ledger sections.
type LedgerSource interface {
	ListRecentSales(ctx context.Context) ([]ledger.SaleSummary, error)
	RecentExpenses(ctx context.Context) ([]ledger.Expense, error)
	CurrentBalance(ctx context.Context) (ledger.Balance, error)
}

// ProductSource lists active products.
type ProductSource interface {
	ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]products.Product, error)
}

// CustomerSource lists active customers.
type CustomerSource interface {
	ListActive(ctx context.Context, filters catalogshared.ListFilters) ([]customers.Customer, error)
}

// SummaryCache is the versioned cache for assembled summaries.
type SummaryCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// VersionSource reports the version of a cache namespace the summary depends on.
type VersionSource interface {
	Version(ctx context.Context) (int64, error)
}

// Warning names a section that could not be loaded.
type Warning struct {
	Section string `json:"section"`
	Error   string `json:"error"`
}

// Formatted holds amounts rendered for display in Spanish locale.
type Formatted struct {
	Balance  string `json:"balance"`
	Sales    string `json:"sales"`
	Expenses string `json:"expenses"`
}

// Summary is the dashboard payload.
type Summary struct {
	RecentSales    []ledger.SaleSummary `json:"recent_sales"`
	RecentExpenses []ledger.Expense     `json:"recent_expenses"`
	Products       []products.Product   `json:"products"`
	Customers      []customers.Customer `json:"customers"`
	Balance        ledger.Balance       `json:"balance"`
	LowStock       int                  `json:"low_stock"`
	Formatted      Formatted            `json:"formatted"`
	Warnings       []Warning            `json:"warnings"`
	GeneratedAt    time.Time            `json:"generated_at"`
}

// Service builds dashboard summaries.
type Service struct {
	ledger    LedgerSource
	products  ProductSource
	customers CustomerSource
	cache     SummaryCache
	ledgerVer VersionSource
	logger    *slog.Logger
	printer   *message.Printer
	group     singleflight.Group
	now       func() time.Time
}

// NewService builds the dashboard service. cache and ledgerVersion may be nil.
func NewService(ledgerSrc LedgerSource, productSrc ProductSource, customerSrc CustomerSource, cache SummaryCache, ledgerVersion VersionSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ledger:    ledgerSrc,
		products:  productSrc,
		customers: customerSrc,
		cache:     cache,
		ledgerVer: ledgerVersion,
		logger:    logger,
		printer:   message.NewPrinter(language.Spanish),
		now:       time.Now,
	}
}

// Summary loads every section concurrently. Identical concurrent calls share
// one build. A failed section is left empty and listed in Warnings; Summary
// itself only fails when ctx is done.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	ch := s.group.DoChan("summary", func() (any, error) {
		return s.cachedBuild(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

func (s *Service) cachedBuild(ctx context.Context) (Summary, error) {
	if s.cache == nil {
		return s.build(ctx), nil
	}
	key, err := s.cacheKey(ctx)
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
		return s.build(ctx), nil
	}

	var built *Summary
	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		summary := s.build(ctx)
		built = &summary
		if len(summary.Warnings) > 0 {
			return nil, errDegraded
		}
		return summary, nil
	})
	if built != nil {
		return *built, nil
	}
	if err != nil {
		s.logger.Warn("dashboard cache read failed", slog.Any("error", err))
		return s.build(ctx), nil
	}
	return out, nil
}

func (s *Service) cacheKey(ctx context.Context) (string, error) {
	parts := []string{"summary"}
	if s.ledgerVer != nil {
		ver, err := s.ledgerVer.Version(ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, "l"+strconv.FormatInt(ver, 10))
	}
	return s.cache.BuildKey(ctx, parts...)
}

func (s *Service) build(ctx context.Context) Summary {
	summary := Summary{
		RecentSales:    []ledger.SaleSummary{},
		RecentExpenses: []ledger.Expense{},
		Products:       []products.Product{},
		Customers:      []customers.Customer{},
		Warnings:       []Warning{},
		GeneratedAt:    s.now().UTC(),
	}
	var mu sync.Mutex
	warn := func(section string, err error) {
		s.logger.Warn("dashboard section degraded", slog.String("section", section), slog.Any("error", err))
		mu.Lock()
		summary.Warnings = append(summary.Warnings, Warning{Section: section, Error: err.Error()})
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.ledger.ListRecentSales(ctx)
		if err != nil {
			warn(SectionRecentSales, err)
			return nil
		}
		summary.RecentSales = out
		return nil
	})
	g.Go(func() error {
		out, err := s.ledger.RecentExpenses(ctx)
		if err != nil {
			warn(SectionRecentExpenses, err)
			return nil
		}
		summary.RecentExpenses = out
		return nil
	})
	g.Go(func() error {
		out, err := s.products.ListActive(ctx, catalogshared.ListFilters{})
		if err != nil {
			warn(SectionProducts, err)
			return nil
		}
		summary.Products = out
		return nil
	})
	g.Go(func() error {
		out, err := s.customers.ListActive(ctx, catalogshared.ListFilters{})
		if err != nil {
			warn(SectionCustomers, err)
			return nil
		}
		summary.Customers = out
		return nil
	})
	g.Go(func() error {
		b, err := s.ledger.CurrentBalance(ctx)
		if err != nil {
			warn(SectionBalance, err)
			return nil
		}
		summary.Balance = b
		return nil
	})
	_ = g.Wait()

	for _, p := range summary.Products {
		if p.Stock <= p.MinimumStock {
			summary.LowStock++
		}
	}
	summary.Formatted = Formatted{
		Balance:  s.Money(summary.Balance.Total),
		Sales:    s.Money(summary.Balance.SalesTotal),
		Expenses: s.Money(summary.Balance.ExpensesTotal),
	}
	return summary
}

// Money renders an amount with two decimals and Spanish separators.
func (s *Service) Money(d decimal.Decimal) string {
	return s.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}
