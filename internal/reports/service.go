package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// Service serves daily reports and the sales-by-category view.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ListDailyReports returns reports newest first within the inclusive range.
func (s *Service) ListDailyReports(ctx context.Context, rng Range) ([]DailyReport, error) {
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return []DailyReport{}, shared.Validation("to", "must not be before from")
	}
	out, err := s.repo.ListDaily(ctx, rng)
	if err != nil {
		return []DailyReport{}, shared.Persistence("list daily reports", err)
	}
	if out == nil {
		out = []DailyReport{}
	}
	return out, nil
}

// UpdateDailyReport replaces the notes of an existing report. Blank notes clear them.
func (s *Service) UpdateDailyReport(ctx context.Context, date time.Time, notes *string) (DailyReport, error) {
	if date.IsZero() {
		return DailyReport{}, shared.Validation("date", "is required")
	}
	if notes != nil {
		if t := strings.TrimSpace(*notes); t != "" {
			notes = &t
		} else {
			notes = nil
		}
	}
	report, err := s.repo.UpdateNotes(ctx, day(date), notes)
	if err != nil {
		return DailyReport{}, fmt.Errorf("update daily report: %w", shared.Persistence("update daily report", err))
	}
	return report, nil
}

// RebuildDailyReport recomputes the report for date from the ledger.
func (s *Service) RebuildDailyReport(ctx context.Context, date time.Time) (DailyReport, error) {
	if date.IsZero() {
		return DailyReport{}, shared.Validation("date", "is required")
	}
	date = day(date)
	var report DailyReport
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		totals, err := tx.DayTotals(ctx, date)
		if err != nil {
			return err
		}
		report, err = tx.UpsertDaily(ctx, DailyReport{
			ReportDate:    date,
			TotalSales:    totals.TotalSales,
			TotalExpenses: totals.TotalExpenses,
			SalesCount:    totals.SalesCount,
			ExpensesCount: totals.ExpensesCount,
			Balance:       totals.TotalSales.Sub(totals.TotalExpenses),
		})
		return err
	})
	if err != nil {
		return DailyReport{}, fmt.Errorf("rebuild daily report: %w", shared.Persistence("upsert daily report", err))
	}
	s.logger.Info("daily report rebuilt",
		slog.String("date", date.Format(time.DateOnly)),
		slog.String("balance", report.Balance.StringFixed(2)))
	return report, nil
}

// SalesByCategory reads the materialized view as of its last refresh.
func (s *Service) SalesByCategory(ctx context.Context) ([]CategorySales, error) {
	out, err := s.repo.SalesByCategory(ctx)
	if err != nil {
		return []CategorySales{}, shared.Persistence("sales by category", err)
	}
	if out == nil {
		out = []CategorySales{}
	}
	return out, nil
}

// RefreshViews refreshes sales_by_category.
func (s *Service) RefreshViews(ctx context.Context) error {
	if err := s.repo.RefreshViews(ctx); err != nil {
		return shared.Persistence("refresh views", err)
	}
	return nil
}
