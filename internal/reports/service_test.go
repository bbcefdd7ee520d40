package reports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type mockRepo struct {
	reports    map[string]DailyReport
	totals     map[string]DayTotals
	categories []CategorySales
	readErr    error
	refreshed  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{reports: map[string]DailyReport{}, totals: map[string]DayTotals{}}
}

func key(t time.Time) string { return t.Format(time.DateOnly) }

func (m *mockRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *mockRepo) DayTotals(ctx context.Context, day time.Time) (DayTotals, error) {
	if m.readErr != nil {
		return DayTotals{}, m.readErr
	}
	return m.totals[key(day)], nil
}

func (m *mockRepo) UpsertDaily(ctx context.Context, d DailyReport) (DailyReport, error) {
	if existing, ok := m.reports[key(d.ReportDate)]; ok {
		d.ID = existing.ID
		d.Notes = existing.Notes
	} else {
		d.ID = int64(len(m.reports) + 1)
	}
	m.reports[key(d.ReportDate)] = d
	return d, nil
}

func (m *mockRepo) ListDaily(ctx context.Context, rng Range) ([]DailyReport, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []DailyReport
	for _, d := range m.reports {
		if rng.From != nil && d.ReportDate.Before(*rng.From) {
			continue
		}
		if rng.To != nil && d.ReportDate.After(*rng.To) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportDate.After(out[j].ReportDate) })
	return out, nil
}

func (m *mockRepo) UpdateNotes(ctx context.Context, day time.Time, notes *string) (DailyReport, error) {
	d, ok := m.reports[key(day)]
	if !ok {
		return DailyReport{}, shared.ErrNotFound
	}
	d.Notes = notes
	m.reports[key(day)] = d
	return d, nil
}

func (m *mockRepo) SalesByCategory(ctx context.Context) ([]CategorySales, error) {
	return m.categories, m.readErr
}

func (m *mockRepo) RefreshViews(ctx context.Context) error {
	m.refreshed++
	return m.readErr
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newService(repo *mockRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRebuildDailyReportComputesBalance(t *testing.T) {
	repo := newMockRepo()
	repo.totals["2024-05-17"] = DayTotals{
		TotalSales:    decimal.RequireFromString("10"),
		TotalExpenses: decimal.RequireFromString("12.75"),
		SalesCount:    1,
		ExpensesCount: 1,
	}
	svc := newService(repo)

	got, err := svc.RebuildDailyReport(context.Background(), time.Date(2024, 5, 17, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-17", key(got.ReportDate))
	assert.Equal(t, "-2.75", got.Balance.StringFixed(2))

	notes := "cierre"
	_, err = svc.UpdateDailyReport(context.Background(), date("2024-05-17"), &notes)
	require.NoError(t, err)

	again, err := svc.RebuildDailyReport(context.Background(), date("2024-05-17"))
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	require.NotNil(t, again.Notes)
	assert.Equal(t, "cierre", *again.Notes)
}

func TestListDailyReportsRange(t *testing.T) {
	repo := newMockRepo()
	for _, d := range []string{"2024-05-01", "2024-05-15", "2024-06-01"} {
		repo.reports[d] = DailyReport{ReportDate: date(d)}
	}
	svc := newService(repo)
	from, to := date("2024-05-01"), date("2024-05-31")

	out, err := svc.ListDailyReports(context.Background(), Range{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-05-15", key(out[0].ReportDate))
	assert.Equal(t, "2024-05-01", key(out[1].ReportDate))

	_, err = svc.ListDailyReports(context.Background(), Range{From: &to, To: &from})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateDailyReportMissing(t *testing.T) {
	_, err := newService(newMockRepo()).UpdateDailyReport(context.Background(), date("2024-01-01"), nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReadsDegrade(t *testing.T) {
	repo := newMockRepo()
	repo.readErr = errors.New("timeout")
	svc := newService(repo)

	out, err := svc.SalesByCategory(context.Background())
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.NotNil(t, out)
	assert.ErrorIs(t, svc.RefreshViews(context.Background()), shared.ErrPersistence)
}

func TestHandlerRoutes(t *testing.T) {
	repo := newMockRepo()
	repo.reports["2024-05-17"] = DailyReport{ID: 1, ReportDate: date("2024-05-17")}
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), newService(repo), nil)
	r := chi.NewRouter()
	h.MountRoutes(r)

	serve := func(method, target, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/reports/daily?from=2024-05-01", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodGet, "/reports/daily?from=mayo", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPatch, "/reports/daily/2024-05-17", `{"notes": "ok"}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(http.MethodPatch, "/reports/daily/2024-05-18", `{"notes": "ok"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(http.MethodPatch, "/reports/daily/17-05-2024", `{}`).Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/reports/daily/2024-05-18/rebuild", "").Code)
	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/reports/sales-by-category", "").Code)
}
