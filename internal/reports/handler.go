package reports

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// ReportService is the surface the handler needs.
type ReportService interface {
	ListDailyReports(ctx context.Context, rng Range) ([]DailyReport, error)
	UpdateDailyReport(ctx context.Context, date time.Time, notes *string) (DailyReport, error)
	RebuildDailyReport(ctx context.Context, date time.Time) (DailyReport, error)
	SalesByCategory(ctx context.Context) ([]CategorySales, error)
}

type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
	metrics  httpx.DegradedRecorder
}

func NewHandler(logger *slog.Logger, service ReportService, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/daily", h.listDaily)
		r.Patch("/daily/{date}", h.updateDaily)
		r.Post("/daily/{date}/rebuild", h.rebuildDaily)
		r.Get("/sales-by-category", h.salesByCategory)
	})
}

type updateDailyRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

func pathDate(r *http.Request) (time.Time, error) {
	d, err := time.Parse(httpx.DateLayout, chi.URLParam(r, "date"))
	if err != nil {
		return time.Time{}, shared.Validation("date", "must be YYYY-MM-DD")
	}
	return d, nil
}

func (h *Handler) listDaily(w http.ResponseWriter, r *http.Request) {
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListDailyReports(r.Context(), Range{From: from, To: to})
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "daily_reports", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) updateDaily(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateDailyRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.UpdateDailyReport(r.Context(), date, req.Notes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, report)
}

func (h *Handler) rebuildDaily(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.RebuildDailyReport(r.Context(), date)
	if err != nil {
		h.logger.Error("rebuild daily report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, report)
}

func (h *Handler) salesByCategory(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.SalesByCategory(r.Context())
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "sales_by_category", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}
