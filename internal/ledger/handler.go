package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// LedgerService is the contract the handler depends on.
type LedgerService interface {
	CreateSale(ctx context.Context, in CreateSaleInput) (Sale, error)
	ListRecentSales(ctx context.Context) ([]SaleSummary, error)
	ListSales(ctx context.Context, filter SaleFilter) ([]SaleWithDetails, error)
	UpdateSaleStatus(ctx context.Context, id int64, status SaleStatus) (Sale, error)
	VoidSale(ctx context.Context, id int64) (Sale, error)
	RetrySaleDetails(ctx context.Context, saleID int64, lines []LineItem) (RetryResult, error)
	AddExpense(ctx context.Context, in AddExpenseInput) (Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	CurrentBalance(ctx context.Context) (Balance, error)
}

// Handler serves the ledger JSON API.
type Handler struct {
	logger   *slog.Logger
	service  LedgerService
	validate *validator.Validate
	metrics  httpx.DegradedRecorder
}

// NewHandler builds the ledger handler.
func NewHandler(logger *slog.Logger, service LedgerService, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.service.CreateSale(r.Context(), req.toInput())
	if err != nil {
		h.logger.Error("create sale failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, sale)
}

func (h *Handler) recentSales(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListRecentSales(r.Context())
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "latest_sales", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	from, to, page, err := rangeQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListSales(r.Context(), SaleFilter{From: from, To: to, Page: page})
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "sales", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateStatusRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.service.UpdateSaleStatus(r.Context(), id, SaleStatus(req.Status))
	if err != nil {
		h.logger.Error("update sale status failed", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, sale)
}

func (h *Handler) voidSale(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sale, err := h.service.VoidSale(r.Context(), id)
	if err != nil {
		h.logger.Error("void sale failed", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, sale)
}

func (h *Handler) retryDetails(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req retryDetailsRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.RetrySaleDetails(r.Context(), id, toLineItems(req.Lines))
	if err != nil {
		h.logger.Error("retry sale details failed", slog.Int64("sale_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	httpx.Data(w, status, result)
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	expense, err := h.service.AddExpense(r.Context(), req.toInput())
	if err != nil {
		h.logger.Error("add expense failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, expense)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	from, to, page, err := rangeQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListExpenses(r.Context(), ExpenseFilter{From: from, To: to, Page: page})
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "expenses", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.CurrentBalance(r.Context())
	if err != nil {
		httpx.ReadFailedWith(w, h.logger, h.metrics, "balance", err, Balance{})
		return
	}
	httpx.Data(w, http.StatusOK, b)
}

func rangeQuery(r *http.Request) (from, to *time.Time, page shared.Page, err error) {
	if from, err = httpx.QueryDate(r, "from"); err != nil {
		return
	}
	if to, err = httpx.QueryDate(r, "to"); err != nil {
		return
	}
	limit, err := httpx.QueryInt(r, "limit", 0)
	if err != nil {
		return
	}
	offset, err := httpx.QueryInt(r, "offset", 0)
	if err != nil {
		return
	}
	page = shared.NewPage(limit, offset)
	return
}
