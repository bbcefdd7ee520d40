package procurement

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// PurchaseService is the surface the handler needs.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, in CreatePurchaseInput) (Purchase, error)
	ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, error)
}

// Handler wires procurement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  PurchaseService
	validate *validator.Validate
	metrics  httpx.DegradedRecorder
}

func NewHandler(logger *slog.Logger, service PurchaseService, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/purchases", h.list)
	r.Post("/purchases", h.create)
}

type lineRequest struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createPurchaseRequest struct {
	SupplierID *int64        `json:"supplier_id" validate:"omitempty,gt=0"`
	Lines      []lineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes      *string       `json:"notes" validate:"omitempty,max=500"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lines := make([]LineItem, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = LineItem(l)
	}
	p, err := h.service.CreatePurchase(r.Context(), CreatePurchaseInput{SupplierID: req.SupplierID, Lines: lines, Notes: req.Notes})
	if err != nil {
		h.logger.Error("create purchase failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	supplierID, err := httpx.QueryID(r, "supplier_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", 0)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	offset, err := httpx.QueryInt(r, "offset", 0)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListPurchases(r.Context(), ListFilter{SupplierID: supplierID, Page: shared.Page{Limit: limit, Offset: offset}})
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "purchases", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}
