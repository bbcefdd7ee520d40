package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	catalogshared "github.com/panaderiapro/panaderiapro/internal/catalog/shared"
	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  httpx.DegradedRecorder
}

func NewHandler(logger *slog.Logger, service *Service, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/stock", h.UpdateStock)
	})
}

type createProductRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Description  *string         `json:"description" validate:"omitempty,max=1000"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Stock        int             `json:"stock" validate:"gte=0"`
	MinimumStock int             `json:"minimum_stock" validate:"gte=0"`
	SKU          *string         `json:"sku" validate:"omitempty,max=64"`
	CategoryID   *int64          `json:"category_id" validate:"omitempty,gt=0"`
}

type updateStockRequest struct {
	Stock *int `json:"stock" validate:"required"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListActive(r.Context(), catalogshared.ListFilters{Search: r.URL.Query().Get("q")})
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "products", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.Create(r.Context(), CreateProductInput(req))
	if err != nil {
		h.logger.Error("create product failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, p)
}

// UpdateStock validates only presence; the sign check lives in the service so
// a negative value yields a field error rather than a tag error.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateStockRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	change, err := h.service.UpdateStock(r.Context(), id, *req.Stock)
	if err != nil {
		h.logger.Error("update stock failed", slog.Int64("product_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, change)
}
