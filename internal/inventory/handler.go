package inventory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// StockService is the contract the handler depends on.
type StockService interface {
	RecordMovement(ctx context.Context, in MovementInput) (Movement, error)
	ListMovements(ctx context.Context, productID *int64, page shared.Page) ([]Movement, error)
	CurrentStock(ctx context.Context) ([]StockLevel, error)
	LowStock(ctx context.Context) ([]StockLevel, error)
}

// Handler wires HTTP endpoints for inventory module.
type Handler struct {
	logger   *slog.Logger
	service  StockService
	validate *validator.Validate
	metrics  httpx.DegradedRecorder
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service StockService, metrics httpx.DegradedRecorder) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/stock", func(r chi.Router) {
		r.Get("/movements", h.handleListMovements)
		r.Post("/movements", h.handleRecordMovement)
		r.Get("/current", h.handleCurrentStock)
		r.Get("/low", h.handleLowStock)
	})
}

type movementRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Type      string  `json:"movement_type" validate:"required,oneof=sale purchase adjustment return"`
	Quantity  int     `json:"quantity" validate:"required,ne=0"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

func (h *Handler) handleRecordMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.RecordMovement(r.Context(), MovementInput{
		ProductID: req.ProductID,
		Type:      MovementType(req.Type),
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("record movement failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, m)
}

func (h *Handler) handleListMovements(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.QueryID(r, "product_id")
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
	out, err := h.service.ListMovements(r.Context(), productID, shared.NewPage(limit, offset))
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "stock_movements", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) handleCurrentStock(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.CurrentStock(r.Context())
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "current_stock", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.LowStock(r.Context())
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "low_stock", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}
