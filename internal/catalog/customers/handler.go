package customers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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
	r.Get("/customers", h.List)
	r.Post("/customers", h.Create)
	r.Delete("/customers/{id}", h.Deactivate)
}

type createCustomerRequest struct {
	Name  string  `json:"name" validate:"max=200"`
	Email *string `json:"email" validate:"omitempty,max=200"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListActive(r.Context(), catalogshared.ListFilters{Search: r.URL.Query().Get("q")})
	if err != nil {
		httpx.ReadFailed(w, h.logger, h.metrics, "customers", err)
		return
	}
	httpx.Data(w, http.StatusOK, out)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := httpx.Bind(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Add(r.Context(), AddCustomerInput(req))
	if err != nil {
		h.logger.Error("add customer failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, c)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, c)
}
