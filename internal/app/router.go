package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/panaderiapro/panaderiapro/internal/catalog/categories"
	"github.com/panaderiapro/panaderiapro/internal/catalog/customers"
	"github.com/panaderiapro/panaderiapro/internal/catalog/products"
	"github.com/panaderiapro/panaderiapro/internal/catalog/suppliers"
	"github.com/panaderiapro/panaderiapro/internal/dashboard"
	"github.com/panaderiapro/panaderiapro/internal/diagnostics"
	"github.com/panaderiapro/panaderiapro/internal/inventory"
	"github.com/panaderiapro/panaderiapro/internal/ledger"
	"github.com/panaderiapro/panaderiapro/internal/observability"
	"github.com/panaderiapro/panaderiapro/internal/platform/httpx"
	"github.com/panaderiapro/panaderiapro/internal/procurement"
	"github.com/panaderiapro/panaderiapro/internal/reports"
	"github.com/panaderiapro/panaderiapro/internal/shared"
	"github.com/panaderiapro/panaderiapro/jobs"
)

// RouterParams groups dependencies for building the HTTP router. API handlers
// may be nil when StoreErr is set.
type RouterParams struct {
	Logger   *slog.Logger
	Config   *Config
	StoreErr error

	CustomersHandler   *customers.Handler
	ProductsHandler    *products.Handler
	CategoriesHandler  *categories.Handler
	SuppliersHandler   *suppliers.Handler
	LedgerHandler      *ledger.Handler
	InventoryHandler   *inventory.Handler
	ProcurementHandler *procurement.Handler
	ReportsHandler     *reports.Handler
	DashboardHandler   *dashboard.Handler
	DiagnosticsHandler *diagnostics.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

type healthStatus struct {
	Status  string   `json:"status"`
	Missing []string `json:"missing,omitempty"`
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, health(params.StoreErr))
	})
	if params.DiagnosticsHandler != nil {
		params.DiagnosticsHandler.MountRoutes(r)
	}

	r.Route("/api", func(r chi.Router) {
		if params.StoreErr != nil {
			r.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
				httpx.RespondError(w, params.StoreErr)
			})
			return
		}
		if params.CustomersHandler != nil {
			params.CustomersHandler.MountRoutes(r)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(r)
		}
		if params.CategoriesHandler != nil {
			params.CategoriesHandler.MountRoutes(r)
		}
		if params.SuppliersHandler != nil {
			params.SuppliersHandler.MountRoutes(r)
		}
		if params.LedgerHandler != nil {
			params.LedgerHandler.MountRoutes(r)
		}
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(r)
		}
		if params.ProcurementHandler != nil {
			params.ProcurementHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func health(storeErr error) healthStatus {
	if storeErr == nil {
		return healthStatus{Status: "ok"}
	}
	out := healthStatus{Status: "setup_required"}
	var nc *shared.NotConfiguredError
	if errors.As(storeErr, &nc) {
		out.Missing = nc.Missing
	}
	return out
}
