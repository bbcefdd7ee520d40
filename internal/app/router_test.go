package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/catalog/categories"
	"github.com/panaderiapro/panaderiapro/internal/diagnostics"
	"github.com/panaderiapro/panaderiapro/internal/observability"
	"github.com/panaderiapro/panaderiapro/internal/shared"
	"github.com/panaderiapro/panaderiapro/jobs"
)

type stubCategories struct{}

func (stubCategories) List(ctx context.Context) ([]categories.Category, error) {
	return []categories.Category{{ID: 1, Name: "Panes"}}, nil
}

func (stubCategories) Create(ctx context.Context, c categories.Category) (categories.Category, error) {
	c.ID = 2
	return c, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ==========================================================================
// Setup-required mode
// ==========================================================================

func TestRouterSetupRequired(t *testing.T) {
	storeErr := (&Config{StoreURL: "postgres://db"}).StoreError()
	router := NewRouter(RouterParams{
		Logger:             testLogger(),
		Config:             &Config{RateLimitPerMinute: 1000},
		StoreErr:           storeErr,
		DiagnosticsHandler: diagnostics.NewHandler(diagnostics.NewChecker(nil, storeErr)),
	})

	rec := get(t, router, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"setup_required","missing":["STORE_KEY"]}`, rec.Body.String())

	rec = get(t, router, "/api/sales/recent")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var problem struct {
		Type    string   `json:"type"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "setup-required", problem.Type)
	assert.Equal(t, []string{"STORE_KEY"}, problem.Missing)

	rec = get(t, router, "/healthz/store")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "STORE_KEY")
}

// ==========================================================================
// Configured mode
// ==========================================================================

func TestRouterMountsAPI(t *testing.T) {
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{
		Logger:            testLogger(),
		Config:            &Config{RateLimitPerMinute: 1000},
		CategoriesHandler: categories.NewHandler(testLogger(), categories.NewService(stubCategories{}), metrics),
		JobHandler:        jobs.NewHandler(nil, testLogger()),
		Metrics:           metrics,
	})

	rec := get(t, router, "/healthz")
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(t, router, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Panes")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/sales/recent").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/jobs/health").Code)

	rec = get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "panaderia_http_requests_total")
}

func TestHealthWithoutNotConfiguredError(t *testing.T) {
	assert.Equal(t, healthStatus{Status: "setup_required"}, health(shared.ErrNotConfigured))
}
