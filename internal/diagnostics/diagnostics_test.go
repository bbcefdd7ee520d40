package diagnostics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

type fakeCounter struct {
	mu     sync.Mutex
	seen   []string
	failOn string
}

func (f *fakeCounter) CountRows(ctx context.Context, table string) (int64, error) {
	f.mu.Lock()
	f.seen = append(f.seen, table)
	f.mu.Unlock()
	if table == f.failOn {
		return 0, errors.New(`relation "` + table + `" does not exist`)
	}
	return int64(len(table)), nil
}

func TestCheckCountsEveryTable(t *testing.T) {
	counter := &fakeCounter{}
	report := NewChecker(counter, nil).Check(context.Background())

	assert.True(t, report.OK)
	require.Len(t, report.Tables, len(Tables))
	assert.ElementsMatch(t, Tables, counter.seen)
	for i, status := range report.Tables {
		assert.Equal(t, Tables[i], status.Name)
		assert.Equal(t, int64(len(status.Name)), status.Rows)
		assert.Empty(t, status.Error)
	}
}

func TestCheckIsolatesFailingTable(t *testing.T) {
	report := NewChecker(&fakeCounter{failOn: "purchases"}, nil).Check(context.Background())

	assert.False(t, report.OK)
	for _, status := range report.Tables {
		if status.Name == "purchases" {
			assert.Contains(t, status.Error, "does not exist")
			continue
		}
		assert.Empty(t, status.Error, status.Name)
	}
}

func TestCheckReportsMissingConfig(t *testing.T) {
	counter := &fakeCounter{}
	report := NewChecker(counter, &shared.NotConfiguredError{Missing: []string{"STORE_KEY"}}).Check(context.Background())

	assert.False(t, report.OK)
	assert.Equal(t, []string{"STORE_KEY"}, report.Missing)
	assert.Empty(t, counter.seen)
}

func TestStoreHealthStatus(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(NewChecker(&fakeCounter{}, nil)).MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/store", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	r = chi.NewRouter()
	NewHandler(NewChecker(&fakeCounter{failOn: "sales"}, nil)).MountRoutes(r)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/store", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"sales"`)
}
