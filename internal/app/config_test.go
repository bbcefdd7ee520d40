package app

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

func TestLoadConfigDefaultsWithoutStore(t *testing.T) {
	t.Setenv("STORE_URL", "")
	t.Setenv("STORE_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.True(t, cfg.LedgerAtomicWrites)
	assert.True(t, cfg.LedgerDecrementStock)

	storeErr := cfg.StoreError()
	require.Error(t, storeErr)
	assert.True(t, errors.Is(storeErr, shared.ErrNotConfigured))
	var nc *shared.NotConfiguredError
	require.True(t, errors.As(storeErr, &nc))
	assert.Equal(t, []string{"STORE_URL", "STORE_KEY"}, nc.Missing)
}

func TestStoreErrorNilWhenConfigured(t *testing.T) {
	t.Setenv("STORE_URL", " postgres://bakery@db.example:5432/postgres ")
	t.Setenv("STORE_KEY", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://bakery@db.example:5432/postgres", cfg.StoreURL)
	assert.NoError(t, cfg.StoreError())
}

func TestStoreErrorReportsSingleMissingKey(t *testing.T) {
	cfg := &Config{StoreURL: "postgres://localhost/db"}
	var nc *shared.NotConfiguredError
	require.True(t, errors.As(cfg.StoreError(), &nc))
	assert.Equal(t, []string{"STORE_KEY"}, nc.Missing)
}
