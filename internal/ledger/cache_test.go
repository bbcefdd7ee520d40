package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaderiapro/panaderiapro/internal/platform/cache"
)

func newCachedService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, cache.NewVersioned(client, "ledger", time.Minute), nil, logger, defaultOptions())
}

func TestCurrentBalanceServedFromCacheUntilWrite(t *testing.T) {
	repo := newMockRepo()
	svc := newCachedService(t, repo)
	ctx := context.Background()

	_, err := svc.CreateSale(ctx, CreateSaleInput{IsFreeSale: true, FreeAmount: dec("30")})
	require.NoError(t, err)

	first, err := svc.CurrentBalance(ctx)
	require.NoError(t, err)
	second, err := svc.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.sumCalls)
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, second.Total.Equal(dec("30")))

	_, err = svc.AddExpense(ctx, AddExpenseInput{Amount: dec("7.25")})
	require.NoError(t, err)

	third, err := svc.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sumCalls)
	assert.True(t, third.Total.Equal(dec("22.75")), third.Total.String())
}

func TestCurrentBalanceFallsBackWhenRedisDown(t *testing.T) {
	repo := newMockRepo()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, cache.NewVersioned(client, "ledger", time.Minute), nil, logger, defaultOptions())
	mr.Close()

	b, err := svc.CurrentBalance(context.Background())
	require.NoError(t, err)
	assert.True(t, b.Total.IsZero())
	assert.Equal(t, 1, repo.sumCalls)
}
