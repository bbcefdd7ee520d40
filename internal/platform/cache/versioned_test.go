package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "ledger", time.Minute), mr
}

func TestFetchJSONCachesLoaderResult(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "balance")
	require.NoError(t, err)
	assert.Equal(t, "ledger:balance:1", key)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]string{"balance": "70.00"}, nil
	}
	var first, second map[string]string
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "70.00", second["balance"])
}

func TestBumpChangesKey(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "balance")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "balance")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, "ledger:balance:2", after)
}

func TestFetchJSONLoaderErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var dest map[string]string
	err := c.FetchJSON(ctx, "ledger:x:1", &dest, func(context.Context) (any, error) {
		return nil, errors.New("store down")
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("ledger:x:1"))
}

func TestNilClientPassesThrough(t *testing.T) {
	c := NewVersioned(nil, "dashboard", time.Minute)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:summary", key)

	var dest int
	require.NoError(t, c.FetchJSON(ctx, key, &dest, func(context.Context) (any, error) { return 7, nil }))
	assert.Equal(t, 7, dest)
	assert.NoError(t, c.Bump(ctx))
	assert.NoError(t, c.ListenForInvalidation(ctx))
}
