package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	type entry struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var got entry
	found, err := GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetCache(ctx, rdb, "k", entry{Name: "a", Count: 2}, time.Minute))
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{Name: "a", Count: 2}, got)

	mr.FastForward(2 * time.Minute)
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found, "entry should expire after its TTL")

	require.NoError(t, SetCache(ctx, rdb, "k", entry{Name: "b"}, time.Minute))
	require.NoError(t, DeleteCache(ctx, rdb, "k"))
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	var got string
	found, err := GetCache(context.Background(), rdb, "k", &got)
	require.Error(t, err)
	assert.False(t, found)
}
