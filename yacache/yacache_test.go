package yacache_test

import (
	"context"
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	yamainKey  = "bot-channels:42"
	yachildKey = "1001"
	yavalue    = "17"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, mr
}

func runCacheSuite[T yacache.Container](t *testing.T, cache yacache.Cache[T]) {
	t.Helper()

	ctx := context.Background()

	t.Run("[Ping] - works", func(t *testing.T) {
		assert.Nil(t, cache.Ping(ctx))
	})

	t.Run("[Set/Get] - round trip works", func(t *testing.T) {
		require.Nil(t, cache.Set(ctx, "file:abc", "payload", time.Hour))

		value, err := cache.Get(ctx, "file:abc")
		require.Nil(t, err)
		assert.Equal(t, "payload", value)

		exists, err := cache.Exists(ctx, "file:abc")
		require.Nil(t, err)
		assert.True(t, exists)
	})

	t.Run("[Get] - missing key wraps ErrNotFound", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing")

		require.NotNil(t, err)
		assert.ErrorIs(t, err, yacache.ErrNotFound)
	})

	t.Run("[Del] - delete works", func(t *testing.T) {
		require.Nil(t, cache.Set(ctx, "to-delete", "x", 0))
		require.Nil(t, cache.Del(ctx, "to-delete"))

		exists, err := cache.Exists(ctx, "to-delete")
		require.Nil(t, err)
		assert.False(t, exists)

		assert.Nil(t, cache.Del(ctx, "to-delete"))
	})

	t.Run("[HSet/HGet] - hash works", func(t *testing.T) {
		require.Nil(t, cache.HSet(ctx, yamainKey, yachildKey, yavalue))
		require.Nil(t, cache.HSet(ctx, yamainKey, "1002", "3"))

		value, err := cache.HGet(ctx, yamainKey, yachildKey)
		require.Nil(t, err)
		assert.Equal(t, yavalue, value)

		all, err := cache.HGetAll(ctx, yamainKey)
		require.Nil(t, err)
		assert.Equal(t, map[string]string{yachildKey: yavalue, "1002": "3"}, all)
	})

	t.Run("[HDelSingle] - delete field works", func(t *testing.T) {
		require.Nil(t, cache.HDelSingle(ctx, yamainKey, "1002"))

		_, err := cache.HGet(ctx, yamainKey, "1002")
		require.NotNil(t, err)
		assert.ErrorIs(t, err, yacache.ErrNotFound)
	})

	t.Run("[HGetAll] - missing hash is empty", func(t *testing.T) {
		all, err := cache.HGetAll(ctx, "nothing-here")

		require.Nil(t, err)
		assert.Empty(t, all)
	})
}

func TestCache_Redis(t *testing.T) {
	client, _ := setupTestRedis(t)

	runCacheSuite(t, yacache.NewCache(client))
}

func TestCache_Memory(t *testing.T) {
	cache := yacache.NewCache(yacache.NewMemoryContainer())
	t.Cleanup(func() { _ = cache.Close() })

	runCacheSuite(t, cache)
}

func TestMemory_TTLExpires(t *testing.T) {
	ctx := context.Background()
	cache := yacache.NewMemory(yacache.NewMemoryContainer(), time.Hour)

	defer cache.Close()

	require.Nil(t, cache.Set(ctx, "short", "v", time.Millisecond))

	time.Sleep(5 * time.Millisecond)

	exists, err := cache.Exists(ctx, "short")
	require.Nil(t, err)
	assert.False(t, exists)
}

func TestRedis_TTLExpires(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	cache := yacache.NewRedis(client)

	require.Nil(t, cache.Set(ctx, "short", "v", time.Minute))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "short")
	require.NotNil(t, err)
	assert.ErrorIs(t, err, yacache.ErrNotFound)
}
