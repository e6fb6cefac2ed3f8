package yatgstorage_test

import (
	"context"
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgstorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stickerSetRecord struct {
	Name  string
	Title string
}

type fileCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Put(ctx context.Context, key string, value any) error
}

func runFileCacheSuite(t *testing.T, cache fileCache) {
	t.Helper()

	ctx := context.Background()

	var miss stickerSetRecord

	found, err := cache.Get(ctx, "stickerset:1", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Put(ctx, "stickerset:1", stickerSetRecord{Name: "old", Title: "Old"}))
	require.NoError(t, cache.Put(ctx, "stickerset:1", stickerSetRecord{Name: "yacats", Title: "Cats"}))

	var hit stickerSetRecord

	found, err = cache.Get(ctx, "stickerset:1", &hit)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, stickerSetRecord{Name: "yacats", Title: "Cats"}, hit)
}

func TestCacheFileCache_Redis(t *testing.T) {
	runFileCacheSuite(t, yatgstorage.NewCacheFileCache(newRedisCache(t), "bot-files:", time.Hour))
}

func TestGormFileCache(t *testing.T) {
	cache, err := yatgstorage.NewGormFileCache(newMockDB(t))
	require.Nil(t, err)

	runFileCacheSuite(t, cache)
}
