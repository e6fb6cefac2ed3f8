package yatgstorage_test

import (
	"context"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/YaCodeDev/GoYaTgBotAPI/yatgstorage"
	"github.com/alicebob/miniredis/v2"
	"github.com/gotd/td/telegram/updates"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) yacache.Cache[*redis.Client] {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return yacache.NewCache(client)
}

func TestStateStorage_Redis(t *testing.T) {
	ctx := context.Background()
	storage := yatgstorage.NewStateStorage(newRedisCache(t), nil).TelegramStorageCompatible()

	t.Run("[GetState] - missing state is not found", func(t *testing.T) {
		_, found, err := storage.GetState(ctx, entityID)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("[SetState] - partial setters keep other fields", func(t *testing.T) {
		require.NoError(t, storage.SetState(ctx, entityID, updates.State{Pts: 10, Qts: 2, Date: 100, Seq: 5}))
		require.NoError(t, storage.SetPts(ctx, entityID, 11))
		require.NoError(t, storage.SetDateSeq(ctx, entityID, 200, 6))

		state, found, err := storage.GetState(ctx, entityID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, updates.State{Pts: 11, Qts: 2, Date: 200, Seq: 6}, state)
	})

	t.Run("[ChannelPts] - per channel values", func(t *testing.T) {
		require.NoError(t, storage.SetChannelPts(ctx, entityID, 1001, 7))
		require.NoError(t, storage.SetChannelPts(ctx, entityID, 1002, 9))

		pts, found, err := storage.GetChannelPts(ctx, entityID, 1001)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 7, pts)

		_, found, err = storage.GetChannelPts(ctx, entityID, 999)
		require.NoError(t, err)
		assert.False(t, found)

		seen := map[int64]int{}
		require.NoError(t, storage.ForEachChannels(ctx, entityID, func(_ context.Context, channelID int64, pts int) error {
			seen[channelID] = pts

			return nil
		}))
		assert.Equal(t, map[int64]int{1001: 7, 1002: 9}, seen)
	})
}

func TestStateStorage_AccessHashMemory(t *testing.T) {
	ctx := context.Background()
	cache := yacache.NewCache(yacache.NewMemoryContainer())

	t.Cleanup(func() { _ = cache.Close() })

	hasher := yatgstorage.NewStateStorage(cache, nil).TelegramAccessHasherCompatible()

	_, found, err := hasher.GetChannelAccessHash(ctx, entityID, 1001)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, hasher.SetChannelAccessHash(ctx, entityID, 1001, -424242))

	hash, found, err := hasher.GetChannelAccessHash(ctx, entityID, 1001)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(-424242), hash)
}
