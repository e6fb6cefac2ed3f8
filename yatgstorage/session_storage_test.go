package yatgstorage_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/yatgstorage"
	"github.com/gotd/td/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const (
	entityID = 1000
	secret   = "123456789:ABCDFEG"
	authKey  = "stolyarovtop"
)

func newMockDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	sqlDB.SetMaxOpenConns(1)

	poolDB, err := gorm.Open(
		sqlite.Dialector{
			Conn:       sqlDB,
			DriverName: "sqlite",
		},
		&gorm.Config{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return poolDB
}

func TestAES_RoundTrip(t *testing.T) {
	aes := yatgstorage.NewAES(secret)

	sealed, err := aes.Encrypt([]byte(authKey))
	require.Nil(t, err)
	assert.NotContains(t, string(sealed), authKey)

	opened, err := aes.Decrypt(sealed)
	require.Nil(t, err)
	assert.Equal(t, []byte(authKey), opened)

	_, err = yatgstorage.NewAES("other").Decrypt(sealed)
	assert.NotNil(t, err)
}

func TestSessionStorage_MemoryWorkflow(t *testing.T) {
	ctx := context.Background()
	storage := yatgstorage.NewSessionStorage(entityID, secret)

	t.Run("Empty storage reports not found to gotd", func(t *testing.T) {
		_, err := storage.TelegramSessionStorageCompatible().LoadSession(ctx)

		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("Store then load works", func(t *testing.T) {
		require.Nil(t, storage.StoreSession(ctx, []byte(authKey)))

		data, err := storage.LoadSession(ctx)
		require.Nil(t, err)
		assert.Equal(t, []byte(authKey), data)
	})
}

func TestGormSessionRepo_Workflow(t *testing.T) {
	ctx := context.Background()
	poolDB := newMockDB(t)

	repo, err := yatgstorage.NewGormSessionRepo(poolDB)
	require.Nil(t, err)
	assert.True(t, poolDB.Migrator().HasTable(&yatgstorage.BotSession{}))

	t.Run("Missing row is empty", func(t *testing.T) {
		data, err := repo.FetchAuthKey(ctx, entityID)

		require.Nil(t, err)
		assert.Nil(t, data)
	})

	t.Run("Upsert keeps the latest key", func(t *testing.T) {
		require.Nil(t, repo.UpdateAuthKey(ctx, entityID, []byte("first")))
		require.Nil(t, repo.UpdateAuthKey(ctx, entityID, []byte(authKey)))

		data, err := repo.FetchAuthKey(ctx, entityID)
		require.Nil(t, err)
		assert.Equal(t, []byte(authKey), data)

		var count int64
		poolDB.Model(&yatgstorage.BotSession{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Encrypted storage over gorm works", func(t *testing.T) {
		storage := yatgstorage.NewSessionStorageWithCustomRepo(entityID+1, secret, repo)

		require.Nil(t, storage.StoreSession(ctx, []byte(authKey)))

		data, err := storage.TelegramSessionStorageCompatible().LoadSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte(authKey), data)
	})
}
