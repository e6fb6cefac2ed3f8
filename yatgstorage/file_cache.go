package yatgstorage

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yacache"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaencoding"
	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheFileCache stores values the Bot-API layer wants to remember, such as
// sticker set names, in a yacache.Cache as MessagePack records.
type CacheFileCache[T yacache.Container] struct {
	cache  yacache.Cache[T]
	prefix string
	ttl    time.Duration
}

// NewCacheFileCache prefixes every key with prefix. A zero ttl keeps values forever.
func NewCacheFileCache[T yacache.Container](
	cache yacache.Cache[T],
	prefix string,
	ttl time.Duration,
) *CacheFileCache[T] {
	return &CacheFileCache[T]{
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *CacheFileCache[T]) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.cache.Get(ctx, c.prefix+key)
	if errors.Is(err, yacache.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err.Wrap("failed to load cached file value")
	}

	if err := yaencoding.DecodeMessagePackInto([]byte(raw), dst); err != nil {
		return false, err.Wrap("failed to decode cached file value")
	}

	return true, nil
}

func (c *CacheFileCache[T]) Put(ctx context.Context, key string, value any) error {
	raw, err := yaencoding.EncodeMessagePack(value)
	if err != nil {
		return err.Wrap("failed to encode cached file value")
	}

	if err := c.cache.Set(ctx, c.prefix+key, string(raw), c.ttl); err != nil {
		return err.Wrap("failed to store cached file value")
	}

	return nil
}

// CachedFile is the gorm model behind GormFileCache.
type CachedFile struct {
	CacheKey  string `gorm:"primaryKey"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

// GormFileCache is a persistent alternative to CacheFileCache.
type GormFileCache struct {
	poolDB *gorm.DB
}

func NewGormFileCache(poolDB *gorm.DB) (*GormFileCache, yaerrors.Error) {
	if err := poolDB.AutoMigrate(&CachedFile{}); err != nil {
		return nil, yaerrors.FromError(
			http.StatusInternalServerError,
			err,
			"failed to migrate cached files",
		)
	}

	return &GormFileCache{poolDB: poolDB}, nil
}

func (g *GormFileCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	var stored CachedFile

	err := g.poolDB.WithContext(ctx).Where(&CachedFile{CacheKey: key}).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, yaerrors.FromError(
			http.StatusInternalServerError,
			errors.Join(err, ErrFailedToLoadFile),
			"failed to load cached file "+key,
		)
	}

	if err := yaencoding.DecodeMessagePackInto(stored.Value, dst); err != nil {
		return false, err.Wrap("failed to decode cached file " + key)
	}

	return true, nil
}

func (g *GormFileCache) Put(ctx context.Context, key string, value any) error {
	raw, yaerr := yaencoding.EncodeMessagePack(value)
	if yaerr != nil {
		return yaerr.Wrap("failed to encode cached file " + key)
	}

	if err := g.poolDB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&CachedFile{CacheKey: key, Value: raw}).Error; err != nil {
		return yaerrors.FromError(
			http.StatusInternalServerError,
			errors.Join(err, ErrFailedToStoreFile),
			"failed to store cached file "+key,
		)
	}

	return nil
}
