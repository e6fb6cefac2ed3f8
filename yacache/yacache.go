// Package yacache provides a small key-value cache abstraction with two
// back-ends: an in-memory map guarded by a RW-mutex and a Redis wrapper.
// Both expose the same API so storage code can switch back-ends without
// changes.
//
// Plain keys support a TTL. Hashes are used for grouped values such as
// per-channel pts or access hashes and never expire on their own.
//
// # Quick start (in-memory)
//
//	memory := yacache.NewCache(yacache.NewMemoryContainer())
//	_ = memory.HSet(ctx, "bot-channels:42", "1001", "17")
//	pts, _ := memory.HGet(ctx, "bot-channels:42", "1001")
//
// # Quick start (Redis)
//
//	client := yacache.NewRedisClient("localhost", 6379, "", 0, log)
//	redis := yacache.NewCache(client)
//	_ = redis.Set(ctx, "file:abc", "...", time.Hour)
package yacache

import (
	"context"
	"time"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
	"github.com/redis/go-redis/v9"
)

// Cache is a generic cache abstraction. T is the concrete client returned by Raw.
//
// A missing key or field is reported as a yaerrors.Error wrapping ErrNotFound.
type Cache[T Container] interface {
	// Raw exposes the concrete client for operations outside this API.
	Raw() T

	// Set stores key → value. A zero ttl stores the value indefinitely.
	Set(ctx context.Context, key string, value string, ttl time.Duration) yaerrors.Error

	// Get retrieves the value previously saved under key.
	Get(ctx context.Context, key string) (string, yaerrors.Error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, yaerrors.Error)

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) yaerrors.Error

	// HSet sets childKey → value inside the hash stored at mainKey.
	HSet(ctx context.Context, mainKey string, childKey string, value string) yaerrors.Error

	// HGet fetches a single field from the hash.
	HGet(ctx context.Context, mainKey string, childKey string) (string, yaerrors.Error)

	// HGetAll returns a copy of the hash. A missing hash gives an empty map.
	HGetAll(ctx context.Context, mainKey string) (map[string]string, yaerrors.Error)

	// HDelSingle deletes exactly one field from the hash.
	HDelSingle(ctx context.Context, mainKey string, childKey string) yaerrors.Error

	// Ping verifies that the back-end is reachable.
	Ping(ctx context.Context) yaerrors.Error

	// Close releases resources.
	Close() yaerrors.Error
}

// Container is the set of back-end client types the generic cache can wrap.
type Container interface {
	*redis.Client | *MemoryContainer
}

// NewCache picks the implementation matching container.
//
// Example:
//
//	memory := yacache.NewCache(yacache.NewMemoryContainer())
//	redis := yacache.NewCache(yacache.NewRedisClient("localhost", 6379, "", 0, log))
func NewCache[T Container](container T) Cache[T] {
	switch _container := any(container).(type) {
	case *redis.Client:
		value, _ := any(NewRedis(_container)).(Cache[T])

		return value
	case *MemoryContainer:
		value, _ := any(NewMemory(_container, time.Minute)).(Cache[T])

		return value
	default:
		value, _ := any(NewMemory(NewMemoryContainer(), time.Minute)).(Cache[T])

		return value
	}
}
