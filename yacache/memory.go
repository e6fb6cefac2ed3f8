package yacache

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
	"time"
	"weak"

	"github.com/YaCodeDev/GoYaTgBotAPI/yaerrors"
)

// MemoryContainer holds the raw data of a Memory cache.
type MemoryContainer struct {
	HMap map[string]map[string]string
	Map  map[string]memoryCacheItem
}

type memoryCacheItem struct {
	Value     string
	ExpiresAt time.Time
}

func (i memoryCacheItem) isExpired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// NewMemoryContainer returns an empty container.
func NewMemoryContainer() *MemoryContainer {
	return &MemoryContainer{
		HMap: make(map[string]map[string]string),
		Map:  make(map[string]memoryCacheItem),
	}
}

// Memory is a threadsafe, TTL-aware map-backed cache suitable for a single
// process or unit tests. Expired keys are invisible immediately and purged by
// a background sweeper that stops once the cache is closed or collected.
type Memory struct {
	inner *MemoryContainer
	mutex sync.RWMutex
	done  chan struct{}
	once  sync.Once
}

// NewMemory builds a Memory cache over data and starts the sweeper.
//
// Example:
//
//	memory := yacache.NewMemory(yacache.NewMemoryContainer(), 30*time.Second)
func NewMemory(data *MemoryContainer, tickToClean time.Duration) *Memory {
	if data == nil {
		data = NewMemoryContainer()
	}

	cache := &Memory{
		inner: data,
		done:  make(chan struct{}),
	}

	go cleanup(weak.Make(cache), tickToClean, cache.done)

	return cache
}

func cleanup(pointer weak.Pointer[Memory], tickToClean time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(tickToClean)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			memory := pointer.Value()
			if memory == nil {
				return
			}

			now := time.Now()

			memory.mutex.Lock()

			for key, value := range memory.inner.Map {
				if value.isExpired(now) {
					delete(memory.inner.Map, key)
				}
			}

			memory.mutex.Unlock()
		case <-done:
			return
		}
	}
}

func (m *Memory) Raw() *MemoryContainer {
	return m.inner
}

func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) yaerrors.Error {
	item := memoryCacheItem{Value: value}
	if ttl > 0 {
		item.ExpiresAt = time.Now().Add(ttl)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.inner.Map[key] = item

	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, yaerrors.Error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.inner.Map[key]
	if !ok || value.isExpired(time.Now()) {
		return "", yaerrors.FromError(
			http.StatusNotFound,
			ErrNotFound,
			"[MEMORY] failed to get value in key: "+key,
		)
	}

	return value.Value, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, yaerrors.Error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.inner.Map[key]

	return ok && !value.isExpired(time.Now()), nil
}

func (m *Memory) Del(_ context.Context, key string) yaerrors.Error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.inner.Map, key)
	delete(m.inner.HMap, key)

	return nil
}

func (m *Memory) HSet(_ context.Context, mainKey string, childKey string, value string) yaerrors.Error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	childMap, ok := m.inner.HMap[mainKey]
	if !ok {
		childMap = make(map[string]string)
		m.inner.HMap[mainKey] = childMap
	}

	childMap[childKey] = value

	return nil
}

func (m *Memory) HGet(_ context.Context, mainKey string, childKey string) (string, yaerrors.Error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.inner.HMap[mainKey][childKey]
	if !ok {
		return "", yaerrors.FromError(
			http.StatusNotFound,
			ErrNotFound,
			fmt.Sprintf("[MEMORY] failed `HGET` by %s:%s", mainKey, childKey),
		)
	}

	return value, nil
}

func (m *Memory) HGetAll(_ context.Context, mainKey string) (map[string]string, yaerrors.Error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make(map[string]string, len(m.inner.HMap[mainKey]))
	maps.Copy(result, m.inner.HMap[mainKey])

	return result, nil
}

func (m *Memory) HDelSingle(_ context.Context, mainKey string, childKey string) yaerrors.Error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	childMap, ok := m.inner.HMap[mainKey]
	if !ok {
		return nil
	}

	delete(childMap, childKey)

	if len(childMap) == 0 {
		delete(m.inner.HMap, mainKey)
	}

	return nil
}

func (m *Memory) Ping(_ context.Context) yaerrors.Error {
	return nil
}

func (m *Memory) Close() yaerrors.Error {
	m.once.Do(func() {
		close(m.done)
	})

	return nil
}
