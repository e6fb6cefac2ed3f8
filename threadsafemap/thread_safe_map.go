// Package threadsafemap provides a generic map guarded by a RWMutex.
//
// Every method holds the lock only for the map access itself; callbacks and
// I/O never run under it, so a ThreadSafeMap is safe to share between update
// processing and outbound calls.
package threadsafemap

import (
	"maps"
	"sync"
)

// ThreadSafeMap is a generic map implementation that supports concurrent read and write operations safely.
// The zero value is ready to use.
type ThreadSafeMap[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

// NewThreadSafeMap returns a new instance of a thread-safe map with initialized internal storage.
func NewThreadSafeMap[K comparable, V any]() *ThreadSafeMap[K, V] {
	return &ThreadSafeMap[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves the value for a key and a boolean indicating whether it was found.
func (m *ThreadSafeMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	val, exists := m.data[key]
	m.mu.RUnlock()

	return val, exists
}

// Set sets or replaces the value for a key.
func (m *ThreadSafeMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	m.init()
	m.data[key] = value
	m.mu.Unlock()
}

// GetOrSet returns the existing value for key, or stores value and returns it.
// The boolean reports whether the key was already present.
func (m *ThreadSafeMap[K, V]) GetOrSet(key K, value V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.data[key]; ok {
		return existing, true
	}

	m.init()
	m.data[key] = value

	return value, false
}

// Update stores fn(old, exists) under key atomically. fn runs under the write
// lock and must not block.
func (m *ThreadSafeMap[K, V]) Update(key K, fn func(old V, exists bool) V) {
	m.mu.Lock()
	m.init()
	old, exists := m.data[key]
	m.data[key] = fn(old, exists)
	m.mu.Unlock()
}

// Delete removes key if present.
func (m *ThreadSafeMap[K, V]) Delete(key K) {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
}

// Has reports whether key is present.
func (m *ThreadSafeMap[K, V]) Has(key K) bool {
	m.mu.RLock()
	_, exists := m.data[key]
	m.mu.RUnlock()

	return exists
}

// Length returns the number of entries.
func (m *ThreadSafeMap[K, V]) Length() int {
	m.mu.RLock()
	length := len(m.data)
	m.mu.RUnlock()

	return length
}

// Keys returns a snapshot of the keys in unspecified order.
func (m *ThreadSafeMap[K, V]) Keys() []K {
	m.mu.RLock()

	keys := make([]K, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}

	m.mu.RUnlock()

	return keys
}

// Copy returns a snapshot of the map.
func (m *ThreadSafeMap[K, V]) Copy() map[K]V {
	m.mu.RLock()
	copyMap := maps.Clone(m.data)
	m.mu.RUnlock()

	if copyMap == nil {
		copyMap = make(map[K]V)
	}

	return copyMap
}

func (m *ThreadSafeMap[K, V]) init() {
	if m.data == nil {
		m.data = make(map[K]V)
	}
}
