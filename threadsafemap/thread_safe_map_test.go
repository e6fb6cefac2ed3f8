package threadsafemap_test

import (
	"sync"
	"testing"

	"github.com/YaCodeDev/GoYaTgBotAPI/threadsafemap"
	"github.com/stretchr/testify/assert"
)

func TestThreadSafeMap_ZeroValueUsable(t *testing.T) {
	var m threadsafemap.ThreadSafeMap[int64, string]

	_, ok := m.Get(1)
	assert.False(t, ok)

	m.Set(1, "one")

	value, ok := m.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "one", value)
}

func TestThreadSafeMap_GetOrSet(t *testing.T) {
	m := threadsafemap.NewThreadSafeMap[string, int]()

	value, found := m.GetOrSet("a", 1)
	assert.False(t, found)
	assert.Equal(t, 1, value)

	value, found = m.GetOrSet("a", 2)
	assert.True(t, found)
	assert.Equal(t, 1, value)
}

func TestThreadSafeMap_LastWriteWins(t *testing.T) {
	m := threadsafemap.NewThreadSafeMap[int, int]()

	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			m.Set(7, i)
			m.Update(i, func(old int, _ bool) int { return old + 1 })
		}()
	}

	wg.Wait()

	assert.Equal(t, 100, m.Length())
	assert.True(t, m.Has(7))
}

func TestThreadSafeMap_CopyIsSnapshot(t *testing.T) {
	m := threadsafemap.NewThreadSafeMap[int, string]()
	m.Set(1, "a")

	snapshot := m.Copy()
	m.Set(2, "b")
	m.Delete(1)

	assert.Equal(t, map[int]string{1: "a"}, snapshot)
	assert.ElementsMatch(t, []int{2}, m.Keys())
}
