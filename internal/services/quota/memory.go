package quota

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	value     int64
	expiresAt time.Time
}

// MemoryStore keeps counters in process memory. It is used when no Redis
// address is configured; counters reset on restart.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]memoryCounter
	nowFn    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]memoryCounter), nowFn: time.Now}
}

func (m *MemoryStore) Reserve(_ context.Context, key string, n, limit int64, ttl time.Duration) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counter := m.currentLocked(key)
	if counter.value == 0 {
		counter.expiresAt = m.nowFn().Add(ttl)
	}
	if counter.value+n > limit {
		return counter.value, false, nil
	}
	counter.value += n
	m.counters[key] = counter
	return counter.value, true, nil
}

func (m *MemoryStore) Release(_ context.Context, key string, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	counter := m.currentLocked(key)
	counter.value -= n
	if counter.value < 0 {
		counter.value = 0
	}
	m.counters[key] = counter
	return nil
}

func (m *MemoryStore) Used(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked(key).value, nil
}

func (m *MemoryStore) currentLocked(key string) memoryCounter {
	counter, ok := m.counters[key]
	if !ok {
		return memoryCounter{}
	}
	if !counter.expiresAt.IsZero() && !m.nowFn().Before(counter.expiresAt) {
		delete(m.counters, key)
		return memoryCounter{}
	}
	return counter
}
