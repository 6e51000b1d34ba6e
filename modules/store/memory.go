package store

import (
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/guarzo/talentiq/common"
)

var _ common.Store = (*memoryStore)(nil)

// memoryStore keeps session state in process memory. Entries never expire;
// the session decides when they go away.
type memoryStore struct {
	// mu makes SetAll/Delete atomic across keys; go-cache only locks per call.
	mu    sync.RWMutex
	cache *cache.Cache
}

// NewMemory returns an in-process Store. Useful for tests and short-lived CLIs.
func NewMemory() common.Store {
	return &memoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (m *memoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, found := m.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	return value.([]byte), true, nil
}

func (m *memoryStore) SetAll(values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range values {
		// copy so callers can't mutate stored state
		m.cache.Set(k, append([]byte(nil), v...), cache.NoExpiration)
	}
	return nil
}

func (m *memoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		m.cache.Delete(k)
	}
	return nil
}
