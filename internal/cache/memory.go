package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process tier. Entries expire after a fixed TTL.
type MemoryCache struct {
	items  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a memory cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryCache{items: gocache.New(ttl, 2*ttl)}
}

// Get retrieves a value.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := m.items.Get(key)
	if !ok {
		m.misses.Add(1)
		return nil, false
	}
	m.hits.Add(1)
	return v.([]byte), true
}

// Put stores a value, replacing any previous one.
func (m *MemoryCache) Put(key string, value []byte) {
	m.items.SetDefault(key, value)
}

// Delete removes a value.
func (m *MemoryCache) Delete(key string) {
	m.items.Delete(key)
}

// Clear removes every value.
func (m *MemoryCache) Clear() {
	m.items.Flush()
}

// Stats returns the tier's counters.
func (m *MemoryCache) Stats() Stats {
	items := m.items.Items()
	var size int64
	for _, it := range items {
		if b, ok := it.Object.([]byte); ok {
			size += int64(len(b))
		}
	}
	return Stats{
		Level:  LevelMemory,
		Items:  int64(len(items)),
		Size:   size,
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
}
