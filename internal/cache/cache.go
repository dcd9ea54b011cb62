package cache

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
)

// Config configures a Cache.
type Config struct {
	// Dir holds the disk tier. Empty disables it.
	Dir              string
	MemoryTTL        time.Duration
	MaxDiskBytes     int64
	CompressionLevel int
}

// Cache is the two-tier audio cache. Disk hits are promoted to memory.
type Cache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// New opens a cache.
func New(cfg Config) (*Cache, error) {
	c := &Cache{memory: NewMemoryCache(cfg.MemoryTTL)}
	if cfg.Dir != "" {
		disk, err := NewDiskCache(cfg.Dir, cfg.MaxDiskBytes, cfg.CompressionLevel)
		if err != nil {
			return nil, err
		}
		c.disk = disk
	}
	return c, nil
}

// Get looks key up in memory, then on disk.
func (c *Cache) Get(key string) ([]byte, bool) {
	if v, ok := c.memory.Get(key); ok {
		return v, true
	}
	if c.disk == nil {
		return nil, false
	}
	v, ok := c.disk.Get(key)
	if ok {
		c.memory.Put(key, v)
	}
	return v, ok
}

// Put stores value in both tiers. A disk failure is logged and otherwise
// ignored, since the value is still served from memory.
func (c *Cache) Put(key string, value []byte) {
	c.memory.Put(key, value)
	if c.disk == nil {
		return
	}
	if err := c.disk.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		log.Warn("unable to write audio cache", "err", err)
	}
}

// Clear empties both tiers.
func (c *Cache) Clear() error {
	c.memory.Clear()
	if c.disk == nil {
		return nil
	}
	return c.disk.Clear()
}

// Stats returns the counters of every enabled tier.
func (c *Cache) Stats() []Stats {
	stats := []Stats{c.memory.Stats()}
	if c.disk != nil {
		stats = append(stats, c.disk.Stats())
	}
	return stats
}

// Dir returns the disk tier's directory, or "" when it is disabled.
func (c *Cache) Dir() string {
	if c.disk == nil {
		return ""
	}
	return c.disk.Path()
}

// Close flushes the disk index.
func (c *Cache) Close() error {
	if c.disk == nil {
		return nil
	}
	return c.disk.Close()
}
