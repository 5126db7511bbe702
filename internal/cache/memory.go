package cache

import (
	"context"
	"sync"
	"time"

	"TrendEdge/internal/model"
)

type entry struct {
	bars     []model.OHLCV
	expireAt time.Time
	access   time.Time
}

// Memory is an in-process TTL cache. When full, the least recently used entry
// is evicted.
type Memory struct {
	mu         sync.Mutex
	m          map[Key]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a memory cache. maxEntries <= 0 means unbounded.
func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	return &Memory{
		m:          make(map[Key]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key Key) ([]model.OHLCV, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if now.After(e.expireAt) {
		delete(c.m, key)
		return nil, false, nil
	}
	e.access = now
	return clone(e.bars), true, nil
}

func (c *Memory) Set(_ context.Context, key Key, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.m[key]; !exists && c.maxEntries > 0 && len(c.m) >= c.maxEntries {
		c.evictLRU()
	}
	c.m[key] = &entry{bars: clone(bars), expireAt: now.Add(c.ttl), access: now}
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (c *Memory) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.m {
		if now.After(e.expireAt) {
			delete(c.m, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Memory) evictLRU() {
	var oldestKey Key
	var oldest time.Time
	first := true
	for k, e := range c.m {
		if first || e.access.Before(oldest) {
			oldestKey, oldest, first = k, e.access, false
		}
	}
	if !first {
		delete(c.m, oldestKey)
	}
}
