// ABOUTME: In-memory cache with TTL-based expiration
// ABOUTME: Mutex-guarded map with a background janitor that can be stopped

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	data      interface{}
	expiresAt time.Time
}

// Cache is a thread-safe TTL cache. Snapshots are expensive to collect and
// cheap to hold, so values live until their deadline passes or Clear is
// called.
type Cache struct {
	mu    sync.Mutex
	store map[string]entry
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// New creates a cache with the given default TTL and starts its janitor.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		store: make(map[string]entry),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get returns the cached value for key if it has not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[key]
	if !ok {
		slog.Debug("Cache miss", "key", key)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.store, key)
		slog.Debug("Cache expired", "key", key)
		return nil, false
	}

	slog.Debug("Cache hit", "key", key)
	return e.data, true
}

// Set stores a value under key with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.store[key] = entry{
		data:      value,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	slog.Debug("Cache set", "key", key, "ttl", ttl)
}

// Clear removes one key.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Stop terminates the janitor goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.store {
				if now.After(e.expiresAt) {
					delete(c.store, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
