package cache

import (
	"sync"
	"time"
)

// KV is the storage behind the snapshot repository. Values are stored as-is; callers own
// the type assertions.
type KV interface {
	Put(key string, v any)
	Get(key string) (any, bool)
	Delete(key string)
	Clear()
}

type Cache struct {
	mu   sync.RWMutex
	data map[string]expiring

	ttl       time.Duration
	ticker    *time.Ticker
	stop      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option { return func(c *Cache) { c.ttl = ttl } }

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		data: make(map[string]expiring),
		stop: make(chan struct{}),
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.ttl > 0 {
		c.ticker = time.NewTicker(c.ttl / 2)
		go c.janitor()
	}
	return c
}

func (c *Cache) janitor() {
	for {
		select {
		case <-c.ticker.C:
			c.purgeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		if c.ticker != nil {
			c.ticker.Stop()
		}
		close(c.stop)
	})
}

type expiring struct {
	V any
	E time.Time
}

func (e expiring) expired(now time.Time) bool { return !e.E.IsZero() && now.After(e.E) }

func (c *Cache) Put(key string, v any) {
	e := expiring{V: v}
	if c.ttl > 0 {
		e.E = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.data[key] = e
	c.mu.Unlock()
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.Delete(key)
		return nil, false
	}
	return e.V, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.data = make(map[string]expiring)
	c.mu.Unlock()
}

func (c *Cache) purgeExpired() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.data {
		if e.expired(now) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
}
