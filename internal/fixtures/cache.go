package fixtures

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Cache is a TTL cache keyed by string. The clock is injectable so tests can
// advance time without sleeping. Concurrent refreshes of the same key may
// race; last writer wins, which is fine because cached values are immutable.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(ttl, time.Now)
}

func NewCacheWithClock(ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value unless it is older than the TTL.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with the current timestamp.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Provider is the fixture lookup the voting and resolution services depend
// on; tests substitute a stub.
type Provider interface {
	GetFixture(ctx context.Context, fixtureID int64) (*Fixture, error)
}

// CachedProvider wraps a Provider with a TTL cache so repeated resolution
// calls for the same fixture within the TTL reuse the fetched data.
type CachedProvider struct {
	inner Provider
	cache *Cache
}

func NewCachedProvider(inner Provider, cache *Cache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache}
}

func (p *CachedProvider) GetFixture(ctx context.Context, fixtureID int64) (*Fixture, error) {
	key := strconv.FormatInt(fixtureID, 10)

	if cached, ok := p.cache.Get(key); ok {
		fixture := *(cached.(*Fixture))
		fixture.Source = "cached"
		return &fixture, nil
	}

	fixture, err := p.inner.GetFixture(ctx, fixtureID)
	if err != nil {
		return nil, err
	}
	p.cache.Set(key, fixture)

	live := *fixture
	live.Source = "live"
	return &live, nil
}
