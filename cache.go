package sitepress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCacheMiss is returned by a CacheBackend when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CacheBackend stores opaque values with a TTL. Implementations must be safe
// for concurrent use.
type CacheBackend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryCache is an in-process CacheBackend.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements CacheBackend.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && !m.now().Before(e.expires)) {
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set implements CacheBackend. A zero ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete implements CacheBackend.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Close implements CacheBackend.
func (m *MemoryCache) Close() error {
	return nil
}

// SiteSource loads the site setup from durable storage.
type SiteSource interface {
	SiteSetup(ctx context.Context) (SiteSetup, error)
}

const siteSetupKey = "site_setup"

// SiteCache caches the site setup, which every rendered page needs, in a
// CacheBackend with a TTL. Backend failures fall back to the source.
type SiteCache struct {
	backend CacheBackend
	source  SiteSource
	ttl     time.Duration
	logger  *slog.Logger

	mu sync.Mutex // serialises reloads
}

// NewSiteCache creates a SiteCache over source.
func NewSiteCache(backend CacheBackend, source SiteSource, ttl time.Duration, logger *slog.Logger) *SiteCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteCache{backend: backend, source: source, ttl: ttl, logger: logger}
}

// SiteSetup returns the cached site setup, loading it on a miss.
func (c *SiteCache) SiteSetup(ctx context.Context) (SiteSetup, error) {
	if ss, ok := c.cached(ctx); ok {
		return ss, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ss, ok := c.cached(ctx); ok {
		return ss, nil
	}
	return c.load(ctx)
}

// Refresh reloads the site setup from the source unconditionally.
func (c *SiteCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.load(ctx)
	return err
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *SiteCache) Invalidate(ctx context.Context) error {
	return c.backend.Delete(ctx, siteSetupKey)
}

func (c *SiteCache) cached(ctx context.Context) (SiteSetup, bool) {
	b, err := c.backend.Get(ctx, siteSetupKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("site cache read failed", "error", err)
		}
		return SiteSetup{}, false
	}
	var ss SiteSetup
	if err := json.Unmarshal(b, &ss); err != nil {
		c.logger.Warn("site cache entry corrupt", "error", err)
		return SiteSetup{}, false
	}
	return ss, true
}

func (c *SiteCache) load(ctx context.Context) (SiteSetup, error) {
	ss, err := c.source.SiteSetup(ctx)
	if err != nil {
		return SiteSetup{}, err
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return SiteSetup{}, err
	}
	if err := c.backend.Set(ctx, siteSetupKey, b, c.ttl); err != nil {
		c.logger.Warn("site cache write failed", "error", err)
	}
	return ss, nil
}
