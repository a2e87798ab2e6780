package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// ResultCache keeps finished analyses in memory keyed by provider and image hash,
// so resubmitting the same picture skips the classifier.
type ResultCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewResultCache creates a cache whose entries live for ttl.
// A non-positive ttl disables caching.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		return &ResultCache{}
	}
	return &ResultCache{
		store: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Key builds the cache key for an image analysed by a given provider
func Key(provider, imageHash string) string {
	return provider + ":" + imageHash
}

// Get returns the cached analysis for key
func (c *ResultCache) Get(key string) (domain.Analysis, bool) {
	if c.store == nil {
		return domain.Analysis{}, false
	}

	v, ok := c.store.Get(key)
	if !ok {
		return domain.Analysis{}, false
	}

	analysis, ok := v.(domain.Analysis)
	return analysis, ok
}

// Set stores an analysis under key with the cache TTL
func (c *ResultCache) Set(key string, analysis domain.Analysis) {
	if c.store == nil {
		return
	}
	c.store.Set(key, analysis, gocache.DefaultExpiration)
}

// Len is the number of entries, expired ones included until the janitor runs
func (c *ResultCache) Len() int {
	if c.store == nil {
		return 0
	}
	return c.store.ItemCount()
}

// Flush drops every entry
func (c *ResultCache) Flush() {
	if c.store != nil {
		c.store.Flush()
	}
}

// Enabled reports whether the cache stores anything
func (c *ResultCache) Enabled() bool {
	return c.store != nil
}
