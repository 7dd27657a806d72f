// Package cache provides the optional in-memory result cache. Identical text
// analyzed with identical options within the TTL returns the cached result
// without touching the reasoning provider.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rvelikov/fallax/internal/model"
)

const keyPrefix = "fallax:v1:"

// ResultCache stores completed analysis results keyed by input text and
// options. Results are treated as immutable once stored; callers must not
// modify what Get returns.
type ResultCache struct {
	cache *gocache.Cache
}

// NewResultCache creates a cache with the given default TTL.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ResultCache{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Key derives the cache key for a text/options pair. Any option that changes
// the result participates in the key.
func Key(text string, opts model.AnalysisOptions) string {
	h := sha256.New()
	h.Write([]byte(keyPrefix))
	h.Write([]byte(text))
	fmt.Fprintf(h, "|rewrite=%t|min=%d", opts.IncludeRewrite, opts.MinConfidence)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for the key, if present and fresh.
func (c *ResultCache) Get(key string) (*model.AnalysisResult, bool) {
	if c == nil {
		return nil, false
	}
	if val, found := c.cache.Get(key); found {
		return val.(*model.AnalysisResult), true
	}
	return nil, false
}

// Set stores a result under the key with the cache's default TTL.
func (c *ResultCache) Set(key string, result *model.AnalysisResult) {
	if c == nil {
		return
	}
	c.cache.Set(key, result, gocache.DefaultExpiration)
}

// Clear drops every cached result.
func (c *ResultCache) Clear() {
	if c == nil {
		return
	}
	c.cache.Flush()
}

// Len reports how many results are currently cached.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}
