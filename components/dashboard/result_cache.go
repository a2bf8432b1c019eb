package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
)

// ResultCache memoizes the last successful Result per (widget, source, metric,
// filter) key. It backs the stale-while-revalidating contract: while a new
// computation is pending the previous result is served so widgets never flash
// blank.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewResultCache builds an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]Result)}
}

// Get returns the last stored result for the key.
func (c *ResultCache) Get(key string) (Result, bool) {
	if c == nil {
		return Result{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[key]
	return result, ok
}

// Set stores a successful result. Error and loading states are not cached so
// a transient failure never becomes the remembered value.
func (c *ResultCache) Set(key string, result Result) {
	if c == nil || result.Err != "" || result.Loading {
		return
	}
	c.mu.Lock()
	c.entries[key] = result
	c.mu.Unlock()
}

// Drop removes a single entry.
func (c *ResultCache) Drop(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DropWidget removes every entry memoized for the widget, across all date
// filters; used when a widget is removed or reconfigured.
func (c *ResultCache) DropWidget(widgetID string) {
	if c == nil {
		return
	}
	prefix := widgetID + ":"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// configHash returns a deterministic hash for an external API configuration,
// used to key render caches on effective widget config.
func configHash(cfg any) string {
	if cfg == nil {
		return "empty"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
