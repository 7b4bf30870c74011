package keysmanager

import (
	"sync"
	"time"

	"github.com/xmlsecgo/keyinfo"
)

// Cache is an in-memory TTL cache of resolved keys, keyed by KeyName text.
// Adapted from keybase/cache/cache.go's CacheEntry/TTL shape, backed by a
// map instead of a JSON file: a KeyInfo pass has no equivalent of Keybase's
// long-lived local keyring state to persist across process restarts.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	key       *keyinfo.Key
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool { return time.Now().After(e.expiresAt) }

// DefaultCacheTTL mirrors keybase/cache's 24-hour default.
const DefaultCacheTTL = 24 * time.Hour

// NewCache returns an empty Cache. A non-positive ttl falls back to
// DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{entries: make(map[string]*cacheEntry), ttl: ttl}
}

// Get returns a copy of the cached key for name, or nil on a miss or
// expired entry.
func (c *Cache) Get(name string) *keyinfo.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	if !ok || entry.isExpired() {
		return nil
	}
	out := keyinfo.NewKey()
	out.CopyFrom(entry.key)
	return out
}

// Set stores a copy of key under name, replacing any existing entry.
func (c *Cache) Set(name string, key *keyinfo.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := keyinfo.NewKey()
	stored.CopyFrom(key)
	c.entries[name] = &cacheEntry{key: stored, expiresAt: time.Now().Add(c.ttl)}
}

// Delete removes name's cached entry, if any.
func (c *Cache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// PruneExpired removes every expired entry.
func (c *Cache) PruneExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, entry := range c.entries {
		if entry.isExpired() {
			delete(c.entries, name)
		}
	}
}
