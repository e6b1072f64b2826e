// Package cache provides a content-addressed TTL cache for analysis results.
// Keys are fingerprints of the document text plus the analysis options, so
// identical requests are served without recomputation. The in-memory
// implementation is an LRU with per-entry expiry; Get and Set are atomic per
// key, so a concurrent Get during a Set observes either the old value or the
// new one, never a partial write.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultMaxSize = 512
	// DefaultTTL is how long an analysis result stays valid.
	DefaultTTL = 24 * time.Hour
)

// Fingerprint derives the cache key for a document and its analysis options.
// Options must be JSON-encodable; encoding is deterministic for struct types
// because encoding/json emits struct fields in declaration order.
func Fingerprint(documentText string, options any) string {
	h := sha256.New()
	h.Write([]byte(documentText))
	if options != nil {
		if b, err := json.Marshal(options); err == nil {
			h.Write([]byte{0})
			h.Write(b)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// entry holds a cached value with its expiry deadline.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL-checked LRU keyed by fingerprint.
type Cache[V any] struct {
	lru *lru.Cache[string, entry[V]]
	now func() time.Time
}

// New creates a cache holding at most maxSize entries. A non-positive
// maxSize uses the default.
func New[V any](maxSize int) (*Cache[V], error) {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	inner, err := lru.New[string, entry[V]](maxSize)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache[V]{lru: inner, now: time.Now}, nil
}

// Get returns the cached value for fingerprint, or ok=false on a miss or an
// expired entry. Expired entries are evicted so the LRU bookkeeping stays
// clean.
func (c *Cache[V]) Get(fingerprint string) (V, bool) {
	var zero V
	e, ok := c.lru.Get(fingerprint)
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(fingerprint)
		return zero, false
	}
	return e.value, true
}

// Set stores value under fingerprint for ttl. A non-positive ttl uses
// DefaultTTL.
func (c *Cache[V]) Set(fingerprint string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.lru.Add(fingerprint, entry[V]{value: value, expiresAt: c.now().Add(ttl)})
}

// Len returns the number of live entries, counting not-yet-evicted expired
// ones.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
