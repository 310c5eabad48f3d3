// File: cache.go
// Role: C10 — bounded, time-expiring result cache keyed by (index kind,
// query key, parameter map), backed by an LRU for count-bounded eviction and
// a timestamp for lazy age-based expiry (spec §4.6).
// AI-HINT (file):
//   - hashicorp/golang-lru/v2 gives O(1) recency-based eviction; this file
//     layers the max_age_ms lazy-expiry rule described in spec §4.6 on top,
//     since plain LRU recency alone doesn't model a TTL.
package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Kind tags which index produced a cached result, for invalidate_index_kind.
type Kind string

// Kind constants.
const (
	KindSingle    Kind = "single"
	KindComposite Kind = "composite"
	KindRange     Kind = "range"
)

// CacheKey identifies one cached query result.
type CacheKey struct {
	IndexKind Kind
	Key       string // single key, or composite keys joined, or range key
	Params    map[string]string
}

// String renders a deterministic cache key string, sorted by param name.
func (k CacheKey) String() string {
	names := make([]string, 0, len(k.Params))
	for p := range k.Params {
		names = append(names, p)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(string(k.IndexKind))
	b.WriteByte('|')
	b.WriteString(k.Key)
	for _, p := range names {
		fmt.Fprintf(&b, "|%s=%s", p, k.Params[p])
	}
	return b.String()
}

type cacheEntry struct {
	key          CacheKey
	result       []ElementID
	insertedAtMs int64
}

// Stats is a point-in-time snapshot of cache performance counters.
type Stats struct {
	Hits           uint64
	Misses         uint64
	Evictions      uint64
	HitRate        float64
	EstimatedBytes int64
}

// IndexCache is C10.
type IndexCache struct {
	mu       sync.Mutex
	lru      *lru.Cache[string, *cacheEntry]
	maxAgeMs int64
	nowFn    func() int64

	hits, misses, evictions uint64
}

// NewIndexCache constructs a cache bounded to maxEntries entries, each
// expiring maxAgeMs milliseconds after insertion. nowFn supplies the current
// time in milliseconds (tests can inject a deterministic clock).
func NewIndexCache(maxEntries int, maxAgeMs int64, nowFn func() int64) *IndexCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if maxAgeMs <= 0 {
		maxAgeMs = 300000
	}
	if nowFn == nil {
		nowFn = func() int64 { return time.Now().UnixMilli() }
	}
	c := &IndexCache{maxAgeMs: maxAgeMs, nowFn: nowFn}
	l, _ := lru.NewWithEvict[string, *cacheEntry](maxEntries, func(_ string, _ *cacheEntry) {
		c.evictions++
	})
	c.lru = l
	return c
}

// Put stores result under key, timestamped at the cache's current time.
func (c *IndexCache) Put(key CacheKey, result []ElementID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key.String(), &cacheEntry{key: key, result: result, insertedAtMs: c.nowFn()})
}

// Get returns the cached result for key, or (nil, false) if absent or
// expired (expired entries are evicted as a side effect of the lookup).
func (c *IndexCache) Get(key CacheKey) ([]ElementID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	entry, ok := c.lru.Get(k)
	if !ok {
		c.misses++
		return nil, false
	}
	if c.nowFn()-entry.insertedAtMs > c.maxAgeMs {
		c.lru.Remove(k)
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.result, true
}

// Contains reports presence without affecting recency or hit/miss counters,
// still honoring lazy expiry.
func (c *IndexCache) Contains(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	entry, ok := c.lru.Peek(k)
	if !ok {
		return false
	}
	return c.nowFn()-entry.insertedAtMs <= c.maxAgeMs
}

// Remove evicts key unconditionally.
func (c *IndexCache) Remove(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key.String())
}

// InvalidateKey drops every entry whose lookup key or parameter map mentions
// propertyKey.
func (c *IndexCache) InvalidateKey(propertyKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.lru.Keys() {
		entry, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if mentionsKey(entry.key, propertyKey) {
			c.lru.Remove(k)
		}
	}
}

func mentionsKey(ck CacheKey, propertyKey string) bool {
	for _, part := range strings.Split(ck.Key, "\x1f") {
		if part == propertyKey {
			return true
		}
	}
	if ck.Key == propertyKey {
		return true
	}
	for pk := range ck.Params {
		if pk == propertyKey {
			return true
		}
	}
	return false
}

// InvalidateIndexKind drops every entry produced by the given index kind.
func (c *IndexCache) InvalidateIndexKind(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.lru.Keys() {
		entry, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if entry.key.IndexKind == kind {
			c.lru.Remove(k)
		}
	}
}

// InvalidateElement drops every entry whose cached result set contains el.
func (c *IndexCache) InvalidateElement(el ElementID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.lru.Keys() {
		entry, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if containsID(entry.result, el) {
			c.lru.Remove(k)
		}
	}
}

// CleanupExpired sweeps the whole cache, evicting entries older than maxAgeMs.
func (c *IndexCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFn()
	removed := 0
	for _, k := range c.lru.Keys() {
		entry, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if now-entry.insertedAtMs > c.maxAgeMs {
			c.lru.Remove(k)
			removed++
		}
	}
	return removed
}

// Stats computes hit-rate arithmetic as hits / max(1, hits+misses), plus a
// crude byte-size estimate (8 bytes per cached element id, ignoring map/slice
// overhead, sufficient for the recommendation thresholds in spec §4.6).
func (c *IndexCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	denom := c.hits + c.misses
	if denom == 0 {
		denom = 1
	}
	var bytes int64
	for _, k := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(k); ok {
			bytes += int64(len(entry.result)) * 8
		}
	}
	return Stats{
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
		HitRate:        float64(c.hits) / float64(denom),
		EstimatedBytes: bytes,
	}
}

// Recommendations emits human-readable hints when cache health crosses the
// thresholds in spec §4.6: hit rate below 0.2, evictions above 0.5 of total
// lookups (hits+misses), or estimated size over 50MB.
func (c *IndexCache) Recommendations() []string {
	st := c.Stats()
	var recs []string
	if st.HitRate < 0.2 && (st.Hits+st.Misses) > 0 {
		recs = append(recs, "cache hit rate is low; consider widening max_age_ms or reviewing query patterns")
	}
	total := st.Hits + st.Misses
	if total > 0 && float64(st.Evictions)/float64(total) > 0.5 {
		recs = append(recs, "eviction rate is high; consider increasing max_entries")
	}
	if st.EstimatedBytes > 50*1024*1024 {
		recs = append(recs, "estimated cache memory exceeds 50MB; consider lowering max_entries")
	}
	return recs
}

// Len reports the current number of live (non-expired-by-construction) entries.
func (c *IndexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
