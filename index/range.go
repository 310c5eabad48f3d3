// File: range.go
// Role: C9 — ordered index on a single key's comparable values, supporting
// half-open/closed range scans (spec §4.5). Default TinkerPop semantics for
// callers is [min, max): RangeQuery's includeMin/includeMax let the caller
// choose explicitly, per spec.md's resolved Open Question.
package index

import (
	"sort"
	"sync"

	"github.com/katalvlaran/proptergraph/value"
)

// rangeEntry pairs a stored Value with the element ids currently holding it.
type rangeEntry struct {
	v   value.Value
	ids []ElementID
}

// RangeIndex is C9: one ordered map per indexed key.
type RangeIndex struct {
	mu      sync.RWMutex
	indexed map[string]struct{}
	// entries[key] kept sorted ascending by rangeEntry.v; small-to-medium N
	// per key makes a sorted slice + binary search simpler and cache-friendlier
	// than a tree, and rebuild already requires a full sort regardless.
	entries map[string][]rangeEntry
}

// NewRangeIndex constructs an empty RangeIndex.
func NewRangeIndex() *RangeIndex {
	return &RangeIndex{
		indexed: make(map[string]struct{}),
		entries: make(map[string][]rangeEntry),
	}
}

// Create marks key as range-indexed (idempotent).
func (ri *RangeIndex) Create(key string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.indexed[key] = struct{}{}
	if _, ok := ri.entries[key]; !ok {
		ri.entries[key] = nil
	}
}

// Drop removes key from the indexed set (idempotent).
func (ri *RangeIndex) Drop(key string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	delete(ri.indexed, key)
	delete(ri.entries, key)
}

// IsIndexed reports whether key is currently range-indexed.
func (ri *RangeIndex) IsIndexed(key string) bool {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	_, ok := ri.indexed[key]
	return ok
}

func (ri *RangeIndex) find(entries []rangeEntry, v value.Value) (idx int, found bool) {
	idx = sort.Search(len(entries), func(i int) bool {
		c, err := value.Compare(entries[i].v, v)
		return err == nil && c >= 0
	})
	if idx < len(entries) {
		if c, err := value.Compare(entries[idx].v, v); err == nil && c == 0 {
			return idx, true
		}
	}
	return idx, false
}

// AutoUpdate detaches el from oldVal's slot (if non-nil) and attaches it to
// newVal's slot (if non-nil), keeping entries sorted. Returns
// ErrNonComparable (via value.ErrNonComparable) if a value is not comparable
// or not mutually comparable with the existing stored values for key.
func (ri *RangeIndex) AutoUpdate(key string, newVal, oldVal *value.Value, el ElementID) error {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	if _, ok := ri.indexed[key]; !ok {
		return nil
	}
	entries := ri.entries[key]

	if oldVal != nil {
		if idx, found := ri.find(entries, *oldVal); found {
			entries[idx].ids = removeID(entries[idx].ids, el)
			if len(entries[idx].ids) == 0 {
				entries = append(entries[:idx], entries[idx+1:]...)
			}
		}
	}
	if newVal != nil {
		if !newVal.Comparable() {
			return value.ErrNonComparable
		}
		if len(entries) > 0 {
			if _, err := value.Compare(entries[0].v, *newVal); err != nil {
				return err
			}
		}
		idx, found := ri.find(entries, *newVal)
		if found {
			if !containsID(entries[idx].ids, el) {
				entries[idx].ids = append(entries[idx].ids, el)
			}
		} else {
			entries = append(entries, rangeEntry{})
			copy(entries[idx+1:], entries[idx:])
			entries[idx] = rangeEntry{v: *newVal, ids: []ElementID{el}}
		}
	}
	ri.entries[key] = entries
	return nil
}

// RangeQuery returns the union of element ids whose stored value for key
// falls within [min,max] per includeMin/includeMax. A nil bound is
// unbounded on that side.
func (ri *RangeIndex) RangeQuery(key string, min, max *value.Value, includeMin, includeMax bool) []ElementID {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	entries := ri.entries[key]

	var out []ElementID
	for _, e := range entries {
		if min != nil {
			c, err := value.Compare(e.v, *min)
			if err != nil {
				continue
			}
			if includeMin && c < 0 {
				continue
			}
			if !includeMin && c <= 0 {
				continue
			}
		}
		if max != nil {
			c, err := value.Compare(e.v, *max)
			if err != nil {
				continue
			}
			if includeMax && c > 0 {
				continue
			}
			if !includeMax && c >= 0 {
				continue
			}
		}
		out = append(out, e.ids...)
	}
	return out
}

// MinValue returns the smallest stored value for key.
func (ri *RangeIndex) MinValue(key string) (value.Value, bool) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	entries := ri.entries[key]
	if len(entries) == 0 {
		return value.Null, false
	}
	return entries[0].v, true
}

// IndexedKeys returns all currently range-indexed keys, sorted ascending.
func (ri *RangeIndex) IndexedKeys() []string {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	keys := make([]string, 0, len(ri.indexed))
	for k := range ri.indexed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MaxValue returns the largest stored value for key.
func (ri *RangeIndex) MaxValue(key string) (value.Value, bool) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	entries := ri.entries[key]
	if len(entries) == 0 {
		return value.Null, false
	}
	return entries[len(entries)-1].v, true
}
