// Package index implements the three secondary-index structures (single,
// composite, range) and the bounded result cache that sit between Graph and
// QueryEngine (spec §4.3–§4.6). Every index operates purely on element ids
// (uint64) — it never imports core, so core can own and mutate both indices
// and elements without an import cycle.
//
// AI-HINT (package):
//   - Indices are private to the owning Graph; never expose *index.SingleIndex
//     etc. directly to external callers, only through Graph's query surface.
//   - AutoUpdate is the only mutation entry-point from the owner; indices
//     must not reach into each other (spec design note, §9).
package index

import (
	"sort"
	"strconv"
	"sync"

	"github.com/katalvlaran/proptergraph/value"
)

// ElementID is the stable integer identity of a vertex or edge, as allocated
// by core's idGen.
type ElementID = uint64

// SingleIndex is C7: a map key -> value -> set of element ids.
type SingleIndex struct {
	mu      sync.RWMutex
	indexed map[string]struct{}
	entries map[string]map[string][]ElementID // bucketKey(value)-keyed for fast map lookup
	values  map[string]map[string]value.Value // canonical Value per bucket key, for iteration/selectivity
}

// NewSingleIndex constructs an empty SingleIndex.
func NewSingleIndex() *SingleIndex {
	return &SingleIndex{
		indexed: make(map[string]struct{}),
		entries: make(map[string]map[string][]ElementID),
		values:  make(map[string]map[string]value.Value),
	}
}

// bucketKey derives a stable map key for a Value within one index key's
// bucket space. Numeric kinds (Int32/Int64/Float32/Float64) are canonicalized
// through their coerced float64 representation so that, e.g., OfInt64(30) and
// OfFloat64(30.0) land in the same bucket — matching Value.Equal's
// cross-kind numeric equality (spec §8 single/composite-index fidelity: an
// indexed lookup must never return a strict subset of what a full scan via
// Equal would match). Non-numeric kinds key off String()+kindTag, which is
// safe because no two of those kinds render identical strings for this
// engine's indexable values; Equal remains authoritative for any residual
// collision, handled by scanning the bucket.
func bucketKey(v value.Value) string {
	if v.IsNumeric() {
		f, _ := v.Float()
		return strconv.FormatFloat(f, 'g', -1, 64) + "\x00n"
	}
	return v.String() + "\x00" + kindTag(v)
}

func kindTag(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		return "s"
	case value.KindBool:
		return "b"
	default:
		return "n"
	}
}

// Create marks key as indexed (idempotent). Rebuild must be called
// separately by the owner to populate it from existing elements.
func (si *SingleIndex) Create(key string) {
	si.mu.Lock()
	defer si.mu.Unlock()
	si.indexed[key] = struct{}{}
	if _, ok := si.entries[key]; !ok {
		si.entries[key] = make(map[string][]ElementID)
		si.values[key] = make(map[string]value.Value)
	}
}

// Drop removes key from the indexed set and discards its entries (idempotent).
func (si *SingleIndex) Drop(key string) {
	si.mu.Lock()
	defer si.mu.Unlock()
	delete(si.indexed, key)
	delete(si.entries, key)
	delete(si.values, key)
}

// IsIndexed reports whether key currently has a SingleIndex.
func (si *SingleIndex) IsIndexed(key string) bool {
	si.mu.RLock()
	defer si.mu.RUnlock()
	_, ok := si.indexed[key]
	return ok
}

// Get returns the element ids whose property key currently equals val.
func (si *SingleIndex) Get(key string, val value.Value) []ElementID {
	si.mu.RLock()
	defer si.mu.RUnlock()
	bucket, ok := si.entries[key]
	if !ok {
		return nil
	}
	ids := bucket[bucketKey(val)]
	out := make([]ElementID, len(ids))
	copy(out, ids)
	return out
}

// AutoUpdate moves element between buckets for key: detaches it from
// oldVal's bucket (if non-nil) and attaches it to newVal's bucket (if
// non-nil). A no-op if key is not indexed.
func (si *SingleIndex) AutoUpdate(key string, newVal, oldVal *value.Value, el ElementID) {
	si.mu.Lock()
	defer si.mu.Unlock()
	if _, ok := si.indexed[key]; !ok {
		return
	}
	bucket := si.entries[key]
	vals := si.values[key]

	if oldVal != nil {
		bk := bucketKey(*oldVal)
		bucket[bk] = removeID(bucket[bk], el)
		if len(bucket[bk]) == 0 {
			delete(bucket, bk)
			delete(vals, bk)
		}
	}
	if newVal != nil {
		bk := bucketKey(*newVal)
		if !containsID(bucket[bk], el) {
			bucket[bk] = append(bucket[bk], el)
		}
		vals[bk] = *newVal
	}
}

// Rebuild clears key's entries then repopulates by invoking scan for each
// live (element, value) pair supplied by the caller.
func (si *SingleIndex) Rebuild(key string, scan func(yield func(el ElementID, v value.Value))) {
	si.mu.Lock()
	si.entries[key] = make(map[string][]ElementID)
	si.values[key] = make(map[string]value.Value)
	si.indexed[key] = struct{}{}
	si.mu.Unlock()

	scan(func(el ElementID, v value.Value) {
		si.AutoUpdate(key, &v, nil, el)
	})
}

// DistinctValues returns the number of distinct values currently stored for
// key, used by the optimizer's selectivity estimate.
func (si *SingleIndex) DistinctValues(key string) int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return len(si.entries[key])
}

// TotalElements returns the total number of element references stored across
// all buckets for key (an element holding several values for key, e.g. a
// LIST or SET multi-property, is counted once per bucket it occupies).
func (si *SingleIndex) TotalElements(key string) int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	total := 0
	for _, ids := range si.entries[key] {
		total += len(ids)
	}
	return total
}

// IndexedKeys returns all currently-indexed keys, sorted ascending.
func (si *SingleIndex) IndexedKeys() []string {
	si.mu.RLock()
	defer si.mu.RUnlock()
	keys := make([]string, 0, len(si.indexed))
	for k := range si.indexed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func removeID(ids []ElementID, target ElementID) []ElementID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []ElementID, target ElementID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
