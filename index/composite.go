// File: composite.go
// Role: C8 — secondary index on an ordered, duplicate-free list of keys,
// supporting exact tuple lookup and prefix-tuple lookup (spec §4.4).
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/katalvlaran/proptergraph/value"
)

// CompositeKeyList is an ordered, non-empty, duplicate-free list of property
// keys identifying one composite index. Two lists with the same keys in a
// different order are distinct indices.
type CompositeKeyList []string

// listID derives a stable identity string for a CompositeKeyList, order-sensitive.
func (l CompositeKeyList) listID() string { return strings.Join(l, "\x1f") }

// CompositeIndex is C8.
type CompositeIndex struct {
	mu            sync.RWMutex
	indexed       map[string]CompositeKeyList         // listID -> keys
	entries       map[string]map[string][]ElementID   // listID -> tupleKey -> element ids
	tupleValues   map[string]map[string][]value.Value
	participation map[string]map[string]struct{}      // key -> set of listIDs containing it
}

// NewCompositeIndex constructs an empty CompositeIndex.
func NewCompositeIndex() *CompositeIndex {
	return &CompositeIndex{
		indexed:       make(map[string]CompositeKeyList),
		entries:       make(map[string]map[string][]ElementID),
		tupleValues:   make(map[string]map[string][]value.Value),
		participation: make(map[string]map[string]struct{}),
	}
}

func tupleKey(vals []value.Value) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(bucketKey(v))
	}
	return b.String()
}

// Create registers keys as an indexed composite list (idempotent). Returns
// false if keys has fewer than 2 entries or contains a duplicate key.
func (ci *CompositeIndex) Create(keys CompositeKeyList) bool {
	if len(keys) < 2 {
		return false
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()
	id := keys.listID()
	ci.indexed[id] = keys
	if _, ok := ci.entries[id]; !ok {
		ci.entries[id] = make(map[string][]ElementID)
		ci.tupleValues[id] = make(map[string][]value.Value)
	}
	for _, k := range keys {
		if ci.participation[k] == nil {
			ci.participation[k] = make(map[string]struct{})
		}
		ci.participation[k][id] = struct{}{}
	}
	return true
}

// Drop removes keys from the indexed set (idempotent).
func (ci *CompositeIndex) Drop(keys CompositeKeyList) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	id := keys.listID()
	delete(ci.indexed, id)
	delete(ci.entries, id)
	delete(ci.tupleValues, id)
	for _, k := range keys {
		delete(ci.participation[k], id)
		if len(ci.participation[k]) == 0 {
			delete(ci.participation, k)
		}
	}
}

// IsIndexed reports whether keys (in that exact order) is indexed.
func (ci *CompositeIndex) IsIndexed(keys CompositeKeyList) bool {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	_, ok := ci.indexed[keys.listID()]
	return ok
}

// Get performs an exact tuple lookup; keys must be an indexed list.
func (ci *CompositeIndex) Get(keys CompositeKeyList, vals []value.Value) ([]ElementID, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	id := keys.listID()
	if _, ok := ci.indexed[id]; !ok {
		return nil, false
	}
	ids := ci.entries[id][tupleKey(vals)]
	out := make([]ElementID, len(ids))
	copy(out, ids)
	return out, true
}

// GetPartial finds any indexed list whose leading segment equals prefixKeys
// and returns the union of entries whose tuple-prefix equals prefixValues,
// preferring the shortest covering index.
func (ci *CompositeIndex) GetPartial(prefixKeys []string, prefixValues []value.Value) []ElementID {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	candidates := ci.applicableLocked(prefixKeys)
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0] // shortest, applicableLocked sorts ascending by length

	prefix := tupleKey(prefixValues) + "\x1f"
	if len(prefixValues) == len(best) {
		prefix = tupleKey(prefixValues)
	}

	id := best.listID()
	var seen = make(map[ElementID]struct{})
	var out []ElementID
	for tk, ids := range ci.entries[id] {
		if tk == prefix || strings.HasPrefix(tk, prefix) {
			for _, eid := range ids {
				if _, dup := seen[eid]; !dup {
					seen[eid] = struct{}{}
					out = append(out, eid)
				}
			}
		}
	}
	return out
}

// ApplicableForQuery returns all indexed lists whose leading segment equals
// queryKeys, sorted ascending by length.
func (ci *CompositeIndex) ApplicableForQuery(queryKeys []string) []CompositeKeyList {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.applicableLocked(queryKeys)
}

func (ci *CompositeIndex) applicableLocked(prefixKeys []string) []CompositeKeyList {
	var out []CompositeKeyList
	for _, keys := range ci.indexed {
		if len(keys) < len(prefixKeys) {
			continue
		}
		match := true
		for i, k := range prefixKeys {
			if keys[i] != k {
				match = false
				break
			}
		}
		if match {
			out = append(out, keys)
		}
	}
	sort.Slice(out, func(i, j int) bool { return len(out[i]) < len(out[j]) })
	return out
}

// BestForEqualitySet returns the indexed list of maximum length whose every
// key is in querySet, or (nil, false) if none qualifies.
func (ci *CompositeIndex) BestForEqualitySet(querySet map[string]struct{}) (CompositeKeyList, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	var best CompositeKeyList
	for _, keys := range ci.indexed {
		allIn := true
		for _, k := range keys {
			if _, ok := querySet[k]; !ok {
				allIn = false
				break
			}
		}
		if allIn && len(keys) > len(best) {
			best = keys
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// AutoUpdate re-evaluates every indexed list containing changedKey for el:
// detaches el from every bucket it currently occupies under that list, then,
// if el has a live value for every key in the list (supplied via valueOf),
// computes the current tuple and attaches el to it.
func (ci *CompositeIndex) AutoUpdate(changedKey string, el ElementID, valueOf func(key string) (value.Value, bool)) {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	for id := range ci.participation[changedKey] {
		keys := ci.indexed[id]
		bucket := ci.entries[id]
		for tk, ids := range bucket {
			filtered := removeID(ids, el)
			if len(filtered) == 0 {
				delete(bucket, tk)
				delete(ci.tupleValues[id], tk)
			} else {
				bucket[tk] = filtered
			}
		}

		vals := make([]value.Value, 0, len(keys))
		complete := true
		for _, k := range keys {
			v, ok := valueOf(k)
			if !ok {
				complete = false
				break
			}
			vals = append(vals, v)
		}
		if complete {
			tk := tupleKey(vals)
			bucket[tk] = append(bucket[tk], el)
			ci.tupleValues[id][tk] = vals
		}
	}
}

// IndexedLists returns all currently-indexed key lists.
func (ci *CompositeIndex) IndexedLists() []CompositeKeyList {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	out := make([]CompositeKeyList, 0, len(ci.indexed))
	for _, keys := range ci.indexed {
		out = append(out, keys)
	}
	return out
}
