// File: vertex.go
// Role: C6 — adjacency lists (in/out by edge label), multi-property store,
// and the per-key cardinality state machine (spec §4.1).
// Invariants (enforced here; Graph/PropertyManager call into these under lock):
//   - For each key K, all properties share cardinalities[K]; set on first
//     insert, deleted once the last live property for K disappears.
//   - SINGLE ⇒ at most one live property per key.
//   - SET ⇒ no two live properties with Equal values per key.
//   - LIST ⇒ unconstrained; insertion order preserved.
// AI-HINT (file):
//   - addPropertyRaw/removePropertyRaw/removePropertiesRaw are package-private:
//     callers MUST go through PropertyManager so listeners/validation/index
//     notification stay in sync with state changes.
package core

import (
	"sort"

	"github.com/katalvlaran/proptergraph/value"
)

// Vertex is a labelled node with adjacency lists and a multi-property store.
type Vertex struct {
	element

	g *Graph

	// outEdges[label][edgeID] / inEdges[label][edgeID]
	outEdges map[string]map[uint64]*Edge
	inEdges  map[string]map[uint64]*Edge

	vertexProperties map[string][]*VertexProperty
	cardinalities    map[string]value.Cardinality
}

func newVertex(g *Graph, id uint64, label string) *Vertex {
	return &Vertex{
		element:          element{id: id, label: label},
		g:                g,
		outEdges:         make(map[string]map[uint64]*Edge),
		inEdges:          make(map[string]map[uint64]*Edge),
		vertexProperties: make(map[string][]*VertexProperty),
		cardinalities:    make(map[string]value.Cardinality),
	}
}

// Cardinality returns the recorded cardinality for key and whether the key
// currently has any live properties at all.
func (v *Vertex) Cardinality(key string) (value.Cardinality, bool) {
	c, ok := v.cardinalities[key]
	return c, ok
}

// Values returns the live values for key, in insertion order.
//
// Complexity: O(k) where k is the number of stored (including removed)
// properties for key.
func (v *Vertex) Values(key string) []value.Value {
	props := v.vertexProperties[key]
	out := make([]value.Value, 0, len(props))
	for _, p := range props {
		if !p.Removed() {
			out = append(out, p.Value())
		}
	}
	return out
}

// Value returns the first live value for key (by insertion order), or
// value.Null with ok=false if none.
func (v *Vertex) Value(key string) (value.Value, bool) {
	for _, p := range v.vertexProperties[key] {
		if !p.Removed() {
			return p.Value(), true
		}
	}
	return value.Null, false
}

// HasProperty reports whether key has at least one live VertexProperty.
func (v *Vertex) HasProperty(key string) bool {
	for _, p := range v.vertexProperties[key] {
		if !p.Removed() {
			return true
		}
	}
	return false
}

// PropertyCount returns the number of live VertexProperty instances for key.
func (v *Vertex) PropertyCount(key string) int {
	n := 0
	for _, p := range v.vertexProperties[key] {
		if !p.Removed() {
			n++
		}
	}
	return n
}

// LiveProperties returns every live VertexProperty across all keys, sorted
// by key then insertion order, for cardinality analysis and index rebuilds.
func (v *Vertex) LiveProperties() []*VertexProperty {
	keys := make([]string, 0, len(v.vertexProperties))
	for k := range v.vertexProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*VertexProperty, 0)
	for _, k := range keys {
		for _, p := range v.vertexProperties[k] {
			if !p.Removed() {
				out = append(out, p)
			}
		}
	}
	return out
}

// PropertyKeys returns the set of keys that currently have at least one live
// property, sorted ascending.
func (v *Vertex) PropertyKeys() []string {
	keys := make([]string, 0, len(v.vertexProperties))
	for k, props := range v.vertexProperties {
		for _, p := range props {
			if !p.Removed() {
				keys = append(keys, k)
				break
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// addPropertyRaw implements the cardinality state machine from spec §4.1.
// It returns the newly created property plus any properties that were
// transitioned to removed as a side effect (SINGLE semantics), so the caller
// can drive index auto_update notifications for each.
func (v *Vertex) addPropertyRaw(key string, val value.Value, card value.Cardinality) (created *VertexProperty, demoted []*VertexProperty, err error) {
	existing := v.vertexProperties[key]

	switch card {
	case value.Single:
		for _, p := range existing {
			if !p.Removed() {
				p.removed = true
				demoted = append(demoted, p)
			}
		}
	case value.Set:
		for _, p := range existing {
			if !p.Removed() && p.Value().Equal(val) {
				return nil, nil, ErrDuplicateSetValue
			}
		}
	case value.List:
		// unconstrained
	}

	created = &VertexProperty{
		element: element{id: v.g.ids.Next(), label: key},
		key:     key,
		val:     val,
		owner:   v.id,
	}
	v.vertexProperties[key] = append(v.vertexProperties[key], created)
	v.cardinalities[key] = card

	return created, demoted, nil
}

// removePropertyRaw marks every live property at key matching val (or every
// live property at key if val is nil) as removed, dropping the cardinality
// entry once none remain live.
func (v *Vertex) removePropertyRaw(key string, val *value.Value) (removed []*VertexProperty) {
	for _, p := range v.vertexProperties[key] {
		if p.Removed() {
			continue
		}
		if val != nil && !p.Value().Equal(*val) {
			continue
		}
		p.removed = true
		removed = append(removed, p)
	}
	if v.PropertyCount(key) == 0 {
		delete(v.cardinalities, key)
	}
	return removed
}

// AddProperty delegates to the owning Graph's PropertyManager, which
// enforces cardinality, feature gates, and index/cache maintenance (spec
// §4.1). card, if non-nil, overrides the key's recorded or default
// cardinality for this insert.
func (v *Vertex) AddProperty(key string, val value.Value, card *value.Cardinality, meta map[string]value.Value) (*VertexProperty, error) {
	if err := v.checkLive(); err != nil {
		return nil, err
	}
	return v.g.AddVertexProperty(v, key, val, card, meta)
}

// RemoveProperty marks every live property at key equal to val removed (or
// every live property at key if val is nil).
func (v *Vertex) RemoveProperty(key string, val *value.Value) error {
	if err := v.checkLive(); err != nil {
		return err
	}
	return v.g.RemoveVertexProperty(v, key, val)
}

// RemoveProperties marks every live property at key removed.
func (v *Vertex) RemoveProperties(key string) error {
	if err := v.checkLive(); err != nil {
		return err
	}
	return v.g.RemoveVertexProperties(v, key)
}

// AddEdge delegates edge creation to the owning Graph, rejecting other if it
// does not belong to the same graph instance (spec §4.1).
func (v *Vertex) AddEdge(label string, other *Vertex, weight float64, props map[string]value.Value) (*Edge, error) {
	if err := v.checkLive(); err != nil {
		return nil, err
	}
	if other == nil || other.g != v.g {
		return nil, ErrOtherVertexForeign
	}
	return v.g.AddEdge(v.id, other.id, label, weight, props)
}

// Edges returns a lazy sequence of edges incident to v in the given
// direction, optionally filtered to the given labels (no labels ⇒ all).
//
// Complexity: O(deg(v)) to materialize the snapshot; iteration itself is O(1)/step.
func (v *Vertex) Edges(dir value.Direction, labels ...string) (*EdgeIterator, error) {
	if err := v.checkLive(); err != nil {
		return nil, err
	}
	labelSet := toLabelSet(labels)

	var ids []uint64
	seen := make(map[uint64]*Edge)
	collect := func(byLabel map[string]map[uint64]*Edge) {
		for lbl, edges := range byLabel {
			if labelSet != nil {
				if _, ok := labelSet[lbl]; !ok {
					continue
				}
			}
			for eid, e := range edges {
				if _, dup := seen[eid]; dup {
					continue
				}
				seen[eid] = e
				ids = append(ids, eid)
			}
		}
	}
	if dir == value.DirOut || dir == value.DirBoth {
		collect(v.outEdges)
	}
	if dir == value.DirIn || dir == value.DirBoth {
		collect(v.inEdges)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		items = append(items, seen[id])
	}
	return &EdgeIterator{g: v.g, version: v.g.currentVersion(), items: items}, nil
}

// Vertices returns a lazy sequence of neighboring vertices in the given
// direction, optionally filtered to the given edge labels. For DirBoth,
// duplicates across out and in are suppressed by vertex id (first occurrence
// wins), per spec §4.1.
func (v *Vertex) Vertices(dir value.Direction, labels ...string) (*VertexIterator, error) {
	it, err := v.Edges(dir, labels...)
	if err != nil {
		return nil, err
	}
	edges, err := it.Collect()
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{})
	var out []*Vertex
	addNeighbor := func(id uint64) {
		if _, already := seen[id]; already {
			return
		}
		nb, err := v.g.vertexByID(id)
		if err != nil {
			return
		}
		seen[id] = struct{}{}
		out = append(out, nb)
	}
	for _, e := range edges {
		switch dir {
		case value.DirOut:
			addNeighbor(e.in)
		case value.DirIn:
			addNeighbor(e.out)
		default:
			if e.out != v.id {
				addNeighbor(e.out)
			} else {
				addNeighbor(e.in)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return &VertexIterator{g: v.g, version: v.g.currentVersion(), items: out}, nil
}

func toLabelSet(labels []string) map[string]struct{} {
	if len(labels) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}
