// File: vertexproperty.go
// Role: C5 — a single property instance on a vertex, carrying its own
// meta-properties and its own removal lifecycle (distinct from the owner's).
// AI-HINT (file):
//   - VertexProperty.Removed() is independent of the owning Vertex's Removed();
//     a live vertex can have individually-removed properties mid-mutation.
//   - Meta-properties are plain Property, never VertexProperty: they cannot
//     carry their own meta-properties (no recursive nesting).
package core

import "github.com/katalvlaran/proptergraph/value"

// VertexProperty is one instance of a (possibly multi-valued) vertex
// property: a typed Value plus zero or more meta-properties.
type VertexProperty struct {
	element

	key   string
	val   value.Value
	owner uint64 // owning Vertex id
	meta  map[string]value.Value
}

// Key returns the property key this instance belongs to.
func (vp *VertexProperty) Key() string { return vp.key }

// Value returns the typed value held by this property instance.
func (vp *VertexProperty) Value() value.Value { return vp.val }

// OwnerID returns the id of the owning Vertex.
func (vp *VertexProperty) OwnerID() uint64 { return vp.owner }

// Meta returns the meta-property value for metaKey, or value.Null with
// ok=false if absent.
//
// Complexity: O(1).
func (vp *VertexProperty) Meta(metaKey string) (value.Value, bool) {
	v, ok := vp.meta[metaKey]
	return v, ok
}

// MetaProperties returns a shallow copy of all meta-properties.
//
// Complexity: O(len(meta)).
func (vp *VertexProperty) MetaProperties() map[string]value.Value {
	out := make(map[string]value.Value, len(vp.meta))
	for k, v := range vp.meta {
		out[k] = v
	}
	return out
}

// setMeta attaches or overwrites a meta-property. Callers (PropertyManager)
// are responsible for key/null validation before calling this.
func (vp *VertexProperty) setMeta(key string, v value.Value) {
	if vp.meta == nil {
		vp.meta = make(map[string]value.Value)
	}
	vp.meta[key] = v
}
