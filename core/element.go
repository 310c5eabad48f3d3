// File: element.go
// Role: C3 — common id/label/property storage and removal state shared by
// Edge, VertexProperty and Vertex.
// AI-HINT (file):
//   - Reserved keys "id" and "label" are rejected by ValidatePropertyKey; call
//     it at every property-mutating entry point, not just once at the top.
//   - element is a plain data holder; all mutation discipline (locking,
//     cardinality, validation) lives in Graph/PropertyManager, never here.
package core

import "github.com/katalvlaran/proptergraph/value"

// reservedKeys are property keys that collide with element identity and are
// therefore rejected by ValidatePropertyKey.
var reservedKeys = map[string]struct{}{
	"id":    {},
	"label": {},
}

// ValidatePropertyKey reports ErrInvalidPropertyKey for a blank or reserved key.
//
// Complexity: O(1).
func ValidatePropertyKey(key string) error {
	if key == "" {
		return ErrInvalidPropertyKey
	}
	if _, reserved := reservedKeys[key]; reserved {
		return ErrInvalidPropertyKey
	}
	return nil
}

// Property is a single plain key/value pair: the shape used by Edge
// properties and by VertexProperty meta-properties, neither of which carry
// their own cardinality or sub-properties.
type Property struct {
	Key   string
	Value value.Value
}

// element is the common embedded base for Edge, VertexProperty and Vertex.
type element struct {
	id      uint64
	label   string
	removed bool
}

// ID returns the element's stable identifier.
func (e *element) ID() uint64 { return e.id }

// Label returns the element's label.
func (e *element) Label() string { return e.label }

// Removed reports whether the element has been tombstoned. Once true this
// never reverts (spec §3: LIVE → REMOVED is irreversible).
func (e *element) Removed() bool { return e.removed }

// checkLive returns ErrElementRemoved if the element has been tombstoned.
// The mutators, Vertex.Edges/Vertices and the Edge endpoint accessors call
// it first. The plain property readers (Vertex.Value/Values/HasProperty/
// PropertyCount, Edge.Property/Properties/Values/HasProperty/Weight) do not
// call it and keep returning the element's last state after removal.
func (e *element) checkLive() error {
	if e.removed {
		return ErrElementRemoved
	}
	return nil
}
