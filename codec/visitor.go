// Package codec implements the neutral element visitor spec §6 describes as
// the collaborator interface for external serializers (GraphSON and others),
// plus one reference JSON codec used to exercise the round-trip property
// from spec.md §8. Neither is part of the core storage/indexing/query
// subsystem; both depend on core, never the reverse.
//
// AI-HINT (package):
//   - WriteGraph/ReadGraph visit in the fixed order header, vertices, edges,
//     variables — a custom Visitor must tolerate exactly that order.
package codec

import "github.com/katalvlaran/proptergraph/value"

// Header precedes every other visit call: the wire version tag and the
// wall-clock time the write began.
type Header struct {
	Version   string
	Timestamp int64
}

// Property pairs a VertexProperty's value with its meta-properties, for the
// ordered-list-per-key shape VisitVertex receives (spec §6).
type Property struct {
	Value value.Value
	Meta  map[string]value.Value
}

// Visitor receives graph elements in a fixed order: one VisitHeader call,
// then one VisitVertex call per live vertex, then one VisitEdge call per
// live edge, then one VisitVariables call. Implementations must not assume
// any other order.
type Visitor interface {
	VisitHeader(h Header) error
	VisitVertex(id uint64, label string, properties map[string][]Property) error
	VisitEdge(id uint64, label string, outID, inID uint64, properties map[string]value.Value) error
	VisitVariables(variables map[string]value.Value) error
}

// IDPolicy governs how ReadGraph resolves a caller-supplied id against one
// already present in the destination graph (spec §6).
type IDPolicy uint8

// IDPolicy constants.
const (
	// Strict raises IdAlreadyExists on any id conflict.
	Strict IDPolicy = iota
	// GenerateNew discards every incoming id, letting the destination graph
	// allocate fresh ones, and rewires edge endpoints through the remap.
	GenerateNew
	// MergeProperties keeps the existing element on conflict and overwrites
	// its conflicting property values with the incoming ones.
	MergeProperties
	// ReplaceElement removes the existing element (and, for a vertex, its
	// incident edges) before creating the incoming one.
	ReplaceElement
)
