// File: errors.go
// Role: Sentinel errors for the core property-graph taxonomy (spec §7).
// AI-HINT (file):
//   - Every mutating API surfaces these unchanged; wrap with fmt.Errorf("%w") at
//     call boundaries when adding context, never swallow them.
//   - QueryEngine evaluator paths are the one place type-mismatch errors are
//     intentionally swallowed (see query.Engine) — these sentinels are not used there.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for core graph operations.
var (
	// ErrInvalidPropertyKey indicates a blank/null key, or a reserved key
	// ("id", "label") used as a property key.
	ErrInvalidPropertyKey = errors.New("core: invalid property key")

	// ErrNullValueNotAllowed indicates a null value was supplied and the
	// graph is not configured to allow it.
	ErrNullValueNotAllowed = errors.New("core: null value not allowed")

	// ErrDuplicateSetValue indicates a SET-cardinality key already has a
	// live property with an equal value.
	ErrDuplicateSetValue = errors.New("core: duplicate value for SET cardinality")

	// ErrMultiPropertyNotSupported indicates the graph disallows more than
	// one VertexProperty per key.
	ErrMultiPropertyNotSupported = errors.New("core: multi-properties not supported")

	// ErrMetaPropertyNotSupported indicates the graph disallows
	// meta-properties on VertexProperty.
	ErrMetaPropertyNotSupported = errors.New("core: meta-properties not supported")

	// ErrIDAlreadyExists indicates a vertex or edge id is already in use
	// under a Strict id policy.
	ErrIDAlreadyExists = errors.New("core: id already exists")

	// ErrElementRemoved indicates an operation on a tombstoned element.
	ErrElementRemoved = errors.New("core: element removed")

	// ErrVertexNotIncident indicates Edge.OtherVertex was called with a
	// vertex id that is not one of the edge's endpoints.
	ErrVertexNotIncident = errors.New("core: vertex not incident to edge")

	// ErrIndexClassInvalid indicates index creation was requested for a
	// class that isn't Vertex or Edge.
	ErrIndexClassInvalid = errors.New("core: invalid index element class")

	// ErrMalformedExternalInput indicates a codec-boundary parse failure.
	ErrMalformedExternalInput = errors.New("core: malformed external input")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrOtherVertexForeign indicates add_edge(other) referenced a vertex
	// that does not belong to this graph.
	ErrOtherVertexForeign = errors.New("core: vertex belongs to a different graph")

	// ErrEmptyVariableKey indicates a graph-variable key was blank.
	ErrEmptyVariableKey = errors.New("core: variable key is empty")

	// ErrIteratorInvalidated indicates a lazy sequence detected a structural
	// mutation since it was created and refuses to yield further elements.
	ErrIteratorInvalidated = errors.New("core: iterator invalidated by concurrent mutation")

	// ErrInvalidCompositeKeyList indicates a composite index was requested
	// with fewer than two keys or a duplicate key within the list.
	ErrInvalidCompositeKeyList = errors.New("core: invalid composite key list")

	// errConstraintViolation is the base sentinel wrapped by errConstraintf.
	// It is unexported, so only code inside package core can errors.Is
	// against it to detect a ValidateConstraints failure without parsing
	// the message.
	errConstraintViolation = errors.New("core: constraint violation")
)

// errConstraintf builds a constraint-violation error wrapping
// errConstraintViolation with a formatted, human-readable detail message.
func errConstraintf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{errConstraintViolation}, args...)...)
}
