// File: edge.go
// Role: C4 — directed edge referencing two vertices by stable id; property-bearing.
// Invariant:
//   - An edge is reachable only via the graph edge store and via the adjacency
//     lists of both endpoints (enforced by Graph, not by Edge itself).
// Concurrency:
//   - Edge is a read-only view returned by Graph; all mutation goes back
//     through Graph's mutator methods (AddEdge/RemoveEdge/SetEdgeProperty).
// AI-HINT (file):
//   - OtherVertex fails with ErrVertexNotIncident, not a panic, on a foreign id.
//   - Weight() is pure sugar over Property("weight"); it never errors, defaulting to 1.0.
package core

import "github.com/katalvlaran/proptergraph/value"

// Edge is a directed connection from one vertex to another, carrying plain
// (single-valued) properties.
type Edge struct {
	element

	out   uint64
	in    uint64
	props map[string]value.Value

	g *Graph
}

// OutID returns the source vertex id.
func (e *Edge) OutID() uint64 { return e.out }

// InID returns the destination vertex id.
func (e *Edge) InID() uint64 { return e.in }

// Vertex resolves one endpoint of the edge by direction. DirBoth is invalid
// here (use Vertices for that) and returns (nil, ErrVertexNotIncident).
//
// Complexity: O(1).
func (e *Edge) Vertex(dir value.Direction) (*Vertex, error) {
	if err := e.checkLive(); err != nil {
		return nil, err
	}
	switch dir {
	case value.DirOut:
		return e.g.vertexByID(e.out)
	case value.DirIn:
		return e.g.vertexByID(e.in)
	default:
		return nil, ErrVertexNotIncident
	}
}

// Vertices resolves endpoints for OUT, IN, or BOTH (out then in, each once).
//
// Complexity: O(1).
func (e *Edge) Vertices(dir value.Direction) ([]*Vertex, error) {
	if err := e.checkLive(); err != nil {
		return nil, err
	}
	switch dir {
	case value.DirOut:
		v, err := e.g.vertexByID(e.out)
		if err != nil {
			return nil, err
		}
		return []*Vertex{v}, nil
	case value.DirIn:
		v, err := e.g.vertexByID(e.in)
		if err != nil {
			return nil, err
		}
		return []*Vertex{v}, nil
	default:
		vout, err := e.g.vertexByID(e.out)
		if err != nil {
			return nil, err
		}
		vin, err := e.g.vertexByID(e.in)
		if err != nil {
			return nil, err
		}
		return []*Vertex{vout, vin}, nil
	}
}

// OtherVertex returns the endpoint of e that is not v's id, or
// ErrVertexNotIncident if v is neither endpoint.
//
// Complexity: O(1).
func (e *Edge) OtherVertex(v *Vertex) (*Vertex, error) {
	if err := e.checkLive(); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVertexNotIncident
	}
	switch v.id {
	case e.out:
		return e.g.vertexByID(e.in)
	case e.in:
		return e.g.vertexByID(e.out)
	default:
		return nil, ErrVertexNotIncident
	}
}

// Property returns the plain value stored at key, or value.Null with ok=false
// if absent.
//
// Complexity: O(1).
func (e *Edge) Property(key string) (value.Value, bool) {
	v, ok := e.props[key]
	return v, ok
}

// Properties returns a shallow copy of all plain edge properties.
//
// Complexity: O(len(properties)).
func (e *Edge) Properties() map[string]value.Value {
	out := make(map[string]value.Value, len(e.props))
	for k, v := range e.props {
		out[k] = v
	}
	return out
}

// Values returns key's value as a single-element slice, or an empty slice if
// absent. Edges carry plain single-valued properties, so this satisfies
// query.PropertySource without a multi-property store.
func (e *Edge) Values(key string) []value.Value {
	v, ok := e.props[key]
	if !ok {
		return nil
	}
	return []value.Value{v}
}

// HasProperty reports whether key is present on e.
func (e *Edge) HasProperty(key string) bool {
	_, ok := e.props[key]
	return ok
}

// SetProperty sets key to val, routing through the owning Graph so index
// auto_update and cache invalidation stay in sync.
func (e *Edge) SetProperty(key string, val value.Value) error {
	if err := e.checkLive(); err != nil {
		return err
	}
	return e.g.SetEdgeProperty(e, key, val)
}

// RemoveProperty removes key, routing through the owning Graph.
func (e *Edge) RemoveProperty(key string) error {
	if err := e.checkLive(); err != nil {
		return err
	}
	return e.g.RemoveEdgeProperty(e, key)
}

// Weight is convenience sugar: the "weight" property coerced to float64,
// defaulting to 1.0 when absent or non-numeric.
//
// Complexity: O(1).
func (e *Edge) Weight() float64 {
	v, ok := e.props["weight"]
	if !ok {
		return 1.0
	}
	f, isNum := v.Float()
	if !isNum {
		return 1.0
	}
	return f
}
