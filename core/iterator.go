// File: iterator.go
// Role: lazy, fail-fast sequences over edges/vertices (spec §4.1, §5).
// Determinism:
//   - Both iterators snapshot their element list at construction time (sorted
//     by id ascending) so iteration order is stable within one pass.
// Concurrency:
//   - Each iterator captures the owning Graph's mutation version at creation;
//     any structural mutation bumps that version, and Next() then returns
//     ErrIteratorInvalidated instead of silently reading stale/freed state.
// AI-HINT (file):
//   - Materialize explicitly (collect into a slice) before mutating the graph
//     if you need a pre-mutation snapshot that survives the mutation.
package core

// EdgeIterator is a lazy, fail-fast sequence of edges.
type EdgeIterator struct {
	g       *Graph
	version uint64
	items   []*Edge
	pos     int
}

// Next returns the next edge. ok is false once the sequence is exhausted.
// err is ErrIteratorInvalidated if the graph mutated since the iterator was
// created.
func (it *EdgeIterator) Next() (e *Edge, ok bool, err error) {
	if it.g.currentVersion() != it.version {
		return nil, false, ErrIteratorInvalidated
	}
	if it.pos >= len(it.items) {
		return nil, false, nil
	}
	e = it.items[it.pos]
	it.pos++
	return e, true, nil
}

// Collect drains the iterator into a slice, stopping early on invalidation.
func (it *EdgeIterator) Collect() ([]*Edge, error) {
	out := make([]*Edge, 0, len(it.items)-it.pos)
	for {
		e, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, e)
	}
}

// VertexIterator is a lazy, fail-fast sequence of vertices.
type VertexIterator struct {
	g       *Graph
	version uint64
	items   []*Vertex
	pos     int
}

// Next returns the next vertex. ok is false once the sequence is exhausted.
func (it *VertexIterator) Next() (v *Vertex, ok bool, err error) {
	if it.g.currentVersion() != it.version {
		return nil, false, ErrIteratorInvalidated
	}
	if it.pos >= len(it.items) {
		return nil, false, nil
	}
	v = it.items[it.pos]
	it.pos++
	return v, true, nil
}

// Collect drains the iterator into a slice, stopping early on invalidation.
func (it *VertexIterator) Collect() ([]*Vertex, error) {
	out := make([]*Vertex, 0, len(it.items)-it.pos)
	for {
		v, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}
