// File: view.go
// Role: non-mutating graph views built by copying topology into a fresh Graph.
// Determinism:
//   - Preserves vertex/edge ids and labels. Properties are copied by value,
//     not shared, so mutating the view never touches the source graph.
// Concurrency:
//   - Read locks on the source only; the result is a standalone Graph the
//     caller owns outright.
// AI-HINT (file):
//   - InducedSubgraph keeps only vertices in 'keep' and edges with both
//     endpoints kept; dropped vertices silently drop their incident edges.
package core

import (
	"sort"

	"github.com/katalvlaran/proptergraph/value"
)

type inducedEdge struct {
	out    uint64
	in     uint64
	label  string
	weight float64
	props  map[string]value.Value
}

// InducedSubgraph returns a new Graph containing only the vertices whose id
// is in keep, plus every edge whose out and in endpoints are both kept. Ids,
// labels and properties are preserved by value; the source graph is
// untouched (spec §4.10's "views never mutate" contract).
//
// Complexity: O(V + E).
func InducedSubgraph(g *Graph, keep map[uint64]bool) *Graph {
	out := NewGraph(WithConfig(g.cfg))

	g.mu.RLock()
	var vertexIDs []uint64
	for id, v := range g.vertices {
		if keep[id] && !v.Removed() {
			vertexIDs = append(vertexIDs, id)
		}
	}
	sort.Slice(vertexIDs, func(i, j int) bool { return vertexIDs[i] < vertexIDs[j] })

	var edgeIDs []uint64
	for id, e := range g.edges {
		if !e.Removed() && keep[e.out] && keep[e.in] {
			edgeIDs = append(edgeIDs, id)
		}
	}
	sort.Slice(edgeIDs, func(i, j int) bool { return edgeIDs[i] < edgeIDs[j] })

	edges := make([]inducedEdge, 0, len(edgeIDs))
	for _, id := range edgeIDs {
		e := g.edges[id]
		props := make(map[string]value.Value, len(e.props))
		for k, v := range e.props {
			props[k] = v
		}
		props["id"] = value.OfInt64(int64(id))
		edges = append(edges, inducedEdge{out: e.out, in: e.in, label: e.label, weight: e.Weight(), props: props})
	}
	g.mu.RUnlock()

	for _, id := range vertexIDs {
		v, err := g.Vertex(id)
		if err != nil {
			continue
		}
		props := map[string]value.Value{"id": value.OfInt64(int64(id))}
		if v.Label() != "" {
			props["label"] = value.OfString(v.Label())
		}
		nv, err := out.AddVertex(props)
		if err != nil {
			continue
		}
		for _, k := range v.PropertyKeys() {
			card, _ := v.Cardinality(k)
			for _, val := range v.Values(k) {
				_, _ = nv.AddProperty(k, val, &card, nil)
			}
		}
	}

	for _, ec := range edges {
		_, _ = out.AddEdge(ec.out, ec.in, ec.label, ec.weight, ec.props)
	}
	return out
}
