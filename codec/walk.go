package codec

import (
	"github.com/katalvlaran/proptergraph/core"
)

// WriteGraph drives v through g's current contents in the fixed visit order
// (spec §6): header, every live vertex (ascending id), every live edge
// (ascending id), then variables.
func WriteGraph(g *core.Graph, v Visitor, header Header) error {
	if err := v.VisitHeader(header); err != nil {
		return err
	}

	for _, vx := range g.QueryVertices() {
		props := make(map[string][]Property)
		for _, vp := range vx.LiveProperties() {
			props[vp.Key()] = append(props[vp.Key()], Property{Value: vp.Value(), Meta: vp.MetaProperties()})
		}
		if err := v.VisitVertex(vx.ID(), vx.Label(), props); err != nil {
			return err
		}
	}

	for _, e := range g.QueryEdges() {
		if err := v.VisitEdge(e.ID(), e.Label(), e.OutID(), e.InID(), e.Properties()); err != nil {
			return err
		}
	}

	return v.VisitVariables(g.Variables())
}
