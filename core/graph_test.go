package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/proptergraph/query"
	"github.com/katalvlaran/proptergraph/value"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	return NewGraph()
}

func TestAddVertexAssignsMonotonicID(t *testing.T) {
	g := newTestGraph(t)
	v1, err := g.AddVertex(map[string]value.Value{"label": value.OfString("person")})
	require.NoError(t, err)
	v2, err := g.AddVertex(map[string]value.Value{"label": value.OfString("person")})
	require.NoError(t, err)
	assert.Less(t, v1.ID(), v2.ID())
}

func TestAddVertexWithExplicitIDRejectsDuplicate(t *testing.T) {
	g := newTestGraph(t)
	_, err := g.AddVertex(map[string]value.Value{"id": value.OfInt64(7)})
	require.NoError(t, err)

	_, err = g.AddVertex(map[string]value.Value{"id": value.OfInt64(7)})
	assert.ErrorIs(t, err, ErrIDAlreadyExists)
}

func TestAddVertexRejectsNullPropertyLeavingNoGhostVertex(t *testing.T) {
	g := newTestGraph(t)
	before := g.VertexCount()

	_, err := g.AddVertex(map[string]value.Value{
		"id":   value.OfInt64(99),
		"name": value.OfString("marko"),
		"nick": value.Null,
	})
	assert.ErrorIs(t, err, ErrNullValueNotAllowed)
	assert.Equal(t, before, g.VertexCount(), "a rejected AddVertex must not create a vertex")

	_, err = g.AddVertex(map[string]value.Value{"id": value.OfInt64(99)})
	assert.NoError(t, err, "the rejected id must be free for reuse, not reserved by a ghost vertex")
}

func TestAddVertexAttachesNonReservedProperties(t *testing.T) {
	g := newTestGraph(t)
	v, err := g.AddVertex(map[string]value.Value{
		"label": value.OfString("person"),
		"name":  value.OfString("marko"),
	})
	require.NoError(t, err)
	assert.Equal(t, "person", v.Label())
	val, ok := v.Value("name")
	require.True(t, ok)
	s, _ := val.AsString()
	assert.Equal(t, "marko", s)
}

func TestAddEdgeRejectsNonexistentEndpoints(t *testing.T) {
	g := newTestGraph(t)
	v, err := g.AddVertex(nil)
	require.NoError(t, err)

	_, err = g.AddEdge(v.ID(), 999, "knows", 1.0, nil)
	assert.ErrorIs(t, err, ErrVertexNotFound)
}

func TestAddEdgeWithExplicitIDRejectsDuplicate(t *testing.T) {
	g := newTestGraph(t)
	a, err := g.AddVertex(nil)
	require.NoError(t, err)
	b, err := g.AddVertex(nil)
	require.NoError(t, err)

	_, err = g.AddEdge(a.ID(), b.ID(), "knows", 1.0, map[string]value.Value{"id": value.OfInt64(42)})
	require.NoError(t, err)

	_, err = g.AddEdge(a.ID(), b.ID(), "knows", 1.0, map[string]value.Value{"id": value.OfInt64(42)})
	assert.ErrorIs(t, err, ErrIDAlreadyExists)
}

func TestAddEdgeDefaultsWeight(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddVertex(nil)
	b, _ := g.AddVertex(nil)

	e, err := g.AddEdge(a.ID(), b.ID(), "knows", 2.5, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, e.Weight())
}

func TestAddEdgeLinksBothAdjacencyLists(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddVertex(nil)
	b, _ := g.AddVertex(nil)
	e, err := g.AddEdge(a.ID(), b.ID(), "knows", 1.0, nil)
	require.NoError(t, err)

	outIt, err := a.Edges(value.DirOut)
	require.NoError(t, err)
	outEdges, err := outIt.Collect()
	require.NoError(t, err)
	require.Len(t, outEdges, 1)
	assert.Equal(t, e.ID(), outEdges[0].ID())

	inIt, err := b.Edges(value.DirIn)
	require.NoError(t, err)
	inEdges, err := inIt.Collect()
	require.NoError(t, err)
	require.Len(t, inEdges, 1)
	assert.Equal(t, e.ID(), inEdges[0].ID())
}

func TestRemoveVertexCascadesIncidentEdges(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddVertex(nil)
	b, _ := g.AddVertex(nil)
	e, err := g.AddEdge(a.ID(), b.ID(), "knows", 1.0, nil)
	require.NoError(t, err)

	require.NoError(t, g.RemoveVertex(a.ID()))

	_, err = g.Edge(e.ID())
	assert.ErrorIs(t, err, ErrEdgeNotFound)
	assert.True(t, e.Removed())
	assert.Equal(t, 1, g.VertexCount())
}

func TestRemovedVertexRejectsFurtherMutation(t *testing.T) {
	g := newTestGraph(t)
	v, _ := g.AddVertex(nil)
	require.NoError(t, g.RemoveVertex(v.ID()))

	_, err := v.AddProperty("x", value.OfInt64(1), nil, nil)
	assert.ErrorIs(t, err, ErrElementRemoved)
}

func TestSingleCardinalityReplacesPreviousValue(t *testing.T) {
	g := newTestGraph(t)
	v, _ := g.AddVertex(nil)
	single := value.Single

	_, err := v.AddProperty("name", value.OfString("a"), &single, nil)
	require.NoError(t, err)
	_, err = v.AddProperty("name", value.OfString("b"), &single, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, v.PropertyCount("name"))
	val, _ := v.Value("name")
	s, _ := val.AsString()
	assert.Equal(t, "b", s)
}

func TestSetCardinalityRejectsDuplicateValue(t *testing.T) {
	g := newTestGraph(t)
	v, _ := g.AddVertex(nil)
	set := value.Set

	_, err := v.AddProperty("tag", value.OfString("x"), &set, nil)
	require.NoError(t, err)
	_, err = v.AddProperty("tag", value.OfString("x"), &set, nil)
	assert.ErrorIs(t, err, ErrDuplicateSetValue)
}

func TestListCardinalityAllowsDuplicates(t *testing.T) {
	g := newTestGraph(t)
	v, _ := g.AddVertex(nil)
	list := value.List

	_, err := v.AddProperty("tag", value.OfString("x"), &list, nil)
	require.NoError(t, err)
	_, err = v.AddProperty("tag", value.OfString("x"), &list, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v.PropertyCount("tag"))
}

func TestGraphVariables(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.SetVariable("build", value.OfString("1.0.0")))

	v, ok := g.Variable("build")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "1.0.0", s)

	g.RemoveVariable("build")
	_, ok = g.Variable("build")
	assert.False(t, ok)
}

func TestSetVariableRejectsEmptyKey(t *testing.T) {
	g := newTestGraph(t)
	err := g.SetVariable("", value.OfInt64(1))
	assert.ErrorIs(t, err, ErrEmptyVariableKey)
}

func TestQueryVerticesExactCriterion(t *testing.T) {
	g := newTestGraph(t)
	single := value.Single
	a, _ := g.AddVertex(nil)
	_, _ = a.AddProperty("city", value.OfString("nyc"), &single, nil)
	b, _ := g.AddVertex(nil)
	_, _ = b.AddProperty("city", value.OfString("sf"), &single, nil)

	got := g.QueryVertices(query.Exact("city", value.OfString("nyc")))
	require.Len(t, got, 1)
	assert.Equal(t, a.ID(), got[0].ID())
}

func TestQueryVerticesUsesSingleIndexAfterCreate(t *testing.T) {
	g := newTestGraph(t)
	require.NoError(t, g.CreateSingleIndex(ClassVertex, "city"))

	single := value.Single
	a, _ := g.AddVertex(nil)
	_, _ = a.AddProperty("city", value.OfString("nyc"), &single, nil)
	b, _ := g.AddVertex(nil)
	_, _ = b.AddProperty("city", value.OfString("sf"), &single, nil)

	got := g.QueryVertices(query.Exact("city", value.OfString("sf")))
	require.Len(t, got, 1)
	assert.Equal(t, b.ID(), got[0].ID())

	stats := g.Stats()
	assert.Contains(t, stats.VertexSingleIndexes, "city")
}

func TestAggregateVertexPropertySum(t *testing.T) {
	g := newTestGraph(t)
	single := value.Single
	for _, age := range []int64{10, 20, 30} {
		v, _ := g.AddVertex(nil)
		_, _ = v.AddProperty("age", value.OfInt64(age), &single, nil)
	}
	res := g.AggregateVertexProperty("age", query.AggSum)
	assert.True(t, res.NumberValid)
	assert.Equal(t, float64(60), res.Number)
	assert.Equal(t, int64(3), res.Count)
}

func TestRemoveEdgePropertyThenSet(t *testing.T) {
	g := newTestGraph(t)
	a, _ := g.AddVertex(nil)
	b, _ := g.AddVertex(nil)
	e, err := g.AddEdge(a.ID(), b.ID(), "knows", 1.0, map[string]value.Value{"since": value.OfInt64(2020)})
	require.NoError(t, err)

	val, ok := e.Property("since")
	require.True(t, ok)
	i, _ := val.AsInt64()
	assert.Equal(t, int64(2020), i)

	require.NoError(t, e.RemoveProperty("since"))
	_, ok = e.Property("since")
	assert.False(t, ok)

	require.NoError(t, e.SetProperty("since", value.OfInt64(2021)))
	val, ok = e.Property("since")
	require.True(t, ok)
	i, _ = val.AsInt64()
	assert.Equal(t, int64(2021), i)
}
