package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/proptergraph/index"
	"github.com/katalvlaran/proptergraph/value"
)

// engineFixture wires a real Optimizer/IndexSet/IndexCache against an
// in-memory set of fakeSource elements, mirroring how Graph wires one Engine
// per element class.
type engineFixture struct {
	elements map[index.ElementID]*fakeSource
	single   *index.SingleIndex
	composite *index.CompositeIndex
	rng      *index.RangeIndex
	cache    *index.IndexCache
	opt      *Optimizer
	engine   *Engine
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		elements:  make(map[index.ElementID]*fakeSource),
		single:    index.NewSingleIndex(),
		composite: index.NewCompositeIndex(),
		rng:       index.NewRangeIndex(),
		cache:     index.NewIndexCache(100, 300000, nil),
	}
	set := index.IndexSet{Single: f.single, Composite: f.composite, Range: f.rng, TotalElements: func() int { return len(f.elements) }}
	f.opt = NewOptimizer(set)
	lookup := func(id index.ElementID) (PropertySource, bool) {
		el, ok := f.elements[id]
		return el, ok
	}
	all := func() []PropertySource {
		out := make([]PropertySource, 0, len(f.elements))
		for _, el := range f.elements {
			out = append(out, el)
		}
		return out
	}
	f.engine = NewEngine(f.opt, set, f.cache, lookup, all)
	return f
}

func (f *engineFixture) addVertex(id uint64, props map[string]value.Value) {
	vals := make(map[string][]value.Value, len(props))
	for k, v := range props {
		vals[k] = []value.Value{v}
		f.single.AutoUpdate(k, &v, nil, id)
		f.rng.AutoUpdate(k, &v, nil, id)
	}
	f.elements[id] = &fakeSource{id: id, props: vals}
}

func TestEngineQueryEmptyCriteriaReturnsAllSortedByID(t *testing.T) {
	f := newEngineFixture()
	f.addVertex(2, nil)
	f.addVertex(1, nil)

	got := f.engine.Query()
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID())
	assert.Equal(t, uint64(2), got[1].ID())
}

func TestEngineQuerySingleRangeCriterionUsesFastPathAndCache(t *testing.T) {
	f := newEngineFixture()
	f.rng.Create("age")
	f.addVertex(1, map[string]value.Value{"age": value.OfInt64(20)})
	f.addVertex(2, map[string]value.Value{"age": value.OfInt64(40)})

	min := value.OfInt64(10)
	max := value.OfInt64(30)
	got := f.engine.Query(RangeDefault("age", &min, &max))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID())

	stats := f.cache.Stats()
	assert.Equal(t, uint64(1), stats.Misses)

	got2 := f.engine.Query(RangeDefault("age", &min, &max))
	require.Len(t, got2, 1)
	stats2 := f.cache.Stats()
	assert.Equal(t, uint64(1), stats2.Hits, "second identical range query should hit the cache")
}

func TestEngineQueryExactCriterionUsesSingleIndex(t *testing.T) {
	f := newEngineFixture()
	f.single.Create("city")
	f.addVertex(1, map[string]value.Value{"city": value.OfString("nyc")})
	f.addVertex(2, map[string]value.Value{"city": value.OfString("sf")})

	got := f.engine.Query(Exact("city", value.OfString("nyc")))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].ID())
}

func TestEngineQueryFallsBackToFullScanWhenUnindexed(t *testing.T) {
	f := newEngineFixture()
	f.addVertex(1, map[string]value.Value{"city": value.OfString("nyc")})
	f.addVertex(2, map[string]value.Value{"city": value.OfString("sf")})

	got := f.engine.Query(Exact("city", value.OfString("sf")))
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].ID())
}

func TestEngineQuerySkipsCandidatesNoLongerPresent(t *testing.T) {
	f := newEngineFixture()
	f.single.Create("city")
	f.addVertex(1, map[string]value.Value{"city": value.OfString("nyc")})
	delete(f.elements, 1)

	got := f.engine.Query(Exact("city", value.OfString("nyc")))
	assert.Empty(t, got)
}

func TestEngineAggregateCountAndSum(t *testing.T) {
	f := newEngineFixture()
	f.addVertex(1, map[string]value.Value{"age": value.OfInt64(10)})
	f.addVertex(2, map[string]value.Value{"age": value.OfInt64(20)})
	f.addVertex(3, nil)

	count := f.engine.Aggregate("age", AggCount)
	assert.Equal(t, int64(2), count.Count)

	sum := f.engine.Aggregate("age", AggSum)
	assert.True(t, sum.NumberValid)
	assert.Equal(t, float64(30), sum.Number)

	avg := f.engine.Aggregate("age", AggAverage)
	assert.Equal(t, float64(15), avg.Number)
}

func TestEngineAggregateDistinctCount(t *testing.T) {
	f := newEngineFixture()
	f.addVertex(1, map[string]value.Value{"city": value.OfString("nyc")})
	f.addVertex(2, map[string]value.Value{"city": value.OfString("nyc")})
	f.addVertex(3, map[string]value.Value{"city": value.OfString("sf")})

	res := f.engine.Aggregate("city", AggDistinctCount)
	assert.Equal(t, int64(2), res.DistinctCount)
	assert.Equal(t, int64(3), res.Count)
}

func TestEngineAggregateMinMaxIgnoresNonNumeric(t *testing.T) {
	f := newEngineFixture()
	f.addVertex(1, map[string]value.Value{"score": value.OfInt64(5)})
	f.addVertex(2, map[string]value.Value{"score": value.OfString("not-a-number")})
	f.addVertex(3, map[string]value.Value{"score": value.OfInt64(15)})

	min := f.engine.Aggregate("score", AggMin)
	assert.Equal(t, float64(5), min.Number)

	max := f.engine.Aggregate("score", AggMax)
	assert.Equal(t, float64(15), max.Number)
}

func TestEngineAggregateNumberInvalidWhenNoNumericValues(t *testing.T) {
	f := newEngineFixture()
	f.addVertex(1, map[string]value.Value{"tag": value.OfString("x")})

	res := f.engine.Aggregate("tag", AggSum)
	assert.False(t, res.NumberValid)
}
