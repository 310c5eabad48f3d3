package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/proptergraph/index"
	"github.com/katalvlaran/proptergraph/value"
)

func newOptimizerFixture(total int) (*Optimizer, *index.SingleIndex, *index.CompositeIndex, *index.RangeIndex) {
	single := index.NewSingleIndex()
	composite := index.NewCompositeIndex()
	rng := index.NewRangeIndex()
	opt := NewOptimizer(index.IndexSet{
		Single:        single,
		Composite:     composite,
		Range:         rng,
		TotalElements: func() int { return total },
	})
	return opt, single, composite, rng
}

func TestOptimizerPlanPrefersCompositeOverTwoExactCriteria(t *testing.T) {
	opt, _, composite, _ := newOptimizerFixture(100)
	keys := index.CompositeKeyList{"city", "age"}
	require.True(t, composite.Create(keys))

	plan := opt.Plan(Exact("city", value.OfString("nyc")), Exact("age", value.OfInt64(30)))
	assert.Equal(t, StrategyComposite, plan.PrimaryStrategy.Kind)
	assert.Equal(t, keys, plan.PrimaryStrategy.CompositeKeys)
	assert.NotEqual(t, plan.ID.String(), "")
}

func TestOptimizerPlanFallsBackToRangeWhenNoComposite(t *testing.T) {
	opt, _, _, rng := newOptimizerFixture(100)
	rng.Create("age")
	for i := int64(0); i < 50; i++ {
		v := value.OfInt64(i)
		require.NoError(t, rng.AutoUpdate("age", &v, nil, index.ElementID(i)))
	}

	plan := opt.Plan(RangeCriterion("age", nil, ptrInt64(40), true, true))
	assert.Equal(t, StrategyRange, plan.PrimaryStrategy.Kind)
	assert.Equal(t, "age", plan.PrimaryStrategy.RangeKey)
}

func TestOptimizerPlanFallsBackToSingleWhenNoRangeOrComposite(t *testing.T) {
	opt, single, _, _ := newOptimizerFixture(100)
	single.Create("city")
	nyc := value.OfString("nyc")
	single.AutoUpdate("city", &nyc, nil, 1)

	plan := opt.Plan(Exact("city", value.OfString("nyc")))
	assert.Equal(t, StrategySingle, plan.PrimaryStrategy.Kind)
	assert.Equal(t, "city", plan.PrimaryStrategy.SingleKey)
}

func TestOptimizerPlanFullScanWhenNothingIndexed(t *testing.T) {
	opt, _, _, _ := newOptimizerFixture(100)
	plan := opt.Plan(Exact("city", value.OfString("nyc")))
	assert.Equal(t, StrategyFullScan, plan.PrimaryStrategy.Kind)
	assert.Equal(t, 1.0, plan.EstimatedCost)
}

func TestOptimizerRecommendationsRequireMoreThanFiveObservations(t *testing.T) {
	opt, single, _, _ := newOptimizerFixture(100)
	_ = single
	for i := 0; i < 6; i++ {
		opt.Plan(Exact("country", value.OfString("us")))
	}
	recs := opt.Recommendations()
	require.Len(t, recs, 1)
	assert.Equal(t, "CREATE SINGLE", recs[0].Kind)
	assert.Equal(t, []string{"country"}, recs[0].Keys)
}

func TestOptimizerRecommendationsSkipAlreadyIndexedKeys(t *testing.T) {
	opt, single, _, _ := newOptimizerFixture(100)
	single.Create("country")
	for i := 0; i < 6; i++ {
		opt.Plan(Exact("country", value.OfString("us")))
	}
	recs := opt.Recommendations()
	assert.Empty(t, recs)
}

func TestOptimizerRecommendationsOrderedByPriorityDescending(t *testing.T) {
	opt, _, _, _ := newOptimizerFixture(100)
	for i := 0; i < 10; i++ {
		opt.Plan(Exact("a", value.OfString("x")))
	}
	for i := 0; i < 6; i++ {
		opt.Plan(Exact("b", value.OfString("y")))
	}
	recs := opt.Recommendations()
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"a"}, recs[0].Keys, "higher observation count ranks first")
	assert.Equal(t, []string{"b"}, recs[1].Keys)
}

func TestOptimizerInvalidateSelectivityClearsCache(t *testing.T) {
	opt, single, _, _ := newOptimizerFixture(10)
	single.Create("city")
	nyc := value.OfString("nyc")
	single.AutoUpdate("city", &nyc, nil, 1)

	plan1 := opt.Plan(Exact("city", value.OfString("nyc")))
	assert.InDelta(t, 0.1, plan1.EstimatedCost, 1e-9, "1 distinct value over 10 elements")

	sf := value.OfString("sf")
	single.AutoUpdate("city", &sf, nil, 2)
	opt.InvalidateSelectivity()
	plan2 := opt.Plan(Exact("city", value.OfString("nyc")))
	assert.Equal(t, plan1.PrimaryStrategy.Kind, plan2.PrimaryStrategy.Kind)
	assert.InDelta(t, 0.2, plan2.EstimatedCost, 1e-9, "selectivity must be recomputed after InvalidateSelectivity")
}

func ptrInt64(v int64) *value.Value {
	val := value.OfInt64(v)
	return &val
}
