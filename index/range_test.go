package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/proptergraph/value"
)

func TestRangeIndexQueryDefaultSemantics(t *testing.T) {
	ri := NewRangeIndex()
	ri.Create("age")
	for id, age := range map[ElementID]int64{1: 10, 2: 20, 3: 30} {
		v := value.OfInt64(age)
		require.NoError(t, ri.AutoUpdate("age", &v, nil, id))
	}

	min := value.OfInt64(10)
	max := value.OfInt64(30)
	got := ri.RangeQuery("age", &min, &max, true, false)
	assert.ElementsMatch(t, []ElementID{1, 2}, got, "[min,max) should exclude 30")
}

func TestRangeIndexQueryInclusiveMax(t *testing.T) {
	ri := NewRangeIndex()
	ri.Create("age")
	for id, age := range map[ElementID]int64{1: 10, 2: 20, 3: 30} {
		v := value.OfInt64(age)
		require.NoError(t, ri.AutoUpdate("age", &v, nil, id))
	}
	min := value.OfInt64(10)
	max := value.OfInt64(30)
	got := ri.RangeQuery("age", &min, &max, true, true)
	assert.ElementsMatch(t, []ElementID{1, 2, 3}, got)
}

func TestRangeIndexRejectsNonComparableValue(t *testing.T) {
	ri := NewRangeIndex()
	ri.Create("tag")
	s := value.OfString("a")
	require.NoError(t, ri.AutoUpdate("tag", &s, nil, 1))

	i := value.OfInt64(1)
	err := ri.AutoUpdate("tag", &i, nil, 2)
	assert.Error(t, err)
}

func TestRangeIndexMinMax(t *testing.T) {
	ri := NewRangeIndex()
	ri.Create("age")
	for id, age := range map[ElementID]int64{1: 10, 2: 20, 3: 30} {
		v := value.OfInt64(age)
		require.NoError(t, ri.AutoUpdate("age", &v, nil, id))
	}
	min, ok := ri.MinValue("age")
	require.True(t, ok)
	i, _ := min.AsInt64()
	assert.Equal(t, int64(10), i)

	max, ok := ri.MaxValue("age")
	require.True(t, ok)
	i, _ = max.AsInt64()
	assert.Equal(t, int64(30), i)
}

func TestRangeIndexAutoUpdateMovesValue(t *testing.T) {
	ri := NewRangeIndex()
	ri.Create("age")
	ten := value.OfInt64(10)
	require.NoError(t, ri.AutoUpdate("age", &ten, nil, 1))

	twenty := value.OfInt64(20)
	require.NoError(t, ri.AutoUpdate("age", &twenty, &ten, 1))

	min := value.OfInt64(0)
	max := value.OfInt64(15)
	assert.Empty(t, ri.RangeQuery("age", &min, &max, true, false))

	max2 := value.OfInt64(25)
	assert.Equal(t, []ElementID{1}, ri.RangeQuery("age", &min, &max2, true, false))
}
