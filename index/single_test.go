package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/proptergraph/value"
)

func TestSingleIndexAutoUpdateMovesBuckets(t *testing.T) {
	si := NewSingleIndex()
	si.Create("city")

	nyc := value.OfString("nyc")
	si.AutoUpdate("city", &nyc, nil, 1)
	assert.Equal(t, []ElementID{1}, si.Get("city", nyc))

	sf := value.OfString("sf")
	si.AutoUpdate("city", &sf, &nyc, 1)
	assert.Empty(t, si.Get("city", nyc))
	assert.Equal(t, []ElementID{1}, si.Get("city", sf))
}

func TestSingleIndexAutoUpdateNoopWhenNotIndexed(t *testing.T) {
	si := NewSingleIndex()
	v := value.OfString("x")
	si.AutoUpdate("city", &v, nil, 1)
	assert.False(t, si.IsIndexed("city"))
	assert.Empty(t, si.Get("city", v))
}

func TestSingleIndexRebuildReplacesEntries(t *testing.T) {
	si := NewSingleIndex()
	nyc := value.OfString("nyc")
	si.Create("city")
	si.AutoUpdate("city", &nyc, nil, 1)

	si.Rebuild("city", func(yield func(el ElementID, v value.Value)) {
		yield(2, value.OfString("sf"))
	})

	assert.Empty(t, si.Get("city", nyc))
	assert.Equal(t, []ElementID{2}, si.Get("city", value.OfString("sf")))
}

func TestSingleIndexDrop(t *testing.T) {
	si := NewSingleIndex()
	si.Create("city")
	si.Drop("city")
	assert.False(t, si.IsIndexed("city"))
}

func TestSingleIndexGetMatchesAcrossNumericKinds(t *testing.T) {
	si := NewSingleIndex()
	si.Create("age")

	age := value.OfFloat64(30.0)
	si.AutoUpdate("age", &age, nil, 1)

	// OfInt64(30).Equal(OfFloat64(30.0)) is true, so the index must resolve
	// an int64 query to the element stored under the equivalent float64 —
	// anything less would make SingleIndex.Get a strict subset of what a
	// full scan via Value.Equal would return.
	assert.Equal(t, []ElementID{1}, si.Get("age", value.OfInt64(30)))
}

func TestSingleIndexDistinctAndTotalCounts(t *testing.T) {
	si := NewSingleIndex()
	si.Create("tag")
	a, b := value.OfString("a"), value.OfString("b")
	si.AutoUpdate("tag", &a, nil, 1)
	si.AutoUpdate("tag", &a, nil, 2)
	si.AutoUpdate("tag", &b, nil, 3)

	assert.Equal(t, 2, si.DistinctValues("tag"))
	assert.Equal(t, 3, si.TotalElements("tag"))
}
