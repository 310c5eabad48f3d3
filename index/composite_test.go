package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/proptergraph/value"
)

func TestCompositeIndexCreateRejectsShortOrDuplicateList(t *testing.T) {
	ci := NewCompositeIndex()
	assert.False(t, ci.Create(CompositeKeyList{"a"}))
	assert.False(t, ci.Create(CompositeKeyList{"a", "a"}))
	assert.True(t, ci.Create(CompositeKeyList{"a", "b"}))
}

func TestCompositeIndexAutoUpdateAndExactGet(t *testing.T) {
	ci := NewCompositeIndex()
	keys := CompositeKeyList{"city", "age"}
	require.True(t, ci.Create(keys))

	props := map[ElementID]map[string]value.Value{
		1: {"city": value.OfString("nyc"), "age": value.OfInt64(30)},
		2: {"city": value.OfString("nyc"), "age": value.OfInt64(40)},
	}
	for id, p := range props {
		valueOf := func(k string) (value.Value, bool) { v, ok := p[k]; return v, ok }
		ci.AutoUpdate("city", id, valueOf)
		ci.AutoUpdate("age", id, valueOf)
	}

	got, ok := ci.Get(keys, []value.Value{value.OfString("nyc"), value.OfInt64(30)})
	require.True(t, ok)
	assert.Equal(t, []ElementID{1}, got)
}

func TestCompositeIndexAutoUpdateRemovesStaleTuple(t *testing.T) {
	ci := NewCompositeIndex()
	keys := CompositeKeyList{"city", "age"}
	require.True(t, ci.Create(keys))

	p := map[string]value.Value{"city": value.OfString("nyc"), "age": value.OfInt64(30)}
	valueOf := func(k string) (value.Value, bool) { v, ok := p[k]; return v, ok }
	ci.AutoUpdate("city", 1, valueOf)
	ci.AutoUpdate("age", 1, valueOf)

	p["age"] = value.OfInt64(31)
	ci.AutoUpdate("age", 1, valueOf)

	old, ok := ci.Get(keys, []value.Value{value.OfString("nyc"), value.OfInt64(30)})
	require.True(t, ok)
	assert.Empty(t, old)

	updated, ok := ci.Get(keys, []value.Value{value.OfString("nyc"), value.OfInt64(31)})
	require.True(t, ok)
	assert.Equal(t, []ElementID{1}, updated)
}

func TestCompositeIndexGetMatchesAcrossNumericKinds(t *testing.T) {
	ci := NewCompositeIndex()
	keys := CompositeKeyList{"city", "age"}
	require.True(t, ci.Create(keys))

	p := map[string]value.Value{"city": value.OfString("nyc"), "age": value.OfFloat64(30.0)}
	valueOf := func(k string) (value.Value, bool) { v, ok := p[k]; return v, ok }
	ci.AutoUpdate("city", 1, valueOf)
	ci.AutoUpdate("age", 1, valueOf)

	got, ok := ci.Get(keys, []value.Value{value.OfString("nyc"), value.OfInt64(30)})
	require.True(t, ok)
	assert.Equal(t, []ElementID{1}, got, "int64(30) tuple lookup must match a float64(30.0) entry")
}

func TestCompositeIndexApplicableForQuery(t *testing.T) {
	ci := NewCompositeIndex()
	require.True(t, ci.Create(CompositeKeyList{"city", "age"}))
	require.True(t, ci.Create(CompositeKeyList{"city", "age", "active"}))

	got := ci.ApplicableForQuery([]string{"city", "age"})
	require.Len(t, got, 2)
	assert.Equal(t, CompositeKeyList{"city", "age"}, got[0], "shortest covering index first")
}

func TestCompositeIndexDrop(t *testing.T) {
	ci := NewCompositeIndex()
	keys := CompositeKeyList{"a", "b"}
	require.True(t, ci.Create(keys))
	ci.Drop(keys)
	assert.False(t, ci.IsIndexed(keys))
}
