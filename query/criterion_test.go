package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/proptergraph/value"
)

type fakeSource struct {
	id    uint64
	props map[string][]value.Value
}

func (f *fakeSource) ID() uint64 { return f.id }
func (f *fakeSource) Values(key string) []value.Value { return f.props[key] }
func (f *fakeSource) HasProperty(key string) bool {
	v, ok := f.props[key]
	return ok && len(v) > 0
}

func newFakeSource(props map[string][]value.Value) *fakeSource {
	return &fakeSource{id: 1, props: props}
}

func TestEvaluateExactMatchesAnyValue(t *testing.T) {
	src := newFakeSource(map[string][]value.Value{"tag": {value.OfString("a"), value.OfString("b")}})
	assert.True(t, Evaluate(Exact("tag", value.OfString("b")), src))
	assert.False(t, Evaluate(Exact("tag", value.OfString("c")), src))
}

func TestEvaluateRangeDefaultIsHalfOpen(t *testing.T) {
	src := newFakeSource(map[string][]value.Value{"age": {value.OfInt64(30)}})
	min := value.OfInt64(10)
	max := value.OfInt64(30)
	assert.False(t, Evaluate(RangeDefault("age", &min, &max), src), "default max is exclusive")

	max2 := value.OfInt64(31)
	assert.True(t, Evaluate(RangeDefault("age", &min, &max2), src))
}

func TestEvaluateExistsAndNotExists(t *testing.T) {
	src := newFakeSource(map[string][]value.Value{"tag": {value.OfString("a")}})
	assert.True(t, Evaluate(Exists("tag"), src))
	assert.False(t, Evaluate(NotExists("tag"), src))
	assert.True(t, Evaluate(NotExists("missing"), src))
}

func TestEvaluateContainsSubstringCaseInsensitive(t *testing.T) {
	src := newFakeSource(map[string][]value.Value{"bio": {value.OfString("Loves Go")}})
	assert.True(t, Evaluate(ContainsSubstring("bio", "loves go", true), src))
	assert.False(t, Evaluate(ContainsSubstring("bio", "loves go", false), src))
}

func TestEvaluateContainsElementInList(t *testing.T) {
	list := value.OfList(value.OfString("x"), value.OfString("y"))
	src := newFakeSource(map[string][]value.Value{"tags": {list}})
	assert.True(t, Evaluate(ContainsElement("tags", value.OfString("y")), src))
	assert.False(t, Evaluate(ContainsElement("tags", value.OfString("z")), src))
}

func TestEvaluateRegexAnchoredFullMatch(t *testing.T) {
	src := newFakeSource(map[string][]value.Value{"code": {value.OfString("AB123")}})
	re, err := Regex("code", `[A-Z]{2}\d+`)
	require.NoError(t, err)
	assert.True(t, Evaluate(re, src))

	partial, err := Regex("code", `AB`)
	require.NoError(t, err)
	assert.False(t, Evaluate(partial, src), "regex must match the full string, not a substring")
}

func TestEvaluateCompositeAndOrNot(t *testing.T) {
	src := newFakeSource(map[string][]value.Value{
		"city": {value.OfString("nyc")},
		"age":  {value.OfInt64(30)},
	})
	and := And(Exact("city", value.OfString("nyc")), Exact("age", value.OfInt64(30)))
	assert.True(t, Evaluate(and, src))

	andFalse := And(Exact("city", value.OfString("nyc")), Exact("age", value.OfInt64(99)))
	assert.False(t, Evaluate(andFalse, src))

	or := Or(Exact("city", value.OfString("sf")), Exact("age", value.OfInt64(30)))
	assert.True(t, Evaluate(or, src))

	not := Not(Exact("city", value.OfString("sf")))
	assert.True(t, Evaluate(not, src))
}

func TestEvaluateRecoversFromPanicAsFalse(t *testing.T) {
	// A Regex criterion built without the Regex helper has a nil pattern, so
	// matching a string value panics inside evaluate.
	malformed := Criterion{kind: KindRegex, key: "code"}
	src := newFakeSource(map[string][]value.Value{"code": {value.OfString("AB123")}})
	assert.False(t, Evaluate(malformed, src))
}

func TestDistinctKeysDeduplicatesAndSorts(t *testing.T) {
	c := And(Exact("b", value.OfString("x")), Exact("a", value.OfString("y")), Exact("a", value.OfString("z")))
	assert.Equal(t, []string{"a", "b"}, DistinctKeys(c))
}

func TestTopLevelExactCriteriaOnlyTopLevel(t *testing.T) {
	c := And(Exact("a", value.OfString("x")), RangeDefault("b", nil, nil))
	exacts := TopLevelExactCriteria(c)
	require.Len(t, exacts, 1)
	assert.Equal(t, "a", exacts[0].Key())
}

func TestTopLevelRangeCriteriaOnlyTopLevel(t *testing.T) {
	c := And(Exact("a", value.OfString("x")), RangeDefault("b", nil, nil))
	ranges := TopLevelRangeCriteria(c)
	require.Len(t, ranges, 1)
	assert.Equal(t, "b", ranges[0].Key())
}
