// Package query implements the criterion algebra, cost-based optimizer and
// query engine that sit on top of core's indices (spec §4.7–§4.8). The
// package depends only on value and index, never on core, so core can own
// and drive both Optimizer and Engine without an import cycle; core.Vertex
// satisfies PropertySource structurally.
package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/katalvlaran/proptergraph/value"
)

// PropertySource is the minimal read surface QueryEngine needs from a
// vertex: its id and its live property values by key. core.Vertex satisfies
// this interface without query importing core.
type PropertySource interface {
	ID() uint64
	Values(key string) []value.Value
	HasProperty(key string) bool
}

// CompositeOp enumerates Composite criterion boolean combinators.
type CompositeOp uint8

// CompositeOp constants.
const (
	OpAnd CompositeOp = iota
	OpOr
	OpNot
)

// CriterionKind tags which variant a Criterion holds.
type CriterionKind uint8

// CriterionKind constants.
const (
	KindExact CriterionKind = iota
	KindRange
	KindExists
	KindNotExists
	KindContains
	KindRegex
	KindComposite
)

// Criterion is the sum type of the query predicate algebra (spec §4.8).
// Construct with the Exact/RangeCriterion/Exists/... helpers below; do not build a
// literal directly, Kind must stay in sync with the populated fields.
type Criterion struct {
	kind CriterionKind

	key string

	// Exact
	exactValue value.Value

	// Range
	min, max               *value.Value
	includeMin, includeMax bool

	// Contains
	substring  *string
	element    *value.Value
	ignoreCase bool

	// Regex
	pattern *regexp.Regexp

	// Composite
	op       CompositeOp
	children []Criterion
}

// Kind reports which variant c holds.
func (c Criterion) Kind() CriterionKind { return c.kind }

// Key reports the property key a leaf criterion targets (undefined for Composite).
func (c Criterion) Key() string { return c.key }

// Exact builds an Exact(key, value) criterion.
func Exact(key string, v value.Value) Criterion {
	return Criterion{kind: KindExact, key: key, exactValue: v}
}

// RangeCriterion builds a Range(key, min?, max?, includeMin, includeMax) criterion.
// A nil bound is unbounded on that side. Defaults to TinkerPop [min, max)
// when called via RangeDefault.
func RangeCriterion(key string, min, max *value.Value, includeMin, includeMax bool) Criterion {
	return Criterion{kind: KindRange, key: key, min: min, max: max, includeMin: includeMin, includeMax: includeMax}
}

// RangeDefault builds a Range criterion using TinkerPop's default [min, max)
// semantics (includeMin=true, includeMax=false).
func RangeDefault(key string, min, max *value.Value) Criterion {
	return RangeCriterion(key, min, max, true, false)
}

// Exists builds an Exists(key) criterion.
func Exists(key string) Criterion { return Criterion{kind: KindExists, key: key} }

// NotExists builds a NotExists(key) criterion.
func NotExists(key string) Criterion { return Criterion{kind: KindNotExists, key: key} }

// ContainsSubstring builds a Contains criterion matching a substring within
// string values.
func ContainsSubstring(key, substr string, ignoreCase bool) Criterion {
	return Criterion{kind: KindContains, key: key, substring: &substr, ignoreCase: ignoreCase}
}

// ContainsElement builds a Contains criterion matching element-containment
// within list/set values.
func ContainsElement(key string, el value.Value) Criterion {
	return Criterion{kind: KindContains, key: key, element: &el}
}

// Regex builds a Regex(key, pattern) criterion; pattern must be a valid RE2
// expression and matches full string values (anchored both ends).
func Regex(key, pattern string) (Criterion, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return Criterion{}, err
	}
	return Criterion{kind: KindRegex, key: key, pattern: re}, nil
}

// And builds a Composite(AND, children) criterion.
func And(children ...Criterion) Criterion {
	return Criterion{kind: KindComposite, op: OpAnd, children: children}
}

// Or builds a Composite(OR, children) criterion.
func Or(children ...Criterion) Criterion {
	return Criterion{kind: KindComposite, op: OpOr, children: children}
}

// Not builds a Composite(NOT, [child]) criterion.
func Not(child Criterion) Criterion {
	return Criterion{kind: KindComposite, op: OpNot, children: []Criterion{child}}
}

// Evaluate applies c against src, per spec §4.8's per-variant contract.
// Any panic during evaluation (e.g. a malformed internal state) is recovered
// and treated as false, tolerating type-mismatched values the way the spec
// mandates for thrown evaluation errors.
func Evaluate(c Criterion, src PropertySource) (result bool) {
	defer func() {
		if recover() != nil {
			result = false
		}
	}()
	return evaluate(c, src)
}

func evaluate(c Criterion, src PropertySource) bool {
	switch c.kind {
	case KindExact:
		for _, v := range src.Values(c.key) {
			if v.Equal(c.exactValue) {
				return true
			}
		}
		return false

	case KindRange:
		for _, v := range src.Values(c.key) {
			if !v.IsNumeric() {
				continue
			}
			if inRange(v, c.min, c.max, c.includeMin, c.includeMax) {
				return true
			}
		}
		return false

	case KindExists:
		return src.HasProperty(c.key)

	case KindNotExists:
		return !src.HasProperty(c.key)

	case KindContains:
		return evaluateContains(c, src)

	case KindRegex:
		for _, v := range src.Values(c.key) {
			s, ok := v.AsString()
			if !ok {
				continue
			}
			if c.pattern.MatchString(s) {
				return true
			}
		}
		return false

	case KindComposite:
		switch c.op {
		case OpAnd:
			for _, ch := range c.children {
				if !evaluate(ch, src) {
					return false
				}
			}
			return true
		case OpOr:
			for _, ch := range c.children {
				if evaluate(ch, src) {
					return true
				}
			}
			return false
		case OpNot:
			if len(c.children) != 1 {
				return false
			}
			return !evaluate(c.children[0], src)
		}
	}
	return false
}

func inRange(v value.Value, min, max *value.Value, includeMin, includeMax bool) bool {
	if min != nil {
		c, err := value.Compare(v, *min)
		if err != nil {
			return false
		}
		if includeMin && c < 0 {
			return false
		}
		if !includeMin && c <= 0 {
			return false
		}
	}
	if max != nil {
		c, err := value.Compare(v, *max)
		if err != nil {
			return false
		}
		if includeMax && c > 0 {
			return false
		}
		if !includeMax && c >= 0 {
			return false
		}
	}
	return true
}

func evaluateContains(c Criterion, src PropertySource) bool {
	for _, v := range src.Values(c.key) {
		if c.substring != nil {
			s, ok := v.AsString()
			if !ok {
				continue
			}
			needle := *c.substring
			if c.ignoreCase {
				if strings.Contains(strings.ToLower(s), strings.ToLower(needle)) {
					return true
				}
				continue
			}
			if strings.Contains(s, needle) {
				return true
			}
			continue
		}
		if c.element != nil {
			if list, ok := v.AsList(); ok {
				for _, item := range list {
					if item.Equal(*c.element) {
						return true
					}
				}
			}
			if set, ok := v.AsSet(); ok {
				for _, item := range set {
					if item.Equal(*c.element) {
						return true
					}
				}
			}
		}
	}
	return false
}

// DistinctKeys collects every key referenced anywhere in c's tree, sorted
// ascending and de-duplicated — used by the optimizer's pattern recorder.
func DistinctKeys(c Criterion) []string {
	set := make(map[string]struct{})
	collectKeys(c, set)
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func collectKeys(c Criterion, set map[string]struct{}) {
	if c.kind == KindComposite {
		for _, ch := range c.children {
			collectKeys(ch, set)
		}
		return
	}
	set[c.key] = struct{}{}
}

// TopLevelExactCriteria returns the Exact-kind criteria directly present at
// the top level of c: either c itself if it's Exact, or c's immediate
// children if c is an AND composite. This is what the optimizer scans for
// composite-index applicability (spec §4.7 rule 1).
func TopLevelExactCriteria(c Criterion) []Criterion {
	if c.kind == KindExact {
		return []Criterion{c}
	}
	if c.kind == KindComposite && c.op == OpAnd {
		var out []Criterion
		for _, ch := range c.children {
			if ch.kind == KindExact {
				out = append(out, ch)
			}
		}
		return out
	}
	return nil
}

// TopLevelRangeCriteria returns the Range-kind criteria directly present at
// the top level of c, analogous to TopLevelExactCriteria.
func TopLevelRangeCriteria(c Criterion) []Criterion {
	if c.kind == KindRange {
		return []Criterion{c}
	}
	if c.kind == KindComposite && c.op == OpAnd {
		var out []Criterion
		for _, ch := range c.children {
			if ch.kind == KindRange {
				out = append(out, ch)
			}
		}
		return out
	}
	return nil
}

// RangeBounds exposes a Range criterion's bounds for the optimizer's
// selectivity estimate.
func (c Criterion) RangeBounds() (min, max *value.Value, includeMin, includeMax bool) {
	return c.min, c.max, c.includeMin, c.includeMax
}
