// File: engine.go
// Role: C12 — evaluates criterion trees against a class of elements (vertex
// or edge), consulting the Optimizer for a plan and the IndexCache for the
// single-Range-criterion fast path, then applies aggregation (spec §4.8).
// AI-HINT (file):
//   - Engine never mutates anything; Graph owns all writes and calls into
//     index AutoUpdate / cache invalidation directly.
//   - A single Range criterion whose key is range-indexed bypasses the
//     optimizer entirely and goes straight through the cache, per spec.
package query

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/proptergraph/index"
	"github.com/katalvlaran/proptergraph/value"
)

// AggregateOp enumerates the aggregation operators spec §4.8 names.
type AggregateOp uint8

// AggregateOp constants.
const (
	AggCount AggregateOp = iota
	AggDistinctCount
	AggMin
	AggMax
	AggSum
	AggAverage
)

// AggregateResult is Aggregate's outcome. Count/DistinctCount are always
// populated; the numeric ops populate Number and set NumberValid=false when
// no numeric value for key was seen anywhere in the scanned set.
type AggregateResult struct {
	Count         int64
	DistinctCount int64
	Number        float64
	NumberValid   bool
}

// ElementLookup resolves an index.ElementID back to the live element that
// still holds it, or reports false if it has since been removed. Graph
// supplies this so Engine never needs to know about core's types.
type ElementLookup func(id index.ElementID) (PropertySource, bool)

// Engine is C12, bound to one element class's Optimizer, IndexSet and
// IndexCache (Graph owns one Engine per class: vertex and edge).
type Engine struct {
	opt    *Optimizer
	idx    IndexSet
	cache  *index.IndexCache
	lookup ElementLookup
	all    func() []PropertySource
}

// NewEngine constructs an Engine. all must return a fresh snapshot of every
// live element in the bound class, used for full scans.
func NewEngine(opt *Optimizer, idx IndexSet, cache *index.IndexCache, lookup ElementLookup, all func() []PropertySource) *Engine {
	return &Engine{opt: opt, idx: idx, cache: cache, lookup: lookup, all: all}
}

// Query evaluates criteria (implicitly AND-ed when more than one is given)
// and returns every matching live element, sorted by id ascending.
func (e *Engine) Query(criteria ...Criterion) []PropertySource {
	if len(criteria) == 0 {
		return e.scanAll(nil)
	}
	if len(criteria) == 1 && criteria[0].kind == KindRange && e.idx.Range.IsIndexed(criteria[0].key) {
		return e.rangeFastPath(criteria[0])
	}

	var combined Criterion
	if len(criteria) == 1 {
		combined = criteria[0]
	} else {
		combined = And(criteria...)
	}

	plan := e.opt.Plan(combined)
	candidates := e.candidatesFor(plan)
	if candidates == nil {
		// FullScanStrategy: no primary candidate narrowing, scan everything.
		return e.scanAll(plan.PrimaryStrategy.ScanCriteria)
	}

	out := make([]PropertySource, 0, len(candidates))
	for _, id := range candidates {
		el, ok := e.lookup(id)
		if !ok {
			continue
		}
		if evaluateAll(plan.SecondaryFilters, el) {
			out = append(out, el)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// candidatesFor resolves a QueryPlan's primary strategy into a concrete
// element-id candidate set. Returns nil for StrategyFullScan, signalling the
// caller to scan everything instead.
func (e *Engine) candidatesFor(plan QueryPlan) []index.ElementID {
	switch plan.PrimaryStrategy.Kind {
	case StrategyComposite:
		keys := plan.PrimaryStrategy.CompositeKeys
		vals := make([]value.Value, len(keys))
		byKey := make(map[string]value.Value, len(plan.PrimaryStrategy.MatchingExact))
		for _, c := range plan.PrimaryStrategy.MatchingExact {
			byKey[c.key] = c.exactValue
		}
		for i, k := range keys {
			vals[i] = byKey[k]
		}
		ids, _ := e.idx.Composite.Get(keys, vals)
		return ids

	case StrategyRange:
		r := plan.PrimaryStrategy.RangeCriterion
		return e.rangeQuery(r)

	case StrategySingle:
		c := plan.PrimaryStrategy.SingleCriterion
		return e.idx.Single.Get(c.key, c.exactValue)
	}
	return nil
}

// rangeQuery executes r against the range index, independent of whether it
// is the sole criterion (fast path) or a plan's primary strategy.
func (e *Engine) rangeQuery(r Criterion) []index.ElementID {
	return e.idx.Range.RangeQuery(r.key, r.min, r.max, r.includeMin, r.includeMax)
}

// rangeFastPath serves a lone range-indexed Range criterion through the
// cache, populating it on miss (spec §4.8).
func (e *Engine) rangeFastPath(r Criterion) []PropertySource {
	key := index.CacheKey{IndexKind: index.KindRange, Key: r.key, Params: rangeParams(r)}
	var ids []index.ElementID
	if cached, ok := e.cache.Get(key); ok {
		ids = cached
	} else {
		ids = e.rangeQuery(r)
		e.cache.Put(key, ids)
	}
	out := make([]PropertySource, 0, len(ids))
	for _, id := range ids {
		if el, ok := e.lookup(id); ok {
			out = append(out, el)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func rangeParams(r Criterion) map[string]string {
	p := map[string]string{
		"includeMin": boolStr(r.includeMin),
		"includeMax": boolStr(r.includeMax),
	}
	if r.min != nil {
		p["min"] = r.min.String()
	}
	if r.max != nil {
		p["max"] = r.max.String()
	}
	return p
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// scanAll evaluates criteria (nil means "match everything") against every
// live element in the bound class.
func (e *Engine) scanAll(criteria []Criterion) []PropertySource {
	elements := e.all()
	if len(criteria) == 0 {
		sort.Slice(elements, func(i, j int) bool { return elements[i].ID() < elements[j].ID() })
		return elements
	}
	out := make([]PropertySource, 0, len(elements))
	for _, el := range elements {
		if evaluateAll(criteria, el) {
			out = append(out, el)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func evaluateAll(criteria []Criterion, src PropertySource) bool {
	for _, c := range criteria {
		if !Evaluate(c, src) {
			return false
		}
	}
	return true
}

// Aggregate streams every live value for key across every element in the
// bound class and reduces them per op (spec §4.8). Non-numeric values are
// counted by AggCount/AggDistinctCount but ignored by the numeric ops.
func (e *Engine) Aggregate(key string, op AggregateOp) AggregateResult {
	var res AggregateResult
	distinct := make(map[string]struct{})

	first := true
	for _, el := range e.all() {
		for _, v := range el.Values(key) {
			res.Count++
			bk := fmt.Sprintf("%d|%s", v.Kind(), v.String())
			if _, dup := distinct[bk]; !dup {
				distinct[bk] = struct{}{}
				res.DistinctCount++
			}
			f, ok := v.Float()
			if !ok {
				continue
			}
			switch op {
			case AggMin:
				if first || f < res.Number {
					res.Number = f
				}
			case AggMax:
				if first || f > res.Number {
					res.Number = f
				}
			case AggSum, AggAverage:
				res.Number += f
			}
			res.NumberValid = true
			first = false
		}
	}
	if op == AggAverage && res.NumberValid {
		n := numericCount(e.all(), key)
		if n > 0 {
			res.Number /= float64(n)
		}
	}
	return res
}

func numericCount(elements []PropertySource, key string) int {
	n := 0
	for _, el := range elements {
		for _, v := range el.Values(key) {
			if v.IsNumeric() {
				n++
			}
		}
	}
	return n
}
