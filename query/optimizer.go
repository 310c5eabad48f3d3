// File: optimizer.go
// Role: C11 — criterion -> plan selection using selectivity estimates,
// query-pattern recording and recommendation emission (spec §4.7).
// AI-HINT (file):
//   - Selection order is fixed: composite -> range -> single -> full scan.
//     Do not reorder without re-reading spec §4.7's numbered rule list.
//   - InvalidateSelectivity must be called by the owning Graph whenever the
//     bound index set changes shape (create/drop/rebuild), per spec's design
//     note on selectivity-cache lifetime.
package query

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/proptergraph/index"
)

// StrategyKind tags which primary strategy a QueryPlan chose.
type StrategyKind uint8

// StrategyKind constants.
const (
	StrategyComposite StrategyKind = iota
	StrategyRange
	StrategySingle
	StrategyFullScan
)

// Strategy is the chosen primary access path for a query.
type Strategy struct {
	Kind            StrategyKind
	CompositeKeys   index.CompositeKeyList // StrategyComposite
	MatchingExact   []Criterion            // StrategyComposite: the exact criteria it satisfies
	RangeKey        string                 // StrategyRange
	RangeCriterion  Criterion              // StrategyRange
	SingleKey       string                 // StrategySingle
	SingleCriterion Criterion              // StrategySingle: the exact criterion that selected this key
	ScanCriteria    []Criterion            // StrategyFullScan
}

// QueryPlan is the optimizer's output: a primary strategy plus the
// criteria that remain to be applied by scanning its candidate set.
type QueryPlan struct {
	ID               uuid.UUID
	PrimaryStrategy  Strategy
	SecondaryFilters []Criterion
	EstimatedCost    float64
}

// Recommendation suggests creating an index based on observed query patterns.
type Recommendation struct {
	ID       uuid.UUID
	Kind     string // "CREATE COMPOSITE" or "CREATE SINGLE"
	Keys     []string
	Priority int
}

type patternSample struct {
	keys     []string
	count    int
	lastSeen time.Time
}

// IndexSet bundles the three index structures one Optimizer plans against
// (one IndexSet for vertices, one for edges — Graph owns two Optimizers).
type IndexSet struct {
	Single    *index.SingleIndex
	Composite *index.CompositeIndex
	Range     *index.RangeIndex
	// TotalElements reports the current element count of the owning class
	// (vertex count, or edge count), used to normalize selectivity.
	TotalElements func() int
}

// Optimizer is C11.
type Optimizer struct {
	mu  sync.Mutex
	idx IndexSet

	selectivity map[string]float64 // per-key cached selectivity, cleared on InvalidateSelectivity
	patterns    map[string]*patternSample
	nowFn       func() time.Time
}

// NewOptimizer constructs an Optimizer bound to idx.
func NewOptimizer(idx IndexSet) *Optimizer {
	return &Optimizer{
		idx:         idx,
		selectivity: make(map[string]float64),
		patterns:    make(map[string]*patternSample),
		nowFn:       time.Now,
	}
}

// InvalidateSelectivity clears the cached per-key selectivity estimates; the
// owning Graph calls this whenever an index is created, dropped, or rebuilt.
func (o *Optimizer) InvalidateSelectivity() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selectivity = make(map[string]float64)
}

// Plan selects an access strategy for criteria (spec §4.7's numbered rules,
// first match wins) and records the query pattern as a side effect.
func (o *Optimizer) Plan(criteria ...Criterion) QueryPlan {
	top := criteria
	var combined Criterion
	if len(top) == 1 {
		combined = top[0]
	} else {
		combined = And(top...)
	}

	o.recordPattern(combined)

	// Rule 1: composite index over >=2 exact-equality criteria.
	exacts := TopLevelExactCriteria(combined)
	if len(exacts) >= 2 {
		exactKeySet := make(map[string]struct{}, len(exacts))
		for _, e := range exacts {
			exactKeySet[e.key] = struct{}{}
		}
		if best, ok := o.idx.Composite.BestForEqualitySet(exactKeySet); ok {
			matching := make([]Criterion, 0, len(best))
			remaining := make([]Criterion, 0, len(exacts))
			bestSet := make(map[string]struct{}, len(best))
			for _, k := range best {
				bestSet[k] = struct{}{}
			}
			for _, e := range exacts {
				if _, ok := bestSet[e.key]; ok {
					matching = append(matching, e)
				} else {
					remaining = append(remaining, e)
				}
			}
			cost := clamp(1-0.1*float64(len(matching)), 0.01, 1.0)
			return QueryPlan{
				ID: uuid.New(),
				PrimaryStrategy: Strategy{
					Kind:          StrategyComposite,
					CompositeKeys: best,
					MatchingExact: matching,
				},
				SecondaryFilters: append(remaining, remainingChildren(combined, keySet(collectExactKeys(exacts)...))...),
				EstimatedCost:    cost,
			}
		}
	}

	// Rule 2: range-indexed range criterion with smallest selectivity.
	ranges := TopLevelRangeCriteria(combined)
	var bestRange *Criterion
	bestSel := 2.0
	for i := range ranges {
		r := ranges[i]
		if !o.idx.Range.IsIndexed(r.key) {
			continue
		}
		sel := o.rangeSelectivity(r)
		if sel < bestSel {
			bestSel = sel
			bestRange = &ranges[i]
		}
	}
	if bestRange != nil {
		secondary := remainingChildren(combined, keySet(bestRange.key))
		return QueryPlan{
			ID: uuid.New(),
			PrimaryStrategy: Strategy{
				Kind:           StrategyRange,
				RangeKey:       bestRange.key,
				RangeCriterion: *bestRange,
			},
			SecondaryFilters: secondary,
			EstimatedCost:    bestSel,
		}
	}

	// Rule 3: single-indexed exact-equality criterion minimizing distinct/total.
	var bestSingle Criterion
	bestSingleCost := 2.0
	haveSingle := false
	for _, e := range exacts {
		if !o.idx.Single.IsIndexed(e.key) {
			continue
		}
		cost := o.singleSelectivity(e.key)
		if !haveSingle || cost < bestSingleCost {
			bestSingleCost = cost
			bestSingle = e
			haveSingle = true
		}
	}
	if haveSingle {
		secondary := make([]Criterion, 0, len(exacts))
		for _, e := range exacts {
			if e.key != bestSingle.key {
				secondary = append(secondary, e)
			}
		}
		secondary = append(secondary, remainingChildren(combined, keySet(collectExactKeys(exacts)...))...)
		return QueryPlan{
			ID: uuid.New(),
			PrimaryStrategy: Strategy{
				Kind:            StrategySingle,
				SingleKey:       bestSingle.key,
				SingleCriterion: bestSingle,
			},
			SecondaryFilters: secondary,
			EstimatedCost:    bestSingleCost,
		}
	}

	// Rule 4: full scan.
	return QueryPlan{
		ID: uuid.New(),
		PrimaryStrategy: Strategy{
			Kind:         StrategyFullScan,
			ScanCriteria: criteria,
		},
		SecondaryFilters: nil,
		EstimatedCost:    1.0,
	}
}

// remainingChildren returns combined's top-level AND children whose key is
// not in excludeKeys, or [combined] itself when combined isn't an AND
// composite and its key isn't excluded.
func remainingChildren(combined Criterion, excludeKeys map[string]struct{}) []Criterion {
	if combined.kind != KindComposite || combined.op != OpAnd {
		if _, ok := excludeKeys[combined.key]; ok {
			return nil
		}
		return []Criterion{combined}
	}
	var out []Criterion
	for _, ch := range combined.children {
		if (ch.kind == KindExact || ch.kind == KindRange) && isExcluded(ch.key, excludeKeys) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func isExcluded(key string, excludeKeys map[string]struct{}) bool {
	_, ok := excludeKeys[key]
	return ok
}

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func collectExactKeys(criteria []Criterion) []string {
	out := make([]string, len(criteria))
	for i, c := range criteria {
		out[i] = c.key
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rangeSelectivity estimates the fraction of the total element space a Range
// criterion would return: queryRange/totalRange for fully-bounded numeric
// criteria, 0.5 for half-bounded, 1.0 for unbounded.
func (o *Optimizer) rangeSelectivity(r Criterion) float64 {
	min, max, _, _ := r.RangeBounds()
	switch {
	case min == nil && max == nil:
		return 1.0
	case min == nil || max == nil:
		return 0.5
	}
	minF, okMin := min.Float()
	maxF, okMax := max.Float()
	if !okMin || !okMax {
		return 0.5
	}
	queryRange := maxF - minF
	if queryRange <= 0 {
		return 0.01
	}

	loVal, haveLo := o.idx.Range.MinValue(r.key)
	hiVal, haveHi := o.idx.Range.MaxValue(r.key)
	if !haveLo || !haveHi {
		return 0.5
	}
	loF, _ := loVal.Float()
	hiF, _ := hiVal.Float()
	totalRange := hiF - loF
	if totalRange <= 0 {
		return 0.01
	}
	return clamp(queryRange/totalRange, 0.01, 1.0)
}

// singleSelectivity estimates distinct_values(k)/total_elements(k), cached
// until InvalidateSelectivity is called.
func (o *Optimizer) singleSelectivity(key string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cached, ok := o.selectivity[key]; ok {
		return cached
	}
	distinct := o.idx.Single.DistinctValues(key)
	total := 1
	if o.idx.TotalElements != nil {
		if t := o.idx.TotalElements(); t > 0 {
			total = t
		}
	}
	sel := clamp(float64(distinct)/float64(total), 0.01, 1.0)
	o.selectivity[key] = sel
	return sel
}

// recordPattern bumps the counter for combined's sorted-distinct-key-list.
func (o *Optimizer) recordPattern(combined Criterion) {
	keys := DistinctKeys(combined)
	if len(keys) == 0 {
		return
	}
	id := strings.Join(keys, "\x1f")

	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.patterns[id]
	if !ok {
		p = &patternSample{keys: keys}
		o.patterns[id] = p
	}
	p.count++
	p.lastSeen = o.nowFn()
}

// Recommendations returns CREATE COMPOSITE / CREATE SINGLE suggestions for
// patterns observed more than 5 times, sorted by priority (the pattern's
// counter) descending, then by pattern key ascending for determinism.
func (o *Optimizer) Recommendations() []Recommendation {
	o.mu.Lock()
	samples := make([]*patternSample, 0, len(o.patterns))
	for _, p := range o.patterns {
		samples = append(samples, p)
	}
	o.mu.Unlock()

	var out []Recommendation
	for _, p := range samples {
		if p.count <= 5 {
			continue
		}
		if len(p.keys) >= 2 {
			kl := index.CompositeKeyList(p.keys)
			if !o.idx.Composite.IsIndexed(kl) {
				out = append(out, Recommendation{ID: uuid.New(), Kind: "CREATE COMPOSITE", Keys: p.keys, Priority: p.count})
			}
			continue
		}
		if len(p.keys) == 1 && !o.idx.Single.IsIndexed(p.keys[0]) {
			out = append(out, Recommendation{ID: uuid.New(), Kind: "CREATE SINGLE", Keys: p.keys, Priority: p.count})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return strings.Join(out[i].Keys, ",") < strings.Join(out[j].Keys, ",")
	})
	return out
}
