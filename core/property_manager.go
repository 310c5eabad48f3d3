// File: property_manager.go
// Role: C13 — cardinality-enforcing property mutator, lifecycle listeners,
// and constraint validation wrapping Vertex's raw state machine.
// AI-HINT (file):
//   - This is the only path that should call Vertex.addPropertyRaw/removePropertyRaw;
//     Graph routes every vertex-property mutation through PropertyManager so
//     validation, listeners and index notification never drift apart.
//   - A listener panic/error is logged and swallowed (spec §4.9); it never
//     aborts the mutation that triggered it.
package core

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/katalvlaran/proptergraph/value"
)

// PropertyEvent describes a vertex-property lifecycle transition delivered
// to registered listeners.
type PropertyEvent struct {
	Kind     PropertyEventKind
	Vertex   *Vertex
	Property *VertexProperty
}

// PropertyEventKind enumerates the lifecycle transitions a listener observes.
type PropertyEventKind uint8

// PropertyEventKind constants.
const (
	PropertyAdded PropertyEventKind = iota
	PropertyRemoved
)

// PropertyListener observes vertex-property lifecycle events. A listener
// must not mutate the graph; doing so deadlocks on the caller's own lock.
type PropertyListener func(PropertyEvent)

// CardinalityReport summarizes a single key's live properties for the
// suggestion heuristic in spec §4.9.
type CardinalityReport struct {
	Key                  string
	TotalCount           int
	UniqueCount          int
	SuggestedCardinality value.Cardinality
	HasMetaProperties    bool
}

// PropertyManager wraps Vertex mutation with feature-gating, listener
// dispatch and constraint validation.
type PropertyManager struct {
	g                    *Graph
	log                  *zap.Logger
	listeners            []PropertyListener
	allowMultiProperties bool
	allowMetaProperties  bool
}

func newPropertyManager(g *Graph, log *zap.Logger, allowMulti, allowMeta bool) *PropertyManager {
	return &PropertyManager{g: g, log: log, allowMultiProperties: allowMulti, allowMetaProperties: allowMeta}
}

// AddListener registers a PropertyListener invoked on every add/remove.
func (pm *PropertyManager) AddListener(l PropertyListener) {
	pm.listeners = append(pm.listeners, l)
}

func (pm *PropertyManager) notify(evt PropertyEvent) {
	for _, l := range pm.listeners {
		pm.safeInvoke(l, evt)
	}
}

// safeInvoke calls a listener, recovering from panics and logging any error
// path so a broken listener can never abort the triggering mutation.
func (pm *PropertyManager) safeInvoke(l PropertyListener, evt PropertyEvent) {
	defer func() {
		if r := recover(); r != nil {
			pm.log.Error("property listener panicked",
				zap.Any("recovered", r),
				zap.Uint64("vertex_id", evt.Vertex.ID()),
			)
		}
	}()
	l(evt)
}

// AddProperty validates, mutates Vertex state, dispatches listeners and
// returns the created VertexProperty. The caller (Graph) is responsible for
// index auto_update notification using the returned created/demoted set.
func (pm *PropertyManager) AddProperty(v *Vertex, key string, val value.Value, explicitCard *value.Cardinality, meta map[string]value.Value) (created *VertexProperty, demoted []*VertexProperty, err error) {
	if err = v.checkLive(); err != nil {
		return nil, nil, err
	}
	if err = ValidatePropertyKey(key); err != nil {
		return nil, nil, err
	}
	if val.IsNull() && !pm.g.cfg.AllowNullPropertyValues {
		return nil, nil, ErrNullValueNotAllowed
	}

	card := pm.effectiveCardinality(v, key, explicitCard)
	if !pm.allowMultiProperties && card != value.Single {
		return nil, nil, ErrMultiPropertyNotSupported
	}
	if len(meta) > 0 && !pm.allowMetaProperties {
		return nil, nil, ErrMetaPropertyNotSupported
	}

	created, demoted, err = v.addPropertyRaw(key, val, card)
	if err != nil {
		return nil, nil, err
	}

	for mk, mv := range meta {
		if err = ValidatePropertyKey(mk); err != nil {
			continue
		}
		if mv.IsNull() && !pm.g.cfg.AllowNullPropertyValues {
			continue
		}
		created.setMeta(mk, mv)
	}

	for _, d := range demoted {
		pm.notify(PropertyEvent{Kind: PropertyRemoved, Vertex: v, Property: d})
	}
	pm.notify(PropertyEvent{Kind: PropertyAdded, Vertex: v, Property: created})

	return created, demoted, nil
}

// effectiveCardinality resolves the cardinality to use for a new property on
// key: explicit argument wins, then the key's existing recorded cardinality,
// then the graph default (spec §4.1).
func (pm *PropertyManager) effectiveCardinality(v *Vertex, key string, explicit *value.Cardinality) value.Cardinality {
	if explicit != nil {
		return *explicit
	}
	if c, ok := v.Cardinality(key); ok {
		return c
	}
	return pm.g.cfg.DefaultVertexPropertyCardinality
}

// RemoveProperty marks matching properties removed and dispatches listeners.
func (pm *PropertyManager) RemoveProperty(v *Vertex, key string, val *value.Value) ([]*VertexProperty, error) {
	if err := v.checkLive(); err != nil {
		return nil, err
	}
	removed := v.removePropertyRaw(key, val)
	for _, r := range removed {
		pm.notify(PropertyEvent{Kind: PropertyRemoved, Vertex: v, Property: r})
	}
	return removed, nil
}

// RemoveProperties removes every live property at key.
func (pm *PropertyManager) RemoveProperties(v *Vertex, key string) ([]*VertexProperty, error) {
	return pm.RemoveProperty(v, key, nil)
}

// AnalyzeCardinality reports, per key, counts and a suggested cardinality
// (spec §4.9): SINGLE if count<=1, LIST if all values unique, else SET.
func (pm *PropertyManager) AnalyzeCardinality(v *Vertex) []CardinalityReport {
	keys := v.PropertyKeys()
	reports := make([]CardinalityReport, 0, len(keys))
	for _, k := range keys {
		props := v.vertexProperties[k]
		total := 0
		hasMeta := false
		var live []*VertexProperty
		for _, p := range props {
			if p.Removed() {
				continue
			}
			total++
			live = append(live, p)
			if len(p.MetaProperties()) > 0 {
				hasMeta = true
			}
		}
		unique := countUniqueValues(live)

		suggested := value.Set
		switch {
		case total <= 1:
			suggested = value.Single
		case unique == total:
			suggested = value.List
		}

		reports = append(reports, CardinalityReport{
			Key:                  k,
			TotalCount:           total,
			UniqueCount:          unique,
			SuggestedCardinality: suggested,
			HasMetaProperties:    hasMeta,
		})
	}
	return reports
}

func countUniqueValues(props []*VertexProperty) int {
	var uniq []value.Value
	for _, p := range props {
		dup := false
		for _, u := range uniq {
			if u.Equal(p.Value()) {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, p.Value())
		}
	}
	return len(uniq)
}

// ValidateConstraints detects SINGLE keys with more than one live property
// and SET keys with duplicate values, aggregating every violation found
// (rather than failing fast on the first) via go-multierror.
func (pm *PropertyManager) ValidateConstraints(v *Vertex) error {
	var result *multierror.Error
	for key, card := range v.cardinalities {
		props := v.vertexProperties[key]
		var live []*VertexProperty
		for _, p := range props {
			if !p.Removed() {
				live = append(live, p)
			}
		}
		switch card {
		case value.Single:
			if len(live) > 1 {
				result = multierror.Append(result, errConstraintf("key %q: SINGLE cardinality has %d live properties", key, len(live)))
			}
		case value.Set:
			for i := 0; i < len(live); i++ {
				for j := i + 1; j < len(live); j++ {
					if live[i].Value().Equal(live[j].Value()) {
						result = multierror.Append(result, errConstraintf("key %q: SET cardinality has duplicate value %v", key, live[i].Value()))
					}
				}
			}
		}
	}
	if result != nil {
		return result.ErrorOrNil()
	}
	return nil
}
