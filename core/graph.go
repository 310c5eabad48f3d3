// File: graph.go
// Role: C14 — owner of every vertex/edge, the six index instances, the two
// optimizer+engine+cache pairs, the id allocator and graph variables; the
// sole mutation entry point (spec §4.10).
// AI-HINT (file):
//   - Every mutating method except RemoveVertex holds mu for its entire body,
//     including index auto_update and cache invalidation, so such a mutation
//     is one transactional step (spec design note §9) — never call a Graph
//     mutator from inside another Graph mutator while still holding mu (they
//     are not reentrant). RemoveVertex releases mu while it removes each
//     incident edge through RemoveEdge, then re-acquires it for the vertex.
//   - Index/cache/optimizer instances are private; nothing outside this file
//     may reach them directly.
package core

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/katalvlaran/proptergraph/index"
	"github.com/katalvlaran/proptergraph/query"
	"github.com/katalvlaran/proptergraph/value"
)

// ElementClass distinguishes which of the two index families an index
// management call targets.
type ElementClass uint8

// ElementClass constants.
const (
	ClassVertex ElementClass = iota
	ClassEdge
)

// Graph owns every element and index; all mutation and query traffic flows
// through it (spec §4.10).
type Graph struct {
	mu  sync.RWMutex
	cfg GraphConfig
	log *zap.Logger

	ids     *idGen
	version uint64

	vertices map[uint64]*Vertex
	edges    map[uint64]*Edge

	variables map[string]value.Value

	pm *PropertyManager

	vertexSingle    *index.SingleIndex
	vertexComposite *index.CompositeIndex
	vertexRange     *index.RangeIndex
	edgeSingle      *index.SingleIndex
	edgeComposite   *index.CompositeIndex
	edgeRange       *index.RangeIndex

	vertexCache *index.IndexCache
	edgeCache   *index.IndexCache

	vertexOptimizer *query.Optimizer
	edgeOptimizer   *query.Optimizer

	vertexEngine *query.Engine
	edgeEngine   *query.Engine
}

// NewGraph constructs a Graph with the given options applied over the
// default configuration (nulls disallowed, SINGLE cardinality, multi/meta
// properties on, 1000-entry/300s caches).
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		cfg:       defaultGraphConfig(),
		log:       zap.NewNop(),
		ids:       newIDGen(),
		vertices:  make(map[uint64]*Vertex),
		edges:     make(map[uint64]*Edge),
		variables: make(map[string]value.Value),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.pm = newPropertyManager(g, g.log, g.cfg.AllowMultiProperties, g.cfg.AllowMetaProperties)

	g.vertexSingle = index.NewSingleIndex()
	g.vertexComposite = index.NewCompositeIndex()
	g.vertexRange = index.NewRangeIndex()
	g.edgeSingle = index.NewSingleIndex()
	g.edgeComposite = index.NewCompositeIndex()
	g.edgeRange = index.NewRangeIndex()

	g.vertexCache = index.NewIndexCache(g.cfg.CacheMaxEntries, g.cfg.CacheMaxAgeMs, nil)
	g.edgeCache = index.NewIndexCache(g.cfg.CacheMaxEntries, g.cfg.CacheMaxAgeMs, nil)

	vertexIdx := query.IndexSet{
		Single: g.vertexSingle, Composite: g.vertexComposite, Range: g.vertexRange,
		TotalElements: func() int { g.mu.RLock(); defer g.mu.RUnlock(); return len(g.vertices) },
	}
	edgeIdx := query.IndexSet{
		Single: g.edgeSingle, Composite: g.edgeComposite, Range: g.edgeRange,
		TotalElements: func() int { g.mu.RLock(); defer g.mu.RUnlock(); return len(g.edges) },
	}
	g.vertexOptimizer = query.NewOptimizer(vertexIdx)
	g.edgeOptimizer = query.NewOptimizer(edgeIdx)

	g.vertexEngine = query.NewEngine(g.vertexOptimizer, vertexIdx, g.vertexCache,
		func(id index.ElementID) (query.PropertySource, bool) {
			g.mu.RLock()
			defer g.mu.RUnlock()
			v, ok := g.vertices[id]
			return v, ok
		},
		func() []query.PropertySource {
			g.mu.RLock()
			defer g.mu.RUnlock()
			out := make([]query.PropertySource, 0, len(g.vertices))
			for _, v := range g.vertices {
				out = append(out, v)
			}
			return out
		},
	)
	g.edgeEngine = query.NewEngine(g.edgeOptimizer, edgeIdx, g.edgeCache,
		func(id index.ElementID) (query.PropertySource, bool) {
			g.mu.RLock()
			defer g.mu.RUnlock()
			e, ok := g.edges[id]
			return e, ok
		},
		func() []query.PropertySource {
			g.mu.RLock()
			defer g.mu.RUnlock()
			out := make([]query.PropertySource, 0, len(g.edges))
			for _, e := range g.edges {
				out = append(out, e)
			}
			return out
		},
	)

	return g
}

func (g *Graph) bumpVersion() { g.version++ }

// currentVersion reports the current mutation counter, used by iterators to
// detect invalidation (spec §5).
func (g *Graph) currentVersion() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

func (g *Graph) vertexByID(id uint64) (*Vertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.vertices[id]
	if !ok {
		return nil, ErrVertexNotFound
	}
	return v, nil
}

func (g *Graph) edgeByID(id uint64) (*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	if !ok {
		return nil, ErrEdgeNotFound
	}
	return e, nil
}

// Vertex resolves id to its live Vertex.
func (g *Graph) Vertex(id uint64) (*Vertex, error) { return g.vertexByID(id) }

// Edge resolves id to its live Edge.
func (g *Graph) Edge(id uint64) (*Edge, error) { return g.edgeByID(id) }

// VertexCount reports the number of live vertices.
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.vertices)
}

// EdgeCount reports the number of live edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

func extractID(props map[string]value.Value) (id uint64, has bool, err error) {
	raw, ok := props["id"]
	if !ok {
		return 0, false, nil
	}
	i, isInt := raw.AsInt64()
	if !isInt || i < 0 {
		return 0, false, ErrMalformedExternalInput
	}
	return uint64(i), true, nil
}

func extractLabel(props map[string]value.Value) string {
	raw, ok := props["label"]
	if !ok {
		return ""
	}
	s, _ := raw.AsString()
	return s
}

func sortedPropKeys(props map[string]value.Value) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddVertex parses "id"/"label" out of props (neither is stored as a
// property), rejects a duplicate id under Strict semantics, validates every
// remaining prop up front, then creates the vertex and attaches them one by
// one so each exercises the cardinality and index-maintenance path the same
// way a later AddProperty call would. Validating before the vertex is
// created means a rejected call never leaves a live, unpropertied vertex
// behind: AddVertex is all-or-nothing (spec §4.10).
func (g *Graph) AddVertex(props map[string]value.Value) (*Vertex, error) {
	id, hasID, err := extractID(props)
	if err != nil {
		return nil, err
	}
	label := extractLabel(props)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.vertices[id]; hasID && exists {
		return nil, ErrIDAlreadyExists
	}

	// Validate every prop before any mutation so a rejected vertex never
	// leaves a partially-created "ghost" behind: AddVertex either creates a
	// fully-propertied vertex or none at all.
	// A brand-new vertex has no recorded cardinality for any key, so the
	// effective cardinality for every prop here is simply the graph default.
	multiDisallowed := !g.pm.allowMultiProperties && g.cfg.DefaultVertexPropertyCardinality != value.Single
	for _, k := range sortedPropKeys(props) {
		if k == "id" || k == "label" {
			continue
		}
		if err := ValidatePropertyKey(k); err != nil {
			return nil, err
		}
		if props[k].IsNull() && !g.cfg.AllowNullPropertyValues {
			return nil, ErrNullValueNotAllowed
		}
		if multiDisallowed {
			return nil, ErrMultiPropertyNotSupported
		}
	}

	var vid uint64
	if hasID {
		g.ids.reserve(id)
		vid = id
	} else {
		vid = g.ids.Next()
	}

	v := newVertex(g, vid, label)
	g.vertices[vid] = v
	g.bumpVersion()

	for _, k := range sortedPropKeys(props) {
		if k == "id" || k == "label" {
			continue
		}
		if _, _, err := g.addVertexPropertyLocked(v, k, props[k], nil, nil); err != nil {
			// Validated up front above; reaching here would mean the
			// validation and attachment paths have diverged.
			return nil, err
		}
	}
	return v, nil
}

// AddVertexProperty adds a single property to v through PropertyManager,
// then drives index auto_update and cache invalidation, as one locked step.
func (g *Graph) AddVertexProperty(v *Vertex, key string, val value.Value, card *value.Cardinality, meta map[string]value.Value) (*VertexProperty, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	created, _, err := g.addVertexPropertyLocked(v, key, val, card, meta)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// addVertexPropertyLocked assumes mu is already held.
func (g *Graph) addVertexPropertyLocked(v *Vertex, key string, val value.Value, card *value.Cardinality, meta map[string]value.Value) (created *VertexProperty, demoted []*VertexProperty, err error) {
	created, demoted, err = g.pm.AddProperty(v, key, val, card, meta)
	if err != nil {
		return nil, nil, err
	}

	for _, d := range demoted {
		old := d.Value()
		g.vertexSingle.AutoUpdate(key, nil, &old, v.id)
		if aerr := g.vertexRange.AutoUpdate(key, nil, &old, v.id); aerr != nil {
			g.log.Warn("range index auto-update failed on demotion", zap.String("key", key), zap.Error(aerr))
		}
	}
	newVal := created.Value()
	g.vertexSingle.AutoUpdate(key, &newVal, nil, v.id)
	if aerr := g.vertexRange.AutoUpdate(key, &newVal, nil, v.id); aerr != nil {
		g.log.Warn("range index rejected vertex property value", zap.String("key", key), zap.Error(aerr))
	}
	g.vertexComposite.AutoUpdate(key, v.id, func(k string) (value.Value, bool) { return v.Value(k) })

	g.vertexCache.InvalidateKey(key)
	g.vertexCache.InvalidateElement(v.id)
	g.bumpVersion()
	return created, demoted, nil
}

// RemoveVertexProperty removes every live property at key equal to val (or
// every live property at key if val is nil), driving index/cache maintenance.
func (g *Graph) RemoveVertexProperty(v *Vertex, key string, val *value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed, err := g.pm.RemoveProperty(v, key, val)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}
	for _, r := range removed {
		old := r.Value()
		g.vertexSingle.AutoUpdate(key, nil, &old, v.id)
		if aerr := g.vertexRange.AutoUpdate(key, nil, &old, v.id); aerr != nil {
			g.log.Warn("range index auto-update failed on removal", zap.String("key", key), zap.Error(aerr))
		}
	}
	g.vertexComposite.AutoUpdate(key, v.id, func(k string) (value.Value, bool) { return v.Value(k) })
	g.vertexCache.InvalidateKey(key)
	g.vertexCache.InvalidateElement(v.id)
	g.bumpVersion()
	return nil
}

// RemoveVertexProperties removes every live property at key.
func (g *Graph) RemoveVertexProperties(v *Vertex, key string) error {
	return g.RemoveVertexProperty(v, key, nil)
}

// AddEdge links out->in under label, rejecting non-existent or removed
// endpoints and a duplicate caller-supplied id, and attaches props (plus
// "weight" if not already present in props) as one locked step. A "label"
// key in props is ignored in favor of the explicit label parameter; an "id"
// key is parsed out and used as the edge's id the same way add_vertex treats
// it (spec §4.10).
func (g *Graph) AddEdge(outID, inID uint64, label string, weight float64, props map[string]value.Value) (*Edge, error) {
	id, hasID, err := extractID(props)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ov, ok := g.vertices[outID]
	if !ok {
		return nil, ErrVertexNotFound
	}
	if err := ov.checkLive(); err != nil {
		return nil, err
	}
	iv, ok := g.vertices[inID]
	if !ok {
		return nil, ErrVertexNotFound
	}
	if err := iv.checkLive(); err != nil {
		return nil, err
	}

	if hasID {
		if _, exists := g.edges[id]; exists {
			return nil, ErrIDAlreadyExists
		}
	}

	for k, v := range props {
		if k == "id" || k == "label" {
			continue
		}
		if err := ValidatePropertyKey(k); err != nil {
			return nil, err
		}
		if v.IsNull() && !g.cfg.AllowNullPropertyValues {
			return nil, ErrNullValueNotAllowed
		}
	}

	var eid uint64
	if hasID {
		g.ids.reserve(id)
		eid = id
	} else {
		eid = g.ids.Next()
	}
	e := &Edge{
		element: element{id: eid, label: label},
		out:     outID,
		in:      inID,
		props:   make(map[string]value.Value, len(props)+1),
		g:       g,
	}
	for k, v := range props {
		if k == "id" || k == "label" {
			continue
		}
		e.props[k] = v
	}
	if _, has := e.props["weight"]; !has {
		e.props["weight"] = value.OfFloat64(weight)
	}

	if ov.outEdges[label] == nil {
		ov.outEdges[label] = make(map[uint64]*Edge)
	}
	ov.outEdges[label][eid] = e
	if iv.inEdges[label] == nil {
		iv.inEdges[label] = make(map[uint64]*Edge)
	}
	iv.inEdges[label][eid] = e
	g.edges[eid] = e

	for _, k := range sortedPropKeys(e.props) {
		v := e.props[k]
		g.edgeSingle.AutoUpdate(k, &v, nil, eid)
		if aerr := g.edgeRange.AutoUpdate(k, &v, nil, eid); aerr != nil {
			g.log.Warn("range index rejected edge property value", zap.String("key", k), zap.Error(aerr))
		}
		g.edgeComposite.AutoUpdate(k, eid, func(kk string) (value.Value, bool) { return e.Property(kk) })
		g.edgeCache.InvalidateKey(k)
	}
	g.edgeCache.InvalidateElement(eid)
	g.bumpVersion()
	return e, nil
}

// SetEdgeProperty sets a single plain property on e, driving index/cache
// maintenance as one locked step.
func (g *Graph) SetEdgeProperty(e *Edge, key string, val value.Value) error {
	if err := ValidatePropertyKey(key); err != nil {
		return err
	}
	if val.IsNull() && !g.cfg.AllowNullPropertyValues {
		return ErrNullValueNotAllowed
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	old, hadOld := e.props[key]
	e.props[key] = val

	var oldPtr *value.Value
	if hadOld {
		oldPtr = &old
	}
	g.edgeSingle.AutoUpdate(key, &val, oldPtr, e.id)
	if aerr := g.edgeRange.AutoUpdate(key, &val, oldPtr, e.id); aerr != nil {
		g.log.Warn("range index rejected edge property value", zap.String("key", key), zap.Error(aerr))
	}
	g.edgeComposite.AutoUpdate(key, e.id, func(k string) (value.Value, bool) { return e.Property(k) })
	g.edgeCache.InvalidateKey(key)
	g.edgeCache.InvalidateElement(e.id)
	g.bumpVersion()
	return nil
}

// RemoveEdgeProperty removes key from e, driving index/cache maintenance.
func (g *Graph) RemoveEdgeProperty(e *Edge, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	old, had := e.props[key]
	if !had {
		return nil
	}
	delete(e.props, key)

	g.edgeSingle.AutoUpdate(key, nil, &old, e.id)
	if aerr := g.edgeRange.AutoUpdate(key, nil, &old, e.id); aerr != nil {
		g.log.Warn("range index auto-update failed on removal", zap.String("key", key), zap.Error(aerr))
	}
	g.edgeComposite.AutoUpdate(key, e.id, func(k string) (value.Value, bool) { return e.Property(k) })
	g.edgeCache.InvalidateKey(key)
	g.edgeCache.InvalidateElement(e.id)
	g.bumpVersion()
	return nil
}

// RemoveVertex removes v, transitively removing every incident edge first,
// then unhooking v from all three vertex indices, invalidating its cache
// entries, erasing it from the primary store, and flipping its removed flag
// (spec §4.10).
func (g *Graph) RemoveVertex(id uint64) error {
	g.mu.Lock()
	v, ok := g.vertices[id]
	if !ok {
		g.mu.Unlock()
		return ErrVertexNotFound
	}
	if err := v.checkLive(); err != nil {
		g.mu.Unlock()
		return err
	}

	seen := make(map[uint64]struct{})
	var incident []uint64
	for _, m := range v.outEdges {
		for eid := range m {
			if _, dup := seen[eid]; !dup {
				seen[eid] = struct{}{}
				incident = append(incident, eid)
			}
		}
	}
	for _, m := range v.inEdges {
		for eid := range m {
			if _, dup := seen[eid]; !dup {
				seen[eid] = struct{}{}
				incident = append(incident, eid)
			}
		}
	}
	sort.Slice(incident, func(i, j int) bool { return incident[i] < incident[j] })
	g.mu.Unlock()

	for _, eid := range incident {
		if err := g.RemoveEdge(eid); err != nil && err != ErrEdgeNotFound {
			return err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for key, props := range v.vertexProperties {
		for _, p := range props {
			if p.Removed() {
				continue
			}
			val := p.Value()
			g.vertexSingle.AutoUpdate(key, nil, &val, v.id)
			g.vertexRange.AutoUpdate(key, nil, &val, v.id)
		}
		g.vertexComposite.AutoUpdate(key, v.id, func(string) (value.Value, bool) { return value.Null, false })
	}
	g.vertexCache.InvalidateElement(v.id)
	delete(g.vertices, id)
	v.removed = true
	g.bumpVersion()
	return nil
}

// RemoveEdge removes e: unhooks both endpoints' adjacency lists, unhooks
// from all three edge indices, invalidates its cache entries, erases it from
// the primary store, and flips its removed flag (spec §4.10).
func (g *Graph) RemoveEdge(id uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	if err := e.checkLive(); err != nil {
		return err
	}

	if ov, ok := g.vertices[e.out]; ok {
		if m := ov.outEdges[e.label]; m != nil {
			delete(m, id)
		}
	}
	if iv, ok := g.vertices[e.in]; ok {
		if m := iv.inEdges[e.label]; m != nil {
			delete(m, id)
		}
	}

	for key, val := range e.props {
		g.edgeSingle.AutoUpdate(key, nil, &val, id)
		g.edgeRange.AutoUpdate(key, nil, &val, id)
		g.edgeComposite.AutoUpdate(key, id, func(string) (value.Value, bool) { return value.Null, false })
	}
	g.edgeCache.InvalidateElement(id)
	delete(g.edges, id)
	e.removed = true
	g.bumpVersion()
	return nil
}

// CreateSingleIndex creates (or rebuilds, if already created) a SingleIndex
// on key for class, scanning the primary store to populate it.
func (g *Graph) CreateSingleIndex(class ElementClass, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch class {
	case ClassVertex:
		g.vertexSingle.Rebuild(key, func(yield func(el index.ElementID, v value.Value)) {
			for _, v := range g.vertices {
				for _, val := range v.Values(key) {
					yield(v.ID(), val)
				}
			}
		})
		g.vertexCache.InvalidateIndexKind(index.KindSingle)
		g.vertexOptimizer.InvalidateSelectivity()
	case ClassEdge:
		g.edgeSingle.Rebuild(key, func(yield func(el index.ElementID, v value.Value)) {
			for _, e := range g.edges {
				if val, ok := e.Property(key); ok {
					yield(e.ID(), val)
				}
			}
		})
		g.edgeCache.InvalidateIndexKind(index.KindSingle)
		g.edgeOptimizer.InvalidateSelectivity()
	default:
		return ErrIndexClassInvalid
	}
	return nil
}

// DropSingleIndex removes a SingleIndex on key for class.
func (g *Graph) DropSingleIndex(class ElementClass, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch class {
	case ClassVertex:
		g.vertexSingle.Drop(key)
		g.vertexCache.InvalidateIndexKind(index.KindSingle)
		g.vertexOptimizer.InvalidateSelectivity()
	case ClassEdge:
		g.edgeSingle.Drop(key)
		g.edgeCache.InvalidateIndexKind(index.KindSingle)
		g.edgeOptimizer.InvalidateSelectivity()
	default:
		return ErrIndexClassInvalid
	}
	return nil
}

// CreateRangeIndex creates a RangeIndex on key for class, scanning the
// primary store to populate it. A value rejected as non-comparable is
// logged and skipped rather than aborting the whole rebuild.
func (g *Graph) CreateRangeIndex(class ElementClass, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch class {
	case ClassVertex:
		g.vertexRange.Create(key)
		for _, v := range g.vertices {
			for _, val := range v.Values(key) {
				val := val
				if aerr := g.vertexRange.AutoUpdate(key, &val, nil, v.ID()); aerr != nil {
					g.log.Warn("range index rebuild skipped incomparable value", zap.String("key", key), zap.Error(aerr))
				}
			}
		}
		g.vertexCache.InvalidateIndexKind(index.KindRange)
		g.vertexOptimizer.InvalidateSelectivity()
	case ClassEdge:
		g.edgeRange.Create(key)
		for _, e := range g.edges {
			val, ok := e.Property(key)
			if !ok {
				continue
			}
			if aerr := g.edgeRange.AutoUpdate(key, &val, nil, e.ID()); aerr != nil {
				g.log.Warn("range index rebuild skipped incomparable value", zap.String("key", key), zap.Error(aerr))
			}
		}
		g.edgeCache.InvalidateIndexKind(index.KindRange)
		g.edgeOptimizer.InvalidateSelectivity()
	default:
		return ErrIndexClassInvalid
	}
	return nil
}

// DropRangeIndex removes a RangeIndex on key for class.
func (g *Graph) DropRangeIndex(class ElementClass, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch class {
	case ClassVertex:
		g.vertexRange.Drop(key)
		g.vertexCache.InvalidateIndexKind(index.KindRange)
		g.vertexOptimizer.InvalidateSelectivity()
	case ClassEdge:
		g.edgeRange.Drop(key)
		g.edgeCache.InvalidateIndexKind(index.KindRange)
		g.edgeOptimizer.InvalidateSelectivity()
	default:
		return ErrIndexClassInvalid
	}
	return nil
}

// CreateCompositeIndex creates a CompositeIndex over keys for class,
// scanning the primary store to populate it. keys must have length >= 2 and
// no duplicates.
func (g *Graph) CreateCompositeIndex(class ElementClass, keys index.CompositeKeyList) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch class {
	case ClassVertex:
		if !g.vertexComposite.Create(keys) {
			return ErrInvalidCompositeKeyList
		}
		for _, v := range g.vertices {
			g.vertexComposite.AutoUpdate(keys[0], v.ID(), func(k string) (value.Value, bool) { return v.Value(k) })
		}
		g.vertexCache.InvalidateIndexKind(index.KindComposite)
		g.vertexOptimizer.InvalidateSelectivity()
	case ClassEdge:
		if !g.edgeComposite.Create(keys) {
			return ErrInvalidCompositeKeyList
		}
		for _, e := range g.edges {
			g.edgeComposite.AutoUpdate(keys[0], e.ID(), func(k string) (value.Value, bool) { return e.Property(k) })
		}
		g.edgeCache.InvalidateIndexKind(index.KindComposite)
		g.edgeOptimizer.InvalidateSelectivity()
	default:
		return ErrIndexClassInvalid
	}
	return nil
}

// DropCompositeIndex removes a CompositeIndex over keys for class.
func (g *Graph) DropCompositeIndex(class ElementClass, keys index.CompositeKeyList) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch class {
	case ClassVertex:
		g.vertexComposite.Drop(keys)
		g.vertexCache.InvalidateIndexKind(index.KindComposite)
		g.vertexOptimizer.InvalidateSelectivity()
	case ClassEdge:
		g.edgeComposite.Drop(keys)
		g.edgeCache.InvalidateIndexKind(index.KindComposite)
		g.edgeOptimizer.InvalidateSelectivity()
	default:
		return ErrIndexClassInvalid
	}
	return nil
}

// QueryVertices evaluates criteria against the vertex class (spec §4.8).
func (g *Graph) QueryVertices(criteria ...query.Criterion) []*Vertex {
	results := g.vertexEngine.Query(criteria...)
	out := make([]*Vertex, 0, len(results))
	for _, r := range results {
		if v, ok := r.(*Vertex); ok {
			out = append(out, v)
		}
	}
	return out
}

// QueryEdges evaluates criteria against the edge class (spec §4.8).
func (g *Graph) QueryEdges(criteria ...query.Criterion) []*Edge {
	results := g.edgeEngine.Query(criteria...)
	out := make([]*Edge, 0, len(results))
	for _, r := range results {
		if e, ok := r.(*Edge); ok {
			out = append(out, e)
		}
	}
	return out
}

// AggregateVertexProperty streams key's live values across every vertex.
func (g *Graph) AggregateVertexProperty(key string, op query.AggregateOp) query.AggregateResult {
	return g.vertexEngine.Aggregate(key, op)
}

// AggregateEdgeProperty streams key's values across every edge.
func (g *Graph) AggregateEdgeProperty(key string, op query.AggregateOp) query.AggregateResult {
	return g.edgeEngine.Aggregate(key, op)
}

// VertexIndexRecommendations returns the vertex optimizer's pending
// CREATE-index recommendations (spec §4.7).
func (g *Graph) VertexIndexRecommendations() []query.Recommendation {
	return g.vertexOptimizer.Recommendations()
}

// EdgeIndexRecommendations returns the edge optimizer's pending
// CREATE-index recommendations.
func (g *Graph) EdgeIndexRecommendations() []query.Recommendation {
	return g.edgeOptimizer.Recommendations()
}

// SetVariable sets a graph-level variable; key must be non-empty.
func (g *Graph) SetVariable(key string, val value.Value) error {
	if key == "" {
		return ErrEmptyVariableKey
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.variables[key] = val
	return nil
}

// Variable returns the value stored for key, or value.Null with ok=false.
func (g *Graph) Variable(key string) (value.Value, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.variables[key]
	return v, ok
}

// RemoveVariable deletes key (idempotent).
func (g *Graph) RemoveVariable(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.variables, key)
}

// Variables returns a shallow copy of every graph variable.
func (g *Graph) Variables() map[string]value.Value {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]value.Value, len(g.variables))
	for k, v := range g.variables {
		out[k] = v
	}
	return out
}

// Stats is a point-in-time diagnostic snapshot (SPEC_FULL §10).
type Stats struct {
	VertexCount            int
	EdgeCount              int
	VertexSingleIndexes    []string
	VertexRangeIndexes     []string
	VertexCompositeIndexes []index.CompositeKeyList
	EdgeSingleIndexes      []string
	EdgeRangeIndexes       []string
	EdgeCompositeIndexes   []index.CompositeKeyList
	VertexCacheStats       index.Stats
	EdgeCacheStats         index.Stats
}

// Stats reports a consistent snapshot of element counts, index coverage and
// cache health.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{
		VertexCount:            len(g.vertices),
		EdgeCount:               len(g.edges),
		VertexSingleIndexes:    g.vertexSingle.IndexedKeys(),
		VertexRangeIndexes:     g.vertexRange.IndexedKeys(),
		VertexCompositeIndexes: g.vertexComposite.IndexedLists(),
		EdgeSingleIndexes:      g.edgeSingle.IndexedKeys(),
		EdgeRangeIndexes:       g.edgeRange.IndexedKeys(),
		EdgeCompositeIndexes:   g.edgeComposite.IndexedLists(),
		VertexCacheStats:       g.vertexCache.Stats(),
		EdgeCacheStats:         g.edgeCache.Stats(),
	}
}
