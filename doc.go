// Package proptergraph is an embedded, in-memory property-graph engine:
// labelled vertices and directed edges carrying multi-valued, meta-propertied
// properties, with cost-based secondary-index query planning.
//
// Subpackages:
//
//	value/     — the tagged dynamic Value type shared by vertices, edges and indices
//	core/      — Graph, Vertex, Edge, VertexProperty, PropertyManager, configuration
//	index/     — single/composite/range secondary indices + the bounded result cache
//	query/     — the criterion algebra, cost-based optimizer and query engine
//	codec/     — a neutral element-visitor interface plus a reference JSON codec
//	storage/   — a storage-backend interface plus a reference in-memory backend
//
// This package is a reference / test graph store: correctness of the
// property-graph data model and efficient ad-hoc property lookup matter more
// than durability, transactions or distribution — none of which this engine
// provides. Callers that need concurrent writers must serialize access
// themselves; the engine's locks only protect single-goroutine-at-a-time
// structural consistency, they do not implement MVCC or transactions.
package proptergraph
