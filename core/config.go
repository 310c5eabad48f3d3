// File: config.go
// Role: process-wide graph configuration (spec §6's configuration table),
// functional options, and a YAML loader (spec SPEC_FULL §4.11).
// AI-HINT (file):
//   - GraphLocation/GraphFormat are consumed only by external persistence
//     (codec/storage callers); core never reads them itself.
package core

import (
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/proptergraph/value"
)

// GraphConfig holds the process-wide options spec.md §6 names.
type GraphConfig struct {
	AllowNullPropertyValues          bool              `yaml:"allow_null_property_values"`
	DefaultVertexPropertyCardinality value.Cardinality `yaml:"-"`
	DefaultCardinalityName           string            `yaml:"default_vertex_property_cardinality"`
	AllowMultiProperties             bool              `yaml:"allow_multi_properties"`
	AllowMetaProperties              bool              `yaml:"allow_meta_properties"`
	GraphLocation                    string            `yaml:"graph_location"`
	GraphFormat                      string            `yaml:"graph_format"`
	CacheMaxEntries                  int               `yaml:"cache_max_entries"`
	CacheMaxAgeMs                    int64             `yaml:"cache_max_age_ms"`
}

// defaultGraphConfig returns the config used when NewGraph is given no
// options: nulls rejected, SINGLE cardinality, multi/meta properties on,
// cache bounds matching spec §5 (1000 entries / 300000 ms).
func defaultGraphConfig() GraphConfig {
	return GraphConfig{
		AllowNullPropertyValues:          false,
		DefaultVertexPropertyCardinality: value.Single,
		AllowMultiProperties:             true,
		AllowMetaProperties:              true,
		CacheMaxEntries:                  1000,
		CacheMaxAgeMs:                    300000,
	}
}

// LoadGraphConfig parses a YAML document into a GraphConfig, applying
// defaultGraphConfig first so an omitted field keeps its default.
func LoadGraphConfig(r io.Reader) (GraphConfig, error) {
	cfg := defaultGraphConfig()
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.DefaultVertexPropertyCardinality = parseCardinalityName(cfg.DefaultCardinalityName, cfg.DefaultVertexPropertyCardinality)
	return cfg, nil
}

func parseCardinalityName(name string, fallback value.Cardinality) value.Cardinality {
	switch name {
	case "SINGLE", "single":
		return value.Single
	case "LIST", "list":
		return value.List
	case "SET", "set":
		return value.Set
	default:
		return fallback
	}
}

// GraphOption configures a Graph at construction time, following the
// teacher's functional-options idiom.
type GraphOption func(*Graph)

// WithConfig replaces the graph's GraphConfig wholesale.
func WithConfig(cfg GraphConfig) GraphOption {
	return func(g *Graph) { g.cfg = cfg }
}

// WithLogger injects a *zap.Logger; NewGraph defaults to zap.NewNop() so
// logging is opt-in.
func WithLogger(log *zap.Logger) GraphOption {
	return func(g *Graph) {
		if log != nil {
			g.log = log
		}
	}
}

// WithAllowNullPropertyValues sets GraphConfig.AllowNullPropertyValues.
func WithAllowNullPropertyValues(allow bool) GraphOption {
	return func(g *Graph) { g.cfg.AllowNullPropertyValues = allow }
}

// WithDefaultVertexPropertyCardinality sets the cardinality used when a
// caller doesn't specify one explicitly.
func WithDefaultVertexPropertyCardinality(c value.Cardinality) GraphOption {
	return func(g *Graph) { g.cfg.DefaultVertexPropertyCardinality = c }
}

// WithMultiProperties toggles whether more than one VertexProperty per key
// is permitted.
func WithMultiProperties(allow bool) GraphOption {
	return func(g *Graph) { g.cfg.AllowMultiProperties = allow }
}

// WithMetaProperties toggles whether VertexProperty meta-properties are
// permitted.
func WithMetaProperties(allow bool) GraphOption {
	return func(g *Graph) { g.cfg.AllowMetaProperties = allow }
}

// WithCacheBounds sets both IndexCache instances' max entry count and max age.
func WithCacheBounds(maxEntries int, maxAgeMs int64) GraphOption {
	return func(g *Graph) {
		g.cfg.CacheMaxEntries = maxEntries
		g.cfg.CacheMaxAgeMs = maxAgeMs
	}
}

// NewGraphFromConfig constructs a Graph from an already-loaded GraphConfig
// plus any further options (e.g. WithLogger), per SPEC_FULL §4.11.
func NewGraphFromConfig(cfg GraphConfig, opts ...GraphOption) *Graph {
	all := append([]GraphOption{WithConfig(cfg)}, opts...)
	return NewGraph(all...)
}
