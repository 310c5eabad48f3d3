// Package fixtures builds deterministic property graphs for tests, adapted
// from the teacher's builder package: the same "Constructor closure over a
// resolved config" shape, generalized from pure topology (vertex/edge ids)
// to property-bearing vertices and edges (labels, typed properties, weights).
//
// Determinism: every generator is seeded explicitly; the same (seed, size)
// pair always yields an identical graph, so tests can assert on shape rather
// than re-deriving it.
package fixtures

import (
	"fmt"
	"math/rand"

	"github.com/katalvlaran/proptergraph/core"
	"github.com/katalvlaran/proptergraph/value"
)

// Constructor applies a deterministic mutation to g, mirroring the teacher's
// builder.Constructor shape.
type Constructor func(g *core.Graph) error

// Build runs every constructor against a freshly created Graph, in order,
// wrapping the first failure with its index.
func Build(opts []core.GraphOption, cons ...Constructor) (*core.Graph, error) {
	g := core.NewGraph(opts...)
	for i, c := range cons {
		if err := c(g); err != nil {
			return nil, fmt.Errorf("fixtures: constructor %d: %w", i, err)
		}
	}
	return g, nil
}

// Person adds n "person" vertices with deterministic name/age properties
// (name_<i>, age in [18,78)) seeded by seed, returning their assigned ids in
// insertion order.
func Person(n int, seed int64) Constructor {
	return func(g *core.Graph) error {
		rng := rand.New(rand.NewSource(seed))
		for i := 0; i < n; i++ {
			v, err := g.AddVertex(map[string]value.Value{"label": value.OfString("person")})
			if err != nil {
				return fmt.Errorf("Person: AddVertex(%d): %w", i, err)
			}
			single := value.Single
			if _, err := v.AddProperty("name", value.OfString(fmt.Sprintf("name_%d", i)), &single, nil); err != nil {
				return fmt.Errorf("Person: AddProperty(name, %d): %w", i, err)
			}
			age := 18 + rng.Intn(60)
			if _, err := v.AddProperty("age", value.OfInt64(int64(age)), &single, nil); err != nil {
				return fmt.Errorf("Person: AddProperty(age, %d): %w", i, err)
			}
		}
		return nil
	}
}

// KnowsSparse adds "knows" edges between the graph's existing vertices,
// whatever their label (the scenarios below run it right after Person, so
// those are person vertices), including each ordered pair independently
// with probability p, Bernoulli-sampled from
// a seeded RNG (mirrors the teacher's RandomSparse trial order: i asc, then
// j asc, self-loops skipped).
func KnowsSparse(p float64, seed int64) Constructor {
	return func(g *core.Graph) error {
		if p < 0 || p > 1 {
			return fmt.Errorf("KnowsSparse: p=%.6f not in [0,1]", p)
		}
		rng := rand.New(rand.NewSource(seed))
		people := g.QueryVertices()
		for _, out := range people {
			for _, in := range people {
				if out.ID() == in.ID() {
					continue
				}
				if rng.Float64() > p {
					continue
				}
				weight := 1 + rng.Float64()*9
				if _, err := g.AddEdge(out.ID(), in.ID(), "knows", weight, nil); err != nil {
					return fmt.Errorf("KnowsSparse: AddEdge(%d->%d): %w", out.ID(), in.ID(), err)
				}
			}
		}
		return nil
	}
}

// Star adds one "hub" vertex and n-1 "spoke" vertices, each connected to the
// hub by a "linked_to" edge, mirroring the teacher's Star topology.
func Star(n int) Constructor {
	return func(g *core.Graph) error {
		if n < 2 {
			return fmt.Errorf("Star: n=%d < 2", n)
		}
		hub, err := g.AddVertex(map[string]value.Value{"label": value.OfString("hub")})
		if err != nil {
			return fmt.Errorf("Star: AddVertex(hub): %w", err)
		}
		for i := 1; i < n; i++ {
			spoke, err := g.AddVertex(map[string]value.Value{"label": value.OfString("spoke")})
			if err != nil {
				return fmt.Errorf("Star: AddVertex(spoke %d): %w", i, err)
			}
			if _, err := g.AddEdge(hub.ID(), spoke.ID(), "linked_to", 1.0, nil); err != nil {
				return fmt.Errorf("Star: AddEdge(hub->spoke %d): %w", i, err)
			}
		}
		return nil
	}
}

// Complete adds n "node" vertices and every directed edge between distinct
// pairs ("adjacent_to"), mirroring the teacher's Complete(K_n) topology.
func Complete(n int) Constructor {
	return func(g *core.Graph) error {
		if n < 1 {
			return fmt.Errorf("Complete: n=%d < 1", n)
		}
		ids := make([]uint64, n)
		for i := 0; i < n; i++ {
			v, err := g.AddVertex(map[string]value.Value{"label": value.OfString("node")})
			if err != nil {
				return fmt.Errorf("Complete: AddVertex(%d): %w", i, err)
			}
			ids[i] = v.ID()
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				if _, err := g.AddEdge(ids[i], ids[j], "adjacent_to", 1.0, nil); err != nil {
					return fmt.Errorf("Complete: AddEdge(%d->%d): %w", i, j, err)
				}
			}
		}
		return nil
	}
}

// LargeScenario builds the 1000-vertex social-graph fixture: 1000 person
// vertices, each pair linked by "knows" with probability 0.01, seeded
// deterministically.
func LargeScenario(seed int64) (*core.Graph, error) {
	return Build(nil, Person(1000, seed), KnowsSparse(0.01, seed+1))
}

// SmallScenario builds the reduced-scale, 90-vertex variant of
// LargeScenario for fast test iteration.
func SmallScenario(seed int64) (*core.Graph, error) {
	return Build(nil, Person(90, seed), KnowsSparse(0.05, seed+1))
}
