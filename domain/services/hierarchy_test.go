package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/entities"
)

func buildGraph(t *testing.T, labels ...string) (*aggregates.Graph, map[string]*entities.Node) {
	t.Helper()
	g := aggregates.NewGraph(NewGridAllocator(nil))
	nodes := make(map[string]*entities.Node, len(labels))
	for _, label := range labels {
		node, err := g.AddNode(label, entities.CategorySystem, entities.ImportanceMedium, nil)
		require.NoError(t, err)
		nodes[label] = node
	}
	return g, nodes
}

func TestHierarchyCalculator_Depth(t *testing.T) {
	calc := NewHierarchyCalculator(nil)

	t.Run("node without incoming edges is a root", func(t *testing.T) {
		g, nodes := buildGraph(t, "root")
		require.Equal(t, 0, calc.Depth(g, nodes["root"].ID()))
	})

	t.Run("outgoing edges do not affect depth", func(t *testing.T) {
		g, nodes := buildGraph(t, "a", "b")
		g.AddEdge(nodes["a"].ID(), nodes["b"].ID(), "leads to")
		require.Equal(t, 0, calc.Depth(g, nodes["a"].ID()))
		require.Equal(t, 1, calc.Depth(g, nodes["b"].ID()))
	})

	t.Run("chain depth", func(t *testing.T) {
		g, nodes := buildGraph(t, "a", "b", "c", "d")
		g.AddEdge(nodes["a"].ID(), nodes["b"].ID(), "")
		g.AddEdge(nodes["b"].ID(), nodes["c"].ID(), "")
		g.AddEdge(nodes["c"].ID(), nodes["d"].ID(), "")
		require.Equal(t, 3, calc.Depth(g, nodes["d"].ID()))
	})

	t.Run("deepest parent wins", func(t *testing.T) {
		// a -> b -> d and c -> d: d sits below the longer path.
		g, nodes := buildGraph(t, "a", "b", "c", "d")
		g.AddEdge(nodes["a"].ID(), nodes["b"].ID(), "")
		g.AddEdge(nodes["b"].ID(), nodes["d"].ID(), "")
		g.AddEdge(nodes["c"].ID(), nodes["d"].ID(), "")
		require.Equal(t, 2, calc.Depth(g, nodes["d"].ID()))
	})

	t.Run("diamond counts each node once", func(t *testing.T) {
		g, nodes := buildGraph(t, "a", "b", "c", "d")
		g.AddEdge(nodes["a"].ID(), nodes["b"].ID(), "")
		g.AddEdge(nodes["a"].ID(), nodes["c"].ID(), "")
		g.AddEdge(nodes["b"].ID(), nodes["d"].ID(), "")
		g.AddEdge(nodes["c"].ID(), nodes["d"].ID(), "")
		require.Equal(t, 2, calc.Depth(g, nodes["d"].ID()))
	})

	t.Run("two node cycle terminates", func(t *testing.T) {
		g, nodes := buildGraph(t, "a", "b")
		g.AddEdge(nodes["a"].ID(), nodes["b"].ID(), "")
		g.AddEdge(nodes["b"].ID(), nodes["a"].ID(), "")

		cfg := calc.cfg
		for _, label := range []string{"a", "b"} {
			depth := calc.Depth(g, nodes[label].ID())
			require.GreaterOrEqual(t, depth, 0)
			require.LessOrEqual(t, depth, cfg.MaxTreeDepth)
		}
	})

	t.Run("self loop terminates", func(t *testing.T) {
		g, nodes := buildGraph(t, "a")
		g.AddEdge(nodes["a"].ID(), nodes["a"].ID(), "")
		depth := calc.Depth(g, nodes["a"].ID())
		require.LessOrEqual(t, depth, calc.cfg.MaxTreeDepth)
	})

	t.Run("long chain clamps to max depth", func(t *testing.T) {
		labels := []string{"n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8", "n9"}
		g, nodes := buildGraph(t, labels...)
		for i := 1; i < len(labels); i++ {
			g.AddEdge(nodes[labels[i-1]].ID(), nodes[labels[i]].ID(), "")
		}
		require.Equal(t, calc.cfg.MaxTreeDepth, calc.Depth(g, nodes["n9"].ID()))
	})
}
