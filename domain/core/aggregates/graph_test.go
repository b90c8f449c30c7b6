package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
)

// rowAllocator hands out positions left to right so tests can predict them
// without pulling in the real allocators.
type rowAllocator struct {
	next float64
}

func (a *rowAllocator) Allocate(_ *Graph, _ valueobjects.Size) valueobjects.Position {
	pos, _ := valueobjects.NewPosition(a.next, 0)
	a.next += 300
	return pos
}

func newTestGraph() *Graph {
	return NewGraph(&rowAllocator{})
}

func mustAddNode(t *testing.T, g *Graph, label string) *entities.Node {
	t.Helper()
	node, err := g.AddNode(label, entities.CategorySystem, entities.ImportanceMedium, nil)
	require.NoError(t, err)
	return node
}

func TestGraph_AddNode(t *testing.T) {
	t.Run("allocator places nodes without an explicit position", func(t *testing.T) {
		g := newTestGraph()
		first := mustAddNode(t, g, "first")
		second := mustAddNode(t, g, "second")

		assert.False(t, first.ID().IsZero())
		assert.InDelta(t, 0, first.Position().X(), 1e-9)
		assert.InDelta(t, 300, second.Position().X(), 1e-9)
	})

	t.Run("explicit position wins over the allocator", func(t *testing.T) {
		g := newTestGraph()
		pos, err := valueobjects.NewPosition(42, 17)
		require.NoError(t, err)

		node, err := g.AddNode("placed", entities.CategoryInput, entities.ImportanceLarge, &pos)
		require.NoError(t, err)
		assert.True(t, node.Position().Equals(pos))
		assert.Equal(t, entities.SizeFor(entities.ImportanceLarge), node.Size())
	})

	t.Run("empty label is rejected", func(t *testing.T) {
		g := newTestGraph()
		_, err := g.AddNode("   ", entities.CategorySystem, entities.ImportanceMedium, nil)
		require.Error(t, err)
		assert.Zero(t, g.NodeCount())
	})
}

func TestGraph_Edges(t *testing.T) {
	t.Run("add edge does not validate endpoints", func(t *testing.T) {
		g := newTestGraph()
		ghost := valueobjects.NewNodeID()
		edge := g.AddEdge(ghost, valueobjects.NewNodeID(), "haunts")
		require.NotNil(t, edge)
		assert.Equal(t, 1, g.EdgeCount())
		assert.Equal(t, "smoothstep", edge.Kind)
	})

	t.Run("remove node cascades to touching edges", func(t *testing.T) {
		g := newTestGraph()
		a := mustAddNode(t, g, "a")
		b := mustAddNode(t, g, "b")
		c := mustAddNode(t, g, "c")
		g.AddEdge(a.ID(), b.ID(), "")
		g.AddEdge(b.ID(), c.ID(), "")
		g.AddEdge(a.ID(), c.ID(), "")

		require.True(t, g.RemoveNode(b.ID()))

		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.EdgeCount())
		remaining := g.Edges()[0]
		assert.True(t, remaining.SourceID.Equals(a.ID()))
		assert.True(t, remaining.TargetID.Equals(c.ID()))
	})

	t.Run("remove of unknown ids reports false", func(t *testing.T) {
		g := newTestGraph()
		assert.False(t, g.RemoveNode(valueobjects.NewNodeID()))
		assert.False(t, g.RemoveEdge(valueobjects.NewEdgeID()))
	})

	t.Run("remove edge leaves endpoints alone", func(t *testing.T) {
		g := newTestGraph()
		a := mustAddNode(t, g, "a")
		b := mustAddNode(t, g, "b")
		edge := g.AddEdge(a.ID(), b.ID(), "")

		require.True(t, g.RemoveEdge(edge.ID))
		assert.Zero(t, g.EdgeCount())
		assert.Equal(t, 2, g.NodeCount())
	})
}

func TestGraph_UpdateNode(t *testing.T) {
	t.Run("partial update touches only given fields", func(t *testing.T) {
		g := newTestGraph()
		node := mustAddNode(t, g, "draft")

		label := "final"
		category := entities.CategoryDecision
		updated, err := g.UpdateNode(node.ID(), NodeChanges{Label: &label, Category: &category})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, "final", updated.Label())
		assert.Equal(t, entities.CategoryDecision, updated.Category())
		assert.Equal(t, entities.ImportanceMedium, updated.Importance())
	})

	t.Run("importance change resizes the node", func(t *testing.T) {
		g := newTestGraph()
		node := mustAddNode(t, g, "grows")

		importance := entities.ImportanceLarge
		updated, err := g.UpdateNode(node.ID(), NodeChanges{Importance: &importance})
		require.NoError(t, err)
		assert.Equal(t, entities.SizeFor(entities.ImportanceLarge), updated.Size())
	})

	t.Run("custom metadata merges one level deep", func(t *testing.T) {
		g := newTestGraph()
		node := mustAddNode(t, g, "annotated")

		_, err := g.UpdateNode(node.ID(), NodeChanges{Custom: map[string]interface{}{
			"style": map[string]interface{}{"color": "red"},
			"pin":   true,
		}})
		require.NoError(t, err)

		_, err = g.UpdateNode(node.ID(), NodeChanges{Custom: map[string]interface{}{
			"style": map[string]interface{}{"weight": "bold"},
		}})
		require.NoError(t, err)

		custom := node.Metadata().Custom
		style, ok := custom["style"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "red", style["color"])
		assert.Equal(t, "bold", style["weight"])
		assert.Equal(t, true, custom["pin"])
	})

	t.Run("unknown node returns nil without error", func(t *testing.T) {
		g := newTestGraph()
		node, err := g.UpdateNode(valueobjects.NewNodeID(), NodeChanges{})
		require.NoError(t, err)
		assert.Nil(t, node)
	})

	t.Run("empty label update is rejected", func(t *testing.T) {
		g := newTestGraph()
		node := mustAddNode(t, g, "keeps label")
		empty := ""
		_, err := g.UpdateNode(node.ID(), NodeChanges{Label: &empty})
		require.Error(t, err)
		assert.Equal(t, "keeps label", node.Label())
	})
}

func TestGraph_Queries(t *testing.T) {
	t.Run("find by label is case insensitive and earliest wins", func(t *testing.T) {
		g := newTestGraph()
		first := mustAddNode(t, g, "Addition Practice")
		mustAddNode(t, g, "addition practice")

		found, ok := g.FindByLabel("ADDITION PRACTICE")
		require.True(t, ok)
		assert.True(t, found.ID().Equals(first.ID()))

		_, ok = g.FindByLabel("missing")
		assert.False(t, ok)
	})

	t.Run("degree counts both directions", func(t *testing.T) {
		g := newTestGraph()
		a := mustAddNode(t, g, "a")
		b := mustAddNode(t, g, "b")
		c := mustAddNode(t, g, "c")
		g.AddEdge(a.ID(), b.ID(), "")
		g.AddEdge(c.ID(), a.ID(), "")

		assert.Equal(t, 2, g.Degree(a.ID()))
		assert.Equal(t, 1, g.Degree(b.ID()))
		assert.Zero(t, g.Degree(valueobjects.NewNodeID()))
	})

	t.Run("parents follow incoming edges in insertion order", func(t *testing.T) {
		g := newTestGraph()
		a := mustAddNode(t, g, "a")
		b := mustAddNode(t, g, "b")
		c := mustAddNode(t, g, "c")
		g.AddEdge(b.ID(), c.ID(), "")
		g.AddEdge(a.ID(), c.ID(), "")

		parents := g.Parents(c.ID())
		require.Len(t, parents, 2)
		assert.True(t, parents[0].Equals(b.ID()))
		assert.True(t, parents[1].Equals(a.ID()))
	})

	t.Run("connected checks either direction", func(t *testing.T) {
		g := newTestGraph()
		a := mustAddNode(t, g, "a")
		b := mustAddNode(t, g, "b")
		c := mustAddNode(t, g, "c")
		g.AddEdge(a.ID(), b.ID(), "")

		assert.True(t, g.Connected(a.ID(), b.ID()))
		assert.True(t, g.Connected(b.ID(), a.ID()))
		assert.False(t, g.Connected(a.ID(), c.ID()))
	})

	t.Run("nodes and labels preserve insertion order", func(t *testing.T) {
		g := newTestGraph()
		mustAddNode(t, g, "one")
		mustAddNode(t, g, "two")
		mustAddNode(t, g, "three")
		assert.Equal(t, []string{"one", "two", "three"}, g.Labels())
	})
}

func TestGraph_Replace(t *testing.T) {
	g := newTestGraph()
	mustAddNode(t, g, "stale")

	pos, err := valueobjects.NewPosition(10, 20)
	require.NoError(t, err)

	err = g.Replace(
		[]NodeSeed{
			{ID: "node-1", Label: "kept", Category: entities.CategoryInput, Importance: entities.ImportanceSmall, Position: &pos},
			{Label: "generated id and position", Category: entities.CategorySystem, Importance: entities.ImportanceMedium},
			{Label: "   "}, // skipped, not fatal
		},
		[]EdgeSeed{
			{Source: "node-1", Target: "node-2", Relationship: "points at"},
			{Source: "", Target: "node-1"}, // skipped
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())

	kept, ok := g.FindByLabel("kept")
	require.True(t, ok)
	assert.Equal(t, "node-1", kept.ID().String())
	assert.True(t, kept.Position().Equals(pos))

	generated, ok := g.FindByLabel("generated id and position")
	require.True(t, ok)
	assert.False(t, generated.ID().IsZero())

	_, ok = g.FindByLabel("stale")
	assert.False(t, ok)
}

func TestGraph_Clear(t *testing.T) {
	g := newTestGraph()
	a := mustAddNode(t, g, "a")
	b := mustAddNode(t, g, "b")
	g.AddEdge(a.ID(), b.ID(), "")

	g.Clear()
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}

func TestGraph_Snapshot(t *testing.T) {
	g := newTestGraph()
	a := mustAddNode(t, g, "a")
	b := mustAddNode(t, g, "b")
	a.AddSourceExcerpt("from the conversation")
	edge := g.AddEdge(a.ID(), b.ID(), "relates to")

	snap := g.Snapshot()
	require.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Edges, 1)

	assert.Equal(t, a.ID().String(), snap.Nodes[0].ID)
	assert.Equal(t, "a", snap.Nodes[0].Label)
	assert.Equal(t, []string{"from the conversation"}, snap.Nodes[0].Metadata.SourceExcerpts)
	assert.Equal(t, edge.ID.String(), snap.Edges[0].ID)
	assert.Equal(t, "relates to", snap.Edges[0].Relationship)
	assert.Equal(t, "smoothstep", snap.Edges[0].Kind)
}
