package aggregates

import (
	"strings"
	"time"

	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
)

// Edge represents a directed connection between nodes. Style fields are
// presentation-only and carry no structural meaning.
type Edge struct {
	ID           valueobjects.EdgeID
	SourceID     valueobjects.NodeID
	TargetID     valueobjects.NodeID
	Relationship string
	Kind         string
	Animated     bool
	CreatedAt    time.Time
}

// PositionAllocator computes a non-overlapping position for a node of the
// given size against the current graph state. Implementations must be
// deterministic for identical graph state and insertion order.
type PositionAllocator interface {
	Allocate(g *Graph, size valueobjects.Size) valueobjects.Position
}

// Graph is the aggregate root for one session's knowledge graph. It owns
// node and edge lifetime exclusively; the reconciler, layout engine and
// merge operation mutate it only through these primitives, so ID uniqueness
// and edge cascade-delete are enforced in one place.
//
// The aggregate is not safe for concurrent use. The intended execution model
// applies one delta fully before the next begins, and every session has its
// own Graph instance.
type Graph struct {
	nodes     map[valueobjects.NodeID]*entities.Node
	edges     map[valueobjects.EdgeID]*Edge
	nodeOrder []valueobjects.NodeID
	edgeOrder []valueobjects.EdgeID
	allocator PositionAllocator
	updatedAt time.Time
}

// NewGraph creates an empty graph. The allocator places nodes added without
// an explicit position.
func NewGraph(allocator PositionAllocator) *Graph {
	return &Graph{
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		edges:     make(map[valueobjects.EdgeID]*Edge),
		allocator: allocator,
		updatedAt: time.Now(),
	}
}

// AddNode creates a node with a fresh ID and appends it to the graph. When
// position is nil the allocator chooses one. Fails only on an empty label.
func (g *Graph) AddNode(label string, category entities.Category, importance entities.Importance, position *valueobjects.Position) (*entities.Node, error) {
	size := entities.SizeFor(importance)

	var pos valueobjects.Position
	if position != nil {
		pos = *position
	} else {
		pos = g.allocator.Allocate(g, size)
	}

	node, err := entities.NewNode(label, category, importance, pos)
	if err != nil {
		return nil, err
	}

	g.insertNode(node)
	return node, nil
}

// AddEdge creates an edge with a fresh ID. Endpoint existence is the
// caller's responsibility; the store does not validate it.
func (g *Graph) AddEdge(source, target valueobjects.NodeID, relationship string) *Edge {
	edge := &Edge{
		ID:           valueobjects.NewEdgeID(),
		SourceID:     source,
		TargetID:     target,
		Relationship: relationship,
		Kind:         "smoothstep",
		Animated:     true,
		CreatedAt:    time.Now(),
	}
	g.insertEdge(edge)
	return edge
}

// RemoveNode removes the node and cascades to every edge touching it.
// Returns false when the node does not exist.
func (g *Graph) RemoveNode(id valueobjects.NodeID) bool {
	if _, exists := g.nodes[id]; !exists {
		return false
	}

	for _, edgeID := range append([]valueobjects.EdgeID(nil), g.edgeOrder...) {
		edge := g.edges[edgeID]
		if edge.SourceID.Equals(id) || edge.TargetID.Equals(id) {
			g.deleteEdge(edgeID)
		}
	}

	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
	g.updatedAt = time.Now()
	return true
}

// RemoveEdge removes only that edge. Returns false when it does not exist.
func (g *Graph) RemoveEdge(id valueobjects.EdgeID) bool {
	if _, exists := g.edges[id]; !exists {
		return false
	}
	g.deleteEdge(id)
	g.updatedAt = time.Now()
	return true
}

// NodeChanges describes a partial node update. Nil fields are left as-is;
// Custom is deep-merged one level into the node's custom metadata.
type NodeChanges struct {
	Label      *string
	Category   *entities.Category
	Importance *entities.Importance
	Position   *valueobjects.Position
	Custom     map[string]interface{}
}

// UpdateNode shallow-merges the given fields into the node. Returns nil
// (without error) when the node does not exist.
func (g *Graph) UpdateNode(id valueobjects.NodeID, changes NodeChanges) (*entities.Node, error) {
	node, exists := g.nodes[id]
	if !exists {
		return nil, nil
	}

	if changes.Label != nil {
		if err := node.Rename(*changes.Label); err != nil {
			return nil, err
		}
	}
	if changes.Category != nil {
		node.Recategorize(*changes.Category)
	}
	if changes.Importance != nil {
		node.SetImportance(*changes.Importance)
	}
	if changes.Position != nil {
		node.MoveTo(*changes.Position)
	}
	node.MergeCustomMetadata(changes.Custom)

	g.updatedAt = time.Now()
	return node, nil
}

// NodeSeed describes a node for wholesale replacement. A missing ID or
// position is regenerated the same way AddNode would.
type NodeSeed struct {
	ID         string
	Label      string
	Category   entities.Category
	Importance entities.Importance
	Position   *valueobjects.Position
	CreatedAt  time.Time
}

// EdgeSeed describes an edge for wholesale replacement
type EdgeSeed struct {
	ID           string
	Source       string
	Target       string
	Relationship string
	Animated     bool
}

// Replace swaps the entire graph contents, used for AI-driven restructure
// operations. Seeds with an empty label are skipped rather than failing the
// whole replacement.
func (g *Graph) Replace(nodes []NodeSeed, edges []EdgeSeed) error {
	g.Clear()

	for _, seed := range nodes {
		size := entities.SizeFor(seed.Importance)

		var pos valueobjects.Position
		if seed.Position != nil {
			pos = *seed.Position
		} else {
			pos = g.allocator.Allocate(g, size)
		}

		var id valueobjects.NodeID
		if seed.ID != "" {
			id, _ = valueobjects.NewNodeIDFromString(seed.ID)
		}

		node, err := entities.ReconstructNode(id, seed.Label, seed.Category, seed.Importance, pos, seed.CreatedAt)
		if err != nil {
			continue
		}
		g.insertNode(node)
	}

	for _, seed := range edges {
		sourceID, err := valueobjects.NewNodeIDFromString(seed.Source)
		if err != nil {
			continue
		}
		targetID, err := valueobjects.NewNodeIDFromString(seed.Target)
		if err != nil {
			continue
		}

		edgeID := valueobjects.NewEdgeID()
		if seed.ID != "" {
			edgeID, _ = valueobjects.NewEdgeIDFromString(seed.ID)
		}

		g.insertEdge(&Edge{
			ID:           edgeID,
			SourceID:     sourceID,
			TargetID:     targetID,
			Relationship: seed.Relationship,
			Kind:         "smoothstep",
			Animated:     seed.Animated,
			CreatedAt:    time.Now(),
		})
	}

	return nil
}

// Clear empties both collections
func (g *Graph) Clear() {
	g.nodes = make(map[valueobjects.NodeID]*entities.Node)
	g.edges = make(map[valueobjects.EdgeID]*Edge)
	g.nodeOrder = nil
	g.edgeOrder = nil
	g.updatedAt = time.Now()
}

// Node retrieves a node by ID
func (g *Graph) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// HasNode checks if a node exists
func (g *Graph) HasNode(id valueobjects.NodeID) bool {
	_, exists := g.nodes[id]
	return exists
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		edges = append(edges, g.edges[id])
	}
	return edges
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Labels returns every node label in insertion order
func (g *Graph) Labels() []string {
	labels := make([]string, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		labels = append(labels, g.nodes[id].Label())
	}
	return labels
}

// FindByLabel looks up a node by case-insensitive label match, preferring
// the earliest inserted on ties.
func (g *Graph) FindByLabel(label string) (*entities.Node, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	for _, id := range g.nodeOrder {
		if strings.ToLower(g.nodes[id].Label()) == want {
			return g.nodes[id], true
		}
	}
	return nil, false
}

// Degree returns the total edge count (incoming plus outgoing) for a node
func (g *Graph) Degree(id valueobjects.NodeID) int {
	count := 0
	for _, edge := range g.edges {
		if edge.SourceID.Equals(id) || edge.TargetID.Equals(id) {
			count++
		}
	}
	return count
}

// Parents returns the source node IDs of every incoming edge, in edge
// insertion order.
func (g *Graph) Parents(id valueobjects.NodeID) []valueobjects.NodeID {
	var parents []valueobjects.NodeID
	for _, edgeID := range g.edgeOrder {
		edge := g.edges[edgeID]
		if edge.TargetID.Equals(id) {
			parents = append(parents, edge.SourceID)
		}
	}
	return parents
}

// Connected reports whether any edge joins the two nodes in either direction
func (g *Graph) Connected(a, b valueobjects.NodeID) bool {
	for _, edge := range g.edges {
		if (edge.SourceID.Equals(a) && edge.TargetID.Equals(b)) ||
			(edge.SourceID.Equals(b) && edge.TargetID.Equals(a)) {
			return true
		}
	}
	return false
}

// UpdatedAt returns the time of the last mutation
func (g *Graph) UpdatedAt() time.Time {
	return g.updatedAt
}

// Private helpers

func (g *Graph) insertNode(node *entities.Node) {
	g.nodes[node.ID()] = node
	g.nodeOrder = append(g.nodeOrder, node.ID())
	g.updatedAt = time.Now()
}

func (g *Graph) insertEdge(edge *Edge) {
	g.edges[edge.ID] = edge
	g.edgeOrder = append(g.edgeOrder, edge.ID)
	g.updatedAt = time.Now()
}

func (g *Graph) deleteEdge(id valueobjects.EdgeID) {
	delete(g.edges, id)
	for i, eid := range g.edgeOrder {
		if eid.Equals(id) {
			g.edgeOrder = append(g.edgeOrder[:i], g.edgeOrder[i+1:]...)
			break
		}
	}
}

func removeID(order []valueobjects.NodeID, id valueobjects.NodeID) []valueobjects.NodeID {
	for i, nid := range order {
		if nid.Equals(id) {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
