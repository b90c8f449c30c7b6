package aggregates

import (
	"time"
)

// NodeView is the read-only JSON shape of a node
type NodeView struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Category   string                 `json:"category"`
	Importance string                 `json:"importance"`
	Position   PositionView           `json:"position"`
	Size       SizeView               `json:"size"`
	Metadata   MetadataView           `json:"metadata"`
	Custom     map[string]interface{} `json:"custom,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// PositionView is the JSON shape of a position
type PositionView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SizeView is the JSON shape of a bounding box
type SizeView struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MetadataView is the JSON shape of node provenance
type MetadataView struct {
	SourceExcerpts []string `json:"sourceExcerpts,omitempty"`
	MergedFrom     []string `json:"mergedFrom,omitempty"`
}

// EdgeView is the read-only JSON shape of an edge
type EdgeView struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	Relationship string    `json:"relationship"`
	Kind         string    `json:"type"`
	Animated     bool      `json:"animated"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Snapshot is a read-only view of the whole graph. Callers must treat it as
// immutable; it shares no structure with the live aggregate.
type Snapshot struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// Snapshot builds a detached view of the current graph state in insertion
// order.
func (g *Graph) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]NodeView, 0, len(g.nodeOrder)),
		Edges: make([]EdgeView, 0, len(g.edgeOrder)),
	}

	for _, node := range g.Nodes() {
		meta := node.Metadata()
		snap.Nodes = append(snap.Nodes, NodeView{
			ID:         node.ID().String(),
			Label:      node.Label(),
			Category:   string(node.Category()),
			Importance: string(node.Importance()),
			Position:   PositionView{X: node.Position().X(), Y: node.Position().Y()},
			Size:       SizeView{Width: node.Size().Width(), Height: node.Size().Height()},
			Metadata: MetadataView{
				SourceExcerpts: meta.SourceExcerpts,
				MergedFrom:     meta.MergedFrom,
			},
			Custom:    meta.Custom,
			CreatedAt: node.CreatedAt(),
		})
	}

	for _, edge := range g.Edges() {
		snap.Edges = append(snap.Edges, EdgeView{
			ID:           edge.ID.String(),
			Source:       edge.SourceID.String(),
			Target:       edge.TargetID.String(),
			Relationship: edge.Relationship,
			Kind:         edge.Kind,
			Animated:     edge.Animated,
			CreatedAt:    edge.CreatedAt,
		})
	}

	return snap
}
