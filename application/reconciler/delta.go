package reconciler

import (
	"mindgraph-backend/domain/core/aggregates"
)

// NodeProposal is an LLM-proposed node. It carries no ID; one is assigned
// on acceptance.
type NodeProposal struct {
	Label      string `json:"label"`
	Category   string `json:"category,omitempty"`
	Importance string `json:"importance,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
}

// EdgeProposal is an LLM-proposed edge. Source and target may be node IDs
// or human-readable labels; the reconciler resolves them.
type EdgeProposal struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship,omitempty"`
}

// ProposedDelta is the untrusted payload consumed by the reconciler. It is
// never stored; it is transformed into node/edge insertions or rejected.
type ProposedDelta struct {
	Nodes []NodeProposal `json:"nodes"`
	Edges []EdgeProposal `json:"edges"`
}

// NodeUpdate targets an existing node by ID for a refinement pass
type NodeUpdate struct {
	ID          string `json:"id"`
	NewLabel    string `json:"newLabel,omitempty"`
	NewCategory string `json:"newCategory,omitempty"`
}

// Refinement is a cleanup delta shaped differently from the creation delta:
// it addresses existing IDs directly instead of proposing labeled nodes.
type Refinement struct {
	NodesToRemove []string       `json:"nodesToRemove"`
	NodesToUpdate []NodeUpdate   `json:"nodesToUpdate"`
	EdgesToAdd    []EdgeProposal `json:"edgesToAdd"`
}

// Skip reasons reported for entries dropped during reconciliation
const (
	ReasonEmptyLabel       = "empty label"
	ReasonDuplicateLabel   = "duplicate of existing node"
	ReasonUnresolvedSource = "unresolved source reference"
	ReasonUnresolvedTarget = "unresolved target reference"
	ReasonUnknownNode      = "node not found"
)

// SkippedItem records one dropped entry and why
type SkippedItem struct {
	Kind   string `json:"kind"` // "node" or "edge"
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// DeltaReport describes what a delta actually changed
type DeltaReport struct {
	AddedNodes []aggregates.NodeView `json:"addedNodes"`
	AddedEdges []aggregates.EdgeView `json:"addedEdges"`
	Skipped    []SkippedItem         `json:"skipped"`
}

// RefinementReport describes what a refinement actually changed
type RefinementReport struct {
	RemovedNodes int           `json:"removedNodes"`
	UpdatedNodes int           `json:"updatedNodes"`
	AddedEdges   int           `json:"addedEdges"`
	Skipped      []SkippedItem `json:"skipped"`
}

// FinalizeReport describes the orphan reconciliation outcome
type FinalizeReport struct {
	EdgesAdded             int `json:"edgesAdded"`
	IsolatedNodesRemaining int `json:"isolatedNodesRemaining"`
}
