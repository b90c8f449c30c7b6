package services

import (
	"mindgraph-backend/domain/config"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/valueobjects"
)

// HierarchyCalculator computes node depth: distance from a root, where a
// root is any node without incoming edges. The graph is not guaranteed to
// be acyclic or connected, so the walk carries a visited set and the result
// is clamped to MaxTreeDepth.
//
// Depth is a pure function of graph state. Graphs are bounded by
// conversation length, so recomputing per node on every layout pass is the
// expected usage.
type HierarchyCalculator struct {
	cfg *config.DomainConfig
}

// NewHierarchyCalculator creates a hierarchy calculator
func NewHierarchyCalculator(cfg *config.DomainConfig) *HierarchyCalculator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &HierarchyCalculator{cfg: cfg}
}

// Depth returns 0 for a root, otherwise 1 plus the deepest parent via an
// incoming edge, clamped to MaxTreeDepth.
func (c *HierarchyCalculator) Depth(g *aggregates.Graph, id valueobjects.NodeID) int {
	depth := c.walk(g, id, make(map[valueobjects.NodeID]bool))
	if depth > c.cfg.MaxTreeDepth {
		return c.cfg.MaxTreeDepth
	}
	return depth
}

// walk shares one visited set per Depth call. A node seen again during its
// own computation contributes 0 from that path, which breaks cycles.
func (c *HierarchyCalculator) walk(g *aggregates.Graph, id valueobjects.NodeID, visited map[valueobjects.NodeID]bool) int {
	if visited[id] {
		return 0
	}
	visited[id] = true

	parents := g.Parents(id)
	if len(parents) == 0 {
		return 0
	}

	deepest := 0
	for _, parent := range parents {
		if d := c.walk(g, parent, visited) + 1; d > deepest {
			deepest = d
		}
	}
	if deepest > c.cfg.MaxTreeDepth {
		return c.cfg.MaxTreeDepth
	}
	return deepest
}
