package services

import (
	"mindgraph-backend/domain/config"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
)

// TreeLayoutEngine assigns final coordinates so nodes group into rows by
// depth and siblings spread horizontally around the root center.
//
// Recalculate is idempotent for identical graph state: depth is structural,
// and sibling order within a level follows node insertion order.
type TreeLayoutEngine struct {
	cfg       *config.DomainConfig
	hierarchy *HierarchyCalculator
}

// NewTreeLayoutEngine creates a layout engine
func NewTreeLayoutEngine(cfg *config.DomainConfig, hierarchy *HierarchyCalculator) *TreeLayoutEngine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if hierarchy == nil {
		hierarchy = NewHierarchyCalculator(cfg)
	}
	return &TreeLayoutEngine{cfg: cfg, hierarchy: hierarchy}
}

// Recalculate moves every node onto its depth row. Safe to call after any
// mutation; a no-op graph shape produces identical positions.
func (e *TreeLayoutEngine) Recalculate(g *aggregates.Graph) {
	levels := make(map[int][]*entities.Node)
	for _, node := range g.Nodes() {
		depth := e.hierarchy.Depth(g, node.ID())
		levels[depth] = append(levels[depth], node)
	}

	for depth := 0; depth <= e.cfg.MaxTreeDepth; depth++ {
		siblings := levels[depth]
		if len(siblings) == 0 {
			continue
		}

		totalWidth := float64(len(siblings)) * e.cfg.HorizontalSpacing
		if totalWidth < e.cfg.MinLevelWidth {
			totalWidth = e.cfg.MinLevelWidth
		}
		startX := e.cfg.RootCenterX - totalWidth/2
		y := e.cfg.RootY + float64(depth)*e.cfg.VerticalSpacing

		for i, node := range siblings {
			pos, err := valueobjects.NewPosition(startX+float64(i)*e.cfg.HorizontalSpacing, y)
			if err != nil {
				continue
			}
			node.MoveTo(pos)
		}
	}
}
