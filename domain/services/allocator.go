package services

import (
	"math"

	"mindgraph-backend/domain/config"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/valueobjects"
)

// GridAllocator places nodes in deterministic row/column order based on how
// many nodes the graph already holds. Suited to flat graphs.
type GridAllocator struct {
	cfg *config.DomainConfig
}

// NewGridAllocator creates a grid allocator
func NewGridAllocator(cfg *config.DomainConfig) *GridAllocator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GridAllocator{cfg: cfg}
}

// Allocate computes the next free grid cell
func (a *GridAllocator) Allocate(g *aggregates.Graph, _ valueobjects.Size) valueobjects.Position {
	count := g.NodeCount()
	x := float64(count%a.cfg.GridNodesPerRow) * a.cfg.GridSpacingX
	y := math.Floor(float64(count)/float64(a.cfg.GridNodesPerRow)) * a.cfg.GridSpacingY

	pos, _ := valueobjects.NewPosition(x, y)
	return pos
}

// SpiralAllocator searches expanding radii around a center point for the
// first candidate whose padded bounding box clears every existing node.
// Candidates are visited at fixed angle steps per radius, so the result is
// deterministic for identical graph state.
type SpiralAllocator struct {
	cfg *config.DomainConfig
}

// NewSpiralAllocator creates a spiral allocator
func NewSpiralAllocator(cfg *config.DomainConfig) *SpiralAllocator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SpiralAllocator{cfg: cfg}
}

// Allocate finds a non-overlapping position, falling back to a slot beside
// the last-inserted node when the bounded search is exhausted.
func (a *SpiralAllocator) Allocate(g *aggregates.Graph, size valueobjects.Size) valueobjects.Position {
	center, _ := valueobjects.NewPosition(a.cfg.SpiralCenterX, a.cfg.SpiralCenterY)

	if a.fits(g, size, center) {
		return center
	}

	for step := 1; step <= a.cfg.SpiralMaxRadiusSteps; step++ {
		radius := float64(step) * a.cfg.SpiralRadiusStep
		for angle := 0.0; angle < 360; angle += a.cfg.SpiralAngleStep {
			rad := angle * math.Pi / 180
			candidate, err := valueobjects.NewPosition(
				a.cfg.SpiralCenterX+radius*math.Cos(rad),
				a.cfg.SpiralCenterY+radius*math.Sin(rad),
			)
			if err != nil {
				continue
			}
			if a.fits(g, size, candidate) {
				return candidate
			}
		}
	}

	// Bounded search exhausted: place beside the last-inserted node.
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return center
	}
	last := nodes[len(nodes)-1]
	fallback, _ := last.Position().Translate(
		last.Size().Width()+a.cfg.SpiralPadding, 0,
	)
	return fallback
}

func (a *SpiralAllocator) fits(g *aggregates.Graph, size valueobjects.Size, at valueobjects.Position) bool {
	for _, node := range g.Nodes() {
		if size.Overlaps(at, node.Size(), node.Position(), a.cfg.SpiralPadding) {
			return false
		}
	}
	return true
}
