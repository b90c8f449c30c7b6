package reconciler

import (
	"go.uber.org/zap"

	"mindgraph-backend/domain/core/entities"
)

// Finalize guarantees connectivity-from-hub: every node left without a
// single edge is attached to the most-connected node with the generic
// fallback relationship. This is the deterministic repair pass for when the
// upstream oracle never produced valid connections; it cannot fail on a
// non-empty graph.
func (r *Reconciler) Finalize() *FinalizeReport {
	report := &FinalizeReport{}

	var isolated []*entities.Node
	for _, node := range r.graph.Nodes() {
		if r.graph.Degree(node.ID()) == 0 {
			isolated = append(isolated, node)
		}
	}
	if len(isolated) == 0 {
		return report
	}

	// Hub: highest total edge count, ties broken by insertion order. When
	// the whole graph is isolated the first node becomes the hub.
	var hub *entities.Node
	best := -1
	for _, node := range r.graph.Nodes() {
		if degree := r.graph.Degree(node.ID()); degree > best {
			best = degree
			hub = node
		}
	}
	if hub == nil {
		return report
	}

	for _, node := range isolated {
		if node.ID().Equals(hub.ID()) {
			continue
		}
		if r.graph.Connected(hub.ID(), node.ID()) {
			continue
		}
		r.graph.AddEdge(hub.ID(), node.ID(), r.cfg.FallbackRelationship)
		report.EdgesAdded++
	}

	for _, node := range r.graph.Nodes() {
		if r.graph.Degree(node.ID()) == 0 {
			report.IsolatedNodesRemaining++
		}
	}

	r.commit()

	r.logger.Info("Orphan reconciliation complete",
		zap.String("hub", hub.ID().String()),
		zap.Int("edgesAdded", report.EdgesAdded),
		zap.Int("isolatedRemaining", report.IsolatedNodesRemaining),
	)

	return report
}
