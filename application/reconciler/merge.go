package reconciler

import (
	"go.uber.org/zap"

	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
	pkgerrors "mindgraph-backend/pkg/errors"
)

// Merge collapses the given nodes into one synthetic node. Edges with
// exactly one endpoint in the merged set are re-created against the new
// node; edges internal to the set are dropped. The new edges are created
// before the originals are removed, otherwise the cascade delete in
// RemoveNode would take the transferred edges with it.
func (r *Reconciler) Merge(nodeIDs []string, newLabel, newCategory string) (*entities.Node, error) {
	mergeSet := make(map[valueobjects.NodeID]bool)
	var members []*entities.Node
	for _, raw := range nodeIDs {
		id, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			return nil, pkgerrors.NewValidationError("merge node ID cannot be empty")
		}
		node, exists := r.graph.Node(id)
		if !exists {
			return nil, pkgerrors.NewNotFoundError("merge node " + raw)
		}
		if !mergeSet[id] {
			mergeSet[id] = true
			members = append(members, node)
		}
	}

	if len(members) < 2 {
		return nil, pkgerrors.NewValidationError("merge requires at least two distinct nodes")
	}

	category := members[0].Category()
	if newCategory != "" {
		category = entities.ParseCategory(newCategory)
	}

	merged, err := r.graph.AddNode(newLabel, category, entities.ImportanceLarge, nil)
	if err != nil {
		return nil, err
	}

	mergedIDs := make([]string, 0, len(members))
	for _, member := range members {
		mergedIDs = append(mergedIDs, member.ID().String())
		for _, excerpt := range member.Metadata().SourceExcerpts {
			merged.AddSourceExcerpt(excerpt)
		}
	}
	merged.RecordMergedFrom(mergedIDs)

	// Re-parent external edges onto the merged node. Internal edges are
	// left for the cascade delete below.
	for _, edge := range r.graph.Edges() {
		sourceIn := mergeSet[edge.SourceID]
		targetIn := mergeSet[edge.TargetID]
		switch {
		case sourceIn && !targetIn:
			r.graph.AddEdge(merged.ID(), edge.TargetID, edge.Relationship)
		case targetIn && !sourceIn:
			r.graph.AddEdge(edge.SourceID, merged.ID(), edge.Relationship)
		}
	}

	for id := range mergeSet {
		r.graph.RemoveNode(id)
	}

	r.commit()

	r.logger.Info("Nodes merged",
		zap.Strings("sourceIDs", mergedIDs),
		zap.String("mergedID", merged.ID().String()),
		zap.String("label", merged.Label()),
	)

	return merged, nil
}
