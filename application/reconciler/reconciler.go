package reconciler

import (
	"strings"

	"go.uber.org/zap"

	"mindgraph-backend/domain/config"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
	"mindgraph-backend/domain/services"
	pkgerrors "mindgraph-backend/pkg/errors"
)

// Reconciler folds untrusted proposed deltas into a consistent, laid-out
// graph. Each delta moves through resolving, filtering and inserting before
// commit triggers a layout pass; a delta either completes that pipeline or
// is rejected wholesale at the parse stage.
//
// All mutation happens through the Graph aggregate's primitives, on a
// single writer per session.
type Reconciler struct {
	graph    *aggregates.Graph
	filter   *services.DuplicateFilter
	layout   *services.TreeLayoutEngine
	cfg      *config.DomainConfig
	logger   *zap.Logger
	onCommit func(aggregates.Snapshot)
}

// NewReconciler creates a reconciler bound to one session's graph
func NewReconciler(
	graph *aggregates.Graph,
	filter *services.DuplicateFilter,
	layout *services.TreeLayoutEngine,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Reconciler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		graph:  graph,
		filter: filter,
		layout: layout,
		cfg:    cfg,
		logger: logger,
	}
}

// Graph returns the underlying aggregate
func (r *Reconciler) Graph() *aggregates.Graph {
	return r.graph
}

// OnCommit registers a callback invoked with a fresh snapshot after every
// committed mutation. Used by the transport layer to stream updates.
func (r *Reconciler) OnCommit(fn func(aggregates.Snapshot)) {
	r.onCommit = fn
}

// ApplyDelta runs the full resolve/filter/insert pipeline for one proposed
// delta. A payload without a nodes array is rejected wholesale; individual
// malformed or redundant entries are skipped and reported.
func (r *Reconciler) ApplyDelta(delta *ProposedDelta) (*DeltaReport, error) {
	if delta == nil || delta.Nodes == nil {
		return nil, pkgerrors.NewValidationError("delta payload must contain a nodes array")
	}

	report := &DeltaReport{
		AddedNodes: []aggregates.NodeView{},
		AddedEdges: []aggregates.EdgeView{},
		Skipped:    []SkippedItem{},
	}

	// Labels inserted by this delta, kept for resolving sibling edges even
	// when other proposals in the batch are rejected.
	inserted := make(map[string]valueobjects.NodeID)

	// Candidates are filtered against state committed before this delta;
	// batch-mates never shadow each other.
	existing := r.graph.Labels()

	var addedNodes []*entities.Node
	var addedEdges []*aggregates.Edge

	for _, proposal := range delta.Nodes {
		label := strings.TrimSpace(proposal.Label)
		if label == "" {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: proposal.Label, Reason: ReasonEmptyLabel})
			continue
		}

		if r.filter.IsDuplicate(label, existing) {
			r.logger.Debug("Skipping duplicate node proposal", zap.String("label", label))
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: label, Reason: ReasonDuplicateLabel})
			continue
		}

		node, err := r.graph.AddNode(
			label,
			entities.ParseCategory(proposal.Category),
			entities.ParseImportance(proposal.Importance),
			nil,
		)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: label, Reason: err.Error()})
			continue
		}
		node.AddSourceExcerpt(proposal.Excerpt)

		inserted[strings.ToLower(label)] = node.ID()
		addedNodes = append(addedNodes, node)
	}

	for _, proposal := range delta.Edges {
		sourceID, ok := r.resolveReference(proposal.Source, inserted)
		if !ok {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "edge", Ref: edgeRef(proposal), Reason: ReasonUnresolvedSource})
			continue
		}
		targetID, ok := r.resolveReference(proposal.Target, inserted)
		if !ok {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "edge", Ref: edgeRef(proposal), Reason: ReasonUnresolvedTarget})
			continue
		}

		edge := r.graph.AddEdge(sourceID, targetID, proposal.Relationship)
		addedEdges = append(addedEdges, edge)
	}

	r.commit()

	// Views are built after the layout pass so reported positions are final.
	for _, node := range addedNodes {
		report.AddedNodes = append(report.AddedNodes, nodeView(node))
	}
	for _, edge := range addedEdges {
		report.AddedEdges = append(report.AddedEdges, edgeView(edge))
	}

	r.logger.Info("Delta applied",
		zap.Int("addedNodes", len(report.AddedNodes)),
		zap.Int("addedEdges", len(report.AddedEdges)),
		zap.Int("skipped", len(report.Skipped)),
	)

	return report, nil
}

// ApplyRefinement applies a cleanup delta that targets existing node IDs:
// removals, relabels and extra edges. Unknown IDs are skipped per entry.
func (r *Reconciler) ApplyRefinement(ref *Refinement) (*RefinementReport, error) {
	if ref == nil {
		return nil, pkgerrors.NewValidationError("refinement payload is required")
	}

	report := &RefinementReport{Skipped: []SkippedItem{}}

	for _, raw := range ref.NodesToRemove {
		id, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil || !r.graph.RemoveNode(id) {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: raw, Reason: ReasonUnknownNode})
			continue
		}
		report.RemovedNodes++
	}

	for _, update := range ref.NodesToUpdate {
		id, err := valueobjects.NewNodeIDFromString(update.ID)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: update.ID, Reason: ReasonUnknownNode})
			continue
		}

		changes := aggregates.NodeChanges{}
		if update.NewLabel != "" {
			label := update.NewLabel
			changes.Label = &label
		}
		if update.NewCategory != "" {
			category := entities.ParseCategory(update.NewCategory)
			changes.Category = &category
		}

		node, err := r.graph.UpdateNode(id, changes)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: update.ID, Reason: err.Error()})
			continue
		}
		if node == nil {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "node", Ref: update.ID, Reason: ReasonUnknownNode})
			continue
		}
		report.UpdatedNodes++
	}

	for _, proposal := range ref.EdgesToAdd {
		sourceID, ok := r.resolveReference(proposal.Source, nil)
		if !ok {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "edge", Ref: edgeRef(proposal), Reason: ReasonUnresolvedSource})
			continue
		}
		targetID, ok := r.resolveReference(proposal.Target, nil)
		if !ok {
			report.Skipped = append(report.Skipped, SkippedItem{Kind: "edge", Ref: edgeRef(proposal), Reason: ReasonUnresolvedTarget})
			continue
		}

		r.graph.AddEdge(sourceID, targetID, proposal.Relationship)
		report.AddedEdges++
	}

	r.commit()

	r.logger.Info("Refinement applied",
		zap.Int("removedNodes", report.RemovedNodes),
		zap.Int("updatedNodes", report.UpdatedNodes),
		zap.Int("addedEdges", report.AddedEdges),
		zap.Int("skipped", len(report.Skipped)),
	)

	return report, nil
}

// resolveReference maps a label-or-ID reference to a node ID. Lookup order:
// direct ID, labels inserted by the current delta, then committed labels.
func (r *Reconciler) resolveReference(ref string, inserted map[string]valueobjects.NodeID) (valueobjects.NodeID, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return valueobjects.NodeID{}, false
	}

	if id, err := valueobjects.NewNodeIDFromString(ref); err == nil && r.graph.HasNode(id) {
		return id, true
	}

	if inserted != nil {
		if id, ok := inserted[strings.ToLower(ref)]; ok {
			return id, true
		}
	}

	if node, ok := r.graph.FindByLabel(ref); ok {
		return node.ID(), true
	}

	return valueobjects.NodeID{}, false
}

// commit re-levels the tree and notifies subscribers
func (r *Reconciler) commit() {
	r.layout.Recalculate(r.graph)
	if r.onCommit != nil {
		r.onCommit(r.graph.Snapshot())
	}
}

func edgeRef(p EdgeProposal) string {
	return p.Source + " -> " + p.Target
}

func nodeView(node *entities.Node) aggregates.NodeView {
	meta := node.Metadata()
	return aggregates.NodeView{
		ID:         node.ID().String(),
		Label:      node.Label(),
		Category:   string(node.Category()),
		Importance: string(node.Importance()),
		Position:   aggregates.PositionView{X: node.Position().X(), Y: node.Position().Y()},
		Size:       aggregates.SizeView{Width: node.Size().Width(), Height: node.Size().Height()},
		Metadata: aggregates.MetadataView{
			SourceExcerpts: meta.SourceExcerpts,
			MergedFrom:     meta.MergedFrom,
		},
		CreatedAt: node.CreatedAt(),
	}
}

func edgeView(edge *aggregates.Edge) aggregates.EdgeView {
	return aggregates.EdgeView{
		ID:           edge.ID.String(),
		Source:       edge.SourceID.String(),
		Target:       edge.TargetID.String(),
		Relationship: edge.Relationship,
		Kind:         edge.Kind,
		Animated:     edge.Animated,
		CreatedAt:    edge.CreatedAt,
	}
}
