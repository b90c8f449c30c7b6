package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindgraph-backend/application/ports"
	"mindgraph-backend/application/reconciler"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
	pkgerrors "mindgraph-backend/pkg/errors"
)

// Session owns one conversation's graph, reconciler and transcript buffer.
// The mutex serializes writers so each delta completes its full pipeline
// before the next begins; sessions share no mutable state with each other.
type Session struct {
	id         string
	graph      *aggregates.Graph
	reconciler *reconciler.Reconciler
	oracle     ports.DeltaOracle
	transcript []string
	logger     *zap.Logger
	createdAt  time.Time
	mu         sync.Mutex
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was opened
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// OnCommit registers a callback invoked with a fresh snapshot after every
// committed mutation
func (s *Session) OnCommit(fn func(aggregates.Snapshot)) {
	s.reconciler.OnCommit(fn)
}

// SubmitDelta applies one proposed delta
func (s *Session) SubmitDelta(delta *reconciler.ProposedDelta) (*reconciler.DeltaReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.ApplyDelta(delta)
}

// SubmitRefinement applies one cleanup delta
func (s *Session) SubmitRefinement(ref *reconciler.Refinement) (*reconciler.RefinementReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.ApplyRefinement(ref)
}

// Finalize runs the orphan reconciliation pass
func (s *Session) Finalize() *reconciler.FinalizeReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.Finalize()
}

// Merge collapses the given nodes into one
func (s *Session) Merge(nodeIDs []string, newLabel, newCategory string) (*entities.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.Merge(nodeIDs, newLabel, newCategory)
}

// AppendUtterance records a conversation fragment and asks the oracle for a
// delta over the rolling transcript. An oracle failure leaves the graph
// untouched.
func (s *Session) AppendUtterance(ctx context.Context, text string) (*reconciler.DeltaReport, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.NewValidationError("utterance text cannot be empty")
	}

	if s.oracle == nil {
		return nil, pkgerrors.NewInternalError("no delta oracle configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript = append(s.transcript, text)

	delta, err := s.oracle.ProposeDelta(ctx, s.transcript, ports.GraphSummary{Labels: s.graph.Labels()})
	if err != nil {
		s.logger.Warn("Delta oracle failed", zap.String("sessionID", s.id), zap.Error(err))
		return nil, err
	}

	return s.reconciler.ApplyDelta(delta)
}

// Transcript returns a copy of the recorded fragments
func (s *Session) Transcript() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.transcript...)
}

// Snapshot returns a read-only view of the graph
func (s *Session) Snapshot() aggregates.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Snapshot()
}

// RemoveNode removes a node, cascading to its edges
func (s *Session) RemoveNode(id string) bool {
	nodeID, err := valueobjects.NewNodeIDFromString(id)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.RemoveNode(nodeID)
}

// RemoveEdge removes one edge
func (s *Session) RemoveEdge(id string) bool {
	edgeID, err := valueobjects.NewEdgeIDFromString(id)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.RemoveEdge(edgeID)
}

// ReplaceGraph swaps the whole graph contents
func (s *Session) ReplaceGraph(nodes []aggregates.NodeSeed, edges []aggregates.EdgeSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Replace(nodes, edges)
}

// Clear empties the graph and the transcript buffer
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Clear()
	s.transcript = nil
}
