package oracle

import (
	"context"
	"sync"

	"mindgraph-backend/application/ports"
	"mindgraph-backend/application/reconciler"
)

// ScriptedOracle replays a fixed sequence of deltas, one per call, then
// empty deltas. It stands in for the model in development and tests, where
// deterministic proposals matter more than real extraction.
type ScriptedOracle struct {
	mu     sync.Mutex
	deltas []*reconciler.ProposedDelta
	next   int
}

// NewScriptedOracle creates an oracle that replays the given deltas in order
func NewScriptedOracle(deltas ...*reconciler.ProposedDelta) *ScriptedOracle {
	return &ScriptedOracle{deltas: deltas}
}

// ProposeDelta implements ports.DeltaOracle
func (o *ScriptedOracle) ProposeDelta(_ context.Context, _ []string, _ ports.GraphSummary) (*reconciler.ProposedDelta, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.next >= len(o.deltas) {
		return &reconciler.ProposedDelta{Nodes: []reconciler.NodeProposal{}}, nil
	}
	delta := o.deltas[o.next]
	o.next++
	return delta, nil
}
