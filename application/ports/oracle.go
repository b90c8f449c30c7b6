package ports

import (
	"context"

	"mindgraph-backend/application/reconciler"
)

// GraphSummary is the compact graph description handed to the oracle so it
// can reference existing concepts instead of re-proposing them.
type GraphSummary struct {
	Labels []string
}

// DeltaOracle proposes graph deltas from conversation fragments. The oracle
// is external and unreliable: it may be slow, fail outright, or return a
// malformed payload. Implementations must translate failures into errors
// rather than partial deltas; the engine stays consistent either way, and
// the finalize pass repairs whatever connections the oracle never made.
type DeltaOracle interface {
	ProposeDelta(ctx context.Context, transcript []string, summary GraphSummary) (*reconciler.ProposedDelta, error)
}
