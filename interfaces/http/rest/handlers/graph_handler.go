package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindgraph-backend/application/session"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/domain/core/entities"
	"mindgraph-backend/domain/core/valueobjects"
	"mindgraph-backend/pkg/common"
	pkgerrors "mindgraph-backend/pkg/errors"
	"mindgraph-backend/pkg/utils"
)

// GraphHandler handles graph read and direct mutation endpoints
type GraphHandler struct {
	sessions *session.Manager
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(sessions *session.Manager, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{sessions: sessions, logger: logger}
}

// ReplaceNodeRequest describes one node in a wholesale graph replacement.
// Missing IDs and positions are regenerated by the store.
type ReplaceNodeRequest struct {
	ID         string   `json:"id,omitempty"`
	Label      string   `json:"label" validate:"required"`
	Category   string   `json:"category,omitempty"`
	Importance string   `json:"importance,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
}

// ReplaceEdgeRequest describes one edge in a wholesale graph replacement
type ReplaceEdgeRequest struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required"`
	Relationship string `json:"relationship,omitempty"`
	Animated     bool   `json:"animated,omitempty"`
}

// ReplaceGraphRequest is the body for PUT /sessions/{sessionID}/graph
type ReplaceGraphRequest struct {
	Nodes []ReplaceNodeRequest `json:"nodes" validate:"required,dive"`
	Edges []ReplaceEdgeRequest `json:"edges" validate:"omitempty,dive"`
}

// GetGraph handles GET /sessions/{sessionID}/graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, http.StatusOK, s.Snapshot())
}

// ReplaceGraph handles PUT /sessions/{sessionID}/graph
func (h *GraphHandler) ReplaceGraph(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ReplaceGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "PARSE_FAILURE", "Invalid graph payload: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	nodes := make([]aggregates.NodeSeed, 0, len(req.Nodes))
	for _, n := range req.Nodes {
		seed := aggregates.NodeSeed{
			ID:         n.ID,
			Label:      n.Label,
			Category:   entities.ParseCategory(n.Category),
			Importance: entities.ParseImportance(n.Importance),
		}
		if n.X != nil && n.Y != nil {
			if pos, err := valueobjects.NewPosition(*n.X, *n.Y); err == nil {
				seed.Position = &pos
			}
		}
		nodes = append(nodes, seed)
	}

	edges := make([]aggregates.EdgeSeed, 0, len(req.Edges))
	for _, e := range req.Edges {
		edges = append(edges, aggregates.EdgeSeed{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			Relationship: e.Relationship,
			Animated:     e.Animated,
		})
	}

	if err := s.ReplaceGraph(nodes, edges); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, s.Snapshot())
}

// ClearGraph handles DELETE /sessions/{sessionID}/graph
func (h *GraphHandler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Clear()
	common.RespondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// RemoveNode handles DELETE /sessions/{sessionID}/nodes/{nodeID}
func (h *GraphHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	if !s.RemoveNode(nodeID) {
		common.RespondAppError(w, pkgerrors.NewNotFoundError("node"))
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// RemoveEdge handles DELETE /sessions/{sessionID}/edges/{edgeID}
func (h *GraphHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	edgeID := chi.URLParam(r, "edgeID")
	if !s.RemoveEdge(edgeID) {
		common.RespondAppError(w, pkgerrors.NewNotFoundError("edge"))
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *GraphHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	s, exists := h.sessions.Get(sessionID)
	if !exists {
		common.RespondAppError(w, pkgerrors.NewNotFoundError("session"))
		return nil, false
	}
	return s, true
}
