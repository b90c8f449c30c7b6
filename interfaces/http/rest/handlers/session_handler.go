package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindgraph-backend/application/reconciler"
	"mindgraph-backend/application/session"
	"mindgraph-backend/domain/core/aggregates"
	"mindgraph-backend/interfaces/websocket"
	"mindgraph-backend/pkg/common"
	pkgerrors "mindgraph-backend/pkg/errors"
	"mindgraph-backend/pkg/utils"
)

// SessionHandler handles session lifecycle and delta ingestion
type SessionHandler struct {
	sessions *session.Manager
	hub      *websocket.Hub
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Manager, hub *websocket.Hub, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		hub:      hub,
		logger:   logger,
	}
}

// CreateSessionResponse is returned when a session is opened
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	CreatedAt string `json:"createdAt"`
}

// UtteranceRequest carries one conversation fragment
type UtteranceRequest struct {
	Text string `json:"text" validate:"required"`
}

// MergeRequest asks to collapse nodes into one
type MergeRequest struct {
	NodeIDs     []string `json:"nodeIds" validate:"required,min=2"`
	NewLabel    string   `json:"newLabel" validate:"required"`
	NewCategory string   `json:"newCategory,omitempty" validate:"omitempty,oneof=input system action output decision"`
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()

	// Stream every committed mutation to this session's subscribers.
	sessionID := s.ID()
	s.OnCommit(func(snapshot aggregates.Snapshot) {
		if err := h.hub.SendToSession(sessionID, "GRAPH_UPDATED", snapshot); err != nil {
			h.logger.Warn("Failed to broadcast graph update",
				zap.String("sessionID", sessionID),
				zap.Error(err),
			)
		}
	})

	common.RespondJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: sessionID,
		CreatedAt: utils.NowRFC3339(),
	})
}

// CloseSession handles DELETE /sessions/{sessionID}
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.sessions.Close(sessionID) {
		common.RespondAppError(w, pkgerrors.NewNotFoundError("session"))
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

// SubmitDelta handles POST /sessions/{sessionID}/deltas
func (h *SessionHandler) SubmitDelta(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var delta reconciler.ProposedDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		common.RespondError(w, http.StatusBadRequest, "PARSE_FAILURE", "Invalid delta payload: "+err.Error())
		return
	}

	report, err := s.SubmitDelta(&delta)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}

// SubmitRefinement handles POST /sessions/{sessionID}/refinements
func (h *SessionHandler) SubmitRefinement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var ref reconciler.Refinement
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		common.RespondError(w, http.StatusBadRequest, "PARSE_FAILURE", "Invalid refinement payload: "+err.Error())
		return
	}

	report, err := s.SubmitRefinement(&ref)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}

// Finalize handles POST /sessions/{sessionID}/finalize
func (h *SessionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, http.StatusOK, s.Finalize())
}

// Merge handles POST /sessions/{sessionID}/merge
func (h *SessionHandler) Merge(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "PARSE_FAILURE", "Invalid merge payload: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	merged, err := s.Merge(req.NodeIDs, req.NewLabel, req.NewCategory)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"id":    merged.ID().String(),
		"label": merged.Label(),
	})
}

// AppendUtterance handles POST /sessions/{sessionID}/utterances
func (h *SessionHandler) AppendUtterance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req UtteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "PARSE_FAILURE", "Invalid utterance payload: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	report, err := s.AppendUtterance(r.Context(), req.Text)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}

// session resolves the {sessionID} URL parameter, responding 404 on a miss
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	s, exists := h.sessions.Get(sessionID)
	if !exists {
		common.RespondAppError(w, pkgerrors.NewNotFoundError("session"))
		return nil, false
	}
	return s, true
}
