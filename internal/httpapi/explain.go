package httpapi

import (
	"net/http"

	"github.com/roamdigital/explainer/internal/model"
	"github.com/roamdigital/explainer/internal/orchestrator"
)

// explainRequest is the wire shape POST /api/explain and
// POST /api/explain/stream share.
type explainRequest struct {
	Question       string             `json:"question"`
	Tenant         string             `json:"tenant,omitempty"`
	Hostname       string             `json:"hostname,omitempty"`
	PageURI        string             `json:"pageUri,omitempty"`
	ComponentIndex int                `json:"componentIndex,omitempty"`
	History        []model.ChatMessage `json:"history,omitempty"`
}

func (req explainRequest) toOrchestrator() orchestrator.Request {
	return orchestrator.Request{
		Question:       req.Question,
		Tenant:         req.Tenant,
		Hostname:       req.Hostname,
		PageURI:        req.PageURI,
		ComponentIndex: req.ComponentIndex,
		History:        req.History,
	}
}

func (s *server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := s.orch.Explain(r.Context(), req.toOrchestrator())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
