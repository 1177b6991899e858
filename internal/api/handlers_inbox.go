package api

import (
	"encoding/json"
	"net/http"

	"github.com/mindstash/mindstash/internal/api/respond"
	"github.com/mindstash/mindstash/internal/model"
)

type InboxHandler struct {
	inbox    InboxService
	grouping GroupingService
	capture  CaptureService
}

func NewInboxHandler(in InboxService, gr GroupingService, cap CaptureService) *InboxHandler {
	return &InboxHandler{inbox: in, grouping: gr, capture: cap}
}

// ProcessInbox POST /api/inbox/process
func (h *InboxHandler) ProcessInbox(w http.ResponseWriter, r *http.Request) {
	res, err := h.inbox.ProcessPendingItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// PendingStatus GET /api/inbox/pending
func (h *InboxHandler) PendingStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.inbox.PendingCount(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   count,
		"running": h.inbox.IsRunning(),
	})
}

// GroupThoughts POST /api/inbox/groups
func (h *InboxHandler) GroupThoughts(w http.ResponseWriter, r *http.Request) {
	items, err := h.capture.List(r.Context(), model.StatusInbox, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.grouping.GroupThoughts(r.Context(), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// AcceptGroup POST /api/inbox/groups/accept
func (h *InboxHandler) AcceptGroup(w http.ResponseWriter, r *http.Request) {
	var g model.ThoughtGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	merged, err := h.grouping.AcceptGroup(r.Context(), g)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, merged)
}

// RejectGroup POST /api/inbox/groups/reject
func (h *InboxHandler) RejectGroup(w http.ResponseWriter, r *http.Request) {
	var g model.ThoughtGroup
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.grouping.RejectGroup(r.Context(), g); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
