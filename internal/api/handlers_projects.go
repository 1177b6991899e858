package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindstash/mindstash/internal/api/respond"
	"github.com/mindstash/mindstash/internal/model"
)

type ProjectHandler struct {
	projects ProjectService
	store    ProjectStore
	capture  CaptureService
}

func NewProjectHandler(ps ProjectService, store ProjectStore, cap CaptureService) *ProjectHandler {
	return &ProjectHandler{projects: ps, store: store, capture: cap}
}

// DetectProjects POST /api/projects/detect
func (h *ProjectHandler) DetectProjects(w http.ResponseWriter, r *http.Request) {
	items, err := h.capture.List(r.Context(), "", "")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	det, err := h.projects.DetectProjects(r.Context(), items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, det)
}

// ApproveProject POST /api/projects
func (h *ProjectHandler) ApproveProject(w http.ResponseWriter, r *http.Request) {
	var sg model.ProjectSuggestion
	if err := json.NewDecoder(r.Body).Decode(&sg); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	pr, err := h.projects.ApproveSuggestion(r.Context(), sg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, pr)
}

// ListProjects GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	prs, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if prs == nil {
		prs = []*model.Project{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": prs, "count": len(prs)})
}

// DeleteProject DELETE /api/projects/{projectId}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteProject(r.Context(), mux.Vars(r)["projectId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MergePreview POST /api/items/{itemId}/merge-preview
func (h *ProjectHandler) MergePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OtherID string `json:"otherId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.OtherID == "" {
		respond.WriteBadRequest(w, "otherId is required")
		return
	}
	a, err := h.capture.Get(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	b, err := h.capture.Get(r.Context(), req.OtherID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	preview, err := h.projects.GenerateMergePreview(r.Context(), a, b)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, preview)
}

// SuggestTags GET /api/items/{itemId}/tags/suggest
func (h *ProjectHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	it, err := h.capture.Get(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	tags, err := h.projects.SuggestTags(r.Context(), it)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}
