package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mindstash/mindstash/internal/api/respond"
	"github.com/mindstash/mindstash/internal/model"
)

// writeServiceError maps domain error kinds to HTTP codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrQuotaExceeded):
		respond.WriteError(w, http.StatusInsufficientStorage, err.Error())
	case errors.Is(err, model.ErrAIUnavailable):
		respond.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

type ItemHandler struct {
	capture CaptureService
}

func NewItemHandler(capture CaptureService) *ItemHandler {
	return &ItemHandler{capture: capture}
}

// CreateItem POST /api/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawInput string `json:"rawInput"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	it, err := h.capture.Capture(r.Context(), req.RawInput)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, it)
}

// ListItems GET /api/items?status=&category=
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	category := r.URL.Query().Get("category")
	if status != "" && !validStatus(status) {
		respond.WriteBadRequest(w, "unknown status filter")
		return
	}
	if category != "" && !model.ValidCategory(category) {
		respond.WriteBadRequest(w, "unknown category filter")
		return
	}
	items, err := h.capture.List(r.Context(), model.Status(status), model.Category(category))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []*model.Item{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

// GetItem GET /api/items/{itemId}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.capture.Get(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, it)
}

// UpdateItem PATCH /api/items/{itemId}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category    *string   `json:"category"`
		Subcategory *string   `json:"subcategory"`
		Title       *string   `json:"title"`
		Tags        *[]string `json:"tags"`
		Urgency     *string   `json:"urgency"`
		Status      *string   `json:"status"`
		Synced      *bool     `json:"synced"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	var upd model.ItemUpdate
	if req.Category != nil {
		if !model.ValidCategory(*req.Category) {
			respond.WriteBadRequest(w, "unknown category")
			return
		}
		c := model.Category(*req.Category)
		upd.Category = &c
	}
	if req.Urgency != nil {
		if !model.ValidUrgency(*req.Urgency) {
			respond.WriteBadRequest(w, "unknown urgency")
			return
		}
		u := model.Urgency(*req.Urgency)
		upd.Urgency = &u
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			respond.WriteBadRequest(w, "unknown status")
			return
		}
		s := model.Status(*req.Status)
		upd.Status = &s
	}
	upd.Subcategory = req.Subcategory
	upd.Title = req.Title
	upd.Tags = req.Tags
	upd.Synced = req.Synced

	it, err := h.capture.Update(r.Context(), mux.Vars(r)["itemId"], upd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, it)
}

// DeleteItem DELETE /api/items/{itemId}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.capture.Delete(r.Context(), mux.Vars(r)["itemId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClassifyItem POST /api/items/{itemId}/classify
func (h *ItemHandler) ClassifyItem(w http.ResponseWriter, r *http.Request) {
	it, err := h.capture.Reclassify(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, it)
}

// SetReminder POST /api/items/{itemId}/reminder
func (h *ItemHandler) SetReminder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		At      *time.Time `json:"at"`
		Message string     `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	it, err := h.capture.SetReminder(r.Context(), mux.Vars(r)["itemId"], req.At, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, it)
}

// ClearReminder DELETE /api/items/{itemId}/reminder
func (h *ItemHandler) ClearReminder(w http.ResponseWriter, r *http.Request) {
	it, err := h.capture.ClearReminder(r.Context(), mux.Vars(r)["itemId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, it)
}

func validStatus(s string) bool {
	switch model.Status(s) {
	case model.StatusInbox, model.StatusCaptured, model.StatusActed, model.StatusArchived:
		return true
	}
	return false
}
