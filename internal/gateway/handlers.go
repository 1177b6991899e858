// Package gateway is the server-side AI collaborator: it owns the
// prompts, calls the chat-completion API, and enforces the strict
// bare-JSON response contract. A response that fails to parse, or whose
// JSON omits required fields, is a hard 502 at this boundary; the
// capture service decides what to do about it.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/api/recovery"
	"github.com/mindstash/mindstash/internal/api/respond"
	"github.com/mindstash/mindstash/internal/model"
)

// Completer is the LLM dependency.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Handler serves the /categorize endpoints.
type Handler struct {
	llm Completer
	log zerolog.Logger
}

// NewHandler constructs the gateway handler.
func NewHandler(llm Completer, log zerolog.Logger) *Handler {
	return &Handler{llm: llm, log: log}
}

// NewRouter mounts all gateway routes.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	router.HandleFunc("/categorize", h.Categorize).Methods("POST")
	router.HandleFunc("/categorize/extract-multiple", h.ExtractMultiple).Methods("POST")
	router.HandleFunc("/categorize/group-thoughts", h.GroupThoughts).Methods("POST")
	router.HandleFunc("/categorize/detect-projects", h.DetectProjects).Methods("POST")
	router.HandleFunc("/categorize/merge-preview", h.MergePreview).Methods("POST")
	router.HandleFunc("/categorize/suggest-tags", h.SuggestTags).Methods("POST")
	router.HandleFunc("/categorize/health", h.Health).Methods("GET")
	return router
}

type categorizeRequest struct {
	RawInput    string             `json:"rawInput"`
	UserContext *model.UserContext `json:"userContext"`
}

// Categorize POST /categorize
func (h *Handler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RawInput == "" || req.UserContext == nil {
		respond.WriteBadRequest(w, "Missing required fields: rawInput and userContext")
		return
	}

	var out model.Categorization
	if !h.complete(w, r.Context(), buildCategorizePrompt(req.RawInput, *req.UserContext), &out) {
		return
	}
	if !model.ValidCategory(string(out.Category)) || !model.ValidUrgency(string(out.Urgency)) || out.Title == "" {
		h.writeMalformed(w, "model output missing required categorization fields")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ExtractMultiple POST /categorize/extract-multiple
func (h *Handler) ExtractMultiple(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RawInput == "" || req.UserContext == nil {
		respond.WriteBadRequest(w, "Missing required fields: rawInput and userContext")
		return
	}

	var out model.ExtractionResult
	if !h.complete(w, r.Context(), buildExtractionPrompt(req.RawInput, *req.UserContext), &out) {
		return
	}
	if out.Items == nil {
		h.writeMalformed(w, "model output missing items array")
		return
	}
	for _, it := range out.Items {
		if !model.ValidCategory(string(it.Category)) || !model.ValidUrgency(string(it.Urgency)) || it.Title == "" {
			h.writeMalformed(w, "model output contains an invalid extracted item")
			return
		}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

type groupThought struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupThoughts POST /categorize/group-thoughts
func (h *Handler) GroupThoughts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Thoughts []groupThought `json:"thoughts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Thoughts) == 0 {
		respond.WriteBadRequest(w, "Missing required field: thoughts")
		return
	}

	var out struct {
		Groups []struct {
			ThoughtIDs        []string `json:"thoughtIds"`
			MergedContent     string   `json:"mergedContent"`
			SuggestedCategory string   `json:"suggestedCategory"`
			SuggestedTitle    string   `json:"suggestedTitle"`
			Confidence        float64  `json:"confidence"`
			Reasoning         string   `json:"reasoning"`
		} `json:"groups"`
		Summary string `json:"summary"`
	}
	if !h.complete(w, r.Context(), buildGroupingPrompt(req.Thoughts), &out) {
		return
	}
	if out.Groups == nil {
		h.writeMalformed(w, "model output missing groups array")
		return
	}
	for _, g := range out.Groups {
		if !model.ValidCategory(g.SuggestedCategory) || len(g.ThoughtIDs) == 0 {
			h.writeMalformed(w, "model output contains an invalid group")
			return
		}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

type projectItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	RawInput string   `json:"rawInput"`
}

// DetectProjects POST /categorize/detect-projects
func (h *Handler) DetectProjects(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items            []projectItem      `json:"items"`
		ExistingProjects []string           `json:"existingProjects"`
		UserContext      *model.UserContext `json:"userContext"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 || req.UserContext == nil {
		respond.WriteBadRequest(w, "Missing required fields: items and userContext")
		return
	}

	var out model.ProjectDetection
	if !h.complete(w, r.Context(), buildProjectDetectionPrompt(req.Items, req.ExistingProjects, *req.UserContext), &out) {
		return
	}
	if out.Suggestions == nil {
		h.writeMalformed(w, "model output missing suggestions array")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

type mergeItem struct {
	Title    string   `json:"title"`
	RawInput string   `json:"rawInput"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// MergePreview POST /categorize/merge-preview
func (h *Handler) MergePreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item1 *mergeItem `json:"item1"`
		Item2 *mergeItem `json:"item2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Item1 == nil || req.Item2 == nil {
		respond.WriteBadRequest(w, "Missing required fields: item1 and item2")
		return
	}

	var out model.MergePreview
	if !h.complete(w, r.Context(), buildMergePreviewPrompt(*req.Item1, *req.Item2), &out) {
		return
	}
	if !model.ValidCategory(string(out.SuggestedCategory)) || out.MergedTitle == "" {
		h.writeMalformed(w, "model output missing required merge fields")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SuggestTags POST /categorize/suggest-tags
func (h *Handler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawInput    string             `json:"rawInput"`
		Category    string             `json:"category"`
		UserContext *model.UserContext `json:"userContext"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RawInput == "" || req.UserContext == nil {
		respond.WriteBadRequest(w, "Missing required fields: rawInput and userContext")
		return
	}

	var out struct {
		Tags []string `json:"tags"`
	}
	if !h.complete(w, r.Context(), buildTagSuggestionPrompt(req.RawInput, req.Category, *req.UserContext), &out) {
		return
	}
	if out.Tags == nil {
		h.writeMalformed(w, "model output missing tags array")
		return
	}
	if len(out.Tags) > 5 {
		out.Tags = out.Tags[:5]
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Health GET /categorize/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// complete runs the prompt and decodes the strict bare-JSON reply into
// out. Writes the error response and returns false on any failure.
func (h *Handler) complete(w http.ResponseWriter, ctx context.Context, prompt string, out interface{}) bool {
	text, err := h.llm.Complete(ctx, prompt)
	if err != nil {
		h.log.Error().Err(err).Msg("llm completion failed")
		respond.WriteError(w, http.StatusBadGateway, "AI processing failed")
		return false
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		h.writeMalformed(w, "model did not return valid JSON")
		return false
	}
	return true
}

func (h *Handler) writeMalformed(w http.ResponseWriter, msg string) {
	h.log.Error().Str("reason", msg).Msg("malformed model response")
	respond.WriteError(w, http.StatusBadGateway, msg)
}
