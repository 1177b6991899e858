// Package aiclient is the HTTP client for the categorization gateway.
// It speaks the /categorize wire contract and maps transport failures to
// model.ErrAIUnavailable and contract violations to
// model.ErrMalformedResponse. Fallback policy lives with the callers.
package aiclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mindstash/mindstash/internal/model"
)

const maxTitleLen = 60

// Client calls the categorization gateway.
type Client struct {
	http *resty.Client
	user model.UserContext
}

// New builds a client for the given gateway base URL, e.g.
// "http://localhost:8787/categorize". The user context is embedded in
// every categorization request so entity extraction can match known
// project names.
func New(baseURL string, timeout time.Duration, user model.UserContext) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		user: user,
	}
}

type categorizeRequest struct {
	RawInput    string            `json:"rawInput"`
	UserContext model.UserContext `json:"userContext"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Categorize classifies a single transcript. Malformed gateway output
// (bad enums, missing title) is a hard error; the caller decides whether
// to fall back offline.
func (c *Client) Categorize(ctx context.Context, text string) (model.Categorization, error) {
	var out model.Categorization
	if err := c.post(ctx, "", categorizeRequest{RawInput: text, UserContext: c.user}, &out); err != nil {
		return model.Categorization{}, err
	}
	if !model.ValidCategory(string(out.Category)) {
		return model.Categorization{}, fmt.Errorf("%w: unknown category %q", model.ErrMalformedResponse, out.Category)
	}
	if !model.ValidUrgency(string(out.Urgency)) {
		return model.Categorization{}, fmt.Errorf("%w: unknown urgency %q", model.ErrMalformedResponse, out.Urgency)
	}
	if out.Title == "" {
		return model.Categorization{}, fmt.Errorf("%w: empty title", model.ErrMalformedResponse)
	}
	if runes := []rune(out.Title); len(runes) > maxTitleLen {
		out.Title = string(runes[:maxTitleLen])
	}
	if out.Confidence <= 0 || out.Confidence > 1 {
		out.Confidence = 0.5
	}
	return out, nil
}

// ExtractItems asks the gateway to split a transcript into discrete items.
func (c *Client) ExtractItems(ctx context.Context, text string) (model.ExtractionResult, error) {
	var out model.ExtractionResult
	if err := c.post(ctx, "/extract-multiple", categorizeRequest{RawInput: text, UserContext: c.user}, &out); err != nil {
		return model.ExtractionResult{}, err
	}
	for i := range out.Items {
		it := &out.Items[i]
		if !model.ValidCategory(string(it.Category)) {
			return model.ExtractionResult{}, fmt.Errorf("%w: unknown category %q", model.ErrMalformedResponse, it.Category)
		}
		if !model.ValidUrgency(string(it.Urgency)) {
			return model.ExtractionResult{}, fmt.Errorf("%w: unknown urgency %q", model.ErrMalformedResponse, it.Urgency)
		}
		if it.Title == "" {
			return model.ExtractionResult{}, fmt.Errorf("%w: extracted item with empty title", model.ErrMalformedResponse)
		}
		if it.RawText == "" {
			it.RawText = text
		}
		if it.Tags == nil {
			it.Tags = []string{}
		}
	}
	return out, nil
}

// GroupThought is one input thought for grouping: just enough for the
// gateway to reason about relatedness.
type GroupThought struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupProposal is one suggested merge, referencing inputs by id.
type GroupProposal struct {
	ThoughtIDs        []string `json:"thoughtIds"`
	MergedContent     string   `json:"mergedContent"`
	SuggestedCategory string   `json:"suggestedCategory"`
	SuggestedTitle    string   `json:"suggestedTitle"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
}

// GroupingProposal is the gateway's grouping response.
type GroupingProposal struct {
	Groups  []GroupProposal `json:"groups"`
	Summary string          `json:"summary"`
}

// GroupThoughts proposes id-based groupings for the given thoughts.
// Validation of the referenced ids is the caller's job.
func (c *Client) GroupThoughts(ctx context.Context, thoughts []GroupThought) (GroupingProposal, error) {
	req := struct {
		Thoughts    []GroupThought    `json:"thoughts"`
		UserContext model.UserContext `json:"userContext"`
	}{Thoughts: thoughts, UserContext: c.user}
	var out GroupingProposal
	if err := c.post(ctx, "/group-thoughts", req, &out); err != nil {
		return GroupingProposal{}, err
	}
	for _, g := range out.Groups {
		if !model.ValidCategory(g.SuggestedCategory) {
			return GroupingProposal{}, fmt.Errorf("%w: unknown category %q", model.ErrMalformedResponse, g.SuggestedCategory)
		}
	}
	return out, nil
}

// ProjectItem is the per-item payload for project detection.
type ProjectItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	RawInput string   `json:"rawInput"`
}

// DetectProjects asks the gateway to find project-shaped clusters among
// the given items, excluding names the user already has.
func (c *Client) DetectProjects(ctx context.Context, items []ProjectItem, existing []string) (model.ProjectDetection, error) {
	req := struct {
		Items            []ProjectItem     `json:"items"`
		ExistingProjects []string          `json:"existingProjects"`
		UserContext      model.UserContext `json:"userContext"`
	}{Items: items, ExistingProjects: existing, UserContext: c.user}
	var out model.ProjectDetection
	if err := c.post(ctx, "/detect-projects", req, &out); err != nil {
		return model.ProjectDetection{}, err
	}
	return out, nil
}

// MergeItem is the per-item payload for merge preview.
type MergeItem struct {
	Title    string   `json:"title"`
	RawInput string   `json:"rawInput"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// MergePreview asks the gateway what merging two items would produce.
func (c *Client) MergePreview(ctx context.Context, a, b MergeItem) (model.MergePreview, error) {
	req := struct {
		Item1       MergeItem         `json:"item1"`
		Item2       MergeItem         `json:"item2"`
		UserContext model.UserContext `json:"userContext"`
	}{Item1: a, Item2: b, UserContext: c.user}
	var out model.MergePreview
	if err := c.post(ctx, "/merge-preview", req, &out); err != nil {
		return model.MergePreview{}, err
	}
	if !model.ValidCategory(string(out.SuggestedCategory)) {
		return model.MergePreview{}, fmt.Errorf("%w: unknown category %q", model.ErrMalformedResponse, out.SuggestedCategory)
	}
	return out, nil
}

// SuggestTags asks for up to five tags for the given text.
func (c *Client) SuggestTags(ctx context.Context, text string, category model.Category) ([]string, error) {
	req := struct {
		RawInput    string            `json:"rawInput"`
		Category    string            `json:"category"`
		UserContext model.UserContext `json:"userContext"`
	}{RawInput: text, Category: string(category), UserContext: c.user}
	var out struct {
		Tags []string `json:"tags"`
	}
	if err := c.post(ctx, "/suggest-tags", req, &out); err != nil {
		return nil, err
	}
	if len(out.Tags) > 5 {
		out.Tags = out.Tags[:5]
	}
	return out.Tags, nil
}

// Health pings the gateway.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAIUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: gateway health returned %d", model.ErrAIUnavailable, resp.StatusCode())
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	var errBody errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		SetError(&errBody).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrAIUnavailable, err)
	}
	if resp.IsError() {
		if errBody.Error != "" {
			return fmt.Errorf("%w: gateway returned %d: %s", model.ErrAIUnavailable, resp.StatusCode(), errBody.Error)
		}
		return fmt.Errorf("%w: gateway returned %d", model.ErrAIUnavailable, resp.StatusCode())
	}
	return nil
}
