// Package projects detects project-shaped clusters in captured items,
// previews merges, and suggests tags. Detection output is inert: a
// suggestion becomes a Project only on explicit user approval, and a
// dismissed suggestion is simply not persisted.
package projects

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/aiclient"
	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
)

// Gateway is the slice of the AI client this service needs.
type Gateway interface {
	DetectProjects(ctx context.Context, items []aiclient.ProjectItem, existing []string) (model.ProjectDetection, error)
	MergePreview(ctx context.Context, a, b aiclient.MergeItem) (model.MergePreview, error)
	SuggestTags(ctx context.Context, text string, category model.Category) ([]string, error)
}

// neonPalette is assigned round-robin to offline suggestions.
var neonPalette = []string{"#B026FF", "#00F0FF", "#FF2E97", "#00FF94", "#F59E0B"}

var offlineTagCues = map[string][]string{
	"urgent":   {"urgent", "asap", "immediately"},
	"work":     {"work", "job", "office", "meeting"},
	"personal": {"home", "family", "personal"},
	"health":   {"health", "exercise", "gym", "doctor"},
	"finance":  {"money", "budget", "pay", "bill"},
	"creative": {"idea", "creative", "design", "art"},
}

// Service implements project detection, merge preview and tag suggestion.
type Service struct {
	store store.Store
	gw    Gateway
	log   zerolog.Logger
}

// New builds the service. gw may be nil (offline only).
func New(s store.Store, gw Gateway, log zerolog.Logger) *Service {
	return &Service{store: s, gw: gw, log: log}
}

// DetectProjects proposes project candidates for the given items. Online
// failures fall back to the offline frequency heuristic.
func (s *Service) DetectProjects(ctx context.Context, items []*model.Item) (model.ProjectDetection, error) {
	if s.gw != nil {
		existing, err := s.existingProjectNames(ctx)
		if err != nil {
			return model.ProjectDetection{}, err
		}
		payload := make([]aiclient.ProjectItem, 0, len(items))
		for _, it := range items {
			payload = append(payload, aiclient.ProjectItem{
				ID: it.ID, Title: it.Title, Category: string(it.Category),
				Tags: it.Tags, RawInput: it.RawInput,
			})
		}
		det, err := s.gw.DetectProjects(ctx, payload, existing)
		if err == nil {
			return det, nil
		}
		s.log.Debug().Err(err).Msg("online project detection failed, falling back offline")
	}
	return detectOffline(items), nil
}

// detectOffline clusters items by shared project-entity mentions and
// tags; a key needs three distinct items to become a suggestion.
func detectOffline(items []*model.Item) model.ProjectDetection {
	byKey := make(map[string]map[string]struct{})
	add := func(key, itemID string) {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if byKey[key] == nil {
			byKey[key] = make(map[string]struct{})
		}
		byKey[key][itemID] = struct{}{}
	}
	for _, it := range items {
		for _, p := range it.Entities.Projects {
			add(p, it.ID)
		}
		for _, tag := range it.Tags {
			add(tag, it.ID)
		}
	}

	keys := make([]string, 0, len(byKey))
	for k, ids := range byKey {
		if len(ids) >= 3 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys) // deterministic order and palette assignment

	suggestions := make([]model.ProjectSuggestion, 0, len(keys))
	for i, key := range keys {
		ids := make([]string, 0, len(byKey[key]))
		for id := range byKey[key] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		n := len(ids)
		conf := 0.70 + 0.05*float64(n)
		if conf > 0.95 {
			conf = 0.95
		}
		r, size := utf8.DecodeRuneInString(key)
		suggestions = append(suggestions, model.ProjectSuggestion{
			ProjectName:    string(unicode.ToUpper(r)) + key[size:],
			Description:    fmt.Sprintf("Found %d items related to %q", n, key),
			RelatedItemIDs: ids,
			Confidence:     conf,
			Reasoning:      fmt.Sprintf("detected recurring keyword/tag %q across %d items", key, n),
			SuggestedColor: neonPalette[i%len(neonPalette)],
		})
	}

	reasoning := "no recurring patterns detected"
	if len(suggestions) > 0 {
		reasoning = fmt.Sprintf("offline mode: found %d potential project(s)", len(suggestions))
	}
	return model.ProjectDetection{Suggestions: suggestions, Reasoning: reasoning}
}

// ApproveSuggestion persists a suggestion as a real Project.
func (s *Service) ApproveSuggestion(ctx context.Context, sg model.ProjectSuggestion) (*model.Project, error) {
	if strings.TrimSpace(sg.ProjectName) == "" {
		return nil, fmt.Errorf("%w: project name is required", model.ErrValidation)
	}
	color := sg.SuggestedColor
	if color == "" {
		color = neonPalette[0]
	}
	desc := sg.Description
	return s.store.Projects().Create(ctx, &model.Project{
		Name:          sg.ProjectName,
		Description:   &desc,
		Color:         color,
		ItemIDs:       sg.RelatedItemIDs,
		SuggestedByAI: true,
		UserApproved:  true,
	})
}

// GenerateMergePreview describes what merging two items would produce.
// The offline fallback is deliberately naive; merge is always
// user-confirmed, so a poor preview only costs a rejected suggestion.
func (s *Service) GenerateMergePreview(ctx context.Context, a, b *model.Item) (model.MergePreview, error) {
	if s.gw != nil {
		preview, err := s.gw.MergePreview(ctx,
			aiclient.MergeItem{Title: a.Title, RawInput: a.RawInput, Category: string(a.Category), Tags: a.Tags},
			aiclient.MergeItem{Title: b.Title, RawInput: b.RawInput, Category: string(b.Category), Tags: b.Tags},
		)
		if err == nil {
			return preview, nil
		}
		s.log.Debug().Err(err).Msg("online merge preview failed, falling back offline")
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, t := range append(append([]string{}, a.Tags...), b.Tags...) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return model.MergePreview{
		MergedTitle:       a.Title + " & " + b.Title,
		MergedRawInput:    a.RawInput + " " + b.RawInput,
		MergedTags:        tags,
		SuggestedCategory: a.Category,
		Confidence:        0.6,
		Reasoning:         "offline mode: basic merge combining both items",
	}, nil
}

// SuggestTags proposes up to five tags online, three offline.
func (s *Service) SuggestTags(ctx context.Context, it *model.Item) ([]string, error) {
	if s.gw != nil {
		tags, err := s.gw.SuggestTags(ctx, it.RawInput, it.Category)
		if err == nil {
			return tags, nil
		}
		s.log.Debug().Err(err).Msg("online tag suggestion failed, falling back offline")
	}

	lower := strings.ToLower(it.RawInput + " " + it.Title)
	cues := make([]string, 0, len(offlineTagCues))
	for tag := range offlineTagCues {
		cues = append(cues, tag)
	}
	sort.Strings(cues)

	var tags []string
	for _, tag := range cues {
		for _, kw := range offlineTagCues[tag] {
			if strings.Contains(lower, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}
	for _, p := range it.Entities.Projects {
		tags = append(tags, strings.ToLower(p))
	}
	if len(tags) > 3 {
		tags = tags[:3]
	}
	return tags, nil
}

func (s *Service) existingProjectNames(ctx context.Context) ([]string, error) {
	existing, err := s.store.Projects().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	names := make([]string, 0, len(existing))
	for _, p := range existing {
		names = append(names, p.Name)
	}
	return names, nil
}
