// Package grouping proposes merges of related inbox thoughts. Proposals
// are ephemeral: nothing is written until the user accepts or rejects a
// group.
package grouping

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/aiclient"
	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
)

// Gateway is the slice of the AI client grouping needs.
type Gateway interface {
	GroupThoughts(ctx context.Context, thoughts []aiclient.GroupThought) (aiclient.GroupingProposal, error)
}

// Service groups related thoughts and resolves accepted/rejected groups.
type Service struct {
	store     store.Store
	gw        Gateway
	offline   *classify.Offline
	window    time.Duration
	threshold float64
	log       zerolog.Logger
}

// New builds the grouping service. gw may be nil (offline only). window
// and threshold are the time-proximity and Jaccard-similarity policy
// constants (defaults 5m, 0.30).
func New(s store.Store, gw Gateway, offline *classify.Offline, window time.Duration, threshold float64, log zerolog.Logger) *Service {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if threshold <= 0 {
		threshold = 0.30
	}
	return &Service{store: s, gw: gw, offline: offline, window: window, threshold: threshold, log: log}
}

// GroupThoughts partitions items into groups and ungrouped exactly: every
// input appears in one of the two, never both. Online failures fall back
// to the offline heuristic.
func (s *Service) GroupThoughts(ctx context.Context, items []*model.Item) (model.GroupingResult, error) {
	if len(items) == 0 {
		return model.GroupingResult{
			Groups:    []model.ThoughtGroup{},
			Ungrouped: []*model.Item{},
			Summary:   "no thoughts to process",
		}, nil
	}

	if s.gw != nil {
		res, err := s.tryOnline(ctx, items)
		if err == nil {
			return res, nil
		}
		s.log.Debug().Err(err).Msg("online grouping failed, falling back offline")
	}
	return s.groupOffline(ctx, items)
}

func (s *Service) tryOnline(ctx context.Context, items []*model.Item) (model.GroupingResult, error) {
	byID := make(map[string]*model.Item, len(items))
	thoughts := make([]aiclient.GroupThought, 0, len(items))
	for _, it := range items {
		byID[it.ID] = it
		thoughts = append(thoughts, aiclient.GroupThought{ID: it.ID, Text: it.RawInput, CreatedAt: it.CreatedAt})
	}

	proposal, err := s.gw.GroupThoughts(ctx, thoughts)
	if err != nil {
		return model.GroupingResult{}, err
	}

	grouped := make(map[string]struct{})
	groups := make([]model.ThoughtGroup, 0, len(proposal.Groups))
	for _, g := range proposal.Groups {
		// Re-derive members from ids; unknown or already-claimed ids are
		// dropped rather than failing the whole response.
		var members []*model.Item
		for _, id := range g.ThoughtIDs {
			it, ok := byID[id]
			if !ok {
				continue
			}
			if _, taken := grouped[id]; taken {
				continue
			}
			grouped[id] = struct{}{}
			members = append(members, it)
		}
		if len(members) < 2 {
			for _, m := range members {
				delete(grouped, m.ID)
			}
			continue
		}
		conf := g.Confidence
		if conf <= 0 {
			conf = 0.7
		}
		groups = append(groups, model.ThoughtGroup{
			ID:                uuid.New().String(),
			Thoughts:          members,
			MergedContent:     g.MergedContent,
			SuggestedCategory: model.Category(g.SuggestedCategory),
			SuggestedTitle:    g.SuggestedTitle,
			Confidence:        conf,
			Reasoning:         g.Reasoning,
		})
	}

	var ungrouped []*model.Item
	for _, it := range items {
		if _, ok := grouped[it.ID]; !ok {
			ungrouped = append(ungrouped, it)
		}
	}

	summary := proposal.Summary
	if summary == "" {
		summary = fmt.Sprintf("processed %d thoughts", len(items))
	}
	return model.GroupingResult{Groups: groups, Ungrouped: ungrouped, Summary: summary}, nil
}

// groupOffline is the deterministic heuristic: time-sorted anchor scan
// with a proximity window and token-overlap threshold.
func (s *Service) groupOffline(ctx context.Context, items []*model.Item) (model.GroupingResult, error) {
	sorted := make([]*model.Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	processed := make(map[string]struct{})
	var groups []model.ThoughtGroup

	for i, anchor := range sorted {
		if _, done := processed[anchor.ID]; done {
			continue
		}
		processed[anchor.ID] = struct{}{}
		members := []*model.Item{anchor}

		for j := i + 1; j < len(sorted); j++ {
			next := sorted[j]
			if _, done := processed[next.ID]; done {
				continue
			}
			if next.CreatedAt.Sub(anchor.CreatedAt) > s.window {
				break // time-sorted, nothing later can qualify
			}
			if Jaccard(anchor.RawInput, next.RawInput) > s.threshold {
				processed[next.ID] = struct{}{}
				members = append(members, next)
			}
		}

		if len(members) < 2 {
			continue
		}

		merged := members[0].RawInput
		for _, m := range members[1:] {
			merged += ". " + m.RawInput
		}

		cat, err := s.offline.Categorize(ctx, merged)
		if err != nil {
			return model.GroupingResult{}, fmt.Errorf("infer group category: %w", err)
		}
		groups = append(groups, model.ThoughtGroup{
			ID:                uuid.New().String(),
			Thoughts:          members,
			MergedContent:     merged,
			SuggestedCategory: cat.Category,
			SuggestedTitle:    cat.Title,
			Confidence:        0.6,
			Reasoning:         fmt.Sprintf("%d thoughts recorded within %s", len(members), s.window),
		})
	}

	var ungrouped []*model.Item
	grouped := make(map[string]struct{})
	for _, g := range groups {
		for _, m := range g.Thoughts {
			grouped[m.ID] = struct{}{}
		}
	}
	for _, it := range items {
		if _, ok := grouped[it.ID]; !ok {
			ungrouped = append(ungrouped, it)
		}
	}

	return model.GroupingResult{
		Groups:    groups,
		Ungrouped: ungrouped,
		Summary:   fmt.Sprintf("found %d potential groups from %d thoughts (offline mode)", len(groups), len(items)),
	}, nil
}

// AcceptGroup creates the merged item and archives every source.
func (s *Service) AcceptGroup(ctx context.Context, g model.ThoughtGroup) (*model.Item, error) {
	if len(g.Thoughts) < 2 {
		return nil, fmt.Errorf("%w: a group needs at least two thoughts", model.ErrValidation)
	}
	merged, err := s.store.Items().Create(ctx, &model.Item{
		RawInput: g.MergedContent,
		Category: g.SuggestedCategory,
		Title:    g.SuggestedTitle,
		Tags:     []string{},
		Urgency:  model.UrgencyNone,
		Status:   model.StatusCaptured,
	})
	if err != nil {
		return nil, fmt.Errorf("create merged item: %w", err)
	}
	archived := model.StatusArchived
	for _, t := range g.Thoughts {
		if _, err := s.store.Items().Update(ctx, t.ID, model.ItemUpdate{Status: &archived}); err != nil {
			s.log.Error().Err(err).Str("item_id", t.ID).Msg("archive source thought failed")
		}
	}
	return merged, nil
}

// RejectGroup keeps the thoughts separate, moving each to captured.
func (s *Service) RejectGroup(ctx context.Context, g model.ThoughtGroup) error {
	captured := model.StatusCaptured
	for _, t := range g.Thoughts {
		if _, err := s.store.Items().Update(ctx, t.ID, model.ItemUpdate{Status: &captured}); err != nil {
			return fmt.Errorf("return thought %s to captured: %w", t.ID, err)
		}
	}
	return nil
}
