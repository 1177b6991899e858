// Package capture is the instant-ack entry point for new thoughts. A
// capture writes synchronously with safe defaults and returns at once;
// categorization happens afterwards in the inbox worker.
package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/events"
	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/notify"
	"github.com/mindstash/mindstash/internal/store"
)

// Service owns item CRUD, reminder descriptors, and on-demand
// reclassification of a single item.
type Service struct {
	store   store.Store
	bus     *events.Bus
	online  classify.Classifier
	offline classify.Classifier
	log     zerolog.Logger
}

// New builds the capture service. bus may be nil; online may be nil when
// the gateway is disabled, in which case reclassification runs the
// heuristics directly.
func New(s store.Store, bus *events.Bus, online classify.Classifier, offline classify.Classifier, log zerolog.Logger) *Service {
	return &Service{store: s, bus: bus, online: online, offline: offline, log: log}
}

// Capture stores a raw transcript immediately. The item starts as an
// uncategorized note flagged for AI processing, so a categorization
// failure later degrades to "uncategorized note", never to data loss.
func (s *Service) Capture(ctx context.Context, rawInput string) (*model.Item, error) {
	if strings.TrimSpace(rawInput) == "" {
		return nil, fmt.Errorf("%w: rawInput is required", model.ErrValidation)
	}
	it, err := s.store.Items().Create(ctx, &model.Item{
		RawInput:            rawInput,
		Category:            model.CategoryNote,
		Title:               makeTitle(rawInput),
		Tags:                []string{},
		Urgency:             model.UrgencyNone,
		Status:              model.StatusInbox,
		PendingAIProcessing: true,
	})
	if err != nil {
		return nil, err
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{Kind: events.EventItemCaptured, ItemID: it.ID})
	}
	s.log.Info().Str("item_id", it.ID).Msg("captured")
	return it, nil
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (*model.Item, error) {
	return s.store.Items().Get(ctx, id)
}

// List returns items, optionally filtered by status and category.
func (s *Service) List(ctx context.Context, status model.Status, category model.Category) ([]*model.Item, error) {
	var (
		items []*model.Item
		err   error
	)
	if status != "" {
		items, err = s.store.Items().ListByStatus(ctx, status)
	} else {
		items, err = s.store.Items().List(ctx)
	}
	if err != nil {
		return nil, err
	}
	if category == "" {
		return items, nil
	}
	filtered := items[:0]
	for _, it := range items {
		if it.Category == category {
			filtered = append(filtered, it)
		}
	}
	return filtered, nil
}

// Reclassify re-runs classification for one item and applies the result,
// clearing the pending flag. The online classifier is tried first; any
// failure there falls back to the heuristics instead of surfacing.
func (s *Service) Reclassify(ctx context.Context, id string) (*model.Item, error) {
	it, err := s.store.Items().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cat, err := s.classifyText(ctx, it.RawInput)
	if err != nil {
		return nil, err
	}
	pending := false
	upd := model.ItemUpdate{
		Category:            &cat.Category,
		Subcategory:         cat.Subcategory,
		Title:               &cat.Title,
		Entities:            &cat.Entities,
		Urgency:             &cat.Urgency,
		PendingAIProcessing: &pending,
	}
	updated, err := s.store.Items().Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("item_id", id).Str("category", string(cat.Category)).Msg("reclassified")
	return updated, nil
}

func (s *Service) classifyText(ctx context.Context, text string) (model.Categorization, error) {
	if s.online != nil {
		cat, err := s.online.Categorize(ctx, text)
		if err == nil {
			return cat, nil
		}
		s.log.Debug().Err(err).Msg("online categorization failed, using heuristics")
	}
	return s.offline.Categorize(ctx, text)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error) {
	return s.store.Items().Update(ctx, id, upd)
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Items().Delete(ctx, id)
}

// SetReminder attaches a notification schedule to an item. With no
// explicit time, a mention in the transcript wins; failing that, the
// urgency-based default applies. An empty message defaults to the title.
func (s *Service) SetReminder(ctx context.Context, id string, at *time.Time, message string) (*model.Item, error) {
	it, err := s.store.Items().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	when := at
	if when == nil {
		now := time.Now()
		if when = notify.ExtractTimeFromText(it.RawInput, now); when == nil {
			t := notify.DefaultReminderTime(it.Urgency, now)
			when = &t
		}
	}
	if message == "" {
		message = it.Title
	}
	return s.store.Items().Update(ctx, id, model.ItemUpdate{
		ScheduledNotification: &model.NotificationSchedule{At: *when, Message: message},
	})
}

// ClearReminder removes an item's notification schedule.
func (s *Service) ClearReminder(ctx context.Context, id string) (*model.Item, error) {
	return s.store.Items().Update(ctx, id, model.ItemUpdate{ClearNotification: true})
}

// makeTitle keeps the first 60 runes so multibyte input stays valid UTF-8.
func makeTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= 60 {
		return text
	}
	return strings.TrimSpace(string(runes[:60])) + "..."
}
