package capture

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/events"
	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store/storetest"
)

func TestCaptureWritesDefaultsAndPublishes(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	bus := events.NewBus(4)
	s := New(fake, bus, nil, classify.NewOffline(nil), zerolog.Nop())

	it, err := s.Capture(ctx, "remind me to water the plants tomorrow")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryNote, it.Category)
	assert.Equal(t, model.UrgencyNone, it.Urgency)
	assert.Equal(t, model.StatusInbox, it.Status)
	assert.True(t, it.PendingAIProcessing)
	assert.False(t, it.Synced)
	assert.NotEmpty(t, it.Title)

	select {
	case evt := <-bus.Subscribe():
		assert.Equal(t, events.EventItemCaptured, evt.Kind)
		assert.Equal(t, it.ID, evt.ItemID)
	default:
		t.Fatal("expected a capture event on the bus")
	}
}

func TestCaptureTitleStaysValidUTF8(t *testing.T) {
	s := New(storetest.New(), nil, nil, classify.NewOffline(nil), zerolog.Nop())
	it, err := s.Capture(context.Background(), strings.Repeat("é", 80))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(it.Title), "title must stay valid UTF-8: %q", it.Title)
	assert.Equal(t, strings.Repeat("é", 60)+"...", it.Title)
}

type stubClassifier struct {
	cat   model.Categorization
	err   error
	calls int
}

func (s *stubClassifier) Categorize(_ context.Context, _ string) (model.Categorization, error) {
	s.calls++
	return s.cat, s.err
}

func TestReclassifyAppliesOnlineResult(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	sub := "Film"
	online := &stubClassifier{cat: model.Categorization{
		Category:    model.CategoryIdea,
		Subcategory: &sub,
		Title:       "Deep sea documentary",
		Urgency:     model.UrgencyLow,
		Entities:    model.Entities{People: []string{"ben"}},
		Confidence:  0.9,
	}}
	s := New(fake, nil, online, classify.NewOffline(nil), zerolog.Nop())

	it, err := s.Capture(ctx, "thinking about a deep sea documentary with ben")
	require.NoError(t, err)

	got, err := s.Reclassify(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, online.calls)
	assert.Equal(t, model.CategoryIdea, got.Category)
	require.NotNil(t, got.Subcategory)
	assert.Equal(t, "Film", *got.Subcategory)
	assert.Equal(t, "Deep sea documentary", got.Title)
	assert.Equal(t, []string{"ben"}, got.Entities.People)
	assert.False(t, got.PendingAIProcessing)
}

func TestReclassifyFallsBackToHeuristics(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	online := &stubClassifier{err: model.ErrAIUnavailable}
	s := New(fake, nil, online, classify.NewOffline(nil), zerolog.Nop())

	it, err := s.Capture(ctx, "need to buy milk")
	require.NoError(t, err)

	got, err := s.Reclassify(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, online.calls)
	assert.Equal(t, model.CategoryTask, got.Category)
	assert.Equal(t, model.UrgencyMedium, got.Urgency)
	assert.False(t, got.PendingAIProcessing)
}

func TestReclassifyMissingItem(t *testing.T) {
	s := New(storetest.New(), nil, nil, classify.NewOffline(nil), zerolog.Nop())
	_, err := s.Reclassify(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCaptureRejectsEmptyInput(t *testing.T) {
	s := New(storetest.New(), nil, nil, classify.NewOffline(nil), zerolog.Nop())
	_, err := s.Capture(context.Background(), "   ")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	s := New(fake, nil, nil, classify.NewOffline(nil), zerolog.Nop())

	mk := func(status model.Status, cat model.Category) {
		_, err := fake.Items().Create(ctx, &model.Item{
			RawInput: "x", Category: cat, Title: "x",
			Urgency: model.UrgencyNone, Status: status,
		})
		require.NoError(t, err)
	}
	mk(model.StatusInbox, model.CategoryTask)
	mk(model.StatusInbox, model.CategoryNote)
	mk(model.StatusCaptured, model.CategoryTask)

	all, err := s.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inbox, err := s.List(ctx, model.StatusInbox, "")
	require.NoError(t, err)
	assert.Len(t, inbox, 2)

	inboxTasks, err := s.List(ctx, model.StatusInbox, model.CategoryTask)
	require.NoError(t, err)
	assert.Len(t, inboxTasks, 1)
}

func TestSetReminderExplicitAndDerived(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	s := New(fake, nil, nil, classify.NewOffline(nil), zerolog.Nop())

	it, err := s.Capture(ctx, "call mom at 3pm")
	require.NoError(t, err)

	// Explicit time wins.
	at := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	upd, err := s.SetReminder(ctx, it.ID, &at, "custom message")
	require.NoError(t, err)
	require.NotNil(t, upd.ScheduledNotification)
	assert.Equal(t, at, upd.ScheduledNotification.At)
	assert.Equal(t, "custom message", upd.ScheduledNotification.Message)

	// No explicit time: derived from the transcript, message defaults to
	// the title.
	upd, err = s.SetReminder(ctx, it.ID, nil, "")
	require.NoError(t, err)
	require.NotNil(t, upd.ScheduledNotification)
	assert.Equal(t, 15, upd.ScheduledNotification.At.Hour())
	assert.Equal(t, upd.Title, upd.ScheduledNotification.Message)

	cleared, err := s.ClearReminder(ctx, it.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.ScheduledNotification)
}

func TestSetReminderFallsBackToUrgencyDefault(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	s := New(fake, nil, nil, classify.NewOffline(nil), zerolog.Nop())

	it, err := fake.Items().Create(ctx, &model.Item{
		RawInput: "no time mentioned", Category: model.CategoryTask, Title: "no time mentioned",
		Urgency: model.UrgencyHigh, Status: model.StatusCaptured,
	})
	require.NoError(t, err)

	before := time.Now()
	upd, err := s.SetReminder(ctx, it.ID, nil, "")
	require.NoError(t, err)
	require.NotNil(t, upd.ScheduledNotification)
	// High urgency default: about 15 minutes out.
	delta := upd.ScheduledNotification.At.Sub(before)
	assert.InDelta(t, (15 * time.Minute).Seconds(), delta.Seconds(), 5)
}
