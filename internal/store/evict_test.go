package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
	"github.com/mindstash/mindstash/internal/store/storetest"
)

func TestEvictionRetriesAfterFreeingArchived(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	s := store.WithEviction(fake, zerolog.Nop())

	var archived []*model.Item
	for i := 0; i < 4; i++ {
		it, err := s.Items().Create(ctx, &model.Item{
			RawInput: "old thought",
			Category: model.CategoryNote,
			Title:    "old thought",
			Urgency:  model.UrgencyNone,
			Status:   model.StatusArchived,
		})
		require.NoError(t, err)
		archived = append(archived, it)
	}

	// Storage is now "full": the next create trips the quota, eviction
	// drops the oldest half of archived items, and the retry succeeds.
	fake.QuotaLimit = 4

	created, err := s.Items().Create(ctx, &model.Item{
		RawInput: "fresh capture",
		Category: model.CategoryNote,
		Title:    "fresh capture",
		Urgency:  model.UrgencyNone,
		Status:   model.StatusInbox,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// Oldest two archived items evicted, newest two retained.
	_, err = s.Items().Get(ctx, archived[0].ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Items().Get(ctx, archived[1].ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.Items().Get(ctx, archived[2].ID)
	assert.NoError(t, err)
	_, err = s.Items().Get(ctx, archived[3].ID)
	assert.NoError(t, err)
}

func TestEvictionSurfacesOriginalErrorWhenNothingToEvict(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	s := store.WithEviction(fake, zerolog.Nop())

	// Only active items; nothing archived to free up.
	_, err := s.Items().Create(ctx, &model.Item{
		RawInput: "keep me",
		Category: model.CategoryTask,
		Title:    "keep me",
		Urgency:  model.UrgencyMedium,
		Status:   model.StatusCaptured,
	})
	require.NoError(t, err)

	fake.QuotaLimit = 1
	_, err = s.Items().Create(ctx, &model.Item{
		RawInput: "no room",
		Category: model.CategoryNote,
		Title:    "no room",
		Urgency:  model.UrgencyNone,
		Status:   model.StatusInbox,
	})
	require.ErrorIs(t, err, model.ErrQuotaExceeded)
	assert.Equal(t, 1, fake.ItemCount())
}

func TestIsQuotaErr(t *testing.T) {
	assert.False(t, store.IsQuotaErr(nil))
	assert.False(t, store.IsQuotaErr(assert.AnError))
	assert.True(t, store.IsQuotaErr(model.ErrQuotaExceeded))
	assert.True(t, store.IsQuotaErr(errors.New("database or disk is full (13)")))
	assert.True(t, store.IsQuotaErr(errors.New("write failed: No space left on device")))
}
